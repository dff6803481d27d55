package planner

import "context"

// LMClient is the narrow text-in/text-out collaborator the gateway drives.
// Concrete vendor clients (OpenAI, Anthropic, a local model server) satisfy
// this by wrapping their own request/response shapes; the gateway never
// sees anything vendor-specific.
type LMClient interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
