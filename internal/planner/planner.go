// Package planner wraps an external language model with strict schema- and
// whitelist-enforced validation: it is the only path by which a plan.v1 can
// come into existence, and it never lets a plan through that has not
// passed every stage of the validation Chain.
package planner

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const jsonOnlyReminder = "Your previous reply did not parse as a single JSON object. Reply with JSON only: no prose, no markdown code fences, no text before or after the object."

// Planner drives one plan(structure, intent) call through the LM and the
// validation Chain.
type Planner struct {
	client     LMClient
	maxRetries int
	log        *slog.Logger
	validate   Stage
}

// Option configures a Planner at construction.
type Option func(*Planner)

// WithMaxRetries overrides the default bounded JSON-retry count.
func WithMaxRetries(n int) Option {
	return func(p *Planner) { p.maxRetries = n }
}

// WithLogger overrides the default slog.Default() logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Planner) { p.log = l }
}

// New constructs a Planner over client, with the default validation Chain
// (schema conformance -> whitelist -> parameter sanity -> structural
// coherence) run in that fixed order.
func New(client LMClient, opts ...Option) *Planner {
	p := &Planner{
		client:     client,
		maxRetries: 2,
		log:        slog.Default(),
		validate:   Chain(SchemaConformance, WhitelistConformance, ParameterSanity, StructuralCoherence),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Plan runs the full gateway: prompt assembly, LM call, strict JSON parse
// with bounded retry, and the validation Chain. Any failure at any stage
// is surfaced as an apperr.InvalidPlan error.
func (p *Planner) Plan(ctx context.Context, structure *model.StructureV1, userIntent string) (*model.PlanV1, error) {
	reminder := ""
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		systemPrompt, userPrompt, err := BuildPrompt(structure, userIntent, reminder)
		if err != nil {
			return nil, apperr.Wrap(apperr.InvalidPlan, "planner", err)
		}

		reply, err := p.client.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			return nil, apperr.Wrap(apperr.InvalidPlan, "planner", err)
		}

		plan, err := decodePlan(reply)
		if err != nil {
			lastErr = err
			reminder = jsonOnlyReminder
			p.log.WarnContext(ctx, "planner: reply did not parse as JSON, retrying",
				"attempt", attempt, "max_retries", p.maxRetries)
			continue
		}

		if err := p.validate(plan); err != nil {
			return nil, wrapInvalid(err)
		}

		p.log.InfoContext(ctx, "planner: produced valid plan", "op_count", len(plan.Ops), "attempt", attempt)
		return plan, nil
	}

	return nil, wrapInvalid(lastErr)
}

// wrapInvalid preserves an InvalidPlanError's field path on the resulting
// apperr.Error instead of collapsing it into the message string.
func wrapInvalid(err error) error {
	wrapped := apperr.Wrap(apperr.InvalidPlan, "planner", err)
	if ipe, ok := err.(*InvalidPlanError); ok {
		return wrapped.WithPath(ipe.Path)
	}
	return wrapped
}

// decodePlan parses reply strictly: unknown top-level fields are rejected
// via RawPlan's manual field capture, unknown fields inside an op are
// rejected by the op decoder, and the reply must be exactly one JSON
// object with nothing else around it.
func decodePlan(reply string) (*model.PlanV1, error) {
	trimmed := strings.TrimSpace(stripCodeFence(reply))
	if trimmed == "" {
		return nil, invalid("", "empty reply")
	}

	var raw model.RawPlan
	dec := json.NewDecoder(strings.NewReader(trimmed))
	if err := dec.Decode(&raw); err != nil {
		return nil, invalid("", "reply is not valid JSON: %v", err)
	}
	if dec.More() {
		return nil, invalid("", "reply contains more than one JSON value")
	}
	if len(raw.Extra) > 0 {
		for key := range raw.Extra {
			return nil, invalid(key, "unrecognized top-level field")
		}
	}

	plan := &model.PlanV1{SchemaVersion: raw.SchemaVersion}
	plan.Ops = make([]model.OperationSpec, len(raw.Ops))
	for i, rawOp := range raw.Ops {
		opDec := json.NewDecoder(strings.NewReader(string(rawOp)))
		opDec.DisallowUnknownFields()
		if err := opDec.Decode(&plan.Ops[i]); err != nil {
			return nil, invalid(opPath(i, ""), "op is not a valid object: %v", err)
		}
	}
	return plan, nil
}

// stripCodeFence tolerates a model wrapping its JSON in a markdown code
// fence despite being told not to; the gateway still requires the fenced
// content itself to be exactly one JSON object.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
