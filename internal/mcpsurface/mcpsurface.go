// Package mcpsurface exposes a read-only slice of the pipeline over MCP:
// extract a document's structure, dry-run a plan without ever opening a
// write handle, and list recent audit runs. It never calls Execute or
// Validate — commit-capable operations stay behind the CLI and the
// library entry point, grounded on docpipe/mcp.go's tool-per-verb layout.
package mcpsurface

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/autoword-vnext/internal/model"
	"github.com/hazyhaar/autoword-vnext/kit"
)

// Extractor is the narrow surface Surface needs from internal/extractor.
type Extractor interface {
	Extract(path string, revisionStrategy string) (*model.StructureV1, *model.InventoryFullV1, []string, error)
}

// Planner is the narrow surface Surface needs from internal/planner.
type Planner interface {
	Plan(ctx context.Context, structure *model.StructureV1, userIntent string) (*model.PlanV1, error)
}

// Surface registers autoword's read-only MCP tools.
type Surface struct {
	extractor        Extractor
	planner          Planner
	revisionStrategy string
	auditBaseDir     string
}

// New constructs a Surface. revisionStrategy governs the extract and
// dry_run_plan tools' re-extraction, mirroring the run configuration's
// revision_strategy so a dry run sees what a real run would see.
func New(extractor Extractor, planner Planner, revisionStrategy, auditBaseDir string) *Surface {
	return &Surface{extractor: extractor, planner: planner, revisionStrategy: revisionStrategy, auditBaseDir: auditBaseDir}
}

// Register adds every tool this surface exposes to srv.
func (s *Surface) Register(srv *mcp.Server) {
	s.registerExtractTool(srv)
	s.registerDryRunPlanTool(srv)
	s.registerStatusTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// --- extract ---

type extractReq struct {
	Path string `json:"path"`
}

func (s *Surface) registerExtractTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "autoword_extract",
		Description: "Extract structure.v1 and inventory.full.v1 from a DOCX file, without modifying it.",
		InputSchema: inputSchema(map[string]any{
			"path": map[string]any{"type": "string", "description": "Path to the DOCX file"},
		}, []string{"path"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*extractReq)
		structure, inventory, warnings, err := s.extractor.Extract(r.Path, s.revisionStrategy)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"structure": structure,
			"inventory": inventory,
			"warnings":  warnings,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r extractReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrichMCPContext}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- dry_run_plan ---

type dryRunPlanReq struct {
	Path       string `json:"path"`
	UserIntent string `json:"user_intent"`
}

func (s *Surface) registerDryRunPlanTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "autoword_dry_run_plan",
		Description: "Extract a DOCX file's structure and ask the planner for a plan.v1, without executing or writing anything.",
		InputSchema: inputSchema(map[string]any{
			"path":        map[string]any{"type": "string", "description": "Path to the DOCX file"},
			"user_intent": map[string]any{"type": "string", "description": "Natural-language description of the desired edits"},
		}, []string{"path", "user_intent"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*dryRunPlanReq)
		structure, _, _, err := s.extractor.Extract(r.Path, s.revisionStrategy)
		if err != nil {
			return nil, err
		}
		plan, err := s.planner.Plan(ctx, structure, r.UserIntent)
		if err != nil {
			return nil, err
		}
		return plan, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var r dryRunPlanReq
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &r, EnrichCtx: enrichMCPContext}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- status ---

type runStatus struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

func (s *Surface) registerStatusTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "autoword_status",
		Description: "List recent audit runs under the configured audit base directory and their terminal status.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		entries, err := os.ReadDir(s.auditBaseDir)
		if os.IsNotExist(err) {
			return map[string]any{"runs": []runStatus{}}, nil
		}
		if err != nil {
			return nil, err
		}

		runs := make([]runStatus, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			status := "UNKNOWN"
			if data, err := os.ReadFile(filepath.Join(s.auditBaseDir, e.Name(), "result.status.txt")); err == nil {
				status = trimNewline(string(data))
			}
			runs = append(runs, runStatus{RunID: e.Name(), Status: status})
		}
		sort.Slice(runs, func(i, j int) bool { return runs[i].RunID > runs[j].RunID })
		return map[string]any{"runs": runs}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil, EnrichCtx: enrichMCPContext}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// enrichMCPContext tags every request handled through this surface with its
// transport, so a downstream Plan call's logging can tell an MCP-originated
// dry run apart from one issued via the CLI.
func enrichMCPContext(ctx context.Context) context.Context {
	return kit.WithTransport(ctx, "mcp")
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
