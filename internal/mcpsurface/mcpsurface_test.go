package mcpsurface

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/autoword-vnext/internal/model"
)

var testMCPImpl = &mcp.Implementation{Name: "autoword-test", Version: "0.1.0"}

type stubExtractor struct {
	structure *model.StructureV1
	inventory *model.InventoryFullV1
	warnings  []string
	err       error
}

func (s *stubExtractor) Extract(path, revisionStrategy string) (*model.StructureV1, *model.InventoryFullV1, []string, error) {
	if s.err != nil {
		return nil, nil, nil, s.err
	}
	return s.structure, s.inventory, s.warnings, nil
}

type stubPlanner struct {
	plan *model.PlanV1
	err  error
}

func (s *stubPlanner) Plan(ctx context.Context, structure *model.StructureV1, userIntent string) (*model.PlanV1, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.plan, nil
}

func mcpSession(t *testing.T, surface *Surface) *mcp.ClientSession {
	t.Helper()
	srv := mcp.NewServer(testMCPImpl, nil)
	surface.Register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func mcpCallTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if result.IsError {
		t.Fatalf("CallTool(%s) returned a tool error", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent", name)
	}
	return tc.Text
}

func TestMCP_Extract(t *testing.T) {
	structure := &model.StructureV1{SchemaVersion: model.SchemaVersion}
	inventory := &model.InventoryFullV1{SchemaVersion: model.SchemaVersion}
	surface := New(&stubExtractor{structure: structure, inventory: inventory}, &stubPlanner{}, "bypass", t.TempDir())
	session := mcpSession(t, surface)

	text := mcpCallTool(t, session, "autoword_extract", map[string]any{"path": "input.docx"})

	var resp struct {
		Structure model.StructureV1    `json:"structure"`
		Inventory model.InventoryFullV1 `json:"inventory"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Structure.SchemaVersion != model.SchemaVersion {
		t.Fatalf("schema_version: got %q", resp.Structure.SchemaVersion)
	}
}

func TestMCP_DryRunPlan(t *testing.T) {
	structure := &model.StructureV1{SchemaVersion: model.SchemaVersion}
	plan := &model.PlanV1{SchemaVersion: model.SchemaVersion, Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}
	surface := New(&stubExtractor{structure: structure}, &stubPlanner{plan: plan}, "bypass", t.TempDir())
	session := mcpSession(t, surface)

	text := mcpCallTool(t, session, "autoword_dry_run_plan", map[string]any{
		"path": "input.docx", "user_intent": "update the table of contents",
	})

	var resp model.PlanV1
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Ops) != 1 || resp.Ops[0].Operation != model.OpUpdateTOC {
		t.Fatalf("plan: got %+v", resp)
	}
}

func TestMCP_DryRunPlan_PropagatesExtractError(t *testing.T) {
	surface := New(&stubExtractor{err: errors.New("bad zip")}, &stubPlanner{}, "bypass", t.TempDir())
	srv := mcp.NewServer(testMCPImpl, nil)
	surface.Register(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()
	go func() { _ = srv.Run(ctx, serverT) }()
	client := mcp.NewClient(testMCPImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "autoword_dry_run_plan",
		Arguments: map[string]any{"path": "bad.docx", "user_intent": "anything"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if !result.IsError {
		t.Fatal("expected a tool error for a failed extraction")
	}
}

func TestMCP_Status_EmptyDirectory(t *testing.T) {
	surface := New(&stubExtractor{}, &stubPlanner{}, "bypass", filepath.Join(t.TempDir(), "does-not-exist"))
	session := mcpSession(t, surface)

	text := mcpCallTool(t, session, "autoword_status", map[string]any{})

	var resp struct {
		Runs []runStatus `json:"runs"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Runs) != 0 {
		t.Fatalf("expected no runs, got %v", resp.Runs)
	}
}

func TestMCP_Status_ListsRunsByStatus(t *testing.T) {
	base := t.TempDir()
	runDir := filepath.Join(base, "run_20240101_000000_abcdef")
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(runDir, "result.status.txt"), []byte("SUCCESS\n"), 0o644); err != nil {
		t.Fatalf("write status: %v", err)
	}

	surface := New(&stubExtractor{}, &stubPlanner{}, "bypass", base)
	session := mcpSession(t, surface)

	text := mcpCallTool(t, session, "autoword_status", map[string]any{})

	var resp struct {
		Runs []runStatus `json:"runs"`
	}
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Runs) != 1 || resp.Runs[0].Status != "SUCCESS" {
		t.Fatalf("runs: got %+v", resp.Runs)
	}
}
