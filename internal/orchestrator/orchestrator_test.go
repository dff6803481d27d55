package orchestrator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/autoword-vnext/internal/auditor"
	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/idgen"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const minimalDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello.</w:t></w:r></w:p>
</w:body>
</w:document>`

func writeMinimalDocx(t *testing.T, path string) {
	t.Helper()
	doc, err := automation.NewDocumentFromXML(
		map[string][]byte{"word/document.xml": []byte(minimalDocumentXML)},
		[]string{"word/document.xml"},
	)
	require.NoError(t, err, "build fixture document")
	require.NoError(t, doc.Save(path), "save fixture document")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedRunID(prefix string) idgen.Generator {
	return func() string { return prefix }
}

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
	inv := s.inventory
	if inv == nil {
		inv = &model.InventoryFullV1{SchemaVersion: model.SchemaVersion}
	}
	return s.structure, inv, s.warnings, nil
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

type stubExecutor struct {
	results  []model.OperationResult
	warnings []string
	err      error
	panicVal any
}

func (s *stubExecutor) Execute(doc *automation.Document, plan *model.PlanV1) ([]model.OperationResult, []string, error) {
	if s.panicVal != nil {
		panic(s.panicVal)
	}
	if s.err != nil {
		return s.results, s.warnings, s.err
	}
	return s.results, s.warnings, nil
}

type stubValidator struct {
	result *model.ValidationResult
	after  *model.StructureV1
	err    error
}

func (s *stubValidator) Validate(before *model.StructureV1, modifiedDocxPath string, cfg *config.ValidationConfig) (*model.ValidationResult, *model.StructureV1, error) {
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.result, s.after, nil
}

func newPipeline(t *testing.T, ext Extractor, pl Planner, ex Executor, val Validator, runPrefix string) (*Pipeline, string) {
	t.Helper()
	base := t.TempDir()
	aud := auditor.New(base, fixedRunID(runPrefix))
	cfg := config.Default()
	return New(ext, pl, ex, val, aud, cfg, discardLogger()), base
}

func baseStructure() *model.StructureV1 {
	return &model.StructureV1{SchemaVersion: model.SchemaVersion}
}

func TestPipeline_Run_SuccessCommitsAndFinalizes(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)

	before := baseStructure()
	after := baseStructure()
	plan := &model.PlanV1{SchemaVersion: model.SchemaVersion, Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}

	p, base := newPipeline(t,
		&stubExtractor{structure: before},
		&stubPlanner{plan: plan},
		&stubExecutor{results: []model.OperationResult{{Index: 0, Operation: model.OpUpdateTOC, Outcome: "applied"}}},
		&stubValidator{result: &model.ValidationResult{IsValid: true}, after: after},
		"run_success",
	)

	result, err := p.Run(context.Background(), docxPath, "update the TOC")
	require.NoError(t, err)
	require.Equal(t, model.StatusSuccess, result.Status)
	require.Equal(t, docxPath, result.OutputPath)

	statusPath := filepath.Join(base, "run_success", "result.status.txt")
	data, err := os.ReadFile(statusPath)
	require.NoError(t, err)
	require.Equal(t, "SUCCESS\n", string(data))

	_, err = os.Stat(filepath.Join(base, "run_success", "after.docx"))
	require.NoError(t, err, "expected after.docx to exist")
}

func TestPipeline_Run_ExtractionErrorRollsBack(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)
	originalBytes, _ := os.ReadFile(docxPath)

	p, base := newPipeline(t,
		&stubExtractor{err: errors.New("corrupt package")},
		&stubPlanner{},
		&stubExecutor{},
		&stubValidator{},
		"run_extract_fail",
	)

	result, err := p.Run(context.Background(), docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusRollback, result.Status)
	require.NotEmpty(t, result.Errors, "expected the extraction error to be recorded")

	afterBytes, _ := os.ReadFile(docxPath)
	require.Equal(t, originalBytes, afterBytes, "input document must never be touched on rollback")

	status, err := os.ReadFile(filepath.Join(base, "run_extract_fail", "result.status.txt"))
	require.NoError(t, err)
	require.Equal(t, "ROLLBACK\n", string(status))
}

func TestPipeline_Run_InvalidPlanReturnsInvalidPlanStatus(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)

	p, base := newPipeline(t,
		&stubExtractor{structure: baseStructure()},
		&stubPlanner{err: errors.New("plan failed schema validation")},
		&stubExecutor{},
		&stubValidator{},
		"run_invalid_plan",
	)

	result, err := p.Run(context.Background(), docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusInvalidPlan, result.Status)

	status, err := os.ReadFile(filepath.Join(base, "run_invalid_plan", "result.status.txt"))
	require.NoError(t, err)
	require.Equal(t, "INVALID_PLAN\n", string(status))
}

func TestPipeline_Run_ExecutionErrorRollsBack(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)

	plan := &model.PlanV1{SchemaVersion: model.SchemaVersion, Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}
	p, base := newPipeline(t,
		&stubExtractor{structure: baseStructure()},
		&stubPlanner{plan: plan},
		&stubExecutor{err: errors.New("rejected authorization token")},
		&stubValidator{},
		"run_exec_fail",
	)

	result, err := p.Run(context.Background(), docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusRollback, result.Status)

	status, err := os.ReadFile(filepath.Join(base, "run_exec_fail", "result.status.txt"))
	require.NoError(t, err)
	require.Equal(t, "ROLLBACK\n", string(status))
}

func TestPipeline_Run_ExecutorPanicBecomesRollback(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)

	plan := &model.PlanV1{SchemaVersion: model.SchemaVersion, Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}
	p, base := newPipeline(t,
		&stubExtractor{structure: baseStructure()},
		&stubPlanner{plan: plan},
		&stubExecutor{panicVal: "index out of range"},
		&stubValidator{},
		"run_panic",
	)

	result, err := p.Run(context.Background(), docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusRollback, result.Status)

	_, err = os.Stat(filepath.Join(base, "run_panic", "result.status.txt"))
	require.NoError(t, err, "expected result.status.txt")
}

func TestPipeline_Run_ValidationFailureRollsBack(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)
	originalBytes, _ := os.ReadFile(docxPath)

	plan := &model.PlanV1{SchemaVersion: model.SchemaVersion, Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}
	p, base := newPipeline(t,
		&stubExtractor{structure: baseStructure()},
		&stubPlanner{plan: plan},
		&stubExecutor{},
		&stubValidator{result: &model.ValidationResult{IsValid: false, Failures: []string{"chapter assertion: forbidden heading found"}}},
		"run_val_fail",
	)

	result, err := p.Run(context.Background(), docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusFailedValidation, result.Status)
	require.NotEmpty(t, result.Errors, "expected the validation failure to be recorded")

	afterBytes, _ := os.ReadFile(docxPath)
	require.Equal(t, originalBytes, afterBytes, "input document must never be touched on a failed validation")

	_, err = os.Stat(filepath.Join(base, "run_val_fail", "after.docx"))
	require.Error(t, err, "expected after.docx to be absent on a failed-validation run")
}

func TestPipeline_Run_ContextCancelledBeforePlanRollsBack(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeMinimalDocx(t, docxPath)

	p, _ := newPipeline(t,
		&stubExtractor{structure: baseStructure()},
		&stubPlanner{plan: &model.PlanV1{SchemaVersion: model.SchemaVersion}},
		&stubExecutor{},
		&stubValidator{},
		"run_cancelled",
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, docxPath, "anything")
	require.NoError(t, err)
	require.Equal(t, model.StatusRollback, result.Status)
}
