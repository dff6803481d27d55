// Package orchestrator drives one process_document run end to end:
// Extract, Plan, Execute, Validate, Audit, with rollback on any hard
// fault. It owns the working copy's lifecycle and is the only component
// that ever writes to the caller's input path, and only once validation
// has passed.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/auditor"
	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/model"
	"github.com/hazyhaar/autoword-vnext/internal/monitoring"
	"github.com/hazyhaar/autoword-vnext/kit"
)

// Extractor is the narrow surface Pipeline needs from internal/extractor.
type Extractor interface {
	Extract(path string, revisionStrategy string) (*model.StructureV1, *model.InventoryFullV1, []string, error)
}

// Planner is the narrow surface Pipeline needs from internal/planner.
type Planner interface {
	Plan(ctx context.Context, structure *model.StructureV1, userIntent string) (*model.PlanV1, error)
}

// Executor is the narrow surface Pipeline needs from internal/executor.
type Executor interface {
	Execute(doc *automation.Document, plan *model.PlanV1) ([]model.OperationResult, []string, error)
}

// Validator is the narrow surface Pipeline needs from internal/validator.
type Validator interface {
	Validate(before *model.StructureV1, modifiedDocxPath string, cfg *config.ValidationConfig) (*model.ValidationResult, *model.StructureV1, error)
}

// Pipeline wires the five stages together with the Auditor and Monitor.
// It holds no per-run state: every field is a fixed collaborator, and
// Run is safe to call repeatedly (and, since its collaborators are
// independent per call, concurrently) for different documents.
type Pipeline struct {
	extractor Extractor
	planner   Planner
	executor  Executor
	validator Validator
	auditor   *auditor.Auditor
	cfg       config.Config
	log       *slog.Logger
}

// New constructs a Pipeline from its five stage collaborators plus the
// resolved run configuration.
func New(extractor Extractor, planner Planner, executor Executor, validator Validator, aud *auditor.Auditor, cfg config.Config, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		extractor: extractor,
		planner:   planner,
		executor:  executor,
		validator: validator,
		auditor:   aud,
		cfg:       cfg,
		log:       log,
	}
}

// Run executes one full EXTRACT -> PLAN -> EXECUTE -> VALIDATE -> AUDIT
// cycle against docxPath, guided by userIntent. It never mutates docxPath
// until validation has passed; every intermediate state lives in a
// temporary working copy that is always removed before Run returns.
//
// A CONFIG_ERROR or AUDIT_ERROR means no run directory could be trusted to
// hold a terminal status, so Run returns a bare error with a zero-value
// Result in those cases. Every other fault produces a Result whose Status
// names the terminal state the audit run recorded.
func (p *Pipeline) Run(ctx context.Context, docxPath, userIntent string) (model.Result, error) {
	mon := monitoring.New(p.cfg.MonitoringLevel, p.cfg.Executor.MemoryWarningMB, p.cfg.Executor.MemoryCriticalMB, p.log)

	run, err := p.auditor.Start()
	if err != nil {
		return model.Result{}, err
	}
	result := model.Result{AuditDir: run.Dir()}

	// Every downstream log line and the Planner's language-model call carry
	// the run ID, so a support engineer can grep one identifier across the
	// audit directory and the process log.
	ctx = kit.WithRequestID(ctx, filepath.Base(run.Dir()))
	log := p.log.With("run_id", kit.GetRequestID(ctx))

	workingCopy, cleanup, err := newWorkingCopy(docxPath)
	if err != nil {
		return model.Result{}, apperr.Wrap(apperr.AuditError, "orchestrator", err)
	}
	defer cleanup()

	// EXTRACT
	h := mon.Begin("extract")
	before, inventory, extractWarnings, err := p.extractor.Extract(docxPath, string(p.cfg.RevisionStrategy))
	h.End(err)
	if err != nil {
		return p.rollback(run, result, "extract", nil, err)
	}
	result.Warnings = append(result.Warnings, extractWarnings...)

	if err := run.WriteBefore(docxPath, before); err != nil {
		return model.Result{}, err
	}
	if err := run.WriteInventory(inventory); err != nil {
		return model.Result{}, err
	}
	if err := run.WriteWarnings("extract", extractWarnings); err != nil {
		return model.Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return p.rollback(run, result, "extract", nil, err)
	}

	// PLAN
	h = mon.Begin("plan")
	plan, err := p.planner.Plan(ctx, before, userIntent)
	h.End(err)
	if err != nil {
		log.WarnContext(ctx, "orchestrator: plan rejected", "error", err)
		if finErr := run.Finalize(model.StatusInvalidPlan); finErr != nil {
			return model.Result{}, finErr
		}
		result.Status = model.StatusInvalidPlan
		result.Errors = append(result.Errors, err.Error())
		return result, nil
	}
	if err := run.WritePlan(plan); err != nil {
		return model.Result{}, err
	}

	// EXECUTE
	h = mon.Begin("execute")
	opResults, execWarnings, err := p.executeOnCopy(workingCopy, plan)
	h.End(err)
	if writeErr := run.WriteDiffReport(opResults); writeErr != nil {
		return model.Result{}, writeErr
	}
	if err != nil {
		return p.rollback(run, result, "execute", execWarnings, err)
	}
	result.Warnings = append(result.Warnings, execWarnings...)
	if err := run.WriteWarnings("execute", execWarnings); err != nil {
		return model.Result{}, err
	}

	if err := ctx.Err(); err != nil {
		return p.rollback(run, result, "execute", nil, err)
	}

	// VALIDATE
	h = mon.Begin("validate")
	verdict, after, err := p.validator.Validate(before, workingCopy, &p.cfg.Validation)
	h.End(err)
	if err != nil {
		return p.rollback(run, result, "validate", nil, err)
	}
	if err := run.WriteWarnings("validate", verdict.Warnings); err != nil {
		return model.Result{}, err
	}
	result.Warnings = append(result.Warnings, verdict.Warnings...)

	if !verdict.IsValid {
		log.WarnContext(ctx, "orchestrator: validation failed, rolling back", "failures", verdict.Failures)
		if err := run.WriteWarnings("validate", verdict.Failures); err != nil {
			return model.Result{}, err
		}
		if err := run.Finalize(model.StatusFailedValidation); err != nil {
			return model.Result{}, err
		}
		result.Status = model.StatusFailedValidation
		result.Errors = append(result.Errors, verdict.Failures...)
		return result, nil
	}

	// AUDIT + COMMIT
	if err := run.WriteAfter(workingCopy, after); err != nil {
		return model.Result{}, err
	}
	if err := promote(workingCopy, docxPath); err != nil {
		return model.Result{}, apperr.Wrap(apperr.AuditError, "orchestrator", err)
	}
	if err := run.Finalize(model.StatusSuccess); err != nil {
		return model.Result{}, err
	}

	result.Status = model.StatusSuccess
	result.OutputPath = docxPath
	log.InfoContext(ctx, "orchestrator: run committed", "audit_dir", run.Dir(), "total_ms", mon.TotalDurationMs())
	return result, nil
}

// executeOnCopy opens its own automation.Handle on workingCopy, entirely
// separate from the Extractor's self-closing handle: EXECUTE and EXTRACT
// never share a live Document. A panic inside Execute (e.g. a compiled
// operation indexing past a slice bound on malformed input) is recovered
// and reported as an EXECUTION_ERROR rather than crashing the run.
func (p *Pipeline) executeOnCopy(workingCopy string, plan *model.PlanV1) (results []model.OperationResult, warnings []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.New(apperr.ExecutionError, "orchestrator", "panic during execution: %v", r)
		}
	}()

	h := automation.NewHandle()
	doc, err := h.Open(workingCopy)
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ExecutionError, "orchestrator", err)
	}
	defer doc.Close()

	results, warnings, err = p.executor.Execute(doc, plan)
	if err != nil {
		return results, warnings, err
	}

	if err := doc.Save(workingCopy); err != nil {
		return results, warnings, apperr.Wrap(apperr.ExecutionError, "orchestrator", err)
	}
	return results, warnings, nil
}

// rollback records the run's outcome as ROLLBACK: the original file is
// never touched, and the working copy's failed edits are discarded by
// cleanup() when Run returns.
func (p *Pipeline) rollback(run *auditor.Run, result model.Result, stage string, warnings []string, cause error) (model.Result, error) {
	p.log.Warn("orchestrator: rolling back", "stage", stage, "error", cause)
	if len(warnings) > 0 {
		if err := run.WriteWarnings(stage, warnings); err != nil {
			return model.Result{}, err
		}
	}
	if err := run.Finalize(model.StatusRollback); err != nil {
		return model.Result{}, err
	}
	result.Status = model.StatusRollback
	result.Errors = append(result.Errors, cause.Error())
	return result, nil
}

// newWorkingCopy copies src into a fresh temp file beside it and returns
// its path plus a cleanup func that removes both the temp file and its
// containing directory. The copy is what EXECUTE and VALIDATE mutate;
// src is never opened for writing until promote succeeds.
func newWorkingCopy(src string) (path string, cleanup func(), err error) {
	dir, err := os.MkdirTemp("", "autoword-run-*")
	if err != nil {
		return "", nil, fmt.Errorf("orchestrator: create working directory: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	dst := filepath.Join(dir, "working"+filepath.Ext(src))
	if err := copyFile(src, dst); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("orchestrator: create working copy: %w", err)
	}
	return dst, cleanup, nil
}

// promote replaces dst's contents with src's. A copy, not a rename, so a
// working copy on a different filesystem (the common case for os.TempDir)
// still commits correctly.
func promote(src, dst string) error {
	return copyFile(src, dst)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
