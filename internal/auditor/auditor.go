// Package auditor writes the fixed, flat, append-only run directory every
// pipeline run produces: the before/after structures and DOCX files, the
// full inventory, the plan the Planner produced, a diff report, a
// line-oriented warnings log, and a one-line result status file. Grounded
// on observability/audit.go's AuditEntry shape, adapted from SQL rows to
// plain text files since a run directory, not a database, is this
// pipeline's audit trail.
package auditor

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/idgen"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const (
	fileBeforeDocx       = "before.docx"
	fileAfterDocx        = "after.docx"
	fileBeforeStructure  = "before_structure.v1.json"
	fileAfterStructure   = "after_structure.v1.json"
	fileInventory        = "inventory.full.v1.json"
	filePlan             = "plan.v1.json"
	fileDiffReport       = "diff.report.json"
	fileWarningsLog      = "warnings.log"
	fileResultStatus     = "result.status.txt"
)

// DiffReport is the operation-level summary the Auditor writes alongside
// the before/after structures: what the plan asked for and what actually
// happened, in plan order.
type DiffReport struct {
	SchemaVersion string                  `json:"schema_version"`
	Operations    []model.OperationResult `json:"operations"`
}

// WarningEntry is one line recorded to warnings.log, adapted from
// AuditEntry's component/operation/message shape.
type WarningEntry struct {
	Stage     string
	Operation string
	Reason    string
}

// Auditor creates and populates run directories under a base directory.
type Auditor struct {
	baseDir string
	newRun  idgen.Generator
}

// New constructs an Auditor rooted at baseDir. newRun defaults to
// idgen.RunID(), which already produces "run_YYYYMMDD_HHMMSS_<suffix>".
func New(baseDir string, newRun idgen.Generator) *Auditor {
	if newRun == nil {
		newRun = idgen.RunID()
	}
	return &Auditor{baseDir: baseDir, newRun: newRun}
}

// Run is one open, exclusively-owned audit directory for the duration of a
// single process_document call. The Auditor is the only writer.
type Run struct {
	dir string
}

// Start creates a new timestamped run directory and returns a handle to it.
func (a *Auditor) Start() (*Run, error) {
	if err := os.MkdirAll(a.baseDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	dir := filepath.Join(a.baseDir, a.newRun())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	return &Run{dir: dir}, nil
}

// Dir returns the run directory's absolute path.
func (r *Run) Dir() string { return r.dir }

// WriteBefore copies the input DOCX and writes before_structure.v1.json.
// Called once, at the start of EXTRACT.
func (r *Run) WriteBefore(inputDocxPath string, structure *model.StructureV1) error {
	if err := copyFile(inputDocxPath, filepath.Join(r.dir, fileBeforeDocx)); err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	return r.writeJSON(fileBeforeStructure, structure)
}

// WriteInventory writes inventory.full.v1.json. Called once, at the end of
// EXTRACT.
func (r *Run) WriteInventory(inventory *model.InventoryFullV1) error {
	return r.writeJSON(fileInventory, inventory)
}

// WritePlan writes plan.v1.json. Called once, at the end of PLAN — even
// when the run later fails validation, the plan that was executed is kept
// for inspection.
func (r *Run) WritePlan(plan *model.PlanV1) error {
	return r.writeJSON(filePlan, plan)
}

// WriteDiffReport writes diff.report.json, the per-operation applied/noop
// record from EXECUTE. Called once, at the end of EXECUTE, regardless of
// the eventual validation outcome.
func (r *Run) WriteDiffReport(results []model.OperationResult) error {
	report := DiffReport{SchemaVersion: model.SchemaVersion, Operations: results}
	return r.writeJSON(fileDiffReport, report)
}

// WriteAfter copies the working-copy DOCX and writes after_structure.v1.json.
// Called only when the run commits: a rolled-back or failed-validation run
// has no after.docx or after_structure.v1.json, since neither reflects a
// promoted output.
func (r *Run) WriteAfter(workingCopyPath string, structure *model.StructureV1) error {
	if err := copyFile(workingCopyPath, filepath.Join(r.dir, fileAfterDocx)); err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	return r.writeJSON(fileAfterStructure, structure)
}

// WriteWarnings appends every entry to warnings.log, one line each, in the
// order given. Safe to call multiple times across a run's stages; each
// call appends rather than truncates.
func (r *Run) WriteWarnings(stage string, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(r.dir, fileWarningsLog), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	defer f.Close()

	for _, w := range warnings {
		entry := WarningEntry{Stage: stage, Reason: w}
		line := fmt.Sprintf("%s\t%s\t%s\n", time.Now().UTC().Format(time.RFC3339), entry.Stage, entry.Reason)
		if _, err := f.WriteString(line); err != nil {
			return apperr.Wrap(apperr.AuditError, "auditor", err)
		}
	}
	return nil
}

// Finalize writes result.status.txt with exactly one status value. It is
// the last write of a run, and the only file whose presence and content
// callers should trust as "this run reached a terminal state."
func (r *Run) Finalize(status model.RunStatus) error {
	path := filepath.Join(r.dir, fileResultStatus)
	if err := os.WriteFile(path, []byte(string(status)+"\n"), 0o644); err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	return nil
}

func (r *Run) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, name), data, 0o644); err != nil {
		return apperr.Wrap(apperr.AuditError, "auditor", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("auditor: open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("auditor: create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("auditor: copy %s to %s: %w", src, dst, err)
	}
	return out.Close()
}
