package executor

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/localization"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// Executor applies a plan.v1 to an already-open working copy, one
// operation at a time, in plan order. It never opens or closes the
// Document itself: exclusive ownership of the automation handle for the
// duration of a run belongs to the orchestrator.
type Executor struct {
	loc *localization.Table
	log *slog.Logger
}

// New constructs an Executor bound to loc, the resolved localisation table
// for this run's config.
func New(loc *localization.Table, log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{loc: loc, log: log}
}

// Execute runs every operation in plan against doc. Each operation commits
// fully or is recorded as a NOOP; there is no partial-operation state. A
// hard error (a rejected authorization token, a missing required target)
// aborts the whole run so the orchestrator can trigger rollback.
func (e *Executor) Execute(doc *automation.Document, plan *model.PlanV1) ([]model.OperationResult, []string, error) {
	results := make([]model.OperationResult, 0, len(plan.Ops))
	var warnings []string

	for i, spec := range plan.Ops {
		op, err := Compile(spec)
		if err != nil {
			return results, warnings, apperr.Wrap(apperr.ExecutionError, "executor", err)
		}

		outcome, err := op.apply(doc, e.loc)
		if err != nil {
			return results, warnings, apperr.Wrap(apperr.ExecutionError, "executor", fmt.Errorf("op %d (%s): %w", i, op.Kind(), err))
		}

		warnings = append(warnings, e.loc.Warnings()...)

		result := model.OperationResult{Index: i, Operation: op.Kind()}
		if outcome.Applied {
			result.Outcome = "applied"
		} else {
			result.Outcome = "noop"
			result.Warning = outcome.Warning
			warnings = append(warnings, fmt.Sprintf("op %d (%s): NOOP: %s", i, op.Kind(), outcome.Warning))
			e.log.Warn("executor: operation was a NOOP", "index", i, "operation", op.Kind(), "reason", outcome.Warning)
		}
		results = append(results, result)
	}

	return results, warnings, nil
}
