// Package validator re-extracts a modified document and checks it against
// the fixed assertion families the pipeline promises before it will ever
// commit a run: chapter, style, TOC, pagination, and structural integrity.
// A single failure in any family means the orchestrator must roll back;
// warnings alone never do.
package validator

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// Extractor is the narrow surface Validate needs from internal/extractor,
// kept as an interface so tests can substitute a fixture-backed stub
// without opening a real DOCX file.
type Extractor interface {
	Extract(path string, revisionStrategy string) (*model.StructureV1, *model.InventoryFullV1, []string, error)
}

// Validator re-runs extraction on the modified document and evaluates
// every assertion family against the (before, after) pair.
type Validator struct {
	extractor Extractor
	rules     []Rule
	log       *slog.Logger
}

// New constructs a Validator with the standard five assertion families, in
// the order spec.md lists them: chapter, style, TOC, pagination, integrity.
func New(extractor Extractor, log *slog.Logger) *Validator {
	if log == nil {
		log = slog.Default()
	}
	return &Validator{
		extractor: extractor,
		log:       log,
		rules: []Rule{
			ChapterAssertion,
			StyleAssertion,
			TOCAssertion,
			PaginationAssertion,
			IntegrityAssertion,
		},
	}
}

// Validate re-extracts modifiedDocxPath (never a diff-only shortcut) and
// runs every rule against (before, after). The re-extraction always uses
// the "bypass" revision strategy: the working copy is the pipeline's own
// output, not user-authored input, so no tracked-change reconciliation is
// meaningful here. The re-extracted structure is returned alongside the
// result so the caller can write it to after_structure.v1.json without a
// second, possibly divergent, extraction pass.
func (v *Validator) Validate(before *model.StructureV1, modifiedDocxPath string, cfg *config.ValidationConfig) (*model.ValidationResult, *model.StructureV1, error) {
	after, _, extractWarnings, err := v.extractor.Extract(modifiedDocxPath, "bypass")
	if err != nil {
		return nil, nil, apperr.Wrap(apperr.ExtractionError, "validator", fmt.Errorf("re-extract modified document: %w", err))
	}

	result := &model.ValidationResult{IsValid: true}
	result.Warnings = append(result.Warnings, extractWarnings...)

	for _, rule := range v.rules {
		failures, warnings := rule(before, after, cfg)
		result.Failures = append(result.Failures, failures...)
		result.Warnings = append(result.Warnings, warnings...)
	}

	result.IsValid = len(result.Failures) == 0
	if !result.IsValid {
		v.log.Warn("validator: validation failed", "failure_count", len(result.Failures))
	} else {
		v.log.Info("validator: all assertions passed", "warning_count", len(result.Warnings))
	}
	return result, after, nil
}
