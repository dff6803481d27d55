package planner

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/hazyhaar/autoword-vnext/internal/model"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// SchemaConformance rejects a plan missing required top-level fields or
// with an op missing its own required operation discriminator.
// Unrecognized fields never reach it: decodePlan rejects them.
func SchemaConformance(p *model.PlanV1) error {
	if p.SchemaVersion == "" {
		return invalid("schema_version", "required field is missing or empty")
	}
	if p.SchemaVersion != model.SchemaVersion {
		return invalid("schema_version", "unsupported schema version %q, want %q", p.SchemaVersion, model.SchemaVersion)
	}
	if len(p.Ops) == 0 {
		return invalid("ops", "plan must contain at least one operation")
	}
	for i, op := range p.Ops {
		if op.Operation == "" {
			return invalid(opPath(i, "operation"), "required field is missing or empty")
		}
	}
	return nil
}

// WhitelistConformance rejects any operation outside the closed six-op set.
func WhitelistConformance(p *model.PlanV1) error {
	for i, op := range p.Ops {
		if !model.IsWhitelisted(op.Operation) {
			return invalid(opPath(i, "operation"), "operation %q is not in the whitelist", op.Operation)
		}
	}
	return nil
}

// ParameterSanity checks numeric ranges, enum membership, and the
// clear_direct_formatting authorization token, per operation kind.
func ParameterSanity(p *model.PlanV1) error {
	for i, op := range p.Ops {
		path := func(field string) string { return opPath(i, field) }

		switch op.Operation {
		case model.OpDeleteSectionByHeading:
			if op.HeadingText == "" {
				return invalid(path("heading_text"), "must not be empty")
			}
			if op.Level < 1 || op.Level > 9 {
				return invalid(path("level"), "must be in [1,9], got %d", op.Level)
			}
			switch op.Match {
			case "", model.MatchExact, model.MatchContains, model.MatchRegex:
			default:
				return invalid(path("match"), "unknown match mode %q", op.Match)
			}
			if op.OccurrenceIndex < 0 {
				return invalid(path("occurrence_index"), "must not be negative")
			}

		case model.OpUpdateTOC:
			// no parameters to check

		case model.OpDeleteTOC:
			switch op.Mode {
			case model.TOCDeleteAll, model.TOCDeleteFirst, model.TOCDeleteLast:
			default:
				return invalid(path("mode"), "unknown TOC delete mode %q", op.Mode)
			}

		case model.OpSetStyleRule:
			if op.TargetStyle == "" {
				return invalid(path("target_style"), "must not be empty")
			}
			if op.FontSizePt != nil && (*op.FontSizePt < 6 || *op.FontSizePt > 72) {
				return invalid(path("font_size_pt"), "must be in [6,72], got %v", *op.FontSizePt)
			}
			if op.FontColorHex != nil && !hexColorPattern.MatchString(*op.FontColorHex) {
				return invalid(path("font_color_hex"), "must match #RRGGBB, got %q", *op.FontColorHex)
			}
			if op.LineSpacingMode != nil {
				switch *op.LineSpacingMode {
				case model.LineSpacingSingle, model.LineSpacingMultiple, model.LineSpacingExactly:
				default:
					return invalid(path("line_spacing_mode"), "unknown line spacing mode %q", *op.LineSpacingMode)
				}
			}
			if op.Alignment != nil {
				switch *op.Alignment {
				case model.AlignLeft, model.AlignCenter, model.AlignRight, model.AlignJustify:
				default:
					return invalid(path("alignment"), "unknown alignment %q", *op.Alignment)
				}
			}

		case model.OpReassignParagraphsToStyle:
			if op.TargetStyle == "" {
				return invalid(path("target_style"), "must not be empty")
			}
			if op.Selector == nil {
				return invalid(path("selector"), "must be present")
			}
			if op.Selector.HeadingLevel != 0 && (op.Selector.HeadingLevel < 1 || op.Selector.HeadingLevel > 9) {
				return invalid(path("selector.heading_level"), "must be in [1,9], got %d", op.Selector.HeadingLevel)
			}
			switch op.Selector.Position {
			case "", model.PositionStartsWith, model.PositionEndsWith, model.PositionContains:
			default:
				return invalid(path("selector.position"), "unknown position mode %q", op.Selector.Position)
			}

		case model.OpClearDirectFormatting:
			switch op.Scope {
			case model.ScopeDocument, model.ScopeSelection, model.ScopeStyle:
			default:
				return invalid(path("scope"), "unknown scope %q", op.Scope)
			}
			if op.Authorization != model.ExplicitUserRequestToken {
				return invalid(path("authorization"), "clear_direct_formatting requires the literal authorization token")
			}
		}
	}
	return nil
}

// StructuralCoherence checks that referenced names/levels are
// syntactically valid. It never checks existence against the document —
// unmatched targets are the Executor's NOOP territory, not a planning
// rejection.
func StructuralCoherence(p *model.PlanV1) error {
	for i, op := range p.Ops {
		path := func(field string) string { return opPath(i, field) }
		if op.Operation == model.OpDeleteSectionByHeading && op.Match == model.MatchRegex {
			if _, err := regexp.Compile(op.HeadingText); err != nil {
				return invalid(path("heading_text"), "invalid regex: %v", err)
			}
		}
	}
	return nil
}

func opPath(index int, field string) string {
	return fmt.Sprintf("ops[%s].%s", strconv.Itoa(index), field)
}
