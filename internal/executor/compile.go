package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// Compile turns a validated model.OperationSpec into a concrete Operation.
// It is the one place the flat wire shape is unpacked into the closed sum
// type the dispatch switch in Execute operates on; nothing past this point
// ever looks at an OperationSpec again.
func Compile(spec model.OperationSpec) (Operation, error) {
	switch spec.Operation {
	case model.OpDeleteSectionByHeading:
		return &DeleteSectionByHeading{
			HeadingText:     spec.HeadingText,
			Level:           spec.Level,
			Match:           spec.Match,
			CaseSensitive:   spec.CaseSensitive,
			OccurrenceIndex: spec.OccurrenceIndex,
		}, nil

	case model.OpUpdateTOC:
		return &UpdateTOC{}, nil

	case model.OpDeleteTOC:
		return &DeleteTOC{Mode: spec.Mode}, nil

	case model.OpSetStyleRule:
		return &SetStyleRule{
			TargetStyle: spec.TargetStyle,
			Mutation:    styleMutationFromSpec(spec),
		}, nil

	case model.OpReassignParagraphsToStyle:
		if spec.Selector == nil {
			return nil, fmt.Errorf("executor: reassign_paragraphs_to_style missing selector")
		}
		return &ReassignParagraphsToStyle{
			Selector:              *spec.Selector,
			TargetStyle:           spec.TargetStyle,
			ClearDirectFormatting: spec.ClearDirectFormatting,
		}, nil

	case model.OpClearDirectFormatting:
		return &ClearDirectFormatting{
			Scope:         spec.Scope,
			RangeSpec:     spec.RangeSpec,
			Authorization: spec.Authorization,
		}, nil

	default:
		return nil, fmt.Errorf("executor: operation %q is not in the whitelist", spec.Operation)
	}
}

func styleMutationFromSpec(spec model.OperationSpec) automation.StyleMutation {
	m := automation.StyleMutation{
		FontEastAsian:    spec.FontEastAsian,
		FontLatin:        spec.FontLatin,
		FontSizePt:       spec.FontSizePt,
		FontBold:         spec.FontBold,
		FontItalic:       spec.FontItalic,
		FontColorHex:     spec.FontColorHex,
		SpaceBeforePt:    spec.SpaceBeforePt,
		SpaceAfterPt:     spec.SpaceAfterPt,
		LineSpacingValue: spec.LineSpacingValue,
	}
	if spec.LineSpacingMode != nil {
		v := string(*spec.LineSpacingMode)
		m.LineSpacingMode = &v
	}
	if spec.Alignment != nil {
		v := string(*spec.Alignment)
		m.Alignment = &v
	}
	return m
}

func foldCase(s string) string { return strings.ToLower(s) }

func compileRegex(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}
