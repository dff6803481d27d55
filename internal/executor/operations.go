// Package executor applies a whitelisted plan.v1 to a working-copy
// document through the automation object model. The whitelist is a closed
// Go sum type — Operation is implemented by exactly six concrete structs —
// so a stray operation kind cannot reach the dispatch switch; anything
// outside the six is rejected upstream by the Planner gateway before this
// package ever sees it.
package executor

import (
	"fmt"

	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/localization"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// Outcome is one operation's applied/noop verdict, paired with an optional
// reason recorded to the warnings sink.
type Outcome struct {
	Applied bool
	Warning string
}

func applied() Outcome        { return Outcome{Applied: true} }
func noop(reason string) Outcome { return Outcome{Applied: false, Warning: reason} }

// Operation is the closed interface every whitelisted atomic mutation
// implements. apply never partially commits: it either mutates the
// document fully or returns a noop Outcome with no observable change.
type Operation interface {
	Kind() model.OpKind
	apply(doc *automation.Document, loc *localization.Table) (Outcome, error)
}

// DeleteSectionByHeading implements delete_section_by_heading.
type DeleteSectionByHeading struct {
	HeadingText     string
	Level           int
	Match           model.MatchMode
	CaseSensitive   bool
	OccurrenceIndex int // 0 means "first match", matching the spec's 1-based occurrence_index? default
}

func (op *DeleteSectionByHeading) Kind() model.OpKind { return model.OpDeleteSectionByHeading }

func (op *DeleteSectionByHeading) apply(doc *automation.Document, _ *localization.Table) (Outcome, error) {
	paragraphs := doc.Paragraphs()
	headings, _ := doc.Headings(paragraphs)

	want := op.OccurrenceIndex
	if want == 0 {
		want = 1
	}

	seen := 0
	var target *automation.HeadingNode
	for _, h := range headings {
		if h.Level != op.Level {
			continue
		}
		if !matchesHeadingText(h.Text, op.HeadingText, op.Match, op.CaseSensitive) {
			continue
		}
		seen++
		if seen == want {
			target = h
			break
		}
	}
	if target == nil {
		return noop(fmt.Sprintf("no heading matched %q at level %d (occurrence %d)", op.HeadingText, op.Level, want)), nil
	}

	if target.InTable {
		if !automation.DeleteEnclosingRow(target.Node) {
			return noop("heading was reported in-table but its row could not be located"), nil
		}
		return applied(), nil
	}

	doc.DeleteSection(target.Node, op.Level, headings)
	return applied(), nil
}

func matchesHeadingText(text, needle string, mode model.MatchMode, caseSensitive bool) bool {
	if mode == model.MatchRegex {
		re, err := compileRegex(needle, caseSensitive)
		if err != nil {
			return false
		}
		return re.MatchString(text)
	}

	if !caseSensitive {
		text = foldCase(text)
		needle = foldCase(needle)
	}
	switch mode {
	case model.MatchExact, "":
		return text == needle
	case model.MatchContains:
		return automation.MatchesText(text, needle, "contains")
	default:
		return false
	}
}

// UpdateTOC implements update_toc.
type UpdateTOC struct{}

func (op *UpdateTOC) Kind() model.OpKind { return model.OpUpdateTOC }

func (op *UpdateTOC) apply(doc *automation.Document, _ *localization.Table) (Outcome, error) {
	paragraphs := doc.Paragraphs()
	fields := doc.Fields(paragraphs)

	hasTOC := false
	for _, f := range fields {
		if automation.FieldTypeOf(f.Code) == "TOC" {
			f.MarkFieldDirty()
			hasTOC = true
		}
	}
	if !hasTOC {
		return noop("document contains no TOC field"), nil
	}
	if err := doc.SetSettingsUpdateFields(); err != nil {
		return Outcome{}, err
	}
	return applied(), nil
}

// DeleteTOC implements delete_toc.
type DeleteTOC struct {
	Mode model.TOCDeleteMode
}

func (op *DeleteTOC) Kind() model.OpKind { return model.OpDeleteTOC }

func (op *DeleteTOC) apply(doc *automation.Document, _ *localization.Table) (Outcome, error) {
	paragraphs := doc.Paragraphs()
	fields := doc.Fields(paragraphs)

	var tocFields []*automation.FieldNode
	for _, f := range fields {
		if automation.FieldTypeOf(f.Code) == "TOC" {
			tocFields = append(tocFields, f)
		}
	}
	if len(tocFields) == 0 {
		return noop("document contains no TOC field"), nil
	}

	var toRemove []*automation.FieldNode
	switch op.Mode {
	case model.TOCDeleteFirst, "":
		toRemove = tocFields[:1]
	case model.TOCDeleteLast:
		toRemove = tocFields[len(tocFields)-1:]
	case model.TOCDeleteAll:
		toRemove = tocFields
	}

	for _, f := range toRemove {
		p := paragraphs[f.ParagraphIndex].Node
		automation.RemoveFieldAndParagraph(p, f)
	}
	return applied(), nil
}

// SetStyleRule implements set_style_rule.
type SetStyleRule struct {
	TargetStyle string
	Mutation    automation.StyleMutation
}

func (op *SetStyleRule) Kind() model.OpKind { return model.OpSetStyleRule }

func (op *SetStyleRule) apply(doc *automation.Document, loc *localization.Table) (Outcome, error) {
	resolved := loc.ResolveStyle(op.TargetStyle, doc.StyleNames())
	rec, ok := doc.StyleByName(resolved)
	if !ok {
		rec, ok = doc.StyleByID(resolved)
	}
	if !ok {
		return noop(fmt.Sprintf("style %q (resolved from %q) not found in document", resolved, op.TargetStyle)), nil
	}

	mutation := op.Mutation
	if mutation.FontEastAsian != nil {
		resolvedFont := loc.ResolveFont(*mutation.FontEastAsian)
		mutation.FontEastAsian = &resolvedFont
	}
	if mutation.FontLatin != nil {
		resolvedFont := loc.ResolveFont(*mutation.FontLatin)
		mutation.FontLatin = &resolvedFont
	}

	automation.ApplyStyleMutation(rec.Node, mutation)
	return applied(), nil
}

// ReassignParagraphsToStyle implements reassign_paragraphs_to_style.
type ReassignParagraphsToStyle struct {
	Selector              model.ParagraphSelector
	TargetStyle           string
	ClearDirectFormatting bool
}

func (op *ReassignParagraphsToStyle) Kind() model.OpKind {
	return model.OpReassignParagraphsToStyle
}

func (op *ReassignParagraphsToStyle) apply(doc *automation.Document, loc *localization.Table) (Outcome, error) {
	resolvedTarget := loc.ResolveStyle(op.TargetStyle, doc.StyleNames())
	rec, ok := doc.StyleByName(resolvedTarget)
	if !ok {
		rec, ok = doc.StyleByID(resolvedTarget)
	}
	if !ok {
		return Outcome{}, fmt.Errorf("executor: reassign_paragraphs_to_style: target style %q not found", op.TargetStyle)
	}

	paragraphs := doc.Paragraphs()
	headings, _ := doc.Headings(paragraphs)
	headingLevelByIndex := map[int]int{}
	for _, h := range headings {
		headingLevelByIndex[h.ParagraphIndex] = h.Level
	}

	matched := 0
	for _, p := range paragraphs {
		if !selectorMatches(op.Selector, p, headingLevelByIndex[p.Index]) {
			continue
		}
		automation.SetParagraphStyle(p.Node, rec.StyleID)
		if op.ClearDirectFormatting {
			automation.ClearDirectFormatting(p.Node)
		}
		matched++
	}
	if matched == 0 {
		return noop("no paragraph matched the selector"), nil
	}
	return applied(), nil
}

func selectorMatches(sel model.ParagraphSelector, p *automation.ParagraphNode, headingLevel int) bool {
	if sel.CurrentStyle != "" && sel.CurrentStyle != p.StyleID {
		return false
	}
	if sel.HeadingLevel != 0 && sel.HeadingLevel != headingLevel {
		return false
	}
	if sel.TextContains != "" && !automation.MatchesText(p.Text, sel.TextContains, string(sel.Position)) {
		return false
	}
	return true
}

// ClearDirectFormatting implements clear_direct_formatting. Its
// authorization token is checked upstream by the Planner gateway; the
// Executor re-checks it defensively since it is the last line of defense
// against a document-wide mutation.
type ClearDirectFormatting struct {
	Scope         model.FormattingScope
	RangeSpec     string
	Authorization string
}

func (op *ClearDirectFormatting) Kind() model.OpKind { return model.OpClearDirectFormatting }

func (op *ClearDirectFormatting) apply(doc *automation.Document, _ *localization.Table) (Outcome, error) {
	if op.Authorization != model.ExplicitUserRequestToken {
		return Outcome{}, fmt.Errorf("executor: clear_direct_formatting: missing authorization token")
	}

	switch op.Scope {
	case model.ScopeDocument:
		for _, p := range doc.Paragraphs() {
			automation.ClearDirectFormatting(p.Node)
		}
		return applied(), nil

	case model.ScopeStyle:
		rec, ok := doc.StyleByName(op.RangeSpec)
		if !ok {
			rec, ok = doc.StyleByID(op.RangeSpec)
		}
		if !ok {
			return noop(fmt.Sprintf("style %q not found for STYLE scope", op.RangeSpec)), nil
		}
		count := 0
		for _, p := range doc.Paragraphs() {
			if p.StyleID == rec.StyleID {
				automation.ClearDirectFormatting(p.Node)
				count++
			}
		}
		if count == 0 {
			return noop("no paragraph uses the target style"), nil
		}
		return applied(), nil

	case model.ScopeSelection:
		count := 0
		for _, p := range doc.Paragraphs() {
			if automation.MatchesText(p.Text, op.RangeSpec, "contains") {
				automation.ClearDirectFormatting(p.Node)
				count++
			}
		}
		if count == 0 {
			return noop("no paragraph matched the selection range_spec"), nil
		}
		return applied(), nil

	default:
		return Outcome{}, fmt.Errorf("executor: clear_direct_formatting: unknown scope %q", op.Scope)
	}
}
