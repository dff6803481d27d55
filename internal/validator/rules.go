package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hazyhaar/autoword-vnext/internal/config"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// Rule is one independent assertion family. It never mutates before/after;
// it only reads them and reports what it found.
type Rule func(before, after *model.StructureV1, cfg *config.ValidationConfig) (failures, warnings []string)

// ChapterAssertion fails if any level-1 heading matches a configured
// forbidden heading, by case-insensitive substring.
func ChapterAssertion(_, after *model.StructureV1, cfg *config.ValidationConfig) (failures, warnings []string) {
	for _, h := range after.Headings {
		if h.Level != 1 {
			continue
		}
		text := strings.ToLower(strings.TrimSpace(h.Text))
		for _, forbidden := range cfg.ForbiddenLevel1Headings {
			if strings.Contains(text, strings.ToLower(forbidden)) {
				failures = append(failures, fmt.Sprintf(
					"chapter assertion: forbidden heading %q found at level 1 (paragraph %d)",
					h.Text, h.ParagraphIndex))
				break
			}
		}
	}
	return failures, nil
}

// StyleAssertion fails if any configured StyleSpec's target style is
// missing or its font/paragraph properties drift outside tolerance.
// Enums (bold, line spacing mode) tolerate no drift; numeric properties
// tolerate cfg.StyleTolerancePt.
func StyleAssertion(_, after *model.StructureV1, cfg *config.ValidationConfig) (failures, warnings []string) {
	tol := cfg.StyleTolerancePt

	for _, spec := range cfg.StyleSpecs {
		style, ok := findStyleByAlias(after.Styles, spec.Aliases)
		if !ok {
			failures = append(failures, fmt.Sprintf("style assertion: required style %v not found", spec.Aliases))
			continue
		}

		if spec.FontEastAsian != "" && style.Font.EastAsianName != spec.FontEastAsian {
			failures = append(failures, fmt.Sprintf(
				"style assertion: %s font_east_asian is %q, expected %q",
				style.Name, style.Font.EastAsianName, spec.FontEastAsian))
		}
		if diff(style.Font.SizePt, spec.FontSizePt) > tol {
			failures = append(failures, fmt.Sprintf(
				"style assertion: %s font_size_pt is %v, expected %v",
				style.Name, style.Font.SizePt, spec.FontSizePt))
		}
		if style.Font.Bold != spec.FontBold {
			failures = append(failures, fmt.Sprintf(
				"style assertion: %s font_bold is %v, expected %v",
				style.Name, style.Font.Bold, spec.FontBold))
		}
		if spec.LineSpacingMode != "" && string(style.Paragraph.LineSpacingMode) != spec.LineSpacingMode {
			failures = append(failures, fmt.Sprintf(
				"style assertion: %s line_spacing_mode is %q, expected %q",
				style.Name, style.Paragraph.LineSpacingMode, spec.LineSpacingMode))
		}
		if diff(style.Paragraph.LineSpacingValue, spec.LineSpacingValue) > tol {
			failures = append(failures, fmt.Sprintf(
				"style assertion: %s line_spacing_value is %v, expected %v",
				style.Name, style.Paragraph.LineSpacingValue, spec.LineSpacingValue))
		}
	}
	return failures, nil
}

func findStyleByAlias(styles []model.Style, aliases []string) (model.Style, bool) {
	for _, s := range styles {
		for _, alias := range aliases {
			if s.Name == alias {
				return s, true
			}
		}
	}
	return model.Style{}, false
}

func diff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

var tocLevelPattern = regexp.MustCompile(`^([0-9]+(\.[0-9]+)*)\s+`)
var tocPagePattern = regexp.MustCompile(`([0-9]+)\s*$`)

type tocEntry struct {
	Text  string
	Level int
	Page  int
}

// parseTOCEntries splits a TOC field's cached result text into one entry
// per non-empty line, deriving level from a leading dotted-number prefix
// ("1.2 Heading" -> level 2, bare text -> level 1) and page number from a
// trailing integer.
func parseTOCEntries(result string) []tocEntry {
	var entries []tocEntry
	for _, line := range strings.Split(result, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		level := 1
		text := line
		if m := tocLevelPattern.FindStringSubmatch(line); m != nil {
			level = strings.Count(m[1], ".") + 1
			text = strings.TrimSpace(line[len(m[0]):])
		}
		page := 0
		if m := tocPagePattern.FindStringSubmatch(text); m != nil {
			page, _ = strconv.Atoi(m[1])
			text = strings.TrimSpace(text[:len(text)-len(m[0])])
		}
		text = strings.TrimRight(text, ". \t")
		entries = append(entries, tocEntry{Text: text, Level: level, Page: page})
	}
	return entries
}

func textMatchesApproximately(a, b string) bool {
	fold := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	a, b = fold(a), fold(b)
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// TOCAssertion fails if a TOC field's cached entries do not correspond,
// one-for-one in order, to the document's headings by text, level, and
// page number. A document with no TOC field passes vacuously.
func TOCAssertion(_, after *model.StructureV1, _ *config.ValidationConfig) (failures, warnings []string) {
	for _, f := range after.Fields {
		if f.Type != model.FieldTOC {
			continue
		}
		if f.Result == "" {
			failures = append(failures, fmt.Sprintf(
				"toc assertion: TOC field at paragraph %d has no cached result text", f.ParagraphIndex))
			continue
		}
		entries := parseTOCEntries(f.Result)
		if len(entries) != len(after.Headings) {
			failures = append(failures, fmt.Sprintf(
				"toc assertion: TOC has %d entries but document has %d headings",
				len(entries), len(after.Headings)))
		}
		for i, entry := range entries {
			if i >= len(after.Headings) {
				break
			}
			h := after.Headings[i]
			if !textMatchesApproximately(entry.Text, h.Text) {
				failures = append(failures, fmt.Sprintf(
					"toc assertion: entry %q does not match heading %q at position %d", entry.Text, h.Text, i))
			}
			if entry.Level != h.Level {
				failures = append(failures, fmt.Sprintf(
					"toc assertion: entry %q has level %d, heading has level %d", entry.Text, entry.Level, h.Level))
			}
			if entry.Page != 0 && h.PageNumber != 0 && entry.Page != h.PageNumber {
				failures = append(failures, fmt.Sprintf(
					"toc assertion: entry %q has page %d, heading has page %d", entry.Text, entry.Page, h.PageNumber))
			}
		}
	}
	return failures, nil
}

// PaginationAssertion fails if fields were left dirty (needs_update still
// set) or the modification timestamp did not advance, either of which
// means Fields.Update()/Repaginate() never ran against the working copy.
func PaginationAssertion(before, after *model.StructureV1, _ *config.ValidationConfig) (failures, warnings []string) {
	if before.Metadata.ModifiedTime != "" && after.Metadata.ModifiedTime != "" {
		if after.Metadata.ModifiedTime <= before.Metadata.ModifiedTime {
			failures = append(failures, "pagination assertion: modified_time did not advance, fields may not have been updated")
		}
	}
	if after.Metadata.PageCount < 0 {
		failures = append(failures, fmt.Sprintf("pagination assertion: invalid page count %d", after.Metadata.PageCount))
	}
	for _, f := range after.Fields {
		if f.NeedsUpdate {
			failures = append(failures, fmt.Sprintf("pagination assertion: field at paragraph %d still needs_update", f.ParagraphIndex))
		}
	}
	return failures, nil
}

// IntegrityAssertion checks the structural invariants a well-formed
// structure.v1 must hold regardless of what the plan did: paragraph
// indices dense and contiguous from zero, every heading/table/field
// reference points at a real paragraph, and no paragraph references a
// style name absent from the style table. Style-to-style references
// (based_on) are not checked.
func IntegrityAssertion(_, after *model.StructureV1, _ *config.ValidationConfig) (failures, warnings []string) {
	seen := map[int]bool{}
	maxIndex := -1
	for _, p := range after.Paragraphs {
		if seen[p.Index] {
			failures = append(failures, fmt.Sprintf("integrity assertion: duplicate paragraph index %d", p.Index))
		}
		seen[p.Index] = true
		if p.Index > maxIndex {
			maxIndex = p.Index
		}
	}
	for i := 0; i <= maxIndex; i++ {
		if !seen[i] {
			failures = append(failures, fmt.Sprintf("integrity assertion: paragraph indices are not dense/contiguous, missing index %d", i))
		}
	}

	styleNames := map[string]bool{}
	for _, s := range after.Styles {
		styleNames[s.Name] = true
	}
	for _, p := range after.Paragraphs {
		if p.StyleName != "" && !styleNames[p.StyleName] {
			failures = append(failures, fmt.Sprintf("integrity assertion: paragraph %d references undefined style %q", p.Index, p.StyleName))
		}
	}
	for _, h := range after.Headings {
		if h.ParagraphIndex < 0 || h.ParagraphIndex > maxIndex {
			failures = append(failures, fmt.Sprintf("integrity assertion: heading %q references invalid paragraph index %d", h.Text, h.ParagraphIndex))
		}
	}
	for _, t := range after.Tables {
		if t.ParagraphIndex < 0 || t.ParagraphIndex > maxIndex {
			failures = append(failures, fmt.Sprintf("integrity assertion: table at index %d references invalid paragraph index %d", t.Index, t.ParagraphIndex))
		}
		if t.Rows <= 0 || t.Columns <= 0 {
			failures = append(failures, fmt.Sprintf("integrity assertion: table at paragraph %d has invalid dimensions %dx%d", t.ParagraphIndex, t.Rows, t.Columns))
		}
	}
	for _, f := range after.Fields {
		if f.ParagraphIndex < 0 || f.ParagraphIndex > maxIndex {
			failures = append(failures, fmt.Sprintf("integrity assertion: field references invalid paragraph index %d", f.ParagraphIndex))
		}
	}
	return failures, nil
}
