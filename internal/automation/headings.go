package automation

import (
	"strconv"
	"strings"
)

// HeadingNode is a filtered, occurrence-ordered view over paragraphs.
type HeadingNode struct {
	Node            *Node
	Text            string
	Level           int
	StyleName       string
	ParagraphIndex  int
	InTable         bool
	TableIndex      int
	OccurrenceIndex int // 1-based rank among headings sharing (Text, Level)
}

// Headings derives the heading list from paragraphs, in document order,
// resolving level from the paragraph's w:outlineLvl first and falling
// back to a style-name pattern match (covers the common case of a style
// applied without an explicit outline level, e.g. a pasted document).
// A resolved level above 9 (w:outlineLvl 9 or higher) is not clamped:
// Headings returns a warning for it and treats the paragraph as body text
// rather than as a heading. A paragraph with neither signal is body text
// and gets no warning.
func (d *Document) Headings(paragraphs []*ParagraphNode) ([]*HeadingNode, []string) {
	var out []*HeadingNode
	var warnings []string
	occurrence := map[string]int{}

	for _, p := range paragraphs {
		styleName := ""
		if rec, ok := d.StyleByID(p.StyleID); ok {
			styleName = rec.Name
		}

		level, ok := headingLevel(p.OutlineLvl, styleName)
		if !ok {
			continue
		}
		if level < 1 || level > 9 {
			warnings = append(warnings, "heading level out of range on paragraph "+strconv.Itoa(p.Index)+", treating as body text")
			continue
		}

		key := p.Text + "\x00" + strconv.Itoa(level)
		occurrence[key]++

		h := &HeadingNode{
			Node:            p.Node,
			Text:            p.Text,
			Level:           level,
			StyleName:       styleName,
			ParagraphIndex:  p.Index,
			InTable:         p.InTable,
			TableIndex:      p.TableIndex,
			OccurrenceIndex: occurrence[key],
		}
		out = append(out, h)
	}
	return out, warnings
}

// headingLevel resolves a heading level from the OOXML outline level first,
// then a style-name heuristic covering the English, French, German, and
// Chinese built-in heading style families.
func headingLevel(outlineLvl int, styleName string) (int, bool) {
	if outlineLvl >= 0 {
		return outlineLvl + 1, true
	}

	lower := strings.ToLower(strings.TrimSpace(styleName))
	if lower == "title" {
		return 1, true
	}
	if lower == "标题" {
		return 1, true
	}

	for _, prefix := range []string{"heading", "titre", "überschrift", "标题 ", "标题"} {
		if strings.HasPrefix(lower, prefix) {
			rest := strings.TrimSpace(lower[len(prefix):])
			if n, ok := parseSmallInt(rest); ok && n >= 1 && n <= 9 {
				return n, true
			}
		}
	}
	return 0, false
}

func parseSmallInt(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

