package automation

import "strings"

// ParagraphNode is one <w:p> element plus the dense document-order index
// assigned to it. Every other structural view (headings, tables, fields)
// references paragraphs by this index rather than holding the Node
// pointer, matching structure.v1's integer-reference convention.
type ParagraphNode struct {
	Node       *Node
	Index      int
	StyleID    string
	Text       string
	OutlineLvl int  // -1 if not present
	InTable    bool
	TableIndex int // valid only if InTable
}

// Paragraphs walks the body in document order, assigning dense 0-based
// indices to every <w:p>, wherever it is nested (including table cells).
func (d *Document) Paragraphs() []*ParagraphNode {
	var out []*ParagraphNode
	idx := 0
	var walk func(n *Node, inTable bool, tableIndex int)
	tableCounter := -1
	walk = func(n *Node, inTable bool, tableIndex int) {
		for _, c := range n.Children {
			switch c.Local() {
			case "tbl":
				tableCounter++
				walk(c, true, tableCounter)
			case "p":
				pn := &ParagraphNode{
					Node:       c,
					Index:      idx,
					StyleID:    paragraphStyleID(c),
					Text:       c.TextContent(),
					OutlineLvl: paragraphOutlineLvl(c),
					InTable:    inTable,
					TableIndex: tableIndex,
				}
				idx++
				out = append(out, pn)
			default:
				walk(c, inTable, tableIndex)
			}
		}
	}
	walk(d.Body, false, -1)
	return out
}

func paragraphStyleID(p *Node) string {
	pPr, ok := p.Child("pPr")
	if !ok {
		return ""
	}
	pStyle, ok := pPr.Child("pStyle")
	if !ok {
		return ""
	}
	val, _ := pStyle.Attribute("val")
	return val
}

// paragraphOutlineLvl returns the paragraph's w:outlineLvl value (0-based,
// per OOXML convention) or -1 if absent.
func paragraphOutlineLvl(p *Node) int {
	pPr, ok := p.Child("pPr")
	if !ok {
		return -1
	}
	ol, ok := pPr.Child("outlineLvl")
	if !ok {
		return -1
	}
	val, ok := ol.Attribute("val")
	if !ok {
		return -1
	}
	n := 0
	for _, r := range val {
		if r < '0' || r > '9' {
			return -1
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// PreviewText truncates s to at most maxScalars Unicode scalars, never
// splitting inside a surrogate — irrelevant in Go's UTF-8 []rune model,
// where every rune is a complete scalar value by construction, but the cap
// itself still matters for the contract.
func PreviewText(s string, maxScalars int) string {
	runes := []rune(s)
	if len(runes) <= maxScalars {
		return s
	}
	return string(runes[:maxScalars])
}

// SetParagraphStyle rewrites (or creates) the paragraph's w:pStyle
// reference.
func SetParagraphStyle(p *Node, styleID string) {
	pPr := p.ChildOrCreate("pPr", "w:pPr")
	pStyle := pPr.ChildOrCreate("pStyle", "w:pStyle")
	pStyle.SetAttribute("val", styleID)
}

// ClearDirectFormatting removes the paragraph's rPr (run-level default
// formatting) on pPr, and every run's own rPr, leaving style-defined
// formatting untouched.
func ClearDirectFormatting(p *Node) {
	if pPr, ok := p.Child("pPr"); ok {
		if rPr, ok := pPr.Child("rPr"); ok {
			pPr.RemoveChild(rPr)
		}
	}
	for _, r := range p.Children {
		if r.Local() != "r" {
			continue
		}
		if rPr, ok := r.Child("rPr"); ok {
			r.RemoveChild(rPr)
		}
	}
}

// MatchesText reports whether text matches the requested selector text
// under the given position mode. An empty mode behaves like "contains",
// and an empty needle matches any text.
func MatchesText(text, needle string, mode string) bool {
	switch mode {
	case "starts_with":
		return strings.HasPrefix(text, needle)
	case "ends_with":
		return strings.HasSuffix(text, needle)
	default: // "contains" and unset
		return strings.Contains(text, needle)
	}
}
