package automation

import "strings"

// FieldNode is one OOXML field, whether encoded as a single <w:fldSimple>
// or as a begin/separate/end <w:fldChar> run sequence.
type FieldNode struct {
	Code           string // the raw field instruction, e.g. `TOC \o "1-3" \h \z \u`
	Result         string
	ParagraphIndex int
	IsLocked       bool
	NeedsUpdate    bool
	// beginRun/endRun/simple identify the nodes to mutate or delete for
	// delete_toc / update_toc; simple is set instead of begin/end for the
	// fldSimple encoding.
	beginRun *Node
	endRun   *Node
	simple   *Node
}

// FieldTypeOf classifies a field's instruction code by its leading keyword.
func FieldTypeOf(code string) string {
	trimmed := strings.TrimSpace(code)
	upper := strings.ToUpper(trimmed)
	for _, kw := range []string{"TOC", "PAGE", "REF", "HYPERLINK", "DATE", "FILENAME"} {
		if strings.HasPrefix(upper, kw) {
			return kw
		}
	}
	return "OTHER"
}

// Fields scans the body's runs in document order for both field encodings.
func (d *Document) Fields(paragraphs []*ParagraphNode) []*FieldNode {
	nodeToIndex := map[*Node]int{}
	for _, p := range paragraphs {
		nodeToIndex[p.Node] = p.Index
	}

	var fields []*FieldNode
	var pending *FieldNode
	var resultBuf strings.Builder
	inResult := false

	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Local() == "p" {
			paraIdx := nodeToIndex[n]
			walkRunsInParagraph(n, paraIdx, &fields, &pending, &resultBuf, &inResult)
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(d.Body)
	return fields
}

func walkRunsInParagraph(p *Node, paraIdx int, fields *[]*FieldNode, pending **FieldNode, resultBuf *strings.Builder, inResult *bool) {
	for _, r := range p.Children {
		if r.Local() == "fldSimple" {
			instr, _ := r.Attribute("instr")
			f := &FieldNode{
				Code:           instr,
				Result:         r.TextContent(),
				ParagraphIndex: paraIdx,
				simple:         r,
			}
			if dirty, ok := r.Attribute("dirty"); ok {
				f.NeedsUpdate = dirty == "true" || dirty == "1"
			}
			*fields = append(*fields, f)
			continue
		}
		if r.Local() != "r" {
			continue
		}
		fldChar, hasFldChar := r.Child("fldChar")
		if hasFldChar {
			kind, _ := fldChar.Attribute("fldCharType")
			switch kind {
			case "begin":
				*pending = &FieldNode{ParagraphIndex: paraIdx, beginRun: r}
				*inResult = false
				resultBuf.Reset()
				if lock, ok := fldChar.Attribute("fldLock"); ok {
					(*pending).IsLocked = lock == "true" || lock == "1"
				}
				if dirty, ok := fldChar.Attribute("dirty"); ok {
					(*pending).NeedsUpdate = dirty == "true" || dirty == "1"
				}
			case "separate":
				*inResult = true
			case "end":
				if *pending != nil {
					(*pending).endRun = r
					(*pending).Result = resultBuf.String()
					*fields = append(*fields, *pending)
				}
				*pending = nil
				*inResult = false
			}
			continue
		}
		if instrText, ok := r.Child("instrText"); ok && *pending != nil {
			(*pending).Code += instrText.Text
			continue
		}
		if *inResult && *pending != nil {
			resultBuf.WriteString(r.TextContent())
		}
	}
}

// MarkFieldDirty flags a field for recomputation on next open, the
// pure-data equivalent of forcing a TOC update without a live layout
// engine to actually repaginate.
func (f *FieldNode) MarkFieldDirty() {
	if f.simple != nil {
		f.simple.SetAttribute("dirty", "true")
		return
	}
	if f.beginRun != nil {
		if fc, ok := f.beginRun.Child("fldChar"); ok {
			fc.SetAttribute("dirty", "true")
		}
	}
}

// RemoveFieldAndParagraph deletes a field. If the field's containing
// paragraph consists solely of the field's runs (the common case for a
// standalone TOC paragraph), the whole paragraph is removed too so the
// document doesn't retain an empty line.
func RemoveFieldAndParagraph(p *Node, f *FieldNode) {
	if f.simple != nil {
		f.simple.RemoveSelf()
	} else if f.beginRun != nil && f.endRun != nil {
		removeRunRange(p, f.beginRun, f.endRun)
	}
	if len(p.Children) == 0 || p.TextContent() == "" {
		p.RemoveSelf()
	}
}

func removeRunRange(p *Node, begin, end *Node) {
	startIdx, endIdx := -1, -1
	for i, c := range p.Children {
		if c == begin {
			startIdx = i
		}
		if c == end {
			endIdx = i
			break
		}
	}
	if startIdx == -1 || endIdx == -1 || endIdx < startIdx {
		return
	}
	p.Children = append(p.Children[:startIdx], p.Children[endIdx+1:]...)
}
