package automation

// DeleteSection removes every top-level body child between the heading
// paragraph (inclusive) and the next heading of level <= level (exclusive),
// or end of document if none. Operates only on Body's direct children,
// which is where document.xml places paragraphs and tables in reading
// order; a heading nested inside a table cell is handled by the caller via
// DeleteEnclosingRow instead, since content "after" it doesn't live at the
// body level.
func (d *Document) DeleteSection(headingNode *Node, level int, headings []*HeadingNode) {
	start := headingNode.IndexInParent()
	if start == -1 {
		return
	}

	end := len(d.Body.Children)
	for _, h := range headings {
		if h.Node == headingNode {
			continue
		}
		if h.Level <= level {
			if idx := h.Node.IndexInParent(); idx > start {
				if idx < end {
					end = idx
				}
			}
		}
	}

	d.Body.Children = append(d.Body.Children[:start], d.Body.Children[end:]...)
}

// DeleteEnclosingRow removes the table row containing headingNode, used
// when the deleted section's heading lives inside a merged or ordinary
// table cell.
func DeleteEnclosingRow(headingNode *Node) bool {
	row := EnclosingTableRow(headingNode)
	if row == nil {
		return false
	}
	tbl := EnclosingTable(headingNode)
	if tbl == nil {
		return false
	}
	RemoveRow(tbl, row)
	return true
}
