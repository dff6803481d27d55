package automation

// TableNode is one <w:tbl> plus its row/column geometry and the paragraph
// indices contained in every cell.
type TableNode struct {
	Node           *Node
	Index          int
	AnchorParaIdx  int // index of the first paragraph following/inside the table
	Rows           int
	Columns        int
	HasHeader      bool
	StyleName      string
	CellReferences [][]int // one slice of paragraph indices per cell, row-major
}

// Tables walks the body for every <w:tbl>, in document order, using the
// paragraph index assignment already computed by Paragraphs so cell
// references point at the same indices structure.v1 exposes.
func (d *Document) Tables(paragraphs []*ParagraphNode) []*TableNode {
	nodeToIndex := map[*Node]int{}
	for _, p := range paragraphs {
		nodeToIndex[p.Node] = p.Index
	}

	var tables []*TableNode
	tblIdx := -1
	var walk func(n *Node)
	walk = func(n *Node) {
		for _, c := range n.Children {
			if c.Local() == "tbl" {
				tblIdx++
				tables = append(tables, buildTable(c, tblIdx, nodeToIndex))
				continue
			}
			walk(c)
		}
	}
	walk(d.Body)
	return tables
}

func buildTable(tbl *Node, index int, nodeToIndex map[*Node]int) *TableNode {
	t := &TableNode{Node: tbl, Index: index, AnchorParaIdx: -1}

	if grid, ok := tbl.Child("tblGrid"); ok {
		for _, c := range grid.Children {
			if c.Local() == "gridCol" {
				t.Columns++
			}
		}
	}

	if props, ok := tbl.Child("tblPr"); ok {
		if styleRef, ok := props.Child("tblStyle"); ok {
			t.StyleName, _ = styleRef.Attribute("val")
		}
	}

	rowIdx := 0
	for _, row := range tbl.Children {
		if row.Local() != "tr" {
			continue
		}
		t.Rows++
		if rowIdx == 0 {
			if trPr, ok := row.Child("trPr"); ok {
				if _, ok := trPr.Child("tblHeader"); ok {
					t.HasHeader = true
				}
			}
		}
		var rowRefs []int
		colCount := 0
		for _, cell := range row.Children {
			if cell.Local() != "tc" {
				continue
			}
			colCount++
			for _, p := range cell.Descendants("p") {
				if idx, ok := nodeToIndex[p]; ok {
					rowRefs = append(rowRefs, idx)
					if t.AnchorParaIdx == -1 {
						t.AnchorParaIdx = idx
					}
				}
			}
		}
		if colCount > t.Columns {
			t.Columns = colCount
		}
		t.CellReferences = append(t.CellReferences, rowRefs)
		rowIdx++
	}
	return t
}

// RemoveRow deletes one <w:tr> from its enclosing table. Used when a
// deleted heading resides inside a table cell: the spec requires removing
// the enclosing row rather than splitting the table.
func RemoveRow(tbl *Node, rowNode *Node) {
	tbl.RemoveChild(rowNode)
}

// EnclosingTableRow returns the nearest ancestor <w:tr> of n, or nil if n
// is not inside a table row.
func EnclosingTableRow(n *Node) *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Local() == "tr" {
			return cur
		}
	}
	return nil
}

// EnclosingTable returns the nearest ancestor <w:tbl> of n, or nil.
func EnclosingTable(n *Node) *Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Local() == "tbl" {
			return cur
		}
	}
	return nil
}
