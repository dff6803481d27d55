package automation

import (
	"bytes"
	"fmt"
	"strings"
)

// Node is a generic, mutable XML element tree. WordprocessingML documents
// are edited as trees of Node rather than through a schema-generated
// binding: the object model this package exposes (paragraphs, runs,
// styles, fields) is a thin, purpose-built view over these trees, and
// markup the pipeline doesn't understand round-trips through untouched
// because the tree preserves every attribute, child, and namespace prefix
// it did not itself add or remove.
//
// Parsing keeps element and attribute names literal (including their "w:",
// "r:", "wp:" ... prefixes) rather than resolving them against declared
// namespace URIs the way encoding/xml's Decoder does by default: OOXML
// documents are opened and re-saved by the same process, never merged with
// documents using different prefix conventions, so literal prefixes are
// simpler and safer here than URI resolution followed by re-synthesising
// prefixes on write.
type Node struct {
	Name     string // e.g. "w:p", literal including prefix
	Attr     []Attr
	Children []*Node
	Text     string // accumulated character data, only meaningful on leaves
	SelfClosing bool
	Parent   *Node
}

// Attr is a literal name/value XML attribute pair.
type Attr struct {
	Name  string // e.g. "w:val"
	Value string
}

// ParseXML decodes an XML document into a Node tree rooted at its single
// top-level element, skipping the XML declaration, comments, and
// processing instructions.
func ParseXML(data []byte) (*Node, error) {
	p := &xmlParser{data: data}
	p.skipProlog()

	var root *Node
	var stack []*Node

	for p.pos < len(p.data) {
		if p.peekByte() != '<' {
			text := p.readUntil('<')
			if len(stack) > 0 {
				stack[len(stack)-1].Text += unescape(text)
			}
			continue
		}

		if p.hasPrefix("<!--") {
			p.skipUntil("-->")
			continue
		}
		if p.hasPrefix("<?") {
			p.skipUntil("?>")
			continue
		}
		if p.hasPrefix("<!") {
			p.skipUntil(">")
			continue
		}
		if p.hasPrefix("</") {
			p.pos += 2
			p.readUntil('>')
			p.pos++ // consume '>'
			if len(stack) == 0 {
				return nil, fmt.Errorf("xmlnode: unbalanced end tag")
			}
			stack = stack[:len(stack)-1]
			continue
		}

		// Start tag or self-closing tag.
		p.pos++ // consume '<'
		name, attrs, selfClosing := p.readTag()
		n := &Node{Name: name, Attr: attrs, SelfClosing: selfClosing}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			n.Parent = parent
			parent.Children = append(parent.Children, n)
		} else if root == nil {
			root = n
		}
		if !selfClosing {
			stack = append(stack, n)
		}
	}

	if root == nil {
		return nil, fmt.Errorf("xmlnode: no root element found")
	}
	return root, nil
}

type xmlParser struct {
	data []byte
	pos  int
}

func (p *xmlParser) peekByte() byte {
	if p.pos >= len(p.data) {
		return 0
	}
	return p.data[p.pos]
}

func (p *xmlParser) hasPrefix(s string) bool {
	return bytes.HasPrefix(p.data[p.pos:], []byte(s))
}

func (p *xmlParser) skipProlog() {
	for {
		// skip leading whitespace
		for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
			p.pos++
		}
		if p.hasPrefix("<?") {
			p.skipUntil("?>")
			continue
		}
		if p.hasPrefix("<!--") {
			p.skipUntil("-->")
			continue
		}
		break
	}
}

func (p *xmlParser) skipUntil(marker string) {
	idx := bytes.Index(p.data[p.pos:], []byte(marker))
	if idx < 0 {
		p.pos = len(p.data)
		return
	}
	p.pos += idx + len(marker)
}

func (p *xmlParser) readUntil(b byte) string {
	start := p.pos
	idx := bytes.IndexByte(p.data[p.pos:], b)
	if idx < 0 {
		p.pos = len(p.data)
		return string(p.data[start:])
	}
	p.pos += idx
	return string(p.data[start:p.pos])
}

// readTag parses the element name and attributes following an already
// consumed '<', up to and including the closing '>'.
func (p *xmlParser) readTag() (name string, attrs []Attr, selfClosing bool) {
	start := p.pos
	for p.pos < len(p.data) && !isSpace(p.data[p.pos]) && p.data[p.pos] != '>' && p.data[p.pos] != '/' {
		p.pos++
	}
	name = string(p.data[start:p.pos])

	for {
		for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
			p.pos++
		}
		if p.pos >= len(p.data) {
			break
		}
		if p.data[p.pos] == '/' {
			selfClosing = true
			p.pos++
			continue
		}
		if p.data[p.pos] == '>' {
			p.pos++
			break
		}

		attrStart := p.pos
		for p.pos < len(p.data) && p.data[p.pos] != '=' && !isSpace(p.data[p.pos]) && p.data[p.pos] != '>' && p.data[p.pos] != '/' {
			p.pos++
		}
		attrName := string(p.data[attrStart:p.pos])
		for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
			p.pos++
		}
		var val string
		if p.pos < len(p.data) && p.data[p.pos] == '=' {
			p.pos++
			for p.pos < len(p.data) && isSpace(p.data[p.pos]) {
				p.pos++
			}
			if p.pos < len(p.data) && (p.data[p.pos] == '"' || p.data[p.pos] == '\'') {
				quote := p.data[p.pos]
				p.pos++
				valStart := p.pos
				for p.pos < len(p.data) && p.data[p.pos] != quote {
					p.pos++
				}
				val = unescape(string(p.data[valStart:p.pos]))
				if p.pos < len(p.data) {
					p.pos++ // consume closing quote
				}
			}
		}
		if attrName != "" {
			attrs = append(attrs, Attr{Name: attrName, Value: val})
		}
	}
	return name, attrs, selfClosing
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	r := strings.NewReplacer(
		"&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&",
	)
	return r.Replace(s)
}

func escape(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;",
	)
	return r.Replace(s)
}

// Render serializes the tree back to XML, preserving attribute order,
// literal element/attribute names, and prefixes.
func (n *Node) Render() []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	n.render(&buf)
	return buf.Bytes()
}

func (n *Node) render(buf *bytes.Buffer) {
	buf.WriteByte('<')
	buf.WriteString(n.Name)
	for _, a := range n.Attr {
		buf.WriteByte(' ')
		buf.WriteString(a.Name)
		buf.WriteString(`="`)
		buf.WriteString(escape(a.Value))
		buf.WriteByte('"')
	}
	if len(n.Children) == 0 && n.Text == "" {
		buf.WriteString("/>")
		return
	}
	buf.WriteByte('>')
	if len(n.Children) == 0 {
		buf.WriteString(escape(n.Text))
	}
	for _, c := range n.Children {
		c.render(buf)
	}
	buf.WriteString("</")
	buf.WriteString(n.Name)
	buf.WriteByte('>')
}

// Local reports the element's unprefixed local name (e.g. "p" for "w:p").
func (n *Node) Local() string {
	if i := strings.IndexByte(n.Name, ':'); i >= 0 {
		return n.Name[i+1:]
	}
	return n.Name
}

// Attribute returns the value of the named attribute (matched by local
// name, ignoring prefix) and whether it was present.
func (n *Node) Attribute(local string) (string, bool) {
	for _, a := range n.Attr {
		if localOf(a.Name) == local {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute sets or replaces an attribute by local name, preserving the
// original prefix if the attribute already exists, or adding it under the
// "w:" prefix (the common case for every attribute this pipeline writes)
// if it doesn't.
func (n *Node) SetAttribute(local, value string) {
	for i, a := range n.Attr {
		if localOf(a.Name) == local {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, Attr{Name: "w:" + local, Value: value})
}

// Child returns the first direct child whose local name matches.
func (n *Node) Child(local string) (*Node, bool) {
	for _, c := range n.Children {
		if c.Local() == local {
			return c, true
		}
	}
	return nil, false
}

// ChildOrCreate returns the first direct child matching local, creating and
// appending an empty one (with the given literal, prefixed name) at the
// front of n's children if absent — OOXML property elements like pPr/rPr
// must precede their sibling content to be valid.
func (n *Node) ChildOrCreate(local, qualifiedName string) *Node {
	if c, ok := n.Child(local); ok {
		return c
	}
	c := &Node{Name: qualifiedName, Parent: n, SelfClosing: true}
	n.Children = append([]*Node{c}, n.Children...)
	return c
}

// Descendants returns every node in the subtree (including n) whose local
// name matches, in document order.
func (n *Node) Descendants(local string) []*Node {
	var out []*Node
	var walk func(*Node)
	walk = func(cur *Node) {
		if cur.Local() == local {
			out = append(out, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// TextContent concatenates every descendant "t" element's text, the
// WordprocessingML convention for a run's visible text.
func (n *Node) TextContent() string {
	var sb strings.Builder
	for _, t := range n.Descendants("t") {
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// RemoveChild detaches child from n's children slice. A no-op if child is
// not a direct child of n.
func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			return
		}
	}
}

// RemoveSelf detaches n from its parent.
func (n *Node) RemoveSelf() {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
		n.Parent = nil
	}
}

// IndexInParent returns n's position among its parent's children, or -1 if
// n has no parent.
func (n *Node) IndexInParent() int {
	if n.Parent == nil {
		return -1
	}
	for i, c := range n.Parent.Children {
		if c == n {
			return i
		}
	}
	return -1
}

func localOf(s string) string {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return s[i+1:]
	}
	return s
}
