// Package automation stands in for the word-processing automation object
// model the specification assumes: an application capable of opening and
// saving DOCX, and exposing styles, paragraphs, fields, tables, headings,
// and raw OOXML part access. There is no portable, dependency-available Go
// binding to a running Word instance, so the reference Handle operates
// directly on the OOXML zip container — the same object-model surface
// (styles/paragraphs/fields/tables), without a live external process.
//
// Handle is a non-copyable, scoped resource: acquired once per run and
// released on every exit path, including panics, so a second run can never
// observe a half-open document.
package automation

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
)

const (
	partDocument   = "word/document.xml"
	partStyles     = "word/styles.xml"
	partCore       = "docProps/core.xml"
	partApp        = "docProps/app.xml"
	partSettings   = "word/settings.xml"
	partNumbering  = "word/numbering.xml"
	partFootnotes  = "word/footnotes.xml"
	partEndnotes   = "word/endnotes.xml"
)

// Handle owns exclusive access to one open Document at a time, mirroring
// the single automation instance a real Word process would be.
type Handle struct {
	mu   sync.Mutex
	open bool
}

// NewHandle constructs an unopened automation handle.
func NewHandle() *Handle { return &Handle{} }

// Open reads path into memory and returns a mutable Document. Errors on
// malformed input are plain errors with no apperr kind; callers classify
// them themselves (EXTRACTION_ERROR or EXECUTION_ERROR), since this
// package does not know which stage is calling it.
func (h *Handle) Open(path string) (*Document, error) {
	h.mu.Lock()
	if h.open {
		h.mu.Unlock()
		return nil, fmt.Errorf("automation: handle already has an open document")
	}
	h.open = true
	h.mu.Unlock()

	doc, err := openZip(path)
	if err != nil {
		h.mu.Lock()
		h.open = false
		h.mu.Unlock()
		return nil, err
	}
	doc.handle = h
	return doc, nil
}

// release is called by Document.Close to return the handle to an unopened
// state.
func (h *Handle) release() {
	h.mu.Lock()
	h.open = false
	h.mu.Unlock()
}

// part is one raw zip entry, order-preserved so Save reproduces the same
// part ordering the input had for every part it doesn't rewrite.
type part struct {
	name string
	data []byte
}

// Document is an in-memory, mutable view of an open DOCX package. The
// document.xml and styles.xml parts are parsed into Node trees for
// structural access and mutation; every other part is retained as opaque
// bytes and copied through verbatim on Save unless explicitly replaced.
type Document struct {
	handle *Handle
	path   string

	parts    []part          // ordered, for stable zip output
	partIdx  map[string]int  // name -> index into parts

	documentRoot *Node // word/document.xml root <w:document>
	Body         *Node // word/document.xml's <w:body>
	Styles       *Node // word/styles.xml root <w:styles>

	closed bool
}

func openZip(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("automation: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("automation: stat %s: %w", path, err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("automation: not a valid OOXML package: %w", err)
	}

	var ordered []part
	for _, zf := range zr.File {
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("automation: open part %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("automation: read part %s: %w", zf.Name, err)
		}
		ordered = append(ordered, part{name: zf.Name, data: data})
	}

	doc, err := newDocumentFromParts(ordered)
	if err != nil {
		return nil, err
	}
	doc.path = path
	return doc, nil
}

// newDocumentFromParts builds a Document from an ordered list of raw parts,
// parsing word/document.xml and word/styles.xml into Node trees. Shared by
// openZip (real files) and NewDocumentFromXML (in-memory construction for
// tests and other callers that already have OOXML fragments in hand).
func newDocumentFromParts(parts []part) (*Document, error) {
	doc := &Document{partIdx: map[string]int{}}
	for _, p := range parts {
		doc.partIdx[p.name] = len(doc.parts)
		doc.parts = append(doc.parts, p)
	}

	docXML, ok := doc.rawPart(partDocument)
	if !ok {
		return nil, fmt.Errorf("automation: %s not found in package", partDocument)
	}
	root, err := ParseXML(docXML)
	if err != nil {
		return nil, fmt.Errorf("automation: parse %s: %w", partDocument, err)
	}
	body, ok := root.Child("body")
	if !ok {
		return nil, fmt.Errorf("automation: %s has no w:body", partDocument)
	}
	doc.Body = body
	doc.documentRoot = root

	if stylesXML, ok := doc.rawPart(partStyles); ok {
		stylesRoot, err := ParseXML(stylesXML)
		if err != nil {
			return nil, fmt.Errorf("automation: parse %s: %w", partStyles, err)
		}
		doc.Styles = stylesRoot
	}

	return doc, nil
}

// NewDocumentFromXML builds a Document directly from an ordered set of raw
// package parts, without a zip container. Used by tests across packages
// that need a working Document without writing a real DOCX file to disk;
// the automation.Handle single-open guarantee does not apply since no
// Handle is involved.
func NewDocumentFromXML(parts map[string][]byte, order []string) (*Document, error) {
	ordered := make([]part, 0, len(order))
	for _, name := range order {
		data, ok := parts[name]
		if !ok {
			continue
		}
		ordered = append(ordered, part{name: name, data: data})
	}
	return newDocumentFromParts(ordered)
}

func (d *Document) rawPart(name string) ([]byte, bool) {
	idx, ok := d.partIdx[name]
	if !ok {
		return nil, false
	}
	return d.parts[idx].data, true
}

// PartXML returns the raw bytes of a package part by name, for parts the
// object model does not parse into a tree (headers, footers, footnotes,
// endnotes, numbering, settings, custom XML).
func (d *Document) PartXML(name string) (string, bool) {
	data, ok := d.rawPart(name)
	if !ok {
		return "", false
	}
	return string(data), true
}

// PartNames returns every zip entry name in the package, in archive order.
func (d *Document) PartNames() []string {
	names := make([]string, len(d.parts))
	for i, p := range d.parts {
		names[i] = p.name
	}
	return names
}

// ReplacePart overwrites (or adds) a raw part with new bytes.
func (d *Document) ReplacePart(name string, data []byte) {
	if idx, ok := d.partIdx[name]; ok {
		d.parts[idx].data = data
		return
	}
	d.partIdx[name] = len(d.parts)
	d.parts = append(d.parts, part{name: name, data: data})
}

// SetSettingsUpdateFields sets <w:updateFields w:val="true"/> in
// word/settings.xml, the mechanism a real Word instance uses to force
// field (including TOC) recomputation and repagination on next open.
func (d *Document) SetSettingsUpdateFields() error {
	data, ok := d.rawPart(partSettings)
	if !ok {
		return fmt.Errorf("automation: %s not present", partSettings)
	}
	root, err := ParseXML(data)
	if err != nil {
		return fmt.Errorf("automation: parse %s: %w", partSettings, err)
	}
	uf := root.ChildOrCreate("updateFields", "w:updateFields")
	uf.SetAttribute("val", "true")
	d.ReplacePart(partSettings, root.Render())
	return nil
}

// Save re-renders the document.xml and styles.xml trees, applies any
// direct part replacements, and writes a new zip archive to outPath.
func (d *Document) Save(outPath string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return apperr.Wrap(apperr.ExecutionError, "automation", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	docData := d.documentRoot.Render()
	d.ReplacePart(partDocument, docData)
	if d.Styles != nil {
		d.ReplacePart(partStyles, d.Styles.Render())
	}

	// Sort by original index to keep archive layout stable and
	// deterministic across saves of the same in-memory state.
	ordered := append([]part(nil), d.parts...)
	sort.SliceStable(ordered, func(i, j int) bool { return d.partIdx[ordered[i].name] < d.partIdx[ordered[j].name] })

	for _, p := range ordered {
		w, err := zw.Create(p.name)
		if err != nil {
			return apperr.Wrap(apperr.ExecutionError, "automation", err)
		}
		if _, err := w.Write(p.data); err != nil {
			return apperr.Wrap(apperr.ExecutionError, "automation", err)
		}
	}
	if err := zw.Close(); err != nil {
		return apperr.Wrap(apperr.ExecutionError, "automation", err)
	}
	return nil
}

// Close releases the owning Handle so a subsequent Open can succeed. It
// does not discard in-memory state; callers that want to abandon changes
// simply drop the Document reference.
func (d *Document) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if d.handle != nil {
		d.handle.release()
	}
	return nil
}

// Bytes returns the current in-memory document.xml and styles.xml
// serialised, without touching disk — used by the Validator to compare a
// working copy's structural state without an intermediate Save/Open.
func (d *Document) Bytes(name string) ([]byte, bool) {
	switch name {
	case partDocument:
		return d.documentRoot.Render(), true
	case partStyles:
		if d.Styles == nil {
			return nil, false
		}
		return d.Styles.Render(), true
	default:
		return d.rawPart(name)
	}
}

