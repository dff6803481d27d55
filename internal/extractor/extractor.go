// Package extractor projects an open DOCX into structure.v1 and its
// inventory.full.v1 loss-closure partner. It never mutates the file it is
// given: it opens the path handed to it (the orchestrator passes the
// caller's input file, the validator the modified working copy) through a
// fresh automation.Handle and only reads.
package extractor

import (
	"fmt"

	"github.com/hazyhaar/autoword-vnext/internal/apperr"
	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

// PreviewCap is the maximum number of Unicode scalars structure.v1 keeps
// per paragraph preview.
const PreviewCap = 120

// Extractor walks an open document and produces the two stage artifacts.
type Extractor struct{}

// New returns an Extractor. It carries no state: every call is independent.
func New() *Extractor { return &Extractor{} }

// Extract opens path via a fresh automation.Handle, applies the configured
// revision strategy, and returns structure.v1 plus inventory.full.v1 plus
// any non-fatal warnings (out-of-range heading levels, revision handling
// notes) for the caller to fold into the run's warnings sink. The handle
// is released before returning, successfully or not.
func (e *Extractor) Extract(path string, revisionStrategy string) (*model.StructureV1, *model.InventoryFullV1, []string, error) {
	h := automation.NewHandle()
	doc, err := h.Open(path)
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.ExtractionError, "extractor", err)
	}
	defer doc.Close()

	var revisionWarnings []string
	if err := ApplyRevisionStrategy(doc, revisionStrategy, &revisionWarnings); err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.ExtractionError, "extractor", err)
	}

	structure, warnings, err := e.buildStructure(doc)
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.ExtractionError, "extractor", err)
	}
	allWarnings := append(revisionWarnings, warnings...)

	inventory := e.buildInventory(doc)

	return structure, inventory, allWarnings, nil
}

func (e *Extractor) buildStructure(doc *automation.Document) (*model.StructureV1, []string, error) {
	paragraphs := doc.Paragraphs()
	headingNodes, headingWarnings := doc.Headings(paragraphs)
	tables := doc.Tables(paragraphs)
	fields := doc.Fields(paragraphs)

	structParagraphs := make([]model.Paragraph, len(paragraphs))
	for i, p := range paragraphs {
		styleName := p.StyleID
		if rec, ok := doc.StyleByID(p.StyleID); ok {
			styleName = rec.Name
		}
		level := 0
		isHeading := false
		for _, h := range headingNodes {
			if h.ParagraphIndex == p.Index {
				level = h.Level
				isHeading = true
				break
			}
		}
		structParagraphs[i] = model.Paragraph{
			Index:        p.Index,
			StyleName:    styleName,
			PreviewText:  automation.PreviewText(p.Text, PreviewCap),
			IsHeading:    isHeading,
			HeadingLevel: level,
			PageNumber:   0, // no layout engine; pagination is unknown until re-opened in a real Word instance
		}
	}

	structHeadings := make([]model.Heading, len(headingNodes))
	for i, h := range headingNodes {
		structHeadings[i] = model.Heading{
			Text:            h.Text,
			Level:           h.Level,
			StyleName:       h.StyleName,
			ParagraphIndex:  h.ParagraphIndex,
			PageNumber:      0,
			InTable:         h.InTable,
			TableIndex:      h.TableIndex,
			OccurrenceIndex: h.OccurrenceIndex,
		}
	}

	structTables := make([]model.Table, len(tables))
	for i, t := range tables {
		structTables[i] = model.Table{
			Index:          t.Index,
			ParagraphIndex: t.AnchorParaIdx,
			Rows:           t.Rows,
			Columns:        t.Columns,
			HasHeader:      t.HasHeader,
			StyleName:      t.StyleName,
			CellReferences: t.CellReferences,
		}
	}

	structFields := make([]model.Field, len(fields))
	for i, f := range fields {
		structFields[i] = model.Field{
			Type:           model.FieldType(automation.FieldTypeOf(f.Code)),
			Code:           f.Code,
			Result:         f.Result,
			ParagraphIndex: f.ParagraphIndex,
			IsLocked:       f.IsLocked,
			NeedsUpdate:    f.NeedsUpdate,
		}
	}

	styles := buildStyles(doc)

	metadata, err := extractMetadata(doc, len(paragraphs))
	if err != nil {
		return nil, nil, err
	}

	s := &model.StructureV1{
		SchemaVersion: model.SchemaVersion,
		Metadata:      metadata,
		Styles:        styles,
		Paragraphs:    structParagraphs,
		Headings:      structHeadings,
		Fields:        structFields,
		Tables:        structTables,
	}
	return s, headingWarnings, nil
}

func buildStyles(doc *automation.Document) []model.Style {
	recs := doc.StyleRecords()
	out := make([]model.Style, len(recs))
	for i, r := range recs {
		eastAsian, latin, sizePt, bold, italic, underline, colorHex := automation.FontProps(r.Node)
		lineMode, lineValue, spaceBefore, spaceAfter, alignment := automation.ParagraphFormatProps(r.Node)
		out[i] = model.Style{
			Name:      r.Name,
			Type:      model.StyleType(r.Type),
			BasedOn:   r.BasedOn,
			NextStyle: r.NextStyle,
			Font: model.Font{
				EastAsianName: eastAsian,
				LatinName:     latin,
				SizePt:        sizePt,
				Bold:          bold,
				Italic:        italic,
				Underline:     underline,
				ColorHex:      colorHex,
			},
			Paragraph: model.ParagraphFormat{
				LineSpacingMode:  model.LineSpacingMode(lineMode),
				LineSpacingValue: lineValue,
				SpaceBeforePt:    spaceBefore,
				SpaceAfterPt:     spaceAfter,
				Alignment:        model.Alignment(alignment),
			},
			IsBuiltin:  r.IsBuiltin,
			IsModified: r.IsModified,
		}
	}
	return out
}

func extractMetadata(doc *automation.Document, paragraphCount int) (model.Metadata, error) {
	m := model.Metadata{ParagraphCount: paragraphCount}

	wordCount := 0
	for _, p := range doc.Paragraphs() {
		wordCount += countWords(p.Text)
	}
	m.WordCount = wordCount
	m.PageCount = 0 // requires a layout engine; left at zero pending a real repagination pass

	if core, ok := doc.PartXML("docProps/core.xml"); ok {
		root, err := automation.ParseXML([]byte(core))
		if err != nil {
			return m, fmt.Errorf("extractor: parse docProps/core.xml: %w", err)
		}
		if title, ok := root.Child("title"); ok {
			m.Title = title.Text
		}
		if creator, ok := root.Child("creator"); ok {
			m.Author = creator.Text
		}
		if created, ok := root.Child("created"); ok {
			m.CreatedTime = created.Text
		}
		if modified, ok := root.Child("modified"); ok {
			m.ModifiedTime = modified.Text
		}
	}
	if app, ok := doc.PartXML("docProps/app.xml"); ok {
		root, err := automation.ParseXML([]byte(app))
		if err != nil {
			return m, fmt.Errorf("extractor: parse docProps/app.xml: %w", err)
		}
		if appName, ok := root.Child("Application"); ok {
			m.ApplicationVersion = appName.Text
		}
	}
	return m, nil
}

func countWords(s string) int {
	count := 0
	inWord := false
	for _, r := range s {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
			continue
		}
		if !inWord {
			count++
		}
		inWord = true
	}
	return count
}

func (e *Extractor) buildInventory(doc *automation.Document) *model.InventoryFullV1 {
	inv := &model.InventoryFullV1{
		SchemaVersion:  model.SchemaVersion,
		OOXMLFragments: map[string]string{},
		MediaIndexes:   map[string]model.MediaEntry{},
	}

	fragmentParts := []string{
		"word/header1.xml", "word/header2.xml", "word/header3.xml",
		"word/footer1.xml", "word/footer2.xml", "word/footer3.xml",
		"word/footnotes.xml", "word/endnotes.xml",
		"word/numbering.xml", "word/settings.xml",
	}
	for _, name := range fragmentParts {
		if xmlStr, ok := doc.PartXML(name); ok {
			inv.OOXMLFragments[name] = xmlStr
		}
	}
	for _, name := range doc.PartNames() {
		if isCustomXML(name) {
			if xmlStr, ok := doc.PartXML(name); ok {
				inv.OOXMLFragments[name] = xmlStr
			}
		}
		if isMediaPart(name) {
			inv.MediaIndexes[name] = model.MediaEntry{
				MediaID:  name,
				Filename: name,
				Embedded: true,
			}
		}
	}
	return inv
}

func isCustomXML(name string) bool {
	return len(name) > len("customXML/") && name[:len("customXML/")] == "customXML/"
}

func isMediaPart(name string) bool {
	return len(name) > len("word/media/") && name[:len("word/media/")] == "word/media/"
}
