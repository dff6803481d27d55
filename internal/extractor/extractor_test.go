package extractor

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>摘要</w:t></w:r></w:p>
<w:p><w:r><w:t>Summary body text.</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>正文</w:t></w:r></w:p>
<w:p><w:r><w:t>Main body text.</w:t></w:r></w:p>
</w:body>
</w:document>`

const testStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="Heading 1"/><w:rPr><w:sz w:val="32"/><w:b/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Normal" w:default="1"><w:name w:val="Normal"/></w:style>
</w:styles>`

const testCoreXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">
<dc:title>Sample Report</dc:title>
<dc:creator>Test Author</dc:creator>
<dcterms:created>2026-01-01T00:00:00Z</dcterms:created>
<dcterms:modified>2026-01-02T00:00:00Z</dcterms:modified>
</cp:coreProperties>`

const testAppXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties">
<Application>Microsoft Office Word</Application>
</Properties>`

const testRevisionDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Kept text. </w:t></w:r><w:ins w:id="1" w:author="reviewer"><w:r><w:t>Inserted text.</w:t></w:r></w:ins><w:del w:id="2" w:author="reviewer"><w:r><w:delText>Deleted text.</w:delText></w:r></w:del></w:p>
</w:body>
</w:document>`

func writeTestDocx(t *testing.T, documentXML string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create docx: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	parts := map[string]string{
		"word/document.xml":  documentXML,
		"word/styles.xml":    testStylesXML,
		"docProps/core.xml":  testCoreXML,
		"docProps/app.xml":   testAppXML,
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create part %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write part %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestExtract_BuildsStructureAndInventory(t *testing.T) {
	path := writeTestDocx(t, testDocumentXML)
	e := New()

	structure, inventory, warnings, err := e.Extract(path, "accept")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if structure.SchemaVersion == "" {
		t.Fatal("empty schema version")
	}
	if len(structure.Paragraphs) != 4 {
		t.Fatalf("expected 4 paragraphs, got %d", len(structure.Paragraphs))
	}
	if len(structure.Headings) != 2 {
		t.Fatalf("expected 2 headings, got %d", len(structure.Headings))
	}
	if structure.Metadata.Title != "Sample Report" {
		t.Fatalf("Metadata.Title = %q", structure.Metadata.Title)
	}
	if structure.Metadata.Author != "Test Author" {
		t.Fatalf("Metadata.Author = %q", structure.Metadata.Author)
	}
	if structure.Metadata.WordCount == 0 {
		t.Fatal("expected nonzero word count")
	}
	if len(structure.Styles) != 2 {
		t.Fatalf("expected 2 styles, got %d", len(structure.Styles))
	}
	if inventory.SchemaVersion == "" {
		t.Fatal("empty inventory schema version")
	}
}

func TestExtract_AcceptRevisionStrategy(t *testing.T) {
	path := writeTestDocx(t, testRevisionDocumentXML)
	e := New()

	structure, _, _, err := e.Extract(path, "accept")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got := structure.Paragraphs[0].PreviewText
	if !strings.Contains(got, "Kept text.") || !strings.Contains(got, "Inserted text.") || strings.Contains(got, "Deleted text.") {
		t.Fatalf("accept strategy preview mismatch: %q", got)
	}
}

func TestExtract_RejectRevisionStrategy(t *testing.T) {
	path := writeTestDocx(t, testRevisionDocumentXML)
	e := New()

	structure, _, _, err := e.Extract(path, "reject")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	got := structure.Paragraphs[0].PreviewText
	if !strings.Contains(got, "Kept text.") || !strings.Contains(got, "Deleted text.") || strings.Contains(got, "Inserted text.") {
		t.Fatalf("reject strategy preview mismatch: %q", got)
	}
}

func TestExtract_BypassRevisionStrategyWarns(t *testing.T) {
	path := writeTestDocx(t, testRevisionDocumentXML)
	e := New()

	_, _, warnings, err := e.Extract(path, "bypass")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a bypass warning")
	}
}

func TestExtract_UnknownRevisionStrategy(t *testing.T) {
	path := writeTestDocx(t, testDocumentXML)
	e := New()

	if _, _, _, err := e.Extract(path, "not-a-real-strategy"); err == nil {
		t.Fatal("expected an error for an unknown revision strategy")
	}
}
