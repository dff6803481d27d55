package autoword

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const fixtureDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Hello, world.</w:t></w:r></w:p>
</w:body>
</w:document>`

const fixtureSettingsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`

// fixtureStylesXML defines the three styles the default validation rules
// require (config.Default's StyleSpecs), with exactly the specified fonts,
// sizes, weights and line spacing.
const fixtureStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:pPr><w:spacing w:line="480" w:lineRule="atLeast"/></w:pPr><w:rPr><w:rFonts w:eastAsia="宋体"/><w:sz w:val="24"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="Heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:line="480" w:lineRule="atLeast"/></w:pPr><w:rPr><w:rFonts w:eastAsia="楷体"/><w:b/><w:sz w:val="24"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="Heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:spacing w:line="480" w:lineRule="atLeast"/></w:pPr><w:rPr><w:rFonts w:eastAsia="宋体"/><w:b/><w:sz w:val="24"/></w:rPr></w:style>
</w:styles>`

func writeFixtureDocx(t *testing.T, path string) {
	t.Helper()
	doc, err := automation.NewDocumentFromXML(
		map[string][]byte{
			"word/document.xml": []byte(fixtureDocumentXML),
			"word/settings.xml": []byte(fixtureSettingsXML),
			"word/styles.xml":   []byte(fixtureStylesXML),
		},
		[]string{"word/document.xml", "word/settings.xml", "word/styles.xml"},
	)
	if err != nil {
		t.Fatalf("build fixture document: %v", err)
	}
	if err := doc.Save(path); err != nil {
		t.Fatalf("save fixture document: %v", err)
	}
}

type fakeLMClient struct {
	reply string
	err   error
}

func (f *fakeLMClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestProcessDocument_UpdateTOCCommitsSuccessfully(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeFixtureDocx(t, docxPath)

	client := &fakeLMClient{reply: `{"schema_version":"v1","ops":[{"operation":"update_toc"}]}`}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	result, err := ProcessDocument(context.Background(), docxPath, "refresh the table of contents", client, Options{
		AuditDir: t.TempDir(),
	}, log)
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if result.Status != model.StatusSuccess {
		t.Fatalf("status: got %q, want SUCCESS (errors: %v)", result.Status, result.Errors)
	}
	if _, err := os.Stat(filepath.Join(result.AuditDir, "result.status.txt")); err != nil {
		t.Fatalf("expected result.status.txt: %v", err)
	}
}

func TestProcessDocument_MalformedPlanReplyIsInvalidPlan(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeFixtureDocx(t, docxPath)

	client := &fakeLMClient{reply: "not json at all"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	result, err := ProcessDocument(context.Background(), docxPath, "anything", client, Options{
		AuditDir: t.TempDir(),
	}, log)
	if err != nil {
		t.Fatalf("ProcessDocument: %v", err)
	}
	if result.Status != model.StatusInvalidPlan {
		t.Fatalf("status: got %q, want INVALID_PLAN", result.Status)
	}
}

func TestProcessDocument_RejectsOutOfRangeConfig(t *testing.T) {
	docxPath := filepath.Join(t.TempDir(), "input.docx")
	writeFixtureDocx(t, docxPath)

	client := &fakeLMClient{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := ProcessDocument(context.Background(), docxPath, "anything", client, Options{
		AuditDir:    t.TempDir(),
		Temperature: 5,
	}, log)
	if err == nil {
		t.Fatal("expected a config validation error")
	}
}
