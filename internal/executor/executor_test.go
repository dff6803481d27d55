package executor

import (
	"strings"
	"testing"

	"github.com/hazyhaar/autoword-vnext/internal/automation"
	"github.com/hazyhaar/autoword-vnext/internal/localization"
	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const testDocumentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>摘要</w:t></w:r></w:p>
<w:p><w:r><w:t>Summary body text.</w:t></w:r></w:p>
<w:p><w:pPr><w:pStyle w:val="Heading1"/><w:outlineLvl w:val="0"/></w:pPr><w:r><w:t>正文</w:t></w:r></w:p>
<w:p><w:r><w:t>Main body text.</w:t></w:r></w:p>
<w:p><w:fldSimple w:instr="TOC \o &quot;1-3&quot; \h \z \u"><w:r><w:t>1. 摘要 ... 1</w:t></w:r></w:fldSimple></w:p>
</w:body>
</w:document>`

const testStylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="Heading 1"/><w:rPr><w:sz w:val="32"/><w:b/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="Normal" w:default="1"><w:name w:val="Normal"/></w:style>
</w:styles>`

const testSettingsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:settings xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
</w:settings>`

func newTestDoc(t *testing.T) *automation.Document {
	t.Helper()
	parts := map[string][]byte{
		"word/document.xml": []byte(testDocumentXML),
		"word/styles.xml":   []byte(testStylesXML),
		"word/settings.xml": []byte(testSettingsXML),
	}
	order := []string{"word/document.xml", "word/styles.xml", "word/settings.xml"}
	doc, err := automation.NewDocumentFromXML(parts, order)
	if err != nil {
		t.Fatalf("NewDocumentFromXML: %v", err)
	}
	return doc
}

func newTestLoc() *localization.Table {
	return localization.New(nil, nil, nil)
}

func TestExecute_DeleteSectionByHeading(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpDeleteSectionByHeading, HeadingText: "摘要", Level: 1, Match: model.MatchExact},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	for _, p := range doc.Paragraphs() {
		if p.Text == "摘要" {
			t.Fatal("heading survived deletion")
		}
	}
}

func TestExecute_DeleteSectionByHeading_NoMatchIsNoop(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpDeleteSectionByHeading, HeadingText: "结论", Level: 1, Match: model.MatchExact},
	}}

	results, warnings, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "noop" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the noop")
	}
}

func TestExecute_UpdateTOC(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{{Operation: model.OpUpdateTOC}}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	settingsXML, _ := doc.PartXML("word/settings.xml")
	if !strings.Contains(settingsXML, "updateFields") {
		t.Fatalf("expected updateFields written to settings.xml, got %q", settingsXML)
	}
}

func TestExecute_DeleteTOC(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpDeleteTOC, Mode: model.TOCDeleteAll},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	paragraphs := doc.Paragraphs()
	fields := doc.Fields(paragraphs)
	if len(fields) != 0 {
		t.Fatalf("expected no fields remaining, got %d", len(fields))
	}
}

func TestExecute_SetStyleRule(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	size := 14.0
	bold := false
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpSetStyleRule, TargetStyle: "Heading 1", FontSizePt: &size, FontBold: &bold},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	rec, _ := doc.StyleByID("Heading1")
	_, _, sizePt, bold2, _, _, _ := automation.FontProps(rec.Node)
	if sizePt != 14 {
		t.Fatalf("sizePt: got %v", sizePt)
	}
	if bold2 {
		t.Fatal("expected bold cleared")
	}
}

func TestExecute_SetStyleRule_MissingStyleIsNoop(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	size := 14.0
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpSetStyleRule, TargetStyle: "NoSuchStyle", FontSizePt: &size},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "noop" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
}

func TestExecute_ReassignParagraphsToStyle(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{
			Operation:   model.OpReassignParagraphsToStyle,
			TargetStyle: "Heading 1",
			Selector:    &model.ParagraphSelector{TextContains: "Main body"},
		},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
	found := false
	for _, p := range doc.Paragraphs() {
		if strings.Contains(p.Text, "Main body") {
			if p.StyleID != "Heading1" {
				t.Fatalf("expected paragraph reassigned to Heading1, got %q", p.StyleID)
			}
			found = true
		}
	}
	if !found {
		t.Fatal("target paragraph not found")
	}
}

func TestExecute_ClearDirectFormatting_RequiresAuthorization(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpClearDirectFormatting, Scope: model.ScopeDocument, Authorization: ""},
	}}

	_, _, err := e.Execute(doc, plan)
	if err == nil {
		t.Fatal("expected an error for missing authorization")
	}
}

func TestExecute_ClearDirectFormatting_Document(t *testing.T) {
	doc := newTestDoc(t)
	e := New(newTestLoc(), nil)
	plan := &model.PlanV1{Ops: []model.OperationSpec{
		{Operation: model.OpClearDirectFormatting, Scope: model.ScopeDocument, Authorization: model.ExplicitUserRequestToken},
	}}

	results, _, err := e.Execute(doc, plan)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if results[0].Outcome != "applied" {
		t.Fatalf("outcome: got %q", results[0].Outcome)
	}
}
