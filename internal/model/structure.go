// Package model defines the versioned data contracts exchanged between
// pipeline stages: structure.v1, inventory.full.v1, plan.v1, and the diff
// report. Every wire type carries a schema_version discriminator and is
// decoded with unknown fields rejected, so a stage that gets handed a
// document it does not understand fails loudly instead of silently
// truncating it.
package model

// SchemaVersion is the discriminator value written into every stage
// artifact produced by this build of the pipeline.
const SchemaVersion = "v1"

// StructureV1 is the lossy skeleton projection of a DOCX: everything the
// Planner needs to reason about the document without seeing raw OOXML.
type StructureV1 struct {
	SchemaVersion string      `json:"schema_version"`
	Metadata      Metadata    `json:"metadata"`
	Styles        []Style     `json:"styles"`
	Paragraphs    []Paragraph `json:"paragraphs"`
	Headings      []Heading   `json:"headings"`
	Fields        []Field     `json:"fields"`
	Tables        []Table     `json:"tables"`
}

// Metadata mirrors docProps/core.xml and docProps/app.xml plus derived
// counts computed during the structure walk.
type Metadata struct {
	Title             string `json:"title"`
	Author            string `json:"author"`
	CreatedTime       string `json:"created_time"`
	ModifiedTime      string `json:"modified_time"`
	ApplicationVersion string `json:"application_version"`
	PageCount         int    `json:"page_count"`
	ParagraphCount    int    `json:"paragraph_count"`
	WordCount         int    `json:"word_count"`
}

// StyleType enumerates the OOXML style families.
type StyleType string

const (
	StyleParagraph StyleType = "paragraph"
	StyleCharacter StyleType = "character"
	StyleTable     StyleType = "table"
	StyleLinked    StyleType = "linked"
)

// Alignment enumerates paragraph horizontal alignment.
type Alignment string

const (
	AlignLeft    Alignment = "LEFT"
	AlignCenter  Alignment = "CENTER"
	AlignRight   Alignment = "RIGHT"
	AlignJustify Alignment = "JUSTIFY"
)

// LineSpacingMode enumerates the OOXML line-rule values relevant to planning.
type LineSpacingMode string

const (
	LineSpacingSingle   LineSpacingMode = "SINGLE"
	LineSpacingMultiple LineSpacingMode = "MULTIPLE"
	LineSpacingExactly  LineSpacingMode = "EXACTLY"
)

// Font describes the resolved font properties of a style.
type Font struct {
	EastAsianName string `json:"east_asian_name,omitempty"`
	LatinName     string `json:"latin_name,omitempty"`
	SizePt        float64 `json:"size_pt,omitempty"`
	Bold          bool   `json:"bold"`
	Italic        bool   `json:"italic"`
	Underline     bool   `json:"underline"`
	ColorHex      string `json:"color_hex,omitempty"`
}

// ParagraphFormat describes the resolved paragraph-level properties of a style.
type ParagraphFormat struct {
	LineSpacingMode  LineSpacingMode `json:"line_spacing_mode,omitempty"`
	LineSpacingValue float64         `json:"line_spacing_value,omitempty"`
	SpaceBeforePt    float64         `json:"space_before_pt,omitempty"`
	SpaceAfterPt     float64         `json:"space_after_pt,omitempty"`
	Alignment        Alignment       `json:"alignment,omitempty"`
	IndentLeftPt     float64         `json:"indent_left_pt,omitempty"`
	IndentRightPt    float64         `json:"indent_right_pt,omitempty"`
	IndentFirstLinePt float64        `json:"indent_first_line_pt,omitempty"`
}

// Style is one entry in the document's style table.
type Style struct {
	Name       string          `json:"name"`
	Type       StyleType       `json:"type"`
	BasedOn    string          `json:"based_on,omitempty"`
	NextStyle  string          `json:"next_style,omitempty"`
	Font       Font            `json:"font"`
	Paragraph  ParagraphFormat `json:"paragraph"`
	IsBuiltin  bool            `json:"is_builtin"`
	IsModified bool            `json:"is_modified"`
}

// Paragraph is one dense, 0-indexed entry in document order.
type Paragraph struct {
	Index        int    `json:"index"`
	StyleName    string `json:"style_name"`
	PreviewText  string `json:"preview_text"`
	IsHeading    bool   `json:"is_heading"`
	HeadingLevel int    `json:"heading_level,omitempty"`
	PageNumber   int    `json:"page_number"`
}

// Heading is a filtered, occurrence-ordered view over Paragraphs.
type Heading struct {
	Text           string `json:"text"`
	Level          int    `json:"level"`
	StyleName      string `json:"style_name"`
	ParagraphIndex int    `json:"paragraph_index"`
	PageNumber     int    `json:"page_number"`
	InTable        bool   `json:"in_table"`
	TableIndex     int    `json:"table_index,omitempty"`
	// OccurrenceIndex is this heading's 1-based rank among headings sharing
	// the same (Text, Level), in document order. Used to disambiguate
	// duplicate-heading targets at execute time.
	OccurrenceIndex int `json:"occurrence_index"`
}

// FieldType enumerates the OOXML field codes the pipeline understands well
// enough to project into structure.v1. Anything else stays opaque in the
// inventory.
type FieldType string

const (
	FieldTOC      FieldType = "TOC"
	FieldPage     FieldType = "PAGE"
	FieldRef      FieldType = "REF"
	FieldHyperlink FieldType = "HYPERLINK"
	FieldDate     FieldType = "DATE"
	FieldFilename FieldType = "FILENAME"
	FieldOther    FieldType = "OTHER"
)

// Field is one OOXML complex field.
type Field struct {
	Type           FieldType `json:"type"`
	Code           string    `json:"code"`
	Result         string    `json:"result"`
	ParagraphIndex int       `json:"paragraph_index"`
	IsLocked       bool      `json:"is_locked"`
	NeedsUpdate    bool      `json:"needs_update"`
}

// Table is a table anchor plus the paragraph indices covered by each cell.
type Table struct {
	Index           int     `json:"index"`
	ParagraphIndex  int     `json:"paragraph_index"`
	Rows            int     `json:"rows"`
	Columns         int     `json:"columns"`
	HasHeader       bool    `json:"has_header"`
	StyleName       string  `json:"style_name,omitempty"`
	CellReferences  [][]int `json:"cell_references"`
}
