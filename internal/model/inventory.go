package model

// InventoryFullV1 is the loss-closure partner of StructureV1: everything
// the skeleton cannot represent, keyed so the pair (structure, inventory)
// round-trips the input losslessly for planning and validation purposes.
type InventoryFullV1 struct {
	SchemaVersion    string                `json:"schema_version"`
	OOXMLFragments   map[string]string     `json:"ooxml_fragments"`
	MediaIndexes     map[string]MediaEntry `json:"media_indexes"`
	ContentControls  []OpaqueRef           `json:"content_controls,omitempty"`
	Formulas         []OpaqueRef           `json:"formulas,omitempty"`
	Charts           []OpaqueRef           `json:"charts,omitempty"`
	FootnoteRefs     []FootnoteRef         `json:"footnote_refs,omitempty"`
	EndnoteRefs      []EndnoteRef          `json:"endnote_refs,omitempty"`
	CrossReferences  []CrossReference      `json:"cross_references,omitempty"`
}

// MediaEntry describes one embedded media part.
type MediaEntry struct {
	MediaID     string `json:"media_id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Embedded    bool   `json:"embedded"`
}

// OpaqueRef stands in for a content control, formula, chart, SmartArt
// diagram, or OLE object: a stable key plus the raw OOXML that was captured
// verbatim because the skeleton cannot represent it faithfully.
type OpaqueRef struct {
	Key  string `json:"key"`
	Kind string `json:"kind"`
	XML  string `json:"xml"`
}

// FootnoteRef anchors a footnote body to the paragraph that references it.
type FootnoteRef struct {
	ID             string `json:"id"`
	ParagraphIndex int    `json:"paragraph_index"`
	Text           string `json:"text"`
}

// EndnoteRef anchors an endnote body to the paragraph that references it.
type EndnoteRef struct {
	ID             string `json:"id"`
	ParagraphIndex int    `json:"paragraph_index"`
	Text           string `json:"text"`
}

// CrossReference records a REF-style field target that resolves to another
// location in the document (a heading, bookmark, or numbered item).
type CrossReference struct {
	ParagraphIndex int    `json:"paragraph_index"`
	TargetBookmark string `json:"target_bookmark"`
	TargetKind     string `json:"target_kind"`
}
