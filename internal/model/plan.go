package model

import "encoding/json"

// OpKind is the closed set of atomic operations a plan may contain. Any
// value outside this set fails whitelist conformance at the gateway.
type OpKind string

const (
	OpDeleteSectionByHeading      OpKind = "delete_section_by_heading"
	OpUpdateTOC                   OpKind = "update_toc"
	OpDeleteTOC                   OpKind = "delete_toc"
	OpSetStyleRule                OpKind = "set_style_rule"
	OpReassignParagraphsToStyle   OpKind = "reassign_paragraphs_to_style"
	OpClearDirectFormatting       OpKind = "clear_direct_formatting"
)

// Whitelist enumerates every operation kind the Executor knows how to run.
// Kept as a slice, not just the const block, so the gateway's whitelist
// check and any "what can this system do" surface (status, dry-run help)
// read from one place.
var Whitelist = []OpKind{
	OpDeleteSectionByHeading,
	OpUpdateTOC,
	OpDeleteTOC,
	OpSetStyleRule,
	OpReassignParagraphsToStyle,
	OpClearDirectFormatting,
}

// IsWhitelisted reports whether kind is one of the closed set of operations.
func IsWhitelisted(kind OpKind) bool {
	for _, k := range Whitelist {
		if k == kind {
			return true
		}
	}
	return false
}

// MatchMode enumerates heading-text matching strategies.
type MatchMode string

const (
	MatchExact    MatchMode = "EXACT"
	MatchContains MatchMode = "CONTAINS"
	MatchRegex    MatchMode = "REGEX"
)

// TOCDeleteMode enumerates which TOC field(s) delete_toc targets.
type TOCDeleteMode string

const (
	TOCDeleteAll   TOCDeleteMode = "ALL"
	TOCDeleteFirst TOCDeleteMode = "FIRST"
	TOCDeleteLast  TOCDeleteMode = "LAST"
)

// FormattingScope enumerates clear_direct_formatting targets.
type FormattingScope string

const (
	ScopeDocument  FormattingScope = "DOCUMENT"
	ScopeSelection FormattingScope = "SELECTION"
	ScopeStyle     FormattingScope = "STYLE"
)

// PositionMode enumerates text-position selectors for reassign_paragraphs_to_style.
type PositionMode string

const (
	PositionStartsWith PositionMode = "starts_with"
	PositionEndsWith   PositionMode = "ends_with"
	PositionContains   PositionMode = "contains"
)

// ExplicitUserRequestToken is the literal authorisation token
// clear_direct_formatting must carry. It is not a secret, it's a
// speed-bump against a model emitting the operation without the caller
// having actually asked for document-wide formatting removal.
const ExplicitUserRequestToken = "EXPLICIT_USER_REQUEST"

// ParagraphSelector is the conjunction of match criteria used by
// reassign_paragraphs_to_style. A zero-value field in any position means
// "don't filter on this criterion".
type ParagraphSelector struct {
	CurrentStyle string       `json:"current_style,omitempty"`
	TextContains string       `json:"text_contains,omitempty"`
	HeadingLevel int          `json:"heading_level,omitempty"`
	Position     PositionMode `json:"position,omitempty"`
}

// OperationSpec is the flat, over-the-wire shape of a single plan operation:
// every operation kind's parameters live as optional fields on one struct,
// discriminated by Operation. This is the JSON boundary; nothing outside
// the Planner gateway's validation pipeline should read raw OperationSpec
// values; they must be compiled into concrete, typed operations before the
// Executor sees them (the whitelist is a closed sum, not a string switch
// scattered through the codebase).
type OperationSpec struct {
	Operation OpKind `json:"operation"`

	// delete_section_by_heading
	HeadingText     string    `json:"heading_text,omitempty"`
	Level           int       `json:"level,omitempty"`
	Match           MatchMode `json:"match,omitempty"`
	CaseSensitive   bool      `json:"case_sensitive,omitempty"`
	OccurrenceIndex int       `json:"occurrence_index,omitempty"`

	// delete_toc
	Mode TOCDeleteMode `json:"mode,omitempty"`

	// set_style_rule
	TargetStyle      string           `json:"target_style,omitempty"`
	FontEastAsian    *string          `json:"font_east_asian,omitempty"`
	FontLatin        *string          `json:"font_latin,omitempty"`
	FontSizePt       *float64         `json:"font_size_pt,omitempty"`
	FontBold         *bool            `json:"font_bold,omitempty"`
	FontItalic       *bool            `json:"font_italic,omitempty"`
	FontColorHex     *string          `json:"font_color_hex,omitempty"`
	LineSpacingMode  *LineSpacingMode `json:"line_spacing_mode,omitempty"`
	LineSpacingValue *float64         `json:"line_spacing_value,omitempty"`
	SpaceBeforePt    *float64         `json:"space_before_pt,omitempty"`
	SpaceAfterPt     *float64         `json:"space_after_pt,omitempty"`
	Alignment        *Alignment       `json:"alignment,omitempty"`

	// reassign_paragraphs_to_style
	Selector               *ParagraphSelector `json:"selector,omitempty"`
	ClearDirectFormatting  bool               `json:"clear_direct_formatting,omitempty"`

	// clear_direct_formatting
	Scope         FormattingScope `json:"scope,omitempty"`
	RangeSpec     string          `json:"range_spec,omitempty"`
	Authorization string          `json:"authorization,omitempty"`

	// Source records provenance for a future comments-as-instructions
	// extension (anchor > section > global > template priority). Nothing
	// in the current pipeline sets it.
	Source string `json:"source,omitempty"`
}

// PlanV1 is the only artifact the language model is allowed to produce.
type PlanV1 struct {
	SchemaVersion string          `json:"schema_version"`
	Ops           []OperationSpec `json:"ops"`
}

// RawPlan is used for the first, permissive decode pass: it captures
// whatever top-level fields the model actually sent (including ones
// plan.v1 doesn't define) so the planner's decoder can reject them by name
// instead of silently dropping them via json.Unmarshal's default
// unknown-field tolerance.
type RawPlan struct {
	SchemaVersion string
	Ops           []json.RawMessage
	Extra         map[string]json.RawMessage
}

// UnmarshalJSON decodes into a generic field map first so any top-level key
// other than schema_version/ops survives as Extra instead of being dropped.
func (r *RawPlan) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if raw, ok := fields["schema_version"]; ok {
		if err := json.Unmarshal(raw, &r.SchemaVersion); err != nil {
			return err
		}
		delete(fields, "schema_version")
	}
	if raw, ok := fields["ops"]; ok {
		if err := json.Unmarshal(raw, &r.Ops); err != nil {
			return err
		}
		delete(fields, "ops")
	}
	r.Extra = fields
	return nil
}

// StyleDelta records one style-table change for the diff report.
type StyleDelta struct {
	Name   string `json:"name"`
	Change string `json:"change"` // "added", "removed", "renamed"
	From   string `json:"from,omitempty"`
}

// HeadingDelta records one heading-table change for the diff report.
type HeadingDelta struct {
	Text   string `json:"text"`
	Level  int    `json:"level"`
	Change string `json:"change"` // "added", "removed"
}

// TOCEntryDelta records a change in TOC entry text/level/page.
type TOCEntryDelta struct {
	Text       string `json:"text"`
	Change     string `json:"change"`
	PageBefore int    `json:"page_before,omitempty"`
	PageAfter  int    `json:"page_after,omitempty"`
}

// DiffReport is the per-run structural delta the Auditor writes.
type DiffReport struct {
	SchemaVersion    string          `json:"schema_version"`
	StyleDeltas      []StyleDelta    `json:"style_deltas"`
	HeadingDeltas    []HeadingDelta  `json:"heading_deltas"`
	TOCDeltas        []TOCEntryDelta `json:"toc_deltas"`
	MetadataChanged  bool            `json:"metadata_changed"`
	ModifiedTimeFrom string          `json:"modified_time_from,omitempty"`
	ModifiedTimeTo   string          `json:"modified_time_to,omitempty"`
}
