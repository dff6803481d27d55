package planner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hazyhaar/autoword-vnext/internal/model"
)

const systemPromptBody = `You are the planning stage of a document-editing pipeline. You receive a
structural skeleton of a DOCX file and a user's editing intent, and you
must respond with exactly one JSON object conforming to plan.v1 — no prose,
no markdown fences, no explanation before or after the JSON.

Every operation you emit must be one of the six whitelisted operations.
Any other operation name, any attempt to emit raw OOXML or document text,
or any text outside the single JSON object will cause the entire plan to
be rejected.`

// whitelistDescriptions documents each op's parameters for the prompt, in
// the same order as model.Whitelist.
var whitelistDescriptions = map[model.OpKind]string{
	model.OpDeleteSectionByHeading: `delete_section_by_heading(heading_text, level, match in {EXACT,CONTAINS,REGEX}, case_sensitive, occurrence_index?) — deletes from the matching heading up to the next heading at level <= level, or end of document.`,
	model.OpUpdateTOC:              `update_toc() — forces every TOC field to recompute on next open.`,
	model.OpDeleteTOC:              `delete_toc(mode in {ALL,FIRST,LAST}) — removes the selected TOC field(s) and surrounding block.`,
	model.OpSetStyleRule:           `set_style_rule(target_style, font_east_asian?, font_latin?, font_size_pt?, font_bold?, font_italic?, font_color_hex?, line_spacing_mode?, line_spacing_value?, space_before_pt?, space_after_pt?, alignment?) — applies the given subset of properties to a named style.`,
	model.OpReassignParagraphsToStyle: `reassign_paragraphs_to_style(selector{current_style?, text_contains?, heading_level?, position?}, target_style, clear_direct_formatting=false) — reassigns every paragraph matching the selector conjunction.`,
	model.OpClearDirectFormatting: `clear_direct_formatting(scope in {DOCUMENT,SELECTION,STYLE}, range_spec?, authorization="EXPLICIT_USER_REQUEST") — clears run-level direct formatting; requires the literal authorization token.`,
}

// BuildPrompt renders the system and user prompt for one plan attempt.
// retryReminder, when non-empty, is appended as an extra constraint after a
// prior attempt failed to parse as JSON.
func BuildPrompt(structure *model.StructureV1, userIntent string, retryReminder string) (systemPrompt, userPrompt string, err error) {
	structureJSON, err := json.MarshalIndent(structure, "", "  ")
	if err != nil {
		return "", "", fmt.Errorf("planner: encode structure: %w", err)
	}

	var sys bytes.Buffer
	writeSection(&sys, "ROLE", systemPromptBody)
	writeSection(&sys, "WHITELIST", formatWhitelist())
	writeSection(&sys, "OUTPUT_FORMAT", `{"schema_version": "v1", "ops": [ {"operation": "...", ...} ]}`)
	if retryReminder != "" {
		writeSection(&sys, "REMINDER", retryReminder)
	}

	var usr bytes.Buffer
	writeSection(&usr, "STRUCTURE", string(structureJSON))
	writeSection(&usr, "INTENT", userIntent)

	return strings.TrimSpace(sys.String()) + "\n", strings.TrimSpace(usr.String()) + "\n", nil
}

func formatWhitelist() string {
	var buf strings.Builder
	for _, kind := range model.Whitelist {
		fmt.Fprintf(&buf, "- %s\n", whitelistDescriptions[kind])
	}
	return strings.TrimRight(buf.String(), "\n")
}

func writeSection(buf *bytes.Buffer, title, body string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	buf.WriteString("[")
	buf.WriteString(title)
	buf.WriteString("]\n")
	buf.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		buf.WriteString("\n")
	}
	buf.WriteString("\n")
}
