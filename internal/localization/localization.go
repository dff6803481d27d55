// Package localization resolves style names and fonts across the
// English/Chinese style-alias table and the East-Asian/Latin font fallback
// chains the Executor consults on every set_style_rule and
// reassign_paragraphs_to_style operation. Unknown lookups fall through to
// identity: localisation is a best-effort convenience, never a hard
// requirement for an operation to apply.
package localization

import (
	"strings"
	"sync"
)

// defaultStyleAliases mirrors the canonical-to-localised style name table.
// Kept bidirectional at lookup time rather than duplicated in both
// directions here.
var defaultStyleAliases = map[string]string{
	"Heading 1": "标题 1",
	"Heading 2": "标题 2",
	"Heading 3": "标题 3",
	"Heading 4": "标题 4",
	"Heading 5": "标题 5",
	"Heading 6": "标题 6",
	"Heading 7": "标题 7",
	"Heading 8": "标题 8",
	"Heading 9": "标题 9",
	"Normal":    "正文",
	"Title":     "标题",
	"Subtitle":  "副标题",
	"Body Text": "正文",
	"Caption":   "题注",
	"Header":    "页眉",
	"Footer":    "页脚",
}

// defaultFontFallbacks is the ordered fallback chain per requested font,
// primary font first.
var defaultFontFallbacks = map[string][]string{
	"楷体":              {"楷体", "楷体_GB2312", "STKaiti", "KaiTi"},
	"宋体":              {"宋体", "SimSun", "NSimSun", "宋体-简"},
	"黑体":              {"黑体", "SimHei", "Microsoft YaHei", "微软雅黑"},
	"仿宋":              {"仿宋", "FangSong", "FangSong_GB2312", "仿宋_GB2312"},
	"微软雅黑":            {"微软雅黑", "Microsoft YaHei", "Microsoft YaHei UI"},
	"Times New Roman": {"Times New Roman", "Times", "serif"},
	"Arial":           {"Arial", "Helvetica", "sans-serif"},
	"Calibri":         {"Calibri", "Arial", "sans-serif"},
}

// Table holds the style-alias and font-fallback data used to resolve names
// against a specific document's declared styles and the operator's
// configured host font set. Safe for concurrent read-only use; a run never
// mutates it once built.
type Table struct {
	mu            sync.Mutex
	styleAliases  map[string]string   // canonical -> localised
	reverseAlias  map[string]string   // localised -> canonical
	fontFallbacks map[string][]string
	hostFonts     map[string]bool
	warnings      []string
}

// New builds a Table from configured overrides, falling back to the
// compiled-in defaults for any table left empty. hostFonts is the set of
// font names considered "available" on the executing host; an empty set
// means every font is treated as available (identity fallthrough).
func New(styleAliases, fontFallbacks map[string][]string, hostFonts []string) *Table {
	t := &Table{
		styleAliases:  map[string]string{},
		reverseAlias:  map[string]string{},
		fontFallbacks: map[string][]string{},
		hostFonts:     map[string]bool{},
	}

	if len(styleAliases) == 0 {
		for canon, local := range defaultStyleAliases {
			t.styleAliases[canon] = local
			t.reverseAlias[local] = canon
		}
	} else {
		for canon, chain := range styleAliases {
			for _, local := range chain {
				t.styleAliases[canon] = local
				t.reverseAlias[local] = canon
			}
		}
	}

	if len(fontFallbacks) == 0 {
		for k, v := range defaultFontFallbacks {
			t.fontFallbacks[k] = append([]string(nil), v...)
		}
	} else {
		for k, v := range fontFallbacks {
			t.fontFallbacks[k] = append([]string(nil), v...)
		}
	}

	for _, f := range hostFonts {
		t.hostFonts[f] = true
	}
	return t
}

// available reports whether font is usable on the host. With no host font
// set configured, every font is assumed available (a run with no font
// inventory shouldn't fail formatting operations it can't verify).
func (t *Table) available(font string) bool {
	if len(t.hostFonts) == 0 {
		return true
	}
	return t.hostFonts[font]
}

// ResolveStyle resolves a requested style name against the document's
// actual defined styles: canonical name first, then the alias table in
// both directions, then a case-insensitive scan, then identity.
func (t *Table) ResolveStyle(requested string, docStyles []string) string {
	if containsFold(docStyles, requested, true) {
		return requested
	}

	if alias, ok := t.styleAliases[requested]; ok && containsFold(docStyles, alias, true) {
		t.warn("style alias used: " + requested + " -> " + alias)
		return alias
	}
	if canon, ok := t.reverseAlias[requested]; ok && containsFold(docStyles, canon, true) {
		t.warn("style alias used: " + requested + " -> " + canon)
		return canon
	}

	if match, ok := findFold(docStyles, requested); ok {
		if match != requested {
			t.warn("style case mismatch: " + requested + " -> " + match)
		}
		return match
	}

	t.warn("style not found, using original: " + requested)
	return requested
}

// ResolveFont walks the fallback chain for the requested font, returning
// the first available entry. If the font has no configured chain, or every
// entry in the chain is unavailable, the original font name is returned
// with a warning: the caller proceeds with the host default rather than
// failing the operation.
func (t *Table) ResolveFont(requested string) string {
	if t.available(requested) {
		return requested
	}

	chain, ok := t.fontFallbacks[requested]
	if !ok {
		t.warn("font not available: " + requested + " (no fallback chain defined)")
		return requested
	}

	for _, candidate := range chain[1:] {
		if t.available(candidate) {
			t.warn("font fallback: " + requested + " -> " + candidate)
			return candidate
		}
	}

	t.warn("font not available: " + requested + " (no fallback found in chain, using host default)")
	return requested
}

// Warnings returns and clears the warnings accumulated since the last call,
// for the caller (Executor) to fold into its own warnings sink.
func (t *Table) Warnings() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	w := t.warnings
	t.warnings = nil
	return w
}

func (t *Table) warn(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.warnings = append(t.warnings, msg)
}

func containsFold(list []string, s string, exact bool) bool {
	for _, v := range list {
		if exact && v == s {
			return true
		}
	}
	return false
}

func findFold(list []string, s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, v := range list {
		if strings.ToLower(v) == lower {
			return v, true
		}
	}
	return "", false
}
