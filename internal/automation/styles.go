package automation

import (
	"strconv"
	"strings"
)

// StyleRecord is the parsed view of one <w:style> element.
type StyleRecord struct {
	Node       *Node
	StyleID    string
	Name       string
	Type       string // "paragraph", "character", "table", value from w:type
	BasedOn    string
	NextStyle  string
	IsDefault  bool
	IsBuiltin  bool
	IsModified bool
}

// StyleRecords returns every <w:style> defined in word/styles.xml.
func (d *Document) StyleRecords() []StyleRecord {
	if d.Styles == nil {
		return nil
	}
	var out []StyleRecord
	for _, s := range d.Styles.Children {
		if s.Local() != "style" {
			continue
		}
		rec := StyleRecord{Node: s}
		rec.StyleID, _ = s.Attribute("styleId")
		if t, ok := s.Attribute("type"); ok {
			rec.Type = t
		} else {
			rec.Type = "paragraph"
		}
		if v, ok := s.Attribute("default"); ok {
			rec.IsDefault = v == "1" || v == "true"
		}
		if n, ok := s.Child("name"); ok {
			rec.Name, _ = n.Attribute("val")
		}
		if b, ok := s.Child("basedOn"); ok {
			rec.BasedOn, _ = b.Attribute("val")
		}
		if ns, ok := s.Child("next"); ok {
			rec.NextStyle, _ = ns.Attribute("val")
		}
		// A style is considered customised (is_modified) if it carries
		// direct rPr/pPr overrides beyond name/basedOn/next linkage.
		_, hasRPr := s.Child("rPr")
		_, hasPPr := s.Child("pPr")
		rec.IsModified = hasRPr || hasPPr
		// Built-in styles ship without a w:customStyle="1" marker.
		if cs, ok := s.Attribute("customStyle"); ok {
			rec.IsBuiltin = cs != "1" && cs != "true"
		} else {
			rec.IsBuiltin = true
		}
		out = append(out, rec)
	}
	return out
}

// StyleByID finds a style record by its w:styleId.
func (d *Document) StyleByID(id string) (StyleRecord, bool) {
	for _, s := range d.StyleRecords() {
		if s.StyleID == id {
			return s, true
		}
	}
	return StyleRecord{}, false
}

// StyleByName finds a style record by its display name.
func (d *Document) StyleByName(name string) (StyleRecord, bool) {
	for _, s := range d.StyleRecords() {
		if s.Name == name {
			return s, true
		}
	}
	return StyleRecord{}, false
}

// StyleNames returns every style's display name, for localisation lookup.
func (d *Document) StyleNames() []string {
	recs := d.StyleRecords()
	names := make([]string, len(recs))
	for i, r := range recs {
		names[i] = r.Name
	}
	return names
}

// FontProps reads the resolved font properties from a style's rPr.
func FontProps(styleNode *Node) (eastAsian, latin string, sizePt float64, bold, italic, underline bool, colorHex string) {
	rPr, ok := styleNode.Child("rPr")
	if !ok {
		return
	}
	if rFonts, ok := rPr.Child("rFonts"); ok {
		eastAsian, _ = rFonts.Attribute("eastAsia")
		latin, _ = rFonts.Attribute("ascii")
	}
	if sz, ok := rPr.Child("sz"); ok {
		if v, ok := sz.Attribute("val"); ok {
			if half, err := strconv.Atoi(v); err == nil {
				sizePt = float64(half) / 2
			}
		}
	}
	if _, ok := rPr.Child("b"); ok {
		bold = true
	}
	if _, ok := rPr.Child("i"); ok {
		italic = true
	}
	if _, ok := rPr.Child("u"); ok {
		underline = true
	}
	if color, ok := rPr.Child("color"); ok {
		colorHex, _ = color.Attribute("val")
		if colorHex != "" && !strings.HasPrefix(colorHex, "#") {
			colorHex = "#" + strings.ToUpper(colorHex)
		}
	}
	return
}

// ParagraphFormatProps reads the resolved paragraph-level properties from a
// style's pPr.
func ParagraphFormatProps(styleNode *Node) (lineMode string, lineValue, spaceBefore, spaceAfter float64, alignment string) {
	pPr, ok := styleNode.Child("pPr")
	if !ok {
		return
	}
	if spacing, ok := pPr.Child("spacing"); ok {
		if v, ok := spacing.Attribute("line"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				lineValue = float64(n) / 240 // twentieths of a point, 240 = single line
			}
		}
		if rule, ok := spacing.Attribute("lineRule"); ok {
			switch rule {
			case "auto":
				lineMode = "SINGLE"
			case "atLeast":
				lineMode = "MULTIPLE"
			case "exact":
				lineMode = "EXACTLY"
			}
		}
		if v, ok := spacing.Attribute("before"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				spaceBefore = float64(n) / 20
			}
		}
		if v, ok := spacing.Attribute("after"); ok {
			if n, err := strconv.Atoi(v); err == nil {
				spaceAfter = float64(n) / 20
			}
		}
	}
	if jc, ok := pPr.Child("jc"); ok {
		if v, ok := jc.Attribute("val"); ok {
			switch v {
			case "left":
				alignment = "LEFT"
			case "center":
				alignment = "CENTER"
			case "right":
				alignment = "RIGHT"
			case "both":
				alignment = "JUSTIFY"
			}
		}
	}
	return
}

// StyleMutation is the subset of set_style_rule's optional properties;
// nil pointers mean "leave unchanged".
type StyleMutation struct {
	FontEastAsian    *string
	FontLatin        *string
	FontSizePt       *float64
	FontBold         *bool
	FontItalic       *bool
	FontColorHex     *string
	LineSpacingMode  *string
	LineSpacingValue *float64
	SpaceBeforePt    *float64
	SpaceAfterPt     *float64
	Alignment        *string
}

// ApplyStyleMutation writes the non-nil fields of m onto styleNode's rPr
// and pPr, creating either as needed. Unspecified properties are left
// exactly as they were.
func ApplyStyleMutation(styleNode *Node, m StyleMutation) {
	if m.FontEastAsian != nil || m.FontLatin != nil {
		rPr := styleNode.ChildOrCreate("rPr", "w:rPr")
		rFonts := rPr.ChildOrCreate("rFonts", "w:rFonts")
		if m.FontEastAsian != nil {
			rFonts.SetAttribute("eastAsia", *m.FontEastAsian)
		}
		if m.FontLatin != nil {
			rFonts.SetAttribute("ascii", *m.FontLatin)
			rFonts.SetAttribute("hAnsi", *m.FontLatin)
		}
	}
	if m.FontSizePt != nil {
		rPr := styleNode.ChildOrCreate("rPr", "w:rPr")
		sz := rPr.ChildOrCreate("sz", "w:sz")
		sz.SetAttribute("val", strconv.Itoa(int(*m.FontSizePt*2)))
		szCs := rPr.ChildOrCreate("szCs", "w:szCs")
		szCs.SetAttribute("val", strconv.Itoa(int(*m.FontSizePt*2)))
	}
	if m.FontBold != nil {
		rPr := styleNode.ChildOrCreate("rPr", "w:rPr")
		setToggle(rPr, "b", *m.FontBold)
	}
	if m.FontItalic != nil {
		rPr := styleNode.ChildOrCreate("rPr", "w:rPr")
		setToggle(rPr, "i", *m.FontItalic)
	}
	if m.FontColorHex != nil {
		rPr := styleNode.ChildOrCreate("rPr", "w:rPr")
		color := rPr.ChildOrCreate("color", "w:color")
		color.SetAttribute("val", strings.TrimPrefix(*m.FontColorHex, "#"))
	}

	needsPPr := m.LineSpacingMode != nil || m.LineSpacingValue != nil ||
		m.SpaceBeforePt != nil || m.SpaceAfterPt != nil || m.Alignment != nil
	if !needsPPr {
		return
	}
	pPr := styleNode.ChildOrCreate("pPr", "w:pPr")
	if m.LineSpacingMode != nil || m.LineSpacingValue != nil || m.SpaceBeforePt != nil || m.SpaceAfterPt != nil {
		spacing := pPr.ChildOrCreate("spacing", "w:spacing")
		if m.LineSpacingValue != nil {
			spacing.SetAttribute("line", strconv.Itoa(int(*m.LineSpacingValue*240)))
		}
		if m.LineSpacingMode != nil {
			rule := map[string]string{"SINGLE": "auto", "MULTIPLE": "atLeast", "EXACTLY": "exact"}[*m.LineSpacingMode]
			if rule != "" {
				spacing.SetAttribute("lineRule", rule)
			}
		}
		if m.SpaceBeforePt != nil {
			spacing.SetAttribute("before", strconv.Itoa(int(*m.SpaceBeforePt*20)))
		}
		if m.SpaceAfterPt != nil {
			spacing.SetAttribute("after", strconv.Itoa(int(*m.SpaceAfterPt*20)))
		}
	}
	if m.Alignment != nil {
		jc := pPr.ChildOrCreate("jc", "w:jc")
		val := map[string]string{"LEFT": "left", "CENTER": "center", "RIGHT": "right", "JUSTIFY": "both"}[*m.Alignment]
		if val != "" {
			jc.SetAttribute("val", val)
		}
	}
}

func setToggle(rPr *Node, local string, on bool) {
	existing, has := rPr.Child(local)
	if !on {
		if has {
			rPr.RemoveChild(existing)
		}
		return
	}
	if !has {
		rPr.ChildOrCreate(local, "w:"+local)
	}
}
