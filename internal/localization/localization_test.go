package localization

import "testing"

func TestResolveStyle_Canonical(t *testing.T) {
	tbl := New(nil, nil, nil)
	got := tbl.ResolveStyle("Heading 1", []string{"Heading 1", "Normal"})
	if got != "Heading 1" {
		t.Fatalf("got %q", got)
	}
	if len(tbl.Warnings()) != 0 {
		t.Fatal("no warning expected for a direct hit")
	}
}

func TestResolveStyle_Alias(t *testing.T) {
	tbl := New(nil, nil, nil)
	got := tbl.ResolveStyle("Heading 1", []string{"标题 1", "正文"})
	if got != "标题 1" {
		t.Fatalf("got %q", got)
	}
	if w := tbl.Warnings(); len(w) != 1 {
		t.Fatalf("expected one warning, got %v", w)
	}
}

func TestResolveStyle_ReverseAlias(t *testing.T) {
	tbl := New(nil, nil, nil)
	got := tbl.ResolveStyle("标题 1", []string{"Heading 1"})
	if got != "Heading 1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveStyle_CaseInsensitive(t *testing.T) {
	tbl := New(nil, nil, nil)
	got := tbl.ResolveStyle("heading 1", []string{"Heading 1"})
	if got != "Heading 1" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveStyle_IdentityFallthrough(t *testing.T) {
	tbl := New(nil, nil, nil)
	got := tbl.ResolveStyle("Nonexistent Style", []string{"Normal"})
	if got != "Nonexistent Style" {
		t.Fatalf("got %q", got)
	}
	if w := tbl.Warnings(); len(w) != 1 {
		t.Fatalf("expected one warning, got %v", w)
	}
}

func TestResolveFont_Fallback(t *testing.T) {
	// Host has STKaiti but not 楷体 or 楷体_GB2312.
	tbl := New(nil, nil, []string{"STKaiti"})
	got := tbl.ResolveFont("楷体")
	if got != "STKaiti" {
		t.Fatalf("got %q", got)
	}
	if w := tbl.Warnings(); len(w) != 1 {
		t.Fatalf("expected one fallback warning, got %v", w)
	}
}

func TestResolveFont_ChainExhausted(t *testing.T) {
	tbl := New(nil, nil, []string{"Arial"}) // none of 楷体's chain is available
	got := tbl.ResolveFont("楷体")
	if got != "楷体" {
		t.Fatalf("got %q, expected identity fallthrough", got)
	}
	if w := tbl.Warnings(); len(w) != 1 {
		t.Fatalf("expected one warning, got %v", w)
	}
}

func TestResolveFont_NoHostSetMeansAvailable(t *testing.T) {
	tbl := New(nil, nil, nil)
	if got := tbl.ResolveFont("楷体"); got != "楷体" {
		t.Fatalf("got %q, expected primary font treated as available", got)
	}
}

func TestResolveFont_NoChainDefined(t *testing.T) {
	tbl := New(nil, nil, []string{"Verdana"})
	got := tbl.ResolveFont("Comic Sans MS")
	if got != "Comic Sans MS" {
		t.Fatalf("got %q", got)
	}
}
