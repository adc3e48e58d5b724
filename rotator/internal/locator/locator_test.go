package locator

import "testing"

func testConfig() Config {
	return Config{
		MinBox:       30,
		MinIntrinsic: 50,
		ExcludeSrc:   []string{"icon", "favicon", "thumb", "sprite"},
	}
}

func visible(order int, w, h float64) Candidate {
	return Candidate{
		Order: order, Tag: "img",
		Width: w, Height: h,
		NaturalWidth: w, NaturalHeight: h,
		Display: "block", Visibility: "visible", Position: "static",
		Src: "https://lh3.googleusercontent.com/media",
	}
}

func TestPick_LargestArea(t *testing.T) {
	cands := []Candidate{visible(0, 40, 40), visible(1, 500, 300), visible(2, 100, 100)}
	best, ok := Pick(cands)
	if !ok {
		t.Fatal("Pick: not ok")
	}
	if best.Order != 1 {
		t.Fatalf("Pick: got order %d, want 1", best.Order)
	}
}

func TestPick_TieKeepsDiscoveryOrder(t *testing.T) {
	// 100x100 and 200x50 both have area 10000; the earlier one wins.
	cands := []Candidate{visible(0, 100, 100), visible(1, 200, 50)}
	best, ok := Pick(cands)
	if !ok {
		t.Fatal("Pick: not ok")
	}
	if best.Order != 0 {
		t.Fatalf("tie-break: got order %d, want 0", best.Order)
	}

	// Same tie in the opposite discovery order.
	cands = []Candidate{visible(0, 200, 50), visible(1, 100, 100)}
	best, _ = Pick(cands)
	if best.Order != 0 {
		t.Fatalf("tie-break reversed: got order %d, want 0", best.Order)
	}
}

func TestAdmissible_IntrinsicTooSmall(t *testing.T) {
	// Rendered box is large, intrinsic size is below 50x50: reject.
	c := visible(0, 400, 400)
	c.NaturalWidth, c.NaturalHeight = 32, 32
	if Admissible(c, testConfig()) {
		t.Error("intrinsic 32x32 admitted")
	}
}

func TestAdmissible_BoxTooSmall(t *testing.T) {
	c := visible(0, 20, 400)
	if Admissible(c, testConfig()) {
		t.Error("rendered width 20 admitted")
	}
}

func TestAdmissible_HiddenStyles(t *testing.T) {
	c := visible(0, 400, 400)
	c.Display = "none"
	if Admissible(c, testConfig()) {
		t.Error("display:none admitted")
	}

	c = visible(0, 400, 400)
	c.Visibility = "hidden"
	if Admissible(c, testConfig()) {
		t.Error("visibility:hidden admitted")
	}
}

func TestAdmissible_HiddenAncestor(t *testing.T) {
	c := visible(0, 400, 400)
	c.AncestorHidden = true
	if Admissible(c, testConfig()) {
		t.Error("hidden ancestor admitted for static element")
	}

	// Out-of-flow elements escape the ancestor check.
	for _, pos := range []string{"fixed", "absolute"} {
		c.Position = pos
		if !Admissible(c, testConfig()) {
			t.Errorf("hidden ancestor rejected for position %s", pos)
		}
	}
}

func TestAdmissible_IconSrc(t *testing.T) {
	for _, src := range []string{
		"https://drive.google.com/favicon.ico",
		"https://lh3.googleusercontent.com/thumbnail?id=x",
		"https://ssl.gstatic.com/docs/common/sprite_v2.png",
		"https://example.com/APP_ICON.png",
	} {
		c := visible(0, 400, 400)
		c.Src = src
		if Admissible(c, testConfig()) {
			t.Errorf("icon-like src admitted: %s", src)
		}
	}
}

func TestChoose_ShortCircuitOnFirstMatchingPattern(t *testing.T) {
	// Pattern 0 matched elements but all get filtered; pattern 1 holds a
	// perfectly good candidate. The pass must still fail: no fallback
	// across patterns after a structural match.
	tiny := visible(0, 10, 10)
	groups := [][]Candidate{
		{tiny},
		{visible(0, 500, 500)},
	}
	if _, ok := Choose(groups, testConfig()); ok {
		t.Fatal("Choose fell through to a later pattern")
	}
}

func TestChoose_SkipsEmptyPatterns(t *testing.T) {
	groups := [][]Candidate{
		nil,
		{},
		{visible(0, 500, 500)},
	}
	best, ok := Choose(groups, testConfig())
	if !ok {
		t.Fatal("Choose: not ok")
	}
	if best.Width != 500 {
		t.Fatalf("Choose: got %v", best)
	}
}

func TestChoose_NothingAnywhere(t *testing.T) {
	if _, ok := Choose(nil, testConfig()); ok {
		t.Fatal("Choose(nil): ok")
	}
	if _, ok := Choose([][]Candidate{nil, {}}, testConfig()); ok {
		t.Fatal("Choose(empty groups): ok")
	}
}
