package locator

import "strings"

// Candidate holds the measured properties of one potential media target.
// The JSON tags match the in-page probe payload.
type Candidate struct {
	// Order is the element's position in the selector's result list
	// (document order). It is the tie-break for equal areas.
	Order int `json:"-"`

	Tag            string  `json:"tag"`
	Width          float64 `json:"w"`
	Height         float64 `json:"h"`
	NaturalWidth   float64 `json:"nw"`
	NaturalHeight  float64 `json:"nh"`
	Display        string  `json:"display"`
	Visibility     string  `json:"visibility"`
	Position       string  `json:"position"`
	AncestorHidden bool    `json:"ancestor_hidden"`
	Src            string  `json:"src"`
}

// Area is the rendered area in px².
func (c Candidate) Area() float64 {
	return c.Width * c.Height
}

// Config tunes candidate filtering. Zero values are not defaulted here;
// the caller passes a fully-populated config.
type Config struct {
	Selectors    []string
	MinBox       float64
	MinIntrinsic float64
	ExcludeSrc   []string
}

// Admissible reports whether c survives the visibility and size filters.
func Admissible(c Candidate, cfg Config) bool {
	if c.Display == "none" || c.Visibility == "hidden" {
		return false
	}
	if c.Width < cfg.MinBox || c.Height < cfg.MinBox {
		return false
	}
	if c.NaturalWidth < cfg.MinIntrinsic || c.NaturalHeight < cfg.MinIntrinsic {
		return false
	}
	// A hidden ancestor hides the element too, unless it is taken out of
	// normal flow.
	if c.AncestorHidden && c.Position != "fixed" && c.Position != "absolute" {
		return false
	}
	src := strings.ToLower(c.Src)
	for _, bad := range cfg.ExcludeSrc {
		if bad != "" && strings.Contains(src, bad) {
			return false
		}
	}
	return true
}

// Filter returns the candidates that pass Admissible, preserving order.
func Filter(cands []Candidate, cfg Config) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if Admissible(c, cfg) {
			out = append(out, c)
		}
	}
	return out
}

// Pick selects the candidate with the largest rendered area. Ties keep the
// earliest candidate in discovery order (strict > comparison).
func Pick(cands []Candidate) (Candidate, bool) {
	if len(cands) == 0 {
		return Candidate{}, false
	}
	best := cands[0]
	for _, c := range cands[1:] {
		if c.Area() > best.Area() {
			best = c
		}
	}
	return best, true
}

// Choose runs one search pass over per-pattern candidate groups, ordered by
// pattern priority. The first group with any candidate wins the pass; later
// groups are never consulted, even when filtering then removes every
// candidate from the winning group: the structure matched, the content
// just was not usable yet.
func Choose(groups [][]Candidate, cfg Config) (Candidate, bool) {
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		return Pick(Filter(g, cfg))
	}
	return Candidate{}, false
}
