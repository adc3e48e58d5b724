// Package locator finds the single media element a session should control:
// the largest visible image or video matching a priority-ordered selector
// list. The search is a heuristic, best-effort match against an external,
// uncontrolled page structure; callers re-run it on mutation and resize.
package locator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
)

// ErrNotFound is returned when no pattern yields a usable candidate.
var ErrNotFound = errors.New("locator: no media target found")

// Locator runs search passes against a live page.
type Locator struct {
	cfg Config
}

// New creates a Locator.
func New(cfg Config) *Locator {
	return &Locator{cfg: cfg}
}

// probeJS measures one element. `this` is bound to the element by rod.
const probeJS = `() => {
	const r = this.getBoundingClientRect();
	const cs = getComputedStyle(this);
	const tag = this.tagName.toLowerCase();
	let nw = 0, nh = 0;
	if (tag === 'img') { nw = this.naturalWidth; nh = this.naturalHeight; }
	else if (tag === 'video') { nw = this.videoWidth; nh = this.videoHeight; }
	let ancestorHidden = false;
	for (let p = this.parentElement; p; p = p.parentElement) {
		const pcs = getComputedStyle(p);
		if (pcs.display === 'none' || pcs.visibility === 'hidden') {
			ancestorHidden = true;
			break;
		}
	}
	return JSON.stringify({
		tag: tag,
		w: r.width, h: r.height,
		nw: nw, nh: nh,
		display: cs.display,
		visibility: cs.visibility,
		position: cs.position,
		ancestor_hidden: ancestorHidden,
		src: this.currentSrc || this.src || ''
	});
}`

// Find runs one search pass and returns the chosen element with its
// measurements. The pass short-circuits on the first selector pattern that
// matches any element; if filtering removes every candidate of that
// pattern, the pass fails with ErrNotFound rather than falling through to
// unrelated patterns.
func (l *Locator) Find(ctx context.Context, page *rod.Page) (*rod.Element, Candidate, error) {
	for _, sel := range l.cfg.Selectors {
		els, err := page.Context(ctx).Elements(sel)
		if err != nil {
			// A selector the page rejects is skipped, not fatal.
			continue
		}
		if len(els) == 0 {
			continue
		}

		cands := make([]Candidate, 0, len(els))
		handles := make([]*rod.Element, 0, len(els))
		for i, el := range els {
			c, err := probe(ctx, el)
			if err != nil {
				// Element detached mid-probe: the page moved under us.
				continue
			}
			c.Order = i
			cands = append(cands, c)
			handles = append(handles, el)
		}

		best, ok := Choose([][]Candidate{cands}, l.cfg)
		if !ok {
			return nil, Candidate{}, ErrNotFound
		}
		for i, c := range cands {
			if c.Order == best.Order {
				return handles[i], best, nil
			}
		}
		return nil, Candidate{}, ErrNotFound
	}
	return nil, Candidate{}, ErrNotFound
}

func probe(ctx context.Context, el *rod.Element) (Candidate, error) {
	res, err := el.Context(ctx).Eval(probeJS)
	if err != nil {
		return Candidate{}, fmt.Errorf("locator: probe: %w", err)
	}
	var c Candidate
	if err := json.Unmarshal([]byte(res.Value.Str()), &c); err != nil {
		return Candidate{}, fmt.Errorf("locator: decode probe: %w", err)
	}
	return c, nil
}
