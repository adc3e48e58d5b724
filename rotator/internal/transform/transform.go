// Package transform applies an orientation to the located media element as
// a purely presentational CSS transform. Nothing is re-encoded; clearing
// the transform restores the page's own rendering.
package transform

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"

	"driveorient/orientation"
)

// applyJS sets the composed transform and constrains the element to its
// container. object-fit is only forced for videos; images keep whatever
// fit mode the page gave them. `this` is bound to the element by rod.
const applyJS = `(css) => {
	this.style.transform = css;
	this.style.maxWidth = '100%';
	this.style.maxHeight = '100%';
	if (this.tagName === 'VIDEO') this.style.objectFit = 'contain';
}`

// Apply renders st onto el. A nil element is a no-op: a transform may be
// requested before any target exists.
func Apply(ctx context.Context, el *rod.Element, st orientation.State) error {
	if el == nil {
		return nil
	}
	if _, err := el.Context(ctx).Eval(applyJS, st.CSS()); err != nil {
		return fmt.Errorf("transform: apply %s: %w", st, err)
	}
	return nil
}
