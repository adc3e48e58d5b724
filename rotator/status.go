package rotator

import "fmt"

// Phase is where the session stands in the locate-and-bind cycle.
type Phase string

const (
	// PhaseSearching: a locate pass is pending or between bounded retries.
	PhaseSearching Phase = "searching"
	// PhaseFound: a media target is bound and transformed.
	PhaseFound Phase = "found"
	// PhaseNotFound: timed retries are exhausted; only an external trigger
	// (mutation, resize, navigation) restarts the search.
	PhaseNotFound Phase = "not_found"
	// PhaseOffPreview: the tab is not on the Drive origin.
	PhaseOffPreview Phase = "off_preview"
)

// statusText renders the toolbar status label for a phase.
func statusText(p Phase, attempt int) string {
	switch p {
	case PhaseSearching:
		return fmt.Sprintf("Searching media… (attempt %d)", attempt)
	case PhaseFound:
		return "Media found"
	case PhaseNotFound:
		return "Media not found"
	case PhaseOffPreview:
		return "Open a Drive file preview to use the controls"
	}
	return ""
}
