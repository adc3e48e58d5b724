package orientation

import (
	"net/url"
	"regexp"
	"strings"
)

// GeneralContext is the sentinel file context for pages under the Drive
// origin that carry no recognisable file identifier. Such pages share one
// orientation record so the controls still work there.
const GeneralContext = "general"

// filePath matches the canonical preview address, e.g.
// https://drive.google.com/file/d/<id>/view.
var filePath = regexp.MustCompile(`/file/d/([^/?#]+)`)

// ContextFromURL derives the active file context from a page address.
// Recognised forms, most specific first:
//
//	/file/d/<id>/...
//	/open?id=<id>
//	any address with an id= query parameter
//
// Anything else falls back to GeneralContext.
func ContextFromURL(raw string) string {
	if raw == "" {
		return GeneralContext
	}

	if m := filePath.FindStringSubmatch(raw); m != nil {
		return m[1]
	}

	u, err := url.Parse(raw)
	if err != nil {
		return GeneralContext
	}
	if id := u.Query().Get("id"); id != "" {
		return id
	}
	return GeneralContext
}

// OnDriveOrigin reports whether the address belongs to the Drive host.
// The host suffix check (rather than equality) also covers regional and
// workspace subdomains.
func OnDriveOrigin(raw, host string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	h := u.Hostname()
	return h == host || strings.HasSuffix(h, "."+host)
}
