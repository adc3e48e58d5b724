package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// Tab wraps the rod page a session controls.
type Tab struct {
	Page    *rod.Page
	PageURL string
}

// FindOrOpen attaches to the first existing tab whose address contains
// hostFragment; when none exists it opens openURL in a new tab. Attaching
// is preferred: the user may already be looking at the preview.
func FindOrOpen(ctx context.Context, m *Manager, hostFragment, openURL string) (*Tab, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	pages, err := b.Pages()
	if err == nil {
		for _, p := range pages {
			info, err := p.Info()
			if err != nil {
				continue
			}
			if strings.Contains(info.URL, hostFragment) {
				m.cfg.Logger.Info("browser: attached to existing tab", "url", info.URL)
				return &Tab{Page: p.Context(ctx), PageURL: info.URL}, nil
			}
		}
	}

	return Open(ctx, m, openURL)
}

// Open creates a new tab and navigates to pageURL.
func Open(ctx context.Context, m *Manager, pageURL string) (*Tab, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("browser: no active browser")
	}

	var page *rod.Page
	var err error
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load timeout", "url", pageURL, "error", err)
	}

	return &Tab{Page: page.Context(ctx), PageURL: pageURL}, nil
}

// URL reads the tab's current address. Single-page navigations change it
// without a load event, so this is re-read rather than cached.
func (t *Tab) URL(ctx context.Context) (string, error) {
	res, err := t.Page.Context(ctx).Eval(`() => location.href`)
	if err != nil {
		return "", fmt.Errorf("browser: read url: %w", err)
	}
	return res.Value.Str(), nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.Page != nil {
		return t.Page.Close()
	}
	return nil
}
