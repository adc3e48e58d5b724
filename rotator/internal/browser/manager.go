// Package browser manages the Chrome connection for a rotator session:
// attach to a user's running browser via its debugging port, or launch a
// local instance. A session controls exactly one tab; there is no pooling
// or recycling, since destroying the tab would destroy the preview the
// user is looking at.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance
	// (chrome --remote-debugging-port). Empty = launch a local Chrome.
	RemoteURL string

	// Headless launches without a window. Only meaningful for a local
	// launch; attaching to a remote browser inherits its mode.
	Headless bool

	// Stealth applies anti-automation-detection measures to new pages.
	Stealth bool

	Logger *slog.Logger
}

// Manager owns the rod browser handle.
type Manager struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// NewManager creates a Manager. Call Start to connect.
func NewManager(cfg Config) *Manager {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Manager{cfg: cfg}
}

// Start connects to Chrome (remote or freshly launched) and returns the
// rod handle.
func (m *Manager) Start(ctx context.Context) (*rod.Browser, error) {
	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(m.cfg.Headless)
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "url", wsURL, "headless", m.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	m.browser = b
	return b, nil
}

// Browser returns the connected rod handle, nil before Start.
func (m *Manager) Browser() *rod.Browser {
	return m.browser
}

// Close disconnects and, for a locally launched Chrome, cleans it up.
// A remote browser is left running: it belongs to the user.
func (m *Manager) Close() error {
	if m.browser != nil {
		if m.cfg.RemoteURL == "" {
			m.browser.Close()
		}
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
