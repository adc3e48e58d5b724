package rotator

import (
	"context"
	"log/slog"

	"github.com/go-rod/rod"

	"driveorient/orientation"
	"driveorient/rotator/internal/browser"
	"driveorient/rotator/internal/inject"
	"driveorient/rotator/internal/locator"
	"driveorient/rotator/internal/transform"
)

// ErrNoTarget is returned by Driver.Locate when no usable media element
// exists on the page right now.
var ErrNoTarget = locator.ErrNotFound

// Target is a bound media element the session can transform. A target is
// replaced wholesale on every successful locate pass; it is never mutated.
type Target interface {
	Apply(ctx context.Context, st orientation.State) error
}

// Events are the callbacks a Driver fires for page-originated signals.
// They are called from the driver's own goroutine and must not block.
type Events struct {
	// Action fires for a toolbar click or a keyboard shortcut.
	Action func(Action)
	// Trigger fires for a signal that should re-run the media search.
	// cause names the source (mutation, resize).
	Trigger func(cause string)
	// Navigate fires when the page address changes.
	Navigate func(url string)
}

// Driver is the session's view of the controlled page. The production
// implementation drives a Chrome tab over CDP; tests substitute a fake.
type Driver interface {
	// Start installs the page-side scripts and begins dispatching Events.
	Start(ctx context.Context, ev Events) error
	// EnsureSurface installs the toolbar. Idempotent.
	EnsureSurface(ctx context.Context) error
	// SetStatus updates the toolbar status label.
	SetStatus(ctx context.Context, text string) error
	// Locate runs one media search pass. Returns ErrNoTarget when the page
	// has no usable candidate.
	Locate(ctx context.Context) (Target, error)
	// URL reads the page's current address.
	URL(ctx context.Context) (string, error)
}

// PageDriver is the production Driver: one Chrome tab over CDP.
type PageDriver struct {
	mgr    *browser.Manager
	tab    *browser.Tab
	loc    *locator.Locator
	logger *slog.Logger
}

// Attach connects to Chrome per cfg (remote debugging port or a fresh local
// launch), binds the first tab on the configured host or opens one, and
// returns the driver. Close releases the connection.
func Attach(ctx context.Context, cfg *Config, logger *slog.Logger) (*PageDriver, error) {
	if logger == nil {
		logger = slog.Default()
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL: cfg.Browser.Remote,
		Headless:  cfg.Browser.Headless,
		Stealth:   cfg.Browser.Stealth,
		Logger:    logger,
	})
	if _, err := mgr.Start(ctx); err != nil {
		return nil, err
	}

	tab, err := browser.FindOrOpen(ctx, mgr, cfg.Page.Host, cfg.Page.URL)
	if err != nil {
		mgr.Close()
		return nil, err
	}

	return &PageDriver{
		mgr: mgr,
		tab: tab,
		loc: locator.New(locator.Config{
			Selectors:    cfg.Locator.Selectors,
			MinBox:       cfg.Locator.MinBox,
			MinIntrinsic: cfg.Locator.MinIntrinsic,
			ExcludeSrc:   cfg.Locator.ExcludeSrc,
		}),
		logger: logger,
	}, nil
}

// Start registers the CDP binding, wires the event dispatcher and installs
// the navigation and mutation watchers.
func (d *PageDriver) Start(ctx context.Context, ev Events) error {
	if err := inject.EnsureBinding(d.tab.Page); err != nil {
		return err
	}
	inject.Listen(ctx, d.tab.Page, d.logger, func(e inject.Event) {
		switch e.Kind {
		case "action":
			if ev.Action != nil {
				ev.Action(Action(e.Value))
			}
		case "nav":
			if ev.Navigate != nil {
				ev.Navigate(e.Value)
			}
		case "trigger":
			if ev.Trigger != nil {
				ev.Trigger(e.Value)
			}
		default:
			d.logger.Debug("rotator: unknown page event", "kind", e.Kind)
		}
	})
	if err := inject.InstallNavWatch(ctx, d.tab.Page); err != nil {
		return err
	}
	return inject.InstallMutationWatch(ctx, d.tab.Page)
}

// EnsureSurface (re)installs the page-side scripts: toolbar, navigation
// hooks, mutation observer. All three are idempotent while the document
// lives; a full page reload discards them, and the next navigation report
// (history hook or the Go-side poll) brings them back through here.
func (d *PageDriver) EnsureSurface(ctx context.Context) error {
	if err := inject.InstallToolbar(ctx, d.tab.Page); err != nil {
		return err
	}
	if err := inject.InstallNavWatch(ctx, d.tab.Page); err != nil {
		return err
	}
	return inject.InstallMutationWatch(ctx, d.tab.Page)
}

// SetStatus updates the toolbar status label.
func (d *PageDriver) SetStatus(ctx context.Context, text string) error {
	return inject.SetStatus(ctx, d.tab.Page, text)
}

// Locate runs one media search pass.
func (d *PageDriver) Locate(ctx context.Context) (Target, error) {
	el, cand, err := d.loc.Find(ctx, d.tab.Page)
	if err != nil {
		return nil, err
	}
	d.logger.Debug("rotator: media located",
		"tag", cand.Tag, "w", cand.Width, "h", cand.Height, "src", cand.Src)
	return &pageTarget{el: el}, nil
}

// URL reads the tab's current address.
func (d *PageDriver) URL(ctx context.Context) (string, error) {
	return d.tab.URL(ctx)
}

// Close releases the tab and the browser connection. A remote browser is
// left running.
func (d *PageDriver) Close() error {
	if d.mgr != nil {
		return d.mgr.Close()
	}
	return nil
}

type pageTarget struct {
	el *rod.Element
}

func (t *pageTarget) Apply(ctx context.Context, st orientation.State) error {
	return transform.Apply(ctx, t.el, st)
}
