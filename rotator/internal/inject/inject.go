// Package inject owns the JavaScript installed into the controlled page:
// the toolbar control surface, the navigation hooks, and the mutation
// observer. Everything the page wants to tell the session flows back over
// a single CDP binding as a small JSON envelope.
package inject

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// BindingName is the in-page function the injected scripts call.
const BindingName = "__driveorient"

//go:embed toolbar.js
var toolbarJS string

//go:embed navwatch.js
var navwatchJS string

//go:embed mutations.js
var mutationsJS string

// Event is the envelope the page sends over the binding.
//
//	kind "action":  value is a toolbar action name (rotate_left, ...)
//	kind "nav":     value is the new address
//	kind "trigger": value names the cause (mutation, resize)
type Event struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

// EnsureBinding registers the page binding. Registering twice is harmless;
// the binding survives same-target navigations.
func EnsureBinding(page *rod.Page) error {
	err := proto.RuntimeAddBinding{Name: BindingName}.Call(page)
	if err != nil {
		return fmt.Errorf("inject: add binding: %w", err)
	}
	return nil
}

// InstallToolbar injects the control surface. The script is idempotent:
// when the toolbar element already exists it does nothing, so repeated
// installs never duplicate controls.
func InstallToolbar(ctx context.Context, page *rod.Page) error {
	if _, err := page.Context(ctx).Eval(toolbarJS); err != nil {
		return fmt.Errorf("inject: toolbar: %w", err)
	}
	return nil
}

// InstallNavWatch injects the history hooks and the polling fallback.
func InstallNavWatch(ctx context.Context, page *rod.Page) error {
	if _, err := page.Context(ctx).Eval(navwatchJS); err != nil {
		return fmt.Errorf("inject: navwatch: %w", err)
	}
	return nil
}

// InstallMutationWatch injects the MutationObserver that re-triggers the
// media search on structural changes.
func InstallMutationWatch(ctx context.Context, page *rod.Page) error {
	if _, err := page.Context(ctx).Eval(mutationsJS); err != nil {
		return fmt.Errorf("inject: mutations: %w", err)
	}
	return nil
}

// SetStatus updates the toolbar status label. Missing toolbar is a no-op.
func SetStatus(ctx context.Context, page *rod.Page, text string) error {
	_, err := page.Context(ctx).Eval(`(text) => {
		const el = document.getElementById('driveorient-status');
		if (el) el.textContent = text;
	}`, text)
	if err != nil {
		return fmt.Errorf("inject: set status: %w", err)
	}
	return nil
}

// Listen dispatches binding calls to fn until ctx is cancelled. It runs in
// its own goroutine; fn is called from that goroutine.
func Listen(ctx context.Context, page *rod.Page, logger *slog.Logger, fn func(Event)) {
	go page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != BindingName {
			return
		}
		var ev Event
		if err := json.Unmarshal([]byte(e.Payload), &ev); err != nil {
			logger.Warn("inject: bad binding payload", "error", err)
			return
		}
		fn(ev)
	})()
}
