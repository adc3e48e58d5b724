package rotator

import (
	"context"
	"time"
)

// pollNav is the Go-side navigation fallback. The injected history hooks
// are the primary signal; this poll catches address changes they miss
// (e.g. after a full page reload replaced the injected scripts). Duplicate
// reports are cheap: the loop ignores navigations to the current context.
func (s *Session) pollNav(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.Cycle.NavPollInterval)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		u, err := s.drv.URL(ctx)
		if err != nil {
			s.logger.Debug("rotator: nav poll", "error", err)
			continue
		}
		if u == "" || u == last {
			continue
		}
		last = u
		select {
		case s.navCh <- u:
		case <-ctx.Done():
			return
		}
	}
}
