package rotator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"driveorient/idgen"
	"driveorient/observability"
	"driveorient/orientation"
	"driveorient/rotator/internal/config"
	"driveorient/rotator/internal/store"
	"driveorient/rotator/internal/trigger"
)

// Session binds one browser tab and keeps its media preview oriented.
//
// All mutable session state (file context, orientation, bound target,
// retry bookkeeping) is owned by the Run event loop; driver callbacks,
// HTTP handlers and MCP tools reach it through channels only. That single
// execution context keeps the interleavings (a navigation during a pending
// state load, a click during a locate pass) safe to reason about.
type Session struct {
	id     string
	cfg    *config.Config
	drv    Driver
	store  *store.Store
	events *observability.EventLogger
	logger *slog.Logger

	reqCh  chan request
	navCh  chan string
	trigCh chan string
	loadCh chan loadResult
	saveCh chan saveRequest
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithSessionID overrides the generated session identifier.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithEventLogger sets the action event logger. By default one is created
// over the store's database; with a nil store, events are off.
func WithEventLogger(el *observability.EventLogger) Option {
	return func(s *Session) { s.events = el }
}

// New creates a Session over drv. st may be nil, which disables
// persistence: orientations then live only for the session.
func New(cfg *config.Config, drv Driver, st *store.Store, opts ...Option) *Session {
	s := &Session{
		id:     idgen.Prefixed("ses_", idgen.Default)(),
		cfg:    cfg,
		drv:    drv,
		store:  st,
		logger: slog.Default(),
		reqCh:  make(chan request),
		navCh:  make(chan string, 8),
		trigCh: make(chan string, 8),
		loadCh: make(chan loadResult, 4),
		saveCh: make(chan saveRequest, 64),
	}
	for _, o := range opts {
		o(s)
	}
	if s.events == nil && st != nil {
		s.events = observability.NewEventLogger(st.DB)
	}
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Snapshot is the session's externally visible state at one instant.
type Snapshot struct {
	SessionID string            `json:"session_id"`
	FileID    string            `json:"file_id"`
	State     orientation.State `json:"state"`
	Phase     Phase             `json:"phase"`
	Attempts  int               `json:"attempts"`
	HasTarget bool              `json:"has_target"`
}

type request struct {
	action Action // empty = snapshot query
	reply  chan reply
}

type reply struct {
	snap Snapshot
	err  error
}

type loadResult struct {
	gen    uint64
	fileID string
	st     *orientation.State
	err    error
}

type saveRequest struct {
	fileID string
	action Action
	state  orientation.State
}

// Do applies an action and returns the resulting state. Safe to call from
// any goroutine while Run is active.
func (s *Session) Do(ctx context.Context, a Action) (orientation.State, error) {
	rep, err := s.roundTrip(ctx, request{action: a, reply: make(chan reply, 1)})
	if err != nil {
		return orientation.State{}, err
	}
	return rep.snap.State, rep.err
}

// Snapshot returns the current session state. Safe to call from any
// goroutine while Run is active.
func (s *Session) Snapshot(ctx context.Context) (Snapshot, error) {
	rep, err := s.roundTrip(ctx, request{reply: make(chan reply, 1)})
	if err != nil {
		return Snapshot{}, err
	}
	return rep.snap, rep.err
}

func (s *Session) roundTrip(ctx context.Context, req request) (reply, error) {
	select {
	case s.reqCh <- req:
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
	select {
	case rep := <-req.reply:
		return rep, nil
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// Saved returns the persisted state for fileID, nil when none exists.
func (s *Session) Saved(ctx context.Context, fileID string) (*orientation.State, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Load(ctx, fileID)
}

// ActionCount returns the number of recorded actions for fileID, or for
// all files when fileID is empty.
func (s *Session) ActionCount(ctx context.Context, fileID string) (int, error) {
	if s.events == nil {
		return 0, nil
	}
	return s.events.CountActions(ctx, fileID)
}

// List returns all persisted orientations, most recently updated first.
func (s *Session) List(ctx context.Context) ([]Record, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// Run drives the session until ctx is cancelled. It installs the page
// scripts, derives the initial file context and then serves the event loop.
func (s *Session) Run(ctx context.Context) error {
	url0, err := s.drv.URL(ctx)
	if err != nil {
		return fmt.Errorf("rotator: initial url: %w", err)
	}

	// Bridge the page's own asynchronous render before touching the DOM.
	select {
	case <-time.After(s.cfg.Cycle.InitialDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	err = s.drv.Start(ctx, Events{
		Action: func(a Action) {
			// Fire-and-forget: toolbar clicks need no reply channel.
			select {
			case s.reqCh <- request{action: a}:
			case <-ctx.Done():
			}
		},
		Trigger: func(cause string) {
			select {
			case s.trigCh <- cause:
			default: // loop is behind; the pending signal already covers this burst
			}
		},
		Navigate: func(u string) {
			select {
			case s.navCh <- u:
			default:
			}
		},
	})
	if err != nil {
		return err
	}

	if s.cfg.Cycle.NavPollInterval > 0 {
		go s.pollNav(ctx)
	}
	if s.store != nil {
		go s.saver(ctx)
	}

	s.logger.Info("rotator: session started", "session_id", s.id, "url", url0)
	return s.serve(ctx, url0)
}

// loop is the event-loop state. Only serve's goroutine touches it.
type loop struct {
	s   *Session
	ctx context.Context

	started  bool
	fileID   string
	state    orientation.State
	target   Target
	phase    Phase
	attempts int
	gen      uint64

	deb    *trigger.Debouncer
	retryT *time.Timer
	retryC <-chan time.Time
}

func (s *Session) serve(ctx context.Context, initialURL string) error {
	l := &loop{
		s:     s,
		ctx:   ctx,
		phase: PhaseSearching,
		deb:   trigger.NewDebouncer(s.cfg.Cycle.DebounceWindow),
	}
	l.handleNav(initialURL)

	for {
		select {
		case <-ctx.Done():
			l.cancelRetry()
			return ctx.Err()

		case req := <-s.reqCh:
			l.handleRequest(req)

		case u := <-s.navCh:
			l.handleNav(u)

		case cause := <-s.trigCh:
			s.logger.Debug("rotator: trigger", "cause", cause)
			l.deb.Bump()

		case <-l.deb.C():
			n := l.deb.Consume()
			if n > 1 {
				s.logger.Debug("rotator: coalesced triggers", "count", n)
			}
			// An external signal restarts the retry budget after exhaustion.
			if l.phase == PhaseNotFound {
				l.attempts = 0
			}
			l.locate()

		case <-l.retryC:
			l.retryT = nil
			l.retryC = nil
			l.locate()

		case lr := <-s.loadCh:
			l.applyLoad(lr)
		}
	}
}

// handleNav re-derives the file context from a page address. Entering a new
// context resets the orientation to the default, starts an asynchronous
// state load and re-arms the media search.
func (l *loop) handleNav(raw string) {
	s := l.s

	if !orientation.OnDriveOrigin(raw, s.cfg.Page.Host) {
		l.started = true
		l.fileID = ""
		l.target = nil
		l.attempts = 0
		l.cancelRetry()
		l.setPhase(PhaseOffPreview, 0)
		return
	}

	id := orientation.ContextFromURL(raw)
	if l.started && id == l.fileID && l.phase != PhaseOffPreview {
		// Same file context. A full reload lands here too, with the
		// injected scripts discarded; reinstall them and re-check the DOM.
		if err := s.drv.EnsureSurface(l.ctx); err != nil {
			s.logger.Warn("rotator: script install", "error", err)
		}
		l.deb.Bump()
		return
	}

	l.started = true
	l.fileID = id
	l.state = orientation.State{} // default until the load lands
	l.target = nil
	l.attempts = 0
	l.cancelRetry()
	l.gen++

	s.logger.Info("rotator: file context", "file_id", id)

	// SPA navigations keep the document, so the toolbar usually survives;
	// the install script no-ops in that case.
	if err := s.drv.EnsureSurface(l.ctx); err != nil {
		s.logger.Warn("rotator: toolbar install", "error", err)
	}
	l.setPhase(PhaseSearching, 1)

	go s.load(l.ctx, l.gen, id)
	l.deb.Bump()
}

// load fetches the persisted state off the loop goroutine. The result
// carries the generation it was started under; the loop discards stale
// generations, so a quick back-and-forth navigation cannot resurrect the
// previous file's orientation.
func (s *Session) load(ctx context.Context, gen uint64, fileID string) {
	if s.store == nil {
		return
	}
	st, err := s.store.Load(ctx, fileID)
	select {
	case s.loadCh <- loadResult{gen: gen, fileID: fileID, st: st, err: err}:
	case <-ctx.Done():
	}
}

func (l *loop) applyLoad(lr loadResult) {
	if lr.gen != l.gen {
		return // session moved to another file while this load ran
	}
	if lr.err != nil {
		l.s.logger.Warn("rotator: state load", "file_id", lr.fileID, "error", lr.err)
		return
	}
	if lr.st == nil {
		return // nothing saved, keep the default
	}
	l.state = *lr.st
	l.applyState("load")
}

func (l *loop) handleRequest(req request) {
	if req.action == "" {
		if req.reply != nil {
			req.reply <- reply{snap: l.snapshot()}
		}
		return
	}

	next, ok := req.action.apply(l.state)
	if !ok {
		l.s.logger.Warn("rotator: unknown action", "action", req.action)
		if req.reply != nil {
			req.reply <- reply{err: fmt.Errorf("rotator: unknown action %q", req.action)}
		}
		return
	}

	l.state = next
	l.applyState(string(req.action))
	l.persist(req.action, next)
	if req.reply != nil {
		req.reply <- reply{snap: l.snapshot()}
	}
}

// applyState pushes the current state onto the bound target. A failed
// apply usually means the element was torn down, so the target is dropped
// and the search re-armed.
func (l *loop) applyState(cause string) {
	if l.target == nil {
		return
	}
	if err := l.target.Apply(l.ctx, l.state); err != nil {
		l.s.logger.Warn("rotator: transform apply", "cause", cause, "error", err)
		l.target = nil
		l.deb.Bump()
	}
}

// persist hands the state to the save writer. Fire-and-forget: the
// in-memory state stays authoritative for the page lifetime even when the
// write fails or the queue is full.
func (l *loop) persist(a Action, st orientation.State) {
	s := l.s
	if s.store == nil || l.fileID == "" {
		return
	}
	select {
	case s.saveCh <- saveRequest{fileID: l.fileID, action: a, state: st}:
	default:
		// Writer far behind; a later action's write supersedes this one.
		s.logger.Warn("rotator: save queue full, dropping write", "file_id", l.fileID)
	}
}

// saver is the single persistence writer. Funnelling every write through
// one goroutine keeps them in action order, so the record on disk always
// converges on the last applied state rather than whichever concurrent
// write happened to land last.
func (s *Session) saver(ctx context.Context) {
	for {
		var req saveRequest
		select {
		case <-ctx.Done():
			return
		case req = <-s.saveCh:
		}

		wctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.store.Save(wctx, req.fileID, req.state); err != nil {
			s.logger.Warn("rotator: save failed, keeping in-memory state",
				"file_id", req.fileID, "error", err)
		}
		if s.events != nil {
			s.events.LogAction(wctx, observability.ActionEvent{
				SessionID: s.id,
				FileID:    req.fileID,
				Action:    string(req.action),
				Angle:     req.state.Angle,
				FlipX:     req.state.FlipX,
			})
		}
		cancel()
	}
}

// locate runs one media search pass and updates phase, target and retry
// bookkeeping.
func (l *loop) locate() {
	s := l.s
	if l.phase == PhaseOffPreview {
		return
	}

	l.attempts++
	tgt, err := s.drv.Locate(l.ctx)
	if err == nil {
		l.target = tgt
		l.attempts = 0
		l.cancelRetry()
		l.setPhase(PhaseFound, 0)
		l.applyState("locate")
		return
	}

	if !errors.Is(err, ErrNoTarget) {
		s.logger.Warn("rotator: locate", "error", err)
	}
	l.target = nil

	if l.attempts < s.cfg.Cycle.MaxAttempts {
		l.setPhase(PhaseSearching, l.attempts)
		l.scheduleRetry()
		return
	}

	// Bounded retries exhausted. From here only an external trigger
	// (mutation, resize, navigation) restarts the search.
	l.cancelRetry()
	l.setPhase(PhaseNotFound, l.attempts)
}

func (l *loop) setPhase(p Phase, attempt int) {
	l.phase = p
	if err := l.s.drv.SetStatus(l.ctx, statusText(p, attempt)); err != nil {
		l.s.logger.Debug("rotator: status update", "error", err)
	}
}

func (l *loop) scheduleRetry() {
	if l.retryT != nil {
		l.retryT.Stop()
	}
	l.retryT = time.NewTimer(l.s.cfg.Cycle.RetryInterval)
	l.retryC = l.retryT.C
}

func (l *loop) cancelRetry() {
	if l.retryT != nil {
		l.retryT.Stop()
		l.retryT = nil
	}
	l.retryC = nil
}

func (l *loop) snapshot() Snapshot {
	return Snapshot{
		SessionID: l.s.id,
		FileID:    l.fileID,
		State:     l.state,
		Phase:     l.phase,
		Attempts:  l.attempts,
		HasTarget: l.target != nil,
	}
}
