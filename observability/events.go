// Package observability records orientation actions into the driveorient
// database. Writes are fire-and-forget: a failing event store must never
// block or fail the session.
package observability

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"driveorient/idgen"
)

// Schema contains the DDL for the action event log. Applied by the store
// alongside its own schema.
const Schema = `
CREATE TABLE IF NOT EXISTS action_events (
    event_id   TEXT PRIMARY KEY,
    session_id TEXT NOT NULL,
    file_id    TEXT NOT NULL,
    action     TEXT NOT NULL,
    angle      INTEGER NOT NULL,
    flip_x     INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_action_events_file ON action_events(file_id, created_at);
`

// ActionEvent is one recorded user or API action.
type ActionEvent struct {
	SessionID string
	FileID    string
	Action    string
	Angle     int
	FlipX     bool
}

// EventLogger writes action events.
type EventLogger struct {
	db    *sql.DB
	newID idgen.Generator
}

// EventLoggerOption configures an EventLogger.
type EventLoggerOption func(*EventLogger)

// WithEventIDGenerator sets a custom ID generator for event IDs.
func WithEventIDGenerator(gen idgen.Generator) EventLoggerOption {
	return func(l *EventLogger) { l.newID = gen }
}

// NewEventLogger creates a logger writing into the given database.
func NewEventLogger(db *sql.DB, opts ...EventLoggerOption) *EventLogger {
	l := &EventLogger{
		db:    db,
		newID: idgen.Prefixed("evt_", idgen.Default),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// LogAction records an action. Errors are logged via slog and swallowed.
func (l *EventLogger) LogAction(ctx context.Context, ev ActionEvent) {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO action_events (
			event_id, session_id, file_id, action, angle, flip_x, created_at
		) VALUES (?,?,?,?,?,?,?)`,
		l.newID(), ev.SessionID, ev.FileID, ev.Action, ev.Angle, ev.FlipX, time.Now().Unix())
	if err != nil {
		slog.Debug("observability: action log failed", "error", err, "action", ev.Action)
	}
}

// CountActions returns the number of recorded events for a file, or for all
// files when fileID is empty.
func (l *EventLogger) CountActions(ctx context.Context, fileID string) (int, error) {
	var n int
	var err error
	if fileID == "" {
		err = l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM action_events`).Scan(&n)
	} else {
		err = l.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM action_events WHERE file_id = ?`, fileID).Scan(&n)
	}
	return n, err
}
