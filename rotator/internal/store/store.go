// Package store provides the SQLite persistence layer for per-file
// orientation state.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"driveorient/dbopen"
	"driveorient/observability"
	"driveorient/orientation"
)

// KeyPrefix namespaces every persisted record, mirroring the storage key
// scheme of the browser-side ancestor of this tool.
const KeyPrefix = "gdrive_rotation_"

// Store is the orientation database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the orientation database at path, applies the
// production pragmas and the orientation + event-log schemas.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
		dbopen.WithSchema(observability.Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// Save durably associates fileID with st, overwriting any prior value.
// An empty fileID is a silent no-op: there is nothing meaningful to key on.
// Callers treat errors as fire-and-forget; in-memory state stays
// authoritative for the page lifetime either way.
func (s *Store) Save(ctx context.Context, fileID string, st orientation.State) error {
	if fileID == "" {
		return nil
	}
	_, err := dbopen.Exec(ctx, s.DB, `
		INSERT INTO orientation_states (key, file_id, angle, flip_x, updated_at)
		VALUES (?,?,?,?,?)
		ON CONFLICT(key) DO UPDATE SET
			angle = excluded.angle,
			flip_x = excluded.flip_x,
			updated_at = excluded.updated_at`,
		KeyPrefix+fileID, fileID, orientation.Normalize(st.Angle), st.FlipX, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("store: save %s: %w", fileID, err)
	}
	return nil
}

// Load returns the saved state for fileID, or nil when fileID is empty or
// no record exists.
func (s *Store) Load(ctx context.Context, fileID string) (*orientation.State, error) {
	if fileID == "" {
		return nil, nil
	}
	var st orientation.State
	err := s.DB.QueryRowContext(ctx, `
		SELECT angle, flip_x FROM orientation_states WHERE key = ?`,
		KeyPrefix+fileID).Scan(&st.Angle, &st.FlipX)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load %s: %w", fileID, err)
	}
	return &st, nil
}

// Record is a persisted orientation with its file identifier.
type Record struct {
	FileID    string            `json:"file_id"`
	State     orientation.State `json:"state"`
	UpdatedAt int64             `json:"updated_at"`
}

// List returns all persisted records, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT file_id, angle, flip_x, updated_at
		FROM orientation_states
		ORDER BY updated_at DESC, file_id`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.FileID, &r.State.Angle, &r.State.FlipX, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("store: list scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
