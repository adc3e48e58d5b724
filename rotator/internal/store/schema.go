package store

// Schema contains the DDL for the orientation tables.
const Schema = `
-- Persisted per-file orientation. key is the namespaced form
-- ("gdrive_rotation_" + file_id); file_id is kept denormalised for listing.
CREATE TABLE IF NOT EXISTS orientation_states (
    key        TEXT PRIMARY KEY,
    file_id    TEXT NOT NULL,
    angle      INTEGER NOT NULL DEFAULT 0,
    flip_x     INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_orientation_file ON orientation_states(file_id);
`
