// Package rotator keeps a Google Drive media preview oriented the way the
// user wants it. A Session binds one browser tab: it injects a small
// toolbar, locates the previewed image or video, applies rotate/flip
// transforms, and persists the chosen orientation per file so it is
// restored on the next visit.
//
// The heavy lifting lives in internal packages; this package re-exports
// what a caller needs to wire a session up.
package rotator

import (
	"driveorient/dbopen"
	"driveorient/rotator/internal/config"
	"driveorient/rotator/internal/store"
)

// Config is the rotator configuration.
type Config = config.Config

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return config.Default()
}

// Store is the orientation database handle.
type Store = store.Store

// Record is a persisted orientation with its file identifier.
type Record = store.Record

// OpenStore opens (or creates) the orientation database at path.
func OpenStore(path string, opts ...dbopen.Option) (*Store, error) {
	return store.Open(path, opts...)
}
