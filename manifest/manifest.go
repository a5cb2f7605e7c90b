// Package manifest handles glkrun.toml configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a glkrun.toml configuration file.
type Manifest struct {
	Session Session `toml:"session"`
	Storage Storage `toml:"storage"`
	Limits  Limits  `toml:"limits"`

	// Dir is the directory containing the glkrun.toml file (set at load time).
	Dir string `toml:"-"`
}

// Session holds session-level defaults.
type Session struct {
	// GridWidth and GridHeight size new grid windows before the client's
	// metrics are known.
	GridWidth  int `toml:"grid-width"`
	GridHeight int `toml:"grid-height"`

	// Support lists capability overrides announced to gestalt even if the
	// client did not claim them (e.g. ["timer", "hyperlinks"]).
	Support []string `toml:"support"`

	// Autosave is an optional path for CBOR session snapshots.
	Autosave string `toml:"autosave"`
}

// Storage selects the file backing.
type Storage struct {
	// Backend is "dir" (default) or "sqlite".
	Backend string `toml:"backend"`

	// Root is the preopened working directory for the dir backend.
	Root string `toml:"root"`

	// Database is the SQLite database path for the sqlite backend.
	Database string `toml:"database"`
}

// Limits caps the protocol accumulator queues. Zero means unbounded.
// Entries past a cap are silently dropped (bounded-memory policy).
type Limits struct {
	MaxContent int `toml:"max-content"`
	MaxWindows int `toml:"max-windows"`
	MaxDebug   int `toml:"max-debug"`
}

// Load parses a glkrun.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "glkrun.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a glkrun.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, "glkrun.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// Default returns a manifest with all defaults applied and no backing file.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Session.GridWidth == 0 {
		m.Session.GridWidth = 80
	}
	if m.Session.GridHeight == 0 {
		m.Session.GridHeight = 24
	}
	if m.Storage.Backend == "" {
		m.Storage.Backend = "dir"
	}
	if m.Storage.Root == "" {
		m.Storage.Root = "."
	}
	if m.Storage.Database == "" {
		m.Storage.Database = "glkfiles.db"
	}
}

// StorageRoot returns the working directory for the dir backend, resolved
// against the manifest's own directory when relative.
func (m *Manifest) StorageRoot() string {
	if m.Dir == "" || filepath.IsAbs(m.Storage.Root) {
		return m.Storage.Root
	}
	return filepath.Join(m.Dir, m.Storage.Root)
}

// DatabasePath returns the SQLite path for the sqlite backend, resolved
// against the manifest's own directory when relative.
func (m *Manifest) DatabasePath() string {
	if m.Dir == "" || filepath.IsAbs(m.Storage.Database) {
		return m.Storage.Database
	}
	return filepath.Join(m.Dir, m.Storage.Database)
}

// AutosavePath returns the session snapshot path, resolved against the
// manifest's own directory when relative. Empty when autosave is off.
func (m *Manifest) AutosavePath() string {
	if m.Session.Autosave == "" || m.Dir == "" || filepath.IsAbs(m.Session.Autosave) {
		return m.Session.Autosave
	}
	return filepath.Join(m.Dir, m.Session.Autosave)
}
