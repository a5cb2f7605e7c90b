package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps files as blobs in a single-table SQLite database,
// for hosts that expose no real filesystem to the session.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS files (
	name TEXT PRIMARY KEY,
	data BLOB NOT NULL,
	updated_at INTEGER NOT NULL DEFAULT (strftime('%s','now'))
);
`

// NewSQLiteStore opens (creating if needed) a blob store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Open loads the named blob into a buffered handle. Writes are flushed
// back to the database when the handle is closed.
func (s *SQLiteStore) Open(name string, mode OpenMode) (File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.QueryRow(`SELECT data FROM files WHERE name = ?`, name).Scan(&data)
	missing := errors.Is(err, sql.ErrNoRows)
	if err != nil && !missing {
		return nil, fmt.Errorf("storage: load %s: %w", name, err)
	}

	switch mode {
	case ModeRead:
		if missing {
			return nil, ErrNotFound
		}
	case ModeWrite:
		data = nil
	case ModeReadWrite, ModeAppend:
		// keep existing contents, creating on close if missing
	default:
		return nil, fmt.Errorf("storage: bad open mode %d", mode)
	}

	f := &blobFile{store: s, name: name, data: data, mode: mode}
	if mode == ModeAppend {
		f.pos = int64(len(data))
	}
	return f, nil
}

// Exists reports whether the named blob exists.
func (s *SQLiteStore) Exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM files WHERE name = ?`, name).Scan(&one)
	return err == nil
}

// Delete removes the named blob. Deleting a missing blob is not an error.
func (s *SQLiteStore) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec(`DELETE FROM files WHERE name = ?`, name); err != nil {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) save(name string, data []byte) error {
	if data == nil {
		// A nil slice binds as SQL NULL and trips the NOT NULL constraint;
		// an empty file must still persist.
		data = []byte{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(
		`INSERT INTO files (name, data, updated_at) VALUES (?, ?, strftime('%s','now'))
		 ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data)
	if err != nil {
		return fmt.Errorf("storage: save %s: %w", name, err)
	}
	return nil
}

// blobFile is an in-memory cursor over one blob's contents.
type blobFile struct {
	store  *SQLiteStore
	name   string
	data   []byte
	pos    int64
	mode   OpenMode
	closed bool
}

func (f *blobFile) Read(p []byte) (int, error) {
	if f.mode == ModeWrite || f.mode == ModeAppend {
		return 0, fmt.Errorf("storage: %s not open for reading", f.name)
	}
	if f.pos >= int64(len(f.data)) {
		return 0, io.EOF
	}
	n := copy(p, f.data[f.pos:])
	f.pos += int64(n)
	return n, nil
}

func (f *blobFile) Write(p []byte) (int, error) {
	if f.mode == ModeRead {
		return 0, fmt.Errorf("storage: %s not open for writing", f.name)
	}
	end := f.pos + int64(len(p))
	if end > int64(len(f.data)) {
		grown := make([]byte, end)
		copy(grown, f.data)
		f.data = grown
	}
	copy(f.data[f.pos:], p)
	f.pos = end
	return len(p), nil
}

func (f *blobFile) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = f.pos + offset
	case io.SeekEnd:
		pos = int64(len(f.data)) + offset
	default:
		return f.pos, fmt.Errorf("storage: bad whence %d", whence)
	}
	if pos < 0 {
		pos = 0
	}
	f.pos = pos
	return pos, nil
}

func (f *blobFile) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.mode == ModeRead {
		return nil
	}
	return f.store.save(f.name, f.data)
}
