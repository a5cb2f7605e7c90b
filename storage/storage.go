// Package storage provides the file backing used by Glk filerefs and file
// streams. Two implementations exist: a directory store over one preopened
// host directory, and a SQLite blob store for hosts without a filesystem.
package storage

import (
	"errors"
	"io"
)

// ErrNotFound indicates the named file does not exist in the store.
var ErrNotFound = errors.New("storage: file not found")

// OpenMode selects how a file is opened. The values mirror the legacy Glk
// filemodes that reach the stream layer.
type OpenMode int

const (
	ModeRead OpenMode = iota
	ModeWrite
	ModeReadWrite
	ModeAppend
)

// File is an open file handle. Reads and writes return short counts on
// error; the stream layer never sees an error beyond that.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
}

// Store is a named-file backing. Names are flat; path separators are
// stripped by implementations so a store can never escape its root.
type Store interface {
	Open(name string, mode OpenMode) (File, error)
	Exists(name string) bool
	Delete(name string) error
	Close() error
}
