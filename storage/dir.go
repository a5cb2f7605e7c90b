package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirStore keeps files under one preopened working directory.
type DirStore struct {
	root string
}

// NewDirStore creates the directory if needed and returns a store over it.
func NewDirStore(root string) (*DirStore, error) {
	if root == "" {
		root = "."
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("storage: create root %s: %w", root, err)
	}
	return &DirStore{root: root}, nil
}

func (d *DirStore) path(name string) string {
	return filepath.Join(d.root, filepath.Base(name))
}

// Open opens the named file in the given mode.
func (d *DirStore) Open(name string, mode OpenMode) (File, error) {
	var flag int
	switch mode {
	case ModeRead:
		flag = os.O_RDONLY
	case ModeWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case ModeReadWrite:
		flag = os.O_RDWR | os.O_CREATE
	case ModeAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	default:
		return nil, fmt.Errorf("storage: bad open mode %d", mode)
	}
	f, err := os.OpenFile(d.path(name), flag, 0644)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: open %s: %w", name, err)
	}
	return f, nil
}

// Exists reports whether the named file exists.
func (d *DirStore) Exists(name string) bool {
	_, err := os.Stat(d.path(name))
	return err == nil
}

// Delete removes the named file. Deleting a missing file is not an error.
func (d *DirStore) Delete(name string) error {
	err := os.Remove(d.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", name, err)
	}
	return nil
}

// Close is a no-op for directory stores.
func (d *DirStore) Close() error { return nil }
