package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/glkrun/glk"
	"github.com/chazu/glkrun/server"
	"github.com/chazu/glkrun/storage"
)

const testInit = `{"type":"init","gen":0,"metrics":{"width":800,"height":480,"charwidth":10,"charheight":16}}` + "\n"

func testSession(t *testing.T) *glk.Session {
	t.Helper()
	store, err := storage.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ch := server.NewStdioChannel(strings.NewReader(testInit), io.Discard)
	return glk.NewSession(ch, glk.WithStore(store), glk.WithExitFunc(func() {}))
}

func TestAutosaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.snap")

	s := testSession(t)
	main := s.WindowOpen(nil, 0, 0, glk.WintypeTextBuffer, 1)
	s.WindowOpen(main, glk.WinmethodAbove|glk.WinmethodFixed, 1, glk.WintypeTextGrid, 2)
	s.SetWindow(main)
	s.PutString("saved state\n")

	if err := saveAutosave(s, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("snapshot file: %v", err)
	}

	s2 := testSession(t)
	if err := restoreAutosave(s2, path); err != nil {
		t.Fatalf("restore: %v", err)
	}
	if root := s2.WindowGetRoot(); root == nil || root.Type != glk.WintypePair {
		t.Fatal("window tree not restored")
	}
	m2, st2 := demoWindows(s2)
	if m2 == nil || m2.Type != glk.WintypeTextBuffer {
		t.Error("main window not found by rock")
	}
	if st2 == nil || st2.Type != glk.WintypeTextGrid {
		t.Error("status window not found by rock")
	}
}

func TestAutosaveRestoreMissingFile(t *testing.T) {
	s := testSession(t)
	if err := restoreAutosave(s, filepath.Join(t.TempDir(), "absent.snap")); err != nil {
		t.Fatalf("missing snapshot should be ignored: %v", err)
	}
	if s.WindowGetRoot() != nil {
		t.Error("windows appeared from nowhere")
	}
}

func TestAutosaveRestoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.snap")
	if err := os.WriteFile(path, []byte("not cbor"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := testSession(t)
	if err := restoreAutosave(s, path); err == nil {
		t.Error("corrupt snapshot accepted")
	}
}
