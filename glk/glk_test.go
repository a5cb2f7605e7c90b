package glk

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/chazu/glkrun/protocol"
	"github.com/chazu/glkrun/storage"
)

// scriptChannel feeds a fixed script of event lines and records every line
// the session writes. An exhausted script reads as end-of-input.
type scriptChannel struct {
	lines  [][]byte
	writes [][]byte
}

func (c *scriptChannel) ReadLine() ([]byte, error) {
	if len(c.lines) == 0 {
		return nil, io.EOF
	}
	line := c.lines[0]
	c.lines = c.lines[1:]
	return line, nil
}

func (c *scriptChannel) WriteLine(line []byte) error {
	c.writes = append(c.writes, append([]byte(nil), line...))
	return nil
}

func (c *scriptChannel) push(line string) {
	c.lines = append(c.lines, []byte(line))
}

const initLine = `{"type":"init","gen":0,` +
	`"metrics":{"width":800,"height":480,"charwidth":10,"charheight":16,` +
	`"gridcharwidth":10,"gridcharheight":16},` +
	`"support":["timer","hyperlinks","mouse","graphics"]}`

// newTestSession builds a session whose exit sets a flag instead of killing
// the test binary, backed by a throwaway directory store. The init
// handshake line is pre-queued.
func newTestSession(t *testing.T) (*Session, *scriptChannel, *bool) {
	t.Helper()
	ch := &scriptChannel{}
	ch.push(initLine)
	exited := false
	st, err := storage.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	s := NewSession(ch,
		WithStore(st),
		WithExitFunc(func() { exited = true }),
	)
	return s, ch, &exited
}

// lastUpdate decodes the most recently written line as an update.
func lastUpdate(t *testing.T, ch *scriptChannel) *protocol.Update {
	t.Helper()
	if len(ch.writes) == 0 {
		t.Fatal("no update written")
	}
	var u protocol.Update
	if err := json.Unmarshal(ch.writes[len(ch.writes)-1], &u); err != nil {
		t.Fatalf("unmarshal update: %v\n%s", err, ch.writes[len(ch.writes)-1])
	}
	return &u
}

func allUpdates(t *testing.T, ch *scriptChannel) []*protocol.Update {
	t.Helper()
	var us []*protocol.Update
	for _, w := range ch.writes {
		var u protocol.Update
		if err := json.Unmarshal(w, &u); err != nil {
			t.Fatalf("unmarshal update: %v\n%s", err, w)
		}
		us = append(us, &u)
	}
	return us
}
