package glk

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ---- Snapshot wire format ----

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("glk: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot captures the display-relevant state of a session: the window
// tree, grid contents, stream positions for window streams, the timer, and
// the generation counter. Memory and file streams are not captured; the
// host is expected to persist those through its own storage.
type Snapshot struct {
	Gen           uint32           `cbor:"gen"`
	TimerInterval uint32           `cbor:"timer"`
	Style         uint32           `cbor:"style"`
	Hyperlink     uint32           `cbor:"hyperlink"`
	Root          uint32           `cbor:"root"`
	Current       uint32           `cbor:"current"`
	Windows       []WindowSnapshot `cbor:"windows"`
}

// WindowSnapshot is one window's entry in a snapshot. Tree links are
// recorded by window id; zero means none.
type WindowSnapshot struct {
	ID       uint32   `cbor:"id"`
	Rock     uint32   `cbor:"rock"`
	Type     uint32   `cbor:"type"`
	Parent   uint32   `cbor:"parent"`
	Child1   uint32   `cbor:"child1"`
	Child2   uint32   `cbor:"child2"`
	Key      uint32   `cbor:"key"`
	Method   uint32   `cbor:"method"`
	Size     uint32   `cbor:"size"`
	Echo     bool     `cbor:"echo"`
	NewPara  bool     `cbor:"newpara"`
	GridW    int      `cbor:"gridw"`
	GridH    int      `cbor:"gridh"`
	CurX     int      `cbor:"curx"`
	CurY     int      `cbor:"cury"`
	Rows     []GridRowSnapshot `cbor:"rows,omitempty"`
	BGColor  uint32   `cbor:"bgcolor"`
}

// GridRowSnapshot holds one grid row as parallel rune, style and link
// slices.
type GridRowSnapshot struct {
	Chars  []rune   `cbor:"chars"`
	Styles []uint32 `cbor:"styles"`
	Links  []uint32 `cbor:"links"`
}

// MarshalSnapshot serializes a Snapshot to CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("glk: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

func winID(w *Window) uint32 {
	if w == nil {
		return 0
	}
	return w.id
}

// SaveSnapshot captures the current session display state.
func (s *Session) SaveSnapshot() *Snapshot {
	s.flushText()
	snap := &Snapshot{
		Gen:           s.gen,
		TimerInterval: s.timerInterval,
		Style:         s.style,
		Hyperlink:     s.hyperlink,
		Root:          winID(s.root),
		Current:       0,
	}
	if s.current != nil && s.current.kind == streamWindow {
		snap.Current = winID(s.current.win)
	}
	s.windows.each(func(w *Window) {
		ws := WindowSnapshot{
			ID:      w.id,
			Rock:    w.Rock,
			Type:    w.Type,
			Parent:  winID(w.parent),
			Child1:  winID(w.child1),
			Child2:  winID(w.child2),
			Key:     winID(w.key),
			Method:  w.method,
			Size:    w.size,
			Echo:    w.echoLineInput,
			NewPara: w.needsNewPara,
			GridW:   w.gridW,
			GridH:   w.gridH,
			CurX:    w.curX,
			CurY:    w.curY,
			BGColor: w.bgColor,
		}
		if w.Type == WintypeTextGrid {
			ws.Rows = make([]GridRowSnapshot, len(w.grid))
			for y, row := range w.grid {
				gr := GridRowSnapshot{
					Chars:  make([]rune, len(row)),
					Styles: make([]uint32, len(row)),
					Links:  make([]uint32, len(row)),
				}
				for x, c := range row {
					gr.Chars[x] = c.ch
					gr.Styles[x] = c.style
					gr.Links[x] = c.link
				}
				ws.Rows[y] = gr
			}
		}
		snap.Windows = append(snap.Windows, ws)
	})
	return snap
}

// RestoreSnapshot rebuilds the window tree and display state from a
// snapshot. Any existing windows are discarded. The next update will
// redescribe the full layout.
func (s *Session) RestoreSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("glk: nil snapshot")
	}
	// A restored session still faces a fresh client; negotiate before any
	// window exists, since no WindowOpen will run to trigger it.
	s.handshake()
	// Discard current window tree and its streams.
	s.windows.each(func(w *Window) {
		if w.stream != nil {
			s.streams.remove(w.stream.id)
		}
	})
	s.windows = newRegistry[*Window]()
	s.text = textAccum{}

	byID := make(map[uint32]*Window, len(snap.Windows))
	for _, ws := range snap.Windows {
		w := &Window{
			id:            ws.ID,
			Rock:          ws.Rock,
			Type:          ws.Type,
			method:        ws.Method,
			size:          ws.Size,
			echoLineInput: ws.Echo,
			needsNewPara:  ws.NewPara,
			gridW:         ws.GridW,
			gridH:         ws.GridH,
			curX:          ws.CurX,
			curY:          ws.CurY,
			bgColor:       ws.BGColor,
		}
		if w.Type == WintypeTextGrid {
			w.allocGrid()
			for y, gr := range ws.Rows {
				if y >= len(w.grid) {
					break
				}
				for x := range w.grid[y] {
					if x >= len(gr.Chars) {
						break
					}
					w.grid[y][x] = gridCell{ch: gr.Chars[x], style: gr.Styles[x], link: gr.Links[x]}
				}
				w.dirty[y] = true
			}
		}
		byID[ws.ID] = w
	}
	for _, ws := range snap.Windows {
		w := byID[ws.ID]
		w.parent = byID[ws.Parent]
		w.child1 = byID[ws.Child1]
		w.child2 = byID[ws.Child2]
		w.key = byID[ws.Key]
		s.windows.restore(ws.ID, w)
		if w.Type != WintypePair {
			w.stream = s.openWindowStream(w)
		}
	}
	s.root = byID[snap.Root]
	s.gen = snap.Gen
	s.timerInterval = snap.TimerInterval
	s.timerDirty = snap.TimerInterval != 0
	s.style = snap.Style
	s.hyperlink = snap.Hyperlink
	s.current = nil
	if cw := byID[snap.Current]; cw != nil {
		s.current = cw.stream
	}
	s.everOpened = len(snap.Windows) > 0
	s.rearrange = true
	return nil
}
