// Package protocol defines the line-delimited JSON wire format spoken
// between a Glk session and its display client.
//
// The dialect is RemGlk/GlkOte-compatible: the session emits one `update`
// object per flush and the client answers with one event object per line.
package protocol

import "encoding/json"

// ---------------------------------------------------------------------------
// Session → client
// ---------------------------------------------------------------------------

// Update is one outgoing state message. Every field except Type and Gen is
// optional; an update with none of them set is a legal (empty) flush.
type Update struct {
	Type    string          `json:"type"`
	Gen     uint32          `json:"gen"`
	Windows []WindowUpdate  `json:"windows,omitempty"`
	Content []ContentUpdate `json:"content,omitempty"`
	Input   []InputRequest  `json:"input,omitempty"`

	// Timer is nil when the timer state did not change this cycle,
	// the literal "null" when the timer was cancelled, and a decimal
	// millisecond count when one was requested.
	Timer json.RawMessage `json:"timer,omitempty"`

	Disable      bool          `json:"disable,omitempty"`
	SpecialInput *SpecialInput `json:"specialinput,omitempty"`
	Exit         bool          `json:"exit,omitempty"`
	Debug        []string      `json:"debugoutput,omitempty"`
}

// Error is the bootstrap failure message. It is reserved for protocol-level
// problems (a missing or invalid init event); Glk-level failures are never
// reported on the wire.
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// WindowUpdate describes one window's identity and layout rectangle.
type WindowUpdate struct {
	ID   uint32 `json:"id"`
	Type string `json:"type"`
	Rock uint32 `json:"rock"`

	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`

	GridWidth  int `json:"gridwidth,omitempty"`
	GridHeight int `json:"gridheight,omitempty"`

	GraphWidth  int `json:"graphwidth,omitempty"`
	GraphHeight int `json:"graphheight,omitempty"`
}

// ContentUpdate carries one window's pending output. Exactly one of Text,
// Lines or Draw is populated, matching the window kind.
type ContentUpdate struct {
	ID    uint32      `json:"id"`
	Clear bool        `json:"clear,omitempty"`
	Text  []Paragraph `json:"text,omitempty"`
	Lines []GridLine  `json:"lines,omitempty"`
	Draw  []DrawOp    `json:"draw,omitempty"`
}

// Paragraph is one line of buffer-window text. The first paragraph of an
// update may carry Append, meaning it continues the previously sent line.
type Paragraph struct {
	Append    bool   `json:"append,omitempty"`
	FlowBreak bool   `json:"flowbreak,omitempty"`
	Content   []Span `json:"content,omitempty"`
}

// Span is a styled text run or an inline special (currently only images).
type Span struct {
	Style     string `json:"style,omitempty"`
	Text      string `json:"text,omitempty"`
	Hyperlink uint32 `json:"hyperlink,omitempty"`

	Special   string `json:"special,omitempty"`
	Image     uint32 `json:"image,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Alignment string `json:"alignment,omitempty"`
	AltText   string `json:"alttext,omitempty"`
}

// GridLine is one dirty row of a grid window, trailing spaces trimmed.
type GridLine struct {
	Line    int    `json:"line"`
	Content []Span `json:"content,omitempty"`
}

// DrawOp is one graphics-window operation. Colors are CSS hex strings.
type DrawOp struct {
	Special string `json:"special"`
	Color   string `json:"color,omitempty"`
	Image   uint32 `json:"image,omitempty"`
	X       *int   `json:"x,omitempty"`
	Y       *int   `json:"y,omitempty"`
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
}

// InputRequest describes one window's live input request.
type InputRequest struct {
	ID  uint32 `json:"id"`
	Gen uint32 `json:"gen"`

	// Type is "line" or "char"; absent for windows holding only a
	// mouse or hyperlink request.
	Type        string   `json:"type,omitempty"`
	MaxLen      int      `json:"maxlen,omitempty"`
	Initial     string   `json:"initial,omitempty"`
	XPos        *int     `json:"xpos,omitempty"`
	YPos        *int     `json:"ypos,omitempty"`
	Mouse       bool     `json:"mouse,omitempty"`
	Hyperlink   bool     `json:"hyperlink,omitempty"`
	Terminators []string `json:"terminators,omitempty"`
}

// SpecialInput asks the client for out-of-band input, currently only a
// file name for fileref-by-prompt.
type SpecialInput struct {
	Type     string `json:"type"`
	FileMode string `json:"filemode,omitempty"`
	FileType string `json:"filetype,omitempty"`
}

// ---------------------------------------------------------------------------
// Client → session
// ---------------------------------------------------------------------------

// Metrics is the client's display geometry, in pixels for the outer size
// and pixels-per-character for the two font classes.
type Metrics struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	CharWidth      float64 `json:"charwidth,omitempty"`
	CharHeight     float64 `json:"charheight,omitempty"`
	GridCharWidth  float64 `json:"gridcharwidth,omitempty"`
	GridCharHeight float64 `json:"gridcharheight,omitempty"`
}

// DefaultMetrics is used when an init or arrange event omits geometry.
func DefaultMetrics() Metrics {
	return Metrics{
		Width: 800, Height: 480,
		CharWidth: 10, CharHeight: 16,
		GridCharWidth: 10, GridCharHeight: 16,
	}
}

// GridSize converts the metrics to grid columns and rows.
func (m Metrics) GridSize() (cols, rows int) {
	cw, ch := m.GridCharWidth, m.GridCharHeight
	if cw <= 0 {
		cw = m.CharWidth
	}
	if ch <= 0 {
		ch = m.CharHeight
	}
	if cw <= 0 || ch <= 0 {
		return 80, 24
	}
	cols = int(m.Width / cw)
	rows = int(m.Height / ch)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// Event is one decoded client message. Unknown fields are ignored at decode
// time; unknown Type values are ignored by the caller.
type Event struct {
	Type   string          `json:"type"`
	Gen    uint32          `json:"gen"`
	Window uint32          `json:"window"`
	Value  json.RawMessage `json:"value"`
	X      int             `json:"x"`
	Y      int             `json:"y"`

	Metrics *Metrics `json:"metrics"`
	Support []string `json:"support"`

	// Partial carries interrupted line input keyed by window id. It may
	// ride on any event and never completes a request by itself.
	Partial map[string]string `json:"partial"`

	// Response/value pair for specialresponse events.
	Response string `json:"response"`
}

// Client event type discriminators.
const (
	EventInit            = "init"
	EventLine            = "line"
	EventChar            = "char"
	EventTimer           = "timer"
	EventArrange         = "arrange"
	EventMouse           = "mouse"
	EventHyperlink       = "hyperlink"
	EventRedraw          = "redraw"
	EventRefresh         = "refresh"
	EventDebugInput      = "debuginput"
	EventExternal        = "external"
	EventSpecialResponse = "specialresponse"
)
