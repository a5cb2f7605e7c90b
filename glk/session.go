package glk

import (
	"os"

	"github.com/chazu/glkrun/protocol"
	"github.com/chazu/glkrun/storage"
)

// Channel is the duplex line-oriented connection to the display client.
// ReadLine is the sole suspension point in the whole layer: a sandboxed
// host may park the calling stack inside it and resume later. WriteLine
// must be genuinely synchronous.
type Channel interface {
	ReadLine() ([]byte, error)
	WriteLine([]byte) error
}

// Session is the context for one emulated Glk instance: all object
// registries, the current-stream/style/hyperlink selection and the protocol
// accumulator live here. Every Glk entry point is a method on it.
//
// A session is single-threaded and cooperative: entry points run to
// completion on the caller's stack and must not be re-entered while a
// Select is suspended.
type Session struct {
	channel Channel
	store   storage.Store

	windows  *registry[*Window]
	streams  *registry[*Stream]
	filerefs *registry[*FileRef]
	root     *Window
	current  *Stream

	style     uint32
	hyperlink uint32

	metrics protocol.Metrics
	support map[string]bool

	started    bool
	everOpened bool
	exited     bool

	gen       uint32
	rearrange bool

	timerInterval uint32
	timerDirty    bool

	// Shared text accumulator for the window currently receiving text.
	text textAccum

	// Queued graphics/content state beyond per-window storage.
	debugLines []string

	objRegistry ObjectRegistry
	retained    RetainedRegistry

	interruptHandler func()
	debugHandler     func(string)

	resources map[uint32][]byte
	images    map[uint32]ImageInfo

	args     []string
	exitFunc func()

	gridW, gridH int

	maxContent int
	maxWindows int
	maxDebug   int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithStore sets the file backing for filerefs and file streams.
// Without it, a directory store over the current directory is used.
func WithStore(st storage.Store) SessionOption {
	return func(s *Session) { s.store = st }
}

// WithArgs sets the startup descriptor passed through to the VM verbatim.
func WithArgs(args []string) SessionOption {
	return func(s *Session) { s.args = args }
}

// WithGridSize sets the grid window size used before client metrics arrive.
func WithGridSize(cols, rows int) SessionOption {
	return func(s *Session) {
		if cols > 0 {
			s.gridW = cols
		}
		if rows > 0 {
			s.gridH = rows
		}
	}
}

// WithSupport force-enables capabilities regardless of what the client's
// init event claims.
func WithSupport(caps ...string) SessionOption {
	return func(s *Session) {
		for _, c := range caps {
			s.support[c] = true
		}
	}
}

// WithLimits caps the accumulator queues; entries past a cap are silently
// dropped. Zero leaves a queue unbounded.
func WithLimits(maxContent, maxWindows, maxDebug int) SessionOption {
	return func(s *Session) {
		s.maxContent = maxContent
		s.maxWindows = maxWindows
		s.maxDebug = maxDebug
	}
}

// WithExitFunc replaces the process-terminating exit behavior, mainly so
// tests and embedding hosts can observe exit instead of dying.
func WithExitFunc(fn func()) SessionOption {
	return func(s *Session) { s.exitFunc = fn }
}

// WithDebugHandler installs a handler for debuginput events from the client.
func WithDebugHandler(fn func(string)) SessionOption {
	return func(s *Session) { s.debugHandler = fn }
}

// NewSession creates a session speaking the wire protocol over channel.
// The protocol handshake does not happen until the first window opens.
func NewSession(channel Channel, opts ...SessionOption) *Session {
	s := &Session{
		channel:  channel,
		windows:  newRegistry[*Window](),
		streams:  newRegistry[*Stream](),
		filerefs: newRegistry[*FileRef](),
		metrics:  protocol.DefaultMetrics(),
		support:  make(map[string]bool),
		gridW:    80,
		gridH:    24,
		exitFunc: func() { os.Exit(0) },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		st, err := storage.NewDirStore(".")
		if err == nil {
			s.store = st
		}
	}
	return s
}

// Args returns the startup descriptor (argv) for the VM.
func (s *Session) Args() []string { return s.args }

// Generation returns the protocol generation counter: the number of
// updates emitted so far.
func (s *Session) Generation() uint32 { return s.gen }

// SetInterruptHandler stores the VM's interrupt handler. The layer never
// invokes it; interrupts do not exist on this transport.
func (s *Session) SetInterruptHandler(fn func()) { s.interruptHandler = fn }

// Tick is the legacy cooperative-yield call; a no-op here.
func (s *Session) Tick() {}

// Debug queues a line of debug output for the next flush.
func (s *Session) Debug(line string) {
	if s.maxDebug > 0 && len(s.debugLines) >= s.maxDebug {
		return
	}
	s.debugLines = append(s.debugLines, line)
}

// supports reports a negotiated client capability. Capability queries can
// arrive before the first window opens (a gestalt check is typically the
// interpreter's first call), so the handshake runs here if it has not yet.
func (s *Session) supports(name string) bool {
	if !s.started && !s.exited {
		s.handshake()
	}
	return s.support[name]
}

// ---------------------------------------------------------------------------
// Handshake
// ---------------------------------------------------------------------------

// handshake reads the client's one init event. It is triggered by the first
// window open or the first capability query, whichever comes earlier. There
// is no init reply; the first ordinary update serves that role.
func (s *Session) handshake() {
	if s.started {
		return
	}
	for {
		line, err := s.channel.ReadLine()
		if err != nil {
			s.terminate()
			return
		}
		ev, perr := protocol.ParseEvent(line)
		if perr != nil {
			continue
		}
		if ev.Type != protocol.EventInit {
			if msg, merr := protocol.MarshalError("expected init event"); merr == nil {
				s.channel.WriteLine(msg)
			}
			continue
		}
		if ev.Metrics != nil {
			s.metrics = *ev.Metrics
		}
		for _, cap := range ev.Support {
			s.support[cap] = true
		}
		s.started = true
		return
	}
}

// ---------------------------------------------------------------------------
// Exit
// ---------------------------------------------------------------------------

// Exit emits the terminal update (exit:true, no input) and terminates.
// End-of-input on the event channel funnels into the same path.
func (s *Session) Exit() {
	s.terminate()
}

func (s *Session) terminate() {
	if s.exited {
		return
	}
	s.exited = true
	s.flushText()
	u := s.buildUpdate(nil, false)
	u.Exit = true
	u.Input = nil
	if data, err := protocol.MarshalUpdate(u); err == nil {
		s.channel.WriteLine(data)
	}
	s.exitFunc()
}

// ---------------------------------------------------------------------------
// Accumulator flush
// ---------------------------------------------------------------------------

// buildUpdate drains every pending queue into one update and increments the
// generation counter by exactly one. It never writes to the channel.
func (s *Session) buildUpdate(inputs []protocol.InputRequest, disable bool) *protocol.Update {
	s.gen++
	u := &protocol.Update{Type: "update", Gen: s.gen}

	if s.rearrange {
		s.layout()
		s.windows.each(func(w *Window) {
			if w.Type == WintypePair {
				return
			}
			if s.maxWindows > 0 && len(u.Windows) >= s.maxWindows {
				return
			}
			u.Windows = append(u.Windows, w.describe())
		})
		s.rearrange = false
	}

	s.windows.each(func(w *Window) {
		cu, ok := w.drainContent()
		if !ok {
			return
		}
		if s.maxContent > 0 && len(u.Content) >= s.maxContent {
			return
		}
		u.Content = append(u.Content, cu)
	})

	for i := range inputs {
		inputs[i].Gen = s.gen
	}
	u.Input = inputs
	u.Disable = disable && len(inputs) == 0

	if s.timerDirty {
		u.Timer = protocol.TimerValue(s.timerInterval, s.timerInterval != 0)
		s.timerDirty = false
	}

	if len(s.debugLines) > 0 {
		u.Debug = s.debugLines
		s.debugLines = nil
	}

	return u
}

// flushUpdate emits one update carrying the given input requests.
func (s *Session) flushUpdate(inputs []protocol.InputRequest, disable bool) {
	if s.exited {
		return
	}
	s.flushText()
	u := s.buildUpdate(inputs, disable)
	if data, err := protocol.MarshalUpdate(u); err == nil {
		s.channel.WriteLine(data)
	}
}

// Flush emits any pending output without requesting input. Hosts call this
// when they need the display current outside a Select, e.g. before an
// autosave snapshot.
func (s *Session) Flush() {
	s.flushUpdate(nil, true)
}
