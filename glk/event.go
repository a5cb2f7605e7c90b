package glk

import (
	"strconv"
	"unicode/utf8"

	"github.com/chazu/glkrun/protocol"
)

// Event is the result of a Select or cancel call, in the legacy shape:
// a type code, the window concerned and two type-specific values.
type Event struct {
	Type uint32
	Win  *Window
	Val1 uint32
	Val2 uint32
}

func (ev *Event) clear() {
	ev.Type = EvtypeNone
	ev.Win = nil
	ev.Val1 = 0
	ev.Val2 = 0
}

// ---------------------------------------------------------------------------
// Input requests
// ---------------------------------------------------------------------------

// RequestLineEvent begins line input on a window with a caller-owned byte
// buffer. The first initlen bytes are pre-filled initial text. The buffer
// is registered with the retained-array registry until delivery or cancel.
// A window can hold at most one char-or-line request.
func (s *Session) RequestLineEvent(w *Window, buf []byte, initlen uint32) {
	if w == nil || w.charRequest || w.lineRequest {
		return
	}
	if w.Type != WintypeTextBuffer && w.Type != WintypeTextGrid {
		return
	}
	w.lineRequest = true
	w.requestUni = false
	w.lineBuf = buf
	w.lineBufUni = nil
	w.lineInitLen = int(initlen)
	if int(initlen) > len(buf) {
		w.lineInitLen = len(buf)
	}
	w.partial = ""
	if buf != nil && s.retained != nil {
		w.lineBufRock = s.retained.Retain(buf, uint32(len(buf)), TypecodeByteArray)
		w.lineBufRetained = true
	}
}

// RequestLineEventUni is RequestLineEvent with a rune buffer. Initial-text
// pre-fill is not converted for wide buffers (a known legacy gap).
func (s *Session) RequestLineEventUni(w *Window, buf []rune, initlen uint32) {
	if w == nil || w.charRequest || w.lineRequest {
		return
	}
	if w.Type != WintypeTextBuffer && w.Type != WintypeTextGrid {
		return
	}
	w.lineRequest = true
	w.requestUni = true
	w.lineBufUni = buf
	w.lineBuf = nil
	w.lineInitLen = 0
	w.partial = ""
	if buf != nil && s.retained != nil {
		w.lineBufRock = s.retained.Retain(buf, uint32(len(buf)), TypecodeWordArray)
		w.lineBufRetained = true
	}
}

// RequestCharEvent begins single-key input on a window.
func (s *Session) RequestCharEvent(w *Window) {
	if w == nil || w.charRequest || w.lineRequest {
		return
	}
	w.charRequest = true
	w.requestUni = false
}

// RequestCharEventUni begins single-key unicode input on a window.
func (s *Session) RequestCharEventUni(w *Window) {
	if w == nil || w.charRequest || w.lineRequest {
		return
	}
	w.charRequest = true
	w.requestUni = true
}

// RequestMouseEvent arms the one-shot mouse request on a window.
func (s *Session) RequestMouseEvent(w *Window) {
	if w == nil || !s.supports("mouse") {
		return
	}
	if w.Type != WintypeTextGrid && w.Type != WintypeGraphics {
		return
	}
	w.mouseRequest = true
}

// RequestHyperlinkEvent arms the one-shot hyperlink request on a window.
func (s *Session) RequestHyperlinkEvent(w *Window) {
	if w == nil || !s.supports("hyperlinks") {
		return
	}
	w.hyperlinkRequest = true
}

// CancelLineEvent cancels pending line input, delivering whatever partial
// text the client had already echoed. ev may be nil.
func (s *Session) CancelLineEvent(w *Window, ev *Event) {
	if ev != nil {
		ev.clear()
	}
	if w == nil || !w.lineRequest {
		return
	}
	count := s.completeLineInput(w, w.partial)
	if ev != nil {
		ev.Type = EvtypeLineInput
		ev.Win = w
		ev.Val1 = count
	}
}

// CancelCharEvent cancels pending char input.
func (s *Session) CancelCharEvent(w *Window) {
	if w == nil {
		return
	}
	w.charRequest = false
}

// CancelMouseEvent disarms the mouse request.
func (s *Session) CancelMouseEvent(w *Window) {
	if w == nil {
		return
	}
	w.mouseRequest = false
}

// CancelHyperlinkEvent disarms the hyperlink request.
func (s *Session) CancelHyperlinkEvent(w *Window) {
	if w == nil {
		return
	}
	w.hyperlinkRequest = false
}

// SetTerminatorsLineEvent sets the extra keycodes that complete line input
// on this window.
func (s *Session) SetTerminatorsLineEvent(w *Window, keycodes []uint32) {
	if w == nil {
		return
	}
	w.terminators = append([]uint32(nil), keycodes...)
}

// SetEchoLineEvent controls whether completed line input is echoed back
// into the window (on by default).
func (s *Session) SetEchoLineEvent(w *Window, val uint32) {
	if w == nil {
		return
	}
	w.echoLineInput = val != 0
}

// RequestTimerEvents asks for recurring timer events every millisecs
// milliseconds; zero cancels. The clock itself is owned by whatever
// supplies event lines.
func (s *Session) RequestTimerEvents(millisecs uint32) {
	if !s.supports("timer") {
		return
	}
	if s.timerInterval == millisecs {
		return
	}
	s.timerInterval = millisecs
	s.timerDirty = true
}

// ---------------------------------------------------------------------------
// The select state machine
// ---------------------------------------------------------------------------

// Select blocks for the next event. It flushes pending text and the
// protocol accumulator (with the live input-request descriptors), then
// blocks on the channel until a decodable event resolves against a pending
// request. With no requests and no timer it returns immediately with
// EvtypeNone, the legacy no-op case. End-of-input is treated as exit.
func (s *Session) Select(ev *Event) {
	ev.clear()
	if s.exited {
		return
	}

	s.flushText()
	inputs := s.collectInputs()

	if len(inputs) == 0 && s.timerInterval == 0 {
		s.flushUpdate(nil, true)
		return
	}

	s.flushUpdate(inputs, false)

	for {
		line, err := s.channel.ReadLine()
		if err != nil {
			s.terminate()
			return
		}
		pev, perr := protocol.ParseEvent(line)
		if perr != nil {
			continue
		}
		s.applyPartial(pev)
		if s.dispatchEvent(pev, ev) {
			return
		}
	}
}

// SelectPoll checks for internally generated events without blocking.
// This layer generates none, so the answer is always EvtypeNone.
func (s *Session) SelectPoll(ev *Event) {
	ev.clear()
}

// collectInputs builds one input-request descriptor per window holding any
// live request. Gen is filled in at flush time.
func (s *Session) collectInputs() []protocol.InputRequest {
	var inputs []protocol.InputRequest
	s.windows.each(func(w *Window) {
		if !w.charRequest && !w.lineRequest && !w.mouseRequest && !w.hyperlinkRequest {
			return
		}
		req := protocol.InputRequest{ID: w.id}
		switch {
		case w.lineRequest:
			req.Type = "line"
			if w.requestUni {
				req.MaxLen = len(w.lineBufUni)
			} else {
				req.MaxLen = len(w.lineBuf)
				if w.lineInitLen > 0 {
					req.Initial = string(w.lineBuf[:w.lineInitLen])
				}
			}
			for _, code := range w.terminators {
				if name, ok := keycodeNames[code]; ok {
					req.Terminators = append(req.Terminators, name)
				}
			}
		case w.charRequest:
			req.Type = "char"
		}
		if w.Type == WintypeTextGrid && (w.lineRequest || w.charRequest) {
			x, y := w.curX, w.curY
			req.XPos, req.YPos = &x, &y
		}
		req.Mouse = w.mouseRequest
		req.Hyperlink = w.hyperlinkRequest
		inputs = append(inputs, req)
	})
	return inputs
}

// dispatchEvent resolves one decoded client event against pending state.
// It returns false when the event does not resolve anything, in which case
// the select loop keeps blocking.
func (s *Session) dispatchEvent(pev *protocol.Event, ev *Event) bool {
	switch pev.Type {
	case protocol.EventTimer:
		if s.timerInterval == 0 {
			return false
		}
		ev.Type = EvtypeTimer
		return true

	case protocol.EventArrange:
		if pev.Metrics != nil {
			s.metrics = *pev.Metrics
		}
		s.rearrange = true
		ev.Type = EvtypeArrange
		ev.Win = s.root
		return true

	case protocol.EventRefresh:
		// Same as arrange, but force a full content resend.
		s.rearrange = true
		s.windows.each(func(w *Window) {
			if w.Type == WintypeTextGrid {
				for y := range w.dirty {
					w.dirty[y] = true
				}
			}
		})
		ev.Type = EvtypeArrange
		ev.Win = s.root
		return true

	case protocol.EventRedraw:
		ev.Type = EvtypeRedraw
		if w, ok := s.windows.get(pev.Window); ok {
			ev.Win = w
		} else {
			ev.Win = s.root
		}
		return true

	case protocol.EventMouse:
		w, ok := s.windows.get(pev.Window)
		if !ok || !w.mouseRequest {
			return false
		}
		w.mouseRequest = false
		ev.Type = EvtypeMouseInput
		ev.Win = w
		ev.Val1 = uint32(pev.X)
		ev.Val2 = uint32(pev.Y)
		return true

	case protocol.EventHyperlink:
		w, ok := s.windows.get(pev.Window)
		if !ok || !w.hyperlinkRequest {
			return false
		}
		link, ok := pev.NumValue()
		if !ok {
			return false
		}
		w.hyperlinkRequest = false
		ev.Type = EvtypeHyperlink
		ev.Win = w
		ev.Val1 = link
		return true

	case protocol.EventLine:
		w, ok := s.windows.get(pev.Window)
		if !ok || !w.lineRequest {
			return false
		}
		text, ok := pev.TextValue()
		if !ok {
			return false
		}
		count := s.completeLineInput(w, text)
		if w.echoLineInput && w.Type == WintypeTextBuffer {
			s.echoLine(w, text)
		}
		ev.Type = EvtypeLineInput
		ev.Win = w
		ev.Val1 = count
		return true

	case protocol.EventChar:
		w, ok := s.windows.get(pev.Window)
		if !ok || !w.charRequest {
			return false
		}
		text, ok := pev.TextValue()
		if !ok {
			return false
		}
		w.charRequest = false
		ev.Type = EvtypeCharInput
		ev.Win = w
		ev.Val1 = decodeCharValue(text, w.requestUni)
		return true

	case protocol.EventDebugInput:
		if s.debugHandler != nil {
			if text, ok := pev.TextValue(); ok {
				s.debugHandler(text)
			}
		}
		return false

	default:
		// Unknown or out-of-band event; keep waiting.
		return false
	}
}

// completeLineInput copies text into the window's loaned buffer
// (bounds-checked, truncate-and-terminate for byte buffers), releases the
// buffer from the retained registry so the VM may reclaim it, and clears
// the request.
func (s *Session) completeLineInput(w *Window, text string) uint32 {
	var count uint32
	if w.requestUni {
		if w.lineBufUni != nil {
			for _, ch := range text {
				if int(count) >= len(w.lineBufUni) {
					break
				}
				w.lineBufUni[count] = ch
				count++
			}
		}
	} else if w.lineBuf != nil {
		for _, ch := range text {
			if int(count) >= len(w.lineBuf)-1 {
				break
			}
			b := byte('?')
			if ch <= 0xFF {
				b = byte(ch)
			}
			w.lineBuf[count] = b
			count++
		}
		if len(w.lineBuf) > 0 {
			w.lineBuf[count] = 0
		}
	}

	if w.lineBufRetained && s.retained != nil {
		if w.requestUni {
			s.retained.Release(w.lineBufUni, uint32(len(w.lineBufUni)), TypecodeWordArray, w.lineBufRock)
		} else {
			s.retained.Release(w.lineBuf, uint32(len(w.lineBuf)), TypecodeByteArray, w.lineBufRock)
		}
		w.lineBufRetained = false
	}

	w.lineRequest = false
	w.lineBuf = nil
	w.lineBufUni = nil
	w.lineInitLen = 0
	w.partial = ""
	return count
}

// applyPartial copies interrupted-input text from the event's partial side
// channel into the matching windows' line state without completing any
// request. Only byte buffers round-trip partial text.
func (s *Session) applyPartial(pev *protocol.Event) {
	for idstr, text := range pev.Partial {
		id, err := strconv.ParseUint(idstr, 10, 32)
		if err != nil {
			continue
		}
		w, ok := s.windows.get(uint32(id))
		if !ok || !w.lineRequest || w.requestUni {
			continue
		}
		w.partial = text
	}
}

// decodeCharValue turns a char event value into a keycode: a single rune
// is itself, a known key name is its keycode, anything else is unknown.
// Non-unicode requests clamp to Latin-1.
func decodeCharValue(text string, uni bool) uint32 {
	if code, ok := keycodeByName[text]; ok {
		return code
	}
	if utf8.RuneCountInString(text) != 1 {
		return KeycodeUnknown
	}
	ch, _ := utf8.DecodeRuneInString(text)
	if !uni && ch > 0xFF {
		return '?'
	}
	return uint32(ch)
}
