package glk

import (
	"io"
	"unicode/utf8"

	"github.com/chazu/glkrun/storage"
)

// Stream kinds.
const (
	streamWindow = iota
	streamMemory
	streamFile
	streamResource
)

// Stream is a unified read/write endpoint over window, memory, file or
// resource backing. Failure surfaces as short counts and sentinel values,
// never as errors: the legacy contract is that console I/O cannot fail.
type Stream struct {
	id   uint32
	Rock uint32

	// DispatchRock is the foreign VM's opaque tag for this stream.
	DispatchRock DispatchRock

	kind     int
	readable bool
	writable bool

	readCount  uint32
	writeCount uint32

	win *Window

	// Memory and resource backing. Exactly one of buf/bufUni is non-nil
	// for memory streams; resources always use buf.
	buf      []byte
	bufUni   []rune
	bufPos   int
	unicode  bool
	arrayRock     DispatchRock
	arrayRetained bool

	// File backing.
	file     storage.File
	textMode bool
}

// ID returns the stream's stable id.
func (str *Stream) ID() uint32 { return str.id }

// ---------------------------------------------------------------------------
// Opening and closing
// ---------------------------------------------------------------------------

func (s *Session) openWindowStream(w *Window) *Stream {
	str := &Stream{Rock: 0, kind: streamWindow, writable: true, win: w}
	str.id = s.streams.add(str)
	if s.objRegistry != nil {
		str.DispatchRock = s.objRegistry.Register(str, ClassStream)
	}
	return str
}

// StreamOpenMemory opens a stream over a caller-owned byte buffer. The
// buffer is registered with the retained-array registry so the VM's memory
// manager knows this layer holds it until the stream closes.
func (s *Session) StreamOpenMemory(buf []byte, fmode, rock uint32) *Stream {
	readable, writable, ok := fmodeFlags(fmode)
	if !ok {
		return nil
	}
	str := &Stream{Rock: rock, kind: streamMemory, readable: readable, writable: writable, buf: buf}
	str.id = s.streams.add(str)
	if buf != nil && s.retained != nil {
		str.arrayRock = s.retained.Retain(buf, uint32(len(buf)), TypecodeByteArray)
		str.arrayRetained = true
	}
	if s.objRegistry != nil {
		str.DispatchRock = s.objRegistry.Register(str, ClassStream)
	}
	return str
}

// StreamOpenMemoryUni opens a stream over a caller-owned rune buffer.
func (s *Session) StreamOpenMemoryUni(buf []rune, fmode, rock uint32) *Stream {
	readable, writable, ok := fmodeFlags(fmode)
	if !ok {
		return nil
	}
	str := &Stream{Rock: rock, kind: streamMemory, readable: readable, writable: writable, bufUni: buf, unicode: true}
	str.id = s.streams.add(str)
	if buf != nil && s.retained != nil {
		str.arrayRock = s.retained.Retain(buf, uint32(len(buf)), TypecodeWordArray)
		str.arrayRetained = true
	}
	if s.objRegistry != nil {
		str.DispatchRock = s.objRegistry.Register(str, ClassStream)
	}
	return str
}

// StreamOpenFile opens a stream over the fileref's named file through the
// session's storage backend. Returns nil if the file cannot be opened.
func (s *Session) StreamOpenFile(fref *FileRef, fmode, rock uint32) *Stream {
	return s.openFileStream(fref, fmode, rock, false)
}

// StreamOpenFileUni is StreamOpenFile for unicode character I/O.
func (s *Session) StreamOpenFileUni(fref *FileRef, fmode, rock uint32) *Stream {
	return s.openFileStream(fref, fmode, rock, true)
}

func (s *Session) openFileStream(fref *FileRef, fmode, rock uint32, unicode bool) *Stream {
	if fref == nil || s.store == nil {
		return nil
	}
	readable, writable, ok := fmodeFlags(fmode)
	if !ok {
		return nil
	}
	var mode storage.OpenMode
	switch fmode {
	case FilemodeRead:
		mode = storage.ModeRead
	case FilemodeWrite:
		mode = storage.ModeWrite
	case FilemodeReadWrite:
		mode = storage.ModeReadWrite
	case FilemodeWriteAppend:
		mode = storage.ModeAppend
	}
	f, err := s.store.Open(fref.Filename, mode)
	if err != nil {
		return nil
	}
	str := &Stream{
		Rock: rock, kind: streamFile,
		readable: readable, writable: writable,
		file: f, textMode: fref.TextMode, unicode: unicode,
	}
	str.id = s.streams.add(str)
	if s.objRegistry != nil {
		str.DispatchRock = s.objRegistry.Register(str, ClassStream)
	}
	return str
}

// StreamOpenResource opens a read-only stream over a host-registered
// resource chunk, or nil when the resource is unknown.
func (s *Session) StreamOpenResource(filenum, rock uint32) *Stream {
	data, ok := s.resources[filenum]
	if !ok {
		return nil
	}
	str := &Stream{Rock: rock, kind: streamResource, readable: true, buf: data}
	str.id = s.streams.add(str)
	if s.objRegistry != nil {
		str.DispatchRock = s.objRegistry.Register(str, ClassStream)
	}
	return str
}

// StreamOpenResourceUni is StreamOpenResource with unicode reads.
func (s *Session) StreamOpenResourceUni(filenum, rock uint32) *Stream {
	str := s.StreamOpenResource(filenum, rock)
	if str != nil {
		str.unicode = true
	}
	return str
}

// BindResource registers a binary resource chunk (e.g. one extracted from
// a Blorb archive by the host) for StreamOpenResource.
func (s *Session) BindResource(filenum uint32, data []byte) {
	if s.resources == nil {
		s.resources = make(map[uint32][]byte)
	}
	s.resources[filenum] = data
}

// StreamClose closes a stream, filling result with its counters.
func (s *Session) StreamClose(str *Stream, result *StreamResult) {
	if str == nil {
		return
	}
	s.closeStream(str, result)
}

func (s *Session) closeStream(str *Stream, result *StreamResult) {
	if _, live := s.streams.get(str.id); !live {
		return
	}
	if result != nil {
		result.ReadCount = str.readCount
		result.WriteCount = str.writeCount
	}
	if str.kind == streamWindow && s.text.win == str.win {
		s.flushText()
	}
	if str.file != nil {
		// The legacy close call has no error channel; report storage
		// failures on the debug side channel rather than dropping them.
		if err := str.file.Close(); err != nil {
			s.Debug("stream close: " + err.Error())
		}
		str.file = nil
	}
	if str.arrayRetained && s.retained != nil {
		if str.unicode {
			s.retained.Release(str.bufUni, uint32(len(str.bufUni)), TypecodeWordArray, str.arrayRock)
		} else {
			s.retained.Release(str.buf, uint32(len(str.buf)), TypecodeByteArray, str.arrayRock)
		}
		str.arrayRetained = false
	}
	if s.current == str {
		s.current = nil
	}
	if s.objRegistry != nil {
		s.objRegistry.Unregister(str, ClassStream, str.DispatchRock)
	}
	s.streams.remove(str.id)
}

func fmodeFlags(fmode uint32) (readable, writable, ok bool) {
	switch fmode {
	case FilemodeRead:
		return true, false, true
	case FilemodeWrite, FilemodeWriteAppend:
		return false, true, true
	case FilemodeReadWrite:
		return true, true, true
	}
	return false, false, false
}

// ---------------------------------------------------------------------------
// Iteration and selection
// ---------------------------------------------------------------------------

// StreamIterate walks the stream registry in creation order.
func (s *Session) StreamIterate(str *Stream, rockptr *uint32) *Stream {
	var next *Stream
	var ok bool
	if str == nil {
		next, ok = s.streams.first()
	} else {
		next, ok = s.streams.after(str.id)
	}
	if !ok {
		return nil
	}
	if rockptr != nil {
		*rockptr = next.Rock
	}
	return next
}

// StreamGetRock returns the stream's rock, 0 for nil.
func (s *Session) StreamGetRock(str *Stream) uint32 {
	if str == nil {
		return 0
	}
	return str.Rock
}

// StreamSetCurrent selects the process-wide current stream.
func (s *Session) StreamSetCurrent(str *Stream) { s.current = str }

// StreamGetCurrent returns the current stream.
func (s *Session) StreamGetCurrent() *Stream { return s.current }

// StreamSetPosition seeks within a memory or file stream.
func (s *Session) StreamSetPosition(str *Stream, pos int32, seekmode uint32) {
	if str == nil {
		return
	}
	switch str.kind {
	case streamMemory, streamResource:
		length := len(str.buf)
		if str.bufUni != nil {
			length = len(str.bufUni)
		}
		var p int
		switch seekmode {
		case SeekmodeCurrent:
			p = str.bufPos + int(pos)
		case SeekmodeEnd:
			p = length + int(pos)
		default:
			p = int(pos)
		}
		if p < 0 {
			p = 0
		}
		if p > length {
			p = length
		}
		str.bufPos = p
	case streamFile:
		if str.file == nil {
			return
		}
		whence := io.SeekStart
		switch seekmode {
		case SeekmodeCurrent:
			whence = io.SeekCurrent
		case SeekmodeEnd:
			whence = io.SeekEnd
		}
		off := int64(pos)
		if str.unicode && !str.textMode {
			// Binary unicode positions count four-byte units.
			off *= 4
		}
		str.file.Seek(off, whence)
	}
}

// StreamGetPosition returns the stream's cursor position.
func (s *Session) StreamGetPosition(str *Stream) uint32 {
	if str == nil {
		return 0
	}
	switch str.kind {
	case streamMemory, streamResource:
		return uint32(str.bufPos)
	case streamFile:
		if str.file == nil {
			return 0
		}
		pos, err := str.file.Seek(0, io.SeekCurrent)
		if err != nil {
			return 0
		}
		if str.unicode && !str.textMode {
			pos /= 4
		}
		return uint32(pos)
	}
	return 0
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// streamPutRune is the single write funnel. Bounds overruns on memory
// streams silently stop; file errors surface as nothing at all.
func (s *Session) streamPutRune(str *Stream, ch rune) {
	if str == nil || !str.writable {
		return
	}
	str.writeCount++

	switch str.kind {
	case streamWindow:
		if str.win != nil {
			s.putToWindow(str.win, ch)
			if str.win.echo != nil {
				s.streamPutRune(str.win.echo, ch)
			}
		}
	case streamMemory:
		if str.bufUni != nil {
			if str.bufPos < len(str.bufUni) {
				str.bufUni[str.bufPos] = ch
				str.bufPos++
			}
		} else if str.buf != nil {
			if str.bufPos < len(str.buf) {
				b := byte('?')
				if ch <= 0xFF {
					b = byte(ch)
				}
				str.buf[str.bufPos] = b
				str.bufPos++
			}
		}
	case streamFile:
		if str.file == nil {
			return
		}
		if str.unicode && str.textMode {
			var enc [utf8.UTFMax]byte
			n := utf8.EncodeRune(enc[:], ch)
			str.file.Write(enc[:n])
		} else if str.unicode {
			// Binary unicode files hold fixed four-byte big-endian units
			// so positions stay unit-aligned and reads are lossless.
			str.file.Write([]byte{
				byte(ch >> 24), byte(ch >> 16), byte(ch >> 8), byte(ch),
			})
		} else if ch <= 0xFF {
			str.file.Write([]byte{byte(ch)})
		} else {
			str.file.Write([]byte{'?'})
		}
	}
}

// PutChar writes one Latin-1 character to the current stream.
func (s *Session) PutChar(ch byte) { s.streamPutRune(s.current, rune(ch)) }

// PutCharStream writes one Latin-1 character to the given stream.
func (s *Session) PutCharStream(str *Stream, ch byte) { s.streamPutRune(str, rune(ch)) }

// PutString writes a string to the current stream.
func (s *Session) PutString(text string) { s.PutStringStream(s.current, text) }

// PutStringStream writes a string to the given stream. The string is
// interpreted as unicode text; VMs restricted to Latin-1 only ever pass
// Latin-1 content here.
func (s *Session) PutStringStream(str *Stream, text string) {
	for _, ch := range text {
		s.streamPutRune(str, ch)
	}
}

// PutBuffer writes Latin-1 bytes to the current stream.
func (s *Session) PutBuffer(buf []byte) { s.PutBufferStream(s.current, buf) }

// PutBufferStream writes Latin-1 bytes to the given stream.
func (s *Session) PutBufferStream(str *Stream, buf []byte) {
	for _, b := range buf {
		s.streamPutRune(str, rune(b))
	}
}

// PutCharUni writes one unicode character to the current stream.
func (s *Session) PutCharUni(ch rune) { s.streamPutRune(s.current, ch) }

// PutCharStreamUni writes one unicode character to the given stream.
func (s *Session) PutCharStreamUni(str *Stream, ch rune) { s.streamPutRune(str, ch) }

// PutStringUni writes a rune slice to the current stream.
func (s *Session) PutStringUni(text []rune) { s.PutBufferStreamUni(s.current, text) }

// PutBufferUni writes a rune slice to the current stream.
func (s *Session) PutBufferUni(buf []rune) { s.PutBufferStreamUni(s.current, buf) }

// PutBufferStreamUni writes a rune slice to the given stream.
func (s *Session) PutBufferStreamUni(str *Stream, buf []rune) {
	for _, ch := range buf {
		s.streamPutRune(str, ch)
	}
}

// PutStringStreamUni writes a rune slice to the given stream.
func (s *Session) PutStringStreamUni(str *Stream, text []rune) {
	s.PutBufferStreamUni(str, text)
}

// ---------------------------------------------------------------------------
// Reading
// ---------------------------------------------------------------------------

// streamGetRune reads the next character, returning -1 at end of stream or
// on any error (the legacy sentinel).
func (str *Stream) streamGetRune() int32 {
	if str == nil || !str.readable {
		return -1
	}
	switch str.kind {
	case streamMemory, streamResource:
		if str.bufUni != nil {
			if str.bufPos < len(str.bufUni) {
				ch := str.bufUni[str.bufPos]
				str.bufPos++
				str.readCount++
				return int32(ch)
			}
			return -1
		}
		if str.bufPos < len(str.buf) {
			b := str.buf[str.bufPos]
			str.bufPos++
			str.readCount++
			return int32(b)
		}
		return -1
	case streamFile:
		if str.file == nil {
			return -1
		}
		if str.unicode && !str.textMode {
			var four [4]byte
			if _, err := io.ReadFull(str.file, four[:]); err != nil {
				return -1
			}
			str.readCount++
			return int32(uint32(four[0])<<24 | uint32(four[1])<<16 |
				uint32(four[2])<<8 | uint32(four[3]))
		}
		var one [1]byte
		n, err := str.file.Read(one[:])
		if n < 1 || (err != nil && err != io.EOF) {
			return -1
		}
		str.readCount++
		return int32(one[0])
	}
	return -1
}

// GetCharStream reads one character, -1 at end of stream.
func (s *Session) GetCharStream(str *Stream) int32 {
	ch := str.streamGetRune()
	if ch > 0xFF {
		return '?'
	}
	return ch
}

// GetCharStreamUni reads one unicode character, -1 at end of stream.
func (s *Session) GetCharStreamUni(str *Stream) int32 {
	return str.streamGetRune()
}

// GetBufferStream fills buf, returning the count actually read.
func (s *Session) GetBufferStream(str *Stream, buf []byte) uint32 {
	var count uint32
	for int(count) < len(buf) {
		ch := s.GetCharStream(str)
		if ch < 0 {
			break
		}
		buf[count] = byte(ch)
		count++
	}
	return count
}

// GetBufferStreamUni fills buf with unicode characters.
func (s *Session) GetBufferStreamUni(str *Stream, buf []rune) uint32 {
	var count uint32
	for int(count) < len(buf) {
		ch := str.streamGetRune()
		if ch < 0 {
			break
		}
		buf[count] = rune(ch)
		count++
	}
	return count
}

// GetLineStream reads until newline or len(buf)-1 characters, then
// NUL-terminates, returning the count read (excluding the terminator).
func (s *Session) GetLineStream(str *Stream, buf []byte) uint32 {
	if len(buf) == 0 {
		return 0
	}
	var count uint32
	for int(count) < len(buf)-1 {
		ch := s.GetCharStream(str)
		if ch < 0 {
			break
		}
		buf[count] = byte(ch)
		count++
		if ch == '\n' {
			break
		}
	}
	buf[count] = 0
	return count
}

// GetLineStreamUni is GetLineStream over a rune buffer.
func (s *Session) GetLineStreamUni(str *Stream, buf []rune) uint32 {
	if len(buf) == 0 {
		return 0
	}
	var count uint32
	for int(count) < len(buf)-1 {
		ch := str.streamGetRune()
		if ch < 0 {
			break
		}
		buf[count] = rune(ch)
		count++
		if ch == '\n' {
			break
		}
	}
	buf[count] = 0
	return count
}

// ---------------------------------------------------------------------------
// Style and hyperlink selection
// ---------------------------------------------------------------------------

// SetStyle changes the active style for subsequent window output.
func (s *Session) SetStyle(style uint32) {
	if style >= StyleNumStyles {
		style = StyleNormal
	}
	s.style = style
}

// SetStyleStream is SetStyle; the style selection is process-wide.
func (s *Session) SetStyleStream(str *Stream, style uint32) { s.SetStyle(style) }

// SetHyperlink sets the active hyperlink value; zero ends the link.
func (s *Session) SetHyperlink(linkval uint32) {
	if !s.supports("hyperlinks") {
		return
	}
	s.hyperlink = linkval
}

// SetHyperlinkStream is SetHyperlink; the selection is process-wide.
func (s *Session) SetHyperlinkStream(str *Stream, linkval uint32) { s.SetHyperlink(linkval) }
