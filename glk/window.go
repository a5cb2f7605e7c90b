package glk

import "github.com/chazu/glkrun/protocol"

// Window is one node in the window tree. Pair windows are invisible
// splitter nodes owning exactly two children; the other kinds carry a
// stream and per-kind input state.
type Window struct {
	id   uint32
	Rock uint32
	Type uint32

	// DispatchRock is the foreign VM's opaque tag for this window. It is
	// stored and returned, never interpreted.
	DispatchRock DispatchRock

	parent *Window
	child1 *Window
	child2 *Window

	// Pair split policy.
	method uint32
	size   uint32
	key    *Window

	stream *Stream
	echo   *Stream

	charRequest      bool
	lineRequest      bool
	requestUni       bool
	mouseRequest     bool
	hyperlinkRequest bool
	echoLineInput    bool

	lineBuf         []byte
	lineBufUni      []rune
	lineInitLen     int
	partial         string
	terminators     []uint32
	lineBufRock     DispatchRock
	lineBufRetained bool

	// Layout rectangle, carried verbatim from whatever layout pass or
	// host set it. Never derived from pixels here.
	left, top, width, height int

	// Buffer-window pending output.
	pendingParas []protocol.Paragraph
	clearPending bool
	needsNewPara bool

	// Grid storage. Exists iff Type == WintypeTextGrid.
	gridW, gridH int
	grid         [][]gridCell
	dirty        []bool
	curX, curY   int

	// Graphics pending draw operations.
	drawOps []protocol.DrawOp
	bgColor uint32
}

type gridCell struct {
	ch    rune
	style uint32
	link  uint32
}

// ID returns the window's stable protocol id.
func (w *Window) ID() uint32 { return w.id }

// typeName returns the protocol name for the window kind.
func (w *Window) typeName() string {
	switch w.Type {
	case WintypeTextBuffer:
		return "buffer"
	case WintypeTextGrid:
		return "grid"
	case WintypeGraphics:
		return "graphics"
	case WintypePair:
		return "pair"
	default:
		return "blank"
	}
}

func (w *Window) describe() protocol.WindowUpdate {
	wu := protocol.WindowUpdate{
		ID:   w.id,
		Type: w.typeName(),
		Rock: w.Rock,
		Left: w.left, Top: w.top,
		Width: w.width, Height: w.height,
	}
	switch w.Type {
	case WintypeTextGrid:
		wu.GridWidth = w.gridW
		wu.GridHeight = w.gridH
	case WintypeGraphics:
		wu.GraphWidth = w.width
		wu.GraphHeight = w.height
	}
	return wu
}

// ---------------------------------------------------------------------------
// Window opening and closing
// ---------------------------------------------------------------------------

// WindowOpen creates a window. The first window ever opened becomes the
// tree root and triggers the one-time protocol handshake; later windows
// split an existing window through a new pair node.
//
// Returns nil on misuse (no split window given when one is required, bad
// kind, closed session), matching the legacy sentinel contract.
func (s *Session) WindowOpen(split *Window, method, size, wintype, rock uint32) *Window {
	if s.exited {
		return nil
	}
	if s.root == nil && split != nil {
		return nil
	}
	if s.root != nil && split == nil {
		return nil
	}
	switch wintype {
	case WintypeTextBuffer, WintypeTextGrid, WintypeGraphics, WintypeBlank:
	default:
		return nil
	}
	if wintype == WintypeGraphics && !s.supports("graphics") {
		return nil
	}

	if !s.everOpened {
		s.everOpened = true
		s.handshake()
		if s.exited {
			return nil
		}
	}

	w := &Window{
		Rock:          rock,
		Type:          wintype,
		echoLineInput: true,
	}
	w.id = s.windows.add(w)
	w.stream = s.openWindowStream(w)

	if wintype == WintypeTextGrid {
		w.gridW, w.gridH = s.gridW, s.gridH
		w.allocGrid()
	}

	if split == nil {
		s.root = w
	} else {
		pair := &Window{
			Rock:   0,
			Type:   WintypePair,
			method: method,
			size:   size,
			key:    w,
		}
		pair.id = s.windows.add(pair)

		grandparent := split.parent
		pair.child1 = split
		pair.child2 = w
		split.parent = pair
		w.parent = pair
		pair.parent = grandparent
		if grandparent == nil {
			s.root = pair
		} else if grandparent.child1 == split {
			grandparent.child1 = pair
		} else {
			grandparent.child2 = pair
		}
		if s.objRegistry != nil {
			pair.DispatchRock = s.objRegistry.Register(pair, ClassWindow)
		}
	}

	if s.objRegistry != nil {
		w.DispatchRock = s.objRegistry.Register(w, ClassWindow)
	}

	s.rearrange = true
	return w
}

// StreamResult carries the read/write counters of a closed stream.
type StreamResult struct {
	ReadCount  uint32
	WriteCount uint32
}

// WindowClose closes a window (and its whole subtree, for pairs), closing
// its stream, releasing dispatch registrations, freeing grid storage and
// unlinking it from tree and registry. A window holding a live input
// request cannot be closed; the call fails silently, per the legacy
// contract that misuse never aborts.
func (s *Session) WindowClose(w *Window, result *StreamResult) {
	if w == nil {
		return
	}
	if w.charRequest || w.lineRequest {
		return
	}
	if result != nil {
		if w.stream != nil {
			result.ReadCount = w.stream.readCount
			result.WriteCount = w.stream.writeCount
		} else {
			*result = StreamResult{}
		}
	}

	// Detach from the tree first, collapsing the parent pair.
	parent := w.parent
	if parent != nil {
		sibling := parent.child1
		if sibling == w {
			sibling = parent.child2
		}
		grandparent := parent.parent
		sibling.parent = grandparent
		if grandparent == nil {
			s.root = sibling
		} else if grandparent.child1 == parent {
			grandparent.child1 = sibling
		} else {
			grandparent.child2 = sibling
		}
		s.releaseWindow(parent)
	} else if s.root == w {
		s.root = nil
	}

	s.releaseSubtree(w)
	s.rearrange = true
}

func (s *Session) releaseSubtree(w *Window) {
	if w.child1 != nil {
		s.releaseSubtree(w.child1)
	}
	if w.child2 != nil {
		s.releaseSubtree(w.child2)
	}
	s.releaseWindow(w)
}

// releaseWindow frees one window: drop any pending text targeted at it,
// close its stream, revoke its dispatch rock and remove it from the
// registry. Tree links must already be detached.
func (s *Session) releaseWindow(w *Window) {
	if s.text.win == w {
		s.text = textAccum{}
	}
	if w.stream != nil {
		s.closeStream(w.stream, nil)
		w.stream = nil
	}
	if s.objRegistry != nil {
		s.objRegistry.Unregister(w, ClassWindow, w.DispatchRock)
	}
	w.grid = nil
	w.dirty = nil
	w.parent, w.child1, w.child2, w.key = nil, nil, nil, nil
	s.windows.remove(w.id)
}

// ---------------------------------------------------------------------------
// Tree accessors
// ---------------------------------------------------------------------------

// WindowGetRoot returns the tree root, or nil before any window exists.
func (s *Session) WindowGetRoot() *Window { return s.root }

// WindowIterate walks the window registry in creation order. Passing nil
// starts the walk; a nil return ends it. If rockptr is non-nil it receives
// the returned window's rock.
func (s *Session) WindowIterate(w *Window, rockptr *uint32) *Window {
	var next *Window
	var ok bool
	if w == nil {
		next, ok = s.windows.first()
	} else {
		next, ok = s.windows.after(w.id)
	}
	if !ok {
		return nil
	}
	if rockptr != nil {
		*rockptr = next.Rock
	}
	return next
}

// WindowGetRock returns the window's rock, 0 for nil.
func (s *Session) WindowGetRock(w *Window) uint32 {
	if w == nil {
		return 0
	}
	return w.Rock
}

// WindowGetType returns the window kind, 0 for nil.
func (s *Session) WindowGetType(w *Window) uint32 {
	if w == nil {
		return 0
	}
	return w.Type
}

// WindowGetParent returns the parent pair window, nil for the root.
func (s *Session) WindowGetParent(w *Window) *Window {
	if w == nil {
		return nil
	}
	return w.parent
}

// WindowGetSibling returns the other child of the window's parent pair.
func (s *Session) WindowGetSibling(w *Window) *Window {
	if w == nil || w.parent == nil {
		return nil
	}
	if w.parent.child1 == w {
		return w.parent.child2
	}
	return w.parent.child1
}

// WindowGetSize reports the window's size: characters for buffer and grid
// windows, pixels for graphics windows.
func (s *Session) WindowGetSize(w *Window, widthptr, heightptr *uint32) {
	var cw, ch uint32
	if w != nil {
		switch w.Type {
		case WintypeTextGrid:
			cw, ch = uint32(w.gridW), uint32(w.gridH)
		case WintypeGraphics:
			cw, ch = uint32(w.width), uint32(w.height)
		case WintypeTextBuffer:
			cols, rows := s.metrics.GridSize()
			cw, ch = uint32(cols), uint32(rows)
		}
	}
	if widthptr != nil {
		*widthptr = cw
	}
	if heightptr != nil {
		*heightptr = ch
	}
}

// WindowSetArrangement changes a pair window's split policy.
func (s *Session) WindowSetArrangement(w *Window, method, size uint32, keywin *Window) {
	if w == nil || w.Type != WintypePair {
		return
	}
	w.method = method
	w.size = size
	if keywin != nil {
		w.key = keywin
	}
	s.rearrange = true
}

// WindowGetArrangement reads a pair window's split policy.
func (s *Session) WindowGetArrangement(w *Window, methodptr, sizeptr *uint32, keywinptr **Window) {
	var method, size uint32
	var key *Window
	if w != nil && w.Type == WintypePair {
		method, size, key = w.method, w.size, w.key
	}
	if methodptr != nil {
		*methodptr = method
	}
	if sizeptr != nil {
		*sizeptr = size
	}
	if keywinptr != nil {
		*keywinptr = key
	}
}

// WindowGetStream returns the window's output stream.
func (s *Session) WindowGetStream(w *Window) *Stream {
	if w == nil {
		return nil
	}
	return w.stream
}

// WindowSetEchoStream attaches a stream that mirrors the window's output,
// typically a transcript file stream.
func (s *Session) WindowSetEchoStream(w *Window, str *Stream) {
	if w == nil {
		return
	}
	w.echo = str
}

// WindowGetEchoStream returns the window's echo stream.
func (s *Session) WindowGetEchoStream(w *Window) *Stream {
	if w == nil {
		return nil
	}
	return w.echo
}

// SetWindow selects the window's stream as the current stream.
func (s *Session) SetWindow(w *Window) {
	if w == nil {
		s.current = nil
		return
	}
	s.current = w.stream
}

// ---------------------------------------------------------------------------
// Clearing and the grid cursor
// ---------------------------------------------------------------------------

// WindowClear clears a window. Buffer windows flush pending text and queue
// a protocol clear; grid windows additionally blank the grid, drop all
// dirty flags and reset the cursor to (0,0); graphics windows queue a
// background fill.
func (s *Session) WindowClear(w *Window) {
	if w == nil {
		return
	}
	switch w.Type {
	case WintypeTextBuffer:
		s.flushText()
		w.pendingParas = nil
		w.clearPending = true
		w.needsNewPara = false
	case WintypeTextGrid:
		w.clearPending = true
		w.blankGrid()
		w.curX, w.curY = 0, 0
	case WintypeGraphics:
		w.queueDraw(s, protocol.DrawOp{Special: "fill"})
	}
}

// WindowMoveCursor moves a grid window's cursor, clamping out-of-range
// coordinates to the grid bounds. Pending text is flushed first.
func (s *Session) WindowMoveCursor(w *Window, x, y uint32) {
	if w == nil || w.Type != WintypeTextGrid {
		return
	}
	s.flushText()
	cx, cy := int(x), int(y)
	if cx >= w.gridW {
		cx = w.gridW - 1
	}
	if cy >= w.gridH {
		cy = w.gridH - 1
	}
	if cx < 0 {
		cx = 0
	}
	if cy < 0 {
		cy = 0
	}
	w.curX, w.curY = cx, cy
}

func (w *Window) allocGrid() {
	w.grid = make([][]gridCell, w.gridH)
	for y := range w.grid {
		w.grid[y] = make([]gridCell, w.gridW)
	}
	w.dirty = make([]bool, w.gridH)
	w.blankGrid()
	for y := range w.dirty {
		w.dirty[y] = false
	}
}

func (w *Window) blankGrid() {
	for y := range w.grid {
		for x := range w.grid[y] {
			w.grid[y][x] = gridCell{ch: ' ', style: StyleNormal}
		}
		w.dirty[y] = false
	}
}

// resizeGrid reallocates grid storage for new metrics, clipping contents
// and marking every surviving row dirty for the full resend.
func (w *Window) resizeGrid(cols, rows int) {
	if cols == w.gridW && rows == w.gridH {
		return
	}
	old := w.grid
	oldW, oldH := w.gridW, w.gridH
	w.gridW, w.gridH = cols, rows
	w.allocGrid()
	for y := 0; y < rows && y < oldH; y++ {
		for x := 0; x < cols && x < oldW; x++ {
			w.grid[y][x] = old[y][x]
		}
	}
	for y := range w.dirty {
		w.dirty[y] = true
	}
	if w.curX >= cols {
		w.curX = cols - 1
	}
	if w.curY >= rows {
		w.curY = rows - 1
	}
}

// gridPut writes one character at the cursor, marking only the touched row
// dirty. Output past the last row is discarded.
func (w *Window) gridPut(ch rune, style, link uint32) {
	if ch == '\n' {
		w.curX = 0
		w.curY++
		return
	}
	if w.curY >= w.gridH {
		return
	}
	if w.curX >= w.gridW {
		w.curX = 0
		w.curY++
		if w.curY >= w.gridH {
			return
		}
	}
	w.grid[w.curY][w.curX] = gridCell{ch: ch, style: style, link: link}
	w.dirty[w.curY] = true
	w.curX++
}

func (w *Window) queueDraw(s *Session, op protocol.DrawOp) {
	if w.Type != WintypeGraphics {
		return
	}
	if s.maxContent > 0 && len(w.drawOps) >= s.maxContent {
		return
	}
	w.drawOps = append(w.drawOps, op)
}

// ---------------------------------------------------------------------------
// Content draining
// ---------------------------------------------------------------------------

// drainContent builds and clears this window's pending content update.
// It returns false when the window has nothing to send, so an untouched
// window never reappears in a flush.
func (w *Window) drainContent() (protocol.ContentUpdate, bool) {
	switch w.Type {
	case WintypeTextBuffer:
		if !w.clearPending && len(w.pendingParas) == 0 {
			return protocol.ContentUpdate{}, false
		}
		cu := protocol.ContentUpdate{ID: w.id, Clear: w.clearPending, Text: w.pendingParas}
		w.pendingParas = nil
		w.clearPending = false
		return cu, true

	case WintypeTextGrid:
		var lines []protocol.GridLine
		for y := 0; y < w.gridH; y++ {
			if !w.dirty[y] {
				continue
			}
			lines = append(lines, w.renderRow(y))
			w.dirty[y] = false
		}
		if len(lines) == 0 && !w.clearPending {
			return protocol.ContentUpdate{}, false
		}
		cu := protocol.ContentUpdate{ID: w.id, Clear: w.clearPending, Lines: lines}
		w.clearPending = false
		return cu, true

	case WintypeGraphics:
		if len(w.drawOps) == 0 {
			return protocol.ContentUpdate{}, false
		}
		cu := protocol.ContentUpdate{ID: w.id, Draw: w.drawOps}
		w.drawOps = nil
		return cu, true
	}
	return protocol.ContentUpdate{}, false
}

// renderRow converts one grid row into a line entry, grouping adjacent
// cells by style and hyperlink and trimming trailing spaces.
func (w *Window) renderRow(y int) protocol.GridLine {
	row := w.grid[y]
	end := len(row)
	for end > 0 && row[end-1].ch == ' ' && row[end-1].link == 0 {
		end--
	}
	gl := protocol.GridLine{Line: y}
	if end == 0 {
		return gl
	}
	runStart := 0
	for x := 1; x <= end; x++ {
		if x == end || row[x].style != row[runStart].style || row[x].link != row[runStart].link {
			text := make([]rune, 0, x-runStart)
			for _, c := range row[runStart:x] {
				text = append(text, c.ch)
			}
			span := protocol.Span{
				Style:     StyleName(row[runStart].style),
				Text:      string(text),
				Hyperlink: row[runStart].link,
			}
			gl.Content = append(gl.Content, span)
			runStart = x
		}
	}
	return gl
}

// ---------------------------------------------------------------------------
// Layout
// ---------------------------------------------------------------------------

// layout assigns nominal rectangles from the client metrics. The split
// arithmetic here is deliberately simple; the client owns real geometry
// and these rectangles are carried, not trusted.
func (s *Session) layout() {
	if s.root == nil {
		return
	}
	s.layoutWindow(s.root, 0, 0, int(s.metrics.Width), int(s.metrics.Height))
}

func (s *Session) layoutWindow(w *Window, left, top, width, height int) {
	w.left, w.top, w.width, w.height = left, top, width, height

	if w.Type == WintypeTextGrid {
		cols, rows := s.metricsGridSize(width, height)
		w.resizeGrid(cols, rows)
		return
	}
	if w.Type != WintypePair {
		return
	}

	// child2 is the newer window; the split size describes it.
	dir := w.method & WinmethodDirMask
	vertical := dir == WinmethodLeft || dir == WinmethodRight
	total := height
	if vertical {
		total = width
	}

	var span int
	if w.method&WinmethodDivisionMask == WinmethodFixed {
		cellW, cellH := s.metrics.GridCharWidth, s.metrics.GridCharHeight
		if w.key != nil && w.key.Type == WintypeGraphics {
			cellW, cellH = 1, 1
		}
		if vertical {
			span = int(float64(w.size) * cellW)
		} else {
			span = int(float64(w.size) * cellH)
		}
	} else {
		span = total * int(w.size) / 100
	}
	if span > total {
		span = total
	}
	if span < 0 {
		span = 0
	}

	switch dir {
	case WinmethodLeft:
		s.layoutWindow(w.child2, left, top, span, height)
		s.layoutWindow(w.child1, left+span, top, width-span, height)
	case WinmethodRight:
		s.layoutWindow(w.child1, left, top, width-span, height)
		s.layoutWindow(w.child2, left+width-span, top, span, height)
	case WinmethodAbove:
		s.layoutWindow(w.child2, left, top, width, span)
		s.layoutWindow(w.child1, left, top+span, width, height-span)
	default: // WinmethodBelow
		s.layoutWindow(w.child1, left, top, width, height-span)
		s.layoutWindow(w.child2, left, top+height-span, width, span)
	}
}

func (s *Session) metricsGridSize(width, height int) (cols, rows int) {
	cw, ch := s.metrics.GridCharWidth, s.metrics.GridCharHeight
	if cw <= 0 || ch <= 0 {
		return s.gridW, s.gridH
	}
	cols = int(float64(width) / cw)
	rows = int(float64(height) / ch)
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}
