package glk

import "github.com/chazu/glkrun/protocol"

// textAccum is the single process-wide text accumulator. Buffer-window
// output gathers here, keyed to the one window currently receiving text;
// switching windows, select, clear, an image or a flow break all force a
// flush into that window's pending content.
type textAccum struct {
	win   *Window
	paras []protocol.Paragraph
	cur   []protocol.Span
	run   []rune
	style uint32
	link  uint32
}

func (t *textAccum) closeRun() {
	if len(t.run) == 0 {
		return
	}
	span := protocol.Span{Style: StyleName(t.style), Text: string(t.run)}
	if t.link != 0 {
		span.Hyperlink = t.link
	}
	t.cur = append(t.cur, span)
	t.run = t.run[:0]
}

func (t *textAccum) closeParagraph() {
	t.closeRun()
	t.paras = append(t.paras, protocol.Paragraph{Content: t.cur})
	t.cur = nil
}

// putToWindow routes one character of window-stream output. Grid windows
// take characters directly at their cursor; buffer output accumulates.
func (s *Session) putToWindow(w *Window, ch rune) {
	switch w.Type {
	case WintypeTextGrid:
		w.gridPut(ch, s.style, s.hyperlink)
	case WintypeTextBuffer:
		if s.text.win != w {
			s.flushText()
			s.text.win = w
			s.text.style = s.style
			s.text.link = s.hyperlink
		}
		if ch == '\n' {
			s.text.closeParagraph()
			return
		}
		if s.style != s.text.style || s.hyperlink != s.text.link {
			s.text.closeRun()
			s.text.style = s.style
			s.text.link = s.hyperlink
		}
		s.text.run = append(s.text.run, ch)
	}
}

// flushText empties the accumulator into its window's pending paragraphs.
// The first paragraph of a batch continues the window's open line (the
// protocol append flag) unless the previous batch ended with a newline.
func (s *Session) flushText() {
	t := &s.text
	w := t.win
	if w == nil {
		return
	}
	t.closeRun()
	endedWithNewline := true
	if len(t.cur) > 0 {
		t.paras = append(t.paras, protocol.Paragraph{Content: t.cur})
		t.cur = nil
		endedWithNewline = false
	}
	if len(t.paras) > 0 {
		t.paras[0].Append = !w.needsNewPara
		w.pendingParas = append(w.pendingParas, t.paras...)
		w.needsNewPara = endedWithNewline
	}
	t.paras = nil
	t.win = nil
}

// WindowFlowBreak marks a flow break in a buffer window, closing the open
// line.
func (s *Session) WindowFlowBreak(w *Window) {
	if w == nil || w.Type != WintypeTextBuffer {
		return
	}
	s.flushText()
	w.pendingParas = append(w.pendingParas, protocol.Paragraph{FlowBreak: true})
	w.needsNewPara = true
}

// echoLine prints completed line input back into the window in the input
// style, mirroring to the echo stream like any other window output.
func (s *Session) echoLine(w *Window, text string) {
	savedStyle, savedLink := s.style, s.hyperlink
	s.style, s.hyperlink = StyleInput, 0
	for _, ch := range text {
		s.streamPutRune(w.stream, ch)
	}
	s.streamPutRune(w.stream, '\n')
	s.style, s.hyperlink = savedStyle, savedLink
}
