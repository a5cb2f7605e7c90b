package main

import (
	"fmt"
	"strings"

	"github.com/chazu/glkrun/glk"
)

// runDemo is a small interactive program that exercises the display layer:
// a buffer window with a grid status line, styled text, hyperlinks, timer
// events and file saving. It doubles as a manual smoke test against any
// protocol client.
func runDemo(s *glk.Session) error {
	main, status := demoWindows(s)
	if main == nil {
		main = s.WindowOpen(nil, 0, 0, glk.WintypeTextBuffer, 1)
		if main == nil {
			return fmt.Errorf("demo: cannot open main window")
		}
		status = s.WindowOpen(main,
			glk.WinmethodAbove|glk.WinmethodFixed, 1, glk.WintypeTextGrid, 2)
	}
	s.SetWindow(main)

	turns := 0
	ticks := 0
	drawStatus(s, status, turns, ticks)

	s.SetStyle(glk.StyleHeader)
	s.PutString("Glk Demo\n")
	s.SetStyle(glk.StyleNormal)
	s.PutString("Type 'help' for commands.\n")

	buf := make([]byte, 256)
	for {
		s.PutString("\n> ")
		s.RequestLineEvent(main, buf, 0)

		var ev glk.Event
		for {
			s.Select(&ev)
			if ev.Type == glk.EvtypeLineInput && ev.Win == main {
				break
			}
			if ev.Type == glk.EvtypeTimer {
				ticks++
				drawStatus(s, status, turns, ticks)
			}
			if ev.Type == glk.EvtypeHyperlink {
				s.CancelLineEvent(main, nil)
				s.PutString(fmt.Sprintf("\n[followed link %d]\n", ev.Val1))
				s.PutString("\n> ")
				s.RequestLineEvent(main, buf, 0)
			}
			if ev.Type == glk.EvtypeNone {
				return nil
			}
		}

		line := strings.TrimSpace(string(buf[:ev.Val1]))
		turns++
		drawStatus(s, status, turns, ticks)

		switch {
		case line == "help":
			s.PutString("Commands: help, styles, link, timer, notimer, save, quit\n")
		case line == "styles":
			showStyles(s)
		case line == "link":
			s.SetHyperlink(42)
			s.PutString("a clickable link")
			s.SetHyperlink(0)
			s.PutString(" (if your client supports hyperlinks)\n")
			s.RequestHyperlinkEvent(main)
		case line == "timer":
			s.RequestTimerEvents(1000)
			s.PutString("Timer on, one tick per second.\n")
		case line == "notimer":
			s.RequestTimerEvents(0)
			s.PutString("Timer off.\n")
		case line == "save":
			saveTranscript(s, turns)
		case line == "quit":
			s.PutString("Goodbye.\n")
			return nil
		case line == "":
		default:
			s.PutString(fmt.Sprintf("I don't know how to '%s'.\n", line))
		}
	}
}

// demoWindows finds the demo's windows by rock in a restored session.
// Returns nils when the session has no windows yet.
func demoWindows(s *glk.Session) (main, status *glk.Window) {
	for w := s.WindowIterate(nil, nil); w != nil; w = s.WindowIterate(w, nil) {
		switch s.WindowGetRock(w) {
		case 1:
			main = w
		case 2:
			status = w
		}
	}
	return main, status
}

func drawStatus(s *glk.Session, status *glk.Window, turns, ticks int) {
	if status == nil {
		return
	}
	s.WindowClear(status)
	str := s.WindowGetStream(status)
	s.WindowMoveCursor(status, 1, 0)
	s.PutStringStream(str, "Glk Demo")
	s.WindowMoveCursor(status, 24, 0)
	s.PutStringStream(str, fmt.Sprintf("Turns: %d  Ticks: %d", turns, ticks))
}

func showStyles(s *glk.Session) {
	styles := []uint32{
		glk.StyleNormal, glk.StyleEmphasized, glk.StylePreformatted,
		glk.StyleHeader, glk.StyleSubheader, glk.StyleAlert, glk.StyleNote,
		glk.StyleBlockQuote, glk.StyleInput, glk.StyleUser1, glk.StyleUser2,
	}
	for _, st := range styles {
		s.SetStyle(st)
		s.PutString(glk.StyleName(st))
		s.SetStyle(glk.StyleNormal)
		s.PutString(" ")
	}
	s.PutString("\n")
}

func saveTranscript(s *glk.Session, turns int) {
	fref := s.FilerefCreateByPrompt(
		glk.FileusageData|glk.FileusageTextMode, glk.FilemodeWrite, 0)
	if fref == nil {
		s.PutString("Save cancelled.\n")
		return
	}
	str := s.StreamOpenFile(fref, glk.FilemodeWrite, 0)
	s.FilerefDestroy(fref)
	if str == nil {
		s.PutString("Save failed.\n")
		return
	}
	s.PutStringStream(str, fmt.Sprintf("glk demo save, %d turns\n", turns))
	var result glk.StreamResult
	s.StreamClose(str, &result)
	s.PutString(fmt.Sprintf("Saved (%d chars written).\n", result.WriteCount))
}
