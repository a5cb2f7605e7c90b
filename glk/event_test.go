package glk

import (
	"testing"
)

// ---------------------------------------------------------------------------
// Line input
// ---------------------------------------------------------------------------

func TestLineInputRoundTrip(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)
	s.PutString("> ")

	buf := make([]byte, 256)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"look"}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeLineInput {
		t.Fatalf("event type = %d, want line input", ev.Type)
	}
	if ev.Win != w {
		t.Error("event window mismatch")
	}
	if ev.Val1 != 4 {
		t.Errorf("count = %d, want 4", ev.Val1)
	}
	if string(buf[:4]) != "look" || buf[4] != 0 {
		t.Errorf("buffer = %q", buf[:5])
	}
	if w.lineRequest {
		t.Error("line request not cleared after delivery")
	}
}

func TestLineInputTruncatesToBuffer(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	buf := make([]byte, 4)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"look"}`)

	var ev Event
	s.Select(&ev)
	if ev.Val1 != 3 {
		t.Errorf("count = %d, want 3 (room for terminator)", ev.Val1)
	}
	if string(buf[:3]) != "loo" || buf[3] != 0 {
		t.Errorf("buffer = %q", buf)
	}
}

func TestLineInputClampsWideRunes(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"aé世b"}`)

	var ev Event
	s.Select(&ev)
	if ev.Val1 != 4 {
		t.Fatalf("count = %d, want 4", ev.Val1)
	}
	want := []byte{'a', 0xE9, '?', 'b'}
	for i, b := range want {
		if buf[i] != b {
			t.Errorf("buf[%d] = %#x, want %#x", i, buf[i], b)
		}
	}
}

func TestLineInputUnicodeBuffer(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	buf := make([]rune, 8)
	s.RequestLineEventUni(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"世界"}`)

	var ev Event
	s.Select(&ev)
	if ev.Val1 != 2 {
		t.Fatalf("count = %d, want 2", ev.Val1)
	}
	if buf[0] != '世' || buf[1] != '界' {
		t.Errorf("buffer = %q", string(buf[:2]))
	}
}

func TestLineInputEcho(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)

	buf := make([]byte, 64)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"go"}`)
	var ev Event
	s.Select(&ev)
	s.Flush()

	u := lastUpdate(t, ch)
	if len(u.Content) != 1 || len(u.Content[0].Text) == 0 {
		t.Fatalf("echo content missing: %+v", u.Content)
	}
	span := u.Content[0].Text[0].Content[0]
	if span.Text != "go" || span.Style != "input" {
		t.Errorf("echo span = %+v", span)
	}
}

func TestLineInputEchoDisabled(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)
	s.SetEchoLineEvent(w, 0)

	buf := make([]byte, 64)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"go"}`)
	var ev Event
	s.Select(&ev)
	s.Flush()

	u := lastUpdate(t, ch)
	if len(u.Content) != 0 {
		t.Errorf("unexpected echo: %+v", u.Content)
	}
}

func TestCancelLineEventDeliversPartial(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	buf := make([]byte, 64)
	s.RequestLineEvent(w, buf, 0)

	// An arrange event interrupts the pending line input, carrying the
	// half-typed text in the partial side channel.
	ch.push(`{"type":"arrange","gen":1,` +
		`"metrics":{"width":640,"height":400,"charwidth":10,"charheight":16,` +
		`"gridcharwidth":10,"gridcharheight":16},` +
		`"partial":{"` + itoa(w.ID()) + `":"hel"}}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeArrange {
		t.Fatalf("event type = %d, want arrange", ev.Type)
	}

	s.CancelLineEvent(w, &ev)
	if ev.Type != EvtypeLineInput {
		t.Fatalf("cancel event type = %d", ev.Type)
	}
	if ev.Val1 != 3 || string(buf[:3]) != "hel" {
		t.Errorf("partial = %q (count %d)", buf[:3], ev.Val1)
	}
}

func TestCancelLineEventWithoutRequest(t *testing.T) {
	s, _, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	var ev Event
	ev.Type = EvtypeTimer
	s.CancelLineEvent(w, &ev)
	if ev.Type != EvtypeNone {
		t.Errorf("event type = %d, want none", ev.Type)
	}
}

func TestLineRequestRefusedWhileActive(t *testing.T) {
	s, _, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	first := make([]byte, 8)
	second := make([]byte, 16)
	s.RequestLineEvent(w, first, 0)
	s.RequestLineEvent(w, second, 0)
	if len(w.lineBuf) != 8 {
		t.Error("second request replaced the first")
	}
	s.RequestCharEvent(w)
	if w.charRequest {
		t.Error("char request accepted while line input pending")
	}
}

func TestLineInputInitialText(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	buf := make([]byte, 64)
	copy(buf, "north")
	s.RequestLineEvent(w, buf, 5)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"north"}`)

	var ev Event
	s.Select(&ev)

	us := allUpdates(t, ch)
	req := us[0].Input[0]
	if req.Initial != "north" {
		t.Errorf("initial = %q", req.Initial)
	}
}

// ---------------------------------------------------------------------------
// Char input
// ---------------------------------------------------------------------------

func TestCharInputRune(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.RequestCharEvent(w)
	ch.push(`{"type":"char","gen":1,"window":` + itoa(w.ID()) + `,"value":"y"}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeCharInput || ev.Val1 != 'y' {
		t.Errorf("event = %+v", ev)
	}
	if w.charRequest {
		t.Error("char request not cleared")
	}
}

func TestCharInputKeyNames(t *testing.T) {
	tests := []struct {
		value string
		want  uint32
	}{
		{"return", KeycodeReturn},
		{"escape", KeycodeEscape},
		{"up", KeycodeUp},
		{"func1", KeycodeFunc1},
		{"delete", KeycodeDelete},
		{"nosuchkey", KeycodeUnknown},
	}
	for _, tt := range tests {
		s, ch, _ := newTestSession(t)
		w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
		s.RequestCharEvent(w)
		ch.push(`{"type":"char","gen":1,"window":` + itoa(w.ID()) + `,"value":"` + tt.value + `"}`)

		var ev Event
		s.Select(&ev)
		if ev.Val1 != tt.want {
			t.Errorf("%q: keycode = %#x, want %#x", tt.value, ev.Val1, tt.want)
		}
	}
}

func TestCharInputClampsWideRune(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.RequestCharEvent(w)
	ch.push(`{"type":"char","gen":1,"window":` + itoa(w.ID()) + `,"value":"世"}`)

	var ev Event
	s.Select(&ev)
	if ev.Val1 != '?' {
		t.Errorf("keycode = %#x, want '?'", ev.Val1)
	}
}

// ---------------------------------------------------------------------------
// Timer
// ---------------------------------------------------------------------------

func TestTimerRequestAndEvents(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)

	s.RequestTimerEvents(500)
	ch.push(`{"type":"timer","gen":1}`)
	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeTimer {
		t.Fatalf("event = %d, want timer", ev.Type)
	}
	us := allUpdates(t, ch)
	if string(us[0].Timer) != "500" {
		t.Errorf("timer field = %s, want 500", us[0].Timer)
	}

	// Unchanged interval: the field stays silent.
	s.RequestTimerEvents(500)
	ch.push(`{"type":"timer","gen":2}`)
	s.Select(&ev)
	u := lastUpdate(t, ch)
	if u.Timer != nil {
		t.Errorf("timer resent without change: %s", u.Timer)
	}

	// Cancel: the field goes to null once.
	s.RequestTimerEvents(0)
	s.Flush()
	u = lastUpdate(t, ch)
	if string(u.Timer) != "null" {
		t.Errorf("timer field = %s, want null", u.Timer)
	}
}

func TestTimerEventIgnoredWhenOff(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"timer","gen":1}`)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"ok"}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeLineInput {
		t.Errorf("stale timer event surfaced: type = %d", ev.Type)
	}
}

func TestTimerGatedOnSupport(t *testing.T) {
	ch := &scriptChannel{}
	ch.push(`{"type":"init","gen":0,"metrics":{"width":800,"height":480}}`)
	s := NewSession(ch, WithExitFunc(func() {}))
	s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)

	s.RequestTimerEvents(100)
	s.Flush()
	u := lastUpdate(t, ch)
	if u.Timer != nil {
		t.Errorf("timer granted without client support: %s", u.Timer)
	}
}

// ---------------------------------------------------------------------------
// Mouse and hyperlink input
// ---------------------------------------------------------------------------

func TestMouseRequestIsOneShot(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextGrid, 0)

	s.RequestMouseEvent(w)
	ch.push(`{"type":"mouse","gen":1,"window":` + itoa(w.ID()) + `,"x":3,"y":2}`)
	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeMouseInput || ev.Val1 != 3 || ev.Val2 != 2 {
		t.Fatalf("event = %+v", ev)
	}
	if w.mouseRequest {
		t.Error("mouse request survived delivery")
	}

	// With the request consumed, a second click resolves nothing and the
	// script's end surfaces as exit.
	buf := make([]byte, 8)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"mouse","gen":2,"window":` + itoa(w.ID()) + `,"x":1,"y":1}`)
	ch.push(`{"type":"line","gen":2,"window":` + itoa(w.ID()) + `,"value":"x"}`)
	s.Select(&ev)
	if ev.Type != EvtypeLineInput {
		t.Errorf("unrequested click surfaced: type = %d", ev.Type)
	}
}

func TestMouseRequestNeedsSupportAndKind(t *testing.T) {
	ch := &scriptChannel{}
	ch.push(`{"type":"init","gen":0,"metrics":{"width":800,"height":480}}`)
	s := NewSession(ch, WithExitFunc(func() {}))
	grid := s.WindowOpen(nil, 0, 0, WintypeTextGrid, 0)
	s.RequestMouseEvent(grid)
	if grid.mouseRequest {
		t.Error("mouse request accepted without client support")
	}

	s2, _, _ := newTestSession(t)
	buffer := s2.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s2.RequestMouseEvent(buffer)
	if buffer.mouseRequest {
		t.Error("mouse request accepted on a buffer window")
	}
}

func TestHyperlinkEvent(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)

	s.SetHyperlink(42)
	s.PutString("click here")
	s.SetHyperlink(0)
	s.PutString(" or not\n")
	s.RequestHyperlinkEvent(w)
	ch.push(`{"type":"hyperlink","gen":1,"window":` + itoa(w.ID()) + `,"value":42}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeHyperlink || ev.Val1 != 42 {
		t.Fatalf("event = %+v", ev)
	}

	us := allUpdates(t, ch)
	spans := us[0].Content[0].Text[0].Content
	if len(spans) != 2 {
		t.Fatalf("spans = %+v", spans)
	}
	if spans[0].Hyperlink != 42 || spans[0].Text != "click here" {
		t.Errorf("link span = %+v", spans[0])
	}
	if spans[1].Hyperlink != 0 {
		t.Errorf("plain span carries link: %+v", spans[1])
	}
}

// ---------------------------------------------------------------------------
// Arrange, refresh, redraw
// ---------------------------------------------------------------------------

func TestArrangeUpdatesMetrics(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"arrange","gen":1,` +
		`"metrics":{"width":400,"height":320,"charwidth":10,"charheight":16,` +
		`"gridcharwidth":10,"gridcharheight":16}}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeArrange || ev.Win != s.WindowGetRoot() {
		t.Fatalf("event = %+v", ev)
	}

	// The next flush redescribes the windows with the new geometry.
	s.CancelLineEvent(w, nil)
	s.Flush()
	u := lastUpdate(t, ch)
	if len(u.Windows) != 1 {
		t.Fatalf("windows = %+v", u.Windows)
	}
	if u.Windows[0].Width != 400 || u.Windows[0].Height != 320 {
		t.Errorf("rect = %+v", u.Windows[0])
	}
}

func TestRefreshResendsGridRows(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextGrid, 0)
	str := s.WindowGetStream(w)
	s.PutStringStream(str, "Score: 10")
	s.Flush()

	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"refresh","gen":1}`)
	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeArrange {
		t.Fatalf("event = %d, want arrange", ev.Type)
	}
	s.CancelLineEvent(w, nil)
	s.Flush()

	u := lastUpdate(t, ch)
	if len(u.Content) != 1 {
		t.Fatalf("content = %+v", u.Content)
	}
	found := false
	for _, gl := range u.Content[0].Lines {
		if len(gl.Content) > 0 && gl.Content[0].Text == "Score: 10" {
			found = true
		}
	}
	if !found {
		t.Errorf("refresh did not resend the written row: %+v", u.Content[0].Lines)
	}
}

func TestRedrawTargetsNamedWindow(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"redraw","gen":1,"window":` + itoa(w.ID()) + `}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeRedraw || ev.Win != w {
		t.Errorf("event = %+v", ev)
	}
}

// ---------------------------------------------------------------------------
// Malformed and unknown events
// ---------------------------------------------------------------------------

func TestSelectSkipsGarbageLines(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)

	ch.push(`this is not json`)
	ch.push(`{"no":"type"}`)
	ch.push(`{"type":"fancy_future_event","gen":1}`)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":"on"}`)

	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeLineInput || ev.Val1 != 2 {
		t.Errorf("event = %+v", ev)
	}
}

func TestStaleGenerationTolerated(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)

	// Wildly wrong gen values are accepted; the content decides.
	ch.push(`{"type":"line","gen":99,"window":` + itoa(w.ID()) + `,"value":"ok"}`)
	var ev Event
	s.Select(&ev)
	if ev.Type != EvtypeLineInput {
		t.Errorf("event = %+v", ev)
	}
}

// ---------------------------------------------------------------------------
// Terminators
// ---------------------------------------------------------------------------

func TestLineTerminatorsAdvertised(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetTerminatorsLineEvent(w, []uint32{KeycodeEscape, KeycodeFunc1, 0xdead})

	buf := make([]byte, 16)
	s.RequestLineEvent(w, buf, 0)
	ch.push(`{"type":"line","gen":1,"window":` + itoa(w.ID()) + `,"value":""}`)
	var ev Event
	s.Select(&ev)

	us := allUpdates(t, ch)
	terms := us[0].Input[0].Terminators
	if len(terms) != 2 || terms[0] != "escape" || terms[1] != "func1" {
		t.Errorf("terminators = %+v", terms)
	}
}

// ---------------------------------------------------------------------------
// SelectPoll
// ---------------------------------------------------------------------------

func TestSelectPollAlwaysNone(t *testing.T) {
	s, _, _ := newTestSession(t)
	var ev Event
	ev.Type = EvtypeTimer
	s.SelectPoll(&ev)
	if ev.Type != EvtypeNone {
		t.Errorf("poll type = %d, want none", ev.Type)
	}
}
