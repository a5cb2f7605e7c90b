package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseEventBasics(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"line","gen":3,"window":2,"value":"go north"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventLine || ev.Gen != 3 || ev.Window != 2 {
		t.Errorf("event = %+v", ev)
	}
	text, ok := ev.TextValue()
	if !ok || text != "go north" {
		t.Errorf("value = %q ok=%v", text, ok)
	}
	if _, ok := ev.NumValue(); ok {
		t.Error("string value read as number")
	}
}

func TestParseEventTolerance(t *testing.T) {
	// Unknown fields are dropped, surrounding whitespace ignored.
	ev, err := ParseEvent([]byte("  {\"type\":\"refresh\",\"gen\":0,\"someday\":true}\r\n"))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != EventRefresh {
		t.Errorf("type = %q", ev.Type)
	}
}

func TestParseEventRejects(t *testing.T) {
	for _, line := range []string{"", "   ", "not json", "[1,2]", `{"gen":4}`} {
		if _, err := ParseEvent([]byte(line)); err == nil {
			t.Errorf("accepted %q", line)
		}
	}
}

func TestNumValue(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"hyperlink","gen":1,"window":1,"value":42}`))
	if err != nil {
		t.Fatal(err)
	}
	n, ok := ev.NumValue()
	if !ok || n != 42 {
		t.Errorf("value = %d ok=%v", n, ok)
	}
	if _, ok := ev.TextValue(); ok {
		t.Error("numeric value read as text")
	}
}

func TestPartialSideChannel(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"type":"arrange","gen":2,"metrics":{"width":640,"height":400},"partial":{"3":"hal"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Metrics == nil || ev.Metrics.Width != 640 {
		t.Errorf("metrics = %+v", ev.Metrics)
	}
	if ev.Partial["3"] != "hal" {
		t.Errorf("partial = %+v", ev.Partial)
	}
}

func TestTimerValue(t *testing.T) {
	if string(TimerValue(500, true)) != "500" {
		t.Errorf("active = %s", TimerValue(500, true))
	}
	if string(TimerValue(500, false)) != "null" {
		t.Errorf("cancelled = %s", TimerValue(500, false))
	}
}

func TestMarshalUpdateOmitsEmpty(t *testing.T) {
	data, err := MarshalUpdate(&Update{Type: "update", Gen: 7})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 {
		t.Errorf("wire = %s", data)
	}
	for _, key := range []string{"windows", "content", "input", "timer", "exit"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty update carries %q", key)
		}
	}
}

func TestMarshalError(t *testing.T) {
	data, err := MarshalError("expected init event")
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type":"error","message":"expected init event"}`
	if string(data) != want {
		t.Errorf("wire = %s", data)
	}
}

func TestGridSizeFallbacks(t *testing.T) {
	m := Metrics{Width: 800, Height: 480, GridCharWidth: 10, GridCharHeight: 16}
	if c, r := m.GridSize(); c != 80 || r != 30 {
		t.Errorf("size = %dx%d", c, r)
	}
	// Grid metrics fall back to the buffer font, then to 80x24.
	m = Metrics{Width: 800, Height: 480, CharWidth: 8, CharHeight: 20}
	if c, r := m.GridSize(); c != 100 || r != 24 {
		t.Errorf("size = %dx%d", c, r)
	}
	m = Metrics{Width: 800, Height: 480}
	if c, r := m.GridSize(); c != 80 || r != 24 {
		t.Errorf("size = %dx%d", c, r)
	}
	// Degenerate geometry clamps to one cell.
	m = Metrics{Width: 3, Height: 3, CharWidth: 10, CharHeight: 16}
	if c, r := m.GridSize(); c != 1 || r != 1 {
		t.Errorf("size = %dx%d", c, r)
	}
}

func TestUpdateTimerRawMessageStates(t *testing.T) {
	u := Update{Type: "update", Gen: 1, Timer: TimerValue(250, true)}
	data, _ := MarshalUpdate(&u)
	if !strings.Contains(string(data), `"timer":250`) {
		t.Errorf("wire = %s", data)
	}
	u.Timer = TimerValue(0, false)
	data, _ = MarshalUpdate(&u)
	if !strings.Contains(string(data), `"timer":null`) {
		t.Errorf("wire = %s", data)
	}
	u.Timer = nil
	data, _ = MarshalUpdate(&u)
	if strings.Contains(string(data), "timer") {
		t.Errorf("wire = %s", data)
	}
}
