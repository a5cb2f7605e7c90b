package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// MarshalUpdate serializes an update to one wire line (no trailing newline).
func MarshalUpdate(u *Update) ([]byte, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal update: %w", err)
	}
	return data, nil
}

// MarshalError serializes a protocol error message.
func MarshalError(message string) ([]byte, error) {
	data, err := json.Marshal(&Error{Type: "error", Message: message})
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal error: %w", err)
	}
	return data, nil
}

// ParseEvent decodes exactly one event line. Unknown fields are tolerated
// and dropped; a line that is not a JSON object at all is an error the
// caller should discard silently.
func ParseEvent(line []byte) (*Event, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, fmt.Errorf("protocol: empty event line")
	}
	var ev Event
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, fmt.Errorf("protocol: parse event: %w", err)
	}
	if ev.Type == "" {
		return nil, fmt.Errorf("protocol: event has no type")
	}
	return &ev, nil
}

// TextValue reads the event's value field as line/char input text.
// A numeric value is not text (it is a hyperlink id).
func (ev *Event) TextValue() (string, bool) {
	if len(ev.Value) == 0 || ev.Value[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(ev.Value, &s); err != nil {
		return "", false
	}
	return s, true
}

// NumValue reads the event's value field as a number (hyperlink id,
// external code). A string value is not a number.
func (ev *Event) NumValue() (uint32, bool) {
	if len(ev.Value) == 0 || ev.Value[0] == '"' {
		return 0, false
	}
	n, err := strconv.ParseUint(string(bytes.TrimSpace(ev.Value)), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}

// TimerValue renders the tri-state timer field for an update.
func TimerValue(millisecs uint32, active bool) json.RawMessage {
	if !active {
		return json.RawMessage("null")
	}
	return json.RawMessage(strconv.FormatUint(uint64(millisecs), 10))
}
