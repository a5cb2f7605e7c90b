package server

import (
	"bufio"
	"io"
	"sync"

	"github.com/gorilla/websocket"
)

// StdioChannel speaks the line protocol over an arbitrary reader/writer
// pair, normally os.Stdin and os.Stdout. Writes are flushed per line; the
// protocol is strictly line-delimited and a buffered partial line would
// deadlock both ends.
type StdioChannel struct {
	r *bufio.Reader
	w *bufio.Writer

	wmu sync.Mutex
}

// NewStdioChannel wraps r and w in a line channel.
func NewStdioChannel(r io.Reader, w io.Writer) *StdioChannel {
	return &StdioChannel{
		r: bufio.NewReader(r),
		w: bufio.NewWriter(w),
	}
}

// ReadLine blocks for the next newline-terminated message. The trailing
// newline is stripped. io.EOF is returned once the peer closes.
func (c *StdioChannel) ReadLine() ([]byte, error) {
	line, err := c.r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return line, nil
		}
		return nil, err
	}
	return line[:len(line)-1], nil
}

// WriteLine sends one message followed by a newline and flushes.
func (c *StdioChannel) WriteLine(line []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if _, err := c.w.Write(line); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}

// WSChannel adapts a websocket connection to the line channel interface.
// Each protocol line rides in one text frame; no newline framing is needed
// on this transport.
type WSChannel struct {
	conn *websocket.Conn
	wmu  sync.Mutex
}

// NewWSChannel wraps an upgraded websocket connection.
func NewWSChannel(conn *websocket.Conn) *WSChannel {
	return &WSChannel{conn: conn}
}

// ReadLine blocks for the next text frame, skipping non-text frames.
func (c *WSChannel) ReadLine() ([]byte, error) {
	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if mt != websocket.TextMessage {
			continue
		}
		return data, nil
	}
}

// WriteLine sends one message as a text frame.
func (c *WSChannel) WriteLine(line []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, line)
}

// Close shuts the underlying connection.
func (c *WSChannel) Close() error {
	return c.conn.Close()
}
