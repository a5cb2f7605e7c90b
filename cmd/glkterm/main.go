// glkterm - terminal display client for the line-JSON Glk protocol
//
// Spawns an interpreter process (glkrun by default), speaks the protocol
// over its stdin/stdout and renders the window tree into a tcell screen.
//
// Build: go build ./cmd/glkterm
// Usage:
//   glkterm [-- interpreter args...]
//   glkterm -- ./glkrun --config ./conf
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/chazu/glkrun/protocol"
)

func main() {
	args := os.Args[1:]
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 {
		args = []string{"glkrun"}
	}

	client, err := newClient(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer client.cleanup()

	if err := client.run(); err != nil {
		client.cleanup()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// winView is the client-side mirror of one window.
type winView struct {
	info protocol.WindowUpdate

	// Buffer windows accumulate a scrollback of rendered lines.
	scrollback []renderedLine

	// Grid windows hold exact rows.
	rows []renderedLine
}

// renderedLine is one display line as style-tagged cells.
type renderedLine struct {
	cells []renderedCell
}

type renderedCell struct {
	ch    rune
	style tcell.Style
}

type client struct {
	screen tcell.Screen
	cmd    *exec.Cmd
	out    *bufio.Writer

	updates chan *protocol.Update
	keys    chan tcell.Event
	readErr chan error

	windows map[uint32]*winView
	gen     uint32
	inputs  []protocol.InputRequest
	special *protocol.SpecialInput

	// Live line-editing state.
	editing  bool
	editWin  uint32
	editBuf  []rune
	editMax  int
	charWin  uint32
	charWait bool

	timer    *time.Ticker
	timerC   <-chan time.Time
	finished bool
}

func newClient(args []string) (*client, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stderr = os.Stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		screen.Fini()
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		screen.Fini()
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		screen.Fini()
		return nil, err
	}

	c := &client{
		screen:  screen,
		cmd:     cmd,
		out:     bufio.NewWriter(stdin),
		updates: make(chan *protocol.Update, 8),
		keys:    make(chan tcell.Event, 32),
		readErr: make(chan error, 1),
		windows: make(map[uint32]*winView),
	}

	go c.readLoop(stdout)
	go func() {
		for {
			c.keys <- screen.PollEvent()
		}
	}()

	return c, nil
}

func (c *client) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		var u protocol.Update
		if err := json.Unmarshal(scanner.Bytes(), &u); err != nil {
			continue
		}
		c.updates <- &u
	}
	c.readErr <- scanner.Err()
}

func (c *client) cleanup() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.screen.Fini()
	if c.cmd.Process != nil {
		c.cmd.Process.Kill()
		c.cmd.Wait()
	}
}

func (c *client) metrics() *protocol.Metrics {
	w, h := c.screen.Size()
	return &protocol.Metrics{
		Width: float64(w), Height: float64(h),
		CharWidth: 1, CharHeight: 1,
		GridCharWidth: 1, GridCharHeight: 1,
	}
}

func (c *client) send(ev map[string]interface{}) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if _, err := c.out.Write(data); err != nil {
		return err
	}
	if err := c.out.WriteByte('\n'); err != nil {
		return err
	}
	return c.out.Flush()
}

func (c *client) run() error {
	if err := c.send(map[string]interface{}{
		"type":    "init",
		"gen":     0,
		"metrics": c.metrics(),
		"support": []string{"timer", "hyperlinks"},
	}); err != nil {
		return err
	}

	for {
		select {
		case u := <-c.updates:
			c.applyUpdate(u)
			c.draw()
			if c.finished {
				c.waitKey()
				return nil
			}

		case err := <-c.readErr:
			if !c.finished {
				return fmt.Errorf("interpreter closed the connection: %v", err)
			}
			return nil

		case ev := <-c.keys:
			quit, err := c.handleKey(ev)
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
			c.draw()

		case <-c.timerC:
			if err := c.send(map[string]interface{}{
				"type": "timer", "gen": c.gen,
			}); err != nil {
				return err
			}
		}
	}
}

// waitKey blocks for one keypress after the interpreter exits, so the final
// screen is readable.
func (c *client) waitKey() {
	for ev := range c.keys {
		if _, ok := ev.(*tcell.EventKey); ok {
			return
		}
	}
}

func (c *client) applyUpdate(u *protocol.Update) {
	c.gen = u.Gen

	for _, wu := range u.Windows {
		view, ok := c.windows[wu.ID]
		if !ok {
			view = &winView{}
			c.windows[wu.ID] = view
		}
		view.info = wu
		if wu.Type == "grid" {
			view.resizeRows(wu.GridHeight)
		}
	}

	for _, cu := range u.Content {
		view, ok := c.windows[cu.ID]
		if !ok {
			continue
		}
		view.applyContent(cu)
	}

	c.inputs = u.Input
	c.special = u.SpecialInput
	c.syncInputState()

	if u.Timer != nil {
		c.setTimer(u.Timer)
	}

	if u.Exit {
		c.finished = true
	}
}

func (c *client) setTimer(raw json.RawMessage) {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		c.timerC = nil
	}
	var ms uint32
	if err := json.Unmarshal(raw, &ms); err != nil || ms == 0 {
		return
	}
	c.timer = time.NewTicker(time.Duration(ms) * time.Millisecond)
	c.timerC = c.timer.C
}

// syncInputState points the line editor or char wait at the first matching
// request from the latest update.
func (c *client) syncInputState() {
	c.charWait = false
	if c.special != nil {
		// File prompt reuses the line editor against window 0.
		c.editing = true
		c.editWin = 0
		c.editBuf = c.editBuf[:0]
		c.editMax = 255
		return
	}
	wasEditing := c.editing
	c.editing = false
	for _, req := range c.inputs {
		switch req.Type {
		case "line":
			c.editing = true
			c.editWin = req.ID
			c.editMax = req.MaxLen
			if !wasEditing {
				c.editBuf = append(c.editBuf[:0], []rune(req.Initial)...)
			}
			return
		case "char":
			c.charWait = true
			c.charWin = req.ID
			return
		}
	}
}

func (c *client) handleKey(ev tcell.Event) (bool, error) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		c.screen.Sync()
		return false, c.send(map[string]interface{}{
			"type": "arrange", "gen": c.gen, "metrics": c.metrics(),
		})

	case *tcell.EventKey:
		if ev.Key() == tcell.KeyCtrlC {
			return true, nil
		}
		if c.finished {
			return true, nil
		}
		if c.special != nil {
			return false, c.handleSpecialKey(ev)
		}
		if c.editing {
			return false, c.handleLineKey(ev)
		}
		if c.charWait {
			return false, c.handleCharKey(ev)
		}
	}
	return false, nil
}

func (c *client) handleLineKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEnter:
		text := string(c.editBuf)
		c.editBuf = c.editBuf[:0]
		c.editing = false
		return c.send(map[string]interface{}{
			"type": "line", "gen": c.gen, "window": c.editWin, "value": text,
		})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.editBuf) > 0 {
			c.editBuf = c.editBuf[:len(c.editBuf)-1]
		}
	case tcell.KeyRune:
		if c.editMax == 0 || len(c.editBuf) < c.editMax {
			c.editBuf = append(c.editBuf, ev.Rune())
		}
	}
	return nil
}

func (c *client) handleSpecialKey(ev *tcell.EventKey) error {
	switch ev.Key() {
	case tcell.KeyEnter:
		text := string(c.editBuf)
		c.editBuf = c.editBuf[:0]
		c.special = nil
		c.editing = false
		msg := map[string]interface{}{
			"type": "specialresponse", "gen": c.gen,
			"response": "fileref_prompt",
		}
		if text != "" {
			msg["value"] = text
		}
		return c.send(msg)
	case tcell.KeyEscape:
		c.special = nil
		c.editing = false
		return c.send(map[string]interface{}{
			"type": "specialresponse", "gen": c.gen,
			"response": "fileref_prompt",
		})
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.editBuf) > 0 {
			c.editBuf = c.editBuf[:len(c.editBuf)-1]
		}
	case tcell.KeyRune:
		c.editBuf = append(c.editBuf, ev.Rune())
	}
	return nil
}

func (c *client) handleCharKey(ev *tcell.EventKey) error {
	var value string
	switch ev.Key() {
	case tcell.KeyEnter:
		value = "return"
	case tcell.KeyEscape:
		value = "escape"
	case tcell.KeyTab:
		value = "tab"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		value = "delete"
	case tcell.KeyUp:
		value = "up"
	case tcell.KeyDown:
		value = "down"
	case tcell.KeyLeft:
		value = "left"
	case tcell.KeyRight:
		value = "right"
	case tcell.KeyPgUp:
		value = "pageup"
	case tcell.KeyPgDn:
		value = "pagedown"
	case tcell.KeyHome:
		value = "home"
	case tcell.KeyEnd:
		value = "end"
	case tcell.KeyRune:
		value = string(ev.Rune())
	default:
		return nil
	}
	c.charWait = false
	return c.send(map[string]interface{}{
		"type": "char", "gen": c.gen, "window": c.charWin, "value": value,
	})
}
