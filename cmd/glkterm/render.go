package main

import (
	"github.com/gdamore/tcell/v2"

	"github.com/chazu/glkrun/protocol"
)

// styleFor maps protocol style names onto terminal attributes.
func styleFor(span protocol.Span) tcell.Style {
	st := tcell.StyleDefault
	switch span.Style {
	case "emphasized":
		st = st.Bold(true)
	case "preformatted":
		st = st.Foreground(tcell.ColorGray)
	case "header":
		st = st.Bold(true).Underline(true)
	case "subheader":
		st = st.Bold(true)
	case "alert":
		st = st.Foreground(tcell.ColorRed)
	case "note":
		st = st.Foreground(tcell.ColorYellow)
	case "blockquote":
		st = st.Italic(true)
	case "input":
		st = st.Foreground(tcell.ColorGreen)
	}
	if span.Hyperlink != 0 {
		st = st.Underline(true).Foreground(tcell.ColorBlue)
	}
	return st
}

func (v *winView) resizeRows(height int) {
	for len(v.rows) < height {
		v.rows = append(v.rows, renderedLine{})
	}
	if len(v.rows) > height {
		v.rows = v.rows[:height]
	}
}

func (v *winView) applyContent(cu protocol.ContentUpdate) {
	if cu.Clear {
		v.scrollback = nil
		for i := range v.rows {
			v.rows[i] = renderedLine{}
		}
	}

	for _, para := range cu.Text {
		if !para.Append || len(v.scrollback) == 0 {
			v.scrollback = append(v.scrollback, renderedLine{})
		}
		line := &v.scrollback[len(v.scrollback)-1]
		for _, span := range para.Content {
			st := styleFor(span)
			text := span.Text
			if span.Special == "image" {
				text = "[image]"
				if span.AltText != "" {
					text = "[" + span.AltText + "]"
				}
			}
			for _, ch := range text {
				line.cells = append(line.cells, renderedCell{ch: ch, style: st})
			}
		}
	}

	for _, gl := range cu.Lines {
		if gl.Line < 0 || gl.Line >= len(v.rows) {
			continue
		}
		row := renderedLine{}
		for _, span := range gl.Content {
			st := styleFor(span)
			for _, ch := range span.Text {
				row.cells = append(row.cells, renderedCell{ch: ch, style: st})
			}
		}
		v.rows[gl.Line] = row
	}
}

func (c *client) draw() {
	c.screen.Clear()

	for _, view := range c.windows {
		switch view.info.Type {
		case "buffer":
			c.drawBuffer(view)
		case "grid":
			c.drawGrid(view)
		}
	}

	c.drawEditLine()
	c.screen.Show()
}

func (c *client) drawBuffer(v *winView) {
	r := v.info
	visible := r.Height
	if c.editing && c.editWin == r.ID {
		visible--
	}
	lines := v.scrollback
	if len(lines) > visible {
		lines = lines[len(lines)-visible:]
	}
	for y, line := range lines {
		c.drawLine(r.Left, r.Top+y, r.Width, line)
	}
}

func (c *client) drawGrid(v *winView) {
	r := v.info
	for y, row := range v.rows {
		if y >= r.Height {
			break
		}
		c.drawLine(r.Left, r.Top+y, r.Width, row)
	}
}

func (c *client) drawLine(left, top, width int, line renderedLine) {
	for x, cell := range line.cells {
		if x >= width {
			break
		}
		c.screen.SetContent(left+x, top, cell.ch, nil, cell.style)
	}
}

// drawEditLine renders the live input at the bottom of the focused window,
// or a file prompt on the last screen row for special input.
func (c *client) drawEditLine() {
	if c.special != nil {
		_, h := c.screen.Size()
		prompt := "Filename: " + string(c.editBuf)
		st := tcell.StyleDefault.Reverse(true)
		for x, ch := range prompt {
			c.screen.SetContent(x, h-1, ch, nil, st)
		}
		c.screen.ShowCursor(len([]rune(prompt)), h-1)
		return
	}
	if !c.editing {
		c.screen.HideCursor()
		return
	}
	view, ok := c.windows[c.editWin]
	if !ok {
		return
	}
	r := view.info
	y := r.Top + r.Height - 1
	st := tcell.StyleDefault.Foreground(tcell.ColorGreen)
	x := r.Left
	for _, ch := range c.editBuf {
		if x >= r.Left+r.Width {
			break
		}
		c.screen.SetContent(x, y, ch, nil, st)
		x++
	}
	c.screen.ShowCursor(x, y)
}
