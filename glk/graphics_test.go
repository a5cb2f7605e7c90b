package glk

import "testing"

func TestImageGetInfo(t *testing.T) {
	s, _, _ := newTestSession(t)
	s.SetImageInfo(7, ImageInfo{Width: 64, Height: 48})

	var w, h uint32
	if s.ImageGetInfo(7, &w, &h) != 1 {
		t.Fatal("known image not found")
	}
	if w != 64 || h != 48 {
		t.Errorf("size = %dx%d", w, h)
	}
	if s.ImageGetInfo(8, &w, &h) != 0 {
		t.Error("unknown image reported")
	}
	// Nil out-pointers are legal.
	if s.ImageGetInfo(7, nil, nil) != 1 {
		t.Error("nil pointers rejected")
	}
}

func TestImageDrawInBuffer(t *testing.T) {
	s, ch, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	s.SetWindow(w)
	s.SetImageInfo(1, ImageInfo{Width: 100, Height: 80})

	s.PutString("Behold: ")
	if s.ImageDraw(w, 1, int32(ImagealignInlineCenter), 0) != 1 {
		t.Fatal("draw failed")
	}
	s.PutString("!")
	s.Flush()

	u := lastUpdate(t, ch)
	paras := u.Content[0].Text
	if len(paras) != 3 {
		t.Fatalf("paragraphs = %+v", paras)
	}
	img := paras[1].Content[0]
	if img.Special != "image" || img.Image != 1 || img.Width != 100 || img.Height != 80 {
		t.Errorf("image span = %+v", img)
	}
	if img.Alignment != "inlinecenter" {
		t.Errorf("alignment = %q", img.Alignment)
	}
	// The image continues the open line, and so does the text after it.
	if !paras[1].Append || !paras[2].Append {
		t.Error("image broke the open line")
	}
}

func TestImageDrawScaledInGraphics(t *testing.T) {
	s, ch, _ := newTestSession(t)
	main := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	g := s.WindowOpen(main, WinmethodBelow|WinmethodFixed, 100, WintypeGraphics, 0)
	if g == nil {
		t.Fatal("graphics window refused despite support")
	}
	s.SetImageInfo(2, ImageInfo{Width: 10, Height: 10})

	if s.ImageDrawScaled(g, 2, 5, 6, 200, 150) != 1 {
		t.Fatal("draw failed")
	}
	s.Flush()

	u := lastUpdate(t, ch)
	var ops []int
	for i, cu := range u.Content {
		if len(cu.Draw) > 0 {
			ops = append(ops, i)
		}
	}
	if len(ops) != 1 {
		t.Fatalf("content = %+v", u.Content)
	}
	op := u.Content[ops[0]].Draw[0]
	if op.Special != "image" || op.Image != 2 {
		t.Errorf("op = %+v", op)
	}
	if *op.X != 5 || *op.Y != 6 || *op.Width != 200 || *op.Height != 150 {
		t.Errorf("rect = %d,%d %dx%d", *op.X, *op.Y, *op.Width, *op.Height)
	}
}

func TestImageDrawUnknownImage(t *testing.T) {
	s, _, _ := newTestSession(t)
	w := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	if s.ImageDraw(w, 42, 0, 0) != 0 {
		t.Error("drew an unregistered image")
	}
}

func TestGraphicsRectOps(t *testing.T) {
	s, ch, _ := newTestSession(t)
	main := s.WindowOpen(nil, 0, 0, WintypeTextBuffer, 0)
	g := s.WindowOpen(main, WinmethodBelow|WinmethodFixed, 100, WintypeGraphics, 0)

	s.WindowSetBackgroundColor(g, 0x112233)
	s.WindowFillRect(g, 0xFF0000, 1, 2, 30, 40)
	s.WindowEraseRect(g, 3, 4, 10, 10)
	s.WindowClear(g)
	s.Flush()

	u := lastUpdate(t, ch)
	var draw []int
	for i, cu := range u.Content {
		if len(cu.Draw) > 0 {
			draw = append(draw, i)
		}
	}
	if len(draw) != 1 {
		t.Fatalf("content = %+v", u.Content)
	}
	ops := u.Content[draw[0]].Draw
	if len(ops) != 4 {
		t.Fatalf("ops = %+v", ops)
	}
	if ops[0].Special != "setcolor" || ops[0].Color != "#112233" {
		t.Errorf("setcolor = %+v", ops[0])
	}
	if ops[1].Special != "fill" || ops[1].Color != "#FF0000" || *ops[1].Width != 30 {
		t.Errorf("fill = %+v", ops[1])
	}
	if ops[2].Special != "fill" || ops[2].Color != "" {
		t.Errorf("erase = %+v", ops[2])
	}
	// WindowClear queues a whole-window fill with no rectangle.
	if ops[3].Special != "fill" || ops[3].X != nil {
		t.Errorf("clear = %+v", ops[3])
	}

	// Rect ops on non-graphics windows are ignored.
	s.WindowFillRect(main, 0, 0, 0, 5, 5)
	s.Flush()
	if u := lastUpdate(t, ch); len(u.Content) != 0 {
		t.Errorf("buffer window accepted a rect op: %+v", u.Content)
	}
}
