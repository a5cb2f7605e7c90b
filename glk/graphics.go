package glk

import (
	"fmt"

	"github.com/chazu/glkrun/protocol"
)

// ImageInfo is host-registered metadata for one image resource. The layer
// never rasterizes anything; width and height are all it needs to emit
// image spans and draw operations.
type ImageInfo struct {
	Width  uint32
	Height uint32
}

// SetImageInfo registers image metadata for ImageGetInfo and draws.
func (s *Session) SetImageInfo(image uint32, info ImageInfo) {
	if s.images == nil {
		s.images = make(map[uint32]ImageInfo)
	}
	s.images[image] = info
}

// ImageGetInfo reports an image's size from registered metadata.
func (s *Session) ImageGetInfo(image uint32, width, height *uint32) uint32 {
	info, ok := s.images[image]
	if !ok {
		return 0
	}
	if width != nil {
		*width = info.Width
	}
	if height != nil {
		*height = info.Height
	}
	return 1
}

// cssColor renders a 0x00RRGGBB color as a CSS hex string.
func cssColor(color uint32) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}

var imageAlignNames = map[uint32]string{
	ImagealignInlineUp:     "inlineup",
	ImagealignInlineDown:   "inlinedown",
	ImagealignInlineCenter: "inlinecenter",
	ImagealignMarginLeft:   "marginleft",
	ImagealignMarginRight:  "marginright",
}

// ImageDraw draws an image: an inline span in buffer windows, a draw
// operation in graphics windows. val1 is the alignment (buffer) or x
// (graphics); val2 is the y position for graphics windows.
func (s *Session) ImageDraw(w *Window, image uint32, val1 int32, val2 int32) uint32 {
	info, ok := s.images[image]
	if !ok || w == nil || !s.supports("graphics") {
		return 0
	}
	return s.drawImage(w, image, val1, val2, int(info.Width), int(info.Height))
}

// ImageDrawScaled is ImageDraw with an explicit target size.
func (s *Session) ImageDrawScaled(w *Window, image uint32, val1 int32, val2 int32, width, height uint32) uint32 {
	if _, ok := s.images[image]; !ok || w == nil || !s.supports("graphics") {
		return 0
	}
	return s.drawImage(w, image, val1, val2, int(width), int(height))
}

func (s *Session) drawImage(w *Window, image uint32, val1, val2 int32, width, height int) uint32 {
	switch w.Type {
	case WintypeTextBuffer:
		// An image forces a text flush; it lands as its own paragraph
		// continuing the open line.
		s.flushText()
		align, ok := imageAlignNames[uint32(val1)]
		if !ok {
			align = "inlineup"
		}
		span := protocol.Span{
			Special:   "image",
			Image:     image,
			Width:     width,
			Height:    height,
			Alignment: align,
		}
		w.pendingParas = append(w.pendingParas, protocol.Paragraph{
			Append:  !w.needsNewPara,
			Content: []protocol.Span{span},
		})
		w.needsNewPara = false
		return 1

	case WintypeGraphics:
		x, y := int(val1), int(val2)
		w.queueDraw(s, protocol.DrawOp{
			Special: "image",
			Image:   image,
			X:       &x, Y: &y,
			Width: &width, Height: &height,
		})
		return 1
	}
	return 0
}

// WindowSetBackgroundColor sets the background color used by later clears.
func (s *Session) WindowSetBackgroundColor(w *Window, color uint32) {
	if w == nil || w.Type != WintypeGraphics {
		return
	}
	w.bgColor = color
	w.queueDraw(s, protocol.DrawOp{Special: "setcolor", Color: cssColor(color)})
}

// WindowFillRect fills a rectangle with a color.
func (s *Session) WindowFillRect(w *Window, color uint32, left, top int32, width, height uint32) {
	if w == nil || w.Type != WintypeGraphics {
		return
	}
	x, y := int(left), int(top)
	wd, ht := int(width), int(height)
	w.queueDraw(s, protocol.DrawOp{
		Special: "fill",
		Color:   cssColor(color),
		X:       &x, Y: &y,
		Width: &wd, Height: &ht,
	})
}

// WindowEraseRect fills a rectangle with the window background color.
func (s *Session) WindowEraseRect(w *Window, left, top int32, width, height uint32) {
	if w == nil || w.Type != WintypeGraphics {
		return
	}
	x, y := int(left), int(top)
	wd, ht := int(width), int(height)
	w.queueDraw(s, protocol.DrawOp{
		Special: "fill",
		X:       &x, Y: &y,
		Width: &wd, Height: &ht,
	})
}
