// Package capture supplies raw frames to the render loop.
package capture

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"github.com/mauros/dxlight/internal/render"
)

// Source yields one frame per call. Grab may block; the render loop calls
// it synchronously and the time counts against the frame budget. A failed
// grab is transient: the loop holds its last good frame and keeps going.
type Source interface {
	Grab() (*render.Image, error)
}

// Screen captures a whole display via the platform screenshot backend.
// The RGB buffer is reused across grabs; the engine never retains a frame
// beyond the tick that consumed it.
type Screen struct {
	display int
	bounds  image.Rectangle
	pix     []byte
}

// NewScreen validates the display index and records its bounds.
func NewScreen(display int) (*Screen, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("capture: no active displays")
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("capture: display %d out of range (have %d)", display, n)
	}
	return &Screen{display: display, bounds: screenshot.GetDisplayBounds(display)}, nil
}

// Bounds returns the monitor size in pixels.
func (s *Screen) Bounds() (w, h int) {
	return s.bounds.Dx(), s.bounds.Dy()
}

func (s *Screen) Grab() (*render.Image, error) {
	img, err := screenshot.CaptureRect(s.bounds)
	if err != nil {
		return nil, fmt.Errorf("capture: grab display %d: %w", s.display, err)
	}
	w, h := img.Rect.Dx(), img.Rect.Dy()
	need := w * h * 3
	if cap(s.pix) < need {
		s.pix = make([]byte, need)
	}
	pix := s.pix[:need]

	// RGBA -> packed RGB, dropping alpha.
	for y := 0; y < h; y++ {
		src := img.Pix[y*img.Stride:]
		dst := pix[y*w*3:]
		for x := 0; x < w; x++ {
			dst[x*3+0] = src[x*4+0]
			dst[x*3+1] = src[x*4+1]
			dst[x*3+2] = src[x*4+2]
		}
	}
	return &render.Image{W: w, H: h, Pix: pix}, nil
}
