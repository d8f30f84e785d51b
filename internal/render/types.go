package render

// Strip geometry of the DX-Light backlight: 36 LEDs in three edge groups
// of 12. The index layout is fixed by the physical wiring and by the wire
// protocol; never reorder it.
const (
	ZoneSize = 12
	LedCount = 3 * ZoneSize

	LeftStart  = 0  // [0..12)  left edge, bottom -> top
	TopStart   = 12 // [12..24) top edge, left -> right
	RightStart = 24 // [24..36) right edge, top -> bottom
)

// Color is one LED value, 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// Frame is the full logical LED state for one tick.
type Frame [LedCount]Color

// Fill sets every LED to c.
func (f *Frame) Fill(c Color) {
	for i := range f {
		f[i] = c
	}
}

// Image is a tightly packed RGB pixel buffer, 3 bytes per pixel, row-major.
// It is the engine's view of whatever a frame source captured; the source
// converts its native pixel format before handing it over.
type Image struct {
	W, H int
	Pix  []byte // len == W*H*3
}

// At returns the pixel at (x, y). No bounds check; callers iterate within
// the image dimensions.
func (im *Image) At(x, y int) Color {
	o := (y*im.W + x) * 3
	return Color{im.Pix[o], im.Pix[o+1], im.Pix[o+2]}
}

// CropRegion gives the fraction of each edge to exclude from sampling,
// each in [0,1). Left+Right and Top+Bottom stay below 1; the config layer
// clamps before values reach the sampler.
type CropRegion struct {
	Left, Top, Right, Bottom float64
}
