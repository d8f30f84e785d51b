package render

// downsampleTarget bounds sampling cost independent of source resolution:
// the shorter cropped dimension is reduced to roughly this many pixels by
// integer striding.
const downsampleTarget = 360

// Sample reduces one captured frame into the 36-zone LED state.
//
// The cropped region is downsampled by an integer stride, then three edge
// strips (left, top, right) are each split into 12 equal zones along their
// long axis. A zone's color is the arithmetic mean of every pixel in it,
// scaled by brightness. Left zones come out bottom->top, top zones
// left->right, right zones top->bottom, per the Frame index layout.
func Sample(img *Image, crop CropRegion, edgePct, brightness float64) Frame {
	var out Frame

	// Crop rectangle in pixels, at least 1x1.
	x0 := int(float64(img.W) * crop.Left)
	y0 := int(float64(img.H) * crop.Top)
	x1 := int(float64(img.W) * (1.0 - crop.Right))
	y1 := int(float64(img.H) * (1.0 - crop.Bottom))
	if x1 <= x0 {
		x1 = x0 + 1
	}
	if y1 <= y0 {
		y1 = y0 + 1
	}

	stride := min2(x1-x0, y1-y0) / downsampleTarget
	if stride < 1 {
		stride = 1
	}

	// Dimensions of the strided region.
	rw := (x1 - x0 + stride - 1) / stride
	rh := (y1 - y0 + stride - 1) / stride

	edge := int(float64(min2(rw, rh)) * edgePct)
	if edge < 1 {
		edge = 1
	}

	r := region{img: img, x0: x0, y0: y0, stride: stride}

	// Left strip: first `edge` columns, zoned over rows, reversed so that
	// index 0 is the bottom-most zone.
	sampleStrip(&r, 0, min2(edge, rw), 0, rh, false, brightness, func(zone int, c Color) {
		out[LeftStart+(ZoneSize-1-zone)] = c
	})

	// Top strip: first `edge` rows, zoned over columns, left to right.
	sampleStrip(&r, 0, rw, 0, min2(edge, rh), true, brightness, func(zone int, c Color) {
		out[TopStart+zone] = c
	})

	// Right strip: last `edge` columns, zoned over rows, top to bottom.
	rx := rw - edge
	if rx < 0 {
		rx = 0
	}
	sampleStrip(&r, rx, rw, 0, rh, false, brightness, func(zone int, c Color) {
		out[RightStart+zone] = c
	})

	return out
}

// region maps strided coordinates back to source pixels.
type region struct {
	img    *Image
	x0, y0 int
	stride int
}

func (r *region) at(x, y int) Color {
	return r.img.At(r.x0+x*r.stride, r.y0+y*r.stride)
}

// sampleStrip averages one edge strip into 12 zones and emits each scaled
// zone color. When horizontal is true the long axis is columns, otherwise
// rows. A strip too short for 12 zones collapses to its single average
// color repeated for every zone; a zero-area strip yields black.
func sampleStrip(r *region, xa, xb, ya, yb int, horizontal bool, brightness float64, emit func(zone int, c Color)) {
	long := yb - ya
	if horizontal {
		long = xb - xa
	}
	zoneLen := long / ZoneSize

	if zoneLen < 1 {
		avg := meanColor(r, xa, xb, ya, yb, brightness)
		for i := 0; i < ZoneSize; i++ {
			emit(i, avg)
		}
		return
	}

	for i := 0; i < ZoneSize; i++ {
		lo := i * zoneLen
		hi := lo + zoneLen
		if horizontal {
			emit(i, meanColor(r, xa+lo, xa+hi, ya, yb, brightness))
		} else {
			emit(i, meanColor(r, xa, xb, ya+lo, ya+hi, brightness))
		}
	}
}

// meanColor averages all pixels in the rect, scales by brightness, and
// truncates. Sums use uint64 so large zones cannot overflow.
func meanColor(r *region, xa, xb, ya, yb int, brightness float64) Color {
	var sr, sg, sb uint64
	n := uint64(0)
	for y := ya; y < yb; y++ {
		for x := xa; x < xb; x++ {
			c := r.at(x, y)
			sr += uint64(c.R)
			sg += uint64(c.G)
			sb += uint64(c.B)
			n++
		}
	}
	if n == 0 {
		return Color{}
	}
	fn := float64(n)
	return Color{
		R: chanByte(float64(sr) / fn * brightness),
		G: chanByte(float64(sg) / fn * brightness),
		B: chanByte(float64(sb) / fn * brightness),
	}
}

func min2(a, b int) int {
	if a < b {
		return a
	}
	return b
}
