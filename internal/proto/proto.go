// Package proto implements the DX-Light wire format: one 192-byte logical
// buffer per update, carried as three 64-byte HID reports.
//
// The layout is a frozen firmware contract. In particular the first LED
// block starts at assembled index 1 and runs into the second zone's range;
// the device expects exactly this packing, so it is preserved, not fixed.
package proto

import (
	"errors"
	"fmt"

	"github.com/mauros/dxlight/internal/render"
)

const (
	// BufferSize is the logical update buffer carried by one frame.
	BufferSize = 192
	// ChunkSize is the payload per HID report.
	ChunkSize = 64
	// ReportSize includes the leading report-ID byte expected by hidapi.
	ReportSize = ChunkSize + 1
	// NumReports per logical update.
	NumReports = BufferSize / ChunkSize

	headerLen  = 7
	counterPos = 4
	ledDataPos = 10
)

// header precedes every update; byte 4 is replaced by the frame counter.
var header = [headerLen]byte{0x53, 0x43, 0x00, 0xB1, 0x00, 0x80, 0x01}

// blockStarts are the assembled indices where the three 12-LED blocks
// begin. The 1/12 overlap is the firmware quirk described above.
var blockStarts = [3]int{1, 12, 24}

// Reports is one encoded update, ready to hand to the transport in order.
type Reports [NumReports][ReportSize]byte

// Encode packs a frame into three transport reports. It is a pure function
// of its inputs; the caller owns the counter and wraps it after every send.
func Encode(f *render.Frame, counter uint8, mirror bool) Reports {
	a := Assemble(f, mirror)

	var buf [BufferSize]byte
	copy(buf[:headerLen], header[:])
	buf[counterPos] = counter

	buf[7] = a[0].R
	buf[8] = a[0].G
	buf[9] = a[0].B

	p := ledDataPos
	seq := uint8(1)
	for _, s := range blockStarts {
		for i := 0; i < render.ZoneSize; i++ {
			c := a[s+i]
			buf[p] = seq
			seq++
			buf[p+1] = seq
			seq++
			buf[p+2] = c.R
			buf[p+3] = c.G
			buf[p+4] = c.B
			p += 5
		}
	}

	var out Reports
	for i := 0; i < NumReports; i++ {
		out[i][0] = 0x00 // HID report ID
		copy(out[i][1:], buf[i*ChunkSize:(i+1)*ChunkSize])
	}
	return out
}

// Assemble produces the protocol-level LED order: reversed left zones,
// then top, then right. With mirror set, the left and right zones swap
// roles and the top zones reverse, flipping the strip without resampling.
// Applying mirror twice restores the original order.
func Assemble(f *render.Frame, mirror bool) [render.LedCount]render.Color {
	var left, top, right [render.ZoneSize]render.Color
	if mirror {
		for i := 0; i < render.ZoneSize; i++ {
			left[i] = f[render.RightStart+render.ZoneSize-1-i]
			right[i] = f[render.LeftStart+render.ZoneSize-1-i]
			top[i] = f[render.TopStart+render.ZoneSize-1-i]
		}
	} else {
		for i := 0; i < render.ZoneSize; i++ {
			left[i] = f[render.LeftStart+i]
			right[i] = f[render.RightStart+i]
			top[i] = f[render.TopStart+i]
		}
	}

	var a [render.LedCount]render.Color
	for i := 0; i < render.ZoneSize; i++ {
		a[i] = left[render.ZoneSize-1-i]
		a[render.TopStart+i] = top[i]
		a[render.RightStart+i] = right[i]
	}
	return a
}

var (
	// ErrBadHeader reports a report stream whose fixed header bytes are wrong.
	ErrBadHeader = errors.New("proto: bad header")
	// ErrBadSequence reports corrupted per-LED counter bytes.
	ErrBadSequence = errors.New("proto: bad led sequence")
)

// Decode reverses Encode: it reassembles the logical buffer from three
// reports, validates the header and the per-LED sequence bytes, and
// reconstructs the frame. mirror must match the flag used at encode time.
func Decode(reports Reports, mirror bool) (render.Frame, uint8, error) {
	var buf [BufferSize]byte
	for i := 0; i < NumReports; i++ {
		if reports[i][0] != 0x00 {
			return render.Frame{}, 0, fmt.Errorf("%w: report %d has id 0x%02x", ErrBadHeader, i, reports[i][0])
		}
		copy(buf[i*ChunkSize:(i+1)*ChunkSize], reports[i][1:])
	}

	for i, b := range header {
		if i == counterPos {
			continue
		}
		if buf[i] != b {
			return render.Frame{}, 0, fmt.Errorf("%w: byte %d is 0x%02x, want 0x%02x", ErrBadHeader, i, buf[i], b)
		}
	}
	counter := buf[counterPos]

	var a [render.LedCount]render.Color
	a[0] = render.Color{R: buf[7], G: buf[8], B: buf[9]}

	p := ledDataPos
	seq := uint8(1)
	for _, s := range blockStarts {
		for i := 0; i < render.ZoneSize; i++ {
			if buf[p] != seq || buf[p+1] != seq+1 {
				return render.Frame{}, 0, fmt.Errorf("%w: at offset %d", ErrBadSequence, p)
			}
			seq += 2
			a[s+i] = render.Color{R: buf[p+2], G: buf[p+3], B: buf[p+4]}
			p += 5
		}
	}

	// Undo assembly: a = reverse(left_src) ++ top_src ++ right_src.
	var leftSrc, topSrc, rightSrc [render.ZoneSize]render.Color
	for i := 0; i < render.ZoneSize; i++ {
		leftSrc[i] = a[render.ZoneSize-1-i]
		topSrc[i] = a[render.TopStart+i]
		rightSrc[i] = a[render.RightStart+i]
	}

	var f render.Frame
	if mirror {
		for i := 0; i < render.ZoneSize; i++ {
			f[render.RightStart+i] = leftSrc[render.ZoneSize-1-i]
			f[render.LeftStart+i] = rightSrc[render.ZoneSize-1-i]
			f[render.TopStart+i] = topSrc[render.ZoneSize-1-i]
		}
	} else {
		for i := 0; i < render.ZoneSize; i++ {
			f[render.LeftStart+i] = leftSrc[i]
			f[render.TopStart+i] = topSrc[i]
			f[render.RightStart+i] = rightSrc[i]
		}
	}
	return f, counter, nil
}
