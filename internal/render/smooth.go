package render

// Smooth blends the previous output toward the newly computed frame with a
// first-order IIR filter, independently per LED and channel:
//
//	blended = prev + (next - prev) * (1 - alpha)
//
// alpha=0 passes next through unchanged; alpha approaching 1 freezes the
// output. Channel math truncates toward zero, so convergence on the last
// step snaps rather than oscillates.
func Smooth(prev, next *Frame, alpha float64) Frame {
	if alpha <= 0 {
		return *next
	}
	f := 1.0 - alpha
	var out Frame
	for i := range out {
		out[i] = Color{
			R: blendChan(prev[i].R, next[i].R, f),
			G: blendChan(prev[i].G, next[i].G, f),
			B: blendChan(prev[i].B, next[i].B, f),
		}
	}
	return out
}

func blendChan(prev, next uint8, f float64) uint8 {
	p := float64(prev)
	return uint8(p + (float64(next)-p)*f)
}
