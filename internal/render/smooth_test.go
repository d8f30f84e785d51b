package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothZeroAlphaIsInstant(t *testing.T) {
	var prev Frame
	var next Frame
	next.Fill(Color{R: 10, G: 200, B: 99})
	out := Smooth(&prev, &next, 0)
	assert.Equal(t, next, out)
}

func TestSmoothHalfway(t *testing.T) {
	var prev, next Frame
	prev.Fill(Color{R: 0, G: 100, B: 200})
	next.Fill(Color{R: 200, G: 0, B: 100})
	out := Smooth(&prev, &next, 0.5)
	assert.Equal(t, Color{R: 100, G: 50, B: 150}, out[0])
}

func TestSmoothConvergesToTarget(t *testing.T) {
	// Truncation stalls an upward ramp once the per-tick step drops below
	// one count, so steady state is within 1/(1-alpha) of the target.
	for _, alpha := range []float64{0.25, 0.5, 0.9} {
		var cur, target Frame
		target.Fill(Color{R: 255, G: 1, B: 128})

		for i := 0; i < 200; i++ {
			cur = Smooth(&cur, &target, alpha)
		}
		tol := 1.0 / (1.0 - alpha)
		for ch, pair := range [][2]uint8{
			{cur[0].R, target[0].R},
			{cur[0].G, target[0].G},
			{cur[0].B, target[0].B},
		} {
			assert.InDelta(t, int(pair[1]), int(pair[0]), tol, "alpha=%v channel=%d", alpha, ch)
		}
	}
}

func TestSmoothConvergesDownward(t *testing.T) {
	var cur, target Frame
	cur.Fill(Color{R: 255, G: 255, B: 255})

	for i := 0; i < 200; i++ {
		cur = Smooth(&cur, &target, 0.9)
	}
	assert.Equal(t, target, cur)
}

func TestSmoothStaysBetweenEndpoints(t *testing.T) {
	var prev, next Frame
	prev.Fill(Color{R: 40})
	next.Fill(Color{R: 220})
	for _, alpha := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		out := Smooth(&prev, &next, alpha)
		assert.GreaterOrEqual(t, out[0].R, uint8(40))
		assert.LessOrEqual(t, out[0].R, uint8(220))
	}
}
