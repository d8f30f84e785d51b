package render

import "math"

// Rotation rates in hue revolutions per second at speed 1.0. Cycle is the
// slow variant of Rainbow; the ratio is part of the observable contract.
const (
	rainbowRate   = 0.3
	cycleRate     = 0.1
	breathingRate = 1.5
)

// EffectParams is everything an effect generator needs for one tick.
// Speed is normalized so that the midpoint of the UI's speed range maps
// to 1.0.
type EffectParams struct {
	Elapsed    float64 // seconds since the render loop started
	Speed      float64
	Brightness float64 // 0..1
	Base       Color
}

// Static fills the frame with the base color scaled by brightness.
func Static(p EffectParams) Frame {
	var f Frame
	f.Fill(Scale(p.Base, p.Brightness))
	return f
}

// Rainbow rotates a single shared hue across the whole strip. All 36 LEDs
// carry the same color; the effect is not position-aware.
func Rainbow(p EffectParams) Frame {
	hue := math.Mod(p.Elapsed*p.Speed*rainbowRate, 1.0)
	var f Frame
	f.Fill(HueColor(hue, p.Brightness))
	return f
}

// Breathing pulses the base color with a sinusoid.
func Breathing(p EffectParams) Frame {
	pulse := (math.Sin(p.Elapsed*p.Speed*breathingRate) + 1.0) / 2.0
	var f Frame
	f.Fill(Scale(p.Base, pulse*p.Brightness))
	return f
}

// Cycle is Rainbow at a third of the hue rotation rate.
func Cycle(p EffectParams) Frame {
	hue := math.Mod(p.Elapsed*p.Speed*cycleRate, 1.0)
	var f Frame
	f.Fill(HueColor(hue, p.Brightness))
	return f
}
