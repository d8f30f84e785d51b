package render

// hsvToRGB converts hue/saturation/value (each 0..1) to RGB floats 0..1.
func hsvToRGB(h, s, v float64) (float64, float64, float64) {
	i := int(h * 6.0)
	f := h*6.0 - float64(i)
	p := v * (1.0 - s)
	q := v * (1.0 - f*s)
	t := v * (1.0 - (1.0-f)*s)
	switch i % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}

// HueColor maps a full-saturation, full-value hue through HSV and scales it
// by brightness. Channel math truncates toward zero, matching the device's
// expected quantization.
func HueColor(hue, brightness float64) Color {
	r, g, b := hsvToRGB(hue, 1.0, 1.0)
	return Color{
		R: chanByte(r * 255.0 * brightness),
		G: chanByte(g * 255.0 * brightness),
		B: chanByte(b * 255.0 * brightness),
	}
}

// Scale multiplies each channel of c by f, truncating toward zero.
func Scale(c Color, f float64) Color {
	return Color{
		R: chanByte(float64(c.R) * f),
		G: chanByte(float64(c.G) * f),
		B: chanByte(float64(c.B) * f),
	}
}

// chanByte clamps a float channel value into [0,255] and truncates.
func chanByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
