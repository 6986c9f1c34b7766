package render

// HSVToRGB converts a hue/saturation/value triple to 8-bit RGB channels.
// h is in degrees [0, 360), s and v are percentages [0, 100].
func HSVToRGB(h, s, v float64) (uint8, uint8, uint8) {
	h = h / 360.0
	s = s / 100.0
	v = v / 100.0

	if s == 0 {
		c := uint8(v * 255)
		return c, c, c
	}

	i := int(h * 6)
	f := (h * 6) - float64(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	case 5:
		r, g, b = v, p, q
	}

	return uint8(r * 255), uint8(g * 255), uint8(b * 255)
}
