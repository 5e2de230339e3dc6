package palette

import (
	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/geometry/ms1"
)

// hsv is a color as hue, saturation and value, all in [0, 1).
type hsv struct {
	h, s, v float32
}

func toHSV(c colorful.Color) hsv {
	r, g, b := float32(c.R), float32(c.G), float32(c.B)
	hi := max(r, g, b)
	chroma := hi - min(r, g, b)
	out := hsv{v: hi}
	if hi > 0 {
		out.s = chroma / hi
	}
	if chroma == 0 {
		return out
	}
	// Position on the hue hexagon in [0, 6).
	var sector float32
	switch hi {
	case r:
		sector = (g - b) / chroma
		if sector < 0 {
			sector += 6
		}
	case g:
		sector = 2 + (b-r)/chroma
	default:
		sector = 4 + (r-g)/chroma
	}
	out.h = sector / 6
	return out
}

func (c hsv) color() colorful.Color {
	h6 := (c.h - math32.Floor(c.h)) * 6
	i := int(h6)
	f := h6 - float32(i)
	lo := c.v * (1 - c.s)
	falling := c.v * (1 - c.s*f)
	rising := c.v * (1 - c.s*(1-f))
	var r, g, b float32
	switch i {
	case 0:
		r, g, b = c.v, rising, lo
	case 1:
		r, g, b = falling, c.v, lo
	case 2:
		r, g, b = lo, c.v, rising
	case 3:
		r, g, b = lo, falling, c.v
	case 4:
		r, g, b = rising, lo, c.v
	default:
		r, g, b = c.v, lo, falling
	}
	return colorful.Color{R: float64(r), G: float64(g), B: float64(b)}
}

// blendHSV interpolates in HSV along the shorter arc of the hue circle. A gray endpoint
// borrows the hue of the other so the blend does not sweep through unrelated hues.
func blendHSV(a, b colorful.Color, t float64) colorful.Color {
	ca, cb := toHSV(a), toHSV(b)
	switch {
	case ca.s == 0:
		ca.h = cb.h
	case cb.s == 0:
		cb.h = ca.h
	}
	dh := cb.h - ca.h
	if dh > 0.5 {
		dh -= 1
	} else if dh < -0.5 {
		dh += 1
	}
	tf := float32(t)
	h := ca.h + dh*tf
	return hsv{
		h: h - math32.Floor(h),
		s: ms1.Interp(ca.s, cb.s, tf),
		v: ms1.Interp(ca.v, cb.v, tf),
	}.color().Clamped()
}
