package raster

import (
	"image/color"

	"github.com/chewxy/math32"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/geometry/ms1"
)

var (
	red = color.RGBA{R: 255, A: 255}

	iqOutside = colorful.Color{R: 0.9, G: 0.6, B: 0.3}
	iqInside  = colorful.Color{R: 0.65, G: 0.85, B: 1}
	iqEdge    = colorful.Color{R: 1, G: 1, B: 1}
)

// ColorConversionInigoQuilez creates a distance to color conversion for [ImageRenderer.RenderSDF]
// in [Inigo Quilez]'s style: orange outside, blue inside, darker with distance and banded by
// isolines, with a white zero isoline. A good value for characteristic distance is the bounding
// box diagonal divided by 3. NaN distances are red.
//
// [Inigo Quilez]: https://iquilezles.org/articles/distfunctions2d/
func ColorConversionInigoQuilez(characteristicDistance float32) func(float32) color.Color {
	inv := 1 / characteristicDistance
	return func(d float32) color.Color {
		if math32.IsNaN(d) {
			return red
		}
		d *= inv
		ad := math32.Abs(d)
		base := iqOutside
		if d <= 0 {
			base = iqInside
		}
		shade := float64((1 - math32.Exp(-6*ad)) * (0.8 + 0.2*math32.Cos(150*d)))
		banded := colorful.Color{R: base.R * shade, G: base.G * shade, B: base.B * shade}
		edge := float64(1 - ms1.SmoothStep(0, 0.01, ad))
		return banded.BlendRgb(iqEdge, edge).Clamped()
	}
}
