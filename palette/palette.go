// Package palette generates and interpolates color palettes for sketches.
package palette

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is an ordered list of colors.
type Palette []colorful.Color

// Space selects the color space used for interpolation.
type Space uint8

const (
	RGB Space = iota
	HSV
	Lab
	Luv
	HCL
)

var spaceNames = [...]string{RGB: "rgb", HSV: "hsv", Lab: "lab", Luv: "luv", HCL: "hcl"}

func (s Space) String() string {
	if int(s) < len(spaceNames) {
		return spaceNames[s]
	}
	return fmt.Sprintf("Space(%d)", s)
}

// ParseSpace returns the color space by name. Unknown names are an error.
func ParseSpace(name string) (Space, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range spaceNames {
		if n == name {
			return Space(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color space %q", name)
}

// Blend interpolates a towards b by t in the given space.
func Blend(a, b colorful.Color, t float64, space Space) colorful.Color {
	switch space {
	case HSV:
		return blendHSV(a, b, t)
	case Lab:
		return a.BlendLab(b, t).Clamped()
	case Luv:
		return a.BlendLuv(b, t).Clamped()
	case HCL:
		return a.BlendHcl(b, t).Clamped()
	default:
		return a.BlendRgb(b, t)
	}
}

// FromHex parses colors in "#rrggbb" notation. All parse errors are joined.
func FromHex(hex ...string) (Palette, error) {
	p := make(Palette, 0, len(hex))
	var errs []error
	for _, h := range hex {
		if !strings.HasPrefix(h, "#") {
			h = "#" + h
		}
		c, err := colorful.Hex(h)
		if err != nil {
			errs = append(errs, fmt.Errorf("color %q: %w", h, err))
			continue
		}
		p = append(p, c)
	}
	return p, errors.Join(errs...)
}

// MustHex is like FromHex but panics on error. Meant for package level presets.
func MustHex(hex ...string) Palette {
	p, err := FromHex(hex...)
	if err != nil {
		panic(err)
	}
	return p
}

// FromColors converts standard library colors to a palette.
func FromColors(cs ...color.Color) Palette {
	p := make(Palette, len(cs))
	for i, c := range cs {
		p[i], _ = colorful.MakeColor(c)
	}
	return p
}

// Gradient returns n colors evenly interpolated from a to b, both included.
func Gradient(a, b colorful.Color, n int, space Space) Palette {
	if n <= 0 {
		return nil
	} else if n == 1 {
		return Palette{a}
	}
	p := make(Palette, n)
	for i := range p {
		p[i] = Blend(a, b, float64(i)/float64(n-1), space)
	}
	return p
}

// At returns the color at t in [0, 1] along the palette, interpolating between neighbors.
// Values of t outside the range are clamped. At panics on an empty palette.
func (p Palette) At(t float64, space Space) colorful.Color {
	if len(p) == 1 {
		return p[0]
	}
	t = math.Max(0, math.Min(1, t))
	x := t * float64(len(p)-1)
	i := int(x)
	if i >= len(p)-1 {
		return p[len(p)-1]
	}
	return Blend(p[i], p[i+1], x-float64(i), space)
}

// Pick returns a random color of the palette.
func (p Palette) Pick(rng *rand.Rand) colorful.Color {
	return p[rng.IntN(len(p))]
}

// Shuffle returns a shuffled copy of the palette.
func (p Palette) Shuffle(rng *rand.Rand) Palette {
	cp := append(Palette(nil), p...)
	rng.Shuffle(len(cp), func(i, j int) { cp[i], cp[j] = cp[j], cp[i] })
	return cp
}

// NRGBA converts the palette color i (wrapping around) to an 8-bit color.
func (p Palette) NRGBA(i int) color.NRGBA {
	return ToNRGBA(p[((i%len(p))+len(p))%len(p)])
}

// ToNRGBA converts a colorful color to an opaque 8-bit color.
func ToNRGBA(c colorful.Color) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// WithAlpha returns c with alpha a in [0, 1].
func WithAlpha(c colorful.Color, a float64) color.NRGBA {
	n := ToNRGBA(c)
	n.A = uint8(math.Round(255 * math.Max(0, math.Min(1, a))))
	return n
}

// Random returns n colors sampled in HCL around a random base hue so the palette
// stays harmonious: hues are spread by a golden-angle step with chroma and luminance jitter.
func Random(rng *rand.Rand, n int) Palette {
	const goldenAngle = 137.50776405003785
	base := rng.Float64() * 360
	p := make(Palette, n)
	for i := range p {
		h := math.Mod(base+float64(i)*goldenAngle, 360)
		c := 0.3 + 0.4*rng.Float64()
		l := 0.45 + 0.4*rng.Float64()
		p[i] = colorful.Hcl(h, c, l).Clamped()
	}
	return p
}

// Luminance returns the perceptual lightness of c in [0, 1].
func Luminance(c colorful.Color) float64 {
	l, _, _ := c.Lab()
	return l
}

// Contrasting returns whichever of the palette colors contrasts most with bg in lightness.
func (p Palette) Contrasting(bg colorful.Color) colorful.Color {
	best := p[0]
	bestD := -1.0
	lb := Luminance(bg)
	for _, c := range p {
		if d := math.Abs(Luminance(c) - lb); d > bestD {
			best, bestD = c, d
		}
	}
	return best
}
