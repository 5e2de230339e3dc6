// Package noise provides coherent scalar noise fields used to bias walkers and
// perturb sketch layouts.
package noise

import (
	"fmt"
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
	"github.com/soypat/geometry/ms2"
)

// Field is a 2D scalar field with values in [-1, 1].
type Field interface {
	At(x, y float64) float64
}

// Simplex is an OpenSimplex field sampled at a fixed spatial frequency.
type Simplex struct {
	noise opensimplex.Noise
	scale float64
}

// NewSimplex returns an OpenSimplex field. Coordinates are multiplied by scale before sampling.
func NewSimplex(seed int64, scale float64) *Simplex {
	return &Simplex{noise: opensimplex.New(seed), scale: scale}
}

// At implements [Field].
func (s *Simplex) At(x, y float64) float64 {
	return s.noise.Eval2(x*s.scale, y*s.scale)
}

// Perlin is a classic Perlin noise field.
type Perlin struct {
	p     *perlin.Perlin
	scale float64
}

// Perlin noise parameters. Alpha is the weight when the sum is formed, beta the harmonic
// scaling and octaves the number of iterations.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 3
)

// NewPerlin returns a Perlin field. Coordinates are multiplied by scale before sampling.
func NewPerlin(seed int64, scale float64) *Perlin {
	return &Perlin{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed), scale: scale}
}

// At implements [Field]. Raw Perlin output is roughly in [-0.7, 0.7] and is stretched and clamped to [-1, 1].
func (p *Perlin) At(x, y float64) float64 {
	v := p.p.Noise2D(x*p.scale, y*p.scale) * math.Sqrt2
	return math.Max(-1, math.Min(1, v))
}

// Parse returns the field named by kind: "simplex" or "perlin".
func Parse(kind string, seed int64, scale float64) (Field, error) {
	switch kind {
	case "simplex", "opensimplex":
		return NewSimplex(seed, scale), nil
	case "perlin":
		return NewPerlin(seed, scale), nil
	}
	return nil, fmt.Errorf("unknown noise kind %q", kind)
}

// Direction maps the field value at p to an angle in [-2π, 2π] and returns the unit vector pointing there.
func Direction(f Field, p ms2.Vec) ms2.Vec {
	a := f.At(float64(p.X), float64(p.Y)) * 2 * math.Pi
	s, c := math.Sincos(a)
	return ms2.Vec{X: float32(c), Y: float32(s)}
}
