// Package gsketch holds the geometry value types shared by the sketch engines:
// circles, polylines and polygons, corner-cutting smoothing and circle packing.
package gsketch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

const (
	largenum = 1e20
	// epstol is used to check for badly conditioned denominators
	// such as lengths used for normalization.
	epstol = 6e-7
)

// Circle is a circle of radius R centered at Center.
type Circle struct {
	Center ms2.Vec
	R      float32
}

// Bounds returns the smallest box containing the circle.
func (c Circle) Bounds() ms2.Box {
	return ms2.NewBox(c.Center.X-c.R, c.Center.Y-c.R, c.Center.X+c.R, c.Center.Y+c.R)
}

// Overlaps reports whether c and other are closer than the sum of their radii plus padding.
func (c Circle) Overlaps(other Circle, padding float32) bool {
	minDist := c.R + other.R + padding
	return ms2.Norm2(ms2.Sub(c.Center, other.Center)) < minDist*minDist
}

// Points returns n points evenly spaced along the circle starting at angle offset.
func (c Circle) Points(n int, offset float32) []ms2.Vec {
	pts := make([]ms2.Vec, n)
	for i := range pts {
		a := offset + 2*math32.Pi*float32(i)/float32(n)
		s, co := math32.Sincos(a)
		pts[i] = ms2.Vec{X: c.Center.X + c.R*co, Y: c.Center.Y + c.R*s}
	}
	return pts
}

// BoxContains reports whether p lies inside bb, boundary included.
func BoxContains(bb ms2.Box, p ms2.Vec) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

// unit returns v scaled to unit length. Near-zero vectors return the zero vector.
func unit(v ms2.Vec) ms2.Vec {
	n := ms2.Norm(v)
	if n < epstol {
		return ms2.Vec{}
	}
	return ms2.Scale(1/n, v)
}

func perp(v ms2.Vec) ms2.Vec {
	return ms2.Vec{X: -v.Y, Y: v.X}
}
