// Package raster renders scenes by evaluating 2D signed distance fields and converting
// distance to antialiased pixel coverage.
package raster

import (
	"errors"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
	"github.com/soypat/geometry/ms2"
)

// SDF2 is a 2D signed distance field. Negative distances lie inside the shape.
type SDF2 interface {
	// Evaluate writes the distance to the shape for every position in pos to dist.
	Evaluate(pos []ms2.Vec, dist []float32, userData any) error
	// Bounds returns a box containing every point with non-positive distance.
	Bounds() ms2.Box
}

// NewCircle returns the SDF of a disk.
func NewCircle(center ms2.Vec, r float32) (SDF2, error) {
	if r <= 0 || math32.IsNaN(r) {
		return nil, errors.New("circle radius must be positive")
	}
	return &circle2D{c: center, r: r}, nil
}

type circle2D struct {
	c ms2.Vec
	r float32
}

func (c *circle2D) Bounds() ms2.Box {
	rv := ms2.Vec{X: c.r, Y: c.r}
	return ms2.Box{Min: ms2.Sub(c.c, rv), Max: ms2.Add(c.c, rv)}
}

func (c *circle2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	r := c.r
	for i, p := range pos {
		dist[i] = ms2.Norm(ms2.Sub(p, c.c)) - r
	}
	return nil
}

// NewLine returns the SDF of a capsule of the given width around segment ab.
func NewLine(a, b ms2.Vec, width float32) (SDF2, error) {
	if width <= 0 || math32.IsNaN(width) {
		return nil, errors.New("line width must be positive")
	}
	return &line2D{a: a, b: b, width: width}, nil
}

type line2D struct {
	a, b  ms2.Vec
	width float32
}

func (l *line2D) Bounds() ms2.Box {
	w := ms2.Vec{X: l.width / 2, Y: l.width / 2}
	return ms2.Box{
		Min: ms2.Sub(ms2.MinElem(l.a, l.b), w),
		Max: ms2.Add(ms2.MaxElem(l.a, l.b), w),
	}
}

func (l *line2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	a := l.a
	ba := ms2.Sub(l.b, l.a)
	dotba := ms2.Dot(ba, ba)
	w := l.width / 2
	for i, p := range pos {
		pa := ms2.Sub(p, a)
		var h float32
		if dotba > 0 {
			h = ms1.Clamp(ms2.Dot(pa, ba)/dotba, 0, 1)
		}
		dist[i] = ms2.Norm(ms2.Sub(pa, ms2.Scale(h, ba))) - w
	}
	return nil
}

// NewPolygon returns the SDF of a filled polygon. Inside is decided by the nonzero winding rule.
func NewPolygon(vertices []ms2.Vec) (SDF2, error) {
	if len(vertices) < 3 {
		return nil, errors.New("polygon needs at least 3 vertices")
	}
	bb := ms2.Box{Min: vertices[0], Max: vertices[0]}
	for _, v := range vertices[1:] {
		bb.Min = ms2.MinElem(bb.Min, v)
		bb.Max = ms2.MaxElem(bb.Max, v)
	}
	return &poly2D{vert: vertices, bb: bb}, nil
}

type poly2D struct {
	vert []ms2.Vec
	bb   ms2.Box
}

func (p *poly2D) Bounds() ms2.Box { return p.bb }

func (p *poly2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	// https://www.shadertoy.com/view/wdBXRW
	verts := p.vert
	for i, p := range pos {
		d := ms2.Norm2(ms2.Sub(p, verts[0]))
		winding := 0
		jv := len(verts) - 1
		for iv, v1 := range verts {
			v2 := verts[jv]
			e := ms2.Sub(v2, v1)
			w := ms2.Sub(p, v1)
			var h float32
			if n2 := ms2.Norm2(e); n2 > 0 {
				h = ms1.Clamp(ms2.Dot(w, e)/n2, 0, 1)
			}
			d = math32.Min(d, ms2.Norm2(ms2.Sub(w, ms2.Scale(h, e))))
			// Edge runs from v2 to v1.
			isLeft := (v1.X-v2.X)*(p.Y-v2.Y) - (p.X-v2.X)*(v1.Y-v2.Y)
			if v2.Y <= p.Y {
				if v1.Y > p.Y && isLeft > 0 {
					winding++
				}
			} else if v1.Y <= p.Y && isLeft < 0 {
				winding--
			}
			jv = iv
		}
		s := float32(1)
		if winding != 0 {
			s = -1
		}
		dist[i] = s * math32.Sqrt(d)
	}
	return nil
}

// Union returns the SDF of the union of all shapes.
func Union(shapes ...SDF2) (SDF2, error) {
	if len(shapes) == 0 {
		return nil, errors.New("union needs at least one shape")
	}
	for _, s := range shapes {
		if s == nil {
			return nil, errors.New("nil shape in union")
		}
	}
	if len(shapes) == 1 {
		return shapes[0], nil
	}
	return &union2D{joined: shapes}, nil
}

type union2D struct {
	joined []SDF2
	aux    []float32
}

func (u *union2D) Bounds() ms2.Box {
	bb := u.joined[0].Bounds()
	for _, s := range u.joined[1:] {
		sb := s.Bounds()
		bb.Min = ms2.MinElem(bb.Min, sb.Min)
		bb.Max = ms2.MaxElem(bb.Max, sb.Max)
	}
	return bb
}

func (u *union2D) Evaluate(pos []ms2.Vec, dist []float32, userData any) error {
	if cap(u.aux) < len(dist) {
		u.aux = make([]float32, len(dist))
	}
	auxDist := u.aux[:len(dist)]
	err := u.joined[0].Evaluate(pos, dist, userData)
	if err != nil {
		return err
	}
	for _, shape := range u.joined[1:] {
		err = shape.Evaluate(pos, auxDist, userData)
		if err != nil {
			return err
		}
		for i, d := range dist {
			dist[i] = math32.Min(d, auxDist[i])
		}
	}
	return nil
}
