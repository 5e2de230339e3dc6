package gsketch

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms1"
	"github.com/soypat/geometry/ms2"
)

// miterLimit caps the miter length at sharp joints as a multiple of the half width.
const miterLimit = 4

// Polygon is a closed shape given by its vertices. The last vertex connects to the first.
type Polygon []ms2.Vec

// Polyline is an open sequence of connected points.
type Polyline []ms2.Vec

// Contains reports whether p lies inside the polygon using the winding number rule.
// Polygons with fewer than 3 vertices have no area and contain nothing.
func (poly Polygon) Contains(p ms2.Vec) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	jv := len(poly) - 1
	for iv, v1 := range poly {
		v2 := poly[jv]
		e := ms2.Sub(v2, v1)
		w := ms2.Sub(p, v1)
		// winding number from http://geomalgorithms.com/a03-_inclusion.html
		b1 := p.Y >= v1.Y
		b2 := p.Y < v2.Y
		b3 := e.X*w.Y > e.Y*w.X
		if (b1 && b2 && b3) || (!b1 && !b2 && !b3) {
			inside = !inside
		}
		jv = iv
	}
	return inside
}

// Distance returns the signed distance from p to the polygon boundary. Negative values are inside.
func (poly Polygon) Distance(p ms2.Vec) float32 {
	if len(poly) == 0 {
		return largenum
	}
	d := ms2.Norm2(ms2.Sub(p, poly[0]))
	jv := len(poly) - 1
	for iv, v1 := range poly {
		v2 := poly[jv]
		e := ms2.Sub(v2, v1)
		w := ms2.Sub(p, v1)
		el := ms2.Norm2(e)
		var h float32
		if el > 0 {
			h = ms1.Clamp(ms2.Dot(w, e)/el, 0, 1)
		}
		b := ms2.Sub(w, ms2.Scale(h, e))
		d = math32.Min(d, ms2.Norm2(b))
		jv = iv
	}
	d = math32.Sqrt(d)
	if poly.Contains(p) {
		return -d
	}
	return d
}

// Bounds returns the polygon's bounding box. An empty polygon returns an inverted box.
func (poly Polygon) Bounds() ms2.Box {
	return pointsBounds(poly)
}

// Area returns the signed area of the polygon. Counter-clockwise winding is positive.
func (poly Polygon) Area() float32 {
	var a float32
	jv := len(poly) - 1
	for iv, v := range poly {
		a += poly[jv].X*v.Y - v.X*poly[jv].Y
		jv = iv
	}
	return a / 2
}

// Centroid returns the mean of the polygon's vertices.
func (poly Polygon) Centroid() ms2.Vec {
	return Polyline(poly).Mean()
}

// Bounds returns the polyline's bounding box.
func (pl Polyline) Bounds() ms2.Box {
	return pointsBounds(pl)
}

// Mean returns the average position of the points.
func (pl Polyline) Mean() ms2.Vec {
	if len(pl) == 0 {
		return ms2.Vec{}
	}
	var sum ms2.Vec
	for _, v := range pl {
		sum = ms2.Add(sum, v)
	}
	return ms2.Scale(1/float32(len(pl)), sum)
}

// Length returns the summed length of all segments.
func (pl Polyline) Length() (length float32) {
	for i := 1; i < len(pl); i++ {
		length += ms2.Norm(ms2.Sub(pl[i], pl[i-1]))
	}
	return length
}

// Normals returns a unit normal per vertex averaged from the adjacent segments, along with
// the miter scale that keeps an offset edge at constant distance from the segments.
func (pl Polyline) Normals() (normals []ms2.Vec, miter []float32) {
	n := len(pl)
	normals = make([]ms2.Vec, n)
	miter = make([]float32, n)
	if n < 2 {
		for i := range miter {
			normals[i] = ms2.Vec{Y: 1}
			miter[i] = 1
		}
		return normals, miter
	}
	for i := range pl {
		var prev, next ms2.Vec
		if i > 0 {
			prev = perp(unit(ms2.Sub(pl[i], pl[i-1])))
		}
		if i < n-1 {
			next = perp(unit(ms2.Sub(pl[i+1], pl[i])))
		}
		switch {
		case i == 0:
			normals[i], miter[i] = next, 1
		case i == n-1:
			normals[i], miter[i] = prev, 1
		default:
			avg := unit(ms2.Add(prev, next))
			if avg == (ms2.Vec{}) {
				// Path doubles back on itself.
				normals[i], miter[i] = prev, 1
				continue
			}
			cos := ms2.Dot(avg, next)
			m := float32(miterLimit)
			if cos > 1/float32(miterLimit) {
				m = 1 / cos
			}
			normals[i], miter[i] = avg, m
		}
	}
	return normals, miter
}

// Ribbon returns the closed outline of the polyline thickened to the given width.
func (pl Polyline) Ribbon(width float32) Polygon {
	return pl.RibbonFunc(func(float32) float32 { return width })
}

// RibbonFunc is like Ribbon but the width is a function of the normalized position t along the polyline.
func (pl Polyline) RibbonFunc(width func(t float32) float32) Polygon {
	n := len(pl)
	if n < 2 {
		return nil
	}
	normals, miter := pl.Normals()
	outline := make(Polygon, 2*n)
	for i, p := range pl {
		t := float32(i) / float32(n-1)
		hw := width(t) / 2 * miter[i]
		off := ms2.Scale(hw, normals[i])
		outline[i] = ms2.Add(p, off)
		outline[2*n-1-i] = ms2.Sub(p, off)
	}
	return outline
}

// RegularPolygon returns an n sided polygon inscribed in the circle at center with the given radius.
func RegularPolygon(center ms2.Vec, radius float32, n int, rotation float32) Polygon {
	if n < 3 {
		return nil
	}
	return Polygon(Circle{Center: center, R: radius}.Points(n, rotation))
}

// Rect returns the box's corners as a counter-clockwise polygon.
func Rect(bb ms2.Box) Polygon {
	return Polygon{
		bb.Min,
		{X: bb.Max.X, Y: bb.Min.Y},
		bb.Max,
		{X: bb.Min.X, Y: bb.Max.Y},
	}
}

func pointsBounds(pts []ms2.Vec) ms2.Box {
	bb := ms2.Box{
		Min: ms2.Vec{X: largenum, Y: largenum},
		Max: ms2.Vec{X: -largenum, Y: -largenum},
	}
	for _, v := range pts {
		bb.Min = ms2.MinElem(bb.Min, v)
		bb.Max = ms2.MaxElem(bb.Max, v)
	}
	return bb
}
