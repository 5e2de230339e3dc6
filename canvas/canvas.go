// Package canvas records 2D drawing commands into a retained [Scene] that can be
// rasterized by any [Renderer] or written out as SVG.
package canvas

import (
	"image/color"
	"image/draw"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
)

// Kind is the drawing operation of a [Shape].
type Kind uint8

const (
	// Stroke draws the path outline with rounded caps and joins.
	Stroke Kind = iota
	// Fill fills the closed path using the nonzero winding rule.
	Fill
	// Dot fills a disk of diameter Width at every point.
	Dot
)

func (k Kind) String() string {
	switch k {
	case Stroke:
		return "stroke"
	case Fill:
		return "fill"
	case Dot:
		return "dot"
	}
	return "unknown"
}

// Shape is a single drawing command.
type Shape struct {
	Kind   Kind
	Points []ms2.Vec
	// Closed joins the last point to the first when stroking.
	Closed bool
	// Width is the stroke width or dot diameter.
	Width float32
	Color color.NRGBA
}

// Bounds returns the region the shape may paint, including stroke width.
func (s *Shape) Bounds() ms2.Box {
	bb := gsketch.Polyline(s.Points).Bounds()
	if s.Kind != Fill {
		hw := s.Width / 2
		bb.Min = ms2.Sub(bb.Min, ms2.Vec{X: hw, Y: hw})
		bb.Max = ms2.Add(bb.Max, ms2.Vec{X: hw, Y: hw})
	}
	return bb
}

// Scene is an ordered list of shapes over a background color, in world units where
// one unit maps to one output pixel at scale 1.
type Scene struct {
	Width, Height float32
	Background    color.NRGBA
	shapes        []Shape
}

// NewScene returns an empty scene of the given size.
func NewScene(width, height float32) *Scene {
	return &Scene{Width: width, Height: height, Background: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
}

// Clear removes all shapes and sets the background.
func (sc *Scene) Clear(bg color.NRGBA) {
	sc.shapes = sc.shapes[:0]
	sc.Background = bg
}

// Shapes returns the recorded shapes in drawing order.
func (sc *Scene) Shapes() []Shape { return sc.shapes }

// Len returns the number of recorded shapes.
func (sc *Scene) Len() int { return len(sc.shapes) }

// Add appends a shape. Shapes without points are discarded.
func (sc *Scene) Add(s Shape) {
	if len(s.Points) == 0 {
		return
	}
	sc.shapes = append(sc.shapes, s)
}

// Stroke draws the polyline with the given width.
func (sc *Scene) Stroke(pts []ms2.Vec, width float32, c color.NRGBA) {
	sc.Add(Shape{Kind: Stroke, Points: pts, Width: width, Color: c})
}

// StrokeClosed draws the closed outline of pts.
func (sc *Scene) StrokeClosed(pts []ms2.Vec, width float32, c color.NRGBA) {
	sc.Add(Shape{Kind: Stroke, Points: pts, Closed: true, Width: width, Color: c})
}

// Fill fills the polygon.
func (sc *Scene) Fill(poly []ms2.Vec, c color.NRGBA) {
	if len(poly) < 3 {
		return
	}
	sc.Add(Shape{Kind: Fill, Points: poly, Closed: true, Color: c})
}

// Circle fills a disk.
func (sc *Scene) Circle(center ms2.Vec, r float32, c color.NRGBA) {
	sc.Add(Shape{Kind: Dot, Points: []ms2.Vec{center}, Width: 2 * r, Color: c})
}

// Dots fills a disk of diameter size at each point.
func (sc *Scene) Dots(pts []ms2.Vec, size float32, c color.NRGBA) {
	sc.Add(Shape{Kind: Dot, Points: pts, Width: size, Color: c})
}

// Renderer rasterizes a scene onto an image. The scene is scaled to fill the image bounds.
type Renderer interface {
	Render(sc *Scene, dst draw.Image) error
}
