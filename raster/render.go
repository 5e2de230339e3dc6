package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch/canvas"
	"golang.org/x/image/draw"
)

// ImageRenderer rasterizes scenes by evaluating a distance field per shape and painting
// antialiased coverage. With Supersample > 1 the scene is rendered at a higher resolution
// and downscaled with a Catmull-Rom filter.
type ImageRenderer struct {
	supersample int
	pos         []ms2.Vec
	dist        []float32
	mask        *image.Alpha
}

var _ canvas.Renderer = (*ImageRenderer)(nil)

// NewImageRenderer returns a renderer that evaluates supersample² samples per output pixel.
func NewImageRenderer(supersample int) (*ImageRenderer, error) {
	if supersample < 1 || supersample > 8 {
		return nil, fmt.Errorf("supersample %d out of range [1, 8]", supersample)
	}
	return &ImageRenderer{supersample: supersample}, nil
}

// Render implements [canvas.Renderer].
func (ir *ImageRenderer) Render(sc *canvas.Scene, dst draw.Image) error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return errors.New("empty scene size")
	}
	b := dst.Bounds()
	if b.Empty() {
		return errors.New("empty destination image")
	}
	ss := ir.supersample
	work := image.NewRGBA(image.Rect(0, 0, b.Dx()*ss, b.Dy()*ss))
	draw.Draw(work, work.Bounds(), image.NewUniform(sc.Background), image.Point{}, draw.Src)
	if ir.mask == nil || ir.mask.Bounds() != work.Bounds() {
		ir.mask = image.NewAlpha(work.Bounds())
	}
	xf := transform{
		sx: float32(work.Bounds().Dx()) / sc.Width,
		sy: float32(work.Bounds().Dy()) / sc.Height,
	}
	shapes := sc.Shapes()
	for i := range shapes {
		s := &shapes[i]
		rect, err := ir.coverShape(s, xf)
		if err != nil {
			return fmt.Errorf("shape %d (%s): %w", i, s.Kind, err)
		}
		if rect.Empty() {
			continue
		}
		draw.DrawMask(work, rect, image.NewUniform(s.Color), image.Point{}, ir.mask, rect.Min, draw.Over)
		clearAlpha(ir.mask, rect)
	}
	if ss == 1 {
		draw.Draw(dst, b, work, image.Point{}, draw.Src)
	} else {
		draw.CatmullRom.Scale(dst, b, work, work.Bounds(), draw.Src, nil)
	}
	return nil
}

// coverShape accumulates the coverage of s into the mask and returns the touched pixel region.
func (ir *ImageRenderer) coverShape(s *canvas.Shape, xf transform) (image.Rectangle, error) {
	var touched image.Rectangle
	stamp := func(sdf SDF2, err error) error {
		if err != nil {
			return err
		}
		r, err := ir.stamp(sdf, xf)
		touched = touched.Union(r)
		return err
	}
	var err error
	switch s.Kind {
	case canvas.Fill:
		err = stamp(NewPolygon(s.Points))
	case canvas.Dot:
		for _, p := range s.Points {
			if err = stamp(NewCircle(p, s.Width/2)); err != nil {
				break
			}
		}
	case canvas.Stroke:
		// Union coverage is the max of segment coverages, so segments are stamped
		// one at a time over their own small bounding boxes.
		pts := s.Points
		if len(pts) == 1 {
			err = stamp(NewCircle(pts[0], s.Width/2))
			break
		}
		for i := 1; i < len(pts) && err == nil; i++ {
			err = stamp(NewLine(pts[i-1], pts[i], s.Width))
		}
		if s.Closed && len(pts) > 2 && err == nil {
			err = stamp(NewLine(pts[len(pts)-1], pts[0], s.Width))
		}
	default:
		err = errors.New("unknown shape kind")
	}
	return touched, err
}

type transform struct {
	sx, sy float32
}

// scale converts world distances to pixels.
func (xf transform) scale() float32 { return (xf.sx + xf.sy) / 2 }

func (xf transform) world(px, py int) ms2.Vec {
	return ms2.Vec{X: (float32(px) + 0.5) / xf.sx, Y: (float32(py) + 0.5) / xf.sy}
}

func (xf transform) pixels(bb ms2.Box) image.Rectangle {
	return image.Rect(
		int(math32.Floor(bb.Min.X*xf.sx))-1,
		int(math32.Floor(bb.Min.Y*xf.sy))-1,
		int(math32.Ceil(bb.Max.X*xf.sx))+1,
		int(math32.Ceil(bb.Max.Y*xf.sy))+1,
	)
}

// stamp evaluates sdf over its pixel bounds row by row and raises the mask to the
// antialiased coverage where it is larger.
func (ir *ImageRenderer) stamp(sdf SDF2, xf transform) (image.Rectangle, error) {
	rect := xf.pixels(sdf.Bounds()).Intersect(ir.mask.Bounds())
	if rect.Empty() {
		return rect, nil
	}
	n := rect.Dx()
	if len(ir.pos) < n {
		ir.pos = make([]ms2.Vec, n)
		ir.dist = make([]float32, n)
	}
	pos, dist := ir.pos[:n], ir.dist[:n]
	k := xf.scale()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for i := range pos {
			pos[i] = xf.world(rect.Min.X+i, y)
		}
		if err := sdf.Evaluate(pos, dist, nil); err != nil {
			return rect, err
		}
		row := ir.mask.Pix[ir.mask.PixOffset(rect.Min.X, y):]
		for i, d := range dist {
			cov := coverage(d * k)
			if cov > row[i] {
				row[i] = cov
			}
		}
	}
	return rect, nil
}

// coverage maps a distance in pixels to an 8-bit alpha with a one pixel wide ramp.
func coverage(d float32) uint8 {
	c := 0.5 - d
	switch {
	case c <= 0 || math32.IsNaN(c):
		return 0
	case c >= 1:
		return 255
	}
	return uint8(c*255 + 0.5)
}

func clearAlpha(a *image.Alpha, r image.Rectangle) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		row := a.Pix[a.PixOffset(r.Min.X, y):a.PixOffset(r.Max.X, y)]
		clear(row)
	}
}

// RenderSDF maps the bounds of sdf onto img and colors every pixel by its distance with conv.
// A nil conv paints the interior black and the exterior white.
func (ir *ImageRenderer) RenderSDF(sdf SDF2, img draw.Image, conv func(float32) color.Color) error {
	if conv == nil {
		conv = func(f float32) color.Color {
			switch {
			case math32.IsNaN(f) || math32.IsInf(f, 0):
				return color.RGBA{R: 255, A: 255}
			case f > 0:
				return color.White
			default:
				return color.Black
			}
		}
	}
	imgBB := img.Bounds()
	dxi, dyi := imgBB.Dx(), imgBB.Dy()
	if dxi <= 0 || dyi <= 0 {
		return errors.New("empty image")
	}
	if len(ir.pos) < dxi {
		ir.pos = make([]ms2.Vec, dxi)
		ir.dist = make([]float32, dxi)
	}
	bb := sdf.Bounds()
	sz := bb.Size()
	dx := sz.X / float32(dxi)
	dy := sz.Y / float32(dyi)
	bb.Min = ms2.Add(bb.Min, ms2.Vec{X: dx / 2, Y: dy / 2}) // Sample pixel centers.
	pos, dist := ir.pos[:dxi], ir.dist[:dxi]
	for j := 0; j < dyi; j++ {
		y := float32(j)*dy + bb.Min.Y
		for i := range pos {
			pos[i] = ms2.Vec{X: float32(i)*dx + bb.Min.X, Y: y}
		}
		if err := sdf.Evaluate(pos, dist, nil); err != nil {
			return err
		}
		for i, d := range dist {
			img.Set(i+imgBB.Min.X, j+imgBB.Min.Y, conv(d))
		}
	}
	return nil
}
