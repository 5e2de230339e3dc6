package canvas

import (
	"errors"
	"image"
	"image/draw"

	"github.com/fogleman/gg"
	"github.com/soypat/geometry/ms2"
)

// GG rasterizes scenes with the fogleman/gg vector library.
type GG struct{}

var _ Renderer = GG{}

// Render implements [Renderer].
func (GG) Render(sc *Scene, dst draw.Image) error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return errors.New("empty scene size")
	}
	b := dst.Bounds()
	if b.Empty() {
		return errors.New("empty destination image")
	}
	dc := gg.NewContext(b.Dx(), b.Dy())
	sx := float64(b.Dx()) / float64(sc.Width)
	sy := float64(b.Dy()) / float64(sc.Height)
	lw := (sx + sy) / 2
	dc.SetColor(sc.Background)
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()
	xy := func(p ms2.Vec) (float64, float64) { return float64(p.X) * sx, float64(p.Y) * sy }
	for i := range sc.shapes {
		s := &sc.shapes[i]
		dc.SetColor(s.Color)
		switch s.Kind {
		case Dot:
			r := float64(s.Width) / 2 * lw
			for _, p := range s.Points {
				x, y := xy(p)
				dc.DrawCircle(x, y, r)
				dc.Fill()
			}
		case Fill, Stroke:
			dc.NewSubPath()
			dc.MoveTo(xy(s.Points[0]))
			for _, p := range s.Points[1:] {
				dc.LineTo(xy(p))
			}
			if s.Closed {
				dc.ClosePath()
			}
			if s.Kind == Fill {
				dc.Fill()
				break
			}
			if len(s.Points) == 1 {
				// gg does not stroke zero-length paths.
				x, y := xy(s.Points[0])
				dc.ClearPath()
				dc.DrawCircle(x, y, float64(s.Width)/2*lw)
				dc.Fill()
				break
			}
			dc.SetLineWidth(float64(s.Width) * lw)
			dc.Stroke()
		default:
			return errors.New("unknown shape kind " + s.Kind.String())
		}
	}
	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Src)
	return nil
}
