package canvas

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/soypat/geometry/ms2"
)

// WriteSVG writes the scene as an SVG document. Coordinates are written in scene units.
func WriteSVG(w io.Writer, sc *Scene) error {
	if sc.Width <= 0 || sc.Height <= 0 {
		return fmt.Errorf("invalid scene size %gx%g", sc.Width, sc.Height)
	}
	bw := bufio.NewWriter(w)
	canvas := svg.New(bw)
	width, height := int(sc.Width+0.5), int(sc.Height+0.5)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:"+svgColor(sc.Background)+fillOpacity(sc.Background))
	var d strings.Builder
	for i := range sc.shapes {
		s := &sc.shapes[i]
		switch s.Kind {
		case Dot:
			style := "stroke:none;fill:" + svgColor(s.Color) + fillOpacity(s.Color)
			canvas.Gstyle(style)
			r := ftoa(s.Width / 2)
			for _, p := range s.Points {
				fmt.Fprintf(bw, `<circle cx="%s" cy="%s" r="%s"/>`+"\n", ftoa(p.X), ftoa(p.Y), r)
			}
			canvas.Gend()
		case Stroke:
			d.Reset()
			pathData(&d, s.Points, s.Closed)
			if len(s.Points) == 1 {
				// Zero-length subpath, rendered as a dot by round caps.
				d.WriteString(" l0,0")
			}
			canvas.Path(d.String(), fmt.Sprintf("fill:none;stroke:%s;stroke-width:%s;stroke-linecap:round;stroke-linejoin:round%s",
				svgColor(s.Color), ftoa(s.Width), strokeOpacity(s.Color)))
		case Fill:
			d.Reset()
			pathData(&d, s.Points, true)
			canvas.Path(d.String(), "stroke:none;fill-rule:nonzero;fill:"+svgColor(s.Color)+fillOpacity(s.Color))
		default:
			return fmt.Errorf("unknown shape kind %d", s.Kind)
		}
	}
	canvas.End()
	return bw.Flush()
}

func pathData(d *strings.Builder, pts []ms2.Vec, closed bool) {
	for i, p := range pts {
		if i == 0 {
			d.WriteByte('M')
		} else {
			d.WriteString(" L")
		}
		d.WriteString(ftoa(p.X))
		d.WriteByte(',')
		d.WriteString(ftoa(p.Y))
	}
	if closed {
		d.WriteString(" Z")
	}
}

func svgColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func fillOpacity(c color.NRGBA) string {
	if c.A == 255 {
		return ""
	}
	return ";fill-opacity:" + strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64)
}

func strokeOpacity(c color.NRGBA) string {
	if c.A == 255 {
		return ""
	}
	return ";stroke-opacity:" + strconv.FormatFloat(float64(c.A)/255, 'f', 3, 64)
}

func ftoa(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', -1, 32)
}
