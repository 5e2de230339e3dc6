package sketches

import (
	"errors"
	"image/color"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
	"github.com/soypat/gsketch/canvas"
	"github.com/soypat/gsketch/nalee"
	"github.com/soypat/gsketch/noise"
	"github.com/soypat/gsketch/palette"
	"github.com/soypat/gsketch/sketch"
)

// NaleeParams configures the flow-field path sketches.
type NaleeParams struct {
	// CellSize is the grid spacing in world units.
	CellSize float32
	// Padding is the fraction of the smaller side left empty at the edges.
	Padding float32
	// Walkers per domain (re)build.
	Walkers      int
	Connectivity int
	Straightness float32
	// Noise names the flow field kind accepted by [noise.Parse]. Empty selects simplex.
	Noise string
	// NoiseScale is the spatial frequency of the flow field per world unit. Zero disables flow.
	NoiseScale float64
	FlowBias   float32
	// LineWidth of paths relative to CellSize.
	LineWidth float32
	// Palette preset name. Empty picks a random preset.
	Palette string
}

// DefaultNaleeParams returns parameters that fill a canvas with long, mostly straight paths.
func DefaultNaleeParams() NaleeParams {
	return NaleeParams{
		CellSize:     16,
		Padding:      0.08,
		Walkers:      24,
		Connectivity: 4,
		Straightness: 3,
		Noise:        "simplex",
		NoiseScale:   0.004,
		FlowBias:     2,
		LineWidth:    0.55,
	}
}

func (p NaleeParams) grower(s sketch.Settings, rng *rand.Rand) (*nalee.Grower, error) {
	if p.CellSize <= 0 {
		return nil, errors.New("cell size must be positive")
	}
	cfg := nalee.Config{
		Cols:         max(1, int(float32(s.Width)/p.CellSize)),
		Rows:         max(1, int(float32(s.Height)/p.CellSize)),
		Width:        float32(s.Width),
		Height:       float32(s.Height),
		Padding:      p.Padding,
		Connectivity: p.Connectivity,
		Walkers:      p.Walkers,
		Exhaustive:   true,
		Straightness: p.Straightness,
		FlowBias:     p.FlowBias,
	}
	if p.NoiseScale > 0 {
		kind := p.Noise
		if kind == "" {
			kind = "simplex"
		}
		flow, err := noise.Parse(kind, rng.Int64(), p.NoiseScale)
		if err != nil {
			return nil, err
		}
		cfg.Flow = flow
	}
	return nalee.New(cfg, rng.Uint64())
}

func (p NaleeParams) palette(rng *rand.Rand) (palette.Palette, error) {
	if p.Palette == "" {
		return palette.RandomPreset(rng), nil
	}
	return palette.Named(p.Palette)
}

// cellSize returns the world size of a grid cell.
func cellSize(g *nalee.Grower) float32 {
	cells := g.Cells()
	if len(cells) == 0 {
		return 1
	}
	sz := cells[0].Rect.Size()
	return min(sz.X, sz.Y)
}

// stepsFor advances g so that the walk finishes on the last frame.
func stepsFor(g *nalee.Grower, p sketch.Props) {
	if p.Still() || p.Playhead >= 1 {
		g.Run()
		return
	}
	// The longest possible walk claims every cell; spread that over the frames.
	n := max(1, g.DomainSize()/max(1, p.TotalFrames-1))
	for i := 0; i < n && g.Step(); i++ {
	}
}

func drawPaths(sc *canvas.Scene, g *nalee.Grower, pal palette.Palette, width float32) {
	for _, w := range g.Walkers() {
		sc.Stroke(g.Path(w), width, walkerColor(pal, w.ID))
	}
}

// walkerColor skips the first palette color, which is used as background.
func walkerColor(pal palette.Palette, id int) color.NRGBA {
	if len(pal) < 2 {
		return pal.NRGBA(0)
	}
	return pal.NRGBA(1 + id%(len(pal)-1))
}

// Nalee grows paths over the whole canvas.
func Nalee(p NaleeParams) sketch.Sketch {
	s := sketch.DefaultSettings("nalee")
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			pal, err := p.palette(rng)
			if err != nil {
				return nil, err
			}
			g, err := p.grower(s, rng)
			if err != nil {
				return nil, err
			}
			width := p.LineWidth * cellSize(g)
			return func(props sketch.Props, sc *canvas.Scene) {
				stepsFor(g, props)
				sc.Background = pal.NRGBA(0)
				drawPaths(sc, g, pal, width)
			}, nil
		},
	}
}

// NaleeGrowParams configures [NaleeGrow].
type NaleeGrowParams struct {
	NaleeParams
	// Sides of the growing polygon.
	Sides int
	// StartRadius and EndRadius are relative to half the smaller canvas side.
	StartRadius, EndRadius float32
	// Frequency and Damping of the radius spring.
	Frequency, Damping float64
}

// DefaultNaleeGrowParams returns a hexagon growing from the center to the edges.
func DefaultNaleeGrowParams() NaleeGrowParams {
	p := DefaultNaleeParams()
	p.Walkers = 6
	return NaleeGrowParams{
		NaleeParams: p,
		Sides:       6,
		StartRadius: 0.2,
		EndRadius:   1,
		Frequency:   2,
		Damping:     0.6,
	}
}

// NaleeGrow clips the grid to a regular polygon and grows it ring by ring. Each ring is a
// new domain generation so paths of inner rings are never extended into outer ones.
func NaleeGrow(p NaleeGrowParams) sketch.Sketch {
	s := sketch.DefaultSettings("nalee-grow")
	s.Duration = 6
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			if p.Sides < 3 || p.StartRadius <= 0 || p.EndRadius < p.StartRadius {
				return nil, errors.New("invalid grow polygon")
			}
			pal, err := p.palette(rng)
			if err != nil {
				return nil, err
			}
			g, err := p.grower(s, rng)
			if err != nil {
				return nil, err
			}
			center := ms2.Vec{X: float32(s.Width) / 2, Y: float32(s.Height) / 2}
			unit := float32(min(s.Width, s.Height)) / 2
			rotation := rng.Float32() * 2 * math32.Pi
			shape := func(r float32) gsketch.Polygon {
				return gsketch.RegularPolygon(center, r*unit, p.Sides, rotation)
			}
			radius := p.StartRadius
			g.Clip(shape(radius))
			cs := cellSize(g)
			ease := sketch.NewEase(s.FPS, p.Frequency, p.Damping, float64(p.StartRadius))
			ease.SetTarget(float64(p.EndRadius))
			width := p.LineWidth * cs
			return func(props sketch.Props, sc *canvas.Scene) {
				var next float32
				if props.Still() {
					next = p.EndRadius
				} else {
					next = min(p.EndRadius, float32(ease.Update()))
				}
				// Grow in rings at least a cell wide so every generation has room to walk.
				if (next-radius)*unit >= cs || (props.Playhead >= 1 && next > radius) {
					g.Grow(shape(next))
					radius = next
				}
				stepsFor(g, props)
				sc.Background = pal.NRGBA(0)
				drawPaths(sc, g, pal, width)
			}, nil
		},
	}
}

// NaleeRibbon clips the grid to packed polygons and draws every path as a tapered ribbon.
func NaleeRibbon(p NaleeParams) sketch.Sketch {
	s := sketch.DefaultSettings("nalee-ribbon")
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			pal, err := p.palette(rng)
			if err != nil {
				return nil, err
			}
			g, err := p.grower(s, rng)
			if err != nil {
				return nil, err
			}
			short := float32(min(s.Width, s.Height))
			bounds := ms2.NewBox(0, 0, float32(s.Width), float32(s.Height))
			circles, err := gsketch.PackCircles(rng, bounds, gsketch.PackConfig{
				Count:     12,
				MinRadius: short * 0.08,
				MaxRadius: short * 0.3,
				Padding:   short * 0.02,
			})
			if err != nil {
				return nil, err
			}
			clips := make([]gsketch.Polygon, len(circles))
			for i, c := range circles {
				clips[i] = gsketch.RegularPolygon(c.Center, c.R, 3+rng.IntN(5), rng.Float32()*2*math32.Pi)
			}
			g.Clip(clips...)
			cs := cellSize(g)
			outline := palette.WithAlpha(pal.Contrasting(pal[0]), 0.25)
			return func(props sketch.Props, sc *canvas.Scene) {
				stepsFor(g, props)
				sc.Background = pal.NRGBA(0)
				for _, poly := range clips {
					sc.StrokeClosed(poly, cs*0.1, outline)
				}
				for _, w := range g.Walkers() {
					path := g.Path(w)
					c := walkerColor(pal, w.ID)
					if len(path) < 2 {
						sc.Circle(path[0], cs*p.LineWidth/2, c)
						continue
					}
					smooth := gsketch.Polyline(gsketch.Chaikin(path, 2, false))
					ribbon := smooth.RibbonFunc(func(t float32) float32 {
						return cs * p.LineWidth * (0.35 + 0.65*math32.Sin(math32.Pi*t))
					})
					sc.Fill(ribbon, c)
				}
			}, nil
		},
	}
}
