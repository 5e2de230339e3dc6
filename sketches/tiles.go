package sketches

import (
	"errors"
	"math/rand/v2"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch/canvas"
	"github.com/soypat/gsketch/palette"
	"github.com/soypat/gsketch/sketch"
	"github.com/soypat/gsketch/wfc"
)

// TileParams configures [Tiles].
type TileParams struct {
	// TileSize in world units.
	TileSize float32
	Tiles    []wfc.Tile
	// MaxAttempts before giving up on a contradiction free collapse.
	MaxAttempts int
	// Width of pipes relative to TileSize.
	Width float32
	// Palette preset name. Empty picks a random preset.
	Palette string
}

// DefaultTileParams returns the T-junction tile set with blanks.
func DefaultTileParams() TileParams {
	return TileParams{
		TileSize:    64,
		Tiles:       []wfc.Tile{wfc.Blank, wfc.Up, wfc.Right, wfc.Down, wfc.Left},
		MaxAttempts: 200,
		Width:       0.3,
	}
}

// Tiles collapses a wave function over pipe tiles and reveals them row by row.
// When every attempt ends in a contradiction the last attempt is drawn with its
// undecided cells left blank.
func Tiles(p TileParams) sketch.Sketch {
	s := sketch.DefaultSettings("tiles")
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			if p.TileSize <= 0 || p.Width <= 0 {
				return nil, errors.New("invalid tile geometry")
			}
			pal := palette.RandomPreset(rng)
			if p.Palette != "" {
				var err error
				if pal, err = palette.Named(p.Palette); err != nil {
					return nil, err
				}
			}
			cols := max(1, int(float32(s.Width)/p.TileSize))
			rows := max(1, int(float32(s.Height)/p.TileSize))
			g, err := wfc.New(cols, rows, p.Tiles, rng.Uint64())
			if err != nil {
				return nil, err
			}
			g.MaxAttempts = p.MaxAttempts
			collapseErr := g.Collapse()
			if collapseErr != nil && !errors.Is(collapseErr, wfc.ErrContradiction) {
				return nil, collapseErr
			}
			// Tiles are centered on the canvas.
			origin := ms2.Vec{
				X: (float32(s.Width) - float32(cols)*p.TileSize) / 2,
				Y: (float32(s.Height) - float32(rows)*p.TileSize) / 2,
			}
			half := p.TileSize / 2
			lw := p.Width * p.TileSize
			ink := palette.ToNRGBA(pal.Contrasting(pal[0]))
			return func(props sketch.Props, sc *canvas.Scene) {
				sc.Background = pal.NRGBA(0)
				reveal := int(props.Playhead*float32(cols*rows) + 0.5)
				for i := range min(reveal, cols*rows) {
					x, y := i%cols, i/cols
					t, ok := g.Tile(x, y)
					if !ok || t == wfc.Blank {
						continue
					}
					center := ms2.Vec{
						X: origin.X + (float32(x)+0.5)*p.TileSize,
						Y: origin.Y + (float32(y)+0.5)*p.TileSize,
					}
					for d := range wfc.Dir(4) {
						if !t.Open(d) {
							continue
						}
						dx, dy := d.Offset()
						edge := ms2.Add(center, ms2.Vec{X: float32(dx) * half, Y: float32(dy) * half})
						sc.Stroke([]ms2.Vec{center, edge}, lw, ink)
					}
					sc.Circle(center, lw*0.9, pal.NRGBA(1+int(t)%(len(pal)-1)))
				}
			}, nil
		},
	}
}

// SwatchParams configures [Swatches].
type SwatchParams struct {
	// Steps per gradient band.
	Steps int
	// Spaces names the color spaces to interpolate in, one band each. See [palette.ParseSpace].
	Spaces []string
	// Palette preset name. Empty generates a random harmonious palette.
	Palette string
}

// DefaultSwatchParams compares every interpolation space.
func DefaultSwatchParams() SwatchParams {
	return SwatchParams{
		Steps:  12,
		Spaces: []string{"rgb", "hsv", "lab", "luv", "hcl"},
	}
}

// Swatches draws gradient bands between two palette colors, one band per color space,
// sliding the endpoints through the palette as the playhead advances.
func Swatches(p SwatchParams) sketch.Sketch {
	s := sketch.DefaultSettings("swatches")
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			if p.Steps < 2 || len(p.Spaces) == 0 {
				return nil, errors.New("swatches need at least 2 steps and one color space")
			}
			spaces := make([]palette.Space, len(p.Spaces))
			for i, name := range p.Spaces {
				var err error
				if spaces[i], err = palette.ParseSpace(name); err != nil {
					return nil, err
				}
			}
			pal := palette.Random(rng, 6)
			if p.Palette != "" {
				var err error
				if pal, err = palette.Named(p.Palette); err != nil {
					return nil, err
				}
			}
			w, h := float32(s.Width), float32(s.Height)
			margin := min(w, h) * 0.05
			bandH := (h - 2*margin) / float32(len(spaces))
			cellW := (w - 2*margin) / float32(p.Steps)
			return func(props sketch.Props, sc *canvas.Scene) {
				sc.Background = palette.ToNRGBA(pal.Contrasting(pal[0]))
				a := pal.At(float64(props.Playhead)*0.5, palette.RGB)
				b := pal.At(0.5+float64(props.Playhead)*0.5, palette.RGB)
				for j, space := range spaces {
					y0 := margin + float32(j)*bandH
					for i, c := range palette.Gradient(a, b, p.Steps, space) {
						x0 := margin + float32(i)*cellW
						sc.Fill([]ms2.Vec{
							{X: x0, Y: y0}, {X: x0 + cellW, Y: y0},
							{X: x0 + cellW, Y: y0 + bandH*0.9}, {X: x0, Y: y0 + bandH*0.9},
						}, palette.ToNRGBA(c))
					}
				}
			}, nil
		},
	}
}
