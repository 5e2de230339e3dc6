package sketches

import (
	"errors"
	"math/rand/v2"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
	"github.com/soypat/gsketch/canvas"
	"github.com/soypat/gsketch/palette"
	"github.com/soypat/gsketch/sketch"
	"github.com/soypat/gsketch/softbody"
)

// SoftBodyParams configures [SoftBodies].
type SoftBodyParams struct {
	Pack gsketch.PackConfig
	Body softbody.BodyConfig
	// World configures gravity and collisions. Gravity is in world units per second squared.
	World softbody.WorldConfig
	// SubSteps is the number of physics steps per frame.
	SubSteps int
	// SettleSteps is the number of physics steps simulated for a still frame.
	SettleSteps int
	// FreezeAt is the playhead after which physics stops and outlines are smoothed.
	FreezeAt float32
	// MaxSmoothing is the number of Chaikin iterations reached on the last frame.
	MaxSmoothing int
	// Kick is the magnitude of the random initial velocity of every body in world units per step.
	Kick float32
	// Palette preset name. Empty picks a random preset.
	Palette string
}

// DefaultSoftBodyParams returns a pile of medium sized bodies falling under gravity.
func DefaultSoftBodyParams() SoftBodyParams {
	return SoftBodyParams{
		Pack: gsketch.PackConfig{
			Count:     40,
			MinRadius: 20,
			MaxRadius: 90,
			Padding:   6,
		},
		Body: softbody.BodyConfig{
			Segments:       24,
			InnerRatio:     0.5,
			ShellStiffness: 0.9,
			InnerStiffness: 0.6,
			SpokeStiffness: 0.3,
		},
		World: softbody.WorldConfig{
			Gravity:         ms2.Vec{Y: 600},
			Drag:            0.01,
			Iterations:      6,
			MinSeparation:   6,
			Restitution:     0.3,
			CollisionPasses: 2,
		},
		SubSteps:     4,
		SettleSteps:  600,
		FreezeAt:     0.75,
		MaxSmoothing: 3,
		Kick:         2,
	}
}

// SoftBodies packs circles, turns them into spring bodies and lets them fall and squash
// against each other. After FreezeAt the physics stops and the shells are progressively smoothed.
func SoftBodies(p SoftBodyParams) sketch.Sketch {
	s := sketch.DefaultSettings("softbodies")
	s.Duration = 8
	return sketch.Sketch{
		Settings: s,
		Setup: func(s sketch.Settings, rng *rand.Rand) (sketch.Render, error) {
			if p.FreezeAt < 0 || p.FreezeAt > 1 || p.SubSteps < 1 || p.MaxSmoothing < 0 {
				return nil, errors.New("invalid soft body timing")
			}
			pal := palette.RandomPreset(rng)
			if p.Palette != "" {
				var err error
				if pal, err = palette.Named(p.Palette); err != nil {
					return nil, err
				}
			}
			if len(pal) < 2 {
				return nil, errors.New("palette needs a background and a fill color")
			}
			bounds := ms2.NewBox(0, 0, float32(s.Width), float32(s.Height))
			w, err := softbody.NewWorld(bounds, p.World)
			if err != nil {
				return nil, err
			}
			circles, err := gsketch.PackCircles(rng, bounds, p.Pack)
			if err != nil {
				return nil, err
			}
			if err = w.AddBodies(circles, p.Body); err != nil {
				return nil, err
			}
			for _, b := range w.Bodies {
				b.Push(w, ms2.Vec{
					X: (rng.Float32()*2 - 1) * p.Kick,
					Y: (rng.Float32()*2 - 1) * p.Kick,
				})
			}
			bg := pal[0]
			ink := palette.ToNRGBA(pal.Contrasting(bg))
			fills := make([]colorful.Color, len(w.Bodies))
			for i := range fills {
				fills[i] = pal[1+i%(len(pal)-1)]
			}
			return func(props sketch.Props, sc *canvas.Scene) {
				smoothing := 0
				switch {
				case props.Still():
					dt := 1 / float32(s.FPS*p.SubSteps)
					for range p.SettleSteps {
						w.Step(dt)
					}
					w.Freeze()
					smoothing = p.MaxSmoothing
				case props.Playhead < p.FreezeAt:
					dt := props.DeltaTime / float32(p.SubSteps)
					for range p.SubSteps {
						w.Step(dt)
					}
				default:
					w.Freeze()
					if p.FreezeAt < 1 {
						smoothing = int(float32(p.MaxSmoothing)*(props.Playhead-p.FreezeAt)/(1-p.FreezeAt) + 0.5)
					}
				}
				sc.Background = palette.ToNRGBA(bg)
				lw := float32(min(s.Width, s.Height)) / 400
				for i, b := range w.Bodies {
					outline := b.SmoothOutline(w, smoothing)
					sc.Fill(outline, palette.ToNRGBA(fills[i]))
					sc.StrokeClosed(outline, lw, ink)
				}
			}, nil
		},
	}
}
