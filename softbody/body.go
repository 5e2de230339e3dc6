package softbody

import (
	"errors"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
)

// Spring constrains the distance between particles A and B towards Rest.
type Spring struct {
	A, B int
	// Rest is fixed at creation.
	Rest float32
	// Stiffness in (0, 1] is the fraction of the distance error corrected per relaxation.
	Stiffness float32
}

// NewSpring ties particles a and b at their current distance.
func NewSpring(w *World, a, b int, stiffness float32) Spring {
	rest := ms2.Norm(ms2.Sub(w.Particles[b].Pos, w.Particles[a].Pos))
	return Spring{A: a, B: b, Rest: rest, Stiffness: stiffness}
}

// Correction returns the displacement relaxation applies to particle A. B receives the negative.
// It is zero when the particles are at rest length.
func (s Spring) Correction(w *World) ms2.Vec {
	d := ms2.Sub(w.Particles[s.B].Pos, w.Particles[s.A].Pos)
	dist := ms2.Norm(d)
	if dist < epstol {
		return ms2.Vec{}
	}
	diff := (dist - s.Rest) / dist
	return ms2.Scale(0.5*s.Stiffness*diff, d)
}

func (s Spring) relax(w *World) {
	corr := s.Correction(w)
	a, b := &w.Particles[s.A], &w.Particles[s.B]
	switch {
	case a.Pinned && b.Pinned:
	case a.Pinned:
		b.Pos = ms2.Sub(b.Pos, ms2.Scale(2, corr))
	case b.Pinned:
		a.Pos = ms2.Add(a.Pos, ms2.Scale(2, corr))
	default:
		a.Pos = ms2.Add(a.Pos, corr)
		b.Pos = ms2.Sub(b.Pos, corr)
	}
}

// BodyConfig configures the particle rings and springs of a body.
type BodyConfig struct {
	// Segments is the number of shell particles, at least 3.
	Segments int
	// InnerRatio is the inner ring radius relative to the shell. Zero builds no inner
	// ring and spokes then tie opposite shell particles.
	InnerRatio float32
	// Stiffness of the shell ring, inner ring and spoke springs.
	ShellStiffness, InnerStiffness, SpokeStiffness float32
}

func (cfg BodyConfig) validate() error {
	var errs []error
	if cfg.Segments < 3 {
		errs = append(errs, errors.New("body needs at least 3 segments"))
	}
	if cfg.InnerRatio < 0 || cfg.InnerRatio >= 1 {
		errs = append(errs, errors.New("inner ratio must be in [0, 1)"))
	}
	for _, k := range [...]float32{cfg.ShellStiffness, cfg.InnerStiffness, cfg.SpokeStiffness} {
		if k < 0 || k > 1 {
			errs = append(errs, errors.New("stiffness must be in [0, 1]"))
			break
		}
	}
	return errors.Join(errs...)
}

// Body is a shell ring of particles with an optional inner ring and the springs joining them.
// Particles live in the world arena; Shell and Inner hold their indices.
type Body struct {
	ID      int
	Shell   []int
	Inner   []int
	Springs []Spring
}

// AddBody builds a body over circle c and adds its particles to the world.
func (w *World) AddBody(c gsketch.Circle, cfg BodyConfig) (*Body, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	} else if c.R <= 0 {
		return nil, errors.New("body radius must be positive")
	}
	b := &Body{ID: len(w.Bodies)}
	n := cfg.Segments
	b.Shell = w.addRing(b.ID, c.Points(n, 0))
	for i := range n {
		b.Springs = append(b.Springs, NewSpring(w, b.Shell[i], b.Shell[(i+1)%n], cfg.ShellStiffness))
	}
	if cfg.InnerRatio > 0 {
		inner := gsketch.Circle{Center: c.Center, R: c.R * cfg.InnerRatio}
		b.Inner = w.addRing(b.ID, inner.Points(n, 0))
		for i := range n {
			next := (i + 1) % n
			b.Springs = append(b.Springs,
				NewSpring(w, b.Inner[i], b.Inner[next], cfg.InnerStiffness),
				NewSpring(w, b.Shell[i], b.Inner[i], cfg.SpokeStiffness),
				NewSpring(w, b.Shell[i], b.Inner[next], cfg.SpokeStiffness),
			)
		}
	} else {
		for i := range n / 2 {
			b.Springs = append(b.Springs, NewSpring(w, b.Shell[i], b.Shell[i+n/2], cfg.SpokeStiffness))
		}
	}
	w.Bodies = append(w.Bodies, b)
	return b, nil
}

// AddBodies adds one body per circle, typically from a packed layout.
func (w *World) AddBodies(circles []gsketch.Circle, cfg BodyConfig) error {
	for _, c := range circles {
		if _, err := w.AddBody(c, cfg); err != nil {
			return err
		}
	}
	return nil
}

func (w *World) addRing(body int, pts []ms2.Vec) []int {
	idx := make([]int, len(pts))
	for i, p := range pts {
		idx[i] = len(w.Particles)
		w.Particles = append(w.Particles, Particle{Pos: p, Prev: p, Body: body})
	}
	return idx
}

// Center returns the mean position of the body's shell particles.
func (b *Body) Center(w *World) ms2.Vec {
	var sum ms2.Vec
	for _, i := range b.Shell {
		sum = ms2.Add(sum, w.Particles[i].Pos)
	}
	return ms2.Scale(1/float32(len(b.Shell)), sum)
}

// Outline returns the current shell positions as a polygon.
func (b *Body) Outline(w *World) gsketch.Polygon {
	poly := make(gsketch.Polygon, len(b.Shell))
	for i, pi := range b.Shell {
		poly[i] = w.Particles[pi].Pos
	}
	return poly
}

// SmoothOutline returns the shell outline after the given number of Chaikin iterations.
func (b *Body) SmoothOutline(w *World, iterations int) gsketch.Polygon {
	return gsketch.Chaikin(b.Outline(w), iterations, true)
}

// Push adds velocity v to every particle of the body.
func (b *Body) Push(w *World, v ms2.Vec) {
	for _, ring := range [2][]int{b.Shell, b.Inner} {
		for _, i := range ring {
			w.Particles[i].Prev = ms2.Sub(w.Particles[i].Prev, v)
		}
	}
}
