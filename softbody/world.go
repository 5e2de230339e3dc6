// Package softbody simulates deformable bodies as rings of Verlet particles tied by
// springs. A [World] owns every particle and body of a run and is passed explicitly
// to all physics routines. Inter-body collisions use a quadtree rebuilt every step.
package softbody

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch/quadtree"
)

const epstol = 6e-7

// Particle is a point mass integrated with Verlet. Velocity is implicit in Pos-Prev.
type Particle struct {
	Pos, Prev ms2.Vec
	// Body is the ID of the owning body.
	Body int
	// Pinned particles are not moved by integration, springs or collisions.
	Pinned bool
}

// Velocity returns the particle's implicit per-step velocity.
func (p *Particle) Velocity() ms2.Vec { return ms2.Sub(p.Pos, p.Prev) }

// WorldConfig configures a [World].
type WorldConfig struct {
	// Gravity is the acceleration applied to every particle.
	Gravity ms2.Vec
	// Drag is the fraction of velocity lost every step, in [0, 1].
	Drag float32
	// Iterations is the number of spring relaxation passes per step. Zero selects 1.
	Iterations int
	// MinSeparation is the minimum distance kept between particles of different bodies.
	// Zero disables collisions.
	MinSeparation float32
	// Restitution is the fraction of normal velocity kept on collisions and wall contact, in [0, 1].
	Restitution float32
	// CollisionPasses is the number of collision sweeps per step. Zero selects 1.
	CollisionPasses int
	// QuadCapacity and QuadMaxDepth tune the collision quadtree. Zero selects defaults.
	QuadCapacity, QuadMaxDepth int
}

// World is the physics arena shared by all soft bodies of a sketch run.
type World struct {
	Gravity       ms2.Vec
	Drag          float32
	Bounds        ms2.Box
	Iterations    int
	MinSeparation float32
	Restitution   float32

	// CollisionPasses is the number of collision sweeps per step, each over a rebuilt quadtree.
	CollisionPasses int

	Particles []Particle
	Bodies    []*Body

	frozen    bool
	steps     int
	tree      *quadtree.Tree
	centers   []ms2.Vec
	neighbors []int
}

// NewWorld returns an empty world confined to bounds.
func NewWorld(bounds ms2.Box, cfg WorldConfig) (*World, error) {
	var errs []error
	sz := bounds.Size()
	if sz.X <= 0 || sz.Y <= 0 {
		errs = append(errs, fmt.Errorf("invalid world bounds %v", bounds))
	}
	if cfg.Drag < 0 || cfg.Drag > 1 {
		errs = append(errs, errors.New("drag must be in [0, 1]"))
	}
	if cfg.Restitution < 0 || cfg.Restitution > 1 {
		errs = append(errs, errors.New("restitution must be in [0, 1]"))
	}
	if cfg.Iterations < 0 || cfg.CollisionPasses < 0 || cfg.MinSeparation < 0 {
		errs = append(errs, errors.New("negative iterations, collision passes or separation"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	tree, err := quadtree.New(bounds, cfg.QuadCapacity, cfg.QuadMaxDepth)
	if err != nil {
		return nil, err
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = 1
	}
	if cfg.CollisionPasses == 0 {
		cfg.CollisionPasses = 1
	}
	return &World{
		Gravity:         cfg.Gravity,
		Drag:            cfg.Drag,
		Bounds:          bounds,
		Iterations:      cfg.Iterations,
		MinSeparation:   cfg.MinSeparation,
		Restitution:     cfg.Restitution,
		CollisionPasses: cfg.CollisionPasses,
		tree:            tree,
	}, nil
}

// Freeze stops all further stepping. Used to let outlines settle cosmetically.
func (w *World) Freeze() { w.frozen = true }

// Frozen reports whether [World.Freeze] was called.
func (w *World) Frozen() bool { return w.frozen }

// Steps returns the number of physics steps taken.
func (w *World) Steps() int { return w.steps }

// Step advances the simulation by dt. Particles are integrated and clamped to Bounds,
// springs are relaxed and the result clamped again before collisions are resolved.
// Collisions keep particles inside Bounds, so the final clamp only absorbs rounding.
// Frozen worlds are not modified.
func (w *World) Step(dt float32) {
	if w.frozen {
		return
	}
	w.steps++
	w.integrate(dt)
	w.constrain()
	for range w.Iterations {
		for _, b := range w.Bodies {
			for _, s := range b.Springs {
				s.relax(w)
			}
		}
	}
	w.constrain()
	for range w.CollisionPasses {
		w.collide()
	}
	w.constrain()
}

func (w *World) integrate(dt float32) {
	g := ms2.Scale(dt*dt, w.Gravity)
	damp := 1 - w.Drag
	for i := range w.Particles {
		p := &w.Particles[i]
		if p.Pinned {
			p.Prev = p.Pos
			continue
		}
		vel := ms2.Scale(damp, p.Velocity())
		p.Prev = p.Pos
		p.Pos = ms2.Add(ms2.Add(p.Pos, vel), g)
	}
}

// constrain clamps particles to the world bounds, reflecting the velocity
// component normal to the wall scaled by restitution.
func (w *World) constrain() {
	bb := w.Bounds
	e := w.Restitution
	for i := range w.Particles {
		p := &w.Particles[i]
		if p.Pos.X < bb.Min.X {
			vx := p.Pos.X - p.Prev.X
			p.Pos.X = bb.Min.X
			p.Prev.X = p.Pos.X + vx*e
		} else if p.Pos.X > bb.Max.X {
			vx := p.Pos.X - p.Prev.X
			p.Pos.X = bb.Max.X
			p.Prev.X = p.Pos.X + vx*e
		}
		if p.Pos.Y < bb.Min.Y {
			vy := p.Pos.Y - p.Prev.Y
			p.Pos.Y = bb.Min.Y
			p.Prev.Y = p.Pos.Y + vy*e
		} else if p.Pos.Y > bb.Max.Y {
			vy := p.Pos.Y - p.Prev.Y
			p.Pos.Y = bb.Max.Y
			p.Prev.Y = p.Pos.Y + vy*e
		}
	}
}

// KineticEnergy returns the sum of squared particle velocities, useful to detect settling.
func (w *World) KineticEnergy() (e float32) {
	for i := range w.Particles {
		e += ms2.Norm2(w.Particles[i].Velocity())
	}
	return e
}

func unit(v ms2.Vec) ms2.Vec {
	n := math32.Hypot(v.X, v.Y)
	if n < epstol {
		return ms2.Vec{}
	}
	return ms2.Scale(1/n, v)
}
