package softbody

import (
	"math/rand/v2"
	"testing"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
)

var defaultBody = BodyConfig{
	Segments:       16,
	InnerRatio:     0.6,
	ShellStiffness: 0.9,
	InnerStiffness: 0.9,
	SpokeStiffness: 0.5,
}

func newTestWorld(t *testing.T, cfg WorldConfig) *World {
	t.Helper()
	w, err := NewWorld(ms2.NewBox(0, 0, 400, 300), cfg)
	if err != nil {
		t.Fatal(err)
	}
	return w
}

func TestParticlesStayInBounds(t *testing.T) {
	w := newTestWorld(t, WorldConfig{
		Gravity:       ms2.Vec{Y: 900},
		Drag:          0.01,
		Iterations:    4,
		MinSeparation: 6,
		Restitution:   0.4,
	})
	rng := rand.New(rand.NewPCG(3, 4))
	circles, err := gsketch.PackCircles(rng, w.Bounds, gsketch.PackConfig{Count: 12, MinRadius: 15, MaxRadius: 40, Padding: 4})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddBodies(circles, defaultBody); err != nil {
		t.Fatal(err)
	}
	for _, b := range w.Bodies {
		// Kick bodies around so walls are hit from every side.
		b.Push(w, ms2.Vec{X: rng.Float32()*20 - 10, Y: rng.Float32()*20 - 10})
	}
	for step := 0; step < 300; step++ {
		w.Step(1. / 60)
		for i, p := range w.Particles {
			if !gsketch.BoxContains(w.Bounds, p.Pos) {
				t.Fatalf("step %d: particle %d at %v outside bounds", step, i, p.Pos)
			}
		}
	}
	if w.Steps() != 300 {
		t.Errorf("steps %d, want 300", w.Steps())
	}
}

func TestSpringAtRestLengthNoCorrection(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	w.Particles = append(w.Particles,
		Particle{Pos: ms2.Vec{X: 10, Y: 10}, Prev: ms2.Vec{X: 10, Y: 10}},
		Particle{Pos: ms2.Vec{X: 13, Y: 14}, Prev: ms2.Vec{X: 13, Y: 14}},
	)
	s := NewSpring(w, 0, 1, 1)
	if s.Rest != 5 {
		t.Fatalf("rest length %v, want 5", s.Rest)
	}
	if c := s.Correction(w); c != (ms2.Vec{}) {
		t.Fatalf("correction at rest length %v, want zero", c)
	}
	w.Particles[1].Pos = ms2.Vec{X: 16, Y: 18} // Stretch to 10.
	c := s.Correction(w)
	if c.X <= 0 || c.Y <= 0 {
		t.Fatalf("stretched spring should pull A towards B, got %v", c)
	}
}

func TestBodyAtRestStaysStationary(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Iterations: 8})
	b, err := w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 200, Y: 150}, R: 50}, defaultBody)
	if err != nil {
		t.Fatal(err)
	}
	start := append([]Particle(nil), w.Particles...)
	for range 50 {
		w.Step(1. / 60)
	}
	for i, p := range w.Particles {
		if p.Pos != start[i].Pos {
			t.Fatalf("particle %d moved from %v to %v", i, start[i].Pos, p.Pos)
		}
	}
	if got := b.Center(w); ms2.Norm(ms2.Sub(got, ms2.Vec{X: 200, Y: 150})) > 1e-3 {
		t.Errorf("center drifted to %v", got)
	}
}

func TestOverlappingBodiesSeparate(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Iterations: 1, MinSeparation: 8})
	const r = 30
	// Circles overlap by 5 units.
	a, err := w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 150, Y: 150}, R: r}, defaultBody)
	if err != nil {
		t.Fatal(err)
	}
	b, err := w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 150 + 2*r - 5, Y: 150}, R: r}, defaultBody)
	if err != nil {
		t.Fatal(err)
	}
	before := ms2.Norm(ms2.Sub(b.Center(w), a.Center(w)))
	w.collide()
	after := ms2.Norm(ms2.Sub(b.Center(w), a.Center(w)))
	if after <= before {
		t.Fatalf("center distance did not increase: before %v after %v", before, after)
	}
}

func TestResolveKeepsMinSeparation(t *testing.T) {
	w := newTestWorld(t, WorldConfig{MinSeparation: 5, Restitution: 0.5})
	w.Particles = []Particle{
		{Pos: ms2.Vec{X: 100, Y: 100}, Prev: ms2.Vec{X: 99, Y: 100}, Body: 0},
		{Pos: ms2.Vec{X: 102, Y: 101}, Prev: ms2.Vec{X: 103, Y: 101}, Body: 1},
	}
	w.Bodies = []*Body{{ID: 0, Shell: []int{0}}, {ID: 1, Shell: []int{1}}}
	w.collide()
	d := ms2.Norm(ms2.Sub(w.Particles[1].Pos, w.Particles[0].Pos))
	if d < 5-1e-4 {
		t.Fatalf("distance after resolution %v, want >= 5", d)
	}
	// Particles were approaching; they must now be separating.
	n := unit(ms2.Sub(w.Particles[1].Pos, w.Particles[0].Pos))
	vn := ms2.Dot(ms2.Sub(w.Particles[1].Velocity(), w.Particles[0].Velocity()), n)
	if vn <= 0 {
		t.Fatalf("relative normal velocity %v after impulse, want separating", vn)
	}
}

func TestSameBodyDoesNotCollide(t *testing.T) {
	w := newTestWorld(t, WorldConfig{MinSeparation: 100})
	_, err := w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 200, Y: 150}, R: 20}, defaultBody)
	if err != nil {
		t.Fatal(err)
	}
	_, err = w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 50, Y: 50}, R: 20}, defaultBody)
	if err != nil {
		t.Fatal(err)
	}
	start := append([]Particle(nil), w.Particles[:len(w.Bodies[0].Shell)]...)
	w.MinSeparation = 10 // Far apart bodies, near particles within each body.
	w.collide()
	for i, p := range start {
		if w.Particles[i].Pos != p.Pos {
			t.Fatalf("particle %d moved by same-body collision", i)
		}
	}
}

func TestFreeze(t *testing.T) {
	w := newTestWorld(t, WorldConfig{Gravity: ms2.Vec{Y: 100}})
	b, _ := w.AddBody(gsketch.Circle{Center: ms2.Vec{X: 200, Y: 100}, R: 20}, defaultBody)
	w.Step(0.1)
	w.Freeze()
	c := b.Center(w)
	w.Step(0.1)
	if b.Center(w) != c || !w.Frozen() {
		t.Fatal("frozen world moved")
	}
	smooth := b.SmoothOutline(w, 2)
	if len(smooth) != 4*len(b.Shell) {
		t.Errorf("smoothed outline has %d points, want %d", len(smooth), 4*len(b.Shell))
	}
}

func TestBodyConfigValidation(t *testing.T) {
	w := newTestWorld(t, WorldConfig{})
	bad := []BodyConfig{
		{Segments: 2},
		{Segments: 8, InnerRatio: 1},
		{Segments: 8, ShellStiffness: 2},
	}
	for i, cfg := range bad {
		if _, err := w.AddBody(gsketch.Circle{R: 1}, cfg); err == nil {
			t.Errorf("config %d: expected error", i)
		}
	}
	if _, err := NewWorld(ms2.Box{}, WorldConfig{}); err == nil {
		t.Error("expected error for empty bounds")
	}
	if _, err := NewWorld(ms2.NewBox(0, 0, 1, 1), WorldConfig{Drag: math32.Inf(1)}); err == nil {
		t.Error("expected error for infinite drag")
	}
}

func TestWallContactKeepsSeparation(t *testing.T) {
	w := newTestWorld(t, WorldConfig{MinSeparation: 5})
	w.Particles = []Particle{
		{Pos: ms2.Vec{X: 0, Y: 100}, Prev: ms2.Vec{X: 0, Y: 100}, Body: 0},
		{Pos: ms2.Vec{X: 2, Y: 100}, Prev: ms2.Vec{X: 2, Y: 100}, Body: 1},
	}
	w.Bodies = []*Body{{ID: 0, Shell: []int{0}}, {ID: 1, Shell: []int{1}}}
	w.Step(1. / 60)
	a, b := w.Particles[0].Pos, w.Particles[1].Pos
	if a.X != 0 {
		t.Errorf("particle against the wall moved to %v", a)
	}
	if d := ms2.Norm(ms2.Sub(b, a)); d < 5-1e-4 {
		t.Fatalf("distance after step %v, want >= 5", d)
	}
}

func TestPileKeepsSeparationAfterStep(t *testing.T) {
	const minSep = 6
	w := newTestWorld(t, WorldConfig{
		Gravity:         ms2.Vec{Y: 600},
		Drag:            0.01,
		Iterations:      4,
		MinSeparation:   minSep,
		Restitution:     0.3,
		CollisionPasses: 2,
	})
	rng := rand.New(rand.NewPCG(9, 1))
	circles, err := gsketch.PackCircles(rng, w.Bounds, gsketch.PackConfig{Count: 20, MinRadius: 15, MaxRadius: 40, Padding: 6})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.AddBodies(circles, defaultBody); err != nil {
		t.Fatal(err)
	}
	for _, b := range w.Bodies {
		b.Push(w, ms2.Vec{X: rng.Float32()*4 - 2, Y: rng.Float32()*4 - 2})
	}
	for step := 1; step <= 400; step++ {
		w.Step(1. / 96)
		if step%25 != 0 {
			continue
		}
		// Bodies pile up against the floor, so wall contacts are exercised.
		closest := float32(math32.MaxFloat32)
		for i := range w.Particles {
			for j := i + 1; j < len(w.Particles); j++ {
				pi, pj := &w.Particles[i], &w.Particles[j]
				if pi.Body == pj.Body {
					continue
				}
				closest = min(closest, ms2.Norm(ms2.Sub(pj.Pos, pi.Pos)))
			}
		}
		if closest < minSep/2 {
			t.Fatalf("step %d: cross-body particles %v apart, want about %v", step, closest, minSep)
		}
	}
}
