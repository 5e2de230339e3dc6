package softbody

import (
	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// collide resolves overlaps between particles of different bodies. The quadtree is rebuilt
// from current positions so only particles within MinSeparation are tested.
func (w *World) collide() {
	if w.MinSeparation <= 0 || len(w.Bodies) < 2 {
		return
	}
	w.centers = w.centers[:0]
	for _, b := range w.Bodies {
		w.centers = append(w.centers, b.Center(w))
	}
	w.tree.Reset(w.Bounds)
	for i := range w.Particles {
		w.tree.Insert(w.Particles[i].Pos, i)
	}
	for i := range w.Particles {
		w.neighbors = w.tree.QueryRadius(w.Particles[i].Pos, w.MinSeparation, w.neighbors[:0])
		for _, j := range w.neighbors {
			if j <= i || w.Particles[i].Body == w.Particles[j].Body {
				continue
			}
			w.resolve(i, j)
		}
	}
}

// resolve separates particles i and j of different bodies along the normal between the
// bodies' centers so their projected distance is at least MinSeparation, then applies an
// impulse to the implicit velocities if they are approaching. The push is split evenly
// unless a particle is pinned or would be driven past the world bounds, in which case
// its partner takes the rest. Particles therefore never leave Bounds through a collision
// and the clamp that ends a step does not undo the separation.
func (w *World) resolve(i, j int) {
	a, b := &w.Particles[i], &w.Particles[j]
	n := unit(ms2.Sub(w.centers[b.Body], w.centers[a.Body]))
	if n == (ms2.Vec{}) {
		n = unit(ms2.Sub(b.Pos, a.Pos))
		if n == (ms2.Vec{}) {
			n = ms2.Vec{X: 1}
		}
	}
	sep := ms2.Dot(ms2.Sub(b.Pos, a.Pos), n)
	overlap := w.MinSeparation - sep
	if overlap <= 0 {
		return
	}
	roomA := w.room(a, ms2.Scale(-1, n))
	roomB := w.room(b, n)
	sa := min(overlap/2, roomA)
	sb := min(overlap-sa, roomB)
	sa = min(overlap-sb, roomA)
	moved := sa + sb
	if moved <= 0 {
		return
	}
	va, vb := a.Velocity(), b.Velocity()
	vn := ms2.Dot(ms2.Sub(vb, va), n)

	da := ms2.Scale(-sa, n)
	db := ms2.Scale(sb, n)
	// Positional correction keeps velocity unchanged by shifting both Pos and Prev.
	a.Pos, a.Prev = ms2.Add(a.Pos, da), ms2.Add(a.Prev, da)
	b.Pos, b.Prev = ms2.Add(b.Pos, db), ms2.Add(b.Prev, db)
	if vn < 0 {
		// Impulse is shared like the push. Velocity change goes through Prev since v = Pos - Prev.
		jn := -(1 + w.Restitution) * vn / moved
		a.Prev = ms2.Add(a.Prev, ms2.Scale(jn*sa, n))
		b.Prev = ms2.Sub(b.Prev, ms2.Scale(jn*sb, n))
	}
}

// room returns how far p can move along unit direction d before leaving the world bounds.
// Pinned particles have no room.
func (w *World) room(p *Particle, d ms2.Vec) float32 {
	if p.Pinned {
		return 0
	}
	bb := w.Bounds
	r := float32(math32.MaxFloat32)
	switch {
	case d.X > epstol:
		r = min(r, (bb.Max.X-p.Pos.X)/d.X)
	case d.X < -epstol:
		r = min(r, (bb.Min.X-p.Pos.X)/d.X)
	}
	switch {
	case d.Y > epstol:
		r = min(r, (bb.Max.Y-p.Pos.Y)/d.Y)
	case d.Y < -epstol:
		r = min(r, (bb.Min.Y-p.Pos.Y)/d.Y)
	}
	return max(0, r)
}
