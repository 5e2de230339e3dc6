package sketch

import "github.com/charmbracelet/harmonica"

// Ease follows a moving target with a damped spring, one update per frame.
type Ease struct {
	spring harmonica.Spring
	pos    float64
	vel    float64
	target float64
}

// NewEase returns an ease starting at pos. Frequency controls speed and damping the amount
// of overshoot: below 1 oscillates, 1 is critically damped.
func NewEase(fps int, frequency, damping, pos float64) *Ease {
	return &Ease{
		spring: harmonica.NewSpring(harmonica.FPS(max(fps, 1)), frequency, damping),
		pos:    pos,
		target: pos,
	}
}

// SetTarget moves the equilibrium position.
func (e *Ease) SetTarget(target float64) { e.target = target }

// Target returns the equilibrium position.
func (e *Ease) Target() float64 { return e.target }

// Value returns the current position without advancing.
func (e *Ease) Value() float64 { return e.pos }

// Update advances the spring one frame and returns the new position.
func (e *Ease) Update() float64 {
	e.pos, e.vel = e.spring.Update(e.pos, e.vel, e.target)
	return e.pos
}
