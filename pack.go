package gsketch

import (
	"errors"
	"math/rand/v2"

	"github.com/chewxy/math32"
	"github.com/soypat/geometry/ms2"
)

// PackConfig configures [PackCircles].
type PackConfig struct {
	// Count is the maximum number of circles packed.
	Count int
	// MinRadius is the smallest radius accepted. Candidates with less room are discarded.
	MinRadius float32
	// MaxRadius caps circle growth.
	MaxRadius float32
	// Padding is the minimum gap left between circles and between circles and the bounds.
	Padding float32
	// Attempts is the number of random candidate positions tried. If zero 500*Count is used.
	Attempts int
}

func (cfg PackConfig) validate() error {
	var errs []error
	if cfg.Count <= 0 {
		errs = append(errs, errors.New("pack count must be positive"))
	}
	if cfg.MinRadius <= 0 || cfg.MaxRadius < cfg.MinRadius {
		errs = append(errs, errors.New("pack radii must satisfy 0 < MinRadius <= MaxRadius"))
	}
	if cfg.Padding < 0 || cfg.Attempts < 0 {
		errs = append(errs, errors.New("negative pack padding or attempts"))
	}
	return errors.Join(errs...)
}

// PackCircles places up to cfg.Count non-overlapping circles inside bounds by random trial:
// each candidate center grows until it touches a placed circle, the bounds or MaxRadius.
// Candidates that cannot reach MinRadius are rejected. Results are ordered by placement.
func PackCircles(rng *rand.Rand, bounds ms2.Box, cfg PackConfig) ([]Circle, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	attempts := cfg.Attempts
	if attempts == 0 {
		attempts = 500 * cfg.Count
	}
	sz := bounds.Size()
	var circles []Circle
	for i := 0; i < attempts && len(circles) < cfg.Count; i++ {
		c := ms2.Vec{
			X: bounds.Min.X + rng.Float32()*sz.X,
			Y: bounds.Min.Y + rng.Float32()*sz.Y,
		}
		r := math32.Min(cfg.MaxRadius, edgeDistance(bounds, c)-cfg.Padding)
		for _, other := range circles {
			room := ms2.Norm(ms2.Sub(c, other.Center)) - other.R - cfg.Padding
			r = math32.Min(r, room)
			if r < cfg.MinRadius {
				break
			}
		}
		if r < cfg.MinRadius {
			continue
		}
		circles = append(circles, Circle{Center: c, R: r})
	}
	return circles, nil
}

func edgeDistance(bb ms2.Box, p ms2.Vec) float32 {
	return math32.Min(
		math32.Min(p.X-bb.Min.X, bb.Max.X-p.X),
		math32.Min(p.Y-bb.Min.Y, bb.Max.Y-p.Y),
	)
}
