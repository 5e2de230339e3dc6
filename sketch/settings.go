package sketch

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Backend selects the rasterizer used to turn scenes into pixels.
type Backend uint8

const (
	// BackendRaster evaluates signed distance fields per pixel.
	BackendRaster Backend = iota
	// BackendGG uses the fogleman/gg vector rasterizer.
	BackendGG
)

func (b Backend) String() string {
	switch b {
	case BackendRaster:
		return "raster"
	case BackendGG:
		return "gg"
	}
	return fmt.Sprintf("Backend(%d)", b)
}

// ParseBackend returns the backend by name.
func ParseBackend(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "raster", "sdf":
		return BackendRaster, nil
	case "gg":
		return BackendGG, nil
	}
	return 0, fmt.Errorf("unknown backend %q", name)
}

// Settings describe the output of a sketch. They do not affect the algorithms a sketch runs
// other than through the canvas size and the seed.
type Settings struct {
	// Name is used as file name prefix for outputs.
	Name string
	// Width and Height are the scene dimensions in world units.
	Width, Height int
	// PixelRatio is the number of output pixels per world unit.
	PixelRatio int
	// FPS is the frame rate of animations.
	FPS int
	// Duration of the animation in seconds. Zero renders a single still frame.
	Duration float32
	// Seed of the random source. Zero picks a random seed.
	Seed       uint64
	Background color.NRGBA
	Backend    Backend
	// Supersample is the samples per pixel side of the raster backend.
	Supersample int
	// Caption stamps the sketch name and seed on the bottom left of output images.
	Caption bool
	// Blur is a Gaussian blur radius in output pixels applied to every frame.
	Blur float64
	// Contrast adjustment in [-1, 1] applied to every frame.
	Contrast float64
}

// DefaultSettings returns settings for a square still image.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:        name,
		Width:       1024,
		Height:      1024,
		PixelRatio:  1,
		FPS:         24,
		Background:  color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Backend:     BackendRaster,
		Supersample: 2,
	}
}

// Validate returns all problems found in the settings joined together.
func (s Settings) Validate() error {
	var errs []error
	if s.Name == "" || strings.ContainsAny(s.Name, `/\`) {
		errs = append(errs, fmt.Errorf("invalid name %q", s.Name))
	}
	if s.Width <= 0 || s.Height <= 0 {
		errs = append(errs, fmt.Errorf("invalid size %dx%d", s.Width, s.Height))
	}
	if s.PixelRatio < 1 {
		errs = append(errs, errors.New("pixel ratio must be at least 1"))
	}
	if s.FPS <= 0 {
		errs = append(errs, errors.New("fps must be positive"))
	}
	if s.Duration < 0 || math.IsNaN(float64(s.Duration)) {
		errs = append(errs, errors.New("negative duration"))
	}
	if s.Backend > BackendGG {
		errs = append(errs, fmt.Errorf("invalid backend %d", s.Backend))
	}
	if s.Backend == BackendRaster && (s.Supersample < 1 || s.Supersample > 8) {
		errs = append(errs, fmt.Errorf("supersample %d out of range [1, 8]", s.Supersample))
	}
	if s.Blur < 0 {
		errs = append(errs, errors.New("negative blur radius"))
	}
	if s.Contrast < -1 || s.Contrast > 1 {
		errs = append(errs, errors.New("contrast must be in [-1, 1]"))
	}
	return errors.Join(errs...)
}

// TotalFrames returns the number of frames rendered, at least one.
func (s Settings) TotalFrames() int {
	return max(1, int(math.Round(float64(s.Duration)*float64(s.FPS))))
}

// Props are passed to a sketch's render function every frame.
type Props struct {
	// Width and Height of the scene in world units.
	Width, Height float32
	// Playhead goes from 0 on the first frame to 1 on the last. Still frames have playhead 1.
	Playhead float32
	// Time in seconds since the first frame.
	Time      float32
	DeltaTime float32
	Frame     int
	// TotalFrames is the number of frames that will be rendered.
	TotalFrames int
}

// Still reports whether the sketch renders a single frame.
func (p Props) Still() bool { return p.TotalFrames <= 1 }

func (s Settings) props(frame int) Props {
	n := s.TotalFrames()
	playhead := float32(1)
	if n > 1 {
		playhead = float32(frame) / float32(n-1)
	}
	dt := 1 / float32(s.FPS)
	return Props{
		Width:       float32(s.Width),
		Height:      float32(s.Height),
		Playhead:    playhead,
		Time:        float32(frame) * dt,
		DeltaTime:   dt,
		Frame:       frame,
		TotalFrames: n,
	}
}
