// Package sketch drives generative sketches: it seeds randomness, calls the sketch's
// render function once per frame, rasterizes the resulting scenes and writes images.
package sketch

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/setanarut/apng"
	"github.com/soypat/gsketch/canvas"
	"github.com/soypat/gsketch/raster"
)

// Render draws frame props into the scene. The scene is cleared to the background before each call.
type Render func(p Props, sc *canvas.Scene)

// Sketch is a named generative composition.
type Sketch struct {
	Settings Settings
	// Setup is called once per run with the final settings and a seeded random source.
	// The returned Render is called once per frame and may keep state between frames.
	Setup func(s Settings, rng *rand.Rand) (Render, error)
}

// Output selects the files written by [Run].
type Output struct {
	// Dir is the output directory. It is created if missing. Empty means the working directory.
	Dir string
	// PNG writes the last frame as <name>-<seed>.png.
	PNG bool
	// Frames writes every frame as <name>-<seed>-NNNN.png.
	Frames bool
	// APNG writes all frames as an animated PNG <name>-<seed>.apng.png.
	APNG bool
	// SVG writes the last scene as <name>-<seed>.svg.
	SVG bool
	// Logger defaults to [slog.Default] when nil.
	Logger *slog.Logger
	// Silent discards all logging.
	Silent bool
}

// Result summarizes a finished run.
type Result struct {
	Seed   uint64
	Frames int
	Files  []string
	// Image is the last rendered frame after post processing.
	Image *image.RGBA
	// Scene is the last rendered scene.
	Scene *canvas.Scene
}

const seedMix = 0x9e3779b97f4a7c15

// NewRand returns the random source used for a seed. Equal seeds give equal sketches.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^seedMix))
}

// Run renders the sketch and writes the requested outputs. Cancelling ctx stops rendering
// new frames; frames already rendered are still written and the context error is returned.
func Run(ctx context.Context, sk Sketch, out Output) (Result, error) {
	s := sk.Settings
	if err := s.Validate(); err != nil {
		return Result{}, fmt.Errorf("sketch settings: %w", err)
	} else if sk.Setup == nil {
		return Result{}, errors.New("sketch has no setup")
	}
	log := out.Logger
	switch {
	case out.Silent:
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	case log == nil:
		log = slog.Default()
	}
	if s.Seed == 0 {
		s.Seed = rand.Uint64() | 1
	}
	log = log.With(slog.String("sketch", s.Name), slog.Uint64("seed", s.Seed))
	log.Info("setup", slog.String("backend", s.Backend.String()), slog.Int("width", s.Width), slog.Int("height", s.Height))

	render, err := sk.Setup(s, NewRand(s.Seed))
	if err != nil {
		return Result{Seed: s.Seed}, fmt.Errorf("setup %s: %w", s.Name, err)
	}
	var renderer canvas.Renderer = canvas.GG{}
	if s.Backend == BackendRaster {
		renderer, err = raster.NewImageRenderer(s.Supersample)
		if err != nil {
			return Result{Seed: s.Seed}, err
		}
	}
	res := Result{Seed: s.Seed, Scene: canvas.NewScene(float32(s.Width), float32(s.Height))}
	base := fmt.Sprintf("%s-%d", s.Name, s.Seed)
	if out.Dir != "" && (out.PNG || out.Frames || out.APNG || out.SVG) {
		if err := os.MkdirAll(out.Dir, 0o755); err != nil {
			return res, err
		}
	}
	path := func(suffix string) string { return filepath.Join(out.Dir, base+suffix) }

	var (
		frames  []image.Image
		ctxErr  error
		total   = s.TotalFrames()
		watch   = stopwatch()
		imgRect = image.Rect(0, 0, s.Width*s.PixelRatio, s.Height*s.PixelRatio)
	)
	for frame := range total {
		if ctxErr = ctx.Err(); ctxErr != nil {
			log.Warn("cancelled", slog.Int("frame", frame), slog.Any("error", ctxErr))
			break
		}
		res.Scene.Clear(s.Background)
		render(s.props(frame), res.Scene)
		img := image.NewRGBA(imgRect)
		if err := renderer.Render(res.Scene, img); err != nil {
			return res, fmt.Errorf("frame %d: %w", frame, err)
		}
		img = postProcess(img, s)
		if s.Caption {
			if err := stampCaption(img, base, s.Background); err != nil {
				return res, fmt.Errorf("caption: %w", err)
			}
		}
		res.Image = img
		res.Frames++
		if out.Frames {
			name := path(fmt.Sprintf("-%04d.png", frame))
			if err := imgio.Save(name, img, imgio.PNGEncoder()); err != nil {
				return res, err
			}
			res.Files = append(res.Files, name)
		}
		if out.APNG {
			frames = append(frames, img)
		}
		log.Debug("frame", slog.Int("frame", frame), slog.Int("shapes", res.Scene.Len()))
	}
	log.Info("rendered", slog.Int("frames", res.Frames), slog.Duration("elapsed", watch()))
	if res.Frames == 0 {
		return res, ctxErr
	}

	if out.PNG {
		name := path(".png")
		if err := imgio.Save(name, res.Image, imgio.PNGEncoder()); err != nil {
			return res, err
		}
		res.Files = append(res.Files, name)
	}
	if out.APNG {
		name := path(".apng.png")
		if err := writeAPNG(name, frames, s.FPS); err != nil {
			return res, err
		}
		res.Files = append(res.Files, name)
	}
	if out.SVG {
		name := path(".svg")
		if err := writeSVG(name, res.Scene); err != nil {
			return res, err
		}
		res.Files = append(res.Files, name)
	}
	for _, f := range res.Files {
		log.Info("wrote", slog.String("file", f))
	}
	return res, ctxErr
}

func writeAPNG(filename string, frames []image.Image, fps int) error {
	delay := uint16(max(1, (100+fps/2)/fps)) // centiseconds
	a := apng.APNG{
		Images: frames,
		Delays: make([]uint16, len(frames)),
	}
	for i := range a.Delays {
		a.Delays[i] = delay
	}
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err = apng.EncodeAll(fp, &a); err != nil {
		return fmt.Errorf("encoding apng: %w", err)
	}
	return fp.Sync()
}

func writeSVG(filename string, sc *canvas.Scene) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	if err = canvas.WriteSVG(fp, sc); err != nil {
		return err
	}
	return fp.Sync()
}

func stopwatch() func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		return time.Since(start)
	}
}
