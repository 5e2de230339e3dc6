package sketch

import (
	"context"
	"errors"
	"image/color"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch/canvas"
)

var red = color.NRGBA{R: 255, A: 255}

func squareSketch(s Settings) Sketch {
	return Sketch{
		Settings: s,
		Setup: func(s Settings, rng *rand.Rand) (Render, error) {
			return func(p Props, sc *canvas.Scene) {
				w := p.Width * (0.25 + 0.5*p.Playhead)
				sc.Fill([]ms2.Vec{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: p.Height}, {X: 0, Y: p.Height}}, red)
			}, nil
		},
	}
}

func testSettings() Settings {
	s := DefaultSettings("square")
	s.Width, s.Height = 32, 24
	s.Seed = 7
	s.Supersample = 1
	return s
}

func TestRunStill(t *testing.T) {
	for _, backend := range []Backend{BackendRaster, BackendGG} {
		s := testSettings()
		s.Backend = backend
		s.PixelRatio = 2
		dir := t.TempDir()
		res, err := Run(context.Background(), squareSketch(s), Output{Dir: dir, PNG: true, SVG: true, Silent: true})
		if err != nil {
			t.Fatal(err)
		}
		if res.Frames != 1 || res.Seed != 7 {
			t.Errorf("%s: frames=%d seed=%d", backend, res.Frames, res.Seed)
		}
		b := res.Image.Bounds()
		if b.Dx() != 64 || b.Dy() != 48 {
			t.Errorf("%s: image size %v, want 64x48", backend, b)
		}
		// Still frames have playhead 1 so the square covers 3/4 of the width.
		if got := res.Image.RGBAAt(40, 10); got.R != 255 || got.G != 0 {
			t.Errorf("%s: pixel inside square %v", backend, got)
		}
		if got := res.Image.RGBAAt(60, 10); got.G != 255 {
			t.Errorf("%s: pixel outside square %v", backend, got)
		}
		for _, want := range []string{"square-7.png", "square-7.svg"} {
			if _, err := os.Stat(filepath.Join(dir, want)); err != nil {
				t.Errorf("%s: missing output %s: %v", backend, want, err)
			}
		}
	}
}

func TestRunAnimation(t *testing.T) {
	s := testSettings()
	s.FPS = 10
	s.Duration = 0.5
	s.Caption = true
	s.Blur = 1
	s.Contrast = 0.2
	dir := t.TempDir()
	var playheads []float32
	sk := squareSketch(s)
	setup := sk.Setup
	sk.Setup = func(s Settings, rng *rand.Rand) (Render, error) {
		r, err := setup(s, rng)
		return func(p Props, sc *canvas.Scene) {
			playheads = append(playheads, p.Playhead)
			r(p, sc)
		}, err
	}
	res, err := Run(context.Background(), sk, Output{Dir: dir, Frames: true, APNG: true, Silent: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Frames != 5 || len(playheads) != 5 {
		t.Fatalf("rendered %d frames, want 5", res.Frames)
	}
	if playheads[0] != 0 || playheads[4] != 1 {
		t.Errorf("playheads %v, want 0 to 1", playheads)
	}
	// 5 numbered frames and the animation.
	if len(res.Files) != 6 {
		t.Errorf("wrote %d files: %v", len(res.Files), res.Files)
	}
	for _, f := range res.Files {
		if !strings.HasPrefix(filepath.Base(f), "square-7") {
			t.Errorf("unexpected file name %s", f)
		}
		if _, err := os.Stat(f); err != nil {
			t.Error(err)
		}
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := testSettings()
	s.Duration = 1
	sk := squareSketch(s)
	calls := 0
	sk.Setup = func(s Settings, rng *rand.Rand) (Render, error) {
		return func(p Props, sc *canvas.Scene) {
			calls++
			if calls == 3 {
				cancel()
			}
		}, nil
	}
	res, err := Run(ctx, sk, Output{Silent: true})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation error, got %v", err)
	}
	if calls != 3 || res.Frames != 3 {
		t.Errorf("render called %d times and %d frames kept, want 3", calls, res.Frames)
	}
}

func TestRunRandomSeed(t *testing.T) {
	s := testSettings()
	s.Seed = 0
	var got uint64
	sk := Sketch{Settings: s, Setup: func(s Settings, rng *rand.Rand) (Render, error) {
		got = s.Seed
		return func(Props, *canvas.Scene) {}, nil
	}}
	res, err := Run(context.Background(), sk, Output{Silent: true})
	if err != nil {
		t.Fatal(err)
	}
	if got == 0 || res.Seed != got {
		t.Errorf("seed %d not propagated to setup (%d)", res.Seed, got)
	}
}

func TestRunSetupError(t *testing.T) {
	errSetup := errors.New("bad setup")
	sk := Sketch{Settings: testSettings(), Setup: func(Settings, *rand.Rand) (Render, error) { return nil, errSetup }}
	if _, err := Run(context.Background(), sk, Output{Silent: true}); !errors.Is(err, errSetup) {
		t.Errorf("got %v, want setup error", err)
	}
	sk.Setup = nil
	if _, err := Run(context.Background(), sk, Output{Silent: true}); err == nil {
		t.Error("expected error for missing setup")
	}
}

func TestSettingsValidate(t *testing.T) {
	if err := DefaultSettings("ok").Validate(); err != nil {
		t.Fatal(err)
	}
	s := Settings{Name: "a/b", Width: -1, FPS: 0, Contrast: 3}
	err := s.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"name", "size", "fps", "contrast"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvSeed, "0x10")
	t.Setenv(EnvBackend, "gg")
	t.Setenv(EnvWidth, "300")
	t.Setenv(EnvOut, "renders")
	s := DefaultSettings("env")
	var out Output
	if err := FromEnv(&s, &out); err != nil {
		t.Fatal(err)
	}
	if s.Seed != 16 || s.Backend != BackendGG || s.Width != 300 || s.Height != 1024 || out.Dir != "renders" {
		t.Errorf("unexpected settings %+v output %+v", s, out)
	}
	t.Setenv(EnvHeight, "tall")
	if err := FromEnv(&s, &out); err == nil {
		t.Error("expected error for invalid height")
	}
	t.Setenv(EnvHeight, "512")
	t.Setenv(EnvSeed, "not-a-seed")
	if err := FromEnv(&s, &out); err == nil {
		t.Error("expected error for invalid seed")
	}
	if s.Seed != 16 {
		t.Errorf("invalid seed overwrote previous seed with %d", s.Seed)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "sketch.env")
	if err := os.WriteFile(name, []byte("SKETCH_TEST_LOADENV=42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SKETCH_TEST_LOADENV", "")
	os.Unsetenv("SKETCH_TEST_LOADENV")
	if err := LoadEnv(name, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("SKETCH_TEST_LOADENV"); got != "42" {
		t.Errorf("loaded value %q, want 42", got)
	}
}

func TestEaseConverges(t *testing.T) {
	e := NewEase(60, 6, 1, 0)
	e.SetTarget(10)
	var v float64
	for range 240 {
		v = e.Update()
	}
	if math.Abs(v-10) > 1e-3 {
		t.Errorf("ease settled at %v, want 10", v)
	}
	under := NewEase(60, 6, 0.2, 0)
	under.SetTarget(1)
	peak := 0.0
	for range 120 {
		peak = max(peak, under.Update())
	}
	if peak <= 1 {
		t.Errorf("underdamped ease did not overshoot, peak %v", peak)
	}
}
