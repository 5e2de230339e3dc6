package sketch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by [FromEnv].
const (
	EnvSeed    = "SKETCH_SEED"
	EnvOut     = "SKETCH_OUT"
	EnvBackend = "SKETCH_BACKEND"
	EnvWidth   = "SKETCH_WIDTH"
	EnvHeight  = "SKETCH_HEIGHT"
)

// LoadEnv loads variables from the given dotenv files, or ".env" when none are given.
// Missing files are ignored. Variables already set in the environment take precedence.
func LoadEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	var present []string
	for _, name := range filenames {
		if _, err := os.Stat(name); err == nil {
			present = append(present, name)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// FromEnv overrides settings and output with environment variables that are set.
func FromEnv(s *Settings, out *Output) error {
	var errs []error
	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseUint(v, 0, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSeed, err))
		} else {
			s.Seed = seed
		}
	}
	if v, ok := os.LookupEnv(EnvBackend); ok {
		b, err := ParseBackend(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", EnvBackend, err))
		} else {
			s.Backend = b
		}
	}
	for _, dim := range []struct {
		key string
		dst *int
	}{{EnvWidth, &s.Width}, {EnvHeight, &s.Height}} {
		v, ok := os.LookupEnv(dim.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid dimension %q", dim.key, v))
			continue
		}
		*dim.dst = n
	}
	if v, ok := os.LookupEnv(EnvOut); ok && out != nil {
		out.Dir = v
	}
	return errors.Join(errs...)
}
