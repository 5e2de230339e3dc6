package palette

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

var presets = map[string]Palette{
	"paper":   MustHex("#f2eee3", "#1d1d1b", "#e4572e", "#29335c", "#f3a712", "#669bbc"),
	"nalee":   MustHex("#f6f1e7", "#f25f5c", "#ffe066", "#247ba0", "#70c1b3", "#50514f"),
	"dusk":    MustHex("#2b2d42", "#8d99ae", "#edf2f4", "#ef233c", "#d90429"),
	"lagoon":  MustHex("#0b132b", "#1c2541", "#3a506b", "#5bc0be", "#e0fbfc"),
	"blossom": MustHex("#fff0f3", "#ffb3c1", "#ff758f", "#c9184a", "#590d22"),
	"moss":    MustHex("#eae2b7", "#606c38", "#283618", "#dda15e", "#bc6c25"),
}

// Named returns a copy of the preset palette with the given name.
func Named(name string) (Palette, error) {
	p, ok := presets[name]
	if !ok {
		return nil, fmt.Errorf("unknown palette %q", name)
	}
	return append(Palette(nil), p...), nil
}

// Names returns the preset names in sorted order.
func Names() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// RandomPreset returns a copy of a randomly chosen preset. The first color of presets is
// meant as a background.
func RandomPreset(rng *rand.Rand) Palette {
	names := Names()
	p, _ := Named(names[rng.IntN(len(names))])
	return p
}
