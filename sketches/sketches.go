// Package sketches is the catalog of generative compositions runnable with [sketch.Run].
package sketches

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soypat/gsketch/sketch"
)

// Entry describes a catalog sketch.
type Entry struct {
	Name        string
	Description string
	// New returns the sketch with its default parameters.
	New func() sketch.Sketch
}

var registry = []Entry{
	{"nalee", "walkers grow non-crossing paths over a grid, biased by a noise flow field",
		func() sketch.Sketch { return Nalee(DefaultNaleeParams()) }},
	{"nalee-grow", "paths grown ring by ring as a polygonal domain expands",
		func() sketch.Sketch { return NaleeGrow(DefaultNaleeGrowParams()) }},
	{"nalee-ribbon", "paths clipped to packed polygons drawn as tapered ribbons",
		func() sketch.Sketch { return NaleeRibbon(DefaultNaleeParams()) }},
	{"softbodies", "packed circles become spring bodies that fall and squash together",
		func() sketch.Sketch { return SoftBodies(DefaultSoftBodyParams()) }},
	{"tiles", "wave function collapse over pipe tiles",
		func() sketch.Sketch { return Tiles(DefaultTileParams()) }},
	{"swatches", "gradients between palette colors in several color spaces",
		func() sketch.Sketch { return Swatches(DefaultSwatchParams()) }},
}

// Registry returns all catalog entries sorted by name.
func Registry() []Entry {
	entries := slices.Clone(registry)
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.Name, b.Name) })
	return entries
}

// Lookup returns the catalog sketch with the given name and default parameters.
func Lookup(name string) (sketch.Sketch, error) {
	for _, e := range registry {
		if e.Name == name {
			return e.New(), nil
		}
	}
	names := make([]string, len(registry))
	for i, e := range registry {
		names[i] = e.Name
	}
	return sketch.Sketch{}, fmt.Errorf("unknown sketch %q, available: %s", name, strings.Join(names, ", "))
}
