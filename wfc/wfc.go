// Package wfc implements wave function collapse over a grid of pipe-like tiles whose
// edges either connect or stay closed.
package wfc

import (
	"errors"
	"fmt"
	"math/bits"
	"math/rand/v2"
)

// ErrContradiction is returned by [Grid.Collapse] when every attempt ends with a cell
// that admits no tile.
var ErrContradiction = errors.New("wfc: contradiction")

// Dir is one of the four cell edges.
type Dir uint8

const (
	North Dir = iota
	East
	South
	West
)

// Opposite returns the facing edge of the neighbor across d.
func (d Dir) Opposite() Dir { return (d + 2) % 4 }

// Offset returns the grid step towards d. Y grows southwards.
func (d Dir) Offset() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

func (d Dir) String() string {
	switch d {
	case North:
		return "north"
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	}
	return fmt.Sprintf("Dir(%d)", d)
}

// Tile is a tile kind. Named directions refer to the stem of a T shaped tile.
type Tile uint8

const (
	Blank Tile = iota
	Up
	Right
	Down
	Left
	Cross
	Horizontal
	Vertical
	numTiles
)

// AllTiles lists every tile kind.
var AllTiles = []Tile{Blank, Up, Right, Down, Left, Cross, Horizontal, Vertical}

// sockets is indexed by tile and then by [Dir].
var sockets = [numTiles][4]bool{
	Blank:      {false, false, false, false},
	Up:         {true, true, false, true},
	Right:      {true, true, true, false},
	Down:       {false, true, true, true},
	Left:       {true, false, true, true},
	Cross:      {true, true, true, true},
	Horizontal: {false, true, false, true},
	Vertical:   {true, false, true, false},
}

var tileNames = [numTiles]string{
	Blank: "blank", Up: "up", Right: "right", Down: "down", Left: "left",
	Cross: "cross", Horizontal: "horizontal", Vertical: "vertical",
}

func (t Tile) String() string {
	if t < numTiles {
		return tileNames[t]
	}
	return fmt.Sprintf("Tile(%d)", t)
}

// Open reports whether the tile connects through edge d.
func (t Tile) Open(d Dir) bool { return sockets[t][d] }

// Compatible reports whether b may sit next to a in direction d of a.
func Compatible(a, b Tile, d Dir) bool {
	return sockets[a][d] == sockets[b][d.Opposite()]
}

// set is a bitset of tiles.
type set uint16

func (s set) has(t Tile) bool { return s&(1<<t) != 0 }
func (s set) count() int      { return bits.OnesCount16(uint16(s)) }

// adjacency[t][d] is the set of tiles that may neighbor t across d.
var adjacency = func() (adj [numTiles][4]set) {
	for a := range numTiles {
		for d := range Dir(4) {
			for b := range numTiles {
				if Compatible(a, b, d) {
					adj[a][d] |= 1 << b
				}
			}
		}
	}
	return adj
}()

// Grid is a rectangular wave of tile possibilities.
type Grid struct {
	// MaxAttempts bounds the number of restarts after a contradiction.
	MaxAttempts int
	// ClosedBorder forbids connections leading out of the grid.
	ClosedBorder bool

	cols, rows int
	allowed    set
	cells      []set
	rng        *rand.Rand
	attempts   int
	stack      []int
}

// New returns a grid where every cell may hold any of tiles.
func New(cols, rows int, tiles []Tile, seed uint64) (*Grid, error) {
	if cols <= 0 || rows <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", cols, rows)
	}
	var allowed set
	for _, t := range tiles {
		if t >= numTiles {
			return nil, fmt.Errorf("invalid tile %d", t)
		}
		allowed |= 1 << t
	}
	if allowed == 0 {
		return nil, errors.New("no tiles")
	}
	g := &Grid{
		MaxAttempts: 100,
		cols:        cols,
		rows:        rows,
		allowed:     allowed,
		cells:       make([]set, cols*rows),
		rng:         rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)),
	}
	g.reset()
	return g, nil
}

// Size returns the grid dimensions.
func (g *Grid) Size() (cols, rows int) { return g.cols, g.rows }

// Attempts returns how many attempts the last Collapse used.
func (g *Grid) Attempts() int { return g.attempts }

// Options returns the tiles cell (x,y) may still hold.
func (g *Grid) Options(x, y int) []Tile {
	s := g.cells[g.index(x, y)]
	var ts []Tile
	for t := range numTiles {
		if s.has(t) {
			ts = append(ts, t)
		}
	}
	return ts
}

// Tile returns the collapsed tile at (x,y). ok is false while the cell is undecided.
func (g *Grid) Tile(x, y int) (t Tile, ok bool) {
	s := g.cells[g.index(x, y)]
	if s.count() != 1 {
		return 0, false
	}
	return Tile(bits.TrailingZeros16(uint16(s))), true
}

// Done reports whether every cell holds exactly one tile.
func (g *Grid) Done() bool {
	for _, s := range g.cells {
		if s.count() != 1 {
			return false
		}
	}
	return true
}

// Collapse resolves every cell to a single tile such that all neighbors are compatible.
func (g *Grid) Collapse() error {
	attempts := max(1, g.MaxAttempts)
	for g.attempts = 1; g.attempts <= attempts; g.attempts++ {
		g.reset()
		if g.run() {
			return nil
		}
	}
	g.attempts = attempts
	return fmt.Errorf("%w after %d attempts", ErrContradiction, attempts)
}

func (g *Grid) reset() {
	g.stack = g.stack[:0]
	for i := range g.cells {
		g.cells[i] = g.allowed
		g.stack = append(g.stack, i)
	}
	if !g.ClosedBorder {
		return
	}
	for i := range g.cells {
		x, y := i%g.cols, i/g.cols
		for d := range Dir(4) {
			dx, dy := d.Offset()
			if g.inside(x+dx, y+dy) {
				continue
			}
			for t := range numTiles {
				if t.Open(d) {
					g.cells[i] &^= 1 << t
				}
			}
		}
	}
}

// run collapses cells until done and reports false on contradiction.
func (g *Grid) run() bool {
	if !g.propagate() {
		return false
	}
	for _, s := range g.cells {
		if s == 0 {
			return false
		}
	}
	for {
		i := g.lowestEntropy()
		if i < 0 {
			return true
		}
		s := g.cells[i]
		pick := g.rng.IntN(s.count())
		for t := range numTiles {
			if !s.has(t) {
				continue
			}
			if pick == 0 {
				g.cells[i] = 1 << t
				break
			}
			pick--
		}
		g.stack = append(g.stack[:0], i)
		if !g.propagate() {
			return false
		}
	}
}

// lowestEntropy returns a random undecided cell among those with the fewest options,
// or -1 when all cells are decided.
func (g *Grid) lowestEntropy() int {
	best, bestN, ties := -1, int(numTiles)+1, 0
	for i, s := range g.cells {
		n := s.count()
		if n <= 1 {
			continue
		}
		switch {
		case n < bestN:
			best, bestN, ties = i, n, 1
		case n == bestN:
			// Reservoir sampling keeps ties uniform.
			ties++
			if g.rng.IntN(ties) == 0 {
				best = i
			}
		}
	}
	return best
}

func (g *Grid) propagate() bool {
	for len(g.stack) > 0 {
		i := g.stack[len(g.stack)-1]
		g.stack = g.stack[:len(g.stack)-1]
		x, y := i%g.cols, i/g.cols
		s := g.cells[i]
		for d := range Dir(4) {
			dx, dy := d.Offset()
			nx, ny := x+dx, y+dy
			if !g.inside(nx, ny) {
				continue
			}
			var possible set
			for t := range numTiles {
				if s.has(t) {
					possible |= adjacency[t][d]
				}
			}
			j := g.index(nx, ny)
			next := g.cells[j] & possible
			if next == g.cells[j] {
				continue
			}
			if next == 0 {
				g.cells[j] = 0
				return false
			}
			g.cells[j] = next
			g.stack = append(g.stack, j)
		}
	}
	return true
}

func (g *Grid) inside(x, y int) bool { return x >= 0 && y >= 0 && x < g.cols && y < g.rows }

func (g *Grid) index(x, y int) int {
	if !g.inside(x, y) {
		panic("wfc: cell out of range")
	}
	return y*g.cols + x
}
