// Package nalee grows non-overlapping paths over a grid by running self-avoiding
// random walkers inside a polygonal domain. The domain can be grown incrementally,
// in which case new walkers only claim the newly exposed cells and previous paths
// are left untouched.
package nalee

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
	"github.com/soypat/gsketch/noise"
)

// Config configures a [Grower].
type Config struct {
	// Cols and Rows is the grid resolution.
	Cols, Rows int
	// Width and Height of the world area the grid maps to.
	Width, Height float32
	// Padding is the fraction of the smaller world side left empty at every edge. Must be in [0, 0.5).
	Padding float32
	// Connectivity is 4 or 8. Zero selects 4.
	Connectivity int
	// Walkers is the number of walkers spawned on every domain (re)build.
	Walkers int
	// MaxSteps is the per walker step budget. Zero means unlimited.
	MaxSteps int
	// Exhaustive spawns fresh walkers into free cells once all walkers are boxed in.
	Exhaustive bool
	// Straightness biases walkers to keep their heading. Zero picks neighbors uniformly.
	Straightness float32
	// Flow optionally biases walkers toward the field's direction at the candidate cell.
	Flow noise.Field
	// FlowBias scales the influence of Flow.
	FlowBias float32
}

// Validate checks the configuration for values that cannot build a grid.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		errs = append(errs, fmt.Errorf("invalid grid resolution %dx%d", cfg.Cols, cfg.Rows))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		errs = append(errs, errors.New("world size must be positive"))
	}
	if cfg.Padding < 0 || cfg.Padding >= 0.5 {
		errs = append(errs, errors.New("padding must be in [0, 0.5)"))
	}
	if cfg.Connectivity != 0 && cfg.Connectivity != 4 && cfg.Connectivity != 8 {
		errs = append(errs, fmt.Errorf("connectivity must be 4 or 8, got %d", cfg.Connectivity))
	}
	if cfg.Walkers < 0 || cfg.MaxSteps < 0 {
		errs = append(errs, errors.New("negative walker count or step budget"))
	}
	if cfg.Straightness < 0 || cfg.FlowBias < 0 {
		errs = append(errs, errors.New("negative walk bias"))
	}
	return errors.Join(errs...)
}

// Walker is a path of claimed cells grown one step at a time.
type Walker struct {
	ID int
	// Path holds indices into [Grower.Cells] in claim order.
	Path []int
	// Done is set once the walker is boxed in or out of steps.
	Done bool
	gen  int
}

// Steps returns the number of moves taken since spawning.
func (w *Walker) Steps() int { return len(w.Path) - 1 }

// Generation returns the domain generation the walker is confined to.
func (w *Walker) Generation() int { return w.gen }

// Head returns the cell index of the walker's current position.
func (w *Walker) Head() int { return w.Path[len(w.Path)-1] }

// Grower owns a grid, its domain and the walkers growing paths over it.
// A Grower is not safe for concurrent use.
type Grower struct {
	cfg     Config
	rng     *rand.Rand
	cells   []Cell
	walkers []*Walker
	gen     int
	domain  int
	claimed int
	// scratch buffers.
	free []int
	cand []candidate
}

type candidate struct {
	cell   int
	weight float32
}

// New builds a grid covering the full world area as the domain and spawns cfg.Walkers walkers.
// The same seed and configuration always produce the same paths.
func New(cfg Config, seed uint64) (*Grower, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Connectivity == 0 {
		cfg.Connectivity = 4
	}
	g := &Grower{
		cfg: cfg,
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	g.cells = buildCells(g.cells, cfg.Cols, cfg.Rows, cfg.Width, cfg.Height, cfg.Padding)
	for i := range g.cells {
		g.cells[i].gen = 0
	}
	g.domain = len(g.cells)
	g.spawn(cfg.Walkers)
	return g, nil
}

// Config returns the configuration the grower was built with.
func (g *Grower) Config() Config { return g.cfg }

// Clip rebuilds the domain as the grid cells whose centers lie inside any of the polygons,
// discarding every walker and claim. No polygons, or polygons without area, produce an
// empty domain with no walkers.
func (g *Grower) Clip(polys ...gsketch.Polygon) {
	g.cells = buildCells(g.cells, g.cfg.Cols, g.cfg.Rows, g.cfg.Width, g.cfg.Height, g.cfg.Padding)
	g.walkers = g.walkers[:0]
	g.gen = 0
	g.domain = 0
	g.claimed = 0
	for i := range g.cells {
		if insideAny(polys, g.cells[i].Pos) {
			g.cells[i].gen = 0
			g.domain++
		}
	}
	g.spawn(g.cfg.Walkers)
}

// Grow adds the cells inside any of the polygons to the domain and seeds cfg.Walkers new
// walkers into them. Existing claims and paths are not modified. Walkers seeded by Grow,
// and any walker spawned afterwards, only claim cells added by this call. It returns the
// number of cells added.
func (g *Grower) Grow(polys ...gsketch.Polygon) int {
	g.gen++
	added := 0
	for i := range g.cells {
		c := &g.cells[i]
		if c.gen < 0 && insideAny(polys, c.Pos) {
			c.gen = g.gen
			added++
		}
	}
	g.domain += added
	if added > 0 {
		g.spawn(g.cfg.Walkers)
	}
	return added
}

// Step advances every active walker by one cell and reports whether anything changed.
// When every walker is done and the grower is exhaustive a new walker is spawned into a
// free cell of the current generation. Step returns false once the walk is finished.
func (g *Grower) Step() bool {
	moved := false
	for _, w := range g.walkers {
		if !w.Done && g.advance(w) {
			moved = true
		}
	}
	if !moved && g.cfg.Exhaustive {
		moved = g.spawn(1) > 0
	}
	return moved
}

// Run steps until the walk finishes and returns the number of steps taken.
// Every productive step claims at least one cell so Run always terminates.
func (g *Grower) Run() (steps int) {
	for g.Step() {
		steps++
	}
	return steps
}

// Cells returns the grid cells in row-major order. The slice must not be modified.
func (g *Grower) Cells() []Cell { return g.cells }

// Cell returns the cell at grid coordinates x, y. It panics if out of range.
func (g *Grower) Cell(x, y int) *Cell {
	idx := g.cellAt(x, y)
	if idx < 0 {
		panic(fmt.Sprintf("cell (%d,%d) out of %dx%d grid", x, y, g.cfg.Cols, g.cfg.Rows))
	}
	return &g.cells[idx]
}

// Owner returns the ID of the walker that claimed cell x, y, or -1 if free or out of range.
func (g *Grower) Owner(x, y int) int {
	idx := g.cellAt(x, y)
	if idx < 0 {
		return -1
	}
	return g.cells[idx].Owner
}

// Walkers returns all walkers spawned since the domain was last built, indexed by ID.
func (g *Grower) Walkers() []*Walker { return g.walkers }

// Generation returns the current domain generation.
func (g *Grower) Generation() int { return g.gen }

// DomainSize returns the number of cells in the domain.
func (g *Grower) DomainSize() int { return g.domain }

// FreeCells returns the number of domain cells not yet claimed.
func (g *Grower) FreeCells() int { return g.domain - g.claimed }

// Active returns the number of walkers still able to step.
func (g *Grower) Active() (n int) {
	for _, w := range g.walkers {
		if !w.Done {
			n++
		}
	}
	return n
}

// Paths returns the world-space polyline of every walker, indexed by walker ID.
func (g *Grower) Paths() []gsketch.Polyline {
	paths := make([]gsketch.Polyline, len(g.walkers))
	for i, w := range g.walkers {
		paths[i] = g.Path(w)
	}
	return paths
}

// Path returns the world-space polyline through the centers of the walker's cells.
func (g *Grower) Path(w *Walker) gsketch.Polyline {
	pl := make(gsketch.Polyline, len(w.Path))
	for i, ci := range w.Path {
		pl[i] = g.cells[ci].Pos
	}
	return pl
}

// spawn starts up to n walkers on random free cells of the current generation and
// returns how many were started.
func (g *Grower) spawn(n int) int {
	if n <= 0 {
		return 0
	}
	g.free = g.free[:0]
	for i := range g.cells {
		c := &g.cells[i]
		if c.gen == g.gen && c.Free() {
			g.free = append(g.free, i)
		}
	}
	n = min(n, len(g.free))
	for i := 0; i < n; i++ {
		// Partial Fisher-Yates shuffle.
		j := i + g.rng.IntN(len(g.free)-i)
		g.free[i], g.free[j] = g.free[j], g.free[i]
		w := &Walker{ID: len(g.walkers), gen: g.gen}
		g.walkers = append(g.walkers, w)
		g.claim(w, g.free[i])
	}
	return n
}

func (g *Grower) claim(w *Walker, ci int) {
	c := &g.cells[ci]
	c.Owner = w.ID
	c.Index = len(w.Path)
	w.Path = append(w.Path, ci)
	g.claimed++
}

// advance moves w one cell and reports whether it moved. Walkers that cannot move are marked done.
func (g *Grower) advance(w *Walker) bool {
	if g.cfg.MaxSteps > 0 && w.Steps() >= g.cfg.MaxSteps {
		w.Done = true
		return false
	}
	g.cand = g.candidates(g.cand[:0], w)
	if len(g.cand) == 0 {
		w.Done = true
		return false
	}
	g.claim(w, g.pick(g.cand))
	return true
}

func (g *Grower) candidates(dst []candidate, w *Walker) []candidate {
	head := &g.cells[w.Head()]
	var heading ms2.Vec
	if len(w.Path) > 1 {
		prev := &g.cells[w.Path[len(w.Path)-2]]
		heading = ms2.Vec{X: float32(head.X - prev.X), Y: float32(head.Y - prev.Y)}
		heading = ms2.Scale(1/ms2.Norm(heading), heading)
	}
	offsets := neighbors4[:]
	if g.cfg.Connectivity == 8 {
		offsets = neighbors8[:]
	}
	for _, off := range offsets {
		ci := g.cellAt(head.X+off[0], head.Y+off[1])
		if ci < 0 {
			continue
		}
		c := &g.cells[ci]
		if !c.Free() || c.gen != w.gen {
			continue
		}
		if off[0] != 0 && off[1] != 0 && g.crossesDiagonal(head, off) {
			continue
		}
		dir := ms2.Vec{X: float32(off[0]), Y: float32(off[1])}
		dir = ms2.Scale(1/ms2.Norm(dir), dir)
		weight := float32(1)
		if g.cfg.Straightness > 0 {
			weight *= 1 + g.cfg.Straightness*max(0, ms2.Dot(dir, heading))
		}
		if g.cfg.Flow != nil && g.cfg.FlowBias > 0 {
			flow := noise.Direction(g.cfg.Flow, c.Pos)
			weight *= 1 + g.cfg.FlowBias*max(0, ms2.Dot(dir, flow))
		}
		dst = append(dst, candidate{cell: ci, weight: weight})
	}
	return dst
}

// crossesDiagonal reports whether the diagonal move from head by off would cross a
// diagonal segment already drawn between the two cells sharing the move's corner.
func (g *Grower) crossesDiagonal(head *Cell, off [2]int) bool {
	a := g.cellAt(head.X+off[0], head.Y)
	b := g.cellAt(head.X, head.Y+off[1])
	if a < 0 || b < 0 {
		return false
	}
	ca, cb := &g.cells[a], &g.cells[b]
	return !ca.Free() && ca.Owner == cb.Owner && abs(ca.Index-cb.Index) == 1
}

func (g *Grower) pick(cands []candidate) int {
	var total float32
	for _, c := range cands {
		total += c.weight
	}
	r := g.rng.Float32() * total
	for _, c := range cands {
		r -= c.weight
		if r < 0 {
			return c.cell
		}
	}
	return cands[len(cands)-1].cell
}

func insideAny(polys []gsketch.Polygon, p ms2.Vec) bool {
	for _, poly := range polys {
		if poly.Contains(p) {
			return true
		}
	}
	return false
}
