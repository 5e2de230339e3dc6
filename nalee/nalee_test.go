package nalee

import (
	"testing"

	"github.com/soypat/geometry/ms2"
	"github.com/soypat/gsketch"
	"github.com/soypat/gsketch/noise"
)

func defaultConfig() Config {
	return Config{
		Cols:    24,
		Rows:    18,
		Width:   480,
		Height:  360,
		Padding: 0.05,
		Walkers: 6,
	}
}

func TestWalkerInvariants(t *testing.T) {
	for _, conn := range []int{4, 8} {
		for seed := uint64(0); seed < 8; seed++ {
			cfg := defaultConfig()
			cfg.Connectivity = conn
			cfg.Straightness = float32(seed % 3)
			cfg.Exhaustive = seed%2 == 0
			switch seed % 4 {
			case 1:
				cfg.Flow = noise.NewSimplex(int64(seed), 0.01)
				cfg.FlowBias = 2
			case 3:
				cfg.Flow = noise.NewPerlin(int64(seed), 0.02)
				cfg.FlowBias = 1
			}
			g, err := New(cfg, seed)
			if err != nil {
				t.Fatal(err)
			}
			g.Clip(gsketch.RegularPolygon(ms2.Vec{X: 240, Y: 180}, 160, 7, 0.3))
			g.Run()
			checkInvariants(t, g)
			if cfg.Exhaustive && g.FreeCells() != 0 {
				t.Errorf("conn=%d seed=%d: exhaustive run left %d free cells", conn, seed, g.FreeCells())
			}
		}
	}
}

func checkInvariants(t *testing.T, g *Grower) {
	t.Helper()
	conn := g.Config().Connectivity
	seen := make(map[int]int)
	claimed := 0
	for _, w := range g.Walkers() {
		if len(w.Path) == 0 {
			t.Fatalf("walker %d has empty path", w.ID)
		}
		for i, ci := range w.Path {
			c := &g.Cells()[ci]
			if !c.InDomain() {
				t.Fatalf("walker %d claimed cell (%d,%d) outside domain", w.ID, c.X, c.Y)
			}
			if c.Generation() != w.Generation() {
				t.Fatalf("walker %d of generation %d claimed cell of generation %d", w.ID, w.Generation(), c.Generation())
			}
			if prev, ok := seen[ci]; ok {
				t.Fatalf("cell (%d,%d) claimed by walkers %d and %d", c.X, c.Y, prev, w.ID)
			}
			seen[ci] = w.ID
			if c.Owner != w.ID || c.Index != i {
				t.Fatalf("cell (%d,%d) owner/index %d/%d, want %d/%d", c.X, c.Y, c.Owner, c.Index, w.ID, i)
			}
			if i > 0 && !Adjacent(&g.Cells()[w.Path[i-1]], c, conn) {
				t.Fatalf("walker %d step %d not adjacent", w.ID, i)
			}
		}
		claimed += len(w.Path)
	}
	for ci, c := range g.Cells() {
		if _, ok := seen[ci]; !ok && !c.Free() {
			t.Fatalf("cell (%d,%d) owned by %d but on no path", c.X, c.Y, c.Owner)
		}
	}
	if g.DomainSize()-g.FreeCells() != claimed {
		t.Fatalf("claim accounting: domain %d free %d claimed %d", g.DomainSize(), g.FreeCells(), claimed)
	}
	if conn == 8 {
		checkNoDiagonalCrossings(t, g)
	}
}

func checkNoDiagonalCrossings(t *testing.T, g *Grower) {
	t.Helper()
	cells := g.Cells()
	for _, w := range g.Walkers() {
		for i := 1; i < len(w.Path); i++ {
			a, b := &cells[w.Path[i-1]], &cells[w.Path[i]]
			if a.X == b.X || a.Y == b.Y {
				continue
			}
			c1, c2 := g.Cell(b.X, a.Y), g.Cell(a.X, b.Y)
			if !c1.Free() && c1.Owner == c2.Owner && abs(c1.Index-c2.Index) == 1 {
				t.Fatalf("walker %d diagonal step %d crosses walker %d", w.ID, i, c1.Owner)
			}
		}
	}
}

func TestSingleWalkerTerminates(t *testing.T) {
	g, err := New(Config{Cols: 10, Rows: 10, Width: 100, Height: 100, Walkers: 1}, 99)
	if err != nil {
		t.Fatal(err)
	}
	steps := g.Run()
	if len(g.Walkers()) != 1 {
		t.Fatalf("want 1 walker, got %d", len(g.Walkers()))
	}
	w := g.Walkers()[0]
	if !w.Done {
		t.Fatal("walker not done after Run")
	}
	if len(w.Path) > 100 {
		t.Fatalf("path length %d exceeds cell count", len(w.Path))
	}
	if steps != w.Steps() {
		t.Errorf("Run returned %d steps, walker took %d", steps, w.Steps())
	}
	checkInvariants(t, g)
}

func TestEmptyClip(t *testing.T) {
	g, err := New(defaultConfig(), 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, polys := range [][]gsketch.Polygon{nil, {{}}, {{{X: 1, Y: 1}, {X: 400, Y: 300}}}} {
		g.Clip(polys...)
		if g.DomainSize() != 0 {
			t.Errorf("clip %v: domain size %d, want 0", polys, g.DomainSize())
		}
		if len(g.Walkers()) != 0 {
			t.Errorf("clip %v: %d walkers, want 0", polys, len(g.Walkers()))
		}
		if g.Step() {
			t.Error("step on empty domain reported progress")
		}
		if len(g.Paths()) != 0 {
			t.Error("empty domain has paths")
		}
	}
}

func TestGrowPreservesClaims(t *testing.T) {
	cfg := defaultConfig()
	cfg.Exhaustive = true
	g, err := New(cfg, 5)
	if err != nil {
		t.Fatal(err)
	}
	center := ms2.Vec{X: 240, Y: 180}
	small := gsketch.Rect(ms2.Box{Min: ms2.Sub(center, ms2.Vec{X: 80, Y: 60}), Max: ms2.Add(center, ms2.Vec{X: 80, Y: 60})})
	large := gsketch.Rect(ms2.Box{Min: ms2.Sub(center, ms2.Vec{X: 200, Y: 150}), Max: ms2.Add(center, ms2.Vec{X: 200, Y: 150})})
	g.Clip(small)
	g.Run()
	before := append([]Cell(nil), g.Cells()...)
	nWalkers := len(g.Walkers())
	oldPaths := make([][]int, nWalkers)
	for i, w := range g.Walkers() {
		oldPaths[i] = append([]int(nil), w.Path...)
	}

	added := g.Grow(small, large)
	if added == 0 {
		t.Fatal("grow added no cells")
	}
	g.Run()
	checkInvariants(t, g)

	for ci, old := range before {
		now := g.Cells()[ci]
		if !old.Free() && (now.Owner != old.Owner || now.Index != old.Index) {
			t.Fatalf("claimed cell (%d,%d) changed owner %d->%d", old.X, old.Y, old.Owner, now.Owner)
		}
		if old.Free() && !now.Free() && old.InDomain() {
			t.Fatalf("cell (%d,%d) of the old domain claimed after grow", old.X, old.Y)
		}
		if !now.Free() && !old.InDomain() && now.Generation() != 1 {
			t.Fatalf("new claim in generation %d", now.Generation())
		}
	}
	for i, path := range oldPaths {
		got := g.Walkers()[i].Path
		if len(got) != len(path) {
			t.Fatalf("walker %d path changed length %d->%d", i, len(path), len(got))
		}
	}
	if len(g.Walkers()) <= nWalkers {
		t.Fatal("no walkers seeded into grown domain")
	}
	if g.FreeCells() != 0 {
		t.Errorf("exhaustive grow left %d free cells", g.FreeCells())
	}
}

func TestMaxSteps(t *testing.T) {
	cfg := defaultConfig()
	cfg.MaxSteps = 5
	g, err := New(cfg, 3)
	if err != nil {
		t.Fatal(err)
	}
	g.Run()
	for _, w := range g.Walkers() {
		if w.Steps() > 5 {
			t.Errorf("walker %d took %d steps, budget 5", w.ID, w.Steps())
		}
	}
}

func TestDeterministic(t *testing.T) {
	cfg := defaultConfig()
	cfg.Connectivity = 8
	a, _ := New(cfg, 11)
	b, _ := New(cfg, 11)
	a.Run()
	b.Run()
	pa, pb := a.Paths(), b.Paths()
	if len(pa) != len(pb) {
		t.Fatal("path counts differ for same seed")
	}
	for i := range pa {
		if len(pa[i]) != len(pb[i]) {
			t.Fatalf("path %d differs for same seed", i)
		}
		for j := range pa[i] {
			if pa[i][j] != pb[i][j] {
				t.Fatalf("path %d point %d differs for same seed", i, j)
			}
		}
	}
}

func TestCellMapping(t *testing.T) {
	cfg := Config{Cols: 4, Rows: 2, Width: 100, Height: 60, Padding: 0.1, Walkers: 0}
	g, err := New(cfg, 0)
	if err != nil {
		t.Fatal(err)
	}
	const pad = 6 // 0.1 * min(100, 60)
	first := g.Cell(0, 0)
	last := g.Cell(3, 1)
	if first.Rect.Min != (ms2.Vec{X: pad, Y: pad}) {
		t.Errorf("first cell min %v", first.Rect.Min)
	}
	if d := ms2.Norm(ms2.Sub(last.Rect.Max, ms2.Vec{X: 100 - pad, Y: 60 - pad})); d > 1e-4 {
		t.Errorf("last cell max %v", last.Rect.Max)
	}
	// Neighboring rectangles share edges and do not overlap.
	for _, c := range g.Cells() {
		if c.X+1 < cfg.Cols {
			right := g.Cell(c.X+1, c.Y)
			if right.Rect.Min.X != c.Rect.Max.X {
				t.Errorf("gap between (%d,%d) and its right neighbor", c.X, c.Y)
			}
		}
		if !gsketch.BoxContains(c.Rect, c.Pos) {
			t.Errorf("cell center outside its rect")
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []Config{
		{},
		{Cols: 2, Rows: 2, Width: 10, Height: 10, Connectivity: 6},
		{Cols: 2, Rows: 2, Width: 10, Height: 10, Padding: 0.5},
		{Cols: 2, Rows: 2, Width: 10, Height: 10, Walkers: -1},
	}
	for i, cfg := range bad {
		if _, err := New(cfg, 0); err == nil {
			t.Errorf("config %d: expected error", i)
		}
	}
}
