package quadtree

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/soypat/geometry/ms2"
)

func TestQueryRadiusMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	bounds := ms2.NewBox(0, 0, 100, 100)
	tree, err := New(bounds, 4, 6)
	if err != nil {
		t.Fatal(err)
	}
	pts := make([]ms2.Vec, 500)
	for i := range pts {
		pts[i] = ms2.Vec{X: rng.Float32() * 100, Y: rng.Float32() * 100}
		tree.Insert(pts[i], i)
	}
	// Out of bounds points must still be found.
	pts = append(pts, ms2.Vec{X: 101, Y: 50}, ms2.Vec{X: -3, Y: -3})
	tree.Insert(pts[500], 500)
	tree.Insert(pts[501], 501)
	if tree.Len() != len(pts) {
		t.Fatalf("Len=%d, want %d", tree.Len(), len(pts))
	}

	var got []int
	for q := 0; q < 100; q++ {
		center := ms2.Vec{X: rng.Float32()*110 - 5, Y: rng.Float32()*110 - 5}
		r := rng.Float32() * 15
		got = tree.QueryRadius(center, r, got[:0])
		var want []int
		for i, p := range pts {
			if ms2.Norm2(ms2.Sub(p, center)) <= r*r {
				want = append(want, i)
			}
		}
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Fatalf("query %v r=%v: got %v, want %v", center, r, got, want)
		}
	}
}

func TestResetReuses(t *testing.T) {
	tree, _ := New(ms2.NewBox(0, 0, 10, 10), 1, 4)
	for i := range 50 {
		tree.Insert(ms2.Vec{X: float32(i % 10), Y: float32(i / 5)}, i)
	}
	tree.Reset(ms2.NewBox(0, 0, 1, 1))
	if tree.Len() != 0 {
		t.Fatal("reset tree not empty")
	}
	tree.Insert(ms2.Vec{X: 0.5, Y: 0.5}, 3)
	got := tree.QueryBox(ms2.NewBox(0, 0, 1, 1), nil)
	if len(got) != 1 || got[0] != 3 {
		t.Fatalf("got %v after reset", got)
	}
}

func TestCoincidentPointsRespectMaxDepth(t *testing.T) {
	tree, _ := New(ms2.NewBox(0, 0, 1, 1), 1, 3)
	for i := range 20 {
		tree.Insert(ms2.Vec{X: 0.25, Y: 0.25}, i)
	}
	got := tree.QueryRadius(ms2.Vec{X: 0.25, Y: 0.25}, 0, nil)
	if len(got) != 20 {
		t.Fatalf("found %d coincident points, want 20", len(got))
	}
	for _, n := range tree.nodes {
		if n.depth > 3 {
			t.Fatalf("node depth %d exceeds max depth", n.depth)
		}
	}
}
