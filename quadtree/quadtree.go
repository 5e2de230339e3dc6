// Package quadtree implements a point quadtree for radius and box neighbor queries.
// Trees are meant to be rebuilt from scratch every frame: [Tree.Reset] keeps the
// node and item storage so reconstruction does not allocate once warmed up.
package quadtree

import (
	"errors"

	"github.com/soypat/geometry/ms2"
)

// Defaults used when a zero capacity or depth is configured.
const (
	DefaultCapacity = 8
	DefaultMaxDepth = 8
)

// Tree is a point quadtree. Nodes are stored in a flat arena and refer to each other by index.
type Tree struct {
	capacity int
	maxDepth int
	nodes    []node
	items    []item
}

type item struct {
	pos ms2.Vec
	id  int
	// next is the index of the next item in the same node, -1 terminates.
	next int
}

type node struct {
	bb    ms2.Box
	depth int
	// child is the index of the first of 4 consecutive children, 0 for leaves.
	child int
	head  int
	count int
}

// New returns a tree over bounds. Zero capacity or maxDepth select the defaults.
func New(bounds ms2.Box, capacity, maxDepth int) (*Tree, error) {
	if capacity < 0 || maxDepth < 0 {
		return nil, errors.New("negative quadtree capacity or depth")
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if maxDepth == 0 {
		maxDepth = DefaultMaxDepth
	}
	t := &Tree{capacity: capacity, maxDepth: maxDepth}
	t.Reset(bounds)
	return t, nil
}

// Reset empties the tree and sets new root bounds, reusing allocated memory.
func (t *Tree) Reset(bounds ms2.Box) {
	t.nodes = append(t.nodes[:0], node{bb: bounds, head: -1})
	t.items = t.items[:0]
}

// Len returns the number of points stored.
func (t *Tree) Len() int { return len(t.items) }

// Bounds returns the root bounds.
func (t *Tree) Bounds() ms2.Box { return t.nodes[0].bb }

// Insert adds a point with an identifier. Points outside the root bounds are kept in the root node.
func (t *Tree) Insert(p ms2.Vec, id int) {
	idx := len(t.items)
	t.items = append(t.items, item{pos: p, id: id, next: -1})
	if !contains(t.nodes[0].bb, p) {
		t.link(0, idx)
		return
	}
	t.insert(0, idx)
}

func (t *Tree) insert(ni, itemIdx int) {
	for {
		n := &t.nodes[ni]
		if n.child == 0 {
			if n.count < t.capacity || n.depth >= t.maxDepth {
				t.link(ni, itemIdx)
				return
			}
			t.split(ni)
		}
		ni = t.childFor(ni, t.items[itemIdx].pos)
	}
}

func (t *Tree) link(ni, itemIdx int) {
	n := &t.nodes[ni]
	t.items[itemIdx].next = n.head
	n.head = itemIdx
	n.count++
}

// split subdivides leaf ni and moves its items into the new children.
func (t *Tree) split(ni int) {
	n := t.nodes[ni]
	c := n.bb.Center()
	first := len(t.nodes)
	quads := [4]ms2.Box{
		{Min: n.bb.Min, Max: c},
		{Min: ms2.Vec{X: c.X, Y: n.bb.Min.Y}, Max: ms2.Vec{X: n.bb.Max.X, Y: c.Y}},
		{Min: ms2.Vec{X: n.bb.Min.X, Y: c.Y}, Max: ms2.Vec{X: c.X, Y: n.bb.Max.Y}},
		{Min: c, Max: n.bb.Max},
	}
	for _, q := range quads {
		t.nodes = append(t.nodes, node{bb: q, depth: n.depth + 1, head: -1})
	}
	head := n.head
	t.nodes[ni].child = first
	t.nodes[ni].head = -1
	t.nodes[ni].count = 0
	for head != -1 {
		next := t.items[head].next
		p := t.items[head].pos
		if contains(n.bb, p) {
			t.link(t.childFor(ni, p), head)
		} else {
			t.link(ni, head) // Out of bounds points stay put.
		}
		head = next
	}
}

func (t *Tree) childFor(ni int, p ms2.Vec) int {
	n := &t.nodes[ni]
	c := n.bb.Center()
	idx := n.child
	if p.X >= c.X {
		idx++
	}
	if p.Y >= c.Y {
		idx += 2
	}
	return idx
}

// QueryRadius appends to dst the identifiers of all points within distance r of center, inclusive.
func (t *Tree) QueryRadius(center ms2.Vec, r float32, dst []int) []int {
	box := ms2.Box{
		Min: ms2.Vec{X: center.X - r, Y: center.Y - r},
		Max: ms2.Vec{X: center.X + r, Y: center.Y + r},
	}
	r2 := r * r
	return t.query(0, box, dst, func(p ms2.Vec) bool {
		return ms2.Norm2(ms2.Sub(p, center)) <= r2
	})
}

// QueryBox appends to dst the identifiers of all points inside box, boundary included.
func (t *Tree) QueryBox(box ms2.Box, dst []int) []int {
	return t.query(0, box, dst, func(p ms2.Vec) bool { return contains(box, p) })
}

func (t *Tree) query(ni int, box ms2.Box, dst []int, accept func(ms2.Vec) bool) []int {
	n := &t.nodes[ni]
	// Root may hold out-of-bounds points so it is always visited.
	if ni != 0 && !overlaps(n.bb, box) {
		return dst
	}
	for it := n.head; it != -1; it = t.items[it].next {
		if accept(t.items[it].pos) {
			dst = append(dst, t.items[it].id)
		}
	}
	if n.child != 0 {
		for i := range 4 {
			dst = t.query(n.child+i, box, dst, accept)
		}
	}
	return dst
}

func contains(bb ms2.Box, p ms2.Vec) bool {
	return p.X >= bb.Min.X && p.X <= bb.Max.X && p.Y >= bb.Min.Y && p.Y <= bb.Max.Y
}

func overlaps(a, b ms2.Box) bool {
	return a.Min.X <= b.Max.X && b.Min.X <= a.Max.X && a.Min.Y <= b.Max.Y && b.Min.Y <= a.Max.Y
}
