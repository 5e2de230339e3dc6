package nalee

import (
	"github.com/soypat/geometry/ms2"
)

// Cell is a grid coordinate mapped to a world-space rectangle.
type Cell struct {
	X, Y int
	// Pos is the center of Rect in world coordinates.
	Pos  ms2.Vec
	Rect ms2.Box
	// Owner is the ID of the walker that claimed the cell, -1 when free.
	Owner int
	// Index is the position of the cell in its owner's path.
	Index int
	// gen is the domain generation the cell joined in, -1 when outside the domain.
	gen int
}

// Free reports whether no walker claimed the cell.
func (c *Cell) Free() bool { return c.Owner < 0 }

// InDomain reports whether the cell is eligible for walking.
func (c *Cell) InDomain() bool { return c.gen >= 0 }

// Generation returns the domain generation the cell was added in or -1 if it is not in the domain.
// Cells of the initial domain are generation 0 and every [Grower.Grow] call increments it.
func (c *Cell) Generation() int { return c.gen }

var (
	neighbors4 = [...][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	neighbors8 = [...][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
)

// buildCells lays out a cols x rows grid over the padded area of a width x height canvas.
// Padding is a fraction of the smaller canvas side removed from every edge.
func buildCells(dst []Cell, cols, rows int, width, height, padding float32) []Cell {
	pad := padding * min(width, height)
	cw := (width - 2*pad) / float32(cols)
	ch := (height - 2*pad) / float32(rows)
	dst = dst[:0]
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			rect := ms2.Box{
				Min: ms2.Vec{X: pad + float32(x)*cw, Y: pad + float32(y)*ch},
				Max: ms2.Vec{X: pad + float32(x+1)*cw, Y: pad + float32(y+1)*ch},
			}
			dst = append(dst, Cell{
				X:     x,
				Y:     y,
				Pos:   rect.Center(),
				Rect:  rect,
				Owner: -1,
				gen:   -1,
			})
		}
	}
	return dst
}

// cellAt returns the index of the cell at x, y or -1 when outside the grid.
func (g *Grower) cellAt(x, y int) int {
	if x < 0 || y < 0 || x >= g.cfg.Cols || y >= g.cfg.Rows {
		return -1
	}
	return y*g.cfg.Cols + x
}

// Adjacent reports whether cells a and b are neighbors under the given connectivity.
func Adjacent(a, b *Cell, connectivity int) bool {
	dx, dy := abs(a.X-b.X), abs(a.Y-b.Y)
	if connectivity == 8 {
		return max(dx, dy) == 1
	}
	return dx+dy == 1
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
