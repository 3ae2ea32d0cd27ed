// Package field provides the uniform grids, staggered topology and dense
// per-vertex storage that every solver pass operates on.
package field

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// ErrInvalidGrid is returned when a grid or topology is built from
// non-positive spacing or size.
var ErrInvalidGrid = errors.New("field: invalid grid")

// Coord addresses a grid vertex by integer index along each axis.
type Coord [2]int

// Unit returns the unit coordinate offset along axis.
func Unit(axis int) Coord {
	var c Coord
	c[axis] = 1
	return c
}

// Add returns c + o.
func (c Coord) Add(o Coord) Coord { return Coord{c[0] + o[0], c[1] + o[1]} }

// Sub returns c - o.
func (c Coord) Sub(o Coord) Coord { return Coord{c[0] - o[0], c[1] - o[1]} }

// Scale returns c * k.
func (c Coord) Scale(k int) Coord { return Coord{c[0] * k, c[1] * k} }

// Component returns the axis component of a position.
func Component(v r2.Vec, axis int) float64 {
	if axis == 0 {
		return v.X
	}
	return v.Y
}

// AxisVec returns a vector with value on axis and zero elsewhere.
func AxisVec(axis int, value float64) r2.Vec {
	if axis == 0 {
		return r2.Vec{X: value}
	}
	return r2.Vec{Y: value}
}

// Neighbor ordinals address the 4-neighborhood of a vertex:
// ord>>1 is the axis, ord&1 selects the positive side.
const NumNeighbors = 4

// NeighborAxis returns the axis of neighbor ordinal ord.
func NeighborAxis(ord int) int { return ord >> 1 }

// NeighborSide returns -1 or +1 for neighbor ordinal ord.
func NeighborSide(ord int) int {
	if ord&1 != 0 {
		return 1
	}
	return -1
}

// NeighborOf returns the neighbor of c with ordinal ord.
func NeighborOf(c Coord, ord int) Coord {
	return c.Add(Unit(NeighborAxis(ord)).Scale(NeighborSide(ord)))
}

// Grid is an immutable uniform lattice of vertices. Two grids are equal when
// spacing, size and origin all match.
type Grid struct {
	spacing    float64
	invSpacing float64
	size       Coord
	origin     r2.Vec
}

// NewGrid creates a grid with the given spacing, vertex count per axis and
// position of vertex (0,0).
func NewGrid(spacing float64, size Coord, origin r2.Vec) (Grid, error) {
	if !(spacing > 0) || math.IsInf(spacing, 1) {
		return Grid{}, fmt.Errorf("%w: spacing %v", ErrInvalidGrid, spacing)
	}
	if size[0] <= 0 || size[1] <= 0 {
		return Grid{}, fmt.Errorf("%w: size %v", ErrInvalidGrid, size)
	}
	return newGrid(spacing, size, origin), nil
}

func newGrid(spacing float64, size Coord, origin r2.Vec) Grid {
	return Grid{
		spacing:    spacing,
		invSpacing: 1 / spacing,
		size:       size,
		origin:     origin,
	}
}

func (g *Grid) Spacing() float64    { return g.spacing }
func (g *Grid) InvSpacing() float64 { return g.invSpacing }
func (g *Grid) Size() Coord         { return g.size }
func (g *Grid) Origin() r2.Vec      { return g.origin }
func (g *Grid) NumVertices() int    { return g.size[0] * g.size[1] }

// Equal reports structural equality.
func (g *Grid) Equal(o *Grid) bool {
	return g.spacing == o.spacing && g.size == o.size && g.origin == o.origin
}

// IsInside reports whether c lies at least offset vertices inside the grid.
func (g *Grid) IsInside(c Coord, offset int) bool {
	return c[0] >= offset && c[1] >= offset &&
		c[0] < g.size[0]-offset && c[1] < g.size[1]-offset
}

// IsValid reports whether c addresses a vertex of the grid.
func (g *Grid) IsValid(c Coord) bool { return g.IsInside(c, 0) }

// Clamp moves c onto the nearest valid vertex.
func (g *Grid) Clamp(c Coord) Coord {
	for axis := 0; axis < 2; axis++ {
		if c[axis] < 0 {
			c[axis] = 0
		} else if c[axis] >= g.size[axis] {
			c[axis] = g.size[axis] - 1
		}
	}
	return c
}

// IndexOf maps a coordinate to its slot in the backing array.
func (g *Grid) IndexOf(c Coord) int { return c[1] + g.size[1]*c[0] }

// CoordOf is the inverse of IndexOf.
func (g *Grid) CoordOf(index int) Coord {
	return Coord{index / g.size[1], index % g.size[1]}
}

// PositionOf returns the world position of vertex c.
func (g *Grid) PositionOf(c Coord) r2.Vec {
	return r2.Vec{
		X: g.origin.X + float64(c[0])*g.spacing,
		Y: g.origin.Y + float64(c[1])*g.spacing,
	}
}

// Lower returns the vertex at the lower-left corner of the cell holding pos.
func (g *Grid) Lower(pos r2.Vec) Coord {
	return Coord{
		int(math.Floor((pos.X - g.origin.X) * g.invSpacing)),
		int(math.Floor((pos.Y - g.origin.Y) * g.invSpacing)),
	}
}

// LowerFrac returns the offset of pos from lower in units of spacing.
func (g *Grid) LowerFrac(pos r2.Vec, lower Coord) r2.Vec {
	p := g.PositionOf(lower)
	return r2.Vec{
		X: (pos.X - p.X) * g.invSpacing,
		Y: (pos.Y - p.Y) * g.invSpacing,
	}
}

// ForEach visits every vertex in index order.
func (g *Grid) ForEach(fn func(c Coord)) {
	for i := 0; i < g.size[0]; i++ {
		for j := 0; j < g.size[1]; j++ {
			fn(Coord{i, j})
		}
	}
}
