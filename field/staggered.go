package field

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Staggered is a marker-and-cell layout over a square domain. It owns the
// node, cell and face grids; fields built on it borrow them.
//
// Ordinals used by the adjacency helpers:
//   - cell faces and edges: ord>>1 is the axis, ord&1 the positive side
//   - cell nodes: bit 0 steps along x, bit 1 along y
//   - face and edge endpoints: ord&1 steps along the tangent axis
type Staggered struct {
	boundaryWidth int
	spacing       float64
	resolution    Coord
	center        r2.Vec

	nodeGrid  Grid
	cellGrid  Grid
	faceGrids [2]Grid
}

// NewStaggered builds a topology with res cells per axis around center.
// boundaryWidth cells on each side are reserved for the domain wall.
func NewStaggered(boundaryWidth int, spacing float64, res Coord, center r2.Vec) (*Staggered, error) {
	if !(spacing > 0) {
		return nil, fmt.Errorf("%w: spacing %v", ErrInvalidGrid, spacing)
	}
	if res[0] <= 0 || res[1] <= 0 {
		return nil, fmt.Errorf("%w: resolution %v", ErrInvalidGrid, res)
	}
	if boundaryWidth < 0 || 2*boundaryWidth >= res[0] || 2*boundaryWidth >= res[1] {
		return nil, fmt.Errorf("%w: boundary width %d for resolution %v", ErrInvalidGrid, boundaryWidth, res)
	}

	origin := r2.Vec{
		X: center.X - float64(res[0])*spacing/2,
		Y: center.Y - float64(res[1])*spacing/2,
	}
	half := spacing / 2
	s := &Staggered{
		boundaryWidth: boundaryWidth,
		spacing:       spacing,
		resolution:    res,
		center:        center,
		nodeGrid:      newGrid(spacing, res.Add(Coord{1, 1}), origin),
		cellGrid:      newGrid(spacing, res, r2.Vec{X: origin.X + half, Y: origin.Y + half}),
	}
	s.faceGrids[0] = newGrid(spacing, res.Add(Unit(0)), r2.Vec{X: origin.X, Y: origin.Y + half})
	s.faceGrids[1] = newGrid(spacing, res.Add(Unit(1)), r2.Vec{X: origin.X + half, Y: origin.Y})
	return s, nil
}

func (s *Staggered) BoundaryWidth() int { return s.boundaryWidth }
func (s *Staggered) Spacing() float64   { return s.spacing }
func (s *Staggered) InvSpacing() float64 {
	return s.cellGrid.invSpacing
}
func (s *Staggered) Resolution() Coord { return s.resolution }
func (s *Staggered) Center() r2.Vec    { return s.center }

// NodeGrid has one vertex per cell corner.
func (s *Staggered) NodeGrid() *Grid { return &s.nodeGrid }

// CellGrid has one vertex per cell center.
func (s *Staggered) CellGrid() *Grid { return &s.cellGrid }

// FaceGrids holds the x-face and y-face grids. Edges share these grids:
// the edge of a cell along axis a coincides with the face of axis a^1.
func (s *Staggered) FaceGrids() *[2]Grid { return &s.faceGrids }

// FaceGrid returns the face grid of axis.
func (s *Staggered) FaceGrid(axis int) *Grid { return &s.faceGrids[axis] }

// RefinedCellGrid returns a cell grid covering the same domain with factor
// times as many cells per axis.
func (s *Staggered) RefinedCellGrid(factor int) Grid {
	h := s.spacing / float64(factor)
	origin := s.nodeGrid.origin
	return newGrid(h, s.resolution.Scale(factor), r2.Vec{X: origin.X + h/2, Y: origin.Y + h/2})
}

// DomainOrigin is the lower corner of the region inside the boundary band.
func (s *Staggered) DomainOrigin() r2.Vec {
	bw := float64(s.boundaryWidth) * s.spacing
	return r2.Vec{X: s.nodeGrid.origin.X + bw, Y: s.nodeGrid.origin.Y + bw}
}

// DomainLengths is the extent of the region inside the boundary band.
func (s *Staggered) DomainLengths() r2.Vec {
	return r2.Vec{
		X: float64(s.resolution[0]-2*s.boundaryWidth) * s.spacing,
		Y: float64(s.resolution[1]-2*s.boundaryWidth) * s.spacing,
	}
}

// NodeOfCell returns corner ord of cell.
func NodeOfCell(cell Coord, ord int) Coord {
	return cell.Add(Coord{ord & 1, ord >> 1 & 1})
}

// FaceOfCell returns the axis and face coordinate of face ord of cell.
func FaceOfCell(cell Coord, ord int) (int, Coord) {
	axis := ord >> 1
	return axis, cell.Add(Unit(axis).Scale(ord & 1))
}

// EdgeOfCell returns the axis and edge coordinate of edge ord of cell.
// Edge axis a runs along a and is offset along a^1.
func EdgeOfCell(cell Coord, ord int) (int, Coord) {
	axis := ord >> 1
	return axis, cell.Add(Unit(axis ^ 1).Scale(ord & 1))
}

// NodeOfFace returns endpoint ord of a face.
func NodeOfFace(axis int, face Coord, ord int) Coord {
	return face.Add(Unit(axis ^ 1).Scale(ord & 1))
}

// NodeOfEdge returns endpoint ord of an edge.
func NodeOfEdge(axis int, edge Coord, ord int) Coord {
	return edge.Add(Unit(axis).Scale(ord & 1))
}

// AdjCellOfFace returns the cell on side ord of a face: ord 0 is the
// negative side, ord 1 the positive side.
func AdjCellOfFace(axis int, face Coord, ord int) Coord {
	return face.Sub(Unit(axis).Scale((ord & 1) ^ 1))
}

// IsBoundaryFace reports whether face lies on or outside the domain wall.
func (s *Staggered) IsBoundaryFace(axis int, face Coord) bool {
	if !s.faceGrids[axis].IsValid(face) {
		return true
	}
	return face[axis] <= s.boundaryWidth || face[axis] >= s.resolution[axis]-s.boundaryWidth
}
