package field

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func newTestTopology(t *testing.T) *Staggered {
	t.Helper()
	s, err := NewStaggered(2, 0.25, Coord{10, 8}, r2.Vec{X: 1, Y: -1})
	require.NoError(t, err)
	return s
}

func TestStaggeredGridLayout(t *testing.T) {
	s := newTestTopology(t)

	assert.Equal(t, Coord{11, 9}, s.NodeGrid().Size())
	assert.Equal(t, Coord{10, 8}, s.CellGrid().Size())
	assert.Equal(t, Coord{11, 8}, s.FaceGrid(0).Size())
	assert.Equal(t, Coord{10, 9}, s.FaceGrid(1).Size())

	// Node (0,0) sits at the domain corner, cells half a spacing inside
	n := s.NodeGrid().Origin()
	assert.InDelta(t, 1-10*0.25/2, n.X, 1e-12)
	assert.InDelta(t, -1-8*0.25/2, n.Y, 1e-12)
	c := s.CellGrid().Origin()
	assert.InDelta(t, n.X+0.125, c.X, 1e-12)
	assert.InDelta(t, n.Y+0.125, c.Y, 1e-12)

	// Each x-face lies halfway between the two cells it separates
	cell := Coord{3, 4}
	axis, face := FaceOfCell(cell, 1)
	require.Equal(t, 0, axis)
	fp := s.FaceGrid(0).PositionOf(face)
	cp := s.CellGrid().PositionOf(cell)
	assert.InDelta(t, cp.X+0.125, fp.X, 1e-12)
	assert.InDelta(t, cp.Y, fp.Y, 1e-12)
}

func TestStaggeredRejectsWideBoundary(t *testing.T) {
	_, err := NewStaggered(4, 0.1, Coord{8, 16}, r2.Vec{})
	if !errors.Is(err, ErrInvalidGrid) {
		t.Errorf("expected ErrInvalidGrid, got %v", err)
	}
}

func TestAdjacencyIsConsistent(t *testing.T) {
	cell := Coord{4, 5}
	for ord := 0; ord < 4; ord++ {
		axis, face := FaceOfCell(cell, ord)
		// The face's cell on the opposite side of the query is the cell itself
		assert.Equal(t, cell, AdjCellOfFace(axis, face, (ord&1)^1), "ord %d", ord)
		assert.Equal(t, NeighborOf(cell, ord), AdjCellOfFace(axis, face, ord&1), "ord %d", ord)
	}

	assert.Equal(t, Coord{4, 5}, NodeOfCell(cell, 0))
	assert.Equal(t, Coord{5, 5}, NodeOfCell(cell, 1))
	assert.Equal(t, Coord{4, 6}, NodeOfCell(cell, 2))
	assert.Equal(t, Coord{5, 6}, NodeOfCell(cell, 3))

	// Face endpoints run along the tangent axis
	assert.Equal(t, Coord{4, 6}, NodeOfFace(0, Coord{4, 5}, 1))
	assert.Equal(t, Coord{5, 5}, NodeOfFace(1, Coord{4, 5}, 1))

	// Bottom edge of a cell spans nodes 0 and 1, top edge nodes 2 and 3
	axis, edge := EdgeOfCell(cell, 1)
	assert.Equal(t, 0, axis)
	assert.Equal(t, NodeOfCell(cell, 2), NodeOfEdge(axis, edge, 0))
	assert.Equal(t, NodeOfCell(cell, 3), NodeOfEdge(axis, edge, 1))
}

func TestBoundaryFaces(t *testing.T) {
	s := newTestTopology(t)
	assert.True(t, s.IsBoundaryFace(0, Coord{2, 4}))
	assert.False(t, s.IsBoundaryFace(0, Coord{3, 4}))
	assert.True(t, s.IsBoundaryFace(0, Coord{8, 4}))
	assert.True(t, s.IsBoundaryFace(1, Coord{4, 6}))
	assert.True(t, s.IsBoundaryFace(1, Coord{4, 99}))
}

func TestDomainBox(t *testing.T) {
	s := newTestTopology(t)
	o := s.DomainOrigin()
	l := s.DomainLengths()
	assert.InDelta(t, s.NodeGrid().Origin().X+0.5, o.X, 1e-12)
	assert.InDelta(t, 6*0.25, l.X, 1e-12)
	assert.InDelta(t, 4*0.25, l.Y, 1e-12)

	r := s.RefinedCellGrid(4)
	assert.Equal(t, Coord{40, 32}, r.Size())
	assert.InDelta(t, 0.25/4, r.Spacing(), 1e-12)
}
