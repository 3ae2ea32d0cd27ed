package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestDerivativesOfQuadratic(t *testing.T) {
	g, _ := NewGrid(0.1, Coord{12, 10}, r2.Vec{X: -0.5, Y: -0.4})
	f := NewScalar(&g, 0.0)
	// All stencils are exact for quadratics, including the one-sided ends
	fillWith(f, func(p r2.Vec) float64 { return 3*p.X*p.X + p.X*p.Y - 2*p.Y*p.Y + p.X })

	g.ForEach(func(c Coord) {
		p := g.PositionOf(c)
		assert.InDelta(t, 6*p.X+p.Y+1, FirstDerivative(f, c, 0), 1e-9, "fx at %v", c)
		assert.InDelta(t, p.X-4*p.Y, FirstDerivative(f, c, 1), 1e-9, "fy at %v", c)
		assert.InDelta(t, 6.0, SecondDerivative(f, c, 0), 1e-6, "fxx at %v", c)
		assert.InDelta(t, -4.0, SecondDerivative(f, c, 1), 1e-6, "fyy at %v", c)
		assert.InDelta(t, 1.0, MixedDerivative(f, c), 1e-6, "fxy at %v", c)
	})
}

func TestCurvatureOfCircle(t *testing.T) {
	g, _ := NewGrid(0.02, Coord{101, 101}, r2.Vec{X: -1, Y: -1})
	f := NewScalar(&g, 0.0)
	fillWith(f, func(p r2.Vec) float64 { return math.Hypot(p.X, p.Y) - 0.5 })

	// Vertex on the circle's iso-line at radius 0.5
	c := Coord{75, 50}
	k := Curvature(f, c)
	if math.Abs(k-2) > 0.05 {
		t.Errorf("expected curvature near 2, got %v", k)
	}

	// Flat field has no curvature
	flat := NewScalar(&g, 1.0)
	assert.Equal(t, 0.0, Curvature(flat, c))
}
