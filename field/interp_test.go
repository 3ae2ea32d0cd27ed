package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r2"
)

func fillWith(f *Scalar[float64], fn func(p r2.Vec) float64) {
	g := f.Grid()
	g.ForEach(func(c Coord) { f.Set(c, fn(g.PositionOf(c))) })
}

func TestCubicWeightsPartitionUnity(t *testing.T) {
	for _, s := range []float64{0, 0.1, 0.5, 0.77, 1} {
		w := CubicWeights(s)
		assert.InDelta(t, 1.0, w[0]+w[1]+w[2]+w[3], 1e-12, "s=%v", s)
	}
	// Interpolating: at s=0 only the lower sample contributes
	w := CubicWeights(0)
	assert.Equal(t, [4]float64{0, 1, 0, 0}, w)
}

func TestBiLerpReproducesBilinear(t *testing.T) {
	g, _ := NewGrid(0.5, Coord{8, 8}, r2.Vec{X: -1, Y: -1})
	f := NewScalar(&g, 0.0)
	bilinear := func(p r2.Vec) float64 { return 2*p.X - 3*p.Y + p.X*p.Y + 1 }
	fillWith(f, bilinear)

	for _, p := range []r2.Vec{{X: 0.1, Y: 0.2}, {X: -0.7, Y: 1.3}, {X: 1.9, Y: 0.05}} {
		assert.InDelta(t, bilinear(p), BiLerp(f, p), 1e-12)
	}
}

func TestBiCubicReproducesCubic(t *testing.T) {
	g, _ := NewGrid(0.25, Coord{16, 16}, r2.Vec{})
	f := NewScalar(&g, 0.0)
	cubic := func(p r2.Vec) float64 { return p.X*p.X*p.X - 2*p.Y*p.Y + p.X*p.Y }
	fillWith(f, cubic)

	// Interior points where the full 4x4 stencil is in range
	for _, p := range []r2.Vec{{X: 1.1, Y: 2.3}, {X: 2.45, Y: 0.6}, {X: 3.0, Y: 3.0}} {
		assert.InDelta(t, cubic(p), BiCubic(f, p), 1e-9)
	}
}

func TestSamplingClampsOutsideGrid(t *testing.T) {
	g, _ := NewGrid(1, Coord{4, 4}, r2.Vec{})
	f := NewScalar(&g, 7.0)

	for _, p := range []r2.Vec{{X: -10, Y: 1}, {X: 50, Y: 50}, {X: 1.5, Y: -3}} {
		v := BiLerp(f, p)
		if math.Abs(v-7) > 1e-12 {
			t.Errorf("BiLerp(%v) = %v, expected 7", p, v)
		}
		v = BiCubic(f, p)
		if math.Abs(v-7) > 1e-12 {
			t.Errorf("BiCubic(%v) = %v, expected 7", p, v)
		}
	}
}

func TestBiLerpVectorUsesFaceGrids(t *testing.T) {
	s, _ := NewStaggered(1, 0.1, Coord{10, 10}, r2.Vec{})
	v := NewVector(s.FaceGrids(), [2]float64{})
	fillWith(v.Axis(0), func(p r2.Vec) float64 { return p.X })
	fillWith(v.Axis(1), func(p r2.Vec) float64 { return 2 * p.Y })

	p := r2.Vec{X: 0.13, Y: -0.21}
	got := BiLerpVector(v, p)
	assert.InDelta(t, p.X, got.X, 1e-12)
	assert.InDelta(t, 2*p.Y, got.Y, 1e-12)
}
