package field

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// firstDiff is the second-order first derivative of a 1D sequence of n
// samples at index k. Interior points use central differences, the ends
// use one-sided three-point stencils.
func firstDiff(at func(k int) float64, k, n int, inv float64) float64 {
	switch {
	case n < 2:
		return 0
	case n == 2:
		return (at(1) - at(0)) * inv
	case k == 0:
		return (4*at(1) - 3*at(0) - at(2)) * inv * .5
	case k == n-1:
		return (3*at(k) - 4*at(k-1) + at(k-2)) * inv * .5
	default:
		return (at(k+1) - at(k-1)) * inv * .5
	}
}

// secondDiff is the second derivative counterpart of firstDiff.
func secondDiff(at func(k int) float64, k, n int, inv float64) float64 {
	switch {
	case n < 3:
		return 0
	case n == 3 || (k > 0 && k < n-1):
		k = min(max(k, 1), n-2)
		return (at(k-1) - 2*at(k) + at(k+1)) * inv * inv
	case k == 0:
		return (2*at(0) - 5*at(1) + 4*at(2) - at(3)) * inv * inv
	default:
		return (2*at(k) - 5*at(k-1) + 4*at(k-2) - at(k-3)) * inv * inv
	}
}

func alongAxis(f *Scalar[float64], c Coord, axis int) func(k int) float64 {
	return func(k int) float64 {
		p := c
		p[axis] = k
		return f.At(p)
	}
}

// FirstDerivative returns ∂f/∂axis at c.
func FirstDerivative(f *Scalar[float64], c Coord, axis int) float64 {
	g := f.Grid()
	return firstDiff(alongAxis(f, c, axis), c[axis], g.size[axis], g.invSpacing)
}

// SecondDerivative returns ∂²f/∂axis² at c.
func SecondDerivative(f *Scalar[float64], c Coord, axis int) float64 {
	g := f.Grid()
	return secondDiff(alongAxis(f, c, axis), c[axis], g.size[axis], g.invSpacing)
}

// MixedDerivative returns ∂²f/∂x∂y at c.
func MixedDerivative(f *Scalar[float64], c Coord) float64 {
	g := f.Grid()
	dx := func(k int) float64 {
		p := c
		p[1] = k
		return FirstDerivative(f, p, 0)
	}
	return firstDiff(dx, c[1], g.size[1], g.invSpacing)
}

// Gradient returns (∂f/∂x, ∂f/∂y) at c.
func Gradient(f *Scalar[float64], c Coord) r2.Vec {
	return r2.Vec{X: FirstDerivative(f, c, 0), Y: FirstDerivative(f, c, 1)}
}

// Curvature returns the mean curvature of the iso-line of f through c,
// positive where the region f < 0 is convex. Flat or degenerate points
// report zero.
func Curvature(f *Scalar[float64], c Coord) float64 {
	fx := FirstDerivative(f, c, 0)
	fy := FirstDerivative(f, c, 1)
	norm := math.Hypot(fx, fy)
	if norm < 1e-12 {
		return 0
	}
	fxx := SecondDerivative(f, c, 0)
	fyy := SecondDerivative(f, c, 1)
	fxy := MixedDerivative(f, c)
	return (fxx*fy*fy - 2*fx*fy*fxy + fyy*fx*fx) / (norm * norm * norm)
}
