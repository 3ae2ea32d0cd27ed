package field

import "gonum.org/v1/gonum/spatial/r2"

// Sampling kernels reconstruct a field at an arbitrary position. Stencil
// vertices outside the grid read the nearest valid vertex.

// LinearWeights returns the two linear basis weights for fraction s.
func LinearWeights(s float64) [2]float64 { return [2]float64{1 - s, s} }

// CubicWeights returns the four cubic Lagrange weights for fraction s,
// for samples at offsets -1, 0, 1 and 2.
func CubicWeights(s float64) [4]float64 {
	s2 := s * s
	s3 := s2 * s
	return [4]float64{
		-s/3 + s2/2 - s3/6,
		1 - s2 + (s3-s)/2,
		s + (s2-s3)/2,
		(s3 - s) / 6,
	}
}

// BiLerp samples f at pos from the four surrounding vertices.
func BiLerp(f *Scalar[float64], pos r2.Vec) float64 {
	g := f.Grid()
	lower := g.Lower(pos)
	frac := g.LowerFrac(pos, lower)
	wx := LinearWeights(frac.X)
	wy := LinearWeights(frac.Y)

	var v float64
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v += wx[i] * wy[j] * f.AtClamped(lower.Add(Coord{i, j}))
		}
	}
	return v
}

// BiCubic samples f at pos from the surrounding 4x4 stencil.
func BiCubic(f *Scalar[float64], pos r2.Vec) float64 {
	g := f.Grid()
	lower := g.Lower(pos)
	frac := g.LowerFrac(pos, lower)
	wx := CubicWeights(frac.X)
	wy := CubicWeights(frac.Y)

	var v float64
	for i := 0; i < 4; i++ {
		var col float64
		for j := 0; j < 4; j++ {
			col += wy[j] * f.AtClamped(lower.Add(Coord{i - 1, j - 1}))
		}
		v += wx[i] * col
	}
	return v
}

// BiLerpVector samples each component of v on its own grid.
func BiLerpVector(v *Vector[float64], pos r2.Vec) r2.Vec {
	return r2.Vec{X: BiLerp(v.Axis(0), pos), Y: BiLerp(v.Axis(1), pos)}
}

// BiCubicVector is the bicubic counterpart of BiLerpVector.
func BiCubicVector(v *Vector[float64], pos r2.Vec) r2.Vec {
	return r2.Vec{X: BiCubic(v.Axis(0), pos), Y: BiCubic(v.Axis(1), pos)}
}
