package field

import "io"

// Vector is a pair of scalar fields, one per axis, each on its own grid.
// Velocity uses the face grids of a Staggered topology, so component 0
// lives on x-faces and component 1 on y-faces.
type Vector[T Number] struct {
	grids *[2]Grid
	comps [2]*Scalar[T]
}

// NewVector allocates both components filled with value.
func NewVector[T Number](grids *[2]Grid, value [2]T) *Vector[T] {
	return &Vector[T]{
		grids: grids,
		comps: [2]*Scalar[T]{
			NewScalar(&grids[0], value[0]),
			NewScalar(&grids[1], value[1]),
		},
	}
}

// Grids returns the per-axis grids.
func (v *Vector[T]) Grids() *[2]Grid { return v.grids }

// Axis returns the component field for axis.
func (v *Vector[T]) Axis(axis int) *Scalar[T] { return v.comps[axis] }

// Fill sets every component value.
func (v *Vector[T]) Fill(value [2]T) {
	v.comps[0].Fill(value[0])
	v.comps[1].Fill(value[1])
}

// Assign copies src component-wise.
func (v *Vector[T]) Assign(src *Vector[T]) error {
	for axis := 0; axis < 2; axis++ {
		if err := v.comps[axis].Assign(src.comps[axis]); err != nil {
			return err
		}
	}
	return nil
}

// Clone returns a deep copy.
func (v *Vector[T]) Clone() *Vector[T] {
	return &Vector[T]{
		grids: v.grids,
		comps: [2]*Scalar[T]{v.comps[0].Clone(), v.comps[1].Clone()},
	}
}

// MaxAbsComponent returns the largest absolute component value.
func (v *Vector[T]) MaxAbsComponent() T {
	return max(v.comps[0].MaxAbs(), v.comps[1].MaxAbs())
}

// Save dumps the x component followed by the y component.
func (v *Vector[T]) Save(w io.Writer) error {
	for axis := 0; axis < 2; axis++ {
		if err := v.comps[axis].Save(w); err != nil {
			return err
		}
	}
	return nil
}

// Load reads a dump written by Save.
func (v *Vector[T]) Load(r io.Reader) error {
	for axis := 0; axis < 2; axis++ {
		if err := v.comps[axis].Load(r); err != nil {
			return err
		}
	}
	return nil
}
