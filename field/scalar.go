package field

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ErrIncompatibleGrid is returned when data is copied between fields that
// live on structurally different grids.
var ErrIncompatibleGrid = errors.New("field: incompatible grids")

// Number is the set of element types a field may store.
type Number interface {
	~int | ~int8 | ~int32 | ~int64 | ~uint8 | ~uint32 | ~float32 | ~float64
}

// Scalar is a dense array with one value per vertex of a grid. The grid is
// borrowed; the topology that created it must outlive the field.
type Scalar[T Number] struct {
	grid *Grid
	Data []T
}

// NewScalar allocates a field on grid filled with value.
func NewScalar[T Number](grid *Grid, value T) *Scalar[T] {
	data := make([]T, grid.NumVertices())
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return &Scalar[T]{grid: grid, Data: data}
}

// Grid returns the grid the field is defined on.
func (f *Scalar[T]) Grid() *Grid { return f.grid }

// At returns the value at c. c must be valid.
func (f *Scalar[T]) At(c Coord) T { return f.Data[f.grid.IndexOf(c)] }

// AtClamped returns the value at the valid vertex nearest to c.
func (f *Scalar[T]) AtClamped(c Coord) T { return f.Data[f.grid.IndexOf(f.grid.Clamp(c))] }

// Set stores v at c.
func (f *Scalar[T]) Set(c Coord, v T) { f.Data[f.grid.IndexOf(c)] = v }

// Fill sets every value to v.
func (f *Scalar[T]) Fill(v T) {
	for i := range f.Data {
		f.Data[i] = v
	}
}

// Assign copies src into f. Both fields must share a grid layout.
func (f *Scalar[T]) Assign(src *Scalar[T]) error {
	if !f.grid.Equal(src.grid) {
		return fmt.Errorf("%w: size %v vs %v", ErrIncompatibleGrid, f.grid.Size(), src.grid.Size())
	}
	copy(f.Data, src.Data)
	return nil
}

// Clone returns a deep copy sharing the same grid.
func (f *Scalar[T]) Clone() *Scalar[T] {
	data := make([]T, len(f.Data))
	copy(data, f.Data)
	return &Scalar[T]{grid: f.grid, Data: data}
}

// MaxAbs returns the largest absolute value, or zero for an empty field.
func (f *Scalar[T]) MaxAbs() T {
	var m T
	for _, v := range f.Data {
		if v < 0 {
			v = -v
		}
		if v > m {
			m = v
		}
	}
	return m
}

// Save writes the raw backing array in little-endian order. No grid
// metadata is written; T must have a fixed size.
func (f *Scalar[T]) Save(w io.Writer) error {
	if err := binary.Write(w, binary.LittleEndian, f.Data); err != nil {
		return fmt.Errorf("saving field: %w", err)
	}
	return nil
}

// Load reads a dump written by Save into the existing backing array.
func (f *Scalar[T]) Load(r io.Reader) error {
	if err := binary.Read(r, binary.LittleEndian, f.Data); err != nil {
		return fmt.Errorf("loading field: %w", err)
	}
	return nil
}
