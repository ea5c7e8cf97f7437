// Package field builds the composite potential field that shapes the
// navigation reward: one contribution per person, summed over the grid.
package field

import (
	"context"
	"errors"
	"fmt"

	"socialnav-sim/internal/common"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrInvalidGridSize   = errors.New("grid size must be positive")
	ErrDimensionMismatch = errors.New("field dimensions do not match grid size")
	ErrNegativeField     = errors.New("field contains negative values")
)

// Source is anything that contributes a potential to the field: a position
// on the plane and the direction (degrees) it is facing.
type Source interface {
	GetPosition() common.Vector
	Orientation() float64
}

// Field is a square, read-only grid of non-negative potentials indexed [x][y].
// It is safe to share between simulators once built.
type Field struct {
	data *mat.Dense
	size int
	max  float64
}

// Zero returns the all-zero field of the given size.
func Zero(size int) (*Field, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGridSize, size)
	}
	return &Field{data: mat.NewDense(size, size, nil), size: size}, nil
}

// FromDense wraps a copy of d as a field. d must be square and non-negative.
func FromDense(d *mat.Dense) (*Field, error) {
	if d == nil || d.IsEmpty() {
		return nil, fmt.Errorf("%w: empty matrix", ErrDimensionMismatch)
	}
	r, c := d.Dims()
	if r != c {
		return nil, fmt.Errorf("%w: matrix is %dx%d, want square", ErrDimensionMismatch, r, c)
	}
	data := mat.DenseCopyOf(d)
	raw := data.RawMatrix().Data
	if lowest := floats.Min(raw); lowest < 0 {
		return nil, fmt.Errorf("%w: minimum %g", ErrNegativeField, lowest)
	}
	return &Field{data: data, size: r, max: floats.Max(raw)}, nil
}

// Build invokes gen once per source and sums the results element-wise into a
// gridSize x gridSize field. Generator calls run concurrently; the sum is
// accumulated in source order. With no sources the field is all zero.
func Build(ctx context.Context, gridSize int, sources []Source, target common.Vector, gen Generator) (*Field, error) {
	if gridSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGridSize, gridSize)
	}
	if gen == nil {
		gen = DefaultGenerator
	}

	parts := make([]*mat.Dense, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			part, err := gen(gridSize, gridSize, src.GetPosition(), src.Orientation(), target)
			if err != nil {
				return fmt.Errorf("generator failed for source %d: %w", i, err)
			}
			if part == nil || part.IsEmpty() {
				return fmt.Errorf("%w: source %d produced an empty field", ErrDimensionMismatch, i)
			}
			if r, c := part.Dims(); r != gridSize || c != gridSize {
				return fmt.Errorf("%w: source %d produced %dx%d, want %dx%d", ErrDimensionMismatch, i, r, c, gridSize, gridSize)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sum := mat.NewDense(gridSize, gridSize, nil)
	for _, part := range parts {
		sum.Add(sum, part)
	}
	return FromDense(sum)
}

// Size returns the side length of the field.
func (f *Field) Size() int { return f.size }

// At returns the potential at grid index (x, y).
func (f *Field) At(x, y int) float64 {
	return f.data.At(x, y)
}

// Max returns the largest potential in the field.
func (f *Field) Max() float64 { return f.max }

// Normalized returns At(x, y) scaled into [0, 1] by the field maximum.
// An all-zero field normalizes to 0 everywhere.
func (f *Field) Normalized(x, y int) float64 {
	if f.max == 0 {
		return 0
	}
	return f.data.At(x, y) / f.max
}
