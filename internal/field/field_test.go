package field

import (
	"context"
	"errors"
	"testing"

	"socialnav-sim/internal/common"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/mat"
)

type person struct {
	pos common.Vector
	ori float64
}

func (p person) GetPosition() common.Vector { return p.pos }
func (p person) Orientation() float64 { return p.ori }

// constGenerator fills every cell with the person's x coordinate, which makes
// sums easy to predict.
func constGenerator(rows, cols int, pos common.Vector, _ float64, _ common.Vector) (*mat.Dense, error) {
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out.Set(i, j, pos.X)
		}
	}
	return out, nil
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	target := common.NewVector(5, 5)

	Convey("When no sources are supplied", t, func() {
		f, err := Build(ctx, 8, nil, target, constGenerator)
		So(err, ShouldBeNil)
		Convey("The field is all zero", func() {
			So(f.Size(), ShouldEqual, 8)
			So(f.Max(), ShouldEqual, 0.0)
			So(f.At(3, 4), ShouldEqual, 0.0)
			So(f.Normalized(3, 4), ShouldEqual, 0.0)
		})
	})

	Convey("When several sources are supplied", t, func() {
		sources := []Source{
			person{common.NewVector(1, 0), 0},
			person{common.NewVector(2, 0), 90},
			person{common.NewVector(4, 0), -90},
		}
		f, err := Build(ctx, 6, sources, target, constGenerator)
		So(err, ShouldBeNil)
		Convey("Contributions are summed element-wise", func() {
			So(f.At(0, 0), ShouldEqual, 7.0)
			So(f.At(5, 2), ShouldEqual, 7.0)
			So(f.Max(), ShouldEqual, 7.0)
			So(f.Normalized(5, 5), ShouldEqual, 1.0)
		})
	})

	Convey("When the generator returns the wrong dimensions", t, func() {
		bad := func(rows, cols int, _ common.Vector, _ float64, _ common.Vector) (*mat.Dense, error) {
			return mat.NewDense(rows-1, cols, nil), nil
		}
		f, err := Build(ctx, 6, []Source{person{}}, target, bad)
		Convey("Construction fails with a dimension mismatch", func() {
			So(f, ShouldBeNil)
			So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
		})
	})

	Convey("When the generator returns nil", t, func() {
		nilGen := func(int, int, common.Vector, float64, common.Vector) (*mat.Dense, error) { return nil, nil }
		_, err := Build(ctx, 6, []Source{person{}}, target, nilGen)
		So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
	})

	Convey("When the generator produces negative values", t, func() {
		neg := func(rows, cols int, _ common.Vector, _ float64, _ common.Vector) (*mat.Dense, error) {
			out := mat.NewDense(rows, cols, nil)
			out.Set(0, 0, -1)
			return out, nil
		}
		_, err := Build(ctx, 4, []Source{person{}}, target, neg)
		So(errors.Is(err, ErrNegativeField), ShouldBeTrue)
	})

	Convey("When the grid size is not positive", t, func() {
		_, err := Build(ctx, 0, nil, target, nil)
		So(errors.Is(err, ErrInvalidGridSize), ShouldBeTrue)
	})

	Convey("When the generator fails", t, func() {
		boom := errors.New("boom")
		failing := func(int, int, common.Vector, float64, common.Vector) (*mat.Dense, error) { return nil, boom }
		_, err := Build(ctx, 4, []Source{person{}, person{}}, target, failing)
		So(errors.Is(err, boom), ShouldBeTrue)
	})
}

func TestFromDense(t *testing.T) {
	Convey("A non-square matrix is rejected", t, func() {
		_, err := FromDense(mat.NewDense(3, 4, nil))
		So(errors.Is(err, ErrDimensionMismatch), ShouldBeTrue)
	})

	Convey("The field does not alias its input", t, func() {
		d := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
		f, err := FromDense(d)
		So(err, ShouldBeNil)
		d.Set(0, 0, 100)
		So(f.At(0, 0), ShouldEqual, 1.0)
		So(f.At(1, 0), ShouldEqual, 3.0)
		So(f.Max(), ShouldEqual, 4.0)
	})
}

func TestGaussianGenerator(t *testing.T) {
	gen := NewGaussianGenerator(GaussianParams{Amplitude: 1, FrontSpread: 6, SideSpread: 2, RearSpread: 2})
	pos := common.NewVector(20, 20)
	target := common.NewVector(39, 39)

	Convey("Given a person facing along +x", t, func() {
		out, err := gen(40, 40, pos, 0, target)
		So(err, ShouldBeNil)
		r, c := out.Dims()
		So(r, ShouldEqual, 40)
		So(c, ShouldEqual, 40)

		Convey("The peak is at the person's position", func() {
			So(out.At(20, 20), ShouldAlmostEqual, 1.0, 1e-12)
		})

		Convey("The potential reaches further ahead than behind", func() {
			So(out.At(25, 20), ShouldBeGreaterThan, out.At(15, 20))
		})

		Convey("The potential reaches further ahead than to the side", func() {
			So(out.At(24, 20), ShouldBeGreaterThan, out.At(20, 24))
		})

		Convey("Every value is non-negative", func() {
			for x := 0; x < r; x++ {
				for y := 0; y < c; y++ {
					So(out.At(x, y) >= 0, ShouldBeTrue)
				}
			}
		})
	})

	Convey("Orientation is in degrees", t, func() {
		out, err := gen(40, 40, pos, 90, target)
		So(err, ShouldBeNil)
		So(out.At(20, 25), ShouldBeGreaterThan, out.At(20, 15))
	})

	Convey("Goal damping zeroes the potential at the target", t, func() {
		damped := NewGaussianGenerator(GaussianParams{Amplitude: 1, FrontSpread: 6, SideSpread: 6, RearSpread: 6, GoalRadius: 3})
		out, err := damped(40, 40, pos, 0, pos)
		So(err, ShouldBeNil)
		So(out.At(20, 20), ShouldAlmostEqual, 0.0, 1e-12)
	})

	Convey("Non-positive spreads are rejected", t, func() {
		_, err := NewGaussianGenerator(GaussianParams{Amplitude: 1})(4, 4, pos, 0, target)
		So(err, ShouldNotBeNil)
	})
}
