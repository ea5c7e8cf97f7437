package trajectory

import (
	"math"
	"testing"

	"socialnav-sim/internal/common"

	. "github.com/smartystreets/goconvey/convey"
)

func line(n int) []common.Vector {
	route := make([]common.Vector, n)
	for i := range route {
		route[i] = common.NewVector(float64(i)*15, 100)
	}
	return route
}

func TestSmooth(t *testing.T) {
	Convey("Smoothing preserves length for any non-empty route", t, func() {
		for n := 1; n <= 40; n++ {
			So(Smooth(line(n), DefaultSigma), ShouldHaveLength, n)
		}
		So(Smooth(nil, DefaultSigma), ShouldBeEmpty)
	})

	Convey("A single point is unchanged", t, func() {
		p := []common.Vector{common.NewVector(12.5, 300.25)}
		out := Smooth(p, DefaultSigma)
		So(out[0].X, ShouldAlmostEqual, 12.5, 1e-12)
		So(out[0].Y, ShouldAlmostEqual, 300.25, 1e-12)
	})

	Convey("Two points do not fail and stay between the inputs", t, func() {
		out := Smooth([]common.Vector{common.NewVector(0, 0), common.NewVector(10, 20)}, DefaultSigma)
		So(out, ShouldHaveLength, 2)
		for _, p := range out {
			So(p.X, ShouldBeBetweenOrEqual, 0.0, 10.0)
			So(p.Y, ShouldBeBetweenOrEqual, 0.0, 20.0)
		}
	})

	Convey("A constant sequence is a fixed point", t, func() {
		route := make([]common.Vector, 9)
		for i := range route {
			route[i] = common.NewVector(7, -3)
		}
		for _, p := range Smooth(route, 3) {
			So(p.X, ShouldAlmostEqual, 7.0, 1e-9)
			So(p.Y, ShouldAlmostEqual, -3.0, 1e-9)
		}
	})

	Convey("The interior of a straight line is preserved", t, func() {
		route := line(30)
		out := Smooth(route, DefaultSigma)
		for i := 10; i < 20; i++ {
			So(out[i].X, ShouldAlmostEqual, route[i].X, 1e-9)
			So(out[i].Y, ShouldAlmostEqual, 100.0, 1e-9)
		}
	})

	Convey("A zigzag is flattened", t, func() {
		route := make([]common.Vector, 20)
		for i := range route {
			route[i] = common.NewVector(float64(i), float64(10*(i%2)))
		}
		out := Smooth(route, DefaultSigma)
		for i := 5; i < 15; i++ {
			So(math.Abs(out[i].Y-5), ShouldBeLessThan, 1.0)
		}
		So(Length(out), ShouldBeLessThan, Length(route))
	})

	Convey("The input is not modified and a non-positive sigma copies", t, func() {
		route := []common.Vector{common.NewVector(0, 0), common.NewVector(10, 0), common.NewVector(0, 0)}
		orig := append([]common.Vector(nil), route...)
		Smooth(route, DefaultSigma)
		So(route, ShouldResemble, orig)
		So(Smooth(route, 0), ShouldResemble, orig)
	})
}

func TestSmoothReference(t *testing.T) {
	cases := []struct {
		name  string
		in    []float64
		sigma float64
		want  []float64
	}{
		{"two points", []float64{0, 10}, 2, []float64{4.964032547487016, 5.035967452512985}},
		{"squares", []float64{0, 1, 4, 9, 16}, 1, []float64{0.5728870494358977, 1.9307676588016667, 4.951594464888317, 9.38819138056761, 13.156559446306511}},
		{"plateau", []float64{0, 15, 30, 30, 30, 45}, 2, []float64{14.483827763689137, 17.669736688056197, 22.758439874696766, 28.078704922473563, 32.329564956298356, 34.679725794785995}},
	}

	Convey("Smoothing matches reference Gaussian filter outputs", t, func() {
		for _, c := range cases {
			Convey(c.name, func() {
				route := make([]common.Vector, len(c.in))
				for i, x := range c.in {
					route[i] = common.NewVector(x, -x)
				}
				out := Smooth(route, c.sigma)
				So(out, ShouldHaveLength, len(c.want))
				for i, want := range c.want {
					So(out[i].X, ShouldAlmostEqual, want, 1e-9)
					So(out[i].Y, ShouldAlmostEqual, -want, 1e-9)
				}
			})
		}
	})
}

func TestReflect(t *testing.T) {
	cases := []struct{ i, n, want int }{
		{0, 4, 0}, {3, 4, 3}, {-1, 4, 0}, {-2, 4, 1}, {4, 4, 3}, {5, 4, 2},
		{-5, 4, 3}, {8, 4, 0}, {-3, 1, 0}, {2, 1, 0}, {-1, 2, 0}, {3, 2, 0},
	}
	for _, c := range cases {
		if got := reflect(c.i, c.n); got != c.want {
			t.Errorf("reflect(%d, %d) = %d, want %d", c.i, c.n, got, c.want)
		}
	}
}

func TestMetrics(t *testing.T) {
	Convey("Length sums segment lengths", t, func() {
		So(Length(line(5)), ShouldAlmostEqual, 60.0, 1e-9)
		So(Length(line(1)), ShouldEqual, 0.0)
	})

	Convey("Deviation is the RMS point distance", t, func() {
		a := []common.Vector{common.NewVector(0, 0), common.NewVector(0, 0)}
		b := []common.Vector{common.NewVector(3, 4), common.NewVector(0, 0)}
		d, err := Deviation(a, b)
		So(err, ShouldBeNil)
		So(d, ShouldAlmostEqual, math.Sqrt(25.0/2), 1e-12)

		_, err = Deviation(a, b[:1])
		So(err, ShouldNotBeNil)
	})
}
