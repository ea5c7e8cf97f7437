package field

import (
	"fmt"
	"math"

	"socialnav-sim/internal/common"

	"gonum.org/v1/gonum/mat"
)

// Generator returns the rows x cols potential contributed by one person at
// position facing orientation (degrees), given the navigation target.
// Implementations must be deterministic for identical inputs.
type Generator func(rows, cols int, position common.Vector, orientation float64, target common.Vector) (*mat.Dense, error)

// GaussianParams configures the personal-space model used by NewGaussianGenerator.
// Spreads are standard deviations in grid units.
type GaussianParams struct {
	Amplitude   float64
	FrontSpread float64
	SideSpread  float64
	RearSpread  float64
	// GoalRadius damps the potential around the target so that the goal
	// itself is never penalized. Zero disables damping.
	GoalRadius float64
}

// DefaultGaussianParams returns personal-space spreads for a grid whose scale
// is cellsPerMeter grid units per meter.
func DefaultGaussianParams(cellsPerMeter float64) GaussianParams {
	return GaussianParams{
		Amplitude:   1.0,
		FrontSpread: 1.2 * cellsPerMeter,
		SideSpread:  0.6 * cellsPerMeter,
		RearSpread:  0.45 * cellsPerMeter,
		GoalRadius:  0.5 * cellsPerMeter,
	}
}

// DefaultGenerator is the Gaussian personal-space model at the reference scale
// of 33 grid units per meter.
var DefaultGenerator = NewGaussianGenerator(DefaultGaussianParams(33))

// NewGaussianGenerator returns an asymmetric Gaussian generator: the potential
// decays along the facing direction with FrontSpread ahead of the person and
// RearSpread behind, and laterally with SideSpread.
func NewGaussianGenerator(p GaussianParams) Generator {
	return func(rows, cols int, position common.Vector, orientation float64, target common.Vector) (*mat.Dense, error) {
		if rows <= 0 || cols <= 0 {
			return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGridSize, rows, cols)
		}
		if p.FrontSpread <= 0 || p.SideSpread <= 0 || p.RearSpread <= 0 {
			return nil, fmt.Errorf("gaussian spreads must be positive: %+v", p)
		}

		theta := orientation * math.Pi / 180
		cos, sin := math.Cos(theta), math.Sin(theta)
		out := mat.NewDense(rows, cols, nil)
		for x := 0; x < rows; x++ {
			for y := 0; y < cols; y++ {
				dx := float64(x) - position.X
				dy := float64(y) - position.Y
				u := dx*cos + dy*sin  // along facing direction
				v := -dx*sin + dy*cos // lateral
				front := p.FrontSpread
				if u < 0 {
					front = p.RearSpread
				}
				val := p.Amplitude * math.Exp(-(u*u/(2*front*front) + v*v/(2*p.SideSpread*p.SideSpread)))
				if p.GoalRadius > 0 {
					d := common.NewVector(float64(x), float64(y)).Distance(target)
					val *= 1 - math.Exp(-d*d/(2*p.GoalRadius*p.GoalRadius))
				}
				out.Set(x, y, val)
			}
		}
		return out, nil
	}
}
