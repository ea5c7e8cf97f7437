package simulation

import (
	"errors"
	"fmt"

	"socialnav-sim/internal/common"
)

var (
	ErrInvalidConfig    = errors.New("invalid simulation config")
	ErrInvalidAction    = errors.New("invalid action")
	ErrEpisodeNotActive = errors.New("episode is not active: call Reset first")
)

// Reference constants for the navigation task.
const (
	DefaultGridScale        = 33.0 // grid units per meter
	DefaultGridCells        = 15
	DefaultStepLength       = 15.0
	DefaultActionCount      = 20
	DefaultMaxSteps         = 1000
	DefaultGoalMargin       = 10.0
	DefaultSuccessBonus     = 500.0
	DefaultStepLimitPenalty = 500.0
	DefaultSigma            = 1.0
)

// Config is the construction-time surface of a Simulator. It is not modified
// after New returns.
type Config struct {
	Start     common.Vector
	Target    common.Vector
	Obstacles []Obstacle

	Sigma     float64 // weight of the potential-field penalty
	GridScale float64
	GridCells int

	StepLength       float64
	ActionCount      int
	MaxSteps         int
	GoalMargin       float64
	SuccessBonus     float64
	StepLimitPenalty float64
}

// DefaultConfig returns the reference scenario: a 495x495 grid, three people,
// start in the lower right and target in the upper left.
func DefaultConfig() Config {
	s := DefaultGridScale
	return Config{
		Start:  common.NewVector(13.5*s, 4.5*s),
		Target: common.NewVector(4.5*s, 13.5*s),
		Obstacles: []Obstacle{
			NewObstacle(common.NewVector(4.5*s, 3*s), -90),
			NewObstacle(common.NewVector(8.25*s, 9*s), 90),
			NewObstacle(common.NewVector(9*s, 10.5*s), -90),
		},
		Sigma:            DefaultSigma,
		GridScale:        DefaultGridScale,
		GridCells:        DefaultGridCells,
		StepLength:       DefaultStepLength,
		ActionCount:      DefaultActionCount,
		MaxSteps:         DefaultMaxSteps,
		GoalMargin:       DefaultGoalMargin,
		SuccessBonus:     DefaultSuccessBonus,
		StepLimitPenalty: DefaultStepLimitPenalty,
	}
}

// GridSize returns the side length G of the square grid.
func (c Config) GridSize() int {
	return int(c.GridScale * float64(c.GridCells))
}

// Validate checks the config for values the simulator cannot run with.
func (c Config) Validate() error {
	g := c.GridSize()
	switch {
	case g <= 1:
		return fmt.Errorf("%w: grid size %d (scale %.2f x %d cells)", ErrInvalidConfig, g, c.GridScale, c.GridCells)
	case c.StepLength <= 0:
		return fmt.Errorf("%w: step length must be positive, got %.3f", ErrInvalidConfig, c.StepLength)
	case c.ActionCount <= 0:
		return fmt.Errorf("%w: action count must be positive, got %d", ErrInvalidConfig, c.ActionCount)
	case c.MaxSteps <= 0:
		return fmt.Errorf("%w: max steps must be positive, got %d", ErrInvalidConfig, c.MaxSteps)
	case c.GoalMargin < 0:
		return fmt.Errorf("%w: goal margin must be non-negative, got %.3f", ErrInvalidConfig, c.GoalMargin)
	case c.Sigma < 0:
		return fmt.Errorf("%w: sigma must be non-negative, got %.3f", ErrInvalidConfig, c.Sigma)
	}
	hi := float64(g - 1)
	for name, p := range map[string]common.Vector{"start": c.Start, "target": c.Target} {
		if p.X < 0 || p.Y < 0 || p.X > hi || p.Y > hi {
			return fmt.Errorf("%w: %s %s outside grid [0, %d]", ErrInvalidConfig, name, p, g-1)
		}
	}
	return nil
}
