// Package policy holds non-learning baseline policies and the rollout loop
// that drives a simulator through whole episodes with them.
package policy

import (
	"math"
	"math/rand/v2"

	"socialnav-sim/internal/simulation"
)

// Policy picks an action index from an observation.
type Policy interface {
	Act(obs simulation.Observation) int
}

// Greedy heads for the action whose heading is closest to the target bearing.
type Greedy struct {
	ActionCount int
}

// Act satisfies Policy.
func (g Greedy) Act(obs simulation.Observation) int {
	bearing := math.Atan2(obs[3], obs[2])
	if bearing < 0 {
		bearing += 2 * math.Pi
	}
	sector := 2 * math.Pi / float64(g.ActionCount)
	return int(math.Round(bearing/sector)) % g.ActionCount
}

// Random picks a uniformly random action.
type Random struct {
	ActionCount int
	Rand        *rand.Rand
}

// Act satisfies Policy.
func (r Random) Act(simulation.Observation) int {
	return r.Rand.IntN(r.ActionCount)
}

// EpsilonGreedy follows Greedy but takes a random action with probability Epsilon.
type EpsilonGreedy struct {
	Greedy
	Epsilon float64
	Rand    *rand.Rand
}

// Act satisfies Policy.
func (e EpsilonGreedy) Act(obs simulation.Observation) int {
	if e.Rand.Float64() < e.Epsilon {
		return e.Rand.IntN(e.ActionCount)
	}
	return e.Greedy.Act(obs)
}
