package policy

import (
	"context"
	"fmt"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/simulation"
)

// Env is the part of the simulator a rollout needs.
type Env interface {
	Reset(opts ...simulation.ResetOption) (simulation.Observation, simulation.Info)
	Step(action int) (simulation.StepResult, error)
}

// EpisodeFunc is called with the info of every terminal step.
type EpisodeFunc func(info simulation.Info) error

// Summary aggregates the episodes of one rollout.
type Summary struct {
	Episodes   int
	Successes  int
	MeanReward float64
	MeanSteps  float64
	LastRoute  []common.Vector
}

// SuccessRate returns the fraction of successful episodes.
func (s Summary) SuccessRate() float64 {
	if s.Episodes == 0 {
		return 0
	}
	return float64(s.Successes) / float64(s.Episodes)
}

// Rollout runs episodes full episodes of pol in env. It stops early, returning
// the partial summary, when ctx is cancelled or a step or onEpisode fails.
func Rollout(ctx context.Context, env Env, pol Policy, episodes int, onEpisode EpisodeFunc) (Summary, error) {
	var sum Summary
	var totalReward, totalSteps float64
	finish := func() Summary {
		if sum.Episodes > 0 {
			sum.MeanReward = totalReward / float64(sum.Episodes)
			sum.MeanSteps = totalSteps / float64(sum.Episodes)
		}
		return sum
	}

	for ep := 0; ep < episodes; ep++ {
		obs, _ := env.Reset()
		for {
			if err := ctx.Err(); err != nil {
				return finish(), err
			}
			res, err := env.Step(pol.Act(obs))
			if err != nil {
				return finish(), fmt.Errorf("episode %d: %w", ep+1, err)
			}
			obs = res.Observation
			if !res.Terminated {
				continue
			}

			sum.Episodes++
			if res.Info.IsSuccess {
				sum.Successes++
			}
			totalReward += res.Info.TotalReward
			totalSteps += float64(res.Info.NumSteps)
			sum.LastRoute = res.Info.Route
			if onEpisode != nil {
				if err := onEpisode(res.Info); err != nil {
					return finish(), err
				}
			}
			break
		}
	}
	return finish(), nil
}
