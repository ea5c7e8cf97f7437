package policy

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"socialnav-sim/internal/common"
	"socialnav-sim/internal/simulation"

	. "github.com/smartystreets/goconvey/convey"
)

func newSim(maxSteps int) *simulation.Simulator {
	cfg := simulation.DefaultConfig()
	cfg.Obstacles = nil
	cfg.MaxSteps = maxSteps
	sim, err := simulation.New(context.Background(), cfg)
	if err != nil {
		panic(err)
	}
	return sim
}

func TestGreedy(t *testing.T) {
	g := Greedy{ActionCount: 20}
	cases := []struct {
		obs  simulation.Observation
		want int
	}{
		{simulation.Observation{0, 0, 10, 0}, 0},
		{simulation.Observation{0, 0, 0, 10}, 5},
		{simulation.Observation{0, 0, -10, 0}, 10},
		{simulation.Observation{0, 0, 0, -10}, 15},
		{simulation.Observation{0, 0, 10, -0.01}, 0},
	}
	for _, c := range cases {
		if got := g.Act(c.obs); got != c.want {
			t.Errorf("Greedy.Act(%v) = %d, want %d", c.obs, got, c.want)
		}
	}
}

func TestRollout(t *testing.T) {
	ctx := context.Background()

	Convey("Greedy reaches the reference target on an empty grid", t, func() {
		sim := newSim(simulation.DefaultMaxSteps)
		var infos []simulation.Info
		sum, err := Rollout(ctx, sim, Greedy{ActionCount: sim.ActionCount()}, 3, func(info simulation.Info) error {
			infos = append(infos, info)
			return nil
		})
		So(err, ShouldBeNil)
		So(sum.Episodes, ShouldEqual, 3)
		So(sum.SuccessRate(), ShouldEqual, 1.0)
		So(infos, ShouldHaveLength, 3)
		So(infos[2].Episode, ShouldEqual, 3)
		So(sum.LastRoute, ShouldNotBeEmpty)
		last := sum.LastRoute[len(sum.LastRoute)-1]
		So(last.Distance(sim.Target()), ShouldBeLessThan, simulation.DefaultStepLength+simulation.DefaultGoalMargin)
	})

	Convey("Random play is capped by the step limit", t, func() {
		sim := newSim(5)
		pol := Random{ActionCount: sim.ActionCount(), Rand: rand.New(rand.NewPCG(1, 2))}
		sum, err := Rollout(ctx, sim, pol, 4, nil)
		So(err, ShouldBeNil)
		So(sum.Episodes, ShouldEqual, 4)
		So(sum.Successes, ShouldEqual, 0)
		So(sum.MeanSteps, ShouldEqual, 5.0)
		So(sum.MeanReward, ShouldBeLessThan, -simulation.DefaultStepLimitPenalty)
	})

	Convey("EpsilonGreedy with zero epsilon behaves like Greedy", t, func() {
		eg := EpsilonGreedy{Greedy: Greedy{ActionCount: 20}, Rand: rand.New(rand.NewPCG(3, 4))}
		obs := simulation.Observation{0, 0, -3, 7}
		So(eg.Act(obs), ShouldEqual, eg.Greedy.Act(obs))
	})

	Convey("A cancelled context stops the rollout", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		sum, err := Rollout(cctx, newSim(10), Greedy{ActionCount: 20}, 2, nil)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
		So(sum.Episodes, ShouldEqual, 0)
	})

	Convey("An episode callback error stops the rollout", t, func() {
		boom := errors.New("boom")
		sum, err := Rollout(ctx, newSim(3), Greedy{ActionCount: 20}, 5, func(simulation.Info) error { return boom })
		So(errors.Is(err, boom), ShouldBeTrue)
		So(sum.Episodes, ShouldEqual, 1)
	})

	Convey("Route points stay on the grid", t, func() {
		sim := newSim(50)
		pol := Random{ActionCount: 20, Rand: rand.New(rand.NewPCG(9, 9))}
		sum, err := Rollout(ctx, sim, pol, 1, nil)
		So(err, ShouldBeNil)
		hi := float64(sim.GridSize() - 1)
		for _, p := range sum.LastRoute {
			So(p, ShouldHaveSameTypeAs, common.Vector{})
			So(p.X, ShouldBeBetweenOrEqual, 0.0, hi)
			So(p.Y, ShouldBeBetweenOrEqual, 0.0, hi)
		}
	})
}
