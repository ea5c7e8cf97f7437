package simulation

import "socialnav-sim/internal/common"

// agent is the per-episode navigating body. Only the Simulator mutates it.
type agent struct {
	position common.Vector
	route    []common.Vector
}

func (a *agent) reset(start common.Vector) {
	a.position = start
	a.route = a.route[:0:0]
}

// move displaces the agent and clamps it into [lo, hi] on both axes.
// Motion absorbed by the boundary is simply lost.
func (a *agent) move(delta common.Vector, lo, hi float64) {
	a.position = a.position.Add(delta).Clip(lo, hi)
	a.route = append(a.route, a.position)
}

func (a *agent) routeCopy() []common.Vector {
	out := make([]common.Vector, len(a.route))
	copy(out, a.route)
	return out
}
