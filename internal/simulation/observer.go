package simulation

import (
	"socialnav-sim/internal/common"
	"socialnav-sim/internal/field"
)

// Frame is a read-only picture of the simulator handed to observers.
// Route is a copy and may be retained.
type Frame struct {
	Episode   int
	Step      int
	GridSize  int
	Position  common.Vector
	Target    common.Vector
	Route     []common.Vector
	Obstacles []Obstacle
	Field     *field.Field
}

// Observer receives draw events from the simulator. Observers never affect
// rewards or termination; a failing Snapshot is only logged.
type Observer interface {
	// Redraw is called after Reset and after every executed step.
	Redraw(frame Frame)
	// Snapshot persists the current picture under name. It is called on
	// success and on explicit render requests.
	Snapshot(frame Frame, name string) error
}
