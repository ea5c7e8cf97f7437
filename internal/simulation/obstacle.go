package simulation

import (
	"fmt"

	"socialnav-sim/internal/common"

	"github.com/google/uuid"
)

// Obstacle is a person standing on the plane. It is immutable once created.
type Obstacle struct {
	id          string
	position    common.Vector
	orientation float64 // degrees
}

// NewObstacle creates a person at pos facing orientation degrees.
func NewObstacle(pos common.Vector, orientation float64) Obstacle {
	return Obstacle{
		id:          fmt.Sprintf("person-%s", uuid.NewString()[:8]),
		position:    pos,
		orientation: orientation,
	}
}

// GetID returns the unique identifier of the obstacle.
func (o Obstacle) GetID() string {
	return o.id
}

// GetPosition returns the position of the obstacle.
func (o Obstacle) GetPosition() common.Vector {
	return o.position
}

// Orientation returns the facing direction in degrees.
func (o Obstacle) Orientation() float64 {
	return o.orientation
}

// String representation for logging
func (o Obstacle) String() string {
	return fmt.Sprintf("Obstacle[%s] Pos: %s Facing: %.1f°", o.id, o.position, o.orientation)
}
