package common

import (
	"fmt"
	"math"
)

// Vector represents a point or displacement on the navigation plane.
type Vector struct {
	X, Y float64
}

// NewVector creates a vector from its components.
func NewVector(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

// FromHeading returns a vector of the given length pointing along angle (radians),
// with 0 aligned to the positive x-axis.
func FromHeading(angle, length float64) Vector {
	return Vector{X: math.Cos(angle), Y: math.Sin(angle)}.MultiplyByScalar(length)
}

// Distance calculates the Euclidean distance between two vectors.
func (v Vector) Distance(other Vector) float64 {
	return v.Subtract(other).Norm()
}

// Add adds another vector to this vector.
func (v Vector) Add(other Vector) Vector {
	return Vector{X: v.X + other.X, Y: v.Y + other.Y}
}

// Subtract subtracts another vector from this vector.
func (v Vector) Subtract(other Vector) Vector {
	return Vector{X: v.X - other.X, Y: v.Y - other.Y}
}

// MultiplyByScalar multiplies the vector by a scalar value.
func (v Vector) MultiplyByScalar(scalar float64) Vector {
	return Vector{X: v.X * scalar, Y: v.Y * scalar}
}

// Norm returns the Euclidean length of the vector.
func (v Vector) Norm() float64 {
	return math.Hypot(v.X, v.Y)
}

// Angle returns the direction of the vector in radians, in (-π, π].
func (v Vector) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Clip clamps both components into [lo, hi].
func (v Vector) Clip(lo, hi float64) Vector {
	return Vector{X: clamp(v.X, lo, hi), Y: clamp(v.Y, lo, hi)}
}

// Cell truncates the vector to the integer grid index containing it.
// Both components must be non-negative.
func (v Vector) Cell() (int, int) {
	return int(v.X), int(v.Y)
}

// String returns a string representation of the vector.
func (v Vector) String() string {
	return fmt.Sprintf("[%.3f, %.3f]", v.X, v.Y)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(x, hi))
}
