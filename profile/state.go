// Package profile generates kinematic motion profiles for single-axis
// actuator control: time-parameterized (position, velocity) trajectories
// between two boundary states that respect velocity and possibly
// asymmetric acceleration limits. Profiles come in two flavors, a static
// planner that decomposes a whole maneuver into constant-acceleration
// phases up front, and an incremental planner that recomputes the next
// setpoint from the measured state every control tick.
package profile

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats/scalar"
)

// DefaultEpsilon is the absolute tolerance used for every approximate
// float comparison in this library.
const DefaultEpsilon = 1e-4

// ErrInvalidConfiguration is wrapped by every error returned for
// constraints or control periods that do not describe a physically
// meaningful maneuver.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// State is a kinematic (position, velocity) pair. It is an immutable
// value; planners return new states rather than mutating inputs.
type State struct {
	Position float64
	Velocity float64
}

// EqualTo reports whether both components match within DefaultEpsilon.
func (s State) EqualTo(other State) bool {
	return scalar.EqualWithinAbs(s.Position, other.Position, DefaultEpsilon) &&
		scalar.EqualWithinAbs(s.Velocity, other.Velocity, DefaultEpsilon)
}

// Constraints bounds a maneuver: a speed limit, the maximum acceleration
// while speeding up and the maximum (negative) acceleration while
// slowing toward the goal.
type Constraints struct {
	MaxVelocity     float64
	MaxAcceleration float64
	MaxDeceleration float64
}

// NewConstraints returns a symmetric constraint set, the deceleration
// limit defaulting to the negated acceleration limit.
func NewConstraints(maxVel, maxAcc float64) (Constraints, error) {
	return NewAsymmetricConstraints(maxVel, maxAcc, -maxAcc)
}

// NewAsymmetricConstraints returns a constraint set with independent
// acceleration and deceleration magnitudes.
func NewAsymmetricConstraints(maxVel, maxAcc, maxDec float64) (Constraints, error) {
	if maxVel <= 0 {
		return Constraints{}, errors.Wrapf(ErrInvalidConfiguration, "max velocity must be positive, got %v", maxVel)
	}
	if maxAcc <= 0 {
		return Constraints{}, errors.Wrapf(ErrInvalidConfiguration, "max acceleration must be positive, got %v", maxAcc)
	}
	if maxDec >= 0 {
		return Constraints{}, errors.Wrapf(ErrInvalidConfiguration, "max deceleration must be negative, got %v", maxDec)
	}
	return Constraints{MaxVelocity: maxVel, MaxAcceleration: maxAcc, MaxDeceleration: maxDec}, nil
}

// EqualTo reports whether all limits match within DefaultEpsilon.
func (c Constraints) EqualTo(other Constraints) bool {
	return scalar.EqualWithinAbs(c.MaxVelocity, other.MaxVelocity, DefaultEpsilon) &&
		scalar.EqualWithinAbs(c.MaxAcceleration, other.MaxAcceleration, DefaultEpsilon) &&
		scalar.EqualWithinAbs(c.MaxDeceleration, other.MaxDeceleration, DefaultEpsilon)
}

func (c Constraints) validate() error {
	_, err := NewAsymmetricConstraints(c.MaxVelocity, c.MaxAcceleration, c.MaxDeceleration)
	return err
}
