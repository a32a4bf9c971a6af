package profile

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// AsymmetricTrapezoidProfile plans the minimum-time maneuver between two
// kinematic states under an asymmetric constraint set. The plan is
// closed form and resolves to at most three phases: an acceleration
// ramp, a constant-velocity cruise and a deceleration ramp. Ramps that
// resolve to zero duration are omitted, which yields the triangle and
// ramp-only shapes. Boundary velocities beyond the speed limit are kept
// as stated; only the interior of the path conforms to the constraints.
// When the stated displacement cannot absorb the boundary velocities
// under the deceleration limit, the velocity endpoints win and the final
// position overshoots the goal.
//
// Sampling convention: Sample(0) returns the start state and
// Sample(TotalTime()) the goal state, regardless of travel direction.
type AsymmetricTrapezoidProfile struct {
	*Profile
	start       State
	goal        State
	constraints Constraints
}

// NewAsymmetricTrapezoidProfile plans a maneuver from start to goal.
// Fails fast when the constraints are invalid.
func NewAsymmetricTrapezoidProfile(start, goal State, c Constraints) (*AsymmetricTrapezoidProfile, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &AsymmetricTrapezoidProfile{
		Profile:     NewProfile(start, planTrapezoid(start, goal, c)),
		start:       start,
		goal:        goal,
		constraints: c,
	}, nil
}

// Start returns the boundary state the plan begins at.
func (p *AsymmetricTrapezoidProfile) Start() State {
	return p.start
}

// Goal returns the boundary state the plan ends at.
func (p *AsymmetricTrapezoidProfile) Goal() State {
	return p.goal
}

// Constraints returns the constraint set the plan was built under.
func (p *AsymmetricTrapezoidProfile) Constraints() Constraints {
	return p.constraints
}

// planTrapezoid derives the phase sequence. The problem is reflected
// into positive-displacement coordinates so one derivation covers both
// directions of travel; the tracked sign is applied uniformly to the
// accelerations and velocities of the resulting phases.
func planTrapezoid(start, goal State, c Constraints) []Phase {
	dist := goal.Position - start.Position
	if math.Abs(dist) < DefaultEpsilon &&
		scalar.EqualWithinAbs(start.Velocity, goal.Velocity, DefaultEpsilon) {
		return nil
	}
	dir := 1.0
	if dist < 0 {
		dir = -1
	}
	d := dist * dir
	v0 := start.Velocity * dir
	v1 := goal.Velocity * dir
	maxV := c.MaxVelocity
	acc := c.MaxAcceleration
	dec := c.MaxDeceleration

	// Ramp from the boundary velocities to the speed limit. A boundary
	// already past the limit instead ramps back down to it under the
	// opposing limit.
	a1 := acc
	if v0 > maxV {
		a1 = dec
	}
	t1 := (maxV - v0) / a1
	a3 := dec
	if v1 > maxV {
		a3 = acc
	}
	t3 := (v1 - maxV) / a3

	peak := maxV
	d1 := v0*t1 + 0.5*a1*t1*t1
	d3 := peak*t3 + 0.5*a3*t3*t3
	t2 := (d - d1 - d3) / maxV
	if t2 < 0 {
		// Triangle: the two ramps meet below the speed limit at the
		// peak velocity solved from their combined displacement
		// covering d exactly.
		t2 = 0
		peakSq := (d + v0*v0/(2*acc) - v1*v1/(2*dec)) / (1/(2*acc) - 1/(2*dec))
		peak = math.Sqrt(math.Max(peakSq, 0))
		a1, a3 = acc, dec
		t1 = (peak - v0) / acc
		t3 = (v1 - peak) / dec
		if peak < v0 {
			// The incoming velocity alone covers the displacement; the
			// maneuver is a single deceleration ramp.
			peak = v0
			t1 = 0
			t3 = (v1 - v0) / dec
		}
	}

	phases := make([]Phase, 0, 3)
	ref := 0.0
	appendPhase := func(duration, accel, startVel float64) {
		if duration <= DefaultEpsilon {
			return
		}
		phases = append(phases, Phase{
			Duration:       duration,
			Acceleration:   accel * dir,
			StartVelocity:  startVel * dir,
			StartReference: ref,
		})
		ref += duration
	}
	appendPhase(t1, a1, v0)
	appendPhase(t2, 0, peak)
	appendPhase(t3, a3, peak)
	return phases
}

// TrapezoidProfile is the symmetric specialization of
// AsymmetricTrapezoidProfile: the deceleration limit mirrors the
// acceleration limit, and any deceleration stated in the given
// constraints is ignored.
type TrapezoidProfile struct {
	*AsymmetricTrapezoidProfile
}

// NewTrapezoidProfile plans a maneuver from start to goal under
// symmetric acceleration limits.
func NewTrapezoidProfile(start, goal State, c Constraints) (*TrapezoidProfile, error) {
	sym, err := NewAsymmetricConstraints(c.MaxVelocity, c.MaxAcceleration, -c.MaxAcceleration)
	if err != nil {
		return nil, err
	}
	inner, err := NewAsymmetricTrapezoidProfile(start, goal, sym)
	if err != nil {
		return nil, err
	}
	return &TrapezoidProfile{inner}, nil
}
