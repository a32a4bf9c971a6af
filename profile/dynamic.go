package profile

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

// NextSetpoint computes the state an actuator should be commanded to one
// control period after the given measured state, moving toward target
// under the given constraints. It is a pure function of its inputs and
// is meant to be called fresh every control tick: replanning from the
// measured state each cycle keeps the command consistent when the target
// moves between ticks and cannot accumulate drift or carry a stale plan.
//
// The setpoint accelerates at the limit until the remaining distance is
// within the stopping distance plus one period of travel, then brakes at
// the deceleration limit. A braking step that reaches zero velocity
// rests for the remainder of the step, and a step that would cross the
// target snaps exactly onto it with zero velocity, so the setpoint
// settles without overshoot or oscillation. Velocity pointing away from
// the target brakes to zero and re-accelerates toward the target within
// the same call.
func NextSetpoint(current State, target float64, period time.Duration, c Constraints) (State, error) {
	if err := c.validate(); err != nil {
		return State{}, err
	}
	if period <= 0 {
		return State{}, errors.Wrapf(ErrInvalidConfiguration, "control period must be positive, got %v", period)
	}
	dt := period.Seconds()
	dist := target - current.Position
	if math.Abs(dist) <= DefaultEpsilon && math.Abs(current.Velocity) <= DefaultEpsilon {
		return State{Position: target}, nil
	}

	// Reflect into coordinates where the target lies in the positive
	// direction, step, and reflect back.
	dir := 1.0
	if dist < 0 {
		dir = -1
	}
	disp, vel := stepToward(dist*dir, current.Velocity*dir, dt, c)
	if disp >= dist*dir-DefaultEpsilon {
		return State{Position: target}, nil
	}
	return State{Position: current.Position + dir*disp, Velocity: dir * vel}, nil
}

// stepToward integrates one period of constant-acceleration motion in
// target-reflected coordinates: d is the (positive) distance to the
// target and v the velocity toward it. It returns the displacement over
// the step and the velocity at its end. Steps are split where the motion
// changes regime within the period (velocity sign flip, speed limit,
// coming to rest) so each piece integrates exactly.
func stepToward(d, v, dt float64, c Constraints) (float64, float64) {
	dec := -c.MaxDeceleration
	if v < 0 {
		// Moving away from the target: brake to a stop, then restart
		// toward it with whatever is left of the step.
		tStop := -v / dec
		if tStop >= dt {
			return v*dt + 0.5*dec*dt*dt, v + dec*dt
		}
		brakeDisp := 0.5 * v * tStop
		disp, vel := stepToward(d-brakeDisp, 0, dt-tStop, c)
		return brakeDisp + disp, vel
	}

	stopDist := v * v / (2 * dec)
	if d <= stopDist+v*dt {
		// Within braking range of the target.
		tStop := v / dec
		if tStop >= dt {
			return v*dt - 0.5*dec*dt*dt, v - dec*dt
		}
		return stopDist, 0
	}

	maxV := c.MaxVelocity
	if v > maxV {
		// Measured velocity past the limit: bleed back down to it.
		tDown := (v - maxV) / dec
		if tDown >= dt {
			return v*dt - 0.5*dec*dt*dt, v - dec*dt
		}
		return (v*v-maxV*maxV)/(2*dec) + maxV*(dt-tDown), maxV
	}

	// Speed up toward the limit, cruising once it is reached.
	acc := c.MaxAcceleration
	tRamp := (maxV - v) / acc
	if tRamp >= dt {
		return v*dt + 0.5*acc*dt*dt, v + acc*dt
	}
	return v*tRamp + 0.5*acc*tRamp*tRamp + maxV*(dt-tRamp), maxV
}
