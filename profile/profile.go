package profile

// Phase is one constant-acceleration segment of a motion profile.
// StartReference is the cumulative elapsed time at which the phase
// begins; the phases of one profile tile the time axis contiguously and
// hand velocity over continuously at each boundary.
type Phase struct {
	Duration       float64
	Acceleration   float64
	StartVelocity  float64
	StartReference float64
}

func (ph Phase) velocityAt(tau float64) float64 {
	return ph.StartVelocity + ph.Acceleration*tau
}

func (ph Phase) displacementAt(tau float64) float64 {
	return ph.StartVelocity*tau + 0.5*ph.Acceleration*tau*tau
}

// Profile is an ordered sequence of constant-acceleration phases
// anchored at an initial state. Sampling is tolerant rather than
// fallible: times before the profile return the initial state and times
// past the end return the final state. A profile with no phases is the
// degenerate no-op maneuver and samples to its initial state everywhere.
// Profiles are immutable once built and safe for concurrent readers.
type Profile struct {
	initial State
	phases  []Phase
	total   float64
}

// NewProfile builds a profile over the given phases. The phase slice is
// owned by the profile afterwards.
func NewProfile(initial State, phases []Phase) *Profile {
	var total float64
	for _, ph := range phases {
		total += ph.Duration
	}
	return &Profile{initial: initial, phases: phases, total: total}
}

// InitialState returns the state the profile starts from.
func (p *Profile) InitialState() State {
	return p.initial
}

// TotalTime returns the sum of all phase durations in seconds.
func (p *Profile) TotalTime() float64 {
	return p.total
}

// IsFinished reports whether t is at or past the end of the profile.
func (p *Profile) IsFinished(t float64) bool {
	return t >= p.total
}

// Phases returns the resolved phase sequence. It is meant for
// diagnostics and tests, not for control decisions.
func (p *Profile) Phases() []Phase {
	return p.phases
}

// Sample returns the planned state t seconds into the profile. Each
// phase owns the half-open interval [StartReference,
// StartReference+Duration), so a sample landing exactly on a boundary
// resolves to the later phase. Runs in O(phases) without allocating.
func (p *Profile) Sample(t float64) State {
	if t < 0 || len(p.phases) == 0 {
		return p.initial
	}
	if t >= p.total {
		return p.finalState()
	}
	pos := p.initial.Position
	for _, ph := range p.phases {
		if t < ph.StartReference+ph.Duration {
			tau := t - ph.StartReference
			return State{Position: pos + ph.displacementAt(tau), Velocity: ph.velocityAt(tau)}
		}
		pos += ph.displacementAt(ph.Duration)
	}
	return p.finalState()
}

func (p *Profile) finalState() State {
	pos := p.initial.Position
	vel := p.initial.Velocity
	for _, ph := range p.phases {
		pos += ph.displacementAt(ph.Duration)
		vel = ph.velocityAt(ph.Duration)
	}
	return State{Position: pos, Velocity: vel}
}
