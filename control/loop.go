// Package control runs fixed-period setpoint loops that drive an
// actuator toward a target position with incrementally replanned
// trapezoidal setpoints.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"github.com/robotools/motionprofile/profile"
)

// Controllable is an actuator a Loop can drive: it reports its measured
// kinematic state and accepts a commanded setpoint. The external
// feedback controller behind SetState is the caller's concern.
type Controllable interface {
	State(ctx context.Context) (profile.State, error)
	SetState(ctx context.Context, setpoint profile.State) error
}

// Loop periodically reads the state of a Controllable and commands the
// next setpoint toward the current target. Every tick replans from the
// measured state, so the target may be moved at any time without
// leaving a stale plan behind.
type Loop struct {
	mu          sync.Mutex
	cfg         Config
	constraints profile.Constraints
	dt          time.Duration
	ctr         Controllable
	logger      golog.Logger
	clock       clock.Clock
	target      float64
	targetSet   bool
	running     bool

	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// NewLoop constructs a loop for the given actuator; the configuration is
// validated up front.
func NewLoop(logger golog.Logger, cfg Config, ctr Controllable) (*Loop, error) {
	return newLoop(logger, cfg, ctr, clock.New())
}

func newLoop(logger golog.Logger, cfg Config, ctr Controllable, clk clock.Clock) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	constraints, err := cfg.constraints()
	if err != nil {
		return nil, err
	}
	cancelCtx, cancel := context.WithCancel(context.Background())
	return &Loop{
		cfg:         cfg,
		constraints: constraints,
		dt:          time.Duration(float64(time.Second) / cfg.Frequency),
		ctr:         ctr,
		logger:      logger,
		clock:       clk,
		cancelCtx:   cancelCtx,
		cancel:      cancel,
	}, nil
}

// SetTarget moves the goal position; it takes effect on the next tick.
func (l *Loop) SetTarget(pos float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.target = pos
	l.targetSet = true
}

// Target returns the current goal position.
func (l *Loop) Target() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.target
}

// Period returns the loop's control period.
func (l *Loop) Period() time.Duration {
	return l.dt
}

// Start begins ticking. Unless a target was already set, the loop holds
// the actuator at the position measured here.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return errors.Errorf("loop %s already started", l.cfg.Name)
	}
	if l.cancelCtx.Err() != nil {
		return errors.Errorf("loop %s already stopped", l.cfg.Name)
	}
	if !l.targetSet {
		state, err := l.ctr.State(l.cancelCtx)
		if err != nil {
			return errors.Wrap(err, "cannot read initial state")
		}
		l.target = state.Position
		l.targetSet = true
	}
	l.logger.Debugf("starting setpoint loop %s at %.1fHz", l.cfg.Name, l.cfg.Frequency)
	ticker := l.clock.Ticker(l.dt)
	l.running = true
	l.activeBackgroundWorkers.Add(1)
	goutils.ManagedGo(func() {
		defer ticker.Stop()
		for {
			select {
			case <-l.cancelCtx.Done():
				return
			case <-ticker.C:
			}
			if err := l.once(l.cancelCtx); err != nil {
				l.logger.Errorw("setpoint tick failed", "loop", l.cfg.Name, "error", err)
			}
		}
	}, l.activeBackgroundWorkers.Done)
	return nil
}

// once runs a single control tick: measure, replan, command.
func (l *Loop) once(ctx context.Context) error {
	l.mu.Lock()
	target := l.target
	l.mu.Unlock()
	measured, err := l.ctr.State(ctx)
	if err != nil {
		return errors.Wrap(err, "cannot read state")
	}
	setpoint, err := profile.NextSetpoint(measured, target, l.dt, l.constraints)
	if err != nil {
		return err
	}
	return l.ctr.SetState(ctx, setpoint)
}

// Stop halts the loop and waits for its worker to exit. A stopped loop
// cannot be restarted.
func (l *Loop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	l.mu.Unlock()
	l.cancel()
	l.activeBackgroundWorkers.Wait()
	l.logger.Debugf("setpoint loop %s stopped", l.cfg.Name)
}
