package control

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/robotools/motionprofile/profile"
	"github.com/robotools/motionprofile/utils"
)

// fakeActuator tracks every commanded setpoint perfectly.
type fakeActuator struct {
	mu       sync.Mutex
	state    profile.State
	stateErr error
}

func (f *fakeActuator) State(ctx context.Context) (profile.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, f.stateErr
}

func (f *fakeActuator) SetState(ctx context.Context, setpoint profile.State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = setpoint
	return nil
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{Name: "axis1", Frequency: 100, Attribute: utils.AttributeMap{"max_vel": 10.0, "max_acc": 1.0}}
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	bad := Config{Name: "axis1", Frequency: 500, Attribute: utils.AttributeMap{}}
	err := bad.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frequency")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_vel")
	test.That(t, err.Error(), test.ShouldContainSubstring, "max_acc")
	test.That(t, errors.Is(err, profile.ErrInvalidConfiguration), test.ShouldBeTrue)
}

func TestNewLoopRejectsBadConstraints(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := Config{Name: "axis1", Frequency: 100, Attribute: utils.AttributeMap{"max_vel": -1.0, "max_acc": 1.0}}
	_, err := NewLoop(logger, cfg, &fakeActuator{})
	test.That(t, errors.Is(err, profile.ErrInvalidConfiguration), test.ShouldBeTrue)

	cfg = Config{Name: "axis1", Frequency: 100, Attribute: utils.AttributeMap{"max_vel": 10.0, "max_acc": 1.0, "max_dec": 2.0}}
	_, err = NewLoop(logger, cfg, &fakeActuator{})
	test.That(t, errors.Is(err, profile.ErrInvalidConfiguration), test.ShouldBeTrue)
}

func TestLoopTicks(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ctx := context.Background()
	fake := &fakeActuator{}
	cfg := Config{
		Name:      "axis1",
		Frequency: 1,
		Attribute: utils.AttributeMap{"max_vel": 10.0, "max_acc": 1.0},
	}
	// A mock clock keeps the ticker silent; ticks are driven by hand.
	l, err := newLoop(logger, cfg, fake, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Period(), test.ShouldEqual, time.Second)
	l.SetTarget(5)
	test.That(t, l.Target(), test.ShouldEqual, 5.0)

	want := []profile.State{
		{Position: 0.5, Velocity: 1},
		{Position: 2, Velocity: 2},
		{Position: 3.5, Velocity: 1},
		{Position: 4, Velocity: 0},
		{Position: 4.5, Velocity: 1},
		{Position: 5, Velocity: 0},
		{Position: 5, Velocity: 0},
	}
	for _, w := range want {
		test.That(t, l.once(ctx), test.ShouldBeNil)
		got, err := fake.State(ctx)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got.Position, test.ShouldAlmostEqual, w.Position, profile.DefaultEpsilon)
		test.That(t, got.Velocity, test.ShouldAlmostEqual, w.Velocity, profile.DefaultEpsilon)
	}
}

func TestLoopStartStop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	ctx := context.Background()
	fake := &fakeActuator{}
	cfg := Config{
		Name:      "axis1",
		Frequency: 200,
		Attribute: utils.AttributeMap{"max_vel": 100.0, "max_acc": 2000.0},
	}
	l, err := NewLoop(logger, cfg, fake)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldNotBeNil)
	defer l.Stop()

	l.SetTarget(1)
	settled := false
	for deadline := time.Now().Add(5 * time.Second); time.Now().Before(deadline); {
		state, err := fake.State(ctx)
		test.That(t, err, test.ShouldBeNil)
		if state.EqualTo(profile.State{Position: 1}) {
			settled = true
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	test.That(t, settled, test.ShouldBeTrue)

	l.Stop()
	// Stop is idempotent, and a stopped loop cannot be restarted.
	l.Stop()
	err = l.Start()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "already stopped")
}

func TestLoopStartReadsInitialTarget(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fake := &fakeActuator{state: profile.State{Position: 7}}
	cfg := Config{
		Name:      "axis1",
		Frequency: 100,
		Attribute: utils.AttributeMap{"max_vel": 10.0, "max_acc": 1.0},
	}
	l, err := newLoop(logger, cfg, fake, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Start(), test.ShouldBeNil)
	defer l.Stop()
	// With no explicit target the loop holds position.
	test.That(t, l.Target(), test.ShouldEqual, 7.0)
}

func TestLoopStartFailsWhenStateUnreadable(t *testing.T) {
	logger := golog.NewTestLogger(t)
	fake := &fakeActuator{stateErr: errors.New("encoder offline")}
	cfg := Config{
		Name:      "axis1",
		Frequency: 100,
		Attribute: utils.AttributeMap{"max_vel": 10.0, "max_acc": 1.0},
	}
	l, err := newLoop(logger, cfg, fake, clock.NewMock())
	test.That(t, err, test.ShouldBeNil)
	err = l.Start()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "encoder offline")
}
