package control

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/robotools/motionprofile/profile"
	"github.com/robotools/motionprofile/utils"
)

// maxLoopFrequency bounds how fast a loop may tick; the planner math is
// cheap but actuator transports rarely keep up past this.
const maxLoopFrequency = 200.0

// Config describes a setpoint loop: how often it runs and the motion
// constraints applied to the driven axis. The attribute map carries
// "max_vel" and "max_acc", plus an optional "max_dec" for asymmetric
// deceleration.
type Config struct {
	Name      string             `json:"name"`
	Frequency float64            `json:"frequency"`
	Attribute utils.AttributeMap `json:"attributes"`
}

// Validate checks the loop configuration, reporting every violation at
// once.
func (cfg Config) Validate() error {
	var err error
	if cfg.Frequency <= 0 || cfg.Frequency > maxLoopFrequency {
		err = multierr.Append(err, errors.Wrapf(profile.ErrInvalidConfiguration,
			"loop %s frequency must be in (0, %v]Hz, got %v", cfg.Name, maxLoopFrequency, cfg.Frequency))
	}
	if !cfg.Attribute.Has("max_vel") {
		err = multierr.Append(err, errors.Errorf("loop %s needs a max_vel field", cfg.Name))
	}
	if !cfg.Attribute.Has("max_acc") {
		err = multierr.Append(err, errors.Errorf("loop %s needs a max_acc field", cfg.Name))
	}
	return err
}

func (cfg Config) constraints() (profile.Constraints, error) {
	maxVel := cfg.Attribute.Float64("max_vel", 0)
	maxAcc := cfg.Attribute.Float64("max_acc", 0)
	if cfg.Attribute.Has("max_dec") {
		return profile.NewAsymmetricConstraints(maxVel, maxAcc, cfg.Attribute.Float64("max_dec", 0))
	}
	return profile.NewConstraints(maxVel, maxAcc)
}
