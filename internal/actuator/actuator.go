// Package actuator provides the built-in robot actuators.
package actuator

import (
	"fmt"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

const (
	TwoWheelActuatorName = "TwoWheelActuator"
	LedActuatorName      = "LedActuator"

	DefaultMaxSpeed = 1.0
)

// TwoWheelActuator holds the commanded wheel speeds and hands them to the
// robot when applied; the robot integrates them on its next step.
type TwoWheelActuator struct {
	maxSpeed    float64
	left, right float64
}

func NewTwoWheelActuator(args capability.Arguments) (*TwoWheelActuator, error) {
	maxSpeed, err := args.Float("maxspeed", DefaultMaxSpeed)
	if err != nil {
		return nil, err
	}
	if maxSpeed <= 0 {
		return nil, fmt.Errorf("%w: maxspeed must be positive, got %f", capability.ErrInvalidArgument, maxSpeed)
	}
	return &TwoWheelActuator{maxSpeed: maxSpeed}, nil
}

func (a *TwoWheelActuator) Name() string { return TwoWheelActuatorName }

func (a *TwoWheelActuator) MaxSpeed() float64 { return a.maxSpeed }

// SetWheelSpeeds sets raw speeds, clamped to ±maxspeed.
func (a *TwoWheelActuator) SetWheelSpeeds(left, right float64) {
	a.left = clamp(left, -a.maxSpeed, a.maxSpeed)
	a.right = clamp(right, -a.maxSpeed, a.maxSpeed)
}

func (a *TwoWheelActuator) WheelSpeeds() (left, right float64) {
	return a.left, a.right
}

func (a *TwoWheelActuator) NumCommands() int { return 2 }

// Command maps controller outputs in [0, 1] onto [-maxspeed, maxspeed].
func (a *TwoWheelActuator) Command(values []float64) {
	a.SetWheelSpeeds((clamp(values[0], 0, 1)*2-1)*a.maxSpeed, (clamp(values[1], 0, 1)*2-1)*a.maxSpeed)
}

func (a *TwoWheelActuator) Apply(r *robot.Robot) {
	r.SetWheelSpeeds(a.left, a.right)
}

// LedActuator drives the indicator light; it has no physical effect.
type LedActuator struct {
	state robot.LedState
}

func NewLedActuator(capability.Arguments) (*LedActuator, error) {
	return &LedActuator{}, nil
}

func (a *LedActuator) Name() string { return LedActuatorName }

func (a *LedActuator) Set(state robot.LedState) { a.state = state }

func (a *LedActuator) NumCommands() int { return 1 }

// Command turns the light on above 0.5; values within 0.05 of the threshold
// make it blink.
func (a *LedActuator) Command(values []float64) {
	switch v := values[0]; {
	case v > 0.55:
		a.state = robot.LedOn
	case v >= 0.45:
		a.state = robot.LedBlinking
	default:
		a.state = robot.LedOff
	}
}

func (a *LedActuator) Apply(r *robot.Robot) {
	r.SetLED(a.state)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func Register(reg *capability.Registry) error {
	factories := []struct {
		name    string
		aliases []string
		build   func(capability.Arguments) (robot.Actuator, error)
	}{
		{TwoWheelActuatorName, []string{"two_wheels"}, func(a capability.Arguments) (robot.Actuator, error) { return NewTwoWheelActuator(a) }},
		{LedActuatorName, []string{"led"}, func(a capability.Arguments) (robot.Actuator, error) { return NewLedActuator(a) }},
	}
	for _, f := range factories {
		build := f.build
		err := reg.Register(capability.Spec{
			Name:    f.name,
			Kind:    capability.KindActuator,
			Aliases: f.aliases,
			Constructors: []capability.Constructor{
				{
					Params: []capability.Param{capability.Args("args")},
					New:    func(args []any) (any, error) { return build(args[0].(capability.Arguments)) },
				},
				{
					New: func([]any) (any, error) { return build(capability.Arguments{}) },
				},
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
