package sensor

import (
	"fmt"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

// PositionSensor maps the robot position inside a square arena of the given
// half-width onto [0, 1] per axis.
type PositionSensor struct {
	base
	halfWidth float64
}

func NewPositionSensor(args capability.Arguments) (*PositionSensor, error) {
	halfWidth, err := args.Float("halfwidth", 5)
	if err != nil {
		return nil, err
	}
	if halfWidth <= 0 {
		return nil, fmt.Errorf("%w: halfwidth must be positive, got %f", capability.ErrInvalidArgument, halfWidth)
	}
	b, err := newBase(args, 2)
	if err != nil {
		return nil, err
	}
	return &PositionSensor{base: b, halfWidth: halfWidth}, nil
}

func (s *PositionSensor) Name() string { return PositionSensorName }

func (s *PositionSensor) InputKey() string { return "PositionNNInput" }

func (s *PositionSensor) Update(self world.RobotState, view world.View) {
	s.set(0, (self.Position.X+s.halfWidth)/(2*s.halfWidth), view.Time)
	s.set(1, (self.Position.Y+s.halfWidth)/(2*s.halfWidth), view.Time)
}
