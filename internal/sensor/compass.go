package sensor

import (
	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

// CompassSensor reads the robot orientation as a fraction of a full turn.
type CompassSensor struct {
	base
}

func NewCompassSensor(args capability.Arguments) (*CompassSensor, error) {
	b, err := newBase(args, 1)
	if err != nil {
		return nil, err
	}
	return &CompassSensor{base: b}, nil
}

func (s *CompassSensor) Name() string { return CompassSensorName }

func (s *CompassSensor) InputKey() string { return "CompassNNInput" }

func (s *CompassSensor) Update(self world.RobotState, view world.View) {
	s.set(0, geom.ModPI2(self.Orientation)/geom.TwoPi, view.Time)
}

// HeadingDegrees converts the current reading into a compass heading.
func (s *CompassSensor) HeadingDegrees() float64 {
	return geom.CompassHeading(s.readings[0] * geom.TwoPi)
}
