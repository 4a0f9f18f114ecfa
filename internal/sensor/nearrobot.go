package sensor

import (
	"fmt"
	"math"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

// NearRobotSensor reports the closest other robot within range: reading 0 is
// closeness (1 touching, 0 out of range) and reading 1 the relative bearing
// mapped from (-π, π] onto [0, 1]. Both are 0 when nothing is in range.
type NearRobotSensor struct {
	base
	rangeLen float64
}

func NewNearRobotSensor(args capability.Arguments) (*NearRobotSensor, error) {
	rangeLen, err := args.Float("range", 1)
	if err != nil {
		return nil, err
	}
	if rangeLen <= 0 {
		return nil, fmt.Errorf("%w: range must be positive, got %f", capability.ErrInvalidArgument, rangeLen)
	}
	b, err := newBase(args, 2)
	if err != nil {
		return nil, err
	}
	return &NearRobotSensor{base: b, rangeLen: rangeLen}, nil
}

func (s *NearRobotSensor) Name() string { return NearRobotSensorName }

func (s *NearRobotSensor) InputKey() string { return "NearRobotNNInput" }

func (s *NearRobotSensor) Update(self world.RobotState, view world.View) {
	nearest := math.Inf(1)
	bearing := 0.0
	for _, other := range view.Others(self.ID) {
		offset := other.Position.Sub(self.Position)
		d := offset.Length() - other.Radius - self.Radius
		if d < 0 {
			d = 0
		}
		if d < nearest {
			nearest = d
			bearing = geom.ModPI(offset.Angle() - self.Orientation)
		}
	}
	if nearest >= s.rangeLen {
		s.set(0, 0, view.Time)
		s.set(1, 0, view.Time)
		return
	}
	s.set(0, 1-nearest/s.rangeLen, view.Time)
	s.set(1, (bearing+math.Pi)/geom.TwoPi, view.Time)
}
