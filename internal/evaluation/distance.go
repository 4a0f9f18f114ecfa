package evaluation

import (
	"fmt"
	"math"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

const DefaultTargetDistance = 1.0

// DistanceQualityMetric is the time-averaged closeness of the first robot to
// a ring of radius targetdistance around the origin, in [0,1].
type DistanceQualityMetric struct {
	target   float64
	weighted float64
	elapsed  float64
}

func NewDistanceQualityMetric(args capability.Arguments) (*DistanceQualityMetric, error) {
	target, err := args.Float("targetdistance", DefaultTargetDistance)
	if err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: targetdistance must be positive, got %f", capability.ErrInvalidArgument, target)
	}
	return &DistanceQualityMetric{target: target}, nil
}

func (m *DistanceQualityMetric) Update(view world.View) {
	m.elapsed += view.Dt
	if len(view.Robots) == 0 {
		return
	}
	d := view.Robots[0].Position.Length()
	m.weighted += view.Dt * math.Max(0, 1-math.Abs(d-m.target)/m.target)
}

func (m *DistanceQualityMetric) Fitness() float64 {
	if m.elapsed <= 0 {
		return 0
	}
	return m.weighted / m.elapsed
}
