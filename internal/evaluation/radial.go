package evaluation

import (
	"math"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

// RadialQualityMetric scores how well the first robot lines up with the
// radial direction through its last position. Facing inward and outward
// score the same.
type RadialQualityMetric struct {
	seen        bool
	position    geom.Vec2
	orientation float64
	distance    *DistanceQualityMetric
}

func NewRadialQualityMetric(args capability.Arguments) (*RadialQualityMetric, error) {
	m := &RadialQualityMetric{}
	if args.Flag("usedistance") {
		d, err := NewDistanceQualityMetric(args)
		if err != nil {
			return nil, err
		}
		m.distance = d
	}
	return m, nil
}

func (m *RadialQualityMetric) Update(view world.View) {
	if len(view.Robots) > 0 {
		m.seen = true
		m.position = view.Robots[0].Position
		m.orientation = view.Robots[0].Orientation
	}
	if m.distance != nil {
		m.distance.Update(view)
	}
}

func (m *RadialQualityMetric) Fitness() float64 {
	var fitness float64
	if m.seen {
		fitness = RadialOrientationScore(m.position, m.orientation)
	}
	if m.distance != nil {
		fitness += m.distance.Fitness()
	}
	return fitness
}

// RadialOrientationScore is 1 when orientation points along the line from the
// origin through pos, in either direction, and 0.5 for a tangent heading.
func RadialOrientationScore(pos geom.Vec2, orientation float64) float64 {
	target := pos.Angle()
	heading := geom.ModPI2(orientation)
	forward := angularScore(target - heading)
	backward := angularScore(geom.ModPI2(target+math.Pi) - heading)
	return math.Max(forward, backward)
}

func angularScore(diff float64) float64 {
	return (math.Pi - math.Abs(geom.ModPI(diff))) / math.Pi
}
