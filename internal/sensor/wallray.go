package sensor

import (
	"fmt"
	"math"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

// WallRaySensor casts rays from the robot body and reports, per ray, how
// close the nearest wall is: 1 touching, 0 at or beyond range.
type WallRaySensor struct {
	base
	rays      int
	rangeLen  float64
	aperture  float64
	offset    float64
	endpoints []geom.Vec2
}

func NewWallRaySensor(args capability.Arguments) (*WallRaySensor, error) {
	rays, err := args.Int("numberofrays", 4)
	if err != nil {
		return nil, err
	}
	if rays <= 0 {
		return nil, fmt.Errorf("%w: numberofrays must be positive, got %d", capability.ErrInvalidArgument, rays)
	}
	rangeLen, err := args.Float("range", 1)
	if err != nil {
		return nil, err
	}
	if rangeLen <= 0 {
		return nil, fmt.Errorf("%w: range must be positive, got %f", capability.ErrInvalidArgument, rangeLen)
	}
	aperture, err := args.Float("aperture", 360)
	if err != nil {
		return nil, err
	}
	offset, err := args.Float("offset", 0)
	if err != nil {
		return nil, err
	}
	b, err := newBase(args, rays)
	if err != nil {
		return nil, err
	}
	return &WallRaySensor{
		base:      b,
		rays:      rays,
		rangeLen:  rangeLen,
		aperture:  geom.Radians(aperture),
		offset:    geom.Radians(offset),
		endpoints: make([]geom.Vec2, rays),
	}, nil
}

func (s *WallRaySensor) Name() string { return WallRaySensorName }

func (s *WallRaySensor) InputKey() string { return "WallRayNNInput" }

// RayAngle is the direction of ray i relative to the robot heading.
func (s *WallRaySensor) RayAngle(i int) float64 {
	if s.aperture >= geom.TwoPi-1e-9 {
		return s.offset + geom.TwoPi*float64(i)/float64(s.rays)
	}
	if s.rays == 1 {
		return s.offset
	}
	return s.offset - s.aperture/2 + s.aperture*float64(i)/float64(s.rays-1)
}

func (s *WallRaySensor) Update(self world.RobotState, view world.View) {
	for i := 0; i < s.rays; i++ {
		dir := geom.Polar(1, self.Orientation+s.RayAngle(i))
		origin := self.Position.Add(dir.Scale(self.Radius))
		nearest := math.Inf(1)
		for _, wall := range view.Walls {
			if d, ok := geom.RayDistance(origin, dir, wall); ok && d < nearest {
				nearest = d
			}
		}
		value := 0.0
		if nearest < s.rangeLen {
			value = 1 - nearest/s.rangeLen
		}
		s.endpoints[i] = origin.Add(dir.Scale(math.Min(nearest, s.rangeLen)))
		s.set(i, value, view.Time)
	}
}

// RayEndpoints returns where each ray stopped on the last update.
func (s *WallRaySensor) RayEndpoints() []geom.Vec2 {
	return append([]geom.Vec2(nil), s.endpoints...)
}
