package sensor

import (
	"errors"
	"math"
	"testing"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/robot"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

const tolerance = 1e-9

func TestCompassSensorReadsFractionOfTurn(t *testing.T) {
	s, err := NewCompassSensor(capability.MustParseArguments("id=2"))
	if err != nil {
		t.Fatalf("new compass: %v", err)
	}
	self := world.RobotState{ID: 1, Orientation: math.Pi / 2}
	s.Update(self, world.View{})
	if s.ID() != 2 || s.NumReadings() != 1 {
		t.Fatalf("unexpected compass shape id=%d readings=%d", s.ID(), s.NumReadings())
	}
	if math.Abs(s.Reading(0)-0.25) > tolerance {
		t.Fatalf("reading %f want 0.25", s.Reading(0))
	}
	if h := s.HeadingDegrees(); math.Abs(h) > 1e-6 && math.Abs(h-360) > 1e-6 {
		t.Fatalf("heading %f want 0", h)
	}
}

func TestWallRaySensorSeesNearestWall(t *testing.T) {
	s, err := NewWallRaySensor(capability.MustParseArguments("numberofrays=4,range=2"))
	if err != nil {
		t.Fatalf("new wall ray: %v", err)
	}
	self := world.RobotState{ID: 1, Position: geom.V(0, 0), Radius: 0.1}
	view := world.View{Walls: geom.Box(2)}
	s.Update(self, view)

	// Each ray leaves the body at 0.1 and hits a wall 0.9 further on.
	want := 1 - 0.9/2
	for i := 0; i < 4; i++ {
		if math.Abs(s.Reading(i)-want) > tolerance {
			t.Fatalf("ray %d reading %f want %f", i, s.Reading(i), want)
		}
	}
	if end := s.RayEndpoints()[0]; end.DistanceTo(geom.V(1, 0)) > tolerance {
		t.Fatalf("ray 0 stopped at %s", end)
	}
}

func TestWallRaySensorOutOfRangeReadsZero(t *testing.T) {
	s, err := NewWallRaySensor(capability.MustParseArguments("numberofrays=3,range=0.5,aperture=90"))
	if err != nil {
		t.Fatalf("new wall ray: %v", err)
	}
	s.Update(world.RobotState{Radius: 0.05}, world.View{Walls: geom.Box(10)})
	for i := 0; i < 3; i++ {
		if s.Reading(i) != 0 {
			t.Fatalf("ray %d should not see a wall 5 away: %f", i, s.Reading(i))
		}
	}
	if math.Abs(s.RayAngle(0)+math.Pi/4) > tolerance || math.Abs(s.RayAngle(2)-math.Pi/4) > tolerance {
		t.Fatalf("unexpected fan: %f %f", s.RayAngle(0), s.RayAngle(2))
	}
}

func TestWallRaySensorValidatesArguments(t *testing.T) {
	if _, err := NewWallRaySensor(capability.MustParseArguments("numberofrays=0")); !errors.Is(err, capability.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if _, err := NewWallRaySensor(capability.MustParseArguments("range=x")); !errors.Is(err, capability.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestPositionSensorNormalizesIntoArena(t *testing.T) {
	s, err := NewPositionSensor(capability.MustParseArguments("halfwidth=2"))
	if err != nil {
		t.Fatalf("new position: %v", err)
	}
	s.Update(world.RobotState{Position: geom.V(1, -2)}, world.View{})
	if math.Abs(s.Reading(0)-0.75) > tolerance || math.Abs(s.Reading(1)) > tolerance {
		t.Fatalf("unexpected readings %f %f", s.Reading(0), s.Reading(1))
	}
}

func TestNearRobotSensorFindsClosestNeighbour(t *testing.T) {
	s, err := NewNearRobotSensor(capability.MustParseArguments("range=2"))
	if err != nil {
		t.Fatalf("new near robot: %v", err)
	}
	self := world.RobotState{ID: 0, Position: geom.V(0, 0)}
	view := world.View{Robots: []world.RobotState{
		self,
		{ID: 1, Position: geom.V(0, 1)},
		{ID: 2, Position: geom.V(3, 0)},
	}}
	s.Update(self, view)
	if math.Abs(s.Reading(0)-0.5) > tolerance {
		t.Fatalf("closeness %f want 0.5", s.Reading(0))
	}
	// Neighbour straight to the left: bearing π/2 maps to 0.75.
	if math.Abs(s.Reading(1)-0.75) > tolerance {
		t.Fatalf("bearing %f want 0.75", s.Reading(1))
	}

	s.Update(self, world.View{Robots: []world.RobotState{self}})
	if s.Reading(0) != 0 || s.Reading(1) != 0 {
		t.Fatalf("alone robot should read zeros, got %f %f", s.Reading(0), s.Reading(1))
	}
}

func TestNoiseIsDeterministicAndBounded(t *testing.T) {
	args := capability.MustParseArguments("noise=0.05,seed=9")
	a, err := NewCompassSensor(args)
	if err != nil {
		t.Fatalf("new compass: %v", err)
	}
	b, err := NewCompassSensor(args)
	if err != nil {
		t.Fatalf("new compass: %v", err)
	}
	self := world.RobotState{Orientation: math.Pi}
	differs := false
	for tick := 0; tick < 20; tick++ {
		view := world.View{Time: float64(tick) * 0.1}
		a.Update(self, view)
		b.Update(self, view)
		if a.Reading(0) != b.Reading(0) {
			t.Fatalf("same seed produced different readings at tick %d", tick)
		}
		if math.Abs(a.Reading(0)-0.5) > 0.05+tolerance {
			t.Fatalf("noise exceeded amplitude: %f", a.Reading(0))
		}
		if a.Reading(0) != 0.5 {
			differs = true
		}
	}
	if !differs {
		t.Fatal("expected noise to perturb at least one reading")
	}
}

func TestRegisterResolvesEveryBuiltInSensor(t *testing.T) {
	reg := capability.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("register: %v", err)
	}
	for _, name := range []string{CompassSensorName, WallRaySensorName, PositionSensorName, NearRobotSensorName, "wall_rays"} {
		s, err := capability.ResolveAs[robot.Sensor](reg, name, capability.MustParseArguments("id=3"))
		if err != nil {
			t.Fatalf("resolve %s: %v", name, err)
		}
		if s.ID() != 3 {
			t.Fatalf("%s: id %d want 3", name, s.ID())
		}
		if _, err := capability.ResolveAs[robot.Sensor](reg, name); err != nil {
			t.Fatalf("resolve %s with defaults: %v", name, err)
		}
	}
	if got := reg.List(capability.KindSensor); len(got) != 4 {
		t.Fatalf("unexpected sensors: %v", got)
	}
}
