package robot

import (
	"errors"
	"fmt"
	"math"

	"github.com/stevengo-git/jbotevolver/internal/geo"
	"github.com/stevengo-git/jbotevolver/internal/geom"
	"github.com/stevengo-git/jbotevolver/internal/world"
)

var ErrMissingRequiredActuator = errors.New("missing required actuator")

const (
	DefaultInertiaConstant      = 0.05
	DefaultAccelerationConstant = 0.1
	DefaultBackwardDamping      = 0.2
	DefaultWheelSeparation      = 0.05
	DefaultRadius               = 0.05
)

type Physics struct {
	InertiaConstant      float64 `json:"inertia_constant" yaml:"inertia_constant"`
	AccelerationConstant float64 `json:"acceleration_constant" yaml:"acceleration_constant"`
	BackwardDamping      float64 `json:"backward_damping" yaml:"backward_damping"`
	WheelSeparation      float64 `json:"wheel_separation" yaml:"wheel_separation"`
}

func DefaultPhysics() Physics {
	return Physics{
		InertiaConstant:      DefaultInertiaConstant,
		AccelerationConstant: DefaultAccelerationConstant,
		BackwardDamping:      DefaultBackwardDamping,
		WheelSeparation:      DefaultWheelSeparation,
	}
}

func (p Physics) Validate() error {
	if p.InertiaConstant < 0 || p.InertiaConstant > 1 {
		return fmt.Errorf("inertia constant must be within [0, 1], got %f", p.InertiaConstant)
	}
	if p.WheelSeparation <= 0 {
		return fmt.Errorf("wheel separation must be positive, got %f", p.WheelSeparation)
	}
	if p.BackwardDamping < 0 {
		return fmt.Errorf("backward damping must not be negative, got %f", p.BackwardDamping)
	}
	return nil
}

type Config struct {
	ID          int
	Position    geom.Vec2
	Orientation float64
	Radius      float64
	Physics     Physics
}

// Robot is a planar differential-drive agent with inertia. Pose and velocity
// change only inside Step.
type Robot struct {
	id          int
	position    geom.Vec2
	orientation float64
	velocity    geom.Vec2
	leftSpeed   float64
	rightSpeed  float64
	radius      float64
	physics     Physics
	led         LedState

	sensors   []Sensor
	actuators []Actuator
	wheels    WheelDriver
}

func New(cfg Config) (*Robot, error) {
	if err := cfg.Physics.Validate(); err != nil {
		return nil, fmt.Errorf("robot %d: %w", cfg.ID, err)
	}
	radius := cfg.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	return &Robot{
		id:          cfg.ID,
		position:    cfg.Position,
		orientation: geom.ModPI2(cfg.Orientation),
		radius:      radius,
		physics:     cfg.Physics,
	}, nil
}

func (r *Robot) ID() int { return r.id }

func (r *Robot) Position() geom.Vec2 { return r.position }

// Orientation is always within [0, 2π).
func (r *Robot) Orientation() float64 { return r.orientation }

func (r *Robot) Velocity() geom.Vec2 { return r.velocity }

func (r *Robot) Radius() float64 { return r.radius }

func (r *Robot) Physics() Physics { return r.physics }

func (r *Robot) WheelSpeeds() (left, right float64) {
	return r.leftSpeed, r.rightSpeed
}

// SetWheelSpeeds stores the commands the next Step integrates.
func (r *Robot) SetWheelSpeeds(left, right float64) {
	r.leftSpeed = left
	r.rightSpeed = right
}

func (r *Robot) LED() LedState { return r.led }

func (r *Robot) SetLED(state LedState) { r.led = state }

// Place teleports the robot during setup and clears its momentum.
func (r *Robot) Place(position geom.Vec2, orientation float64) {
	r.position = position
	r.orientation = geom.ModPI2(orientation)
	r.velocity = geom.Vec2{}
}

func (r *Robot) AttachSensor(s Sensor) {
	r.sensors = append(r.sensors, s)
}

func (r *Robot) AttachActuator(a Actuator) {
	r.actuators = append(r.actuators, a)
}

func (r *Robot) Sensors() []Sensor {
	return append([]Sensor(nil), r.sensors...)
}

func (r *Robot) Actuators() []Actuator {
	return append([]Actuator(nil), r.actuators...)
}

func (r *Robot) SensorByID(id int) (Sensor, bool) {
	for _, s := range r.sensors {
		if s.ID() == id {
			return s, true
		}
	}
	return nil, false
}

// RequireWheels returns the attached wheel actuator, caching it after the
// first lookup.
func (r *Robot) RequireWheels() (WheelDriver, error) {
	if r.wheels == nil {
		for _, a := range r.actuators {
			if w, ok := a.(WheelDriver); ok {
				r.wheels = w
				break
			}
		}
	}
	if r.wheels == nil {
		return nil, fmt.Errorf("%w: robot %d has no wheel actuator", ErrMissingRequiredActuator, r.id)
	}
	return r.wheels, nil
}

// SetMotorSpeeds forwards commands to the attached wheel actuator and applies
// it immediately.
func (r *Robot) SetMotorSpeeds(left, right float64) error {
	if _, err := r.RequireWheels(); err != nil {
		return err
	}
	r.wheels.SetWheelSpeeds(left, right)
	r.wheels.Apply(r)
	return nil
}

// Step integrates one tick of length dt, then lets every actuator act in
// attachment order.
func (r *Robot) Step(dt float64) {
	p := r.physics
	r.orientation = geom.ModPI2(r.orientation + dt*0.5/(p.WheelSeparation/2)*(r.rightSpeed-r.leftSpeed))

	direction := 1.0
	if r.rightSpeed+r.leftSpeed < 0 {
		direction = -1
	}
	mean := (r.leftSpeed + r.rightSpeed) / 2
	magnitude := p.AccelerationConstant * mean * mean * direction
	if direction < 0 {
		magnitude *= p.BackwardDamping
	}
	acceleration := geom.Polar(magnitude, r.orientation)

	r.velocity = r.velocity.Scale(1 - p.InertiaConstant).Add(acceleration)
	r.position = r.position.Add(r.velocity.Scale(dt))

	for _, a := range r.actuators {
		a.Apply(r)
	}
}

func (r *Robot) State() world.RobotState {
	return world.RobotState{
		ID:          r.id,
		Position:    r.position,
		Orientation: r.orientation,
		Velocity:    r.velocity,
		Radius:      r.radius,
	}
}

// UpdateSensors refreshes every sensor from the given snapshot.
func (r *Robot) UpdateSensors(view world.View) {
	self := r.State()
	for _, s := range r.sensors {
		s.Update(self, view)
	}
}

func (r *Robot) CompassHeadingDegrees() float64 {
	return geom.CompassHeading(r.orientation)
}

func (r *Robot) SetCompassHeadingDegrees(heading float64) {
	r.orientation = geom.OrientationFromHeading(heading)
}

func (r *Robot) GPS(conv geo.Converter) geo.LatLon {
	return conv.ToGPS(r.position)
}

func (r *Robot) NetworkAddress() string {
	return fmt.Sprintf("%d:%d:%d:%d", r.id, r.id, r.id, r.id)
}

func (r *Robot) String() string {
	return fmt.Sprintf("robot %d at %s heading %.1f°", r.id, r.position, r.CompassHeadingDegrees())
}

// Speed is the magnitude of the current velocity.
func (r *Robot) Speed() float64 {
	return math.Hypot(r.velocity.X, r.velocity.Y)
}
