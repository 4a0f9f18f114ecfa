package robot

import "github.com/stevengo-git/jbotevolver/internal/world"

// Sensor perceives the world. It observes value snapshots only and cannot
// move its robot.
type Sensor interface {
	ID() int
	Name() string
	// InputKey names the controller-input adapter that pairs with this
	// sensor when inputs are wired automatically.
	InputKey() string
	Update(self world.RobotState, view world.View)
	NumReadings() int
	Reading(i int) float64
}

type Actuator interface {
	Name() string
	// Apply runs after the robot has been integrated for the tick.
	Apply(r *Robot)
}

// Commandable actuators consume a slice of a controller's output vector.
type Commandable interface {
	Actuator
	NumCommands() int
	Command(values []float64)
}

// WheelDriver is the actuator the robot drives its motors through.
type WheelDriver interface {
	Actuator
	SetWheelSpeeds(left, right float64)
}

type LedState int

const (
	LedOff LedState = iota
	LedOn
	LedBlinking
)

func (s LedState) String() string {
	switch s {
	case LedOn:
		return "on"
	case LedBlinking:
		return "blinking"
	default:
		return "off"
	}
}
