package input

import (
	"fmt"

	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/robot"
	"github.com/stevengo-git/jbotevolver/internal/sensor"
)

const (
	CompassInputName   = "CompassNNInput"
	WallRayInputName   = "WallRayNNInput"
	PositionInputName  = "PositionNNInput"
	NearRobotInputName = "NearRobotNNInput"
	SensorInputName    = "SensorNNInput"
	BiasInputName      = "BiasNNInput"
	TimeInputName      = "TimeNNInput"
)

// Adapter contributes NumValues scalars to a controller-input vector.
type Adapter interface {
	Name() string
	NumValues() int
	Value(i int) float64
}

// Clock is the simulation handle given to adapters that do not read a
// sensor.
type Clock interface {
	Time() float64
}

// SensorInput exposes every reading of its sensor, in reading order.
type SensorInput struct {
	name   string
	sensor robot.Sensor
}

func NewSensorInput(name string, s robot.Sensor) *SensorInput {
	return &SensorInput{name: name, sensor: s}
}

func (in *SensorInput) Name() string { return in.name }

func (in *SensorInput) Sensor() robot.Sensor { return in.sensor }

func (in *SensorInput) NumValues() int { return in.sensor.NumReadings() }

func (in *SensorInput) Value(i int) float64 { return in.sensor.Reading(i) }

// BiasInput always yields 1.
type BiasInput struct{}

func (BiasInput) Name() string { return BiasInputName }

func (BiasInput) NumValues() int { return 1 }

func (BiasInput) Value(int) float64 { return 1 }

// TimeInput yields elapsed simulated time as a fraction of a horizon,
// saturating at 1.
type TimeInput struct {
	clock   Clock
	horizon float64
}

func NewTimeInput(clock Clock, args capability.Arguments) (*TimeInput, error) {
	horizon, err := args.Float("horizon", 100)
	if err != nil {
		return nil, err
	}
	if horizon <= 0 {
		return nil, fmt.Errorf("%w: horizon must be positive, got %f", capability.ErrInvalidArgument, horizon)
	}
	return &TimeInput{clock: clock, horizon: horizon}, nil
}

func (in *TimeInput) Name() string { return TimeInputName }

func (in *TimeInput) NumValues() int { return 1 }

func (in *TimeInput) Value(int) float64 {
	v := in.clock.Time() / in.horizon
	if v > 1 {
		return 1
	}
	return v
}

// Register adds the built-in adapters. Sensor adapters only accept their own
// sensor type, so pairing a sensor with the wrong adapter fails to resolve.
func Register(reg *capability.Registry) error {
	sensorAdapters := []struct {
		name  string
		param capability.Param
	}{
		{CompassInputName, capability.Of[*sensor.CompassSensor]("sensor")},
		{WallRayInputName, capability.Of[*sensor.WallRaySensor]("sensor")},
		{PositionInputName, capability.Of[*sensor.PositionSensor]("sensor")},
		{NearRobotInputName, capability.Of[*sensor.NearRobotSensor]("sensor")},
		{SensorInputName, capability.Of[robot.Sensor]("sensor")},
	}
	for _, a := range sensorAdapters {
		name := a.name
		err := reg.Register(capability.Spec{
			Name: name,
			Kind: capability.KindInput,
			Constructors: []capability.Constructor{
				{
					Params: []capability.Param{a.param},
					New:    func(args []any) (any, error) { return NewSensorInput(name, args[0].(robot.Sensor)), nil },
				},
				{
					Params: []capability.Param{a.param, capability.Args("args")},
					New:    func(args []any) (any, error) { return NewSensorInput(name, args[0].(robot.Sensor)), nil },
				},
			},
		})
		if err != nil {
			return err
		}
	}

	err := reg.Register(capability.Spec{
		Name: BiasInputName,
		Kind: capability.KindInput,
		Constructors: []capability.Constructor{
			{
				Params: []capability.Param{capability.Of[Clock]("clock"), capability.Args("args")},
				New:    func([]any) (any, error) { return BiasInput{}, nil },
			},
		},
	})
	if err != nil {
		return err
	}
	return reg.Register(capability.Spec{
		Name: TimeInputName,
		Kind: capability.KindInput,
		Constructors: []capability.Constructor{
			{
				Params: []capability.Param{capability.Of[Clock]("clock"), capability.Args("args")},
				New: func(args []any) (any, error) {
					return NewTimeInput(args[0].(Clock), args[1].(capability.Arguments))
				},
			},
		},
	})
}
