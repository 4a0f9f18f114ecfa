package sensor

import (
	"github.com/stevengo-git/jbotevolver/internal/capability"
	"github.com/stevengo-git/jbotevolver/internal/robot"
)

// Register adds every built-in sensor. Each accepts an argument list or no
// arguments at all (defaults).
func Register(reg *capability.Registry) error {
	factories := []struct {
		name    string
		aliases []string
		build   func(capability.Arguments) (robot.Sensor, error)
	}{
		{CompassSensorName, []string{"compass"}, func(a capability.Arguments) (robot.Sensor, error) { return NewCompassSensor(a) }},
		{WallRaySensorName, []string{"wall_rays"}, func(a capability.Arguments) (robot.Sensor, error) { return NewWallRaySensor(a) }},
		{PositionSensorName, []string{"gps"}, func(a capability.Arguments) (robot.Sensor, error) { return NewPositionSensor(a) }},
		{NearRobotSensorName, []string{"robot_proximity"}, func(a capability.Arguments) (robot.Sensor, error) { return NewNearRobotSensor(a) }},
	}
	for _, f := range factories {
		build := f.build
		err := reg.Register(capability.Spec{
			Name:    f.name,
			Kind:    capability.KindSensor,
			Aliases: f.aliases,
			Constructors: []capability.Constructor{
				{
					Params: []capability.Param{capability.Args("args")},
					New:    func(args []any) (any, error) { return build(args[0].(capability.Arguments)) },
				},
				{
					New: func([]any) (any, error) { return build(capability.Arguments{}) },
				},
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}
