// Package sensor provides the built-in robot sensors.
package sensor

import (
	"fmt"

	"github.com/stevengo-git/jbotevolver/internal/capability"
)

const (
	CompassSensorName   = "CompassSensor"
	WallRaySensorName   = "WallRaySensor"
	PositionSensorName  = "PositionSensor"
	NearRobotSensorName = "NearRobotSensor"
)

// base carries the id, readings buffer and noise model shared by every
// sensor.
type base struct {
	id       int
	readings []float64
	noise    *Noise
}

func newBase(args capability.Arguments, readings int) (base, error) {
	id, err := args.Int("id", 0)
	if err != nil {
		return base{}, err
	}
	noise, err := NoiseFromArguments(args, id)
	if err != nil {
		return base{}, err
	}
	return base{id: id, readings: make([]float64, readings), noise: noise}, nil
}

func (b *base) ID() int { return b.id }

func (b *base) NumReadings() int { return len(b.readings) }

func (b *base) Reading(i int) float64 {
	if i < 0 || i >= len(b.readings) {
		panic(fmt.Sprintf("sensor %d: reading %d out of range [0, %d)", b.id, i, len(b.readings)))
	}
	return b.readings[i]
}

// set stores a reading after noise, clamped to [0, 1].
func (b *base) set(i int, value, time float64) {
	if b.noise != nil {
		value = b.noise.Apply(value, time, i)
	}
	b.readings[i] = clamp01(value)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func (b *base) String() string {
	return fmt.Sprintf("id=%d readings=%v", b.id, b.readings)
}
