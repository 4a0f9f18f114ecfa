package sim

import "fmt"

// Clock is the simulation time handle. Only the simulator advances it;
// adapters and sensors read it.
type Clock struct {
	dt    float64
	ticks int
}

func NewClock(dt float64) (*Clock, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("dt must be positive, got %f", dt)
	}
	return &Clock{dt: dt}, nil
}

// Time is elapsed simulated time. It is derived from the tick count so that
// it does not drift.
func (c *Clock) Time() float64 { return float64(c.ticks) * c.dt }

func (c *Clock) Dt() float64 { return c.dt }

func (c *Clock) Ticks() int { return c.ticks }

func (c *Clock) advance() { c.ticks++ }
