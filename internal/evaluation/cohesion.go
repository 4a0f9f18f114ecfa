package evaluation

import (
	"math"

	"github.com/stevengo-git/jbotevolver/internal/world"
)

// Cohesion rewards a tight group: each tick scores 1/(1+rms distance to the
// centroid), averaged over elapsed time.
type Cohesion struct {
	weighted float64
	elapsed  float64
}

func NewCohesion() *Cohesion { return &Cohesion{} }

func (c *Cohesion) Update(view world.View) {
	c.elapsed += view.Dt
	n := float64(len(view.Robots))
	if n == 0 {
		return
	}
	var sx, sy, sq float64
	for _, r := range view.Robots {
		sx += r.Position.X
		sy += r.Position.Y
		sq += r.Position.X*r.Position.X + r.Position.Y*r.Position.Y
	}
	mx, my := sx/n, sy/n
	variance := math.Max(0, sq/n-(mx*mx+my*my))
	c.weighted += view.Dt / (1 + math.Sqrt(variance))
}

func (c *Cohesion) Fitness() float64 {
	if c.elapsed <= 0 {
		return 0
	}
	return c.weighted / c.elapsed
}
