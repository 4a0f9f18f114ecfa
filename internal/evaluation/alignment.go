package evaluation

import (
	"math"

	"github.com/stevengo-git/jbotevolver/internal/world"
)

// Alignment rewards headings that cluster. Each tick adds the length of the
// mean heading vector, in [0,1]; the fitness divides that total by elapsed
// simulated time.
type Alignment struct {
	total   float64
	elapsed float64
}

func NewAlignment() *Alignment { return &Alignment{} }

func (a *Alignment) Update(view world.View) {
	a.elapsed += view.Dt
	if len(view.Robots) == 0 {
		return
	}
	var cos, sin float64
	for _, r := range view.Robots {
		cos += math.Cos(r.Orientation)
		sin += math.Sin(r.Orientation)
	}
	a.total += math.Hypot(cos, sin) / float64(len(view.Robots))
}

func (a *Alignment) Fitness() float64 {
	if a.elapsed <= 0 {
		return 0
	}
	return a.total / a.elapsed
}
