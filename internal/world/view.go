// Package world holds the read-only snapshot of a simulation tick that
// sensors and evaluators observe.
package world

import "github.com/stevengo-git/jbotevolver/internal/geom"

type RobotState struct {
	ID          int
	Position    geom.Vec2
	Orientation float64
	Velocity    geom.Vec2
	Radius      float64
}

// View is a value snapshot; mutating it never reaches the robots it was taken
// from.
type View struct {
	Time   float64
	Dt     float64
	Robots []RobotState
	Walls  []geom.Segment
}

func (v View) Robot(id int) (RobotState, bool) {
	for _, r := range v.Robots {
		if r.ID == id {
			return r, true
		}
	}
	return RobotState{}, false
}

// Others returns every robot except the one with the given id.
func (v View) Others(id int) []RobotState {
	out := make([]RobotState, 0, len(v.Robots))
	for _, r := range v.Robots {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
