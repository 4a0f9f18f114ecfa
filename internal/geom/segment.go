package geom

const epsilon = 1e-12

type Segment struct {
	A Vec2 `json:"a" yaml:"a"`
	B Vec2 `json:"b" yaml:"b"`
}

// RayDistance returns the distance along the unit direction dir from origin
// to the segment, or false when the ray misses it. Colinear overlaps count as
// misses; a ray grazing along a wall does not see it.
func RayDistance(origin, dir Vec2, s Segment) (float64, bool) {
	edge := s.B.Sub(s.A)
	denom := dir.Cross(edge)
	if denom > -epsilon && denom < epsilon {
		return 0, false
	}
	diff := s.A.Sub(origin)
	t := diff.Cross(edge) / denom
	u := diff.Cross(dir) / denom
	if t < 0 || u < 0 || u > 1 {
		return 0, false
	}
	return t, true
}

// Box returns the four walls of an axis-aligned square arena of the given
// side centered on the origin.
func Box(side float64) []Segment {
	h := side / 2
	return []Segment{
		{A: V(-h, -h), B: V(h, -h)},
		{A: V(h, -h), B: V(h, h)},
		{A: V(h, h), B: V(-h, h)},
		{A: V(-h, h), B: V(-h, -h)},
	}
}
