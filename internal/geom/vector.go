package geom

import (
	"math"
	"strconv"
)

type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

func V(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Polar returns the vector of the given length pointing along angle.
func Polar(length, angle float64) Vec2 {
	return Vec2{X: length * math.Cos(angle), Y: length * math.Sin(angle)}
}

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{X: a.X + b.X, Y: a.Y + b.Y}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{X: a.X - b.X, Y: a.Y - b.Y}
}

func (a Vec2) Scale(f float64) Vec2 {
	return Vec2{X: a.X * f, Y: a.Y * f}
}

func (a Vec2) Dot(b Vec2) float64 {
	return a.X*b.X + a.Y*b.Y
}

func (a Vec2) Cross(b Vec2) float64 {
	return a.X*b.Y - a.Y*b.X
}

func (a Vec2) Length() float64 {
	return math.Hypot(a.X, a.Y)
}

func (a Vec2) DistanceTo(b Vec2) float64 {
	return a.Sub(b).Length()
}

// Angle is the direction of the vector in (-π, π].
func (a Vec2) Angle() float64 {
	return math.Atan2(a.Y, a.X)
}

func (a Vec2) Rotate(angle float64) Vec2 {
	sin, cos := math.Sincos(angle)
	return Vec2{X: a.X*cos - a.Y*sin, Y: a.X*sin + a.Y*cos}
}

func (a Vec2) IsZero() bool {
	return a.X == 0 && a.Y == 0
}

func (a Vec2) String() string {
	return "(" + strconv.FormatFloat(a.X, 'f', 4, 64) + ", " + strconv.FormatFloat(a.Y, 'f', 4, 64) + ")"
}
