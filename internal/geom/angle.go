package geom

import "math"

const TwoPi = 2 * math.Pi

// ModPI2 wraps an angle into [0, 2π).
func ModPI2(angle float64) float64 {
	angle = math.Mod(angle, TwoPi)
	if angle < 0 {
		angle += TwoPi
	}
	if angle >= TwoPi {
		angle = 0
	}
	return angle
}

// ModPI wraps an angle into (-π, π].
func ModPI(angle float64) float64 {
	angle = ModPI2(angle)
	if angle > math.Pi {
		angle -= TwoPi
	}
	return angle
}

func Degrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// CompassHeading converts a mathematical orientation (radians, counter
// clockwise from +X) into a compass heading in degrees, clockwise from north.
func CompassHeading(orientation float64) float64 {
	heading := math.Mod(360-Degrees(ModPI2(orientation))+90, 360)
	if heading < 0 {
		heading += 360
	}
	return heading
}

// OrientationFromHeading is the inverse of CompassHeading.
func OrientationFromHeading(heading float64) float64 {
	return ModPI2(Radians(90 - heading))
}
