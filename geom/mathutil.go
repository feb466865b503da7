package geom

import "math"

// HalfPi is cached because azimuth front/back tests use it constantly.
const HalfPi = math.Pi / 2

// NormalizeRadians converts radians that may be outside +/-pi to an
// equivalent rotation value above -pi and up to pi.
func NormalizeRadians(rad float64) float64 {
	return rad - (2 * math.Pi * math.Ceil((rad-math.Pi)/(2*math.Pi)))
}

// NormalizeDegrees converts degrees that may be outside +/-180 to an
// equivalent rotation value above -180 and up to 180.
func NormalizeDegrees(deg float64) float64 {
	return deg - 360*math.Ceil((deg-180)/360)
}

// Clamp returns x within [min, max].
func Clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}

// Lerp linearly interpolates between a and b by the ratio t.
func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees.
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }
