package geom

import (
	"fmt"
	"math"
)

// SphericalVector is a point described by where a device has to aim to see
// it: azimuth around +Y (increasing toward +X), elevation around +X
// (increasing toward +Y), and straight-line distance. Zero azimuth and
// elevation face into -Z.
//
// Values are normalized on construction: angles land in (-pi, pi], an
// elevation beyond +/-90 degrees mirrors over the pole and flips the
// azimuth, and a negative distance turns the vector around instead.
type SphericalVector struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// SphericalFromRadians builds a normalized SphericalVector from angles in
// radians and distance in meters.
func SphericalFromRadians(azimuth, elevation, distance float64) SphericalVector {
	elevation = NormalizeRadians(elevation)
	if ae := math.Abs(elevation); ae > HalfPi {
		// Mirror over the pole and look the other way.
		elevation = (math.Pi - ae) * sign(elevation)
		azimuth += math.Pi
	}
	if distance < 0 {
		// Negative distance points backwards and upside-down.
		azimuth += math.Pi
		elevation = -elevation
		distance = -distance
	}
	return SphericalVector{
		Azimuth:   NormalizeRadians(azimuth),
		Elevation: elevation,
		Distance:  distance,
	}
}

// SphericalFromDegrees builds a normalized SphericalVector from angles in
// degrees and distance in meters.
func SphericalFromDegrees(azimuth, elevation, distance float64) SphericalVector {
	return SphericalFromRadians(Radians(azimuth), Radians(elevation), distance)
}

// SphericalFromCartesian converts a cartesian position to its spherical
// representation. The origin converts to an all-zero vector.
func SphericalFromCartesian(position Vector3) SphericalVector {
	d := position.Length()
	if d == 0 {
		return SphericalVector{}
	}
	azimuth := math.Atan2(position.X, -position.Z)
	elevation := math.Asin(Clamp(position.Y/d, -1, 1))
	return SphericalFromRadians(azimuth, elevation, d)
}

// ToCartesian converts back to a cartesian position.
func (s SphericalVector) ToCartesian() Vector3 {
	ce := math.Cos(s.Elevation)
	x := s.Distance * ce * math.Sin(s.Azimuth)
	y := s.Distance * math.Sin(s.Elevation)
	z := s.Distance * math.Abs(ce*math.Cos(s.Azimuth))
	if math.Abs(s.Azimuth) <= HalfPi {
		z = -z
	}
	return Vector3{X: x, Y: y, Z: z}
}

// ToAoa reinterprets the vector as angle-of-arrival angles.
func (s SphericalVector) ToAoa() AoaVector {
	return AoaFromSpherical(s)
}

// ToAnnotated wraps the vector as a fully-populated Annotated with full
// confidence in every field.
func (s SphericalVector) ToAnnotated() Annotated {
	return NewAnnotated(s, true, true, true)
}

func (s SphericalVector) String() string {
	return fmt.Sprintf("[az% 6.1f,el% 5.1f,d%5.2f]",
		Degrees(s.Azimuth), Degrees(s.Elevation), s.Distance)
}

// Annotated is a SphericalVector whose fields may be individually missing,
// each carrying a figure of merit between 0 (worthless) and 1 (fully
// trusted). A field can be present with a FOM near zero: supplied, but not
// to be believed.
type Annotated struct {
	SphericalVector
	HasAzimuth   bool
	HasElevation bool
	HasDistance  bool
	AzimuthFOM   float64
	ElevationFOM float64
	DistanceFOM  float64
}

// NewAnnotated wraps a SphericalVector with the given presence flags. All
// figures of merit start at full confidence.
func NewAnnotated(v SphericalVector, hasAzimuth, hasElevation, hasDistance bool) Annotated {
	return Annotated{
		SphericalVector: v,
		HasAzimuth:      hasAzimuth,
		HasElevation:    hasElevation,
		HasDistance:     hasDistance,
		AzimuthFOM:      1,
		ElevationFOM:    1,
		DistanceFOM:     1,
	}
}

// IsComplete reports whether azimuth, elevation and distance are all present.
func (a Annotated) IsComplete() bool {
	return a.HasAzimuth && a.HasElevation && a.HasDistance
}

// WithFOMFrom returns a copy of a carrying the figures of merit from other.
func (a Annotated) WithFOMFrom(other Annotated) Annotated {
	a.AzimuthFOM = other.AzimuthFOM
	a.ElevationFOM = other.ElevationFOM
	a.DistanceFOM = other.DistanceFOM
	return a
}

func (a Annotated) String() string {
	az, el, dist := "    x ", "   x ", "  x  "
	if a.HasAzimuth {
		az = fmt.Sprintf("% 6.1f", Degrees(a.Azimuth))
	}
	if a.HasElevation {
		el = fmt.Sprintf("% 5.1f", Degrees(a.Elevation))
	}
	if a.HasDistance {
		dist = fmt.Sprintf("%5.2f", a.Distance)
	}
	return fmt.Sprintf("[az%s,el%s,d%s]", az, el, dist)
}

func sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	if x > 0 {
		return 1
	}
	return 0
}
