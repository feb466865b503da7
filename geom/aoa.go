package geom

import (
	"fmt"
	"math"
)

// AoaVector holds the angles reported by a pair of angle-of-arrival
// antennas. It is not a spherical vector: azimuth and elevation are
// symmetric, each measured directly against its antenna baseline, so a
// target straight up reads an azimuth near zero. Some combinations are
// geometrically impossible, e.g. a 90 degree azimuth with any non-zero
// elevation; construction scales those back inside legal limits.
type AoaVector struct {
	Azimuth   float64
	Elevation float64
	Distance  float64
}

// AoaFromRadians builds a normalized AoaVector from angles in radians.
func AoaFromRadians(azimuth, elevation, distance float64) AoaVector {
	elevation = NormalizeRadians(elevation)
	if ae := math.Abs(elevation); ae > HalfPi {
		elevation = (math.Pi - ae) * sign(elevation)
		azimuth += math.Pi
	}
	if distance < 0 {
		azimuth += math.Pi
		elevation = -elevation
		distance = -distance
	}
	azimuth = NormalizeRadians(azimuth)

	backFacing := math.Abs(azimuth) > HalfPi

	// Azimuth as if the target were front-facing.
	laz := azimuth
	if backFacing {
		laz = math.Pi*sign(azimuth) - azimuth
	}
	// |azimuth| + |elevation| beyond 90 degrees cannot be produced by real
	// antenna geometry; scale both back, biasing away from 90.
	if scale := (math.Abs(laz) + math.Abs(elevation)) / HalfPi; scale > 1 {
		elevation /= scale
		if backFacing {
			azimuth = math.Pi*sign(azimuth) - laz/scale
		} else {
			azimuth /= scale
		}
	}

	return AoaVector{Azimuth: azimuth, Elevation: elevation, Distance: distance}
}

// AoaFromDegrees builds a normalized AoaVector from angles in degrees.
func AoaFromDegrees(azimuth, elevation, distance float64) AoaVector {
	return AoaFromRadians(Radians(azimuth), Radians(elevation), distance)
}

// AoaFromCartesian converts a cartesian position to antenna angles.
func AoaFromCartesian(position Vector3) AoaVector {
	d := position.Length()
	if d == 0 {
		return AoaVector{}
	}
	azimuth := math.Asin(Clamp(position.X/d, -1, 1))
	elevation := math.Asin(Clamp(position.Y/d, -1, 1))
	if position.Z > 0 {
		// Behind the device: mirror azimuth front-to-back.
		azimuth = math.Pi*sign(azimuth) - azimuth
	}
	return AoaFromRadians(azimuth, elevation, d)
}

// AoaFromSpherical converts spherical angles to antenna angles.
func AoaFromSpherical(vec SphericalVector) AoaVector {
	azimuth := vec.Azimuth
	mirrored := math.Abs(azimuth) > HalfPi
	if mirrored {
		azimuth = math.Pi - azimuth
	}
	ca := math.Cos(azimuth)
	se := math.Sin(vec.Elevation)
	ce := math.Cos(vec.Elevation)
	az := math.Acos(math.Sqrt(ce*ce*ca*ca+se*se)) * sign(vec.Azimuth)
	if mirrored {
		az = math.Pi - az
	}
	return AoaFromRadians(az, vec.Elevation, vec.Distance)
}

// ToSpherical converts antenna angles to a spherical vector.
func (a AoaVector) ToSpherical() SphericalVector {
	azimuth := a.Azimuth
	mirrored := math.Abs(azimuth) > HalfPi
	if mirrored {
		azimuth = math.Pi - azimuth
	}
	ca := math.Cos(azimuth)
	se := math.Sin(a.Elevation)
	az := math.Acos(math.Sqrt(math.Max(ca*ca-se*se, 0))/math.Cos(a.Elevation)) * sign(a.Azimuth)
	if mirrored {
		az = math.Pi - az
	}
	return SphericalFromRadians(az, a.Elevation, a.Distance)
}

// ToCartesian converts to a cartesian position. Impossible angle
// combinations collapse onto the X/Y plane.
func (a AoaVector) ToCartesian() Vector3 {
	x := a.Distance * math.Sin(a.Azimuth)
	y := a.Distance * math.Sin(a.Elevation)
	z2 := a.Distance*a.Distance - x*x - y*y
	z := 0.0
	if z2 > 0 {
		z = math.Sqrt(z2)
	}
	if math.Abs(a.Azimuth) < HalfPi {
		z = -z
	}
	return Vector3{X: x, Y: y, Z: z}
}

func (a AoaVector) String() string {
	return fmt.Sprintf("[aoa% 6.1f,% 5.1f,d%5.2f]",
		Degrees(a.Azimuth), Degrees(a.Elevation), a.Distance)
}
