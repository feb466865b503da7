package primers

import (
	"math"

	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

// FovPrimer replaces angles outside a configured field of view with
// predicted angles. Most ranging hardware loses angular accuracy past a
// certain off-axis angle, and conversely reports erroneously steep angles
// when the signal degrades.
//
// The imposed field of view is double-cone shaped: a circular area in
// front of the device and its mirror image behind. Other primers can
// narrow the view to forward-only if needed.
type FovPrimer struct {
	cosFov     float64
	lastGoodMs float64
}

// NewFovPrimer creates a primer imposing the given field of view, in
// radians off axis. Values beyond pi impose no limit.
func NewFovPrimer(fov float64) *FovPrimer {
	if fov > math.Pi {
		fov = math.Pi
	}
	return &FovPrimer{cosFov: math.Cos(fov)}
}

// Prime substitutes the prediction for readings outside the field of view,
// decaying the azimuth confidence by how stale the last in-view reading
// is. Without a prediction there is nothing to substitute, so the reading
// passes through.
func (p *FovPrimer) Prime(
	input geom.Annotated,
	prediction *geom.SphericalVector,
	src pose.Source,
	timeMs int64,
) geom.Annotated {
	if prediction == nil {
		return input
	}

	azimuth := prediction.Azimuth
	if input.HasAzimuth {
		azimuth = input.Azimuth
	}
	elevation := prediction.Elevation
	if input.HasElevation {
		elevation = input.Elevation
	}

	// The absolute cartesian Z of the az/el direction locates the reading
	// relative to the double cone; comparing against cos(fov) avoids the
	// acos.
	zValue := math.Abs(math.Cos(elevation) * math.Cos(azimuth))
	if zValue >= p.cosFov {
		p.lastGoodMs = float64(timeMs)
		return input
	}

	result := geom.NewAnnotated(
		geom.SphericalFromRadians(prediction.Azimuth, prediction.Elevation, input.Distance),
		true, true, input.HasDistance,
	).WithFOMFrom(input)

	elapsedMs := float64(timeMs) - p.lastGoodMs
	result.AzimuthFOM *= math.Max(1-elapsedMs/1000*FalloffFOMPerSec, MinimumFOM)
	return result
}
