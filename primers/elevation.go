package primers

import (
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

// poseElevationFOM reflects that a pose-derived elevation is an
// assumption, not a measurement.
const poseElevationFOM = 0.3

// ElevationPrimer fills in a missing elevation from device pitch. Hardware
// without elevation antennas effectively measures in the plane of the
// device, so if the pose source knows which way is up, assuming the target
// is level with the device is a better guess than zero. Recommended before
// AoaPrimer in the chain so the assumed elevation feeds the conversion.
type ElevationPrimer struct{}

// NewElevationPrimer creates the primer.
func NewElevationPrimer() *ElevationPrimer {
	return &ElevationPrimer{}
}

// Prime sets elevation to the negated device pitch when the input has
// none and an upright-capable pose source reports a pose.
func (p *ElevationPrimer) Prime(
	input geom.Annotated,
	prediction *geom.SphericalVector,
	src pose.Source,
	timeMs int64,
) geom.Annotated {
	if input.HasElevation || src == nil || !src.Capabilities().Has(pose.CapUpright) {
		return input
	}
	devicePose, ok := src.Pose()
	if !ok {
		return input
	}

	// If the device pitches down, the target appears up.
	pitch := devicePose.Rotation.ToYawPitchRoll().Y
	result := geom.NewAnnotated(
		geom.SphericalFromRadians(input.Azimuth, -pitch, input.Distance),
		input.HasAzimuth,
		true,
		input.HasDistance,
	).WithFOMFrom(input)
	result.ElevationFOM *= poseElevationFOM
	return result
}
