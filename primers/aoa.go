package primers

import (
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

// AoaPrimer converts a PDoA azimuth into a spherical azimuth by accounting
// for elevation. Needed on hardware whose firmware reports raw antenna
// angles rather than true spherical coordinates.
type AoaPrimer struct{}

// NewAoaPrimer creates the primer.
func NewAoaPrimer() *AoaPrimer {
	return &AoaPrimer{}
}

// Prime reinterprets the reading's angles as antenna angles and converts
// them. Without both angles there is nothing to convert: elevation alone
// is identical in the two representations.
func (p *AoaPrimer) Prime(
	input geom.Annotated,
	prediction *geom.SphericalVector,
	src pose.Source,
	timeMs int64,
) geom.Annotated {
	if !input.HasAzimuth || !input.HasElevation {
		return input
	}
	converted := geom.AoaFromRadians(input.Azimuth, input.Elevation, input.Distance).ToSpherical()
	return geom.NewAnnotated(converted, true, true, input.HasDistance).WithFOMFrom(input)
}
