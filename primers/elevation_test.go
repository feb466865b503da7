package primers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

func annotatedAzDist(az, dist float64) geom.Annotated {
	return geom.NewAnnotated(geom.SphericalFromRadians(az, 0, dist), true, false, true)
}

func TestElevationFromPitch(t *testing.T) {
	src := pose.NewApplicationSource(pose.CapUprightRotation)
	src.ApplyYawPitchRoll(0, -0.3, 0)

	p := NewElevationPrimer()
	out := p.Prime(annotatedAzDist(0.2, 1.5), nil, src, 0)

	assert.True(t, out.HasElevation)
	assert.InDelta(t, 0.3, out.Elevation, 1e-6)
	assert.InDelta(t, poseElevationFOM, out.ElevationFOM, 1e-9)
	// Azimuth and distance ride through untouched.
	assert.InDelta(t, 0.2, out.Azimuth, 1e-9)
	assert.InDelta(t, 1.5, out.Distance, 1e-9)
	assert.Equal(t, 1.0, out.AzimuthFOM)
}

func TestElevationPrimerNoops(t *testing.T) {
	p := NewElevationPrimer()

	// Input already has elevation.
	in := geom.SphericalFromRadians(0.2, 0.4, 1).ToAnnotated()
	src := pose.NewApplicationSource(pose.CapUprightRotation)
	src.ApplyYawPitchRoll(0, -0.3, 0)
	assert.Equal(t, in, p.Prime(in, nil, src, 0))

	// No pose source.
	in = annotatedAzDist(0.2, 1)
	assert.Equal(t, in, p.Prime(in, nil, nil, 0))

	// Source without the upright capability.
	flat := pose.NewApplicationSource(pose.CapRotation)
	flat.ApplyYawPitchRoll(0, -0.3, 0)
	assert.Equal(t, in, p.Prime(in, nil, flat, 0))

	// Upright source that has not produced a pose yet.
	empty := pose.NewApplicationSource(pose.CapUprightRotation)
	assert.Equal(t, in, p.Prime(in, nil, empty, 0))
}
