package filtering

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

func newPassthroughPosition() *SphericalFilter {
	return NewSphericalFilter(NewNullFilter(), NewNullFilter(), NewNullFilter())
}

func TestComputeBeforeAdd(t *testing.T) {
	f := newPassthroughPosition()
	_, ok := f.Compute(0)
	assert.False(t, ok)
}

func TestAddAndCompute(t *testing.T) {
	f := newPassthroughPosition()
	f.Add(geom.SphericalFromRadians(0.7, 0.1, 2).ToAnnotated(), 0)
	v, ok := f.Compute(0)
	require.True(t, ok)
	assert.InDelta(t, 0.7, v.Azimuth, 1e-9)
	assert.InDelta(t, 0.1, v.Elevation, 1e-9)
	assert.InDelta(t, 2.0, v.Distance, 1e-9)
}

func TestYawChangeCompensatesAzimuth(t *testing.T) {
	f := newPassthroughPosition()
	src := pose.NewApplicationSource(pose.CapRotation)

	src.ApplyYawPitchRoll(0, 0, 0)
	f.UpdatePose(src, 0)
	f.Add(geom.SphericalFromRadians(0.7, 0, 1).ToAnnotated(), 0)

	// The device yaws by -0.5; a stationary target appears 0.5 closer to
	// center.
	src.ApplyYawPitchRoll(-0.5, 0, 0)
	f.UpdatePose(src, 10)

	v, ok := f.Compute(10)
	require.True(t, ok)
	assert.InDelta(t, 0.2, v.Azimuth, 1e-6)
	assert.InDelta(t, 0.0, v.Elevation, 1e-6)
	assert.InDelta(t, 1.0, v.Distance, 1e-6)
}

func TestUnchangedPoseDoesNotCompensate(t *testing.T) {
	f := newPassthroughPosition()
	src := pose.NewApplicationSource(pose.CapRotation)
	src.ApplyYawPitchRoll(0.3, 0, 0)
	f.UpdatePose(src, 0)
	f.Add(geom.SphericalFromRadians(0.4, 0, 1).ToAnnotated(), 0)

	src.ApplyYawPitchRoll(0.3, 0, 0)
	f.UpdatePose(src, 5)
	v, ok := f.Compute(5)
	require.True(t, ok)
	assert.InDelta(t, 0.4, v.Azimuth, 1e-9)
}

func TestNilSourceIsNoop(t *testing.T) {
	f := newPassthroughPosition()
	f.Add(geom.SphericalFromRadians(0.4, 0, 1).ToAnnotated(), 0)
	f.UpdatePose(nil, 5)
	v, ok := f.Compute(5)
	require.True(t, ok)
	assert.InDelta(t, 0.4, v.Azimuth, 1e-9)
}

func TestRearTargetFiltersAcrossSeam(t *testing.T) {
	az := newRotationFilter(t, 4, 1)
	el := newRotationFilter(t, 4, 1)
	dist := newFilter(t, 4, 1)
	f := NewSphericalFilter(az, el, dist)

	// A target straight behind jitters between +179 and -179 degrees.
	f.Add(geom.SphericalFromDegrees(179, 0, 2).ToAnnotated(), 0)
	f.Add(geom.SphericalFromDegrees(-179, 0, 2).ToAnnotated(), 10)

	v, ok := f.Compute(10)
	require.True(t, ok)
	// The estimate must stay behind the device, not average out to dead
	// ahead.
	assert.InDelta(t, 180, geom.Degrees(math.Abs(v.Azimuth)), 1e-4)
	assert.InDelta(t, 2.0, v.Distance, 1e-9)
}

func TestTranslationCompensatesDistance(t *testing.T) {
	f := newPassthroughPosition()
	src := pose.NewApplicationSource(pose.CapAll)

	src.ApplyPose(geom.PoseIdentity)
	f.UpdatePose(src, 0)
	// Target 2m straight ahead.
	f.Add(geom.SphericalFromRadians(0, 0, 2).ToAnnotated(), 0)

	// Device steps 1m forward (-Z): the target should read 1m away.
	src.ApplyPose(geom.NewPose(geom.Vector3{Z: -1}, geom.QuatIdentity))
	f.UpdatePose(src, 10)

	v, ok := f.Compute(10)
	require.True(t, ok)
	assert.InDelta(t, 1.0, v.Distance, 1e-6)
	assert.InDelta(t, 0.0, v.Azimuth, 1e-6)
}
