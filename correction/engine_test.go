package correction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aoa-engine-go/filtering"
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
	"aoa-engine-go/primers"
)

// shiftPrimer nudges the azimuth by a fixed amount; used to observe chain
// order.
type shiftPrimer struct {
	shift float64
}

func (p *shiftPrimer) Prime(
	input geom.Annotated,
	prediction *geom.SphericalVector,
	src pose.Source,
	timeMs int64,
) geom.Annotated {
	out := geom.NewAnnotated(
		geom.SphericalFromRadians(input.Azimuth+p.shift, input.Elevation, input.Distance),
		input.HasAzimuth, input.HasElevation, input.HasDistance,
	).WithFOMFrom(input)
	return out
}

// countingSource wraps listener bookkeeping so tests can observe engine
// registration.
type countingSource struct {
	pose.BaseSource
	unregistered int
}

func (s *countingSource) Capabilities() pose.Capability { return pose.CapRotation }

func (s *countingSource) UnregisterListener(l pose.Listener) bool {
	ok := s.BaseSource.UnregisterListener(l)
	if ok {
		s.unregistered++
	}
	return ok
}

func TestComputeBeforeAnyInput(t *testing.T) {
	e := NewEngine(Config{})
	_, ok := e.Compute(0)
	assert.False(t, ok)
}

func TestPassthroughEngine(t *testing.T) {
	e := NewEngine(Config{})
	in := geom.SphericalFromRadians(0.5, 0.2, 1).ToAnnotated()
	e.Add(in, 0)
	out, ok := e.Compute(0)
	require.True(t, ok)
	assert.Equal(t, in.SphericalVector, out)
}

func TestPrimersRunInOrder(t *testing.T) {
	e := NewEngine(Config{
		Primers: []primers.Primer{&shiftPrimer{shift: 0.1}, &shiftPrimer{shift: 0.2}},
	})
	e.Add(geom.SphericalFromRadians(0, 0, 1).ToAnnotated(), 0)
	out, ok := e.Compute(0)
	require.True(t, ok)
	assert.InDelta(t, 0.3, out.Azimuth, 1e-9)
}

func TestFillInFromPrediction(t *testing.T) {
	e := NewEngine(Config{})
	e.Add(geom.SphericalFromRadians(0.5, 0.2, 1.5).ToAnnotated(), 0)

	// Azimuth-only reading: the rest comes from the prediction.
	partial := geom.NewAnnotated(geom.SphericalFromRadians(0.9, 0, 0), true, false, false)
	e.Add(partial, 10)

	out, ok := e.Compute(10)
	require.True(t, ok)
	assert.InDelta(t, 0.9, out.Azimuth, 1e-9)
	assert.InDelta(t, 0.2, out.Elevation, 1e-9)
	assert.InDelta(t, 1.5, out.Distance, 1e-9)
}

func TestIncompleteWithoutPredictionStoredAsIs(t *testing.T) {
	e := NewEngine(Config{})
	partial := geom.NewAnnotated(geom.SphericalFromRadians(0.9, 0, 0), true, false, false)
	e.Add(partial, 0)
	out, ok := e.Compute(0)
	require.True(t, ok)
	assert.InDelta(t, 0.9, out.Azimuth, 1e-9)
	assert.InDelta(t, 0.0, out.Distance, 1e-9)
}

func TestFilteredEngineCompensatesForYaw(t *testing.T) {
	src := pose.NewApplicationSource(pose.CapRotation)
	src.ApplyYawPitchRoll(0, 0, 0)

	filter := filtering.NewSphericalFilter(
		filtering.NewNullFilter(), filtering.NewNullFilter(), filtering.NewNullFilter())
	e := NewEngine(Config{Filter: filter, PoseSource: src})

	e.Add(geom.SphericalFromRadians(0.7, 0, 1).ToAnnotated(), 0)

	src.ApplyYawPitchRoll(-0.5, 0, 0)
	out, ok := e.Compute(10)
	require.True(t, ok)
	assert.InDelta(t, 0.2, out.Azimuth, 1e-6)
}

func TestFilteredEngineSmooths(t *testing.T) {
	az, err := filtering.NewMedAvgFilter(3, 1)
	require.NoError(t, err)
	el, err := filtering.NewMedAvgFilter(3, 1)
	require.NoError(t, err)
	dist, err := filtering.NewMedAvgFilter(3, 1)
	require.NoError(t, err)
	e := NewEngine(Config{Filter: filtering.NewSphericalFilter(az, el, dist)})

	e.Add(geom.SphericalFromRadians(0.1, 0, 1).ToAnnotated(), 0)
	e.Add(geom.SphericalFromRadians(0.2, 0, 2).ToAnnotated(), 10)
	e.Add(geom.SphericalFromRadians(0.3, 0, 3).ToAnnotated(), 20)

	out, ok := e.Compute(20)
	require.True(t, ok)
	assert.InDelta(t, 0.2, out.Azimuth, 1e-9)
	assert.InDelta(t, 2.0, out.Distance, 1e-9)
}

func TestPoseFallsBackToIdentity(t *testing.T) {
	e := NewEngine(Config{})
	assert.Equal(t, geom.PoseIdentity, e.Pose())

	src := pose.NewApplicationSource(pose.CapRotation)
	e = NewEngine(Config{PoseSource: src})
	assert.Equal(t, geom.PoseIdentity, e.Pose(), "source with no pose yet")

	p := geom.NewPose(geom.Vector3{X: 1}, geom.QuatIdentity)
	src.ApplyPose(p)
	assert.Equal(t, p, e.Pose())
}

func TestCloseIsIdempotent(t *testing.T) {
	src := &countingSource{}
	e := NewEngine(Config{PoseSource: src})
	e.Close()
	e.Close()
	assert.Equal(t, 1, src.unregistered)
}
