package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aoa-engine-go/geom"
)

type recordingListener struct {
	calls []geom.Pose
}

func (r *recordingListener) OnPoseChanged(p geom.Pose) {
	r.calls = append(r.calls, p)
}

func TestApplicationSourcePublish(t *testing.T) {
	src := NewApplicationSource(CapUprightRotation)
	assert.Equal(t, CapUprightRotation, src.Capabilities())
	assert.True(t, src.Capabilities().Has(CapYaw))
	assert.False(t, src.Capabilities().Has(CapX))

	_, ok := src.Pose()
	assert.False(t, ok, "no pose before the first update")

	l := &recordingListener{}
	src.RegisterListener(l)
	src.RegisterListener(l) // second registration is a no-op

	p := geom.NewPose(geom.Origin, geom.YawPitchRoll(0.5, 0, 0))
	src.ApplyPose(p)

	got, ok := src.Pose()
	assert.True(t, ok)
	assert.Equal(t, p, got)
	assert.Len(t, l.calls, 1)

	assert.True(t, src.UnregisterListener(l))
	assert.False(t, src.UnregisterListener(l))

	src.ApplyPose(geom.PoseIdentity)
	assert.Len(t, l.calls, 1, "unregistered listener must not be called")
}

func TestApplyYawPitchRoll(t *testing.T) {
	src := NewApplicationSource(CapRotation)
	src.ApplyYawPitchRoll(0.3, -0.2, 0.1)
	p, ok := src.Pose()
	assert.True(t, ok)
	ypr := p.Rotation.ToYawPitchRoll()
	assert.InDelta(t, 0.3, ypr.X, 1e-9)
	assert.InDelta(t, -0.2, ypr.Y, 1e-9)
	assert.InDelta(t, 0.1, ypr.Z, 1e-9)
}

func TestStartStopLifecycle(t *testing.T) {
	src := NewApplicationSource(CapNone)
	started, stopped := 0, 0
	src.Started = func() { started++ }
	src.Stopped = func() { stopped++ }

	a, b := &recordingListener{}, &recordingListener{}
	src.RegisterListener(a)
	src.RegisterListener(b)
	assert.Equal(t, 1, started, "only the first listener starts the source")

	src.UnregisterListener(a)
	assert.Equal(t, 0, stopped)
	src.UnregisterListener(b)
	assert.Equal(t, 1, stopped, "last listener stops the source")

	src.RegisterListener(a)
	assert.Equal(t, 2, started)
}

func TestCloseDropsListeners(t *testing.T) {
	src := NewApplicationSource(CapNone)
	l := &recordingListener{}
	src.RegisterListener(l)
	src.Close()
	src.ApplyPose(geom.PoseIdentity)
	assert.Empty(t, l.calls)
}
