package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func assertVecInDelta(t *testing.T, want, got Vector3, tol float64) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol)
	assert.InDelta(t, want.Y, got.Y, tol)
	assert.InDelta(t, want.Z, got.Z, tol)
}

func TestTransformPoint(t *testing.T) {
	p := NewPose(Vector3{X: 1}, AxisAngle(Vector3{Y: 1}, HalfPi))
	// Yaw +90 takes (0,0,-1) to (-1,0,0); the translation cancels it.
	assertVecInDelta(t, Origin, p.TransformPoint(Vector3{Z: -1}), 1e-9)
}

func TestInvertedPose(t *testing.T) {
	p := NewPose(Vector3{X: 0.5, Y: -2, Z: 1}, YawPitchRoll(0.9, 0.3, -1.2))
	v := Vector3{X: -1, Y: 4, Z: 2}
	assertVecInDelta(t, v, p.Inverted().TransformPoint(p.TransformPoint(v)), 1e-9)

	id := Compose(p, p.Inverted())
	assertVecInDelta(t, Origin, id.Translation, 1e-9)
	assert.InDelta(t, 1, QuatDot(id.Rotation, QuatIdentity), 1e-9)
}

func TestComposeMatchesSequentialTransforms(t *testing.T) {
	a := NewPose(Vector3{X: 1, Z: -2}, AxisAngle(Vector3{Y: 1}, 0.6))
	b := NewPose(Vector3{Y: 3}, AxisAngle(Vector3{X: 1}, -0.8))
	v := Vector3{X: 2, Y: -1, Z: 0.5}
	assertVecInDelta(t, a.TransformPoint(b.TransformPoint(v)), Compose(a, b).TransformPoint(v), 1e-9)
}

func TestPoseIdentity(t *testing.T) {
	v := Vector3{X: 1, Y: 2, Z: 3}
	assert.Equal(t, v, PoseIdentity.TransformPoint(v))
}
