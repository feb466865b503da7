package geom

import "fmt"

// Pose is a rigid transform: a rotation followed by a translation. It
// describes where the sensing device sits in the world, and doubles as the
// operator that maps device-relative points between reference frames.
type Pose struct {
	Translation Vector3
	Rotation    Quaternion
}

// PoseIdentity leaves points untouched.
var PoseIdentity = Pose{Rotation: QuatIdentity}

// NewPose builds a pose from a translation and rotation.
func NewPose(translation Vector3, rotation Quaternion) Pose {
	return Pose{Translation: translation, Rotation: rotation}
}

// Compose combines two poses. The rhs transform is applied first, then lhs.
func Compose(lhs, rhs Pose) Pose {
	return Pose{
		Translation: lhs.Rotation.RotateVector(rhs.Translation).Add(lhs.Translation),
		Rotation:    lhs.Rotation.Mul(rhs.Rotation),
	}
}

// Inverted returns the pose that undoes this one.
func (p Pose) Inverted() Pose {
	invRot := p.Rotation.Inverted()
	return Pose{
		Translation: invRot.RotateVector(p.Translation).Neg(),
		Rotation:    invRot,
	}
}

// TransformPoint maps a point through the pose: rotate, then translate.
func (p Pose) TransformPoint(point Vector3) Vector3 {
	return p.Rotation.RotateVector(point).Add(p.Translation)
}

func (p Pose) String() string {
	return fmt.Sprintf("{t%v r%v}", p.Translation, p.Rotation)
}
