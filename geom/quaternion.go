package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// eulerThreshold is how close w*x - y*z must get to +/-0.5 before the
// Tait-Bryan extraction switches to the gimbal-lock formulas.
const eulerThreshold = 0.49999994

// Quaternion is a rotation in the same right-handed coordinate system as
// Vector3. Yaw is a rotation about +Y, pitch about +X and roll about +Z,
// relative to an orientation facing into -Z. Construction always
// renormalizes, so every Quaternion in circulation is unit length.
type Quaternion struct {
	X, Y, Z, W float64
}

// QuatIdentity is the no-rotation quaternion.
var QuatIdentity = Quaternion{W: 1}

// NewQuaternion builds a unit quaternion from raw components. Inputs that
// are not unit length are normalized rather than rejected; a zero input
// degrades to the identity.
func NewQuaternion(x, y, z, w float64) Quaternion {
	n := math.Sqrt(x*x + y*y + z*z + w*w)
	if n == 0 {
		return QuatIdentity
	}
	return Quaternion{X: x / n, Y: y / n, Z: z / n, W: w / n}
}

func (q Quaternion) num() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNum(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// AxisAngle builds the rotation of the given angle, in radians, around the
// given axis. The axis need not be unit length.
func AxisAngle(axis Vector3, radians float64) Quaternion {
	a := axis.Normalized()
	s, c := math.Sincos(radians / 2)
	return NewQuaternion(s*a.X, s*a.Y, s*a.Z, c)
}

// YawPitchRoll builds a rotation from Tait-Bryan angles applied in YXZ
// (yaw, pitch, roll) order.
func YawPitchRoll(yaw, pitch, roll float64) Quaternion {
	qy := AxisAngle(Vector3{Y: 1}, yaw)
	qp := AxisAngle(Vector3{X: 1}, pitch)
	qr := AxisAngle(Vector3{Z: 1}, roll)
	return qy.Mul(qp).Mul(qr)
}

// Mul combines two rotations. q.Mul(r) performs the r rotation first and
// then q; ordering matters.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return fromNum(quat.Mul(q.num(), r.num()))
}

// Inverted returns the opposite rotation. Because the quaternion is unit
// length this is just the conjugate.
func (q Quaternion) Inverted() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Negated flips the sign of every component. The result represents the same
// rotation; useful for choosing the short way around when interpolating.
func (q Quaternion) Negated() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
}

// QuatDot is the four-component dot product. Two unit quaternions with a
// dot product of 1 represent the same orientation.
func QuatDot(a, b Quaternion) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W
}

// RotateVector rotates src by q, computed as q * src * q^-1 on the pure
// quaternion embedding of src.
func (q Quaternion) RotateVector(src Vector3) Vector3 {
	v := quat.Number{Imag: src.X, Jmag: src.Y, Kmag: src.Z}
	r := quat.Mul(quat.Mul(q.num(), v), quat.Conj(q.num()))
	return Vector3{X: r.Imag, Y: r.Jmag, Z: r.Kmag}
}

// ToYawPitchRoll extracts Tait-Bryan angles in YXZ order, returned as a
// Vector3 of (yaw, pitch, roll) radians. Near straight-up or straight-down
// pitch the yaw and roll axes collapse, so those cases use the dedicated
// singularity formulas and report zero roll.
func (q Quaternion) ToYawPitchRoll() Vector3 {
	test := q.W*q.X - q.Y*q.Z
	if test > eulerThreshold {
		return Vector3{X: 2 * math.Atan2(q.Z, q.W), Y: HalfPi}
	}
	if test < -eulerThreshold {
		return Vector3{X: -2 * math.Atan2(q.Z, q.W), Y: -HalfPi}
	}
	pitch := math.Asin(2 * test)
	yaw := math.Atan2(2*(q.W*q.Y+q.X*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))
	roll := math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.X*q.X+q.Z*q.Z))
	return Vector3{X: yaw, Y: pitch, Z: roll}
}

func (q Quaternion) String() string {
	return fmt.Sprintf("q[% .2f,% .2f,% .2f,% .1f]", q.X, q.Y, q.Z, q.W)
}
