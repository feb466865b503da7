package geom

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vector3 is a point or direction in the right-handed OpenGL coordinate
// system: +X right, +Y up, and the neutral facing direction looking into -Z.
type Vector3 struct {
	X, Y, Z float64
}

// Origin is the zero vector.
var Origin = Vector3{}

func (v Vector3) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromR3(v r3.Vec) Vector3 { return Vector3{X: v.X, Y: v.Y, Z: v.Z} }

// Add returns v + o.
func (v Vector3) Add(o Vector3) Vector3 { return fromR3(r3.Add(v.r3(), o.r3())) }

// Sub returns v - o.
func (v Vector3) Sub(o Vector3) Vector3 { return fromR3(r3.Sub(v.r3(), o.r3())) }

// Scaled returns v with every component multiplied by a.
func (v Vector3) Scaled(a float64) Vector3 { return fromR3(r3.Scale(a, v.r3())) }

// Neg returns the vector pointing the opposite way.
func (v Vector3) Neg() Vector3 { return v.Scaled(-1) }

// Length returns the euclidean length of the vector.
func (v Vector3) Length() float64 { return r3.Norm(v.r3()) }

// LengthSquared returns the squared length, cheaper when only comparing.
func (v Vector3) LengthSquared() float64 { return r3.Norm2(v.r3()) }

// Normalized returns a unit-length copy of v, or Origin when v has no length.
func (v Vector3) Normalized() Vector3 {
	if v.LengthSquared() == 0 {
		return Origin
	}
	return fromR3(r3.Unit(v.r3()))
}

// Dot returns the dot product of a and b.
func Dot(a, b Vector3) float64 { return r3.Dot(a.r3(), b.r3()) }

// Cross returns the cross product of a and b.
func Cross(a, b Vector3) Vector3 { return fromR3(r3.Cross(a.r3(), b.r3())) }

func (v Vector3) String() string {
	return fmt.Sprintf("[% .2f,% .2f,% .2f]", v.X, v.Y, v.Z)
}
