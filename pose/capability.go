// Package pose provides device orientation to the correction pipeline.
// A Source reports what it can measure, the most recent pose on demand,
// and pushes updates to registered listeners.
package pose

// Capability describes which components of a pose a source can measure.
type Capability uint8

const (
	// CapYaw is rotation about the vertical axis.
	CapYaw Capability = 1 << iota
	// CapPitch is rotation about the lateral axis.
	CapPitch
	// CapRoll is rotation about the depth axis.
	CapRoll
	// CapX, CapY and CapZ are translation along each axis.
	CapX
	CapY
	CapZ
	// CapUpright means yaw and pitch are gravity-referenced, so a zero
	// pitch really is level with the ground.
	CapUpright
)

const (
	// CapNone is a source that measures nothing.
	CapNone Capability = 0
	// CapRotation covers all three rotation axes.
	CapRotation = CapYaw | CapPitch | CapRoll
	// CapUprightRotation is rotation referenced against gravity.
	CapUprightRotation = CapRotation | CapUpright
	// CapTranslation covers all three translation axes.
	CapTranslation = CapX | CapY | CapZ
	// CapAll is full six-degree-of-freedom tracking plus upright.
	CapAll = CapRotation | CapTranslation | CapUpright
)

// Has reports whether every bit in flag is present in c.
func (c Capability) Has(flag Capability) bool {
	return c&flag == flag
}
