package pose

import "aoa-engine-go/geom"

// Listener receives pose updates as a source produces them.
type Listener interface {
	OnPoseChanged(p geom.Pose)
}

// Source supplies device poses. Implementations must support polling via
// Pose at any time, independent of listener registration.
type Source interface {
	// Capabilities reports what the source can measure.
	Capabilities() Capability

	// Pose returns the most recent pose, or false if none has been
	// produced yet.
	Pose() (geom.Pose, bool)

	// RegisterListener subscribes l to future pose updates.
	RegisterListener(l Listener)

	// UnregisterListener removes l, reporting whether it was subscribed.
	UnregisterListener(l Listener) bool

	// Close releases the source. Listeners are dropped and no further
	// updates are delivered.
	Close()
}
