package pose

import (
	"sync"

	"aoa-engine-go/geom"
)

// BaseSource implements the listener bookkeeping and last-pose tracking
// shared by Source implementations. Embedders call Publish when they
// produce a pose.
type BaseSource struct {
	// Started fires when the listener count goes from zero to one, Stopped
	// when it returns to zero. Sensor-backed sources hang their sampling
	// lifecycle on these; either may be nil.
	Started func()
	Stopped func()

	mu        sync.Mutex
	listeners []Listener
	current   geom.Pose
	hasPose   bool
}

// Publish records p as the current pose and notifies all listeners.
func (b *BaseSource) Publish(p geom.Pose) {
	b.mu.Lock()
	b.current = p
	b.hasPose = true
	snapshot := make([]Listener, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	// Callbacks run outside the lock so a listener may re-enter the source.
	for _, l := range snapshot {
		l.OnPoseChanged(p)
	}
}

// Pose returns the most recently published pose.
func (b *BaseSource) Pose() (geom.Pose, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.hasPose
}

// RegisterListener subscribes l. Registering the same listener twice has
// no effect.
func (b *BaseSource) RegisterListener(l Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, existing := range b.listeners {
		if existing == l {
			return
		}
	}
	b.listeners = append(b.listeners, l)
	if len(b.listeners) == 1 && b.Started != nil {
		b.Started()
	}
}

// UnregisterListener removes l, reporting whether it was subscribed.
func (b *BaseSource) UnregisterListener(l Listener) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, existing := range b.listeners {
		if existing == l {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			if len(b.listeners) == 0 && b.Stopped != nil {
				b.Stopped()
			}
			return true
		}
	}
	return false
}

// Close drops all listeners.
func (b *BaseSource) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = nil
}
