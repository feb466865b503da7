package pose

import "aoa-engine-go/geom"

// ApplicationSource is a pose source fed by the hosting application, for
// deployments where orientation arrives over the wire alongside the
// ranging data rather than from local sensors.
type ApplicationSource struct {
	BaseSource
	caps Capability
}

// NewApplicationSource creates a source advertising the given capabilities.
func NewApplicationSource(caps Capability) *ApplicationSource {
	return &ApplicationSource{caps: caps}
}

// Capabilities reports what the feeding application claims to measure.
func (s *ApplicationSource) Capabilities() Capability {
	return s.caps
}

// ApplyPose accepts a new pose from the application.
func (s *ApplicationSource) ApplyPose(p geom.Pose) {
	s.Publish(p)
}

// ApplyYawPitchRoll accepts a rotation-only update, in radians.
func (s *ApplicationSource) ApplyYawPitchRoll(yaw, pitch, roll float64) {
	s.Publish(geom.NewPose(geom.Origin, geom.YawPitchRoll(yaw, pitch, roll)))
}
