package filtering

import (
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

// PositionFilter smooths a stream of spherical position readings.
type PositionFilter interface {
	// Add feeds a reading. Per-field figures of merit weight the samples.
	Add(value geom.Annotated, timeMs int64)

	// Compute returns the filtered position estimate for the given time,
	// or false if nothing has been added yet.
	Compute(timeMs int64) (geom.SphericalVector, bool)

	// UpdatePose rewrites filter history to account for device motion, so
	// that a turning device does not read as a moving target. A nil source
	// is a no-op.
	UpdatePose(src pose.Source, timeMs int64)
}

// SphericalFilter filters azimuth, elevation and distance independently.
// Filtering in spherical rather than cartesian space costs a little
// accuracy on paper but lets angles and distance be tuned separately,
// which matters because they have very different noise profiles.
type SphericalFilter struct {
	azimuth   Filter
	elevation Filter
	distance  Filter
	lastPose  *geom.Pose
	seeded    bool
}

// NewSphericalFilter combines three scalar filters into a position filter.
func NewSphericalFilter(azimuth, elevation, distance Filter) *SphericalFilter {
	return &SphericalFilter{
		azimuth:   azimuth,
		elevation: elevation,
		distance:  distance,
	}
}

// Add feeds one reading into the per-axis filters. Each axis sample is
// weighted by that field's figure of merit.
func (f *SphericalFilter) Add(value geom.Annotated, timeMs int64) {
	f.azimuth.Add(value.Azimuth, timeMs, value.AzimuthFOM)
	f.elevation.Add(value.Elevation, timeMs, value.ElevationFOM)
	f.distance.Add(value.Distance, timeMs, value.DistanceFOM)
	f.seeded = true
}

// Compute returns the current filtered estimate.
func (f *SphericalFilter) Compute(timeMs int64) (geom.SphericalVector, bool) {
	if !f.seeded {
		return geom.SphericalVector{}, false
	}
	return geom.SphericalFromRadians(
		f.azimuth.Result().Value,
		f.elevation.Result().Value,
		f.distance.Result().Value,
	), true
}

// UpdatePose compensates the filters for device motion since the last
// call: the last estimate is moved through the pose delta and each axis
// filter is shifted by how much that moved it.
func (f *SphericalFilter) UpdatePose(src pose.Source, timeMs int64) {
	if src == nil {
		return
	}
	newPose, ok := src.Pose()
	if !ok {
		f.lastPose = nil
		return
	}
	if f.lastPose != nil && newPose != *f.lastPose {
		if estimate, seeded := f.Compute(timeMs); seeded {
			delta := geom.Compose(newPose.Inverted(), *f.lastPose)
			f.compensateFromDelta(delta, estimate)
		}
	}
	f.lastPose = &newPose
}

// compensateFromDelta shifts each axis filter by how the pose change moved
// the last known target position. Spherical -> cartesian -> transform ->
// spherical is not the cheapest path, but it is the clear one.
func (f *SphericalFilter) compensateFromDelta(delta geom.Pose, estimate geom.SphericalVector) {
	moved := delta.TransformPoint(estimate.ToCartesian())
	newEstimate := geom.SphericalFromCartesian(moved)
	f.azimuth.Compensate(newEstimate.Azimuth - estimate.Azimuth)
	f.elevation.Compensate(newEstimate.Elevation - estimate.Elevation)
	f.distance.Compensate(newEstimate.Distance - estimate.Distance)
}
