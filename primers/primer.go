// Package primers contains the correction stages that run on each raw
// ranging reading before it reaches the position filter. Primers execute
// in configured order; each receives the output of the previous one.
package primers

import (
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

const (
	// FalloffFOMPerSec is how much per second the figure of merit of an
	// estimated reading degrades while real data is absent.
	FalloffFOMPerSec = 0.2

	// MinimumFOM is the floor below which a decayed figure of merit will
	// not drop, so stale estimates keep a token weight.
	MinimumFOM = 0.1
)

// Primer corrects one raw reading.
//
// prediction is the previous filtered result adjusted for pose changes
// since then, or nil when the engine has produced nothing yet. src may be
// nil when no pose data is available. timeMs is when the reading occurred,
// on the same monotonic clock as the rest of the pipeline.
type Primer interface {
	Prime(input geom.Annotated, prediction *geom.SphericalVector, src pose.Source, timeMs int64) geom.Annotated
}
