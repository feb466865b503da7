// Package correction assembles primers, a position filter and a pose
// source into an engine that turns raw ranging readings into corrected,
// filtered position estimates.
package correction

import (
	"log"
	"strings"

	"aoa-engine-go/filtering"
	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
	"aoa-engine-go/primers"
)

// Debug enables a per-reading trace of every primer stage.
var Debug = false

// Config describes an engine. The zero value is a valid passthrough
// engine: no primers, no filtering, no pose handling.
type Config struct {
	// Primers run on every reading, in slice order.
	Primers []primers.Primer

	// Filter smooths the primed readings. Nil disables filtering; the
	// engine then reports the latest primed reading as its estimate.
	Filter filtering.PositionFilter

	// PoseSource supplies device orientation to primers and the filter.
	// Nil disables all pose processing.
	PoseSource pose.Source
}

// Engine consumes raw ranging readings and produces corrected position
// estimates. It is single-threaded: the caller serializes Add, Compute and
// Close.
type Engine struct {
	primers    []primers.Primer
	filter     filtering.PositionFilter
	poseSource pose.Source

	// The last reading after priming and fill-in. When no filter is
	// configured this doubles as the engine's output.
	lastInput *geom.Annotated
	closed    bool
}

// NewEngine builds an engine from the config and registers it with the
// pose source.
func NewEngine(cfg Config) *Engine {
	e := &Engine{
		primers:    append([]primers.Primer(nil), cfg.Primers...),
		filter:     cfg.Filter,
		poseSource: cfg.PoseSource,
	}
	if e.poseSource != nil {
		// Registration also signals sensor-backed sources to start.
		e.poseSource.RegisterListener(e)
	}
	return e
}

// Add updates the engine with the latest raw reading.
func (e *Engine) Add(reading geom.Annotated, timeMs int64) {
	var bigLog *strings.Builder
	if Debug {
		bigLog = &strings.Builder{}
		bigLog.WriteString(reading.String())
	}

	var prediction *geom.SphericalVector
	if pred, ok := e.Compute(timeMs); ok {
		prediction = &pred
	}

	for _, p := range e.primers {
		reading = p.Prime(reading, prediction, e.poseSource, timeMs)
		if bigLog != nil {
			bigLog.WriteString(" ->")
			bigLog.WriteString(reading.String())
		}
	}

	if reading.IsComplete() || prediction == nil {
		e.lastInput = &reading
	} else {
		// The chain left gaps, which happens when elevation is missing
		// and no primer estimates it, or after a bad reading. Fill in
		// from the prediction; confidence stays whatever the primers set.
		az, el, dist := prediction.Azimuth, prediction.Elevation, prediction.Distance
		if reading.HasAzimuth {
			az = reading.Azimuth
		}
		if reading.HasElevation {
			el = reading.Elevation
		}
		if reading.HasDistance {
			dist = reading.Distance
		}
		filled := geom.SphericalFromRadians(az, el, dist).ToAnnotated().WithFOMFrom(reading)
		e.lastInput = &filled
	}

	if e.filter != nil {
		e.filter.UpdatePose(e.poseSource, timeMs)
		e.filter.Add(*e.lastInput, timeMs)
	}

	if bigLog != nil {
		if out, ok := e.Compute(timeMs); ok {
			bigLog.WriteString(" : filtered=")
			bigLog.WriteString(out.String())
		}
		log.Printf("engine: %s", bigLog.String())
	}
}

// Compute returns the most probable position as of the given time, or
// false if no reading has been processed yet.
func (e *Engine) Compute(timeMs int64) (geom.SphericalVector, bool) {
	if e.filter != nil {
		e.filter.UpdatePose(e.poseSource, timeMs)
		return e.filter.Compute(timeMs)
	}
	if e.lastInput == nil {
		return geom.SphericalVector{}, false
	}
	return e.lastInput.SphericalVector, true
}

// Pose returns the current device pose, or the identity when no pose
// source is configured or it has produced nothing yet.
func (e *Engine) Pose() geom.Pose {
	if e.poseSource != nil {
		if p, ok := e.poseSource.Pose(); ok {
			return p
		}
	}
	return geom.PoseIdentity
}

// OnPoseChanged satisfies pose.Listener. Pose changes are pulled lazily on
// the next Add or Compute; an oversampling implementation would compute a
// fresh result here instead.
func (e *Engine) OnPoseChanged(geom.Pose) {}

// Close unregisters from the pose source. Safe to call more than once.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	if e.poseSource != nil {
		e.poseSource.UnregisterListener(e)
	}
}
