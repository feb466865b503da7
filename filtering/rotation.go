package filtering

import (
	"math"

	"aoa-engine-go/geom"
)

// NewMedAvgRotationFilter creates a MedAvgFilter that operates on the
// radians circular number system, where +pi and -pi are the same point and
// the average of two angles is the average direction on the circle rather
// than the average of their linear values. Required for the azimuth axis,
// where back-facing targets hover around the +/-pi seam.
func NewMedAvgRotationFilter(windowSize int, cut float64) (*MedAvgFilter, error) {
	f, err := NewMedAvgFilter(windowSize, cut)
	if err != nil {
		return nil, err
	}
	f.circular = true
	return f, nil
}

// reseamSamples rewrites angles in place so that sorting them produces a
// clockwise run whose numerical average equals the directional average.
// 2pi is added to every angle that falls below the directional mean minus
// pi, so input angles within +/-pi may come out beyond pi.
func reseamSamples(samples []Sample) {
	if len(samples) < 2 {
		return
	}

	sinSum, cosSum := 0.0, 0.0
	for _, s := range samples {
		sinSum += math.Sin(s.Value)
		cosSum += math.Cos(s.Value)
	}
	avgAngle := math.Atan2(sinSum, cosSum)

	lowestAngle := geom.NormalizeRadians(avgAngle - math.Pi)
	for i := range samples {
		if samples[i].Value < lowestAngle {
			samples[i].Value += 2 * math.Pi
		}
	}
}
