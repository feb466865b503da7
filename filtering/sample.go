// Package filtering smooths noisy ranging measurements. Scalar filters
// operate on one value stream; SphericalFilter composes three of them into
// a pose-aware position filter.
package filtering

// Sample is one filter data point: a value, when it was measured, and a
// figure of merit from 0 (worthless) to 1 (fully trusted) used as its
// weight. For a filter result, TimeMs is the weighted center time of the
// contributing samples, which approximates the latency the filter
// introduced.
type Sample struct {
	Value  float64
	TimeMs int64
	FOM    float64
}
