package filtering

// Filter smooths a single stream of scalar measurements.
type Filter interface {
	// Add feeds a measurement into the filter.
	Add(value float64, timeMs int64, fom float64)

	// Compensate shifts the filter state to anticipate a known change in
	// the next readings. If the next distance is expected to grow by one
	// meter, shift is 1.
	Compensate(shift float64)

	// Result returns the output of the last computation. Zero until the
	// first Add.
	Result() Sample
}

// NullFilter passes the newest sample straight through. Useful where the
// raw stream is already clean, and in tests.
type NullFilter struct {
	result Sample
}

// NewNullFilter creates a passthrough filter.
func NewNullFilter() *NullFilter {
	return &NullFilter{}
}

// Add replaces the result with the given measurement.
func (f *NullFilter) Add(value float64, timeMs int64, fom float64) {
	f.result = Sample{Value: value, TimeMs: timeMs, FOM: fom}
}

// Compensate shifts the held value.
func (f *NullFilter) Compensate(shift float64) {
	f.result.Value += shift
}

// Result returns the most recent measurement.
func (f *NullFilter) Result() Sample {
	return f.result
}
