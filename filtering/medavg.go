package filtering

import (
	"fmt"
	"math"
	"sort"

	"aoa-engine-go/geom"
)

// MaxWindowSize is the largest supported median window.
const MaxWindowSize = 255

// MedAvgFilter is a median-average filter: it keeps a moving window of
// samples and averages the configured middle percentage of them, weighted
// by each sample's figure of merit. A cut of 0 is a pure median, a cut of
// 1 a pure weighted average, and 0.25 discards the outer 75% as outliers
// before averaging.
type MedAvgFilter struct {
	windowSize int
	cut        float64

	// circular treats values as radians on a circle where +pi and -pi
	// coincide; set by NewMedAvgRotationFilter.
	circular bool

	window []Sample
	result Sample
}

// NewMedAvgFilter creates a filter with the given window size (1 to
// MaxWindowSize samples) and cut (0 to 1).
func NewMedAvgFilter(windowSize int, cut float64) (*MedAvgFilter, error) {
	if windowSize <= 0 || windowSize > MaxWindowSize {
		return nil, fmt.Errorf("window size %d out of range [1, %d]", windowSize, MaxWindowSize)
	}
	if cut < 0 || cut > 1 {
		return nil, fmt.Errorf("cut %v out of range [0, 1]", cut)
	}
	return &MedAvgFilter{windowSize: windowSize, cut: cut}, nil
}

// WindowSize returns the maximum number of samples considered.
func (f *MedAvgFilter) WindowSize() int { return f.windowSize }

// Cut returns the fraction of the window that is averaged.
func (f *MedAvgFilter) Cut() float64 { return f.cut }

// Add feeds a measurement, evicting the oldest sample when the window is
// full, and recomputes the result.
func (f *MedAvgFilter) Add(value float64, timeMs int64, fom float64) {
	f.window = append(f.window, Sample{Value: value, TimeMs: timeMs, FOM: fom})
	if len(f.window) > f.windowSize {
		f.window = f.window[1:]
	}
	if res, ok := f.compute(); ok {
		f.result = res
	}
}

// Compensate shifts every sample in the window and the current result.
func (f *MedAvgFilter) Compensate(shift float64) {
	for i := range f.window {
		f.window[i].Value = f.remap(f.window[i].Value + shift)
	}
	f.result.Value = f.remap(f.result.Value + shift)
}

// remap keeps circular values on the circle; linear values pass through.
func (f *MedAvgFilter) remap(value float64) float64 {
	if f.circular {
		return geom.NormalizeRadians(value)
	}
	return value
}

// Result returns the output of the last computation. The result's time is
// the weighted center time of the contributing samples.
func (f *MedAvgFilter) Result() Sample {
	return f.result
}

func (f *MedAvgFilter) compute() (Sample, bool) {
	count := len(f.window)
	if count == 0 {
		return Sample{}, false
	}
	sorted := make([]Sample, count)
	copy(sorted, f.window)
	if f.circular {
		// Move the seam away from the samples so sorting and averaging see
		// a contiguous run of angles.
		reseamSamples(sorted)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	selected := sorted
	if f.cut < 1 {
		// A 100% cut is a weighted average of the whole window; anything
		// less trims outliers off both ends first.
		throwAway := int(math.Round(float64(count) * (1 - f.cut) / 2))
		if 2*throwAway >= count {
			// Keep at least 2 samples when count is even, 1 when odd.
			throwAway--
		}
		selected = sorted[throwAway : count-throwAway]
	}

	res, ok := averageSamples(selected)
	if ok {
		res.Value = f.remap(res.Value)
	}
	return res, ok
}

// averageSamples produces the weighted average of a run of samples. Each
// sample's figure of merit is its weight. Fails when every weight is zero.
func averageSamples(samples []Sample) (Sample, bool) {
	if len(samples) == 0 {
		return Sample{}, false
	}
	fomWeight := 0.0
	for _, s := range samples {
		fomWeight += s.FOM
	}
	if fomWeight == 0 {
		// Every reading has zero confidence; nothing to average.
		return Sample{}, false
	}

	// Times are summed relative to the first sample to keep them small.
	epoch := samples[0].TimeMs
	valueSum, fomSum, instantSum := 0.0, 0.0, 0.0
	for _, s := range samples {
		valueSum += s.Value * s.FOM
		instantSum += float64(s.TimeMs-epoch) * s.FOM
		fomSum += s.FOM * s.FOM
	}
	return Sample{
		Value:  valueSum / fomWeight,
		TimeMs: epoch + int64(instantSum/fomWeight),
		FOM:    fomSum / fomWeight,
	}, true
}
