package primers

import (
	"log"
	"math"
	"sort"

	"aoa-engine-go/geom"
	"aoa-engine-go/pose"
)

// Debug enables per-sample score logging from the back-azimuth primer.
var Debug = false

const (
	// fomDecay is the per-sample decay rate of the azimuth FOM low-pass.
	fomDecay = 0.1

	// minimumDeterminations is how many confident front/back calls must
	// accumulate before the primer stops discounting its output.
	minimumDeterminations = 4

	// Sample-to-sample time is clamped to keep the rad/s scaling sane.
	minSampleGapMs = 5
	maxSampleGapMs = 5000

	msPerSec = 1000
)

// BackAzimuthPrimer resolves front/back ambiguity. Ranging antennas cannot
// tell a target in front from one behind, so this primer correlates
// pose-yaw-induced azimuth change against both the normal and the mirrored
// interpretation of the incoming readings and mirrors the azimuth when the
// readings act like they are coming from behind. It also mirrors
// immediately whenever the prediction itself crosses the 90-degree line.
type BackAzimuthPrimer struct {
	normalThresholdRadPerSec float64
	mirrorThresholdRadPerSec float64
	windowSize               int
	maskRawAzimuthWhenBack   bool
	stdDev                   float64
	discrepancyCoefficient   float64

	scoreHistory       []float64
	discrepancyHistory []float64
	mirrored           bool
	lastAzimuthPred    float64
	lastSampleTimeMs   int64
	lastPose           *geom.Pose
	lastInput          *geom.SphericalVector
	determinationCount int
	fomFilterValue     float64
	lastGoodMs         float64
}

// NewBackAzimuthPrimer creates the primer.
//
// normalThresholdRadPerSec and mirrorThresholdRadPerSec are how many
// radians per second of correlated rotation force a non-mirrored or
// mirrored azimuth; keeping them apart provides hysteresis. windowSize is
// the moving window used for the correlation decision. When
// maskRawAzimuthWhenBack is set, back-facing readings are replaced with
// predictions instead of mirrored, for hardware whose through-device
// readings are not predictably mirrored. stdDev controls the width of the
// accuracy bell curve, and discrepancyCoefficient is how strongly the
// typical forward prediction error counts against the forward score.
func NewBackAzimuthPrimer(
	normalThresholdRadPerSec, mirrorThresholdRadPerSec float64,
	windowSize int,
	maskRawAzimuthWhenBack bool,
	stdDev, discrepancyCoefficient float64,
) *BackAzimuthPrimer {
	return &BackAzimuthPrimer{
		normalThresholdRadPerSec: normalThresholdRadPerSec,
		mirrorThresholdRadPerSec: mirrorThresholdRadPerSec,
		windowSize:               windowSize,
		maskRawAzimuthWhenBack:   maskRawAzimuthWhenBack,
		stdDev:                   stdDev,
		discrepancyCoefficient:   discrepancyCoefficient,
		// Makes the first sample's time gap clamp to the maximum, giving
		// it the least effect. Half-range keeps the subtraction from
		// overflowing.
		lastSampleTimeMs: math.MinInt64 / 2,
		fomFilterValue:   MinimumFOM,
	}
}

// Prime disambiguates the input azimuth using pose correlation.
func (p *BackAzimuthPrimer) Prime(
	input geom.Annotated,
	prediction *geom.SphericalVector,
	src pose.Source,
	timeMs int64,
) geom.Annotated {
	if !input.HasAzimuth || src == nil || prediction == nil {
		// Nothing to correlate without azimuth, pose and prediction.
		return input
	}

	timeDeltaMs := min64(maxSampleGapMs, max64(minSampleGapMs, timeMs-p.lastSampleTimeMs))
	timeScale := float64(msPerSec) / float64(timeDeltaMs)
	p.lastSampleTimeMs = timeMs

	// Mirror outright when the pose rotates the prediction across the
	// 90-degree mark.
	if math.Abs(prediction.Azimuth) > geom.HalfPi && math.Abs(p.lastAzimuthPred) <= geom.HalfPi {
		p.mirrored = true
		p.flipScoreHistory()
	} else if math.Abs(prediction.Azimuth) <= geom.HalfPi && math.Abs(p.lastAzimuthPred) > geom.HalfPi {
		p.mirrored = false
		p.flipScoreHistory()
	}
	p.lastAzimuthPred = prediction.Azimuth
	// The prediction is influenced by mirroring itself and lags behind the
	// filter, so it plays no part in the front/back scoring below.

	// Earlier primers may have pushed the input past 90 degrees, so
	// front/back is forced explicitly for both theories.
	normalInput := forceAzimuth(input.SphericalVector, false)
	mirrorInput := forceAzimuth(input.SphericalVector, true)

	newPose, ok := src.Pose()
	if !ok || p.lastPose == nil || *p.lastPose == newPose || p.lastInput == nil {
		// No pose delta or input history to work with yet.
		if ok {
			p.lastPose = &newPose
		} else {
			p.lastPose = nil
		}
		p.lastInput = &normalInput
		return input
	}

	// A full pose transform, not just the yaw delta: the device may have
	// rolled or translated as well.
	deltaPose := geom.Compose(newPose.Inverted(), *p.lastPose)

	// Theorize where the previous reading should have moved for the normal
	// and mirrored interpretations.
	normalTheory := transformSpherical(*p.lastInput, deltaPose)
	mirrorTheory := transformSpherical(mirrorAzimuth(*p.lastInput), deltaPose)

	// How many radians of pose change affected the azimuth; more movement
	// means the score deserves more weight.
	azimuthDeltaFromPose := geom.NormalizeRadians(math.Abs(normalTheory.Azimuth - p.lastInput.Azimuth))

	normalDifference := math.Abs(geom.NormalizeRadians(normalTheory.Azimuth - normalInput.Azimuth))
	mirrorDifference := math.Abs(geom.NormalizeRadians(mirrorTheory.Azimuth - mirrorInput.Azimuth))
	normalAccuracy := bell(normalDifference, p.stdDev)
	mirrorAccuracy := bell(mirrorDifference, p.stdDev)

	// Score in radians of correlated pose rotation per second.
	scoreRadPerSec := (normalAccuracy - mirrorAccuracy) * azimuthDeltaFromPose * timeScale
	scoreBiased := p.biasScore(scoreRadPerSec, normalDifference)

	p.lastInput = &normalInput
	p.lastPose = &newPose

	p.scoreHistory = append(p.scoreHistory, scoreBiased)
	typScore := 0.0
	if len(p.scoreHistory) > p.windowSize {
		p.scoreHistory = p.scoreHistory[1:]
		typScore = p.medianScore()

		if typScore > p.normalThresholdRadPerSec {
			p.mirrored = false
			if p.determinationCount < minimumDeterminations {
				p.determinationCount++
			}
		} else if typScore < -p.mirrorThresholdRadPerSec {
			p.mirrored = true
			if p.determinationCount < minimumDeterminations {
				p.determinationCount++
			}
		}
	}

	if Debug {
		log.Printf(
			"backazimuth: dt %4d pose %6.1f nd %6.1f (%3.0f%%) md %6.1f (%3.0f%%) sco %5.1f agg %5.1f mirrored=%v",
			timeDeltaMs,
			geom.Degrees(azimuthDeltaFromPose),
			geom.Degrees(normalDifference), normalAccuracy*100,
			geom.Degrees(mirrorDifference), mirrorAccuracy*100,
			geom.Degrees(scoreBiased),
			geom.Degrees(typScore),
			p.mirrored,
		)
	}

	result := input.SphericalVector
	if p.mirrored && p.maskRawAzimuthWhenBack {
		// Through-device readings are not usable on this hardware; go
		// fully to predictions while back-facing.
		result = geom.SphericalFromRadians(prediction.Azimuth, prediction.Elevation, input.Distance)
	}
	result = forceAzimuth(result, p.mirrored)

	annotated := geom.NewAnnotated(result, true, input.HasElevation, input.HasDistance).WithFOMFrom(input)
	return p.updateFOM(annotated, normalAccuracy, mirrorAccuracy)
}

// updateFOM adjusts the azimuth FOM for three conditions: how long the
// primer has been substituting predictions, how well yaw and azimuth
// correlate, and whether enough initial determinations have been made.
func (p *BackAzimuthPrimer) updateFOM(result geom.Annotated, normalAccuracy, mirrorAccuracy float64) geom.Annotated {
	var newFom float64
	if p.mirrored {
		newFom = mirrorAccuracy
		if p.maskRawAzimuthWhenBack {
			elapsedMs := float64(p.lastSampleTimeMs) - p.lastGoodMs
			fom := math.Max(1-elapsedMs/msPerSec*FalloffFOMPerSec, MinimumFOM)
			result.AzimuthFOM *= fom
		}
	} else {
		newFom = normalAccuracy
		// Real data again; subsequent estimations start fresh.
		p.lastGoodMs = float64(p.lastSampleTimeMs)
	}
	p.fomFilterValue = p.fomFilterValue*(1-fomDecay) + newFom*fomDecay
	result.AzimuthFOM *= p.fomFilterValue

	if p.determinationCount < minimumDeterminations {
		// Until front/back evidence accumulates, certainty is up to 50%
		// lower.
		result.AzimuthFOM *= 0.5 + float64(p.determinationCount)/minimumDeterminations/2
	}
	return result
}

// medianScore returns the typical score of the full window.
func (p *BackAzimuthPrimer) medianScore() float64 {
	sorted := make([]float64, len(p.scoreHistory))
	copy(sorted, p.scoreHistory)
	sort.Float64s(sorted)
	mid := p.windowSize / 2
	if p.windowSize%2 == 0 || mid+1 >= len(sorted) {
		// Even windows take the upper-middle element; a window of 1 has
		// nothing to pair it with.
		return sorted[mid]
	}
	return (sorted[mid] + sorted[mid+1]) / 2
}

// flipScoreHistory negates accumulated scores when the frame of reference
// flips front-to-back.
func (p *BackAzimuthPrimer) flipScoreHistory() {
	for i := range p.scoreHistory {
		p.scoreHistory[i] = -p.scoreHistory[i]
	}
}

// biasScore biases a score toward the back based on how far off the
// forward-facing predictions typically are. Forward error is large when
// the signal is noisy and consistently non-zero when the target is really
// behind; rear targets are usually both.
func (p *BackAzimuthPrimer) biasScore(scoreRadPerSec, normalDifference float64) float64 {
	p.discrepancyHistory = append(p.discrepancyHistory, normalDifference)
	if len(p.discrepancyHistory) <= p.windowSize {
		return scoreRadPerSec
	}
	p.discrepancyHistory = p.discrepancyHistory[1:]
	sum := 0.0
	for _, d := range p.discrepancyHistory {
		sum += d
	}
	avgDiscrepancy := sum / float64(len(p.discrepancyHistory))
	return scoreRadPerSec - avgDiscrepancy*p.discrepancyCoefficient
}

// transformSpherical applies a pose delta to a spherical coordinate.
func transformSpherical(input geom.SphericalVector, deltaPose geom.Pose) geom.SphericalVector {
	return geom.SphericalFromCartesian(deltaPose.TransformPoint(input.ToCartesian()))
}

// mirrorAzimuth mirrors the azimuth front-to-back or back-to-front.
func mirrorAzimuth(v geom.SphericalVector) geom.SphericalVector {
	az := v.Azimuth
	mirrored := math.Pi - math.Abs(az)
	if az < 0 {
		mirrored = -mirrored
	}
	return geom.SphericalFromRadians(mirrored, v.Elevation, v.Distance)
}

// forceAzimuth mirrors the vector as needed so it faces front or back.
func forceAzimuth(v geom.SphericalVector, back bool) geom.SphericalVector {
	if back == (math.Abs(v.Azimuth) < geom.HalfPi) {
		return mirrorAzimuth(v)
	}
	return v
}

// bell plots x on a gaussian curve scaled so that bell(0, stdDev) == 1.
func bell(x, stdDev float64) float64 {
	variance := stdDev * stdDev
	return math.Exp(-(x * x / (2 * variance)))
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
