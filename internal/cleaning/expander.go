package cleaning

import "math"

// expanderTimeConstant is the exponential-smoothing shape factor
// applied to both attack and release, matching the original
// DownwardExpander's envelope follower.
const expanderTimeConstant = -2.2

// DownwardExpander gradually reduces gain below a threshold, unlike a
// hard gate which cuts sharply. Stateful: Process calls advance one
// continuous envelope across calls.
type DownwardExpander struct {
	thresholdLinear float64
	ratio           float64
	attackCoeff     float64
	releaseCoeff    float64
	envelope        float64
}

// NewDownwardExpander builds an expander for sampleRate audio:
// thresholdDB typically -60..-20, ratio typically 1.5..4.0, attackMs
// and releaseMs are the envelope follower's time constants.
func NewDownwardExpander(sampleRate, thresholdDB, ratio, attackMs, releaseMs float64) *DownwardExpander {
	thresholdLinear := math.Pow(10, thresholdDB/20)

	attackSamples := attackMs * sampleRate / 1000.0
	releaseSamples := releaseMs * sampleRate / 1000.0

	return &DownwardExpander{
		thresholdLinear: thresholdLinear,
		ratio:           ratio,
		attackCoeff:     math.Exp(expanderTimeConstant / attackSamples),
		releaseCoeff:    math.Exp(expanderTimeConstant / releaseSamples),
	}
}

// Process applies downward expansion to samples in place.
func (e *DownwardExpander) Process(samples []float64) {
	for i, s := range samples {
		inputAbs := math.Abs(s)

		coeff := e.releaseCoeff
		if inputAbs > e.envelope {
			coeff = e.attackCoeff
		}
		e.envelope = e.envelope*coeff + inputAbs*(1-coeff)

		gain := 1.0
		if e.envelope < e.thresholdLinear && e.envelope > 0 {
			dbBelow := 20 * math.Log10(e.envelope/e.thresholdLinear)
			dbReduction := dbBelow * (1 - 1/e.ratio)
			gain = math.Pow(10, dbReduction/20)
		}

		samples[i] = s * gain
	}
}
