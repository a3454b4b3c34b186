package cleaning

// neuralSampleRate is the fixed rate the (substitute) neural stage runs
// at, matching RNNoise's native 48kHz framing in the original pipeline.
const neuralSampleRate = 48000

// neuralGateReductionDB is the fixed reduction the substitute gate
// pass applies — milder than the spectral stage's tunable
// noiseReductionDB, since this stage's job is to shape rather than
// re-cut audio the spectral stage already denoised.
const neuralGateReductionDB = 6.0

// NeuralDenoiser is the documented substitute for RNNoise (see
// DESIGN.md): no Go binding for a pretrained speech-denoising net
// exists anywhere in the retrieval pack, so this stage preserves the
// original's external contract — resample to a fixed rate, denoise,
// resample back, blend by strength — using a second pass of the same
// FFT noise-gate mechanics as SpectralDenoiser, profiled against the
// quietest 10% of the resampled frames, in place of the network.
type NeuralDenoiser struct {
	sourceSampleRate int
	strength         float64
}

// NewNeuralDenoiser creates a denoiser for audio at sourceSampleRate,
// blending strength (0=original, 1=fully denoised).
func NewNeuralDenoiser(sourceSampleRate int, strength float64) *NeuralDenoiser {
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	return &NeuralDenoiser{sourceSampleRate: sourceSampleRate, strength: strength}
}

// Process denoises samples in place. A no-op when strength is 0.
func (n *NeuralDenoiser) Process(samples []float32) error {
	if len(samples) == 0 || n.strength <= 0 {
		return nil
	}

	original := make([]float32, len(samples))
	copy(original, samples)

	needsResample := n.sourceSampleRate != neuralSampleRate

	working := original
	if needsResample {
		resampled, err := resampleTo(original, n.sourceSampleRate, neuralSampleRate)
		if err != nil {
			return err
		}
		working = resampled
	}

	working64 := make([]float64, len(working))
	for i, v := range working {
		working64[i] = float64(v)
	}

	gate := NewSpectralDenoiser(neuralGateReductionDB)
	gate.EstimateNoiseProfile(working64, nil)
	gate.Process(working64)

	denoised := make([]float32, len(working64))
	for i, v := range working64 {
		denoised[i] = float32(v)
	}

	if needsResample {
		back, err := resampleToLength(denoised, neuralSampleRate, n.sourceSampleRate, len(samples))
		if err != nil {
			return err
		}
		denoised = back
	}

	for i := range samples {
		if i >= len(denoised) {
			break
		}
		samples[i] = original[i]*float32(1-n.strength) + denoised[i]*float32(n.strength)
	}
	return nil
}
