package cleaning

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// humDetectWindow is how many leading samples the mains-frequency
// detector examines; matches the original HumRemover's fixed window.
const humDetectWindow = 8192

// humHarmonics is the number of harmonics (including the fundamental)
// summed when scoring 50Hz against 60Hz.
const humHarmonics = 4

// humBiasTo50Hz is the energy margin 50Hz must exceed 60Hz by before
// it's preferred; ties and near-ties default to 60Hz.
const humBiasTo50Hz = 1.2

// DetectMainsFrequency estimates whether samples carry 50Hz or 60Hz
// mains hum by comparing FFT energy at each candidate's fundamental and
// harmonics. Falls back to 60Hz when there aren't enough samples for a
// full analysis window.
func DetectMainsFrequency(samples []float64, sampleRate float64) float64 {
	if len(samples) < humDetectWindow {
		return 60.0
	}

	windowed := make([]float64, humDetectWindow)
	copy(windowed, samples[:humDetectWindow])
	applyHannWindow(windowed)

	fft := fourier.NewFFT(humDetectWindow)
	spectrum := fft.Coefficients(nil, windowed)

	freqResolution := sampleRate / float64(humDetectWindow)

	var energy50, energy60 float64
	for h := 1; h <= humHarmonics; h++ {
		bin50 := int(math.Round(50.0 * float64(h) / freqResolution))
		if bin50 < len(spectrum) {
			energy50 += cmplxNormSq(spectrum[bin50])
		}
		bin60 := int(math.Round(60.0 * float64(h) / freqResolution))
		if bin60 < len(spectrum) {
			energy60 += cmplxNormSq(spectrum[bin60])
		}
	}

	if energy50 > energy60*humBiasTo50Hz {
		return 50.0
	}
	return 60.0
}

func cmplxNormSq(c complex128) float64 {
	return real(c)*real(c) + imag(c)*imag(c)
}

func applyHannWindow(samples []float64) {
	n := len(samples)
	for i := range samples {
		w := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
		samples[i] *= w
	}
}

// NewHumRemover builds a notch-filter bank targeting mainsFreq and its
// harmonics up to harmonics (clamped 1-4), skipping any above Nyquist.
func NewHumRemover(sampleRate, mainsFreq float64, harmonics int) (*FilterChain, error) {
	if harmonics > 4 {
		harmonics = 4
	}
	if harmonics < 1 {
		harmonics = 1
	}

	chain := NewFilterChain()
	for h := 1; h <= harmonics; h++ {
		freq := mainsFreq * float64(h)
		if freq >= sampleRate/2 {
			continue
		}
		notch, err := NewNotch(sampleRate, freq, 30.0, 1)
		if err != nil {
			return nil, err
		}
		if err := chain.AddFilter(notch); err != nil {
			return nil, err
		}
	}
	return chain, nil
}
