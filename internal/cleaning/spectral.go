package cleaning

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	spectralFFTSize   = 2048
	spectralHop       = 512 // 75% overlap
	spectralGainFloor = 0.02
	spectralEpsilon   = 1e-10
)

// SilenceSegment marks a [startSample, endSample) range of known-silent
// audio, used to build the spectral denoiser's noise profile.
type SilenceSegment struct {
	StartSample int
	EndSample   int
}

// SpectralDenoiser is a Wiener/spectral-subtraction hybrid: it estimates
// a per-bin noise magnitude profile, then each frame's bins are
// attenuated toward that profile by an SNR-derived gain, never below
// spectralGainFloor. Runs on overlap-add with Hann-squared window
// normalization (standard for 75% COLA overlap).
type SpectralDenoiser struct {
	reductionDB float64
	noiseMag    []float64 // len == spectralFFTSize/2+1, nil until estimated
}

// NewSpectralDenoiser creates a denoiser that reduces noise by
// reductionDB once a noise profile has been estimated.
func NewSpectralDenoiser(reductionDB float64) *SpectralDenoiser {
	return &SpectralDenoiser{reductionDB: reductionDB}
}

// EstimateNoiseProfile builds the noise magnitude profile from the
// given silence segments, or — if none are provided — from the
// quietest 10% of analysis frames by average magnitude.
func (d *SpectralDenoiser) EstimateNoiseProfile(samples []float64, silence []SilenceSegment) {
	fft := fourier.NewFFT(spectralFFTSize)
	numBins := spectralFFTSize/2 + 1

	var frames [][]float64
	if len(silence) > 0 {
		for _, seg := range silence {
			frames = append(frames, framesInRange(samples, seg.StartSample, seg.EndSample, fft, numBins)...)
		}
	}
	if len(frames) == 0 {
		frames = quietestFrames(samples, fft, numBins)
	}

	profile := make([]float64, numBins)
	if len(frames) == 0 {
		d.noiseMag = profile
		return
	}
	for _, mags := range frames {
		for b := range profile {
			profile[b] += mags[b]
		}
	}
	for b := range profile {
		profile[b] /= float64(len(frames))
	}
	d.noiseMag = profile
}

// framesInRange computes magnitude spectra for every hop-aligned frame
// fully inside [start, end).
func framesInRange(samples []float64, start, end int, fft *fourier.FFT, numBins int) [][]float64 {
	if start < 0 {
		start = 0
	}
	if end > len(samples) {
		end = len(samples)
	}
	var frames [][]float64
	for pos := start; pos+spectralFFTSize <= end; pos += spectralHop {
		frames = append(frames, frameMagnitude(samples[pos:pos+spectralFFTSize], fft, numBins))
	}
	return frames
}

// quietestFrames scans the whole signal in hop-aligned frames and keeps
// the 10% with the lowest average magnitude.
func quietestFrames(samples []float64, fft *fourier.FFT, numBins int) [][]float64 {
	type scored struct {
		mags []float64
		avg  float64
	}
	var all []scored
	for pos := 0; pos+spectralFFTSize <= len(samples); pos += spectralHop {
		mags := frameMagnitude(samples[pos:pos+spectralFFTSize], fft, numBins)
		var sum float64
		for _, m := range mags {
			sum += m
		}
		all = append(all, scored{mags: mags, avg: sum / float64(len(mags))})
	}
	if len(all) == 0 {
		return nil
	}

	keep := len(all) / 10
	if keep < 1 {
		keep = 1
	}
	sort.Slice(all, func(i, j int) bool { return all[i].avg < all[j].avg })

	out := make([][]float64, 0, keep)
	for i := 0; i < keep; i++ {
		out = append(out, all[i].mags)
	}
	return out
}

func frameMagnitude(frame []float64, fft *fourier.FFT, numBins int) []float64 {
	windowed := make([]float64, len(frame))
	copy(windowed, frame)
	applyHannWindow(windowed)

	spectrum := fft.Coefficients(nil, windowed)
	mags := make([]float64, numBins)
	for b := 0; b < numBins && b < len(spectrum); b++ {
		mags[b] = math.Sqrt(cmplxNormSq(spectrum[b]))
	}
	return mags
}

// Process denoises samples in place via overlap-add, attenuating each
// frame's bins toward the estimated noise profile. A no-op if
// EstimateNoiseProfile was never called.
func (d *SpectralDenoiser) Process(samples []float64) {
	if d.noiseMag == nil || len(samples) < spectralFFTSize {
		return
	}

	fft := fourier.NewFFT(spectralFFTSize)
	numBins := spectralFFTSize/2 + 1
	reductionLinear := math.Pow(10, d.reductionDB/20)

	out := make([]float64, len(samples))
	windowSum := make([]float64, len(samples))

	hann := make([]float64, spectralFFTSize)
	for i := range hann {
		hann[i] = 1
	}
	applyHannWindow(hann)

	for pos := 0; pos+spectralFFTSize <= len(samples); pos += spectralHop {
		frame := make([]float64, spectralFFTSize)
		for i := range frame {
			frame[i] = samples[pos+i] * hann[i]
		}

		spectrum := fft.Coefficients(nil, frame)
		for b := 0; b < numBins && b < len(spectrum); b++ {
			signalMag := math.Sqrt(cmplxNormSq(spectrum[b]))
			noiseMag := d.noiseMag[b] * reductionLinear
			snr := signalMag / (noiseMag + spectralEpsilon)

			gain := (snr - 1) / snr
			if gain < spectralGainFloor {
				gain = spectralGainFloor
			}
			spectrum[b] *= complex(gain, 0)
		}

		// fft.Sequence takes the same half-spectrum layout Coefficients
		// produced (gonum's real FFT already omits the redundant
		// conjugate-symmetric upper half) and reconstructs the full
		// real-valued frame.
		reconstructed := fft.Sequence(nil, spectrum)
		for i := 0; i < spectralFFTSize; i++ {
			w := hann[i]
			out[pos+i] += reconstructed[i] * w
			windowSum[pos+i] += w * w
		}
	}

	for i := range samples {
		if windowSum[i] > spectralEpsilon {
			samples[i] = out[i] / windowSum[i]
		}
	}
}

