package transcription

import (
	resampler "github.com/tphakala/go-audio-resampler"

	"github.com/clipdr/studio-engine/internal/errors"
)

// targetSampleRate is the fixed rate ASR chunks are delivered at.
const targetSampleRate = 16000

// toMono16k mixes interleaved samples down to mono and resamples to
// targetSampleRate, the format every Transcriber implementation is
// contractually fed.
func toMono16k(samples []float32, sourceRate, channels int) ([]float32, error) {
	mono := toMono(samples, channels)
	if sourceRate == targetSampleRate {
		return mono, nil
	}
	out, err := resampler.Resample(mono, sourceRate, targetSampleRate)
	if err != nil {
		return nil, errors.New(err).Component("transcription").Category(errors.CategoryAudio).
			Context("source_rate", sourceRate).Context("target_rate", targetSampleRate).Build()
	}
	return out, nil
}

func toMono(samples []float32, channels int) []float32 {
	if channels <= 1 {
		out := make([]float32, len(samples))
		copy(out, samples)
		return out
	}
	frames := len(samples) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += samples[base+c]
		}
		out[i] = sum / float32(channels)
	}
	return out
}
