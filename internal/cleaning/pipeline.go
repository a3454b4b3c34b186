package cleaning

import (
	"time"

	"github.com/clipdr/studio-engine/internal/errors"
)

// StageObserver, if non-nil, is called after each enabled pipeline
// stage with its name and duration in seconds. The cleaning package
// has no telemetry dependency of its own; cmd/engine wires this to
// telemetry.CleaningMetrics.RecordStageDuration during startup so stage
// timing shows up in /metrics without coupling this package to
// Prometheus.
var StageObserver func(stage string, seconds float64)

func observeStage(stage string, start time.Time) {
	if StageObserver != nil {
		StageObserver(stage, time.Since(start).Seconds())
	}
}

// MainsFrequencyMode selects how the hum-removal stage picks its
// target frequency.
type MainsFrequencyMode int

const (
	MainsAuto MainsFrequencyMode = iota
	Mains50Hz
	Mains60Hz
)

// Options controls which cleaning stages run and their parameters.
// Field names and defaults mirror the original audio_clean pipeline's
// CleaningOptions.
type Options struct {
	HighpassEnabled bool
	HighpassFreq    float64 // 40-150 Hz

	LowpassEnabled bool
	LowpassFreq    float64 // 5000-12000 Hz

	NotchEnabled    bool
	MainsFrequency  MainsFrequencyMode
	NotchHarmonics  int // 1-4

	SpectralEnabled bool
	NoiseReductionDB float64 // 0-24 dB

	NeuralEnabled  bool
	NeuralStrength float64 // 0-1

	ExpanderEnabled   bool
	ExpanderThreshold float64 // -60 to -20 dB
	ExpanderRatio     float64 // 1.5-4.0
}

// DefaultOptions returns the pipeline's default stage configuration.
func DefaultOptions() Options {
	return Options{
		HighpassEnabled:   true,
		HighpassFreq:      80.0,
		LowpassEnabled:    true,
		LowpassFreq:       8000.0,
		NotchEnabled:      true,
		MainsFrequency:    MainsAuto,
		NotchHarmonics:    4,
		SpectralEnabled:   true,
		NoiseReductionDB:  12.0,
		NeuralEnabled:     true,
		NeuralStrength:    0.8,
		ExpanderEnabled:   true,
		ExpanderThreshold: -40.0,
		ExpanderRatio:     2.0,
	}
}

// chunkSamples is the large-input chunking threshold: 60s at 44.1kHz.
const chunkSamples = 44100 * 60

// chunkOverlap is the crossfade length between consecutive chunks.
const chunkOverlap = 4096

// Process runs samples (mutable mono f32, sampleRate Hz) through every
// enabled stage in order: band-limiting, mains-hum notch, spectral
// denoise, neural-style denoise, downward expander. Inputs longer than
// chunkSamples are processed in overlapping chunks with a linear
// crossfade across the overlap region; silenceSegments are translated
// into chunk-local coordinates per chunk.
func Process(samples []float32, sampleRate float64, opts Options, silenceSegments []SilenceSegment) error {
	if len(samples) <= chunkSamples {
		return processChunk(samples, sampleRate, opts, silenceSegments)
	}

	// With every stage disabled, processChunk is a no-op on each chunk,
	// so the crossfade below must also be skipped: fading the raw input
	// at chunk boundaries would be the pipeline's only mutation, which
	// breaks the all-disabled bitwise no-op invariant.
	fade := anyStageEnabled(opts)

	pos := 0
	for pos < len(samples) {
		end := pos + chunkSamples
		if end > len(samples) {
			end = len(samples)
		}
		chunk := samples[pos:end]

		chunkSilence := translateSilence(silenceSegments, pos, end)
		if err := processChunk(chunk, sampleRate, opts, chunkSilence); err != nil {
			return err
		}

		if fade && pos > 0 {
			fadeLen := chunkOverlap
			if fadeLen > len(chunk) {
				fadeLen = len(chunk)
			}
			for i := 0; i < fadeLen; i++ {
				w := float32(i) / float32(fadeLen)
				chunk[i] *= w
			}
		}

		next := end - chunkOverlap
		if next <= pos || next+chunkOverlap >= len(samples) {
			break
		}
		pos = next
	}
	return nil
}

// anyStageEnabled reports whether Process has any actual work to do;
// used to gate the chunk-boundary crossfade so an all-disabled Options
// leaves every sample untouched, even for inputs long enough to chunk.
func anyStageEnabled(opts Options) bool {
	return opts.HighpassEnabled || opts.LowpassEnabled || opts.NotchEnabled ||
		opts.SpectralEnabled || (opts.NeuralEnabled && opts.NeuralStrength > 0) ||
		opts.ExpanderEnabled
}

func translateSilence(segs []SilenceSegment, chunkStart, chunkEnd int) []SilenceSegment {
	var out []SilenceSegment
	for _, seg := range segs {
		if seg.EndSample <= chunkStart || seg.StartSample >= chunkEnd {
			continue
		}
		start := seg.StartSample - chunkStart
		if start < 0 {
			start = 0
		}
		end := seg.EndSample - chunkStart
		if end > chunkEnd-chunkStart {
			end = chunkEnd - chunkStart
		}
		out = append(out, SilenceSegment{StartSample: start, EndSample: end})
	}
	return out
}

func processChunk(samples []float32, sampleRate float64, opts Options, silenceSegments []SilenceSegment) error {
	if opts.HighpassEnabled || opts.LowpassEnabled {
		start := time.Now()
		chain := NewFilterChain()
		if opts.HighpassEnabled {
			hp, err := NewHighPass(sampleRate, opts.HighpassFreq, 0.707, 2)
			if err != nil {
				return wrapCleaningErr(err)
			}
			if err := chain.AddFilter(hp); err != nil {
				return wrapCleaningErr(err)
			}
		}
		if opts.LowpassEnabled {
			lp, err := NewLowPass(sampleRate, opts.LowpassFreq, 0.707, 2)
			if err != nil {
				return wrapCleaningErr(err)
			}
			if err := chain.AddFilter(lp); err != nil {
				return wrapCleaningErr(err)
			}
		}
		applyFilterChainF32(chain, samples)
		observeStage("bandlimit", start)
	}

	if opts.NotchEnabled {
		start := time.Now()
		mainsFreq := resolveMainsFrequency(samples, sampleRate, opts.MainsFrequency)
		hum, err := NewHumRemover(sampleRate, mainsFreq, opts.NotchHarmonics)
		if err != nil {
			return wrapCleaningErr(err)
		}
		applyFilterChainF32(hum, samples)
		observeStage("notch", start)
	}

	if opts.SpectralEnabled {
		start := time.Now()
		samples64 := toFloat64(samples)
		denoiser := NewSpectralDenoiser(opts.NoiseReductionDB)
		denoiser.EstimateNoiseProfile(samples64, silenceSegments)
		denoiser.Process(samples64)
		copyFloat32(samples, samples64)
		observeStage("spectral", start)
	}

	if opts.NeuralEnabled && opts.NeuralStrength > 0 {
		start := time.Now()
		neural := NewNeuralDenoiser(int(sampleRate), opts.NeuralStrength)
		if err := neural.Process(samples); err != nil {
			return err
		}
		observeStage("neural", start)
	}

	if opts.ExpanderEnabled {
		start := time.Now()
		samples64 := toFloat64(samples)
		expander := NewDownwardExpander(sampleRate, opts.ExpanderThreshold, opts.ExpanderRatio, 5.0, 50.0)
		expander.Process(samples64)
		copyFloat32(samples, samples64)
		observeStage("expander", start)
	}

	return nil
}

func resolveMainsFrequency(samples []float32, sampleRate float64, mode MainsFrequencyMode) float64 {
	switch mode {
	case Mains50Hz:
		return 50.0
	case Mains60Hz:
		return 60.0
	default:
		return DetectMainsFrequency(toFloat64(samples), sampleRate)
	}
}

func applyFilterChainF32(chain *FilterChain, samples []float32) {
	samples64 := toFloat64(samples)
	chain.ApplyBatch(samples64)
	copyFloat32(samples, samples64)
}

func toFloat64(samples []float32) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = float64(v)
	}
	return out
}

func copyFloat32(dst []float32, src []float64) {
	for i := range dst {
		if i < len(src) {
			dst[i] = float32(src[i])
		}
	}
}

func wrapCleaningErr(err error) error {
	return errors.New(err).Component("cleaning").Category(errors.CategoryAudio).Build()
}
