package cleaning

import (
	"github.com/clipdr/studio-engine/internal/errors"
	resampler "github.com/tphakala/go-audio-resampler"
)

// resampleTo resamples mono samples from srcRate to dstRate.
func resampleTo(samples []float32, srcRate, dstRate int) ([]float32, error) {
	if srcRate == dstRate {
		return samples, nil
	}
	out, err := resampler.Resample(samples, srcRate, dstRate)
	if err != nil {
		return nil, errors.New(err).Component("cleaning").Category(errors.CategoryAudio).
			Context("src_rate", srcRate).Context("dst_rate", dstRate).Build()
	}
	return out, nil
}

// resampleToLength resamples and then pads/truncates to exactly
// targetLen samples, so a round-trip resample always matches the
// original buffer length regardless of resampler rounding.
func resampleToLength(samples []float32, srcRate, dstRate, targetLen int) ([]float32, error) {
	out, err := resampleTo(samples, srcRate, dstRate)
	if err != nil {
		return nil, err
	}
	if len(out) == targetLen {
		return out, nil
	}
	fitted := make([]float32, targetLen)
	copy(fitted, out)
	return fitted, nil
}
