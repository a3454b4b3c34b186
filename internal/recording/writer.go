package recording

import (
	"time"

	"github.com/clipdr/studio-engine/internal/logging"
	"github.com/clipdr/studio-engine/internal/ring"
	"github.com/clipdr/studio-engine/internal/wavfile"
)

var writerLogger = logging.ForService("recording-writer")

// lowWaterFraction is the post-drain fill fraction under which the
// writer goroutine sleeps instead of draining again immediately.
const lowWaterFraction = 4 // 1/4 = 25%

const idleSleep = 5 * time.Millisecond

// badChannelCheckFrames caps how many stereo frames the bad-channel
// probe inspects within a batch large enough to judge.
const badChannelCheckFrames = 100

// runWriter drains sess.ring into a wavfile.Writer at basePath until the
// ring goes inactive, handling segment rolling (split-tracks mode) and
// bad-channel fixup, then sends the result on sess.done.
func runWriter(sess *Session) {
	result := writerResult{}
	defer func() { sess.done <- result }()

	sr := sess.negotiated.SampleRate
	ch := sess.negotiated.Channels

	segmentIndex := 1
	segmentBytes := uint64(0)
	path := segmentPath(sess.basePath, segmentIndex)

	w, err := wavfile.NewWriter(path, sr, ch)
	if err != nil {
		result.err = err
		return
	}

	badChannelChecked := false
	var totalSamples uint64
	var completed []string

	rollSegments := sess.largeFileFormat == SplitTracks

	drainAndWrite := func(batch []float32) {
		if len(batch) == 0 {
			return
		}

		if !badChannelChecked && ch == 2 && len(batch) >= 2*badChannelCheckFrames {
			badChannelChecked = true
			bad, err := ring.DetectBadChannel(batch, badChannelCheckFrames)
			if err == nil && bad != ring.BadChannelNone {
				writerLogger.Info("detected bad input channel, duplicating good channel", "bad_channel", bad)
				sess.ring.SetBadChannel(bad)
			}
		}

		if ch == 2 && sess.ring.BadChannel() != ring.BadChannelNone {
			fixupBadChannel(batch, sess.ring.BadChannel())
		}

		writeBytes := uint64(len(batch)) * 4
		if rollSegments && segmentBytes+writeBytes > SegmentMaxDataBytes {
			if ferr := w.Finalize(); ferr != nil {
				writerLogger.Error("failed to finalize segment", "path", path, "error", ferr)
			} else if perr := patchHeaderIfNeeded(path); perr != nil {
				writerLogger.Warn("safety-net header patch failed", "path", path, "error", perr)
			}
			completed = append(completed, path)

			segmentIndex++
			segmentBytes = 0
			path = segmentPath(sess.basePath, segmentIndex)
			nw, nerr := wavfile.NewWriter(path, sr, ch)
			if nerr != nil {
				result.err = nerr
				return
			}
			w = nw
			writerLogger.Info("started new recording segment", "path", path)
		}

		if werr := w.WriteSamples(batch); werr != nil {
			writerLogger.Error("partial write failure, skipping batch", "error", werr)
		}
		totalSamples += uint64(len(batch))
		segmentBytes += writeBytes
	}

	for {
		pending := sess.ring.Pending()
		if pending == 0 {
			if !sess.ring.Active() {
				break
			}
			time.Sleep(idleSleep)
			continue
		}

		batch := sess.ring.Drain()
		drainAndWrite(batch)
		if result.err != nil {
			return
		}

		if sess.ring.Pending() > sess.ring.Capacity()/lowWaterFraction {
			continue
		}
		time.Sleep(idleSleep)
	}

	// Final drain in case a few more samples arrived between the last
	// Pending() check and the active flag clearing.
	drainAndWrite(sess.ring.Drain())
	if result.err != nil {
		return
	}

	overruns := sess.ring.OverrunCount()
	maxFill := sess.ring.MaxFillLevel()
	writerLogger.Info("wav writer goroutine finished",
		"total_samples", totalSamples,
		"segments", segmentIndex,
		"rf64", w.IsRF64(),
		"overrun_count", overruns,
		"max_fill", maxFill,
		"capacity", sess.ring.Capacity())
	if overruns > 0 {
		writerLogger.Warn("recording had ring buffer overruns, potential audio gaps", "overrun_count", overruns)
	}

	result.totalSamples = totalSamples
	result.completedSegs = completed
	result.finalSegmentPath = path
	result.writer = w
}

// fixupBadChannel replaces the bad channel's samples with the good
// channel's, duplicated to both lanes, in place.
func fixupBadChannel(samples []float32, bad ring.BadChannel) {
	for i := 0; i+1 < len(samples); i += 2 {
		if bad == ring.BadChannelLeft {
			samples[i] = samples[i+1]
		} else {
			samples[i+1] = samples[i]
		}
	}
}

// patchHeaderIfNeeded reparses the file's actual chunk layout and
// rewrites the RIFF/data size fields, guarding against writers whose
// internal u32 counters silently overflowed past 4GiB. A no-op when the
// header was already patched correctly (RF64 files and anything
// Finalize already wrote a valid size for).
func patchHeaderIfNeeded(path string) error {
	if wavfile.IsHeaderValid(path) {
		return nil
	}
	writerLogger.Debug("header needs a safety-net patch", "path", path)
	return wavfile.RepairHeader(path)
}
