package config

import "testing"

func TestValidateSettingsAppliesDefaults(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	validateSettings(s)

	if s.Recording.PreRecordSeconds != 10 {
		t.Errorf("expected default PreRecordSeconds 10, got %d", s.Recording.PreRecordSeconds)
	}
	if s.Recording.SegmentMaxBytes != 3_900_000_000 {
		t.Errorf("expected default SegmentMaxBytes 3_900_000_000, got %d", s.Recording.SegmentMaxBytes)
	}
	if s.Recording.Writer.MinSleep <= 0 || s.Recording.Writer.MaxSleep <= s.Recording.Writer.MinSleep {
		t.Errorf("expected writer sleep bounds to be set with Max > Min, got %v/%v",
			s.Recording.Writer.MinSleep, s.Recording.Writer.MaxSleep)
	}
	if s.Device.SampleRate != 44100 || s.Device.Channels != 2 {
		t.Errorf("expected default device format 44100/2, got %d/%d", s.Device.SampleRate, s.Device.Channels)
	}
	if s.Cleaning.NotchHarmonic != 4 {
		t.Errorf("expected default NotchHarmonic 4, got %d", s.Cleaning.NotchHarmonic)
	}
}

func TestValidateSettingsPreservesExplicitValues(t *testing.T) {
	t.Parallel()

	s := &Settings{}
	s.Recording.PreRecordSeconds = 30
	s.Recording.SegmentMaxBytes = 1_000_000
	validateSettings(s)

	if s.Recording.PreRecordSeconds != 30 {
		t.Errorf("expected explicit PreRecordSeconds to survive validation, got %d", s.Recording.PreRecordSeconds)
	}
	if s.Recording.SegmentMaxBytes != 1_000_000 {
		t.Errorf("expected explicit SegmentMaxBytes to survive validation, got %d", s.Recording.SegmentMaxBytes)
	}
}
