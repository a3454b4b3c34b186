package transcription

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipdr/studio-engine/internal/errors"
)

// WordAdjustment is a user-applied timing correction for one word,
// keyed by the word's stable ID rather than its index so reorders
// don't invalidate prior adjustments.
type WordAdjustment struct {
	WordID   string  `json:"wordId"`
	OffsetMs float64 `json:"offsetMs"`
}

// Metadata is the on-disk schema for a recording's transcription
// sidecar file: `{stem}.transcription.json` next to the source audio.
type Metadata struct {
	AudioPath       string           `json:"audioPath"`
	AudioHash       string           `json:"audioHash,omitempty"`
	GlobalOffsetMs  float64          `json:"globalOffsetMs"`
	WordAdjustments []WordAdjustment `json:"wordAdjustments"`
	SavedAt         int64            `json:"savedAt"`
	Words           []Word           `json:"words,omitempty"`
	FullText        string           `json:"fullText,omitempty"`
	Language        string           `json:"language,omitempty"`
}

// metadataPath derives the sidecar path for an audio file:
// `{dir}/{stem}.transcription.json`.
func metadataPath(audioPath string) string {
	dir := filepath.Dir(audioPath)
	base := filepath.Base(audioPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "audio"
	}
	return filepath.Join(dir, stem+".transcription.json")
}

// SaveMetadata writes meta as the transcription sidecar for audioPath,
// stamping SavedAt with the current time.
func SaveMetadata(audioPath string, meta Metadata) error {
	meta.AudioPath = audioPath
	meta.SavedAt = time.Now().Unix()

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.New(err).Component("transcription").Category(errors.CategoryFormat).
			Context("audio_path", audioPath).Build()
	}

	path := metadataPath(audioPath)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.New(err).Component("transcription").Category(errors.CategoryFileIO).
			Context("path", path).Build()
	}
	return nil
}

// LoadMetadata reads the transcription sidecar for audioPath, returning
// (nil, nil) if no sidecar exists.
func LoadMetadata(audioPath string) (*Metadata, error) {
	path := metadataPath(audioPath)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.New(err).Component("transcription").Category(errors.CategoryFileIO).
			Context("path", path).Build()
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.New(err).Component("transcription").Category(errors.CategoryFormat).
			Context("path", path).Build()
	}
	return &meta, nil
}

// DeleteMetadata removes the transcription sidecar for audioPath, if
// one exists.
func DeleteMetadata(audioPath string) error {
	path := metadataPath(audioPath)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.New(err).Component("transcription").Category(errors.CategoryFileIO).
			Context("path", path).Build()
	}
	return nil
}
