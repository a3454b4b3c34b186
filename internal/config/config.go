// Package config loads and holds engine-wide settings: the studio engine's
// equivalent of BirdNET-Go's internal/conf, trimmed to this domain's shape.
package config

import (
	"embed"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the root configuration tree for the engine.
type Settings struct {
	Debug bool

	Main struct {
		Name string
		Log  LogConfig
	}

	Device struct {
		Backend          string // "pulse", "malgo", or "auto"
		PreferredInput   string // substring match against device name
		PreferredOutput  string
		SampleRate       int
		Channels         int
	}

	Recording struct {
		PreRecordSeconds int    // sliding pre-roll buffer duration
		OutputDir        string // directory for finalized recordings
		SplitTracks      bool   // not read: callers pass a recording.LargeFileFormat, and segments roll at recording.SegmentMaxDataBytes
		SegmentMaxBytes  int64
		HeaderPatchEvery time.Duration // not read: wavfile.Writer patches every wavfile.DefaultHeaderPatchInterval
		Writer           WriterTuning
	}

	Cleaning CleaningDefaults

	Playback struct {
		DecodeCacheDir string
		MaxCachedPCM   int // not read: the decode cache has no entry limit
	}

	Recovery struct {
		ScanOnStartup bool
		ScratchBytes  int // not read: the recovery scan uses no scratch buffer
	}

	Telemetry struct {
		Enabled bool
		Listen  string
	}
}

// WriterTuning holds sleep bounds for the WAV writer goroutine that
// drains the recording ring buffer to disk. The writer does not read
// them: it sleeps a fixed 5ms whenever the ring is at most a quarter full.
type WriterTuning struct {
	MinSleep time.Duration
	MaxSleep time.Duration
}

// CleaningDefaults mirrors the cleaning pipeline's stage configuration, with
// defaults matching the original audio_clean pipeline's CleaningOptions.
type CleaningDefaults struct {
	HighpassEnabled bool
	HighpassHz      float64

	LowpassEnabled bool
	LowpassHz      float64

	NotchEnabled  bool
	MainsHz       string // "auto", "50", "60"
	NotchHarmonic int

	SpectralEnabled  bool
	SpectralReduceDB float64

	NeuralEnabled  bool
	NeuralStrength float64

	ExpanderEnabled   bool
	ExpanderThreshold float64
	ExpanderRatio     float64
}

// LogConfig defines the configuration for a log file.
type LogConfig struct {
	Enabled     bool
	Path        string
	Rotation    RotationType
	MaxSize     int64
	RotationDay time.Weekday
}

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

var (
	settingsInstance *Settings
	once             sync.Once
	settingsMutex    sync.RWMutex
)

// Load reads configuration from file, environment and embedded defaults into
// a fresh Settings instance, and makes it the process-global instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}
	validateSettings(settings)

	settingsInstance = settings
	return settings, nil
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := DefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}
	return nil
}

func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")
	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}
	return viper.ReadInConfig()
}

// DefaultConfigPaths returns the OS-specific search paths for config.yaml,
// in priority order.
func DefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("error fetching user home directory: %w", err)
	}

	switch runtime.GOOS {
	case "windows":
		return []string{filepath.Join(homeDir, "AppData", "Roaming", "studio-engine")}, nil
	default:
		return []string{
			filepath.Join(homeDir, ".config", "studio-engine"),
			"/etc/studio-engine",
		}, nil
	}
}

// validateSettings clamps obviously-invalid values to safe defaults rather
// than failing startup outright.
func validateSettings(s *Settings) {
	if s.Recording.PreRecordSeconds <= 0 {
		s.Recording.PreRecordSeconds = 10
	}
	if s.Recording.SegmentMaxBytes <= 0 {
		s.Recording.SegmentMaxBytes = 3_900_000_000
	}
	if s.Recording.Writer.MinSleep <= 0 {
		s.Recording.Writer.MinSleep = 5 * time.Millisecond
	}
	if s.Recording.Writer.MaxSleep <= s.Recording.Writer.MinSleep {
		s.Recording.Writer.MaxSleep = 50 * time.Millisecond
	}
	if s.Recording.HeaderPatchEvery <= 0 {
		s.Recording.HeaderPatchEvery = 2 * time.Second
	}
	if s.Device.SampleRate <= 0 {
		s.Device.SampleRate = 44100
	}
	if s.Device.Channels <= 0 {
		s.Device.Channels = 2
	}
	if s.Cleaning.NotchHarmonic <= 0 {
		s.Cleaning.NotchHarmonic = 4
	}
}

// GetSettings returns the current settings instance, or nil if Load has
// never run.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// Setting returns the current settings instance, lazily loading defaults
// on first access.
func Setting() *Settings {
	once.Do(func() {
		if settingsInstance == nil {
			if _, err := Load(); err != nil {
				log.Fatalf("error loading settings: %v", err)
			}
		}
	})
	return GetSettings()
}
