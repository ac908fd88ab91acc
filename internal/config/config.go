// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML configuration of the command line tool.
// Flags given on the command line override the loaded values.
package config

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Config represents the complete tool configuration
type Config struct {
	Transcode TranscodeConfig `yaml:"transcode"`
	SeekTable SeekTableConfig `yaml:"seektable"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// TranscodeConfig holds defaults for the transcode command. Zero numeric
// values inherit from the input.
type TranscodeConfig struct {
	Target        string  `yaml:"target"`
	BitsPerSample int     `yaml:"bits_per_sample"`
	SampleRate    int     `yaml:"sample_rate"`
	Bitrate       int     `yaml:"bitrate"`
	FLACBlockSize int     `yaml:"flac_block_size"`
	OpusFrameMs   float64 `yaml:"opus_frame_ms"`
	KeepPartial   bool    `yaml:"keep_partial"`
}

// SeekTableConfig holds the seek point specification.
type SeekTableConfig struct {
	Spec string `yaml:"spec"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig names the textfile collector output. Empty disables it.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Transcode: TranscodeConfig{
			Target:        "flac",
			FLACBlockSize: 4096,
			OpusFrameMs:   20,
		},
		SeekTable: SeekTableConfig{Spec: "1s;"},
		Logging:   LoggingConfig{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Transcode.Validate(); err != nil {
		return fmt.Errorf("transcode config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

var validTargets = []string{"flac", "opus", "ogg", "mp3", "wav", "aiff", "aif"}

// Validate validates transcode configuration
func (t *TranscodeConfig) Validate() error {
	if !slices.Contains(validTargets, t.Target) {
		return fmt.Errorf("target must be one of %v, got '%s'", validTargets, t.Target)
	}

	if t.BitsPerSample < 0 || t.BitsPerSample > 32 {
		return fmt.Errorf("bits_per_sample must be between 0 and 32, got %d", t.BitsPerSample)
	}

	if t.SampleRate < 0 || t.SampleRate > 655350 {
		return fmt.Errorf("sample_rate must be between 0 and 655350, got %d", t.SampleRate)
	}

	if t.Bitrate < 0 {
		return fmt.Errorf("bitrate cannot be negative, got %d", t.Bitrate)
	}

	if t.FLACBlockSize != 0 && (t.FLACBlockSize < 16 || t.FLACBlockSize > 65535) {
		return fmt.Errorf("flac_block_size must be between 16 and 65535, got %d", t.FLACBlockSize)
	}

	validFrames := []float64{0, 2.5, 5, 10, 20, 40, 60}
	if !slices.Contains(validFrames, t.OpusFrameMs) {
		return fmt.Errorf("opus_frame_ms must be one of 2.5, 5, 10, 20, 40, 60, got %v", t.OpusFrameMs)
	}

	return nil
}

// OpusFrameSize converts OpusFrameMs to samples at 48kHz. Zero means the
// encoder default.
func (t *TranscodeConfig) OpusFrameSize() int {
	return int(t.OpusFrameMs * 48)
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[l.Level] {
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	return nil
}
