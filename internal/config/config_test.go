package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Valid(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
	if got := Default().Transcode.OpusFrameSize(); got != 960 {
		t.Errorf("OpusFrameSize() = %d, want 960", got)
	}
}

func TestConfigValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*Config)
		errorMsg string
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{name: "unknown target", mutate: func(c *Config) { c.Transcode.Target = "aac" }, errorMsg: "target must be one of"},
		{name: "negative rate", mutate: func(c *Config) { c.Transcode.SampleRate = -1 }, errorMsg: "sample_rate"},
		{name: "tiny block", mutate: func(c *Config) { c.Transcode.FLACBlockSize = 8 }, errorMsg: "flac_block_size"},
		{name: "odd opus frame", mutate: func(c *Config) { c.Transcode.OpusFrameMs = 15 }, errorMsg: "opus_frame_ms"},
		{name: "bad level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, errorMsg: "level must be one of"},
		{name: "bad format", mutate: func(c *Config) { c.Logging.Format = "xml" }, errorMsg: "format must be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorMsg == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.errorMsg)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
transcode:
  target: opus
  bitrate: 96000
  opus_frame_ms: 40
seektable:
  spec: "10x;X;"
logging:
  level: debug
  format: json
metrics:
  textfile: /tmp/audtranscode.prom
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Transcode.Target != "opus" || cfg.Transcode.Bitrate != 96000 || cfg.Transcode.OpusFrameSize() != 1920 {
		t.Errorf("Transcode = %+v", cfg.Transcode)
	}
	if cfg.Transcode.FLACBlockSize != 4096 {
		t.Errorf("FLACBlockSize = %d, want default 4096", cfg.Transcode.FLACBlockSize)
	}
	if cfg.SeekTable.Spec != "10x;X;" {
		t.Errorf("Spec = %q", cfg.SeekTable.Spec)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if cfg.Metrics.Textfile != "/tmp/audtranscode.prom" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Load() of missing file succeeded")
	}

	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("transcode: [1, 2"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("Load() of malformed YAML succeeded")
	}

	invalid := filepath.Join(dir, "invalid.yaml")
	_ = os.WriteFile(invalid, []byte("logging:\n  level: loud\n"), 0o644)
	if _, err := Load(invalid); err == nil || !strings.Contains(err.Error(), "validation") {
		t.Errorf("Load() of invalid config error = %v", err)
	}
}
