package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
	if cfg.Analysis.QuantizeMS != 250 {
		t.Fatalf("quantize default = %d", cfg.Analysis.QuantizeMS)
	}
	if !cfg.Cache.Enabled || !cfg.Analysis.IGScanEnabled {
		t.Fatal("cache and IG scanning default on")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("missing file reported as existing")
	}
	if resolved != path {
		t.Fatalf("resolved = %q, want %q", resolved, path)
	}
	if cfg.Analysis.BodyMinSeconds != 600 {
		t.Fatalf("defaults not applied: %+v", cfg.Analysis)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bdpl.toml")
	content := `
[analysis]
quantize_ms = 500
default_episode_minutes = 24.5

[logging]
level = "debug"

[cache]
enabled = false
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("existing file not detected")
	}
	if cfg.Analysis.QuantizeMS != 500 || cfg.Analysis.DefaultEpisodeMinutes != 24.5 {
		t.Fatalf("overrides not applied: %+v", cfg.Analysis)
	}
	// Values the file does not mention keep their defaults.
	if cfg.Analysis.BodyMinSeconds != 600 {
		t.Fatalf("unset value lost default: %v", cfg.Analysis.BodyMinSeconds)
	}
	if cfg.Logging.Level != "debug" || cfg.Cache.Enabled {
		t.Fatalf("logging/cache overrides not applied")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"bad quantize", "[analysis]\nquantize_ms = 0\n", "quantize_ms"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
		{"bad level", "[logging]\nlevel = \"loud\"\n", "logging.level"},
		{"bad range", "[analysis]\nop_min_seconds = 100.0\nop_max_seconds = 50.0\n", "op_min_seconds"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "bdpl.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, _, _, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tc.wantErr)
			}
		})
	}
}

func TestSampleConfigPresent(t *testing.T) {
	sample := SampleConfig()
	for _, want := range []string{"[analysis]", "[paths]", "[logging]", "[cache]", "quantize_ms"} {
		if !strings.Contains(sample, want) {
			t.Errorf("sample config missing %q", want)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	got, err := expandPath("~/x/y")
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if got != filepath.Join(home, "x/y") {
		t.Fatalf("expandPath = %q", got)
	}
}
