package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultNormalizes(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Export.Workers < 1 {
		t.Fatalf("workers should be resolved, got %d", cfg.Export.Workers)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("output dir should be absolute, got %q", cfg.Paths.OutputDir)
	}
	if cfg.FFmpeg.FFprobeBinary != "ffprobe" {
		t.Fatalf("unexpected ffprobe binary: %q", cfg.FFmpeg.FFprobeBinary)
	}
}

func TestLoadReadsTOMLAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := strings.Join([]string{
		"[paths]",
		`output_dir = "` + filepath.Join(dir, "books") + `"`,
		`state_dir = "` + filepath.Join(dir, "state") + `"`,
		`log_dir = "` + filepath.Join(dir, "logs") + `"`,
		"[export]",
		"workers = 2",
		"generic_chapters = true",
		"[logging]",
		`level = "debug"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be found")
	}
	if resolved != path {
		t.Fatalf("resolved path mismatch: %q", resolved)
	}
	if cfg.Export.Workers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.Export.Workers)
	}
	if !cfg.Export.GenericChapters {
		t.Fatal("generic_chapters should be true")
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("level = %q", cfg.Logging.Level)
	}
	if cfg.HistoryDBPath() != filepath.Join(dir, "state", "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryDBPath())
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected missing config file")
	}
	if cfg.History.Keep != defaultHistoryKeep {
		t.Fatalf("history.keep = %d", cfg.History.Keep)
	}
}

func TestValidateRejectsBadLevel(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad log level")
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[ffmpeg]") {
		t.Fatal("sample config should document the ffmpeg section")
	}

	// The shipped sample must load and validate as-is.
	if _, _, _, err := Load(target); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
