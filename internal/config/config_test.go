package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Tasks.DefaultDueDays != 2 || cfg.Motion.SyncIntervalSeconds != 900 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Posture.MaxTiltDeg != 12 || cfg.Posture.MaxNodDeg != 15 {
		t.Errorf("posture defaults = %+v", cfg.Posture)
	}
}

func TestLoadOverridesAndNormalizes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /var/lib/pihub
motion:
  api_key: abc123
tasks:
  default_due_days: 5
tick_interval_seconds: 30
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/var/lib/pihub" || cfg.Motion.APIKey != "abc123" {
		t.Errorf("explicit values lost: %+v", cfg)
	}
	if cfg.Tasks.DefaultDueDays != 5 || cfg.TickIntervalSeconds != 30 {
		t.Errorf("overrides lost: %+v", cfg)
	}
	// Unset fields fall back to defaults.
	if cfg.Motion.SyncIntervalSeconds != 900 || cfg.OCR.Languages != "eng" {
		t.Errorf("normalization missed: %+v", cfg)
	}
	if cfg.NotesDir != filepath.Join("/var/lib/pihub", "notes") {
		t.Errorf("notes dir = %q", cfg.NotesDir)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PIHUB_DATA_DIR", "/tmp/hubdata")
	t.Setenv("MOTION_API_KEY", "env-key")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DataDir != "/tmp/hubdata" || cfg.NotesDir != "/tmp/hubdata/notes" {
		t.Errorf("data dir override lost: %+v", cfg)
	}
	if cfg.Motion.APIKey != "env-key" {
		t.Errorf("api key override lost: %q", cfg.Motion.APIKey)
	}
}

func TestValidateRejectsTickSlowerThanSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
motion:
  sync_interval_seconds: 10
tick_interval_seconds: 60
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatal("invalid intervals accepted")
	}
}

func TestPathHelpers(t *testing.T) {
	cfg := &Config{DataDir: "/data"}
	if cfg.DBPath() != filepath.Join("/data", "tasks.db") {
		t.Errorf("db path = %q", cfg.DBPath())
	}
	if cfg.LogsDir() != filepath.Join("/data", "logs") {
		t.Errorf("logs dir = %q", cfg.LogsDir())
	}
}

func TestPathHonorsEnv(t *testing.T) {
	t.Setenv("PIHUB_CONFIG", "/etc/pihub/custom.yaml")
	if Path() != "/etc/pihub/custom.yaml" {
		t.Errorf("path = %q", Path())
	}
}

func TestEnsureDefaultWritesOnce(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "config.yaml")
	t.Setenv("PIHUB_CONFIG", target)

	path, err := EnsureDefault()
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if path != target {
		t.Errorf("path = %q", path)
	}
	first, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}

	// A second call must not rewrite user edits.
	if err := os.WriteFile(target, append(first, []byte("# edited\n")...), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDefault(); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if len(second) == len(first) {
		t.Error("existing config overwritten")
	}

	// The written defaults must load cleanly.
	cfg, err := LoadFile(target)
	if err != nil {
		t.Fatalf("load written defaults: %v", err)
	}
	if cfg.Tasks.DefaultDueDays != 2 {
		t.Errorf("written defaults wrong: %+v", cfg)
	}
}
