// Package config loads the hub configuration from
// ~/.config/pihub/config.yaml, with environment overrides for the
// paths and the API key.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the hub.
type Config struct {
	// DataDir holds the task database and event logs.
	DataDir string `yaml:"data_dir"`
	// NotesDir receives captured note images and recognized text.
	NotesDir string `yaml:"notes_dir"`

	Motion  MotionConfig  `yaml:"motion"`
	Tasks   TasksConfig   `yaml:"tasks"`
	Posture PostureConfig `yaml:"posture"`
	OCR     OCRConfig     `yaml:"ocr"`

	// HTTPAddr is the dashboard listen address.
	HTTPAddr string `yaml:"http_addr"`
	// TickIntervalSeconds drives the scheduler loop.
	TickIntervalSeconds int `yaml:"tick_interval_seconds"`
}

// MotionConfig configures the remote task API client.
type MotionConfig struct {
	APIKey              string `yaml:"api_key"`
	SyncIntervalSeconds int    `yaml:"sync_interval_seconds"`
}

// TasksConfig configures note-to-task parsing.
type TasksConfig struct {
	// DefaultDueDays is added to the capture date when a section
	// carries no DUE line.
	DefaultDueDays int `yaml:"default_due_days"`
}

// PostureConfig configures the periodic posture check.
type PostureConfig struct {
	CheckIntervalSeconds int     `yaml:"check_interval_seconds"`
	MaxTiltDeg           float64 `yaml:"max_tilt_deg"`
	MaxNodDeg            float64 `yaml:"max_nod_deg"`
}

// OCRConfig configures the capture pipeline.
type OCRConfig struct {
	// Languages is the tesseract language pack list, e.g. "eng+por".
	Languages string `yaml:"languages"`
}

// Default returns the built-in configuration.
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		DataDir:  filepath.Join(home, ".local", "share", "pihub"),
		NotesDir: filepath.Join(home, ".local", "share", "pihub", "notes"),
		Motion: MotionConfig{
			SyncIntervalSeconds: 900,
		},
		Tasks: TasksConfig{
			DefaultDueDays: 2,
		},
		Posture: PostureConfig{
			CheckIntervalSeconds: 300,
			MaxTiltDeg:           12,
			MaxNodDeg:            15,
		},
		OCR: OCRConfig{
			Languages: "eng",
		},
		HTTPAddr:            "127.0.0.1:8787",
		TickIntervalSeconds: 15,
	}
}

// Path returns the config file location, honoring PIHUB_CONFIG.
func Path() string {
	if p := os.Getenv("PIHUB_CONFIG"); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "pihub", "config.yaml")
}

// Load reads the config file at Path, applies environment overrides
// and validates the result. A missing file yields the defaults.
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a specific config file on top of the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("PIHUB_DATA_DIR"); v != "" {
		c.DataDir = v
		c.NotesDir = filepath.Join(v, "notes")
	}
	if v := os.Getenv("MOTION_API_KEY"); v != "" {
		c.Motion.APIKey = v
	}
}

func (c *Config) normalize() {
	d := Default()
	if c.NotesDir == "" {
		c.NotesDir = filepath.Join(c.DataDir, "notes")
	}
	if c.Motion.SyncIntervalSeconds <= 0 {
		c.Motion.SyncIntervalSeconds = d.Motion.SyncIntervalSeconds
	}
	if c.Tasks.DefaultDueDays <= 0 {
		c.Tasks.DefaultDueDays = d.Tasks.DefaultDueDays
	}
	if c.Posture.CheckIntervalSeconds <= 0 {
		c.Posture.CheckIntervalSeconds = d.Posture.CheckIntervalSeconds
	}
	if c.Posture.MaxTiltDeg <= 0 {
		c.Posture.MaxTiltDeg = d.Posture.MaxTiltDeg
	}
	if c.Posture.MaxNodDeg <= 0 {
		c.Posture.MaxNodDeg = d.Posture.MaxNodDeg
	}
	if c.OCR.Languages == "" {
		c.OCR.Languages = d.OCR.Languages
	}
	if c.HTTPAddr == "" {
		c.HTTPAddr = d.HTTPAddr
	}
	if c.TickIntervalSeconds <= 0 {
		c.TickIntervalSeconds = d.TickIntervalSeconds
	}
}

func (c *Config) validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("config: data_dir must not be empty")
	}
	if c.TickIntervalSeconds > c.Motion.SyncIntervalSeconds {
		return fmt.Errorf("config: tick interval (%ds) exceeds sync interval (%ds)",
			c.TickIntervalSeconds, c.Motion.SyncIntervalSeconds)
	}
	return nil
}

// DBPath returns the task database location.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "tasks.db")
}

// LogsDir returns the event log directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// EnsureDefault writes a commented default config file at Path when
// none exists yet.
func EnsureDefault() (string, error) {
	path := Path()
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	content := `# pihub configuration

# data_dir: ~/.local/share/pihub
# notes_dir: ~/.local/share/pihub/notes

motion:
  # api_key: set here or via MOTION_API_KEY
  sync_interval_seconds: 900

tasks:
  default_due_days: 2

posture:
  check_interval_seconds: 300
  max_tilt_deg: 12
  max_nod_deg: 15

ocr:
  languages: eng

http_addr: 127.0.0.1:8787
tick_interval_seconds: 15
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write default config: %w", err)
	}
	return path, nil
}
