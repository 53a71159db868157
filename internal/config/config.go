package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/Brownie44l1/dermascan-api/internal/analysis"
	"github.com/Brownie44l1/dermascan-api/internal/session"
)

// AppName is used for data directories.
const AppName = "dermascan"

// Default values.
const (
	DefaultPort      = 8080
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Model    ModelConfig    `yaml:"model"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Store    StoreConfig    `yaml:"store"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ModelConfig locates the classifier artifact.
type ModelConfig struct {
	Path         string `yaml:"path"`
	MetadataPath string `yaml:"metadata_path"`
	// LibraryPath is the onnxruntime shared library. Empty uses the
	// platform default.
	LibraryPath string `yaml:"library_path"`
}

// AnalysisConfig tunes the pipeline.
type AnalysisConfig struct {
	Workers   int `yaml:"workers"`
	MaxImages int `yaml:"max_images"`
}

// StoreConfig configures the SQLite archive.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// SessionConfig configures the two-step questionnaire flow.
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NewConfig returns a Config populated with defaults.
func NewConfig() *Config {
	modelDir := filepath.Join(DataDir(), "models")
	return &Config{
		Server: ServerConfig{Port: DefaultPort},
		Model: ModelConfig{
			Path:         filepath.Join(modelDir, "model.onnx"),
			MetadataPath: filepath.Join(modelDir, "model_metadata.json"),
		},
		Analysis: AnalysisConfig{
			Workers:   analysis.DefaultWorkers,
			MaxImages: analysis.DefaultMaxImages,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    filepath.Join(DataDir(), AppName+".db"),
		},
		Session: SessionConfig{TTL: session.DefaultTTL},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DataDir returns the XDG data directory for the application.
// On Linux: ~/.local/share/dermascan
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return ErrInvalidPort
	}
	if c.Model.Path == "" {
		return ErrNoModelPath
	}
	if c.Analysis.Workers <= 0 {
		return ErrInvalidWorkers
	}
	if c.Analysis.MaxImages < 1 || c.Analysis.MaxImages > analysis.DefaultMaxImages {
		return ErrInvalidMaxImages
	}
	if c.Session.TTL <= 0 {
		return ErrInvalidTTL
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, c.Log.Format)
	}
	return nil
}
