package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the working
// directory when no path is given.
const DefaultConfigFile = "dermascan.yaml"

// Environment variables that override the file.
const (
	EnvConfig       = "DERMASCAN_CONFIG"
	EnvPort         = "PORT"
	EnvModelPath    = "DERMASCAN_MODEL_PATH"
	EnvMetadataPath = "DERMASCAN_METADATA_PATH"
	EnvORTLibrary   = "DERMASCAN_ORT_LIBRARY"
	EnvDBPath       = "DERMASCAN_DB_PATH"
	EnvLogLevel     = "DERMASCAN_LOG_LEVEL"
)

// ErrConfigNotFound is returned when an explicitly named configuration file
// does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// LoadEnvFile loads variables from a .env file into the process
// environment. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load builds the configuration from defaults, the YAML file at path and
// the process environment. An empty path falls back to DERMASCAN_CONFIG and
// then to dermascan.yaml in the working directory, if present.
func Load(path string) (*Config, error) {
	return load(path, os.LookupEnv)
}

func load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := NewConfig()

	explicit := path != ""
	if !explicit {
		if p, ok := lookup(EnvConfig); ok && p != "" {
			path, explicit = p, true
		} else {
			path = DefaultConfigFile
		}
	}

	if err := cfg.readFile(path); err != nil {
		if !errors.Is(err, ErrConfigNotFound) || explicit {
			return nil, err
		}
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, v)
		}
		c.Server.Port = port
	}

	strs := []struct {
		key string
		dst *string
	}{
		{EnvModelPath, &c.Model.Path},
		{EnvMetadataPath, &c.Model.MetadataPath},
		{EnvORTLibrary, &c.Model.LibraryPath},
		{EnvDBPath, &c.Store.Path},
		{EnvLogLevel, &c.Log.Level},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}
	return nil
}
