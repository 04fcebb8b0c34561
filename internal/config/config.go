// Package config handles lloyd configuration loading.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/lloyd/export"
	"github.com/hupe1980/lloyd/internal/kmeans"
)

// Config is the root configuration structure.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Cluster ClusterConfig `yaml:"cluster"`
	Player  PlayerConfig  `yaml:"player"`
	Log     LogConfig     `yaml:"log"`
	Export  ExportConfig  `yaml:"export"`
}

// DataConfig holds dataset settings.
type DataConfig struct {
	Points int   `yaml:"points"`
	Seed   int64 `yaml:"seed"`
	// File, when set, is loaded instead of generating points.
	File string `yaml:"file"`
}

// ClusterConfig holds algorithm settings.
type ClusterConfig struct {
	K             int    `yaml:"k"`
	Init          string `yaml:"init"`
	MaxIterations int    `yaml:"max_iterations"`
}

// PlayerConfig holds playback settings.
type PlayerConfig struct {
	Delay time.Duration `yaml:"delay"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// ExportConfig holds report export settings.
type ExportConfig struct {
	Sink        string `yaml:"sink"` // local, s3 or minio
	Dir         string `yaml:"dir"`
	Prefix      string `yaml:"prefix"`
	Compression string `yaml:"compression"`
	Concurrency int    `yaml:"concurrency"`

	// Object storage (s3, minio)
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Points: 100,
			Seed:   42,
		},
		Cluster: ClusterConfig{
			K:             3,
			Init:          "kmeans++",
			MaxIterations: kmeans.MaxIterations,
		},
		Player: PlayerConfig{
			Delay: 500 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Export: ExportConfig{
			Sink:        "local",
			Dir:         "./reports",
			Compression: "none",
			Concurrency: 4,
			UseSSL:      true,
		},
	}
}

// Load loads configuration from a file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Data.Points < 0 {
		return fmt.Errorf("data.points must not be negative, got %d", c.Data.Points)
	}
	if c.Cluster.K < 1 {
		return fmt.Errorf("cluster.k must be positive, got %d", c.Cluster.K)
	}
	if c.Cluster.MaxIterations < 1 {
		return fmt.Errorf("cluster.max_iterations must be positive, got %d", c.Cluster.MaxIterations)
	}
	if _, err := c.InitMethod(); err != nil {
		return err
	}
	if c.Player.Delay < 0 {
		return fmt.Errorf("player.delay must not be negative, got %s", c.Player.Delay)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	if _, err := c.Compression(); err != nil {
		return err
	}

	switch c.Export.Sink {
	case "local":
		if c.Export.Dir == "" {
			return errors.New("export.dir is required for the local sink")
		}
	case "s3", "minio":
		if c.Export.Bucket == "" {
			return fmt.Errorf("export.bucket is required for the %s sink", c.Export.Sink)
		}
		if c.Export.Sink == "minio" && c.Export.Endpoint == "" {
			return errors.New("export.endpoint is required for the minio sink")
		}
	default:
		return fmt.Errorf("unknown export.sink %q", c.Export.Sink)
	}
	return nil
}

// InitMethod parses Cluster.Init.
func (c *Config) InitMethod() (kmeans.InitMethod, error) {
	return kmeans.ParseInitMethod(c.Cluster.Init)
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log.level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

// Compression parses Export.Compression.
func (c *Config) Compression() (export.Compression, error) {
	return export.ParseCompression(c.Export.Compression)
}
