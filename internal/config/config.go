package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"rmlong/internal/walk"
)

type PrometheusCfg struct {
	Port int `yaml:"port" json:"port"` // 0 disables the metrics server
}

type LoggingCfg struct {
	Level        string `yaml:"level" json:"level"`                 // zerolog level name
	Dir          string `yaml:"dir" json:"dir"`                     // Optional directory for rmlong.log
	RotationDays int    `yaml:"rotation_days" json:"rotation_days"` // Days to keep logs before rotation
}

type ResourceLimits struct {
	MaxDeletesPerSecond float64 `yaml:"max_deletes_per_second" json:"max_deletes_per_second"` // 0 = unlimited
	Burst               int     `yaml:"burst" json:"burst"`
}

type Config struct {
	AllowedRoots   []string       `yaml:"allowed_roots" json:"allowed_roots"`
	ProtectedPaths []string       `yaml:"protected_paths" json:"protected_paths"`
	DryRun         bool           `yaml:"dry_run" json:"dry_run"`
	DirOrder       string         `yaml:"dir_order" json:"dir_order"` // length | topological
	Logging        LoggingCfg     `yaml:"logging" json:"logging"`
	Prometheus     PrometheusCfg  `yaml:"prometheus" json:"prometheus"`
	DatabasePath   string         `yaml:"database_path" json:"database_path"` // SQLite removal history, empty disables
	ResourceLimits ResourceLimits `yaml:"resource_limits" json:"resource_limits"`
}

var (
	errInvalidPath = errors.New("path must be absolute")
	errEmptyPath   = errors.New("path must not be empty")
)

// Default returns the configuration used when no file is given
func Default() *Config {
	cfg := &Config{}
	// defaults cannot fail validation
	_ = cfg.validateAndDefault()
	return cfg
}

// Load reads a YAML config file, expanding ${VAR} references first
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := decode(f)
	if err != nil {
		return nil, err
	}
	if err := cfg.validateAndDefault(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(r io.Reader) (*Config, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	expanded := os.ExpandEnv(string(raw))

	cfg := &Config{}
	decoder := yaml.NewDecoder(bytes.NewBufferString(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return cfg, nil
}

// Validate checks field ranges without applying defaults
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DirOrder, validation.In("", string(walk.OrderLength), string(walk.OrderTopological))),
		validation.Field(&c.Logging),
		validation.Field(&c.Prometheus),
		validation.Field(&c.ResourceLimits),
	)
}

func (c LoggingCfg) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("", "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled")),
		validation.Field(&c.RotationDays, validation.Min(0)),
	)
}

func (c PrometheusCfg) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

func (c ResourceLimits) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxDeletesPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

func (c *Config) validateAndDefault() error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.DirOrder == "" {
		c.DirOrder = string(walk.OrderLength)
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.RotationDays <= 0 {
		c.Logging.RotationDays = 30 // Default: keep logs for 30 days
	}

	if c.ResourceLimits.Burst <= 0 {
		c.ResourceLimits.Burst = 1
	}

	roots, err := cleanAll(c.AllowedRoots)
	if err != nil {
		return fmt.Errorf("allowed_roots: %w", err)
	}
	c.AllowedRoots = roots

	protected, err := cleanAll(c.ProtectedPaths)
	if err != nil {
		return fmt.Errorf("protected_paths: %w", err)
	}
	c.ProtectedPaths = protected

	if c.Logging.Dir != "" {
		dir, err := cleanAbsolute(c.Logging.Dir)
		if err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
		c.Logging.Dir = dir
	}

	return nil
}

func cleanAll(paths []string) ([]string, error) {
	cleaned := make([]string, 0, len(paths))
	for _, p := range paths {
		cp, err := cleanAbsolute(p)
		if err != nil {
			return nil, err
		}
		cleaned = append(cleaned, cp)
	}
	return cleaned, nil
}

func cleanAbsolute(p string) (string, error) {
	if p == "" {
		return "", errEmptyPath
	}
	cp := filepath.Clean(p)
	if !filepath.IsAbs(cp) {
		return "", fmt.Errorf("%w: %s", errInvalidPath, p)
	}
	return cp, nil
}

// Order returns the configured directory removal order
func (c *Config) Order() walk.Order {
	o, err := walk.ParseOrder(c.DirOrder)
	if err != nil {
		return walk.OrderLength
	}
	return o
}

// MetricsEnabled reports whether the Prometheus server should start
func (c *Config) MetricsEnabled() bool {
	return c.Prometheus.Port > 0
}

func (c *Config) PrometheusAddress() string {
	return fmt.Sprintf(":%d", c.Prometheus.Port)
}
