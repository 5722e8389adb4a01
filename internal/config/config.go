// Package config loads specgest settings from defaults, an optional YAML
// file, SPECGEST_* environment variables and command-line flags.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	EnvPrefix = "SPECGEST_"

	DefaultPort           = "8090"
	DefaultWorkerCount    = 4
	DefaultMaxQueueSize   = 100
	DefaultMaxUploadBytes = 52428800 // 50MB
	DefaultJobTTL         = time.Hour
	DefaultOutput         = "json"
	DefaultConcurrency    = 4
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "" // json for serve, text otherwise
)

// configFiles are looked up in the working directory when no file is given.
var configFiles = []string{"specgest.yaml", "specgest.yml"}

type Config struct {
	Port string `koanf:"port"`

	// Auth; empty disables bearer checks on /api.
	APIKey string `koanf:"api_key"`

	// Worker pool
	WorkerCount  int `koanf:"worker_count"`
	MaxQueueSize int `koanf:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `koanf:"job_ttl"`

	// CLI
	Output      string `koanf:"output"`
	Strict      bool   `koanf:"strict"`
	Concurrency int    `koanf:"concurrency"`

	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	// File is the config file that was read, if any.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"port":             DefaultPort,
		"api_key":          "",
		"worker_count":     DefaultWorkerCount,
		"max_queue_size":   DefaultMaxQueueSize,
		"max_upload_bytes": DefaultMaxUploadBytes,
		"job_ttl":          DefaultJobTTL.String(),
		"output":           DefaultOutput,
		"strict":           false,
		"concurrency":      DefaultConcurrency,
		"log_level":        DefaultLogLevel,
		"log_format":       DefaultLogFormat,
	}
}

// Load builds a Config. Precedence, highest first: explicitly set flags,
// environment, config file, defaults. flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := findConfigFile(cfgFile)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// SPECGEST_WORKER_COUNT -> worker_count
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = path
	cfg.applyFallbacks()
	return &cfg, nil
}

// findConfigFile returns the explicit path or the first default file that
// exists in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// applyFallbacks replaces non-positive limits with their defaults.
func (c *Config) applyFallbacks() {
	if c.Port == "" {
		c.Port = DefaultPort
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = DefaultWorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = DefaultMaxQueueSize
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = DefaultJobTTL
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	c.Output = strings.ToLower(c.Output)
	c.LogLevel = strings.ToLower(c.LogLevel)
	c.LogFormat = strings.ToLower(c.LogFormat)
}

func (c Config) Validate() error {
	switch c.Output {
	case "json", "yaml", "table":
	default:
		return fmt.Errorf("output must be one of json, yaml, table; got %q", c.Output)
	}
	switch c.LogFormat {
	case "", "json", "text":
	default:
		return fmt.Errorf("log_format must be json or text; got %q", c.LogFormat)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
