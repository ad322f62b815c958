package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/everstacklabs/modelprices/internal/source"
)

// Config holds all configuration for a run.
type Config struct {
	SourceURL    string        `mapstructure:"source_url"`
	OutputPath   string        `mapstructure:"output_path"`
	Timeout      time.Duration `mapstructure:"timeout"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	CacheDir     string        `mapstructure:"cache_dir"`
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`
	ManifestPath string        `mapstructure:"manifest_path"`
	LogLevel     string        `mapstructure:"log_level"`
}

// Defaults.
const (
	DefaultSourceURL  = source.DefaultURL
	DefaultOutputPath = "model_prices.json"
	DefaultTimeout    = 30 * time.Second
)

// Load reads configuration from defaults, an optional config file, and the
// environment, in increasing order of precedence.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("source_url", DefaultSourceURL)
	v.SetDefault("output_path", DefaultOutputPath)
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("rate_limit", 1.0)
	v.SetDefault("cache_dir", "")
	v.SetDefault("cache_ttl", "1h")
	v.SetDefault("manifest_path", "")
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("modelprices")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelprices")
	}

	v.SetEnvPrefix("MODELPRICES")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.OutputPath == "" {
		cfg.OutputPath = DefaultOutputPath
	}
	if cfg.Timeout <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.CacheDir != "" {
		cfg.CacheDir = expandHome(cfg.CacheDir)
	}

	return &cfg, nil
}

// SlogLevel maps log_level to a slog level. Unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
