// Package config loads the atradx configuration with Viper.
//
// Values come from, in increasing priority: the defaults, the YAML file,
// a .env file and environment variables prefixed with ATRADX_ (for example
// ATRADX_STRATEGY_ATR_PERIOD).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/raykavin/atradx/pkg/core"
	"github.com/raykavin/atradx/pkg/trend"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "./atradx.yaml"
	EnvPrefix         = "ATRADX"
)

// Storage drivers
const (
	StorageMemory   = "memory"
	StorageBuntDB   = "buntdb"
	StoragePostgres = "postgres"
)

// Config is the complete application configuration
type Config struct {
	Strategy trend.Config          `mapstructure:"strategy"`
	Feed     FeedConfig            `mapstructure:"feed"`
	Storage  StorageConfig         `mapstructure:"storage"`
	Telegram core.TelegramSettings `mapstructure:"telegram"`
	Metrics  MetricsConfig         `mapstructure:"metrics"`
	Report   ReportConfig          `mapstructure:"report"`
	Log      LogConfig             `mapstructure:"log"`
}

// FeedConfig describes the candles replayed by the backtest
type FeedConfig struct {
	Timeframe   string       `mapstructure:"timeframe"`
	HistorySize int          `mapstructure:"history_size"`
	Pairs       []PairConfig `mapstructure:"pairs"`
}

// PairConfig points to the CSV file of one pair
type PairConfig struct {
	Pair      string `mapstructure:"pair"`
	File      string `mapstructure:"file"`
	Timeframe string `mapstructure:"timeframe"`
}

// StorageConfig selects the signal journal
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// MetricsConfig controls the Prometheus output
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// ReportConfig controls the backtest report
type ReportConfig struct {
	BootstrapSamples int     `mapstructure:"bootstrap_samples"`
	Confidence       float64 `mapstructure:"confidence"`
	ReturnsDir       string  `mapstructure:"returns_dir"`
}

// LogConfig configures the zerolog logger
type LogConfig struct {
	Level      string `mapstructure:"level"`
	TimeFormat string `mapstructure:"time_format"`
	Colored    bool   `mapstructure:"colored"`
	JSON       bool   `mapstructure:"json"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Strategy: trend.DefaultConfig(),
		Feed: FeedConfig{
			Timeframe:   "1h",
			HistorySize: 500,
			Pairs: []PairConfig{
				{Pair: "BTCUSDT", File: "testdata/btc-1h.csv", Timeframe: "1h"},
			},
		},
		Storage: StorageConfig{
			Driver: StorageMemory,
			Path:   "atradx.db",
		},
		Report: ReportConfig{
			BootstrapSamples: 1000,
			Confidence:       0.95,
		},
		Log: LogConfig{
			Level:      "info",
			TimeFormat: "2006-01-02 15:04:05",
			Colored:    true,
		},
	}
}

// Load reads the configuration file at path. An empty path uses only the
// defaults and the environment. A .env file in the working directory is
// loaded when present.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	v := newViper(Default())
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WriteDefault writes the default configuration as YAML, creating the
// directory when needed. Existing files are not overwritten.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating configuration directory: %w", err)
	}

	v := newViper(Default())
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not save default configuration: %w", err)
	}
	return nil
}

// Validate checks the strategy parameters and the host settings
func (c Config) Validate() error {
	if err := c.Strategy.Validate(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageBuntDB:
		if c.Storage.Path == "" {
			return &core.ConfigurationError{Field: "storage.path", Reason: "is required by the buntdb driver"}
		}
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return &core.ConfigurationError{Field: "storage.dsn", Reason: "is required by the postgres driver"}
		}
	default:
		return &core.ConfigurationError{Field: "storage.driver", Reason: fmt.Sprintf("unknown driver %q", c.Storage.Driver)}
	}

	if c.Telegram.Enabled && c.Telegram.Token == "" {
		return &core.ConfigurationError{Field: "telegram.token", Reason: "is required when telegram is enabled"}
	}

	if c.Report.Confidence <= 0 || c.Report.Confidence >= 1 {
		return &core.ConfigurationError{Field: "report.confidence", Reason: "must be between 0 and 1"}
	}

	for i, pair := range c.Feed.Pairs {
		if pair.Pair == "" || pair.File == "" {
			return &core.ConfigurationError{
				Field:  fmt.Sprintf("feed.pairs[%d]", i),
				Reason: "requires pair and file",
			}
		}
	}

	return nil
}

func newViper(defaults Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	s := defaults.Strategy
	v.SetDefault("strategy.atr_period", s.ATRPeriod)
	v.SetDefault("strategy.adx_period", s.ADXPeriod)
	v.SetDefault("strategy.atr_threshold", s.ATRThreshold)
	v.SetDefault("strategy.bull_high_multiplier", s.BullHighMultiplier)
	v.SetDefault("strategy.bull_low_multiplier", s.BullLowMultiplier)
	v.SetDefault("strategy.bear_high_multiplier", s.BearHighMultiplier)
	v.SetDefault("strategy.bear_low_multiplier", s.BearLowMultiplier)

	pairs := make([]map[string]any, 0, len(defaults.Feed.Pairs))
	for _, p := range defaults.Feed.Pairs {
		pairs = append(pairs, map[string]any{"pair": p.Pair, "file": p.File, "timeframe": p.Timeframe})
	}
	v.SetDefault("feed.timeframe", defaults.Feed.Timeframe)
	v.SetDefault("feed.history_size", defaults.Feed.HistorySize)
	v.SetDefault("feed.pairs", pairs)

	v.SetDefault("storage.driver", defaults.Storage.Driver)
	v.SetDefault("storage.path", defaults.Storage.Path)
	v.SetDefault("storage.dsn", defaults.Storage.DSN)

	v.SetDefault("telegram.enabled", defaults.Telegram.Enabled)
	v.SetDefault("telegram.token", defaults.Telegram.Token)
	v.SetDefault("telegram.users", defaults.Telegram.Users)

	v.SetDefault("metrics.enabled", defaults.Metrics.Enabled)
	v.SetDefault("metrics.file", defaults.Metrics.File)

	v.SetDefault("report.bootstrap_samples", defaults.Report.BootstrapSamples)
	v.SetDefault("report.confidence", defaults.Report.Confidence)
	v.SetDefault("report.returns_dir", defaults.Report.ReturnsDir)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.time_format", defaults.Log.TimeFormat)
	v.SetDefault("log.colored", defaults.Log.Colored)
	v.SetDefault("log.json", defaults.Log.JSON)

	return v
}
