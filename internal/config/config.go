// Package config provides configuration management for the portfolio tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	apperrors "eportfolio/internal/errors"
	"eportfolio/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Portfolio PortfolioConfig `mapstructure:"portfolio"`
	Journal   JournalConfig   `mapstructure:"journal"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	UI        UIConfig        `mapstructure:"ui"`

	// Dir is the directory the configuration was loaded from.
	Dir string `mapstructure:"-"`
}

// PortfolioConfig locates the holdings file.
type PortfolioConfig struct {
	File string `mapstructure:"file"`
}

// JournalConfig controls the SQLite transaction journal.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled   bool   `mapstructure:"color_enabled"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/eportfolio"
	}
	return filepath.Join(home, ".config", "eportfolio")
}

// Default returns the configuration used when no file overrides it.
func Default(configDir string) *Config {
	logCfg := logging.DefaultLogConfig(configDir)
	return &Config{
		Portfolio: PortfolioConfig{File: filepath.Join(configDir, "portfolio.txt")},
		Journal: JournalConfig{
			Enabled: true,
			Path:    filepath.Join(configDir, "journal.db"),
		},
		Logging: LoggingConfig{
			Level:      logCfg.Level,
			Console:    logCfg.Console,
			File:       logCfg.File,
			FilePath:   logCfg.FilePath,
			MaxSize:    logCfg.MaxSize,
			MaxBackups: logCfg.MaxBackups,
			MaxAge:     logCfg.MaxAge,
		},
		UI: UIConfig{
			ColorEnabled:   true,
			CurrencySymbol: "$",
		},
		Dir: configDir,
	}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is replaced by a template and defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := Default(configDir)

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("loading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}
	cfg.Dir = configDir

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("portfolio.file", cfg.Portfolio.File)
	v.SetDefault("journal.enabled", cfg.Journal.Enabled)
	v.SetDefault("journal.path", cfg.Journal.Path)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.console", cfg.Logging.Console)
	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.file_path", cfg.Logging.FilePath)
	v.SetDefault("logging.max_size", cfg.Logging.MaxSize)
	v.SetDefault("logging.max_backups", cfg.Logging.MaxBackups)
	v.SetDefault("logging.max_age", cfg.Logging.MaxAge)
	v.SetDefault("ui.color_enabled", cfg.UI.ColorEnabled)
	v.SetDefault("ui.currency_symbol", cfg.UI.CurrencySymbol)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EPORTFOLIO_FILE"); v != "" {
		cfg.Portfolio.File = v
	}
	if v := os.Getenv("EPORTFOLIO_JOURNAL"); v != "" {
		cfg.Journal.Path = v
	}
	if v := os.Getenv("EPORTFOLIO_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Portfolio.File == "" {
		return fmt.Errorf("%w: portfolio.file must be set", apperrors.ErrConfigInvalid)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("%w: journal.path must be set when the journal is enabled", apperrors.ErrConfigInvalid)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("%w: invalid logging.level %q (debug, info, warn, error)", apperrors.ErrConfigInvalid, c.Logging.Level)
	}
	if c.Logging.MaxSize < 0 || c.Logging.MaxBackups < 0 || c.Logging.MaxAge < 0 {
		return fmt.Errorf("%w: logging rotation limits must be non-negative", apperrors.ErrConfigInvalid)
	}
	return nil
}

// LogConfig converts the logging section for the logging package.
func (c *Config) LogConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Logging.Level,
		Console:    c.Logging.Console,
		File:       c.Logging.File,
		FilePath:   c.Logging.FilePath,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	}
}
