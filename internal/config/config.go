package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level mlanalytics configuration.
type Config struct {
	BenchmarkDir string `mapstructure:"benchmark_dir"`
	PairwiseDir  string `mapstructure:"pairwise_dir"`
	Output       Output `mapstructure:"output"`
	Chart        Chart  `mapstructure:"chart"`
}

// Output defines output preferences.
type Output struct {
	Color      bool   `mapstructure:"color"`
	Width      int    `mapstructure:"width"`
	Charts     bool   `mapstructure:"charts"`
	SQLite     bool   `mapstructure:"sqlite"`
	SQLiteName string `mapstructure:"sqlite_name"`
	// MaxRows caps the rows shown in console summaries; 0 shows all.
	MaxRows int `mapstructure:"max_rows"`
}

// Chart defines the size of rendered charts.
type Chart struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	DPI    float64 `mapstructure:"dpi"`
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("benchmark_dir", DefaultBenchmarkDir)
	v.SetDefault("pairwise_dir", DefaultPairwiseDir)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("output.charts", DefaultOutput.Charts)
	v.SetDefault("output.sqlite", DefaultOutput.SQLite)
	v.SetDefault("output.sqlite_name", DefaultOutput.SQLiteName)
	v.SetDefault("output.max_rows", DefaultOutput.MaxRows)
	v.SetDefault("chart.width", DefaultChart.Width)
	v.SetDefault("chart.height", DefaultChart.Height)
	v.SetDefault("chart.dpi", DefaultChart.DPI)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("invalid chart size %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if c.Chart.DPI <= 0 {
		return fmt.Errorf("invalid chart dpi %v", c.Chart.DPI)
	}
	for key, dir := range map[string]string{"benchmark_dir": c.BenchmarkDir, "pairwise_dir": c.PairwiseDir} {
		if strings.TrimSpace(dir) == "" {
			return fmt.Errorf("%s must not be empty", key)
		}
	}
	if strings.TrimSpace(c.Output.SQLiteName) == "" {
		return errors.New("output.sqlite_name must not be empty")
	}
	return nil
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
