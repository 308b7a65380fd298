package config

import "github.com/spf13/viper"

// Config holds runtime configuration for a sampling run.
// Values are populated from .lcsample.toml, LCSAMPLE_* env vars, and CLI flags.
type Config struct {
	Workers        int     `mapstructure:"workers"`
	BlockKM        float64 `mapstructure:"block_km"`
	MaxWindowCells int     `mapstructure:"max_window_cells"`
	PadCells       float64 `mapstructure:"pad_cells"`
	Format         string  `mapstructure:"format"`
	CRSUnits       string  `mapstructure:"crs_units"`
	Overwrite      bool    `mapstructure:"overwrite"`
	Quiet          bool    `mapstructure:"quiet"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("workers", 0)
	viper.SetDefault("block_km", 10.0)
	viper.SetDefault("max_window_cells", 0)
	viper.SetDefault("pad_cells", 1.0)
	viper.SetDefault("format", "csv")
	viper.SetDefault("crs_units", "Meters")
	viper.SetDefault("overwrite", false)
	viper.SetDefault("quiet", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}
