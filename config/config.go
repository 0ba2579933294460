// Package config loads flowsmith settings from defaults, an optional YAML
// file and FLOWSMITH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Tsinling0525/flowsmith/builder"
	"github.com/Tsinling0525/flowsmith/engine"
	"github.com/Tsinling0525/flowsmith/resolver"
	"github.com/Tsinling0525/flowsmith/validate"
)

const (
	AppName   = "flowsmith"
	EnvPrefix = "FLOWSMITH"
)

type Config struct {
	Log struct {
		Debug  bool   `mapstructure:"debug"`
		Format string `mapstructure:"format" validate:"oneof=json human"`
		File   string `mapstructure:"file"`
	} `mapstructure:"log"`

	Engine struct {
		MaxInputBytes int                 `mapstructure:"max_input_bytes" validate:"gt=0"`
		Threshold     float64             `mapstructure:"threshold" validate:"gt=0,lte=1"`
		RowTolerance  float64             `mapstructure:"row_tolerance" validate:"gt=0"`
		Layout        builder.Layout      `mapstructure:"layout"`
		Repair        engine.RepairPolicy `mapstructure:"repair"`
	} `mapstructure:"engine"`

	Server struct {
		Addr string `mapstructure:"addr" validate:"required"`
	} `mapstructure:"server"`

	Store struct {
		Driver  string `mapstructure:"driver" validate:"oneof=memory local"`
		DataDir string `mapstructure:"data_dir"`
	} `mapstructure:"store"`
}

// EngineOptions maps the engine section onto engine.Options.
func (c Config) EngineOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.MaxInputBytes = c.Engine.MaxInputBytes
	opts.Threshold = c.Engine.Threshold
	opts.RowTolerance = c.Engine.RowTolerance
	opts.Layout = c.Engine.Layout
	opts.Repair = c.Engine.Repair
	return opts
}

func setDefaults(v *viper.Viper) {
	layout := builder.DefaultLayout()
	repair := engine.DefaultRepairPolicy()

	v.SetDefault("log.debug", false)
	v.SetDefault("log.format", "human")
	v.SetDefault("log.file", "")

	v.SetDefault("engine.max_input_bytes", engine.MaxInputBytes)
	v.SetDefault("engine.threshold", resolver.DefaultThreshold)
	v.SetDefault("engine.row_tolerance", validate.DefaultRowTolerance)
	v.SetDefault("engine.layout.start_x", layout.StartX)
	v.SetDefault("engine.layout.start_y", layout.StartY)
	v.SetDefault("engine.layout.x_spacing", layout.XSpacing)
	v.SetDefault("engine.layout.y_spacing", layout.YSpacing)
	v.SetDefault("engine.repair.enabled", repair.Enabled)
	v.SetDefault("engine.repair.max_passes", repair.MaxPasses)

	v.SetDefault("server.addr", ":8080")

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.data_dir", "data")
}

var structValidator = validator.New()

// Load reads cfgFile when given, otherwise flowsmith.yaml from the working
// directory or $HOME/.flowsmith when present. A missing default file is not
// an error; a missing explicit one is.
func Load(cfgFile string) (Config, string, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/." + AppName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	used := ""
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, "", fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		used = v.ConfigFileUsed()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, used, fmt.Errorf("error parsing config: %w", err)
	}
	if err := structValidator.Struct(cfg); err != nil {
		return Config{}, used, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, used, nil
}

// Version is set at link time with -ldflags "-X".
var Version = "dev"
