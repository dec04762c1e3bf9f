package config

import (
	"errors"
	"fmt"
	"strings"

	"timeit/internal/benchmark"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the resolved configuration of a timeit invocation.
type Config struct {
	Repeat      int     `mapstructure:"repeat"`
	Number      int     `mapstructure:"number"`
	DisableGC   bool    `mapstructure:"disable_gc"`
	Disabled    bool    `mapstructure:"disabled"`
	Verbose     bool    `mapstructure:"verbose"`
	LogFile     string  `mapstructure:"log_file"`
	Threshold   float64 `mapstructure:"threshold"`
	MetricsFile string  `mapstructure:"metrics_file"`
	Store       Store   `mapstructure:"store"`
}

// Store selects where benchmark history is kept.
type Store struct {
	Type string `mapstructure:"type"`
	Path string `mapstructure:"path"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("repeat", 1)
	v.SetDefault("number", 1)
	v.SetDefault("disable_gc", false)
	v.SetDefault("disabled", false)
	v.SetDefault("verbose", false)
	v.SetDefault("log_file", "")
	v.SetDefault("threshold", 10.0)
	v.SetDefault("metrics_file", "")
	v.SetDefault("store.type", "json")
	v.SetDefault("store.path", "")
}

// Load initializes v from .env, the config file and TIMEIT_* environment
// variables. A missing default config file is not an error.
func Load(v *viper.Viper, cfgFile string) error {
	// .env is optional
	_ = godotenv.Load()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".timeit")
	}

	v.SetEnvPrefix("TIMEIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// flagKeys maps flag names that do not follow the dash-to-underscore rule.
var flagKeys = map[string]string{
	"store-type": "store.type",
	"store-path": "store.path",
}

// BindFlags binds every flag in fs to its config key. Dashes in flag names
// become underscores.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key, ok := flagKeys[f.Name]
		if !ok {
			key = strings.ReplaceAll(f.Name, "-", "_")
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// Resolve decodes v into a Config and validates it.
func Resolve(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Options converts the measurement settings to benchmarker options.
func (c *Config) Options() []benchmark.Option {
	return []benchmark.Option{
		benchmark.WithRepeat(c.Repeat),
		benchmark.WithNumber(c.Number),
		benchmark.WithGCDisabled(c.DisableGC),
	}
}

// Apply pushes the measurement settings to the root benchmarker.
func (c *Config) Apply() {
	benchmark.BasicConfig(c.Options()...)
	if c.Disabled {
		benchmark.Disable()
	}
}
