// Package config holds the fixed training tunables and the run settings
// loaded from defaults, an optional config file, AEVA_* environment
// variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	Paths    PathsConfig   `mapstructure:"paths"`
	Run      RunConfig     `mapstructure:"run"`
	Trainer  TrainerConfig `mapstructure:"trainer"`
	LogLevel string        `mapstructure:"log_level"`
}

type PathsConfig struct {
	DataPath   string `mapstructure:"data_path"`
	OutputDir  string `mapstructure:"output_dir"`
	ScriptPath string `mapstructure:"script_path"`
}

type RunConfig struct {
	Seed    uint64 `mapstructure:"seed"`
	Workers int    `mapstructure:"workers"`
}

type TrainerConfig struct {
	// PythonBin is the interpreter used for training and export. Empty means
	// python3 from PATH.
	PythonBin string `mapstructure:"python_bin"`
	Enabled   bool   `mapstructure:"enabled"`
}

type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// keyFlags maps every setting key to its flag name.
var keyFlags = []struct{ key, flag string }{
	{"paths.data_path", "data"},
	{"paths.output_dir", "output-dir"},
	{"paths.script_path", "script"},
	{"run.seed", "seed"},
	{"run.workers", "workers"},
	{"trainer.python_bin", "python"},
	{"trainer.enabled", "train-model"},
	{"log_level", "log-level"},
}

func DefaultConfig() Config {
	return Config{
		Paths: PathsConfig{
			DataPath:   "ml/training_data.json",
			OutputDir:  "ml",
			ScriptPath: "scripts/intent_model.py",
		},
		Run: RunConfig{
			Seed:    42,
			Workers: 4,
		},
		Trainer: TrainerConfig{
			PythonBin: "",
			Enabled:   true,
		},
		LogLevel: "info",
	}
}

func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.String("data", defaults.Paths.DataPath, "Path to the intent catalog (json|yaml)")
	fs.String("output-dir", defaults.Paths.OutputDir, "Directory receiving vocab, label map, report and model")
	fs.String("script", defaults.Paths.ScriptPath, "Path to the TensorFlow training script")
	fs.Uint64("seed", defaults.Run.Seed, "Seed for augmentation and shuffling")
	fs.Int("workers", defaults.Run.Workers, "Goroutines used for normalization and encoding")
	fs.String("python", defaults.Trainer.PythonBin, "Python interpreter for training (default python3 from PATH)")
	fs.Bool("train-model", defaults.Trainer.Enabled, "Train and export the model after writing the encoding artifacts")
	fs.String("log-level", defaults.LogLevel, "Log level (debug|info|warn|error)")
}

func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		fs := opts.Cmd.Flags()
		for _, kf := range keyFlags {
			f := fs.Lookup(kf.flag)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(kf.key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", kf.flag, err)
			}
		}
	}

	v.SetEnvPrefix("AEVA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("aeva-intent")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("paths.data_path", c.Paths.DataPath)
	v.SetDefault("paths.output_dir", c.Paths.OutputDir)
	v.SetDefault("paths.script_path", c.Paths.ScriptPath)
	v.SetDefault("run.seed", c.Run.Seed)
	v.SetDefault("run.workers", c.Run.Workers)
	v.SetDefault("trainer.python_bin", c.Trainer.PythonBin)
	v.SetDefault("trainer.enabled", c.Trainer.Enabled)
	v.SetDefault("log_level", c.LogLevel)
}
