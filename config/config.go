// Package config holds the tunables of curve construction and Monte Carlo
// pricing. Values are passed explicitly to the components that use them;
// nothing in this module reads configuration from package state.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. RATECORE_BOOTSTRAP_TOLERANCE.
const EnvPrefix = "RATECORE"

// Config is the complete configuration.
type Config struct {
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
	MonteCarlo MonteCarloConfig `mapstructure:"montecarlo"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// BootstrapConfig holds solver and curve construction parameters.
type BootstrapConfig struct {
	// Interpolation is the method of the published curve.
	Interpolation string `mapstructure:"interpolation"`
	// TrialInterpolation is the method of the interim curves built while solving.
	TrialInterpolation string `mapstructure:"trial_interpolation"`
	Extrapolate        bool   `mapstructure:"extrapolate"`
	// DayCount maps dates to curve times.
	DayCount string `mapstructure:"day_count"`

	// Solver is one of brent, bisection, newton.
	Solver string `mapstructure:"solver"`
	// Tolerance is the accepted quote error, in quote units.
	Tolerance float64 `mapstructure:"tolerance"`
	// Accuracy is the solver's discount factor accuracy.
	Accuracy       float64 `mapstructure:"accuracy"`
	MaxEvaluations int     `mapstructure:"max_evaluations"`
	// BracketLower and BracketUpper bound each solved discount factor.
	BracketLower float64 `mapstructure:"bracket_lower"`
	BracketUpper float64 `mapstructure:"bracket_upper"`

	// AllowNegativeRates permits non-decreasing discount factors.
	AllowNegativeRates bool `mapstructure:"allow_negative_rates"`
}

// MonteCarloConfig holds path simulation settings.
type MonteCarloConfig struct {
	Paths      int    `mapstructure:"paths"`
	Workers    int    `mapstructure:"workers"`
	Seed       uint64 `mapstructure:"seed"`
	Antithetic bool   `mapstructure:"antithetic"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Default returns production defaults.
func Default() Config {
	return Config{
		Bootstrap: BootstrapConfig{
			Interpolation:      "LogLinear",
			TrialInterpolation: "LogLinear",
			DayCount:           "ACT/365F",
			Solver:             "brent",
			Tolerance:          1e-10,
			Accuracy:           1e-14,
			MaxEvaluations:     100,
			BracketLower:       1e-9,
			BracketUpper:       2,
		},
		MonteCarlo: MonteCarloConfig{
			Paths:      100_000,
			Seed:       42,
			Antithetic: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads defaults, then an optional .env file, then the config file at
// path (YAML or JSON; skipped when path is empty), then RATECORE_* environment
// variables. The result is validated.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so that environment overrides apply even
// without a config file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("bootstrap.interpolation", d.Bootstrap.Interpolation)
	v.SetDefault("bootstrap.trial_interpolation", d.Bootstrap.TrialInterpolation)
	v.SetDefault("bootstrap.extrapolate", d.Bootstrap.Extrapolate)
	v.SetDefault("bootstrap.day_count", d.Bootstrap.DayCount)
	v.SetDefault("bootstrap.solver", d.Bootstrap.Solver)
	v.SetDefault("bootstrap.tolerance", d.Bootstrap.Tolerance)
	v.SetDefault("bootstrap.accuracy", d.Bootstrap.Accuracy)
	v.SetDefault("bootstrap.max_evaluations", d.Bootstrap.MaxEvaluations)
	v.SetDefault("bootstrap.bracket_lower", d.Bootstrap.BracketLower)
	v.SetDefault("bootstrap.bracket_upper", d.Bootstrap.BracketUpper)
	v.SetDefault("bootstrap.allow_negative_rates", d.Bootstrap.AllowNegativeRates)

	v.SetDefault("montecarlo.paths", d.MonteCarlo.Paths)
	v.SetDefault("montecarlo.workers", d.MonteCarlo.Workers)
	v.SetDefault("montecarlo.seed", d.MonteCarlo.Seed)
	v.SetDefault("montecarlo.antithetic", d.MonteCarlo.Antithetic)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.pretty", d.Logging.Pretty)
}

// Validate checks ranges that do not depend on other packages. Method, day
// count and solver names are checked where they are parsed.
func (c *Config) Validate() error {
	b := c.Bootstrap
	var errs []error
	if !(b.Tolerance > 0) {
		errs = append(errs, fmt.Errorf("bootstrap.tolerance must be positive, got %g", b.Tolerance))
	}
	if !(b.Accuracy > 0) {
		errs = append(errs, fmt.Errorf("bootstrap.accuracy must be positive, got %g", b.Accuracy))
	}
	if b.MaxEvaluations < 3 {
		errs = append(errs, fmt.Errorf("bootstrap.max_evaluations must be at least 3, got %d", b.MaxEvaluations))
	}
	if !(b.BracketLower > 0 && b.BracketLower < b.BracketUpper) {
		errs = append(errs, fmt.Errorf("bootstrap bracket [%g, %g] must satisfy 0 < lower < upper", b.BracketLower, b.BracketUpper))
	}
	if c.MonteCarlo.Paths <= 0 {
		errs = append(errs, fmt.Errorf("montecarlo.paths must be positive, got %d", c.MonteCarlo.Paths))
	}
	if c.MonteCarlo.Workers < 0 {
		errs = append(errs, fmt.Errorf("montecarlo.workers must not be negative, got %d", c.MonteCarlo.Workers))
	}
	return errors.Join(errs...)
}
