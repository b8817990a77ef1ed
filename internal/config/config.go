// Package config loads the xspecfit YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-xspec/fit"
	"github.com/cwbudde/algo-xspec/internal/logging"
	"github.com/cwbudde/algo-xspec/ogip"
)

var validate = validator.New()

// Config is the root of the configuration file.
type Config struct {
	Fit     Fit            `yaml:"fit"`
	Reduce  Reduce         `yaml:"reduce"`
	XSPEC   XSPEC          `yaml:"xspec"`
	Logging logging.Config `yaml:"logging"`
	Metrics Metrics        `yaml:"metrics"`
}

// Fit mirrors fit.Config.
type Fit struct {
	Thermal        string    `yaml:"thermal" default:"apec" validate:"required"`
	NonThermal     string    `yaml:"nonthermal" default:"bknpower"`
	LowRange       []float64 `yaml:"low_range" default:"[2,10]" validate:"len=2,dive,gte=0"`
	HighRange      []float64 `yaml:"high_range" default:"[8,30]" validate:"len=2,dive,gte=0"`
	BreakStart     float64   `yaml:"break_start" default:"15" validate:"gt=0"`
	BreakFrozen    bool      `yaml:"break_frozen"`
	StatMethod     string    `yaml:"statistic" default:"chi" validate:"oneof=chi cstat lstat pgstat pstat whittle"`
	Query          string    `yaml:"query" default:"no" validate:"oneof=no yes on"`
	Iterations     int       `yaml:"iterations" default:"1000" validate:"gt=0"`
	Abundance      string    `yaml:"abundance" default:"felc" validate:"required"`
	Renorm         bool      `yaml:"renorm" default:"true"`
	Renotice       bool      `yaml:"renotice" default:"true"`
	ThermalRelease []string  `yaml:"thermal_release" default:"[\"kT\",\"norm\"]"`
}

// Reduce configures time-window reduction.
type Reduce struct {
	TimeOrigin string `yaml:"time_origin" default:"auto" validate:"oneof=auto never always"`
}

// XSPEC configures the interpreter process.
type XSPEC struct {
	Binary string   `yaml:"binary" default:"xspec" validate:"required"`
	Args   []string `yaml:"args"`
}

// Metrics configures the Prometheus textfile output. Empty disables it.
type Metrics struct {
	Textfile string `yaml:"textfile"`
}

// FitConfig converts to the orchestrator configuration.
func (f Fit) FitConfig() fit.Config {
	cfg := fit.Config{
		Thermal:        f.Thermal,
		NonThermal:     f.NonThermal,
		BreakStart:     f.BreakStart,
		BreakFrozen:    f.BreakFrozen,
		StatMethod:     f.StatMethod,
		Query:          f.Query,
		Iterations:     f.Iterations,
		Abundance:      f.Abundance,
		Renorm:         f.Renorm,
		Renotice:       f.Renotice,
		ThermalRelease: append([]string(nil), f.ThermalRelease...),
	}
	if len(f.LowRange) == 2 {
		cfg.LowRange = fit.EnergyRange{Low: f.LowRange[0], High: f.LowRange[1]}
	}
	if len(f.HighRange) == 2 {
		cfg.HighRange = fit.EnergyRange{Low: f.HighRange[0], High: f.HighRange[1]}
	}
	return cfg
}

// Origin returns the configured time-origin mode.
func (r Reduce) Origin() (ogip.TimeOrigin, error) {
	return ogip.ParseTimeOrigin(r.TimeOrigin)
}

// Default returns the configuration used when no file is given.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	return &c, nil
}

// Load reads and validates a YAML configuration file. Keys missing from
// the file keep their defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config and applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("XSPECFIT_XSPEC"); v != "" {
		c.XSPEC.Binary = v
	}
	if v := os.Getenv("XSPECFIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("XSPECFIT_METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks field constraints and the orchestrator's own rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldMessage(fe))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return c.Fit.FitConfig().Validate()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have %s elements", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}
