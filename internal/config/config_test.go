package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/cwbudde/algo-xspec/fit"
	"github.com/cwbudde/algo-xspec/ogip"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "xspecfit.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultMatchesFitDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := c.Fit.FitConfig(), fit.DefaultConfig(); !reflect.DeepEqual(got, want) {
		t.Fatalf("FitConfig() = %+v\nwant %+v", got, want)
	}
	if c.Logging.Level != "info" || c.Logging.Format != "console" || c.Logging.Output != "stderr" {
		t.Fatalf("logging = %+v", c.Logging)
	}
	if c.XSPEC.Binary != "xspec" {
		t.Fatalf("xspec binary = %q", c.XSPEC.Binary)
	}
	if o, err := c.Reduce.Origin(); err != nil || o != ogip.TimeOriginAuto {
		t.Fatalf("origin = %v, %v", o, err)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
fit:
  nonthermal: thick2
  high_range: [10, 50]
  break_frozen: true
  renorm: false
  statistic: cstat
reduce:
  time_origin: always
logging:
  level: debug
  format: json
metrics:
  textfile: /tmp/xspecfit.prom
`)

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fc := c.Fit.FitConfig()
	if fc.NonThermal != "thick2" || fc.HighRange != (fit.EnergyRange{Low: 10, High: 50}) {
		t.Fatalf("fit = %+v", fc)
	}
	if !fc.BreakFrozen || fc.Renorm || !fc.Renotice {
		t.Fatalf("flags = frozen %v renorm %v renotice %v", fc.BreakFrozen, fc.Renorm, fc.Renotice)
	}
	if fc.StatMethod != "cstat" || fc.Thermal != "apec" || fc.Iterations != 1000 {
		t.Fatalf("fit = %+v", fc)
	}
	if o, _ := c.Reduce.Origin(); o != ogip.TimeOriginAlways {
		t.Fatalf("origin = %v", o)
	}
	if c.Logging.Level != "debug" || c.Logging.Format != "json" || c.Logging.Output != "stderr" {
		t.Fatalf("logging = %+v", c.Logging)
	}
	if c.Metrics.Textfile != "/tmp/xspecfit.prom" {
		t.Fatalf("metrics = %+v", c.Metrics)
	}
}

func TestLoadThermalOnly(t *testing.T) {
	c, err := Load(writeConfig(t, "fit:\n  nonthermal: \"\"\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Fit.NonThermal != "" {
		t.Fatalf("nonthermal = %q, want empty", c.Fit.NonThermal)
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"statistic", "fit:\n  statistic: chi2\n", "StatMethod must be one of"},
		{"query", "fit:\n  query: maybe\n", "Query must be one of"},
		{"iterations", "fit:\n  iterations: -1\n", "Iterations must be greater than 0"},
		{"range length", "fit:\n  low_range: [2]\n", "LowRange must have 2 elements"},
		{"inverted range", "fit:\n  low_range: [10, 2]\n", "low range"},
		{"origin", "reduce:\n  time_origin: sometimes\n", "TimeOrigin must be one of"},
		{"log format", "logging:\n  format: xml\n", "Format must be one of"},
		{"yaml", "fit: [\n", "parse config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Load error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load accepted a missing file")
	}
}

func TestLoadWithEnv(t *testing.T) {
	t.Setenv("XSPECFIT_XSPEC", "/opt/heasoft/bin/xspec")
	t.Setenv("XSPECFIT_LOG_LEVEL", "warn")

	c, err := LoadWithEnv("")
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if c.XSPEC.Binary != "/opt/heasoft/bin/xspec" || c.Logging.Level != "warn" {
		t.Fatalf("config = %+v", c)
	}

	t.Setenv("XSPECFIT_LOG_LEVEL", "loud")
	if _, err := LoadWithEnv(""); err == nil {
		t.Fatal("LoadWithEnv accepted an invalid level")
	}
}
