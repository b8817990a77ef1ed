package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-xspec/internal/config"
	"github.com/cwbudde/algo-xspec/ogip"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XSPECFIT_LOG_LEVEL", "disabled")

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestFitDryRun(t *testing.T) {
	out, err := run(t, "fit", "--dry-run")
	if err != nil {
		t.Fatalf("fit --dry-run: %v\n%s", err, out)
	}
	for _, want := range []string{
		"thermal_only", "nonthermal_frozen_break", "nonthermal_unfrozen_break", "joint",
		"apec+bknpower", "BreakE", "frozen", "Fit statistic: Chi",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestFitDryRunThermalOnly(t *testing.T) {
	out, err := run(t, "fit", "--dry-run", "--nonthermal", "", "--thermal", "vth")
	if err != nil {
		t.Fatalf("fit: %v\n%s", err, out)
	}
	if strings.Contains(out, "bknpower") || strings.Contains(out, "joint") {
		t.Fatalf("thermal-only run fitted a non-thermal component:\n%s", out)
	}
	if !strings.Contains(out, "vth") {
		t.Fatalf("output lacks vth:\n%s", out)
	}
}

func TestFitFlagErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"fit", "--dry-run", "--low", "5"}, "--low"},
		{[]string{"fit", "--dry-run", "--statistic", "chi2"}, "statistic"},
		{[]string{"fit"}, "no data-spec"},
	}
	for _, tt := range tests {
		_, err := run(t, tt.args...)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%v: error = %v, want %q", tt.args, err, tt.want)
		}
	}
}

func TestFitWritesMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xspecfit.prom")
	if out, err := run(t, "fit", "--dry-run", "--metrics-textfile", path); err != nil {
		t.Fatalf("fit: %v\n%s", err, out)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	for _, want := range []string{
		`xspecfit_runs_total{model="apec+bknpower",result="ok"} 1`,
		`xspecfit_stage_duration_seconds_count{stage="joint"} 1`,
	} {
		if !strings.Contains(string(b), want) {
			t.Errorf("textfile lacks %q:\n%s", want, b)
		}
	}
}

func TestReduceMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.fits")
	_, err := run(t, "reduce", missing, "--start", "2022-07-23T12:20:00", "--end", "2022-07-23T12:25:00")
	if err == nil || !strings.Contains(err.Error(), "missing.fits") {
		t.Fatalf("reduce error = %v", err)
	}
}

func TestReduceRequiresWindow(t *testing.T) {
	if _, err := run(t, "reduce", "in.fits"); err == nil {
		t.Fatal("reduce ran without --start/--end")
	}
}

func TestTimesBadOrigin(t *testing.T) {
	_, err := run(t, "times", "in.fits", "--time-origin", "sometimes")
	if err == nil || !strings.Contains(err.Error(), "time origin") {
		t.Fatalf("times error = %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xspecfit.yaml")
	if err := os.WriteFile(path, []byte("fit:\n  nonthermal: powerlaw\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", path, "fit", "--dry-run")
	if err != nil {
		t.Fatalf("fit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "apec+powerlaw") || strings.Contains(out, "nonthermal_unfrozen_break") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestTimeOriginFromConfig(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Reduce.TimeOrigin = "always"
	e := &env{cfg: cfg}

	tests := []struct {
		flag string
		want ogip.TimeOrigin
	}{
		{"", ogip.TimeOriginAlways},
		{"never", ogip.TimeOriginNever},
		{"auto", ogip.TimeOriginAuto},
	}
	for _, tt := range tests {
		got, err := e.timeOrigin(tt.flag)
		if err != nil {
			t.Fatalf("timeOrigin(%q): %v", tt.flag, err)
		}
		if got != tt.want {
			t.Errorf("timeOrigin(%q) = %v, want %v", tt.flag, got, tt.want)
		}
	}
}
