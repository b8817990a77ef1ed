package commands

import (
	"errors"
	"fmt"
	"math"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-xspec/fit"
	"github.com/cwbudde/algo-xspec/fit/fake"
	"github.com/cwbudde/algo-xspec/xspec"
)

func fitCmd(e *env) *cobra.Command {
	var (
		dryRun      bool
		thermal     string
		nonThermal  string
		low, high   []float64
		breakStart  float64
		breakFrozen bool
		statistic   string
	)

	cmd := &cobra.Command{
		Use:   "fit [data-spec ...]",
		Short: "Fit thermal then non-thermal components, then both jointly",
		Long: "Each data-spec is passed to XSPEC's data command, e.g. \"1:1 spectrum.fits\".\n" +
			"With --dry-run the stages run against an in-memory engine and no data is needed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := e.cfg.Fit.FitConfig()

			flags := cmd.Flags()
			if flags.Changed("thermal") {
				cfg.Thermal = thermal
			}
			if flags.Changed("nonthermal") {
				cfg.NonThermal = nonThermal
			}
			if flags.Changed("low") {
				r, err := energyRange(low)
				if err != nil {
					return fmt.Errorf("--low: %w", err)
				}
				cfg.LowRange = r
			}
			if flags.Changed("high") {
				r, err := energyRange(high)
				if err != nil {
					return fmt.Errorf("--high: %w", err)
				}
				cfg.HighRange = r
			}
			if flags.Changed("break-start") {
				cfg.BreakStart = breakStart
			}
			if flags.Changed("break-frozen") {
				cfg.BreakFrozen = breakFrozen
			}
			if flags.Changed("statistic") {
				cfg.StatMethod = statistic
			}

			o, err := fit.NewOrchestrator(cfg, fit.WithLogger(e.log), fit.WithObserver(e.metrics))
			if err != nil {
				return err
			}

			engine, closeEngine, err := e.engine(cmd, dryRun, args)
			if err != nil {
				return err
			}
			defer closeEngine()

			s, err := fit.OpenSession(engine)
			if err != nil {
				return err
			}
			defer s.Close()

			res, err := o.Run(s)
			if err != nil {
				return err
			}
			return printResult(cmd, res)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&dryRun, "dry-run", false, "use an in-memory engine instead of XSPEC")
	f.StringVar(&thermal, "thermal", "", "thermal component (default from config)")
	f.StringVar(&nonThermal, "nonthermal", "", "non-thermal component, empty for thermal only")
	f.Float64SliceVar(&low, "low", nil, "low-energy fit range in keV, e.g. 2,10")
	f.Float64SliceVar(&high, "high", nil, "high-energy fit range in keV, e.g. 8,30")
	f.Float64Var(&breakStart, "break-start", 0, "break energy seed in keV")
	f.BoolVar(&breakFrozen, "break-frozen", false, "keep the break energy frozen")
	f.StringVar(&statistic, "statistic", "", "fit statistic (chi, cstat, lstat, pgstat, pstat, whittle)")
	return cmd
}

func energyRange(v []float64) (fit.EnergyRange, error) {
	if len(v) != 2 {
		return fit.EnergyRange{}, fmt.Errorf("want two energies, got %d", len(v))
	}
	return fit.EnergyRange{Low: v[0], High: v[1]}, nil
}

// engine returns the fake engine for dry runs, otherwise a started XSPEC
// with the data loaded.
func (e *env) engine(cmd *cobra.Command, dryRun bool, data []string) (fit.Engine, func(), error) {
	if dryRun {
		return fake.New(), func() {}, nil
	}
	if len(data) == 0 {
		return nil, nil, errors.New("no data-spec given (use --dry-run to fit without data)")
	}

	x, err := xspec.Start(cmd.Context(), e.cfg.XSPEC.Binary, e.cfg.XSPEC.Args, xspec.WithLogger(e.log))
	if err != nil {
		return nil, nil, err
	}
	closeEngine := func() {
		if err := x.Close(); err != nil {
			e.log.Warn().Err(err).Msg("closing xspec")
		}
	}
	for _, d := range data {
		if err := x.LoadData(d); err != nil {
			closeEngine()
			return nil, nil, err
		}
	}
	return x, closeEngine, nil
}

func printResult(cmd *cobra.Command, res *fit.Result) error {
	out := cmd.OutOrStdout()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintf(tw, "Stage\tModel\tRange [keV]\tStatistic\tDOF\tTime\n"); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}
	for _, st := range res.Stages {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%g-%g\t%.3f\t%d\t%s\n",
			st.Stage, st.Model, st.Mask.Low, st.Mask.High, st.Statistic.Value, st.Statistic.DOF, st.Duration,
		); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	params, err := fit.Parameters(res.Model)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintln(out); err != nil {
		return err
	}
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Par\tComponent\tParameter\tUnit\tValue\tSigma\n"); err != nil {
		return fmt.Errorf("write output header: %w", err)
	}
	for _, p := range params {
		sigma := "frozen"
		if !p.Frozen {
			sigma = "± " + formatValue(p.Sigma, p.Value)
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			p.Index, p.Component, p.Name, p.Unit, formatValue(p.Value, p.Value), sigma,
		); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err = fmt.Fprintf(out, "\nFit statistic: %s\n", res.Statistic)
	return err
}

// formatValue uses fixed notation for magnitudes within two decades of
// one, scientific otherwise.
func formatValue(v, ref float64) string {
	if ref != 0 && math.Abs(math.Log10(math.Abs(ref))) < 2 {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2e", v)
}
