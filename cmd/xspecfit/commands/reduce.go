package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-xspec/mjd"
	"github.com/cwbudde/algo-xspec/ogip"
)

func reduceCmd(e *env) *cobra.Command {
	var start, end, out, origin string

	cmd := &cobra.Command{
		Use:   "reduce <rate.fits>",
		Short: "Average a rate file over [start, end) into a one-row spectrum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := e.timeOrigin(origin)
			if err != nil {
				return err
			}

			path, spec, err := ogip.ReduceFile(args[0], out, start, end,
				ogip.WithTimeOrigin(o),
				ogip.WithLogger(e.log),
			)
			e.metrics.RecordReduction(spec, err)
			if err != nil {
				return err
			}

			e.log.Info().
				Str("input", args[0]).
				Str("output", path).
				Int("rows", spec.Rows).
				Float64("exposure", spec.Exposure).
				Msg("spectrum written")

			return printSpectrum(cmd, path, spec)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "window start (ISO time or MJD)")
	cmd.Flags().StringVar(&end, "end", "", "window end, exclusive (ISO time or MJD)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default <input>_<HHMMSS>-<HHMMSS>.fits)")
	cmd.Flags().StringVar(&origin, "time-origin", "", "auto, never or always rebuild times from MJDREF")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

func printSpectrum(cmd *cobra.Command, path string, spec *ogip.AveragedSpectrum) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Output", path},
		{"Rows", fmt.Sprintf("%d (from row %d)", spec.Rows, spec.FirstRow)},
		{"Channels", fmt.Sprintf("%d", spec.Table.NumChannels())},
		{"Start", formatSplit(spec.Start)},
		{"Stop", formatSplit(spec.Stop)},
		{"Exposure [s]", fmt.Sprintf("%.4f", spec.Exposure)},
		{"TIMEDEL [s]", fmt.Sprintf("%.4f", spec.TimeDel())},
		{"Times rebuilt", fmt.Sprintf("%t", spec.Corrected)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1]); err != nil {
			return fmt.Errorf("write output row: %w", err)
		}
	}
	return tw.Flush()
}

func formatSplit(s mjd.Split) string {
	return fmt.Sprintf("%s (MJD %d + %.9f)",
		mjd.ToTime(s.Value()).Format(time.RFC3339Nano), s.Int, s.Frac)
}
