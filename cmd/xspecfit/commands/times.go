package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-xspec/mjd"
	"github.com/cwbudde/algo-xspec/ogip"
)

func timesCmd(e *env) *cobra.Command {
	var limit int
	var origin string

	cmd := &cobra.Command{
		Use:   "times <rate.fits>",
		Short: "Print the absolute time bins of a rate file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := e.timeOrigin(origin)
			if err != nil {
				return err
			}

			f, err := ogip.ReadFile(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			axis, err := ogip.TimeAxis(f.Rate, f.RateHeader, ogip.WithTimeOrigin(o), ogip.WithLogger(e.log))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			if _, err := fmt.Fprintf(tw, "Row\tStart (UTC)\tEnd (UTC)\tDuration [s]\tLivetime\n"); err != nil {
				return fmt.Errorf("write output header: %w", err)
			}
			if _, err := fmt.Fprintf(tw, "---\t-----------\t---------\t------------\t--------\n"); err != nil {
				return fmt.Errorf("write output header: %w", err)
			}

			n := axis.Len()
			if limit > 0 && limit < n {
				n = limit
			}
			for i := range n {
				if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t%.3f\t%.4f\n",
					i,
					mjd.ToTime(axis.Start(i)).Format(time.RFC3339Nano),
					mjd.ToTime(axis.End(i)).Format(time.RFC3339Nano),
					axis.Duration(i),
					f.Rate.Livetime[i],
				); err != nil {
					return fmt.Errorf("write output row: %w", err)
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			if n < axis.Len() {
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "... %d more rows\n", axis.Len()-n)
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print at most n rows (0 for all)")
	cmd.Flags().StringVar(&origin, "time-origin", "", "auto, never or always rebuild times from MJDREF")
	return cmd
}

// timeOrigin returns the mode named by the --time-origin flag, or the
// configured one when the flag is empty.
func (e *env) timeOrigin(flag string) (ogip.TimeOrigin, error) {
	if flag != "" {
		return ogip.ParseTimeOrigin(flag)
	}
	return e.cfg.Reduce.Origin()
}
