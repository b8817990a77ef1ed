package commands

import (
	"errors"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-xspec/internal/config"
	"github.com/cwbudde/algo-xspec/internal/logging"
	"github.com/cwbudde/algo-xspec/internal/metrics"
)

// env is shared by the subcommands once the root command has run.
type env struct {
	configPath string
	logLevel   string
	textfile   string

	cfg      *config.Config
	log      zerolog.Logger
	logClose io.Closer
	registry *prometheus.Registry
	metrics  *metrics.Recorder
}

// Execute runs the CLI with os.Args.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	e := &env{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:          "xspecfit",
		Short:        "Reduce X-ray rate files and fit them with XSPEC",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return e.teardown()
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "YAML config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "", "log level (overrides config)")
	root.PersistentFlags().StringVar(&e.textfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	root.AddCommand(reduceCmd(e), timesCmd(e), fitCmd(e))
	return root
}

func (e *env) setup() error {
	cfg, err := config.LoadWithEnv(e.configPath)
	if err != nil {
		return err
	}
	if e.logLevel != "" {
		cfg.Logging.Level = e.logLevel
	}
	if e.textfile != "" {
		cfg.Metrics.Textfile = e.textfile
	}

	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}

	e.cfg = cfg
	e.log = log
	e.logClose = closer
	e.registry = prometheus.NewRegistry()
	e.metrics = metrics.New(e.registry)
	return nil
}

func (e *env) teardown() error {
	var errs []error
	if e.cfg != nil && e.cfg.Metrics.Textfile != "" {
		if err := metrics.WriteFile(e.cfg.Metrics.Textfile, e.registry); err != nil {
			errs = append(errs, err)
		}
	}
	if e.logClose != nil {
		errs = append(errs, e.logClose.Close())
	}
	return errors.Join(errs...)
}
