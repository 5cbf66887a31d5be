package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/operator-framework/smt-planner/config"
	"github.com/operator-framework/smt-planner/pkg/lib/server"
	"github.com/operator-framework/smt-planner/pkg/lib/signals"
	"github.com/operator-framework/smt-planner/pkg/metrics"
	"github.com/operator-framework/smt-planner/pkg/planner"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

var registerMetrics = sync.OnceFunc(metrics.Register)

type solveOptions struct {
	debug       bool
	timeout     time.Duration
	isolate     bool
	configPath  string
	metricsFile string
	debugAddr   string
	profiling   bool
	format      string

	planner planner.Options
}

func newSolveCmd() *cobra.Command {
	o := solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve PROBLEM",
		Short: "Searches a length-minimal plan for the problem file",
		Long: `Searches a length-minimal plan for a YAML or JSON problem file.

Exits 0 when a plan is found, 2 when the search timed out or no plan
exists within --max-length, and 3 on an internal error.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			if o.debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			logger.Debugf("log level %s", logger.Level)

			ctx, cancel := context.WithCancel(signals.Context())
			defer cancel()

			return o.run(ctx, logger, cmd.Flags(), args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().BoolVar(&o.debug, "debug", false, "use debug log level")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "wall-clock bound of the search, 0 for none")
	cmd.Flags().BoolVar(&o.isolate, "isolate", false, "run a search bounded by --timeout in a worker process")
	cmd.Flags().StringVar(&o.configPath, "config", "", "YAML file with planner settings, overridden by flags")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "write prometheus metrics to this file after solving")
	cmd.Flags().StringVar(&o.debugAddr, "debug-addr", "", "serve metrics and health checks on this address while solving")
	cmd.Flags().BoolVar(&o.profiling, "profiling", false, "also serve profiling data on --debug-addr")
	cmd.Flags().StringVarP(&o.format, "output", "o", "text", "result format, one of text, json or yaml")
	o.planner.AddFlags(cmd.Flags())

	return cmd
}

func (o *solveOptions) run(ctx context.Context, logger *logrus.Logger, fs *pflag.FlagSet, path string, out io.Writer) error {
	registerMetrics()

	if err := o.applyConfig(fs); err != nil {
		return err
	}
	problem, err := model.Load(path)
	if err != nil {
		return err
	}
	if o.debugAddr != "" {
		if _, err := server.Start(ctx, server.WithAddress(o.debugAddr), server.WithLogger(logger), server.WithProfiling(o.profiling)); err != nil {
			return errors.Wrap(err, "starting debug server")
		}
	}

	opts := []planner.Option{
		planner.WithOptions(o.planner),
		planner.WithLogger(logger),
	}
	if o.isolate {
		args := []string{"worker"}
		if o.debug {
			args = append(args, "--debug")
		}
		opts = append(opts, planner.WithRunner(planner.ProcessRunner{Args: args}))
	}

	res, err := planner.New(opts...).Solve(ctx, problem, o.timeout, logger.Out)
	if o.metricsFile != "" {
		if werr := prometheus.WriteToTextfile(o.metricsFile, prometheus.DefaultGatherer); werr != nil {
			logger.WithError(werr).Warn("failed to write metrics")
		}
	}
	if err != nil {
		return err
	}

	if err := printResult(out, o.format, res); err != nil {
		return err
	}
	if res.Status != planner.StatusSolvedSatisficing {
		return statusError{code: exitTimeout}
	}
	return nil
}

// applyConfig loads the configuration file, if any, and lets flags set
// on the command line take precedence over it.
func (o *solveOptions) applyConfig(fs *pflag.FlagSet) error {
	if o.configPath == "" {
		return nil
	}
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return errors.Wrapf(err, "loading config %s", o.configPath)
	}
	base, err := cfg.PlannerOptions()
	if err != nil {
		return errors.Wrapf(err, "loading config %s", o.configPath)
	}

	flags := o.planner
	timeout, isolate := o.timeout, o.isolate
	o.planner, o.timeout, o.isolate = base, cfg.Timeout, cfg.Isolate
	fs.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "max-length":
			o.planner.MaxLength = flags.MaxLength
		case "parallelism":
			o.planner.Parallelism = flags.Parallelism
		case "forall-get-sets":
			o.planner.ForAllGetSets = flags.ForAllGetSets
		case "reset-solver":
			o.planner.ResetSolver = flags.ResetSolver
		case "stats-output":
			o.planner.StatsOutput = flags.StatsOutput
		case "unit-test":
			o.planner.UnitTest = flags.UnitTest
		case "timeout":
			o.timeout = timeout
		case "isolate":
			o.isolate = isolate
		}
	})
	return nil
}

type resultView struct {
	Status     planner.Status    `json:"status"`
	Reason     planner.Reason    `json:"reason,omitempty"`
	Engine     string            `json:"engine"`
	Plan       *plan.Encoded     `json:"plan,omitempty"`
	Sequence   [][]string        `json:"sequence,omitempty"`
	Statistics *stats.Statistics `json:"statistics,omitempty"`
}

func printResult(out io.Writer, format string, res *planner.Result) error {
	view := resultView{
		Status:     res.Status,
		Reason:     res.Reason,
		Engine:     res.Engine,
		Plan:       plan.Encode(res.Plan),
		Sequence:   res.Sequence,
		Statistics: res.Statistics,
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(view, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding result")
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(view)
		if err != nil {
			return errors.Wrap(err, "encoding result")
		}
		_, err = out.Write(data)
		return err
	case "text":
	default:
		return errors.Errorf("unknown output format %q", format)
	}

	if res.Reason != planner.ReasonNone {
		fmt.Fprintf(out, "status: %s (%s)\n", res.Status, res.Reason)
	} else {
		fmt.Fprintf(out, "status: %s\n", res.Status)
	}
	switch {
	case res.Plan != nil:
		fmt.Fprint(out, res.Plan)
	case res.Sequence != nil:
		for i, step := range res.Sequence {
			fmt.Fprintf(out, "%d: %v\n", i, step)
		}
	}
	return nil
}
