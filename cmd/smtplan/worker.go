package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/smt-planner/pkg/lib/signals"
	"github.com/operator-framework/smt-planner/pkg/planner"
	"github.com/operator-framework/smt-planner/pkg/planner/worker"
)

func newWorkerCmd() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:    "worker",
		Short:  "Runs one search requested on stdin and writes its result to stdout",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.New()
			logger.SetOutput(cmd.ErrOrStderr())
			if debug {
				logger.SetLevel(logrus.DebugLevel)
			}
			p := planner.New(planner.WithLogger(logger))
			return worker.Serve(signals.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), p.Handler(), logger)
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "use debug log level")
	return cmd
}
