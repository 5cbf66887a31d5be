package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
	"github.com/operator-framework/smt-planner/pkg/version"
)

// Exit codes of smtplan solve.
const (
	exitSolved   = 0
	exitError    = 1
	exitTimeout  = 2
	exitInternal = 3
)

// statusError carries an exit code out of a command.
type statusError struct {
	code int
	err  error
}

func (e statusError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func newRootCmd() *cobra.Command {
	var showVersion bool
	cmd := &cobra.Command{
		Use:          "smtplan",
		Short:        "Finds length-minimal plans for planning problems with a SAT solver",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				cmd.Print(version.String())
				return nil
			}
			return cmd.Help()
		},
	}
	cmd.Flags().BoolVar(&showVersion, "version", false, "displays the smtplan version")

	cmd.AddCommand(newSolveCmd(), newWorkerCmd())
	return cmd
}

func main() {
	cmd := newRootCmd()
	cmd.SilenceErrors = true
	err := cmd.Execute()
	if err == nil {
		os.Exit(exitSolved)
	}

	var status statusError
	if errors.As(err, &status) {
		if status.err != nil {
			logrus.Error(status.err)
		}
		os.Exit(status.code)
	}
	logrus.Error(err)
	if errors.Is(err, encoding.ErrInternal) {
		os.Exit(exitInternal)
	}
	os.Exit(exitError)
}
