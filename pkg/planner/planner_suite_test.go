package planner_test

import (
	"context"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/smt-planner/pkg/planner"
	"github.com/operator-framework/smt-planner/pkg/planner/worker"
)

// workerModeEnv turns the test binary into a worker process for
// ProcessRunner specs.
const workerModeEnv = "SMT_PLANNER_TEST_WORKER"

func TestMain(m *testing.M) {
	switch os.Getenv(workerModeEnv) {
	case "":
		os.Exit(m.Run())
	case "serve":
		logger := logrus.New()
		logger.SetOutput(os.Stderr)
		p := planner.New(planner.WithLogger(logger))
		if err := worker.Serve(context.Background(), os.Stdin, os.Stdout, p.Handler(), logger); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	case "crash":
		os.Stderr.WriteString("worker crashing\n")
		os.Exit(3)
	case "hang":
		time.Sleep(time.Hour)
		os.Exit(0)
	}
}

func TestPlanner(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Planner Suite")
}

func workerRunner(mode string) planner.ProcessRunner {
	return planner.ProcessRunner{
		Env:       append(os.Environ(), workerModeEnv+"="+mode),
		WaitDelay: time.Second,
	}
}
