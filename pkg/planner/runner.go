package planner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/operator-framework/smt-planner/pkg/planner/worker"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
	"github.com/operator-framework/smt-planner/pkg/solver/search"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

// Job is one search handed to a Runner.
type Job struct {
	Problem *model.Problem
	Options search.Options
	// Output receives the search's diagnostics. It may be nil.
	Output io.Writer
	// Observer is notified of every checked length in the calling
	// process. Nil means a fresh metrics.StepObserver.
	Observer search.StepObserver
}

// Outcome is what a search hands back to the planner. Exhausted is set
// when no plan exists within the length bound.
type Outcome struct {
	Plan       plan.Plan
	Sequence   [][]string
	Exhausted  bool
	Statistics *stats.Statistics
}

// SearchFunc runs a search in the calling goroutine.
type SearchFunc func(ctx context.Context, job Job) (*Outcome, error)

// Runner executes a search bounded by ctx. When ctx expires first, Run
// returns ctx.Err() without waiting for the search to finish. A nil
// outcome with a nil error means the search ended without a result.
type Runner interface {
	Run(ctx context.Context, job Job, search SearchFunc) (*Outcome, error)
}

// GoroutineRunner runs the search in a separate goroutine. The search
// stops at its next cancellation point once Run has returned.
type GoroutineRunner struct{}

type result struct {
	outcome *Outcome
	err     error
}

func (GoroutineRunner) Run(ctx context.Context, job Job, search SearchFunc) (*Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Written exactly once, so the worker never blocks on a reader that
	// has given up.
	results := make(chan result, 1)
	go func() {
		var r result
		defer func() {
			if v := recover(); v != nil {
				r = result{err: errors.Wrapf(encoding.ErrInternal, "search panicked: %v", v)}
			}
			results <- r
		}()
		r.outcome, r.err = search(ctx, job)
	}()

	select {
	case r := <-results:
		return r.outcome, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// DefaultWaitDelay bounds how long ProcessRunner waits for a killed
// worker's output to drain.
const DefaultWaitDelay = 2 * time.Second

// ProcessRunner runs the search in a worker process that reads a
// worker.Request on stdin and writes one worker.Response on stdout. The
// worker is killed when ctx expires.
type ProcessRunner struct {
	// Path is the worker binary. Empty means the running executable.
	Path string
	Args []string
	// Env is the worker's environment. Nil means the parent's.
	Env       []string
	WaitDelay time.Duration
}

func (r ProcessRunner) Run(ctx context.Context, job Job, _ SearchFunc) (*Outcome, error) {
	path := r.Path
	if path == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "locating worker binary")
		}
		path = exe
	}

	var stdin bytes.Buffer
	if err := worker.WriteRequest(&stdin, worker.Request{Problem: job.Problem, Options: job.Options}); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, path, r.Args...)
	cmd.Env = r.Env
	cmd.Stdin = &stdin
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay == 0 {
		cmd.WaitDelay = DefaultWaitDelay
	}
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "connecting worker stderr")
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "starting worker %s", path)
	}

	output := job.Output
	if output == nil {
		output = io.Discard
	}
	var eg errgroup.Group
	eg.Go(func() error {
		_, err := io.Copy(output, stderr)
		return err
	})
	copyErr := eg.Wait()
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	resp, err := worker.ReadResponse(&stdout)
	if errors.Is(err, worker.ErrEmptyResponse) {
		if waitErr != nil {
			fmt.Fprintf(output, "worker exited without a result: %v\n", waitErr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(encoding.ErrInternal, err.Error())
	}
	if copyErr != nil {
		fmt.Fprintf(output, "copying worker output: %v\n", copyErr)
	}
	out, err := fromResponse(resp)
	if err != nil || out == nil || out.Statistics == nil {
		return out, err
	}
	if out.Statistics, err = collect(job, out.Statistics); err != nil {
		return nil, err
	}
	return out, nil
}

// collect rebuilds the statistics a worker reported for job in the
// calling process and replays its steps to job.Observer, so per-length
// metrics survive the worker.
func collect(job Job, reported *stats.Statistics) (*stats.Statistics, error) {
	st := &stats.Statistics{
		RunID:       job.Options.RunID,
		Parallelism: job.Options.Parallelism.String(),
		Incremental: job.Options.Incremental,
	}
	if err := st.Merge(reported); err != nil {
		return nil, errors.Wrap(encoding.ErrInternal, err.Error())
	}
	if job.Observer != nil {
		for _, step := range st.Steps {
			job.Observer.ObserveStep(step)
		}
	}
	return st, nil
}

func fromResponse(resp worker.Response) (*Outcome, error) {
	switch {
	case resp.Error != "" && resp.Internal:
		return nil, errors.Wrap(encoding.ErrInternal, resp.Error)
	case resp.Error != "":
		return nil, errors.New(resp.Error)
	case resp.Empty:
		return nil, nil
	}
	pl, err := resp.Plan.Decode()
	if err != nil {
		return nil, errors.Wrap(encoding.ErrInternal, err.Error())
	}
	return &Outcome{
		Plan:       pl,
		Sequence:   resp.Sequence,
		Exhausted:  resp.Exhausted,
		Statistics: resp.Statistics,
	}, nil
}

func toResponse(out *Outcome, err error) worker.Response {
	switch {
	case err != nil:
		return worker.Response{Error: err.Error(), Internal: errors.Is(err, encoding.ErrInternal)}
	case out == nil:
		return worker.Response{Empty: true}
	}
	return worker.Response{
		Plan:       plan.Encode(out.Plan),
		Sequence:   out.Sequence,
		Exhausted:  out.Exhausted,
		Statistics: out.Statistics,
	}
}

// Handler answers worker requests by searching in the worker process.
// A search cancelled by ctx is reported as an empty response.
func (p *SMTPlanner) Handler() worker.Handler {
	return worker.HandlerFunc(func(ctx context.Context, req worker.Request) worker.Response {
		out, err := p.Search(ctx, Job{Problem: req.Problem, Options: req.Options})
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			return worker.Response{Empty: true}
		}
		return toResponse(out, err)
	})
}
