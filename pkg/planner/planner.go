// Package planner is the entry point of the SAT planner. It normalizes
// options, bounds the search by a wall-clock timeout and maps the
// search's outcome onto the planner's result statuses.
package planner

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/operator-framework/smt-planner/pkg/metrics"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/solver/search"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

const Name = "SMTPlanner"

type Status string

const (
	StatusSolvedSatisficing Status = "SOLVED_SATISFICING"
	StatusTimeout           Status = "TIMEOUT"
)

// Reason tells apart the causes reported as StatusTimeout.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonWallClock   Reason = "wall clock"
	ReasonLengthBound Reason = "length bound"
	ReasonEmptyResult Reason = "empty result"
)

// Result is the outcome of Solve. Plan and Sequence are only set with
// StatusSolvedSatisficing. Sequence holds the grounded action names of
// each step; in unit test mode it is the only part of the solution.
type Result struct {
	Status     Status
	Reason     Reason
	Plan       plan.Plan
	Sequence   [][]string
	Engine     string
	Statistics *stats.Statistics
}

// SMTPlanner finds length-minimal plans by iterative deepening over SAT
// encodings of the planning problem.
type SMTPlanner struct {
	options       Options
	runner        Runner
	log           *logrus.Logger
	tracer        trace.Tracer
	clock         clock.PassiveClock
	searchOptions []search.Option

	// mu serializes Solve calls, which swap the logger's output.
	mu sync.Mutex
}

type Option func(p *SMTPlanner)

func WithOptions(o Options) Option {
	return func(p *SMTPlanner) {
		p.options = o
	}
}

// WithRunner selects how a search bounded by a timeout is executed.
func WithRunner(r Runner) Option {
	return func(p *SMTPlanner) {
		p.runner = r
	}
}

func WithLogger(log *logrus.Logger) Option {
	return func(p *SMTPlanner) {
		p.log = log
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(p *SMTPlanner) {
		p.tracer = t
	}
}

func WithClock(c clock.PassiveClock) Option {
	return func(p *SMTPlanner) {
		p.clock = c
	}
}

// WithSearchOptions are applied to every search after the planner's own.
func WithSearchOptions(opts ...search.Option) Option {
	return func(p *SMTPlanner) {
		p.searchOptions = append(p.searchOptions, opts...)
	}
}

func New(opts ...Option) *SMTPlanner {
	p := &SMTPlanner{}
	for _, opt := range opts {
		opt(p)
	}
	if p.runner == nil {
		p.runner = GoroutineRunner{}
	}
	if p.log == nil {
		p.log = logrus.New()
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer("smt-planner")
	}
	if p.clock == nil {
		p.clock = clock.RealClock{}
	}
	return p
}

func (p *SMTPlanner) Name() string {
	return Name
}

// Solve searches a plan for problem. A positive timeout bounds the
// search in wall-clock time; the search then runs in p's Runner. While
// Solve runs, the planner's log output goes to output when it is not
// nil.
//
// A search that runs out of time or exhausts the length bound yields
// StatusTimeout. Errors are reserved for invalid input, cancellation of
// ctx, and internal errors, which wrap encoding.ErrInternal.
func (p *SMTPlanner) Solve(ctx context.Context, problem *model.Problem, timeout time.Duration, output io.Writer) (res *Result, err error) {
	if problem == nil {
		return nil, errors.New("no problem to solve")
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if output != nil {
		previous := p.log.Out
		p.log.SetOutput(output)
		defer p.log.SetOutput(previous)
	}

	o := p.options.Normalize()
	job := Job{
		Problem: problem,
		Options: o.search(uuid.NewString()),
		Output:  output,
	}
	job.Observer = metrics.NewStepObserver(job.Options.Parallelism.String())
	log := p.log.WithFields(logrus.Fields{
		"planner": Name,
		"run":     job.Options.RunID,
	})

	ctx, span := p.tracer.Start(ctx, "planner.Solve", trace.WithAttributes(
		attribute.String("run", job.Options.RunID),
		attribute.String("problem", problem.Name),
		attribute.Int64("timeout_ms", timeout.Milliseconds()),
	))
	started := p.clock.Now()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(
				attribute.String("status", string(res.Status)),
				attribute.String("reason", string(res.Reason)),
			)
			metrics.EmitSolve(Name, string(res.Status), string(res.Reason), p.clock.Since(started))
		}
		span.End()
	}()

	var out *Outcome
	if timeout > 0 {
		rctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		out, err = p.runner.Run(rctx, job, p.Search)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			log.WithField("timeout", timeout).Info("search timed out")
			return p.result(StatusTimeout, ReasonWallClock, nil), nil
		}
	} else {
		out, err = p.Search(ctx, job)
	}
	if err != nil {
		return nil, err
	}

	switch {
	case out == nil:
		log.Warn("search returned no result")
		return p.result(StatusTimeout, ReasonEmptyResult, nil), nil
	case out.Exhausted:
		log.Info("no plan within the length bound")
		return p.result(StatusTimeout, ReasonLengthBound, out), nil
	}

	if o.StatsOutput != "" && out.Statistics != nil {
		if err := stats.Write(ctx, o.StatsOutput, out.Statistics); err != nil {
			return nil, errors.Wrap(err, "writing statistics")
		}
		log.WithField("path", o.StatsOutput).Debug("wrote statistics")
	}
	return p.result(StatusSolvedSatisficing, ReasonNone, out), nil
}

func (p *SMTPlanner) result(status Status, reason Reason, out *Outcome) *Result {
	r := &Result{Status: status, Reason: reason, Engine: Name}
	if out != nil {
		r.Statistics = out.Statistics
		if status == StatusSolvedSatisficing {
			r.Plan = out.Plan
			r.Sequence = out.Sequence
		}
	}
	return r
}

// Search runs the search of job in the calling goroutine.
func (p *SMTPlanner) Search(ctx context.Context, job Job) (*Outcome, error) {
	observer := job.Observer
	if observer == nil {
		observer = metrics.NewStepObserver(job.Options.Parallelism.String())
	}
	opts := []search.Option{
		search.WithLogger(p.log),
		search.WithStepObserver(observer),
		search.WithClock(p.clock),
		search.WithTracer(p.tracer),
	}
	s := search.New(append(opts, p.searchOptions...)...)

	out, err := s.Run(ctx, job.Problem, job.Options)
	if errors.Is(err, search.ErrLengthBoundReached) {
		return &Outcome{Exhausted: true, Statistics: out.Statistics}, nil
	}
	if err != nil {
		return nil, err
	}
	return &Outcome{
		Plan:       out.Plan,
		Sequence:   out.Sequence.Names(),
		Statistics: out.Statistics,
	}, nil
}
