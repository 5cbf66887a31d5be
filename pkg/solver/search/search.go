// Package search drives iterative deepening over plan length.
package search

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
	"k8s.io/utils/clock"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
	"github.com/operator-framework/smt-planner/pkg/planning/model"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/planning/validate"
	"github.com/operator-framework/smt-planner/pkg/solver/assembler"
	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

// ErrLengthBoundReached is returned when no plan exists up to the
// maximum length.
var ErrLengthBoundReached = errors.New("no plan within the length bound")

// Options configure a single search.
type Options struct {
	RunID string `json:"runID,omitempty"`
	// MaxLength bounds the plan length, inclusive. Nil means unbounded.
	MaxLength     *int                 `json:"maxLength,omitempty"`
	Parallelism   encoding.Parallelism `json:"parallelism"`
	ForAllGetSets bool                 `json:"forallGetSets,omitempty"`
	Incremental   bool                 `json:"incremental"`
	// UnitTest stops after extracting the action sequence of the first
	// satisfiable length, skipping plan assembly and validation.
	UnitTest bool `json:"unitTest,omitempty"`
}

// Outcome is the result of a search. Plan is nil when the search ran in
// unit test mode or exhausted the length bound.
type Outcome struct {
	Plan       plan.Plan
	Sequence   assembler.ActionSequence
	Length     int
	Statistics *stats.Statistics
}

// BuilderFactory creates the step builder for a grounded problem. log
// carries the fields of the run the builder serves.
type BuilderFactory func(p *grounding.Problem, o Options, log logrus.FieldLogger) (encoding.StepBuilder, error)

// DefaultBuilderFactory builds an encoding.Builder.
func DefaultBuilderFactory(p *grounding.Problem, o Options, log logrus.FieldLogger) (encoding.StepBuilder, error) {
	return encoding.New(p,
		encoding.WithParallelism(o.Parallelism),
		encoding.WithIncremental(o.Incremental),
		encoding.WithLogger(log),
	)
}

// StepObserver is notified of every checked length.
type StepObserver interface {
	ObserveStep(step stats.Step)
}

// StepObserverFunc adapts a function to StepObserver.
type StepObserverFunc func(step stats.Step)

func (f StepObserverFunc) ObserveStep(step stats.Step) {
	f(step)
}

// Searcher finds length-minimal plans.
type Searcher struct {
	grounder  grounding.Grounder
	validator validate.Validator
	factory   BuilderFactory
	observer  StepObserver
	log       logrus.FieldLogger
	tracer    trace.Tracer
	clock     clock.PassiveClock
	progress  *rate.Sometimes
}

type Option func(s *Searcher)

func WithGrounder(g grounding.Grounder) Option {
	return func(s *Searcher) {
		s.grounder = g
	}
}

func WithValidator(v validate.Validator) Option {
	return func(s *Searcher) {
		s.validator = v
	}
}

func WithBuilderFactory(f BuilderFactory) Option {
	return func(s *Searcher) {
		s.factory = f
	}
}

func WithStepObserver(o StepObserver) Option {
	return func(s *Searcher) {
		s.observer = o
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Searcher) {
		s.log = log
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Searcher) {
		s.tracer = t
	}
}

func WithClock(c clock.PassiveClock) Option {
	return func(s *Searcher) {
		s.clock = c
	}
}

// New returns a Searcher using the default grounder, validator and
// encoder unless overridden.
func New(options ...Option) *Searcher {
	s := &Searcher{
		progress: &rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
	for _, option := range options {
		option(s)
	}
	if s.log == nil {
		s.log = logrus.New()
	}
	if s.grounder == nil {
		s.grounder = grounding.New()
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	if s.factory == nil {
		s.factory = DefaultBuilderFactory
	}
	if s.observer == nil {
		s.observer = StepObserverFunc(func(stats.Step) {})
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer("smt-planner.search")
	}
	if s.clock == nil {
		s.clock = clock.RealClock{}
	}
	return s
}

// Run grounds p once and checks plan lengths 0, 1, 2, ... up to
// o.MaxLength, returning the plan of the first satisfiable length. When
// the bound is exhausted the outcome carries the statistics and the
// error is ErrLengthBoundReached.
func (s *Searcher) Run(ctx context.Context, p *model.Problem, o Options) (out *Outcome, err error) {
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	log := s.log.WithFields(logrus.Fields{
		"run":         o.RunID,
		"problem":     p.Name,
		"parallelism": o.Parallelism.String(),
	})
	ctx, span := s.tracer.Start(ctx, "search.Run",
		trace.WithAttributes(
			attribute.String("run", o.RunID),
			attribute.String("parallelism", o.Parallelism.String()),
		),
	)
	defer func() {
		if err != nil && !errors.Is(err, ErrLengthBoundReached) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	g, instances, err := s.grounder.Ground(p)
	if err != nil {
		return nil, errors.Wrap(err, "grounding problem")
	}
	log.WithFields(logrus.Fields{
		"fluents": len(g.Fluents),
		"actions": len(g.Actions),
	}).Debug("grounded problem")

	b, err := s.factory(g, o, log)
	if err != nil {
		return nil, errors.Wrap(err, "building encoder")
	}

	st := &stats.Statistics{
		RunID:       o.RunID,
		Problem:     p.Name,
		Parallelism: o.Parallelism.String(),
		Incremental: o.Incremental,
		Started:     s.clock.Now(),
	}
	for t := 0; o.MaxLength == nil || t <= *o.MaxLength; t++ {
		r, err := s.check(ctx, b, t)
		if err != nil {
			return nil, err
		}
		eval, formula := b.EvalData(), b.FormulaData()
		step := stats.Step{
			Length:    t,
			Outcome:   r.Outcome.String(),
			Elapsed:   eval.Elapsed,
			Variables: formula.Variables,
			Clauses:   formula.Clauses,
			Mutexes:   formula.Mutexes,
		}
		if err := st.Append(step); err != nil {
			return nil, errors.Wrap(encoding.ErrInternal, err.Error())
		}
		s.observer.ObserveStep(step)
		log.WithFields(logrus.Fields{
			"length":  t,
			"outcome": step.Outcome,
			"elapsed": step.Elapsed,
		}).Debug("checked plan length")
		s.progress.Do(func() {
			log.Infof("checked plan length %d: %s", t, step.Outcome)
		})

		if r.Outcome != encoding.Satisfiable {
			continue
		}
		seq, err := assembler.ExtractActionSequence(r.Model, g, b.OrderedActions(), t, b.Parallelism())
		if err != nil {
			return nil, err
		}
		out := &Outcome{Sequence: seq, Length: t, Statistics: st}
		if o.UnitTest {
			return out, nil
		}
		pl := assembler.BuildPlan(seq, b.Parallelism(), o.ForAllGetSets)
		if out.Plan, err = assembler.ValidateAndUnground(pl, g, p, instances, s.validator); err != nil {
			return nil, err
		}
		log.WithField("length", t).Info("found plan")
		return out, nil
	}
	return &Outcome{Statistics: st}, ErrLengthBoundReached
}

func (s *Searcher) check(ctx context.Context, b encoding.StepBuilder, t int) (encoding.Result, error) {
	ctx, span := s.tracer.Start(ctx, "search.CheckSat", trace.WithAttributes(attribute.Int("length", t)))
	defer span.End()
	r, err := b.CheckSat(ctx, t)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return r, errors.Wrapf(err, "checking length %d", t)
	}
	span.SetAttributes(attribute.String("outcome", r.Outcome.String()))
	return r, nil
}
