// Package encoding builds the propositional encoding of a grounded
// planning problem for a given plan length and decides it with a SAT
// solver.
package encoding

import (
	"context"
	"time"

	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"k8s.io/utils/clock"

	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
)

var (
	// ErrInternal marks failures that indicate a bug in the encoder
	// rather than a property of the problem.
	ErrInternal = errors.New("internal encoding failure")
	// ErrNonMonotonicLength is returned when CheckSat is called with a
	// length that does not exceed the previous one.
	ErrNonMonotonicLength = errors.New("plan lengths must be checked in strictly increasing order")
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// Outcome is the result of checking one plan length.
type Outcome int

const (
	Unsatisfiable Outcome = iota
	Satisfiable
)

func (o Outcome) String() string {
	if o == Satisfiable {
		return "SAT"
	}
	return "UNSAT"
}

// Result is the outcome of CheckSat. Model is only set when the
// encoding was satisfiable.
type Result struct {
	Outcome Outcome
	Length  int
	Model   *Assignment
}

// EvalData describes the most recent CheckSat call.
type EvalData struct {
	Elapsed time.Duration
}

// FormulaData describes the size of the formula decided by the most
// recent CheckSat call.
type FormulaData struct {
	Variables int
	Clauses   int
	Mutexes   int
}

// StepBuilder decides plan lengths of one grounded problem.
//
//go:generate go run github.com/maxbrunsfeld/counterfeiter/v6 -o ../../fakes/fake_step_builder.go . StepBuilder
type StepBuilder interface {
	CheckSat(ctx context.Context, t int) (Result, error)
	EvalData() EvalData
	FormulaData() FormulaData
	OrderedActions() []*grounding.Action
	Parallelism() Parallelism
}

// Builder encodes a grounded problem for increasing plan lengths.
type Builder struct {
	problem     *grounding.Problem
	parallelism Parallelism
	incremental bool
	clock       clock.PassiveClock
	log         logrus.FieldLogger

	// writers lists, per fluent, the actions that may change it in
	// action order.
	writers [][]writer
	mutexes [][2]int

	d    *litMapping
	last int

	eval    EvalData
	formula FormulaData
}

var _ StepBuilder = &Builder{}

type Option func(b *Builder) error

// WithParallelism selects the parallelism encoding.
func WithParallelism(p Parallelism) Option {
	return func(b *Builder) error {
		if _, ok := parallelismNames[p]; !ok {
			return errors.Errorf("unknown parallelism %d", int(p))
		}
		b.parallelism = p
		return nil
	}
}

// WithIncremental keeps one solver across lengths when true, and
// rebuilds the whole encoding for every length otherwise.
func WithIncremental(incremental bool) Option {
	return func(b *Builder) error {
		b.incremental = incremental
		return nil
	}
}

func WithClock(c clock.PassiveClock) Option {
	return func(b *Builder) error {
		b.clock = c
		return nil
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(b *Builder) error {
		b.log = log
		return nil
	}
}

var defaults = []Option{
	func(b *Builder) error {
		if b.clock == nil {
			b.clock = clock.RealClock{}
		}
		return nil
	},
	func(b *Builder) error {
		if b.log == nil {
			b.log = logrus.New()
		}
		return nil
	},
}

// New returns a Builder for p. Incremental solving is the default.
func New(p *grounding.Problem, options ...Option) (*Builder, error) {
	b := &Builder{
		problem:     p,
		incremental: true,
		last:        -1,
	}
	for _, option := range append(options, defaults...) {
		if err := option(b); err != nil {
			return nil, err
		}
	}
	if err := b.index(); err != nil {
		return nil, errors.Wrap(ErrInternal, err.Error())
	}
	switch b.parallelism {
	case ForAll:
		b.mutexes = forAllMutexes(p)
	case ThereExists:
		b.mutexes = thereExistsMutexes(p)
	}
	return b, nil
}

func (b *Builder) Parallelism() Parallelism {
	return b.parallelism
}

// OrderedActions returns the total order in which actions sharing a
// step are executed.
func (b *Builder) OrderedActions() []*grounding.Action {
	return b.problem.Actions
}

func (b *Builder) EvalData() EvalData {
	return b.eval
}

func (b *Builder) FormulaData() FormulaData {
	return b.formula
}

// CheckSat decides whether a plan of exactly t steps exists. Lengths
// must be strictly increasing across calls. Cancelling ctx interrupts
// the solver and returns ctx.Err().
func (b *Builder) CheckSat(ctx context.Context, t int) (Result, error) {
	if t < 0 || t <= b.last {
		return Result{}, errors.Wrapf(ErrNonMonotonicLength, "length %d after %d", t, b.last)
	}
	b.last = t
	start := b.clock.Now()
	defer func() {
		b.eval = EvalData{Elapsed: b.clock.Since(start)}
	}()

	if b.d == nil || !b.incremental {
		b.d = newLitMapping(len(b.problem.Fluents), len(b.problem.Actions))
		b.encodeInit()
	}
	for s := b.d.Steps(); s < t; s++ {
		b.encodeStep(s)
	}
	guard := b.encodeGoal(t)
	if err := b.d.Error(); err != nil {
		return Result{}, errors.Wrap(ErrInternal, err.Error())
	}
	b.formula = FormulaData{
		Variables: b.d.Variables(),
		Clauses:   b.d.out.clauses,
		Mutexes:   b.d.mutexes,
	}

	if guard != z.LitNull {
		b.d.g.Assume(guard)
	}
	outcome, err := solve(ctx, b.d.g)
	if err != nil {
		return Result{}, err
	}
	var o Outcome
	switch outcome {
	case satisfiable:
		o = Satisfiable
	case unsatisfiable:
		o = Unsatisfiable
	default:
		return Result{}, errors.Wrapf(ErrInternal, "unexpected solver result %d", outcome)
	}
	b.log.WithField("length", t).Debugf("solver returned %s", o)

	if o == Satisfiable {
		return Result{Outcome: Satisfiable, Length: t, Model: b.snapshot(t)}, nil
	}
	if guard != z.LitNull {
		// Retire the goal of this length for good.
		b.d.out.clause(guard.Not())
	}
	return Result{Outcome: Unsatisfiable, Length: t}, nil
}

func (b *Builder) snapshot(t int) *Assignment {
	a := &Assignment{
		Actions: make([][]bool, t),
		Fluents: make([][]bool, t+1),
	}
	for s := 0; s <= t; s++ {
		a.Fluents[s] = make([]bool, len(b.problem.Fluents))
		for f := range a.Fluents[s] {
			a.Fluents[s][f] = b.d.Value(b.d.FluentAt(s, f, true))
		}
	}
	for s := 0; s < t; s++ {
		a.Actions[s] = make([]bool, len(b.problem.Actions))
		for i := range a.Actions[s] {
			a.Actions[s][i] = b.d.Value(b.d.ActionAt(s, i))
		}
	}
	return a
}

type solver interface {
	Solve() int
	GoSolve() inter.Solve
}

// solve runs the solver in the background so that ctx can interrupt it.
func solve(ctx context.Context, g solver) (int, error) {
	if ctx.Done() == nil {
		return g.Solve(), nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s := g.GoSolve()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		if res, ok := s.Test(); ok {
			return res, nil
		}
		select {
		case <-ctx.Done():
			s.Stop()
			return 0, ctx.Err()
		case <-ticker.C:
		}
	}
}

const pollInterval = 5 * time.Millisecond
