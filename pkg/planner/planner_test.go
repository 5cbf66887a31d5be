package planner_test

import (
	"bytes"
	"context"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"github.com/operator-framework/smt-planner/pkg/fakes"
	"github.com/operator-framework/smt-planner/pkg/metrics"
	"github.com/operator-framework/smt-planner/pkg/planner"
	"github.com/operator-framework/smt-planner/pkg/planning/grounding"
	"github.com/operator-framework/smt-planner/pkg/planning/plan"
	"github.com/operator-framework/smt-planner/pkg/planning/testproblems"
	"github.com/operator-framework/smt-planner/pkg/planning/validate"
	"github.com/operator-framework/smt-planner/pkg/solver/encoding"
	"github.com/operator-framework/smt-planner/pkg/solver/search"
	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

func bound(n int) *int {
	return &n
}

// withBuilder replaces the encoder of every search by fake.
func withBuilder(fake *fakes.FakeStepBuilder) planner.Option {
	return planner.WithSearchOptions(search.WithBuilderFactory(func(*grounding.Problem, search.Options, logrus.FieldLogger) (encoding.StepBuilder, error) {
		return fake, nil
	}))
}

var finish = plan.SequentialPlan{Actions: []plan.ActionInstance{{Action: "finish"}}}

var _ = Describe("SMTPlanner", func() {
	var (
		ctx    context.Context
		logger *logrus.Logger
		output *bytes.Buffer
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger = logrus.New()
		logger.SetOutput(GinkgoWriter)
		output = &bytes.Buffer{}
	})

	It("is named SMTPlanner", func() {
		Expect(planner.New().Name()).To(Equal("SMTPlanner"))
	})

	Context("without a timeout", func() {
		It("solves the trivial problem with a single step", func() {
			p := planner.New(planner.WithLogger(logger))
			res, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Reason).To(Equal(planner.ReasonNone))
			Expect(res.Engine).To(Equal(planner.Name))
			Expect(res.Plan).To(Equal(finish))
			Expect(res.Sequence).To(Equal([][]string{{"finish"}}))
			Expect(res.Statistics.Steps).To(HaveLen(2))
			Expect(validate.New().Validate(testproblems.Trivial(), res.Plan.ToSequential())).To(Succeed())
		})

		It("reports the length bound as a timeout", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{MaxLength: bound(0)}))
			res, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonLengthBound))
			Expect(res.Plan).To(BeNil())
			Expect(res.Statistics.Steps).To(HaveLen(1))
			Expect(res.Statistics.Steps[0].Outcome).To(Equal("UNSAT"))
		})

		It("returns partial-order plans when ForAll sets are requested", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{
				Parallelism:   encoding.ForAll,
				ForAllGetSets: true,
			}))
			res, err := p.Solve(ctx, testproblems.Switches(3), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Plan).To(BeAssignableToTypeOf(plan.PartialOrderPlan{}))
			Expect(res.Plan.Len()).To(Equal(1))
			Expect(res.Plan.ToSequential().Actions).To(HaveLen(3))
		})

		It("ignores ForAll sets in other modes", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{
				Parallelism:   encoding.ThereExists,
				ForAllGetSets: true,
			}))
			res, err := p.Solve(ctx, testproblems.Switches(3), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Plan).To(BeAssignableToTypeOf(plan.SequentialPlan{}))
		})

		It("returns the raw action sequence in unit test mode", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{UnitTest: true}))
			res, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Plan).To(BeNil())
			Expect(res.Sequence).To(Equal([][]string{{"finish"}}))
		})

		It("solves with a reset solver", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{ResetSolver: true}))
			res, err := p.Solve(ctx, testproblems.Dolls(3), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Plan.Len()).To(Equal(2))
			Expect(res.Statistics.Incremental).To(BeFalse())
		})

		It("redirects log output for the duration of the call", func() {
			logger.SetLevel(logrus.DebugLevel)
			original := logger.Out
			p := planner.New(planner.WithLogger(logger))
			_, err := p.Solve(ctx, testproblems.Trivial(), 0, output)
			Expect(err).ToNot(HaveOccurred())
			Expect(output.String()).To(ContainSubstring("found plan"))
			Expect(logger.Out).To(BeIdenticalTo(original))
		})

		It("restores log output when the search fails", func() {
			original := logger.Out
			fake := &fakes.FakeStepBuilder{}
			fake.CheckSatReturns(encoding.Result{}, errors.Wrap(encoding.ErrInternal, "broken"))
			p := planner.New(planner.WithLogger(logger), withBuilder(fake))
			_, err := p.Solve(ctx, testproblems.Trivial(), 0, output)
			Expect(errors.Is(err, encoding.ErrInternal)).To(BeTrue())
			Expect(logger.Out).To(BeIdenticalTo(original))
		})

		It("persists statistics of a successful run", func() {
			path := filepath.Join(GinkgoT().TempDir(), "stats.json")
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{StatsOutput: path}))
			res, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(err).ToNot(HaveOccurred())

			st, err := stats.Read(ctx, path)
			Expect(err).ToNot(HaveOccurred())
			Expect(st.RunID).To(Equal(res.Statistics.RunID))
			Expect(st.Steps).To(HaveLen(2))
		})

		It("does not persist statistics when no plan is found", func() {
			path := filepath.Join(GinkgoT().TempDir(), "stats.json")
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{StatsOutput: path, MaxLength: bound(0)}))
			_, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(path).ToNot(BeAnExistingFile())
		})

		It("fails loudly on an inconsistent model", func() {
			fake := &fakes.FakeStepBuilder{}
			fake.CheckSatReturns(encoding.Result{Outcome: encoding.Satisfiable}, nil)
			p := planner.New(planner.WithLogger(logger), withBuilder(fake))
			res, err := p.Solve(ctx, testproblems.Trivial(), 0, nil)
			Expect(res).To(BeNil())
			Expect(errors.Is(err, encoding.ErrInternal)).To(BeTrue())
		})

		It("rejects a missing problem", func() {
			_, err := planner.New().Solve(ctx, nil, 0, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("with a timeout in a goroutine", func() {
		It("solves the trivial problem", func() {
			p := planner.New(planner.WithLogger(logger))
			res, err := p.Solve(ctx, testproblems.Trivial(), 10*time.Second, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Plan).To(Equal(finish))
		})

		It("reports the length bound as a timeout", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithOptions(planner.Options{MaxLength: bound(0)}))
			res, err := p.Solve(ctx, testproblems.Trivial(), 10*time.Second, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonLengthBound))
		})

		It("returns within the timeout when a length check ignores cancellation", func() {
			fake := &fakes.FakeStepBuilder{}
			fake.CheckSatCalls(func(ctx context.Context, t int) (encoding.Result, error) {
				time.Sleep(2 * time.Second)
				if err := ctx.Err(); err != nil {
					return encoding.Result{}, err
				}
				return encoding.Result{Outcome: encoding.Unsatisfiable, Length: t}, nil
			})
			p := planner.New(planner.WithLogger(logger), withBuilder(fake))

			started := time.Now()
			res, err := p.Solve(ctx, testproblems.Trivial(), 100*time.Millisecond, nil)
			Expect(time.Since(started)).To(BeNumerically("<", time.Second))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonWallClock))
			Expect(res.Plan).To(BeNil())
		})

		It("cancels an unbounded search on an unsolvable problem", func() {
			p := planner.New(planner.WithLogger(logger))
			started := time.Now()
			res, err := p.Solve(ctx, testproblems.Unreachable(), 200*time.Millisecond, nil)
			Expect(time.Since(started)).To(BeNumerically("<", 2*time.Second))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonWallClock))
		})

		It("does not deadlock when the search panics", func() {
			fake := &fakes.FakeStepBuilder{}
			fake.CheckSatCalls(func(context.Context, int) (encoding.Result, error) {
				panic("solver exploded")
			})
			p := planner.New(planner.WithLogger(logger), withBuilder(fake))

			done := make(chan error, 1)
			go func() {
				_, err := p.Solve(ctx, testproblems.Trivial(), 5*time.Second, nil)
				done <- err
			}()
			var err error
			Eventually(done, time.Second).Should(Receive(&err))
			Expect(errors.Is(err, encoding.ErrInternal)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("solver exploded"))
		})

		It("does not deadlock on an internal error", func() {
			fake := &fakes.FakeStepBuilder{}
			fake.CheckSatReturns(encoding.Result{Outcome: encoding.Satisfiable}, nil)
			p := planner.New(planner.WithLogger(logger), withBuilder(fake))

			done := make(chan error, 1)
			go func() {
				_, err := p.Solve(ctx, testproblems.Trivial(), 5*time.Second, nil)
				done <- err
			}()
			var err error
			Eventually(done, time.Second).Should(Receive(&err))
			Expect(errors.Is(err, encoding.ErrInternal)).To(BeTrue())
		})

		It("returns the caller's cancellation as an error", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			p := planner.New(planner.WithLogger(logger))
			_, err := p.Solve(cctx, testproblems.Unreachable(), time.Second, nil)
			Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		})
	})

	Context("with a timeout in a worker process", func() {
		It("solves the trivial problem", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithRunner(workerRunner("serve")))
			res, err := p.Solve(ctx, testproblems.Trivial(), 30*time.Second, output)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(res.Plan).To(Equal(finish))
			Expect(res.Sequence).To(Equal([][]string{{"finish"}}))
			Expect(res.Statistics.Steps).To(HaveLen(2))
		})

		It("reports the length bound as a timeout", func() {
			p := planner.New(
				planner.WithLogger(logger),
				planner.WithRunner(workerRunner("serve")),
				planner.WithOptions(planner.Options{MaxLength: bound(0)}),
			)
			res, err := p.Solve(ctx, testproblems.Trivial(), 30*time.Second, output)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonLengthBound))
		})

		It("replays the worker's length checks in the calling process", func() {
			var steps []stats.Step
			job := planner.Job{
				Problem: testproblems.Trivial(),
				Options: search.Options{RunID: "run-1", Parallelism: encoding.ForAll, Incremental: true},
				Observer: search.StepObserverFunc(func(step stats.Step) {
					steps = append(steps, step)
				}),
			}
			out, err := workerRunner("serve").Run(ctx, job, nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(out.Statistics.RunID).To(Equal("run-1"))
			Expect(out.Statistics.Problem).To(Equal("trivial"))
			Expect(out.Statistics.Parallelism).To(Equal(encoding.ForAll.String()))
			Expect(out.Statistics.Total.Steps).To(Equal(2))
			Expect(steps).To(Equal(out.Statistics.Steps))
			Expect(steps).To(HaveLen(2))
			Expect(steps[0].Outcome).To(Equal("UNSAT"))
			Expect(steps[1].Outcome).To(Equal("SAT"))
		})

		It("records per-length metrics of the worker's search", func() {
			checks := metrics.PlanLengthChecksTotal.WithLabelValues(encoding.ThereExists.String(), "SAT")
			before := testutil.ToFloat64(checks)
			p := planner.New(
				planner.WithLogger(logger),
				planner.WithRunner(workerRunner("serve")),
				planner.WithOptions(planner.Options{Parallelism: encoding.ThereExists}),
			)
			res, err := p.Solve(ctx, testproblems.Trivial(), 30*time.Second, output)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusSolvedSatisficing))
			Expect(testutil.ToFloat64(checks)).To(Equal(before + 1))
		})

		It("reports a worker that wrote nothing as an empty result", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithRunner(workerRunner("crash")))
			res, err := p.Solve(ctx, testproblems.Trivial(), 30*time.Second, output)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonEmptyResult))
			Expect(output.String()).To(ContainSubstring("worker crashing"))
		})

		It("kills a worker that outlives the timeout", func() {
			p := planner.New(planner.WithLogger(logger), planner.WithRunner(workerRunner("hang")))
			started := time.Now()
			res, err := p.Solve(ctx, testproblems.Trivial(), 300*time.Millisecond, output)
			Expect(time.Since(started)).To(BeNumerically("<", 3*time.Second))
			Expect(err).ToNot(HaveOccurred())
			Expect(res.Status).To(Equal(planner.StatusTimeout))
			Expect(res.Reason).To(Equal(planner.ReasonWallClock))
		})
	})
})
