package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

const (
	ParallelismLabel = "parallelism"
	OutcomeLabel     = "outcome"
	StatusLabel      = "status"
	ReasonLabel      = "reason"
	PlannerLabel     = "planner"
)

// To add new metrics:
// 1. Register new metrics in Register() below.
// 2. Emit them from the planner or from a StepObserver.
var (
	planLengthCheckDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "smt_planner_length_check_duration_seconds",
			Help:    "The duration of a satisfiability check for one plan length",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{ParallelismLabel, OutcomeLabel},
	)

	// exported since tests and callers read it directly
	PlanLengthChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smt_planner_length_checks_total",
			Help: "Monotonic count of plan lengths checked",
		},
		[]string{ParallelismLabel, OutcomeLabel},
	)

	formulaClauses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smt_planner_formula_clauses",
			Help: "Number of clauses in the formula of the last checked plan length",
		},
		[]string{ParallelismLabel},
	)

	solveDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "smt_planner_solve_duration_seconds",
			Help:       "The duration of a planning attempt",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{StatusLabel},
	)

	SolvesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "smt_planner_solves_total",
			Help: "Monotonic count of planning attempts by terminal status",
		},
		[]string{PlannerLabel, StatusLabel, ReasonLabel},
	)
)

func Register() {
	RegisterTo(prometheus.DefaultRegisterer)
}

// RegisterTo registers the planner collectors with r. It panics if any of
// them is already registered.
func RegisterTo(r prometheus.Registerer) {
	r.MustRegister(planLengthCheckDuration)
	r.MustRegister(PlanLengthChecksTotal)
	r.MustRegister(formulaClauses)
	r.MustRegister(solveDurationSummary)
	r.MustRegister(SolvesTotal)
}

// StepObserver records every checked plan length of one search.
type StepObserver struct {
	parallelism string
}

func NewStepObserver(parallelism string) *StepObserver {
	return &StepObserver{parallelism: parallelism}
}

func (o *StepObserver) ObserveStep(step stats.Step) {
	planLengthCheckDuration.WithLabelValues(o.parallelism, step.Outcome).Observe(step.Elapsed.Seconds())
	PlanLengthChecksTotal.WithLabelValues(o.parallelism, step.Outcome).Inc()
	formulaClauses.WithLabelValues(o.parallelism).Set(float64(step.Clauses))
	emitFormulaSize(o.parallelism, step)
}

func EmitSolve(planner, status, reason string, duration time.Duration) {
	solveDurationSummary.WithLabelValues(status).Observe(duration.Seconds())
	SolvesTotal.WithLabelValues(planner, status, reason).Inc()
}
