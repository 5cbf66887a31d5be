package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/operator-framework/smt-planner/pkg/solver/stats"
)

const (
	// Formula size dimensions
	variablesDimension = "variables"
	mutexesDimension   = "mutexes"
)

var (
	formulaSizeMetrics = map[string]*prometheus.GaugeVec{}
)

func emitFormulaSize(parallelism string, step stats.Step) {
	length := strconv.Itoa(step.Length)
	if g, ok := formulaSizeMetrics[variablesDimension]; ok {
		g.WithLabelValues(parallelism, length).Set(float64(step.Variables))
	}
	if g, ok := formulaSizeMetrics[mutexesDimension]; ok {
		g.WithLabelValues(parallelism, length).Set(float64(step.Mutexes))
	}
}
