//go:build experimental_metrics
// +build experimental_metrics

package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	// Register experimental metrics
	formulaSizeMetrics = formulaSizeGauges(variablesDimension, mutexesDimension)
	registerFormulaSizeMetrics()
}

func formulaSizeGauges(dimensions ...string) map[string]*prometheus.GaugeVec {
	result := map[string]*prometheus.GaugeVec{}
	for _, s := range dimensions {
		result[s] = createFormulaSizeGaugeVec(s)
	}
	return result
}

func createFormulaSizeGaugeVec(name string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "smt_planner_formula_" + name + "_by_length",
			Help: fmt.Sprintf("Number of %s in the formula, by plan length", name),
		},
		[]string{ParallelismLabel, "length"},
	)
}

func registerFormulaSizeMetrics() {
	for _, v := range formulaSizeMetrics {
		prometheus.MustRegister(v)
	}
}
