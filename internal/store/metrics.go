package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vyrodovalexey/avgui-demo/internal/model"
)

var (
	todoItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "todo_items",
			Help: "Number of items currently held in the to-do list",
		},
	)

	todoOperationsTotal = newOperationsCounter()
)

// newOperationsCounter registers the per-operation counter with every
// operation label present from the start, so unused operations export 0.
func newOperationsCounter() *prometheus.CounterVec {
	c := promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todo_operations_total",
			Help: "Total number of operations applied to the to-do list",
		},
		[]string{"operation"},
	)
	for _, op := range model.Operations() {
		c.WithLabelValues(op.String())
	}
	return c
}
