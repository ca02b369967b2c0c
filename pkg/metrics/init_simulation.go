package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSimulationMetrics() {
	r.SimulationTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "docgraph_simulation_ticks_total",
			Help: "Total number of layout simulation ticks executed",
		},
	)

	// A tick must fit in one animation frame (~16ms)
	r.SimulationTickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docgraph_simulation_tick_duration_seconds",
			Help:    "Time spent computing one simulation tick",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.004, 0.008, 0.016, 0.033},
		},
	)

	r.SimulationAlpha = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_simulation_alpha",
			Help: "Current energy of the active layout simulation",
		},
	)

	r.SimulationNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_simulation_nodes",
			Help: "Nodes in the active layout graph",
		},
	)

	r.SimulationEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "docgraph_simulation_edges",
			Help: "Edges in the active layout graph",
		},
	)

	r.SimulationRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "docgraph_simulation_runs_total",
			Help: "Simulation runs by how they ended",
		},
		[]string{"outcome"},
	)

	r.DragGesturesTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "docgraph_drag_gestures_total",
			Help: "Total number of node drag gestures started",
		},
	)
}
