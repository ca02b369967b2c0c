package metrics

import (
	"runtime"
	"time"
)

// Run outcomes for SimulationRunsTotal
const (
	OutcomeConverged  = "converged"
	OutcomeStopped    = "stopped"
	OutcomeSuperseded = "superseded"
)

// Recording methods are no-ops on a nil *Registry so components can run unobserved.

// RecordStoreOperation records a document store operation
func (r *Registry) RecordStoreOperation(operation, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.StoreOperationsTotal.WithLabelValues(operation, status).Inc()
	r.StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDocumentCount updates the stored document gauge
func (r *Registry) SetDocumentCount(n int) {
	if r == nil {
		return
	}
	r.DocumentsTotal.Set(float64(n))
}

// RecordTick records one simulation step
func (r *Registry) RecordTick(duration time.Duration, alpha float64) {
	if r == nil {
		return
	}
	r.SimulationTicksTotal.Inc()
	r.SimulationTickDuration.Observe(duration.Seconds())
	r.SimulationAlpha.Set(alpha)
}

// SetGraphSize records the topology of the active simulation
func (r *Registry) SetGraphSize(nodes, edges int) {
	if r == nil {
		return
	}
	r.SimulationNodes.Set(float64(nodes))
	r.SimulationEdges.Set(float64(edges))
}

// RecordSimulationRun records how a simulation run ended
func (r *Registry) RecordSimulationRun(outcome string) {
	if r == nil {
		return
	}
	r.SimulationRunsTotal.WithLabelValues(outcome).Inc()
}

// RecordDrag records the start of a drag gesture
func (r *Registry) RecordDrag() {
	if r == nil {
		return
	}
	r.DragGesturesTotal.Inc()
}

// UpdateSystemMetrics refreshes uptime and runtime gauges
func (r *Registry) UpdateSystemMetrics(startedAt time.Time) {
	if r == nil {
		return
	}
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	r.UptimeSeconds.Set(time.Since(startedAt).Seconds())
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))
	r.MemoryAllocBytes.Set(float64(mem.Alloc))
}
