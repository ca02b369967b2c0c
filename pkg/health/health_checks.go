package health

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/dd0wney/cluso-docgraph/pkg/activity"
	"github.com/dd0wney/cluso-docgraph/pkg/documents"
	"github.com/dd0wney/cluso-docgraph/pkg/visualization"
)

// SlowStoreThreshold marks a store round trip as degraded
const SlowStoreThreshold = 2 * time.Second

// Alive is a liveness probe that passes whenever the process can answer
func Alive(context.Context) Check {
	return Check{Name: "process", Status: StatusHealthy}
}

// StoreCheck asks the store for its stats
func StoreCheck(store documents.Store) CheckFunc {
	return func(ctx context.Context) Check {
		check := Check{Name: "store", Details: make(map[string]any)}

		start := time.Now()
		stats, err := store.Stats(ctx)
		elapsed := time.Since(start)
		check.Details["latency_ms"] = elapsed.Milliseconds()

		switch {
		case err != nil:
			check.Status = StatusUnhealthy
			check.Message = err.Error()
		case elapsed > SlowStoreThreshold:
			check.Status = StatusDegraded
			check.Message = "Slow store"
			check.Details["documents"] = stats.TotalDocuments
		default:
			check.Status = StatusHealthy
			check.Message = fmt.Sprintf("%d documents", stats.TotalDocuments)
			check.Details["documents"] = stats.TotalDocuments
		}
		return check
	}
}

// ActivityCheck is degraded when more than half of the last window events failed
func ActivityCheck(recorder *activity.Recorder, window int) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: "activity", Details: make(map[string]any)}

		recent := recorder.Recent(window)
		failed := 0
		for _, e := range recent {
			if e.Status == activity.StatusFailure {
				failed++
			}
		}
		check.Details["events"] = recorder.Count()
		check.Details["recent_failures"] = failed

		if len(recent) > 0 && failed*2 > len(recent) {
			check.Status = StatusDegraded
			check.Message = "Most recent operations failed"
		} else {
			check.Status = StatusHealthy
		}
		return check
	}
}

// SimulationCheck reports the current layout. current may return nil
// when no graph has been built yet.
func SimulationCheck(current func() *visualization.Simulator) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: "simulation", Status: StatusHealthy}

		sim := current()
		if sim == nil {
			check.Message = "No graph"
			return check
		}
		check.Message = sim.State().String()
		check.Details = map[string]any{
			"alpha": sim.Alpha(),
			"ticks": sim.Ticks(),
			"nodes": sim.Graph().Len(),
		}
		return check
	}
}

// MemoryCheck is degraded once the Go heap exceeds limit bytes; 0 disables the limit
func MemoryCheck(limit uint64) CheckFunc {
	return func(context.Context) Check {
		check := Check{Name: "memory", Details: make(map[string]any)}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		check.Details["alloc_bytes"] = mem.Alloc
		check.Details["sys_bytes"] = mem.Sys
		check.Details["goroutines"] = runtime.NumGoroutine()

		if limit > 0 && mem.Alloc > limit {
			check.Status = StatusDegraded
			check.Message = "High memory usage"
		} else {
			check.Status = StatusHealthy
			check.Message = "Memory usage normal"
		}
		return check
	}
}
