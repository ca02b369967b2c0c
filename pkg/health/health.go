// Package health reports whether the dashboard's collaborators respond:
// the document store, the activity feed and the running layout.
package health

import (
	"context"
	"time"
)

// DefaultTimeout bounds each probe
const DefaultTimeout = 3 * time.Second

// NewChecker creates a Checker; uptime is measured from startedAt
func NewChecker(startedAt time.Time) *Checker {
	return &Checker{
		checks:      make(map[string]CheckFunc),
		readyChecks: make(map[string]CheckFunc),
		liveChecks:  make(map[string]CheckFunc),
		startedAt:   startedAt,
		timeout:     DefaultTimeout,
	}
}

// SetTimeout changes the per-probe deadline
func (c *Checker) SetTimeout(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timeout = d
}

// Register adds a probe to the general health endpoint
func (c *Checker) Register(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// RegisterReadiness adds a probe that must pass before the dashboard is usable
func (c *Checker) RegisterReadiness(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.readyChecks[name] = check
}

// RegisterLiveness adds a probe that fails only when the process is stuck
func (c *Checker) RegisterLiveness(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.liveChecks[name] = check
}

func (c *Checker) Check(ctx context.Context) Response {
	return c.run(ctx, func(c *Checker) map[string]CheckFunc { return c.checks })
}

func (c *Checker) CheckReadiness(ctx context.Context) Response {
	return c.run(ctx, func(c *Checker) map[string]CheckFunc { return c.readyChecks })
}

func (c *Checker) CheckLiveness(ctx context.Context) Response {
	return c.run(ctx, func(c *Checker) map[string]CheckFunc { return c.liveChecks })
}

// run copies the probe set under the lock and runs it without, so a slow
// store round trip does not block registration
func (c *Checker) run(ctx context.Context, pick func(*Checker) map[string]CheckFunc) Response {
	c.mu.RLock()
	src := pick(c)
	probes := make(map[string]CheckFunc, len(src))
	for name, fn := range src {
		probes[name] = fn
	}
	timeout := c.timeout
	c.mu.RUnlock()

	resp := Response{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Checks:    make(map[string]Check, len(probes)),
		Uptime:    time.Since(c.startedAt).Seconds(),
	}

	for name, fn := range probes {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		check := fn(pctx)
		cancel()

		if check.Name == "" {
			check.Name = name
		}
		check.Duration = time.Since(start)
		check.LastChecked = start
		resp.Checks[name] = check

		// Worst status wins
		switch {
		case check.Status == StatusUnhealthy:
			resp.Status = StatusUnhealthy
		case check.Status == StatusDegraded && resp.Status != StatusUnhealthy:
			resp.Status = StatusDegraded
		}
	}
	return resp
}
