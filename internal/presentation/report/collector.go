// Package report aggregates measurements into an end-of-run summary and
// renders it for the terminal.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/harrow/pkg/ports"
)

// Collector aggregates per-action measurements for the final report.
// It is safe for concurrent use by many virtual users.
type Collector struct {
	mu      sync.Mutex
	order   []string
	actions map[string]*ActionSummary
}

// ActionSummary holds aggregate numbers for one action name.
type ActionSummary struct {
	Name     string
	Count    int64
	Failures int64
	Total    time.Duration
	Max      time.Duration
}

// Mean returns the average duration of the action, or zero when it
// never ran.
func (a *ActionSummary) Mean() time.Duration {
	if a.Count == 0 {
		return 0
	}
	return a.Total / time.Duration(a.Count)
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{actions: make(map[string]*ActionSummary)}
}

// Report records one measurement.
func (c *Collector) Report(_ context.Context, m ports.Measurement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	summary, ok := c.actions[m.Name]
	if !ok {
		summary = &ActionSummary{Name: m.Name}
		c.actions[m.Name] = summary
		c.order = append(c.order, m.Name)
	}
	summary.Count++
	if m.Failed() {
		summary.Failures++
	}
	summary.Total += m.Duration
	if m.Duration > summary.Max {
		summary.Max = m.Duration
	}
}

// Summaries returns the aggregated actions in first-seen order.
func (c *Collector) Summaries() []ActionSummary {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ActionSummary, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, *c.actions[name])
	}
	return out
}

// Failed reports whether any recorded action failed.
func (c *Collector) Failed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, summary := range c.actions {
		if summary.Failures > 0 {
			return true
		}
	}
	return false
}
