// Package metrics is a small Prometheus-compatible metrics registry built on
// the standard library. It supports counters and histograms and exposes them
// in the text exposition format on an HTTP endpoint.
package metrics

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
)

// DefaultBuckets are the default histogram buckets, in seconds.
var DefaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}

// Counter is a monotonically increasing counter.
type Counter struct{ val atomic.Int64 }

// Inc adds one.
func (c *Counter) Inc() { c.val.Add(1) }

// Add adds n.
func (c *Counter) Add(n int64) { c.val.Add(n) }

// Value returns the current count.
func (c *Counter) Value() int64 { return c.val.Load() }

// Histogram tracks a distribution of observed values over fixed buckets.
type Histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *Histogram {
	b := make([]float64, len(buckets))
	copy(b, buckets)
	sort.Float64s(b)
	return &Histogram{buckets: b, counts: make([]uint64, len(b))}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, upper := range h.buckets {
		if v <= upper {
			h.counts[i]++
		}
	}
	h.sum += v
	h.count++
}

// Count returns the number of observations.
func (h *Histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

type metric struct {
	name string
	help string
	kind string // "counter" or "histogram"
	ctr  *Counter
	hist *Histogram
}

// Registry holds named metrics and renders them for scraping.
type Registry struct {
	mu      sync.Mutex
	metrics []*metric
	byName  map[string]*metric
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*metric)}
}

// Counter registers (or returns the existing) counter with the given name.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byName[name]; ok {
		return m.ctr
	}
	m := &metric{name: name, help: help, kind: "counter", ctr: &Counter{}}
	r.metrics = append(r.metrics, m)
	r.byName[name] = m
	return m.ctr
}

// Histogram registers (or returns the existing) histogram with the given
// name. Nil buckets use DefaultBuckets.
func (r *Registry) Histogram(name, help string, buckets []float64) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.byName[name]; ok {
		return m.hist
	}
	if buckets == nil {
		buckets = DefaultBuckets
	}
	m := &metric{name: name, help: help, kind: "histogram", hist: newHistogram(buckets)}
	r.metrics = append(r.metrics, m)
	r.byName[name] = m
	return m.hist
}

// Render produces the Prometheus text exposition for all metrics.
func (r *Registry) Render() string {
	r.mu.Lock()
	snapshot := make([]*metric, len(r.metrics))
	copy(snapshot, r.metrics)
	r.mu.Unlock()

	var b strings.Builder
	for _, m := range snapshot {
		fmt.Fprintf(&b, "# HELP %s %s\n", m.name, m.help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", m.name, m.kind)
		switch m.kind {
		case "counter":
			fmt.Fprintf(&b, "%s %d\n", m.name, m.ctr.Value())
		case "histogram":
			m.hist.mu.Lock()
			for i, upper := range m.hist.buckets {
				fmt.Fprintf(&b, "%s_bucket{le=\"%g\"} %d\n", m.name, upper, m.hist.counts[i])
			}
			fmt.Fprintf(&b, "%s_bucket{le=\"+Inf\"} %d\n", m.name, m.hist.count)
			fmt.Fprintf(&b, "%s_sum %g\n", m.name, m.hist.sum)
			fmt.Fprintf(&b, "%s_count %d\n", m.name, m.hist.count)
			m.hist.mu.Unlock()
		}
	}
	return b.String()
}

// Handler serves the registry in Prometheus text format.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(r.Render()))
	})
}
