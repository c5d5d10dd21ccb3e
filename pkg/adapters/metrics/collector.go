// Package metrics exposes property access counters of observed objects to Prometheus.
package metrics

import (
	"sync"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/prometheus/client_golang/prometheus"
)

// Access labels.
const (
	AccessRead  = "read"
	AccessWrite = "write"
	AccessCall  = "call"
)

// Collector counts reads, writes and calls on the objects it is attached to.
// It implements prometheus.Collector and is registered like any other collector.
type Collector struct {
	accesses *prometheus.CounterVec
	observed prometheus.Gauge

	mu       sync.Mutex
	attached map[*observer.ObjectObserver]int
}

// NewCollector creates an unregistered Collector.
func NewCollector() *Collector {
	return &Collector{
		accesses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vigil_property_accesses_total",
				Help: "Total number of intercepted property accesses",
			},
			[]string{"property", "access"},
		),
		observed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vigil_observed_properties",
			Help: "Number of properties currently instrumented by attached observers",
		}),
		attached: make(map[*observer.ObjectObserver]int),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.accesses.Describe(ch)
	c.observed.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.accesses.Collect(ch)
	c.observed.Collect(ch)
}

// Attach starts counting accesses on obs. Attaching the same observer twice is a no-op.
func (c *Collector) Attach(obs *observer.ObjectObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.attached[obs]; ok {
		return
	}

	obs.On(string(domain.EventGet), func(args ...any) (any, error) {
		name := propertyName(args)
		access := AccessRead
		if p, ok := obs.Property(name); ok && p.FunctionValued() {
			access = AccessCall
		}
		c.accesses.WithLabelValues(name, access).Inc()
		return nil, nil
	}, c)
	obs.On(string(domain.EventSet), func(args ...any) (any, error) {
		c.accesses.WithLabelValues(propertyName(args), AccessWrite).Inc()
		return nil, nil
	}, c)

	n := len(obs.Properties())
	c.attached[obs] = n
	c.observed.Add(float64(n))
}

// Detach stops counting on obs. Counters already collected are kept.
func (c *Collector) Detach(obs *observer.ObjectObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.attached[obs]
	if !ok {
		return
	}
	obs.Off("", nil, c)
	delete(c.attached, obs)
	c.observed.Sub(float64(n))
}

func propertyName(args []any) string {
	if len(args) < 2 {
		return ""
	}
	name, _ := args[1].(string)
	return name
}
