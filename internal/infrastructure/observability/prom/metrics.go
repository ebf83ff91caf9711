// Package prom provides a Prometheus-backed implementation of the
// application's Metrics port. Metric families are created lazily on first
// use; the label set of a family is fixed by its first observation.
package prom

import (
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Favour123/paystack-api/internal/application/ports"
)

type family struct {
	counter   *prometheus.CounterVec
	histogram *prometheus.HistogramVec
	gauge     *prometheus.GaugeVec
	labels    []string
}

// core holds the shared registry and metric families. Metrics values
// returned by WithTags share one core.
type core struct {
	mu         sync.Mutex
	namespace  string
	registry   *prometheus.Registry
	counters   map[string]*family
	histograms map[string]*family
	gauges     map[string]*family
}

// Metrics implements ports.Metrics using the Prometheus client library
type Metrics struct {
	core        *core
	defaultTags map[string]string
}

// New creates a Metrics instance with its own registry. The service name
// becomes the namespace prefix for every metric.
func New(serviceName string) *Metrics {
	return &Metrics{
		core: &core{
			namespace:  sanitize(serviceName),
			registry:   prometheus.NewRegistry(),
			counters:   make(map[string]*family),
			histograms: make(map[string]*family),
			gauges:     make(map[string]*family),
		},
		defaultTags: map[string]string{},
	}
}

// Registry exposes the underlying registry for the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.core.registry
}

// IncrementCounter increments a counter metric by 1
func (m *Metrics) IncrementCounter(name string, tags map[string]string) {
	merged := m.merge(tags)
	fam := m.core.counterFamily(name, merged)
	fam.counter.With(labelValues(fam.labels, merged)).Inc()
}

// RecordHistogram records a value in a histogram distribution
func (m *Metrics) RecordHistogram(name string, value float64, tags map[string]string) {
	merged := m.merge(tags)
	fam := m.core.histogramFamily(name, merged)
	fam.histogram.With(labelValues(fam.labels, merged)).Observe(value)
}

// RecordGauge records a point-in-time measurement
func (m *Metrics) RecordGauge(name string, value float64, tags map[string]string) {
	merged := m.merge(tags)
	fam := m.core.gaugeFamily(name, merged)
	fam.gauge.With(labelValues(fam.labels, merged)).Set(value)
}

// WithTags returns a new Metrics instance with additional default tags
func (m *Metrics) WithTags(tags map[string]string) ports.Metrics {
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return &Metrics{core: m.core, defaultTags: merged}
}

func (m *Metrics) merge(tags map[string]string) map[string]string {
	if len(m.defaultTags) == 0 {
		return tags
	}
	merged := make(map[string]string, len(m.defaultTags)+len(tags))
	for k, v := range m.defaultTags {
		merged[k] = v
	}
	for k, v := range tags {
		merged[k] = v
	}
	return merged
}

func (c *core) counterFamily(name string, tags map[string]string) *family {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fam, ok := c.counters[name]; ok {
		return fam
	}

	labels := labelNames(tags)
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.namespace,
		Name:      sanitize(name) + "_total",
		Help:      name,
	}, labels)
	c.registry.MustRegister(vec)

	fam := &family{counter: vec, labels: labels}
	c.counters[name] = fam
	return fam
}

func (c *core) histogramFamily(name string, tags map[string]string) *family {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fam, ok := c.histograms[name]; ok {
		return fam
	}

	labels := labelNames(tags)
	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.namespace,
		Name:      sanitize(name),
		Help:      name,
		Buckets:   prometheus.DefBuckets,
	}, labels)
	c.registry.MustRegister(vec)

	fam := &family{histogram: vec, labels: labels}
	c.histograms[name] = fam
	return fam
}

func (c *core) gaugeFamily(name string, tags map[string]string) *family {
	c.mu.Lock()
	defer c.mu.Unlock()

	if fam, ok := c.gauges[name]; ok {
		return fam
	}

	labels := labelNames(tags)
	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Name:      sanitize(name),
		Help:      name,
	}, labels)
	c.registry.MustRegister(vec)

	fam := &family{gauge: vec, labels: labels}
	c.gauges[name] = fam
	return fam
}

// labelNames returns the sorted tag keys; they become the family's fixed
// label set.
func labelNames(tags map[string]string) []string {
	names := make([]string, 0, len(tags))
	for k := range tags {
		names = append(names, sanitize(k))
	}
	sort.Strings(names)
	return names
}

// labelValues maps tags onto the family's label set; tags the family does
// not know are dropped, missing ones become empty.
func labelValues(labels []string, tags map[string]string) prometheus.Labels {
	values := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		values[l] = ""
	}
	for k, v := range tags {
		key := sanitize(k)
		if _, ok := values[key]; ok {
			values[key] = v
		}
	}
	return values
}

var sanitizer = strings.NewReplacer(".", "_", "-", "_", " ", "_", "/", "_")

func sanitize(name string) string {
	return sanitizer.Replace(name)
}
