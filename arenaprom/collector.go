// Package arenaprom exports arena and pool occupancy as Prometheus gauges.
//
// The arena is single-threaded, so a Collector reads it without locking.
// Register it with a registry that is only gathered from the goroutine that
// owns the arena, or gather under the caller's own lock.
package arenaprom

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	arena "github.com/pavanmanishd/framearena"
)

const namespace = "framearena"

// MetricsSource is anything that can report arena markers, usually *arena.Arena.
type MetricsSource interface {
	Metrics() arena.Metrics
}

// PoolSource is anything that can report pool occupancy, usually *arena.Pool[T].
type PoolSource interface {
	Cap() uint32
	InUse() uint32
}

// Option configures a Collector.
type Option func(*Collector)

// WithPool adds a pool to the collector under the given name.
func WithPool(name string, p PoolSource) Option {
	return func(c *Collector) {
		c.pools[name] = p
	}
}

// WithConstLabels attaches labels to every metric the collector exports.
func WithConstLabels(l prometheus.Labels) Option {
	return func(c *Collector) {
		c.constLabels = l
	}
}

// Collector implements prometheus.Collector for one arena.
type Collector struct {
	src         MetricsSource
	pools       map[string]PoolSource
	constLabels prometheus.Labels

	primaryBytes    *prometheus.Desc
	primaryCapacity *prometheus.Desc
	frameBytes      *prometheus.Desc
	frameCapacity   *prometheus.Desc
	poolSlots       *prometheus.Desc
}

// NewCollector returns a collector reading from src.
func NewCollector(src MetricsSource, opts ...Option) *Collector {
	c := &Collector{
		src:   src,
		pools: make(map[string]PoolSource),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.primaryBytes = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "primary", "bytes"),
		"Primary stack bytes by region.",
		[]string{"region"}, c.constLabels)
	c.primaryCapacity = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "primary", "capacity_bytes"),
		"Total size of the primary stack.",
		nil, c.constLabels)
	c.frameBytes = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "frame", "bytes"),
		"Frame stack bytes by region.",
		[]string{"region"}, c.constLabels)
	c.frameCapacity = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "frame", "capacity_bytes"),
		"Total size of the frame stack.",
		nil, c.constLabels)
	c.poolSlots = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "pool", "slots"),
		"Pool slots by state.",
		[]string{"pool", "state"}, c.constLabels)
	return c
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.primaryBytes
	ch <- c.primaryCapacity
	ch <- c.frameBytes
	ch <- c.frameCapacity
	if len(c.pools) > 0 {
		ch <- c.poolSlots
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	m := c.src.Metrics()

	gauge := func(d *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, labels...)
	}

	gauge(c.primaryCapacity, float64(m.PrimarySize))
	gauge(c.primaryBytes, float64(m.GlobalUsed), "global")
	gauge(c.primaryBytes, float64(m.FrontUsed), "front")
	gauge(c.primaryBytes, float64(m.RearUsed), "rear")
	gauge(c.primaryBytes, float64(m.PrimaryFree), "free")

	gauge(c.frameCapacity, float64(m.FrameSize))
	gauge(c.frameBytes, float64(m.FrameFrontUsed), "front")
	gauge(c.frameBytes, float64(m.FrameRearUsed), "rear")
	gauge(c.frameBytes, float64(m.FrameFree), "free")

	names := make([]string, 0, len(c.pools))
	for name := range c.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := c.pools[name]
		used := p.InUse()
		gauge(c.poolSlots, float64(used), name, "used")
		gauge(c.poolSlots, float64(p.Cap()-used), name, "free")
	}
}
