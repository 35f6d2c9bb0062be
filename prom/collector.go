package prom

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/eigenverify"
)

const namespace = "eigenverify"

// Collector implements eigenverify.MetricsCollector on top of Prometheus
// counters, gauges and histograms.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	operations *prometheus.CounterVec
	verdicts   *prometheus.CounterVec
	distance   prometheus.Histogram
	components prometheus.Gauge
	samples    prometheus.Gauge
	threshold  prometheus.Gauge
	batchItems *prometheus.CounterVec
}

var _ eigenverify.MetricsCollector = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
// A nil reg leaves the metrics unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of engine operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total engine operations",
		}, []string{"op", "status"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Successful verifications by verdict",
		}, []string{"verdict"}),
		distance: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_distance",
			Help:      "Distance from each probe to its closest gallery image",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}),
		components: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_components",
			Help:      "Rank of the current subspace",
		}),
		samples: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_samples",
			Help:      "Gallery size of the current model",
		}),
		threshold: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "threshold",
			Help:      "Acceptance threshold of the current model",
		}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Probes processed by batch verification",
		}, []string{"status"}),
	}

	if reg != nil {
		for _, m := range c.metrics() {
			if err := reg.Register(m); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// MustNewCollector is like NewCollector but panics on registration errors.
func MustNewCollector(reg prometheus.Registerer) *Collector {
	c, err := NewCollector(reg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Collector) metrics() []prometheus.Collector {
	return []prometheus.Collector{
		c.opLatency,
		c.operations,
		c.verdicts,
		c.distance,
		c.components,
		c.samples,
		c.threshold,
		c.batchItems,
	}
}

// Unregister removes every metric of c from reg.
func (c *Collector) Unregister(reg prometheus.Registerer) error {
	var errs []error
	for _, m := range c.metrics() {
		if !reg.Unregister(m) {
			errs = append(errs, errors.New("prom: metric was not registered"))
		}
	}
	return errors.Join(errs...)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
	c.operations.WithLabelValues(op, s).Inc()
}

// RecordTrain implements eigenverify.MetricsCollector.
func (c *Collector) RecordTrain(samples, components int, d time.Duration, err error) {
	c.observe("train", d, err)
	if err != nil {
		return
	}
	c.samples.Set(float64(samples))
	c.components.Set(float64(components))
}

// RecordThreshold implements eigenverify.MetricsCollector.
func (c *Collector) RecordThreshold(value float64, err error) {
	c.operations.WithLabelValues("threshold", status(err)).Inc()
	if err == nil {
		c.threshold.Set(value)
	}
}

// RecordVerify implements eigenverify.MetricsCollector.
func (c *Collector) RecordVerify(verified bool, dist float64, d time.Duration, err error) {
	c.observe("verify", d, err)
	if err != nil {
		return
	}
	c.distance.Observe(dist)
	if verified {
		c.verdicts.WithLabelValues("accepted").Inc()
	} else {
		c.verdicts.WithLabelValues("rejected").Inc()
	}
}

// RecordBatchVerify implements eigenverify.MetricsCollector.
func (c *Collector) RecordBatchVerify(count, failed int, d time.Duration) {
	c.observe("verify_batch", d, nil)
	c.batchItems.WithLabelValues("success").Add(float64(count - failed))
	c.batchItems.WithLabelValues("error").Add(float64(failed))
}
