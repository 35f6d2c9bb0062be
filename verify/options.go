package verify

import (
	"runtime"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/threshold"
)

type options struct {
	calculator *threshold.Calculator
	metric     distance.Metric
	workers    int
}

// Option configures a Verifier.
type Option func(*options)

// WithCalculator sets the threshold calculator.
// If nil is passed, threshold.Default() is used.
func WithCalculator(c *threshold.Calculator) Option {
	return func(o *options) {
		if c == nil {
			c = threshold.Default()
		}
		o.calculator = c
	}
}

// WithMetric sets the distance metric used for nearest-neighbour search and
// threshold derivation.
func WithMetric(m distance.Metric) Option {
	return func(o *options) {
		o.metric = m
	}
}

// WithWorkers bounds the number of probes VerifyBatch processes concurrently.
// Values <= 0 select runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		calculator: threshold.Default(),
		metric:     distance.MetricEuclidean,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.workers <= 0 {
		o.workers = runtime.GOMAXPROCS(0)
	}
	return o
}
