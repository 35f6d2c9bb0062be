package eigenverify

import (
	"log/slog"

	"github.com/hupe1980/eigenverify/loader"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	loader           *loader.Loader
	workers          *int
}

// Option configures Engine construction and restore behavior.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &eigenverify.BasicMetricsCollector{}
//	eng, _ := eigenverify.New(eigenverify.DefaultConfig(), eigenverify.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
//	fmt.Printf("Verifications: %d, accepted: %d\n", stats.VerifyCount, stats.VerifyAccepted)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := eigenverify.NewJSONLogger(slog.LevelInfo)
//	eng, _ := eigenverify.New(cfg, eigenverify.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithLoader replaces the image loader built from Config.Image. Its size
// must match the configured image size.
func WithLoader(l *loader.Loader) Option {
	return func(o *options) {
		o.loader = l
	}
}

// WithWorkers overrides Config.Workers, e.g. when restoring a bundle on a
// machine with a different core count.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = &n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
