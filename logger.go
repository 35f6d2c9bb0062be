package eigenverify

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/hupe1980/eigenverify/threshold"
)

// Logger wraps slog.Logger with eigenverify-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithModel adds a model name field to the logger.
func (l *Logger) WithModel(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("model", name),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogImages logs the outcome of loading a training or probe set.
func (l *Logger) LogImages(ctx context.Context, dir string, loaded, failed int) {
	if failed > 0 {
		l.WarnContext(ctx, "some images could not be loaded",
			"dir", dir,
			"loaded", loaded,
			"failed", failed,
		)
	} else {
		l.DebugContext(ctx, "images loaded",
			"dir", dir,
			"loaded", loaded,
		)
	}
}

// LogTrain logs a training run.
func (l *Logger) LogTrain(ctx context.Context, samples, dimension, components int, varianceExplained float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "training failed",
			"samples", samples,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "training completed",
			"samples", samples,
			"dimension", dimension,
			"components", components,
			"variance_explained", varianceExplained,
		)
	}
}

// LogThreshold logs a threshold derivation.
func (l *Logger) LogThreshold(ctx context.Context, stats threshold.Stats, err error) {
	if err != nil {
		l.ErrorContext(ctx, "threshold computation failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "threshold computed",
			"distances", stats.Count,
			"mean", stats.Mean,
			"std", stats.StdDev,
			"threshold", stats.Threshold,
		)
	}
}

// LogVerify logs a single verification.
func (l *Logger) LogVerify(ctx context.Context, match string, dist, thr float64, verified bool, err error) {
	if err != nil {
		l.ErrorContext(ctx, "verification failed",
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "verification completed",
			"closest_match", match,
			"distance", dist,
			"threshold", thr,
			"verified", verified,
		)
	}
}

// LogBatchVerify logs a batch verification.
func (l *Logger) LogBatchVerify(ctx context.Context, count, failed, accepted int) {
	if failed > 0 {
		l.WarnContext(ctx, "batch verification completed with failures",
			"total", count,
			"failed", failed,
			"accepted", accepted,
		)
	} else {
		l.InfoContext(ctx, "batch verification completed",
			"count", count,
			"accepted", accepted,
		)
	}
}

// LogSave logs a bundle save.
func (l *Logger) LogSave(ctx context.Context, name string, size uint64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bundle saved",
			"name", name,
			"payload_bytes", size,
		)
	}
}

// LogLoad logs a bundle load.
func (l *Logger) LogLoad(ctx context.Context, name string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"name", name,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "bundle loaded",
			"name", name,
		)
	}
}
