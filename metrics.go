package eigenverify

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the prom
// package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordTrain is called after each training run.
	// samples is the gallery size, components the selected rank.
	RecordTrain(samples, components int, duration time.Duration, err error)

	// RecordThreshold is called after each threshold derivation.
	RecordThreshold(value float64, err error)

	// RecordVerify is called after each single-probe verification.
	// verified and dist are meaningful only when err is nil.
	RecordVerify(verified bool, dist float64, duration time.Duration, err error)

	// RecordBatchVerify is called after each batch verification.
	// count is the number of probes attempted, failed is the number that failed,
	// duration is the total time taken.
	RecordBatchVerify(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(int, int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordThreshold(float64, error)                   {}
func (NoopMetricsCollector) RecordVerify(bool, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordBatchVerify(int, int, time.Duration)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount        atomic.Int64
	TrainErrors       atomic.Int64
	TrainTotalNanos   atomic.Int64
	Components        atomic.Int64
	ThresholdBits     atomic.Uint64
	ThresholdErrors   atomic.Int64
	VerifyCount       atomic.Int64
	VerifyErrors      atomic.Int64
	VerifyAccepted    atomic.Int64
	VerifyTotalNanos  atomic.Int64
	BatchVerifyCount  atomic.Int64
	BatchVerifyItems  atomic.Int64
	BatchVerifyFailed atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(samples, components int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
		return
	}
	b.Components.Store(int64(components))
}

// RecordThreshold implements MetricsCollector.
func (b *BasicMetricsCollector) RecordThreshold(value float64, err error) {
	if err != nil {
		b.ThresholdErrors.Add(1)
		return
	}
	b.ThresholdBits.Store(math.Float64bits(value))
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(verified bool, _ float64, duration time.Duration, err error) {
	b.VerifyCount.Add(1)
	b.VerifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.VerifyErrors.Add(1)
		return
	}
	if verified {
		b.VerifyAccepted.Add(1)
	}
}

// RecordBatchVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatchVerify(count, failed int, _ time.Duration) {
	b.BatchVerifyCount.Add(1)
	b.BatchVerifyItems.Add(int64(count))
	b.BatchVerifyFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainCount:        b.TrainCount.Load(),
		TrainErrors:       b.TrainErrors.Load(),
		TrainAvgNanos:     avg(b.TrainTotalNanos.Load(), b.TrainCount.Load()),
		Components:        b.Components.Load(),
		Threshold:         math.Float64frombits(b.ThresholdBits.Load()),
		ThresholdErrors:   b.ThresholdErrors.Load(),
		VerifyCount:       b.VerifyCount.Load(),
		VerifyErrors:      b.VerifyErrors.Load(),
		VerifyAccepted:    b.VerifyAccepted.Load(),
		VerifyAvgNanos:    avg(b.VerifyTotalNanos.Load(), b.VerifyCount.Load()),
		BatchVerifyCount:  b.BatchVerifyCount.Load(),
		BatchVerifyItems:  b.BatchVerifyItems.Load(),
		BatchVerifyFailed: b.BatchVerifyFailed.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainCount        int64
	TrainErrors       int64
	TrainAvgNanos     int64
	Components        int64
	Threshold         float64
	ThresholdErrors   int64
	VerifyCount       int64
	VerifyErrors      int64
	VerifyAccepted    int64
	VerifyAvgNanos    int64
	BatchVerifyCount  int64
	BatchVerifyItems  int64
	BatchVerifyFailed int64
}
