package eigenverify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	var m BasicMetricsCollector
	boom := errors.New("boom")

	m.RecordTrain(12, 4, 2*time.Millisecond, nil)
	m.RecordTrain(1, 0, 4*time.Millisecond, boom)
	m.RecordThreshold(0.75, nil)
	m.RecordThreshold(0, boom)
	m.RecordVerify(true, 0.1, time.Millisecond, nil)
	m.RecordVerify(false, 2.0, 3*time.Millisecond, nil)
	m.RecordVerify(false, 0, 2*time.Millisecond, boom)
	m.RecordBatchVerify(5, 2, time.Millisecond)

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.TrainCount)
	assert.Equal(t, int64(1), stats.TrainErrors)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), stats.TrainAvgNanos)
	assert.Equal(t, int64(4), stats.Components, "failed runs do not overwrite the rank")
	assert.Equal(t, 0.75, stats.Threshold)
	assert.Equal(t, int64(1), stats.ThresholdErrors)
	assert.Equal(t, int64(3), stats.VerifyCount)
	assert.Equal(t, int64(1), stats.VerifyErrors)
	assert.Equal(t, int64(1), stats.VerifyAccepted)
	assert.Equal(t, (2 * time.Millisecond).Nanoseconds(), stats.VerifyAvgNanos)
	assert.Equal(t, int64(1), stats.BatchVerifyCount)
	assert.Equal(t, int64(5), stats.BatchVerifyItems)
	assert.Equal(t, int64(2), stats.BatchVerifyFailed)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	var m BasicMetricsCollector
	assert.Equal(t, BasicMetricsStats{}, m.GetStats())
}

var (
	_ MetricsCollector = NoopMetricsCollector{}
	_ MetricsCollector = (*BasicMetricsCollector)(nil)
)
