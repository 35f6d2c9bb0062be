package verify

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/testutil"
	"github.com/hupe1980/eigenverify/threshold"
)

const dim = 32

func train(t *testing.T, gallery [][]float64) *subspace.Model {
	t.Helper()
	trainer, err := subspace.NewTrainer(subspace.DefaultConfig())
	require.NoError(t, err)
	m, err := trainer.Train(gallery)
	require.NoError(t, err)
	return m
}

func newVerifier(t *testing.T, optFns ...Option) (*Verifier, [][]float64, []string) {
	t.Helper()
	gallery, labels := testutil.NewRNG(4711).Gallery(4, 3, dim, 0.05)
	v, err := New(train(t, gallery), gallery, labels, optFns...)
	require.NoError(t, err)
	return v, gallery, labels
}

func TestNew_Errors(t *testing.T) {
	gallery, labels := testutil.NewRNG(1).Gallery(2, 2, 8, 0.1)
	model := train(t, gallery)

	_, err := New(nil, gallery, labels)
	assert.ErrorIs(t, err, ErrModelNotTrained)

	_, err = New(&subspace.Model{}, gallery, labels)
	assert.ErrorIs(t, err, ErrModelNotTrained)

	_, err = New(model, nil, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(model, gallery, labels[:1])
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(model, [][]float64{{1, 2}}, []string{"x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = New(model, gallery, labels, WithMetric(distance.Metric(42)))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestVerify_ThresholdNotComputed(t *testing.T) {
	v, gallery, _ := newVerifier(t)

	_, ok := v.Threshold()
	assert.False(t, ok)

	_, err := v.Verify(gallery[0])
	assert.ErrorIs(t, err, ErrThresholdNotComputed)
}

func TestVerify_ErrorOrder(t *testing.T) {
	var zero Verifier
	_, err := zero.Verify([]float64{1})
	assert.ErrorIs(t, err, ErrModelNotTrained)

	var nilVerifier *Verifier
	_, err = nilVerifier.Verify([]float64{1})
	assert.ErrorIs(t, err, ErrModelNotTrained)

	// A wrong dimension is reported before the missing threshold.
	v, _, _ := newVerifier(t)
	_, err = v.Verify([]float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestComputeThreshold_Idempotent(t *testing.T) {
	v, _, _ := newVerifier(t)

	a, err := v.ComputeThreshold()
	require.NoError(t, err)
	b, err := v.ComputeThreshold()
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Greater(t, a, 0.0)

	got, ok := v.Threshold()
	assert.True(t, ok)
	assert.Equal(t, a, got)

	stats, err := v.ThresholdStats()
	require.NoError(t, err)
	assert.Equal(t, a, stats.Threshold)
	assert.Equal(t, 12*11, stats.Count)
}

func TestVerify_GalleryProbe(t *testing.T) {
	v, gallery, labels := newVerifier(t)
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	for i, probe := range gallery {
		res, err := v.Verify(probe)
		require.NoError(t, err)

		assert.InDelta(t, 0, res.Distance, 1e-9)
		assert.True(t, res.Verified)
		assert.Equal(t, labels[i], res.ClosestMatch)
		assert.Equal(t, i, res.ClosestIndex)
		assert.Len(t, res.Projection, v.Model().Components())
		assert.Len(t, res.Reconstruction, dim)
	}
}

func TestVerify_Impostor(t *testing.T) {
	v, _, _ := newVerifier(t, WithCalculator(mustCalculator(t, 0, threshold.Pairwise)))
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	// Far along the leading component, well outside the gallery spread.
	impostor := v.Model().Mean()
	for i, b := range v.Model().Basis()[0] {
		impostor[i] += 100 * b
	}

	res, err := v.Verify(impostor)
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.Greater(t, res.Distance, res.Threshold)
	assert.InDelta(t, 100, math.Abs(res.Projection[0]), 1e-6)
}

func TestVerify_TieBreaksToFirstOccurrence(t *testing.T) {
	gallery := testutil.NewRNG(9).UniformVectors(5, 6)
	gallery[3] = append([]float64(nil), gallery[1]...)
	labels := []string{"a", "b", "c", "b-again", "e"}

	v, err := New(train(t, gallery), gallery, labels)
	require.NoError(t, err)
	_, err = v.ComputeThreshold()
	require.NoError(t, err)

	res, err := v.Verify(gallery[1])
	require.NoError(t, err)
	assert.Equal(t, 1, res.ClosestIndex)
	assert.Equal(t, "b", res.ClosestMatch)
}

func TestVerify_IdenticalGallery(t *testing.T) {
	gallery := testutil.Constant(5, 8, 0.5)
	labels := []string{"a", "b", "c", "d", "e"}

	v, err := New(train(t, gallery), gallery, labels)
	require.NoError(t, err)

	th, err := v.ComputeThreshold()
	require.NoError(t, err)
	assert.Equal(t, 0.0, th)

	res, err := v.Verify(gallery[2])
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Distance)
	assert.True(t, res.Verified)
	assert.Equal(t, "a", res.ClosestMatch)
}

func TestVerify_Mahalanobis(t *testing.T) {
	// Axis-aligned gallery: component variances are 2·a²/(N-1).
	gallery := [][]float64{
		{3, 0}, {-3, 0},
		{0, 1}, {0, -1},
	}
	labels := []string{"x+", "x-", "y+", "y-"}

	trainer, err := subspace.NewTrainer(subspace.Config{VarianceThreshold: 1, MinComponents: 2, MaxComponents: 2})
	require.NoError(t, err)
	model, err := trainer.Train(gallery)
	require.NoError(t, err)

	euc, err := New(model, gallery, labels)
	require.NoError(t, err)
	mah, err := New(model, gallery, labels, WithMetric(distance.MetricMahalanobis))
	require.NoError(t, err)
	assert.Equal(t, distance.MetricMahalanobis, mah.Metric())

	for _, v := range []*Verifier{euc, mah} {
		_, err := v.ComputeThreshold()
		require.NoError(t, err)
	}

	probe := []float64{1.2, 0.1}

	re, err := euc.Verify(probe)
	require.NoError(t, err)
	assert.Equal(t, "y+", re.ClosestMatch)

	// Whitened, the high-variance x axis shrinks relative to y and x+ becomes nearest.
	rm, err := mah.Verify(probe)
	require.NoError(t, err)
	assert.Equal(t, "x+", rm.ClosestMatch)

	sx := math.Sqrt(18.0 / 3)
	sy := math.Sqrt(2.0 / 3)
	want := math.Hypot((3-1.2)/sx, 0.1/sy)
	assert.InDelta(t, want, rm.Distance, 1e-9)

	// Projections stay in raw coordinates.
	assert.InDelta(t, 1.2, math.Abs(rm.Projection[0]), 1e-9)
}

func TestVerifyBatch_PartialFailure(t *testing.T) {
	v, gallery, labels := newVerifier(t, WithWorkers(2))
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	probes := [][]float64{gallery[0], {1, 2, 3}, gallery[5]}
	res := v.VerifyBatch(context.Background(), probes)

	require.Len(t, res.Items, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Total())
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, 2, res.Accepted())

	assert.Equal(t, 0, res.Items[0].Index)
	assert.Equal(t, labels[0], res.Items[0].ClosestMatch)
	assert.Equal(t, 2, res.Items[1].Index)
	assert.Equal(t, labels[5], res.Items[1].ClosestMatch)

	assert.Equal(t, 1, res.Errors[0].Index)
	assert.ErrorIs(t, res.Errors[0], ErrInvalidInput)
	assert.Contains(t, res.Errors[0].Error(), "probe 1")
}

func TestVerify_NonFiniteInput(t *testing.T) {
	v, gallery, _ := newVerifier(t)
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		in := append([]float64(nil), gallery[0]...)
		in[3] = bad

		_, err := v.Verify(in)
		assert.ErrorIs(t, err, ErrInvalidInput, "value %v", bad)
	}
}

func TestVerifyBatch_NonFiniteIsolated(t *testing.T) {
	v, gallery, labels := newVerifier(t, WithWorkers(3))
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	inf := append([]float64(nil), gallery[1]...)
	inf[0] = math.Inf(1)

	res := v.VerifyBatch(context.Background(), [][]float64{gallery[2], inf, gallery[4]})

	require.Len(t, res.Items, 2)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 0, res.Items[0].Index)
	assert.Equal(t, labels[2], res.Items[0].ClosestMatch)
	assert.Equal(t, 2, res.Items[1].Index)
	assert.Equal(t, labels[4], res.Items[1].ClosestMatch)
	assert.Equal(t, 1, res.Errors[0].Index)
	assert.ErrorIs(t, res.Errors[0], ErrInvalidInput)
}

func TestVerifyBatch_NoThreshold(t *testing.T) {
	v, gallery, _ := newVerifier(t)

	res := v.VerifyBatch(context.Background(), gallery[:3])
	assert.Empty(t, res.Items)
	require.Len(t, res.Errors, 3)
	for _, e := range res.Errors {
		assert.ErrorIs(t, e.Err, ErrThresholdNotComputed)
	}
}

func TestVerifyBatch_Cancelled(t *testing.T) {
	v, gallery, _ := newVerifier(t)
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := v.VerifyBatch(ctx, gallery)
	assert.Empty(t, res.Items)
	require.Len(t, res.Errors, len(gallery))
	assert.ErrorIs(t, res.Errors[0], context.Canceled)
}

func TestVerifyBatch_Empty(t *testing.T) {
	v, _, _ := newVerifier(t)
	res := v.VerifyBatch(context.Background(), nil)
	assert.Zero(t, res.Total())
}

func TestVerify_Concurrent(t *testing.T) {
	v, gallery, labels := newVerifier(t)
	_, err := v.ComputeThreshold()
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range gallery {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := v.Verify(gallery[i])
			assert.NoError(t, err)
			assert.Equal(t, labels[i], res.ClosestMatch)
		}()
	}
	wg.Wait()
}

func TestAccessorsReturnCopies(t *testing.T) {
	v, _, labels := newVerifier(t)

	got := v.Labels()
	got[0] = "mutated"
	assert.Equal(t, labels[0], v.Labels()[0])
	assert.Equal(t, len(labels), v.Len())

	p := v.Projections()
	p[0][0] = math.Inf(1)
	assert.False(t, math.IsInf(v.Projections()[0][0], 1))
}

func mustCalculator(t *testing.T, multiplier float64, s threshold.Strategy) *threshold.Calculator {
	t.Helper()
	c, err := threshold.NewCalculator(multiplier, s)
	require.NoError(t, err)
	return c
}

func TestSetThreshold(t *testing.T) {
	v, gallery, labels := newVerifier(t)

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, v.SetThreshold(bad), ErrInvalidInput)
	}
	_, ok := v.Threshold()
	assert.False(t, ok)

	require.NoError(t, v.SetThreshold(0.25))
	got, ok := v.Threshold()
	require.True(t, ok)
	assert.Equal(t, 0.25, got)

	res, err := v.Verify(gallery[2])
	require.NoError(t, err)
	assert.Equal(t, labels[2], res.ClosestMatch)
	assert.Equal(t, 0.25, res.Threshold)
}
