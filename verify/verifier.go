package verify

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/threshold"
)

var (
	// ErrInvalidInput is returned for malformed galleries or probes.
	ErrInvalidInput = fault.ErrInvalidInput
	// ErrModelNotTrained is returned when the model has no basis.
	ErrModelNotTrained = fault.ErrModelNotTrained
	// ErrThresholdNotComputed is returned by Verify before ComputeThreshold.
	ErrThresholdNotComputed = fault.ErrThresholdNotComputed
)

// varianceEpsilon is the smallest component variance that is rescaled under
// MetricMahalanobis.
const varianceEpsilon = 1e-12

// Verifier matches probes against a gallery in subspace coordinates.
// It is safe for concurrent use.
type Verifier struct {
	model       *subspace.Model
	calculator  *threshold.Calculator
	metric      distance.Metric
	workers     int
	labels      []string
	projections [][]float64 // gallery coordinates
	scale       []float64   // per-component weights; nil for Euclidean
	space       [][]float64 // gallery coordinates in distance space

	mu           sync.RWMutex
	threshold    float64
	hasThreshold bool
}

// New projects the gallery through model and returns a Verifier without a
// threshold. labels[i] names gallery[i].
func New(model *subspace.Model, gallery [][]float64, labels []string, optFns ...Option) (*Verifier, error) {
	if !model.Trained() {
		return nil, fault.ErrModelNotTrained
	}
	if len(gallery) == 0 {
		return nil, fault.Invalid("gallery is empty")
	}
	if len(labels) != len(gallery) {
		return nil, fault.Invalid("got %d labels for %d gallery vectors", len(labels), len(gallery))
	}

	opts := applyOptions(optFns)

	projections, err := model.Project(gallery)
	if err != nil {
		return nil, err
	}

	var scale []float64
	switch opts.metric {
	case distance.MetricEuclidean:
	case distance.MetricMahalanobis:
		scale = inverseStdDev(model.ExplainedVariance())
	default:
		return nil, fault.Invalid("unsupported metric %s", opts.metric)
	}

	space := make([][]float64, len(projections))
	for i, p := range projections {
		space[i] = distance.ScaleCopy(p, scale)
	}

	return &Verifier{
		model:       model,
		calculator:  opts.calculator,
		metric:      opts.metric,
		workers:     opts.workers,
		labels:      append([]string(nil), labels...),
		projections: projections,
		scale:       scale,
		space:       space,
	}, nil
}

func inverseStdDev(variances []float64) []float64 {
	out := make([]float64, len(variances))
	for i, v := range variances {
		if v > varianceEpsilon {
			out[i] = 1 / math.Sqrt(v)
		} else {
			out[i] = 1
		}
	}
	return out
}

// Model returns the shared subspace model.
func (v *Verifier) Model() *subspace.Model { return v.model }

// Metric returns the configured distance metric.
func (v *Verifier) Metric() distance.Metric { return v.metric }

// Labels returns a copy of the gallery labels.
func (v *Verifier) Labels() []string { return append([]string(nil), v.labels...) }

// Len returns the gallery size.
func (v *Verifier) Len() int { return len(v.labels) }

// Projections returns a copy of the cached gallery coordinates.
func (v *Verifier) Projections() [][]float64 {
	out := make([][]float64, len(v.projections))
	for i, p := range v.projections {
		out[i] = append([]float64(nil), p...)
	}
	return out
}

// ComputeThreshold derives the acceptance threshold from the cached gallery
// coordinates, stores it and returns it. Repeated calls recompute the same
// value.
func (v *Verifier) ComputeThreshold() (float64, error) {
	t, err := v.calculator.Compute(v.space)
	if err != nil {
		return 0, err
	}

	v.mu.Lock()
	v.threshold = t
	v.hasThreshold = true
	v.mu.Unlock()

	return t, nil
}

// SetThreshold installs a previously computed threshold, e.g. one restored
// from a saved bundle.
func (v *Verifier) SetThreshold(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return fault.Invalid("threshold must be a finite value >= 0, got %v", t)
	}

	v.mu.Lock()
	v.threshold = t
	v.hasThreshold = true
	v.mu.Unlock()

	return nil
}

// Calculator returns the threshold calculator.
func (v *Verifier) Calculator() *threshold.Calculator { return v.calculator }

// ThresholdStats returns the distance distribution behind the threshold.
func (v *Verifier) ThresholdStats() (threshold.Stats, error) {
	return v.calculator.Stats(v.space)
}

// Threshold returns the current threshold and whether it has been computed.
func (v *Verifier) Threshold() (float64, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.threshold, v.hasThreshold
}

// Verify matches a single length-D probe against the gallery.
//
// A probe is verified when its nearest distance is below the threshold. An
// exact match (distance 0) is always verified, so a zero threshold still
// accepts enrolled images.
func (v *Verifier) Verify(probe []float64) (Result, error) {
	if v == nil || !v.model.Trained() {
		return Result{}, fault.ErrModelNotTrained
	}

	p, err := v.model.ProjectVector(probe)
	if err != nil {
		return Result{}, err
	}

	t, ok := v.Threshold()
	if !ok {
		return Result{}, fault.ErrThresholdNotComputed
	}

	idx, d := distance.Nearest(distance.ScaleCopy(p, v.scale), v.space)
	if idx < 0 {
		return Result{}, fault.Invalid("no gallery projection is comparable to the probe")
	}

	recon, err := v.model.ReconstructVector(p)
	if err != nil {
		return Result{}, err
	}

	return Result{
		ClosestMatch:   v.labels[idx],
		ClosestIndex:   idx,
		Distance:       d,
		Threshold:      t,
		Verified:       d < t || d == 0,
		Projection:     p,
		Reconstruction: recon,
	}, nil
}

// VerifyBatch verifies every probe independently using a bounded pool of
// workers. A failing probe is recorded in BatchResult.Errors and never stops
// the others. Probes not yet started when ctx is cancelled fail with the
// context error.
func (v *Verifier) VerifyBatch(ctx context.Context, probes [][]float64) BatchResult {
	results := make([]Result, len(probes))
	errs := make([]error, len(probes))

	workers := 1
	if v != nil && v.workers > 0 {
		workers = v.workers
	}

	var g errgroup.Group
	g.SetLimit(workers)

	for i, probe := range probes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			results[i], errs[i] = v.Verify(probe)
			return nil
		})
	}
	_ = g.Wait()

	var out BatchResult
	for i := range probes {
		if errs[i] != nil {
			out.Errors = append(out.Errors, ItemError{Index: i, Err: errs[i]})
			continue
		}
		out.Items = append(out.Items, BatchItem{Index: i, Result: results[i]})
	}
	return out
}
