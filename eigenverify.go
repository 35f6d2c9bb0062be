package eigenverify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hupe1980/eigenverify/blobstore"
	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
	"github.com/hupe1980/eigenverify/loader"
	"github.com/hupe1980/eigenverify/persistence"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/threshold"
	"github.com/hupe1980/eigenverify/verify"
)

// Engine owns the configuration, the current model and its verifier.
type Engine struct {
	cfg     Config
	logger  *Logger
	metrics MetricsCollector
	loader  *loader.Loader

	mu    sync.RWMutex
	state *trained
}

// trained is an immutable snapshot swapped in by Train and Restore.
type trained struct {
	verifier  *verify.Verifier
	gallery   [][]float64
	createdAt time.Time
}

// TrainReport summarises a training run.
type TrainReport struct {
	Samples           int              `json:"samples"`
	Dimension         int              `json:"dimension"`
	Components        int              `json:"components"`
	VarianceExplained float64          `json:"variance_explained"`
	Threshold         threshold.Stats  `json:"threshold"`
	Failures          []loader.Failure `json:"-"`
	Duration          time.Duration    `json:"duration"`
}

// Info describes the current state of an Engine.
type Info struct {
	Trained           bool            `json:"trained"`
	Model             subspace.Info   `json:"model"`
	ExplainedVariance []float64       `json:"explained_variance,omitempty"`
	GallerySize       int             `json:"gallery_size"`
	Threshold         float64         `json:"threshold"`
	ThresholdComputed bool            `json:"threshold_computed"`
	Metric            distance.Metric `json:"metric"`
	Image             ImageConfig     `json:"image"`
	CreatedAt         time.Time       `json:"created_at"`
}

// New validates cfg and returns an untrained Engine.
func New(cfg Config, optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	if o.workers != nil {
		cfg.Workers = *o.workers
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	l := o.loader
	if l == nil {
		var err error
		l, err = loader.New(cfg.Image.Width, cfg.Image.Height, loader.WithWorkers(cfg.Workers))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	} else if l.Width() != cfg.Image.Width || l.Height() != cfg.Image.Height {
		return nil, fault.Invalid("loader produces %dx%d images, config wants %dx%d",
			l.Width(), l.Height(), cfg.Image.Width, cfg.Image.Height)
	}

	return &Engine{
		cfg:     cfg,
		logger:  o.logger,
		metrics: o.metricsCollector,
		loader:  l,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Loader returns the image loader.
func (e *Engine) Loader() *loader.Loader { return e.loader }

// Logger returns the engine logger.
func (e *Engine) Logger() *Logger { return e.logger }

// Verifier returns the current verifier, or nil before Train.
func (e *Engine) Verifier() *verify.Verifier {
	if s := e.current(); s != nil {
		return s.verifier
	}
	return nil
}

func (e *Engine) current() *trained {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) swap(s *trained) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Engine) verifierOptions(calc *threshold.Calculator) []verify.Option {
	return []verify.Option{
		verify.WithCalculator(calc),
		verify.WithMetric(e.cfg.Metric),
		verify.WithWorkers(e.cfg.Workers),
	}
}

// Train learns a new subspace from gallery, computes its threshold and
// replaces the current model. On error the previous model stays in place.
func (e *Engine) Train(ctx context.Context, gallery [][]float64, labels []string) (TrainReport, error) {
	start := time.Now()
	report, err := e.train(ctx, gallery, labels)
	report.Duration = time.Since(start)
	e.metrics.RecordTrain(report.Samples, report.Components, report.Duration, err)
	return report, err
}

func (e *Engine) train(ctx context.Context, gallery [][]float64, labels []string) (TrainReport, error) {
	report := TrainReport{Samples: len(gallery)}
	if len(gallery) > 0 {
		report.Dimension = len(gallery[0])
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	if report.Samples > 0 && report.Dimension != e.loader.Dimension() {
		return report, fmt.Errorf("gallery must hold %dx%d images: %w",
			e.cfg.Image.Width, e.cfg.Image.Height, fault.Mismatch(e.loader.Dimension(), report.Dimension))
	}

	trainer, err := subspace.NewTrainer(e.cfg.Subspace)
	if err != nil {
		return report, err
	}
	model, err := trainer.Train(gallery)
	e.logger.LogTrain(ctx, report.Samples, report.Dimension, model.Components(), model.VarianceExplained(), err)
	if err != nil {
		return report, err
	}
	report.Components = model.Components()
	report.VarianceExplained = model.VarianceExplained()

	calc, err := e.cfg.Calculator()
	if err != nil {
		return report, err
	}
	v, err := verify.New(model, gallery, labels, e.verifierOptions(calc)...)
	if err != nil {
		return report, err
	}

	stats, err := v.ThresholdStats()
	if err == nil {
		err = v.SetThreshold(stats.Threshold)
	}
	e.logger.LogThreshold(ctx, stats, err)
	e.metrics.RecordThreshold(stats.Threshold, err)
	if err != nil {
		return report, err
	}
	report.Threshold = stats

	e.swap(&trained{
		verifier:  v,
		gallery:   cloneRows(gallery),
		createdAt: time.Now().UTC(),
	})
	return report, nil
}

// TrainFiles loads the named images from dir (every image in dir when names
// is empty) and trains on those that load. Files that fail are reported in
// TrainReport.Failures and skipped.
func (e *Engine) TrainFiles(ctx context.Context, dir string, names []string) (TrainReport, error) {
	res, err := e.loader.LoadAll(ctx, dir, names)
	if err != nil {
		return TrainReport{}, err
	}
	e.logger.LogImages(ctx, dir, len(res.Vectors), len(res.Failures))
	for _, f := range res.Failures {
		e.logger.WarnContext(ctx, "skipping image", "path", f.Path, "error", f.Err)
	}
	if len(res.Vectors) == 0 {
		return TrainReport{Failures: res.Failures}, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}

	report, err := e.Train(ctx, res.Vectors, res.Labels)
	report.Failures = res.Failures
	return report, err
}

// Verify checks a single probe vector against the current model.
func (e *Engine) Verify(ctx context.Context, probe []float64) (verify.Result, error) {
	start := time.Now()
	s := e.current()
	if s == nil {
		e.metrics.RecordVerify(false, 0, time.Since(start), ErrModelNotTrained)
		e.logger.LogVerify(ctx, "", 0, 0, false, ErrModelNotTrained)
		return verify.Result{}, ErrModelNotTrained
	}

	res, err := s.verifier.Verify(probe)
	e.metrics.RecordVerify(res.Verified, res.Distance, time.Since(start), err)
	e.logger.LogVerify(ctx, res.ClosestMatch, res.Distance, res.Threshold, res.Verified, err)
	return res, err
}

// VerifyFile loads and verifies a single image.
func (e *Engine) VerifyFile(ctx context.Context, path string) (verify.Result, error) {
	probe, err := e.loader.Load(path)
	if err != nil {
		return verify.Result{}, err
	}
	return e.Verify(ctx, probe)
}

// VerifyBatch verifies every probe independently. A failing probe is
// reported in BatchResult.Errors and never affects the others.
func (e *Engine) VerifyBatch(ctx context.Context, probes [][]float64) verify.BatchResult {
	start := time.Now()

	var res verify.BatchResult
	if s := e.current(); s != nil {
		res = s.verifier.VerifyBatch(ctx, probes)
	} else {
		for i := range probes {
			res.Errors = append(res.Errors, verify.ItemError{Index: i, Err: ErrModelNotTrained})
		}
	}

	e.metrics.RecordBatchVerify(res.Total(), res.Failed(), time.Since(start))
	e.logger.LogBatchVerify(ctx, res.Total(), res.Failed(), res.Accepted())
	return res
}

// VerifyFiles loads and verifies every path. Load failures become item errors
// at the path's index, like any other per-probe failure.
func (e *Engine) VerifyFiles(ctx context.Context, paths []string) verify.BatchResult {
	var (
		probes  [][]float64
		indices []int
		loadErr []verify.ItemError
	)
	for i, p := range paths {
		v, err := e.loader.Load(p)
		if err != nil {
			loadErr = append(loadErr, verify.ItemError{Index: i, Err: err})
			continue
		}
		probes = append(probes, v)
		indices = append(indices, i)
	}

	res := e.VerifyBatch(ctx, probes)
	for k := range res.Items {
		res.Items[k].Index = indices[res.Items[k].Index]
	}
	for k := range res.Errors {
		res.Errors[k].Index = indices[res.Errors[k].Index]
	}
	res.Errors = mergeErrors(loadErr, res.Errors)
	return res
}

// mergeErrors merges two index-ordered error lists.
func mergeErrors(a, b []verify.ItemError) []verify.ItemError {
	if len(a) == 0 {
		return b
	}
	out := make([]verify.ItemError, 0, len(a)+len(b))
	for len(a) > 0 && len(b) > 0 {
		if a[0].Index < b[0].Index {
			out, a = append(out, a[0]), a[1:]
		} else {
			out, b = append(out, b[0]), b[1:]
		}
	}
	out = append(out, a...)
	return append(out, b...)
}

// Info describes the current model.
func (e *Engine) Info() Info {
	info := Info{
		Metric: e.cfg.Metric,
		Image:  e.cfg.Image,
	}
	s := e.current()
	if s == nil {
		return info
	}

	m := s.verifier.Model()
	info.Trained = true
	info.Model = m.Info()
	info.ExplainedVariance = m.ExplainedVariance()
	info.GallerySize = s.verifier.Len()
	info.Threshold, info.ThresholdComputed = s.verifier.Threshold()
	info.CreatedAt = s.createdAt
	return info
}

// Bundle exports the current model, gallery and configuration.
func (e *Engine) Bundle() (*persistence.Bundle, error) {
	s := e.current()
	if s == nil {
		return nil, ErrModelNotTrained
	}

	v := s.verifier
	t, ok := v.Threshold()
	return &persistence.Bundle{
		Model:    v.Model().State(),
		Subspace: e.cfg.Subspace,
		Threshold: persistence.ThresholdState{
			Value:      t,
			Computed:   ok,
			Multiplier: v.Calculator().Multiplier(),
			Strategy:   v.Calculator().Strategy(),
		},
		Metric:    v.Metric(),
		Image:     persistence.ImageSize{Width: e.cfg.Image.Width, Height: e.cfg.Image.Height},
		Gallery:   cloneRows(s.gallery),
		Labels:    v.Labels(),
		CreatedAt: s.createdAt,
	}, nil
}

// Restore rebuilds an Engine from a bundle without retraining. A bundle
// without a stored threshold has it recomputed from the gallery.
func Restore(b *persistence.Bundle, optFns ...Option) (*Engine, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	cfg.Subspace = b.Subspace
	cfg.Threshold = ThresholdConfig{Multiplier: b.Threshold.Multiplier, Strategy: b.Threshold.Strategy}
	cfg.Metric = b.Metric
	if b.Image.Width > 0 && b.Image.Height > 0 {
		cfg.Image = ImageConfig{Width: b.Image.Width, Height: b.Image.Height}
	}

	e, err := New(cfg, optFns...)
	if err != nil {
		return nil, err
	}

	model, err := subspace.FromState(b.Model)
	if err != nil {
		return nil, err
	}
	if model.Dimension() != e.loader.Dimension() {
		return nil, fault.Invalid("model dimension %d does not match %dx%d images",
			model.Dimension(), cfg.Image.Width, cfg.Image.Height)
	}

	calc, err := cfg.Calculator()
	if err != nil {
		return nil, err
	}
	v, err := verify.New(model, b.Gallery, b.Labels, e.verifierOptions(calc)...)
	if err != nil {
		return nil, err
	}
	if b.Threshold.Computed {
		err = v.SetThreshold(b.Threshold.Value)
	} else {
		_, err = v.ComputeThreshold()
	}
	if err != nil {
		return nil, err
	}

	e.swap(&trained{
		verifier:  v,
		gallery:   cloneRows(b.Gallery),
		createdAt: b.CreatedAt,
	})
	return e, nil
}

// Save writes the current model to store under name.
func (e *Engine) Save(ctx context.Context, store blobstore.Store, name string, opts ...persistence.Option) error {
	b, err := e.Bundle()
	if err != nil {
		e.logger.LogSave(ctx, name, 0, err)
		return err
	}
	h, err := persistence.Save(ctx, store, name, b, opts...)
	e.logger.LogSave(ctx, name, h.PayloadLen, err)
	return err
}

// Load reads a bundle from store and restores an Engine from it.
func Load(ctx context.Context, store blobstore.Store, name string, optFns ...Option) (*Engine, error) {
	logger := applyOptions(optFns).logger

	b, _, err := persistence.Load(ctx, store, name)
	if err != nil {
		logger.LogLoad(ctx, name, err)
		return nil, err
	}
	e, err := Restore(b, optFns...)
	logger.LogLoad(ctx, name, err)
	return e, err
}

func cloneRows(m [][]float64) [][]float64 {
	out := make([][]float64, len(m))
	for i, r := range m {
		out[i] = append([]float64(nil), r...)
	}
	return out
}
