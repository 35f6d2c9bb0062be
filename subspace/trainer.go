package subspace

import (
	"errors"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/eigenverify/internal/fault"
)

// ErrDecomposition is returned when the singular value decomposition fails to
// converge.
var ErrDecomposition = errors.New("singular value decomposition did not converge")

// Trainer learns Models with a fixed, validated configuration.
type Trainer struct {
	cfg Config
}

// NewTrainer creates a Trainer after validating cfg.
func NewTrainer(cfg Config) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Trainer{cfg: cfg}, nil
}

// Config returns the trainer configuration.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Train learns a Model from the N×D matrix x.
//
// It fails with ErrInvalidInput when N < 2, D < 1 or the rows differ in
// length. The input is not modified.
func (t *Trainer) Train(x [][]float64) (*Model, error) {
	n := len(x)
	if n < 2 {
		return nil, fault.Invalid("need at least 2 training vectors, got %d", n)
	}

	d, err := fault.CheckRows(x, -1)
	if err != nil {
		return nil, err
	}
	if d < 1 {
		return nil, fault.Invalid("training vectors are empty")
	}

	mean := make([]float64, d)
	for _, row := range x {
		floats.Add(mean, row)
	}
	floats.Scale(1/float64(n), mean)

	centered := mat.NewDense(n, d, nil)
	for i, row := range x {
		floats.SubTo(centered.RawRowView(i), row, mean)
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, ErrDecomposition
	}

	values := svd.Values(nil)

	// Columns of v are the right singular vectors (D × min(N, D)).
	var v mat.Dense
	svd.VTo(&v)

	cumulative := CumulativeVariance(values, n)
	k := SelectRank(cumulative, t.cfg)

	basis := mat.NewDense(k, d, nil)
	for i := range k {
		mat.Col(basis.RawRowView(i), i, &v)
	}

	return &Model{
		mean:       mean,
		basis:      basis,
		singular:   append([]float64(nil), values[:k]...),
		cumulative: cumulative,
		samples:    n,
	}, nil
}
