package subspace

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/eigenverify/internal/fault"
)

// Model is a trained subspace: a mean vector and K orthonormal basis rows of
// length D. The zero value is an untrained model.
type Model struct {
	mean       []float64
	basis      *mat.Dense // K × D
	singular   []float64  // first K singular values
	cumulative []float64  // full cumulative explained-variance curve
	samples    int
}

// Info summarises a trained model.
type Info struct {
	Components        int       `json:"components"`
	Dimension         int       `json:"dimension"`
	Samples           int       `json:"samples"`
	VarianceExplained float64   `json:"variance_explained"`
	SingularValues    []float64 `json:"singular_values"`
}

// Trained reports whether m holds a learned basis.
func (m *Model) Trained() bool {
	return m != nil && m.basis != nil
}

// Components returns K, the number of basis rows.
func (m *Model) Components() int {
	if !m.Trained() {
		return 0
	}
	r, _ := m.basis.Dims()
	return r
}

// Dimension returns D, the length of input vectors.
func (m *Model) Dimension() int {
	if !m.Trained() {
		return 0
	}
	return len(m.mean)
}

// Samples returns the number of training vectors.
func (m *Model) Samples() int {
	if !m.Trained() {
		return 0
	}
	return m.samples
}

// Mean returns a copy of the mean vector.
func (m *Model) Mean() []float64 {
	if !m.Trained() {
		return nil
	}
	return append([]float64(nil), m.mean...)
}

// Basis returns a copy of the basis rows.
func (m *Model) Basis() [][]float64 {
	if !m.Trained() {
		return nil
	}
	return rows(m.basis)
}

// SingularValues returns a copy of the kept singular values.
func (m *Model) SingularValues() []float64 {
	if !m.Trained() {
		return nil
	}
	return append([]float64(nil), m.singular...)
}

// CumulativeVariance returns a copy of the cumulative explained-variance
// curve over all components available before truncation.
func (m *Model) CumulativeVariance() []float64 {
	if !m.Trained() {
		return nil
	}
	return append([]float64(nil), m.cumulative...)
}

// ExplainedVariance returns s²/(N-1) for every kept component.
func (m *Model) ExplainedVariance() []float64 {
	if !m.Trained() {
		return nil
	}
	out := make([]float64, len(m.singular))
	denom := float64(m.samples - 1)
	if denom <= 0 {
		denom = 1
	}
	for i, s := range m.singular {
		out[i] = s * s / denom
	}
	return out
}

// VarianceExplained returns the cumulative variance ratio at K.
func (m *Model) VarianceExplained() float64 {
	k := m.Components()
	if k == 0 || k > len(m.cumulative) {
		return 0
	}
	return m.cumulative[k-1]
}

// Info returns a summary of the model.
func (m *Model) Info() Info {
	return Info{
		Components:        m.Components(),
		Dimension:         m.Dimension(),
		Samples:           m.Samples(),
		VarianceExplained: m.VarianceExplained(),
		SingularValues:    m.SingularValues(),
	}
}

// Project maps the N×D matrix x to N×K subspace coordinates: (x - mean)·basisᵀ.
func (m *Model) Project(x [][]float64) ([][]float64, error) {
	if !m.Trained() {
		return nil, fault.ErrModelNotTrained
	}
	d := m.Dimension()
	if _, err := fault.CheckRows(x, d); err != nil {
		return nil, err
	}
	if err := checkFinite(x); err != nil {
		return nil, err
	}

	centered := mat.NewDense(len(x), d, nil)
	for i, row := range x {
		floats.SubTo(centered.RawRowView(i), row, m.mean)
	}

	var out mat.Dense
	out.Mul(centered, m.basis.T())
	return rows(&out), nil
}

// ProjectVector projects a single length-D vector.
func (m *Model) ProjectVector(v []float64) ([]float64, error) {
	if !m.Trained() {
		return nil, fault.ErrModelNotTrained
	}
	if len(v) != m.Dimension() {
		return nil, fault.Mismatch(m.Dimension(), len(v))
	}
	p, err := m.Project([][]float64{v})
	if err != nil {
		return nil, err
	}
	return p[0], nil
}

// Reconstruct maps N×K coordinates back to N×D vectors: p·basis + mean.
// The result is exact only when K equals the full rank of the training data.
func (m *Model) Reconstruct(p [][]float64) ([][]float64, error) {
	if !m.Trained() {
		return nil, fault.ErrModelNotTrained
	}
	k := m.Components()
	if _, err := fault.CheckRows(p, k); err != nil {
		return nil, err
	}

	coords := mat.NewDense(len(p), k, nil)
	for i, row := range p {
		copy(coords.RawRowView(i), row)
	}

	var out mat.Dense
	out.Mul(coords, m.basis)

	res := rows(&out)
	for _, r := range res {
		floats.Add(r, m.mean)
	}
	return res, nil
}

// ReconstructVector reconstructs a single length-K coordinate vector.
func (m *Model) ReconstructVector(p []float64) ([]float64, error) {
	if !m.Trained() {
		return nil, fault.ErrModelNotTrained
	}
	if len(p) != m.Components() {
		return nil, fault.Mismatch(m.Components(), len(p))
	}
	r, err := m.Reconstruct([][]float64{p})
	if err != nil {
		return nil, err
	}
	return r[0], nil
}

func rows(a *mat.Dense) [][]float64 {
	r, _ := a.Dims()
	out := make([][]float64, r)
	for i := range r {
		out[i] = append([]float64(nil), a.RawRowView(i)...)
	}
	return out
}

// checkFinite rejects rows holding NaN or ±Inf.
func checkFinite(x [][]float64) error {
	for i, row := range x {
		if floats.HasNaN(row) {
			return fault.Invalid("row %d contains NaN", i)
		}
		for _, v := range row {
			if math.IsInf(v, 0) {
				return fault.Invalid("row %d contains an infinite value", i)
			}
		}
	}
	return nil
}
