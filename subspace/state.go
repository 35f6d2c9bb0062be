package subspace

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hupe1980/eigenverify/internal/fault"
)

// State is the serializable form of a Model.
type State struct {
	Mean               []float64   `json:"mean"`
	Basis              [][]float64 `json:"basis"`
	SingularValues     []float64   `json:"singular_values"`
	CumulativeVariance []float64   `json:"cumulative_variance"`
	Samples            int         `json:"samples"`
}

// State exports the full model state. The returned slices are copies.
func (m *Model) State() State {
	return State{
		Mean:               m.Mean(),
		Basis:              m.Basis(),
		SingularValues:     m.SingularValues(),
		CumulativeVariance: m.CumulativeVariance(),
		Samples:            m.Samples(),
	}
}

// FromState rebuilds a Model from an exported State.
func FromState(s State) (*Model, error) {
	d := len(s.Mean)
	if d == 0 {
		return nil, fault.Invalid("state has an empty mean")
	}
	k := len(s.Basis)
	if k == 0 {
		return nil, fault.Invalid("state has an empty basis")
	}
	if _, err := fault.CheckRows(s.Basis, d); err != nil {
		return nil, err
	}
	if len(s.SingularValues) != k {
		return nil, fault.Invalid("state has %d singular values for %d components", len(s.SingularValues), k)
	}
	if len(s.CumulativeVariance) < k {
		return nil, fault.Invalid("state cumulative variance shorter than %d components", k)
	}
	if s.Samples < 2 {
		return nil, fault.Invalid("state sample count must be >= 2, got %d", s.Samples)
	}

	basis := mat.NewDense(k, d, nil)
	for i, row := range s.Basis {
		copy(basis.RawRowView(i), row)
	}

	return &Model{
		mean:       append([]float64(nil), s.Mean...),
		basis:      basis,
		singular:   append([]float64(nil), s.SingularValues...),
		cumulative: append([]float64(nil), s.CumulativeVariance...),
		samples:    s.Samples,
	}, nil
}
