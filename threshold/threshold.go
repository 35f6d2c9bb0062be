// Package threshold derives an adaptive acceptance threshold from the spread
// of training projections.
//
// The threshold is mean + multiplier·std over a distance distribution drawn
// from the gallery. Two distributions are supported:
//
//   - Pairwise (default): for every sample, its distance to every other
//     sample, flattened into N·(N-1) values.
//   - Centroid: the distance of every sample to the centroid of all samples.
//
// The standard deviation is the population standard deviation.
package threshold

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
)

// DefaultMultiplier is the number of standard deviations added to the mean.
const DefaultMultiplier = 1.5

var (
	// ErrInvalidInput is returned for ragged projections or a negative multiplier.
	ErrInvalidInput = fault.ErrInvalidInput
	// ErrInsufficientData is returned when fewer than two distances exist.
	ErrInsufficientData = fault.ErrInsufficientData
)

// Strategy selects the distance distribution.
type Strategy int

const (
	Pairwise Strategy = iota
	Centroid
)

func (s Strategy) String() string {
	switch s {
	case Pairwise:
		return "pairwise"
	case Centroid:
		return "centroid"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// ParseStrategy parses a strategy name (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "pairwise":
		return Pairwise, nil
	case "centroid":
		return Centroid, nil
	default:
		return 0, fmt.Errorf("unsupported threshold strategy: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	switch s {
	case Pairwise, Centroid:
		return []byte(s.String()), nil
	default:
		return nil, fmt.Errorf("unsupported threshold strategy: %d", int(s))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Stats describes the distance distribution behind a threshold.
type Stats struct {
	Count     int     `json:"count"`
	Mean      float64 `json:"mean"`
	StdDev    float64 `json:"std_dev"`
	Threshold float64 `json:"threshold"`
}

// Calculator computes thresholds. It is stateless and safe for concurrent use.
type Calculator struct {
	multiplier float64
	strategy   Strategy
}

// NewCalculator creates a Calculator. The multiplier must be non-negative.
func NewCalculator(multiplier float64, strategy Strategy) (*Calculator, error) {
	if !(multiplier >= 0) {
		return nil, fault.Invalid("threshold multiplier must be >= 0, got %v", multiplier)
	}
	if strategy != Pairwise && strategy != Centroid {
		return nil, fault.Invalid("unsupported threshold strategy %d", int(strategy))
	}
	return &Calculator{multiplier: multiplier, strategy: strategy}, nil
}

// Default returns a pairwise Calculator with DefaultMultiplier.
func Default() *Calculator {
	return &Calculator{multiplier: DefaultMultiplier, strategy: Pairwise}
}

// Multiplier returns the configured multiplier.
func (c *Calculator) Multiplier() float64 { return c.multiplier }

// Strategy returns the configured strategy.
func (c *Calculator) Strategy() Strategy { return c.strategy }

// Compute returns mean + multiplier·std of the distance distribution over the
// N×K projections.
func (c *Calculator) Compute(projections [][]float64) (float64, error) {
	s, err := c.Stats(projections)
	if err != nil {
		return 0, err
	}
	return s.Threshold, nil
}

// Stats computes the distance distribution summary and the threshold.
func (c *Calculator) Stats(projections [][]float64) (Stats, error) {
	if len(projections) < 2 {
		return Stats{}, fmt.Errorf("%w: need at least 2 projections, got %d", fault.ErrInsufficientData, len(projections))
	}
	if _, err := fault.CheckRows(projections, -1); err != nil {
		return Stats{}, err
	}

	dists := c.Distances(projections)
	if len(dists) < 2 {
		return Stats{}, fmt.Errorf("%w: need at least 2 distances, got %d", fault.ErrInsufficientData, len(dists))
	}

	mean, std := stat.PopMeanStdDev(dists, nil)
	if math.IsNaN(std) {
		// Rounding can drive the variance of equal distances just below zero.
		std = 0
	}
	t := mean + c.multiplier*std
	if t < 0 {
		t = 0
	}

	return Stats{
		Count:     len(dists),
		Mean:      mean,
		StdDev:    std,
		Threshold: t,
	}, nil
}

// Distances returns the distance distribution for the configured strategy.
// Rows are assumed to share one length.
func (c *Calculator) Distances(projections [][]float64) []float64 {
	if c.strategy == Centroid {
		return centroidDistances(projections)
	}
	return pairwiseDistances(projections)
}

func pairwiseDistances(p [][]float64) []float64 {
	n := len(p)
	if n < 2 {
		return nil
	}
	out := make([]float64, 0, n*(n-1))
	for i := range p {
		for j := range p {
			if i == j {
				continue
			}
			out = append(out, distance.Euclidean(p[i], p[j]))
		}
	}
	return out
}

func centroidDistances(p [][]float64) []float64 {
	if len(p) == 0 {
		return nil
	}
	centroid := make([]float64, len(p[0]))
	for _, row := range p {
		floats.Add(centroid, row)
	}
	floats.Scale(1/float64(len(p)), centroid)
	return distance.Distances(centroid, p)
}
