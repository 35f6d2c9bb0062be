package distance

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// Euclidean calculates the L2 distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float64) float64 {
	if len(a) == 0 {
		return 0
	}
	return floats.Distance(a, b, 2)
}

// Nearest returns the index of the point closest to query and its Euclidean
// distance. Ties resolve to the lowest index. It returns (-1, +Inf) when
// points is empty or no distance is finite and comparable (NaN coordinates).
func Nearest(query []float64, points [][]float64) (int, float64) {
	best := -1
	bestDist := math.Inf(1)
	for i, p := range points {
		if d := Euclidean(query, p); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best, bestDist
}

// Distances returns the Euclidean distance from query to every point.
func Distances(query []float64, points [][]float64) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = Euclidean(query, p)
	}
	return out
}

// ScaleCopy returns v multiplied element-wise by scale.
// A nil scale returns a plain copy.
func ScaleCopy(v, scale []float64) []float64 {
	dst := make([]float64, len(v))
	if scale == nil {
		copy(dst, v)
		return dst
	}
	floats.MulTo(dst, v, scale)
	return dst
}

// Metric represents the distance metric used to compare subspace coordinates.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricMahalanobis
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "euclidean"
	case MetricMahalanobis:
		return "mahalanobis"
	default:
		return fmt.Sprintf("unknown(%d)", m)
	}
}

// ParseMetric parses a metric name (case-insensitive).
func ParseMetric(s string) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euclidean", "l2":
		return MetricEuclidean, nil
	case "mahalanobis":
		return MetricMahalanobis, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Metric) MarshalText() ([]byte, error) {
	switch m {
	case MetricEuclidean, MetricMahalanobis:
		return []byte(m.String()), nil
	default:
		return nil, fmt.Errorf("unsupported metric: %d", int(m))
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Metric) UnmarshalText(text []byte) error {
	parsed, err := ParseMetric(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
