// Package distance provides the vector distances used for face verification.
//
// All functions operate on float64 slices and delegate the arithmetic to
// gonum's floats package.
//
// # Supported Metrics
//
//   - MetricEuclidean: L2 distance between subspace coordinates (default)
//   - MetricMahalanobis: L2 distance after scaling every coordinate by the
//     inverse standard deviation of its component
//
// # Usage
//
//	d := distance.Euclidean(a, b)
//	idx, d := distance.Nearest(query, gallery)
package distance
