package subspace

// CumulativeVariance returns the running share of total variance explained by
// the first i+1 singular values of a centered matrix with the given number of
// samples. Per-component variance is s²/(samples-1).
//
// When the total variance is zero every entry is 1.
func CumulativeVariance(singular []float64, samples int) []float64 {
	out := make([]float64, len(singular))
	if len(singular) == 0 {
		return out
	}

	denom := float64(samples - 1)
	if denom <= 0 {
		denom = 1
	}

	var total float64
	for i, s := range singular {
		out[i] = s * s / denom
		total += out[i]
	}

	if total == 0 {
		for i := range out {
			out[i] = 1
		}
		return out
	}

	var running float64
	for i, v := range out {
		running += v
		out[i] = running / total
	}
	return out
}

// SelectRank picks the number of components to keep.
//
// r is the smallest 1-based index whose cumulative ratio reaches
// cfg.VarianceThreshold, or the last index if none does. The result is r
// clamped into [MinComponents, min(MaxComponents, available)] and never
// exceeds the number of available components.
func SelectRank(cumulative []float64, cfg Config) int {
	available := len(cumulative)
	if available == 0 {
		return 0
	}

	r := available
	for i, c := range cumulative {
		if c >= cfg.VarianceThreshold {
			r = i + 1
			break
		}
	}

	k := max(cfg.MinComponents, min(r, cfg.MaxComponents, available))
	return min(k, available)
}
