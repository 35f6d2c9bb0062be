package verify

import "fmt"

// Result is the outcome of verifying one probe.
type Result struct {
	// ClosestMatch is the label of the nearest gallery image.
	ClosestMatch string `json:"closest_match"`
	// ClosestIndex is its position in the gallery.
	ClosestIndex int `json:"closest_index"`
	// Distance is the minimum distance in subspace coordinates.
	Distance float64 `json:"distance"`
	// Threshold is the acceptance threshold in effect.
	Threshold float64 `json:"threshold"`
	Verified  bool    `json:"verified"`
	// Projection holds the probe's subspace coordinates.
	Projection []float64 `json:"projection,omitempty"`
	// Reconstruction maps Projection back to pixel space.
	Reconstruction []float64 `json:"reconstruction,omitempty"`
}

// BatchItem is a successful verification within a batch.
type BatchItem struct {
	// Index is the probe's position in the batch input.
	Index int `json:"index"`
	Result
}

// ItemError records a failed probe within a batch.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("probe %d: %v", e.Index, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// BatchResult holds partial results of a batch verification. Items and
// Errors are both ordered by probe index.
type BatchResult struct {
	Items  []BatchItem
	Errors []ItemError
}

// Total returns the number of probes in the batch.
func (b BatchResult) Total() int {
	return len(b.Items) + len(b.Errors)
}

// Failed returns the number of probes that could not be verified.
func (b BatchResult) Failed() int {
	return len(b.Errors)
}

// Accepted returns the number of verified probes.
func (b BatchResult) Accepted() int {
	n := 0
	for _, it := range b.Items {
		if it.Verified {
			n++
		}
	}
	return n
}
