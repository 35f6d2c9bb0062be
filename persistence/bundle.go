package persistence

import (
	"time"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/threshold"
)

// Bundle is everything needed to rebuild a verifier without retraining.
type Bundle struct {
	Model     subspace.State  `json:"model"`
	Subspace  subspace.Config `json:"subspace"`
	Threshold ThresholdState  `json:"threshold"`
	Metric    distance.Metric `json:"metric"`
	Image     ImageSize       `json:"image"`
	Gallery   [][]float64     `json:"gallery"`
	Labels    []string        `json:"labels"`
	CreatedAt time.Time       `json:"created_at"`
}

// ThresholdState records how the acceptance threshold was derived and, when
// Computed is set, its value.
type ThresholdState struct {
	Value      float64            `json:"value"`
	Computed   bool               `json:"computed"`
	Multiplier float64            `json:"multiplier"`
	Strategy   threshold.Strategy `json:"strategy"`
}

// ImageSize is the pixel grid probes must be resized to.
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Validate checks the bundle's internal consistency. The model state itself
// is validated by subspace.FromState when the bundle is restored.
func (b *Bundle) Validate() error {
	if b == nil {
		return fault.Invalid("nil bundle")
	}
	if len(b.Gallery) == 0 {
		return fault.Invalid("bundle has an empty gallery")
	}
	if len(b.Labels) != len(b.Gallery) {
		return fault.Invalid("bundle has %d labels for %d gallery rows", len(b.Labels), len(b.Gallery))
	}
	if _, err := fault.CheckRows(b.Gallery, len(b.Model.Mean)); err != nil {
		return err
	}
	if b.Threshold.Computed && b.Threshold.Value < 0 {
		return fault.Invalid("bundle threshold must be >= 0, got %v", b.Threshold.Value)
	}
	if b.Image.Width < 0 || b.Image.Height < 0 {
		return fault.Invalid("bundle image size %dx%d", b.Image.Width, b.Image.Height)
	}
	return nil
}
