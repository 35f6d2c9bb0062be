package eigenverify

import (
	"errors"

	"github.com/hupe1980/eigenverify/internal/fault"
)

var (
	// ErrInvalidInput is returned for malformed configuration, galleries or
	// probes, including dimension mismatches.
	ErrInvalidInput = fault.ErrInvalidInput
	// ErrModelNotTrained is returned when verifying or saving before Train.
	ErrModelNotTrained = fault.ErrModelNotTrained
	// ErrThresholdNotComputed is returned when a verifier has no threshold.
	ErrThresholdNotComputed = fault.ErrThresholdNotComputed
	// ErrInsufficientData is returned when too few samples exist for a statistic.
	ErrInsufficientData = fault.ErrInsufficientData
	// ErrNoImages is returned when a training directory yields no loadable image.
	ErrNoImages = errors.New("no images loaded")
)

// DimensionMismatchError indicates a vector whose length does not match the
// model. errors.Is(err, ErrInvalidInput) holds for it.
type DimensionMismatchError = fault.DimensionMismatchError
