package subspace

import "github.com/hupe1980/eigenverify/internal/fault"

// Config controls rank selection.
type Config struct {
	// VarianceThreshold is the fraction of total variance, in (0, 1], the
	// kept components must explain.
	VarianceThreshold float64 `yaml:"variance_threshold" json:"variance_threshold"`
	// MinComponents is the lower clamp for the selected rank.
	MinComponents int `yaml:"min_components" json:"min_components"`
	// MaxComponents is the upper clamp for the selected rank.
	MaxComponents int `yaml:"max_components" json:"max_components"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		VarianceThreshold: 0.95,
		MinComponents:     2,
		MaxComponents:     50,
	}
}

// Validate reports an ErrInvalidInput for out-of-range fields.
func (c Config) Validate() error {
	if !(c.VarianceThreshold > 0 && c.VarianceThreshold <= 1) {
		return fault.Invalid("variance threshold must be in (0, 1], got %v", c.VarianceThreshold)
	}
	if c.MinComponents < 1 {
		return fault.Invalid("min components must be >= 1, got %d", c.MinComponents)
	}
	if c.MaxComponents < c.MinComponents {
		return fault.Invalid("max components (%d) must be >= min components (%d)", c.MaxComponents, c.MinComponents)
	}
	return nil
}
