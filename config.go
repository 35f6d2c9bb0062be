package eigenverify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/eigenverify/distance"
	"github.com/hupe1980/eigenverify/internal/fault"
	"github.com/hupe1980/eigenverify/subspace"
	"github.com/hupe1980/eigenverify/threshold"
)

// Config holds every tunable of an Engine. It is loaded from YAML and
// recorded in saved bundles.
type Config struct {
	Subspace  subspace.Config `yaml:"subspace"`
	Threshold ThresholdConfig `yaml:"threshold"`
	Metric    distance.Metric `yaml:"metric"`
	Image     ImageConfig     `yaml:"image"`
	// Workers bounds batch parallelism; 0 selects GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// ThresholdConfig controls threshold derivation.
type ThresholdConfig struct {
	Multiplier float64            `yaml:"multiplier"`
	Strategy   threshold.Strategy `yaml:"strategy"`
}

// ImageConfig is the grid every image is resized to.
type ImageConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		Subspace: subspace.DefaultConfig(),
		Threshold: ThresholdConfig{
			Multiplier: threshold.DefaultMultiplier,
			Strategy:   threshold.Pairwise,
		},
		Metric: distance.MetricEuclidean,
		Image: ImageConfig{
			Width:  100,
			Height: 100,
		},
	}
}

// LoadConfig reads a YAML file. Keys that are absent keep their defaults;
// unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes YAML on top of DefaultConfig and validates the result.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: parse config: %w", ErrInvalidInput, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports an ErrInvalidInput for any out-of-range field.
func (c Config) Validate() error {
	if err := c.Subspace.Validate(); err != nil {
		return err
	}
	if _, err := c.Calculator(); err != nil {
		return err
	}
	switch c.Metric {
	case distance.MetricEuclidean, distance.MetricMahalanobis:
	default:
		return fault.Invalid("unknown metric %s", c.Metric)
	}
	if c.Image.Width < 1 || c.Image.Height < 1 {
		return fault.Invalid("image size must be positive, got %dx%d", c.Image.Width, c.Image.Height)
	}
	if c.Workers < 0 {
		return fault.Invalid("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// Calculator builds the threshold calculator described by c.
func (c Config) Calculator() (*threshold.Calculator, error) {
	if math.IsNaN(c.Threshold.Multiplier) || math.IsInf(c.Threshold.Multiplier, 0) {
		return nil, fault.Invalid("threshold multiplier must be finite, got %v", c.Threshold.Multiplier)
	}
	return threshold.NewCalculator(c.Threshold.Multiplier, c.Threshold.Strategy)
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
