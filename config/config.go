// Package config builds a model run from a YAML description.
//
// A minimal file:
//
//	name: sales
//	horizon: 6
//	data:
//	  path: sales.csv
//	  columns: [sales]
//	components:
//	  - kind: polynomial
//	    dimension: 2
//	  - kind: harmonics
//	    start: 12
//	    count: 2
//	couplings:
//	  - source: 1
//	    target: -1
//	    indices: [0]
//	noise:
//	  evolution: 0.1
//	  observation: 1
//
// Target -1 is the observation. Without any coupling into the observation
// every component feeds every observed series.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Component kinds.
const (
	KindFormFree       = "formfree"
	KindPolynomial     = "polynomial"
	KindHarmonics      = "harmonics"
	KindRegression     = "regression"
	KindAutoregression = "autoregression"
)

type Config struct {
	Name string `yaml:"name"`

	// Observed steps; zero uses every observation.
	Observed int `yaml:"observed"`
	Horizon  int `yaml:"horizon"`

	// Diagonal regularisation of singular covariances; zero is strict.
	Jitter float64 `yaml:"jitter"`

	Data       DataConfig        `yaml:"data"`
	Components []ComponentConfig `yaml:"components"`
	Couplings  []CouplingConfig  `yaml:"couplings"`
	Noise      NoiseConfig       `yaml:"noise"`
	Prior      PriorConfig       `yaml:"prior"`
	Error      ErrorConfig       `yaml:"error"`

	dir string
}

// DataConfig names the observations, either a CSV file or inline values of
// a single series.
type DataConfig struct {
	Path    string    `yaml:"path"`
	Columns []string  `yaml:"columns"`
	Values  []float64 `yaml:"values"`
}

type ComponentConfig struct {
	Kind         string    `yaml:"kind"`
	Dimension    int       `yaml:"dimension"`
	Factor       *float64  `yaml:"factor"`
	Start        int       `yaml:"start"`
	Count        int       `yaml:"count"`
	Series       []float64 `yaml:"series"`
	Coefficients []float64 `yaml:"coefficients"`
}

type CouplingConfig struct {
	Source  int   `yaml:"source"`
	Target  int   `yaml:"target"`
	Indices []int `yaml:"indices"`
}

// NoiseConfig holds the evolution and observation covariances, either as a
// multiple of the identity or as a full matrix.
type NoiseConfig struct {
	Evolution         float64     `yaml:"evolution"`
	EvolutionMatrix   [][]float64 `yaml:"evolution_matrix"`
	Observation       float64     `yaml:"observation"`
	ObservationMatrix [][]float64 `yaml:"observation_matrix"`
}

// PriorConfig is the primordial state, a constant mean with independent
// coordinates.
type PriorConfig struct {
	Mean     float64 `yaml:"mean"`
	Variance float64 `yaml:"variance"`
}

// ErrorConfig is the primordial inverse Wishart.
type ErrorConfig struct {
	Scale float64 `yaml:"scale"`
	Shape int     `yaml:"shape"`
}

// DefaultConfig returns a configuration without components or data.
func DefaultConfig() *Config {
	return &Config{
		Noise: NoiseConfig{
			Evolution:   0.1,
			Observation: 1,
		},
		Prior: PriorConfig{
			Variance: 10,
		},
		Error: ErrorConfig{
			Scale: 1,
			Shape: 1,
		},
	}
}

// Load reads and validates the configuration at path. Relative data paths
// resolve against the directory of path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	return cfg, nil
}

// Parse decodes and validates a configuration. Unknown fields are errors.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks the configuration without reading any data.
func (c *Config) Validate() error {
	if c.Observed < 0 || c.Horizon < 0 {
		return invalid("observed %d and horizon %d must not be negative", c.Observed, c.Horizon)
	}
	if c.Jitter < 0 {
		return invalid("negative jitter %g", c.Jitter)
	}
	if (c.Data.Path == "") == (len(c.Data.Values) == 0) {
		return invalid("data needs exactly one of path and values")
	}
	if len(c.Data.Values) > 0 && len(c.Data.Columns) > 0 {
		return invalid("columns only apply to a data path")
	}
	if len(c.Components) == 0 {
		return invalid("no components")
	}
	for i, comp := range c.Components {
		if err := comp.validate(); err != nil {
			return fmt.Errorf("component %d: %w", i, err)
		}
	}
	for i, coupling := range c.Couplings {
		if coupling.Source < 0 || coupling.Source >= len(c.Components) {
			return invalid("coupling %d: unknown source %d", i, coupling.Source)
		}
		if coupling.Target < -1 || coupling.Target >= len(c.Components) || coupling.Target == coupling.Source {
			return invalid("coupling %d: bad target %d", i, coupling.Target)
		}
	}
	if c.Noise.Evolution < 0 || c.Noise.Observation < 0 {
		return invalid("negative noise")
	}
	if c.Prior.Variance < 0 {
		return invalid("negative prior variance")
	}
	if c.Error.Scale <= 0 || c.Error.Shape <= 0 {
		return invalid("error scale and shape must be positive")
	}
	return nil
}

func (c ComponentConfig) validate() error {
	switch c.Kind {
	case KindFormFree, KindPolynomial:
		if c.Dimension <= 0 {
			return invalid("%s needs a positive dimension", c.Kind)
		}
	case KindHarmonics:
		if c.Count <= 0 || c.Start <= 0 {
			return invalid("harmonics needs a positive start period and count")
		}
	case KindRegression:
		if c.Dimension <= 0 || len(c.Series) == 0 {
			return invalid("regression needs a positive dimension and a series")
		}
	case KindAutoregression:
		if len(c.Coefficients) == 0 {
			return invalid("autoregression needs coefficients")
		}
	default:
		return invalid("unknown kind %q", c.Kind)
	}
	return nil
}

func (c ComponentConfig) factor() float64 {
	if c.Factor == nil {
		return 1
	}
	return *c.Factor
}
