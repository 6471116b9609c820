// Package config defines the experiment configuration, its defaults, yaml
// loading and validation. Every rejectable condition is caught here, before
// a simulation instance is built: a failed run must fail before its first
// step.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Policy names accepted by the engine.
const (
	PolicyGossip   = "gossip"
	PolicyKuramoto = "kuramoto"
)

// Experiment is the complete, immutable configuration of one run.
type Experiment struct {
	Seed int64 `yaml:"seed"`

	// Topology
	Vertices         int     `yaml:"vertices" validate:"required,min=2"`
	Edges            int     `yaml:"edges" validate:"min=0"`
	Clusters         int     `yaml:"clusters" validate:"required,min=1"`
	TargetModularity float64 `yaml:"target_modularity" validate:"min=0,max=1"`

	// Coupling
	Policy              string  `yaml:"policy" validate:"oneof=gossip kuramoto"`
	WeightMode          string  `yaml:"weight_mode" validate:"omitempty,oneof=unweighted degree double-degree"`
	CouplingStrength    float64 `yaml:"coupling_strength" validate:"gt=0"`
	SamplingProbability float64 `yaml:"sampling_probability" validate:"min=0,max=1"`

	// Stopping
	OrderThreshold float64 `yaml:"order_threshold" validate:"gt=0,lte=1"`
	MaxTime        int64   `yaml:"max_time" validate:"required,min=1"`

	// Pacemaker (cluster-Kuramoto only)
	PacemakerProbability float64 `yaml:"pacemaker_probability" validate:"min=0,max=1"`

	// Natural frequencies
	PeriodMean    float64 `yaml:"period_mean" validate:"gt=0"`
	PeriodStdDev  float64 `yaml:"period_stddev"`
	ClusterStdDev float64 `yaml:"cluster_stddev"`
	MaxClockSkew  int64   `yaml:"max_clock_skew" validate:"min=0"`

	// Execution
	Workers int `yaml:"workers" validate:"min=0"`

	// Output
	OutputPath     string `yaml:"output_path"`
	CompressOutput bool   `yaml:"compress_output"`
	StreamAddr     string `yaml:"stream_addr"`
}

// Default returns a runnable gossip experiment on a mid-sized network.
func Default() Experiment {
	return Experiment{
		Seed:                 1,
		Vertices:             200,
		Edges:                800,
		Clusters:             4,
		TargetModularity:     0.5,
		Policy:               PolicyGossip,
		WeightMode:           "degree",
		CouplingStrength:     2,
		OrderThreshold:       0.95,
		MaxTime:              5000,
		PacemakerProbability: 0.5,
		PeriodMean:           100,
		PeriodStdDev:         10,
		ClusterStdDev:        2,
		MaxClockSkew:         50,
		OutputPath:           "run.csv",
	}
}

// Load reads an experiment from a yaml file, layered over Default.
func Load(path string) (Experiment, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks struct tags plus the cross-field rules the tags cannot
// express. Distribution widths must be positive: a non-positive standard
// deviation is a configuration error, not a sampling-time surprise.
func (c *Experiment) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}

	if c.PeriodStdDev <= 0 {
		return fmt.Errorf("%w: period_stddev must be positive, got %g",
			ErrInvalidConfig, c.PeriodStdDev)
	}

	if c.Policy == PolicyKuramoto {
		if c.ClusterStdDev <= 0 {
			return fmt.Errorf("%w: cluster_stddev must be positive for kuramoto, got %g",
				ErrInvalidConfig, c.ClusterStdDev)
		}
		if c.PacemakerProbability <= 0 {
			return fmt.Errorf("%w: pacemaker_probability must be positive for kuramoto, got %g",
				ErrInvalidConfig, c.PacemakerProbability)
		}
	}

	maxEdges := c.Vertices * (c.Vertices - 1) / 2
	if c.Edges > maxEdges {
		return fmt.Errorf("%w: %d edges exceed the maximum %d for %d vertices",
			ErrInvalidConfig, c.Edges, maxEdges, c.Vertices)
	}
	if c.Clusters > c.Vertices {
		return fmt.Errorf("%w: %d clusters for %d vertices",
			ErrInvalidConfig, c.Clusters, c.Vertices)
	}

	return nil
}

func formatValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}
