package lmsr

import (
	"github.com/joefazee/marketcore/internal/fixedpoint"
	"github.com/joefazee/marketcore/models"
)

// Config represents the configuration for the LMSR engine module.
type Config struct {
	// MinB is the smallest accepted liquidity parameter. Small b values
	// make prices hypersensitive to individual trades.
	MinB fixedpoint.Value `env:"LMSR_MIN_B"`

	// SearchTolerance is the interval width at which the trade-sizing
	// binary search stops refining.
	SearchTolerance fixedpoint.Value `env:"LMSR_SEARCH_TOLERANCE"`

	// SearchMaxIterations caps the binary search so a single call can
	// never exceed the host's compute budget.
	SearchMaxIterations int `env:"LMSR_SEARCH_MAX_ITERATIONS"`
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	type validation struct {
		ok  bool
		err error
	}

	checks := []validation{
		{c.MinB > 0, models.ErrInvalidBParameter},
		{c.SearchTolerance > 0, models.ErrInvalidTolerance},
		{c.SearchMaxIterations > 0 && c.SearchMaxIterations <= 128, models.ErrInvalidIterations},
	}

	for _, v := range checks {
		if !v.ok {
			return v.err
		}
	}
	return nil
}

// GetDefaultConfig returns the default engine configuration.
func GetDefaultConfig() *Config {
	return &Config{
		MinB:                100 * fixedpoint.Scale,  // 100 tokens
		SearchTolerance:     fixedpoint.Scale / 1000, // 0.001 tokens
		SearchMaxIterations: 50,
	}
}
