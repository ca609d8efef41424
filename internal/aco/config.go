package aco

import "jobShop/internal/opt"

type Config struct {
	Iterations       int `validate:"gte=0"`
	IterationsPerJob int `validate:"gte=0"`

	Ants int `validate:"gt=0"`

	// Alpha and Beta weight pheromone and the duration heuristic.
	Alpha float64 `validate:"gte=0"`
	Beta  float64 `validate:"gte=0"`

	// Rho is the evaporation rate.
	Rho float64 `validate:"gt=0,lt=1"`
	Q   float64 `validate:"gt=0"`

	Tau0 float64 `validate:"gt=0"`

	// CandidateK limits each step to K randomly drawn ready operations.
	// Zero considers all of them.
	CandidateK int `validate:"gte=0"`
}

func DefaultConfig() Config {
	return Config{
		IterationsPerJob: 20,

		Ants: 20,

		Alpha: 1.0,
		Beta:  2.0,

		Rho: 0.1,
		Q:   100.0,

		Tau0: 1.0,
	}
}

func (c Config) Validate() error {
	if err := opt.ValidateStruct(c); err != nil {
		return err
	}
	if c.Iterations == 0 && c.IterationsPerJob == 0 {
		return opt.Invalidf("Iterations or IterationsPerJob must be > 0")
	}
	return nil
}

func (c Config) MaxIterations(jobs int) int {
	if c.Iterations > 0 {
		return c.Iterations
	}
	return c.IterationsPerJob * jobs
}
