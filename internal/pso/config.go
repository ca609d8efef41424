package pso

import "jobShop/internal/opt"

type Config struct {
	Iterations       int `validate:"gte=0"`
	IterationsPerJob int `validate:"gte=0"`

	Particles int `validate:"gt=0"`

	W  float64 `validate:"gte=0"`
	C1 float64 `validate:"gte=0"`
	C2 float64 `validate:"gte=0"`

	// VMax clamps every velocity component; zero leaves it unclamped.
	VMax float64 `validate:"gte=0"`

	// Keys are kept in [PosMin, PosMax] when PosMin < PosMax. Both zero
	// disables clamping.
	PosMin float64
	PosMax float64
}

func DefaultConfig() Config {
	return Config{
		IterationsPerJob: 30,

		Particles: 30,

		W:  0.729,
		C1: 1.49445,
		C2: 1.49445,

		VMax:   0.25,
		PosMin: 0.0,
		PosMax: 1.0,
	}
}

func (c Config) Validate() error {
	if err := opt.ValidateStruct(c); err != nil {
		return err
	}
	if c.Iterations == 0 && c.IterationsPerJob == 0 {
		return opt.Invalidf("Iterations or IterationsPerJob must be > 0")
	}
	if c.PosMin >= c.PosMax && !(c.PosMin == 0 && c.PosMax == 0) {
		return opt.Invalidf("PosMin must be < PosMax (got %g >= %g)", c.PosMin, c.PosMax)
	}
	return nil
}

func (c Config) MaxIterations(jobs int) int {
	if c.Iterations > 0 {
		return c.Iterations
	}
	return c.IterationsPerJob * jobs
}
