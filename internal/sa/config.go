package sa

import "jobShop/internal/opt"

type Neighborhood string

const (
	NeighborhoodSwap   Neighborhood = "swap"
	NeighborhoodInsert Neighborhood = "insert"
)

// Config controls the cooling schedule. The iteration cap is Iterations, or
// IterationsPerJob times the job count when Iterations is zero. An initial
// temperature at or below the final one is accepted and leaves the search
// with its starting solution.
type Config struct {
	Iterations       int `validate:"gte=0"`
	IterationsPerJob int `validate:"gte=0"`

	InitialTemp float64 `validate:"gt=0"`
	FinalTemp   float64 `validate:"gte=0"`
	Alpha       float64 `validate:"gt=0,lt=1"`

	Neighborhood Neighborhood `validate:"oneof=swap insert"`
}

func DefaultConfig() Config {
	return Config{
		IterationsPerJob: 2000,

		InitialTemp: 1000.0,
		FinalTemp:   0.1,
		Alpha:       0.995,

		Neighborhood: NeighborhoodSwap,
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

// MaxIterations resolves the iteration cap for an instance with jobs jobs.
func (c Config) MaxIterations(jobs int) int {
	if c.Iterations > 0 {
		return c.Iterations
	}
	return c.IterationsPerJob * jobs
}
