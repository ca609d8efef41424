package ts

import "jobShop/internal/opt"

type Config struct {
	Iterations       int `validate:"gte=0"`
	IterationsPerJob int `validate:"gte=0"`

	// TabuCapacity bounds the FIFO list of recently applied moves.
	TabuCapacity int `validate:"gt=0"`
	// NeighborSamples is the number of swap moves drawn per iteration.
	NeighborSamples int `validate:"gt=0"`
	// StagnationLimit is the number of iterations without a new best before
	// the search restarts from a random permutation. Zero disables restarts.
	StagnationLimit int `validate:"gte=0"`
	// Aspiration admits a tabu move that would beat the best so far.
	Aspiration bool
}

func DefaultConfig() Config {
	return Config{
		IterationsPerJob: 100,
		TabuCapacity:     20,
		NeighborSamples:  50,
		StagnationLimit:  200,
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
