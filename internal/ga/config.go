package ga

import "jobShop/internal/opt"

type Config struct {
	Population     int     `validate:"gte=2"`
	Generations    int     `validate:"gt=0"`
	Elite          int     `validate:"gte=0"`
	TournamentSize int     `validate:"gt=0"`
	CrossoverRate  float64 `validate:"gte=0,lte=1"`
	MutationRate   float64 `validate:"gte=0,lte=1"`
}

func (c Config) Validate() error {
	if err := opt.ValidateStruct(c); err != nil {
		return err
	}
	if c.Elite >= c.Population {
		return opt.Invalidf("Elite must be < Population (got %d, population %d)", c.Elite, c.Population)
	}
	return nil
}

// DefaultConfig has no elitism; set Elite to carry the best individuals over
// unchanged.
func DefaultConfig() Config {
	return Config{
		Population:     100,
		Generations:    300,
		TournamentSize: 3,
		CrossoverRate:  0.9,
		MutationRate:   0.02,
	}
}
