package rs

import "jobShop/internal/opt"

type Config struct {
	Trials int `validate:"gt=0"`
}

func DefaultConfig() Config {
	return Config{Trials: 10000}
}

func (c Config) Validate() error {
	return opt.ValidateStruct(c)
}
