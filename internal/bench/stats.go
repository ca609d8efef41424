package bench

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type Number interface {
	constraints.Integer | constraints.Float
}

// Stats summarises a sample. Std is the unbiased sample deviation and is
// zero for fewer than two values.
type Stats[T Number] struct {
	N    int
	Best T
	Mean float64
	Std  float64
}

func Calc[T Number](values []T) Stats[T] {
	s := Stats[T]{N: len(values)}
	if s.N == 0 {
		return s
	}
	xs := toFloats(values)
	s.Best = values[floats.MinIdx(xs)]
	if s.N < 2 {
		s.Mean = xs[0]
		return s
	}
	s.Mean, s.Std = stat.MeanStdDev(xs, nil)
	return s
}

// Gap is the relative distance of v above ref, as a percentage. It is NaN
// when ref is not positive.
func Gap(v, ref int) float64 {
	if ref <= 0 {
		return math.NaN()
	}
	return 100 * float64(v-ref) / float64(ref)
}

func toFloats[T Number](values []T) []float64 {
	xs := make([]float64, len(values))
	for i, v := range values {
		xs[i] = float64(v)
	}
	return xs
}
