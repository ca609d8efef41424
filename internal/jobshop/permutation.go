package jobshop

import (
	"math/rand"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPriorities marks priority vectors that are not a permutation of
// the operation indices.
var ErrInvalidPriorities = errors.New("invalid priority assignment")

func ValidatePermutation(perm []int, n int) error {
	if len(perm) != n {
		return errors.Mark(
			errors.Newf("permutation length must be %d (got %d)", n, len(perm)),
			ErrInvalidPriorities,
		)
	}
	seen := make([]bool, n)
	for i, v := range perm {
		if v < 0 || v >= n {
			return errors.Mark(
				errors.Newf("perm[%d]=%d out of range [0,%d)", i, v, n),
				ErrInvalidPriorities,
			)
		}
		if seen[v] {
			return errors.Mark(
				errors.Newf("duplicate value %d in permutation", v),
				ErrInvalidPriorities,
			)
		}
		seen[v] = true
	}
	return nil
}

// Identity fills p with 0, 1, ..., len(p)-1.
func Identity(p []int) {
	for i := range p {
		p[i] = i
	}
}

// Shuffle is an in-place Fisher-Yates shuffle.
func Shuffle(p []int, rng *rand.Rand) {
	for i := len(p) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
}

// RandomPermutation returns a uniformly random permutation of 0..n-1.
func RandomPermutation(n int, rng *rand.Rand) []int {
	p := make([]int, n)
	Identity(p)
	Shuffle(p, rng)
	return p
}

// SequenceToPriorities writes the inverse of seq into prio, so the operation
// listed k-th in seq gets priority k.
func SequenceToPriorities(seq, prio []int) {
	for k, op := range seq {
		prio[op] = k
	}
}
