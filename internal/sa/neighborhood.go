package sa

import "math/rand"

// twoPositions draws i != j uniformly; len(p) must be at least 2.
func twoPositions(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

func neighborSwap(p []int, rng *rand.Rand) {
	if len(p) < 2 {
		return
	}
	i, j := twoPositions(len(p), rng)
	p[i], p[j] = p[j], p[i]
}

// neighborInsert moves the value at one position to another, shifting the
// values in between by one.
func neighborInsert(p []int, rng *rand.Rand) {
	if len(p) < 2 {
		return
	}
	from, to := twoPositions(len(p), rng)
	val := p[from]
	if from < to {
		copy(p[from:to], p[from+1:to+1])
	} else {
		copy(p[to+1:from+1], p[to:from])
	}
	p[to] = val
}
