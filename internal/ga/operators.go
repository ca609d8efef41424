package ga

import "math/rand"

// tournamentSelect draws size individuals with replacement and returns the
// index of the fittest (lowest makespan). Ties keep the earlier draw.
func tournamentSelect(scores []int, size int, rng *rand.Rand) int {
	best := rng.Intn(len(scores))
	for i := 1; i < size; i++ {
		cand := rng.Intn(len(scores))
		if scores[cand] < scores[best] {
			best = cand
		}
	}
	return best
}

// orderCrossover is OX over the inclusive segment [start, end]. c1 keeps
// p1's segment in place and receives p2's remaining genes in p2's order,
// both read and written from end+1 onwards with wrap-around. c2 mirrors it.
// mark must hold len(p1) entries; stamp is bumped once per child.
func orderCrossover(p1, p2, c1, c2 []int, rng *rand.Rand, mark []int, stamp *int) {
	n := len(p1)
	start, end := rng.Intn(n), rng.Intn(n)
	if start > end {
		start, end = end, start
	}
	oxChild(p1, p2, c1, start, end, mark, stamp)
	oxChild(p2, p1, c2, start, end, mark, stamp)
}

func oxChild(keep, fill, child []int, start, end int, mark []int, stamp *int) {
	n := len(keep)
	*stamp++
	cur := *stamp

	for i := start; i <= end; i++ {
		child[i] = keep[i]
		mark[keep[i]] = cur
	}

	pos := (end + 1) % n
	for k := 0; k < n; k++ {
		gene := fill[(end+1+k)%n]
		if mark[gene] == cur {
			continue
		}
		child[pos] = gene
		mark[gene] = cur
		pos = (pos + 1) % n
	}
}

// mutateSwap visits every position and, with probability rate, swaps it with
// a uniformly chosen other position. Returns the number of swaps.
func mutateSwap(p []int, rate float64, rng *rand.Rand) int {
	n := len(p)
	if n < 2 || rate <= 0 {
		return 0
	}
	swaps := 0
	for i := 0; i < n; i++ {
		if rng.Float64() >= rate {
			continue
		}
		j := rng.Intn(n - 1)
		if j >= i {
			j++
		}
		p[i], p[j] = p[j], p[i]
		swaps++
	}
	return swaps
}
