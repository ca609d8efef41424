package aco

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const tauFloor = 1e-12

// colony holds the pheromone matrix over operations. Row n is the virtual
// start node, so tau has (n+1)*n entries.
type colony struct {
	n    int
	tau  []float64
	eta  []float64
	next []int
	// first operation of every job
	heads []int

	ready   []int
	weights []float64
}

func newColony(n int, eta []float64, next, heads []int, tau0 float64) *colony {
	c := &colony{
		n:       n,
		tau:     make([]float64, (n+1)*n),
		eta:     eta,
		next:    next,
		heads:   heads,
		ready:   make([]int, 0, len(heads)),
		weights: make([]float64, len(heads)),
	}
	for i := range c.tau {
		c.tau[i] = tau0
	}
	return c
}

func (c *colony) at(from, to int) int { return from*c.n + to }

// construct builds one operation sequence into seq. Only operations whose
// job predecessor is already placed are eligible, so every sequence respects
// job order.
func (c *colony) construct(alpha, beta float64, candidateK int, rng *rand.Rand, seq []int) {
	c.ready = append(c.ready[:0], c.heads...)
	prev := c.n

	for pos := 0; pos < c.n; pos++ {
		rem := len(c.ready)
		k := rem
		if candidateK > 0 && candidateK < rem {
			k = candidateK
			for t := 0; t < k; t++ {
				r := t + rng.Intn(rem-t)
				c.ready[t], c.ready[r] = c.ready[r], c.ready[t]
			}
		}

		w := c.weights[:k]
		for i, op := range c.ready[:k] {
			w[i] = pow(c.tau[c.at(prev, op)], alpha) * pow(c.eta[op], beta)
		}
		chosen := roulette(w, rng)

		op := c.ready[chosen]
		seq[pos] = op
		prev = op

		if nxt := c.next[op]; nxt >= 0 {
			c.ready[chosen] = nxt
		} else {
			c.ready[chosen] = c.ready[rem-1]
			c.ready = c.ready[:rem-1]
		}
	}
}

// evaporate scales every trail by 1-rho, keeping a small floor.
func (c *colony) evaporate(rho float64) {
	floats.Scale(1-rho, c.tau)
	for i, t := range c.tau {
		if t < tauFloor {
			c.tau[i] = tauFloor
		}
	}
}

// deposit adds delta along seq, starting from the virtual start node.
func (c *colony) deposit(seq []int, delta float64) {
	prev := c.n
	for _, op := range seq {
		c.tau[c.at(prev, op)] += delta
		prev = op
	}
}

func roulette(w []float64, rng *rand.Rand) int {
	sum := floats.Sum(w)
	if sum <= 0 || math.IsInf(sum, 0) || math.IsNaN(sum) {
		return rng.Intn(len(w))
	}
	r := rng.Float64() * sum
	acc := 0.0
	for i, x := range w {
		acc += x
		if r < acc {
			return i
		}
	}
	return len(w) - 1
}

func pow(x, p float64) float64 {
	switch p {
	case 0:
		return 1
	case 1:
		return x
	case 2:
		return x * x
	}
	return math.Pow(x, p)
}
