package sa

import (
	"context"
	"math"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver walks the priority space with a geometric cooling schedule and the
// Metropolis acceptance rule.
type Solver struct {
	Cfg Config
	Rng *rand.Rand
	Log logrus.FieldLogger
}

func New(cfg Config, rng *rand.Rand) (*Solver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, errors.WithStack(opt.ErrNilRand)
	}
	return &Solver{Cfg: cfg, Rng: rng}, nil
}

func (s *Solver) Solve(ctx context.Context, inst *jobshop.Instance) (opt.Result, error) {
	start := time.Now()

	dec, err := opt.Prepare(inst, s.Cfg, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	log := opt.Logger(s.Log, "SA")

	n := inst.Len()
	maxIter := s.Cfg.MaxIterations(inst.Jobs)

	neighbor := neighborSwap
	if s.Cfg.Neighborhood == NeighborhoodInsert {
		neighbor = neighborInsert
	}

	curr := jobshop.RandomPermutation(n, s.Rng)
	cand := make([]int, n)
	currCost := dec.Cost(curr)

	best := append([]int(nil), curr...)
	bestCost := currCost
	evals := 1
	accepted := 0

	history := make(opt.History, 0, min(maxIter, 1<<16))
	res := opt.Result{Meta: map[string]any{
		"initial_temp": s.Cfg.InitialTemp,
		"final_temp":   s.Cfg.FinalTemp,
		"alpha":        s.Cfg.Alpha,
		"neighborhood": string(s.Cfg.Neighborhood),
	}}

	T := s.Cfg.InitialTemp
	iter := 0
	for ; iter < maxIter && T > s.Cfg.FinalTemp; iter++ {
		if err := ctx.Err(); err != nil {
			res.Meta["T"] = T
			res.Priorities, res.Evaluations, res.Iterations, res.History = best, evals, iter, history
			return opt.Stopped(ctx, dec, res, start)
		}

		copy(cand, curr)
		neighbor(cand, s.Rng)
		candCost := dec.Cost(cand)
		evals++

		if accept(candCost-currCost, T, s.Rng) {
			curr, cand = cand, curr
			currCost = candCost
			accepted++
			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
				log.WithFields(logrus.Fields{"iteration": iter, "makespan": bestCost, "T": T}).Debug("new best")
			}
		}

		history.Point(iter, currCost, bestCost)
		T *= s.Cfg.Alpha
	}

	res.Meta["T"] = T
	res.Meta["accepted"] = accepted
	res.Priorities = best
	res.Evaluations = evals
	res.Iterations = iter
	res.History = history
	return opt.Finish(dec, res, start)
}

// accept applies the Metropolis rule: improvements always pass, a worse
// neighbour passes with probability exp(-delta/T).
func accept(delta int, T float64, rng *rand.Rand) bool {
	if delta < 0 {
		return true
	}
	return rng.Float64() < math.Exp(-float64(delta)/T)
}
