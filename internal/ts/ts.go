package ts

import (
	"context"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver is a sampled-neighbourhood tabu search over priority swaps with
// restarts on stagnation.
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
	log := opt.Logger(s.Log, "TS")

	n := inst.Len()
	maxIter := s.Cfg.MaxIterations(inst.Jobs)

	curr := jobshop.RandomPermutation(n, s.Rng)
	cand := make([]int, n)
	currCost := dec.Cost(curr)
	evals := 1

	best := append([]int(nil), curr...)
	bestCost := currCost

	tabu := newTabuList(s.Cfg.TabuCapacity)
	stagnation, restarts := 0, 0

	history := make(opt.History, 0, min(maxIter, 1<<16))
	res := opt.Result{Meta: map[string]any{
		"tabu_capacity":    s.Cfg.TabuCapacity,
		"neighbor_samples": s.Cfg.NeighborSamples,
		"stagnation_limit": s.Cfg.StagnationLimit,
	}}

	iter := 0
	for ; iter < maxIter; iter++ {
		if err := ctx.Err(); err != nil {
			res.Meta["restarts"] = restarts
			res.Priorities, res.Evaluations, res.Iterations, res.History = best, evals, iter, history
			return opt.Stopped(ctx, dec, res, start)
		}

		chosen, chosenCost, found := move{}, jobshop.Infeasible, false
		for k := 0; k < s.Cfg.NeighborSamples && n > 1; k++ {
			i := s.Rng.Intn(n)
			j := s.Rng.Intn(n - 1)
			if j >= i {
				j++
			}
			m := newMove(i, j)
			if !legal(inst, curr, m) {
				continue
			}
			isTabu := tabu.Contains(m)
			if isTabu && !s.Cfg.Aspiration {
				continue
			}

			copy(cand, curr)
			cand[m.I], cand[m.J] = cand[m.J], cand[m.I]
			cost := dec.Cost(cand)
			evals++

			if isTabu && cost >= bestCost {
				continue
			}
			if !found || cost < chosenCost {
				chosen, chosenCost, found = m, cost, true
			}
		}

		if !found {
			res.Meta["stopped"] = "no_moves"
			log.WithField("iteration", iter).Debug("no admissible move, stopping")
			break
		}

		// the best sampled move is taken even when it is worse than curr
		curr[chosen.I], curr[chosen.J] = curr[chosen.J], curr[chosen.I]
		currCost = chosenCost
		tabu.Push(chosen)

		if currCost < bestCost {
			bestCost = currCost
			copy(best, curr)
			stagnation = 0
			log.WithFields(logrus.Fields{"iteration": iter, "makespan": bestCost}).Debug("new best")
		} else {
			stagnation++
		}
		history.Point(iter, currCost, bestCost)

		if s.Cfg.StagnationLimit > 0 && stagnation >= s.Cfg.StagnationLimit {
			jobshop.Identity(curr)
			jobshop.Shuffle(curr, s.Rng)
			currCost = dec.Cost(curr)
			evals++
			tabu.Clear()
			stagnation = 0
			restarts++
			log.WithFields(logrus.Fields{"iteration": iter, "restarts": restarts}).Debug("restart")

			if currCost < bestCost {
				bestCost = currCost
				copy(best, curr)
			}
		}
	}

	res.Meta["restarts"] = restarts
	res.Priorities = best
	res.Evaluations = evals
	res.Iterations = iter
	res.History = history
	return opt.Finish(dec, res, start)
}

// legal rejects swaps that would leave two operations of the same job with
// the later operation holding the lower priority. Cross-job swaps are always
// legal.
func legal(inst *jobshop.Instance, prio []int, m move) bool {
	a, b := inst.Ops[m.I], inst.Ops[m.J]
	if a.Job != b.Job {
		return true
	}
	// priorities after the swap
	pa, pb := prio[m.J], prio[m.I]
	if a.Index < b.Index {
		return pa < pb
	}
	return pb < pa
}
