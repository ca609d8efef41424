package aco

import (
	"context"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver is an ant colony that builds operation sequences and hands their
// ranks to the decoder as priorities.
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
	next, err := inst.Successors()
	if err != nil {
		return opt.Result{}, err
	}
	log := opt.Logger(s.Log, "ACO")

	n := inst.Len()
	maxIter := s.Cfg.MaxIterations(inst.Jobs)

	// shorter operations look more attractive
	eta := make([]float64, n)
	for i, op := range inst.Ops {
		eta[i] = 1.0 / float64(op.Duration+1)
	}
	var heads []int
	for i, op := range inst.Ops {
		if op.Index == 0 {
			heads = append(heads, i)
		}
	}
	col := newColony(n, eta, next, heads, s.Cfg.Tau0)

	seq := make([]int, n)
	prio := make([]int, n)
	iterBestSeq := make([]int, n)

	var best []int
	bestCost := jobshop.Infeasible
	evals := 0

	history := make(opt.History, 0, min(maxIter, 1<<16))
	res := opt.Result{Meta: map[string]any{
		"ants":        s.Cfg.Ants,
		"alpha":       s.Cfg.Alpha,
		"beta":        s.Cfg.Beta,
		"rho":         s.Cfg.Rho,
		"candidate_k": s.Cfg.CandidateK,
	}}

	for iter := 0; iter < maxIter; iter++ {
		// the first colony always runs so a stopped search still has a schedule
		if err := ctx.Err(); err != nil && iter > 0 {
			res.Priorities, res.Evaluations, res.Iterations, res.History = best, evals, iter, history
			return opt.Stopped(ctx, dec, res, start)
		}

		iterBest := jobshop.Infeasible
		sum, worst := 0.0, 0
		for a := 0; a < s.Cfg.Ants; a++ {
			col.construct(s.Cfg.Alpha, s.Cfg.Beta, s.Cfg.CandidateK, s.Rng, seq)
			jobshop.SequenceToPriorities(seq, prio)
			cost := dec.Cost(prio)
			evals++

			sum += float64(cost)
			worst = max(worst, cost)
			if cost < iterBest {
				iterBest = cost
				copy(iterBestSeq, seq)
			}
			if cost < bestCost {
				bestCost = cost
				best = append(best[:0], prio...)
				log.WithFields(logrus.Fields{"iteration": iter, "makespan": cost}).Debug("new best")
			}
		}

		col.evaporate(s.Cfg.Rho)
		col.deposit(iterBestSeq, s.Cfg.Q/float64(iterBest))

		history = append(history, opt.Sample{
			Iteration: iter,
			Current:   iterBest,
			Best:      bestCost,
			Average:   sum / float64(s.Cfg.Ants),
			Worst:     worst,
		})
	}

	res.Priorities = best
	res.Evaluations = evals
	res.Iterations = maxIter
	res.History = history
	return opt.Finish(dec, res, start)
}
