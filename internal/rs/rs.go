package rs

import (
	"context"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver samples independent random priority assignments and keeps the best.
// It is the baseline the other strategies are compared against.
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
	log := opt.Logger(s.Log, "RS")

	n := inst.Len()
	perm := make([]int, n)
	var best []int
	bestCost := jobshop.Infeasible

	history := make(opt.History, 0, min(s.Cfg.Trials, 1<<16))
	worst := 0
	sum := 0.0
	feasible := 0

	res := opt.Result{Meta: map[string]any{"trials": s.Cfg.Trials}}

	for trial := 0; trial < s.Cfg.Trials; trial++ {
		// the first trial always runs so a stopped search still has a schedule
		if err := ctx.Err(); err != nil && trial > 0 {
			res.Priorities, res.Evaluations, res.Iterations, res.History = best, trial, trial, history
			return opt.Stopped(ctx, dec, res, start)
		}

		jobshop.Identity(perm)
		jobshop.Shuffle(perm, s.Rng)
		cost := dec.Cost(perm)

		if cost == jobshop.Infeasible {
			log.WithField("trial", trial).Warn("infeasible decode")
		} else {
			feasible++
			sum += float64(cost)
			worst = max(worst, cost)
		}

		// strict improvement keeps the first of equal schedules
		if cost < bestCost {
			bestCost = cost
			best = append(best[:0], perm...)
			log.WithFields(logrus.Fields{"trial": trial, "makespan": cost}).Debug("new best")
		}

		sample := opt.Sample{Iteration: trial, Current: cost, Best: bestCost, Worst: worst}
		if feasible > 0 {
			sample.Average = sum / float64(feasible)
		}
		history = append(history, sample)
	}

	res.Priorities = best
	res.Evaluations = s.Cfg.Trials
	res.Iterations = s.Cfg.Trials
	res.History = history
	return opt.Finish(dec, res, start)
}
