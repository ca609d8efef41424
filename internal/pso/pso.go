package pso

import (
	"context"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver is a random-key particle swarm: each particle holds one real key per
// operation and the key ranks are the priorities.
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

type particle struct {
	pos []float64
	vel []float64

	bestPos  []float64
	bestCost int
}

func (s *Solver) Solve(ctx context.Context, inst *jobshop.Instance) (opt.Result, error) {
	start := time.Now()

	dec, err := opt.Prepare(inst, s.Cfg, s.Rng)
	if err != nil {
		return opt.Result{}, err
	}
	log := opt.Logger(s.Log, "PSO")

	n := inst.Len()
	iters := s.Cfg.MaxIterations(inst.Jobs)

	posMin, posMax := s.Cfg.PosMin, s.Cfg.PosMax
	clampPos := posMin < posMax
	vInit := s.Cfg.VMax
	if vInit == 0 {
		vInit = 0.1
	}

	prio := make([]int, n)
	idx := make([]int, n)
	evaluate := func(keys []float64) int {
		keysToPriorities(keys, prio, idx)
		return dec.Cost(prio)
	}

	gBestPos := make([]float64, n)
	gBest := make([]int, n)
	gBestCost := jobshop.Infeasible

	ps := make([]particle, s.Cfg.Particles)
	for i := range ps {
		p := &ps[i]
		p.pos = make([]float64, n)
		p.vel = make([]float64, n)
		for d := range p.pos {
			if clampPos {
				p.pos[d] = posMin + s.Rng.Float64()*(posMax-posMin)
			} else {
				p.pos[d] = s.Rng.Float64()
			}
			p.vel[d] = (s.Rng.Float64()*2 - 1) * vInit
		}
		p.bestPos = append([]float64(nil), p.pos...)
		p.bestCost = evaluate(p.pos)
		if p.bestCost < gBestCost {
			gBestCost = p.bestCost
			copy(gBestPos, p.pos)
			copy(gBest, prio)
		}
	}
	evals := len(ps)

	w, c1, c2, vMax := s.Cfg.W, s.Cfg.C1, s.Cfg.C2, s.Cfg.VMax

	history := make(opt.History, 0, min(iters, 1<<16))
	res := opt.Result{Meta: map[string]any{
		"particles": s.Cfg.Particles,
		"w":         w,
		"c1":        c1,
		"c2":        c2,
		"vmax":      vMax,
	}}

	for iter := 0; iter < iters; iter++ {
		if err := ctx.Err(); err != nil {
			res.Priorities, res.Evaluations, res.Iterations, res.History = gBest, evals, iter, history
			return opt.Stopped(ctx, dec, res, start)
		}

		iterBest, worst, sum := jobshop.Infeasible, 0, 0.0
		for i := range ps {
			p := &ps[i]
			for d := range p.pos {
				r1, r2 := s.Rng.Float64(), s.Rng.Float64()
				v := w*p.vel[d] +
					c1*r1*(p.bestPos[d]-p.pos[d]) +
					c2*r2*(gBestPos[d]-p.pos[d])
				if vMax > 0 {
					v = min(max(v, -vMax), vMax)
				}
				p.vel[d] = v

				x := p.pos[d] + v
				if clampPos && (x < posMin || x > posMax) {
					x = min(max(x, posMin), posMax)
					p.vel[d] = 0
				}
				p.pos[d] = x
			}

			cost := evaluate(p.pos)
			evals++
			iterBest = min(iterBest, cost)
			worst = max(worst, cost)
			sum += float64(cost)

			if cost < p.bestCost {
				p.bestCost = cost
				copy(p.bestPos, p.pos)
			}
			if cost < gBestCost {
				gBestCost = cost
				copy(gBestPos, p.pos)
				copy(gBest, prio)
				log.WithFields(logrus.Fields{"iteration": iter, "makespan": cost}).Debug("new best")
			}
		}

		history = append(history, opt.Sample{
			Iteration: iter,
			Current:   iterBest,
			Best:      gBestCost,
			Average:   sum / float64(len(ps)),
			Worst:     worst,
		})
	}

	res.Priorities = gBest
	res.Evaluations = evals
	res.Iterations = iters
	res.History = history
	return opt.Finish(dec, res, start)
}
