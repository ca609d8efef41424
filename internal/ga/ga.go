package ga

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Solver is a generational genetic algorithm over priority permutations.
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
	log := opt.Logger(s.Log, "GA")

	n := inst.Len()
	popSize := s.Cfg.Population

	makePerms := func() [][]int {
		backing := make([]int, popSize*n)
		perms := make([][]int, popSize)
		for i := range perms {
			perms[i] = backing[i*n : (i+1)*n]
		}
		return perms
	}

	// current generation in A, offspring written into B
	permsA, permsB := makePerms(), makePerms()
	scoresA, scoresB := make([]int, popSize), make([]int, popSize)

	best := make([]int, n)
	bestCost := jobshop.Infeasible
	evaluations := 0

	consider := func(p []int, cost int) {
		evaluations++
		if cost < bestCost {
			bestCost = cost
			copy(best, p)
		}
	}

	for i := range permsA {
		jobshop.Identity(permsA[i])
		jobshop.Shuffle(permsA[i], s.Rng)
		scoresA[i] = dec.Cost(permsA[i])
		consider(permsA[i], scoresA[i])
	}

	mark := make([]int, n)
	stamp := 0
	spare := make([]int, n)
	idxs := make([]int, popSize)

	history := make(opt.History, 0, min(s.Cfg.Generations, 1<<16))
	res := opt.Result{Meta: map[string]any{
		"population":  popSize,
		"generations": s.Cfg.Generations,
		"elite":       s.Cfg.Elite,
	}}

	for gen := 0; gen < s.Cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			res.Priorities, res.Evaluations, res.Iterations, res.History = best, evaluations, gen, history
			return opt.Stopped(ctx, dec, res, start)
		}

		write := 0
		if s.Cfg.Elite > 0 {
			for i := range idxs {
				idxs[i] = i
			}
			sort.SliceStable(idxs, func(a, b int) bool {
				return scoresA[idxs[a]] < scoresA[idxs[b]]
			})
			for _, src := range idxs[:s.Cfg.Elite] {
				copy(permsB[write], permsA[src])
				scoresB[write] = scoresA[src]
				write++
			}
		}

		prevBest := bestCost
		for write < popSize {
			p1 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)
			p2 := tournamentSelect(scoresA, s.Cfg.TournamentSize, s.Rng)

			c1 := permsB[write]
			hasSecond := write+1 < popSize
			c2 := spare
			if hasSecond {
				c2 = permsB[write+1]
			}

			if s.Rng.Float64() < s.Cfg.CrossoverRate {
				orderCrossover(permsA[p1], permsA[p2], c1, c2, s.Rng, mark, &stamp)
			} else {
				copy(c1, permsA[p1])
				copy(c2, permsA[p2])
			}
			mutateSwap(c1, s.Cfg.MutationRate, s.Rng)

			scoresB[write] = dec.Cost(c1)
			consider(c1, scoresB[write])
			write++

			// with an odd population the second child has no slot
			if hasSecond {
				mutateSwap(c2, s.Cfg.MutationRate, s.Rng)
				scoresB[write] = dec.Cost(c2)
				consider(c2, scoresB[write])
				write++
			}
		}

		permsA, permsB = permsB, permsA
		scoresA, scoresB = scoresB, scoresA

		if bestCost < prevBest {
			log.WithFields(logrus.Fields{"generation": gen, "makespan": bestCost}).Debug("new best")
		}
		history = append(history, generationSample(gen, scoresA, bestCost))
	}

	res.Priorities = best
	res.Evaluations = evaluations
	res.Iterations = s.Cfg.Generations
	res.History = history
	if bestCost == jobshop.Infeasible {
		res.Priorities = nil
	}
	return opt.Finish(dec, res, start)
}

// generationSample summarises a population. Current is the generation's
// best; the average and worst ignore infeasible individuals.
func generationSample(gen int, scores []int, bestSoFar int) opt.Sample {
	sample := opt.Sample{Iteration: gen, Current: jobshop.Infeasible, Best: bestSoFar}
	sum, feasible := 0.0, 0
	for _, c := range scores {
		sample.Current = min(sample.Current, c)
		if c == jobshop.Infeasible {
			continue
		}
		sum += float64(c)
		sample.Worst = max(sample.Worst, c)
		feasible++
	}
	if feasible > 0 {
		sample.Average = sum / float64(feasible)
	}
	return sample
}
