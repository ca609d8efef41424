package bench

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	outcomeOK      = "ok"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

// Algorithm builds a fresh solver per run. Solvers are not shared between
// runs, so a factory must not hand out the same random source twice.
type Algorithm struct {
	Name    string
	Factory func(seed int64) (opt.Optimizer, error)
}

// Case names the instance of a batch. When Instance is nil a Taillard-style
// instance is generated from the remaining fields.
type Case struct {
	Instance *jobshop.Instance
	// Optimum is the best known makespan, 0 when unknown.
	Optimum int

	Jobs         int
	Machines     int
	MinTime      int
	MaxTime      int
	InstanceSeed int64
}

func (c Case) instance() (*jobshop.Instance, error) {
	if c.Instance != nil {
		return c.Instance, c.Instance.Validate()
	}
	if c.Jobs <= 0 || c.Machines <= 0 {
		return nil, errors.Newf("random case needs jobs and machines > 0 (got %dx%d)", c.Jobs, c.Machines)
	}
	lo, hi := c.MinTime, c.MaxTime
	if lo <= 0 {
		lo = 1
	}
	if hi < lo {
		hi = max(lo, 99)
	}
	inst := jobshop.RandomInstance(c.Jobs, c.Machines, lo, hi, rand.New(rand.NewSource(c.InstanceSeed)))
	inst.Name = fmt.Sprintf("rand_%dx%d_s%d", c.Jobs, c.Machines, c.InstanceSeed)
	return inst, nil
}

type Record struct {
	Batch    string
	Algo     string
	Instance string
	Jobs     int
	Machines int
	Runs     int
	Timeouts int

	LowerBound int
	Optimum    int

	TimeBestMs float64
	TimeMeanMs float64
	TimeStdMs  float64

	MakespanBest int
	MakespanMean float64
	MakespanStd  float64

	// Gap of MakespanBest over Optimum, or over LowerBound when the optimum
	// is unknown, in percent.
	Gap float64

	EvaluationsMean float64
}

// Batch is the outcome of RunCase: the aggregate record and every run's
// result in seed order.
type Batch struct {
	Record   Record
	Instance *jobshop.Instance
	Results  []opt.Result
}

// Best returns the result with the smallest makespan, the earliest run on
// ties.
func (b Batch) Best() opt.Result {
	if len(b.Results) == 0 {
		return opt.Result{Makespan: jobshop.Infeasible}
	}
	best := 0
	for i, r := range b.Results {
		if r.Makespan < b.Results[best].Makespan {
			best = i
		}
	}
	return b.Results[best]
}

type Runner struct {
	Runs          int
	BaseSeed      int64
	PerRunTimeout time.Duration // 0 = no timeout
	// Parallel bounds concurrent runs; values below 2 run sequentially.
	Parallel int

	Metrics *Metrics
	Log     logrus.FieldLogger
}

// RunCase solves one instance Runs times with seeds BaseSeed+i. The instance
// is shared read-only by all runs. A run that hits PerRunTimeout keeps its
// best-so-far result; cancellation of ctx aborts the batch.
func (r Runner) RunCase(ctx context.Context, c Case, algo Algorithm) (Batch, error) {
	if r.Runs <= 0 {
		return Batch{}, errors.Newf("runs must be > 0 (got %d)", r.Runs)
	}
	inst, err := c.instance()
	if err != nil {
		return Batch{}, err
	}

	batch := uuid.NewString()
	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithFields(logrus.Fields{"batch": batch, "algo": algo.Name, "instance": inst.Name})
	log.WithField("runs", r.Runs).Info("batch started")

	results := make([]opt.Result, r.Runs)
	timesMs := make([]float64, r.Runs)
	timedOut := make([]bool, r.Runs)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Parallel, 1))
	for i := 0; i < r.Runs; i++ {
		g.Go(func() error {
			res, dur, timeout, err := r.runOnce(gctx, inst, algo, r.BaseSeed+int64(i))
			outcome := outcomeOK
			switch {
			case err != nil:
				outcome = outcomeError
			case timeout:
				outcome = outcomeTimeout
			}
			r.Metrics.Observe(algo.Name, inst.Name, outcome, res, dur)
			if err != nil {
				return errors.Wrapf(err, "run %d", i)
			}

			results[i], timedOut[i] = res, timeout
			timesMs[i] = float64(dur.Microseconds()) / 1000.0
			log.WithFields(logrus.Fields{
				"run":      i,
				"makespan": res.Makespan,
				"ms":       timesMs[i],
			}).Debug("run finished")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Batch{}, err
	}

	makespans := make([]int, r.Runs)
	evals := make([]int, r.Runs)
	timeouts := 0
	for i, res := range results {
		makespans[i] = res.Makespan
		evals[i] = res.Evaluations
		if timedOut[i] {
			timeouts++
		}
	}
	ms := Calc(makespans)
	ts := Calc(timesMs)

	rec := Record{
		Batch:    batch,
		Algo:     algo.Name,
		Instance: inst.Name,
		Jobs:     inst.Jobs,
		Machines: inst.Machines,
		Runs:     r.Runs,
		Timeouts: timeouts,

		LowerBound: inst.LowerBound(),
		Optimum:    c.Optimum,

		TimeBestMs: ts.Best,
		TimeMeanMs: ts.Mean,
		TimeStdMs:  ts.Std,

		MakespanBest: ms.Best,
		MakespanMean: ms.Mean,
		MakespanStd:  ms.Std,

		EvaluationsMean: Calc(evals).Mean,
	}
	ref := c.Optimum
	if ref <= 0 {
		ref = rec.LowerBound
	}
	rec.Gap = Gap(rec.MakespanBest, ref)

	r.Metrics.SetBest(algo.Name, inst.Name, rec.MakespanBest)
	log.WithFields(logrus.Fields{
		"best": rec.MakespanBest,
		"mean": rec.MakespanMean,
		"gap":  rec.Gap,
	}).Info("batch finished")

	return Batch{Record: rec, Instance: inst, Results: results}, nil
}

func (r Runner) runOnce(ctx context.Context, inst *jobshop.Instance, algo Algorithm, seed int64) (opt.Result, time.Duration, bool, error) {
	solver, err := algo.Factory(seed)
	if err != nil {
		return opt.Result{}, 0, false, errors.Wrap(err, "build solver")
	}

	runCtx := ctx
	cancel := func() {}
	if r.PerRunTimeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, r.PerRunTimeout)
	}
	defer cancel()

	start := time.Now()
	res, err := solver.Solve(runCtx, inst)
	dur := time.Since(start)

	timeout := false
	if err != nil {
		// only our own deadline is tolerated
		if ctx.Err() != nil || !errors.Is(err, context.DeadlineExceeded) {
			return res, dur, false, errors.Wrap(err, "solve")
		}
		timeout = true
	}
	if res.Priorities == nil {
		return res, dur, timeout, errors.New("solver returned no solution")
	}
	if err := res.Schedule.Validate(inst); err != nil {
		return res, dur, timeout, errors.Wrap(err, "invalid schedule")
	}
	return res, dur, timeout, nil
}
