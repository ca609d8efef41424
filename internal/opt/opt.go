package opt

import (
	"context"
	"math/rand"
	"time"

	"jobShop/internal/jobshop"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidConfig   = errors.New("invalid solver configuration")
	ErrInvalidInstance = jobshop.ErrInvalidInstance
	ErrNilRand         = errors.New("random source is nil")
)

// Optimizer searches the space of priority assignments for a schedule with
// a small makespan. Each call is independent and returns a fresh Result.
type Optimizer interface {
	Solve(ctx context.Context, inst *jobshop.Instance) (Result, error)
}

type Result struct {
	Schedule    jobshop.Schedule
	Priorities  []int
	Makespan    int
	Evaluations int
	Iterations  int
	Duration    time.Duration
	History     History
	Meta        map[string]any
}

// Prepare runs the checks every solver does before searching and returns a
// decoder for inst.
func Prepare(inst *jobshop.Instance, cfg interface{ Validate() error }, rng *rand.Rand) (*jobshop.Decoder, error) {
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, ErrNilRand
	}
	return jobshop.NewDecoder(inst)
}

// Finish decodes the best priorities into the result schedule. The decoder is
// deterministic, so this reproduces exactly the cost the search recorded.
func Finish(dec *jobshop.Decoder, res Result, start time.Time) (Result, error) {
	res.Duration = time.Since(start)
	if res.Priorities == nil {
		res.Makespan = jobshop.Infeasible
		return res, nil
	}
	sched, err := dec.Decode(res.Priorities)
	if err != nil {
		res.Makespan = jobshop.Infeasible
		return res, errors.Wrap(err, "decode best priorities")
	}
	res.Schedule = sched
	res.Makespan = sched.Makespan
	return res, nil
}

// Stopped marks res as interrupted by ctx and returns it with the context
// error.
func Stopped(ctx context.Context, dec *jobshop.Decoder, res Result, start time.Time) (Result, error) {
	if res.Meta == nil {
		res.Meta = map[string]any{}
	}
	res.Meta["stopped"] = "context"
	res, err := Finish(dec, res, start)
	if err != nil {
		return res, err
	}
	return res, ctx.Err()
}
