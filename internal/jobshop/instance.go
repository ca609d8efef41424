package jobshop

import (
	"math"
	"math/rand"

	"github.com/cockroachdb/errors"
)

// ErrInvalidInstance marks every validation failure of an Instance.
var ErrInvalidInstance = errors.New("invalid instance")

// Operation is one step of a job. Job, Index, Machine and Duration are fixed
// problem data; Start, End and Priority are only filled in decoder output.
type Operation struct {
	Job      int
	Index    int // position inside the job, 0 has no predecessor
	Machine  int
	Duration int

	Start    int
	End      int
	Priority int
}

// Instance is a job-shop problem. It is read-only once built and may be shared
// between concurrent solves.
type Instance struct {
	Name     string
	Jobs     int
	Machines int
	Ops      []Operation
}

func NewInstance(jobs, machines int, ops []Operation) (*Instance, error) {
	inst := &Instance{Jobs: jobs, Machines: machines, Ops: ops}
	if err := inst.Validate(); err != nil {
		return nil, err
	}
	return inst, nil
}

func (inst *Instance) Validate() error {
	_, err := inst.predecessors()
	return err
}

// Successors maps every operation to the position in Ops of the next
// operation of its job, -1 for the last one.
func (inst *Instance) Successors() ([]int, error) {
	pred, err := inst.predecessors()
	if err != nil {
		return nil, err
	}
	next := make([]int, len(pred))
	for i := range next {
		next[i] = -1
	}
	for i, p := range pred {
		if p >= 0 {
			next[p] = i
		}
	}
	return next, nil
}

// predecessors maps every operation to the position in Ops of its job
// predecessor, -1 for the first operation of a job.
func (inst *Instance) predecessors() ([]int, error) {
	if inst == nil {
		return nil, errors.Mark(errors.New("instance is nil"), ErrInvalidInstance)
	}
	if inst.Jobs <= 0 {
		return nil, invalidf("jobs must be > 0 (got %d)", inst.Jobs)
	}
	if inst.Machines <= 0 {
		return nil, invalidf("machines must be > 0 (got %d)", inst.Machines)
	}
	if len(inst.Ops) == 0 {
		return nil, invalidf("instance has no operations")
	}
	if inst.Jobs > len(inst.Ops) {
		return nil, invalidf("%d jobs but only %d operations", inst.Jobs, len(inst.Ops))
	}
	if inst.Machines > len(inst.Ops) {
		return nil, invalidf("%d machines but only %d operations", inst.Machines, len(inst.Ops))
	}

	// position of (job, index) in Ops
	byJob := make([][]int, inst.Jobs)
	total := 0
	for i, op := range inst.Ops {
		if op.Job < 0 || op.Job >= inst.Jobs {
			return nil, invalidf("ops[%d]: job %d out of range [0,%d)", i, op.Job, inst.Jobs)
		}
		if op.Machine < 0 || op.Machine >= inst.Machines {
			return nil, invalidf("ops[%d]: machine %d out of range [0,%d)", i, op.Machine, inst.Machines)
		}
		if op.Duration <= 0 {
			return nil, invalidf("ops[%d]: duration must be > 0 (got %d)", i, op.Duration)
		}
		if op.Index < 0 || op.Index >= len(inst.Ops) {
			return nil, invalidf("ops[%d]: operation index %d out of range [0,%d)", i, op.Index, len(inst.Ops))
		}
		// every start and end lies below the duration total
		if op.Duration > maxHorizon-total {
			return nil, invalidf("ops[%d]: total duration exceeds %d", i, maxHorizon)
		}
		total += op.Duration
		row := byJob[op.Job]
		for len(row) <= op.Index {
			row = append(row, -1)
		}
		if row[op.Index] != -1 {
			return nil, invalidf("job %d: duplicate operation %d", op.Job, op.Index)
		}
		row[op.Index] = i
		byJob[op.Job] = row
	}

	pred := make([]int, len(inst.Ops))
	for j, row := range byJob {
		for k, idx := range row {
			if idx == -1 {
				return nil, invalidf("job %d: operation %d missing (indices must be contiguous)", j, k)
			}
			if k == 0 {
				pred[idx] = -1
			} else {
				pred[idx] = row[k-1]
			}
		}
	}
	return pred, nil
}

// maxHorizon bounds the sum of all durations so that no end time can
// overflow or reach Infeasible.
const maxHorizon = math.MaxInt / 2

func invalidf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalidInstance)
}

// Len is the number of operations.
func (inst *Instance) Len() int { return len(inst.Ops) }

func (inst *Instance) JobLoad(job int) int {
	sum := 0
	for _, op := range inst.Ops {
		if op.Job == job {
			sum += op.Duration
		}
	}
	return sum
}

func (inst *Instance) MachineLoad(machine int) int {
	sum := 0
	for _, op := range inst.Ops {
		if op.Machine == machine {
			sum += op.Duration
		}
	}
	return sum
}

// LowerBound is the larger of the heaviest machine load and the longest job.
// No feasible schedule can finish earlier.
func (inst *Instance) LowerBound() int {
	jobs := make([]int, inst.Jobs)
	machines := make([]int, inst.Machines)
	for _, op := range inst.Ops {
		jobs[op.Job] += op.Duration
		machines[op.Machine] += op.Duration
	}
	lb := 0
	for _, v := range jobs {
		lb = max(lb, v)
	}
	for _, v := range machines {
		lb = max(lb, v)
	}
	return lb
}

// RandomInstance generates a Taillard-style instance: every job visits every
// machine exactly once, in random order, with durations in [minTime, maxTime].
func RandomInstance(jobs, machines, minTime, maxTime int, rng *rand.Rand) *Instance {
	if rng == nil {
		panic("random source is nil")
	}
	if minTime <= 0 || maxTime < minTime {
		panic("invalid time bounds")
	}
	span := maxTime - minTime + 1
	ops := make([]Operation, 0, jobs*machines)
	route := make([]int, machines)
	for j := 0; j < jobs; j++ {
		Identity(route)
		Shuffle(route, rng)
		for k, m := range route {
			ops = append(ops, Operation{
				Job:      j,
				Index:    k,
				Machine:  m,
				Duration: minTime + rng.Intn(span),
			})
		}
	}
	inst, err := NewInstance(jobs, machines, ops)
	if err != nil {
		panic(err)
	}
	return inst
}
