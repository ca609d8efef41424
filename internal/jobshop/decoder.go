package jobshop

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Infeasible is the makespan reported for a priority vector that cannot be
// turned into a schedule. It compares worse than any real makespan.
const Infeasible = math.MaxInt

// ErrInfeasible is returned when a full dispatch pass schedules nothing while
// operations remain. A genuine permutation over a valid instance never
// triggers it; seeing it means the input or the instance is corrupt.
var ErrInfeasible = errors.New("no operation can be dispatched")

// Schedule is a decoded solution: operations in dispatch order with Start,
// End and Priority filled in.
type Schedule struct {
	Ops      []Operation
	Makespan int
}

// Decoder turns priority assignments into schedules by greedy list
// scheduling. It owns scratch buffers and is not safe for concurrent use;
// the instance it wraps is never modified.
type Decoder struct {
	inst *Instance
	pred []int

	order       []int
	done        []bool
	machineFree []int
	jobReady    []int
}

func NewDecoder(inst *Instance) (*Decoder, error) {
	pred, err := inst.predecessors()
	if err != nil {
		return nil, err
	}
	n := len(inst.Ops)
	return &Decoder{
		inst:        inst,
		pred:        pred,
		order:       make([]int, n),
		done:        make([]bool, n),
		machineFree: make([]int, inst.Machines),
		jobReady:    make([]int, inst.Jobs),
	}, nil
}

func (d *Decoder) Instance() *Instance { return d.inst }

// Decode builds the full schedule for priorities, where priorities[i] is the
// dispatch priority of inst.Ops[i] (lower goes first).
func (d *Decoder) Decode(priorities []int) (Schedule, error) {
	out := make([]Operation, 0, len(d.inst.Ops))
	ms, err := d.dispatch(priorities, &out)
	if err != nil {
		return Schedule{Makespan: Infeasible}, err
	}
	return Schedule{Ops: out, Makespan: ms}, nil
}

// Makespan runs the same dispatch as Decode without materialising the
// schedule.
func (d *Decoder) Makespan(priorities []int) (int, error) {
	ms, err := d.dispatch(priorities, nil)
	if err != nil {
		return Infeasible, err
	}
	return ms, nil
}

// Cost is Makespan with every failure folded into Infeasible.
func (d *Decoder) Cost(priorities []int) int {
	ms, _ := d.Makespan(priorities)
	return ms
}

func (d *Decoder) dispatch(priorities []int, out *[]Operation) (int, error) {
	if d == nil || d.inst == nil {
		return Infeasible, errors.New("nil decoder")
	}
	n := len(d.inst.Ops)
	if err := ValidatePermutation(priorities, n); err != nil {
		return Infeasible, err
	}

	// priorities is a permutation of 0..n-1, so a bucket placement is
	// already the stable (priority, index) order
	for i, p := range priorities {
		d.order[p] = i
	}
	for i := range d.done {
		d.done[i] = false
	}
	for m := range d.machineFree {
		d.machineFree[m] = 0
	}
	for j := range d.jobReady {
		d.jobReady[j] = 0
	}

	makespan := 0
	scheduled := 0
	for scheduled < n {
		progressed := false
		for _, i := range d.order {
			if d.done[i] {
				continue
			}
			if p := d.pred[i]; p >= 0 && !d.done[p] {
				continue
			}
			op := d.inst.Ops[i]
			start := max(d.machineFree[op.Machine], d.jobReady[op.Job])
			end := start + op.Duration

			d.machineFree[op.Machine] = end
			d.jobReady[op.Job] = end
			d.done[i] = true
			scheduled++
			progressed = true
			if end > makespan {
				makespan = end
			}

			if out != nil {
				op.Start = start
				op.End = end
				op.Priority = priorities[i]
				*out = append(*out, op)
			}
		}
		if !progressed {
			return Infeasible, errors.Wrapf(ErrInfeasible, "%d of %d operations unscheduled", n-scheduled, n)
		}
	}
	return makespan, nil
}
