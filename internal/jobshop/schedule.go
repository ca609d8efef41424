package jobshop

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// Validate checks that s is a complete, conflict-free schedule of inst.
func (s Schedule) Validate(inst *Instance) error {
	if err := inst.Validate(); err != nil {
		return err
	}
	if len(s.Ops) != len(inst.Ops) {
		return errors.Newf("schedule has %d operations, instance has %d", len(s.Ops), len(inst.Ops))
	}

	type key struct{ job, index int }
	want := make(map[key]Operation, len(inst.Ops))
	for _, op := range inst.Ops {
		want[key{op.Job, op.Index}] = op
	}

	byJob := make([][]Operation, inst.Jobs)
	byMachine := make([][]Operation, inst.Machines)
	makespan := 0
	for _, op := range s.Ops {
		k := key{op.Job, op.Index}
		ref, ok := want[k]
		if !ok {
			return errors.Newf("job %d operation %d unknown or scheduled twice", op.Job, op.Index)
		}
		delete(want, k)
		if op.Machine != ref.Machine || op.Duration != ref.Duration {
			return errors.Newf("job %d operation %d: machine/duration differ from instance", op.Job, op.Index)
		}
		if op.Start < 0 {
			return errors.Newf("job %d operation %d starts at %d", op.Job, op.Index, op.Start)
		}
		if op.End != op.Start+op.Duration {
			return errors.Newf("job %d operation %d: end %d != start %d + duration %d",
				op.Job, op.Index, op.End, op.Start, op.Duration)
		}
		makespan = max(makespan, op.End)
		byJob[op.Job] = append(byJob[op.Job], op)
		byMachine[op.Machine] = append(byMachine[op.Machine], op)
	}

	for j, ops := range byJob {
		sort.Slice(ops, func(a, b int) bool { return ops[a].Index < ops[b].Index })
		for k := 1; k < len(ops); k++ {
			if ops[k-1].End > ops[k].Start {
				return errors.Newf("job %d: operation %d starts at %d before operation %d ends at %d",
					j, ops[k].Index, ops[k].Start, ops[k-1].Index, ops[k-1].End)
			}
		}
	}
	for m, ops := range byMachine {
		sort.Slice(ops, func(a, b int) bool { return ops[a].Start < ops[b].Start })
		for k := 1; k < len(ops); k++ {
			if ops[k-1].End > ops[k].Start {
				return errors.Newf("machine %d: job %d op %d overlaps job %d op %d",
					m, ops[k-1].Job, ops[k-1].Index, ops[k].Job, ops[k].Index)
			}
		}
	}
	if makespan != s.Makespan {
		return errors.Newf("makespan %d, latest end is %d", s.Makespan, makespan)
	}
	return nil
}

// JobOps returns the operations of one job ordered by their index.
func (s Schedule) JobOps(job int) []Operation {
	var out []Operation
	for _, op := range s.Ops {
		if op.Job == job {
			out = append(out, op)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Index < out[b].Index })
	return out
}

// Clone returns a deep copy.
func (s Schedule) Clone() Schedule {
	ops := make([]Operation, len(s.Ops))
	copy(ops, s.Ops)
	return Schedule{Ops: ops, Makespan: s.Makespan}
}
