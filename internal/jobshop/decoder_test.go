package jobshop_test

import (
	"math/rand"

	"jobShop/internal/jobshop"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// twoByTwo: job0 = (m0,3),(m1,2); job1 = (m1,2),(m0,4).
func twoByTwo() *jobshop.Instance {
	inst, err := jobshop.NewInstance(2, 2, []jobshop.Operation{
		{Job: 0, Index: 0, Machine: 0, Duration: 3},
		{Job: 0, Index: 1, Machine: 1, Duration: 2},
		{Job: 1, Index: 0, Machine: 1, Duration: 2},
		{Job: 1, Index: 1, Machine: 0, Duration: 4},
	})
	Expect(err).ToNot(HaveOccurred())
	return inst
}

type span struct{ start, end int }

func spans(s jobshop.Schedule, job int) []span {
	var out []span
	for _, op := range s.JobOps(job) {
		out = append(out, span{op.Start, op.End})
	}
	return out
}

// permutations calls fn with every permutation of 0..n-1.
func permutations(n int, fn func([]int)) {
	p := make([]int, n)
	jobshop.Identity(p)
	var rec func(k int)
	rec = func(k int) {
		if k == n {
			fn(append([]int(nil), p...))
			return
		}
		for i := k; i < n; i++ {
			p[k], p[i] = p[i], p[k]
			rec(k + 1)
			p[k], p[i] = p[i], p[k]
		}
	}
	rec(0)
}

var _ = Describe("Decoder", func() {
	var (
		inst *jobshop.Instance
		dec  *jobshop.Decoder
	)

	BeforeEach(func() {
		inst = twoByTwo()
		var err error
		dec, err = jobshop.NewDecoder(inst)
		Expect(err).ToNot(HaveOccurred())
	})

	Describe("the 2x2 scenario", func() {
		It("computes the loads behind the lower bound", func() {
			Expect(inst.MachineLoad(0)).To(Equal(7))
			Expect(inst.MachineLoad(1)).To(Equal(4))
			Expect(inst.JobLoad(0)).To(Equal(5))
			Expect(inst.JobLoad(1)).To(Equal(6))
			Expect(inst.LowerBound()).To(Equal(7))
		})

		It("dispatches job0 ahead of job1 when job0 holds the lower priorities", func() {
			s, err := dec.Decode([]int{0, 1, 2, 3})
			Expect(err).ToNot(HaveOccurred())
			Expect(spans(s, 0)).To(Equal([]span{{0, 3}, {3, 5}}))
			Expect(spans(s, 1)).To(Equal([]span{{5, 7}, {7, 11}}))
			Expect(s.Makespan).To(Equal(11))
		})

		It("reaches the lower bound with an interleaved order", func() {
			s, err := dec.Decode([]int{0, 2, 1, 3})
			Expect(err).ToNot(HaveOccurred())
			Expect(spans(s, 0)).To(Equal([]span{{0, 3}, {3, 5}}))
			Expect(spans(s, 1)).To(Equal([]span{{0, 2}, {3, 7}}))
			Expect(s.Makespan).To(Equal(7))
		})

		It("defers an operation whose predecessor comes later in priority", func() {
			s, err := dec.Decode([]int{1, 0, 2, 3})
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Ops[len(s.Ops)-1].Job).To(Equal(0))
			Expect(s.Ops[len(s.Ops)-1].Index).To(Equal(1))
			Expect(s.Makespan).To(Equal(7))
			Expect(s.Validate(inst)).To(Succeed())
		})

		It("never beats the lower bound over every permutation", func() {
			best := jobshop.Infeasible
			permutations(inst.Len(), func(p []int) {
				s, err := dec.Decode(p)
				Expect(err).ToNot(HaveOccurred())
				Expect(s.Validate(inst)).To(Succeed())
				Expect(s.Makespan).To(BeNumerically(">=", inst.LowerBound()))
				best = min(best, s.Makespan)
			})
			Expect(best).To(Equal(7))
		})
	})

	It("stores the priority of every dispatched operation", func() {
		p := []int{3, 1, 0, 2}
		s, err := dec.Decode(p)
		Expect(err).ToNot(HaveOccurred())
		for _, op := range s.Ops {
			for i, ref := range inst.Ops {
				if ref.Job == op.Job && ref.Index == op.Index {
					Expect(op.Priority).To(Equal(p[i]))
				}
			}
		}
	})

	It("leaves the instance untouched", func() {
		before := append([]jobshop.Operation(nil), inst.Ops...)
		_, err := dec.Decode([]int{2, 0, 3, 1})
		Expect(err).ToNot(HaveOccurred())
		Expect(inst.Ops).To(Equal(before))
	})

	It("agrees between Decode, Makespan and Cost", func() {
		p := []int{1, 3, 0, 2}
		s, err := dec.Decode(p)
		Expect(err).ToNot(HaveOccurred())
		ms, err := dec.Makespan(p)
		Expect(err).ToNot(HaveOccurred())
		Expect(ms).To(Equal(s.Makespan))
		Expect(dec.Cost(p)).To(Equal(s.Makespan))
	})

	DescribeTable("rejects malformed priority vectors with the infeasible sentinel",
		func(p []int) {
			s, err := dec.Decode(p)
			Expect(errors.Is(err, jobshop.ErrInvalidPriorities)).To(BeTrue())
			Expect(s.Makespan).To(Equal(jobshop.Infeasible))
			Expect(dec.Cost(p)).To(Equal(jobshop.Infeasible))
		},
		Entry("too short", []int{0, 1, 2}),
		Entry("too long", []int{0, 1, 2, 3, 4}),
		Entry("duplicate", []int{0, 1, 1, 3}),
		Entry("out of range", []int{0, 1, 2, 4}),
		Entry("negative", []int{-1, 1, 2, 3}),
		Entry("nil", nil),
	)

	Describe("on random instances", func() {
		var rng *rand.Rand

		BeforeEach(func() {
			rng = rand.New(rand.NewSource(42))
			inst = jobshop.RandomInstance(8, 5, 1, 20, rng)
			var err error
			dec, err = jobshop.NewDecoder(inst)
			Expect(err).ToNot(HaveOccurred())
		})

		It("produces feasible schedules above the lower bound", func() {
			for trial := 0; trial < 200; trial++ {
				p := jobshop.RandomPermutation(inst.Len(), rng)
				s, err := dec.Decode(p)
				Expect(err).ToNot(HaveOccurred())
				Expect(s.Ops).To(HaveLen(inst.Len()))
				Expect(s.Validate(inst)).To(Succeed())
				Expect(s.Makespan).To(BeNumerically(">=", inst.LowerBound()))
			}
		})

		It("is deterministic", func() {
			p := jobshop.RandomPermutation(inst.Len(), rng)
			first, err := dec.Decode(p)
			Expect(err).ToNot(HaveOccurred())

			other, err := jobshop.NewDecoder(inst)
			Expect(err).ToNot(HaveOccurred())
			for i := 0; i < 5; i++ {
				// interleave another decode to dirty the scratch buffers
				_, _ = dec.Decode(jobshop.RandomPermutation(inst.Len(), rng))
				again, err := dec.Decode(p)
				Expect(err).ToNot(HaveOccurred())
				Expect(again).To(Equal(first))

				fresh, err := other.Decode(p)
				Expect(err).ToNot(HaveOccurred())
				Expect(fresh).To(Equal(first))
			}
		})
	})
})
