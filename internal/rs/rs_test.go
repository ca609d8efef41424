package rs_test

import (
	"context"
	"math/rand"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
	"jobShop/internal/rs"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func solve(inst *jobshop.Instance, trials int, seed int64) opt.Result {
	s, err := rs.New(rs.Config{Trials: trials}, rand.New(rand.NewSource(seed)))
	Expect(err).ToNot(HaveOccurred())
	res, err := s.Solve(context.Background(), inst)
	Expect(err).ToNot(HaveOccurred())
	return res
}

var _ = Describe("Random search", func() {
	var inst *jobshop.Instance

	BeforeEach(func() {
		inst = jobshop.RandomInstance(6, 4, 1, 30, rand.New(rand.NewSource(11)))
	})

	It("returns a valid schedule matching the reported makespan", func() {
		res := solve(inst, 200, 1)
		Expect(res.Schedule.Validate(inst)).To(Succeed())
		Expect(res.Makespan).To(Equal(res.Schedule.Makespan))
		Expect(res.Makespan).To(BeNumerically(">=", inst.LowerBound()))
		Expect(jobshop.ValidatePermutation(res.Priorities, inst.Len())).To(Succeed())
		Expect(res.Evaluations).To(Equal(200))
	})

	It("records one sample per trial with a non-increasing best", func() {
		res := solve(inst, 150, 2)
		Expect(res.History).To(HaveLen(150))
		Expect(res.History.Monotone()).To(BeTrue())
		Expect(res.History[len(res.History)-1].Best).To(Equal(res.Makespan))

		minCurrent := jobshop.Infeasible
		for _, s := range res.History {
			minCurrent = min(minCurrent, s.Current)
			Expect(s.Worst).To(BeNumerically(">=", s.Current))
		}
		Expect(minCurrent).To(Equal(res.Makespan))
	})

	It("never gets worse with a ten times larger budget on the same seed", func() {
		for seed := int64(0); seed < 5; seed++ {
			small := solve(inst, 30, seed)
			large := solve(inst, 300, seed)
			Expect(large.Makespan).To(BeNumerically("<=", small.Makespan))
		}
	})

	It("is reproducible for a fixed seed", func() {
		a := solve(inst, 100, 9)
		b := solve(inst, 100, 9)
		Expect(a.Priorities).To(Equal(b.Priorities))
		Expect(a.Schedule).To(Equal(b.Schedule))
	})

	It("rejects a non-positive trial count", func() {
		_, err := rs.New(rs.Config{Trials: 0}, rand.New(rand.NewSource(1)))
		Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())

		s := &rs.Solver{Cfg: rs.Config{Trials: -1}, Rng: rand.New(rand.NewSource(1))}
		_, err = s.Solve(context.Background(), inst)
		Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())
	})

	It("stops on a cancelled context after one trial and returns it", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := rs.New(rs.Config{Trials: 100}, rand.New(rand.NewSource(1)))
		Expect(err).ToNot(HaveOccurred())

		res, err := s.Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Meta).To(HaveKeyWithValue("stopped", "context"))
		Expect(res.Evaluations).To(Equal(1))
		Expect(res.History).To(HaveLen(1))
		Expect(res.Makespan).To(BeNumerically("<", jobshop.Infeasible))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})
})
