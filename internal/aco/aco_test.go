package aco_test

import (
	"context"
	"math/rand"

	"jobShop/internal/aco"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ant colony", func() {
	var (
		inst *jobshop.Instance
		cfg  aco.Config
	)

	BeforeEach(func() {
		inst = jobshop.RandomInstance(5, 4, 1, 25, rand.New(rand.NewSource(17)))
		cfg = aco.DefaultConfig()
		cfg.Iterations = 15
		cfg.Ants = 8
	})

	It("returns a feasible schedule with one sample per iteration", func() {
		s, err := aco.New(cfg, rand.New(rand.NewSource(1)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(context.Background(), inst)
		Expect(err).ToNot(HaveOccurred())

		Expect(res.Schedule.Validate(inst)).To(Succeed())
		Expect(res.Makespan).To(BeNumerically(">=", inst.LowerBound()))
		Expect(res.Evaluations).To(Equal(cfg.Iterations * cfg.Ants))
		Expect(res.History).To(HaveLen(cfg.Iterations))
		Expect(res.History.Monotone()).To(BeTrue())
		Expect(res.History[len(res.History)-1].Best).To(Equal(res.Makespan))
	})

	It("works with a candidate list", func() {
		cfg.CandidateK = 2
		s, err := aco.New(cfg, rand.New(rand.NewSource(2)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(context.Background(), inst)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})

	DescribeTable("rejects invalid configurations",
		func(mutate func(*aco.Config)) {
			mutate(&cfg)
			_, err := aco.New(cfg, rand.New(rand.NewSource(1)))
			Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("no ants", func(c *aco.Config) { c.Ants = 0 }),
		Entry("rho of one", func(c *aco.Config) { c.Rho = 1 }),
		Entry("zero tau0", func(c *aco.Config) { c.Tau0 = 0 }),
		Entry("no iteration budget", func(c *aco.Config) { c.Iterations, c.IterationsPerJob = 0, 0 }),
	)

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := aco.New(cfg, rand.New(rand.NewSource(3)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Iterations).To(Equal(1))
		Expect(res.Evaluations).To(Equal(cfg.Ants))
		Expect(res.Makespan).To(BeNumerically("<", jobshop.Infeasible))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})
})
