package ts_test

import (
	"context"
	"math/rand"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
	"jobShop/internal/ts"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tabu search", func() {
	var (
		inst *jobshop.Instance
		cfg  ts.Config
	)

	BeforeEach(func() {
		inst = jobshop.RandomInstance(6, 4, 1, 30, rand.New(rand.NewSource(31)))
		cfg = ts.Config{
			Iterations:      300,
			TabuCapacity:    10,
			NeighborSamples: 20,
			StagnationLimit: 50,
		}
	})

	run := func(inst *jobshop.Instance, cfg ts.Config, seed int64) opt.Result {
		s, err := ts.New(cfg, rand.New(rand.NewSource(seed)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(context.Background(), inst)
		Expect(err).ToNot(HaveOccurred())
		return res
	}

	It("returns a feasible schedule and records current and best costs", func() {
		res := run(inst, cfg, 1)
		Expect(res.Schedule.Validate(inst)).To(Succeed())
		Expect(res.Makespan).To(BeNumerically(">=", inst.LowerBound()))
		Expect(res.Iterations).To(Equal(cfg.Iterations))
		Expect(res.History).To(HaveLen(cfg.Iterations))
		Expect(res.History.Monotone()).To(BeTrue())
		for _, s := range res.History {
			Expect(s.Best).To(BeNumerically("<=", s.Current))
		}
		Expect(res.History[len(res.History)-1].Best).To(Equal(res.Makespan))
		Expect(res.Meta).ToNot(HaveKey("stopped"))
	})

	It("restarts after stagnating and keeps the best across restarts", func() {
		cfg.StagnationLimit = 1
		res := run(inst, cfg, 2)
		Expect(res.Meta["restarts"]).To(BeNumerically(">", 0))
		Expect(res.History.Monotone()).To(BeTrue())
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})

	It("never restarts when the stagnation limit is zero", func() {
		cfg.StagnationLimit = 0
		res := run(inst, cfg, 3)
		Expect(res.Meta).To(HaveKeyWithValue("restarts", 0))
	})

	It("stops early when every same-job swap would invert the job order", func() {
		single, err := jobshop.NewInstance(1, 2, []jobshop.Operation{
			{Job: 0, Index: 0, Machine: 0, Duration: 2},
			{Job: 0, Index: 1, Machine: 1, Duration: 3},
		})
		Expect(err).ToNot(HaveOccurred())

		for seed := int64(0); seed < 4; seed++ {
			res := run(single, cfg, seed)
			Expect(res.Meta).To(HaveKeyWithValue("stopped", "no_moves"))
			Expect(res.Iterations).To(BeNumerically("<=", 1))
			Expect(res.Makespan).To(Equal(5))
		}
	})

	It("stops early when the only move is tabu", func() {
		pair, err := jobshop.NewInstance(2, 1, []jobshop.Operation{
			{Job: 0, Index: 0, Machine: 0, Duration: 2},
			{Job: 1, Index: 0, Machine: 0, Duration: 3},
		})
		Expect(err).ToNot(HaveOccurred())
		cfg.TabuCapacity = 1
		cfg.StagnationLimit = 0

		for _, aspiration := range []bool{false, true} {
			cfg.Aspiration = aspiration
			res := run(pair, cfg, 7)
			Expect(res.Meta).To(HaveKeyWithValue("stopped", "no_moves"))
			Expect(res.Iterations).To(Equal(1))
			Expect(res.Makespan).To(Equal(5))
		}
	})

	DescribeTable("rejects invalid configurations",
		func(mutate func(*ts.Config)) {
			mutate(&cfg)
			_, err := ts.New(cfg, rand.New(rand.NewSource(1)))
			Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("no iteration budget", func(c *ts.Config) { c.Iterations, c.IterationsPerJob = 0, 0 }),
		Entry("zero tabu capacity", func(c *ts.Config) { c.TabuCapacity = 0 }),
		Entry("zero neighbour samples", func(c *ts.Config) { c.NeighborSamples = 0 }),
		Entry("negative stagnation limit", func(c *ts.Config) { c.StagnationLimit = -1 }),
	)

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := ts.New(cfg, rand.New(rand.NewSource(5)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Meta).To(HaveKeyWithValue("stopped", "context"))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})
})
