package ga_test

import (
	"context"
	"math/rand"

	"jobShop/internal/ga"
	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Genetic algorithm", func() {
	var (
		inst *jobshop.Instance
		cfg  ga.Config
	)

	BeforeEach(func() {
		inst = jobshop.RandomInstance(6, 4, 1, 30, rand.New(rand.NewSource(21)))
		cfg = ga.Config{
			Population:     20,
			Generations:    30,
			TournamentSize: 3,
			CrossoverRate:  0.9,
			MutationRate:   0.05,
		}
	})

	run := func(cfg ga.Config, seed int64) opt.Result {
		s, err := ga.New(cfg, rand.New(rand.NewSource(seed)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(context.Background(), inst)
		Expect(err).ToNot(HaveOccurred())
		return res
	}

	It("returns a feasible schedule and a per-generation history", func() {
		res := run(cfg, 1)
		Expect(res.Schedule.Validate(inst)).To(Succeed())
		Expect(res.Makespan).To(BeNumerically(">=", inst.LowerBound()))
		Expect(res.Iterations).To(Equal(cfg.Generations))
		Expect(res.Evaluations).To(Equal(cfg.Population * (cfg.Generations + 1)))

		Expect(res.History).To(HaveLen(cfg.Generations))
		Expect(res.History.Monotone()).To(BeTrue())
		for _, s := range res.History {
			Expect(s.Best).To(BeNumerically("<=", s.Current))
			Expect(float64(s.Current)).To(BeNumerically("<=", s.Average))
			Expect(s.Average).To(BeNumerically("<=", float64(s.Worst)))
		}
		Expect(res.History[len(res.History)-1].Best).To(Equal(res.Makespan))
	})

	It("handles odd populations", func() {
		cfg.Population = 7
		res := run(cfg, 2)
		Expect(res.Evaluations).To(Equal(7 * (cfg.Generations + 1)))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})

	It("keeps the generation best with elitism", func() {
		cfg.Elite = 2
		res := run(cfg, 3)
		for i := 1; i < len(res.History); i++ {
			Expect(res.History[i].Current).To(BeNumerically("<=", res.History[i-1].Current))
		}
	})

	It("is reproducible for a fixed seed", func() {
		a, b := run(cfg, 4), run(cfg, 4)
		Expect(a.Priorities).To(Equal(b.Priorities))
		Expect(a.History).To(Equal(b.History))
	})

	DescribeTable("rejects invalid configurations",
		func(mutate func(*ga.Config)) {
			mutate(&cfg)
			_, err := ga.New(cfg, rand.New(rand.NewSource(1)))
			Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("population of one", func(c *ga.Config) { c.Population = 1 }),
		Entry("no generations", func(c *ga.Config) { c.Generations = 0 }),
		Entry("empty tournament", func(c *ga.Config) { c.TournamentSize = 0 }),
		Entry("crossover rate above one", func(c *ga.Config) { c.CrossoverRate = 1.5 }),
		Entry("negative mutation rate", func(c *ga.Config) { c.MutationRate = -0.1 }),
		Entry("elite fills the population", func(c *ga.Config) { c.Elite = c.Population }),
	)

	It("rejects a nil random source", func() {
		_, err := ga.New(cfg, nil)
		Expect(errors.Is(err, opt.ErrNilRand)).To(BeTrue())
	})

	It("returns the initial best when cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := ga.New(cfg, rand.New(rand.NewSource(5)))
		Expect(err).ToNot(HaveOccurred())

		res, err := s.Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Meta).To(HaveKeyWithValue("stopped", "context"))
		Expect(res.Evaluations).To(Equal(cfg.Population))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})
})
