package pso_test

import (
	"context"
	"math/rand"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"
	"jobShop/internal/pso"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Particle swarm", func() {
	var (
		inst *jobshop.Instance
		cfg  pso.Config
	)

	BeforeEach(func() {
		inst = jobshop.RandomInstance(5, 4, 1, 25, rand.New(rand.NewSource(19)))
		cfg = pso.DefaultConfig()
		cfg.Iterations = 20
		cfg.Particles = 10
	})

	DescribeTable("returns feasible schedules",
		func(posMin, posMax float64) {
			cfg.PosMin, cfg.PosMax = posMin, posMax
			s, err := pso.New(cfg, rand.New(rand.NewSource(1)))
			Expect(err).ToNot(HaveOccurred())
			res, err := s.Solve(context.Background(), inst)
			Expect(err).ToNot(HaveOccurred())

			Expect(res.Schedule.Validate(inst)).To(Succeed())
			Expect(res.Evaluations).To(Equal(cfg.Particles * (cfg.Iterations + 1)))
			Expect(res.History).To(HaveLen(cfg.Iterations))
			Expect(res.History.Monotone()).To(BeTrue())
			Expect(res.History[len(res.History)-1].Best).To(Equal(res.Makespan))
		},
		Entry("clamped keys", 0.0, 1.0),
		Entry("free keys", 0.0, 0.0),
	)

	DescribeTable("rejects invalid configurations",
		func(mutate func(*pso.Config)) {
			mutate(&cfg)
			_, err := pso.New(cfg, rand.New(rand.NewSource(1)))
			Expect(errors.Is(err, opt.ErrInvalidConfig)).To(BeTrue())
		},
		Entry("no particles", func(c *pso.Config) { c.Particles = 0 }),
		Entry("negative inertia", func(c *pso.Config) { c.W = -1 }),
		Entry("inverted key range", func(c *pso.Config) { c.PosMin, c.PosMax = 1, 0 }),
	)

	It("honours cancellation and keeps the initial swarm best", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		s, err := pso.New(cfg, rand.New(rand.NewSource(3)))
		Expect(err).ToNot(HaveOccurred())
		res, err := s.Solve(ctx, inst)
		Expect(errors.Is(err, context.Canceled)).To(BeTrue())
		Expect(res.Evaluations).To(Equal(cfg.Particles))
		Expect(res.Schedule.Validate(inst)).To(Succeed())
	})
})
