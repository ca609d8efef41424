package bench

import (
	"time"

	"jobShop/internal/opt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects solver outcomes on a private registry so several runners
// in one process do not clash.
type Metrics struct {
	reg *prometheus.Registry

	solves      *prometheus.CounterVec
	evaluations *prometheus.CounterVec
	makespan    *prometheus.HistogramVec
	duration    *prometheus.HistogramVec
	best        *prometheus.GaugeVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		solves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobshop_solves_total",
				Help: "Solver runs by algorithm, instance and outcome.",
			},
			[]string{"algo", "instance", "outcome"},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "jobshop_decoder_evaluations_total",
				Help: "Priority vectors decoded by each algorithm.",
			},
			[]string{"algo"},
		),
		makespan: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobshop_makespan",
				Help:    "Best makespan returned per run.",
				Buckets: prometheus.ExponentialBuckets(8, 1.5, 16),
			},
			[]string{"algo"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "jobshop_solve_duration_seconds",
				Help:    "Wall time per run.",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 16),
			},
			[]string{"algo"},
		),
		best: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "jobshop_best_makespan",
				Help: "Best makespan of the latest batch.",
			},
			[]string{"algo", "instance"},
		),
	}
	m.reg.MustRegister(m.solves, m.evaluations, m.makespan, m.duration, m.best)
	return m
}

// Observe records one finished run. A nil receiver is a no-op.
func (m *Metrics) Observe(algo, instance, outcome string, res opt.Result, dur time.Duration) {
	if m == nil {
		return
	}
	m.solves.WithLabelValues(algo, instance, outcome).Inc()
	m.evaluations.WithLabelValues(algo).Add(float64(res.Evaluations))
	m.duration.WithLabelValues(algo).Observe(dur.Seconds())
	if outcome != outcomeError {
		m.makespan.WithLabelValues(algo).Observe(float64(res.Makespan))
	}
}

func (m *Metrics) SetBest(algo, instance string, makespan int) {
	if m == nil {
		return
	}
	m.best.WithLabelValues(algo, instance).Set(float64(makespan))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// WriteTextfile dumps the registry in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
