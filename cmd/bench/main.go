package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"jobShop/internal/aco"
	"jobShop/internal/bench"
	"jobShop/internal/ga"
	"jobShop/internal/opt"
	"jobShop/internal/pso"
	"jobShop/internal/rs"
	"jobShop/internal/sa"
	"jobShop/internal/ts"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// factory adapts a solver constructor to the per-run factory the runner
// expects. Each run gets its own random source.
func factory[S opt.Optimizer, C any](build func(C, *rand.Rand) (S, error), cfg C) func(int64) (opt.Optimizer, error) {
	return func(seed int64) (opt.Optimizer, error) {
		s, err := build(cfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Error("bench failed")
		os.Exit(1)
	}
}

func run() error {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	var (
		out          = fs.String("out", "artifacts/results.csv", "summary CSV path")
		pairs        = fs.String("pairs", "10x5,15x10,20x15", "random instances as JOBSxMACHINES, comma separated (ignored with -instance/-catalogue)")
		instances    = fs.String("instance", "", "instance files, comma separated")
		catalogue    = fs.String("catalogue", "", "JSPLIB-style instances.json")
		names        = fs.String("names", "", "catalogue entries to run, comma separated (empty = all)")
		algos        = fs.String("algos", "RS,GA,SA,TS", "algorithms: RS, GA, SA, TS, ACO, PSO (comma separated)")
		runs         = fs.Int("runs", 10, "runs per algorithm and instance, seeds seed..seed+runs-1")
		baseSeed     = fs.Int64("seed", 1000, "base seed of the solver runs")
		instanceSeed = fs.Int64("instance_seed", 777, "base seed of the random instances")
		minTime      = fs.Int("min_time", 1, "minimum operation duration of random instances")
		maxTime      = fs.Int("max_time", 99, "maximum operation duration of random instances")
		perRunTO     = fs.Duration("per_run_timeout", 0, "wall-time limit per run, the best so far is kept; 0 = none")
		parallel     = fs.Int("parallel", 1, "concurrent runs per batch")

		statsOut    = fs.String("stats", "", "append run;best;average;worst;std per run to this CSV")
		historyDir  = fs.String("history_dir", "", "write the best run's iteration;best;avg;worst trace per batch here")
		scheduleDir = fs.String("schedule_dir", "", "write the best schedule per batch here")
		printBest   = fs.Bool("print", false, "print the best schedule of every batch")
		metricsOut  = fs.String("metrics", "", "write Prometheus metrics in textfile format to this path")

		logLevel  = fs.String("log_level", "info", "panic|fatal|error|warn|info|debug|trace")
		logFormat = fs.String("log_format", "text", "text|json")
		dotenv    = fs.String("env_file", ".env", "dotenv file with JSSP_* defaults; empty disables")

		rsTrials = fs.Int("rs_trials", 10000, "random search: trials")

		gaPop   = fs.Int("ga_pop", 100, "GA: population size")
		gaGen   = fs.Int("ga_gen", 300, "GA: generations")
		gaElite = fs.Int("ga_elite", 0, "GA: individuals copied unchanged into the next generation")
		gaTour  = fs.Int("ga_tour", 3, "GA: tournament size")
		gaCx    = fs.Float64("ga_cx", 0.9, "GA: crossover probability")
		gaMut   = fs.Float64("ga_mut", 0.02, "GA: per-gene swap mutation probability")

		saIterPerJob = fs.Int("sa_iter_per_job", 2000, "SA: iterations per job (used when sa_iter == 0)")
		saIter       = fs.Int("sa_iter", 0, "SA: iterations (0 => sa_iter_per_job x jobs)")
		saT0         = fs.Float64("sa_t0", 1000.0, "SA: initial temperature")
		saTmin       = fs.Float64("sa_tmin", 0.1, "SA: final temperature")
		saAlpha      = fs.Float64("sa_alpha", 0.995, "SA: cooling rate")
		saNeigh      = fs.String("sa_neigh", "swap", "SA: neighbourhood, swap | insert")

		tsIterPerJob = fs.Int("ts_iter_per_job", 100, "TS: iterations per job (used when ts_iter == 0)")
		tsIter       = fs.Int("ts_iter", 0, "TS: iterations (0 => ts_iter_per_job x jobs)")
		tsCap        = fs.Int("ts_tabu", 20, "TS: tabu list capacity")
		tsSamples    = fs.Int("ts_neighbors", 50, "TS: sampled swap moves per iteration")
		tsStagnation = fs.Int("ts_stagnation", 200, "TS: iterations without improvement before a restart (0 = never)")
		tsAspiration = fs.Bool("ts_aspiration", false, "TS: admit tabu moves that beat the best so far")

		acoIterPerJob = fs.Int("aco_iter_per_job", 20, "ACO: iterations per job (used when aco_iter == 0)")
		acoIter       = fs.Int("aco_iter", 0, "ACO: iterations (0 => aco_iter_per_job x jobs)")
		acoAnts       = fs.Int("aco_ants", 20, "ACO: ants")
		acoA          = fs.Float64("aco_alpha", 1.0, "ACO: pheromone weight")
		acoB          = fs.Float64("aco_beta", 2.0, "ACO: duration heuristic weight")
		acoRho        = fs.Float64("aco_rho", 0.1, "ACO: evaporation rate")
		acoQ          = fs.Float64("aco_q", 100.0, "ACO: deposit constant")
		acoTau0       = fs.Float64("aco_tau0", 1.0, "ACO: initial pheromone")
		acoCandK      = fs.Int("aco_k", 0, "ACO: candidate list size (0 = all ready operations)")

		psoIterPerJob = fs.Int("pso_iter_per_job", 30, "PSO: iterations per job (used when pso_iter == 0)")
		psoIter       = fs.Int("pso_iter", 0, "PSO: iterations (0 => pso_iter_per_job x jobs)")
		psoParticles  = fs.Int("pso_particles", 30, "PSO: particles")
		psoW          = fs.Float64("pso_w", 0.729, "PSO: inertia")
		psoC1         = fs.Float64("pso_c1", 1.49445, "PSO: cognitive coefficient")
		psoC2         = fs.Float64("pso_c2", 1.49445, "PSO: social coefficient")
		psoVMax       = fs.Float64("pso_vmax", 0.25, "PSO: velocity clamp (0 = none)")
		psoPosMin     = fs.Float64("pso_pos_min", 0.0, "PSO: lower key bound")
		psoPosMax     = fs.Float64("pso_pos_max", 1.0, "PSO: upper key bound")
	)

	// -env_file itself is read from the command line before the environment
	// is consulted.
	envFile := lookupFlag(os.Args[1:], "env_file", *dotenv)
	if err := applyEnv(fs, envFile); err != nil {
		return err
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		return err
	}

	if err := setupLogging(*logLevel, *logFormat); err != nil {
		return err
	}

	var cases []bench.Case
	var err error
	if *instances != "" || *catalogue != "" {
		cases, err = fileCases(splitCSV(*instances), *catalogue, splitCSV(*names))
	} else {
		cases, err = parsePairs(*pairs, *instanceSeed, *minTime, *maxTime)
	}
	if err != nil {
		return err
	}

	available := map[string]bench.Algorithm{
		"RS": {Name: "RS", Factory: factory(rs.New, rs.Config{Trials: *rsTrials})},
		"GA": {Name: "GA", Factory: factory(ga.New, ga.Config{
			Population:     *gaPop,
			Generations:    *gaGen,
			Elite:          *gaElite,
			TournamentSize: *gaTour,
			CrossoverRate:  *gaCx,
			MutationRate:   *gaMut,
		})},
		"SA": {Name: "SA", Factory: factory(sa.New, sa.Config{
			Iterations:       *saIter,
			IterationsPerJob: *saIterPerJob,
			InitialTemp:      *saT0,
			FinalTemp:        *saTmin,
			Alpha:            *saAlpha,
			Neighborhood:     sa.Neighborhood(*saNeigh),
		})},
		"TS": {Name: "TS", Factory: factory(ts.New, ts.Config{
			Iterations:       *tsIter,
			IterationsPerJob: *tsIterPerJob,
			TabuCapacity:     *tsCap,
			NeighborSamples:  *tsSamples,
			StagnationLimit:  *tsStagnation,
			Aspiration:       *tsAspiration,
		})},
		"ACO": {Name: "ACO", Factory: factory(aco.New, aco.Config{
			Iterations:       *acoIter,
			IterationsPerJob: *acoIterPerJob,
			Ants:             *acoAnts,
			Alpha:            *acoA,
			Beta:             *acoB,
			Rho:              *acoRho,
			Q:                *acoQ,
			Tau0:             *acoTau0,
			CandidateK:       *acoCandK,
		})},
		"PSO": {Name: "PSO", Factory: factory(pso.New, pso.Config{
			Iterations:       *psoIter,
			IterationsPerJob: *psoIterPerJob,
			Particles:        *psoParticles,
			W:                *psoW,
			C1:               *psoC1,
			C2:               *psoC2,
			VMax:             *psoVMax,
			PosMin:           *psoPosMin,
			PosMax:           *psoPosMax,
		})},
	}

	selected, err := selectAlgorithms(available, splitCSV(*algos))
	if err != nil {
		return err
	}
	// fail on bad solver settings before any run starts
	for _, a := range selected {
		if _, err := a.Factory(*baseSeed); err != nil {
			return errors.Wrapf(err, "%s config", a.Name)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var metrics *bench.Metrics
	if *metricsOut != "" {
		metrics = bench.NewMetrics()
	}
	runner := bench.Runner{
		Runs:          *runs,
		BaseSeed:      *baseSeed,
		PerRunTimeout: *perRunTO,
		Parallel:      *parallel,
		Metrics:       metrics,
		Log:           logrus.StandardLogger(),
	}

	var records []bench.Record
	for _, c := range cases {
		for _, a := range selected {
			b, err := runner.RunCase(ctx, c, a)
			if err != nil {
				return errors.Wrapf(err, "%s", a.Name)
			}
			records = append(records, b.Record)

			rec := b.Record
			fmt.Printf("%-4s %-16s best=%d mean=%.2f std=%.2f gap=%.2f%% | time mean=%.2fms std=%.2fms\n",
				a.Name, rec.Instance, rec.MakespanBest, rec.MakespanMean, rec.MakespanStd, rec.Gap,
				rec.TimeMeanMs, rec.TimeStdMs)

			if err := writeBatch(b, a.Name, *statsOut, *historyDir, *scheduleDir, *printBest); err != nil {
				return err
			}
		}
	}

	if err := bench.WriteCSV(*out, records); err != nil {
		return err
	}
	logrus.WithField("path", *out).Info("summary written")

	if metrics != nil {
		if err := metrics.WriteTextfile(*metricsOut); err != nil {
			return errors.Wrap(err, "write metrics")
		}
	}
	return nil
}

func writeBatch(b bench.Batch, algo, statsOut, historyDir, scheduleDir string, printBest bool) error {
	if statsOut != "" {
		for i, res := range b.Results {
			if err := bench.AppendRunStats(statsOut, i, res.History); err != nil {
				return err
			}
		}
	}

	best := b.Best()
	stem := fmt.Sprintf("%s_%s", strings.ToLower(algo), b.Record.Instance)
	if historyDir != "" {
		if err := writeFile(filepath.Join(historyDir, "history_"+stem+".csv"), func(f *os.File) error {
			return bench.WriteHistoryCSV(f, best.History)
		}); err != nil {
			return err
		}
	}
	if scheduleDir != "" {
		if err := writeFile(filepath.Join(scheduleDir, "schedule_"+stem+".csv"), func(f *os.File) error {
			return bench.WriteScheduleCSV(f, best.Schedule)
		}); err != nil {
			return err
		}
	}
	if printBest {
		return bench.PrintSchedule(os.Stdout, fmt.Sprintf("%s on %s", algo, b.Record.Instance), best.Schedule)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return f.Close()
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return errors.Wrap(err, "log level")
	}
	logrus.SetLevel(lvl)
	switch format {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return errors.Newf("unknown log format %q", format)
	}
	return nil
}

func selectAlgorithms(available map[string]bench.Algorithm, names []string) ([]bench.Algorithm, error) {
	if len(names) == 0 {
		return nil, errors.New("no algorithms selected")
	}
	selected := make([]bench.Algorithm, 0, len(names))
	for _, n := range names {
		a, ok := available[strings.ToUpper(n)]
		if !ok {
			return nil, errors.Newf("unknown algorithm %q; available: %v", n, keys(available))
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// lookupFlag finds -name=v, --name=v or -name v in args without parsing the
// rest of the command line.
func lookupFlag(args []string, name, def string) string {
	for i, a := range args {
		a = strings.TrimLeft(a, "-")
		if v, ok := strings.CutPrefix(a, name+"="); ok {
			return v
		}
		if a == name && i+1 < len(args) {
			return args[i+1]
		}
	}
	return def
}

func keys(m map[string]bench.Algorithm) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
