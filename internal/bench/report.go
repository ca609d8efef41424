package bench

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"

	"jobShop/internal/jobshop"
	"jobShop/internal/opt"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/stat"
)

func itoa(v int) string { return strconv.Itoa(v) }

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func ensureDir(path string) error {
	if d := filepath.Dir(path); d != "." {
		return os.MkdirAll(d, 0o755)
	}
	return nil
}

func create(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, errors.Wrapf(err, "create %s", path)
	}
	f, err := os.Create(path)
	return f, errors.Wrapf(err, "create %s", path)
}

// WriteCSV writes one summary row per record.
func WriteCSV(path string, records []Record) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"batch", "algo", "instance", "jobs", "machines", "runs", "timeouts",
		"lower_bound", "optimum", "gap_pct",
		"time_best_ms", "time_mean_ms", "time_std_ms",
		"makespan_best", "makespan_mean", "makespan_std",
		"evaluations_mean",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.Batch,
			r.Algo,
			r.Instance,
			itoa(r.Jobs),
			itoa(r.Machines),
			itoa(r.Runs),
			itoa(r.Timeouts),

			itoa(r.LowerBound),
			itoa(r.Optimum),
			ftoa(r.Gap),

			ftoa(r.TimeBestMs),
			ftoa(r.TimeMeanMs),
			ftoa(r.TimeStdMs),

			itoa(r.MakespanBest),
			ftoa(r.MakespanMean),
			ftoa(r.MakespanStd),

			ftoa(r.EvaluationsMean),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteScheduleCSV writes one row per operation in dispatch order, the
// input format of the Gantt plotting scripts.
func WriteScheduleCSV(out io.Writer, s jobshop.Schedule) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"job_id", "operation_id", "machine_id", "start_time", "end_time", "priority"}); err != nil {
		return err
	}
	for _, op := range s.Ops {
		row := []string{
			itoa(op.Job), itoa(op.Index), itoa(op.Machine),
			itoa(op.Start), itoa(op.End), itoa(op.Priority),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteHistoryCSV writes iteration;best;avg;worst rows. Infeasible samples
// are left empty.
func WriteHistoryCSV(out io.Writer, h opt.History) error {
	w := csv.NewWriter(out)
	w.Comma = ';'
	if err := w.Write([]string{"iteration", "best", "avg", "worst"}); err != nil {
		return err
	}
	cost := func(v int) string {
		if v == jobshop.Infeasible {
			return ""
		}
		return itoa(v)
	}
	for _, s := range h {
		avg := ""
		if s.Average > 0 {
			avg = strconv.FormatFloat(s.Average, 'f', 2, 64)
		}
		if err := w.Write([]string{itoa(s.Iteration), cost(s.Best), avg, cost(s.Worst)}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// RunStats summarises the current-cost trace of one run.
type RunStats struct {
	Best    int
	Average float64
	Worst   int
	Std     float64
}

// SummariseRun ignores infeasible samples. Std is the population deviation.
func SummariseRun(h opt.History) (RunStats, bool) {
	xs := make([]float64, 0, len(h))
	st := RunStats{Best: jobshop.Infeasible}
	for _, s := range h {
		if s.Current == jobshop.Infeasible {
			continue
		}
		xs = append(xs, float64(s.Current))
		st.Best = min(st.Best, s.Current)
		st.Worst = max(st.Worst, s.Current)
	}
	if len(xs) == 0 {
		return RunStats{}, false
	}
	mean, variance := stat.PopMeanVariance(xs, nil)
	st.Average, st.Std = mean, math.Sqrt(variance)
	return st, true
}

// AppendRunStats appends run;best;average;worst;std for one run to path,
// writing the header only when the file is new. A history without a
// feasible sample writes nothing.
func AppendRunStats(path string, run int, h opt.History) error {
	st, ok := SummariseRun(h)
	if !ok {
		return nil
	}
	if err := ensureDir(path); err != nil {
		return err
	}
	_, statErr := os.Stat(path)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = ';'
	if isNew {
		if err := w.Write([]string{"run", "best", "average", "worst", "std"}); err != nil {
			return err
		}
	}
	err = w.Write([]string{
		itoa(run), itoa(st.Best), ftoa(st.Average), itoa(st.Worst), ftoa(st.Std),
	})
	if err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// PrintSchedule prints the schedule as an aligned table.
func PrintSchedule(out io.Writer, title string, s jobshop.Schedule) error {
	if _, err := fmt.Fprintf(out, "=== %s ===\nMakespan: %d\n", title, s.Makespan); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Job\tOp\tMachine\tPriority\tStart\tEnd")
	for _, op := range s.Ops {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\n", op.Job, op.Index, op.Machine, op.Priority, op.Start, op.End)
	}
	return tw.Flush()
}
