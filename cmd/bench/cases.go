package main

import (
	"strconv"
	"strings"

	"jobShop/internal/bench"
	"jobShop/internal/jobshop"

	"github.com/cockroachdb/errors"
)

// parsePairs turns "20x5,50x10" into random cases. Every pair gets its own
// instance seed derived from the base seed and its shape.
func parsePairs(s string, baseInstanceSeed int64, minTime, maxTime int) ([]bench.Case, error) {
	parts := splitCSV(s)
	cases := make([]bench.Case, 0, len(parts))

	for i, p := range parts {
		jm := strings.Split(p, "x")
		if len(jm) != 2 {
			return nil, errors.Newf("pair %q: want JOBSxMACHINES, e.g. 10x5", p)
		}
		jobs, err := strconv.Atoi(strings.TrimSpace(jm[0]))
		if err != nil {
			return nil, errors.Wrapf(err, "pair %q: jobs", p)
		}
		machines, err := strconv.Atoi(strings.TrimSpace(jm[1]))
		if err != nil {
			return nil, errors.Wrapf(err, "pair %q: machines", p)
		}
		if jobs <= 0 || machines <= 0 {
			return nil, errors.Newf("pair %q: jobs and machines must be > 0", p)
		}

		cases = append(cases, bench.Case{
			Jobs:         jobs,
			Machines:     machines,
			MinTime:      minTime,
			MaxTime:      maxTime,
			InstanceSeed: baseInstanceSeed + int64(i)*10_000 + int64(jobs)*100 + int64(machines),
		})
	}
	return cases, nil
}

// fileCases loads instance files and catalogue entries. names filters the
// catalogue; empty keeps every entry.
func fileCases(paths []string, catalogue string, names []string) ([]bench.Case, error) {
	var cases []bench.Case
	for _, p := range paths {
		inst, err := jobshop.LoadInstance(p)
		if err != nil {
			return nil, err
		}
		cases = append(cases, bench.Case{Instance: inst})
	}
	if catalogue == "" {
		return cases, nil
	}

	entries, err := jobshop.LoadCatalogue(catalogue)
	if err != nil {
		return nil, err
	}
	want := map[string]bool{}
	for _, n := range names {
		want[n] = true
	}
	for _, e := range entries {
		if len(want) > 0 && !want[e.Name] {
			continue
		}
		inst, err := e.Load()
		if err != nil {
			return nil, err
		}
		cases = append(cases, bench.Case{Instance: inst, Optimum: e.Optimum})
	}
	if len(want) > 0 && len(cases) == len(paths) {
		return nil, errors.Newf("catalogue %s has none of %v", catalogue, names)
	}
	return cases, nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
