package jobshop

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ParseInstance reads the line-oriented instance format:
//
//	jobs machines
//	m d m d m d ...   (one line per job, operations in order)
//
// Pairs may be separated by whitespace or commas. Empty lines and lines
// starting with '#' are skipped; a "-1 -1" pair ends a job early.
func ParseInstance(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	next := func() ([]int, bool, error) {
		for sc.Scan() {
			lineNo++
			line := strings.TrimSpace(sc.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			fields := strings.FieldsFunc(line, func(r rune) bool {
				return r == ',' || r == ';' || r == ' ' || r == '\t'
			})
			vals := make([]int, len(fields))
			for i, f := range fields {
				v, err := strconv.Atoi(f)
				if err != nil {
					return nil, false, errors.Wrapf(err, "line %d: field %d", lineNo, i+1)
				}
				vals[i] = v
			}
			return vals, true, nil
		}
		return nil, false, sc.Err()
	}

	header, ok, err := next()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("empty instance")
	}
	if len(header) < 2 {
		return nil, errors.Newf("line %d: header must be \"jobs machines\"", lineNo)
	}
	jobs, machines := header[0], header[1]
	if jobs <= 0 || machines <= 0 {
		return nil, errors.Newf("line %d: jobs and machines must be > 0 (got %d, %d)", lineNo, jobs, machines)
	}

	var ops []Operation
	for j := 0; j < jobs; j++ {
		vals, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.Newf("expected %d jobs, found %d", jobs, j)
		}
		if len(vals)%2 != 0 {
			return nil, errors.Newf("line %d: odd number of values, want machine/duration pairs", lineNo)
		}
		for k := 0; k+1 < len(vals); k += 2 {
			m, d := vals[k], vals[k+1]
			if m == -1 && d == -1 {
				break
			}
			ops = append(ops, Operation{Job: j, Index: k / 2, Machine: m, Duration: d})
		}
	}

	inst, err := NewInstance(jobs, machines, ops)
	if err != nil {
		return nil, errors.Wrap(err, "parse instance")
	}
	return inst, nil
}

func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inst, err := ParseInstance(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	inst.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return inst, nil
}

// CatalogueEntry describes one instance in a JSPLIB-style instances.json.
type CatalogueEntry struct {
	Name     string `json:"name"`
	Jobs     int    `json:"jobs"`
	Machines int    `json:"machines"`
	Optimum  int    `json:"optimum"`
	Path     string `json:"path"`
}

// LoadCatalogue reads a JSON catalogue. Entry paths are resolved relative to
// the catalogue file.
func LoadCatalogue(path string) ([]CatalogueEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []CatalogueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "decode catalogue %s", path)
	}
	base := filepath.Dir(path)
	for i := range entries {
		if !filepath.IsAbs(entries[i].Path) {
			entries[i].Path = filepath.Join(base, entries[i].Path)
		}
	}
	return entries, nil
}

// Load reads the instance an entry points to and checks its dimensions.
func (e CatalogueEntry) Load() (*Instance, error) {
	inst, err := LoadInstance(e.Path)
	if err != nil {
		return nil, err
	}
	if (e.Jobs > 0 && inst.Jobs != e.Jobs) || (e.Machines > 0 && inst.Machines != e.Machines) {
		return nil, errors.Newf("%s: catalogue says %dx%d, file has %dx%d",
			e.Name, e.Jobs, e.Machines, inst.Jobs, inst.Machines)
	}
	if e.Name != "" {
		inst.Name = e.Name
	}
	return inst, nil
}
