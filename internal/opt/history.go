package opt

// Sample is one row of a search trace. Best is the best makespan seen so far
// and never increases; Current, Average and Worst describe the solution (or
// population) the search holds at that step.
type Sample struct {
	Iteration int
	Current   int
	Best      int
	Average   float64
	Worst     int
}

type History []Sample

// Point appends a sample for a single-solution search, where the current
// cost is also the average and the worst.
func (h *History) Point(iter, current, best int) {
	*h = append(*h, Sample{
		Iteration: iter,
		Current:   current,
		Best:      best,
		Average:   float64(current),
		Worst:     current,
	})
}

// BestSeries returns the best-so-far makespan per sample.
func (h History) BestSeries() []int {
	out := make([]int, len(h))
	for i, s := range h {
		out[i] = s.Best
	}
	return out
}

// CurrentSeries returns the current cost per sample.
func (h History) CurrentSeries() []int {
	out := make([]int, len(h))
	for i, s := range h {
		out[i] = s.Current
	}
	return out
}

// Monotone reports whether Best never increases.
func (h History) Monotone() bool {
	for i := 1; i < len(h); i++ {
		if h[i].Best > h[i-1].Best {
			return false
		}
	}
	return true
}
