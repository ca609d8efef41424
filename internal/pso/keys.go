package pso

import "sort"

// keysToPriorities ranks the keys: the operation with the smallest key gets
// priority 0. Equal keys keep operation order.
func keysToPriorities(keys []float64, prio, idx []int) {
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return keys[idx[a]] < keys[idx[b]]
	})
	for rank, op := range idx {
		prio[op] = rank
	}
}
