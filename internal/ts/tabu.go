package ts

// move swaps the priorities at positions I and J, with I < J.
type move struct{ I, J int }

func newMove(i, j int) move {
	if i > j {
		i, j = j, i
	}
	return move{I: i, J: j}
}

// tabuList is a FIFO ring of moves with a multiset for membership checks.
type tabuList struct {
	ring  []move
	count map[move]int
	head  int
	size  int
}

func newTabuList(capacity int) *tabuList {
	return &tabuList{
		ring:  make([]move, capacity),
		count: make(map[move]int, capacity),
	}
}

func (t *tabuList) Contains(m move) bool {
	return t.count[m] > 0
}

// Push appends m, evicting the oldest entry when the list is full.
func (t *tabuList) Push(m move) {
	if t.size == len(t.ring) {
		old := t.ring[t.head]
		if t.count[old]--; t.count[old] == 0 {
			delete(t.count, old)
		}
		t.size--
	}
	t.ring[t.head] = m
	t.head = (t.head + 1) % len(t.ring)
	t.size++
	t.count[m]++
}

func (t *tabuList) Len() int { return t.size }

func (t *tabuList) Clear() {
	clear(t.count)
	t.head, t.size = 0, 0
}
