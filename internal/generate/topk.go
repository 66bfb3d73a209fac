package generate

import "sort"

// candidate is one continuation of a beam: hypothesis hyp extended by token.
type candidate struct {
	score float64
	hyp   int
	token int
}

// better orders candidates: higher score first, then lower hypothesis index,
// then lower token id.
func better(a, b candidate) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.hyp != b.hyp {
		return a.hyp < b.hyp
	}
	return a.token < b.token
}

// topK keeps the k best candidates pushed into it. The root is the worst
// kept candidate.
type topK struct {
	k     int
	items []candidate
}

func newTopK(k int) *topK {
	return &topK{k: k, items: make([]candidate, 0, k)}
}

func (h *topK) Len() int {
	return len(h.items)
}

// Push offers c. It is kept if fewer than k candidates are held or it beats
// the worst one.
func (h *topK) Push(c candidate) {
	if h.k <= 0 {
		return
	}
	if len(h.items) < h.k {
		h.items = append(h.items, c)
		h.up(len(h.items) - 1)
		return
	}
	if better(c, h.items[0]) {
		h.items[0] = c
		h.down(0)
	}
}

// Sorted returns the kept candidates best first.
func (h *topK) Sorted() []candidate {
	out := append([]candidate(nil), h.items...)
	sort.Slice(out, func(i, j int) bool {
		return better(out[i], out[j])
	})
	return out
}

// worse is the heap order: the worst candidate rises to the root.
func (h *topK) worse(i, j int) bool {
	return better(h.items[j], h.items[i])
}

func (h *topK) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.worse(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *topK) down(i int) {
	n := len(h.items)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		m := left
		if right := left + 1; right < n && h.worse(right, left) {
			m = right
		}
		if !h.worse(m, i) {
			return
		}
		h.items[i], h.items[m] = h.items[m], h.items[i]
		i = m
	}
}
