// Package batch orders sentences for padded computation and restores the
// caller's order afterwards.
package batch

import "sort"

// Order is a permutation of a batch: Order[k] is the original index of the
// sentence placed at position k.
type Order []int

// ByLengthDesc returns the stable permutation that sorts lengths in
// descending order. Equal lengths keep their input order.
func ByLengthDesc(lengths []int) Order {
	order := make(Order, len(lengths))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lengths[order[a]] > lengths[order[b]]
	})
	return order
}

// Apply returns items in permuted order.
func Apply[T any](o Order, items []T) []T {
	out := make([]T, len(o))
	for k, i := range o {
		out[k] = items[i]
	}
	return out
}

// Restore undoes Apply: results[k] belongs to original index o[k].
func Restore[T any](o Order, results []T) []T {
	out := make([]T, len(o))
	for k, i := range o {
		out[i] = results[k]
	}
	return out
}

// Chunk splits n items into consecutive [start, end) ranges of at most size.
// A non-positive size yields a single range.
func Chunk(n, size int) [][2]int {
	if n == 0 {
		return nil
	}
	if size <= 0 || size > n {
		size = n
	}
	var out [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		out = append(out, [2]int{start, end})
	}
	return out
}
