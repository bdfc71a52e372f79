// Package permute enumerates ordered selections (k-permutations) of a sequence.
// Positions, not values, are distinct: repeated values still yield distinct
// permutations.
package permute

import (
	"iter"
	"slices"
)

// Count returns P(n, k) = n!/(n-k)!, the number of ordered k-tuples of
// distinct positions drawn from n. It is 0 when k > n or either is negative.
func Count(n, k int) int {
	if n < 0 || k < 0 || k > n {
		return 0
	}
	total := 1
	for i := range k {
		total *= n - i
	}
	return total
}

// Positions yields every ordered k-tuple of distinct indices in [0, n) in
// lexicographic order. The yielded slice is reused between iterations; clone
// it to keep it.
func Positions(n, k int) iter.Seq[[]int] {
	return func(yield func([]int) bool) {
		if n < 0 || k < 0 || k > n {
			return
		}

		tuple := make([]int, k)
		used := make([]bool, n)

		var walk func(depth int) bool
		walk = func(depth int) bool {
			if depth == k {
				return yield(tuple)
			}
			for i := range n {
				if used[i] {
					continue
				}
				used[i] = true
				tuple[depth] = i
				if !walk(depth + 1) {
					return false
				}
				used[i] = false
			}
			return true
		}
		walk(0)
	}
}

// Tuples applies Positions to items and yields each tuple with its 1-based
// index. Every yielded slice is freshly allocated.
func Tuples[T any](items []T, k int) iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		index := 0
		for pos := range Positions(len(items), k) {
			index++
			tuple := make([]T, k)
			for i, p := range pos {
				tuple[i] = items[p]
			}
			if !yield(index, tuple) {
				return
			}
		}
	}
}

// Collect returns every tuple of Positions(n, k) as independent slices.
func Collect(n, k int) [][]int {
	out := make([][]int, 0, Count(n, k))
	for pos := range Positions(n, k) {
		out = append(out, slices.Clone(pos))
	}
	return out
}
