package logic

import (
	"math/rand"
	"sort"
)

// Shuffle returns a new slice with the elements of items in uniformly
// random order. Each element gets an independent key drawn from r and the
// copy is sorted by key; the stable sort keeps equal keys in input order,
// so a substituted fixed source yields a reproducible permutation. The
// input slice is never mutated.
func Shuffle[T any](r *rand.Rand, items []T) []T {
	type keyed struct {
		key  float64
		item T
	}
	ks := make([]keyed, len(items))
	for i, it := range items {
		ks[i] = keyed{key: r.Float64(), item: it}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	out := make([]T, len(ks))
	for i, k := range ks {
		out[i] = k.item
	}
	return out
}
