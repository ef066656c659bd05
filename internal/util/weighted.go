// Package util provides shared helper utilities.
//revive:disable:var-naming // Package name follows project convention.
package util

import "math/rand"

// PickWeighted selects an index based on integer weights.
func PickWeighted(r *rand.Rand, weights []int) int {
	total := 0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total == 0 {
		return r.Intn(len(weights))
	}
	roll := r.Intn(total)
	sum := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		sum += w
		if roll < sum {
			return i
		}
	}
	return len(weights) - 1
}

// Bernoulli returns true with probability p in [0, 1].
// p <= 0 never fires and p >= 1 always fires.
func Bernoulli(r *rand.Rand, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return r.Float64() < p
}

// RandIntRange returns a random int in [min, max].
func RandIntRange(r *rand.Rand, min int, max int) int {
	if max <= min {
		return min
	}
	return min + r.Intn(max-min+1)
}

// RandFromRange draws a count from a configured [min, max] range capped by bound.
// A zero bound or a zero range max yields 0. When the cap falls below the
// range min the lower end relaxes to 1, so a non-zero cap always yields at
// least one item. A negative bound means uncapped.
func RandFromRange(r *rand.Rand, rng [2]int, bound int) int {
	if bound == 0 || rng[1] == 0 {
		return 0
	}
	lo, hi := rng[0], rng[1]
	if bound > 0 && bound < hi {
		hi = bound
	}
	if hi < lo {
		lo = 1
	}
	return RandIntRange(r, lo, hi)
}

// Shuffled returns a shuffled copy of items.
func Shuffled[T any](r *rand.Rand, items []T) []T {
	out := append([]T(nil), items...)
	r.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
