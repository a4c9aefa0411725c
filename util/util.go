package util

import (
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Ordered](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

func Max[A constraints.Ordered](num1 A, num2 A) A {
	if num1 < num2 {
		return num2
	}
	return num1
}

// MinMax panics on an empty slice; callers check length first.
func MinMax[A constraints.Ordered](nums []A) (A, A) {
	lo, hi := nums[0], nums[0]
	for _, v := range nums[1:] {
		lo = Min(lo, v)
		hi = Max(hi, v)
	}
	return lo, hi
}

func Sum[A constraints.Integer | constraints.Float](nums []A) A {
	var total A
	for _, v := range nums {
		total += v
	}
	return total
}

// FloorDiv and Mod follow Euclidean rules so negative inputs land in the
// right octave.
func FloorDiv[A constraints.Integer](a, b A) A {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func Mod[A constraints.Integer](a, b A) A {
	return ((a % b) + b) % b
}
