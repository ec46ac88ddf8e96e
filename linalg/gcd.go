package linalg

import "fmt"

// GCD returns the greatest common divisor of a and b using Euclid's
// algorithm. Signs are dropped first, so the result is never negative.
// GCD(0, b) is |b| and GCD(0, 0) is 0.
func GCD(a, b int) int {
	a, b = abs(a), abs(b)
	for a != 0 {
		a, b = b%a, a
	}
	return b
}

// ArrayGCD folds GCD over values[0:n]. It stops early and returns 1 as soon
// as a partial result reaches 1.
//
// n must be in [1, len(values)]; anything else returns ErrInvalidLength.
func ArrayGCD(values []int, n int) (int, error) {
	if n < 1 || n > len(values) {
		return 0, fmt.Errorf("array gcd over %d of %d values: %w", n, len(values), ErrInvalidLength)
	}
	result := abs(values[0])
	for i := 1; i < n; i++ {
		result = GCD(values[i], result)
		if result == 1 {
			return 1, nil
		}
	}
	return result, nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
