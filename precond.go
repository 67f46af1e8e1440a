package gobptt

import "fmt"

// MustLen panics if got != want. Mismatched vector lengths are programmer
// errors, so they terminate the operation instead of being returned.
func MustLen(op string, got, want int) {
	if got != want {
		panic(fmt.Sprintf("gobptt: %s: length mismatch: got %d, want %d", op, got, want))
	}
}

// MustIndex panics if i is not in [0, n).
func MustIndex(op string, i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("gobptt: %s: index %d out of range [0, %d)", op, i, n))
	}
}

// MustAtLeast panics if got < want.
func MustAtLeast(op string, got, want int) {
	if got < want {
		panic(fmt.Sprintf("gobptt: %s: length %d is less than %d", op, got, want))
	}
}
