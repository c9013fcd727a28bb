// Package safeconv provides safe integer type conversion functions that panic on overflow.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MustIntToInt32 converts int to int32, panics on bounds violation.
// Use only when bounds violations are logically impossible.
func MustIntToInt32(v int) int32 {
	if v < math.MinInt32 || v > math.MaxInt32 {
		panic("safeconv: int to int32 out of bounds")
	}

	return int32(v)
}

// MustInt64ToInt32 converts int64 to int32, panics on bounds violation.
// Use only when bounds violations are logically impossible.
func MustInt64ToInt32(v int64) int32 {
	if v < math.MinInt32 || v > math.MaxInt32 {
		panic("safeconv: int64 to int32 out of bounds")
	}

	return int32(v)
}

// MustInt64ToInt converts int64 to int, panics on overflow.
// Only meaningful on 32-bit platforms; a no-op bounds check on 64-bit.
func MustInt64ToInt(v int64) int {
	if v < math.MinInt64 || v > int64(MaxInt) {
		panic("safeconv: int64 to int overflow")
	}

	return int(v)
}
