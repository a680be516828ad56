// Package math provides math types and functions for game development.
package math

import "math"

// Clamp limits v to the range [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Fract returns the fractional part of v, always in [0, 1).
func Fract(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

// Smoothstep returns the Hermite interpolation of v between edge0 and edge1.
// The result is clamped to [0, 1] and C1-continuous at both edges.
func Smoothstep(edge0, edge1, v float32) float32 {
	if edge0 == edge1 {
		if v < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((v-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}
