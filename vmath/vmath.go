package vmath

import "math"

// Tolerances for float geometry
const (
	// Epsilon is the seam and pose comparison tolerance in world units
	Epsilon = 1e-6

	// ParallelEpsilon bounds the closest-point denominator below which two lines are parallel
	ParallelEpsilon = 1e-9

	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
)

// ApproxEqual reports whether a and b differ by less than eps
func ApproxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

// Sign returns -1 for negative x and 1 otherwise, zero counts as positive
func Sign(x float64) float64 {
	if x < 0 {
		return -1
	}
	return 1
}

// WrapAngle folds a radian angle into (-π, π]
func WrapAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// --- Randomness ---

// FastRand is a xorshift64 generator, deterministic for a given seed
type FastRand struct {
	state uint64
}

func NewFastRand(seed uint64) *FastRand {
	if seed == 0 {
		seed = 1
	}
	return &FastRand{state: seed}
}

func (r *FastRand) Next() uint64 {
	x := r.state
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	r.state = x
	return x
}

// IntN returns a value in [0, n), 0 when n <= 0
func (r *FastRand) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	return int(r.Next() % uint64(n))
}
