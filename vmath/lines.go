package vmath

import "math"

// ClosestLinePoints returns the closest points between the infinite lines
// L1(s) = p1 + s*d1 and L2(t) = p2 + t*d2
// ok is false when the lines are parallel within ParallelEpsilon
func ClosestLinePoints(p1, d1, p2, d2 Vec3F) (c1, c2 Vec3F, ok bool) {
	a := V3FDot(d1, d1)
	b := V3FDot(d1, d2)
	e := V3FDot(d2, d2)
	r := V3FSub(p1, p2)
	c := V3FDot(d1, r)
	f := V3FDot(d2, r)

	denom := a*e - b*b
	if math.Abs(denom) < ParallelEpsilon {
		return Vec3F{}, Vec3F{}, false
	}

	s := (b*f - c*e) / denom
	t := (a*f - c*b) / denom

	c1 = V3FAdd(p1, V3FScale(d1, s))
	c2 = V3FAdd(p2, V3FScale(d2, t))
	return c1, c2, true
}
