package vmath

import (
	"math"
)

// Vec3F is a float64 3D vector
// Axes: X lateral (right), Y up, Z forward along the track
type Vec3F struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Unit axes
var (
	Right   = Vec3F{1, 0, 0}
	Up      = Vec3F{0, 1, 0}
	Forward = Vec3F{0, 0, 1}
)

func V3FAdd(a, b Vec3F) Vec3F {
	return Vec3F{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

func V3FSub(a, b Vec3F) Vec3F {
	return Vec3F{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

func V3FScale(v Vec3F, s float64) Vec3F {
	return Vec3F{v.X * s, v.Y * s, v.Z * s}
}

func V3FNeg(v Vec3F) Vec3F {
	return Vec3F{-v.X, -v.Y, -v.Z}
}

func V3FDot(a, b Vec3F) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// V3FCross uses the same component formula in any handedness
func V3FCross(a, b Vec3F) Vec3F {
	return Vec3F{
		X: a.Y*b.Z - a.Z*b.Y,
		Y: a.Z*b.X - a.X*b.Z,
		Z: a.X*b.Y - a.Y*b.X,
	}
}

func V3FMagSq(v Vec3F) float64 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func V3FMag(v Vec3F) float64 {
	return math.Sqrt(V3FMagSq(v))
}

func V3FDist(a, b Vec3F) float64 {
	return V3FMag(V3FSub(a, b))
}

func V3FNormalize(v Vec3F) Vec3F {
	mag := V3FMag(v)
	if mag == 0 {
		return Vec3F{}
	}
	inv := 1.0 / mag
	return Vec3F{v.X * inv, v.Y * inv, v.Z * inv}
}

// V3FMid returns the midpoint of a and b
func V3FMid(a, b Vec3F) Vec3F {
	return Vec3F{(a.X + b.X) * 0.5, (a.Y + b.Y) * 0.5, (a.Z + b.Z) * 0.5}
}

// V3FAngle returns the unsigned angle between a and b in radians, 0 if either is zero
func V3FAngle(a, b Vec3F) float64 {
	denom := math.Sqrt(V3FMagSq(a) * V3FMagSq(b))
	if denom == 0 {
		return 0
	}
	cos := V3FDot(a, b) / denom
	// Clamp rounding overshoot so Acos never returns NaN
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return math.Acos(cos)
}

// V3FSignedAngleY returns the angle from a to b, signed by the up component of a×b
func V3FSignedAngleY(a, b Vec3F) float64 {
	return V3FAngle(a, b) * Sign(V3FCross(a, b).Y)
}

// V3FRotateY rotates v about the up axis; positive angles turn +Z toward +X
func V3FRotateY(v Vec3F, angle float64) Vec3F {
	sin, cos := math.Sincos(angle)
	return Vec3F{
		X: v.X*cos + v.Z*sin,
		Y: v.Y,
		Z: -v.X*sin + v.Z*cos,
	}
}

// V3FApproxEqual compares component-wise within eps
func V3FApproxEqual(a, b Vec3F, eps float64) bool {
	return ApproxEqual(a.X, b.X, eps) && ApproxEqual(a.Y, b.Y, eps) && ApproxEqual(a.Z, b.Z, eps)
}
