package vmath

// Transform is a rigid pose restricted to rotation about the up axis
// Point mapping: world = Position + RotateY(local, Yaw)
type Transform struct {
	Position Vec3F  `json:"position"`
	Yaw      float64 `json:"yaw"` // radians
}

// Identity is the zero pose
var Identity = Transform{}

// Apply maps a local point into the transform's parent space
func (t Transform) Apply(p Vec3F) Vec3F {
	return V3FAdd(t.Position, V3FRotateY(p, t.Yaw))
}

// ApplyDir rotates a direction without translating it
func (t Transform) ApplyDir(d Vec3F) Vec3F {
	return V3FRotateY(d, t.Yaw)
}

// Compose returns the pose of child expressed in t's parent space
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Position: t.Apply(child.Position),
		Yaw:      WrapAngle(t.Yaw + child.Yaw),
	}
}

// Inverse returns the transform mapping parent space back into t's local space
func (t Transform) Inverse() Transform {
	return Transform{
		Position: V3FRotateY(V3FNeg(t.Position), -t.Yaw),
		Yaw:      WrapAngle(-t.Yaw),
	}
}

// Translate offsets the pose in parent space
func (t Transform) Translate(d Vec3F) Transform {
	return Transform{Position: V3FAdd(t.Position, d), Yaw: t.Yaw}
}

// Rotate spins the pose about its own origin
func (t Transform) Rotate(angle float64) Transform {
	return Transform{Position: t.Position, Yaw: WrapAngle(t.Yaw + angle)}
}

// RotateAround spins the pose about a parent-space pivot on the up axis
func (t Transform) RotateAround(pivot Vec3F, angle float64) Transform {
	rel := V3FSub(t.Position, pivot)
	return Transform{
		Position: V3FAdd(pivot, V3FRotateY(rel, angle)),
		Yaw:      WrapAngle(t.Yaw + angle),
	}
}

// ApproxEqual compares position and yaw within eps
func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return V3FApproxEqual(t.Position, o.Position, eps) && ApproxEqual(WrapAngle(t.Yaw-o.Yaw), 0, eps)
}
