package road

import (
	"github.com/lixenwraith/endless-road/vmath"
)

// Alignment is the rigid motion that seats a new piece's begin edge on a previous end edge
type Alignment struct {
	Angle       float64 // yaw about the new piece's origin, radians
	Translation vmath.Vec3F
}

// Degrees returns Angle in degrees
func (a Alignment) Degrees() float64 {
	return a.Angle * vmath.Rad2Deg
}

// Pose is the world pose of a piece first rotated by Angle about its origin then translated
func (a Alignment) Pose() vmath.Transform {
	return vmath.Transform{Position: a.Translation, Yaw: vmath.WrapAngle(a.Angle)}
}

// Align computes the rotation and translation that bring newBeginLeft onto prevEndLeft
// and the new begin edge parallel to the previous end edge
//
// The previous anchors are in world space, the new anchors in the new piece's own frame
// If both edges have equal width the right anchors coincide as well
func Align(prevEndLeft, prevEndRight, newBeginLeft, newBeginRight vmath.Vec3F) Alignment {
	beginEdge := vmath.V3FSub(newBeginRight, newBeginLeft)
	endEdge := vmath.V3FSub(prevEndRight, prevEndLeft)

	angle := vmath.V3FSignedAngleY(beginEdge, endEdge)
	rotatedLeft := vmath.V3FRotateY(newBeginLeft, angle)

	return Alignment{
		Angle:       angle,
		Translation: vmath.V3FSub(prevEndLeft, rotatedLeft),
	}
}
