package road

import (
	"errors"
	"math"

	"github.com/lixenwraith/endless-road/vmath"
)

// ErrDegeneratePivot is returned when the begin and end edges of a piece are parallel
var ErrDegeneratePivot = errors.New("road: degenerate pivot, edges are parallel")

// Pivot is the rotation centre of a curved piece in world space
type Pivot struct {
	Point      vmath.Vec3F `json:"point"`
	Radius     float64     `json:"radius"`
	Direction  float64     `json:"direction"` // +1 left, -1 right, 0 linear
	Degenerate bool        `json:"degenerate"`
}

// SolvePivot intersects the line through beginLeft along the begin edge with
// the line through endLeft along the end edge
//
// The pivot is the midpoint of the closest points, so edges with a small
// vertical offset still resolve. Radius is the lateral distance |Point.X|,
// valid while the piece's begin edge sits centred on the player's axis
func SolvePivot(beginLeft, beginRight, endLeft, endRight vmath.Vec3F) (Pivot, error) {
	beginEdge := vmath.V3FSub(beginRight, beginLeft)
	endEdge := vmath.V3FSub(endRight, endLeft)

	c1, c2, ok := vmath.ClosestLinePoints(beginLeft, beginEdge, endLeft, endEdge)
	if !ok {
		return Pivot{Degenerate: true}, ErrDegeneratePivot
	}

	point := vmath.V3FMid(c1, c2)
	return Pivot{Point: point, Radius: math.Abs(point.X)}, nil
}
