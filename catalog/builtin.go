package catalog

import (
	"fmt"

	"github.com/lixenwraith/endless-road/vmath"
)

// DefaultWidth is the road width used by Builtin
const DefaultWidth = 4.0

// NewStraight builds a straight piece from z=0 to z=length centred on x=0
func NewStraight(id string, length, width float64) (*Template, error) {
	if length <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %s: length and width must be positive", ErrInvalidTemplate, id)
	}
	hw := width / 2
	return NewTemplate(id, Straight, Anchors{
		BeginLeft:  vmath.Vec3F{X: -hw},
		BeginRight: vmath.Vec3F{X: hw},
		EndLeft:    vmath.Vec3F{X: -hw, Z: length},
		EndRight:   vmath.Vec3F{X: hw, Z: length},
	}, nil)
}

// NewCurve builds an arc of the given centreline radius and sweep in degrees
// The begin edge lies on z=0 centred on x=0; the pivot sits radius units to the turn side
func NewCurve(id string, radius, angleDeg, width float64, turn Turn) (*Template, error) {
	if radius <= 0 || width <= 0 {
		return nil, fmt.Errorf("%w: %s: radius and width must be positive", ErrInvalidTemplate, id)
	}
	if width/2 >= radius {
		return nil, fmt.Errorf("%w: %s: width exceeds curve diameter", ErrInvalidTemplate, id)
	}
	if angleDeg <= 0 || angleDeg >= 180 {
		return nil, fmt.Errorf("%w: %s: angle must be in (0, 180)", ErrInvalidTemplate, id)
	}

	var side float64
	switch turn {
	case TurnLeft:
		side = -1
	case TurnRight:
		side = 1
	default:
		return nil, fmt.Errorf("%w: %s: curve needs a turn", ErrInvalidTemplate, id)
	}

	hw := width / 2
	pivot := vmath.Vec3F{X: side * radius}
	sweep := side * angleDeg * vmath.Deg2Rad
	end := func(p vmath.Vec3F) vmath.Vec3F {
		return vmath.V3FAdd(pivot, vmath.V3FRotateY(vmath.V3FSub(p, pivot), sweep))
	}

	bl := vmath.Vec3F{X: -hw}
	br := vmath.Vec3F{X: hw}
	return NewTemplate(id, Curved, Anchors{
		BeginLeft:  bl,
		BeginRight: br,
		EndLeft:    end(bl),
		EndRight:   end(br),
	}, map[string]string{"radius": fmt.Sprintf("%g", radius)})
}

// Builtin returns the default catalog used when no catalog file is configured
func Builtin() *Library {
	must := func(t *Template, err error) *Template {
		if err != nil {
			panic(err)
		}
		return t
	}

	lib, err := NewLibrary([]*Template{
		must(NewStraight("Straight10", 10, DefaultWidth)),
		must(NewStraight("Straight60m", 60, DefaultWidth)),
		must(NewCurve("Curve90L", 20, 90, DefaultWidth, TurnLeft)),
		must(NewCurve("Curve90R", 20, 90, DefaultWidth, TurnRight)),
		must(NewCurve("Curve45L", 30, 45, DefaultWidth, TurnLeft)),
		must(NewCurve("Curve45R", 30, 45, DefaultWidth, TurnRight)),
	})
	if err != nil {
		panic(err)
	}
	return lib
}
