// Package catalog holds the immutable piece blueprints a road is assembled from
package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/endless-road/vmath"
)

var (
	ErrEmptyCatalog      = errors.New("catalog: no piece templates")
	ErrTemplateNotFound  = errors.New("catalog: template not found")
	ErrDuplicateTemplate = errors.New("catalog: duplicate template id")
	ErrInvalidTemplate   = errors.New("catalog: invalid template")
)

// Category selects the motion mode a piece uses while active
type Category int

const (
	Straight Category = iota
	Curved
)

func (c Category) String() string {
	switch c {
	case Straight:
		return "straight"
	case Curved:
		return "curved"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// ParseCategory accepts "straight" and "curved"/"curve", case-insensitive
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "straight":
		return Straight, nil
	case "curved", "curve":
		return Curved, nil
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidTemplate, s)
}

// Turn is the lateral orientation of a curved piece
type Turn int

const (
	TurnNone Turn = iota
	TurnLeft
	TurnRight
)

func (t Turn) String() string {
	switch t {
	case TurnLeft:
		return "left"
	case TurnRight:
		return "right"
	default:
		return "none"
	}
}

// ParseTurn accepts "left", "right" and "none"/""
func ParseTurn(s string) (Turn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l":
		return TurnLeft, nil
	case "right", "r":
		return TurnRight, nil
	case "", "none":
		return TurnNone, nil
	}
	return TurnNone, fmt.Errorf("%w: unknown turn %q", ErrInvalidTemplate, s)
}

// Anchors are the four connection markers of a piece
type Anchors struct {
	BeginLeft  vmath.Vec3F `json:"begin_left"`
	BeginRight vmath.Vec3F `json:"begin_right"`
	EndLeft    vmath.Vec3F `json:"end_left"`
	EndRight   vmath.Vec3F `json:"end_right"`
}

// BeginEdge points from BeginLeft to BeginRight
func (a Anchors) BeginEdge() vmath.Vec3F {
	return vmath.V3FSub(a.BeginRight, a.BeginLeft)
}

// EndEdge points from EndLeft to EndRight
func (a Anchors) EndEdge() vmath.Vec3F {
	return vmath.V3FSub(a.EndRight, a.EndLeft)
}

// Transform maps all four anchors through t
func (a Anchors) Transform(t vmath.Transform) Anchors {
	return Anchors{
		BeginLeft:  t.Apply(a.BeginLeft),
		BeginRight: t.Apply(a.BeginRight),
		EndLeft:    t.Apply(a.EndLeft),
		EndRight:   t.Apply(a.EndRight),
	}
}

// Template is an immutable piece blueprint
type Template struct {
	ID       string
	Category Category
	Anchors  Anchors // local frame
	Payload  map[string]string
}

// NewTemplate validates anchors and copies the payload
func NewTemplate(id string, category Category, anchors Anchors, payload map[string]string) (*Template, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty id", ErrInvalidTemplate)
	}
	if category != Straight && category != Curved {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalidTemplate, id, category)
	}
	if vmath.V3FMagSq(anchors.BeginEdge()) < vmath.Epsilon || vmath.V3FMagSq(anchors.EndEdge()) < vmath.Epsilon {
		return nil, fmt.Errorf("%w: %s: zero-width edge", ErrInvalidTemplate, id)
	}

	var p map[string]string
	if len(payload) > 0 {
		p = make(map[string]string, len(payload))
		for k, v := range payload {
			p[k] = v
		}
	}

	return &Template{ID: id, Category: category, Anchors: anchors, Payload: p}, nil
}

// Width is the begin edge length
func (t *Template) Width() float64 {
	return vmath.V3FMag(t.Anchors.BeginEdge())
}

// Length is the chord between the begin and end edge midpoints
func (t *Template) Length() float64 {
	begin := vmath.V3FMid(t.Anchors.BeginLeft, t.Anchors.BeginRight)
	end := vmath.V3FMid(t.Anchors.EndLeft, t.Anchors.EndRight)
	return vmath.V3FDist(begin, end)
}

// Turn derives the lateral orientation from the anchor geometry
// A negative up component of beginEdge×endEdge bends the road left
func (t *Template) Turn() Turn {
	if t.Category != Curved {
		return TurnNone
	}
	up := vmath.V3FCross(t.Anchors.BeginEdge(), t.Anchors.EndEdge()).Y
	switch {
	case math.Abs(up) < vmath.Epsilon:
		return TurnNone
	case up < 0:
		return TurnLeft
	default:
		return TurnRight
	}
}

// Direction is the yaw sign that carries the piece toward the player: +1 left, -1 right, 0 none
func (t *Template) Direction() float64 {
	switch t.Turn() {
	case TurnLeft:
		return 1
	case TurnRight:
		return -1
	default:
		return 0
	}
}

// Mirrored returns the opposite-handed twin
// X is negated and left/right anchors swap so BeginLeft stays on the left
func (t *Template) Mirrored(id string) *Template {
	flip := func(v vmath.Vec3F) vmath.Vec3F { return vmath.Vec3F{X: -v.X, Y: v.Y, Z: v.Z} }
	m, _ := NewTemplate(id, t.Category, Anchors{
		BeginLeft:  flip(t.Anchors.BeginRight),
		BeginRight: flip(t.Anchors.BeginLeft),
		EndLeft:    flip(t.Anchors.EndRight),
		EndRight:   flip(t.Anchors.EndLeft),
	}, t.Payload)
	return m
}
