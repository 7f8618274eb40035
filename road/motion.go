package road

import (
	"log/slog"

	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/vmath"
)

// Motion moves the whole queue toward the player according to the active piece
//
// Straight: every root translates by -d along the forward axis
// Curved: every root rotates about the pivot by d/radius, signed by the turn
type Motion struct {
	queue  *Queue
	pivot  Pivot
	logger *slog.Logger

	onDegenerate func(Snapshot)
}

// NewMotion creates a motion driver bound to q
func NewMotion(q *Queue, logger *slog.Logger) *Motion {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Motion{queue: q, logger: logger}
}

// SetActive recomputes the pivot for the queue's current active piece
// Must be called whenever the active piece changes
func (m *Motion) SetActive() {
	m.pivot = Pivot{}

	active := m.queue.Active()
	if active == nil || active.Template.Category != catalog.Curved {
		return
	}

	a := active.Anchors()
	pivot, err := SolvePivot(a.BeginLeft, a.BeginRight, a.EndLeft, a.EndRight)
	if err == nil && pivot.Radius < vmath.Epsilon {
		pivot.Degenerate = true
	}
	pivot.Direction = active.Template.Direction()
	if pivot.Direction == 0 {
		pivot.Degenerate = true
	}

	if pivot.Degenerate {
		m.logger.Warn("degenerate pivot, using linear motion",
			"piece", active.ID,
			"template", active.Template.ID,
			"radius", pivot.Radius,
		)
		pivot.Direction = 0
		if m.onDegenerate != nil {
			m.onDegenerate(active.Snapshot())
		}
	}
	m.pivot = pivot
}

// Pivot returns the pivot of the active piece, zero for straight pieces
func (m *Motion) Pivot() Pivot {
	return m.pivot
}

// Curving reports whether the next Advance rotates rather than translates
func (m *Motion) Curving() bool {
	active := m.queue.Active()
	return active != nil && active.Template.Category == catalog.Curved && !m.pivot.Degenerate
}

// Advance moves the track by distance; negative values rewind
func (m *Motion) Advance(distance float64) {
	if distance == 0 || m.queue.Len() == 0 {
		return
	}

	if m.Curving() {
		theta := distance / m.pivot.Radius * m.pivot.Direction
		point := m.pivot.Point
		m.queue.transformRoots(func(t vmath.Transform) vmath.Transform {
			return t.RotateAround(point, theta)
		})
		return
	}

	step := vmath.Vec3F{Z: -distance}
	m.queue.transformRoots(func(t vmath.Transform) vmath.Transform {
		return t.Translate(step)
	})
}
