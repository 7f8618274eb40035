package road

import (
	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/vmath"
)

// RecyclePayload describes one completed evict/append transition
type RecyclePayload struct {
	ResetDistance float64 `json:"reset_distance"`
	EvictedID     uint64  `json:"evicted"`
	AddedID       uint64  `json:"added"`
	ActiveID      uint64  `json:"active"`
}

// Recycler detects when the active piece has passed the player and rotates the queue
type Recycler struct {
	queue  *Queue
	motion *Motion
}

// NewRecycler binds a recycler to the queue and its motion driver
func NewRecycler(q *Queue, m *Motion) *Recycler {
	return &Recycler{queue: q, motion: m}
}

// Crossed reports whether either end anchor of the active piece is at or behind z=0
func (r *Recycler) Crossed() bool {
	active := r.queue.Active()
	if active == nil {
		return false
	}
	a := active.Anchors()
	return a.EndLeft.Z <= 0 || a.EndRight.Z <= 0
}

// ResetDistance is how far the track overshot the active piece's end edge
//
// Straight: the end edge's distance behind z=0
// Curved: the end edge's angle past the lateral axis, as arc length on the pivot radius
func (r *Recycler) ResetDistance() float64 {
	a := r.queue.Active().Anchors()
	if r.motion.Curving() {
		return vmath.V3FAngle(vmath.Right, a.EndEdge()) * r.motion.Pivot().Radius
	}
	return -a.EndLeft.Z
}

// Recycle rewinds the overshoot, evicts the trailing piece, appends a new
// one, promotes the next piece to active and replays the overshoot under
// the new active piece's motion mode
func (r *Recycler) Recycle() RecyclePayload {
	d := r.ResetDistance()
	r.motion.Advance(-d)

	evicted := r.queue.EvictOldest()
	added := r.queue.AppendPiece()
	r.queue.ReparentAll(1)
	r.motion.SetActive()

	active := r.queue.Active()
	if active.Template.Category == catalog.Straight {
		snapStraight(active)
	}

	r.motion.Advance(d)

	return RecyclePayload{
		ResetDistance: d,
		EvictedID:     evicted.ID,
		AddedID:       added.ID,
		ActiveID:      active.ID,
	}
}

// snapStraight removes accumulated yaw and lateral drift from a straight root
// Height is kept so sloped tracks stay continuous
func snapStraight(p *Piece) {
	if p.parent != nil {
		return
	}
	p.local.Yaw = 0
	p.local.Position.X = 0
}

// Check recycles while the active piece remains crossed
// At most one full queue turnover happens per call
func (r *Recycler) Check() []RecyclePayload {
	var out []RecyclePayload
	for i := 0; i < r.queue.Len() && r.Crossed(); i++ {
		out = append(out, r.Recycle())
	}
	return out
}
