package road

import (
	"errors"
	"fmt"

	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/vmath"
)

// ErrCapacity is returned for queues too short to hold a trailing and an active piece
var ErrCapacity = errors.New("road: capacity must be at least 2")

// Queue owns every live piece, ordered oldest first
//
// Layout:
//   - Index 0 is the trailing piece, already behind the player
//   - Index 1 is the active piece whose motion mode drives the track
//   - Every other piece is parented to the anchor (root) so motion only
//     transforms roots and the rest follows rigidly
type Queue struct {
	lib *catalog.Library
	rng catalog.RandomSource

	pieces []*Piece
	root   *Piece
	nextID uint64

	// Hooks fire after the queue is consistent again
	onAppend func(Snapshot)
	onEvict  func(Snapshot)
}

// NewQueue creates an empty queue drawing templates from lib
// A nil rng seeds a source from the wall clock
func NewQueue(lib *catalog.Library, rng catalog.RandomSource) *Queue {
	if rng == nil {
		rng = catalog.NewRandomSource(0)
	}
	return &Queue{lib: lib, rng: rng}
}

// Initialize discards all pieces and seeds capacity pieces
//
// The active piece starts at the identity pose with the trailing piece
// seam-aligned behind it, both built from firstID. The remaining
// capacity-2 pieces are appended and each fires the append hook; the two
// seed pieces do not
func (q *Queue) Initialize(capacity int, firstID string) error {
	if capacity < 2 {
		return fmt.Errorf("%w: got %d", ErrCapacity, capacity)
	}
	if q.lib == nil || q.lib.Len() == 0 {
		return catalog.ErrEmptyCatalog
	}
	first, err := q.lib.Get(firstID)
	if err != nil {
		return err
	}

	q.Clear()

	active := q.instantiate(first, vmath.Identity)
	// Seat the trailing piece's end edge on the active piece's begin edge
	a := first.Anchors
	behind := Align(a.BeginLeft, a.BeginRight, a.EndLeft, a.EndRight)
	trailing := q.instantiate(first, behind.Pose())

	q.pieces = append(q.pieces, trailing, active)
	q.ReparentAll(1)

	for i := 2; i < capacity; i++ {
		q.AppendPiece()
	}
	return nil
}

// Clear drops every piece without firing hooks
func (q *Queue) Clear() {
	for i := range q.pieces {
		q.pieces[i].parent = nil
		q.pieces[i] = nil
	}
	q.pieces = q.pieces[:0]
	q.root = nil
}

func (q *Queue) instantiate(t *catalog.Template, world vmath.Transform) *Piece {
	q.nextID++
	p := &Piece{ID: q.nextID, Template: t, parent: q.root}
	p.setWorld(world)
	return p
}

// AppendPiece picks a random template and seats it on the tail's end edge
func (q *Queue) AppendPiece() *Piece {
	return q.appendTemplate(q.lib.PickRandom(q.rng))
}

func (q *Queue) appendTemplate(t *catalog.Template) *Piece {
	pose := vmath.Identity
	if tail := q.Tail(); tail != nil {
		end := tail.Anchors()
		pose = Align(end.EndLeft, end.EndRight, t.Anchors.BeginLeft, t.Anchors.BeginRight).Pose()
	}

	p := q.instantiate(t, pose)
	q.pieces = append(q.pieces, p)

	if q.onAppend != nil {
		q.onAppend(p.Snapshot())
	}
	return p
}

// EvictOldest destroys the trailing piece
// Evicting the anchor first bakes every child to a world-space root
// Panics on an empty queue
func (q *Queue) EvictOldest() *Piece {
	if len(q.pieces) == 0 {
		panic("road: evict from empty queue")
	}

	p := q.pieces[0]
	snap := p.Snapshot()

	if p == q.root {
		q.detachAll()
	}

	copy(q.pieces, q.pieces[1:])
	q.pieces[len(q.pieces)-1] = nil
	q.pieces = q.pieces[:len(q.pieces)-1]

	p.local = snap.Pose
	p.parent = nil

	if q.onEvict != nil {
		q.onEvict(snap)
	}
	return p
}

// detachAll turns every piece into a root holding its world pose
func (q *Queue) detachAll() {
	worlds := make([]vmath.Transform, len(q.pieces))
	for i, p := range q.pieces {
		worlds[i] = p.World()
	}
	for i, p := range q.pieces {
		p.parent = nil
		p.local = worlds[i]
	}
	q.root = nil
}

// ReparentAll makes the piece at anchorIndex the single root
// World poses are preserved
func (q *Queue) ReparentAll(anchorIndex int) {
	if anchorIndex < 0 || anchorIndex >= len(q.pieces) {
		panic(fmt.Sprintf("road: anchor index %d out of range [0,%d)", anchorIndex, len(q.pieces)))
	}

	worlds := make([]vmath.Transform, len(q.pieces))
	for i, p := range q.pieces {
		worlds[i] = p.World()
	}

	anchor := q.pieces[anchorIndex]
	inv := worlds[anchorIndex].Inverse()

	for i, p := range q.pieces {
		if p == anchor {
			p.parent = nil
			p.local = worlds[i]
			continue
		}
		p.parent = anchor
		p.local = inv.Compose(worlds[i])
	}
	q.root = anchor
}

// transformRoots applies fn to the pose of every root piece
func (q *Queue) transformRoots(fn func(vmath.Transform) vmath.Transform) {
	for _, p := range q.pieces {
		if p.parent == nil {
			p.local = fn(p.local)
		}
	}
}

// Active returns the piece at index 1
func (q *Queue) Active() *Piece {
	if len(q.pieces) < 2 {
		return nil
	}
	return q.pieces[1]
}

// Trailing returns the piece at index 0
func (q *Queue) Trailing() *Piece {
	if len(q.pieces) == 0 {
		return nil
	}
	return q.pieces[0]
}

// Tail returns the most recently appended piece
func (q *Queue) Tail() *Piece {
	if len(q.pieces) == 0 {
		return nil
	}
	return q.pieces[len(q.pieces)-1]
}

// Root returns the current anchor, nil when pieces are independent
func (q *Queue) Root() *Piece {
	return q.root
}

func (q *Queue) Len() int {
	return len(q.pieces)
}

// At returns the piece at index i, oldest first
func (q *Queue) At(i int) *Piece {
	return q.pieces[i]
}

// Snapshots copies every piece in queue order
func (q *Queue) Snapshots() []Snapshot {
	out := make([]Snapshot, len(q.pieces))
	for i, p := range q.pieces {
		out[i] = p.Snapshot()
	}
	return out
}
