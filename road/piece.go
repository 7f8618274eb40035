package road

import (
	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/vmath"
)

// Piece is one live instance of a template in the queue
// Pose is stored relative to the parent; a nil parent means local is world
type Piece struct {
	ID       uint64
	Template *catalog.Template

	local  vmath.Transform
	parent *Piece
}

// World returns the piece pose in world space
func (p *Piece) World() vmath.Transform {
	if p.parent == nil {
		return p.local
	}
	return p.parent.World().Compose(p.local)
}

// Anchors returns the template anchors in world space
func (p *Piece) Anchors() catalog.Anchors {
	return p.Template.Anchors.Transform(p.World())
}

// IsRoot reports whether motion transforms this piece directly
func (p *Piece) IsRoot() bool {
	return p.parent == nil
}

// setWorld places the piece at w while keeping its current parent
func (p *Piece) setWorld(w vmath.Transform) {
	if p.parent == nil {
		p.local = w
		return
	}
	p.local = p.parent.World().Inverse().Compose(w)
}

// Snapshot copies the piece state for use outside the queue
func (p *Piece) Snapshot() Snapshot {
	world := p.World()
	return Snapshot{
		ID:         p.ID,
		TemplateID: p.Template.ID,
		Category:   p.Template.Category.String(),
		Pose:       world,
		Anchors:    p.Template.Anchors.Transform(world),
	}
}

// Snapshot is a detached, read-only view of a piece
type Snapshot struct {
	ID         uint64          `json:"id"`
	TemplateID string          `json:"template"`
	Category   string          `json:"category"`
	Pose       vmath.Transform `json:"pose"`
	Anchors    catalog.Anchors `json:"anchors"`
}
