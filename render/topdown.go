// Package render draws a top-down view of the track into a terminal screen
package render

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/endless-road/road"
	"github.com/lixenwraith/endless-road/vmath"
)

var (
	RgbBackground = tcell.NewRGBColor(10, 10, 20)
	RgbStraight   = tcell.NewRGBColor(140, 140, 150)
	RgbCurved     = tcell.NewRGBColor(230, 150, 40)
	RgbActive     = tcell.NewRGBColor(80, 220, 120)
	RgbTrailing   = tcell.NewRGBColor(70, 70, 80)
	RgbSeam       = tcell.NewRGBColor(200, 200, 220)
	RgbPivot      = tcell.NewRGBColor(220, 60, 60)
	RgbPlayer     = tcell.NewRGBColor(255, 255, 80)
	RgbStatus     = tcell.NewRGBColor(180, 180, 200)
)

const (
	railRune   = '·'
	seamRune   = '='
	pivotRune  = '+'
	playerRune = '▲'
)

// TopDown projects world X/Z onto screen columns/rows with the player near the bottom
type TopDown struct {
	screen tcell.Screen
	scale  float64 // world units per row; columns use half of it for cell aspect
}

// NewTopDown creates a renderer; scale <= 0 defaults to 2 units per row
func NewTopDown(screen tcell.Screen, scale float64) *TopDown {
	if scale <= 0 {
		scale = 2
	}
	return &TopDown{screen: screen, scale: scale}
}

// Zoom multiplies the scale by f
func (r *TopDown) Zoom(f float64) {
	if f > 0 {
		r.scale *= f
	}
}

// origin is the player's cell
func (r *TopDown) origin() (int, int) {
	w, h := r.screen.Size()
	return w / 2, h - 3
}

// Project maps a world point to a cell; ok is false outside the drawable area
func (r *TopDown) Project(p vmath.Vec3F) (col, row int, ok bool) {
	w, h := r.screen.Size()
	ox, oy := r.origin()
	col = ox + int(math.Round(p.X*2/r.scale))
	row = oy - int(math.Round(p.Z/r.scale))
	return col, row, col >= 0 && col < w && row >= 0 && row < h-1
}

// Draw renders one frame from a track snapshot
func (r *TopDown) Draw(state road.State, paused bool) {
	bg := tcell.StyleDefault.Background(RgbBackground)
	r.screen.Fill(' ', bg)

	for i, p := range state.Pieces {
		style := bg.Foreground(RgbStraight)
		switch {
		case i == 0:
			style = bg.Foreground(RgbTrailing)
		case i == 1:
			style = bg.Foreground(RgbActive)
		case p.Category == "curved":
			style = bg.Foreground(RgbCurved)
		}

		a := p.Anchors
		r.line(a.BeginLeft, a.EndLeft, railRune, style)
		r.line(a.BeginRight, a.EndRight, railRune, style)
		r.line(a.EndLeft, a.EndRight, seamRune, bg.Foreground(RgbSeam))
	}

	if len(state.Pieces) > 0 {
		a := state.Pieces[0].Anchors
		r.line(a.BeginLeft, a.BeginRight, seamRune, bg.Foreground(RgbSeam))
	}

	if state.Pivot.Radius > 0 && !state.Pivot.Degenerate {
		r.plot(state.Pivot.Point, pivotRune, bg.Foreground(RgbPivot))
	}
	r.plot(vmath.Vec3F{}, playerRune, bg.Foreground(RgbPlayer).Bold(true))

	r.status(state, paused, bg.Foreground(RgbStatus))
	r.screen.Show()
}

func (r *TopDown) plot(p vmath.Vec3F, ch rune, style tcell.Style) {
	if c, row, ok := r.Project(p); ok {
		r.screen.SetContent(c, row, ch, nil, style)
	}
}

// line rasterises a world segment with Bresenham, clipping per cell
func (r *TopDown) line(a, b vmath.Vec3F, ch rune, style tcell.Style) {
	w, h := r.screen.Size()
	x0, y0, _ := r.Project(a)
	x1, y1, _ := r.Project(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy

	// Segments projected far off screen are cut short
	limit := min(dx-dy, 20000)
	for steps := 0; steps <= limit; steps++ {
		if x0 >= 0 && x0 < w && y0 >= 0 && y0 < h-1 {
			r.screen.SetContent(x0, y0, ch, nil, style)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (r *TopDown) status(state road.State, paused bool, style tcell.Style) {
	w, h := r.screen.Size()

	run := state.Run.String()
	if len(run) > 8 {
		run = run[:8]
	}
	text := fmt.Sprintf(" run %s tick %d dist %.1f speed %.1f pieces %d", run, state.Tick, state.Distance, state.Speed, len(state.Pieces))
	if len(state.Pieces) > 1 {
		text += " active " + state.Pieces[1].TemplateID
	}
	if paused {
		text = " [PAUSED]" + text
	}

	col := 0
	for _, ch := range text {
		if col >= w {
			break
		}
		r.screen.SetContent(col, h-1, ch, nil, style)
		col++
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
