// Package road generates an endless track of pieces that streams toward a stationary player
//
// The player sits at the world origin facing +Z. Pieces are drawn from a
// catalog, seam-aligned end to end and moved as one rigid body: straight
// pieces translate the track along -Z, curved pieces rotate it about their
// pivot. Once the active piece passes the player it is recycled: the oldest
// piece is evicted, a new one is appended at the far end and the overshoot
// is replayed under the next piece's motion mode
package road

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/events"
)

// ErrNotInitialized is returned by operations that need a built track
var ErrNotInitialized = errors.New("road: not initialized")

// ErrInvalidSettings is returned for unusable track settings
var ErrInvalidSettings = errors.New("road: invalid settings")

// Settings configure one track build
type Settings struct {
	NumberOfPieces       int
	FirstPieceTemplateID string
	TrackSpeed           float64 // distance units per second
}

// ResetPayload accompanies EventTrackReset
type ResetPayload struct {
	Pieces     int    `json:"pieces"`
	FirstPiece string `json:"first_piece"`
}

// Stats are cumulative counters for the current run
type Stats struct {
	Run      uuid.UUID `json:"run"`
	Ticks    uint64    `json:"ticks"`
	Recycles uint64    `json:"recycles"`
	Distance float64   `json:"distance"`
}

// State is a consistent copy of the track between ticks
type State struct {
	Run      uuid.UUID  `json:"run"`
	Tick     uint64     `json:"tick"`
	Distance float64    `json:"distance"`
	Speed    float64    `json:"speed"`
	Pivot    Pivot      `json:"pivot"`
	Pieces   []Snapshot `json:"pieces"`
}

// Option configures a Road
type Option func(*Road)

// WithLogger sets the logger used for diagnostics
func WithLogger(l *slog.Logger) Option {
	return func(r *Road) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithRandomSource replaces the template selection source
func WithRandomSource(rng catalog.RandomSource) Option {
	return func(r *Road) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithRouter shares an event router with other subsystems
func WithRouter(router *events.Router) Option {
	return func(r *Road) {
		if router != nil {
			r.router = router
		}
	}
}

// Road owns the queue, motion and recycling for one endless track
//
// Tick, Initialize and Reset must be called from one goroutine. Snapshot,
// Stats and Active may be called concurrently with them. Events are
// dispatched on the ticking goroutine after the state lock is released
type Road struct {
	mu sync.RWMutex

	lib    *catalog.Library
	rng    catalog.RandomSource
	logger *slog.Logger
	router *events.Router

	queue    *Queue
	motion   *Motion
	recycler *Recycler

	settings    Settings
	initialized bool

	run      uuid.UUID
	tick     uint64
	recycles uint64
	distance float64
}

// New creates a road over lib; the track is built by Initialize
func New(lib *catalog.Library, opts ...Option) (*Road, error) {
	if lib == nil || lib.Len() == 0 {
		return nil, catalog.ErrEmptyCatalog
	}

	r := &Road{
		lib:    lib,
		logger: slog.New(slog.DiscardHandler),
		router: events.NewRouter(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.queue = NewQueue(lib, r.rng)
	r.motion = NewMotion(r.queue, r.logger)
	r.recycler = NewRecycler(r.queue, r.motion)

	r.queue.onAppend = func(s Snapshot) { r.emit(events.EventPieceAdded, s) }
	r.queue.onEvict = func(s Snapshot) { r.emit(events.EventPieceEvicted, s) }
	r.motion.onDegenerate = func(s Snapshot) { r.emit(events.EventPivotDegenerate, s) }

	return r, nil
}

func (r *Road) emit(t events.EventType, payload any) {
	r.router.Emit(events.GameEvent{Type: t, Payload: payload, Tick: r.tick, Run: r.run})
}

// Initialize builds a fresh track of NumberOfPieces pieces
// On error the previous track, if any, is left untouched
func (r *Road) Initialize(s Settings) error {
	if s.NumberOfPieces < 2 {
		return fmt.Errorf("%w: number of pieces %d", ErrCapacity, s.NumberOfPieces)
	}
	if math.IsNaN(s.TrackSpeed) || math.IsInf(s.TrackSpeed, 0) || s.TrackSpeed < 0 {
		return fmt.Errorf("%w: track speed %v", ErrInvalidSettings, s.TrackSpeed)
	}
	if _, err := r.lib.Get(s.FirstPieceTemplateID); err != nil {
		return err
	}

	r.router.Hold()
	defer r.router.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.run = uuid.New()
	r.tick = 0
	r.recycles = 0
	r.distance = 0

	if err := r.queue.Initialize(s.NumberOfPieces, s.FirstPieceTemplateID); err != nil {
		r.initialized = false
		return err
	}
	r.motion.SetActive()

	r.settings = s
	r.initialized = true

	r.emit(events.EventTrackReset, ResetPayload{Pieces: s.NumberOfPieces, FirstPiece: s.FirstPieceTemplateID})
	r.logger.Info("track initialized",
		"run", r.run,
		"pieces", s.NumberOfPieces,
		"first", s.FirstPieceTemplateID,
		"speed", s.TrackSpeed,
	)
	return nil
}

// Reset tears down the track and rebuilds it with the last settings
func (r *Road) Reset() error {
	r.mu.RLock()
	s, ok := r.settings, r.initialized
	r.mu.RUnlock()

	if !ok {
		return ErrNotInitialized
	}
	return r.Initialize(s)
}

// Tick advances the track by speed×dt and recycles any passed pieces
// Events raised during the tick are published together once it completes
func (r *Road) Tick(dt float64) {
	r.router.Hold()
	defer r.router.Flush()

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.initialized {
		return
	}

	r.tick++
	d := r.settings.TrackSpeed * dt
	r.motion.Advance(d)
	r.distance += d

	for _, rec := range r.recycler.Check() {
		r.recycles++
		r.emit(events.EventRecycled, rec)
		r.logger.Debug("piece recycled",
			"tick", r.tick,
			"evicted", rec.EvictedID,
			"added", rec.AddedID,
			"reset_distance", rec.ResetDistance,
		)
	}

	r.emit(events.EventTick, nil)
}

// OnPieceAdded registers fn for every appended piece, including those
// appended during initialization and recycling
func (r *Road) OnPieceAdded(fn func(Snapshot)) {
	r.router.Register(events.HandlerFunc(func(ev events.GameEvent) {
		if s, ok := ev.Payload.(Snapshot); ok {
			fn(s)
		}
	}, events.EventPieceAdded))
}

// Subscribe registers an event handler on the road's router
func (r *Road) Subscribe(h events.Handler) {
	r.router.Register(h)
}

// Router exposes the router events are published on
func (r *Road) Router() *events.Router {
	return r.router
}

// SetSpeed changes the track speed from the next tick
func (r *Road) SetSpeed(speed float64) error {
	if math.IsNaN(speed) || math.IsInf(speed, 0) || speed < 0 {
		return fmt.Errorf("%w: track speed %v", ErrInvalidSettings, speed)
	}
	r.mu.Lock()
	r.settings.TrackSpeed = speed
	r.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the whole track
func (r *Road) Snapshot() State {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return State{
		Run:      r.run,
		Tick:     r.tick,
		Distance: r.distance,
		Speed:    r.settings.TrackSpeed,
		Pivot:    r.motion.Pivot(),
		Pieces:   r.queue.Snapshots(),
	}
}

// Active returns a copy of the active piece
func (r *Road) Active() (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p := r.queue.Active()
	if p == nil {
		return Snapshot{}, false
	}
	return p.Snapshot(), true
}

func (r *Road) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		Run:      r.run,
		Ticks:    r.tick,
		Recycles: r.recycles,
		Distance: r.distance,
	}
}

// Initialized reports whether a track has been built
func (r *Road) Initialized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.initialized
}
