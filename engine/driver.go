// Package engine runs a track on a fixed timestep
package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Ticker is the simulation the driver steps
type Ticker interface {
	Tick(dt float64)
	Reset() error
}

// DriverOption configures a Driver
type DriverOption func(*Driver)

// WithTickRate sets ticks per second, non-positive values are ignored
func WithTickRate(hz int) DriverOption {
	return func(d *Driver) {
		if hz > 0 {
			d.interval = time.Second / time.Duration(hz)
		}
	}
}

// WithMaxCatchUp bounds the ticks run by a single Advance
func WithMaxCatchUp(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.maxCatchUp = n
		}
	}
}

// WithTimeProvider replaces the wall clock behind the pausable clock
func WithTimeProvider(tp TimeProvider) DriverOption {
	return func(d *Driver) {
		if tp != nil {
			d.source = tp
		}
	}
}

func WithDriverLogger(l *slog.Logger) DriverOption {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithAfterTick registers fn to run after every completed tick with the tick count
// fn runs under the driver lock and must not call back into the driver
func WithAfterTick(fn func(ticks uint64)) DriverOption {
	return func(d *Driver) {
		d.afterTick = append(d.afterTick, fn)
	}
}

// Driver owns the fixed-timestep loop for one Ticker
//
// Architecture:
//   - Elapsed track time accumulates; each whole interval runs one Tick
//   - At most maxCatchUp ticks run per Advance, surplus time is dropped
//   - Pause freezes the clock so resuming never bursts ticks
//   - Reset requests are applied between ticks on the driving goroutine
type Driver struct {
	target Ticker
	source TimeProvider
	clock  *PausableClock
	logger *slog.Logger

	interval   time.Duration
	maxCatchUp int
	afterTick  []func(uint64)

	mu          sync.Mutex
	accumulator time.Duration
	last        time.Time
	ticks       uint64
	dropped     uint64

	resetRequested atomic.Bool
	running        atomic.Bool
}

// NewDriver creates a driver at 60 Hz with a catch-up limit of 5
func NewDriver(target Ticker, opts ...DriverOption) *Driver {
	d := &Driver{
		target:     target,
		source:     NewMonotonicTimeProvider(),
		logger:     slog.New(slog.DiscardHandler),
		interval:   time.Second / 60,
		maxCatchUp: 5,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.clock = NewPausableClock(d.source)
	d.last = d.clock.Now()
	return d
}

// Interval returns the fixed tick duration
func (d *Driver) Interval() time.Duration {
	return d.interval
}

// Step runs exactly one tick, applying a pending reset first
func (d *Driver) Step() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applyReset()
	d.step()
}

func (d *Driver) step() {
	d.target.Tick(d.interval.Seconds())
	d.ticks++
	for _, fn := range d.afterTick {
		fn(d.ticks)
	}
}

func (d *Driver) applyReset() {
	if !d.resetRequested.Swap(false) {
		return
	}
	if err := d.target.Reset(); err != nil {
		d.logger.Error("reset failed", "error", err)
		return
	}
	d.accumulator = 0
	d.logger.Info("track reset", "ticks", d.ticks)
}

// Advance adds elapsed time and runs the whole ticks it covers
// Returns the number of ticks run
func (d *Driver) Advance(elapsed time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.advance(elapsed)
}

func (d *Driver) advance(elapsed time.Duration) int {
	d.applyReset()
	if d.clock.IsPaused() || elapsed <= 0 {
		return 0
	}

	d.accumulator += elapsed
	n := 0
	for d.accumulator >= d.interval && n < d.maxCatchUp {
		d.step()
		d.accumulator -= d.interval
		n++
	}

	if d.accumulator >= d.interval {
		skipped := uint64(d.accumulator / d.interval)
		d.dropped += skipped
		d.accumulator %= d.interval
		d.logger.Warn("tick budget exceeded, dropping time", "skipped", skipped, "ran", n)
	}
	return n
}

// Update advances by the track time elapsed since the previous Update
func (d *Driver) Update() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.clock.Now()
	elapsed := now.Sub(d.last)
	d.last = now
	return d.advance(elapsed)
}

// Run calls Update on every interval until ctx is done
func (d *Driver) Run(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return nil
	}
	defer d.running.Store(false)

	d.mu.Lock()
	d.last = d.clock.Now()
	d.mu.Unlock()

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.Update()
		}
	}
}

// Pause freezes track time
func (d *Driver) Pause() {
	d.clock.Pause()
}

// Resume continues from the paused instant
func (d *Driver) Resume() {
	d.clock.Resume()
}

// TogglePause flips the pause state and returns the new state
func (d *Driver) TogglePause() bool {
	if d.clock.IsPaused() {
		d.clock.Resume()
		return false
	}
	d.clock.Pause()
	return true
}

func (d *Driver) IsPaused() bool {
	return d.clock.IsPaused()
}

// RequestReset schedules a track rebuild before the next tick
// Safe to call from any goroutine
func (d *Driver) RequestReset() {
	d.resetRequested.Store(true)
}

// Ticks returns the number of ticks run since creation
func (d *Driver) Ticks() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ticks
}

// Dropped returns the number of intervals discarded by the catch-up limit
func (d *Driver) Dropped() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dropped
}
