// Package audio plays short tones for track events through the system speaker
package audio

import (
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/endless-road/events"
)

// Config holds audio output settings
type Config struct {
	Enabled      bool
	MasterVolume float64 // 0.0-1.0
	SampleRate   int
}

func DefaultConfig() Config {
	return Config{
		Enabled:      false,
		MasterVolume: 0.6,
		SampleRate:   48000,
	}
}

// ApplyEnv reads ENDLESS_ROAD_MASTER_VOLUME (0-100) and ENDLESS_ROAD_SAMPLE_RATE
// Invalid values keep the current setting
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("ENDLESS_ROAD_MASTER_VOLUME"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MasterVolume = min(max(float64(n)/100.0, 0), 1)
		}
	}
	if v, ok := lookup("ENDLESS_ROAD_SAMPLE_RATE"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.SampleRate = n
		}
	}
}

// Cues turns track events into tones
// Until Initialize succeeds every event is ignored
type Cues struct {
	mu          sync.Mutex
	cfg         Config
	rate        beep.SampleRate
	mixer       *beep.Mixer
	initialized bool
	logger      *slog.Logger

	// play hands a finished streamer to the output
	play func(beep.Streamer)

	lastTick uint64
	burst    int
	played   map[events.EventType]int
}

// NewCues creates an uninitialized cue player
func NewCues(cfg Config, logger *slog.Logger) *Cues {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultConfig().SampleRate
	}
	c := &Cues{
		cfg:    cfg,
		rate:   beep.SampleRate(cfg.SampleRate),
		mixer:  &beep.Mixer{},
		logger: logger,
		played: make(map[events.EventType]int),
	}
	c.play = c.playSpeaker
	return c
}

// Initialize opens the speaker; disabled configs succeed without output
func (c *Cues) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized || !c.cfg.Enabled {
		return nil
	}

	if err := speaker.Init(c.rate, c.rate.N(100*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	c.logger.Info("audio initialized", "rate", int(c.rate), "volume", c.cfg.MasterVolume)
	return nil
}

// Close silences everything; the speaker itself stays open
func (c *Cues) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	c.initialized = false
}

func (c *Cues) playSpeaker(s beep.Streamer) {
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// EventTypes implements events.Handler
func (c *Cues) EventTypes() []events.EventType {
	return []events.EventType{events.EventRecycled, events.EventTrackReset, events.EventPivotDegenerate}
}

// HandleEvent implements events.Handler
func (c *Cues) HandleEvent(ev events.GameEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var s beep.Streamer
	switch ev.Type {
	case events.EventRecycled:
		if ev.Tick == c.lastTick {
			c.burst++
		} else {
			c.lastTick, c.burst = ev.Tick, 0
		}
		s = RecycleTone(c.rate, c.burst)
	case events.EventTrackReset:
		c.burst = 0
		s = ResetTone(c.rate)
	case events.EventPivotDegenerate:
		s = DegenerateTone(c.rate)
	default:
		return
	}

	c.played[ev.Type]++
	c.play(newVolume(s, c.cfg.MasterVolume))
}

// Played returns how many cues of type t were produced
func (c *Cues) Played(t events.EventType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.played[t]
}
