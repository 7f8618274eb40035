package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/lixenwraith/endless-road/vmath"
)

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// oscillator generates a fixed-length raw wave
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *vmath.FastRand
}

// NewOscillator creates a finite streamer of the given wave
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    vmath.NewFastRand(uint64(freq*1000) + 1),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveNoise:
			val = float64(o.noise.IntN(2001))/1000 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies linear attack and release to a stream
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s over duration; attack and release are clamped to fit
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	total := rate.N(duration)
	att := min(rate.N(attack), total)
	rel := min(rate.N(release), total-att)
	return &envelope{streamer: s, attack: att, release: rel, total: total}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if releaseStart := e.total - e.release; e.release > 0 && e.position >= releaseStart {
			vol = float64(e.total-e.position) / float64(e.release)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero or less is silent since Log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// RecycleTone is a short blip; each extra recycle in the same tick raises the pitch a fifth
func RecycleTone(rate beep.SampleRate, burst int) beep.Streamer {
	const d = 60 * time.Millisecond
	freq := 660.0 * math.Pow(1.5, float64(min(burst, 4)))
	osc := NewOscillator(freq, d, WaveSine, rate)
	return NewEnvelope(osc, d, 5*time.Millisecond, 40*time.Millisecond, rate)
}

// ResetTone is a rising two-note chime
func ResetTone(rate beep.SampleRate) beep.Streamer {
	const d = 120 * time.Millisecond
	n1 := NewEnvelope(NewOscillator(523.25, d, WaveSquare, rate), d, 5*time.Millisecond, 60*time.Millisecond, rate)
	n2 := NewEnvelope(NewOscillator(783.99, d, WaveSquare, rate), d, 5*time.Millisecond, 80*time.Millisecond, rate)
	return newVolume(beep.Seq(n1, n2), 0.5)
}

// DegenerateTone is a low buzz mixed with noise
func DegenerateTone(rate beep.SampleRate) beep.Streamer {
	const d = 150 * time.Millisecond
	buzz := NewEnvelope(NewOscillator(100, d, WaveSaw, rate), d, 10*time.Millisecond, 60*time.Millisecond, rate)
	hiss := NewEnvelope(NewOscillator(0, d, WaveNoise, rate), d, 10*time.Millisecond, 60*time.Millisecond, rate)
	return beep.Mix(newVolume(buzz, 0.7), newVolume(hiss, 0.2))
}
