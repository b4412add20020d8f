package audiograph

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// rampGain scales samples by a gain that glides toward its target instead of
// jumping, which keeps volume changes and music fades click-free.
type rampGain struct {
	streamer beep.Streamer

	mu      sync.Mutex
	current float64
	target  float64
	step    float64 // gain delta per sample
	onDone  func()  // fires once when the glide lands on the target
}

// newRampGain wraps a streamer at the given initial gain. rampSeconds is the
// time a full 0..1 sweep takes.
func newRampGain(s beep.Streamer, gain, rampSeconds float64) *rampGain {
	return &rampGain{
		streamer: s,
		current:  gain,
		target:   gain,
		step:     1 / (float64(SampleRate) * rampSeconds),
	}
}

// SetTarget retargets the gain; the glide starts on the next Stream call.
// Any pending completion callback is cancelled.
func (g *rampGain) SetTarget(gain float64) {
	g.SetTargetFunc(gain, nil)
}

// SetTargetFunc retargets the gain and runs done once the glide lands on it.
func (g *rampGain) SetTargetFunc(gain float64, done func()) {
	g.mu.Lock()
	g.target = gain
	g.onDone = done
	g.mu.Unlock()
}

// Gain reports the instantaneous gain.
func (g *rampGain) Gain() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

func (g *rampGain) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.streamer.Stream(samples)

	g.mu.Lock()
	cur, tgt, step := g.current, g.target, g.step
	g.mu.Unlock()

	for i := 0; i < n; i++ {
		if cur < tgt {
			cur += step
			if cur > tgt {
				cur = tgt
			}
		} else if cur > tgt {
			cur -= step
			if cur < tgt {
				cur = tgt
			}
		}
		samples[i][0] *= cur
		samples[i][1] *= cur
	}

	g.mu.Lock()
	g.current = cur
	var done func()
	if cur == g.target && g.onDone != nil {
		done = g.onDone
		g.onDone = nil
	}
	g.mu.Unlock()
	if done != nil {
		done()
	}
	return n, ok
}

func (g *rampGain) Err() error {
	return g.streamer.Err()
}

// compressor applies soft-knee gain reduction to the summed master signal so
// narration plus music plus effects never clips harshly.
type compressor struct {
	streamer  beep.Streamer
	threshold float64
	ratio     float64
	envelope  float64
	attack    float64
	release   float64
}

func newCompressor(s beep.Streamer) *compressor {
	return &compressor{
		streamer:  s,
		threshold: 0.7,
		ratio:     3,
		attack:    0.003,
		release:   0.0004,
	}
}

func (c *compressor) Stream(samples [][2]float64) (int, bool) {
	n, ok := c.streamer.Stream(samples)

	for i := 0; i < n; i++ {
		level := math.Max(math.Abs(samples[i][0]), math.Abs(samples[i][1]))
		if level > c.envelope {
			c.envelope += (level - c.envelope) * c.attack
		} else {
			c.envelope += (level - c.envelope) * c.release
		}

		gain := 1.0
		if c.envelope > c.threshold {
			over := c.envelope - c.threshold
			compressed := c.threshold + over/c.ratio
			gain = compressed / c.envelope
		}
		samples[i][0] *= gain
		samples[i][1] *= gain
	}
	return n, ok
}

func (c *compressor) Err() error {
	return c.streamer.Err()
}

// analyser measures the RMS level of whatever flows through it, for the
// stats overlay.
type analyser struct {
	streamer beep.Streamer

	mu  sync.Mutex
	rms float64
}

func newAnalyser(s beep.Streamer) *analyser {
	return &analyser{streamer: s}
}

func (a *analyser) Stream(samples [][2]float64) (int, bool) {
	n, ok := a.streamer.Stream(samples)

	var sumSq float64
	for i := 0; i < n; i++ {
		s := (samples[i][0] + samples[i][1]) * 0.5
		sumSq += s * s
	}
	if n > 0 {
		a.mu.Lock()
		a.rms = math.Sqrt(sumSq / float64(n))
		a.mu.Unlock()
	}
	return n, ok
}

// RMS returns the level of the most recent block.
func (a *analyser) RMS() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rms
}

func (a *analyser) Err() error {
	return a.streamer.Err()
}
