// Package audiograph runs the session's audio: narration, sound effect
// layers and background music mixed into one mastered stereo stream, routed
// either to the speaker for live playback or tapped as raw PCM for export.
package audiograph

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/reelcast/reelcast/internal/logging"
)

// slot holds at most one clip, swapped whole. It never drains, streaming
// silence when empty, so it can live in the mixer permanently.
type slot struct {
	mu  sync.Mutex
	cur beep.Streamer
}

func (s *slot) Set(streamer beep.Streamer) {
	s.mu.Lock()
	s.cur = streamer
	s.mu.Unlock()
}

func (s *slot) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	cur := s.cur
	s.mu.Unlock()

	filled := 0
	if cur != nil {
		n, ok := cur.Stream(samples)
		filled = n
		if !ok {
			s.mu.Lock()
			if s.cur == cur {
				s.cur = nil
			}
			s.mu.Unlock()
		}
	}
	for i := filled; i < len(samples); i++ {
		samples[i][0] = 0
		samples[i][1] = 0
	}
	return len(samples), true
}

func (s *slot) Err() error {
	return nil
}

// Graph is the session audio graph:
//
//	narration slot ─┐
//	sfx mixer      ─┼─ sum ─ master gain ─ compressor ─ analyser ─ out
//	music playlist ─┘
type Graph struct {
	live bool

	narration *slot
	sfx       *beep.Mixer
	music     *playlist
	musicGain *rampGain
	master    *rampGain
	analyser  *analyser
	out       beep.Streamer
}

// speakerOnce guards speaker.Init, which beep allows only once per process.
var speakerOnce sync.Once

// NewGraph assembles the graph. With live set the output is wired to the
// speaker; otherwise the caller pulls PCM via GenerateFrame.
func NewGraph(live bool) *Graph {
	g := &Graph{
		live:      live,
		narration: &slot{},
		sfx:       &beep.Mixer{},
		music:     &playlist{},
	}
	g.musicGain = newRampGain(g.music, 0, 1.0)

	sum := &beep.Mixer{}
	sum.Add(g.narration, g.sfx, g.musicGain)

	g.master = newRampGain(sum, 1, 0.25)
	g.analyser = newAnalyser(newCompressor(g.master))
	g.out = g.analyser

	if live {
		speakerOnce.Do(func() {
			if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
				audioLog := logging.WithComponent("audio")
				audioLog.Error().Err(err).Msg("speaker init failed")
				g.live = false
			}
		})
		if g.live {
			speaker.Play(g.out)
		}
	}
	return g
}

// lock serializes graph mutations against the speaker's pull goroutine.
// In tap mode there is no concurrent puller and the slot/playlist locks
// are enough.
func (g *Graph) lock() {
	if g.live {
		speaker.Lock()
	}
}

func (g *Graph) unlock() {
	if g.live {
		speaker.Unlock()
	}
}

// PlayNarration swaps the narration clip in, replacing whatever was playing.
func (g *Graph) PlayNarration(buf *beep.Buffer) {
	if buf == nil {
		return
	}
	g.lock()
	g.narration.Set(buf.Streamer(0, buf.Len()))
	g.unlock()
}

// StopNarration silences the narration slot.
func (g *Graph) StopNarration() {
	g.lock()
	g.narration.Set(nil)
	g.unlock()
}

// PlaySFX fires a one-shot clip at the given volume. Finished clips fall out
// of the mixer on their own.
func (g *Graph) PlaySFX(buf *beep.Buffer, volume float64) {
	if buf == nil {
		return
	}
	if volume <= 0 {
		volume = 1
	}
	st := buf.Streamer(0, buf.Len())
	gained := newRampGain(st, volume, 1)
	g.lock()
	g.sfx.Add(gained)
	g.unlock()
}

// StartMusic replaces the music queue and fades it in.
func (g *Graph) StartMusic(tracks []*beep.Buffer, volume float64) {
	g.lock()
	g.music.SetTracks(tracks)
	g.unlock()
	g.musicGain.SetTarget(volume)
}

// StopMusic fades the music out and releases the queue once the fade lands,
// or cuts and releases instantly when fade is false. A released queue stays
// silent through later volume retargets.
func (g *Graph) StopMusic(fade bool) {
	if !fade {
		g.musicGain.SetTarget(0)
		g.lock()
		g.music.Clear()
		g.unlock()
		return
	}
	g.musicGain.SetTargetFunc(0, g.music.Clear)
}

// MusicQueueLen reports how many tracks the playlist holds, distinguishing
// a released queue from one that is merely fading.
func (g *Graph) MusicQueueLen() int {
	return g.music.Len()
}

// SetMusicVolume retargets the music gain; the ramp smooths the change.
func (g *Graph) SetMusicVolume(volume float64) {
	g.musicGain.SetTarget(volume)
}

// SetMasterGain retargets the master output level.
func (g *Graph) SetMasterGain(gain float64) {
	g.master.SetTarget(gain)
}

// RMS reports the output level of the latest streamed block.
func (g *Graph) RMS() float64 {
	return g.analyser.RMS()
}

// GenerateFrame pulls sampleCount stereo samples through the whole graph
// and packs them as interleaved little-endian signed 16-bit PCM. Export
// calls this once per video frame; never mix with live speaker output.
func (g *Graph) GenerateFrame(sampleCount int) []byte {
	samples := make([][2]float64, sampleCount)
	g.out.Stream(samples)

	buf := make([]byte, sampleCount*4)
	for i, s := range samples {
		l := clampSample(s[0])
		r := clampSample(s[1])
		buf[i*4] = byte(l)
		buf[i*4+1] = byte(l >> 8)
		buf[i*4+2] = byte(r)
		buf[i*4+3] = byte(r >> 8)
	}
	return buf
}

func clampSample(v float64) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// Close tears the graph down. The speaker stays initialized (beep has no
// shutdown) but everything routed through it is cleared.
func (g *Graph) Close() {
	if g.live {
		speaker.Clear()
	}
	g.music.Clear()
	g.narration.Set(nil)
}
