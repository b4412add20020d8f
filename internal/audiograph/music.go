package audiograph

import (
	"sync"

	"github.com/faiface/beep"
)

// playlist streams background music tracks. A single track loops forever;
// multiple tracks play in order and wrap around. It never drains so it can
// sit in a mixer for the whole session, streaming silence when idle.
type playlist struct {
	mu     sync.Mutex
	tracks []*beep.Buffer
	ix     int
	cur    beep.StreamSeeker
}

// SetTracks replaces the queue and restarts playback from the first track.
func (p *playlist) SetTracks(tracks []*beep.Buffer) {
	p.mu.Lock()
	p.tracks = tracks
	p.ix = 0
	p.cur = nil
	p.mu.Unlock()
}

// Clear stops playback immediately.
func (p *playlist) Clear() {
	p.SetTracks(nil)
}

// Len reports how many tracks are queued.
func (p *playlist) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.tracks)
}

func (p *playlist) Stream(samples [][2]float64) (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	filled := 0
	for filled < len(samples) {
		if len(p.tracks) == 0 {
			break
		}
		if p.cur == nil {
			buf := p.tracks[p.ix]
			p.cur = buf.Streamer(0, buf.Len())
		}

		n, ok := p.cur.Stream(samples[filled:])
		filled += n
		if !ok {
			// Track finished: a lone track loops, a queue advances.
			if len(p.tracks) > 1 {
				p.ix = (p.ix + 1) % len(p.tracks)
			}
			p.cur = nil
		}
	}

	for i := filled; i < len(samples); i++ {
		samples[i][0] = 0
		samples[i][1] = 0
	}
	return len(samples), true
}

func (p *playlist) Err() error {
	return nil
}
