package audiograph

import (
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
)

func TestSilentBufferDuration(t *testing.T) {
	tests := []float64{0.5, 1.0, 3.2}
	for _, want := range tests {
		buf := SilentBuffer(want)
		got := BufferSeconds(buf)
		if math.Abs(got-want) > 0.001 {
			t.Errorf("SilentBuffer(%v) lasts %v", want, got)
		}
	}
}

func TestBufferSecondsNil(t *testing.T) {
	if got := BufferSeconds(nil); got != 0 {
		t.Errorf("nil buffer duration = %v", got)
	}
}

func TestRampGainGlides(t *testing.T) {
	// A constant full-scale signal through a gain ramping 0 -> 1.
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = 1
			samples[i][1] = 1
		}
		return len(samples), true
	})

	g := newRampGain(src, 0, 1.0) // full sweep takes one second
	g.SetTarget(1)

	block := make([][2]float64, 4410) // 100ms
	g.Stream(block)

	if first := block[0][0]; first > 0.01 {
		t.Errorf("ramp jumped instead of gliding, first sample %v", first)
	}
	last := block[len(block)-1][0]
	if math.Abs(last-0.1) > 0.01 {
		t.Errorf("after 100ms of a 1s ramp gain = %v, want ~0.1", last)
	}

	// Nine more blocks completes the sweep.
	for i := 0; i < 9; i++ {
		g.Stream(block)
	}
	if got := g.Gain(); math.Abs(got-1) > 0.001 {
		t.Errorf("gain after full ramp = %v, want 1", got)
	}
}

func TestCompressorTamesHotSignal(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = 0.98
			samples[i][1] = 0.98
		}
		return len(samples), true
	})

	c := newCompressor(src)
	block := make([][2]float64, 44100)
	c.Stream(block) // let the envelope settle

	out := block[len(block)-1][0]
	if out >= 0.98 {
		t.Errorf("compressor passed %v unchanged", out)
	}
	if out < 0.5 {
		t.Errorf("compressor crushed the signal to %v", out)
	}
}

func TestSlotDrainsToSilence(t *testing.T) {
	s := &slot{}
	buf := SilentBuffer(0.01)
	s.Set(buf.Streamer(0, buf.Len()))

	block := make([][2]float64, 4410)
	n, ok := s.Stream(block)
	if n != len(block) || !ok {
		t.Fatalf("slot must never drain: n=%d ok=%v", n, ok)
	}

	s.mu.Lock()
	cur := s.cur
	s.mu.Unlock()
	if cur != nil {
		t.Error("finished clip still occupies the slot")
	}
}

func TestPlaylistSingleTrackLoops(t *testing.T) {
	p := &playlist{}
	p.SetTracks([]*beep.Buffer{SilentBuffer(0.01)}) // 441 samples

	block := make([][2]float64, 4410)
	n, ok := p.Stream(block)
	if n != len(block) || !ok {
		t.Fatalf("playlist must never drain: n=%d ok=%v", n, ok)
	}

	p.mu.Lock()
	ix := p.ix
	p.mu.Unlock()
	if ix != 0 {
		t.Errorf("single track advanced to index %d", ix)
	}
}

func TestPlaylistQueueAdvances(t *testing.T) {
	p := &playlist{}
	p.SetTracks([]*beep.Buffer{SilentBuffer(0.01), SilentBuffer(0.01), SilentBuffer(0.01)})

	// 441 samples per track; stream past the first boundary.
	block := make([][2]float64, 600)
	p.Stream(block)

	p.mu.Lock()
	ix := p.ix
	p.mu.Unlock()
	if ix != 1 {
		t.Errorf("queue at index %d after first track finished, want 1", ix)
	}
}

func TestStopMusicReleasesQueueAfterFade(t *testing.T) {
	g := NewGraph(false)
	defer g.Close()

	g.StartMusic([]*beep.Buffer{SilentBuffer(2)}, 0.3)
	g.GenerateFrame(4410) // 100ms of fade-in, gain ~0.1
	if g.MusicQueueLen() != 1 {
		t.Fatal("music never queued")
	}

	g.StopMusic(true)
	if g.MusicQueueLen() != 1 {
		t.Error("queue released before the fade finished")
	}

	// The 1s-sweep ramp needs well under 400ms to land from ~0.1.
	g.GenerateFrame(SampleRate.N(400 * time.Millisecond))
	if g.MusicQueueLen() != 0 {
		t.Error("queue still held after the fade landed")
	}

	// A later volume retarget must not resurrect stopped music.
	g.SetMusicVolume(0.5)
	g.GenerateFrame(4410)
	if g.MusicQueueLen() != 0 {
		t.Error("volume change resurrected stopped music")
	}
}

func TestStartMusicCancelsPendingStop(t *testing.T) {
	g := NewGraph(false)
	defer g.Close()

	g.StartMusic([]*beep.Buffer{SilentBuffer(2)}, 0.3)
	g.StopMusic(true)
	g.StartMusic([]*beep.Buffer{SilentBuffer(2)}, 0.3)

	// Stream far past where the cancelled fade would have landed.
	g.GenerateFrame(SampleRate.N(time.Second))
	if g.MusicQueueLen() != 1 {
		t.Error("restarted music was released by a stale stop")
	}
}

func TestGenerateFramePacksPCM(t *testing.T) {
	g := NewGraph(false)
	defer g.Close()

	perFrame := int(SampleRate) / 30
	frame := g.GenerateFrame(perFrame)
	if len(frame) != perFrame*4 {
		t.Fatalf("frame bytes = %d, want %d", len(frame), perFrame*4)
	}
	for _, b := range frame {
		if b != 0 {
			t.Fatal("silent graph produced non-zero PCM")
		}
	}
}

func TestGraphSFXAudibleInTap(t *testing.T) {
	g := NewGraph(false)
	defer g.Close()

	// A 10ms half-scale clip.
	tone := beep.NewBuffer(GraphFormat)
	n := SampleRate.N(10 * time.Millisecond)
	tone.Append(beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i][0] = 0.5
			samples[i][1] = 0.5
		}
		return len(samples), true
	})))

	g.PlaySFX(tone, 1)

	frame := g.GenerateFrame(int(SampleRate) / 30)
	var nonZero bool
	for _, b := range frame {
		if b != 0 {
			nonZero = true
			break
		}
	}
	if !nonZero {
		t.Error("sfx clip produced no output")
	}
}
