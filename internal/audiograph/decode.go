package audiograph

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

// SampleRate is the canonical graph rate. Every decoded clip is resampled
// to it on load so the mixer never has to convert at play time.
const SampleRate = beep.SampleRate(44100)

// GraphFormat is the canonical stereo 16-bit format of the graph.
var GraphFormat = beep.Format{SampleRate: SampleRate, NumChannels: 2, Precision: 2}

// Buffer aliases the underlying clip type so callers outside the graph
// never import the audio backend directly.
type Buffer = beep.Buffer

// Library decodes audio clips into memory buffers and caches them by source
// so a clip replayed across scenes is decoded once.
type Library struct {
	mu    sync.Mutex
	cache map[string]*beep.Buffer
}

func NewLibrary() *Library {
	return &Library{cache: make(map[string]*beep.Buffer)}
}

// Load returns a fully-buffered clip for a file path or a base64 payload.
// When both are set the inline payload wins, matching how projects embed
// generated narration next to a fallback URL.
func (l *Library) Load(url, encoded string) (*beep.Buffer, error) {
	key := url
	if encoded != "" {
		key = "b64:" + encoded[:min(32, len(encoded))] + fmt.Sprint(len(encoded))
	}

	l.mu.Lock()
	if buf, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return buf, nil
	}
	l.mu.Unlock()

	buf, err := decodeClip(url, encoded)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[key] = buf
	l.mu.Unlock()
	return buf, nil
}

// Clear drops every cached clip.
func (l *Library) Clear() {
	l.mu.Lock()
	l.cache = make(map[string]*beep.Buffer)
	l.mu.Unlock()
}

func decodeClip(url, encoded string) (*beep.Buffer, error) {
	var rc io.ReadCloser
	name := url

	if encoded != "" {
		payload := encoded
		if ix := strings.Index(payload, ";base64,"); ix >= 0 {
			if strings.Contains(payload[:ix], "wav") {
				name = "inline.wav"
			} else {
				name = "inline.mp3"
			}
			payload = payload[ix+8:]
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("decode inline audio: %w", err)
		}
		rc = io.NopCloser(bytes.NewReader(raw))
	} else {
		f, err := os.Open(url)
		if err != nil {
			return nil, fmt.Errorf("open audio %s: %w", url, err)
		}
		rc = f
	}
	defer rc.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
		err      error
	)
	if strings.HasSuffix(strings.ToLower(name), ".wav") {
		streamer, format, err = wav.Decode(rc)
	} else {
		streamer, format, err = mp3.Decode(rc)
	}
	if err != nil {
		return nil, fmt.Errorf("decode audio %s: %w", name, err)
	}
	defer streamer.Close()

	buf := beep.NewBuffer(GraphFormat)
	if format.SampleRate != SampleRate {
		buf.Append(beep.Resample(4, format.SampleRate, SampleRate, streamer))
	} else {
		buf.Append(streamer)
	}
	return buf, nil
}

// SilentBuffer builds a clip of silence, used when narration audio failed to
// generate and the scene still needs its estimated duration on the timeline.
func SilentBuffer(seconds float64) *beep.Buffer {
	buf := beep.NewBuffer(GraphFormat)
	n := SampleRate.N(time.Duration(seconds * float64(time.Second)))
	buf.Append(beep.Silence(n))
	return buf
}

// BufferSeconds returns a clip's play length in seconds.
func BufferSeconds(buf *beep.Buffer) float64 {
	if buf == nil {
		return 0
	}
	return SampleRate.D(buf.Len()).Seconds()
}
