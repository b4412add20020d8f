package assets

import (
	"strings"
	"testing"
)

func TestVideoTapArgs(t *testing.T) {
	plain := strings.Join(videoTapArgs("clip.mp4", 30, 0, 0), " ")
	if strings.Contains(plain, "-ss") || strings.Contains(plain, "-t ") {
		t.Errorf("untrimmed tap must not seek or cap output: %s", plain)
	}
	if !strings.Contains(plain, "-stream_loop -1") {
		t.Errorf("untrimmed tap must loop: %s", plain)
	}

	trimmed := strings.Join(videoTapArgs("clip.mp4", 30, 1.5, 4.0), " ")
	if !strings.Contains(trimmed, "-ss 1.500000") {
		t.Errorf("trim start missing: %s", trimmed)
	}
	if !strings.Contains(trimmed, "-t 2.500000") {
		t.Errorf("trim window cap missing: %s", trimmed)
	}
}

func TestVideoKeySeparatesTrimWindows(t *testing.T) {
	if videoKey("clip.mp4", 0, 0) != "clip.mp4" {
		t.Error("untrimmed ref must cache under the plain path")
	}
	a := videoKey("clip.mp4", 1.5, 4)
	b := videoKey("clip.mp4", 0, 4)
	if a == b || a == "clip.mp4" {
		t.Errorf("trim windows must not share a tap: %q vs %q", a, b)
	}
}

func TestVideoSourceClockResets(t *testing.T) {
	vs := &VideoSource{fps: 30}

	vs.SetTime(2.0)
	if vs.target != 60 {
		t.Fatalf("target = %d, want 60", vs.target)
	}
	// The decode clock never runs backwards on its own.
	vs.SetTime(1.0)
	if vs.target != 60 {
		t.Errorf("target moved backwards to %d", vs.target)
	}

	vs.frameIx = 61
	vs.ready = true
	vs.resetClock()
	if vs.target != 0 || vs.frameIx != 0 || vs.ready {
		t.Errorf("reset left target=%d frameIx=%d ready=%v", vs.target, vs.frameIx, vs.ready)
	}
	vs.SetTime(1.0)
	if vs.target != 30 {
		t.Errorf("post-reset target = %d, want 30", vs.target)
	}
}
