package transition

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		scene  string
		global string
		want   Mode
	}{
		{"wipe", "fade", ModeWipe}, // scene override wins
		{"", "fade", ModeFade},
		{"", "", ModeNone},
		{"none", "fade", ModeNone},
		{"bogus", "fade", ModeNone}, // unknown mode is no transition
	}
	for _, tt := range tests {
		if got := Resolve(tt.scene, tt.global); got != tt.want {
			t.Errorf("Resolve(%q, %q) = %q, want %q", tt.scene, tt.global, got, tt.want)
		}
	}
}

func TestPhaseWindow(t *testing.T) {
	// A 4-second scene: no blend before 3.0s, t sweeps 0..1 over the last second.
	tests := []struct {
		elapsed float64
		wantT   float64
		active  bool
	}{
		{0.0, 0, false},
		{2.9, 0, false},
		{3.0, 0.0, true},
		{3.5, 0.5, true},
		{4.0, 1.0, true},
		{4.2, 1.0, true}, // overshoot clamps
	}
	for _, tt := range tests {
		got, active := Phase(tt.elapsed, 4.0, true)
		if active != tt.active {
			t.Errorf("Phase(%v) active = %v, want %v", tt.elapsed, active, tt.active)
			continue
		}
		if active && math.Abs(got-tt.wantT) > 1e-9 {
			t.Errorf("Phase(%v) t = %v, want %v", tt.elapsed, got, tt.wantT)
		}
	}
}

func TestPhaseLastSceneNeverTransitions(t *testing.T) {
	if _, active := Phase(3.9, 4.0, false); active {
		t.Error("final scene entered a transition window")
	}
}

func TestPhaseShortScene(t *testing.T) {
	// A scene no longer than the window itself plays without a transition.
	if _, active := Phase(0.9, 1.0, true); active {
		t.Error("sub-window scene entered a transition window")
	}
}

func TestBlendFadeMidpoint(t *testing.T) {
	out := solid(4, 4, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	in := solid(4, 4, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	Blend(out, in, ModeFade, 0.5)

	got := float64(out.Pix[0])
	if math.Abs(got-100) > 3 {
		t.Errorf("fade midpoint = %v, want ~100", got)
	}
}

func TestBlendCompleteCopiesIncoming(t *testing.T) {
	out := solid(4, 4, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	in := solid(4, 4, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	Blend(out, in, ModeZoom, 1.0)
	if out.Pix[0] != 250 {
		t.Errorf("t=1 did not hand over to the incoming frame, got %d", out.Pix[0])
	}
}

func TestBlendNoneIsNoop(t *testing.T) {
	out := solid(4, 4, color.RGBA{R: 10, G: 10, B: 10, A: 255})
	in := solid(4, 4, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	Blend(out, in, ModeNone, 0.7)
	if out.Pix[0] != 10 {
		t.Error("none mode modified the frame")
	}
}

func TestBlendWipeSweepsLeftToRight(t *testing.T) {
	out := solid(100, 10, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	in := solid(100, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	Blend(out, in, ModeWipe, 0.5)

	left := out.Pix[(5*out.Stride + 10*4)]
	right := out.Pix[(5*out.Stride + 90*4)]
	if left != 255 {
		t.Errorf("left of the wipe edge should show incoming, got %d", left)
	}
	if right != 0 {
		t.Errorf("right of the wipe edge should show outgoing, got %d", right)
	}
}

func TestBlendSlidePushesFromRight(t *testing.T) {
	out := solid(100, 10, color.RGBA{R: 0, G: 0, B: 0, A: 255})
	in := solid(100, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	Blend(out, in, ModeSlide, 0.3)

	if got := out.Pix[(5*out.Stride + 95*4)]; got != 255 {
		t.Errorf("right edge should show incoming, got %d", got)
	}
	if got := out.Pix[(5*out.Stride + 5*4)]; got != 0 {
		t.Errorf("left side should still show outgoing, got %d", got)
	}
}
