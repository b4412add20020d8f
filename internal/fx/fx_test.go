package fx

import (
	"image"
	"image/color"
	"testing"

	"github.com/reelcast/reelcast/internal/config"
)

func fillRGBA(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = 255
	}
	return img
}

func TestWordIndex(t *testing.T) {
	tests := []struct {
		progress float64
		words    int
		want     int
	}{
		{0, 10, 0},
		{0.05, 10, 0},
		{0.5, 10, 5},
		{0.99, 10, 9},
		{1.0, 10, 9}, // clamped to the last word
		{0.5, 0, 0},
		{-0.1, 10, 0},
	}
	for _, tt := range tests {
		if got := WordIndex(tt.progress, tt.words); got != tt.want {
			t.Errorf("WordIndex(%v, %d) = %d, want %d", tt.progress, tt.words, got, tt.want)
		}
	}
}

func TestBatchSize(t *testing.T) {
	if got := BatchSize(config.FormatPortrait); got != 5 {
		t.Errorf("portrait batch = %d, want 5", got)
	}
	if got := BatchSize(config.FormatLandscape); got != 9 {
		t.Errorf("landscape batch = %d, want 9", got)
	}
	if got := BatchSize(config.FormatSquare); got != 9 {
		t.Errorf("square batch = %d, want 9", got)
	}
}

func TestCurrentBatch(t *testing.T) {
	words := []string{"a", "b", "c", "d", "e", "f", "g"}

	batch, start := CurrentBatch(words, 0, 5)
	if start != 0 || len(batch) != 5 || batch[0] != "a" {
		t.Errorf("first batch = %v start %d", batch, start)
	}

	batch, start = CurrentBatch(words, 4, 5)
	if start != 0 || len(batch) != 5 {
		t.Errorf("word 4 should still be in the first batch, got start %d", start)
	}

	batch, start = CurrentBatch(words, 5, 5)
	if start != 5 || len(batch) != 2 || batch[0] != "f" {
		t.Errorf("second batch = %v start %d", batch, start)
	}
}

func TestApplyFilterNoirDesaturates(t *testing.T) {
	img := fillRGBA(4, 4, color.RGBA{R: 200, G: 80, B: 40})
	ApplyFilter(img, "noir")

	r, g, b := img.Pix[0], img.Pix[1], img.Pix[2]
	if r != g || g != b {
		t.Errorf("noir left color channels unequal: %d %d %d", r, g, b)
	}
}

func TestApplyFilterUnknownIsNoop(t *testing.T) {
	img := fillRGBA(2, 2, color.RGBA{R: 10, G: 20, B: 30})
	ApplyFilter(img, "does-not-exist")
	if img.Pix[0] != 10 || img.Pix[1] != 20 || img.Pix[2] != 30 {
		t.Error("unknown filter modified pixels")
	}
}

func TestFilterPresetsComplete(t *testing.T) {
	for _, name := range []string{
		"noir", "sepia", "cyberpunk", "vintage", "vhs",
		"dreamy", "cold", "warm", "high-contrast", "neural-cinematic",
	} {
		if !HasFilter(name) {
			t.Errorf("missing filter preset %q", name)
		}
	}
}

func TestApplyChromaticShift(t *testing.T) {
	// Single red column in the middle; shifting moves red left.
	img := image.NewRGBA(image.Rect(0, 0, 8, 1))
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	img.Pix[4*4] = 255 // red at x=4

	ApplyChromaticShift(img, 2)

	if img.Pix[6*4] != 255 {
		t.Error("red channel not shifted to x=6 (source x+shift)")
	}
	if img.Pix[4*4] != 0 {
		t.Error("red channel remained at the original column")
	}
}

func TestApplyVignetteDarkensCorners(t *testing.T) {
	img := fillRGBA(100, 100, color.RGBA{R: 200, G: 200, B: 200})
	ApplyVignette(img, 0.8)

	center := img.Pix[(50*img.Stride + 50*4)]
	corner := img.Pix[0]
	t.Logf("center=%d corner=%d", center, corner)
	if corner >= center {
		t.Errorf("corner %d not darker than center %d", corner, center)
	}
	if center != 200 {
		t.Errorf("center changed: %d", center)
	}
}

func TestGrainZeroIntensityIsNoop(t *testing.T) {
	g := newGrainState()
	img := fillRGBA(8, 8, color.RGBA{R: 120, G: 120, B: 120})
	g.Apply(img, 0, 0)
	if img.Pix[0] != 120 {
		t.Error("zero-intensity grain touched pixels")
	}
}

func TestParticleCap(t *testing.T) {
	ps := NewParticleSystem(720, 1280)
	for i := 0; i < 600; i++ {
		ps.Update("snow", 1.0) // generous dt, would overflow without the cap
	}
	if ps.Count() > maxParticles {
		t.Errorf("pool %d exceeds cap %d", ps.Count(), maxParticles)
	}
	if ps.Count() == 0 {
		t.Error("no particles spawned")
	}
}

func TestParticleSpawnIsFrameRateIndependent(t *testing.T) {
	fast := NewParticleSystem(720, 1280)
	slow := NewParticleSystem(720, 1280)

	// Same wall-clock second at 60fps vs 15fps.
	for i := 0; i < 60; i++ {
		fast.Update("embers", 1.0/60)
	}
	for i := 0; i < 15; i++ {
		slow.Update("embers", 1.0/15)
	}

	diff := fast.Count() - slow.Count()
	if diff < -2 || diff > 2 {
		t.Errorf("spawn counts diverge: 60fps=%d 15fps=%d", fast.Count(), slow.Count())
	}
}

func TestParticleModeNoneClearsPool(t *testing.T) {
	ps := NewParticleSystem(720, 1280)
	ps.Update("hearts", 2.0)
	if ps.Count() == 0 {
		t.Fatal("expected particles before clearing")
	}
	ps.Update("none", 1.0/30)
	if ps.Count() != 0 {
		t.Errorf("pool not cleared, %d left", ps.Count())
	}
}

func TestParticleReset(t *testing.T) {
	ps := NewParticleSystem(720, 1280)
	ps.Update("stars", 2.0)
	ps.Reset()
	if ps.Count() != 0 {
		t.Errorf("reset left %d particles", ps.Count())
	}
}
