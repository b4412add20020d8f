package storyboard

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func pageWithBlock(x0, y0, x1, y1 int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	return img
}

func TestDetectRegionsFindsBlock(t *testing.T) {
	img := pageWithBlock(50, 50, 150, 150)

	regions := DetectRegions(img)
	if len(regions) == 0 {
		t.Fatal("no regions found")
	}

	r := regions[0].Bounds
	t.Logf("detected %d regions, first %v", len(regions), r)
	if r.Dx() < 80 || r.Dy() < 80 {
		t.Errorf("region too small: %v", r)
	}
}

func TestDetectRegionsEmptyPage(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 100, 100))
	if regions := DetectRegions(img); len(regions) != 0 {
		t.Errorf("blank page produced %d regions", len(regions))
	}
}

func TestDetectRegionsReadingOrder(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 400, 400))
	// Bottom-left block first in memory, top-right block second.
	for y := 300; y < 360; y++ {
		for x := 20; x < 120; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	for y := 20; y < 80; y++ {
		for x := 250; x < 350; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}

	regions := DetectRegions(img)
	if len(regions) < 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Bounds.Min.Y > regions[1].Bounds.Min.Y {
		t.Error("regions not in top-to-bottom order")
	}
}

func TestDwellTimeClamps(t *testing.T) {
	b := NewBuilder(1280, 720)

	tests := []struct {
		duration float64
		regions  int
		want     float64
	}{
		{10, 4, 2.0},  // (10-2)/4
		{30, 4, 3.0},  // clamped to max
		{3, 10, 1.0},  // clamped to min
		{1.5, 1, 1.5}, // shorter than the intro/outro reserve
	}
	for _, tt := range tests {
		if got := b.dwellTime(tt.duration, tt.regions); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("dwellTime(%v, %d) = %v, want %v", tt.duration, tt.regions, got, tt.want)
		}
	}
}

func TestFocusKeyframeCentersRegion(t *testing.T) {
	b := NewBuilder(1000, 1000)

	// A centered region keeps the layer centered.
	reg := Region{Bounds: image.Rect(400, 400, 600, 600)}
	kf := b.focusKeyframe(reg, 1000, 1000, 1, 2.5)

	if math.Abs(kf.X-0.5) > 1e-9 || math.Abs(kf.Y-0.5) > 1e-9 {
		t.Errorf("centered region moved the layer to (%v, %v)", kf.X, kf.Y)
	}
	if kf.Scale < 1 || kf.Scale > 3 {
		t.Errorf("zoom %v out of bounds", kf.Scale)
	}
	if kf.Time != 2.5 {
		t.Errorf("keyframe time = %v", kf.Time)
	}

	// A region in the top-left corner pushes the layer down-right.
	reg = Region{Bounds: image.Rect(0, 0, 200, 200)}
	kf = b.focusKeyframe(reg, 1000, 1000, 1, 0)
	if kf.X <= 0.5 || kf.Y <= 0.5 {
		t.Errorf("top-left region should move the layer to (%v, %v) > 0.5", kf.X, kf.Y)
	}
}

func TestPageLayerKeyframeEnvelope(t *testing.T) {
	b := NewBuilder(1280, 720)
	regions := []Region{
		{Bounds: image.Rect(10, 10, 200, 100)},
		{Bounds: image.Rect(10, 200, 200, 300)},
	}

	layer := b.pageLayer("doc.pdf#1", image.Rect(0, 0, 1280, 720), regions, 8)

	// full view + one stop per region + full view
	if len(layer.Keyframes) != 4 {
		t.Fatalf("keyframes = %d, want 4", len(layer.Keyframes))
	}
	first, last := layer.Keyframes[0], layer.Keyframes[len(layer.Keyframes)-1]
	if first.Scale != last.Scale || first.X != last.X {
		t.Error("tour does not return to the full view")
	}
	for i := 1; i < len(layer.Keyframes); i++ {
		if layer.Keyframes[i].Time <= layer.Keyframes[i-1].Time {
			t.Fatal("keyframe times not increasing")
		}
	}
}
