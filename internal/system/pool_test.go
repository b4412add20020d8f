package system

import (
	"image"
	"testing"
)

func TestImagePoolRoundTrip(t *testing.T) {
	rect := image.Rect(0, 0, 8, 8)

	a := GetImage(rect)
	if a.Bounds() != rect {
		t.Fatalf("pooled buffer bounds = %v, want %v", a.Bounds(), rect)
	}
	PutImage(a)

	b := GetImage(rect)
	if b.Bounds() != rect {
		t.Errorf("reused buffer bounds = %v, want %v", b.Bounds(), rect)
	}
	PutImage(b)

	// Distinct geometries pool separately.
	c := GetImage(image.Rect(0, 0, 4, 4))
	if c.Bounds().Dx() != 4 {
		t.Errorf("second pool returned %v", c.Bounds())
	}
	PutImage(c)

	PutImage(nil) // must be a no-op
}
