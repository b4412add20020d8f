package compositor

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/fogleman/gg"

	"github.com/reelcast/reelcast/internal/assets"
	"github.com/reelcast/reelcast/internal/project"
)

func writePNG(t *testing.T, path string, c color.RGBA) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestWithOpacityScalesAlpha(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 0xff
	}

	out, done := withOpacity(src, 0.5)
	rgba, ok := out.(*image.RGBA)
	if !ok {
		t.Fatalf("expected a scratch RGBA, got %T", out)
	}
	if a := rgba.Pix[3]; a < 120 || a > 135 {
		t.Errorf("alpha = %d, want ~127", a)
	}
	if rgba.Bounds() != src.Bounds() {
		t.Errorf("scratch bounds = %v, want %v", rgba.Bounds(), src.Bounds())
	}
	done()

	same, noop := withOpacity(src, 1)
	if same != image.Image(src) {
		t.Error("full opacity must pass the original through")
	}
	noop()
}

func TestHeldBackgroundPerRenderTarget(t *testing.T) {
	dir := t.TempDir()
	redPath := filepath.Join(dir, "red.png")
	writePNG(t, redPath, color.RGBA{R: 255, A: 255})

	r := assets.NewResolver(30)
	defer r.Close()
	c := New(16, 16, r, "")

	dcA := gg.NewContext(16, 16)
	dcB := gg.NewContext(16, 16)

	good := &project.Scene{ID: "a", MediaType: project.MediaImage, ImageURL: redPath}
	missing := &project.Scene{ID: "b", MediaType: project.MediaImage, ImageURL: filepath.Join(dir, "gone.png")}

	// Target A sees the red background once, then its asset goes away; it
	// must hold the frozen frame. Target B never had a presentable asset
	// and must stay blank instead of borrowing A's.
	c.RenderScene(dcA, good, 0, 0, 4)
	c.RenderScene(dcA, missing, 0, 0, 4)
	c.RenderScene(dcB, missing, 0, 0, 4)

	ra, _, _, _ := dcA.Image().At(8, 8).RGBA()
	rb, _, _, _ := dcB.Image().At(8, 8).RGBA()
	if ra>>8 < 200 {
		t.Errorf("target A lost its held background, red = %d", ra>>8)
	}
	if rb>>8 > 50 {
		t.Errorf("target B borrowed another target's background, red = %d", rb>>8)
	}
}
