package fx

import (
	"image"
	"math/rand"
)

const grainTile = 64

// grainState holds the tileable noise pattern. Regenerating it every other
// frame keeps the grain alive without paying the random cost per frame.
type grainState struct {
	noise [grainTile * grainTile]uint8
	rng   *rand.Rand
}

func newGrainState() *grainState {
	g := &grainState{rng: rand.New(rand.NewSource(1))}
	g.regenerate()
	return g
}

func (g *grainState) regenerate() {
	for i := range g.noise {
		g.noise[i] = uint8(g.rng.Intn(256))
	}
}

// Apply blends the noise tile over the frame with an overlay composite at
// the given intensity.
func (g *grainState) Apply(img *image.RGBA, intensity float64, frameIndex int) {
	if intensity <= 0 {
		return
	}
	if frameIndex%2 == 0 {
		g.regenerate()
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	for y := 0; y < h; y++ {
		row := y * img.Stride
		ny := (y % grainTile) * grainTile
		for x := 0; x < w; x++ {
			n := float64(g.noise[ny+x%grainTile])
			i := row + x*4
			for ch := 0; ch < 3; ch++ {
				base := float64(img.Pix[i+ch])
				img.Pix[i+ch] = clampByte(mix(base, overlayBlend(base, n), intensity))
			}
		}
	}
}

// overlayBlend is the standard overlay composite for a single channel.
func overlayBlend(base, blend float64) float64 {
	if base < 128 {
		return 2 * base * blend / 255
	}
	return 255 - 2*(255-base)*(255-blend)/255
}
