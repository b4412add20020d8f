package fx

import (
	"image"
	"math"
)

// ApplyVignette darkens the frame edges with a radial multiply falloff.
// darkness 0..1 controls how dark the corners get; the center is untouched.
func ApplyVignette(img *image.RGBA, darkness float64) {
	if darkness <= 0 {
		return
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	maxDist := math.Hypot(cx, cy)

	for y := 0; y < h; y++ {
		row := y * img.Stride
		dy := float64(y) - cy
		for x := 0; x < w; x++ {
			dist := math.Hypot(float64(x)-cx, dy) / maxDist

			// Transparent center, configurable darkness at the edge.
			t := (dist - 0.45) / 0.55
			if t <= 0 {
				continue
			}
			if t > 1 {
				t = 1
			}
			factor := 1 - darkness*t*t

			i := row + x*4
			img.Pix[i] = uint8(float64(img.Pix[i]) * factor)
			img.Pix[i+1] = uint8(float64(img.Pix[i+1]) * factor)
			img.Pix[i+2] = uint8(float64(img.Pix[i+2]) * factor)
		}
	}
}
