// Package transition blends the tail of one scene into the head of the next.
package transition

import "image"

// Duration is the fixed transition window in seconds. The window occupies
// the last second of the outgoing scene.
const Duration = 1.0

// Mode names a blend style.
type Mode string

const (
	ModeNone  Mode = "none"
	ModeFade  Mode = "fade"
	ModeSlide Mode = "slide"
	ModeZoom  Mode = "zoom"
	ModeWipe  Mode = "wipe"
)

// Resolve applies the precedence rule: a per-scene override wins over the
// global default; empty strings fall through.
func Resolve(sceneOverride, global string) Mode {
	pick := sceneOverride
	if pick == "" {
		pick = global
	}
	switch Mode(pick) {
	case ModeFade, ModeSlide, ModeZoom, ModeWipe:
		return Mode(pick)
	default:
		return ModeNone
	}
}

// Phase reports whether the playhead is inside the transition window of a
// scene and, if so, the normalized blend position t in [0, 1]. hasNext must
// be false for the final scene, which never transitions out.
func Phase(elapsed, sceneDuration float64, hasNext bool) (t float64, active bool) {
	if !hasNext || sceneDuration <= Duration {
		return 0, false
	}
	start := sceneDuration - Duration
	if elapsed < start {
		return 0, false
	}
	t = (elapsed - start) / Duration
	if t > 1 {
		t = 1
	}
	return t, true
}

// Blend composites the incoming frame over the outgoing frame in place on
// dst, which must alias the outgoing frame buffer. Both frames share the
// same dimensions.
func Blend(dst, incoming *image.RGBA, mode Mode, t float64) {
	if t <= 0 || mode == ModeNone {
		return
	}
	if t >= 1 {
		copy(dst.Pix, incoming.Pix)
		return
	}

	switch mode {
	case ModeFade:
		blendFade(dst, incoming, t)
	case ModeSlide:
		blendSlide(dst, incoming, t)
	case ModeZoom:
		blendZoom(dst, incoming, t)
	case ModeWipe:
		blendWipe(dst, incoming, t)
	}
}

func blendFade(dst, incoming *image.RGBA, t float64) {
	a := uint32(t * 256)
	for i := range dst.Pix {
		o := uint32(dst.Pix[i])
		n := uint32(incoming.Pix[i])
		dst.Pix[i] = uint8((o*(256-a) + n*a) >> 8)
	}
}

// blendSlide pushes the incoming frame in from the right edge.
func blendSlide(dst, incoming *image.RGBA, t float64) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	edge := int(float64(w) * (1 - t))

	for y := 0; y < h; y++ {
		row := y * dst.Stride
		for x := edge; x < w; x++ {
			di := row + x*4
			si := row + (x-edge)*4
			copy(dst.Pix[di:di+4], incoming.Pix[si:si+4])
		}
	}
}

// blendZoom grows the incoming frame from half size to full around the
// center while fading it in.
func blendZoom(dst, incoming *image.RGBA, t float64) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	cx, cy := float64(w)/2, float64(h)/2
	scale := 0.5 + 0.5*t
	a := uint32(t * 256)

	for y := 0; y < h; y++ {
		sy := int(cy + (float64(y)-cy)/scale)
		if sy < 0 || sy >= h {
			continue
		}
		row := y * dst.Stride
		srow := sy * incoming.Stride
		for x := 0; x < w; x++ {
			sx := int(cx + (float64(x)-cx)/scale)
			if sx < 0 || sx >= w {
				continue
			}
			di := row + x*4
			si := srow + sx*4
			for c := 0; c < 4; c++ {
				o := uint32(dst.Pix[di+c])
				n := uint32(incoming.Pix[si+c])
				dst.Pix[di+c] = uint8((o*(256-a) + n*a) >> 8)
			}
		}
	}
}

// blendWipe sweeps a soft vertical edge from left to right.
func blendWipe(dst, incoming *image.RGBA, t float64) {
	b := dst.Bounds()
	w, h := b.Dx(), b.Dy()
	edge := float64(w) * t
	const soft = 24.0

	for y := 0; y < h; y++ {
		row := y * dst.Stride
		for x := 0; x < w; x++ {
			fx := float64(x)
			i := row + x*4
			switch {
			case fx < edge-soft:
				copy(dst.Pix[i:i+4], incoming.Pix[i:i+4])
			case fx < edge:
				a := uint32((edge - fx) / soft * 256)
				for c := 0; c < 4; c++ {
					o := uint32(dst.Pix[i+c])
					n := uint32(incoming.Pix[i+c])
					dst.Pix[i+c] = uint8((o*(256-a) + n*a) >> 8)
				}
			}
		}
	}
}
