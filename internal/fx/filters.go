package fx

import (
	"image"
	"math"
)

type opKind int

const (
	opGrayscale opKind = iota
	opSepia
	opContrast
	opSaturate
	opHueRotate
)

type colorOp struct {
	kind   opKind
	amount float64
}

// filterPresets maps the named looks to composed color passes, mirroring the
// grayscale/sepia/contrast/saturate/hue-rotate combinations of the product's
// filter table.
var filterPresets = map[string][]colorOp{
	"noir":             {{opGrayscale, 1.0}, {opContrast, 1.3}},
	"sepia":            {{opSepia, 0.8}},
	"cyberpunk":        {{opSaturate, 1.6}, {opHueRotate, 15}, {opContrast, 1.15}},
	"vintage":          {{opSepia, 0.4}, {opSaturate, 0.8}, {opContrast, 0.95}},
	"vhs":              {{opSaturate, 1.3}, {opContrast, 1.1}},
	"dreamy":           {{opSaturate, 1.1}, {opContrast, 0.88}},
	"cold":             {{opHueRotate, -12}, {opSaturate, 0.9}},
	"warm":             {{opSepia, 0.25}, {opSaturate, 1.15}},
	"high-contrast":    {{opContrast, 1.5}},
	"neural-cinematic": {{opContrast, 1.2}, {opSaturate, 1.25}, {opHueRotate, -5}},
}

// FilterNames lists the available presets.
func FilterNames() []string {
	names := make([]string, 0, len(filterPresets))
	for n := range filterPresets {
		names = append(names, n)
	}
	return names
}

// HasFilter reports whether a preset name is known.
func HasFilter(name string) bool {
	_, ok := filterPresets[name]
	return ok
}

// ApplyFilter runs the named color preset as a full-frame pixel pass over
// an already-composited frame. Unknown names are a no-op.
func ApplyFilter(img *image.RGBA, name string) {
	ops, ok := filterPresets[name]
	if !ok {
		return
	}

	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		r := float64(pix[i])
		g := float64(pix[i+1])
		b := float64(pix[i+2])

		for _, op := range ops {
			r, g, b = applyOp(op, r, g, b)
		}

		pix[i] = clampByte(r)
		pix[i+1] = clampByte(g)
		pix[i+2] = clampByte(b)
	}
}

func applyOp(op colorOp, r, g, b float64) (float64, float64, float64) {
	switch op.kind {
	case opGrayscale:
		lum := 0.299*r + 0.587*g + 0.114*b
		return mix(r, lum, op.amount), mix(g, lum, op.amount), mix(b, lum, op.amount)
	case opSepia:
		sr := 0.393*r + 0.769*g + 0.189*b
		sg := 0.349*r + 0.686*g + 0.168*b
		sb := 0.272*r + 0.534*g + 0.131*b
		return mix(r, sr, op.amount), mix(g, sg, op.amount), mix(b, sb, op.amount)
	case opContrast:
		return (r-128)*op.amount + 128, (g-128)*op.amount + 128, (b-128)*op.amount + 128
	case opSaturate:
		lum := 0.299*r + 0.587*g + 0.114*b
		return mix(lum, r, op.amount), mix(lum, g, op.amount), mix(lum, b, op.amount)
	case opHueRotate:
		return hueRotate(r, g, b, op.amount)
	}
	return r, g, b
}

// hueRotate applies the standard hue-rotation color matrix.
func hueRotate(r, g, b, degrees float64) (float64, float64, float64) {
	rad := degrees * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)

	nr := r*(0.213+cos*0.787-sin*0.213) + g*(0.715-cos*0.715-sin*0.715) + b*(0.072-cos*0.072+sin*0.928)
	ng := r*(0.213-cos*0.213+sin*0.143) + g*(0.715+cos*0.285+sin*0.140) + b*(0.072-cos*0.072-sin*0.283)
	nb := r*(0.213-cos*0.213-sin*0.787) + g*(0.715-cos*0.715+sin*0.715) + b*(0.072+cos*0.928+sin*0.072)
	return nr, ng, nb
}

// ApplyChromaticShift offsets the red and blue channels horizontally in
// opposite directions, the classic fringing look.
func ApplyChromaticShift(img *image.RGBA, shift int) {
	if shift <= 0 {
		return
	}

	bounds := img.Bounds()
	w := bounds.Dx()
	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)

	for y := 0; y < bounds.Dy(); y++ {
		row := y * img.Stride
		for x := 0; x < w; x++ {
			i := row + x*4
			if rx := x - shift; rx >= 0 {
				img.Pix[i] = src[row+rx*4]
			}
			if bx := x + shift; bx < w {
				img.Pix[i+2] = src[row+bx*4+2]
			}
		}
	}
}

func mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
