package fx

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/fogleman/gg"
	"github.com/skip2/go-qrcode"
)

// Logo caches the decoded watermark image. The logo is the last thing drawn
// on a frame so nothing composites over it.
type Logo struct {
	img image.Image
	err error
}

// LoadLogo decodes a logo image from disk, or renders a QR code for link
// when no image path is given.
func LoadLogo(path, link string) (*Logo, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, err
		}
		return &Logo{img: img}, nil
	}

	qr, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	qr.DisableBorder = true
	return &Logo{img: qr.Image(256)}, nil
}

// Draw places the logo at the normalized (x, y) position. scale is relative
// to the frame width; opacity 0..1.
func (l *Logo) Draw(dc *gg.Context, width, height int, x, y, scale, opacity float64) {
	if l == nil || l.img == nil || opacity <= 0 {
		return
	}
	if scale <= 0 {
		scale = 0.1
	}
	if opacity > 1 {
		opacity = 1
	}

	src := l.img
	srcW := float64(src.Bounds().Dx())
	targetW := float64(width) * scale
	factor := targetW / srcW

	px := x * float64(width)
	py := y * float64(height)

	if opacity < 1 {
		faded := image.NewRGBA(src.Bounds())
		mask := image.NewUniform(color.Alpha{A: uint8(opacity * 255)})
		draw.DrawMask(faded, faded.Bounds(), src, src.Bounds().Min, mask, image.Point{}, draw.Over)
		src = faded
	}

	dc.Push()
	dc.ScaleAbout(factor, factor, px, py)
	dc.DrawImageAnchored(src, int(px), int(py), 0.5, 0.5)
	dc.Pop()
}
