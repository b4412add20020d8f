package fx

import (
	"strings"

	"github.com/fogleman/gg"

	"github.com/reelcast/reelcast/internal/config"
)

// DrawSpeakerTag renders the current speaker's name badge near the top-right
// corner. All sizes derive from the frame width so the tag scales with the
// output format.
func DrawSpeakerTag(dc *gg.Context, width, height int, name string, style config.SpeakerTagStyle, faces FaceProvider) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	w := float64(width)
	size := w * 0.022
	if size < 16 {
		size = 16
	}
	if face := faces.Face(size); face != nil {
		dc.SetFontFace(face)
	}

	tw, th := dc.MeasureString(name)
	margin := w * 0.03
	padX, padY := th*0.7, th*0.4
	boxW, boxH := tw+2*padX, th+2*padY
	x := w - margin - boxW
	y := float64(height)*0.04 + boxH/2

	switch style {
	case config.TagRounded:
		dc.SetRGBA(0.12, 0.12, 0.16, 0.85)
		dc.DrawRoundedRectangle(x, y-boxH/2, boxW, boxH, boxH/2)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
	case config.TagNeon:
		dc.SetRGBA(0.02, 0.02, 0.08, 0.85)
		dc.DrawRoundedRectangle(x, y-boxH/2, boxW, boxH, 4)
		dc.FillPreserve()
		dc.SetRGBA(0.2, 0.95, 1, 0.9)
		dc.SetLineWidth(2)
		dc.Stroke()
		dc.SetRGB(0.2, 0.95, 1)
	case config.TagBubble:
		dc.SetRGBA(1, 1, 1, 0.92)
		dc.DrawRoundedRectangle(x, y-boxH/2, boxW, boxH, boxH/2)
		dc.Fill()
		// Tail pointing down toward the subject.
		dc.MoveTo(x+boxW*0.75, y+boxH/2)
		dc.LineTo(x+boxW*0.75+th*0.5, y+boxH/2+th*0.6)
		dc.LineTo(x+boxW*0.75+th, y+boxH/2)
		dc.ClosePath()
		dc.Fill()
		dc.SetRGB(0.1, 0.1, 0.1)
	case config.TagNews:
		dc.SetRGBA(0.8, 0.08, 0.08, 0.95)
		dc.DrawRectangle(x, y-boxH/2, boxW, boxH)
		dc.Fill()
		dc.SetRGBA(1, 1, 1, 0.95)
		dc.DrawRectangle(x, y+boxH/2-3, boxW, 3)
		dc.Fill()
		dc.SetRGB(1, 1, 1)
	default: // cinematic: bare text with a left accent bar
		dc.SetRGBA(1, 0.8, 0.2, 0.9)
		dc.DrawRectangle(x-th*0.3, y-boxH/2, 3, boxH)
		dc.Fill()
		dc.SetRGBA(0, 0, 0, 0.8)
		dc.DrawStringAnchored(name, x+padX+tw/2+1, y+1, 0.5, 0.5)
		dc.SetRGB(1, 1, 1)
	}

	dc.DrawStringAnchored(name, x+padX+tw/2, y, 0.5, 0.5)
}
