package fx

import (
	"math"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	"github.com/reelcast/reelcast/internal/config"
)

// FaceProvider hands out font faces at a requested point size. A nil face
// means "use the canvas default".
type FaceProvider interface {
	Face(points float64) font.Face
}

// WordIndex computes the currently-visible word index from scene progress:
// floor(progress × wordCount), clamped into the word range.
func WordIndex(progress float64, wordCount int) int {
	if wordCount <= 0 {
		return 0
	}
	ix := int(math.Floor(progress * float64(wordCount)))
	if ix >= wordCount {
		ix = wordCount - 1
	}
	if ix < 0 {
		ix = 0
	}
	return ix
}

// BatchSize returns how many words form one subtitle chunk. Portrait frames
// fit fewer readable words than landscape ones.
func BatchSize(format config.Format) int {
	if format == config.FormatPortrait {
		return 5
	}
	return 9
}

// CurrentBatch slices the words shown right now: subtitles advance in fixed
// windows instead of sliding one word at a time.
func CurrentBatch(words []string, wordIx, batchSize int) (batch []string, batchStart int) {
	if len(words) == 0 || batchSize <= 0 {
		return nil, 0
	}
	batchStart = (wordIx / batchSize) * batchSize
	end := batchStart + batchSize
	if end > len(words) {
		end = len(words)
	}
	return words[batchStart:end], batchStart
}

// SubtitleRenderer draws the scene text per the selected style.
type SubtitleRenderer struct {
	width  int
	height int
	faces  FaceProvider
}

func NewSubtitleRenderer(width, height int, faces FaceProvider) *SubtitleRenderer {
	return &SubtitleRenderer{width: width, height: height, faces: faces}
}

// Render draws the subtitle block for the current playhead position.
func (r *SubtitleRenderer) Render(dc *gg.Context, text string, progress float64, s *config.Settings) {
	words := strings.Fields(text)
	if len(words) == 0 {
		return
	}

	size := s.SubtitleFontSize
	if size <= 0 {
		size = 42
	}
	if face := r.faces.Face(size); face != nil {
		dc.SetFontFace(face)
	}

	wordIx := WordIndex(progress, len(words))

	if s.SubtitleStyle == config.SubtitleWord {
		r.renderGiantWord(dc, words[wordIx], size*2.2)
		return
	}

	batch, batchStart := CurrentBatch(words, wordIx, BatchSize(s.Format))
	lines := r.wrapWords(dc, batch)

	anchorY := s.SubtitleAnchorY
	if anchorY <= 0 {
		anchorY = 0.85
	}
	lineHeight := size * 1.35
	baseY := anchorY * float64(r.height)
	startY := baseY - lineHeight*float64(len(lines)-1) // grow upward from the anchor

	spokenInBatch := wordIx - batchStart
	lineStart := 0
	for li, line := range lines {
		y := startY + float64(li)*lineHeight
		switch s.SubtitleStyle {
		case config.SubtitleBoxed:
			r.drawBoxedLine(dc, line, y)
		case config.SubtitleNeon:
			r.drawNeonLine(dc, line, y)
		case config.SubtitleGlitch:
			r.drawGlitchLine(dc, line, y)
		case config.SubtitleComic:
			r.drawComicLine(dc, line, y)
		case config.SubtitleKaraoke:
			r.drawKaraokeLine(dc, line, y, spokenInBatch-lineStart)
		default:
			r.drawPlainLine(dc, line, y)
		}
		lineStart += len(line)
	}
}

// wrapWords word-wraps a batch to ~85% of the frame width.
func (r *SubtitleRenderer) wrapWords(dc *gg.Context, words []string) [][]string {
	maxWidth := float64(r.width) * 0.85
	var lines [][]string
	var line []string

	for _, w := range words {
		candidate := strings.Join(append(append([]string{}, line...), w), " ")
		if tw, _ := dc.MeasureString(candidate); tw > maxWidth && len(line) > 0 {
			lines = append(lines, line)
			line = []string{w}
		} else {
			line = append(line, w)
		}
	}
	if len(line) > 0 {
		lines = append(lines, line)
	}
	return lines
}

func (r *SubtitleRenderer) drawPlainLine(dc *gg.Context, words []string, y float64) {
	text := strings.Join(words, " ")
	cx := float64(r.width) / 2

	dc.SetRGBA(0, 0, 0, 0.85)
	for _, off := range [][2]float64{{-2, 0}, {2, 0}, {0, -2}, {0, 2}} {
		dc.DrawStringAnchored(text, cx+off[0], y+off[1], 0.5, 0.5)
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

func (r *SubtitleRenderer) drawBoxedLine(dc *gg.Context, words []string, y float64) {
	text := strings.Join(words, " ")
	cx := float64(r.width) / 2
	tw, th := dc.MeasureString(text)

	padX, padY := th*0.6, th*0.35
	dc.SetRGBA(0, 0, 0, 0.7)
	dc.DrawRoundedRectangle(cx-tw/2-padX, y-th/2-padY, tw+2*padX, th+2*padY, th*0.5)
	dc.Fill()

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

func (r *SubtitleRenderer) drawNeonLine(dc *gg.Context, words []string, y float64) {
	text := strings.Join(words, " ")
	cx := float64(r.width) / 2

	// Double stroke glow: wide magenta halo, tighter cyan ring, white core.
	dc.SetRGBA(1, 0.2, 0.9, 0.35)
	for _, off := range [][2]float64{{-3, -3}, {3, -3}, {-3, 3}, {3, 3}} {
		dc.DrawStringAnchored(text, cx+off[0], y+off[1], 0.5, 0.5)
	}
	dc.SetRGBA(0.2, 0.95, 1, 0.6)
	for _, off := range [][2]float64{{-1.5, 0}, {1.5, 0}, {0, -1.5}, {0, 1.5}} {
		dc.DrawStringAnchored(text, cx+off[0], y+off[1], 0.5, 0.5)
	}
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

func (r *SubtitleRenderer) drawGlitchLine(dc *gg.Context, words []string, y float64) {
	text := strings.Join(words, " ")
	cx := float64(r.width) / 2

	// RGB-split duplicates offset to either side.
	dc.SetRGBA(1, 0.1, 0.25, 0.8)
	dc.DrawStringAnchored(text, cx-3, y, 0.5, 0.5)
	dc.SetRGBA(0.1, 0.9, 1, 0.8)
	dc.DrawStringAnchored(text, cx+3, y, 0.5, 0.5)
	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

func (r *SubtitleRenderer) drawComicLine(dc *gg.Context, words []string, y float64) {
	text := strings.Join(words, " ")
	cx := float64(r.width) / 2

	dc.SetRGB(0, 0, 0)
	for dx := -3.0; dx <= 3; dx += 1.5 {
		for dy := -3.0; dy <= 3; dy += 1.5 {
			dc.DrawStringAnchored(text, cx+dx, y+dy, 0.5, 0.5)
		}
	}
	dc.SetRGB(1, 0.92, 0.23)
	dc.DrawStringAnchored(text, cx, y, 0.5, 0.5)
}

// drawKaraokeLine flips each word from dim to highlighted as the playhead
// passes its boundary. spoken is the count of already-spoken words within
// this line (may be negative or beyond the line).
func (r *SubtitleRenderer) drawKaraokeLine(dc *gg.Context, words []string, y float64, spoken int) {
	text := strings.Join(words, " ")
	total, _ := dc.MeasureString(text)
	spaceW, _ := dc.MeasureString(" ")
	x := float64(r.width)/2 - total/2

	for i, w := range words {
		ww, _ := dc.MeasureString(w)

		dc.SetRGBA(0, 0, 0, 0.85)
		dc.DrawStringAnchored(w, x+ww/2+2, y+2, 0.5, 0.5)

		if i <= spoken {
			dc.SetRGB(1, 0.85, 0.1)
		} else {
			dc.SetRGBA(1, 1, 1, 0.55)
		}
		dc.DrawStringAnchored(w, x+ww/2, y, 0.5, 0.5)
		x += ww + spaceW
	}
}

// renderGiantWord draws one centered word with a two-tone vertical fill,
// the word-by-word display mode.
func (r *SubtitleRenderer) renderGiantWord(dc *gg.Context, word string, size float64) {
	if face := r.faces.Face(size); face != nil {
		dc.SetFontFace(face)
	}
	cx := float64(r.width) / 2
	cy := float64(r.height) * 0.5
	_, th := dc.MeasureString(word)

	dc.SetRGBA(0, 0, 0, 0.9)
	for _, off := range [][2]float64{{-3, 0}, {3, 0}, {0, -3}, {0, 3}} {
		dc.DrawStringAnchored(word, cx+off[0], cy+off[1], 0.5, 0.5)
	}

	dc.SetRGB(1, 1, 1)
	dc.DrawStringAnchored(word, cx, cy, 0.5, 0.5)

	// Bottom half pass in accent color approximates the gradient fill.
	dc.Push()
	dc.DrawRectangle(0, cy, float64(r.width), th)
	dc.Clip()
	dc.SetRGB(1, 0.75, 0.1)
	dc.DrawStringAnchored(word, cx, cy, 0.5, 0.5)
	dc.ResetClip()
	dc.Pop()
}
