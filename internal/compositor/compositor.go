package compositor

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sync"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/reelcast/reelcast/internal/assets"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/project"
	"github.com/reelcast/reelcast/internal/system"
)

// Compositor draws one scene into a frame: solid clear, cover-fit background
// under the camera transform, then overlay layers in list order. Post
// effects (filters, grain, subtitles) are applied by the fx stage on top of
// the finished composite.
type Compositor struct {
	width  int
	height int

	resolver *assets.Resolver

	fontData []byte
	faceMu   sync.Mutex
	faces    map[float64]font.Face

	// heldBackground keeps the last presentable background per render
	// target, so a slow asset degrades to a frozen frame, never a blank.
	// The outgoing and incoming sides of a blend are separate targets and
	// must degrade independently.
	heldBackground map[*gg.Context]image.Image

	log zerolog.Logger
}

// New creates a compositor for a fixed output geometry. fontPath may be
// empty; text then renders with the built-in face.
func New(width, height int, resolver *assets.Resolver, fontPath string) *Compositor {
	c := &Compositor{
		width:          width,
		height:         height,
		resolver:       resolver,
		faces:          make(map[float64]font.Face),
		heldBackground: make(map[*gg.Context]image.Image),
		log:            logging.WithComponent("compositor"),
	}
	if fontPath != "" {
		data, err := os.ReadFile(fontPath)
		if err != nil {
			c.log.Warn().Str("path", fontPath).Err(err).Msg("font load failed, using builtin face")
		} else {
			c.fontData = data
		}
	}
	return c
}

// Face returns a cached font face at the given point size, or nil when no
// font file was configured (gg then falls back to its builtin face).
func (c *Compositor) Face(points float64) font.Face {
	if c.fontData == nil {
		return nil
	}

	c.faceMu.Lock()
	defer c.faceMu.Unlock()

	if face, ok := c.faces[points]; ok {
		return face
	}

	parsed, err := opentype.Parse(c.fontData)
	if err != nil {
		c.fontData = nil
		return nil
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    points,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil
	}
	c.faces[points] = face
	return face
}

// RenderScene draws the scene at the given elapsed time into dc. progress is
// the clamped 0..1 scene progress feeding the camera movement.
func (c *Compositor) RenderScene(dc *gg.Context, sc *project.Scene, progress, elapsed, sceneDuration float64) {
	dc.SetRGB(0, 0, 0)
	dc.DrawRectangle(0, 0, float64(c.width), float64(c.height))
	dc.Fill()

	c.drawBackground(dc, sc, progress, elapsed)

	for _, l := range sc.Overlays() {
		if !layerVisible(&l, elapsed, sceneDuration) {
			continue
		}
		c.drawLayer(dc, &l, elapsed, sceneDuration)
	}
}

func (c *Compositor) drawBackground(dc *gg.Context, sc *project.Scene, progress, elapsed float64) {
	ref := c.resolver.ActiveMedia(sc, elapsed)

	var img image.Image
	ok := false
	if !ref.Empty() {
		if ref.Type == project.MediaVideo {
			img, ok = c.resolver.VideoFrame(ref, elapsed)
		} else {
			img, ok = c.resolver.Image(ref)
		}
	}
	if !ok {
		img = c.heldBackground[dc]
		if img == nil {
			return
		}
	} else {
		c.heldBackground[dc] = img
	}

	cam := CameraMovement(sc.Camera, progress, elapsed, c.width, c.height)

	bounds := img.Bounds()
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	if iw == 0 || ih == 0 {
		return
	}

	// Cover fit: scale so the image fills the frame in both dimensions and
	// the excess is cropped, never letterboxed.
	cover := math.Max(float64(c.width)/iw, float64(c.height)/ih)
	scale := cover * cam.Scale
	cx, cy := float64(c.width)/2, float64(c.height)/2

	dc.Push()
	if cam.Rotation != 0 {
		dc.RotateAbout(cam.Rotation, cx, cy)
	}
	dc.ScaleAbout(scale, scale, cx, cy)
	dc.DrawImageAnchored(img, int(cx+cam.OffsetX/scale), int(cy+cam.OffsetY/scale), 0.5, 0.5)
	dc.Pop()
}

func layerVisible(l *project.Layer, elapsed, sceneDuration float64) bool {
	if elapsed < l.StartTime {
		return false
	}
	end := l.EndTime
	if end <= 0 {
		end = sceneDuration
	}
	return elapsed <= end
}

func (c *Compositor) drawLayer(dc *gg.Context, l *project.Layer, elapsed, sceneDuration float64) {
	pose := InterpolatePose(l, elapsed)
	windowEnd := l.EndTime
	if windowEnd <= 0 {
		windowEnd = sceneDuration
	}
	pose = ApplyEntryExit(pose, l, elapsed, windowEnd)

	if pose.Opacity <= 0 || pose.Scale <= 0 {
		return
	}

	px := pose.X * float64(c.width)
	py := pose.Y * float64(c.height)

	// Isolated transform stack per layer: translate, rotate, scale, draw,
	// restore. Transforms never leak into the next layer.
	dc.Push()
	defer dc.Pop()
	dc.RotateAbout(gg.Radians(pose.Rotation), px, py)
	dc.ScaleAbout(pose.Scale, pose.Scale, px, py)

	switch l.Type {
	case project.LayerText:
		c.drawTextLayer(dc, l, pose, px, py)
	case project.LayerVideo:
		ref := assets.MediaRef{
			URL: l.URL, Encoded: l.Encoded, Type: project.MediaVideo,
			TrimFrom: l.TrimFrom, TrimTo: l.TrimTo,
		}
		if ref.TrimTo <= 0 && l.Duration > 0 {
			// A declared clip length bounds playback like an explicit
			// trim end.
			ref.TrimTo = l.TrimFrom + l.Duration
		}
		if frame, ok := c.resolver.VideoFrame(ref, elapsed-l.StartTime); ok {
			img, done := withOpacity(frame, pose.Opacity)
			dc.DrawImageAnchored(img, int(px), int(py), 0.5, 0.5)
			done()
		}
	default: // image
		ref := assets.MediaRef{URL: l.URL, Encoded: l.Encoded, Type: project.MediaImage}
		if img, ok := c.resolver.Image(ref); ok {
			faded, done := withOpacity(img, pose.Opacity)
			dc.DrawImageAnchored(faded, int(px), int(py), 0.5, 0.5)
			done()
		}
	}
}

func (c *Compositor) drawTextLayer(dc *gg.Context, l *project.Layer, pose Pose, px, py float64) {
	size := l.FontSize
	if size <= 0 {
		size = 36
	}
	if face := c.Face(size); face != nil {
		dc.SetFontFace(face)
	}

	// Stroke shadow for legibility over busy footage.
	if l.Shadow {
		dc.SetRGBA(0, 0, 0, 0.8*pose.Opacity)
		for _, off := range [][2]float64{{-2, 0}, {2, 0}, {0, -2}, {0, 2}} {
			dc.DrawStringAnchored(l.Text, px+off[0], py+off[1], 0.5, 0.5)
		}
	}

	r, g, b := parseHexColor(l.Color)
	dc.SetRGBA(r, g, b, pose.Opacity)
	dc.DrawStringAnchored(l.Text, px, py, 0.5, 0.5)
}

// withOpacity scales the image's alpha into a pooled scratch buffer, keeping
// the per-frame layer path off the garbage collector. done releases the
// buffer; full opacity passes the original through untouched.
func withOpacity(img image.Image, opacity float64) (image.Image, func()) {
	if opacity >= 1 {
		return img, func() {}
	}
	bounds := img.Bounds()
	out := system.GetImage(bounds)
	draw.DrawMask(out, bounds, img, bounds.Min,
		image.NewUniform(color.Alpha{A: uint8(opacity * 255)}), image.Point{}, draw.Src)
	return out, func() { system.PutImage(out) }
}

func parseHexColor(hex string) (float64, float64, float64) {
	if len(hex) != 7 || hex[0] != '#' {
		return 1, 1, 1
	}
	var r, g, b int
	for i, out := range []*int{&r, &g, &b} {
		hi := hexVal(hex[1+i*2])
		lo := hexVal(hex[2+i*2])
		if hi < 0 || lo < 0 {
			return 1, 1, 1
		}
		*out = hi*16 + lo
	}
	return float64(r) / 255, float64(g) / 255, float64(b) / 255
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}
