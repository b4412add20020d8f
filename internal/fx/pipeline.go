package fx

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/reelcast/reelcast/internal/config"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/project"
)

// FrameContext carries the per-frame values the post pipeline needs. The
// render loop fills one each tick instead of effects reaching into globals.
type FrameContext struct {
	Scene      *project.Scene
	Progress   float64 // 0..1 within the scene
	Elapsed    float64 // seconds into the scene
	FrameIndex int
	DeltaTime  float64 // seconds since the previous tick, 0 while paused
	Paused     bool
}

// Pipeline runs every post-composite pass in a fixed order: color filter,
// chromatic shift, grain, vignette, particles, subtitles, speaker tag, logo.
type Pipeline struct {
	width  int
	height int

	grain     *grainState
	particles *ParticleSystem
	subtitles *SubtitleRenderer
	faces     FaceProvider

	logo     *Logo
	logoPath string
	logoLink string
}

func NewPipeline(width, height int, faces FaceProvider) *Pipeline {
	return &Pipeline{
		width:     width,
		height:    height,
		grain:     newGrainState(),
		particles: NewParticleSystem(width, height),
		subtitles: NewSubtitleRenderer(width, height, faces),
		faces:     faces,
	}
}

// ResetScene clears per-scene effect state at a scene boundary.
func (p *Pipeline) ResetScene() {
	p.particles.Reset()
}

// Apply runs the whole post stack over the composited frame.
func (p *Pipeline) Apply(dc *gg.Context, img *image.RGBA, fc *FrameContext, s *config.Settings) {
	sc := fc.Scene

	// Pixel passes first, on the raw frame buffer.
	filter := s.Filter
	if sc != nil && sc.Grading != "" {
		filter = sc.Grading
	}
	if filter != "" {
		ApplyFilter(img, filter)
	}

	vfx := s.VFX
	if sc != nil && sc.VFX != nil {
		vfx = config.VFXConfig{
			Grain:          sc.VFX.Grain,
			Vignette:       sc.VFX.Vignette,
			ChromaticShift: sc.VFX.ChromaticShift,
		}
	}
	if vfx.ChromaticShift > 0 {
		ApplyChromaticShift(img, int(vfx.ChromaticShift))
	}
	if vfx.Grain > 0 {
		p.grain.Apply(img, vfx.Grain, fc.FrameIndex)
	}
	if vfx.Vignette > 0 {
		ApplyVignette(img, vfx.Vignette)
	}

	// Vector passes on top of the pixels.
	if sc != nil && sc.Particles != "" {
		if !fc.Paused {
			p.particles.Update(sc.Particles, fc.DeltaTime)
		}
		p.particles.Render(dc)
	}

	if s.ShowSubtitles && sc != nil && sc.Text != "" {
		p.subtitles.Render(dc, sc.Text, fc.Progress, s)
	}

	if s.ShowSpeakerTag && sc != nil {
		DrawSpeakerTag(dc, p.width, p.height, sc.Speaker, s.SpeakerTagStyle, p.faces)
	}

	if s.Logo != nil {
		p.ensureLogo(s.Logo)
		p.logo.Draw(dc, p.width, p.height, s.Logo.X, s.Logo.Y, s.Logo.Scale, s.Logo.Opacity)
	}
}

// ensureLogo lazily loads the logo and reloads it when the config changes.
func (p *Pipeline) ensureLogo(cfg *config.LogoConfig) {
	if p.logo != nil && p.logoPath == cfg.Path && p.logoLink == cfg.Link {
		return
	}
	p.logoPath = cfg.Path
	p.logoLink = cfg.Link
	if cfg.Path == "" && cfg.Link == "" {
		p.logo = nil
		return
	}
	logo, err := LoadLogo(cfg.Path, cfg.Link)
	if err != nil {
		fxLog := logging.WithComponent("fx")
		fxLog.Warn().Err(err).Str("path", cfg.Path).Msg("logo load failed")
		p.logo = nil
		return
	}
	p.logo = logo
}

// Particles exposes the particle system for the render loop's stats overlay.
func (p *Pipeline) Particles() *ParticleSystem {
	return p.particles
}
