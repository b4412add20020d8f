// Package player drives playback: an explicit Tick(dt) advances the
// timeline, fires audio cues, composites the frame and reports progress.
// The caller owns the clock, a ticker for live preview or a tight loop for
// export.
package player

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"

	"github.com/reelcast/reelcast/internal/assets"
	"github.com/reelcast/reelcast/internal/audiograph"
	"github.com/reelcast/reelcast/internal/compositor"
	"github.com/reelcast/reelcast/internal/config"
	"github.com/reelcast/reelcast/internal/fx"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/project"
	"github.com/reelcast/reelcast/internal/system"
	"github.com/reelcast/reelcast/internal/timeline"
	"github.com/reelcast/reelcast/internal/transition"
)

// Callbacks are invoked synchronously from Tick.
type Callbacks struct {
	OnProgress    func(sceneIx int, sceneProgress, totalProgress float64)
	OnSceneChange func(sceneIx int)
	OnComplete    func()
}

// sfxKey identifies a one-shot sound within one scene pass.
type sfxKey struct {
	layerID string
	sceneIx int
}

// Player renders a project frame by frame.
type Player struct {
	cfg      *config.Config
	settings *config.Settings
	proj     *project.Project

	resolver   *assets.Resolver
	comp       *compositor.Compositor
	pipeline   *fx.Pipeline
	inPipeline *fx.Pipeline // post stack for the incoming side of a blend
	graph      *audiograph.Graph
	library    *audiograph.Library

	durations []float64

	sceneIx      int
	elapsed      float64
	frameIndex   int
	playing      bool
	complete     bool
	musicStarted bool

	narrated map[string]bool
	firedSFX map[sfxKey]bool

	frame    *image.RGBA
	dc       *gg.Context
	inFrame  *image.RGBA
	inDC     *gg.Context
	rendered bool

	callbacks Callbacks
	log       zerolog.Logger
}

// New builds a player. live selects speaker output; export passes false and
// pulls PCM itself.
func New(proj *project.Project, cfg *config.Config, settings *config.Settings, live bool) *Player {
	resolver := assets.NewResolver(cfg.FPS)
	comp := compositor.New(cfg.Width, cfg.Height, resolver, cfg.FontPath)

	p := &Player{
		cfg:      cfg,
		settings: settings,
		proj:     proj,
		resolver:   resolver,
		comp:       comp,
		pipeline:   fx.NewPipeline(cfg.Width, cfg.Height, comp),
		inPipeline: fx.NewPipeline(cfg.Width, cfg.Height, comp),
		graph:      audiograph.NewGraph(live),
		library:  audiograph.NewLibrary(),
		narrated: make(map[string]bool),
		firedSFX: make(map[sfxKey]bool),
		frame:    image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		inFrame:  image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		log:      logging.WithComponent("player"),
	}
	p.dc = gg.NewContextForRGBA(p.frame)
	p.inDC = gg.NewContextForRGBA(p.inFrame)
	p.durations = p.resolveDurations()
	return p
}

// resolveDurations fixes every scene length up front. Decoded narration is
// authoritative (plus a small tail pad); a probe-able URL is next; the
// script estimate under the pacing floor is the fallback.
func (p *Player) resolveDurations() []float64 {
	out := make([]float64, len(p.proj.Scenes))
	for i := range p.proj.Scenes {
		sc := &p.proj.Scenes[i]
		narr := 0.0

		if sc.Narration != nil && !sc.Narration.Failed {
			if buf, err := p.library.Load(sc.Narration.URL, sc.Narration.Encoded); err == nil {
				narr = audiograph.BufferSeconds(buf) + timeline.NarrationPadding
			} else if sc.Narration.URL != "" {
				if d, perr := system.ProbeMediaDuration(sc.Narration.URL); perr == nil {
					narr = d + timeline.NarrationPadding
				} else {
					p.log.Warn().Err(err).Str("scene", sc.ID).Msg("narration unavailable")
				}
			} else {
				p.log.Warn().Err(err).Str("scene", sc.ID).Msg("narration decode failed")
			}
		}

		out[i] = timeline.SceneDuration(sc.DurationEstimate, narr, p.settings.Pacing)
	}
	return out
}

// Durations returns the resolved per-scene lengths.
func (p *Player) Durations() []float64 {
	return p.durations
}

// TotalDuration is the whole timeline in seconds.
func (p *Player) TotalDuration() float64 {
	return timeline.Total(p.durations)
}

// SceneIndex reports the scene under the playhead.
func (p *Player) SceneIndex() int {
	return p.sceneIx
}

// SceneProgress reports the current scene's clamped 0..1 progress.
func (p *Player) SceneProgress() float64 {
	if p.sceneIx >= len(p.durations) {
		return 0
	}
	return timeline.Progress(p.elapsed, p.durations[p.sceneIx])
}

// SceneCount reports how many scenes the project holds.
func (p *Player) SceneCount() int {
	return len(p.proj.Scenes)
}

// Complete reports whether playback reached the natural end.
func (p *Player) Complete() bool {
	return p.complete
}

// SetCallbacks installs progress hooks. Must be called before ticking.
func (p *Player) SetCallbacks(cb Callbacks) {
	p.callbacks = cb
}

// Play resumes the clock. Session music starts on the first Play only;
// resuming after a pause picks the playlist up where it left off.
func (p *Player) Play() {
	if p.complete {
		return
	}
	p.playing = true
	if !p.musicStarted && len(p.settings.MusicTracks) > 0 {
		p.musicStarted = true
		p.startSessionMusic()
	}
}

// Pause freezes the clock. Ticks keep rendering the held frame.
func (p *Player) Pause() {
	p.playing = false
}

// Playing reports whether the clock advances on Tick.
func (p *Player) Playing() bool {
	return p.playing
}

func (p *Player) startSessionMusic() {
	tracks := make([]*audiograph.Buffer, 0, len(p.settings.MusicTracks))
	for _, url := range p.settings.MusicTracks {
		buf, err := p.library.Load(url, "")
		if err != nil {
			p.log.Warn().Err(err).Str("url", url).Msg("music track skipped")
			continue
		}
		tracks = append(tracks, buf)
	}
	if len(tracks) > 0 {
		p.graph.StartMusic(tracks, p.settings.MusicVolume)
	}
}

// Seek jumps to a scene offset for paused scrubbing. Cues already fired for
// that scene are not re-fired.
func (p *Player) Seek(sceneIx int, offset float64) {
	if sceneIx < 0 || sceneIx >= len(p.proj.Scenes) {
		return
	}
	if p.sceneIx != sceneIx || offset < p.elapsed {
		p.resolver.RewindVideos()
	}
	if p.sceneIx != sceneIx {
		p.pipeline.ResetScene()
		p.inPipeline.ResetScene()
	}
	p.sceneIx = sceneIx
	p.elapsed = offset
	p.complete = false
}

// Restart rewinds to scene zero with all one-shot state cleared, giving
// export its deterministic from-scratch pass.
func (p *Player) Restart() {
	p.sceneIx = 0
	p.elapsed = 0
	p.frameIndex = 0
	p.complete = false
	p.narrated = make(map[string]bool)
	p.firedSFX = make(map[sfxKey]bool)
	p.pipeline.ResetScene()
	p.inPipeline.ResetScene()
	p.resolver.RewindVideos()
	p.graph.StopNarration()
	p.graph.StopMusic(false)
	p.musicStarted = false
	if len(p.settings.MusicTracks) > 0 && p.playing {
		p.musicStarted = true
		p.startSessionMusic()
	}
}

// Tick advances the timeline by dt seconds and renders the current frame.
// dt of zero re-renders without advancing, which is how paused preview and
// scrubbing draw. The returned buffer is reused between ticks.
func (p *Player) Tick(dt float64) *image.RGBA {
	if p.complete || len(p.proj.Scenes) == 0 {
		return p.frame
	}
	if !p.playing {
		dt = 0
	}

	p.elapsed += dt
	sc := &p.proj.Scenes[p.sceneIx]
	duration := p.durations[p.sceneIx]
	progress := timeline.Progress(p.elapsed, duration)

	// Cues fire before drawing so a frame never shows a state whose sound
	// has not started.
	p.fireCues(sc)

	p.renderFrame(sc, progress, duration, dt)
	p.frameIndex++

	if p.callbacks.OnProgress != nil {
		p.callbacks.OnProgress(p.sceneIx, progress, p.totalProgress())
	}

	if p.playing && timeline.ShouldAdvance(p.elapsed, duration) {
		p.advance()
	}
	return p.frame
}

func (p *Player) totalProgress() float64 {
	total := p.TotalDuration()
	if total <= 0 {
		return 0
	}
	done := timeline.Total(p.durations[:p.sceneIx]) + p.elapsed
	return timeline.Progress(done, total)
}

// fireCues plays narration once per scene id and each audio layer once per
// scene pass when the playhead crosses its start.
func (p *Player) fireCues(sc *project.Scene) {
	if !p.playing {
		return
	}

	if !p.narrated[sc.ID] {
		p.narrated[sc.ID] = true
		p.applyMusicDirective(sc)
		if sc.Narration != nil && !sc.Narration.Failed {
			if buf, err := p.library.Load(sc.Narration.URL, sc.Narration.Encoded); err == nil {
				p.graph.PlayNarration(buf)
			} else {
				// Timing already fell back to the estimate; keep the slot
				// occupied so the scene sounds intentionally quiet, not broken.
				p.graph.PlayNarration(audiograph.SilentBuffer(sc.DurationEstimate))
			}
		}
	}

	for i := range sc.AudioLayers {
		al := &sc.AudioLayers[i]
		if p.elapsed < al.StartTime {
			continue
		}
		key := sfxKey{layerID: al.ID, sceneIx: p.sceneIx}
		if p.firedSFX[key] {
			continue
		}
		p.firedSFX[key] = true
		buf, err := p.library.Load(al.URL, "")
		if err != nil {
			p.log.Warn().Err(err).Str("layer", al.ID).Msg("sfx load failed")
			continue
		}
		p.graph.PlaySFX(buf, al.Volume)
	}
}

func (p *Player) applyMusicDirective(sc *project.Scene) {
	if sc.Music == nil {
		return
	}
	switch sc.Music.Action {
	case project.MusicStop:
		p.graph.StopMusic(true)
	case project.MusicStart:
		vol := sc.Music.Volume
		if vol <= 0 {
			vol = p.settings.MusicVolume
		}
		if sc.Music.Track != "" {
			if buf, err := p.library.Load(sc.Music.Track, ""); err == nil {
				p.graph.StartMusic([]*audiograph.Buffer{buf}, vol)
			} else {
				p.log.Warn().Err(err).Str("track", sc.Music.Track).Msg("scene music skipped")
			}
		} else {
			p.graph.SetMusicVolume(vol)
		}
	default:
		if sc.Music.Volume > 0 {
			p.graph.SetMusicVolume(sc.Music.Volume)
		}
	}
}

// renderFrame runs the full visual stack for one tick. During a transition
// each side is composited and post-processed on its own before the blend, so
// the outgoing scene's subtitles fade with the rest of its frame and the
// incoming side arrives with its own grading already applied.
func (p *Player) renderFrame(sc *project.Scene, progress float64, duration, dt float64) {
	p.comp.RenderScene(p.dc, sc, progress, p.elapsed, duration)
	fc := &fx.FrameContext{
		Scene:      sc,
		Progress:   progress,
		Elapsed:    p.elapsed,
		FrameIndex: p.frameIndex,
		DeltaTime:  dt,
		Paused:     !p.playing,
	}
	p.pipeline.Apply(p.dc, p.frame, fc, p.settings)

	if t, active := transition.Phase(p.elapsed, duration, p.sceneIx+1 < len(p.proj.Scenes)); active {
		mode := transition.Resolve(sc.Transition, p.settings.Transition)
		if mode != transition.ModeNone {
			next := &p.proj.Scenes[p.sceneIx+1]
			// The incoming scene shows its opening frame during the blend.
			p.comp.RenderScene(p.inDC, next, 0, 0, p.durations[p.sceneIx+1])
			inFC := &fx.FrameContext{
				Scene:      next,
				Progress:   0,
				Elapsed:    0,
				FrameIndex: p.frameIndex,
				DeltaTime:  0,
				Paused:     true,
			}
			p.inPipeline.Apply(p.inDC, p.inFrame, inFC, p.settings)
			transition.Blend(p.frame, p.inFrame, mode, t)
		}
	}
}

// advance crosses a scene boundary, resetting per-scene ephemeral state.
func (p *Player) advance() {
	p.sceneIx++
	p.elapsed = 0
	p.pipeline.ResetScene()
	p.inPipeline.ResetScene()

	if p.sceneIx >= len(p.proj.Scenes) {
		p.sceneIx = len(p.proj.Scenes) - 1
		p.finish()
		return
	}
	if p.callbacks.OnSceneChange != nil {
		p.callbacks.OnSceneChange(p.sceneIx)
	}
}

func (p *Player) finish() {
	if p.complete {
		return
	}
	p.complete = true
	p.playing = false
	p.graph.StopNarration()
	p.graph.StopMusic(true)
	if p.callbacks.OnComplete != nil {
		p.callbacks.OnComplete()
	}
}

// Graph exposes the audio graph for the export PCM tap and the stats HUD.
func (p *Player) Graph() *audiograph.Graph {
	return p.graph
}

// Stop tears the session down. The player is unusable afterwards.
func (p *Player) Stop() {
	p.playing = false
	p.graph.Close()
	p.resolver.Close()
}
