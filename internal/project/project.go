package project

import (
	"sort"

	"github.com/google/uuid"
)

// MediaType discriminates a scene or layer's primary visual.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// LayerType discriminates overlay layers.
type LayerType string

const (
	LayerImage LayerType = "image"
	LayerVideo LayerType = "video"
	LayerText  LayerType = "text"
)

// Keyframe is a timestamped pose for a layer. Times are seconds relative
// to the scene start. Poses between neighboring keyframes are interpolated
// with smooth-step easing; before the first and after the last keyframe the
// layer holds that keyframe's pose.
type Keyframe struct {
	Time     float64 `yaml:"time" json:"time"`
	X        float64 `yaml:"x" json:"x"` // normalized 0..1
	Y        float64 `yaml:"y" json:"y"`
	Scale    float64 `yaml:"scale" json:"scale"`
	Rotation float64 `yaml:"rotation" json:"rotation"` // degrees
	Opacity  float64 `yaml:"opacity" json:"opacity"`
}

// Layer is a positioned visual element within a scene's time window.
// Layers flagged IsBackground are not overlays but alternate time-indexed
// background shots (a multi-shot sequence within one narrated beat).
type Layer struct {
	ID   string    `yaml:"id" json:"id"`
	Type LayerType `yaml:"type" json:"type"`

	X        float64 `yaml:"x" json:"x"` // normalized 0..1 of frame
	Y        float64 `yaml:"y" json:"y"`
	Scale    float64 `yaml:"scale" json:"scale"`
	Rotation float64 `yaml:"rotation" json:"rotation"` // degrees
	Opacity  float64 `yaml:"opacity" json:"opacity"`

	// Visibility window in seconds from scene start. EndTime 0 means
	// "until the end of the scene".
	StartTime float64 `yaml:"startTime" json:"startTime"`
	EndTime   float64 `yaml:"endTime,omitempty" json:"endTime,omitempty"`

	Keyframes []Keyframe `yaml:"keyframes,omitempty" json:"keyframes,omitempty"`

	// Named entry/exit effects applied alongside keyframes.
	EntryEffect   string  `yaml:"entryEffect,omitempty" json:"entryEffect,omitempty"`
	ExitEffect    string  `yaml:"exitEffect,omitempty" json:"exitEffect,omitempty"`
	EffectSeconds float64 `yaml:"effectSeconds,omitempty" json:"effectSeconds,omitempty"`

	// image/video media
	URL      string  `yaml:"url,omitempty" json:"url,omitempty"`
	Encoded  string  `yaml:"encoded,omitempty" json:"encoded,omitempty"` // base64 fallback
	TrimFrom float64 `yaml:"trimFrom,omitempty" json:"trimFrom,omitempty"`
	TrimTo   float64 `yaml:"trimTo,omitempty" json:"trimTo,omitempty"`
	Duration float64 `yaml:"duration,omitempty" json:"duration,omitempty"`

	// text media
	Text     string  `yaml:"text,omitempty" json:"text,omitempty"`
	FontSize float64 `yaml:"fontSize,omitempty" json:"fontSize,omitempty"`
	Color    string  `yaml:"color,omitempty" json:"color,omitempty"`
	Shadow   bool    `yaml:"shadow,omitempty" json:"shadow,omitempty"`

	IsBackground bool `yaml:"isBackground,omitempty" json:"isBackground,omitempty"`
}

// AudioLayer is a one-shot auxiliary sound fired once per scene pass when
// the playhead crosses StartTime.
type AudioLayer struct {
	ID        string  `yaml:"id" json:"id"`
	URL       string  `yaml:"url" json:"url"`
	Volume    float64 `yaml:"volume" json:"volume"`
	StartTime float64 `yaml:"startTime" json:"startTime"`
	Kind      string  `yaml:"kind,omitempty" json:"kind,omitempty"` // sfx|music
}

// MusicAction tells the audio graph what to do with background music when a
// scene becomes current.
type MusicAction string

const (
	MusicContinue MusicAction = "continue"
	MusicStart    MusicAction = "start"
	MusicStop     MusicAction = "stop"
)

// MusicConfig is the optional per-scene music directive.
type MusicConfig struct {
	Action MusicAction `yaml:"action" json:"action"`
	Track  string      `yaml:"track,omitempty" json:"track,omitempty"`
	Volume float64     `yaml:"volume,omitempty" json:"volume,omitempty"`
}

// Narration carries the scene's voice track. Path/Encoded are the durable
// forms; the decoded buffer is attached at load time by the audio graph and
// is authoritative for the scene's playback duration.
type Narration struct {
	URL     string `yaml:"url,omitempty" json:"url,omitempty"`
	Encoded string `yaml:"encoded,omitempty" json:"encoded,omitempty"`
	Failed  bool   `yaml:"failed,omitempty" json:"failed,omitempty"`
}

// Scene is one narrated beat of the video.
type Scene struct {
	ID      string `yaml:"id" json:"id"`
	Speaker string `yaml:"speaker,omitempty" json:"speaker,omitempty"`
	Text    string `yaml:"text,omitempty" json:"text,omitempty"`
	Prompt  string `yaml:"prompt,omitempty" json:"prompt,omitempty"` // advisory, generation-side only

	DurationEstimate float64 `yaml:"durationEstimate" json:"durationEstimate"`

	MediaType MediaType `yaml:"mediaType" json:"mediaType"`
	ImageURL  string    `yaml:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	VideoURL  string    `yaml:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	Encoded   string    `yaml:"encoded,omitempty" json:"encoded,omitempty"`

	Narration *Narration `yaml:"narration,omitempty" json:"narration,omitempty"`

	Layers      []Layer      `yaml:"layers,omitempty" json:"layers,omitempty"`
	AudioLayers []AudioLayer `yaml:"audioLayers,omitempty" json:"audioLayers,omitempty"`
	Music       *MusicConfig `yaml:"music,omitempty" json:"music,omitempty"`

	Transition string `yaml:"transition,omitempty" json:"transition,omitempty"` // per-scene override
	Camera     string `yaml:"camera,omitempty" json:"camera,omitempty"`
	Particles  string `yaml:"particles,omitempty" json:"particles,omitempty"`
	Grading    string `yaml:"grading,omitempty" json:"grading,omitempty"`

	VFX *struct {
		Grain          float64 `yaml:"grain" json:"grain"`
		Vignette       float64 `yaml:"vignette" json:"vignette"`
		ChromaticShift float64 `yaml:"chromaticShift" json:"chromaticShift"`
	} `yaml:"vfx,omitempty" json:"vfx,omitempty"`
}

// Project is the scene list handed to the engine by the generation/editing
// side. The engine never creates or deletes scenes on its own.
type Project struct {
	Version string  `yaml:"version" json:"version"`
	Title   string  `yaml:"title,omitempty" json:"title,omitempty"`
	Scenes  []Scene `yaml:"scenes" json:"scenes"`
}

// Overlays returns the scene's non-background layers in draw order.
func (s *Scene) Overlays() []Layer {
	out := make([]Layer, 0, len(s.Layers))
	for _, l := range s.Layers {
		if !l.IsBackground {
			out = append(out, l)
		}
	}
	return out
}

// BackgroundShots returns the scene's background shots sorted by start time.
func (s *Scene) BackgroundShots() []Layer {
	var out []Layer
	for _, l := range s.Layers {
		if l.IsBackground {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out
}

// RedistributeShots spreads the scene's background shots evenly across the
// given scene duration: startTime = index * (duration / shotCount). Any
// manually tuned timing is discarded, which matches observed behavior.
func (s *Scene) RedistributeShots(sceneDuration float64) {
	shots := 0
	for i := range s.Layers {
		if s.Layers[i].IsBackground {
			shots++
		}
	}
	if shots == 0 || sceneDuration <= 0 {
		return
	}

	step := sceneDuration / float64(shots)
	idx := 0
	// Assign in current sorted order so relative shot order is preserved.
	order := make([]int, 0, shots)
	for i := range s.Layers {
		if s.Layers[i].IsBackground {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(a, b int) bool {
		return s.Layers[order[a]].StartTime < s.Layers[order[b]].StartTime
	})
	for _, i := range order {
		s.Layers[i].StartTime = float64(idx) * step
		idx++
	}
}

// Normalize fills in defaults and repairs ordering invariants after load:
// ids for entities missing them, sorted keyframes, clamped opacities and
// sane default poses. Malformed data degrades instead of failing.
func (p *Project) Normalize() {
	for si := range p.Scenes {
		sc := &p.Scenes[si]
		if sc.ID == "" {
			sc.ID = uuid.NewString()
		}
		if sc.MediaType == "" {
			sc.MediaType = MediaImage
		}
		for li := range sc.Layers {
			l := &sc.Layers[li]
			if l.ID == "" {
				l.ID = uuid.NewString()
			}
			if l.Scale == 0 {
				l.Scale = 1
			}
			if l.Opacity == 0 {
				l.Opacity = 1
			}
			l.Opacity = clamp01(l.Opacity)
			sort.SliceStable(l.Keyframes, func(a, b int) bool {
				return l.Keyframes[a].Time < l.Keyframes[b].Time
			})
			for ki := range l.Keyframes {
				l.Keyframes[ki].Opacity = clamp01(l.Keyframes[ki].Opacity)
			}
		}
		for ai := range sc.AudioLayers {
			a := &sc.AudioLayers[ai]
			if a.ID == "" {
				a.ID = uuid.NewString()
			}
			if a.Volume == 0 {
				a.Volume = 1
			}
			a.Volume = clamp01(a.Volume)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
