package config

// Format selects the output frame geometry.
type Format string

const (
	FormatLandscape Format = "landscape" // 1280x720
	FormatPortrait  Format = "portrait"  // 720x1280
	FormatSquare    Format = "square"    // 1080x1080
	FormatVertical  Format = "4:5"       // 1080x1350
)

// FormatDimensions returns pixel dimensions for a format preset.
func FormatDimensions(f Format) (int, int) {
	switch f {
	case FormatPortrait:
		return 720, 1280
	case FormatSquare:
		return 1080, 1080
	case FormatVertical:
		return 1080, 1350
	default:
		return 1280, 720
	}
}

// Pacing controls the minimum duration floor applied to scenes that have
// no narration audio attached.
type Pacing string

const (
	PacingRelaxed  Pacing = "relaxed"
	PacingStandard Pacing = "standard"
	PacingFast     Pacing = "fast"
)

// MinSceneDuration returns the duration floor in seconds for a pacing mode.
func MinSceneDuration(p Pacing) float64 {
	switch p {
	case PacingRelaxed:
		return 6.0
	case PacingFast:
		return 1.5
	default:
		return 3.0
	}
}

// Config holds the static parameters of one render/playback session.
type Config struct {
	ProjectPath  string
	OutputVideo  string
	Format       Format
	Width        int
	Height       int
	FPS          int
	Workers      int
	VideoEncoder string
	Quality      int
	FontPath     string
	ShowStats    bool
	BuildVersion string
}

// SubtitleStyle names one of the built-in subtitle renderers.
type SubtitleStyle string

const (
	SubtitlePlain   SubtitleStyle = "plain"
	SubtitleBoxed   SubtitleStyle = "boxed"
	SubtitleNeon    SubtitleStyle = "neon"
	SubtitleGlitch  SubtitleStyle = "glitch"
	SubtitleComic   SubtitleStyle = "comic"
	SubtitleKaraoke SubtitleStyle = "karaoke"
	SubtitleWord    SubtitleStyle = "word"
)

// SpeakerTagStyle names one of the speaker badge skins.
type SpeakerTagStyle string

const (
	TagCinematic SpeakerTagStyle = "cinematic"
	TagRounded   SpeakerTagStyle = "rounded"
	TagNeon      SpeakerTagStyle = "neon"
	TagBubble    SpeakerTagStyle = "bubble"
	TagNews      SpeakerTagStyle = "news"
)

// LogoConfig describes the persistent channel logo drawn above everything.
// If Link is set and Path is empty, a QR code pointing at Link is rendered
// instead of an image.
type LogoConfig struct {
	Path    string  `yaml:"path" json:"path"`
	Link    string  `yaml:"link,omitempty" json:"link,omitempty"`
	X       float64 `yaml:"x" json:"x"` // normalized 0..1
	Y       float64 `yaml:"y" json:"y"`
	Scale   float64 `yaml:"scale" json:"scale"`
	Opacity float64 `yaml:"opacity" json:"opacity"`
}

// VFXConfig enables canvas-level post effects.
type VFXConfig struct {
	Grain          float64 `yaml:"grain" json:"grain"`       // 0..1 intensity
	Vignette       float64 `yaml:"vignette" json:"vignette"` // 0..1 edge darkness
	ChromaticShift float64 `yaml:"chromaticShift" json:"chromaticShift"`
}

// Settings is the live playback configuration. The host mutates it between
// frames via plain field updates; the render loop reads it fresh each tick.
// There is no locking because there is never a concurrent writer.
type Settings struct {
	Format Format
	Pacing Pacing

	ShowSubtitles    bool
	SubtitleStyle    SubtitleStyle
	SubtitleFontSize float64
	SubtitleAnchorY  float64 // vertical fraction of frame height, text grows upward

	Filter     string // named color filter preset, empty = none
	Transition string // global default transition mode
	VFX        VFXConfig

	ShowSpeakerTag  bool
	SpeakerTagStyle SpeakerTagStyle

	Logo *LogoConfig

	MusicTracks []string // single URL loops, multiple play sequentially
	MusicVolume float64
}

// DefaultSettings returns the playback settings a fresh session starts with.
func DefaultSettings() *Settings {
	return &Settings{
		Format:           FormatLandscape,
		Pacing:           PacingStandard,
		ShowSubtitles:    true,
		SubtitleStyle:    SubtitlePlain,
		SubtitleFontSize: 42,
		SubtitleAnchorY:  0.85,
		Transition:       "fade",
		ShowSpeakerTag:   true,
		SpeakerTagStyle:  TagCinematic,
		MusicVolume:      0.3,
	}
}
