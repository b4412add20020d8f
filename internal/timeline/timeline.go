package timeline

import (
	"github.com/reelcast/reelcast/internal/config"
)

// NarrationPadding is added to a decoded narration duration so trailing
// reverb and sentence-final silence are not truncated at the scene switch.
const NarrationPadding = 0.15

// SceneDuration resolves a scene's authoritative duration in seconds.
// A decoded narration track wins over the estimate; without narration the
// estimate is clamped to the pacing floor. A zero/negative duration from
// malformed data degrades to the pacing floor instead of a zero-length scene.
func SceneDuration(estimate, narrationSeconds float64, pacing config.Pacing) float64 {
	if narrationSeconds > 0 {
		return narrationSeconds + NarrationPadding
	}

	min := config.MinSceneDuration(pacing)
	if estimate < min {
		return min
	}
	return estimate
}

// Progress maps elapsed time into 0..1 scene progress. It is clamped at 1.0
// so effects parameterized by progress (camera zoom, subtitles) never
// overshoot their final pose while the scene switch is pending.
func Progress(elapsed, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	if elapsed <= 0 {
		return 0
	}
	p := elapsed / duration
	if p > 1 {
		return 1
	}
	return p
}

// ShouldAdvance reports whether the scene clock has run out.
func ShouldAdvance(elapsed, duration float64) bool {
	return elapsed >= duration
}

// Total sums resolved scene durations into the natural video length.
func Total(durations []float64) float64 {
	sum := 0.0
	for _, d := range durations {
		sum += d
	}
	return sum
}
