package timeline

import (
	"math"
	"testing"

	"github.com/reelcast/reelcast/internal/config"
)

func TestSceneDurationNarrationWins(t *testing.T) {
	tests := []struct {
		name      string
		estimate  float64
		narration float64
		expected  float64
	}{
		{"narration longer than estimate", 3.0, 7.5, 7.5 + NarrationPadding},
		{"narration shorter than estimate", 10.0, 2.0, 2.0 + NarrationPadding},
		{"narration equal to estimate", 4.0, 4.0, 4.0 + NarrationPadding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SceneDuration(tt.estimate, tt.narration, config.PacingStandard)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("expected %f, got %f", tt.expected, got)
			}
		})
	}
}

func TestSceneDurationPacingFloor(t *testing.T) {
	tests := []struct {
		pacing   config.Pacing
		estimate float64
		expected float64
	}{
		{config.PacingStandard, 1.0, 3.0},
		{config.PacingStandard, 5.0, 5.0},
		{config.PacingRelaxed, 4.0, 6.0},
		{config.PacingFast, 1.0, 1.5},
		{config.PacingFast, 0.0, 1.5}, // malformed zero duration degrades to floor
	}

	for _, tt := range tests {
		got := SceneDuration(tt.estimate, 0, tt.pacing)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("pacing %s estimate %.1f: expected %f, got %f", tt.pacing, tt.estimate, tt.expected, got)
		}
	}
}

func TestProgressClamp(t *testing.T) {
	if got := Progress(0, 5); got != 0 {
		t.Errorf("progress at elapsed=0 must be 0, got %f", got)
	}
	if got := Progress(2.5, 5); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if got := Progress(9, 5); got != 1 {
		t.Errorf("progress must clamp at 1.0, got %f", got)
	}
	if got := Progress(1, 0); got != 1 {
		t.Errorf("zero duration must report finished, got %f", got)
	}
}

func TestShouldAdvance(t *testing.T) {
	if ShouldAdvance(3.99, 4.0) {
		t.Error("must not advance before the duration runs out")
	}
	if !ShouldAdvance(4.0, 4.0) {
		t.Error("must advance exactly at the duration boundary")
	}
}

func TestTotal(t *testing.T) {
	got := Total([]float64{3, 5, 4})
	if math.Abs(got-12) > 1e-9 {
		t.Errorf("expected 12, got %f", got)
	}
}
