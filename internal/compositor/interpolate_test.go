package compositor

import (
	"math"
	"testing"

	"github.com/reelcast/reelcast/internal/project"
)

func TestInterpolatePoseSmoothStep(t *testing.T) {
	layer := &project.Layer{
		Type: project.LayerImage,
		Keyframes: []project.Keyframe{
			{Time: 0, X: 0, Scale: 1, Opacity: 1},
			{Time: 1, X: 1, Scale: 1, Opacity: 1},
		},
	}

	tests := []struct {
		time      float64
		expectedX float64
	}{
		{0.0, 0.0},  // exact keyframe, no drift
		{1.0, 1.0},  // exact keyframe, no drift
		{0.5, 0.5},  // smooth-step is symmetric at the midpoint
		{0.25, 0.15625}, // t²(3−2t), visibly below the linear 0.25
		{0.75, 0.84375},
	}

	for _, tt := range tests {
		pose := InterpolatePose(layer, tt.time)
		if math.Abs(pose.X-tt.expectedX) > 1e-9 {
			t.Errorf("at time %.2f: expected x=%f, got %f", tt.time, tt.expectedX, pose.X)
		}
	}
}

func TestInterpolatePoseHoldsEdges(t *testing.T) {
	layer := &project.Layer{
		Type: project.LayerImage,
		Keyframes: []project.Keyframe{
			{Time: 1, X: 0.2, Scale: 1.5, Opacity: 0.8},
			{Time: 3, X: 0.6, Scale: 2.0, Opacity: 1.0},
		},
	}

	before := InterpolatePose(layer, 0.0)
	if before.X != 0.2 || before.Scale != 1.5 {
		t.Errorf("before the first keyframe the layer must hold it, got %+v", before)
	}

	after := InterpolatePose(layer, 10.0)
	if after.X != 0.6 || after.Scale != 2.0 {
		t.Errorf("after the last keyframe the layer must hold it, got %+v", after)
	}
}

func TestInterpolatePoseStaticWithoutKeyframes(t *testing.T) {
	layer := &project.Layer{Type: project.LayerImage, X: 0.3, Y: 0.7, Scale: 1.2, Opacity: 0.9}
	pose := InterpolatePose(layer, 2.5)
	if pose.X != 0.3 || pose.Y != 0.7 || pose.Scale != 1.2 || pose.Opacity != 0.9 {
		t.Errorf("layer without keyframes must hold its static placement, got %+v", pose)
	}
}

func TestApplyEntryFade(t *testing.T) {
	layer := &project.Layer{
		Type:          project.LayerImage,
		Opacity:       1,
		Scale:         1,
		EntryEffect:   "fade",
		EffectSeconds: 1.0,
	}

	start := ApplyEntryExit(poseFromLayer(layer), layer, 0.0, 5.0)
	if start.Opacity != 0 {
		t.Errorf("fade entry must start fully transparent, got %f", start.Opacity)
	}

	done := ApplyEntryExit(poseFromLayer(layer), layer, 2.0, 5.0)
	if done.Opacity != 1 {
		t.Errorf("fade entry must be finished after its duration, got %f", done.Opacity)
	}
}

func TestCameraMovementBounds(t *testing.T) {
	tests := []struct {
		mode  string
		t     float64
		scale float64
	}{
		{"static", 0.5, 1.0},
		{"zoom-in", 0.0, 1.0},
		{"zoom-in", 1.0, 1.15},
		{"zoom-out", 0.0, 1.15},
		{"zoom-out", 1.0, 1.0},
		{"pan-left", 0.5, 1.1},
		{"handheld", 0.3, 1.05},
	}

	for _, tt := range tests {
		cam := CameraMovement(tt.mode, tt.t, tt.t*4, 1280, 720)
		if math.Abs(cam.Scale-tt.scale) > 1e-9 {
			t.Errorf("%s at t=%.1f: expected scale %f, got %f", tt.mode, tt.t, tt.scale, cam.Scale)
		}
	}
}

func TestCameraPanDirection(t *testing.T) {
	left0 := CameraMovement("pan-left", 0, 0, 1280, 720)
	left1 := CameraMovement("pan-left", 1, 4, 1280, 720)
	if left1.OffsetX >= left0.OffsetX {
		t.Error("pan-left offset must decrease over the scene")
	}

	right0 := CameraMovement("pan-right", 0, 0, 1280, 720)
	right1 := CameraMovement("pan-right", 1, 4, 1280, 720)
	if right1.OffsetX <= right0.OffsetX {
		t.Error("pan-right offset must increase over the scene")
	}
}
