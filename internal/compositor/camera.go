package compositor

import "math"

// CameraState is the background transform for one frame.
type CameraState struct {
	Scale    float64
	OffsetX  float64 // pixels
	OffsetY  float64
	Rotation float64 // radians
}

// CameraMovement computes the background camera transform for a movement
// mode. t is the scene progress in 0..1 and is used raw (no easing): camera
// drift should be continuous across the whole scene, not settle early.
// elapsed feeds the handheld jitter so it is independent of scene length.
func CameraMovement(mode string, t, elapsed float64, width, height int) CameraState {
	w := float64(width)
	h := float64(height)

	switch mode {
	case "zoom-in":
		return CameraState{Scale: 1.0 + 0.15*t}
	case "zoom-out":
		return CameraState{Scale: 1.15 - 0.15*t}
	case "pan-left":
		return CameraState{Scale: 1.1, OffsetX: 0.05 * w * (1 - 2*t)}
	case "pan-right":
		return CameraState{Scale: 1.1, OffsetX: 0.05 * w * (2*t - 1)}
	case "rotate-cw":
		return CameraState{Scale: 1.1, Rotation: t * 0.035}
	case "handheld":
		// Two incommensurate frequencies so the jitter never looks like a
		// mechanical loop.
		return CameraState{
			Scale:   1.05,
			OffsetX: math.Sin(elapsed*1.3) * 0.004 * w,
			OffsetY: math.Cos(elapsed*1.7) * 0.004 * h,
		}
	default: // static
		return CameraState{Scale: 1.0}
	}
}
