package compositor

import (
	"github.com/reelcast/reelcast/internal/project"
)

// Pose is a layer's resolved placement at a specific moment.
type Pose struct {
	X        float64 // normalized 0..1
	Y        float64
	Scale    float64
	Rotation float64 // degrees
	Opacity  float64
}

func poseFromKeyframe(kf project.Keyframe) Pose {
	return Pose{X: kf.X, Y: kf.Y, Scale: kf.Scale, Rotation: kf.Rotation, Opacity: kf.Opacity}
}

func poseFromLayer(l *project.Layer) Pose {
	return Pose{X: l.X, Y: l.Y, Scale: l.Scale, Rotation: l.Rotation, Opacity: l.Opacity}
}

// InterpolatePose calculates a layer's pose at a given time by interpolating
// between its keyframes. Before the first keyframe and after the last the
// layer holds that keyframe's pose; layers without keyframes hold their
// static placement.
func InterpolatePose(l *project.Layer, currentTime float64) Pose {
	keyframes := l.Keyframes
	if len(keyframes) == 0 {
		return poseFromLayer(l)
	}

	if currentTime <= keyframes[0].Time {
		return poseFromKeyframe(keyframes[0])
	}

	if currentTime >= keyframes[len(keyframes)-1].Time {
		return poseFromKeyframe(keyframes[len(keyframes)-1])
	}

	// Find surrounding keyframes
	var prevKf, nextKf project.Keyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Time && currentTime < keyframes[i+1].Time {
			prevKf = keyframes[i]
			nextKf = keyframes[i+1]
			break
		}
	}

	timeDelta := nextKf.Time - prevKf.Time
	if timeDelta == 0 {
		timeDelta = 0.001 // Avoid division by zero
	}
	t := (currentTime - prevKf.Time) / timeDelta

	// Smooth-step easing: velocity is zero at both keyframes, so motion has
	// no visible discontinuity when segments meet.
	t = smoothStep(t)

	return Pose{
		X:        lerp(prevKf.X, nextKf.X, t),
		Y:        lerp(prevKf.Y, nextKf.Y, t),
		Scale:    lerp(prevKf.Scale, nextKf.Scale, t),
		Rotation: lerp(prevKf.Rotation, nextKf.Rotation, t),
		Opacity:  lerp(prevKf.Opacity, nextKf.Opacity, t),
	}
}

// ApplyEntryExit composes a layer's named entry/exit effect onto a pose.
// The effect runs over its own duration window at the edges of the layer's
// visibility window, alongside any keyframe animation.
func ApplyEntryExit(pose Pose, l *project.Layer, elapsed, windowEnd float64) Pose {
	dur := l.EffectSeconds
	if dur <= 0 {
		dur = 0.5
	}

	if l.EntryEffect != "" && elapsed < l.StartTime+dur {
		t := (elapsed - l.StartTime) / dur
		if t < 0 {
			t = 0
		}
		pose = applyEffect(pose, l.EntryEffect, smoothStep(t), true)
	}

	if l.ExitEffect != "" && windowEnd > 0 && elapsed > windowEnd-dur {
		t := (windowEnd - elapsed) / dur
		if t < 0 {
			t = 0
		}
		pose = applyEffect(pose, l.ExitEffect, smoothStep(t), false)
	}

	return pose
}

// applyEffect maps effect progress (0 = fully hidden, 1 = fully shown) onto
// the pose. entering distinguishes slide direction.
func applyEffect(pose Pose, name string, t float64, entering bool) Pose {
	switch name {
	case "fade":
		pose.Opacity *= t
	case "slide":
		offset := (1 - t) * 0.3
		if entering {
			pose.X -= offset
		} else {
			pose.X += offset
		}
		pose.Opacity *= t
	case "pop":
		pose.Scale *= 0.5 + 0.5*t
		pose.Opacity *= t
	}
	return pose
}

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// smoothStep is the classic ease-in-out curve t²(3−2t).
func smoothStep(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * t * (3 - 2*t)
}
