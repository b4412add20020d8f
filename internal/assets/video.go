package assets

import (
	"fmt"
	"image"
	"io"
	"os/exec"
	"sync"
	"time"

	"github.com/reelcast/reelcast/internal/system"
)

// VideoSource taps a video file through ffmpeg as a stream of raw RGBA
// frames at the render rate. The render loop never blocks on it: FrameAt
// returns the most recent decoded frame (or nil while the first frame is
// still in flight), and the reader goroutine paces itself against the
// playhead position pushed in via SetTime.
type VideoSource struct {
	path     string
	args     []string
	width    int
	height   int
	fps      int
	duration float64

	mu      sync.RWMutex
	frame   *image.RGBA
	frameIx int
	ready   bool
	target  int // frame index the playhead wants

	cmd  *exec.Cmd
	out  io.ReadCloser
	stop chan struct{}
}

// videoTapArgs builds the decoder invocation. trimFrom seconds are skipped
// at the head; a positive trimTo caps output at the trim window. Untrimmed
// clips loop forever.
func videoTapArgs(path string, fps int, trimFrom, trimTo float64) []string {
	args := []string{"-v", "error"}
	if trimFrom > 0 {
		args = append(args, "-ss", fmt.Sprintf("%f", trimFrom))
	}
	args = append(args,
		"-stream_loop", "-1",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-r", fmt.Sprintf("%d", fps),
		"-an",
	)
	if trimTo > trimFrom {
		args = append(args, "-t", fmt.Sprintf("%f", trimTo-trimFrom))
	}
	return append(args, "pipe:1")
}

// OpenVideoSource starts a frame tap for the given file and trim window.
func OpenVideoSource(path string, fps int, trimFrom, trimTo float64) (*VideoSource, error) {
	w, h, err := system.ProbeVideoSize(path)
	if err != nil {
		return nil, fmt.Errorf("video probe error: %w", err)
	}
	dur, _ := system.ProbeMediaDuration(path)

	vs := &VideoSource{
		path:     path,
		args:     videoTapArgs(path, fps, trimFrom, trimTo),
		width:    w,
		height:   h,
		fps:      fps,
		duration: dur,
	}
	if err := vs.start(); err != nil {
		return nil, err
	}
	return vs, nil
}

// start launches the decoder process and its reader goroutine.
func (vs *VideoSource) start() error {
	cmd := exec.Command("ffmpeg", vs.args...)
	out, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	stop := make(chan struct{})
	vs.mu.Lock()
	vs.cmd, vs.out, vs.stop = cmd, out, stop
	vs.mu.Unlock()
	go vs.readLoop(out, stop)
	return nil
}

func (vs *VideoSource) readLoop(out io.Reader, stop chan struct{}) {
	frameBytes := vs.width * vs.height * 4
	buf := make([]byte, frameBytes)

	for {
		select {
		case <-stop:
			return
		default:
		}

		vs.mu.RLock()
		behind := vs.frameIx <= vs.target
		vs.mu.RUnlock()

		if !behind {
			// Decoded ahead of the playhead; idle briefly instead of
			// buffering frames nobody asked for.
			time.Sleep(2 * time.Millisecond)
			continue
		}

		if _, err := io.ReadFull(out, buf); err != nil {
			// Stream ended or the pipe broke. Hold the last good frame.
			return
		}

		img := image.NewRGBA(image.Rect(0, 0, vs.width, vs.height))
		copy(img.Pix, buf)

		vs.mu.Lock()
		vs.frame = img
		vs.frameIx++
		vs.ready = true
		vs.mu.Unlock()
	}
}

// SetTime tells the tap where the playhead is (seconds into the layer's
// window). The reader catches up to the matching frame index.
func (vs *VideoSource) SetTime(seconds float64) {
	ix := int(seconds * float64(vs.fps))
	vs.mu.Lock()
	if ix > vs.target {
		vs.target = ix
	}
	vs.mu.Unlock()
}

// FrameAt returns the best frame for the given time, or nil if nothing is
// decoded yet. It never blocks.
func (vs *VideoSource) FrameAt(seconds float64) *image.RGBA {
	vs.SetTime(seconds)
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.frame
}

// Ready reports whether at least one frame is available to present.
func (vs *VideoSource) Ready() bool {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return vs.ready
}

// Duration returns the source duration in seconds, 0 if unknown.
func (vs *VideoSource) Duration() float64 {
	return vs.duration
}

// resetClock rearms the pacing counters so decoding restarts at frame zero.
func (vs *VideoSource) resetClock() {
	vs.mu.Lock()
	vs.frameIx = 0
	vs.target = 0
	vs.frame = nil
	vs.ready = false
	vs.mu.Unlock()
}

// Rewind restarts the decoder from the clip's trim start. The playhead only
// jumps backwards on restart or seek, and a from-scratch render pass must
// see the clip from its first frame again.
func (vs *VideoSource) Rewind() error {
	vs.shutdown()
	vs.resetClock()
	return vs.start()
}

// shutdown stops the reader and releases the decoder process. Safe to call
// more than once.
func (vs *VideoSource) shutdown() {
	vs.mu.Lock()
	stop, out, cmd := vs.stop, vs.out, vs.cmd
	vs.stop, vs.out, vs.cmd = nil, nil, nil
	vs.mu.Unlock()

	if stop != nil {
		close(stop)
	}
	if out != nil {
		out.Close()
	}
	if cmd != nil && cmd.Process != nil {
		cmd.Process.Kill()
		cmd.Wait()
	}
}

// Close stops the tap and releases the decoder process.
func (vs *VideoSource) Close() {
	vs.shutdown()
}

// resident size for the cache budget: one frame plus decoder overhead.
func (vs *VideoSource) cacheBytes() int64 {
	return int64(vs.width)*int64(vs.height)*4 + (1 << 20)
}
