// Package export renders a project top to bottom into a video file. Video
// goes to ffmpeg as raw RGBA over stdin, the mixed PCM over a second pipe,
// and ffmpeg muxes both. When no usable h264 encoder exists the recorder
// falls back to a pure-Go MJPEG container.
package export

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/reelcast/reelcast/internal/audiograph"
	"github.com/reelcast/reelcast/internal/config"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/player"
	"github.com/reelcast/reelcast/internal/system"
)

// Recorder drives one export session over a player in tap mode.
type Recorder struct {
	cfg    *config.Config
	player *player.Player

	mu       sync.Mutex
	progress int
	running  bool
	cancel   context.CancelFunc

	log zerolog.Logger
}

func NewRecorder(p *player.Player, cfg *config.Config) *Recorder {
	return &Recorder{
		cfg:    cfg,
		player: p,
		log:    logging.WithComponent("export"),
	}
}

// Progress reports 0..99; 99 means every frame is written and the container
// is finalizing.
func (r *Recorder) Progress() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.progress
}

// Running reports whether an export is in flight.
func (r *Recorder) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop aborts the export. Frames already handed to the muxer are kept, so
// the output file holds the partial capture.
func (r *Recorder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Recorder) setProgress(p int) {
	if p > 99 {
		p = 99
	}
	r.mu.Lock()
	r.progress = p
	r.mu.Unlock()
}

// OutputName derives a timestamped file name when the caller gave none.
func OutputName(configured, title string, mjpegFallback bool) string {
	if configured != "" {
		return configured
	}
	base := strings.TrimSpace(title)
	if base == "" {
		base = "reelcast"
	}
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' {
			return '_'
		}
		return r
	}, base)
	ext := ".mp4"
	if mjpegFallback {
		ext = ".avi"
	}
	return fmt.Sprintf("%s_%s%s", base, time.Now().Format("2006-01-02_15-04-05"), ext)
}

// Export renders the whole project from scratch and returns the written
// path. The player is restarted first so the pass is deterministic: scene
// zero, playlist zero, all one-shot cues rearmed.
func (r *Recorder) Export(ctx context.Context, title string) (string, error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return "", fmt.Errorf("export already running")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true
	r.progress = 0
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.running = false
		r.cancel = nil
		r.mu.Unlock()
		cancel()
	}()

	useMJPEG := !system.HasFFmpeg()
	encoder := r.cfg.VideoEncoder
	if !useMJPEG && encoder == "" {
		encoder = system.GetBestH264Encoder()
	}

	path := OutputName(r.cfg.OutputVideo, title, useMJPEG)
	r.player.Restart()
	r.player.Play()

	var err error
	if useMJPEG {
		r.log.Warn().Msg("ffmpeg not found, writing MJPEG without audio")
		err = r.exportMJPEG(ctx, path)
	} else {
		err = r.exportFFmpeg(ctx, path, encoder)
		if err != nil && encoder != "libx264" && ctx.Err() == nil {
			// Hardware encoders fail on some driver stacks; retry in software.
			r.log.Warn().Err(err).Str("encoder", encoder).Msg("encoder failed, retrying with libx264")
			r.player.Restart()
			r.player.Play()
			err = r.exportFFmpeg(ctx, path, "libx264")
		}
	}
	if err != nil && ctx.Err() == nil {
		return "", err
	}

	r.log.Info().Str("path", path).Msg("export finished")
	return path, nil
}

func (r *Recorder) exportFFmpeg(ctx context.Context, path, encoder string) error {
	audioR, audioW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("audio pipe: %w", err)
	}
	defer audioR.Close()

	args := r.buildArgs(path, encoder)
	cmd := exec.Command("ffmpeg", args...)
	cmd.ExtraFiles = []*os.File{audioR} // becomes pipe:3

	stdin, err := cmd.StdinPipe()
	if err != nil {
		audioW.Close()
		return fmt.Errorf("stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		audioW.Close()
		return fmt.Errorf("ffmpeg start: %w", err)
	}
	audioR.Close() // parent keeps only the write end

	g := new(errgroup.Group)
	g.Go(func() error {
		defer stdin.Close()
		defer audioW.Close()
		return r.frameLoop(ctx, func(pix, pcm []byte) error {
			if _, werr := stdin.Write(pix); werr != nil {
				return fmt.Errorf("write frame: %w", werr)
			}
			if _, werr := audioW.Write(pcm); werr != nil {
				return fmt.Errorf("write pcm: %w", werr)
			}
			return nil
		})
	})

	loopErr := g.Wait()
	waitErr := cmd.Wait()

	if loopErr != nil && ctx.Err() == nil {
		return loopErr
	}
	if waitErr != nil && ctx.Err() == nil {
		return fmt.Errorf("ffmpeg: %w", waitErr)
	}
	return nil
}

// frameLoop ticks the player at the fixed frame clock and hands each frame
// plus its PCM slice to sink. Stops on completion or context cancel; cancel
// is not an error so the partial file survives.
func (r *Recorder) frameLoop(ctx context.Context, sink func(pix, pcm []byte) error) error {
	fps := r.cfg.FPS
	dt := 1.0 / float64(fps)
	samplesPerFrame := int(audiograph.SampleRate) / fps
	remainderNum := int(audiograph.SampleRate) % fps
	remainder := 0

	for !r.player.Complete() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		frame := r.player.Tick(dt)

		n := samplesPerFrame
		remainder += remainderNum
		if remainder >= fps {
			remainder -= fps
			n++ // keeps audio and video clocks locked over long exports
		}
		pcm := r.player.Graph().GenerateFrame(n)

		if err := sink(frame.Pix, pcm); err != nil {
			return err
		}
		r.setProgress(int(r.totalProgress() * 99))
	}
	r.setProgress(99)
	return nil
}

// totalProgress is (completed scenes + current scene progress) over the
// scene count.
func (r *Recorder) totalProgress() float64 {
	scenes := r.player.SceneCount()
	if scenes == 0 {
		return 0
	}
	prog := (float64(r.player.SceneIndex()) + r.player.SceneProgress()) / float64(scenes)
	if prog > 1 {
		prog = 1
	}
	return prog
}

func (r *Recorder) buildArgs(path, encoder string) []string {
	w, h := r.cfg.Width, r.cfg.Height
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", w, h),
		"-framerate", fmt.Sprintf("%d", r.cfg.FPS),
		"-i", "pipe:0",
		"-f", "s16le",
		"-ar", fmt.Sprintf("%d", int(audiograph.SampleRate)),
		"-ac", "2",
		"-i", "pipe:3",
		"-c:v", encoder,
		"-pix_fmt", "yuv420p",
	}

	quality := r.cfg.Quality
	switch encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", quality), "-preset", "medium")
	}

	args = append(args,
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		path,
	)
	return args
}

// EnsureOutputDir creates the directory for the output path if needed.
func EnsureOutputDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
