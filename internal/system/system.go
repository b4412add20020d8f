package system

import (
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/reelcast/reelcast/internal/logging"
)

var log = logging.WithComponent("system")

// InitResourceLimits raises the open-file limit. Long timelines keep many
// decoded assets and ffmpeg pipes open at once.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("could not read file limit")
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Warn().Err(err).Msg("could not raise file limit")
	} else {
		log.Debug().Uint64("limit", rLimit.Cur).Msg("open file limit raised")
	}
}

// GetBestH264Encoder probes the local ffmpeg for hardware H.264 encoders.
// Priority: VideoToolbox (macOS), NVENC (NVIDIA), then software libx264.
func GetBestH264Encoder() string {
	candidates := []string{"h264_videotoolbox", "h264_nvenc"}

	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range candidates {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// HasFFmpeg reports whether an ffmpeg binary is reachable. Without it the
// recorder falls back to the pure-Go MJPEG container.
func HasFFmpeg() bool {
	_, err := exec.LookPath("ffmpeg")
	return err == nil
}

// ProbeMediaDuration asks ffprobe for a media file's duration in seconds.
func ProbeMediaDuration(path string) (float64, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, err
	}

	var duration float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &duration); err != nil {
		return 0, err
	}
	return duration, nil
}

// ProbeVideoSize asks ffprobe for a video's pixel dimensions.
func ProbeVideoSize(path string) (int, int, error) {
	cmd := exec.Command("ffprobe", "-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-of", "csv=s=x:p=0", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, 0, err
	}

	var w, h int
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%dx%d", &w, &h); err != nil {
		return 0, 0, err
	}
	return w, h, nil
}

// CacheBudgetBytes derives a byte budget for the decoded-asset caches from
// available system memory: a quarter of what is free, capped at 2 GiB with a
// 256 MiB floor so tiny machines still get a working cache.
func CacheBudgetBytes() int64 {
	const (
		floor = 256 << 20
		cap   = 2 << 30
	)

	vm, err := mem.VirtualMemory()
	if err != nil {
		return floor
	}

	budget := int64(vm.Available / 4)
	if budget < floor {
		return floor
	}
	if budget > cap {
		return cap
	}
	return budget
}
