package assets

import (
	"fmt"
	"hash/fnv"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/project"
	"github.com/reelcast/reelcast/internal/system"
)

// MediaRef is a resolved pointer to the currently active visual for a scene:
// either a playable URL/path or encoded bytes, plus the media discriminator.
// TrimFrom/TrimTo bound playback of video refs in source seconds.
type MediaRef struct {
	URL      string
	Encoded  string
	Type     project.MediaType
	TrimFrom float64
	TrimTo   float64
}

// Empty reports whether the ref resolves to nothing renderable.
func (r MediaRef) Empty() bool {
	return r.URL == "" && r.Encoded == ""
}

// Resolver picks the active background media for a scene at a point in time
// and owns the decoded-asset caches. Caches are LRU with a byte budget from
// available system memory, so long sessions stay bounded.
type Resolver struct {
	fps    int
	images *lruCache
	videos *lruCache

	mu    sync.Mutex
	blobs map[uint64]string // content hash -> materialized temp path
	tmp   string

	log zerolog.Logger
}

// NewResolver creates a resolver rendering video taps at the given frame rate.
func NewResolver(fps int) *Resolver {
	budget := system.CacheBudgetBytes()
	r := &Resolver{
		fps:   fps,
		blobs: make(map[uint64]string),
		log:   logging.WithComponent("assets"),
	}
	// Give stills the bigger share; video taps hold decoder processes, not
	// whole files.
	r.images = newLRUCache(budget*3/4, nil)
	r.videos = newLRUCache(budget/4, func(v interface{}) {
		if vs, ok := v.(*VideoSource); ok {
			vs.Close()
		}
	})
	return r
}

// ActiveMedia returns the visual that should be on screen for the scene at
// the given elapsed time: the last background shot whose startTime has
// passed, or the scene's primary media when no shot qualifies. A malformed
// shot list degrades to the primary media rather than a blank frame.
func (r *Resolver) ActiveMedia(sc *project.Scene, elapsed float64) MediaRef {
	shots := sc.BackgroundShots()
	for i := len(shots) - 1; i >= 0; i-- {
		if shots[i].StartTime <= elapsed {
			ref := MediaRef{URL: shots[i].URL, Encoded: shots[i].Encoded, Type: project.MediaImage}
			if shots[i].Type == project.LayerVideo || isVideoPath(shots[i].URL) {
				ref.Type = project.MediaVideo
			}
			if !ref.Empty() {
				return ref
			}
		}
	}

	ref := MediaRef{Type: sc.MediaType, Encoded: sc.Encoded}
	if sc.MediaType == project.MediaVideo && sc.VideoURL != "" {
		ref.URL = sc.VideoURL
	} else if sc.ImageURL != "" {
		ref.URL = sc.ImageURL
		ref.Type = project.MediaImage
	} else if sc.VideoURL != "" {
		ref.URL = sc.VideoURL
		ref.Type = project.MediaVideo
	}
	return ref
}

// Image returns the decoded still for a ref. The boolean is false while the
// asset cannot be presented (missing, corrupt, not yet materialized); the
// caller holds the previous frame in that case.
func (r *Resolver) Image(ref MediaRef) (image.Image, bool) {
	path, ok := r.playablePath(ref)
	if !ok {
		return nil, false
	}

	if cached, ok := r.images.Get(path); ok {
		return cached.(image.Image), true
	}

	img, err := DecodeImageFile(path)
	if err != nil {
		r.log.Debug().Str("path", path).Err(err).Msg("image decode failed")
		return nil, false
	}
	r.images.Put(path, img, imageBytes(img))
	return img, true
}

// VideoFrame returns the current frame of a video ref, polling readiness
// instead of blocking. Video taps are muted and looping; narration and
// music own the soundtrack.
func (r *Resolver) VideoFrame(ref MediaRef, elapsed float64) (image.Image, bool) {
	path, ok := r.playablePath(ref)
	if !ok {
		return nil, false
	}

	key := videoKey(path, ref.TrimFrom, ref.TrimTo)
	var vs *VideoSource
	if cached, ok := r.videos.Get(key); ok {
		vs = cached.(*VideoSource)
	} else {
		opened, err := OpenVideoSource(path, r.fps, ref.TrimFrom, ref.TrimTo)
		if err != nil {
			r.log.Debug().Str("path", path).Err(err).Msg("video open failed")
			return nil, false
		}
		vs = opened
		r.videos.Put(key, vs, vs.cacheBytes())
	}

	frame := vs.FrameAt(elapsed)
	if frame == nil {
		return nil, false
	}
	return frame, true
}

// videoKey caches trimmed taps separately: the same file with two trim
// windows is two decoder streams.
func videoKey(path string, trimFrom, trimTo float64) string {
	if trimFrom <= 0 && trimTo <= 0 {
		return path
	}
	return fmt.Sprintf("%s#trim=%g:%g", path, trimFrom, trimTo)
}

// RewindVideos restarts every cached video tap from its trim start. Called
// when the playhead jumps backwards (restart, seek), so a deterministic
// re-render pass never picks up mid-clip decoder state.
func (r *Resolver) RewindVideos() {
	r.videos.Each(func(v interface{}) {
		vs, ok := v.(*VideoSource)
		if !ok {
			return
		}
		if err := vs.Rewind(); err != nil {
			r.log.Debug().Str("path", vs.path).Err(err).Msg("video rewind failed")
		}
	})
}

// playablePath resolves a ref to something on disk: the URL form wins for
// performance, the encoded form is the durability fallback and is
// materialized on demand (cached by content so repeat frames are free).
func (r *Resolver) playablePath(ref MediaRef) (string, bool) {
	if ref.URL != "" {
		return ref.URL, true
	}
	if ref.Encoded == "" {
		return "", false
	}

	raw, err := decodeBase64(ref.Encoded)
	if err != nil {
		r.log.Debug().Err(err).Msg("encoded media is not valid base64")
		return "", false
	}

	h := fnv.New64a()
	h.Write(raw)
	key := h.Sum64()

	r.mu.Lock()
	defer r.mu.Unlock()

	if path, ok := r.blobs[key]; ok {
		return path, true
	}

	if r.tmp == "" {
		dir, err := os.MkdirTemp("", "reelcast_blobs_")
		if err != nil {
			return "", false
		}
		r.tmp = dir
	}

	ext := ".bin"
	if ref.Type == project.MediaVideo {
		ext = ".mp4"
	} else if ref.Type == project.MediaImage {
		ext = ".png"
	}
	path := filepath.Join(r.tmp, fmt.Sprintf("%x%s", key, ext))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", false
	}
	r.blobs[key] = path
	return path, true
}

// Close releases video taps, caches and materialized blobs.
func (r *Resolver) Close() {
	r.videos.Clear()
	r.images.Clear()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.tmp != "" {
		os.RemoveAll(r.tmp)
		r.tmp = ""
	}
	r.blobs = make(map[uint64]string)
}
