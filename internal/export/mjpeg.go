package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/icza/mjpeg"
	"golang.org/x/sync/errgroup"
)

// exportMJPEG writes the frames into an MJPEG AVI. Audio is dropped; this
// path exists so a machine without ffmpeg still produces a watchable file.
// JPEG compression dominates the cost, so frames fan out to a worker pool
// sized by the configured worker count while a single writer drains the
// results in frame order.
func (r *Recorder) exportMJPEG(ctx context.Context, path string) error {
	aw, err := mjpeg.New(path, int32(r.cfg.Width), int32(r.cfg.Height), int32(r.cfg.FPS))
	if err != nil {
		return fmt.Errorf("mjpeg writer: %w", err)
	}

	workers := r.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	type encoded struct {
		data []byte
		err  error
	}

	// Order is preserved by queueing one result channel per frame; the
	// writer always waits on the oldest.
	pending := make(chan chan encoded, workers)
	sem := make(chan struct{}, workers)

	g := new(errgroup.Group)
	g.Go(func() error {
		var werr error
		for ch := range pending {
			ef := <-ch
			if werr != nil {
				continue // drain so the producer never blocks
			}
			if ef.err != nil {
				werr = ef.err
				continue
			}
			if aerr := aw.AddFrame(ef.data); aerr != nil {
				werr = fmt.Errorf("mjpeg frame: %w", aerr)
			}
		}
		return werr
	})

	frameErr := r.frameLoop(ctx, func(pix, _ []byte) error {
		// The player reuses its frame buffer between ticks, so encoders
		// work on a copy.
		snap := make([]byte, len(pix))
		copy(snap, pix)

		ch := make(chan encoded, 1)
		pending <- ch
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			img := &image.RGBA{
				Pix:    snap,
				Stride: r.cfg.Width * 4,
				Rect:   image.Rect(0, 0, r.cfg.Width, r.cfg.Height),
			}
			var buf bytes.Buffer
			if jerr := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); jerr != nil {
				ch <- encoded{err: fmt.Errorf("jpeg encode: %w", jerr)}
				return
			}
			ch <- encoded{data: buf.Bytes()}
		}()
		return nil
	})
	close(pending)

	writeErr := g.Wait()
	if cerr := aw.Close(); cerr != nil && frameErr == nil && writeErr == nil {
		return fmt.Errorf("mjpeg close: %w", cerr)
	}
	if frameErr != nil {
		return frameErr
	}
	return writeErr
}
