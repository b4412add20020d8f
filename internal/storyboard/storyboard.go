// Package storyboard scaffolds a project from a document: each page becomes
// a scene whose page image is toured region by region with generated camera
// keyframes, in reading order.
package storyboard

import (
	"fmt"
	"image"
	"math"

	"github.com/google/uuid"

	"github.com/reelcast/reelcast/internal/assets"
	"github.com/reelcast/reelcast/internal/logging"
	"github.com/reelcast/reelcast/internal/project"
)

// Builder turns document pages into scenes.
type Builder struct {
	Width    int
	Height   int
	MinDwell float64 // seconds spent on one region, lower bound
	MaxDwell float64
}

func NewBuilder(width, height int) *Builder {
	return &Builder{
		Width:    width,
		Height:   height,
		MinDwell: 1.0,
		MaxDwell: 3.0,
	}
}

// FromDocument builds a project from a PDF or a single image. totalDuration
// is split evenly across pages; each page's share is spent touring its
// detected regions, bracketed by full-page views.
func (b *Builder) FromDocument(path string, totalDuration float64) (*project.Project, error) {
	pages, err := assets.DocumentPageCount(path)
	if err != nil {
		return nil, fmt.Errorf("inspect document %s: %w", path, err)
	}
	if pages == 0 {
		return nil, fmt.Errorf("document %s has no pages", path)
	}

	log := logging.WithComponent("storyboard")
	perPage := totalDuration / float64(pages)

	p := &project.Project{
		Version: "1.0",
		Title:   path,
	}
	for page := 1; page <= pages; page++ {
		ref := path
		if pages > 1 {
			ref = fmt.Sprintf("%s#%d", path, page)
		}
		img, err := assets.DecodeImageFile(ref)
		if err != nil {
			return nil, fmt.Errorf("render page %d: %w", page, err)
		}

		regions := DetectRegions(img)
		log.Debug().Int("page", page).Int("regions", len(regions)).Msg("page analyzed")

		sc := project.Scene{
			ID:               uuid.NewString(),
			DurationEstimate: perPage,
			MediaType:        project.MediaImage,
			Layers: []project.Layer{
				b.pageLayer(ref, img.Bounds(), regions, perPage),
			},
		}
		p.Scenes = append(p.Scenes, sc)
	}

	p.Normalize()
	return p, nil
}

// pageLayer places the page image as a full-frame layer with a keyframed
// camera tour: full view, one stop per region, full view again.
func (b *Builder) pageLayer(ref string, bounds image.Rectangle, regions []Region, duration float64) project.Layer {
	iw, ih := float64(bounds.Dx()), float64(bounds.Dy())
	fit := math.Min(float64(b.Width)/iw, float64(b.Height)/ih)

	layer := project.Layer{
		Type:    project.LayerImage,
		URL:     ref,
		X:       0.5,
		Y:       0.5,
		Scale:   fit,
		Opacity: 1,
	}
	if len(regions) == 0 {
		return layer
	}

	dwell := b.dwellTime(duration, len(regions))
	full := project.Keyframe{Time: 0, X: 0.5, Y: 0.5, Scale: fit, Opacity: 1}
	layer.Keyframes = append(layer.Keyframes, full)

	t := 1.0 // settle on the full view first
	for _, reg := range regions {
		layer.Keyframes = append(layer.Keyframes, b.focusKeyframe(reg, iw, ih, fit, t))
		t += dwell
	}

	outro := full
	outro.Time = t
	layer.Keyframes = append(layer.Keyframes, outro)
	return layer
}

// dwellTime splits the page's share across regions, reserving the intro and
// outro second and clamping to the configured bounds.
func (b *Builder) dwellTime(duration float64, regionCount int) float64 {
	available := duration - 2
	if available <= 0 {
		available = duration
	}
	dwell := available / float64(regionCount)
	if dwell < b.MinDwell {
		dwell = b.MinDwell
	}
	if dwell > b.MaxDwell {
		dwell = b.MaxDwell
	}
	return dwell
}

// focusKeyframe positions the layer so the region's center sits at the
// frame center at a zoom that fits the region into 90% of the frame.
func (b *Builder) focusKeyframe(reg Region, iw, ih, fit, t float64) project.Keyframe {
	rw := float64(reg.Bounds.Dx()) * fit
	rh := float64(reg.Bounds.Dy()) * fit

	zoom := math.Min(0.9*float64(b.Width)/rw, 0.9*float64(b.Height)/rh)
	if zoom < 1 {
		zoom = 1
	}
	if zoom > 3 {
		zoom = 3
	}

	scale := fit * zoom
	rcx := float64(reg.Bounds.Min.X) + float64(reg.Bounds.Dx())/2
	rcy := float64(reg.Bounds.Min.Y) + float64(reg.Bounds.Dy())/2

	// Offset from the image center, scaled into frame space.
	dx := (rcx - iw/2) * scale
	dy := (rcy - ih/2) * scale

	return project.Keyframe{
		Time:    t,
		X:       0.5 - dx/float64(b.Width),
		Y:       0.5 - dy/float64(b.Height),
		Scale:   scale,
		Opacity: 1,
	}
}
