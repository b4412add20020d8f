package storyboard

import (
	"image"
	"image/draw"
	"math"
	"sort"
)

// Region is a visually dense area of a page worth dwelling on.
type Region struct {
	Bounds image.Rectangle
}

// detectorConfig tunes the edge-based region finder.
type detectorConfig struct {
	minArea   int     // smallest region worth a camera stop, px²
	threshold float64 // Sobel gradient magnitude cutoff
}

var defaultDetector = detectorConfig{minArea: 500, threshold: 30}

// DetectRegions finds content regions on a page using Sobel edges, a couple
// of dilation passes to merge nearby strokes, and connected-component
// bounding boxes, returned in Western reading order.
func DetectRegions(img image.Image) []Region {
	return defaultDetector.detect(img)
}

func (d detectorConfig) detect(img image.Image) []Region {
	gray := grayscale(img)
	edges := sobel(gray, d.threshold)
	dilateInPlace(edges, 5, 2)

	var regions []Region
	for _, rect := range components(edges) {
		if rect.Dx()*rect.Dy() >= d.minArea {
			regions = append(regions, Region{Bounds: rect})
		}
	}

	sortReadingOrder(regions)
	return regions
}

// sortReadingOrder orders regions top to bottom, then left to right within
// a ~20px row band.
func sortReadingOrder(regions []Region) {
	const rowBand = 20
	sort.SliceStable(regions, func(i, j int) bool {
		dy := regions[i].Bounds.Min.Y - regions[j].Bounds.Min.Y
		if dy < -rowBand || dy > rowBand {
			return dy < 0
		}
		return regions[i].Bounds.Min.X < regions[j].Bounds.Min.X
	})
}

func grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// sobel thresholds the gradient magnitude into a binary edge map.
func sobel(gray *image.Gray, threshold float64) *image.Gray {
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	edges := image.NewGray(image.Rect(0, 0, w, h))

	at := func(x, y int) float64 {
		return float64(gray.Pix[y*gray.Stride+x])
	}

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			if math.Sqrt(gx*gx+gy*gy) > threshold {
				edges.Pix[y*edges.Stride+x] = 255
			}
		}
	}
	return edges
}

// dilateInPlace grows white areas so fragmented glyph edges merge into one
// block per paragraph or figure.
func dilateInPlace(img *image.Gray, kernel, iterations int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	half := kernel / 2

	for iter := 0; iter < iterations; iter++ {
		out := make([]uint8, len(img.Pix))
		for y := half; y < h-half; y++ {
			for x := half; x < w-half; x++ {
				var maxV uint8
				for ky := -half; ky <= half && maxV == 0; ky++ {
					row := (y + ky) * img.Stride
					for kx := -half; kx <= half; kx++ {
						if img.Pix[row+x+kx] > maxV {
							maxV = img.Pix[row+x+kx]
							break
						}
					}
				}
				out[y*img.Stride+x] = maxV
			}
		}
		copy(img.Pix, out)
	}
}

// components collects bounding boxes of 4-connected white blobs.
func components(img *image.Gray) []image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	visited := make([]bool, w*h)

	var rects []image.Rectangle
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if img.Pix[y*img.Stride+x] > 128 && !visited[y*w+x] {
				rects = append(rects, flood(img, visited, x, y, w, h))
			}
		}
	}
	return rects
}

func flood(img *image.Gray, visited []bool, startX, startY, w, h int) image.Rectangle {
	minX, minY, maxX, maxY := startX, startY, startX, startY
	stack := []image.Point{{X: startX, Y: startY}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
			continue
		}
		if visited[p.Y*w+p.X] || img.Pix[p.Y*img.Stride+p.X] <= 128 {
			continue
		}
		visited[p.Y*w+p.X] = true

		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}

		stack = append(stack,
			image.Point{X: p.X + 1, Y: p.Y},
			image.Point{X: p.X - 1, Y: p.Y},
			image.Point{X: p.X, Y: p.Y + 1},
			image.Point{X: p.X, Y: p.Y - 1},
		)
	}
	return image.Rect(minX, minY, maxX+1, maxY+1)
}
