package assets

import (
	"encoding/base64"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// DecodeImageFile decodes a still image from disk. PDF paths are rendered
// through MuPDF so document pages can be used as scene media directly; a
// "#N" fragment selects the page (1-based), defaulting to the first.
func DecodeImageFile(path string) (image.Image, error) {
	base, page := splitPageRef(path)

	if strings.HasSuffix(strings.ToLower(base), ".pdf") {
		return renderPDFPage(base, page)
	}

	f, err := os.Open(base)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// DecodeBase64Image decodes an encoded-bytes fallback. Data-URL prefixes
// ("data:image/png;base64,") are tolerated.
func DecodeBase64Image(encoded string) (image.Image, error) {
	raw, err := decodeBase64(encoded)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(strings.NewReader(string(raw)))
	if err != nil {
		return nil, fmt.Errorf("encoded image decode error: %w", err)
	}
	return img, nil
}

func decodeBase64(encoded string) ([]byte, error) {
	if idx := strings.Index(encoded, ";base64,"); idx >= 0 {
		encoded = encoded[idx+len(";base64,"):]
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func renderPDFPage(path string, page int) (image.Image, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if page < 0 || page >= doc.NumPage() {
		page = 0
	}
	return doc.ImageDPI(page, 150)
}

// DocumentPageCount reports how many pages a document holds. Plain images
// count as one page.
func DocumentPageCount(path string) (int, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return 1, nil
	}
	doc, err := fitz.New(path)
	if err != nil {
		return 0, err
	}
	defer doc.Close()
	return doc.NumPage(), nil
}

// splitPageRef separates "slides.pdf#3" into path and zero-based page index.
func splitPageRef(ref string) (string, int) {
	idx := strings.LastIndex(ref, "#")
	if idx < 0 {
		return ref, 0
	}
	page, err := strconv.Atoi(ref[idx+1:])
	if err != nil || page < 1 {
		return ref, 0
	}
	return ref[:idx], page - 1
}

// imageBytes estimates the resident size of a decoded image for the cache
// budget. RGBA dominates in practice.
func imageBytes(img image.Image) int64 {
	b := img.Bounds()
	return int64(b.Dx()) * int64(b.Dy()) * 4
}

func isVideoPath(path string) bool {
	switch strings.ToLower(filepath.Ext(strings.SplitN(path, "#", 2)[0])) {
	case ".mp4", ".mov", ".webm", ".mkv", ".avi":
		return true
	}
	return false
}
