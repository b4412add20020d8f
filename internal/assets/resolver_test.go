package assets

import (
	"testing"

	"github.com/reelcast/reelcast/internal/project"
)

func shotScene() *project.Scene {
	return &project.Scene{
		ID:        "s1",
		MediaType: project.MediaImage,
		ImageURL:  "primary.png",
		Layers: []project.Layer{
			{ID: "shot0", Type: project.LayerImage, IsBackground: true, StartTime: 0, URL: "shot0.png"},
			{ID: "shot2", Type: project.LayerImage, IsBackground: true, StartTime: 2, URL: "shot2.png"},
			{ID: "shot5", Type: project.LayerImage, IsBackground: true, StartTime: 5, URL: "shot5.png"},
			{ID: "overlay", Type: project.LayerText, Text: "hello"},
		},
	}
}

func TestActiveMediaShotSelection(t *testing.T) {
	r := NewResolver(30)
	defer r.Close()
	sc := shotScene()

	tests := []struct {
		elapsed float64
		wantURL string
	}{
		{0, "shot0.png"},
		{1.999, "shot0.png"},
		{2, "shot2.png"},
		{4.999, "shot2.png"},
		{5, "shot5.png"},
		{7.999, "shot5.png"},
	}

	for _, tt := range tests {
		ref := r.ActiveMedia(sc, tt.elapsed)
		if ref.URL != tt.wantURL {
			t.Errorf("t=%.3f: expected %s, got %s", tt.elapsed, tt.wantURL, ref.URL)
		}
	}
}

func TestActiveMediaFallsBackToPrimary(t *testing.T) {
	r := NewResolver(30)
	defer r.Close()

	sc := &project.Scene{ID: "s1", MediaType: project.MediaImage, ImageURL: "primary.png"}
	ref := r.ActiveMedia(sc, 3.0)
	if ref.URL != "primary.png" {
		t.Errorf("empty shot list must resolve primary media, got %q", ref.URL)
	}

	// Shot layers that all start later than the playhead also fall through.
	sc.Layers = []project.Layer{
		{Type: project.LayerImage, IsBackground: true, StartTime: 10, URL: "late.png"},
	}
	ref = r.ActiveMedia(sc, 3.0)
	if ref.URL != "primary.png" {
		t.Errorf("before the first shot the primary media must be active, got %q", ref.URL)
	}
}

func TestActiveMediaVideoShot(t *testing.T) {
	r := NewResolver(30)
	defer r.Close()

	sc := &project.Scene{
		ID:        "s1",
		MediaType: project.MediaImage,
		ImageURL:  "primary.png",
		Layers: []project.Layer{
			{Type: project.LayerVideo, IsBackground: true, StartTime: 0, URL: "clip.mp4"},
		},
	}
	ref := r.ActiveMedia(sc, 1.0)
	if ref.Type != project.MediaVideo {
		t.Errorf("video shot must resolve as video media, got %s", ref.Type)
	}
}

func TestLRUCacheEviction(t *testing.T) {
	evicted := []string{}
	c := newLRUCache(100, func(v interface{}) {
		evicted = append(evicted, v.(string))
	})

	c.Put("a", "a", 40)
	c.Put("b", "b", 40)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("a should still be cached")
	}

	// a was just touched, so inserting c over budget evicts b first.
	c.Put("c", "c", 40)
	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Error("a should have survived (recently used)")
	}
	if len(evicted) != 1 || evicted[0] != "b" {
		t.Errorf("expected eviction of b, got %v", evicted)
	}
	if c.UsedBytes() != 80 {
		t.Errorf("expected 80 bytes used, got %d", c.UsedBytes())
	}
}

func TestSplitPageRef(t *testing.T) {
	path, page := splitPageRef("deck.pdf#3")
	if path != "deck.pdf" || page != 2 {
		t.Errorf("expected deck.pdf page 2, got %s page %d", path, page)
	}
	path, page = splitPageRef("deck.pdf")
	if path != "deck.pdf" || page != 0 {
		t.Errorf("expected deck.pdf page 0, got %s page %d", path, page)
	}
}
