package crest

import (
	"context"
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// CrestSource produces full size crests
type CrestSource interface {
	Crest(ctx context.Context, teamID int, crestURL string) (image.Image, bool)
}

type thumbnailKey struct {
	teamID int
	size   image.Point
}

// Thumbnails keeps resized crests in memory for the lifetime of a front end.
// It is safe for concurrent use.
type Thumbnails struct {
	source CrestSource

	mu    sync.Mutex
	cache map[thumbnailKey]image.Image
}

func NewThumbnails(source CrestSource) *Thumbnails {
	return &Thumbnails{
		source: source,
		cache:  make(map[thumbnailKey]image.Image),
	}
}

// Get returns the crest of teamID scaled to size. Missing crests are not remembered
// so a later call may still find one.
func (t *Thumbnails) Get(ctx context.Context, teamID int, crestURL string, size image.Point) (image.Image, bool) {
	key := thumbnailKey{teamID: teamID, size: size}

	t.mu.Lock()
	thumb, ok := t.cache[key]
	t.mu.Unlock()
	if ok {
		return thumb, true
	}

	img, ok := t.source.Crest(ctx, teamID, crestURL)
	if !ok {
		return nil, false
	}
	thumb = Resize(img, size)

	t.mu.Lock()
	t.cache[key] = thumb
	t.mu.Unlock()
	return thumb, true
}

// Len returns the number of thumbnails held
func (t *Thumbnails) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.cache)
}

// Resize scales img to size with Catmull-Rom resampling
func Resize(img image.Image, size image.Point) image.Image {
	if img.Bounds().Size() == size {
		return img
	}
	dst := image.NewNRGBA(image.Rectangle{Max: size})
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
