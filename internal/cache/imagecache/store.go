// Package imagecache persists decoded team crests as PNG files
package imagecache

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"time"

	"github.com/iTrooz/footballdata/internal/cache"
)

// Store keeps one encoded image per team identifier
type Store struct {
	cache cache.GenericCache
}

func New(c cache.GenericCache) *Store {
	return &Store{
		cache: c,
	}
}

// KeyFor returns the file name holding the crest of teamID
func KeyFor(teamID int) string {
	return fmt.Sprintf("team_%d.png", teamID)
}

// Read decodes the stored crest of teamID.
// It returns cache.ErrNotFound when no crest was stored.
func (s *Store) Read(teamID int) (image.Image, error) {
	data, err := s.cache.Get(KeyFor(teamID))
	if err != nil {
		return nil, err
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding cached crest for team %d: %w", teamID, err)
	}
	return img, nil
}

// Write encodes img as PNG and stores it for teamID
func (s *Store) Write(teamID int, img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encoding crest for team %d: %w", teamID, err)
	}

	if err := s.cache.Set(KeyFor(teamID), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Age returns the time since the crest of teamID was written
func (s *Store) Age(teamID int) (time.Duration, error) {
	return cache.Age(s.cache, KeyFor(teamID))
}
