// Handles on-disk persistence of cached upstream data
package cache

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no entry exists for a key
var ErrNotFound = errors.New("cache entry not found")

// GenericCache interface for caching operations
type GenericCache interface {
	// retrieves stored data regardless of its age.
	// returns ErrNotFound when the entry does not exist
	Get(key string) ([]byte, error)
	// stores data under key, replacing any previous value
	Set(key string, value []byte) error
	// returns the last write time of the entry
	ModTime(key string) (time.Time, error)
	// initializes the cache (e.g., creates necessary directories)
	Init() error
}

// Age returns the time elapsed since key was last written
func Age(c GenericCache, key string) (time.Duration, error) {
	modTime, err := c.ModTime(key)
	if err != nil {
		return 0, err
	}
	return time.Since(modTime), nil
}
