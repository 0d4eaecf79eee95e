// Package doccache persists upstream JSON documents keyed by request
package doccache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iTrooz/footballdata/internal/cache"
)

// ErrCorrupt is matched by errors.Is for cached files that cannot be parsed
var ErrCorrupt = errors.New("corrupt cache entry")

// CorruptError reports a cache file that exists but does not hold valid JSON
type CorruptError struct {
	Key Key
	Err error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt cache entry %s: %v", e.Key, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// Store reads and writes JSON documents on top of a generic cache
type Store struct {
	cache cache.GenericCache
}

func New(c cache.GenericCache) *Store {
	return &Store{
		cache: c,
	}
}

// Read loads the document stored under key.
// It returns cache.ErrNotFound when absent and a *CorruptError when unparsable.
func (s *Store) Read(key Key) (json.RawMessage, error) {
	data, err := s.cache.Get(string(key))
	if err != nil {
		return nil, err
	}

	var doc json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Key: key, Err: err}
	}
	return doc, nil
}

// Write stores doc under key, replacing any previous document
func (s *Store) Write(key Key, doc json.RawMessage) error {
	if !json.Valid(doc) {
		return fmt.Errorf("refusing to cache invalid JSON under %s", key)
	}

	if err := s.cache.Set(string(key), doc); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Age returns the time since the document under key was written
func (s *Store) Age(key Key) (time.Duration, error) {
	return cache.Age(s.cache, string(key))
}
