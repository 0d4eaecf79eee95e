package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DiskCache implements GenericCache on top of a directory
type DiskCache struct {
	cacheDir string
}

// NewDisk creates a new disk cache rooted at cacheDir
func NewDisk(cacheDir string) *DiskCache {
	return &DiskCache{
		cacheDir: cacheDir,
	}
}

// Dir returns the root directory of the cache
func (d *DiskCache) Dir() string {
	return d.cacheDir
}

// path resolves key to a file inside the cache directory
func (d *DiskCache) path(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("empty cache key")
	}
	clean := filepath.Clean(key)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("cache key %q escapes cache directory", key)
	}
	return filepath.Join(d.cacheDir, clean), nil
}

// Get reads the entry for key, whatever its age
func (d *DiskCache) Get(key string) ([]byte, error) {
	p, err := d.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file %s: %w", p, err)
	}
	return data, nil
}

// ModTime returns the last write time of the entry for key
func (d *DiskCache) ModTime(key string) (time.Time, error) {
	p, err := d.path(key)
	if err != nil {
		return time.Time{}, err
	}

	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("stat cache file %s: %w", p, err)
	}
	return info.ModTime(), nil
}

// Set stores data under key. Readers never observe a partially written file.
func (d *DiskCache) Set(key string, data []byte) error {
	p, err := d.path(key)
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory %s: %w", dir, err)
	}

	if err := atomicWriteFile(p, data); err != nil {
		return fmt.Errorf("writing cache file %s: %w", p, err)
	}

	logrus.Debugf("Cached entry: %s", p)
	return nil
}

// Init ensures the cache directory exists
func (d *DiskCache) Init() error {
	return os.MkdirAll(d.cacheDir, 0755)
}

// Sweep removes entries last written more than maxAge ago and returns how many were removed.
func (d *DiskCache) Sweep(maxAge time.Duration) (int, error) {
	removed := 0
	err := filepath.WalkDir(d.cacheDir, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if time.Since(info.ModTime()) <= maxAge {
			return nil
		}
		if err := os.Remove(p); err != nil {
			logrus.Errorf("Failed to remove expired cache file %s: %v", p, err)
			return nil
		}
		removed++
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	return removed, err
}

func atomicWriteFile(p string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		return err
	}
	success = true
	return nil
}
