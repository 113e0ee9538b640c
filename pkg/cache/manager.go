// Package cache provides maintenance operations over the content-addressed
// download cache: inspection and cleanup. The download manager owns writes;
// this package only reads and removes whole entries.
package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cchdo/snapshotter/pkg/errors"
)

// Info describes the state of the download cache.
type Info struct {
	Directory string
	TotalSize int64
	Entries   int
	Oldest    time.Time
}

// CleanResult reports how much a Clean call removed.
type CleanResult struct {
	EntriesRemoved int
	BytesFreed     int64
}

// Manager performs maintenance on a download cache directory.
type Manager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *Manager {
	return &Manager{directory: directory}
}

// GetDirectory returns the cache directory path.
func (m *Manager) GetDirectory() string {
	return m.directory
}

// GetInfo returns information about the cache contents.
func (m *Manager) GetInfo() (*Info, error) {
	if m.directory == "" {
		return nil, errors.ErrCacheDirectory
	}
	info := &Info{Directory: m.directory}

	entries, err := os.ReadDir(m.directory)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCacheInfo, err.Error())
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		stat, err := entry.Info()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCacheInfo, err.Error())
		}
		info.Entries++
		info.TotalSize += stat.Size()
		if info.Oldest.IsZero() || stat.ModTime().Before(info.Oldest) {
			info.Oldest = stat.ModTime()
		}
	}
	return info, nil
}

// Clean removes every cache entry and reports the space freed. Entries are
// re-fetched on demand by the next snapshot run.
func (m *Manager) Clean() (*CleanResult, error) {
	if m.directory == "" {
		return nil, errors.ErrCacheDirectory
	}
	result := &CleanResult{}

	entries, err := os.ReadDir(m.directory)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCacheClean, err.Error())
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(m.directory, entry.Name())
		stat, err := entry.Info()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCacheClean, err.Error())
		}
		if err := os.Remove(path); err != nil {
			return nil, errors.Wrapf(err, "failed to remove cache entry %s", path)
		}
		result.EntriesRemoved++
		result.BytesFreed += stat.Size()
	}
	return result, nil
}
