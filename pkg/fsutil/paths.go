package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths.
	AppName = "snapshotter"
)

// GetCacheDir returns the platform-specific cache directory for the application.
// On Linux: ~/.cache/snapshotter/
// On macOS: ~/Library/Caches/snapshotter/
// On Windows: %LOCALAPPDATA%\snapshotter\cache\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// GetDownloadCacheDir returns the directory holding downloaded file content,
// one entry per distinct sha256. It persists across snapshot runs.
// Format: <cache_dir>/downloads/
func GetDownloadCacheDir() (string, error) {
	cacheDir, err := GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "downloads"), nil
}

// GetConfigDir returns the platform-specific config directory for the application.
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
