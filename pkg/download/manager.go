// Package download fills a content-addressed cache of verified file content.
// Cache entries are stored under their expected sha256, independent of source
// filename, so re-runs never re-fetch content that already verified and two
// sources with identical content share one entry.
package download

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/cchdo/snapshotter/pkg/errors"
	"github.com/cchdo/snapshotter/pkg/fsutil"
)

// DefaultConcurrency caps simultaneously in-flight transfers when the caller
// does not choose a limit.
const DefaultConcurrency = 20

// ManagerImpl is an HTTP-based download manager writing into a
// content-addressed cache with sha256 verification.
type ManagerImpl struct {
	client    *http.Client
	userAgent string
	locks     *keyedMutex
}

// NewManager creates a new download manager with the given timeout and user agent.
func NewManager(timeout time.Duration, userAgent string) *ManagerImpl {
	if userAgent == "" {
		userAgent = "snapshotter/1.0"
	}
	return &ManagerImpl{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		locks:     newKeyedMutex(),
	}
}

// FetchAll resolves all items into the cache under opts.Concurrency parallel
// transfers. Fail-soft batch semantics: one item's failure never aborts
// siblings; all outcomes land in the Result.
func (m *ManagerImpl) FetchAll(ctx context.Context, items []Item, opts Options) (*Result, error) {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Dir == "" || !filepath.IsAbs(opts.Dir) {
		return nil, fmt.Errorf("cache dir must be absolute: %w: %s", pkgerrors.ErrInvalidPath, opts.Dir)
	}
	if err := os.MkdirAll(opts.Dir, fsutil.DirModeSecure); err != nil {
		return nil, pkgerrors.Wrap(err, "could not create cache dir")
	}

	result := &Result{Paths: make(map[string]string, len(items))}
	var mu sync.Mutex

	tasks := make(chan Item)
	var wg sync.WaitGroup

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				path, err := m.Ensure(ctx, item, opts.Dir)
				mu.Lock()
				if err != nil {
					result.Failures = append(result.Failures, Failure{
						URL:      item.URL.String(),
						Checksum: item.Checksum,
						Err:      err,
					})
				} else {
					result.Paths[normalizeHex(item.Checksum)] = path
				}
				mu.Unlock()
				if opts.OnItemDone != nil {
					opts.OnItemDone(item, err)
				}
			}
		}()
	}

	for _, item := range items {
		tasks <- item
	}
	close(tasks)
	wg.Wait()

	return result, nil
}

// Ensure resolves one item into the cache and returns the verified local
// path. Idempotent: a present entry whose digest matches its key is returned
// without network I/O; a mismatched entry is discarded and fetched exactly
// once more. Concurrent calls for the same checksum are serialized.
func (m *ManagerImpl) Ensure(ctx context.Context, item Item, dir string) (string, error) {
	if item.URL == nil {
		return "", fmt.Errorf("nil URL: %w", pkgerrors.ErrDownloadFailed)
	}
	checksum := normalizeHex(item.Checksum)
	if checksum == "" {
		return "", fmt.Errorf("item %s has no checksum: %w", item.URL, pkgerrors.ErrDownloadFailed)
	}

	unlock := m.locks.Lock(checksum)
	defer unlock()

	cachePath := filepath.Join(dir, checksum)
	if reuse, ok := tryReuseExisting(cachePath, checksum); ok {
		return reuse, nil
	}

	resp, err := m.doRequest(ctx, item)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	tmpPath, err := writeBodyToTemp(resp, cachePath)
	if err != nil {
		return "", err
	}

	ok, err := verifySHA256(tmpPath, checksum)
	if err != nil {
		_ = os.Remove(tmpPath)
		return "", err
	}
	if !ok {
		// leave nothing behind a future run could mistake for valid content
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("%w: url %s expected sha256 %s", pkgerrors.ErrIntegrity, item.URL, checksum)
	}

	if err := finalizeFile(tmpPath, cachePath); err != nil {
		return "", err
	}
	return cachePath, nil
}

// tryReuseExisting returns the cache path if present content already matches
// its filename-derived hash. A mismatching entry (corrupted or partial prior
// download) is deleted so the caller fetches fresh.
func tryReuseExisting(cachePath, checksum string) (string, bool) {
	if _, err := os.Stat(cachePath); err != nil {
		return "", false
	}
	ok, err := verifySHA256(cachePath, checksum)
	if err == nil && ok {
		return cachePath, true
	}
	_ = os.Remove(cachePath)
	return "", false
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "download of %s failed", item.URL)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code for %s: %d: %w", item.URL, resp.StatusCode, pkgerrors.ErrDownloadFailed)
	}
	return resp, nil
}

func writeBodyToTemp(resp *http.Response, cachePath string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(cachePath), fsutil.DirModeSecure); err != nil {
		return "", pkgerrors.Wrap(err, "could not create cache dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(cachePath), "dl-*.tmp")
	if err != nil {
		return "", pkgerrors.Wrap(err, "could not create temp file")
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not write file")
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not sync file")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", pkgerrors.Wrap(err, "could not close file")
	}
	return tmpPath, nil
}

func finalizeFile(tmpPath, cachePath string) error {
	if err := fsutil.Move(tmpPath, cachePath); err != nil {
		return pkgerrors.Wrap(err, "could not finalize file")
	}
	if err := os.Chmod(cachePath, fsutil.FileModeSecure); err != nil {
		return pkgerrors.Wrap(err, "could not set permissions")
	}
	return nil
}

func verifySHA256(path string, wantHex string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, pkgerrors.Wrap(err, "open for checksum")
	}
	defer func() { _ = f.Close() }()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, pkgerrors.Wrap(err, "hashing")
	}
	got := hex.EncodeToString(h.Sum(nil))
	return got == wantHex, nil
}

// normalizeHex canonicalizes a hex digest for comparison with locally
// computed lower-case digests.
func normalizeHex(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
