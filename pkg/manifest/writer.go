// Package manifest maintains the snapshot's audit trail: an append-only CSV
// ledger with one line per emitted artifact recording its name, size and
// sha256. The manifest is the snapshot's sole externally verifiable statement
// of its contents.
package manifest

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cchdo/snapshotter/pkg/errors"
	"github.com/cchdo/snapshotter/pkg/fsutil"
)

// FileName is the manifest's name inside the snapshot directory.
const FileName = "_manifest.csv"

var header = []string{"file", "size", "sha256"}

// Writer appends artifact records to a snapshot's manifest in emission order.
// It is the single logical writer for the file: appends are serialized, lines
// are never reordered or deduplicated. Recording two artifacts under the same
// display name is a caller bug by convention, not something Writer merges.
type Writer struct {
	mu   sync.Mutex
	path string
}

// NewWriter creates a manifest writer for the given snapshot directory.
func NewWriter(snapshotDir string) *Writer {
	return &Writer{path: filepath.Join(snapshotDir, FileName)}
}

// Path returns the manifest file location.
func (w *Writer) Path() string {
	return w.path
}

// Record computes the artifact's size and sha256 and appends one line under
// the given display name, creating the manifest with its header on first use.
func (w *Writer) Record(artifactPath, displayName string) error {
	stat, err := os.Stat(artifactPath)
	if err != nil {
		return errors.Wrapf(err, "failed to stat artifact %s", artifactPath)
	}
	digest, err := hashFile(artifactPath)
	if err != nil {
		return err
	}
	return w.appendLine([]string{displayName, strconv.FormatInt(stat.Size(), 10), digest})
}

func (w *Writer) appendLine(row []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	_, statErr := os.Stat(w.path)
	firstUse := os.IsNotExist(statErr)

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fsutil.FileModeDefault)
	if err != nil {
		return errors.Wrapf(err, "failed to open manifest %s", w.path)
	}
	defer func() { _ = f.Close() }()

	cw := csv.NewWriter(f)
	if firstUse {
		if err := cw.Write(header); err != nil {
			return errors.Wrap(err, "failed to write manifest header")
		}
	}
	if err := cw.Write(row); err != nil {
		return errors.Wrap(err, "failed to write manifest record")
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush manifest")
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open %s for hashing", path)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "failed to hash %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
