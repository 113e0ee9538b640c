// Package archive assembles the snapshot's zip archives from the download
// cache and from in-memory cruise metadata records. Entry order follows the
// order the caller resolved, never completion or directory order, and entry
// metadata is fixed, so identical inputs produce byte-identical archives.
package archive

import (
	stdzip "archive/zip"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	pkgerrors "github.com/cchdo/snapshotter/pkg/errors"
	"github.com/cchdo/snapshotter/pkg/model"
	"github.com/mholt/archives"
)

// TextEntry is one named text record destined for an archive.
type TextEntry struct {
	Name string
	Body string
}

// Assembler builds deterministic zip archives.
type Assembler struct{}

// NewAssembler creates a new Assembler instance.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// AssembleCategory writes one category archive containing every download of
// the group under its resolved filename, reading content from the cache paths
// keyed by checksum. A missing cache entry fails the whole archive rather
// than emitting a silently incomplete one; nothing is left at archivePath on
// failure.
func (a *Assembler) AssembleCategory(ctx context.Context, archivePath string, downloads []model.NamedDownload, cachePaths map[string]string) error {
	files := make([]archives.FileInfo, 0, len(downloads))
	for _, dl := range downloads {
		checksum := strings.ToLower(strings.TrimSpace(dl.Checksum))
		cachePath, ok := cachePaths[checksum]
		if !ok {
			return fmt.Errorf("%w: no cache path for %s (sha256 %s)", pkgerrors.ErrMissingCacheEntry, dl.Filename, checksum)
		}
		stat, err := os.Stat(cachePath)
		if err != nil {
			return fmt.Errorf("%w: %s (sha256 %s): %v", pkgerrors.ErrMissingCacheEntry, dl.Filename, checksum, err)
		}

		src := cachePath
		files = append(files, archives.FileInfo{
			FileInfo:      entryInfo{name: dl.Filename, size: stat.Size()},
			NameInArchive: dl.Filename,
			Open: func() (fs.File, error) {
				return os.Open(src)
			},
		})
	}

	return a.write(ctx, archivePath, files)
}

// AssembleTexts writes an archive of in-memory text records in the given order.
func (a *Assembler) AssembleTexts(ctx context.Context, archivePath string, entries []TextEntry) error {
	files := make([]archives.FileInfo, 0, len(entries))
	for _, entry := range entries {
		name, body := entry.Name, entry.Body
		files = append(files, archives.FileInfo{
			FileInfo:      entryInfo{name: name, size: int64(len(body))},
			NameInArchive: name,
			Open: func() (fs.File, error) {
				return newTextFile(name, body), nil
			},
		})
	}

	return a.write(ctx, archivePath, files)
}

func (a *Assembler) write(ctx context.Context, archivePath string, files []archives.FileInfo) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to create archive file %s", archivePath)
	}

	format := archives.Zip{Compression: stdzip.Deflate}
	if err := format.Archive(ctx, out, files); err != nil {
		_ = out.Close()
		_ = os.Remove(archivePath)
		return pkgerrors.Wrapf(err, "failed to write archive %s", archivePath)
	}

	if err := out.Sync(); err != nil {
		_ = out.Close()
		return pkgerrors.Wrapf(err, "failed to sync archive %s", archivePath)
	}
	return out.Close()
}
