package archive

import (
	"io/fs"
	"strings"
	"time"
)

// archiveEpoch is the fixed timestamp stamped on every archive entry.
// Entry metadata must not depend on when content was downloaded, or repeated
// snapshots of identical catalog state would stop being byte-identical.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// entryInfo is the synthetic fs.FileInfo attached to archive entries.
type entryInfo struct {
	name string
	size int64
}

func (e entryInfo) Name() string       { return e.name }
func (e entryInfo) Size() int64        { return e.size }
func (e entryInfo) Mode() fs.FileMode  { return 0o644 }
func (e entryInfo) ModTime() time.Time { return archiveEpoch }
func (e entryInfo) IsDir() bool        { return false }
func (e entryInfo) Sys() interface{}   { return nil }

// textFile adapts an in-memory string to fs.File for archiving.
type textFile struct {
	info   entryInfo
	reader *strings.Reader
}

func newTextFile(name, body string) *textFile {
	return &textFile{
		info:   entryInfo{name: name, size: int64(len(body))},
		reader: strings.NewReader(body),
	}
}

func (f *textFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *textFile) Read(p []byte) (int, error) { return f.reader.Read(p) }
func (f *textFile) Close() error               { return nil }
