package orchestrator

import (
	"context"
	"net/url"
	"time"

	"github.com/cchdo/snapshotter/pkg/archive"
	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/download"
	"github.com/cchdo/snapshotter/pkg/model"
)

// CatalogClient is the subset of the catalog client used by the orchestrator.
type CatalogClient interface {
	AllCruises(ctx context.Context) ([]catalog.Cruise, error)
	AllFiles(ctx context.Context) ([]catalog.File, error)
	FileURL(file catalog.File) *url.URL
}

// Downloader fills the content-addressed cache.
type Downloader interface {
	FetchAll(ctx context.Context, items []download.Item, opts download.Options) (*download.Result, error)
}

// Assembler writes the snapshot's archives.
type Assembler interface {
	AssembleCategory(ctx context.Context, archivePath string, downloads []model.NamedDownload, cachePaths map[string]string) error
	AssembleTexts(ctx context.Context, archivePath string, entries []archive.TextEntry) error
}

// Event represents a simple progress notification.
type Event struct {
	Phase     string // resolving|planning|downloading|archiving|done|error
	ID        string // step ID (checksum, archive name)
	Msg       string
	Completed int // meaningful in the downloading phase
	Total     int
}

// Hooks carries callbacks for progress events. OnEvent may be called from
// concurrent download workers.
type Hooks struct {
	OnEvent func(Event)
}

// Options control a snapshot run.
type Options struct {
	SnapshotRoot string // directory the dated snapshot dir is created under
	CacheDir     string // content-addressed download cache; persists across runs
	Concurrency  int    // cap on parallel downloads
	Stats        bool   // also emit basin/program frequency reports

	// Now supplies the timestamp naming the snapshot directory. Defaults to
	// time.Now; injectable for tests.
	Now func() time.Time
}

// RunSummary describes what a snapshot run produced.
type RunSummary struct {
	SnapshotDir string

	// Artifacts lists manifest display names in emission order.
	Artifacts []string

	// FailedDownloads lists files that could not be fetched or verified,
	// with URL and expected hash for manual retry.
	FailedDownloads []download.Failure

	// SkippedArchives lists category archives withheld because one of their
	// constituent downloads failed. A partial archive is never emitted.
	SkippedArchives []string

	// TotalFiles is the number of downloads the plan resolved.
	TotalFiles int
}
