// Package orchestrator ties the catalog, plan, download, archive and
// manifest stages together into one snapshot run.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cchdo/snapshotter/pkg/archive"
	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/download"
	"github.com/cchdo/snapshotter/pkg/errors"
	"github.com/cchdo/snapshotter/pkg/fsutil"
	"github.com/cchdo/snapshotter/pkg/manifest"
	"github.com/cchdo/snapshotter/pkg/model"
	"github.com/cchdo/snapshotter/pkg/plan"
	"github.com/cchdo/snapshotter/pkg/report"
	"github.com/hashicorp/go-multierror"
)

const (
	cruiseHistoryName = "cruise_history.zip"
	cruiseIndexName   = "cruise_index.csv"
	programsName      = "programs.csv"
	basinsName        = "basins.csv"
)

// Orchestrator drives a snapshot run end to end.
type Orchestrator struct {
	Catalog   CatalogClient
	DL        Downloader
	Assembler Assembler
	Hooks     Hooks
}

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

// Run produces one snapshot. Metadata or filesystem setup failures abort the
// run immediately; individual download failures are collected, withhold only
// the affected category archives, and surface in the summary and the
// aggregated error.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*RunSummary, error) {
	if o.Catalog == nil {
		return nil, fmt.Errorf("catalog client is not configured")
	}
	if o.DL == nil {
		return nil, fmt.Errorf("download manager is not configured")
	}
	if o.Assembler == nil {
		return nil, fmt.Errorf("archive assembler is not configured")
	}
	if !filepath.IsAbs(opts.CacheDir) {
		return nil, fmt.Errorf("cache dir must be absolute: %w: %s", errors.ErrInvalidPath, opts.CacheDir)
	}

	emit(o.Hooks, Event{Phase: "resolving", Msg: "fetching catalog metadata"})
	cruises, err := o.Catalog.AllCruises(ctx)
	if err != nil {
		return nil, err
	}
	files, err := o.Catalog.AllFiles(ctx)
	if err != nil {
		return nil, err
	}

	emit(o.Hooks, Event{Phase: "planning", Msg: "resolving eligible files"})
	dlPlan := plan.Build(cruises, files, o.Catalog.FileURL)

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	snapshotDir := filepath.Join(opts.SnapshotRoot, now().UTC().Format("2006-01-02")+"_cchdo_snapshot")
	if err := fsutil.EnsureDir(snapshotDir); err != nil {
		return nil, errors.Wrapf(err, "failed to create snapshot directory %s", snapshotDir)
	}

	summary := &RunSummary{
		SnapshotDir: snapshotDir,
		TotalFiles:  dlPlan.Len(),
	}
	mw := manifest.NewWriter(snapshotDir)

	if err := o.writeCruiseArtifacts(ctx, cruises, snapshotDir, mw, summary, opts.Stats); err != nil {
		return summary, err
	}

	result, err := o.fetchAll(ctx, dlPlan, opts)
	if err != nil {
		return summary, err
	}
	summary.FailedDownloads = result.Failures

	var merr *multierror.Error
	merr = multierror.Append(merr, result.Err())

	// Barrier reached: every download has resolved one way or the other.
	// Assemble category archives in plan order, skipping any category with a
	// failed constituent so a partial archive is never emitted.
	failed := failedChecksums(result)
	for _, key := range dlPlan.Categories() {
		archiveName := key.ArchiveName()
		downloads := dlPlan.Files(key)

		if n := countFailed(downloads, failed); n > 0 {
			emit(o.Hooks, Event{Phase: "error", ID: archiveName, Msg: fmt.Sprintf("skipping archive: %d of %d files failed", n, len(downloads))})
			summary.SkippedArchives = append(summary.SkippedArchives, archiveName)
			continue
		}

		emit(o.Hooks, Event{Phase: "archiving", ID: archiveName, Msg: fmt.Sprintf("%d files", len(downloads))})
		archivePath := filepath.Join(snapshotDir, archiveName)
		if err := o.Assembler.AssembleCategory(ctx, archivePath, downloads, result.Paths); err != nil {
			emit(o.Hooks, Event{Phase: "error", ID: archiveName, Msg: err.Error()})
			summary.SkippedArchives = append(summary.SkippedArchives, archiveName)
			merr = multierror.Append(merr, errors.Wrapf(err, "failed to assemble %s", archiveName))
			continue
		}
		if err := mw.Record(archivePath, archiveName); err != nil {
			return summary, err
		}
		summary.Artifacts = append(summary.Artifacts, archiveName)
	}

	emit(o.Hooks, Event{Phase: "done", Msg: snapshotDir})
	return summary, merr.ErrorOrNil()
}

// writeCruiseArtifacts emits the cruise metadata archive, the cruise index
// and, optionally, the collection frequency reports, recording each in the
// manifest.
func (o *Orchestrator) writeCruiseArtifacts(ctx context.Context, cruises []catalog.Cruise, snapshotDir string, mw *manifest.Writer, summary *RunSummary, stats bool) error {
	entries := make([]archive.TextEntry, 0, len(cruises))
	for _, cruise := range cruises {
		expocode := strings.ReplaceAll(cruise.Expocode, "/", "_")
		entries = append(entries, archive.TextEntry{
			Name: expocode + "_info.txt",
			Body: report.InfoText(cruise),
		})
	}

	historyPath := filepath.Join(snapshotDir, cruiseHistoryName)
	if err := o.Assembler.AssembleTexts(ctx, historyPath, entries); err != nil {
		return errors.Wrapf(err, "failed to assemble %s", cruiseHistoryName)
	}
	if err := mw.Record(historyPath, cruiseHistoryName); err != nil {
		return err
	}
	summary.Artifacts = append(summary.Artifacts, cruiseHistoryName)

	indexPath := filepath.Join(snapshotDir, cruiseIndexName)
	if err := writeFileArtifact(indexPath, func(f *os.File) error {
		return report.WriteIndex(f, cruises)
	}); err != nil {
		return err
	}
	if err := mw.Record(indexPath, cruiseIndexName); err != nil {
		return err
	}
	summary.Artifacts = append(summary.Artifacts, cruiseIndexName)

	if !stats {
		return nil
	}

	counts := report.CollectStats(cruises)
	for _, rep := range []struct {
		name   string
		label  string
		counts map[string]int
	}{
		{name: programsName, label: "program", counts: counts.Programs},
		{name: basinsName, label: "basins", counts: counts.Basins},
	} {
		path := filepath.Join(snapshotDir, rep.name)
		label, tally := rep.label, rep.counts
		if err := writeFileArtifact(path, func(f *os.File) error {
			return report.WriteCounts(f, label, tally)
		}); err != nil {
			return err
		}
		if err := mw.Record(path, rep.name); err != nil {
			return err
		}
		summary.Artifacts = append(summary.Artifacts, rep.name)
	}
	return nil
}

// fetchAll drives the cache fill for the whole plan, forwarding per-item
// completions as downloading events.
func (o *Orchestrator) fetchAll(ctx context.Context, dlPlan *model.DownloadPlan, opts Options) (*download.Result, error) {
	items := make([]download.Item, 0, dlPlan.Len())
	for _, dl := range dlPlan.Items() {
		items = append(items, download.Item{URL: dl.URL, Checksum: dl.Checksum})
	}

	total := len(items)
	emit(o.Hooks, Event{Phase: "downloading", Msg: "fetching files", Total: total})

	var completed atomic.Int64
	return o.DL.FetchAll(ctx, items, download.Options{
		Dir:         opts.CacheDir,
		Concurrency: opts.Concurrency,
		OnItemDone: func(item download.Item, err error) {
			done := int(completed.Add(1))
			event := Event{Phase: "downloading", ID: item.Checksum, Completed: done, Total: total}
			if item.URL != nil {
				event.Msg = item.URL.String()
			}
			if err != nil {
				event.Phase = "error"
				event.Msg = err.Error()
			}
			emit(o.Hooks, event)
		},
	})
}

func writeFileArtifact(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func failedChecksums(result *download.Result) map[string]struct{} {
	failed := make(map[string]struct{}, len(result.Failures))
	for _, f := range result.Failures {
		failed[strings.ToLower(strings.TrimSpace(f.Checksum))] = struct{}{}
	}
	return failed
}

func countFailed(downloads []model.NamedDownload, failed map[string]struct{}) int {
	n := 0
	for _, dl := range downloads {
		if _, ok := failed[strings.ToLower(strings.TrimSpace(dl.Checksum))]; ok {
			n++
		}
	}
	return n
}
