package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cchdo/snapshotter/internal/logger"
	"github.com/cchdo/snapshotter/pkg/archive"
	"github.com/cchdo/snapshotter/pkg/catalog"
	"github.com/cchdo/snapshotter/pkg/download"
	"github.com/cchdo/snapshotter/pkg/orchestrator"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// NewSnapshotCmd creates the snapshot command, the main entry point of the tool.
func NewSnapshotCmd() *cobra.Command {
	var (
		outputDir   string
		cacheDir    string
		concurrency int
		stats       bool
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Create a verifiable snapshot of the public dataset",
		Long: `Create a dated snapshot directory containing per-category zip archives of
all eligible public dataset files, a cruise metadata archive, a cruise index
and a manifest recording every artifact's name, size and sha256.

Downloads go through a content-addressed cache keyed by expected hash, so
re-running after a partial failure only fetches what is still missing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, outputDir, cacheDir, concurrency, stats)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory to create the snapshot under (default: config snapshot_root)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "download cache directory (default: config cache_dir)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum parallel downloads (default: config max_concurrent_downloads)")
	cmd.Flags().BoolVar(&stats, "stats", false, "also emit basin and program frequency reports")

	return cmd
}

func runSnapshot(cmd *cobra.Command, outputDir, cacheDir string, concurrency int, stats bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.InitLogger(cfg.Settings.LogLevel)

	if outputDir == "" {
		outputDir = cfg.Settings.SnapshotRoot
	}
	if cacheDir == "" {
		cacheDir = cfg.Settings.CacheDir
	}
	if concurrency <= 0 {
		concurrency = cfg.Settings.MaxConcurrent
	}
	absCacheDir, err := filepath.Abs(cacheDir)
	if err != nil {
		return fmt.Errorf("failed to resolve cache dir %s: %w", cacheDir, err)
	}

	client, err := catalog.NewHTTPClient(cfg.Settings.APIBaseURL, cfg.Settings.HTTPTimeout)
	if err != nil {
		return err
	}

	orch := &orchestrator.Orchestrator{
		Catalog:   client,
		DL:        download.NewManager(cfg.Settings.HTTPTimeout, ""),
		Assembler: archive.NewAssembler(),
		Hooks:     orchestrator.Hooks{OnEvent: logEvent},
	}

	summary, runErr := orch.Run(cmd.Context(), orchestrator.Options{
		SnapshotRoot: outputDir,
		CacheDir:     absCacheDir,
		Concurrency:  concurrency,
		Stats:        stats,
	})
	if summary != nil {
		printSummary(summary)
	}
	return runErr
}

// logEvent forwards orchestrator progress to the logger. Called from
// concurrent download workers during the downloading phase.
func logEvent(e orchestrator.Event) {
	switch e.Phase {
	case "downloading":
		if e.ID == "" {
			logger.Info("Downloading files", logger.Fields{"total": e.Total})
			return
		}
		logger.Debug("Downloaded", logger.Fields{
			"progress": fmt.Sprintf("%d/%d", e.Completed, e.Total),
			"url":      e.Msg,
		})
	case "archiving":
		logger.Info("Making archive", logger.Fields{"archive": e.ID, "contents": e.Msg})
	case "error":
		logger.Warn(e.Msg, logger.Fields{"id": e.ID})
	case "done":
		logger.Success("Snapshot complete", logger.Fields{"dir": e.Msg})
	default:
		logger.Info(e.Msg)
	}
}

// printSummary renders the run summary table and lists anything that failed
// with enough detail to retry manually.
func printSummary(summary *orchestrator.RunSummary) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Artifact", "Size"})
	for _, name := range summary.Artifacts {
		size := "?"
		if stat, err := os.Stat(filepath.Join(summary.SnapshotDir, name)); err == nil {
			size = humanize.Bytes(uint64(stat.Size()))
		}
		table.Append([]string{name, size})
	}
	table.Render()

	for _, name := range summary.SkippedArchives {
		logger.Warn("Archive skipped due to failed downloads", logger.Fields{"archive": name})
	}
	for _, failure := range summary.FailedDownloads {
		logger.Error("Download failed", logger.Fields{
			"url":    failure.URL,
			"sha256": failure.Checksum,
			"error":  failure.Err.Error(),
		})
	}
}
