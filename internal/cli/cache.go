package cli

import (
	"fmt"

	"github.com/cchdo/snapshotter/internal/logger"
	"github.com/cchdo/snapshotter/pkg/cache"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// NewCacheCmd creates the cache command with subcommands
func NewCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the download cache",
		Long:  "Inspect and clean the content-addressed download cache shared by snapshot runs",
	}

	cmd.AddCommand(
		newCacheCleanCmd(),
		newCacheInfoCmd(),
		newCacheDirCmd(),
	)

	return cmd
}

func newCacheCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove all cached downloads",
		Long:  "Remove cached file content to free up disk space; the next run re-downloads on demand",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadCacheManager()
			if err != nil {
				return err
			}
			result, err := manager.Clean()
			if err != nil {
				return err
			}
			logger.Success("Cache cleaned", logger.Fields{
				"entries": result.EntriesRemoved,
				"freed":   humanize.Bytes(uint64(result.BytesFreed)),
			})
			return nil
		},
	}
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache information",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadCacheManager()
			if err != nil {
				return err
			}
			info, err := manager.GetInfo()
			if err != nil {
				return err
			}
			fmt.Printf("Cache Directory: %s\n", info.Directory)
			fmt.Printf("Entries: %d\n", info.Entries)
			fmt.Printf("Total Size: %s\n", humanize.Bytes(uint64(info.TotalSize)))
			if !info.Oldest.IsZero() {
				fmt.Printf("Oldest Entry: %s\n", info.Oldest.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}
}

func newCacheDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dir",
		Short: "Show cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager, err := loadCacheManager()
			if err != nil {
				return err
			}
			fmt.Println(manager.GetDirectory())
			return nil
		},
	}
}

func loadCacheManager() (*cache.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return cache.NewManager(cfg.Settings.CacheDir), nil
}
