// File: cmd/cache.go
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/riku-sakamoto/manabo-cli/internal/cache"
	"github.com/riku-sakamoto/manabo-cli/internal/observability"
)

// newCacheCmd creates the `cache` command group.
func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspects and controls the persisted analysis cache",
	}
	cacheCmd.AddCommand(newCacheStatusCmd())
	cacheCmd.AddCommand(newCacheClearCmd())
	return cacheCmd
}

func newCacheStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Reports how many cached analyses are servable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appConfig.CacheFilePath()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache persistence is disabled (cache.file is empty).")
				return nil
			}

			// Loading drops entries already past their TTL, so the count
			// reflects what a subsequent analyze could actually reuse.
			c := cache.New(observability.GetLogger())
			if err := c.LoadSnapshot(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d cached analyses in %s\n", c.Size(), path)
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Discards all cached analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := appConfig.CacheFilePath()
			if err != nil {
				return err
			}
			if path == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Cache persistence is disabled (cache.file is empty).")
				return nil
			}
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to remove cache snapshot %s: %w", path, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Analysis cache cleared.")
			return nil
		},
	}
}
