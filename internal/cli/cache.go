package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// downloadsDir is the subdirectory of the cache holding remote dumps.
const downloadsDir = "http"

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local result cache",
		Long: `Manage the local result cache.

Results computed by threads are cached per corpus, anchor and thresholds
and can be queried by ID until they expire. Dumps read with --url are kept
in the same directory for an hour.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var keepDownloads bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached results and downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				printInfo("Cache is empty")
				return nil
			}

			results, downloads, err := clearCache(dir, keepDownloads)
			if err != nil {
				return err
			}
			printSuccess("Cleared %d cached results and %d downloads", results, downloads)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&keepDownloads, "keep-downloads", false, "only remove results")
	return cmd
}

// clearCache removes the files below dir and reports how many were
// results and how many downloads. Files that cannot be removed are
// skipped.
func clearCache(dir string, keepDownloads bool) (results, downloads int, err error) {
	dl := filepath.Join(dir, downloadsDir)
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == dl && keepDownloads {
				return fs.SkipDir
			}
			return nil
		}
		if os.Remove(path) != nil {
			return nil
		}
		if filepath.Dir(path) == dl {
			downloads++
		} else {
			results++
		}
		return nil
	})
	// Drop the now empty shard directories.
	if entries, rerr := os.ReadDir(dir); rerr == nil {
		for _, e := range entries {
			if e.IsDir() {
				_ = os.Remove(filepath.Join(dir, e.Name()))
			}
		}
	}
	return results, downloads, err
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Println(dir)
			return nil
		},
	}
}
