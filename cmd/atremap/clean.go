package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"atremap/internal/driver"
	"atremap/internal/mapping"
)

var (
	cleanOutput string
	cleanCache  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the rename output directory",
	Long:  "Remove the directory written by `atremap rename` and, with --cache, the parsed mapping cache.",
	Args:  cobra.NoArgs,
	RunE:  runClean,
}

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutput, "output", "o", "", "output directory (default: [rename].output)")
	cleanCmd.Flags().BoolVar(&cleanCache, "cache", false, "also drop the mapping cache")
}

func runClean(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	target := cleanOutput
	if target == "" && app.manifest != nil {
		target = app.manifest.Resolve(app.manifest.Config.Rename.Output)
	}
	if target == "" && !cleanCache {
		return errors.New("clean: pass --output or set [rename].output")
	}

	if target != "" {
		info, err := os.Stat(target)
		switch {
		case errors.Is(err, os.ErrNotExist):
			infof(out, "output directory not found\n")
		case err != nil:
			return fmt.Errorf("failed to stat %q: %w", target, err)
		case !info.IsDir():
			return fmt.Errorf("%q is not a directory", target)
		default:
			if err := driver.CleanOutput(target); err != nil {
				return err
			}
			infof(out, "removed %s\n", formatPathForOutput(workingDir(), target))
		}
	}

	if cleanCache {
		cache, err := mapping.OpenCache(cacheApp)
		if err != nil {
			return err
		}
		if err := cache.DropAll(); err != nil {
			return err
		}
		infof(out, "dropped mapping cache %s\n", cache.Dir())
	}
	return nil
}
