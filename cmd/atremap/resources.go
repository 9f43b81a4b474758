package main

import (
	"errors"

	"github.com/spf13/cobra"

	"atremap/internal/at"
	"atremap/internal/resources"
)

var (
	resourcesMappings mappingsFlags
	resourcesATFiles  []string
)

var resourcesCmd = &cobra.Command{
	Use:   "resources [source] [dest]",
	Short: "Copy a resource tree, remapping registered AT files",
	Long: `Copy every file from source to dest. Files registered with --at-file
(or [resources].at_files) are rewritten line by line with the internal
dialect; everything else is copied byte for byte. The mapping file is only
read once the first AT line is reached.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runResources,
}

func init() {
	resourcesMappings.register(resourcesCmd, true)
	resourcesCmd.Flags().StringArrayVar(&resourcesATFiles, "at-file", nil, "AT file inside source (repeatable)")
}

func runResources(cmd *cobra.Command, args []string) error {
	var src, dst string
	if len(args) > 0 {
		src = args[0]
	}
	if len(args) > 1 {
		dst = args[1]
	}
	var atFiles []string
	if app.manifest != nil {
		cfg := app.manifest.Config.Resources
		src = manifestPath(src, cfg.Source)
		dst = manifestPath(dst, cfg.Dest)
		files, err := manifestPaths(resourcesATFiles, cfg.ATFiles)
		if err != nil {
			return err
		}
		atFiles = files
	} else {
		atFiles = resourcesATFiles
	}
	if (src == "" || dst == "") && app.manifest != nil {
		if err := app.manifest.Require("resources"); err != nil {
			return err
		}
	}
	if src == "" || dst == "" {
		return errors.New("resources: pass source and dest or set [resources].source/dest")
	}

	filter := resources.NewFilter(func() (at.Mappings, error) {
		loaded, err := resourcesMappings.load(cmd)
		if err != nil {
			return nil, err
		}
		return loaded.Mappings(), nil
	})
	copier := &resources.Copier{
		Filter:  filter,
		ATFiles: resources.NewPathSet(func() []string { return atFiles }),
	}

	var res *resources.CopyResult
	err := app.timer.Measure("copy-resources", func() error {
		var copyErr error
		res, copyErr = copier.Copy(cmd.Context(), src, dst)
		return copyErr
	})
	if err != nil {
		return err
	}
	infof(cmd.OutOrStdout(), "copied %d file(s), remapped %d AT file(s) (%d lines)\n", res.Copied, res.Filtered, res.Lines)
	return nil
}
