package main

import (
	"errors"

	"github.com/spf13/cobra"

	"atremap/internal/driver"
)

var (
	jarMappings mappingsFlags
	jarSuffix   string
	jarAtomic   bool
)

var renameJarCmd = &cobra.Command{
	Use:   "rename-jar [jar]",
	Short: "Rewrite the AT entries of a jar in place",
	Long: `Rewrite every archive entry whose name ends with the AT suffix using the
qualified dialect ("public C.member") and write the archive back over the
original file. Other entries are copied unchanged. Mappings are always
applied forward.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRenameJar,
}

func init() {
	jarMappings.register(renameJarCmd, false)
	renameJarCmd.Flags().StringVar(&jarSuffix, "suffix", "", "entry name suffix of AT files (default _at.cfg)")
	renameJarCmd.Flags().BoolVar(&jarAtomic, "atomic", false, "write a temp file and rename it over the jar")
}

func runRenameJar(cmd *cobra.Command, args []string) error {
	req := driver.ArchiveRequest{Suffix: jarSuffix, Atomic: jarAtomic}
	explicit := ""
	if len(args) > 0 {
		explicit = args[0]
	}
	if app.manifest != nil {
		cfg := app.manifest.Config.Jar
		if req.Suffix == "" {
			req.Suffix = cfg.Suffix
		}
		if !cmd.Flags().Changed("atomic") {
			req.Atomic = cfg.Atomic
		}
		req.Path = manifestPath(explicit, cfg.Path)
	} else {
		req.Path = explicit
	}
	if req.Path == "" {
		return errors.New("rename-jar: pass a jar or set [jar].path")
	}

	loaded, err := jarMappings.load(cmd)
	if err != nil {
		return err
	}
	req.Mappings = loaded.Mappings()

	var res *driver.ArchiveResult
	err = app.timer.Measure("rename-jar", func() error {
		var runErr error
		res, runErr = driver.RenameArchive(cmd.Context(), req)
		return runErr
	})
	if err != nil {
		return err
	}
	infof(cmd.OutOrStdout(), "rewrote %d of %d entries (%d lines) in %s\n",
		len(res.Rewritten), res.Entries, res.Lines, formatPathForOutput(workingDir(), res.Path))
	return nil
}
