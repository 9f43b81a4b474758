package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"atremap/internal/driver"
	"atremap/internal/project"
)

var (
	renameMappings mappingsFlags
	renameOutput   string
	renameJobs     int
	renameWatch    bool
)

var renameCmd = &cobra.Command{
	Use:   "rename [files...]",
	Short: "Rewrite AT files into an output directory",
	Long: `Rewrite every given AT file with the internal dialect ("public a.b.C member")
into the output directory under the same file name. The output directory is
emptied first. Without arguments the [rename] section of atremap.toml is used.`,
	RunE: runRename,
}

func init() {
	renameMappings.register(renameCmd, true)
	renameCmd.Flags().StringVarP(&renameOutput, "output", "o", "", "output directory")
	renameCmd.Flags().IntVarP(&renameJobs, "jobs", "j", 0, "files rewritten in parallel (default 1)")
	renameCmd.Flags().BoolVar(&renameWatch, "watch", false, "rerun when the inputs or the mapping file change")
}

func runRename(cmd *cobra.Command, args []string) error {
	req, err := buildRenameRequest(args)
	if err != nil {
		return err
	}
	loaded, err := renameMappings.load(cmd)
	if err != nil {
		return err
	}
	req.Mappings = loaded.Mappings()
	req.Reverse = loaded.Reversed

	if err := renameOnce(cmd, req); err != nil {
		return err
	}
	if !renameWatch {
		return nil
	}
	return watchRename(cmd, req, loaded.Path)
}

func buildRenameRequest(args []string) (driver.RenameRequest, error) {
	var cfg project.RenameConfig
	if app.manifest != nil {
		cfg = app.manifest.Config.Rename
	}
	files, err := manifestPaths(args, cfg.Files)
	if err != nil {
		return driver.RenameRequest{}, err
	}
	if len(files) == 0 {
		return driver.RenameRequest{}, fmt.Errorf("%w: pass AT files or set [rename].files in %s", driver.ErrNoInputs, project.ManifestName)
	}
	output := manifestPath(renameOutput, cfg.Output)
	if output == "" {
		return driver.RenameRequest{}, errors.New("rename: pass --output or set [rename].output")
	}
	jobs := renameJobs
	if jobs == 0 {
		jobs = cfg.Jobs
	}
	return driver.RenameRequest{Files: files, OutputDir: output, Jobs: jobs}, nil
}

func renameOnce(cmd *cobra.Command, req driver.RenameRequest) error {
	var res *driver.RenameResult
	err := app.timer.Measure("rename", func() error {
		var runErr error
		if shouldUseTUI(app.ui, len(req.Files)) {
			res, runErr = runRenameWithUI(cmd.Context(), "rename", req)
		} else {
			res, runErr = driver.RenameFiles(cmd.Context(), req)
		}
		return runErr
	})
	if err != nil {
		return err
	}
	direction := "forward"
	if res.Reverse {
		direction = "reversed"
	}
	infof(cmd.OutOrStdout(), "rewrote %d file(s), %d line(s) into %s (%s)\n",
		len(res.Files), res.Lines(), formatPathForOutput(workingDir(), res.OutputDir), direction)
	return nil
}

func watchRename(cmd *cobra.Command, req driver.RenameRequest, mappingsPath string) error {
	watched := append(append([]string(nil), req.Files...), mappingsPath)
	w, err := driver.NewWatcher(watched, driver.DefaultDebounce)
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	infof(cmd.OutOrStdout(), "watching %d file(s), press Ctrl-C to stop\n", len(watched))

	return w.Run(ctx, func(_ context.Context, changed []string) {
		for _, path := range changed {
			if path == absPath(mappingsPath) {
				loaded, err := renameMappings.load(cmd)
				if err != nil {
					printError(err)
					return
				}
				req.Mappings = loaded.Mappings()
				break
			}
		}
		if err := renameOnce(cmd, req); err != nil {
			printError(err)
		}
	})
}
