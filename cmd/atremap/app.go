package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"atremap/internal/driver"
	"atremap/internal/mapping"
	"atremap/internal/observ"
	"atremap/internal/prof"
	"atremap/internal/project"
)

// cacheApp names the per-user cache directory.
const cacheApp = "atremap"

// appState is what setupCommand derives from persistent flags for one run.
type appState struct {
	quiet    bool
	timings  bool
	ui       uiMode
	cache    string
	manifest *project.Manifest
	timer    *observ.Timer
	cleanup  func(failure error)
	profile  *prof.Session
}

var app appState

func setupCommand(cmd *cobra.Command, _ []string) error {
	flags := cmd.Root().PersistentFlags()
	colorFlag, err := flags.GetString("color")
	if err != nil {
		return err
	}
	switch colorFlag {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
	}

	state := appState{timer: observ.NewTimer()}
	if state.quiet, err = flags.GetBool("quiet"); err != nil {
		return err
	}
	if state.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	if state.ui, err = readUIMode(uiFlag); err != nil {
		return err
	}
	if state.cache, err = flags.GetString("cache"); err != nil {
		return err
	}
	switch state.cache {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("invalid --cache value %q (expected auto|on|off)", state.cache)
	}

	configPath, err := flags.GetString("config")
	if err != nil {
		return err
	}
	if state.manifest, err = loadManifest(configPath); err != nil {
		return err
	}

	if cmd.Context() == nil {
		cmd.SetContext(context.Background())
	}
	if state.profile, err = setupProfiling(cmd); err != nil {
		return err
	}
	if state.cleanup, err = setupTracing(cmd); err != nil {
		_ = state.profile.Stop()
		return err
	}
	app = state
	return nil
}

func finishCommand(cmd *cobra.Command, _ []string) error {
	if app.timings && !app.quiet {
		printTimings(cmd.ErrOrStderr(), app.timer)
	}
	if app.cleanup != nil {
		app.cleanup(nil)
	}
	return app.profile.Stop()
}

// abortCommand runs the tracer cleanup for a failed command.
func abortCommand(err error) {
	if app.cleanup != nil {
		app.cleanup(err)
	}
	if stopErr := app.profile.Stop(); stopErr != nil {
		printError(stopErr)
	}
}

func loadManifest(configPath string) (*project.Manifest, error) {
	if configPath != "" {
		return project.Load(configPath)
	}
	m, _, err := project.LoadManifest(".")
	return m, err
}

// openCache returns nil when caching is off.
func openCache() (*mapping.Cache, error) {
	enabled := true
	switch app.cache {
	case "off":
		enabled = false
	case "auto":
		if app.manifest != nil {
			enabled = app.manifest.Config.Cache.Enabled
		}
	}
	if !enabled {
		return nil, nil
	}
	return mapping.OpenCache(cacheApp)
}

// mappingsFlags are shared by every command that loads a mapping file.
type mappingsFlags struct {
	path    string
	reverse bool
}

func (f *mappingsFlags) register(cmd *cobra.Command, withReverse bool) {
	cmd.Flags().StringVarP(&f.path, "mappings", "m", "", "mapping file (srg, tsrg, tsrg2, csrg)")
	if withReverse {
		cmd.Flags().BoolVar(&f.reverse, "reverse", false, "apply the mappings in reverse")
	}
}

// load resolves the mapping path from the flag or the manifest and loads it.
func (f *mappingsFlags) load(cmd *cobra.Command) (*driver.LoadedMappings, error) {
	path := f.path
	reverse := f.reverse
	if path == "" && app.manifest != nil {
		path = app.manifest.Resolve(app.manifest.Config.Mappings.Path)
		if !cmd.Flags().Changed("reverse") {
			reverse = app.manifest.Config.Mappings.Reverse
		}
	}
	if path == "" {
		return nil, fmt.Errorf("%w: pass --mappings or set [mappings].path in %s", driver.ErrNoMappings, project.ManifestName)
	}
	cache, err := openCache()
	if err != nil {
		return nil, err
	}
	var loaded *driver.LoadedMappings
	err = app.timer.Measure("load-mappings", func() error {
		var loadErr error
		loaded, loadErr = driver.LoadMappings(cmd.Context(), path, reverse, cache)
		return loadErr
	})
	return loaded, err
}

// manifestPaths resolves manifest-relative paths when no explicit ones were given.
func manifestPaths(explicit, fromManifest []string) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	if app.manifest == nil {
		return nil, nil
	}
	return app.manifest.ResolveAll(fromManifest)
}

func manifestPath(explicit, fromManifest string) string {
	if explicit != "" || app.manifest == nil {
		return explicit
	}
	return app.manifest.Resolve(fromManifest)
}

func infof(out io.Writer, format string, args ...any) {
	if app.quiet {
		return
	}
	_, _ = fmt.Fprintf(out, format, args...)
}

// formatPathForOutput prints path relative to base when it lies inside it.
func formatPathForOutput(base, path string) string {
	if base == "" {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func workingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

const listSeparator = os.PathListSeparator
