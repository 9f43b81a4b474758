package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"atremap/internal/prof"
)

// setupProfiling inspects persistent profiling flags and starts the requested
// profilers. The returned session is nil when profiling is off.
func setupProfiling(cmd *cobra.Command) (*prof.Session, error) {
	flags := cmd.Root().PersistentFlags()

	var cfg prof.Config
	var err error
	if cfg.CPUProfile, err = flags.GetString("cpu-profile"); err != nil {
		return nil, fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if cfg.MemProfile, err = flags.GetString("mem-profile"); err != nil {
		return nil, fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if cfg.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return nil, fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if !cfg.Enabled() {
		return nil, nil
	}
	return prof.Start(cfg)
}
