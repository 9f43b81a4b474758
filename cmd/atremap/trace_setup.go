package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"atremap/internal/trace"
)

// setupTracing inspects trace-related flags and initializes the tracer.
// The returned cleanup flushes and closes it; when called with a failure
// and the tracer keeps a ring, the ring is dumped to stderr first.
func setupTracing(cmd *cobra.Command) (func(failure error), error) {
	flags := cmd.Root().PersistentFlags()

	traceOutput, err := flags.GetString("trace")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	levelStr, err := flags.GetString("trace-level")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	modeStr, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}
	formatStr, err := flags.GetString("trace-format")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-format flag: %w", err)
	}
	ringSize, err := flags.GetInt("trace-ring-size")
	if err != nil {
		return nil, fmt.Errorf("failed to get trace-ring-size flag: %w", err)
	}

	level, err := trace.ParseLevel(levelStr)
	if err != nil {
		return nil, err
	}
	// --trace без уровня включает фазы
	if level == trace.LevelOff && traceOutput != "" && !flags.Changed("trace-level") {
		level = trace.LevelPhase
	}
	if level == trace.LevelOff {
		cmd.SetContext(trace.WithTracer(cmd.Context(), trace.Nop))
		return func(error) {}, nil
	}

	mode, err := trace.ParseMode(modeStr)
	if err != nil {
		return nil, err
	}
	format, err := trace.ParseFormat(formatStr)
	if err != nil {
		return nil, err
	}

	tracer, err := trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: traceOutput,
		RingSize:   ringSize,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}

	ctx, span := trace.Start(trace.WithTracer(cmd.Context(), tracer), trace.ScopeDriver, cmd.CommandPath())
	cmd.SetContext(ctx)

	var once sync.Once
	cleanup := func(failure error) {
		once.Do(func() {
			if failure != nil {
				span.End(failure.Error())
				if d, ok := tracer.(trace.Dumper); ok && mode != trace.ModeStream {
					fmt.Fprintln(os.Stderr, "trace: events before the failure:")
					if err := d.Dump(os.Stderr, trace.FormatText); err != nil {
						fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
					}
				}
			} else {
				span.End("")
			}
			if err := tracer.Flush(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: flush error: %v\n", err)
			}
			if err := tracer.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "trace: close error: %v\n", err)
			}
		})
	}
	return cleanup, nil
}
