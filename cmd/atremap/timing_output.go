package main

import (
	"fmt"
	"io"

	"atremap/internal/observ"
)

func printTimings(out io.Writer, timer *observ.Timer) {
	if out == nil || timer == nil {
		return
	}
	if len(timer.Report().Phases) == 0 {
		return
	}
	_, _ = fmt.Fprint(out, timer.Summary())
}
