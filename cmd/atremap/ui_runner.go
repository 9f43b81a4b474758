package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"atremap/internal/driver"
	"atremap/internal/ui"
)

type renameOutcome struct {
	result *driver.RenameResult
	err    error
}

func runRenameWithUI(ctx context.Context, title string, req driver.RenameRequest) (*driver.RenameResult, error) {
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan renameOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.RenameFiles(ctx, reqCopy)
		outcomeCh <- renameOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, req.Files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// the model stops reading on its own errors; keep the rename from blocking
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
