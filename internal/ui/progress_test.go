package ui

import (
	"strings"
	"testing"

	"atremap/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	model := NewProgressModel("rename", []string{"a_at.cfg", "b_at.cfg"}, events).(*progressModel)

	model.Update(eventMsg(driver.Event{File: "a_at.cfg", Stage: driver.StageRemap, Status: driver.StatusWorking}))
	model.Update(eventMsg(driver.Event{File: "b_at.cfg", Stage: driver.StageWrite, Status: driver.StatusDone, Lines: 12}))
	model.Update(eventMsg(driver.Event{File: "unknown", Status: driver.StatusError}))

	if model.items[0].status != "remapping" || model.items[1].status != "done" {
		t.Fatalf("unexpected statuses %+v", model.items)
	}
	if got := model.percent(); got != 0.75 {
		t.Fatalf("percent = %v, want 0.75", got)
	}
	view := model.View()
	for _, want := range []string{"rename", "a_at.cfg", "remapping", "12 lines"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}

	model.Update(doneMsg{})
	if !model.done || !strings.Contains(model.View(), "done: rename") {
		t.Fatalf("model must finish on doneMsg")
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"a_very_long_name_at.cfg", 10, "a_very_..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
