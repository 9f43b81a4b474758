package driver

import "time"

// Stage describes a high-level phase of a rewrite.
type Stage string

const (
	// StageLoad is the mapping load stage.
	StageLoad Stage = "load"
	// StageRead reads an input file or archive.
	StageRead Stage = "read"
	// StageRemap rewrites directive lines.
	StageRemap Stage = "remap"
	// StageWrite writes the result.
	StageWrite Stage = "write"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting to start.
	StatusQueued Status = "queued"
	// StatusWorking indicates the file is currently being processed.
	StatusWorking Status = "working"
	// StatusDone indicates the file is done.
	StatusDone Status = "done"
	// StatusError indicates the file failed.
	StatusError Status = "error"
)

// Event reports progress for a file (or for the whole operation when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Lines   int
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
