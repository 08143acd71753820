package processor

import (
	"context"
	"io"

	"github.com/olegkotsar/yomins-upload/model"
)

// Event is posted by a background run started with Start
type Event interface {
	event()
}

// StatusEvent mirrors Observer.OnStatus
type StatusEvent struct {
	Text string
}

// ProgressEvent mirrors Observer.OnProgress
type ProgressEvent struct {
	Done  int
	Total int
}

// ByteEvent reports n more bytes of entry handed to the transport
type ByteEvent struct {
	Entry model.FileEntry
	N     int64
}

// DoneEvent is always the last event of a run
type DoneEvent struct {
	Summary *model.UploadSummary
	Err     error
}

func (StatusEvent) event()   {}
func (ProgressEvent) event() {}
func (ByteEvent) event()     {}
func (DoneEvent) event()     {}

// Start runs Upload on a single background goroutine. Events are delivered in
// order on the returned channel, which is closed after the DoneEvent. The caller
// must drain the channel until it is closed.
func Start(ctx context.Context, runner *Runner, entries []model.FileEntry, settings model.ConnectionSettings) <-chan Event {
	events := make(chan Event, 64)

	// the worker owns its own copy, the caller may keep editing selection
	batch := make([]model.FileEntry, len(entries))
	copy(batch, entries)

	go func() {
		defer close(events)
		summary, err := runner.Upload(ctx, batch, settings, &channelObserver{events: events})
		events <- DoneEvent{Summary: summary, Err: err}
	}()

	return events
}

var (
	_ Observer     = (*channelObserver)(nil)
	_ ByteObserver = (*channelObserver)(nil)
)

type channelObserver struct {
	events chan<- Event
}

func (o *channelObserver) OnStatus(text string) {
	o.events <- StatusEvent{Text: text}
}

func (o *channelObserver) OnProgress(done, total int) {
	o.events <- ProgressEvent{Done: done, Total: total}
}

func (o *channelObserver) WrapReader(entry model.FileEntry, r io.Reader) io.Reader {
	return &countingReader{r: r, entry: entry, events: o.events}
}

type countingReader struct {
	r      io.Reader
	entry  model.FileEntry
	events chan<- Event
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.events <- ByteEvent{Entry: c.entry, N: int64(n)}
	}
	return n, err
}
