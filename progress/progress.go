// Package progress renders upload feedback in the terminal.
package progress

import (
	"os"

	"github.com/olegkotsar/yomins-upload/model"
	"github.com/olegkotsar/yomins-upload/processor"
	"golang.org/x/term"
)

// Display is the consumer side of a background run
type Display interface {
	processor.Observer
	// OnBytes reports n more bytes of entry sent
	OnBytes(entry model.FileEntry, n int64)
	// Finish is called once after the run ended, err is the run error if any
	Finish(err error)
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Consume drains events into d until the channel is closed and returns the final DoneEvent
func Consume(events <-chan processor.Event, d Display) processor.DoneEvent {
	var done processor.DoneEvent
	for ev := range events {
		switch e := ev.(type) {
		case processor.StatusEvent:
			d.OnStatus(e.Text)
		case processor.ProgressEvent:
			d.OnProgress(e.Done, e.Total)
		case processor.ByteEvent:
			d.OnBytes(e.Entry, e.N)
		case processor.DoneEvent:
			done = e
		}
	}
	d.Finish(done.Err)
	return done
}

var _ Display = NopDisplay{}

// NopDisplay ignores everything, the runner's own log lines are the only feedback
type NopDisplay struct{}

func (NopDisplay) OnStatus(string)                {}
func (NopDisplay) OnProgress(int, int)            {}
func (NopDisplay) OnBytes(model.FileEntry, int64) {}
func (NopDisplay) Finish(error)                   {}
