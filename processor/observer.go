package processor

import (
	"io"

	"github.com/olegkotsar/yomins-upload/model"
)

// Observer receives run feedback. Calls come from the uploading goroutine, in upload order.
type Observer interface {
	// OnStatus is called before each file with "<index>/<total>"
	OnStatus(text string)
	// OnProgress is called after each completed file
	OnProgress(done, total int)
}

// ByteObserver is optionally implemented by observers that want byte level progress.
// The returned reader replaces r for the transfer.
type ByteObserver interface {
	WrapReader(entry model.FileEntry, r io.Reader) io.Reader
}

var _ Observer = ObserverFuncs{}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Status   func(text string)
	Progress func(done, total int)
}

func (o ObserverFuncs) OnStatus(text string) {
	if o.Status != nil {
		o.Status(text)
	}
}

func (o ObserverFuncs) OnProgress(done, total int) {
	if o.Progress != nil {
		o.Progress(done, total)
	}
}
