package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/olegkotsar/yomins-upload/model"
	"github.com/schollz/progressbar/v3"
)

var _ Display = (*BarObserver)(nil)

// BarObserver shows a single files-done bar
type BarObserver struct {
	bar  *progressbar.ProgressBar
	w    io.Writer
	done int
}

// NewBarObserver creates a bar counting total files, written to w
func NewBarObserver(w io.Writer, total int) *BarObserver {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(w, "\n")
		}),
	)
	return &BarObserver{bar: bar, w: w}
}

func (b *BarObserver) OnStatus(text string) {
	b.bar.Describe("Uploading " + text)
}

func (b *BarObserver) OnProgress(done, total int) {
	b.done = done
	_ = b.bar.Set(done)
}

// OnBytes is ignored, the bar counts files
func (b *BarObserver) OnBytes(model.FileEntry, int64) {}

func (b *BarObserver) Finish(err error) {
	if err != nil {
		_ = b.bar.Exit()
		fmt.Fprint(b.w, "\n")
		return
	}
	_ = b.bar.Finish()
}

// Done returns the number of files reported complete
func (b *BarObserver) Done() int {
	return b.done
}
