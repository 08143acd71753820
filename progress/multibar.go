package progress

import (
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/olegkotsar/yomins-upload/model"
	"github.com/olegkotsar/yomins-upload/processor"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var (
	_ Display                = (*MultiBarObserver)(nil)
	_ processor.ByteObserver = (*MultiBarObserver)(nil)
)

// MultiBarObserver shows one byte bar per file. Finished bars stay on screen.
type MultiBarObserver struct {
	progress *mpb.Progress

	mu          sync.Mutex
	status      string
	current     *mpb.Bar
	currentPath string
	bars        int
}

// NewMultiBarObserver renders to w
func NewMultiBarObserver(w io.Writer) *MultiBarObserver {
	return &MultiBarObserver{
		progress: mpb.New(
			mpb.WithOutput(w),
			mpb.WithWidth(80),
			mpb.WithRefreshRate(150*time.Millisecond),
		),
	}
}

func (m *MultiBarObserver) OnStatus(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = text
}

func (m *MultiBarObserver) OnProgress(done, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil {
		m.current.SetTotal(-1, true)
		m.current = nil
		m.currentPath = ""
	}
}

func (m *MultiBarObserver) OnBytes(entry model.FileEntry, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.barFor(entry).IncrInt64(n)
}

// WrapReader lets a synchronous Runner.Upload drive the bars directly
func (m *MultiBarObserver) WrapReader(entry model.FileEntry, r io.Reader) io.Reader {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.barFor(entry).ProxyReader(r)
}

func (m *MultiBarObserver) Finish(err error) {
	m.mu.Lock()
	if m.current != nil {
		m.current.Abort(false)
		m.current = nil
	}
	m.mu.Unlock()
	m.progress.Wait()
}

// Bars returns the number of file bars created so far
func (m *MultiBarObserver) Bars() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bars
}

// barFor must be called with mu held
func (m *MultiBarObserver) barFor(entry model.FileEntry) *mpb.Bar {
	if m.current != nil && m.currentPath == entry.FullPath {
		return m.current
	}
	if m.current != nil {
		m.current.Abort(false)
	}

	label := fmt.Sprintf("[%s] %s (%.1f MiB)", m.status, truncatePath(entry.RelPath, 2), entry.SizeMB)
	m.current = m.progress.New(entry.Size,
		mpb.BarStyle().Lbound("[").Filler("=").Tip(">").Padding(" ").Rbound("]"),
		mpb.PrependDecorators(
			decor.Name(label, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace), "done"),
			decor.Name("  "),
			decor.Percentage(decor.WCSyncSpace),
		),
	)
	m.currentPath = entry.FullPath
	m.bars++
	return m.current
}

// truncatePath keeps the last n slash separated components
func truncatePath(p string, n int) string {
	parts := strings.Split(p, "/")
	if len(parts) <= n {
		return p
	}
	return ".../" + path.Join(parts[len(parts)-n:]...)
}
