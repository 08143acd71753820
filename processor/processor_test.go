package processor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/destination"
	"github.com/olegkotsar/yomins-upload/journal"
	"github.com/olegkotsar/yomins-upload/logger"
	"github.com/olegkotsar/yomins-upload/model"
	"github.com/olegkotsar/yomins-upload/source"
	"github.com/olegkotsar/yomins-upload/testutils"
)

// ================== MOCKS ==================

type trackedReader struct {
	io.Reader
	closed bool
}

func (r *trackedReader) Close() error {
	r.closed = true
	return nil
}

type mockSource struct {
	contents map[string]string // full path -> content
	openErr  map[string]error
	opened   map[string]*trackedReader
}

func newMockSource(contents map[string]string) *mockSource {
	return &mockSource{
		contents: contents,
		openErr:  make(map[string]error),
		opened:   make(map[string]*trackedReader),
	}
}

func (m *mockSource) Scan(ctx context.Context, root string) ([]model.FileEntry, error) {
	entries := make([]model.FileEntry, 0, len(m.contents))
	for p, c := range m.contents {
		entries = append(entries, model.NewFileEntry(filepath.Base(p), p, strings.TrimPrefix(p, "/"), int64(len(c))))
	}
	return entries, nil
}

func (m *mockSource) Open(ctx context.Context, entry model.FileEntry) (io.ReadCloser, error) {
	if err, ok := m.openErr[entry.FullPath]; ok {
		return nil, err
	}
	content, ok := m.contents[entry.FullPath]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", entry.FullPath)
	}
	r := &trackedReader{Reader: strings.NewReader(content)}
	m.opened[entry.FullPath] = r
	return r, nil
}

type mockSession struct {
	dialer *mockDialer
	closed bool
}

func (s *mockSession) Store(remotePath string, content io.Reader) error {
	if err, ok := s.dialer.failStore[remotePath]; ok {
		return err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.dialer.stored = append(s.dialer.stored, remotePath)
	s.dialer.data[remotePath] = string(data)
	return nil
}

func (s *mockSession) Close() error {
	s.closed = true
	return nil
}

type mockDialer struct {
	dials     int
	failDial  map[int]error // 1-based dial attempt -> error
	failStore map[string]error
	sessions  []*mockSession
	stored    []string
	data      map[string]string
	settings  []model.ConnectionSettings
}

func newMockDialer() *mockDialer {
	return &mockDialer{
		failDial:  make(map[int]error),
		failStore: make(map[string]error),
		data:      make(map[string]string),
	}
}

func (m *mockDialer) Dial(ctx context.Context, settings model.ConnectionSettings) (destination.Session, error) {
	m.dials++
	m.settings = append(m.settings, settings)
	if err, ok := m.failDial[m.dials]; ok {
		return nil, err
	}
	s := &mockSession{dialer: m}
	m.sessions = append(m.sessions, s)
	return s, nil
}

func (m *mockDialer) RemotePath(entry model.FileEntry) string {
	return entry.Name
}

type recordingObserver struct {
	calls []string
}

func (o *recordingObserver) OnStatus(text string) {
	o.calls = append(o.calls, "status "+text)
}

func (o *recordingObserver) OnProgress(done, total int) {
	o.calls = append(o.calls, fmt.Sprintf("progress %d/%d", done, total))
}

func testEntries(names ...string) ([]model.FileEntry, map[string]string) {
	entries := make([]model.FileEntry, 0, len(names))
	contents := make(map[string]string, len(names))
	for _, n := range names {
		full := "/data/" + n
		content := "content of " + n
		contents[full] = content
		e := model.NewFileEntry(n, full, n, int64(len(content)))
		e.Selected = true
		entries = append(entries, e)
	}
	return entries, contents
}

var testSettings = model.ConnectionSettings{Host: "ftp.example.com", Port: 21, Username: "user", Password: "password"}

// ================== UPLOAD ==================

func TestUpload_NothingSelected(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	model.SetAllSelected(entries, false)

	dialer := newMockDialer()
	r := NewRunner(newMockSource(contents), dialer, nil, nil, false)
	obs := &recordingObserver{}

	summary, err := r.Upload(context.Background(), entries, testSettings, obs)
	require.ErrorIs(t, err, ErrNothingSelected)
	require.Equal(t, 0, dialer.dials)
	require.Empty(t, obs.calls)
	require.Equal(t, 0, summary.Total)
	require.Equal(t, model.RunStateIdle, summary.State)
}

func TestUpload_NilEntries(t *testing.T) {
	dialer := newMockDialer()
	r := NewRunner(newMockSource(nil), dialer, nil, nil, false)

	_, err := r.Upload(context.Background(), nil, testSettings, nil)
	require.ErrorIs(t, err, ErrNothingSelected)
	require.Equal(t, 0, dialer.dials)
}

func TestUpload_AllSucceed(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt", "c.txt", "d.txt")
	entries[1].Selected = false

	dialer := newMockDialer()
	src := newMockSource(contents)
	r := NewRunner(src, dialer, nil, nil, false)
	obs := &recordingObserver{}

	summary, err := r.Upload(context.Background(), entries, testSettings, obs)
	require.NoError(t, err)

	require.Equal(t, []string{
		"status 1/3", "progress 1/3",
		"status 2/3", "progress 2/3",
		"status 3/3", "progress 3/3",
	}, obs.calls)

	require.Equal(t, 3, dialer.dials)
	require.Equal(t, []string{"a.txt", "c.txt", "d.txt"}, dialer.stored)
	require.Equal(t, "content of c.txt", dialer.data["c.txt"])
	for _, s := range dialer.settings {
		require.Equal(t, testSettings, s)
	}

	require.Equal(t, 3, summary.Succeeded)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, []string{"/data/a.txt", "/data/c.txt", "/data/d.txt"}, summary.Uploaded)
	require.Empty(t, summary.Failed)
	require.Equal(t, model.RunStateCompleted, summary.State)

	for _, s := range dialer.sessions {
		require.True(t, s.closed)
	}
	for _, rd := range src.opened {
		require.True(t, rd.closed)
	}
	_, opened := src.opened["/data/b.txt"]
	require.False(t, opened)
}

func TestUpload_DoesNotModifyEntries(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	before := make([]model.FileEntry, len(entries))
	copy(before, entries)

	r := NewRunner(newMockSource(contents), newMockDialer(), nil, nil, false)
	_, err := r.Upload(context.Background(), entries, testSettings, nil)
	require.NoError(t, err)
	require.Equal(t, before, entries)
}

func TestUpload_FailureOnKthFile(t *testing.T) {
	for k := 1; k <= 3; k++ {
		t.Run(fmt.Sprintf("connection failure on file %d", k), func(t *testing.T) {
			entries, contents := testEntries("a.txt", "b.txt", "c.txt")
			dialer := newMockDialer()
			dialer.failDial[k] = &destination.ConnectionError{Op: "login", Addr: "ftp.example.com:21", Err: errors.New("530 login incorrect")}

			src := newMockSource(contents)
			r := NewRunner(src, dialer, nil, nil, false)
			obs := &recordingObserver{}

			summary, err := r.Upload(context.Background(), entries, testSettings, obs)
			require.Error(t, err)

			var connErr *destination.ConnectionError
			require.True(t, errors.As(err, &connErr))

			require.Equal(t, k, dialer.dials)
			require.Len(t, dialer.stored, k-1)
			require.Equal(t, k-1, summary.Succeeded)
			require.Equal(t, entries[k-1].FullPath, summary.Failed)
			require.Equal(t, model.RunStateAborted, summary.State)

			// later files never opened
			for _, e := range entries[k-1:] {
				_, opened := src.opened[e.FullPath]
				require.False(t, opened)
			}

			// one status per attempted file, progress only for completed ones
			require.Len(t, obs.calls, k+(k-1))
			require.Equal(t, fmt.Sprintf("status %d/3", k), obs.calls[len(obs.calls)-1])
		})

		t.Run(fmt.Sprintf("transfer failure on file %d", k), func(t *testing.T) {
			entries, contents := testEntries("a.txt", "b.txt", "c.txt")
			dialer := newMockDialer()
			dialer.failStore[entries[k-1].Name] = errors.New("552 quota exceeded")

			src := newMockSource(contents)
			r := NewRunner(src, dialer, nil, nil, false)

			summary, err := r.Upload(context.Background(), entries, testSettings, nil)
			require.Error(t, err)

			var transferErr *TransferError
			require.True(t, errors.As(err, &transferErr))
			require.Equal(t, "store", transferErr.Op)
			require.Equal(t, entries[k-1].FullPath, transferErr.Path)

			require.Equal(t, k, dialer.dials)
			require.Equal(t, k-1, summary.Succeeded)

			// reader and session of the failing file are closed too
			require.True(t, src.opened[entries[k-1].FullPath].closed)
			require.True(t, dialer.sessions[k-1].closed)
		})
	}
}

func TestUpload_OpenFailure(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	src := newMockSource(contents)
	src.openErr["/data/a.txt"] = errors.New("permission denied")
	dialer := newMockDialer()

	r := NewRunner(src, dialer, nil, nil, false)
	summary, err := r.Upload(context.Background(), entries, testSettings, nil)

	var transferErr *TransferError
	require.True(t, errors.As(err, &transferErr))
	require.Equal(t, "open", transferErr.Op)
	require.Contains(t, err.Error(), "permission denied")

	require.Equal(t, 1, dialer.dials)
	require.True(t, dialer.sessions[0].closed)
	require.Empty(t, dialer.stored)
	require.Equal(t, 0, summary.Succeeded)
}

func TestUpload_DryRun(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	dialer := newMockDialer()
	obs := &recordingObserver{}

	r := NewRunner(newMockSource(contents), dialer, nil, nil, true)
	summary, err := r.Upload(context.Background(), entries, testSettings, obs)
	require.NoError(t, err)

	require.Equal(t, 0, dialer.dials)
	require.Equal(t, []string{"status 1/2", "progress 1/2", "status 2/2", "progress 2/2"}, obs.calls)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, model.RunStateCompleted, summary.State)
}

func TestUpload_CancelledContext(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	dialer := newMockDialer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(newMockSource(contents), dialer, nil, nil, false)
	summary, err := r.Upload(ctx, entries, testSettings, nil)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 0, dialer.dials)
	require.Equal(t, model.RunStateAborted, summary.State)
	require.Empty(t, summary.Failed)
}

func TestUpload_CancelBetweenFiles(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt", "c.txt")
	dialer := newMockDialer()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	obs := ObserverFuncs{
		Progress: func(done, total int) {
			if done == 1 {
				cancel()
			}
		},
	}

	r := NewRunner(newMockSource(contents), dialer, nil, nil, false)
	summary, err := r.Upload(ctx, entries, testSettings, obs)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, dialer.dials)
	require.Equal(t, 1, summary.Succeeded)
}

func TestUpload_Journal(t *testing.T) {
	j, err := journal.NewBboltJournal(&config.BboltConfig{Path: filepath.Join(t.TempDir(), "journal.db")})
	require.NoError(t, err)
	defer j.Close()

	entries, contents := testEntries("a.txt", "b.txt", "c.txt")
	dialer := newMockDialer()
	dialer.failStore["b.txt"] = errors.New("451 local error")

	r := NewRunner(newMockSource(contents), dialer, j, nil, false)
	_, err = r.Upload(context.Background(), entries, testSettings, nil)
	require.Error(t, err)

	all, err := j.DumpAll()
	require.NoError(t, err)
	require.Len(t, all, 2)

	a := all["/data/a.txt"]
	require.Equal(t, model.UploadStatusUploaded, a.Status)
	require.Equal(t, "a.txt", a.RemoteName)
	require.Equal(t, entries[0].Size, a.Size)
	require.NotZero(t, a.UploadedAt)
	require.Empty(t, a.Error)

	b := all["/data/b.txt"]
	require.Equal(t, model.UploadStatusFailed, b.Status)
	require.Contains(t, b.Error, "451 local error")

	_, err = j.Get("/data/c.txt")
	require.ErrorIs(t, err, journal.ErrKeyNotFound)
}

func TestUpload_CollisionWarning(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewLoggerWithWriter(&config.LoggerConfig{Level: config.LogLevelInfo, NoColor: true}, &buf)

	a := model.NewFileEntry("same.txt", "/data/one/same.txt", "one/same.txt", 3)
	b := model.NewFileEntry("same.txt", "/data/two/same.txt", "two/same.txt", 3)
	a.Selected, b.Selected = true, true
	src := newMockSource(map[string]string{a.FullPath: "one", b.FullPath: "two"})
	dialer := newMockDialer()

	r := NewRunner(src, dialer, nil, log, false)
	summary, err := r.Upload(context.Background(), []model.FileEntry{a, b}, testSettings, nil)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)

	require.Contains(t, buf.String(), "both upload to same.txt")
	require.Equal(t, "two", dialer.data["same.txt"])
}

// ================== END TO END ==================

func TestUpload_LocalToFTP(t *testing.T) {
	root := testutils.WriteTree(t, t.TempDir(), map[string]int{
		"a.txt": 1024 * 1024,
		"b.txt": 2 * 1024 * 1024,
	})
	server := testutils.StartFTPServer(t, "user", "password")

	dialer, err := destination.NewFTPDialer(&config.FTPConfig{}, &config.CommonDestinationConfig{TimeoutSeconds: 5})
	require.NoError(t, err)

	r := NewRunner(source.NewLocalSource(), dialer, nil, nil, false)
	entries, err := r.Scan(context.Background(), root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, 1.0, entries[0].SizeMB)
	require.Equal(t, 2.0, entries[1].SizeMB)

	model.SetAllSelected(entries, true)

	var progress [][2]int
	obs := ObserverFuncs{Progress: func(done, total int) {
		progress = append(progress, [2]int{done, total})
	}}

	settings := model.ConnectionSettings{Host: server.Host(), Port: server.Port(), Username: "user", Password: "password"}
	summary, err := r.Upload(context.Background(), entries, settings, obs)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, [][2]int{{1, 2}, {2, 2}}, progress)

	files := server.Files()
	require.Len(t, files["/a.txt"], 1024*1024)
	require.Len(t, files["/b.txt"], 2*1024*1024)
	require.Equal(t, 2, server.Logins())
}

func TestUpload_EmptyDirectory(t *testing.T) {
	dialer := newMockDialer()
	r := NewRunner(source.NewLocalSource(), dialer, nil, nil, false)

	entries, err := r.Scan(context.Background(), t.TempDir())
	require.NoError(t, err)
	require.Empty(t, entries)

	_, err = r.Upload(context.Background(), entries, testSettings, nil)
	require.ErrorIs(t, err, ErrNothingSelected)
	require.Equal(t, 0, dialer.dials)
}

func TestScan_MissingRoot(t *testing.T) {
	r := NewRunner(source.NewLocalSource(), newMockDialer(), nil, nil, false)

	entries, err := r.Scan(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Nil(t, entries)

	var fsErr *source.FilesystemError
	require.True(t, errors.As(err, &fsErr))
}

// ================== ASYNC RUN ==================

func drain(events <-chan Event) []Event {
	var out []Event
	for ev := range events {
		out = append(out, ev)
	}
	return out
}

func TestStart_EventOrder(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	r := NewRunner(newMockSource(contents), newMockDialer(), nil, nil, false)

	events := drain(Start(context.Background(), r, entries, testSettings))
	require.NotEmpty(t, events)

	var kinds []string
	var bytesSent int64
	for _, ev := range events {
		switch e := ev.(type) {
		case StatusEvent:
			kinds = append(kinds, "status "+e.Text)
		case ProgressEvent:
			kinds = append(kinds, fmt.Sprintf("progress %d/%d", e.Done, e.Total))
		case ByteEvent:
			bytesSent += e.N
		case DoneEvent:
			kinds = append(kinds, "done")
			require.NoError(t, e.Err)
			require.Equal(t, 2, e.Summary.Succeeded)
		}
	}

	require.Equal(t, []string{"status 1/2", "progress 1/2", "status 2/2", "progress 2/2", "done"}, kinds)
	require.Equal(t, entries[0].Size+entries[1].Size, bytesSent)

	_, isDone := events[len(events)-1].(DoneEvent)
	require.True(t, isDone)
}

func TestStart_Failure(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	dialer := newMockDialer()
	dialer.failDial[2] = &destination.ConnectionError{Op: "dial", Addr: "ftp.example.com:21", Err: errors.New("connection refused")}

	r := NewRunner(newMockSource(contents), dialer, nil, nil, false)
	events := drain(Start(context.Background(), r, entries, testSettings))

	done, ok := events[len(events)-1].(DoneEvent)
	require.True(t, ok)
	var connErr *destination.ConnectionError
	require.True(t, errors.As(done.Err, &connErr))
	require.Equal(t, 1, done.Summary.Succeeded)
	require.Equal(t, "/data/b.txt", done.Summary.Failed)
}

func TestStart_NothingSelected(t *testing.T) {
	r := NewRunner(newMockSource(nil), newMockDialer(), nil, nil, false)
	events := drain(Start(context.Background(), r, nil, testSettings))

	require.Len(t, events, 1)
	done := events[0].(DoneEvent)
	require.ErrorIs(t, done.Err, ErrNothingSelected)
}

func TestStart_CopiesEntries(t *testing.T) {
	entries, contents := testEntries("a.txt", "b.txt")
	r := NewRunner(newMockSource(contents), newMockDialer(), nil, nil, false)

	var wg sync.WaitGroup
	wg.Add(1)
	events := Start(context.Background(), r, entries, testSettings)
	go func() {
		defer wg.Done()
		drain(events)
	}()
	// mutating the caller's slice does not race with the worker
	model.SetAllSelected(entries, false)
	wg.Wait()
}
