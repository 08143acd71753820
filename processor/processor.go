package processor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/olegkotsar/yomins-upload/destination"
	"github.com/olegkotsar/yomins-upload/journal"
	"github.com/olegkotsar/yomins-upload/logger"
	"github.com/olegkotsar/yomins-upload/model"
	"github.com/olegkotsar/yomins-upload/source"
)

type Runner struct {
	source      source.SourceProvider
	destination destination.Dialer
	journal     journal.JournalProvider
	logger      logger.Logger
	dryRun      bool
}

// NewRunner creates a new Runner with the provided dependencies.
// journal may be nil, in which case outcomes are only logged.
func NewRunner(src source.SourceProvider, dst destination.Dialer, j journal.JournalProvider, log logger.Logger, dryRun bool) *Runner {
	// Use NoOpLogger if none provided
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Runner{
		source:      src,
		destination: dst,
		journal:     j,
		logger:      log,
		dryRun:      dryRun,
	}
}

// Scan enumerates rootPath and returns a fresh batch with nothing selected
func (r *Runner) Scan(ctx context.Context, rootPath string) ([]model.FileEntry, error) {
	r.logger.Debug("Scanning %s", rootPath)

	start := time.Now()
	entries, err := r.source.Scan(ctx, rootPath)
	if err != nil {
		r.logger.Error("Scan failed: %v", err)
		return nil, err
	}

	var totalBytes int64
	for _, e := range entries {
		totalBytes += e.Size
	}
	r.logger.Info("Found %d files (%.2f MB) in %s", len(entries), model.BytesToMegabytes(totalBytes), time.Since(start).Round(time.Millisecond))
	return entries, nil
}

// Upload sends the selected entries to the destination one by one, in list order.
// A fresh connection is dialed for every file. The first failure aborts the batch:
// the returned summary tells how far the run got.
func (r *Runner) Upload(ctx context.Context, entries []model.FileEntry, settings model.ConnectionSettings, observer Observer) (*model.UploadSummary, error) {
	if observer == nil {
		observer = ObserverFuncs{}
	}

	selected := model.SelectedEntries(entries)
	total := len(selected)
	summary := &model.UploadSummary{
		Total:    total,
		Uploaded: make([]string, 0, total),
		State:    model.RunStateIdle,
	}

	if total == 0 {
		r.logger.Info("Nothing to upload")
		return summary, ErrNothingSelected
	}

	summary.State = model.RunStateRunning
	if r.dryRun {
		r.logger.Info("Dry-run mode: %d files would be uploaded to %s", total, settings.Address())
	} else {
		r.logger.Info("Uploading %d files to %s", total, settings.Address())
	}
	r.warnCollisions(selected)

	for i, entry := range selected {
		index := i + 1

		if err := ctx.Err(); err != nil {
			summary.State = model.RunStateAborted
			r.logger.Warn("Upload cancelled after %d of %d files", summary.Succeeded, total)
			return summary, fmt.Errorf("upload cancelled: %w", err)
		}

		observer.OnStatus(fmt.Sprintf("%d/%d", index, total))
		remote := r.destination.RemotePath(entry)
		log := r.logger.WithFields(map[string]interface{}{"file": entry.RelPath, "remote": remote})

		if r.dryRun {
			log.Info("Would upload (%.2f MB)", entry.SizeMB)
		} else {
			start := time.Now()
			if err := r.uploadOne(ctx, entry, remote, settings, observer); err != nil {
				log.Error("Upload failed: %v", err)
				r.record(entry, remote, err)
				summary.Failed = entry.FullPath
				summary.State = model.RunStateAborted
				return summary, err
			}
			log.Debug("Uploaded in %s", time.Since(start).Round(time.Millisecond))
			r.record(entry, remote, nil)
		}

		summary.Succeeded++
		summary.Uploaded = append(summary.Uploaded, entry.FullPath)
		observer.OnProgress(index, total)
	}

	summary.State = model.RunStateCompleted
	r.logger.Info("Done: %d/%d files uploaded", summary.Succeeded, total)
	return summary, nil
}

// uploadOne dials, streams one file and closes everything it opened
func (r *Runner) uploadOne(ctx context.Context, entry model.FileEntry, remote string, settings model.ConnectionSettings, observer Observer) error {
	sess, err := r.destination.Dial(ctx, settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			r.logger.Debug("Failed to close session for %s: %v", remote, err)
		}
	}()

	reader, err := r.source.Open(ctx, entry)
	if err != nil {
		return &TransferError{Op: "open", Path: entry.FullPath, Remote: remote, Err: err}
	}
	defer reader.Close()

	var content io.Reader = reader
	if bo, ok := observer.(ByteObserver); ok {
		content = bo.WrapReader(entry, reader)
	}

	if err := sess.Store(remote, content); err != nil {
		return &TransferError{Op: "store", Path: entry.FullPath, Remote: remote, Err: err}
	}
	return nil
}

// record writes the outcome to the journal. Journal failures never abort a run.
func (r *Runner) record(entry model.FileEntry, remote string, uploadErr error) {
	if r.journal == nil {
		return
	}

	rec := model.UploadRecord{
		Size:       entry.Size,
		RemoteName: remote,
		Status:     model.UploadStatusUploaded,
		UploadedAt: time.Now().Unix(),
	}
	if uploadErr != nil {
		rec.Status = model.UploadStatusFailed
		rec.Error = uploadErr.Error()
	}

	if err := r.journal.Record(entry.FullPath, rec); err != nil {
		r.logger.Warn("Failed to record %s in journal: %v", entry.FullPath, err)
	}
}

// warnCollisions logs entries that map to the same remote path. The later
// upload overwrites the earlier one on the server.
func (r *Runner) warnCollisions(selected []model.FileEntry) {
	seen := make(map[string]string, len(selected))
	for _, entry := range selected {
		remote := r.destination.RemotePath(entry)
		if prev, ok := seen[remote]; ok {
			r.logger.Warn("%s and %s both upload to %s, the later one overwrites the earlier", prev, entry.FullPath, remote)
			continue
		}
		seen[remote] = entry.FullPath
	}
}
