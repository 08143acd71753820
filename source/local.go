package source

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/olegkotsar/yomins-upload/model"
)

var _ SourceProvider = (*LocalSource)(nil)

// LocalSource enumerates files on the local filesystem
type LocalSource struct{}

func NewLocalSource() *LocalSource {
	return &LocalSource{}
}

// Scan walks root recursively and returns one unselected entry per file.
// Symlinked directories are not followed.
func (s *LocalSource) Scan(ctx context.Context, root string) ([]model.FileEntry, error) {
	if root == "" {
		return nil, &FilesystemError{Op: "scan", Path: root, Err: errors.New("root path is empty")}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, &FilesystemError{Op: "scan", Path: root, Err: err}
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, &FilesystemError{Op: "scan", Path: absRoot, Err: err}
	}
	if !info.IsDir() {
		return nil, &FilesystemError{Op: "scan", Path: absRoot, Err: errors.New("not a directory")}
	}

	var entries []model.FileEntry
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &FilesystemError{Op: "scan", Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		fi, err := os.Stat(p)
		if err != nil {
			return &FilesystemError{Op: "stat", Path: p, Err: err}
		}
		if !fi.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return &FilesystemError{Op: "scan", Path: p, Err: err}
		}

		entries = append(entries, model.NewFileEntry(d.Name(), p, filepath.ToSlash(rel), fi.Size()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	if entries == nil {
		entries = []model.FileEntry{}
	}
	return entries, nil
}

// Open opens the local file behind entry for reading
func (s *LocalSource) Open(_ context.Context, entry model.FileEntry) (io.ReadCloser, error) {
	return os.Open(entry.FullPath)
}
