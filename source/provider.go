package source

import (
	"context"
	"fmt"
	"io"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
)

type SourceProvider interface {
	// Scan lists every file under root. The result is all-or-nothing:
	// on error no entries are returned.
	Scan(ctx context.Context, root string) ([]model.FileEntry, error)
	// Open returns a reader over the entry's content
	Open(ctx context.Context, entry model.FileEntry) (io.ReadCloser, error)
}

func CreateSource(cfg *config.SourceConfig) (SourceProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid source configuration: %w", err)
	}

	switch cfg.SourceType {
	case config.SourceTypeLocal:
		return NewLocalSource(), nil
	case config.SourceTypeS3:
		return NewS3Source(cfg.S3, &cfg.Common)
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.SourceType)
	}
}
