package journal

import (
	"errors"
	"fmt"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
)

// JournalProvider keeps the outcome of every upload attempt, keyed by the local full path
type JournalProvider interface {
	Record(key string, rec model.UploadRecord) error
	Get(key string) (*model.UploadRecord, error)
	GetByPrefix(prefix string) (map[string]model.UploadRecord, error)
	DumpAll() (map[string]model.UploadRecord, error)
	Delete(key string) error
	Count() (int64, error)
	Close() error
}

var (
	ErrKeyNotFound    error = errors.New("key not found")
	ErrBucketNotFound error = errors.New("bucket not found")
)

func CreateJournal(cfg *config.JournalConfig) (JournalProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid journal configuration: %w", err)
	}

	switch cfg.JournalType {
	case config.JournalTypeBbolt:
		return NewBboltJournal(cfg.Bbolt)
	default:
		return nil, fmt.Errorf("unsupported journal type: %s", cfg.JournalType)
	}
}
