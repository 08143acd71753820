package journal

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/olegkotsar/yomins-upload/config"
	"github.com/olegkotsar/yomins-upload/model"
	"go.etcd.io/bbolt"
)

var _ JournalProvider = (*BboltJournal)(nil)

type BboltJournal struct {
	db     *bbolt.DB
	bucket string
}

// NewBboltJournal opens (or creates) the journal database described by cfg
func NewBboltJournal(cfg *config.BboltConfig) (*BboltJournal, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bbolt config: %w", err)
	}

	db, err := bbolt.Open(cfg.Path, cfg.Mode, nil)
	if err != nil {
		return nil, err
	}
	db.NoSync = cfg.NoSync

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cfg.Bucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BboltJournal{
		db:     db,
		bucket: cfg.Bucket,
	}, nil
}

func (j *BboltJournal) Close() error {
	return j.db.Close()
}

func (j *BboltJournal) Record(key string, rec model.UploadRecord) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		val, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), val)
	})
}

func (j *BboltJournal) Get(key string) (*model.UploadRecord, error) {
	var rec model.UploadRecord
	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		val := b.Get([]byte(key))
		if val == nil {
			return ErrKeyNotFound
		}
		return json.Unmarshal(val, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (j *BboltJournal) DumpAll() (map[string]model.UploadRecord, error) {
	return j.GetByPrefix("")
}

func (j *BboltJournal) GetByPrefix(prefix string) (map[string]model.UploadRecord, error) {
	results := make(map[string]model.UploadRecord)

	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}

		c := b.Cursor()

		for k, v := c.Seek([]byte(prefix)); k != nil && strings.HasPrefix(string(k), prefix); k, v = c.Next() {
			var rec model.UploadRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal error for key %s: %w", k, err)
			}
			results[string(k)] = rec
		}

		return nil
	})

	return results, err
}

func (j *BboltJournal) Delete(key string) error {
	return j.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		if b.Get([]byte(key)) == nil {
			return ErrKeyNotFound
		}
		return b.Delete([]byte(key))
	})
}

func (j *BboltJournal) Count() (int64, error) {
	var count int64
	err := j.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(j.bucket))
		if b == nil {
			return ErrBucketNotFound
		}
		count = int64(b.Stats().KeyN)
		return nil
	})
	return count, err
}
