package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

// Bucket and key used for the notes backup blob.
const (
	BackupBucket = "NotesBackup"
	BackupKey    = "backup_data"
)

// Preferences is a small key/value store of named string values, grouped
// into buckets.
type Preferences struct {
	db *bbolt.DB
}

// Open opens (or creates) the preferences file at path.
func Open(path string) (*Preferences, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create preferences directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BackupBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create buckets: %w", err)
	}

	return &Preferences{db: db}, nil
}

// GetString returns the stored value, or "" when the bucket or key is absent.
func (p *Preferences) GetString(bucket, key string) (string, error) {
	var out string
	err := p.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucket))
		if b == nil {
			return nil
		}
		out = string(b.Get([]byte(key)))
		return nil
	})
	return out, err
}

func (p *Preferences) PutString(bucket, key, value string) error {
	if key == "" {
		return errors.New("preference key is required")
	}
	return p.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(bucket))
		if err != nil {
			return err
		}
		return b.Put([]byte(key), []byte(value))
	})
}

func (p *Preferences) Close() error {
	return p.db.Close()
}
