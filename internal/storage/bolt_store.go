package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Adda-Baaj/khobor-digest/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	cadenceBucket = "cadence"
	monthlyKey    = "monthly"
)

// boltStore implements a Store backed by BoltDB.
type boltStore struct {
	db *bolt.DB
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(cadenceBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{db: db}, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *boltStore) LoadMarker(ctx context.Context) (domain.Marker, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Marker{}, false, err
	}

	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cadenceBucket))
		if bucket == nil {
			return fmt.Errorf("cadence bucket missing")
		}
		if v := bucket.Get([]byte(monthlyKey)); v != nil {
			// bbolt values are only valid inside the transaction.
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return domain.Marker{}, false, err
	}
	if raw == nil {
		return domain.Marker{}, false, nil
	}

	m, err := decodeMarker(raw)
	if err != nil {
		return domain.Marker{}, false, err
	}
	return m, true, nil
}

func (b *boltStore) SaveMarker(ctx context.Context, m domain.Marker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := encodeMarker(m)
	if err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(cadenceBucket))
		if bucket == nil {
			return fmt.Errorf("cadence bucket missing")
		}
		return bucket.Put([]byte(monthlyKey), raw)
	})
}
