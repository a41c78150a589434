package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Fixed storage keys for locally persisted browser-session state. These are
// the only buckets in the data file.
const (
	CartBucket  = "emberwick-cart"
	DraftBucket = "emberwick-checkout"
)

// Store is the embedded durable store for per-session cart and checkout
// state. Writes are last-write-wins across processes sharing the file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the data file and ensures both buckets
// exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range []string{CartBucket, DraftBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close releases the underlying data file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put writes a record into a bucket.
func (s *Store) Put(bucket, key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Put([]byte(key), value)
	})
}

// Get reads a record from a bucket. A missing key returns (nil, nil).
func (s *Store) Get(bucket, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket([]byte(bucket)).Get([]byte(key)); raw != nil {
			value = make([]byte, len(raw))
			copy(value, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Delete removes a record from a bucket. Deleting an absent key is a no-op.
func (s *Store) Delete(bucket, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucket)).Delete([]byte(key))
	})
}
