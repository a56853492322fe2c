// Package store persists REPL sessions: command history and user-defined
// words, in a bbolt database.
package store

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	bucketCmd   = "cmd"
	bucketWords = "words"
)

var initDB = map[string](func(*bolt.Tx) error){}

// Store is a session database.
type Store struct {
	db *bolt.DB
}

// Open opens the database at path, creating it and any missing buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session store %v: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
