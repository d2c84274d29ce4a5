package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	readsBucket = []byte("reads")
	prefsBucket = []byte("prefs")
)

// MemoryPath opens a throwaway database removed on Close.
const MemoryPath = ":memory:"

var ErrNotFound = errors.New("not found")

type Store struct {
	db      *bolt.DB
	tempDir string
}

func NewStore(dbPath string, timeout time.Duration) (*Store, error) {
	if timeout <= 0 {
		timeout = 1 * time.Second
	}

	var tempDir string
	if dbPath == MemoryPath {
		dir, err := os.MkdirTemp("", "frontpage-*")
		if err != nil {
			return nil, fmt.Errorf("creating temporary database: %w", err)
		}
		tempDir = dir
		dbPath = filepath.Join(dir, "state.db")
	} else if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		if tempDir != "" {
			os.RemoveAll(tempDir)
		}
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{readsBucket, prefsBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db, tempDir: tempDir}, nil
}

func (s *Store) Close() error {
	err := s.db.Close()
	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}
	return err
}

// MarkRead stores mark, stamping ReadAt when it is unset.
func (s *Store) MarkRead(mark *ReadMark) error {
	if mark == nil || mark.Key == "" {
		return fmt.Errorf("read mark needs a key")
	}
	if mark.ReadAt.IsZero() {
		mark.ReadAt = time.Now()
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(mark)
		if err != nil {
			return err
		}
		return tx.Bucket(readsBucket).Put([]byte(mark.Key), data)
	})
}

func (s *Store) MarkUnread(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(readsBucket).Delete([]byte(key))
	})
}

func (s *Store) IsRead(key string) (bool, error) {
	var read bool
	err := s.db.View(func(tx *bolt.Tx) error {
		read = tx.Bucket(readsBucket).Get([]byte(key)) != nil
		return nil
	})
	return read, err
}

// ReadKeys returns the subset of keys that have been read.
func (s *Store) ReadKeys(keys []string) (map[string]bool, error) {
	read := make(map[string]bool)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(readsBucket)
		for _, k := range keys {
			if k != "" && b.Get([]byte(k)) != nil {
				read[k] = true
			}
		}
		return nil
	})
	return read, err
}

// RecentReads lists read marks, most recently read first.
func (s *Store) RecentReads(limit int) ([]*ReadMark, error) {
	var marks []*ReadMark
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(readsBucket).ForEach(func(_ []byte, v []byte) error {
			var mark ReadMark
			if err := json.Unmarshal(v, &mark); err != nil {
				return nil
			}
			marks = append(marks, &mark)
			return nil
		})
	})
	sort.Slice(marks, func(i, j int) bool {
		return marks[i].ReadAt.After(marks[j].ReadAt)
	})
	if limit > 0 && len(marks) > limit {
		marks = marks[:limit]
	}
	return marks, err
}

// PruneReads deletes marks read before cutoff and returns how many went.
func (s *Store) PruneReads(cutoff time.Time) (int, error) {
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(readsBucket)
		var stale [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var mark ReadMark
			if err := json.Unmarshal(v, &mark); err != nil {
				return nil
			}
			if mark.ReadAt.Before(cutoff) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		// deleting while iterating a cursor skips entries
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	return removed, err
}

func (s *Store) SetPreference(name, value string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(prefsBucket).Put([]byte(name), []byte(value))
	})
}

// Preference returns the stored value of name or ErrNotFound.
func (s *Store) Preference(name string) (string, error) {
	var value string
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(prefsBucket).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("preference %s: %w", name, ErrNotFound)
		}
		value = string(data)
		return nil
	})
	return value, err
}
