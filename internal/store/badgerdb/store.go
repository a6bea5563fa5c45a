// Package badgerdb provides a message store backed by an embedded Badger
// key-value database. Each document entry is stored under its own key, so the
// full-document Save only rewrites entries that changed.
package badgerdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/hay-kot/postbox/internal/core/message"
)

const keyPrefix = "msg:"

// Store implements message.Store on top of Badger. Badger holds a directory
// lock, so a second process cannot open the same store.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a Badger database in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Init is a no-op: an empty database is an empty document.
func (s *Store) Init(ctx context.Context) error {
	return nil
}

// Load reads every entry under the message prefix.
func (s *Store) Load(ctx context.Context) message.LoadResult {
	doc := message.Document{}

	err := s.db.View(func(txn *badger.Txn) error {
		raw, err := scan(txn)
		if err != nil {
			return err
		}
		for key, val := range raw {
			var rec message.Record
			if err := json.Unmarshal(val, &rec); err != nil {
				return fmt.Errorf("decode %s: %w: %v", key, message.ErrCorrupt, err)
			}
			doc[key] = rec
		}
		return nil
	})
	if err != nil {
		return message.LoadFailed(err)
	}

	return message.Loaded(doc)
}

// Save makes the stored entries equal to doc in a single transaction.
func (s *Store) Save(ctx context.Context, doc message.Document) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		existing, err := scan(txn)
		if err != nil {
			return err
		}

		for key, rec := range doc {
			val, err := json.Marshal(rec)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", key, err)
			}
			if old, ok := existing[key]; ok && bytes.Equal(old, val) {
				continue
			}
			if err := txn.Set([]byte(keyPrefix+key), val); err != nil {
				return fmt.Errorf("set %s: %w", key, err)
			}
		}

		for key := range existing {
			if _, ok := doc[key]; ok {
				continue
			}
			if err := txn.Delete([]byte(keyPrefix + key)); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
		}

		return nil
	})
	if errors.Is(err, badger.ErrTxnTooBig) {
		return fmt.Errorf("save messages: document changes exceed one transaction: %w", err)
	}
	if err != nil {
		return fmt.Errorf("save messages: %w", err)
	}
	return nil
}

// scan returns the raw values keyed by timestamp (prefix stripped).
func scan(txn *badger.Txn) (map[string][]byte, error) {
	out := make(map[string][]byte)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	prefix := []byte(keyPrefix)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := string(item.Key()[len(prefix):])
		val, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		out[key] = val
	}

	return out, nil
}
