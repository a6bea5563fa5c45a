// Package jsonfile provides a JSON file-based message store.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/hay-kot/postbox/internal/core/message"
)

// Store implements message.Store using a single pretty-printed JSON document.
//
// The mutex only serializes callers within one process. Only one listener may
// own a document at a time; see Lock.
type Store struct {
	path string
	mu   sync.RWMutex
}

// New creates a new JSON file store at the given path.
func New(path string) *Store {
	return &Store{path: path}
}

// Init creates the storage directory and an empty document if none exists.
// An existing document is left untouched, even when malformed.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat data file: %w", err)
	}

	return s.save(message.Document{})
}

// Load reads the full document. A missing or empty file yields an empty document.
func (s *Store) Load(ctx context.Context) message.LoadResult {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.load()
	if err != nil {
		return message.LoadFailed(err)
	}
	return message.Loaded(doc)
}

// Save replaces the document on disk.
func (s *Store) Save(ctx context.Context, doc message.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(doc)
}

// load reads the data file from disk.
// Returns empty Document if file doesn't exist.
func (s *Store) load() (message.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return message.Document{}, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}

	if len(data) == 0 {
		return message.Document{}, nil
	}

	var doc message.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w: %v", s.path, message.ErrCorrupt, err)
	}

	// A literal `null` document decodes to a nil map.
	if doc == nil {
		doc = message.Document{}
	}

	return doc, nil
}

// save writes the data file to disk atomically.
// Uses write-to-temp-then-rename so readers never see a partial document.
func (s *Store) save(doc message.Document) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	if doc == nil {
		doc = message.Document{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}
