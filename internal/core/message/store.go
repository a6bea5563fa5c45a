package message

import (
	"context"
	"errors"
)

// ErrCorrupt is wrapped by load failures caused by a document that exists but
// is not well-formed.
var ErrCorrupt = errors.New("message document corrupted")

// Store persists the message document. Exactly one listener owns a store at a
// time; concurrent writers are not supported.
type Store interface {
	// Init prepares the backing storage, creating an empty document if absent.
	Init(ctx context.Context) error
	// Load reads the full document.
	Load(ctx context.Context) LoadResult
	// Save replaces the full document. Readers never observe a partial write.
	Save(ctx context.Context, doc Document) error
}

// LoadResult is the outcome of Store.Load. Callers decide explicitly what to do
// with a failed load; OrEmpty is the empty-mapping fallback.
type LoadResult struct {
	Document Document
	Err      error
}

// Loaded returns a successful result for doc.
func Loaded(doc Document) LoadResult {
	if doc == nil {
		doc = Document{}
	}
	return LoadResult{Document: doc}
}

// LoadFailed returns a failed result.
func LoadFailed(err error) LoadResult {
	return LoadResult{Err: err}
}

// OK reports whether the document was read successfully.
func (r LoadResult) OK() bool {
	return r.Err == nil
}

// Corrupt reports whether the load failed because the document is malformed.
func (r LoadResult) Corrupt() bool {
	return errors.Is(r.Err, ErrCorrupt)
}

// OrEmpty returns the loaded document, or a new empty document if the load failed.
func (r LoadResult) OrEmpty() Document {
	if r.Err != nil || r.Document == nil {
		return Document{}
	}
	return r.Document
}
