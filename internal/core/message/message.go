// Package message defines the message record, the persisted document and the
// storage contract shared by the gateway, the listener and the store backends.
package message

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

// TimestampLayout is the ISO-8601 layout used for document keys. It carries
// microsecond precision and no zone offset (local time).
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Record is a single user submission.
type Record struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// Document maps arrival timestamps to records.
type Document map[string]Record

// Timestamp returns the document key for a message processed at t.
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Keys returns the document keys in ascending (chronological) order.
func (d Document) Keys() []string {
	keys := lo.Keys(d)
	slices.Sort(keys)
	return keys
}

// Put stores rec under the timestamp for t and returns the key used.
// An existing entry with the same key is replaced.
func (d Document) Put(t time.Time, rec Record) string {
	key := Timestamp(t)
	d[key] = rec
	return key
}
