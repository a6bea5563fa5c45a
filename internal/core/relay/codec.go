// Package relay implements the one-way datagram channel between the submission
// gateway and the ingestion listener. Delivery is fire-and-forget: there is no
// acknowledgment, no sequence number and no retry.
package relay

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/hay-kot/postbox/internal/core/message"
)

// MaxDatagram is the largest payload a single IPv4 UDP datagram can carry.
const MaxDatagram = 65507

var (
	// ErrMalformed is returned by Decode for payloads that are not a JSON object.
	ErrMalformed = errors.New("malformed datagram")
	// ErrTooLarge is returned when an encoded record exceeds the datagram ceiling.
	ErrTooLarge = errors.New("datagram too large")
)

// Encode serializes rec into a datagram payload.
func Encode(rec message.Record) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// Decode parses a datagram payload. Missing fields decode as empty text.
func Decode(payload []byte) (message.Record, error) {
	if !utf8.Valid(payload) {
		return message.Record{}, fmt.Errorf("%w: invalid utf-8", ErrMalformed)
	}

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return message.Record{}, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	var rec message.Record
	if err := json.Unmarshal(trimmed, &rec); err != nil {
		return message.Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return rec, nil
}
