// Package randid provides random ID generation utilities.
package randid

import "math/rand/v2"

// RequestLength is the length of IDs attached to gateway requests.
const RequestLength = 12

const chars = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate creates a random alphanumeric ID of the specified length.
func Generate(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))]
	}
	return string(b)
}

// Request returns an ID for correlating one HTTP request across log lines.
func Request() string {
	return Generate(RequestLength)
}
