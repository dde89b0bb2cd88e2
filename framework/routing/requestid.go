package routing

import (
	"crypto/rand"
	"encoding/hex"
)

// newRequestID returns a fresh 128-bit hex id keying one dispatch's container
// scope. Collision resistance matters here: two concurrent requests sharing
// an id would share a request-cache partition.
func newRequestID() string {
	b := make([]byte, 16)
	//nolint:errcheck // crypto/rand.Read never fails on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}
