package id

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// New generates a ULID used as a correlation ID for deliveries that arrive
// without a message ID (local testing, hand-crafted requests).
func New() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
