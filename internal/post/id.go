package post

import (
	"github.com/google/uuid"
)

const idPrefix = "post_"

// NewID mints a post identity. UUIDv7 is time ordered and carries a
// monotonic counter, so ids minted in the same millisecond still differ.
func NewID() (string, error) {
	u, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return idPrefix + u.String(), nil
}
