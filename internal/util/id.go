package util

import "github.com/google/uuid"

// NewID returns a random correlation ID.
func NewID() string {
	return uuid.NewString()
}
