package domain

import "github.com/google/uuid"

// NewUUID returns a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}
