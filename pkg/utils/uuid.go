package utils

import "github.com/google/uuid"

// NewID returns a random (v4) UUID string used for job and extraction IDs.
func NewID() string {
	return uuid.NewString()
}
