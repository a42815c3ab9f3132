package uid

import "github.com/google/uuid"

// UUID generates version 7 UUID strings, so correlation and event ids sort
// by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	// NewV7 fails only when the random source does
	return uuid.NewString()
}
