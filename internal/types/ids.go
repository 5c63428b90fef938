package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ID is a custom type that wraps a UUID string.
// It provides type-safe UUID generation, validation, and serialization.
type ID string

// NewID generates a new UUID v4 and returns it as an ID.
func NewID() ID {
	return ID(uuid.New().String())
}

// ParseID parses and validates a string as a UUID, returning an ID.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("invalid UUID format: %w", err)
	}
	return ID(parsed.String()), nil
}

// String returns the string representation of the ID.
func (id ID) String() string {
	return string(id)
}

// IsZero checks if the ID is empty or zero-valued.
func (id ID) IsZero() bool {
	return id == ""
}

// NewPredictionID derives a prediction identity from its content and creation
// time. The content hash prefix makes duplicate submissions visible in logs
// while the nanosecond suffix keeps ids unique across rapid submissions.
func NewPredictionID(symbol string, direction Direction, backend string, at time.Time) ID {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", symbol, direction, backend)))
	return ID(fmt.Sprintf("%s-%d", hex.EncodeToString(sum[:8]), at.UnixNano()))
}
