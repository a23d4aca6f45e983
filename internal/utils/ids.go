package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// NewRandomID returns a new unique ID. IDs double as ETags; any update to an
// object mints a fresh one.
func NewRandomID() string {
	return uuid.New().String()
}

// NewID returns a deterministic ID from the given seed, for tests.
func NewID(seed int64) string {
	return uuid.NewMD5(uuid.NameSpaceOID, []byte(fmt.Sprintf("gantry:%d", seed))).String()
}

// IsValidID returns true if the given string is an ID we might have minted.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
