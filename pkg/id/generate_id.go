package id

import (
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
)

// NewRequestID returns a random (v4) UUID as 32 lowercase hex characters.
func NewRequestID() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}

// IsRequestID reports whether s has the shape NewRequestID produces.
func IsRequestID(s string) bool {
	if len(s) != 32 || strings.ToLower(s) != s {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
