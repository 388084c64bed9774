package errors

import (
	"strings"
	"unicode"
)

// MaxNodeIDLength bounds node identifiers accepted from topology snapshots.
const MaxNodeIDLength = 512

// ValidateNodeID checks that id is usable as a topology node identifier.
//
// Rules:
//   - not empty
//   - at most [MaxNodeIDLength] bytes
//   - no control characters or null bytes
//   - none of the reserved sequences (typically the edge id separator)
func ValidateNodeID(id string, reserved ...string) error {
	if id == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > MaxNodeIDLength {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d bytes)", MaxNodeIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id %q contains control characters", id)
		}
	}
	for _, seq := range reserved {
		if seq != "" && strings.Contains(id, seq) {
			return New(ErrCodeInvalidNodeID, "node id %q contains reserved sequence %q", id, seq)
		}
	}
	return nil
}

// ValidateDimension rejects negative or non-finite canvas dimensions.
// Zero means "unknown" and is accepted.
func ValidateDimension(name string, v float64) error {
	if v != v || v < 0 || v > 1e9 {
		return New(ErrCodeInvalidOptions, "%s must be a non-negative finite number, got %v", name, v)
	}
	return nil
}
