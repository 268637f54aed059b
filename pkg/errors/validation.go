package errors

import (
	"strings"
	"unicode"
)

// maxNodeIDLen bounds ids accepted from HTTP paths and status payloads.
const maxNodeIDLen = 256

// ValidateNodeID validates a node identifier received from outside the process
// (toggle requests, status updates). Ids become SVG attribute values and storage
// entries, so the rules are conservative:
//   - No empty ids
//   - No control characters or null bytes
//   - No "->" sequence (it would be ambiguous inside an edge title)
//   - Maximum length of 256 bytes
func ValidateNodeID(id string) error {
	if strings.TrimSpace(id) == "" {
		return New(ErrCodeInvalidNodeID, "node id cannot be empty")
	}
	if len(id) > maxNodeIDLen {
		return New(ErrCodeInvalidNodeID, "node id too long (max %d characters)", maxNodeIDLen)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeID, "node id contains invalid control characters")
		}
	}
	if strings.Contains(id, "->") {
		return New(ErrCodeInvalidNodeID, "node id cannot contain %q", "->")
	}
	return nil
}
