package push

import (
	"errors"
	"strings"
)

// Structural device-token checks. These catch values that clients
// sometimes register by mistake (serialized placeholders, truncated
// copies with embedded whitespace). A token failing any check is
// treated as absent and is safe to clear without contacting the
// provider.
var (
	ErrTokenEmpty       = errors.New("device token is empty")
	ErrTokenWhitespace  = errors.New("device token contains whitespace")
	ErrTokenPlaceholder = errors.New("device token is a null/undefined placeholder")
)

// ValidateToken reports why a device token is structurally invalid,
// or nil if it passes all checks.
func ValidateToken(token string) error {
	if token == "" {
		return ErrTokenEmpty
	}
	if strings.ContainsAny(token, " \t\n\r") {
		return ErrTokenWhitespace
	}
	if token == "null" || token == "undefined" {
		return ErrTokenPlaceholder
	}
	return nil
}

// IsValidToken reports whether a device token passes all structural checks.
func IsValidToken(token string) bool {
	return ValidateToken(token) == nil
}
