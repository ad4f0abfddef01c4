package handlers

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared request-body validator.
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validation limits.
const (
	MaxEmailLength = 254
	MaxNameLength  = 255
)

// SanitizeEmail trims and lowercases email; returns empty if invalid length.
func SanitizeEmail(email string) string {
	s := strings.TrimSpace(strings.ToLower(email))
	if len(s) > MaxEmailLength {
		return ""
	}
	return s
}
