package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateRange checks that a named numeric parameter is finite and lies in
// [lo, hi]. Use math.Inf for an open side.
func ValidateRange(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be a finite number, got %v", name, v)
	}
	if v < lo {
		return New(ErrCodeInvalidInput, "%s must be >= %v, got %v", name, lo, v)
	}
	if v > hi {
		return New(ErrCodeInvalidInput, "%s must be <= %v, got %v", name, hi, v)
	}
	return nil
}

// ValidateBaseName validates an output base name, such as the --fileimg
// prefix. It must be a simple name: no separators, no leading dot and no
// control characters.
func ValidateBaseName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "file name cannot be empty")
	}
	if len(name) > 255 {
		return New(ErrCodeInvalidPath, "file name too long (max 255 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "file name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "file name cannot start with a dot")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "file name contains invalid characters")
		}
	}
	return nil
}
