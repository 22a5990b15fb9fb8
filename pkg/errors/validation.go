package errors

import (
	"strings"
	"unicode"
)

// ValidateColumnName validates a dataset column name supplied by a user.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 128 characters
func ValidateColumnName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidDataset, "column name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidDataset, "column name too long (max 128 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidDataset, "column name contains invalid control characters")
		}
	}

	return nil
}

// ValidateLabel validates a category or hue label before it is written into
// rendered output.
func ValidateLabel(label string) error {
	const maxLabelLength = 256
	if len(label) > maxLabelLength {
		return New(ErrCodeInvalidDataset, "label too long (max %d characters)", maxLabelLength)
	}
	for _, r := range label {
		if r == '\x00' || (unicode.IsControl(r) && r != '\t') {
			return New(ErrCodeInvalidDataset, "label contains invalid characters")
		}
	}
	return nil
}

// ValidatePath validates an output file path for safety.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	for _, part := range strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' }) {
		if part == ".." {
			return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
		}
	}

	return nil
}

// ValidateURL validates a backend connection URL.
// The URL must start with one of the given schemes (e.g. "redis://").
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}

	return New(ErrCodeInvalidInput, "URL must use one of the schemes: %s", strings.Join(schemes, ", "))
}
