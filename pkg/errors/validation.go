package errors

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseQuestID parses a quest identifier given on the command line.
// Quest ids are unsigned 32-bit row ids; 0 is reserved for "absent" and is
// rejected.
func ParseQuestID(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, New(ErrCodeInvalidInput, "quest id cannot be empty")
	}
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, Wrap(ErrCodeInvalidInput, err, "invalid quest id %q", s)
	}
	if id == 0 {
		return 0, New(ErrCodeInvalidInput, "quest id must not be 0")
	}
	return uint32(id), nil
}

// ValidateFilename validates an output base name for safety.
// It ensures the name is a simple basename without path components.
func ValidateFilename(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "filename cannot be empty")
	}

	const maxLength = 255
	if len(name) > maxLength {
		return New(ErrCodeInvalidInput, "filename too long (max %d characters)", maxLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "filename contains invalid characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "filename cannot contain path separators")
	}
	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "filename cannot be %q", name)
	}

	return nil
}
