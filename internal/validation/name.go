package validation

import (
	"errors"
	"strings"
	"unicode"
)

const maxSetNameLength = 128

var (
	ErrSetNameEmpty          = errors.New("set name cannot be empty")
	ErrSetNameTooLong        = errors.New("set name too long (max 128 characters)")
	ErrSetNameTraversal      = errors.New("set name cannot contain '..'")
	ErrSetNamePathSeparator  = errors.New("set name cannot contain path separators")
	ErrSetNameInvalidCharSet = errors.New("set name contains invalid characters")
)

// IsValidSetName validates a ban list name used for ipset names and backup
// file names.
func IsValidSetName(name string) error {
	if name == "" {
		return ErrSetNameEmpty
	}
	if len(name) > maxSetNameLength {
		return ErrSetNameTooLong
	}
	if strings.Contains(name, "..") {
		return ErrSetNameTraversal
	}
	if strings.ContainsAny(name, `/\`) {
		return ErrSetNamePathSeparator
	}

	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			continue
		}
		return ErrSetNameInvalidCharSet
	}

	return nil
}
