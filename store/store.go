package store

import (
	"errors"
	"unicode/utf16"
)

var (
	ErrKeyNotFound   = errors.New("key not found")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

// Writer is the write primitive every caller of persistent storage uses.
type Writer interface {
	Set(key, value string) error
}

type Store interface {
	Writer

	// Get retrieves the value stored under key
	Get(key string) (string, error)

	// Delete removes a key
	Delete(key string) error

	// Exists checks if a key exists
	Exists(key string) bool
}

// IsQuotaExceeded reports whether err means the store ran out of room.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}

// Len returns the length of s in UTF-16 code units, the unit browsers
// use for string length and storage quotas.
func Len(s string) int {
	n := 0
	for _, r := range s {
		if l := utf16.RuneLen(r); l > 0 {
			n += l
		} else {
			n++
		}
	}
	return n
}
