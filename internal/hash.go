package internal

import (
	"crypto/sha256"
	"encoding/hex"
)

// SHA256sum returns the lowercase hex SHA-256 digest of text.
func SHA256sum(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// IsSHA256Hex reports whether s looks like a digest produced by SHA256sum.
func IsSHA256Hex(s string) bool {
	if len(s) != sha256.Size*2 {
		return false
	}

	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}

	return true
}
