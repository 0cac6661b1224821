// Package checksum computes content digests used as note version tags.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Matches reports whether tag is empty or equals the digest of data.
// Surrounding ETag quotes are ignored.
func Matches(data []byte, tag string) bool {
	tag = strings.Trim(strings.TrimSpace(tag), `"`)
	return tag == "" || tag == Sum(data)
}
