// Package storage holds file content addressed by its SHA-256 digest.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
)

// Key returns the content address of b
func Key(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// objectName spreads keys over 256 prefixes
func objectName(key string) string {
	if len(key) < 2 {
		return "blobs/" + key
	}
	return "blobs/" + key[:2] + "/" + key
}
