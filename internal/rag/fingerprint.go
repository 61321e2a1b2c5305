package rag

import (
	"crypto/md5"
	"encoding/hex"
)

// Fingerprint computes the deduplication key for a chunk text. MD5 is used
// purely as a fast 128-bit content fingerprint, not for integrity. Identical
// texts always share a fingerprint regardless of which document they came
// from, so the same passage ingested twice is stored once.
func Fingerprint(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
