// Package dedup decides whether a post was already processed in a prior
// run. Posts are identified by a compound key: the partition scopes by
// source, the row is a content hash of the link. The same (source, link)
// pair always derives the same key.
package dedup

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"unicode"
)

// PartitionKey is the source name with all whitespace removed. An empty
// name maps to "Unknown" so every post lands in some partition.
func PartitionKey(sourceName string) string {
	var b strings.Builder
	for _, r := range sourceName {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "Unknown"
	}
	return b.String()
}

// RowKey is the URL-safe, unpadded base64 of the SHA-256 of the link.
func RowKey(link string) string {
	sum := sha256.Sum256([]byte(link))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// Keys derives both halves of the compound key at once.
func Keys(sourceName, link string) (partition, row string) {
	return PartitionKey(sourceName), RowKey(link)
}
