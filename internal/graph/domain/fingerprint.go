package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Fingerprint hashes a path->content mapping independent of map order.
// Two mappings with equal fingerprints produce identical analyses.
func Fingerprint(files map[string]string) string {
	h := sha256.New()
	for _, p := range SortedKeys(files) {
		c := files[p]
		// length prefixes keep path/content boundaries unambiguous
		h.Write([]byte(strconv.Itoa(len(p)) + ":" + p + strconv.Itoa(len(c)) + ":"))
		h.Write([]byte(c))
	}
	return hex.EncodeToString(h.Sum(nil))
}
