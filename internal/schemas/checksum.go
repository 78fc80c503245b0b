package schemas

import (
	"hash/adler32"
	"sort"
	"strings"
)

// GenerateChecksum hashes the sorted stable stamps of a stored entity set.
// A replica recomputes the same hash after applying a batch; a mismatch
// means drift and triggers a snapshot request.
func GenerateChecksum(stamps []string) uint32 {
	sorted := make([]string, len(stamps))
	copy(sorted, stamps)
	sort.Strings(sorted)
	return adler32.Checksum([]byte(strings.Join(sorted, "")))
}
