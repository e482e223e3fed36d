package workspace

import "svc/internal/content"

const (
	pathModulus    = 1000
	contentModulus = 2000000000
)

// Checksum is the file hash blobs are keyed by: the path bytes (as signed
// chars) summed mod 1000, then every content byte summed mod 2e9. The path
// takes part, so identical content under two names hashes differently.
func Checksum(path string, data []byte) content.Hash {
	var h int64
	for i := 0; i < len(path); i++ {
		h = (h + int64(int8(path[i]))) % pathModulus
	}
	for _, c := range data {
		h = (h + int64(c)) % contentModulus
	}
	return content.Hash(h)
}
