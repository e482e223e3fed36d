package commit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Scheme selects how commit ids are derived.
type Scheme string

const (
	// SchemeChecksum is the compatible checksum derivation. It is not
	// collision resistant.
	SchemeChecksum Scheme = "checksum"
	// SchemeXXH3 derives a 64-bit xxh3 digest over the same inputs.
	SchemeXXH3 Scheme = "xxh3"
)

const (
	addWeight    = 376591
	removeWeight = 85973
	changeWeight = 9573681

	messageModulus = 1000
	nameModulus    = 15485863
	charModulus    = 37

	// ids are rendered into a 16 byte buffer, one byte is the terminator
	maxIDDigits = 15
)

// ParseScheme validates a configured scheme name. Empty selects the
// checksum scheme.
func ParseScheme(s string) (Scheme, error) {
	switch Scheme(strings.ToLower(s)) {
	case "", SchemeChecksum:
		return SchemeChecksum, nil
	case SchemeXXH3:
		return SchemeXXH3, nil
	default:
		return "", fmt.Errorf("unknown id scheme %q", s)
	}
}

// SortRecords orders records by file name, ASCII case-insensitive first and
// case-sensitive on ties. Records with identical names keep their order.
func SortRecords(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if cmp := compareFold(a.FileName, b.FileName); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.FileName, b.FileName)
	})
}

func compareFold(a, b string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		ca, cb := lower(a[i]), lower(b[i])
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// DeriveID computes the id of already sorted records.
func DeriveID(scheme Scheme, message string, records []Record) (string, error) {
	switch scheme {
	case "", SchemeChecksum:
		return checksumID(message, records), nil
	case SchemeXXH3:
		return xxh3ID(message, records), nil
	default:
		return "", fmt.Errorf("unknown id scheme %q", scheme)
	}
}

// checksumID treats every byte as a signed char, matching the on-disk ids
// produced by earlier releases.
func checksumID(message string, records []Record) string {
	var id int64
	for i := 0; i < len(message); i++ {
		id = (id + int64(int8(message[i]))) % messageModulus
	}
	for _, r := range records {
		switch r.Change {
		case Add:
			id += addWeight
		case Remove:
			id += removeWeight
		default:
			id += changeWeight
		}
		for j := 0; j < len(r.FileName); j++ {
			id = ((id * (int64(int8(r.FileName[j])) % charModulus)) % nameModulus) + 1
		}
	}

	hex := fmt.Sprintf("%06x", uint64(id))
	if len(hex) > maxIDDigits {
		hex = hex[:maxIDDigits]
	}
	return hex
}

func xxh3ID(message string, records []Record) string {
	buf := make([]byte, 0, len(message)+16*len(records))
	buf = append(buf, message...)
	for _, r := range records {
		buf = append(buf, 0, byte(r.Change))
		buf = append(buf, r.FileName...)
	}
	return fmt.Sprintf("%016x", xxh3.Hash(buf))
}
