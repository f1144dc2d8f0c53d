package utils

import (
	"strconv"

	"github.com/twmb/murmur3"
)

// HashBytes returns the 64-bit murmur3 hash of the concatenated chunks.
func HashBytes(chunks ...[]byte) uint64 {
	hash := murmur3.New64()
	for _, b := range chunks {
		_, err := hash.Write(b)
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

func HashString(s string) uint64 {
	return HashBytes([]byte(s))
}

// Fingerprint formats a hash of data as a fixed-width hex string, suitable
// for cache keys and log fields.
func Fingerprint(data []byte) string {
	s := strconv.FormatUint(HashBytes(data), 16)
	for len(s) < 16 {
		s = "0" + s
	}
	return s
}
