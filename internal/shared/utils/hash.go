package utils

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Hash returns the xxhash64 digest of data in hex
func Hash(data []byte) string {
	return strconv.FormatUint(xxhash.Sum64(data), 16)
}

// ETag returns a strong entity tag for a response body
func ETag(body []byte) string {
	return `"` + Hash(body) + `"`
}
