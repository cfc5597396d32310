package detector

import (
	"strconv"
	"unicode/utf16"
)

// ProductID derives a stable id from the page URL and product name.
// It is a 32-bit rolling hash, not a security identifier: collisions are possible.
func ProductID(pageURL, name string) string {
	var hash int32
	for _, r := range pageURL + name {
		hash = hash*31 + int32(firstCodeUnit(r))
	}

	abs := int64(hash)
	if abs < 0 {
		abs = -abs
	}
	return "prod_" + strconv.FormatInt(abs, 36)
}

// firstCodeUnit returns the leading UTF-16 code unit of r, which is the high
// surrogate for runes outside the basic multilingual plane
func firstCodeUnit(r rune) rune {
	if r > 0xFFFF {
		hi, _ := utf16.EncodeRune(r)
		return hi
	}
	return r
}
