package engine

import "unicode/utf8"

// DecodeCodePoint reads the next Unicode code point from b, returning the
// code point and the number of bytes it occupies. A malformed or truncated
// sequence yields (-1, 1): n is always big enough to let a caller advance
// past the bad byte and keep scanning.
func DecodeCodePoint(b []byte) (r rune, size int) {
	if len(b) == 0 {
		return -1, 0
	}
	r, size = utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return -1, 1
	}
	return r, size
}

// CodePointLen reports s's length in Unicode code points, as distinct from
// len(s) which counts bytes.
func (s String) CodePointLen() int {
	return utf8.RuneCountInString(string(s))
}
