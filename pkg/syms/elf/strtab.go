package elf

import "bytes"

// stringTable is a bounded region of NUL-terminated strings.
type stringTable []byte

// lookup returns the string starting at idx. It fails when idx is outside
// the table or the string runs to the end of the table without a NUL.
func (t stringTable) lookup(idx uint64) (string, bool) {
	if idx >= uint64(len(t)) {
		return "", false
	}
	b := t[idx:]
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return "", false
	}
	return string(b[:n]), true
}
