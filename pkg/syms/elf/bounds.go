package elf

// within reports whether [off, off+size) lies inside a buffer of n bytes.
// It never overflows, whatever the file claims.
func within(off, size uint64, n int) bool {
	return off <= uint64(n) && size <= uint64(n)-off
}

// slice returns img[off:off+size] or false when the range leaves img.
func slice(img []byte, off, size uint64) ([]byte, bool) {
	if !within(off, size, len(img)) {
		return nil, false
	}
	return img[off : off+size], true
}
