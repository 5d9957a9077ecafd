package elf

import "fmt"

// Translate converts a virtual address into a file offset using the first
// PT_LOAD segment in progs whose memory range contains vaddr.
func Translate(vaddr uint64, progs []Prog) (uint64, error) {
	p := findLoad(vaddr, progs)
	if p == nil {
		return 0, fmt.Errorf("%w: 0x%x", ErrUnmappedAddress, vaddr)
	}
	return p.Off + (vaddr - p.Vaddr), nil
}

// translateRegion is Translate restricted to the file-backed bytes of the
// containing segment, which must lie inside an image of n bytes. It returns
// the offset of vaddr and the end of the segment's file data.
func translateRegion(vaddr uint64, progs []Prog, n int) (off, end uint64, err error) {
	p := findLoad(vaddr, progs)
	if p == nil {
		return 0, 0, fmt.Errorf("%w: 0x%x", ErrUnmappedAddress, vaddr)
	}
	if !within(p.Off, p.Filesz, n) {
		return 0, 0, fmt.Errorf("%w: PT_LOAD [0x%x, +0x%x) exceeds image size 0x%x", ErrOutOfBounds, p.Off, p.Filesz, n)
	}
	delta := vaddr - p.Vaddr
	if delta >= p.Filesz {
		// vaddr lands in the zero-filled tail of the segment (memsz > filesz)
		return 0, 0, fmt.Errorf("%w: 0x%x is past the file data of PT_LOAD 0x%x", ErrOutOfBounds, vaddr, p.Vaddr)
	}
	return p.Off + delta, p.Off + p.Filesz, nil
}

func findLoad(vaddr uint64, progs []Prog) *Prog {
	for i := range progs {
		if progs[i].Type == PT_LOAD && progs[i].Contains(vaddr) {
			return &progs[i]
		}
	}
	return nil
}
