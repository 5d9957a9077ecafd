package elf

import (
	"encoding/binary"
	"fmt"
)

// Prog is one decoded program header entry.
type Prog struct {
	Type   ProgType
	Flags  ProgFlag
	Off    uint64
	Vaddr  uint64
	Paddr  uint64
	Filesz uint64
	Memsz  uint64
	Align  uint64
}

// Contains reports whether vaddr falls inside the segment's memory image.
func (p *Prog) Contains(vaddr uint64) bool {
	return vaddr >= p.Vaddr && vaddr-p.Vaddr < p.Memsz
}

// Data returns the file-backed bytes of the segment.
func (p *Prog) Data(img []byte) ([]byte, error) {
	b, ok := slice(img, p.Off, p.Filesz)
	if !ok {
		return nil, fmt.Errorf("%w: %s segment [0x%x, +0x%x) exceeds image size 0x%x", ErrOutOfBounds, p.Type, p.Off, p.Filesz, len(img))
	}
	return b, nil
}

// ProgTable is a lazy view over the program header table of an image.
type ProgTable struct {
	img     []byte
	order   binary.ByteOrder
	off     uint64
	entsize uint64
	num     int
}

// NewProgTable validates that the table declared by h fits inside img.
func NewProgTable(img []byte, h *Header) (*ProgTable, error) {
	t := &ProgTable{
		img:     img,
		order:   h.ByteOrder,
		off:     h.Phoff,
		entsize: uint64(h.Phentsize),
		num:     int(h.Phnum),
	}
	if t.num == 0 {
		return t, nil
	}
	if t.entsize < ProgSize {
		return nil, fmt.Errorf("%w: e_phentsize %d is smaller than %d", ErrInvalidFormat, t.entsize, ProgSize)
	}
	// phnum and phentsize are 16 bits wide, the product cannot overflow
	if !within(t.off, uint64(t.num)*t.entsize, len(img)) {
		return nil, fmt.Errorf("%w: program headers at 0x%x (%d x %d bytes) exceed image size 0x%x",
			ErrOutOfBounds, t.off, t.num, t.entsize, len(img))
	}
	return t, nil
}

func (t *ProgTable) Len() int { return t.num }

// At decodes entry i. It panics if i is not in [0, Len()), like a slice index.
func (t *ProgTable) At(i int) Prog {
	if i < 0 || i >= t.num {
		panic(fmt.Sprintf("elf: program header index %d out of range [0, %d)", i, t.num))
	}
	b := t.img[t.off+uint64(i)*t.entsize:]
	bo := t.order
	return Prog{
		Type:   ProgType(bo.Uint32(b[0:])),
		Flags:  ProgFlag(bo.Uint32(b[4:])),
		Off:    bo.Uint64(b[8:]),
		Vaddr:  bo.Uint64(b[16:]),
		Paddr:  bo.Uint64(b[24:]),
		Filesz: bo.Uint64(b[32:]),
		Memsz:  bo.Uint64(b[40:]),
		Align:  bo.Uint64(b[48:]),
	}
}

func (t *ProgTable) All() []Prog {
	progs := make([]Prog, t.num)
	for i := range progs {
		progs[i] = t.At(i)
	}
	return progs
}
