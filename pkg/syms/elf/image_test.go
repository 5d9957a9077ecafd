package elf

import (
	"encoding/binary"
	"testing"
)

// testImage builds ELF64 images in memory.
type testImage struct {
	bo  binary.ByteOrder
	buf []byte
}

func newTestImage(size int) *testImage {
	return &testImage{bo: binary.LittleEndian, buf: make([]byte, size)}
}

func (b *testImage) header(typ Type, phoff uint64, phnum uint16) *testImage {
	copy(b.buf, elfMagic[:])
	b.buf[EI_CLASS] = byte(ELFCLASS64)
	if b.bo == binary.BigEndian {
		b.buf[EI_DATA] = byte(ELFDATA2MSB)
	} else {
		b.buf[EI_DATA] = byte(ELFDATA2LSB)
	}
	b.buf[EI_VERSION] = 1
	b.bo.PutUint16(b.buf[16:], uint16(typ))
	b.bo.PutUint16(b.buf[18:], 62) // EM_X86_64
	b.bo.PutUint32(b.buf[20:], 1)
	b.bo.PutUint64(b.buf[24:], 0x1000)
	b.bo.PutUint64(b.buf[32:], phoff)
	b.bo.PutUint16(b.buf[52:], HeaderSize)
	b.bo.PutUint16(b.buf[54:], ProgSize)
	b.bo.PutUint16(b.buf[56:], phnum)
	return b
}

func (b *testImage) prog(phoff uint64, i int, p Prog) *testImage {
	o := b.buf[phoff+uint64(i)*ProgSize:]
	b.bo.PutUint32(o[0:], uint32(p.Type))
	b.bo.PutUint32(o[4:], uint32(p.Flags))
	b.bo.PutUint64(o[8:], p.Off)
	b.bo.PutUint64(o[16:], p.Vaddr)
	b.bo.PutUint64(o[24:], p.Paddr)
	b.bo.PutUint64(o[32:], p.Filesz)
	b.bo.PutUint64(o[40:], p.Memsz)
	b.bo.PutUint64(o[48:], p.Align)
	return b
}

func (b *testImage) dyn(off uint64, entries ...Dyn) *testImage {
	for i, e := range entries {
		b.bo.PutUint64(b.buf[off+uint64(i)*DynSize:], uint64(e.Tag))
		b.bo.PutUint64(b.buf[off+uint64(i)*DynSize+8:], e.Val)
	}
	return b
}

func (b *testImage) sym(off uint64, name uint32, info byte, shndx uint16, value, size uint64) *testImage {
	o := b.buf[off:]
	b.bo.PutUint32(o[0:], name)
	o[4] = info
	o[5] = 0
	b.bo.PutUint16(o[6:], shndx)
	b.bo.PutUint64(o[8:], value)
	b.bo.PutUint64(o[16:], size)
	return b
}

func (b *testImage) u32(off uint64, vals ...uint32) *testImage {
	for i, v := range vals {
		b.bo.PutUint32(b.buf[off+uint64(i)*4:], v)
	}
	return b
}

func (b *testImage) raw(off uint64, data []byte) *testImage {
	copy(b.buf[off:], data)
	return b
}

func (b *testImage) bytes() []byte { return b.buf }

const (
	testPhoff  = HeaderSize
	testStrtab = 0x1100
	testSymtab = 0x2fd0
)

var testStrings = []byte("\x00alpha\x00beta\x00libc.so.6\x00libfoo.so\x00")

const (
	nameAlpha  = 1
	nameBeta   = 7
	nameLibc   = 12
	nameLibfoo = 22
)

// minimalImage is one PT_LOAD (vaddr = offset = 0x1000, filesz = memsz =
// 0x2000) and one PT_DYNAMIC at its start. The two symbol records sit at the
// very end of the loadable region.
func minimalImage(t testing.TB, extra ...Dyn) *testImage {
	t.Helper()
	entries := []Dyn{
		{DT_SYMTAB, testSymtab},
		{DT_STRTAB, testStrtab},
		{DT_SYMENT, SymSize},
	}
	entries = append(entries, extra...)
	entries = append(entries, Dyn{DT_NULL, 0})

	return newTestImage(0x3000).
		header(ET_DYN, testPhoff, 2).
		prog(testPhoff, 0, Prog{Type: PT_LOAD, Flags: PF_R | PF_X, Off: 0x1000, Vaddr: 0x1000, Filesz: 0x2000, Memsz: 0x2000, Align: 0x1000}).
		prog(testPhoff, 1, Prog{Type: PT_DYNAMIC, Flags: PF_R | PF_W, Off: 0x1000, Vaddr: 0x1000, Filesz: uint64(len(entries)) * DynSize, Memsz: uint64(len(entries)) * DynSize, Align: 8}).
		dyn(0x1000, entries...).
		raw(testStrtab, testStrings).
		sym(testSymtab, nameAlpha, byte(STB_GLOBAL)<<4|byte(STT_FUNC), 12, 0x1200, 0x20).
		sym(testSymtab+SymSize, nameBeta, byte(STB_WEAK)<<4|byte(STT_OBJECT), 13, 0x1300, 0x8)
}
