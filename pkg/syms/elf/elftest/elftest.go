// Package elftest builds small little-endian ELF64 shared objects for tests.
package elftest

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Fixed layout of the generated image. Virtual addresses equal file offsets.
const (
	LoadStart = 0x1000

	dynamicOff = 0x1000
	strtabOff  = 0x1100
	hashOff    = 0x1900
	symtabOff  = 0x1a00
	minSize    = 0x3000
)

const (
	STB_GLOBAL = 1
	STB_WEAK   = 2
	STT_OBJECT = 1
	STT_FUNC   = 2
)

type Symbol struct {
	Name    string
	Value   uint64
	Size    uint64
	Bind    byte
	Type    byte
	Section uint16
}

func Func(name string, value, size uint64) Symbol {
	return Symbol{Name: name, Value: value, Size: size, Bind: STB_GLOBAL, Type: STT_FUNC, Section: 12}
}

// Import is an undefined symbol resolved from another object.
func Import(name string) Symbol {
	return Symbol{Name: name, Bind: STB_GLOBAL, Type: STT_FUNC}
}

type Options struct {
	Needed []string
	Soname string
}

// SharedObject returns an image with one PT_LOAD, one PT_DYNAMIC and a
// DT_HASH sized dynamic symbol table holding the null symbol then symbols.
func SharedObject(opts Options, symbols ...Symbol) []byte {
	bo := binary.LittleEndian

	strtab := []byte{0}
	addString := func(s string) uint64 {
		off := uint64(len(strtab))
		strtab = append(strtab, s...)
		strtab = append(strtab, 0)
		return off
	}

	type dyn struct{ tag, val uint64 }
	dyns := []dyn{
		{6, symtabOff}, // DT_SYMTAB
		{5, strtabOff}, // DT_STRTAB
		{11, 24},       // DT_SYMENT
		{4, hashOff},   // DT_HASH
	}
	for _, n := range opts.Needed {
		dyns = append(dyns, dyn{1, addString(n)}) // DT_NEEDED
	}
	if opts.Soname != "" {
		dyns = append(dyns, dyn{14, addString(opts.Soname)}) // DT_SONAME
	}
	names := make([]uint64, len(symbols))
	for i, s := range symbols {
		names[i] = addString(s.Name)
	}
	dyns = append(dyns, dyn{10, uint64(len(strtab))}, dyn{0, 0}) // DT_STRSZ, DT_NULL

	size := max(minSize, symtabOff+(len(symbols)+1)*24)
	if len(strtab) > hashOff-strtabOff || len(dyns)*16 > strtabOff-dynamicOff {
		panic("elftest: image layout overflow")
	}
	img := make([]byte, size)

	copy(img, "\x7fELF")
	img[4], img[5], img[6] = 2, 1, 1 // ELFCLASS64, ELFDATA2LSB, EV_CURRENT
	bo.PutUint16(img[16:], 3)        // ET_DYN
	bo.PutUint16(img[18:], 62)       // EM_X86_64
	bo.PutUint32(img[20:], 1)
	bo.PutUint64(img[32:], 64) // e_phoff
	bo.PutUint16(img[52:], 64)
	bo.PutUint16(img[54:], 56)
	bo.PutUint16(img[56:], 2)

	putProg := func(i int, typ, flags uint32, off, filesz uint64) {
		p := img[64+i*56:]
		bo.PutUint32(p[0:], typ)
		bo.PutUint32(p[4:], flags)
		bo.PutUint64(p[8:], off)
		bo.PutUint64(p[16:], off)
		bo.PutUint64(p[24:], off)
		bo.PutUint64(p[32:], filesz)
		bo.PutUint64(p[40:], filesz)
		bo.PutUint64(p[48:], 8)
	}
	putProg(0, 1, 0x5, LoadStart, uint64(size-LoadStart)) // PT_LOAD, R+X
	putProg(1, 2, 0x6, dynamicOff, uint64(len(dyns)*16))  // PT_DYNAMIC, R+W

	for i, d := range dyns {
		bo.PutUint64(img[dynamicOff+i*16:], d.tag)
		bo.PutUint64(img[dynamicOff+i*16+8:], d.val)
	}
	copy(img[strtabOff:], strtab)
	bo.PutUint32(img[hashOff:], 1)                        // nbucket
	bo.PutUint32(img[hashOff+4:], uint32(len(symbols)+1)) // nchain
	for i, s := range symbols {
		r := img[symtabOff+(i+1)*24:]
		bo.PutUint32(r[0:], uint32(names[i]))
		r[4] = s.Bind<<4 | s.Type
		bo.PutUint16(r[6:], s.Section)
		bo.PutUint64(r[8:], s.Value)
		bo.PutUint64(r[16:], s.Size)
	}
	return img
}

// WriteFile stores img in a temporary directory owned by t.
func WriteFile(t testing.TB, name string, img []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, img, 0o755); err != nil {
		t.Fatalf("Failed to write %s: %v", p, err)
	}
	return p
}
