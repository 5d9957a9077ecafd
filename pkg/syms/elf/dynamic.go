package elf

import (
	"encoding/binary"
	"fmt"
)

// Dyn is one entry of the dynamic array. Val holds either d_val or d_ptr
// depending on Tag.
type Dyn struct {
	Tag DynTag
	Val uint64
}

// Dynamic is what the symbol extractor needs from one PT_DYNAMIC segment.
type Dynamic struct {
	SymTab  uint64
	StrTab  uint64
	SymEnt  uint64
	StrSz   uint64
	Hash    uint64
	GnuHash uint64
	Soname  uint64
	Needed  []uint64

	HasSymTab  bool
	HasStrTab  bool
	HasStrSz   bool
	HasHash    bool
	HasGnuHash bool
	HasSoname  bool

	// Entries is the number of entries read, the terminator included.
	Entries    int
	Terminated bool
}

// ParseDynamic interprets the bytes of a PT_DYNAMIC segment. Iteration stops
// at DT_NULL or when seg is exhausted, whichever comes first.
func ParseDynamic(seg []byte, order binary.ByteOrder) (*Dynamic, error) {
	d := &Dynamic{SymEnt: SymSize}
	for i := 0; i+DynSize <= len(seg); i += DynSize {
		ent := Dyn{
			Tag: DynTag(order.Uint64(seg[i:])),
			Val: order.Uint64(seg[i+8:]),
		}
		d.Entries++
		if ent.Tag == DT_NULL {
			d.Terminated = true
			break
		}
		d.apply(ent)
	}
	if !d.Terminated {
		log.Debugf("Dynamic array has no DT_NULL within %d bytes, stopped after %d entries", len(seg), d.Entries)
	}

	if !d.HasSymTab || !d.HasStrTab {
		return d, fmt.Errorf("%w: DT_SYMTAB set %t, DT_STRTAB set %t", ErrMissingSymbolTable, d.HasSymTab, d.HasStrTab)
	}
	if d.SymEnt < SymSize {
		return d, fmt.Errorf("%w: DT_SYMENT %d is smaller than %d", ErrInvalidFormat, d.SymEnt, SymSize)
	}
	return d, nil
}

func (d *Dynamic) apply(ent Dyn) {
	switch ent.Tag {
	case DT_SYMTAB:
		d.SymTab, d.HasSymTab = ent.Val, true
	case DT_STRTAB:
		d.StrTab, d.HasStrTab = ent.Val, true
	case DT_SYMENT:
		d.SymEnt = ent.Val
	case DT_STRSZ:
		d.StrSz, d.HasStrSz = ent.Val, true
	case DT_HASH:
		d.Hash, d.HasHash = ent.Val, true
	case DT_GNU_HASH:
		d.GnuHash, d.HasGnuHash = ent.Val, true
	case DT_SONAME:
		d.Soname, d.HasSoname = ent.Val, true
	case DT_NEEDED:
		d.Needed = append(d.Needed, ent.Val)
	}
}
