package elf

import (
	"encoding/binary"
	"fmt"
)

// Symbol is one resolved dynamic symbol record.
type Symbol struct {
	Name    string `json:"name"`
	Value   uint64 `json:"value"`
	Size    uint64 `json:"size"`
	Info    byte   `json:"info"`
	Other   byte   `json:"other"`
	Section uint16 `json:"section"`
}

func (s Symbol) Bind() SymBind { return SymBind(s.Info >> 4) }

func (s Symbol) Type() SymType { return SymType(s.Info & 0xf) }

func (s Symbol) Visibility() SymVis { return SymVis(s.Other & 0x3) }

// Undefined reports whether the symbol is imported from another object.
func (s Symbol) Undefined() bool { return s.Section == 0 }

type symbolRecord struct {
	name  uint32
	info  byte
	other byte
	shndx uint16
	value uint64
	size  uint64
}

func decodeSymbol(b []byte, bo binary.ByteOrder) symbolRecord {
	return symbolRecord{
		name:  bo.Uint32(b[0:]),
		info:  b[4],
		other: b[5],
		shndx: bo.Uint16(b[6:]),
		value: bo.Uint64(b[8:]),
		size:  bo.Uint64(b[16:]),
	}
}

// extractSymbols reads the symbol table located by d. The table has no end
// marker, so iteration stops at the first record that does not fit in its
// segment, whose name does not resolve in the string table, or once limit
// records have been read.
func (f *File) extractSymbols(d *Dynamic) ([]Symbol, error) {
	symOff, symEnd, err := translateRegion(d.SymTab, f.Progs, len(f.img))
	if err != nil {
		return nil, fmt.Errorf("translate DT_SYMTAB: %w", err)
	}
	strtab, err := f.stringTable(d)
	if err != nil {
		return nil, err
	}

	limit := uint64(f.opts.maxSymbols)
	if n, ok := f.symbolCount(d); ok {
		limit = min(limit, n)
	}

	var ret []Symbol
	span := symEnd - symOff
	// i*SymEnt <= span keeps the offset arithmetic from overflowing
	for i := uint64(0); i < limit && i <= span/d.SymEnt; i++ {
		off := symOff + i*d.SymEnt
		if symEnd-off < SymSize {
			break
		}
		rec := decodeSymbol(f.img[off:off+SymSize], f.ByteOrder)
		name, ok := strtab.lookup(uint64(rec.name))
		if !ok {
			log.Tracef("Symbol %d name index 0x%x is outside the string table, stopping", i, rec.name)
			break
		}
		ret = append(ret, Symbol{
			Name:    name,
			Value:   rec.value,
			Size:    rec.size,
			Info:    rec.info,
			Other:   rec.other,
			Section: rec.shndx,
		})
	}
	return ret, nil
}

// stringTable bounds the table at DT_STRTAB by DT_STRSZ when present, else by
// the end of the containing segment's file data.
func (f *File) stringTable(d *Dynamic) (stringTable, error) {
	off, end, err := translateRegion(d.StrTab, f.Progs, len(f.img))
	if err != nil {
		return nil, fmt.Errorf("translate DT_STRTAB: %w", err)
	}
	if d.HasStrSz && d.StrSz < end-off {
		end = off + d.StrSz
	}
	return stringTable(f.img[off:end]), nil
}
