package elf

import (
	"encoding/binary"
	"fmt"
)

// symbolCount derives the number of dynamic symbols from the hash tables
// referenced by d. It returns false when neither table is usable; the caller
// then falls back to scanning until the first invalid record.
func (f *File) symbolCount(d *Dynamic) (uint64, bool) {
	if d.HasHash {
		n, err := f.sysvHashCount(d.Hash)
		if err == nil {
			return n, true
		}
		log.WithError(err).Debug("Ignoring DT_HASH")
	}
	if d.HasGnuHash {
		n, err := f.gnuHashCount(d.GnuHash)
		if err == nil {
			return n, true
		}
		log.WithError(err).Debug("Ignoring DT_GNU_HASH")
	}
	return 0, false
}

// sysvHashCount reads nchain from the DT_HASH header, which equals the number
// of entries in the dynamic symbol table.
func (f *File) sysvHashCount(vaddr uint64) (uint64, error) {
	off, end, err := translateRegion(vaddr, f.Progs, len(f.img))
	if err != nil {
		return 0, fmt.Errorf("translate DT_HASH: %w", err)
	}
	hdr, ok := slice(f.img[:end], off, 8)
	if !ok {
		return 0, fmt.Errorf("%w: DT_HASH header at 0x%x", ErrOutOfBounds, off)
	}
	return uint64(f.ByteOrder.Uint32(hdr[4:])), nil
}

// gnuHashCount walks the DT_GNU_HASH buckets and chains to find the index of
// the last hashed symbol. The table must fit in its segment's file data.
func (f *File) gnuHashCount(vaddr uint64) (uint64, error) {
	off, end, err := translateRegion(vaddr, f.Progs, len(f.img))
	if err != nil {
		return 0, fmt.Errorf("translate DT_GNU_HASH: %w", err)
	}
	region := f.img[:end]
	hdr, ok := slice(region, off, 16)
	if !ok {
		return 0, fmt.Errorf("%w: DT_GNU_HASH header at 0x%x", ErrOutOfBounds, off)
	}
	bo := f.ByteOrder
	var (
		nbuckets  = uint64(bo.Uint32(hdr[0:]))
		symoffset = uint64(bo.Uint32(hdr[4:]))
		bloomSize = uint64(bo.Uint32(hdr[8:]))
	)

	bucketsOff := off + 16 + bloomSize*8
	buckets, ok := slice(region, bucketsOff, nbuckets*4)
	if !ok {
		return 0, fmt.Errorf("%w: DT_GNU_HASH buckets at 0x%x", ErrOutOfBounds, bucketsOff)
	}
	var last uint64
	for i := uint64(0); i < nbuckets; i++ {
		last = max(last, uint64(bo.Uint32(buckets[i*4:])))
	}
	if last == 0 {
		return symoffset, nil
	}
	if last < symoffset {
		return 0, fmt.Errorf("%w: DT_GNU_HASH bucket %d below symoffset %d", ErrInvalidFormat, last, symoffset)
	}

	chainsOff := bucketsOff + nbuckets*4
	for i := last - symoffset; ; i++ {
		v, err := readUint32(region, chainsOff+i*4, bo)
		if err != nil {
			return 0, fmt.Errorf("DT_GNU_HASH chain: %w", err)
		}
		if v&1 == 1 {
			return symoffset + i + 1, nil
		}
	}
}

func readUint32(img []byte, off uint64, bo binary.ByteOrder) (uint32, error) {
	b, ok := slice(img, off, 4)
	if !ok {
		return 0, fmt.Errorf("%w: 4 bytes at 0x%x", ErrOutOfBounds, off)
	}
	return bo.Uint32(b), nil
}
