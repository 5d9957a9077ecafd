package elf

import (
	"encoding/binary"
	"fmt"
)

// Header is the decoded ELF64 file header.
type Header struct {
	Ident     [identSize]byte
	Class     Class
	Data      Data
	OSABI     byte
	Type      Type
	Machine   uint16
	Version   uint32
	Entry     uint64
	Phoff     uint64
	Shoff     uint64
	Flags     uint32
	Ehsize    uint16
	Phentsize uint16
	Phnum     uint16
	Shentsize uint16
	Shnum     uint16
	Shstrndx  uint16

	ByteOrder binary.ByteOrder
}

// ParseHeader validates the identification bytes of img and decodes the
// ELF64 file header that follows them.
func ParseHeader(img []byte) (*Header, error) {
	if len(img) < HeaderSize {
		return nil, fmt.Errorf("%w: image is %d bytes, header needs %d", ErrInvalidFormat, len(img), HeaderSize)
	}
	if [4]byte(img[:4]) != elfMagic {
		return nil, fmt.Errorf("%w: bad magic % x", ErrInvalidFormat, img[:4])
	}

	h := &Header{
		Class: Class(img[EI_CLASS]),
		Data:  Data(img[EI_DATA]),
		OSABI: img[EI_OSABI],
	}
	copy(h.Ident[:], img[:identSize])

	switch h.Class {
	case ELFCLASS64:
	case ELFCLASS32:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedClass, h.Class)
	default:
		return nil, fmt.Errorf("%w: unknown class %s", ErrInvalidFormat, h.Class)
	}

	switch h.Data {
	case ELFDATA2LSB:
		h.ByteOrder = binary.LittleEndian
	case ELFDATA2MSB:
		h.ByteOrder = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: unknown data encoding %s", ErrInvalidFormat, h.Data)
	}

	bo := h.ByteOrder
	h.Type = Type(bo.Uint16(img[16:]))
	h.Machine = bo.Uint16(img[18:])
	h.Version = bo.Uint32(img[20:])
	h.Entry = bo.Uint64(img[24:])
	h.Phoff = bo.Uint64(img[32:])
	h.Shoff = bo.Uint64(img[40:])
	h.Flags = bo.Uint32(img[48:])
	h.Ehsize = bo.Uint16(img[52:])
	h.Phentsize = bo.Uint16(img[54:])
	h.Phnum = bo.Uint16(img[56:])
	h.Shentsize = bo.Uint16(img[58:])
	h.Shnum = bo.Uint16(img[60:])
	h.Shstrndx = bo.Uint16(img[62:])
	return h, nil
}
