package elf

import "strconv"

const (
	// Sizes of the fixed ELF64 records.
	HeaderSize = 64
	ProgSize   = 56
	DynSize    = 16
	SymSize    = 24

	identSize = 16
)

const (
	EI_CLASS   = 4
	EI_DATA    = 5
	EI_VERSION = 6
	EI_OSABI   = 7
)

var elfMagic = [4]byte{0x7f, 'E', 'L', 'F'}

// Class is the EI_CLASS identification byte.
type Class byte

const (
	ELFCLASSNONE Class = 0
	ELFCLASS32   Class = 1
	ELFCLASS64   Class = 2
)

func (c Class) String() string {
	switch c {
	case ELFCLASS32:
		return "ELFCLASS32"
	case ELFCLASS64:
		return "ELFCLASS64"
	}
	return "ELFCLASS(" + strconv.Itoa(int(c)) + ")"
}

// Data is the EI_DATA identification byte, the byte order of the image.
type Data byte

const (
	ELFDATANONE Data = 0
	ELFDATA2LSB Data = 1
	ELFDATA2MSB Data = 2
)

func (d Data) String() string {
	switch d {
	case ELFDATA2LSB:
		return "ELFDATA2LSB"
	case ELFDATA2MSB:
		return "ELFDATA2MSB"
	}
	return "ELFDATA(" + strconv.Itoa(int(d)) + ")"
}

// Type is the object file type, e_type.
type Type uint16

const (
	ET_NONE Type = 0
	ET_REL  Type = 1
	ET_EXEC Type = 2
	ET_DYN  Type = 3
	ET_CORE Type = 4
)

func (t Type) String() string {
	switch t {
	case ET_NONE:
		return "ET_NONE"
	case ET_REL:
		return "ET_REL"
	case ET_EXEC:
		return "ET_EXEC"
	case ET_DYN:
		return "ET_DYN"
	case ET_CORE:
		return "ET_CORE"
	}
	return "ET(" + strconv.Itoa(int(t)) + ")"
}

// ProgType is the segment type, p_type.
type ProgType uint32

const (
	PT_NULL    ProgType = 0
	PT_LOAD    ProgType = 1
	PT_DYNAMIC ProgType = 2
	PT_INTERP  ProgType = 3
	PT_NOTE    ProgType = 4
	PT_SHLIB   ProgType = 5
	PT_PHDR    ProgType = 6
	PT_TLS     ProgType = 7
)

func (t ProgType) String() string {
	switch t {
	case PT_NULL:
		return "PT_NULL"
	case PT_LOAD:
		return "PT_LOAD"
	case PT_DYNAMIC:
		return "PT_DYNAMIC"
	case PT_INTERP:
		return "PT_INTERP"
	case PT_NOTE:
		return "PT_NOTE"
	case PT_SHLIB:
		return "PT_SHLIB"
	case PT_PHDR:
		return "PT_PHDR"
	case PT_TLS:
		return "PT_TLS"
	}
	return "PT(0x" + strconv.FormatUint(uint64(t), 16) + ")"
}

type ProgFlag uint32

const (
	PF_X ProgFlag = 0x1
	PF_W ProgFlag = 0x2
	PF_R ProgFlag = 0x4
)

// DynTag is the d_tag of a dynamic array entry.
type DynTag int64

const (
	DT_NULL     DynTag = 0
	DT_NEEDED   DynTag = 1
	DT_PLTRELSZ DynTag = 2
	DT_PLTGOT   DynTag = 3
	DT_HASH     DynTag = 4
	DT_STRTAB   DynTag = 5
	DT_SYMTAB   DynTag = 6
	DT_RELA     DynTag = 7
	DT_RELASZ   DynTag = 8
	DT_RELAENT  DynTag = 9
	DT_STRSZ    DynTag = 10
	DT_SYMENT   DynTag = 11
	DT_INIT     DynTag = 12
	DT_FINI     DynTag = 13
	DT_SONAME   DynTag = 14
	DT_RPATH    DynTag = 15
	DT_SYMBOLIC DynTag = 16
	DT_REL      DynTag = 17
	DT_RELSZ    DynTag = 18
	DT_RELENT   DynTag = 19
	DT_PLTREL   DynTag = 20
	DT_DEBUG    DynTag = 21
	DT_TEXTREL  DynTag = 22
	DT_JMPREL   DynTag = 23

	DT_GNU_HASH DynTag = 0x6ffffef5
)

var dynTagNames = map[DynTag]string{
	DT_NULL:     "DT_NULL",
	DT_NEEDED:   "DT_NEEDED",
	DT_PLTRELSZ: "DT_PLTRELSZ",
	DT_PLTGOT:   "DT_PLTGOT",
	DT_HASH:     "DT_HASH",
	DT_STRTAB:   "DT_STRTAB",
	DT_SYMTAB:   "DT_SYMTAB",
	DT_RELA:     "DT_RELA",
	DT_RELASZ:   "DT_RELASZ",
	DT_RELAENT:  "DT_RELAENT",
	DT_STRSZ:    "DT_STRSZ",
	DT_SYMENT:   "DT_SYMENT",
	DT_INIT:     "DT_INIT",
	DT_FINI:     "DT_FINI",
	DT_SONAME:   "DT_SONAME",
	DT_RPATH:    "DT_RPATH",
	DT_SYMBOLIC: "DT_SYMBOLIC",
	DT_REL:      "DT_REL",
	DT_RELSZ:    "DT_RELSZ",
	DT_RELENT:   "DT_RELENT",
	DT_PLTREL:   "DT_PLTREL",
	DT_DEBUG:    "DT_DEBUG",
	DT_TEXTREL:  "DT_TEXTREL",
	DT_JMPREL:   "DT_JMPREL",
	DT_GNU_HASH: "DT_GNU_HASH",
}

func (t DynTag) String() string {
	if name, ok := dynTagNames[t]; ok {
		return name
	}
	return "DT(0x" + strconv.FormatInt(int64(t), 16) + ")"
}

// SymBind is the binding encoded in the high nibble of st_info.
type SymBind byte

const (
	STB_LOCAL  SymBind = 0
	STB_GLOBAL SymBind = 1
	STB_WEAK   SymBind = 2
)

func (b SymBind) String() string {
	switch b {
	case STB_LOCAL:
		return "LOCAL"
	case STB_GLOBAL:
		return "GLOBAL"
	case STB_WEAK:
		return "WEAK"
	}
	return "BIND(" + strconv.Itoa(int(b)) + ")"
}

// SymType is the type encoded in the low nibble of st_info.
type SymType byte

const (
	STT_NOTYPE  SymType = 0
	STT_OBJECT  SymType = 1
	STT_FUNC    SymType = 2
	STT_SECTION SymType = 3
	STT_FILE    SymType = 4
	STT_COMMON  SymType = 5
	STT_TLS     SymType = 6
)

func (t SymType) String() string {
	switch t {
	case STT_NOTYPE:
		return "NOTYPE"
	case STT_OBJECT:
		return "OBJECT"
	case STT_FUNC:
		return "FUNC"
	case STT_SECTION:
		return "SECTION"
	case STT_FILE:
		return "FILE"
	case STT_COMMON:
		return "COMMON"
	case STT_TLS:
		return "TLS"
	}
	return "TYPE(" + strconv.Itoa(int(t)) + ")"
}

// SymVis is the visibility encoded in the low two bits of st_other.
type SymVis byte

const (
	STV_DEFAULT   SymVis = 0
	STV_INTERNAL  SymVis = 1
	STV_HIDDEN    SymVis = 2
	STV_PROTECTED SymVis = 3
)

func (v SymVis) String() string {
	switch v {
	case STV_DEFAULT:
		return "DEFAULT"
	case STV_INTERNAL:
		return "INTERNAL"
	case STV_HIDDEN:
		return "HIDDEN"
	case STV_PROTECTED:
		return "PROTECTED"
	}
	return "VIS(" + strconv.Itoa(int(v)) + ")"
}
