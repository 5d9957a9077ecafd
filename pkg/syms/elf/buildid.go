package elf

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"go.uber.org/multierr"
)

type BuildId struct {
	Id  string
	Typ string
}

func GNUBuildId(s string) BuildId {
	return BuildId{Id: s, Typ: "gnu"}
}

func GoBuildId(s string) BuildId {
	return BuildId{Id: s, Typ: "go"}
}

func (b *BuildId) Empty() bool {
	return b.Id == "" || b.Typ == ""
}

func (b *BuildId) GNU() bool {
	return b.Typ == "gnu"
}

const (
	ntGNUBuildID = 3
	ntGoBuildID  = 4
)

var ErrNoBuildID = errors.New("build ID note not found")

type note struct {
	name string
	typ  uint32
	desc []byte
}

// BuildId returns the GNU build ID of the image, or the Go one when no valid
// GNU note exists.
func (f *File) BuildId() (BuildId, error) {
	notes, err := f.notes()
	if err != nil && len(notes) == 0 {
		return BuildId{}, err
	}
	var errs error
	for _, n := range notes {
		if n.name == "GNU" && n.typ == ntGNUBuildID {
			if len(n.desc) != 20 && len(n.desc) != 8 && len(n.desc) != 16 { // 8 is xxhash, 16 is md5/uuid
				errs = multierr.Append(errs, fmt.Errorf("GNU build-id note has wrong size %d", len(n.desc)))
				continue
			}
			return GNUBuildId(hex.EncodeToString(n.desc)), nil
		}
	}
	for _, n := range notes {
		if n.name == "Go" && n.typ == ntGoBuildID {
			id := string(bytes.TrimRight(n.desc, "\x00"))
			if len(id) < 40 || bytes.Count(n.desc, []byte("/")) < 2 {
				errs = multierr.Append(errs, fmt.Errorf("wrong Go build-id note %q", id))
				continue
			}
			return GoBuildId(id), nil
		}
	}
	if errs != nil {
		return BuildId{}, errs
	}
	return BuildId{}, ErrNoBuildID
}

// notes decodes every note of every PT_NOTE segment. A malformed segment
// stops its own walk only.
func (f *File) notes() ([]note, error) {
	var (
		ret  []note
		errs error
	)
	for _, p := range f.progs(PT_NOTE) {
		data, err := p.Data(f.img)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		align := uint64(4)
		if p.Align == 8 {
			align = 8
		}
		notes, err := parseNotes(data, f.ByteOrder, align)
		ret = append(ret, notes...)
		errs = multierr.Append(errs, err)
	}
	return ret, errs
}

func parseNotes(data []byte, bo binary.ByteOrder, align uint64) ([]note, error) {
	var ret []note
	for off := uint64(0); uint64(len(data))-off >= 12; {
		namesz := uint64(bo.Uint32(data[off:]))
		descsz := uint64(bo.Uint32(data[off+4:]))
		typ := bo.Uint32(data[off+8:])
		off += 12

		name, ok := slice(data, off, namesz)
		if !ok {
			return ret, fmt.Errorf("%w: note name of %d bytes", ErrOutOfBounds, namesz)
		}
		off += alignUp(namesz, align)
		desc, ok := slice(data, off, descsz)
		if !ok {
			return ret, fmt.Errorf("%w: note desc of %d bytes", ErrOutOfBounds, descsz)
		}
		off += alignUp(descsz, align)

		ret = append(ret, note{
			name: string(bytes.TrimRight(name, "\x00")),
			typ:  typ,
			desc: desc,
		})
		if off > uint64(len(data)) {
			break
		}
	}
	return ret, nil
}

func alignUp(v, align uint64) uint64 {
	return (v + align - 1) &^ (align - 1)
}
