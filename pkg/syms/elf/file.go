package elf

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/vietanhduong/elfwalk/pkg/logging"
	"github.com/vietanhduong/elfwalk/pkg/logging/logfields"
	"go.uber.org/multierr"
)

var log = logging.DefaultLogger.WithFields(logrus.Fields{logfields.LogSubsys: "elf"})

// File is a parsed ELF64 image. The image bytes are borrowed and must not be
// modified while the File is in use. A File is safe for concurrent readers.
type File struct {
	Header
	Progs []Prog

	img    []byte
	fpath  string
	opts   *options
	closer io.Closer
}

// NewFile validates the header and program header table of img.
func NewFile(img []byte, opt ...Option) (*File, error) {
	opts := defaultOptions()
	for _, o := range opt {
		o(opts)
	}

	hdr, err := ParseHeader(img)
	if err != nil {
		return nil, err
	}
	progs, err := NewProgTable(img, hdr)
	if err != nil {
		return nil, err
	}
	return &File{
		Header: *hdr,
		Progs:  progs.All(),
		img:    img,
		opts:   opts,
	}, nil
}

// Bytes returns the raw image. Callers must not modify it.
func (f *File) Bytes() []byte { return f.img }

func (f *File) FilePath() string { return f.fpath }

// Close releases the backing storage of a File returned by Open. The File
// must not be used afterwards.
func (f *File) Close() error {
	if f == nil || f.closer == nil {
		return nil
	}
	err := f.closer.Close()
	f.closer = nil
	f.img = nil
	return err
}

// Translate converts vaddr into a file offset through the PT_LOAD segments.
func (f *File) Translate(vaddr uint64) (uint64, error) {
	return Translate(vaddr, f.Progs)
}

func (f *File) Dynamics() []Prog { return f.progs(PT_DYNAMIC) }

func (f *File) progs(typ ProgType) []Prog {
	var ret []Prog
	for _, p := range f.Progs {
		if p.Type == typ {
			ret = append(ret, p)
		}
	}
	return ret
}

// Dynamic interprets the dynamic array of the i-th PT_DYNAMIC segment.
func (f *File) Dynamic(i int) (*Dynamic, error) {
	dyns := f.Dynamics()
	if i < 0 || i >= len(dyns) {
		return nil, fmt.Errorf("%w: dynamic segment %d of %d", ErrNoDynamicSymbols, i, len(dyns))
	}
	data, err := dyns[i].Data(f.img)
	if err != nil {
		return nil, err
	}
	return ParseDynamic(data, f.ByteOrder)
}

// DynamicSymbols extracts the dynamic symbols of every PT_DYNAMIC segment in
// table order. A failing segment is skipped and its error is combined into
// the returned error, so a non-empty result may come with a non-nil error.
// Images without dynamic symbol data fail with an error for which
// IsNoSymbols reports true.
func (f *File) DynamicSymbols() ([]Symbol, error) {
	n := len(f.Dynamics())
	if n == 0 {
		return nil, fmt.Errorf("%w: no PT_DYNAMIC segment in %d program headers", ErrNoDynamicSymbols, len(f.Progs))
	}

	var (
		ret  []Symbol
		errs error
	)
	for i := 0; i < n; i++ {
		syms, err := f.segmentSymbols(i)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				logfields.File:    f.fpath,
				logfields.Segment: i,
			}).Debug("Skipping dynamic segment")
			errs = multierr.Append(errs, fmt.Errorf("dynamic segment %d: %w", i, err))
			continue
		}
		ret = append(ret, syms...)
	}
	return ret, errs
}

func (f *File) segmentSymbols(i int) ([]Symbol, error) {
	d, err := f.Dynamic(i)
	if err != nil {
		return nil, err
	}
	return f.extractSymbols(d)
}

// ImportedLibraries returns the DT_NEEDED entries of every dynamic segment.
func (f *File) ImportedLibraries() ([]string, error) {
	var (
		ret  []string
		errs error
	)
	for i := range f.Dynamics() {
		d, strtab, err := f.dynamicStrings(i)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("dynamic segment %d: %w", i, err))
			continue
		}
		for _, idx := range d.Needed {
			name, ok := strtab.lookup(idx)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("%w: DT_NEEDED name 0x%x", ErrOutOfBounds, idx))
				continue
			}
			ret = append(ret, name)
		}
	}
	return ret, errs
}

// Soname returns the DT_SONAME of the image, if any.
func (f *File) Soname() (string, bool) {
	for i := range f.Dynamics() {
		d, strtab, err := f.dynamicStrings(i)
		if err != nil || !d.HasSoname {
			continue
		}
		if name, ok := strtab.lookup(d.Soname); ok {
			return name, true
		}
	}
	return "", false
}

// dynamicStrings only needs DT_STRTAB, a segment without DT_SYMTAB is fine.
func (f *File) dynamicStrings(i int) (*Dynamic, stringTable, error) {
	d, err := f.Dynamic(i)
	if d == nil || !d.HasStrTab {
		return nil, nil, err
	}
	strtab, err := f.stringTable(d)
	if err != nil {
		return nil, nil, err
	}
	return d, strtab, nil
}
