package elf

import (
	"fmt"
	"io"
	"os"

	bufra "github.com/avvmoto/buf-readerat"
	"github.com/sirupsen/logrus"
	"github.com/tklauser/go-sysconf"
	"github.com/vietanhduong/elfwalk/pkg/logging/logfields"
	"golang.org/x/sys/unix"
)

const readBufferSize = 64 * 1024

type munmapper []byte

func (m munmapper) Close() error { return unix.Munmap(m) }

// Open loads the file at fpath and parses it. Regular files of at least one
// page are mapped read-only, anything else is read into memory. Loading
// failures wrap ErrIO. The returned File must be closed.
func Open(fpath string, opt ...Option) (*File, error) {
	img, closer, err := load(fpath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	f, err := NewFile(img, opt...)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	f.fpath = fpath
	f.closer = closer
	return f, nil
}

func load(fpath string) ([]byte, io.Closer, error) {
	fd, err := os.Open(fpath)
	if err != nil {
		return nil, nil, fmt.Errorf("os open %s: %w", fpath, err)
	}
	defer fd.Close()

	info, err := fd.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("os stat %s: %w", fpath, err)
	}
	if info.IsDir() {
		return nil, nil, fmt.Errorf("%s is a directory", fpath)
	}
	size := info.Size()

	if info.Mode().IsRegular() && size >= pageSize() && int64(int(size)) == size {
		data, err := unix.Mmap(int(fd.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_PRIVATE)
		if err == nil {
			return data, munmapper(data), nil
		}
		log.WithError(err).WithField(logfields.File, fpath).Debug("Mmap failed, reading file instead")
	}

	data, err := readAll(fd, size)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", fpath, err)
	}
	log.WithFields(logrus.Fields{
		logfields.File: fpath,
		"size":         len(data),
	}).Trace("Read file into memory")
	return data, nil, nil
}

// readAll reads size bytes through a buffered ReaderAt. Files that report a
// zero size (procfs and friends) are read until EOF.
func readAll(fd *os.File, size int64) ([]byte, error) {
	if size <= 0 {
		return io.ReadAll(fd)
	}
	r := io.NewSectionReader(bufra.NewBufReaderAt(fd, readBufferSize), 0, size)
	data := make([]byte, size)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

func pageSize() int64 {
	sz, err := sysconf.Sysconf(sysconf.SC_PAGESIZE)
	if err != nil || sz <= 0 {
		return int64(os.Getpagesize())
	}
	return sz
}
