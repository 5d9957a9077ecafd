package elf

import (
	"errors"

	"go.uber.org/multierr"
)

var (
	ErrIO                 = errors.New("i/o failure")
	ErrInvalidFormat      = errors.New("not an ELF file")
	ErrUnsupportedClass   = errors.New("unsupported ELF class")
	ErrOutOfBounds        = errors.New("out of bounds")
	ErrUnmappedAddress    = errors.New("unmapped virtual address")
	ErrMissingSymbolTable = errors.New("dynamic section has no symbol table")
	ErrNoDynamicSymbols   = errors.New("no dynamic symbols")
)

// IsNoSymbols reports whether err, and every error combined into it, only says
// that the image carries no dynamic symbol data. Such images are valid input.
func IsNoSymbols(err error) bool {
	if err == nil {
		return false
	}
	for _, e := range multierr.Errors(err) {
		if !errors.Is(e, ErrNoDynamicSymbols) && !errors.Is(e, ErrMissingSymbolTable) {
			return false
		}
	}
	return true
}
