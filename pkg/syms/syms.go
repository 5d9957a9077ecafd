package syms

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/vietanhduong/elfwalk/pkg/logging"
	"github.com/vietanhduong/elfwalk/pkg/logging/logfields"
	"github.com/vietanhduong/elfwalk/pkg/syms/cache"
	"github.com/vietanhduong/elfwalk/pkg/syms/elf"
)

var log = logging.DefaultLogger.WithFields(logrus.Fields{logfields.LogSubsys: "syms"})

type Resolver interface {
	Resolve(addr uint64) Symbol
	Cleanup()
}

// ElfResolver resolves addresses of one ELF module through an LRU cache.
type ElfResolver struct {
	module string
	table  SymbolTable
	cache  *cache.Cache
}

var _ Resolver = (*ElfResolver)(nil)

// NewResolver builds a resolver over symbols already extracted from module.
func NewResolver(module string, symbols []elf.Symbol, opts *SymbolOptions) *ElfResolver {
	if opts == nil {
		opts = defaultSymbolOpts
	}
	var table SymbolTable = NewTable(module, symbols, opts)
	if table.Size() == 0 {
		table = &emptyTable{}
	}
	return newElfResolver(module, table, opts)
}

// OpenResolver loads the dynamic symbols of the ELF file at path. Images
// without dynamic symbols get a resolver that resolves nothing.
func OpenResolver(path string, opts *SymbolOptions) (*ElfResolver, error) {
	if opts == nil {
		opts = defaultSymbolOpts
	}
	f, err := elf.Open(path, elf.WithMaxSymbols(opts.MaxSymbols))
	if err != nil {
		return nil, fmt.Errorf("elf open %s: %w", path, err)
	}
	defer f.Close()

	symbols, err := f.DynamicSymbols()
	switch {
	case err == nil:
	case elf.IsNoSymbols(err):
		log.WithField(logfields.File, path).Debugf("No dynamic symbols: %v", err)
	case len(symbols) == 0:
		return nil, fmt.Errorf("dynamic symbols %s: %w", path, err)
	default:
		log.WithError(err).WithField(logfields.File, path).Warn("Dynamic symbol table partially read")
	}
	return NewResolver(path, symbols, opts), nil
}

func newElfResolver(module string, table SymbolTable, opts *SymbolOptions) *ElfResolver {
	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	r := &ElfResolver{module: module, table: table}
	r.cache = cache.New(table.Resolve, size)
	log.WithFields(logrus.Fields{
		logfields.File:    module,
		logfields.Symbols: table.Size(),
	}).Debug("Loaded symbol table!")
	return r
}

func (r *ElfResolver) Resolve(addr uint64) Symbol {
	res := r.cache.Lookup(addr)
	if res.Symbol == "" {
		if !res.Hit {
			log.WithFields(logrus.Fields{
				logfields.File:    r.module,
				logfields.Address: fmt.Sprintf("0x%x", addr),
			}).Trace("Address precedes every symbol")
		}
		return Symbol{Start: addr, Module: r.module}
	}
	return Symbol{Start: addr, Name: res.Symbol, Module: r.module}
}

// Lookup returns the address of the symbol with the given undemangled name.
func (r *ElfResolver) Lookup(name string) (uint64, bool) { return r.table.Lookup(name) }

func (r *ElfResolver) Size() int { return r.table.Size() }

func (r *ElfResolver) CacheStats() cache.Stats { return r.cache.Stats() }

func (r *ElfResolver) Cleanup() {
	r.table.Cleanup()
	r.cache.Purge()
}
