package syms

import (
	"slices"
	"sort"

	"github.com/vietanhduong/elfwalk/pkg/syms/elf"
)

// Table resolves addresses to the closest preceding defined symbol.
type Table struct {
	symbols []Symbol
	names   map[string]uint64
}

var _ SymbolTable = (*Table)(nil)

// NewTable indexes the defined, non-zero symbols of module. Undefined imports
// carry no address in this image and are left out.
func NewTable(module string, symbols []elf.Symbol, opts *SymbolOptions) *Table {
	if opts == nil {
		opts = defaultSymbolOpts
	}
	t := &Table{names: make(map[string]uint64, len(symbols))}
	for _, s := range symbols {
		if s.Name == "" || s.Value == 0 || s.Undefined() {
			continue
		}
		if _, ok := t.names[s.Name]; !ok {
			t.names[s.Name] = s.Value
		}
		t.symbols = append(t.symbols, Symbol{
			Start:  s.Value,
			Name:   opts.DemangleType.Demangle(s.Name),
			Module: module,
		})
	}
	slices.SortStableFunc(t.symbols, func(a, b Symbol) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		}
		return 0
	})
	return t
}

func (t *Table) Resolve(addr uint64) string {
	return t.ResolveSymbol(addr).Name
}

func (t *Table) ResolveSymbol(addr uint64) Symbol {
	var empty Symbol
	if len(t.symbols) == 0 || addr < t.symbols[0].Start {
		return empty
	}
	i := sort.Search(len(t.symbols), func(i int) bool { return addr < t.symbols[i].Start })
	i--
	return t.symbols[i]
}

// Lookup returns the address of the symbol with the given raw name.
func (t *Table) Lookup(name string) (uint64, bool) {
	addr, ok := t.names[name]
	return addr, ok
}

func (t *Table) Symbols() []Symbol { return t.symbols }

func (t *Table) Size() int { return len(t.symbols) }

func (t *Table) Cleanup() {
	t.symbols = t.symbols[:0]
	clear(t.names)
}
