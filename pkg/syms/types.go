package syms

import (
	"strings"

	"github.com/ianlancetaylor/demangle"
)

type SymbolTable interface {
	Resolve(addr uint64) string
	Lookup(name string) (uint64, bool)
	Cleanup()
	Size() int
}

type SymbolOptions struct {
	DemangleType DemangleType
	// CacheSize is the number of resolved addresses kept by a Resolver.
	CacheSize int
	// MaxSymbols caps the symbol table scan, see elf.WithMaxSymbols.
	MaxSymbols int
}

type DemangleType string

const (
	DemangleNone       DemangleType = "NONE"
	DemangleSimplified DemangleType = "SIMPLIFIED"
	DemangleTemplates  DemangleType = "TEMPLATES"
	DemangleFull       DemangleType = "FULL"
)

const defaultCacheSize = 10000

var defaultSymbolOpts = &SymbolOptions{
	DemangleType: DemangleNone,
	CacheSize:    defaultCacheSize,
}

// ParseDemangleType is case insensitive; unknown values mean DemangleNone.
func ParseDemangleType(s string) DemangleType {
	switch dt := DemangleType(strings.ToUpper(strings.TrimSpace(s))); dt {
	case DemangleSimplified, DemangleTemplates, DemangleFull:
		return dt
	}
	return DemangleNone
}

func (dt DemangleType) ToOptions() []demangle.Option {
	switch dt {
	case DemangleNone:
		return nil
	case DemangleSimplified:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams, demangle.NoTemplateParams}
	case DemangleTemplates:
		return []demangle.Option{demangle.NoParams, demangle.NoEnclosingParams}
	default:
		return []demangle.Option{demangle.NoClones}
	}
}

// Demangle returns name unchanged when it is not a mangled C++ or Rust name
// or when dt is DemangleNone.
func (dt DemangleType) Demangle(name string) string {
	if dt == DemangleNone || dt == "" {
		return name
	}
	return demangle.Filter(name, dt.ToOptions()...)
}

type Symbol struct {
	Start  uint64 `json:"start,omitempty"`
	Name   string `json:"name,omitempty"`
	Module string `json:"module,omitempty"`
}
