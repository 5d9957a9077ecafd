package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/vietanhduong/elfwalk/pkg/syms"
	"github.com/vietanhduong/elfwalk/pkg/syms/elf"
)

type kind string

const (
	kindOK          kind = "ok"
	kindNoSymbols   kind = "no-symbols"
	kindPartial     kind = "partial"
	kindNotELF      kind = "not-elf"
	kindUnsupported kind = "unsupported"
	kindIO          kind = "io"
	kindCorrupt     kind = "corrupt"
	kindCanceled    kind = "canceled"
)

type report struct {
	Path     string        `json:"path"`
	Kind     kind          `json:"kind"`
	Type     string        `json:"type,omitempty"`
	Soname   string        `json:"soname,omitempty"`
	BuildID  string        `json:"build_id,omitempty"`
	Needed   []string      `json:"needed,omitempty"`
	Symbols  []elf.Symbol  `json:"symbols"`
	Resolved []syms.Symbol `json:"resolved,omitempty"`
	Found    []syms.Symbol `json:"lookup,omitempty"`
	Message  string        `json:"message,omitempty"`
}

func (r *report) fatal() bool {
	switch r.Kind {
	case kindOK, kindNoSymbols, kindPartial:
		return false
	}
	return true
}

func failedReport(path string, err error, k kind) *report {
	return &report{Path: path, Kind: k, Message: err.Error()}
}

func analyze(path string, cfg *config) *report {
	f, err := elf.Open(path, elf.WithMaxSymbols(cfg.maxSymbols))
	if err != nil {
		return failedReport(path, err, classifyOpenError(err))
	}
	defer f.Close()

	r := &report{Path: path, Kind: kindOK, Type: f.Type.String()}

	symbols, err := f.DynamicSymbols()
	switch {
	case err == nil:
	case elf.IsNoSymbols(err):
		r.Kind = kindNoSymbols
		r.Message = fmt.Sprintf("ELF file has no dynamic symbol data: %v", err)
	case len(symbols) == 0:
		r.Kind = kindCorrupt
		r.Message = fmt.Sprintf("corrupt dynamic symbol data: %v", err)
	default:
		r.Kind = kindPartial
		r.Message = fmt.Sprintf("dynamic symbol data partially read: %v", err)
	}
	r.Symbols = make([]elf.Symbol, 0, len(symbols))
	for _, s := range symbols {
		s.Name = cfg.demangle.Demangle(s.Name)
		r.Symbols = append(r.Symbols, s)
	}

	if cfg.needed {
		// a missing DT_NEEDED list is not worth failing the file
		r.Needed, _ = f.ImportedLibraries()
		r.Soname, _ = f.Soname()
	}
	if cfg.buildID {
		if id, err := f.BuildId(); err == nil {
			r.BuildID = id.Id
		}
	}
	if len(cfg.resolve) > 0 || len(cfg.lookup) > 0 {
		resolver := syms.NewResolver(path, symbols, &syms.SymbolOptions{
			DemangleType: cfg.demangle,
			CacheSize:    cfg.cacheSize,
		})
		defer resolver.Cleanup()
		for _, addr := range cfg.resolve {
			r.Resolved = append(r.Resolved, resolver.Resolve(addr))
		}
		for _, name := range cfg.lookup {
			// a zero Start means the name is not defined in this module
			addr, _ := resolver.Lookup(name)
			r.Found = append(r.Found, syms.Symbol{Start: addr, Name: name, Module: path})
		}
	}
	return r
}

func classifyOpenError(err error) kind {
	switch {
	case errors.Is(err, elf.ErrIO):
		return kindIO
	case errors.Is(err, elf.ErrInvalidFormat):
		return kindNotELF
	case errors.Is(err, elf.ErrUnsupportedClass):
		return kindUnsupported
	}
	return kindCorrupt
}

func printReports(stdout, stderr io.Writer, reports []*report, cfg *config) error {
	if cfg.output == outputJson {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return fmt.Errorf("json encode: %w", err)
		}
		return nil
	}

	for i, r := range reports {
		if len(reports) > 1 {
			if i > 0 {
				fmt.Fprintln(stdout)
			}
			fmt.Fprintf(stdout, "%s:\n", r.Path)
		}
		printText(stdout, r)
		if r.Message != "" {
			fmt.Fprintf(stderr, "%s: %s\n", r.Path, r.Message)
		}
	}
	return nil
}

func printText(w io.Writer, r *report) {
	if r.Soname != "" {
		fmt.Fprintf(w, "SONAME %s\n", r.Soname)
	}
	for _, lib := range r.Needed {
		fmt.Fprintf(w, "NEEDED %s\n", lib)
	}
	if r.BuildID != "" {
		fmt.Fprintf(w, "BUILD-ID %s\n", r.BuildID)
	}
	for _, s := range r.Symbols {
		fmt.Fprintf(w, "%s at 0x%x\n", s.Name, s.Value)
	}
	for _, s := range r.Resolved {
		name := s.Name
		if name == "" {
			name = "[unknown]"
		}
		fmt.Fprintf(w, "0x%x => %s\n", s.Start, name)
	}
	for _, s := range r.Found {
		if s.Start == 0 {
			fmt.Fprintf(w, "%s => [unknown]\n", s.Name)
			continue
		}
		fmt.Fprintf(w, "%s => 0x%x\n", s.Name, s.Start)
	}
}
