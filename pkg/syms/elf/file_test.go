package elf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var expectedSymbols = []Symbol{
	{Name: "alpha", Value: 0x1200, Size: 0x20, Info: byte(STB_GLOBAL)<<4 | byte(STT_FUNC), Section: 12},
	{Name: "beta", Value: 0x1300, Size: 0x8, Info: byte(STB_WEAK)<<4 | byte(STT_OBJECT), Section: 13},
}

func TestFile_DynamicSymbols(t *testing.T) {
	t.Run("TEST SUCCESS: minimal image round trip", func(t *testing.T) {
		f, err := NewFile(minimalImage(t).bytes())
		require.NoError(t, err, "Failed to new file")

		symbols, err := f.DynamicSymbols()
		require.NoError(t, err, "Failed to read dynamic symbols")
		diff := cmp.Diff(expectedSymbols, symbols)
		assert.Empty(t, diff, "Diff (-want,+got):\n%s", diff)

		assert.Equal(t, STB_GLOBAL, symbols[0].Bind())
		assert.Equal(t, STT_FUNC, symbols[0].Type())
		assert.Equal(t, STB_WEAK, symbols[1].Bind())
		assert.Equal(t, STT_OBJECT, symbols[1].Type())
		assert.Equal(t, STV_DEFAULT, symbols[1].Visibility())
	})

	t.Run("TEST SUCCESS: emitted values lie in a PT_LOAD segment or are zero", func(t *testing.T) {
		b := minimalImage(t)
		// the null symbol ahead of the two defined ones
		b.sym(testSymtab-SymSize, 0, 0, 0, 0, 0)
		b.dyn(0x1000, Dyn{DT_SYMTAB, testSymtab - SymSize})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 3)
		assert.True(t, symbols[0].Undefined())
		for _, s := range symbols {
			if s.Value == 0 {
				continue
			}
			_, err := f.Translate(s.Value)
			assert.NoError(t, err, "Symbol %s at 0x%x is not mapped", s.Name, s.Value)
		}
	})

	t.Run("TEST SUCCESS: invalid name index ends the table", func(t *testing.T) {
		b := minimalImage(t)
		// move the table down one record and put garbage after it
		b.dyn(0x1000, Dyn{DT_SYMTAB, testSymtab - 2*SymSize})
		b.sym(testSymtab-2*SymSize, nameAlpha, 0, 1, 0x1200, 0)
		b.sym(testSymtab-SymSize, nameBeta, 0, 1, 0x1300, 0)
		b.sym(testSymtab, 0xffffff, 0, 1, 0x1400, 0)
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 2)
		assert.Equal(t, "alpha", symbols[0].Name)
		assert.Equal(t, "beta", symbols[1].Name)
	})

	t.Run("TEST SUCCESS: DT_STRSZ bounds the string table", func(t *testing.T) {
		// "alpha\0" fits in 7 bytes, "beta" starts at 7 and is cut off
		f, err := NewFile(minimalImage(t, Dyn{DT_STRSZ, 7}).bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 1)
		assert.Equal(t, "alpha", symbols[0].Name)
	})

	t.Run("TEST SUCCESS: larger DT_SYMENT stride", func(t *testing.T) {
		const stride = SymSize + 8
		b := minimalImage(t)
		base := uint64(0x3000 - 2*stride)
		b.dyn(0x1000, Dyn{DT_SYMTAB, base}, Dyn{DT_STRTAB, testStrtab}, Dyn{DT_SYMENT, stride})
		b.sym(base, nameBeta, 0, 1, 0x1300, 0)
		b.sym(base+stride, nameAlpha, 0, 1, 0x1200, 0)
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 2)
		assert.Equal(t, "beta", symbols[0].Name)
		assert.Equal(t, "alpha", symbols[1].Name)
	})

	t.Run("TEST SUCCESS: max symbols caps the scan", func(t *testing.T) {
		f, err := NewFile(minimalImage(t).bytes(), WithMaxSymbols(1))
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		require.Len(t, symbols, 1)
		assert.Equal(t, "alpha", symbols[0].Name)
	})

	t.Run("TEST SUCCESS: zero-filled records keep resolving to empty names", func(t *testing.T) {
		b := minimalImage(t)
		b.dyn(0x1000, Dyn{DT_SYMTAB, 0x2000})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		// (0x3000 - 0x2000) / 24 records fit before the segment ends
		require.Len(t, symbols, 0x1000/SymSize)
		assert.Equal(t, Symbol{}, symbols[0])
	})

	t.Run("TEST FAILURE: no program headers", func(t *testing.T) {
		f, err := NewFile(newTestImage(HeaderSize).header(ET_EXEC, 0, 0).bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrNoDynamicSymbols)
		assert.True(t, IsNoSymbols(err))
		assert.Empty(t, symbols)
	})

	t.Run("TEST FAILURE: static binary without PT_DYNAMIC", func(t *testing.T) {
		b := newTestImage(0x2000).
			header(ET_EXEC, testPhoff, 1).
			prog(testPhoff, 0, Prog{Type: PT_LOAD, Off: 0, Vaddr: 0x400000, Filesz: 0x2000, Memsz: 0x2000})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		_, err = f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrNoDynamicSymbols)
	})

	t.Run("TEST FAILURE: dynamic section without symbol table", func(t *testing.T) {
		b := minimalImage(t)
		b.dyn(0x1000, Dyn{DT_DEBUG, 0})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		_, err = f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrMissingSymbolTable)
		assert.True(t, IsNoSymbols(err))
	})

	t.Run("TEST FAILURE: DT_SYMTAB outside every PT_LOAD", func(t *testing.T) {
		b := minimalImage(t)
		b.dyn(0x1000, Dyn{DT_SYMTAB, 0x9000})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrUnmappedAddress)
		assert.False(t, IsNoSymbols(err))
		assert.Empty(t, symbols)
	})

	t.Run("TEST FAILURE: DT_STRTAB of zero", func(t *testing.T) {
		b := minimalImage(t)
		b.dyn(0x1000+DynSize, Dyn{DT_STRTAB, 0})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		_, err = f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrUnmappedAddress)
	})

	t.Run("TEST FAILURE: PT_LOAD offset wraps onto the header", func(t *testing.T) {
		b := minimalImage(t)
		b.prog(testPhoff, 0, Prog{Type: PT_LOAD, Off: ^uint64(0) - 0xfff, Vaddr: 0x1000, Filesz: 0x2000, Memsz: 0x2000})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		symbols, err := f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Empty(t, symbols)
	})

	t.Run("TEST FAILURE: PT_DYNAMIC past the end of the image", func(t *testing.T) {
		b := minimalImage(t)
		b.prog(testPhoff, 1, Prog{Type: PT_DYNAMIC, Off: 0x2ff0, Filesz: 0x100})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		_, err = f.DynamicSymbols()
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("TEST FAILURE: missing DT_NULL does not read past the segment", func(t *testing.T) {
		b := minimalImage(t)
		// shrink the segment to the first two entries, DT_SYMENT and DT_NULL fall outside
		b.prog(testPhoff, 1, Prog{Type: PT_DYNAMIC, Off: 0x1000, Vaddr: 0x1000, Filesz: 2 * DynSize, Memsz: 2 * DynSize})
		b.dyn(0x1000+2*DynSize, Dyn{DT_SYMENT, 1})
		f, err := NewFile(b.bytes())
		require.NoError(t, err)
		d, err := f.Dynamic(0)
		require.NoError(t, err)
		assert.False(t, d.Terminated)
		assert.Equal(t, 2, d.Entries)
		assert.Equal(t, uint64(SymSize), d.SymEnt)

		symbols, err := f.DynamicSymbols()
		require.NoError(t, err)
		assert.Len(t, symbols, 2)
	})
}

func TestFile_DynamicSymbols_MultipleSegments(t *testing.T) {
	b := minimalImage(t)
	b.header(ET_DYN, testPhoff, 3)
	// a second, broken PT_DYNAMIC ahead of the good one
	b.prog(testPhoff, 2, b.progAt(t, 1))
	b.prog(testPhoff, 1, Prog{Type: PT_DYNAMIC, Off: 0x10000, Filesz: DynSize})

	f, err := NewFile(b.bytes())
	require.NoError(t, err)
	require.Len(t, f.Dynamics(), 2)

	symbols, err := f.DynamicSymbols()
	require.Error(t, err, "The broken segment must be reported")
	assert.ErrorIs(t, err, ErrOutOfBounds)
	assert.False(t, IsNoSymbols(err))
	diff := cmp.Diff(expectedSymbols, symbols)
	assert.Empty(t, diff, "Diff (-want,+got):\n%s", diff)
}

func (b *testImage) progAt(t *testing.T, i int) Prog {
	t.Helper()
	h, err := ParseHeader(b.bytes())
	require.NoError(t, err)
	tbl, err := NewProgTable(b.bytes(), h)
	require.NoError(t, err)
	return tbl.At(i)
}

func TestFile_ImportedLibraries(t *testing.T) {
	t.Run("TEST SUCCESS: needed and soname", func(t *testing.T) {
		f, err := NewFile(minimalImage(t,
			Dyn{DT_NEEDED, nameLibc},
			Dyn{DT_NEEDED, nameLibfoo},
			Dyn{DT_SONAME, nameBeta},
		).bytes())
		require.NoError(t, err)

		libs, err := f.ImportedLibraries()
		require.NoError(t, err)
		assert.Equal(t, []string{"libc.so.6", "libfoo.so"}, libs)

		soname, ok := f.Soname()
		require.True(t, ok)
		assert.Equal(t, "beta", soname)
	})

	t.Run("TEST SUCCESS: no needed entries", func(t *testing.T) {
		f, err := NewFile(minimalImage(t).bytes())
		require.NoError(t, err)
		libs, err := f.ImportedLibraries()
		require.NoError(t, err)
		assert.Empty(t, libs)
		_, ok := f.Soname()
		assert.False(t, ok)
	})

	t.Run("TEST FAILURE: needed name outside the string table", func(t *testing.T) {
		f, err := NewFile(minimalImage(t, Dyn{DT_NEEDED, nameLibc}, Dyn{DT_NEEDED, 0x7fffffff}).bytes())
		require.NoError(t, err)
		libs, err := f.ImportedLibraries()
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, []string{"libc.so.6"}, libs)
	})
}

func TestFile_Dynamic(t *testing.T) {
	f, err := NewFile(minimalImage(t).bytes())
	require.NoError(t, err)
	_, err = f.Dynamic(1)
	assert.ErrorIs(t, err, ErrNoDynamicSymbols)
	_, err = f.Dynamic(-1)
	assert.ErrorIs(t, err, ErrNoDynamicSymbols)
}
