package syms

type emptyTable struct{}

var _ SymbolTable = (*emptyTable)(nil)

func (*emptyTable) Resolve(uint64) string        { return "" }
func (*emptyTable) Lookup(string) (uint64, bool) { return 0, false }
func (*emptyTable) Cleanup()                     {}
func (*emptyTable) Size() int                    { return 0 }
