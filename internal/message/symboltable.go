package message

import binpkg "github.com/baltrad/vpconvert/internal/binary"

// SymbolTable is the symbol table message (type 0x0011) of old-style
// groups. It locates the B-tree of member entries and the heap holding
// their names.
type SymbolTable struct {
	BTreeAddress     uint64
	LocalHeapAddress uint64
}

func (m *SymbolTable) Type() Type { return TypeSymbolTable }

func parseSymbolTable(data []byte, r *binpkg.Reader) (*SymbolTable, error) {
	c := newCursor(data, r, "symbol table")
	st := &SymbolTable{BTreeAddress: c.offset(), LocalHeapAddress: c.offset()}
	if c.err != nil {
		return nil, c.err
	}
	return st, nil
}
