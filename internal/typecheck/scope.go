package typecheck

import (
	"sort"

	"github.com/asurkis/experimental-interpreter/internal/ir"
	"github.com/asurkis/experimental-interpreter/internal/types"
)

// Symbol represents a binding visible at the current point of the program.
// A nil Type marks a binding whose value failed to check; references to it
// fail without a second diagnostic.
type Symbol struct {
	Name string
	Type types.Type
	Slot int
}

// Local returns the resolved handle the typed tree stores for this symbol.
func (s *Symbol) Local() ir.Local {
	return ir.Local{Slot: s.Slot, Name: s.Name}
}

// Scope is a stack-disciplined mapping from names to symbols. Slots are handed
// out in binding order, so a symbol's slot equals the number of bindings live
// when it was introduced.
type Scope struct {
	symbols map[string]*Symbol
	depth   int
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{symbols: make(map[string]*Symbol)}
}

// Lookup finds the innermost symbol bound to name.
func (s *Scope) Lookup(name string) *Symbol {
	return s.symbols[name]
}

// Depth returns the number of live bindings, which is the next free slot.
func (s *Scope) Depth() int {
	return s.depth
}

// Declare binds name for the rest of the scope's life. It is used for the
// prelude, which is never unwound.
func (s *Scope) Declare(name string, t types.Type) *Symbol {
	sym := &Symbol{Name: name, Type: t, Slot: s.depth}
	s.symbols[name] = sym
	s.depth++
	return sym
}

// Bind binds name while body runs, then restores the shadowed symbol, or
// removes the name if there was none. Restoration happens on every exit path.
func (s *Scope) Bind(name string, t types.Type, body func(sym *Symbol)) {
	prev, had := s.symbols[name]
	sym := &Symbol{Name: name, Type: t, Slot: s.depth}
	s.symbols[name] = sym
	s.depth++
	defer func() {
		s.depth--
		if had {
			s.symbols[name] = prev
		} else {
			delete(s.symbols, name)
		}
	}()
	body(sym)
}

// Names returns the visible names in sorted order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.symbols))
	for name := range s.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
