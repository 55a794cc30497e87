package compiler

import "github.com/dolthub/swiss"

// bindingKind disambiguates the two reference kinds a scope entry can be:
// a local stack slot, or an index into the constant pool.
type bindingKind uint8

const (
	localBinding bindingKind = iota
	globalConstBinding
)

type binding struct {
	kind  bindingKind
	index uint64 // local slot, or constant pool index
}

// scope is one level of the compiler's scope stack: a name-to-binding
// table. Scope 0 (the base scope) holds only globalConstBinding entries;
// every other scope holds only localBinding entries.
type scope struct {
	names *swiss.Map[string, binding]
}

func newScope() *scope {
	return &scope{names: swiss.NewMap[string, binding](uint32(8))}
}

func (s *scope) declareLocal(name string, slot uint64) bool {
	if _, ok := s.names.Get(name); ok {
		return false
	}
	s.names.Put(name, binding{kind: localBinding, index: slot})
	return true
}

func (s *scope) declareGlobalConst(name string, idx uint64) bool {
	if _, ok := s.names.Get(name); ok {
		return false
	}
	s.names.Put(name, binding{kind: globalConstBinding, index: idx})
	return true
}

func (s *scope) size() int { return s.names.Count() }

// resolve walks scopes from innermost to outermost (index 0 last).
func resolve(scopes []*scope, name string) (binding, bool) {
	for i := len(scopes) - 1; i >= 0; i-- {
		if b, ok := scopes[i].names.Get(name); ok {
			return b, true
		}
	}
	return binding{}, false
}
