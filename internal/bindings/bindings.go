// Package bindings implements the lexical scope stack of spec §3.7: a
// stack of scopes mapping bound names to facts, updated as destructuring
// plans fire.
package bindings

import "github.com/funvibe/regotype/internal/types"

type scope struct {
	names map[string]types.TypeFact
}

// Stack is the binding context. A root scope is always present, per §3.7.
type Stack struct {
	scopes []*scope
}

func NewStack() *Stack {
	return &Stack{scopes: []*scope{{names: map[string]types.TypeFact{}}}}
}

// PushScope frames iteration and comprehension bodies (§3.7).
func (s *Stack) PushScope() {
	s.scopes = append(s.scopes, &scope{names: map[string]types.TypeFact{}})
}

// PopScope discards the innermost scope. Popping the root scope is a
// programmer error (§7's invariant-violation class).
func (s *Stack) PopScope() {
	if len(s.scopes) <= 1 {
		panic("bindings: cannot pop root scope")
	}
	s.scopes = s.scopes[:len(s.scopes)-1]
}

// Assign writes into the top scope (§3.7).
func (s *Stack) Assign(name string, fact types.TypeFact) {
	s.scopes[len(s.scopes)-1].names[name] = fact
}

// AssignRoot writes into the root scope, used by the Assignment expression
// contract (§4.2) so a binding made mid-iteration is still visible to
// statements analyzed after the loop that produced it.
func (s *Stack) AssignRoot(name string, fact types.TypeFact) {
	s.scopes[0].names[name] = fact
}

// Lookup searches top-down (§3.7).
func (s *Stack) Lookup(name string) (types.TypeFact, bool) {
	for i := len(s.scopes) - 1; i >= 0; i-- {
		if f, ok := s.scopes[i].names[name]; ok {
			return f, true
		}
	}
	return types.TypeFact{}, false
}

// Depth reports the current scope nesting, useful for tests/assertions
// that push/pop is balanced.
func (s *Stack) Depth() int { return len(s.scopes) }
