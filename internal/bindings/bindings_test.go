package bindings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

func TestAssignAndLookupInTopScope(t *testing.T) {
	s := NewStack()
	s.Assign("x", types.AnyFact())
	f, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, types.AnyFact(), f)
}

func TestPushPopScoping(t *testing.T) {
	s := NewStack()
	s.Assign("outer", types.Literal(types.Str(), value.String("hi")))
	s.PushScope()
	assert.Equal(t, 2, s.Depth())

	_, ok := s.Lookup("outer")
	assert.True(t, ok, "inner scope should see outer bindings")

	s.Assign("inner", types.AnyFact())
	s.PopScope()
	assert.Equal(t, 1, s.Depth())

	_, ok = s.Lookup("inner")
	assert.False(t, ok, "inner binding must not leak after pop")
}

func TestPopRootPanics(t *testing.T) {
	s := NewStack()
	assert.Panics(t, func() { s.PopScope() })
}

func TestAssignRootEscapesNestedScope(t *testing.T) {
	s := NewStack()
	s.PushScope()
	s.AssignRoot("x", types.AnyFact())
	s.PopScope()

	_, ok := s.Lookup("x")
	assert.True(t, ok, "AssignRoot must bind in the root scope regardless of current depth")
}

func TestLookupMissing(t *testing.T) {
	s := NewStack()
	_, ok := s.Lookup("nope")
	assert.False(t, ok)
}
