package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

func TestDefaultRegistryLookup(t *testing.T) {
	r := Default()
	s, ok := r.Lookup("count")
	require.True(t, ok)
	assert.Equal(t, "count", s.Name)

	_, ok = r.Lookup("no_such_builtin")
	assert.False(t, ok)
}

func TestCheckCallArityMismatch(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("upper")
	mismatches := CheckCall(s, nil)
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0].Message, "expected 1 argument")
}

func TestCheckCallTypeMismatch(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("upper")
	mismatches := CheckCall(s, []types.TypeFact{types.Structural(types.Integer(), types.ProvUnknown)})
	require.Len(t, mismatches, 1)
	assert.Contains(t, mismatches[0].Message, "must be a string")
}

func TestCheckCallAnyAlwaysCompatible(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("count")
	mismatches := CheckCall(s, []types.TypeFact{types.AnyFact()})
	assert.Empty(t, mismatches)
}

func TestCountFold(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("count")
	v, ok := s.Fold([]value.Value{value.Array(value.Int(1), value.Int(2), value.Int(3))})
	require.True(t, ok)
	assert.Equal(t, 0, value.Compare(v, value.Int(3)))
}

func TestSumFold(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("sum")
	v, ok := s.Fold([]value.Value{value.Array(value.Int(1), value.Int(2), value.Int(3))})
	require.True(t, ok)
	assert.Equal(t, 0, value.Compare(v, value.Int(6)))

	_, ok = s.Fold([]value.Value{value.Array(value.String("x"))})
	assert.False(t, ok, "non-numeric elements must not fold")
}

func TestStringBuiltinsFold(t *testing.T) {
	r := Default()

	upper, _ := r.Lookup("upper")
	v, _ := upper.Fold([]value.Value{value.String("abc")})
	assert.Equal(t, "ABC", v.Str())

	contains, _ := r.Lookup("contains")
	v, _ = contains.Fold([]value.Value{value.String("hello"), value.String("ell")})
	assert.True(t, v.Bool())
}

func TestArrayConcatReturnTypeJoinsElements(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("array.concat")
	ret := s.Return([]types.TypeFact{
		types.Structural(types.Array(types.Integer()), types.ProvUnknown),
		types.Structural(types.Array(types.Str()), types.ProvUnknown),
	})
	assert.Equal(t, types.KArray, ret.Kind)
	assert.Equal(t, types.KUnion, ret.Elem.Kind)
}

func TestArrayConcatFold(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("array.concat")
	v, ok := s.Fold([]value.Value{value.Array(value.Int(1)), value.Array(value.Int(2))})
	require.True(t, ok)
	assert.Equal(t, 0, value.Compare(v, value.Array(value.Int(1), value.Int(2))))
}

func TestWalkIsImpureNoFold(t *testing.T) {
	r := Default()
	s, _ := r.Lookup("walk")
	assert.False(t, s.Pure)
	assert.Nil(t, s.Fold)
}
