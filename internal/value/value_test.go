package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetDedupAndSort(t *testing.T) {
	s := Set(Int(3), Int(1), Int(2), Int(1))
	elems := s.SetElems()
	assert.Len(t, elems, 3)
	assert.Equal(t, 0, Compare(elems[0], Int(1)))
	assert.Equal(t, 0, Compare(elems[1], Int(2)))
	assert.Equal(t, 0, Compare(elems[2], Int(3)))
}

func TestObjectSortsByKey(t *testing.T) {
	o := Object([2]Value{String("b"), Int(2)}, [2]Value{String("a"), Int(1)})
	fields := o.Fields()
	require := assert.New(t)
	require.Len(fields, 2)
	require.Equal("a", fields[0][0].Str())
	require.Equal("b", fields[1][0].Str())
	require.Equal(0, Compare(o.Get("a"), Int(1)))
	require.True(o.Get("missing").IsUndefined())
}

func TestCompareTotalOrderAcrossKinds(t *testing.T) {
	assert.True(t, Compare(Null, Bool(false)) < 0)
	assert.True(t, Compare(Bool(true), Int(0)) < 0)
	assert.True(t, Compare(Int(1), String("a")) < 0)
	assert.True(t, Compare(String("a"), Array(Int(1))) < 0)
	assert.True(t, Compare(Array(Int(1)), Set(Int(1))) < 0)
	assert.True(t, Compare(Set(Int(1)), Object([2]Value{String("a"), Int(1)})) < 0)
}

func TestContains(t *testing.T) {
	assert.True(t, Array(Int(1), Int(2)).Contains(Int(2)))
	assert.False(t, Array(Int(1), Int(2)).Contains(Int(3)))
	assert.True(t, Set(Int(1), Int(2)).Contains(Int(1)))
	assert.True(t, String("hello world").Contains(String("wor")))
	assert.False(t, String("hello world").Contains(String("xyz")))
}

func TestIntegerVsFloat(t *testing.T) {
	assert.True(t, Int(3).IsInteger())
	assert.False(t, Float(3.5).IsInteger())
	assert.True(t, Float(3.0).IsInteger())
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Array(Int(1), Int(2)), Array(Int(1), Int(2))))
	assert.False(t, Equal(Array(Int(1), Int(2)), Array(Int(2), Int(1))))
}
