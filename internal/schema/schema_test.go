package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/regotype/internal/types"
)

func TestGetPropertyKnownAndMissing(t *testing.T) {
	s := New(KindObject).WithProperty("name", New(KindString))

	sub, err := s.GetProperty("name")
	require.NoError(t, err)
	assert.Equal(t, KindString, sub.AsType())

	_, err = s.GetProperty("missing")
	assert.ErrorIs(t, err, ErrNoSuchProperty)
}

func TestGetPropertyFallsBackToAdditional(t *testing.T) {
	s := New(KindObject).WithAdditional(New(KindNumber))
	sub, err := s.GetProperty("anything")
	require.NoError(t, err)
	assert.Equal(t, KindNumber, sub.AsType())
}

func TestStructuralProjection(t *testing.T) {
	s := New(KindObject).WithProperty("name", New(KindString))
	proj := s.StructuralProjection()
	assert.Equal(t, types.KObject, proj.Kind)
	ft, ok := proj.Field("name")
	require.True(t, ok)
	assert.Equal(t, types.KString, ft.Kind)
}

func TestStructuralProjectionArray(t *testing.T) {
	s := New(KindArray).WithItems(New(KindInteger))
	proj := s.StructuralProjection()
	assert.Equal(t, types.KArray, proj.Kind)
	assert.Equal(t, types.KInteger, proj.Elem.Kind)
}

func TestAllowsValue(t *testing.T) {
	s := New(KindString).WithEnum("red", "green", "blue")
	assert.True(t, s.AllowsValue("red"))
	assert.False(t, s.AllowsValue("purple"))

	unconstrained := New(KindString)
	assert.True(t, unconstrained.AllowsValue("anything"))
}

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
type: object
properties:
  name:
    type: string
  age:
    type: integer
`)
	s, err := LoadYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, KindObject, s.AsType())

	name, err := s.GetProperty("name")
	require.NoError(t, err)
	assert.Equal(t, KindString, name.AsType())

	age, err := s.GetProperty("age")
	require.NoError(t, err)
	assert.Equal(t, KindInteger, age.AsType())
}

func TestNilSchemaIsAny(t *testing.T) {
	var s *Schema
	assert.Equal(t, KindAny, s.AsType())
	assert.Equal(t, types.KAny, s.StructuralProjection().Kind)
	assert.True(t, s.AllowsValue("anything"))
}
