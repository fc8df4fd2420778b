package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/funvibe/regotype/internal/value"
)

func TestJoinIdempotent(t *testing.T) {
	ts := []StructuralType{Any(), Unknown(), Integer(), Number(), Str(),
		Array(Integer()), Set(Str()), Object(ObjectField{Name: "a", Type: Integer()})}
	for _, ty := range ts {
		assert.True(t, Equal(Join(ty, ty), ty), "join(%s,%s) should equal %s", ty, ty, ty)
	}
}

func TestJoinIntegerNumber(t *testing.T) {
	assert.True(t, Equal(Join(Integer(), Number()), Number()))
	assert.True(t, Equal(Join(Number(), Integer()), Number()))
}

func TestJoinAnyAbsorbs(t *testing.T) {
	assert.True(t, Equal(Join(Any(), Str()), Any()))
	assert.True(t, Equal(Join(Array(Integer()), Any()), Any()))
}

func TestJoinUnknownIdentity(t *testing.T) {
	assert.True(t, Equal(Join(Unknown(), Str()), Str()))
	assert.True(t, Equal(Join(Str(), Unknown()), Str()))
}

func TestJoinObjectsIntersectFields(t *testing.T) {
	a := Object(ObjectField{Name: "x", Type: Integer()}, ObjectField{Name: "y", Type: Str()})
	b := Object(ObjectField{Name: "x", Type: Number()})
	j := Join(a, b)
	assert.Equal(t, KObject, j.Kind)
	xt, ok := j.Field("x")
	assert.True(t, ok)
	assert.True(t, Equal(xt, Number()))
	yt, ok := j.Field("y")
	assert.True(t, ok)
	assert.True(t, Equal(yt, Any()))
}

func TestJoinDisjointLeafBecomesUnion(t *testing.T) {
	j := Join(Str(), Boolean())
	assert.Equal(t, KUnion, j.Kind)
	assert.True(t, LeafKindsDisjoint(Str(), Boolean()))
	assert.False(t, LeafKindsDisjoint(Integer(), Number()))
}

func TestEnumWidensOnJoinWithStructural(t *testing.T) {
	e := Enum(value.String("red"), value.String("green"))
	j := Join(e, Str())
	assert.True(t, Equal(j, Str()))
}

func TestRecordRuleHeadFactEnumWidening(t *testing.T) {
	red := Literal(Str(), value.String("red"))
	green := Literal(Str(), value.String("green"))
	merged := RecordRuleHeadFact(nil, red)
	merged = RecordRuleHeadFact(&merged, green)
	assert.Equal(t, KEnum, merged.Descriptor.Structural.Kind)
	assert.False(t, merged.Constant.IsKnown())
	assert.Equal(t, ProvLiteral, merged.Provenance)
}

func TestMergeRuleFactsConstantAgreement(t *testing.T) {
	a := Literal(Integer(), value.Int(3))
	b := Literal(Integer(), value.Int(3))
	m := MergeRuleFacts([]TypeFact{a, b})
	assert.True(t, m.Constant.IsKnown())
	assert.Equal(t, 0, value.Compare(m.Constant.Value, value.Int(3)))
}

func TestMergeRuleFactsConstantDisagreement(t *testing.T) {
	a := Literal(Integer(), value.Int(3))
	b := Literal(Integer(), value.Int(4))
	m := MergeRuleFacts([]TypeFact{a, b})
	assert.False(t, m.Constant.IsKnown())
}
