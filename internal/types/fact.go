package types

import (
	"github.com/google/uuid"

	"github.com/funvibe/regotype/internal/value"
)

// ConstantKind distinguishes Known from Unknown constants (§3.3).
type ConstantKind int

const (
	ConstantUnknown ConstantKind = iota
	ConstantKnown
)

// ConstantValue is `Known(Value) | Unknown`. Known(Undefined) means the
// expression is proven to fail — a distinct, useful fact from simply not
// knowing the value.
type ConstantValue struct {
	Kind  ConstantKind
	Value value.Value
}

func Known(v value.Value) ConstantValue { return ConstantValue{Kind: ConstantKnown, Value: v} }
func UnknownConstant() ConstantValue    { return ConstantValue{Kind: ConstantUnknown} }

func (c ConstantValue) IsKnown() bool       { return c.Kind == ConstantKnown }
func (c ConstantValue) IsKnownUndefined() bool {
	return c.Kind == ConstantKnown && c.Value.IsUndefined()
}

// Provenance is one of the tags of §3.4.
type Provenance int

const (
	ProvUnknown Provenance = iota
	ProvLiteral
	ProvSchemaInput
	ProvSchemaData
	ProvPropagated
	ProvAssignment
	ProvBuiltin
	ProvRule
)

// provenanceStrength ranks provenance for merge_rule_facts' "preserve the
// strongest provenance" rule: Literal > Rule > Propagated > Unknown. Other
// tags are treated as Propagated-strength, since the spec only calls out
// those four explicitly.
func provenanceStrength(p Provenance) int {
	switch p {
	case ProvLiteral:
		return 3
	case ProvRule:
		return 2
	case ProvUnknown:
		return 0
	default:
		return 1
	}
}

// PathSegmentKind tags a SourceOrigin path step.
type PathSegmentKind int

const (
	SegField PathSegmentKind = iota
	SegIndex
	SegAny
)

// PathSegment is one step of a SourceOrigin path (§3.5).
type PathSegment struct {
	Kind  PathSegmentKind
	Field string
	Index int
}

func FieldSeg(name string) PathSegment { return PathSegment{Kind: SegField, Field: name} }
func IndexSeg(i int) PathSegment       { return PathSegment{Kind: SegIndex, Index: i} }
func AnySeg() PathSegment              { return PathSegment{Kind: SegAny} }

// Root names which external document an origin is rooted at.
type Root int

const (
	RootInput Root = iota
	RootData
)

// SourceOrigin is a back-reference from a fact to the input/data path that
// produced it (§3.5).
type SourceOrigin struct {
	Root    Root
	Path    []PathSegment
	Derived bool
}

// Extend returns a copy of o with seg appended to its path, optionally
// marking the result as derived (transformed from the origin rather than a
// direct alias of it).
func (o SourceOrigin) Extend(seg PathSegment, derived bool) SourceOrigin {
	path := append(append([]PathSegment{}, o.Path...), seg)
	return SourceOrigin{Root: o.Root, Path: path, Derived: o.Derived || derived}
}

func originsEqual(a, b SourceOrigin) bool {
	if a.Root != b.Root || a.Derived != b.Derived || len(a.Path) != len(b.Path) {
		return false
	}
	for i := range a.Path {
		if a.Path[i] != b.Path[i] {
			return false
		}
	}
	return true
}

// UnionOrigins merges two origin sets, deduplicating.
func UnionOrigins(a, b []SourceOrigin) []SourceOrigin {
	out := append([]SourceOrigin{}, a...)
	for _, o := range b {
		dup := false
		for _, e := range out {
			if originsEqual(e, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, o)
		}
	}
	return out
}

// MarkDerived returns a copy of each origin with Derived forced true, used
// by constructs (set literals, comprehensions) that drop positional
// correspondence with their source.
func MarkDerived(origins []SourceOrigin) []SourceOrigin {
	out := make([]SourceOrigin, len(origins))
	for i, o := range origins {
		out[i] = SourceOrigin{Root: o.Root, Path: o.Path, Derived: true}
	}
	return out
}

// SpecializationRef identifies one RuleSpecializationRecord a fact's
// inference depended on, so the result builder can trace which
// specializations contributed to a given expression's fact.
type SpecializationRef struct {
	ID         uuid.UUID
	ModuleIdx  int
	RuleIdx    int
	ShapeKey   string
}

// NewSpecializationRef stamps a fresh, stable identity for a specialization
// of (moduleIdx, ruleIdx) under the given argument shape key.
func NewSpecializationRef(moduleIdx, ruleIdx int, shapeKey string) SpecializationRef {
	return SpecializationRef{ID: uuid.New(), ModuleIdx: moduleIdx, RuleIdx: ruleIdx, ShapeKey: shapeKey}
}

// TypeFact is the unit fact of §3.6: everything the analyzer knows about one
// expression.
type TypeFact struct {
	Descriptor         TypeDescriptor
	Constant           ConstantValue
	Provenance         Provenance
	Origins            []SourceOrigin
	SpecializationHits []SpecializationRef
}

func NewFact(d TypeDescriptor, c ConstantValue, p Provenance, origins ...SourceOrigin) TypeFact {
	return TypeFact{Descriptor: d, Constant: c, Provenance: p, Origins: origins}
}

// Structural is a convenience constructor for the common case of a purely
// structural, non-constant fact.
func Structural(t StructuralType, p Provenance, origins ...SourceOrigin) TypeFact {
	return TypeFact{Descriptor: FromStructural(t), Constant: UnknownConstant(), Provenance: p, Origins: origins}
}

// Literal builds the fact a scalar/literal expression produces: a known
// constant with Literal provenance and no origins.
func Literal(t StructuralType, v value.Value) TypeFact {
	return TypeFact{Descriptor: FromStructural(t), Constant: Known(v), Provenance: ProvLiteral}
}

// AnyFact is the maximally-uninformative fact returned when resolution
// fails (e.g. an unresolved variable, §4.2's Variable contract).
func AnyFact() TypeFact {
	return TypeFact{Descriptor: AnyDescriptor(), Constant: UnknownConstant(), Provenance: ProvUnknown}
}
