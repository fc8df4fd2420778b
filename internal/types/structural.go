// Package types implements the fact lattice (spec §3.2-§3.6): the
// StructuralType inductive lattice, the Schema/StructuralType TypeDescriptor
// carrier, ConstantValue, TypeProvenance, SourceOrigin, and the per-expression
// TypeFact, plus the join/merge algebra of spec §4.3.
package types

import (
	"fmt"
	"sort"

	"github.com/funvibe/regotype/internal/value"
)

// StructuralKind tags a StructuralType's variant.
type StructuralKind int

const (
	KAny StructuralKind = iota
	KUnknown
	KNull
	KBoolean
	KInteger
	KNumber
	KString
	KArray
	KSet
	KObject
	KUnion
	KEnum
)

// StructuralType is the inductive lattice element of spec §3.2. The zero
// value has Kind KAny and is the same as Any(); use the constructors below
// for every other variant.
type StructuralType struct {
	Kind StructuralKind

	// Array/Set element type.
	Elem *StructuralType

	// Object field shape. Ordered for deterministic printing/diagnostics;
	// there is no wildcard entry (unknown extra fields are modeled by Any,
	// per §3.2's invariant).
	Fields []ObjectField

	// Union members. Never contains Any (flattened/canonicalized away) and
	// never holds a single element (canonicalized to that element).
	Members []StructuralType

	// Enum literal set. Finite, deduplicated, distinct from Union.
	Values []value.Value
}

// ObjectField is one entry of an Object shape, kept in insertion order so
// printing and diagnostics are deterministic.
type ObjectField struct {
	Name string
	Type StructuralType
}

func Any() StructuralType     { return StructuralType{Kind: KAny} }
func Unknown() StructuralType { return StructuralType{Kind: KUnknown} }
func Null() StructuralType    { return StructuralType{Kind: KNull} }
func Boolean() StructuralType { return StructuralType{Kind: KBoolean} }
func Integer() StructuralType { return StructuralType{Kind: KInteger} }
func Number() StructuralType  { return StructuralType{Kind: KNumber} }
func Str() StructuralType     { return StructuralType{Kind: KString} }

func Array(elem StructuralType) StructuralType {
	e := elem
	return StructuralType{Kind: KArray, Elem: &e}
}

func Set(elem StructuralType) StructuralType {
	e := elem
	return StructuralType{Kind: KSet, Elem: &e}
}

// Object builds an Object shape. Fields are stored in the order given.
func Object(fields ...ObjectField) StructuralType {
	return StructuralType{Kind: KObject, Fields: append([]ObjectField{}, fields...)}
}

// Union builds a union, flattening nested unions. If any member is Any the
// result is Any itself, so Any never nests inside a Union.
func Union(members ...StructuralType) StructuralType {
	flat := flattenUnion(members)
	if len(flat) == 0 {
		return Unknown()
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return StructuralType{Kind: KUnion, Members: flat}
}

func flattenUnion(members []StructuralType) []StructuralType {
	var out []StructuralType
	for _, m := range members {
		if m.Kind == KAny {
			return []StructuralType{Any()}
		}
		if m.Kind == KUnion {
			out = append(out, flattenUnion(m.Members)...)
			continue
		}
		out = append(out, m)
	}
	return dedupTypes(out)
}

func dedupTypes(ts []StructuralType) []StructuralType {
	var out []StructuralType
	for _, t := range ts {
		dup := false
		for _, o := range out {
			if Equal(t, o) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	return out
}

// Enum builds a finite literal-value set. Deduplicates by the value total
// order. A single-value Enum is still an Enum (distinct from Union, §3.2).
func Enum(values ...value.Value) StructuralType {
	cp := append([]value.Value{}, values...)
	sort.Slice(cp, func(i, j int) bool { return value.Compare(cp[i], cp[j]) < 0 })
	out := cp[:0]
	for i, v := range cp {
		if i == 0 || value.Compare(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}
	return StructuralType{Kind: KEnum, Values: out}
}

func (t StructuralType) String() string {
	switch t.Kind {
	case KAny:
		return "any"
	case KUnknown:
		return "unknown"
	case KNull:
		return "null"
	case KBoolean:
		return "boolean"
	case KInteger:
		return "integer"
	case KNumber:
		return "number"
	case KString:
		return "string"
	case KArray:
		return fmt.Sprintf("array[%s]", t.Elem.String())
	case KSet:
		return fmt.Sprintf("set[%s]", t.Elem.String())
	case KObject:
		return fmt.Sprintf("object{%d fields}", len(t.Fields))
	case KUnion:
		s := "union{"
		for i, m := range t.Members {
			if i > 0 {
				s += "|"
			}
			s += m.String()
		}
		return s + "}"
	case KEnum:
		s := "enum{"
		for i, v := range t.Values {
			if i > 0 {
				s += ","
			}
			s += v.String()
		}
		return s + "}"
	default:
		return "?"
	}
}

// Field returns the named field's type and whether it is present in the
// static shape (absence does not imply the field cannot exist at runtime;
// Object has no wildcard, so callers fall back to Any for non-object bases).
func (t StructuralType) Field(name string) (StructuralType, bool) {
	if t.Kind != KObject {
		return StructuralType{}, false
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type, true
		}
	}
	return StructuralType{}, false
}

// IsScalar reports whether t is one of Null/Boolean/Integer/Number/String.
func (t StructuralType) IsScalar() bool {
	switch t.Kind {
	case KNull, KBoolean, KInteger, KNumber, KString:
		return true
	default:
		return false
	}
}

// IsCollection reports whether t is Array/Set/Object, i.e. something `in`
// and set-ops can meaningfully operate over.
func (t StructuralType) IsCollection() bool {
	switch t.Kind {
	case KArray, KSet, KObject:
		return true
	default:
		return false
	}
}

// IsNumeric reports whether t widens to Integer or Number.
func (t StructuralType) IsNumeric() bool {
	return t.Kind == KInteger || t.Kind == KNumber
}

// Equal is structural equality, used for union dedup and idempotence checks.
func Equal(a, b StructuralType) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KArray, KSet:
		return Equal(*a.Elem, *b.Elem)
	case KObject:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case KUnion:
		if len(a.Members) != len(b.Members) {
			return false
		}
		for _, m := range a.Members {
			found := false
			for _, n := range b.Members {
				if Equal(m, n) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	case KEnum:
		if len(a.Values) != len(b.Values) {
			return false
		}
		for i := range a.Values {
			if value.Compare(a.Values[i], b.Values[i]) != 0 {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// widenEnum converts an Enum to the structural type its members share, used
// whenever an Enum must join with a non-enum (§4.1's join_structural_types
// contract: "Enum joins with non-enum by widening to the structural type of
// its members").
func widenEnum(e StructuralType) StructuralType {
	if len(e.Values) == 0 {
		return Unknown()
	}
	kinds := make([]StructuralKind, 0, len(e.Values))
	for _, v := range e.Values {
		switch v.Kind() {
		case value.KindNull:
			kinds = append(kinds, KNull)
		case value.KindBoolean:
			kinds = append(kinds, KBoolean)
		case value.KindNumber:
			if v.IsInteger() {
				kinds = append(kinds, KInteger)
			} else {
				kinds = append(kinds, KNumber)
			}
		case value.KindString:
			kinds = append(kinds, KString)
		default:
			return Any()
		}
	}
	widened := fromKind(kinds[0])
	for _, k := range kinds[1:] {
		widened = Join(widened, fromKind(k))
	}
	return widened
}

func fromKind(k StructuralKind) StructuralType {
	return StructuralType{Kind: k}
}
