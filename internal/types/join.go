package types

import (
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/funvibe/regotype/internal/value"
)

// Join is the canonical pairwise join of §4.3's join_structural_types,
// specialized to two operands; JoinAll folds a slice through it. Any absorbs
// everything; Integer joins with Number to Number; two Arrays/Sets join
// element-wise; two Objects intersect on common fields (each field joined)
// keeping non-common fields with the missing side widened to Any; two Enums
// union their value sets; an Enum joining a compatible structural type
// widens to that structural type; everything else becomes a flattened,
// deduplicated Union.
func Join(a, b StructuralType) StructuralType {
	if a.Kind == KAny || b.Kind == KAny {
		return Any()
	}
	if a.Kind == KUnknown {
		return b
	}
	if b.Kind == KUnknown {
		return a
	}
	if Equal(a, b) {
		return a
	}

	if a.Kind == KEnum && b.Kind == KEnum {
		return Enum(append(append([]value.Value{}, a.Values...), b.Values...)...)
	}
	if a.Kind == KEnum {
		return Join(widenEnum(a), b)
	}
	if b.Kind == KEnum {
		return Join(a, widenEnum(b))
	}

	if a.Kind == KInteger && b.Kind == KNumber || a.Kind == KNumber && b.Kind == KInteger {
		return Number()
	}

	if a.Kind == KArray && b.Kind == KArray {
		return Array(Join(*a.Elem, *b.Elem))
	}
	if a.Kind == KSet && b.Kind == KSet {
		return Set(Join(*a.Elem, *b.Elem))
	}
	if a.Kind == KObject && b.Kind == KObject {
		return joinObjects(a, b)
	}

	// Disjoint leaf kinds, or collection-kind mismatches: widen to a Union.
	var aMembers, bMembers []StructuralType
	if a.Kind == KUnion {
		aMembers = a.Members
	} else {
		aMembers = []StructuralType{a}
	}
	if b.Kind == KUnion {
		bMembers = b.Members
	} else {
		bMembers = []StructuralType{b}
	}
	return Union(append(aMembers, bMembers...)...)
}

// joinObjects joins two Object shapes field-by-field. The per-field joins
// are collected into a map keyed by field name (so a field present on both
// sides is only joined once) and the result's field order is the sorted
// key order, keeping printed/diagnostic shapes deterministic regardless of
// the two inputs' original field order.
func joinObjects(a, b StructuralType) StructuralType {
	joined := make(map[string]StructuralType, len(a.Fields)+len(b.Fields))
	for _, fa := range a.Fields {
		if fb, ok := b.Field(fa.Name); ok {
			joined[fa.Name] = Join(fa.Type, fb)
		} else {
			joined[fa.Name] = Join(fa.Type, Any())
		}
	}
	for _, fb := range b.Fields {
		if _, ok := joined[fb.Name]; ok {
			continue
		}
		joined[fb.Name] = Join(fb.Type, Any())
	}

	names := maps.Keys(joined)
	slices.Sort(names)
	fields := make([]ObjectField, len(names))
	for i, n := range names {
		fields[i] = ObjectField{Name: n, Type: joined[n]}
	}
	return Object(fields...)
}

// JoinAll folds Join over a slice, returning Any for an empty slice (§4.2:
// "descriptor = Array(join of element structural types; Any if empty)").
func JoinAll(ts []StructuralType) StructuralType {
	if len(ts) == 0 {
		return Any()
	}
	acc := ts[0]
	for _, t := range ts[1:] {
		acc = Join(acc, t)
	}
	return acc
}

// LeafKindsDisjoint reports whether two structural types are "provably
// disjoint" in the sense spec §4.2/§4.7 require for emitting TypeMismatch:
// scalar leaf kinds differ, or one is a collection kind and the other is a
// different collection kind (or a scalar). Any/Unknown are never disjoint
// from anything (they absorb).
func LeafKindsDisjoint(a, b StructuralType) bool {
	if a.Kind == KAny || b.Kind == KAny || a.Kind == KUnknown || b.Kind == KUnknown {
		return false
	}
	if a.Kind == KUnion || b.Kind == KUnion || a.Kind == KEnum || b.Kind == KEnum {
		// Widen unions/enums to their constituent leaf kinds and require
		// every pairing to be disjoint before calling the pair disjoint.
		for _, x := range leafAlternatives(a) {
			for _, y := range leafAlternatives(b) {
				if !leafDisjointSimple(x, y) {
					return false
				}
			}
		}
		return true
	}
	return leafDisjointSimple(a, b)
}

func leafAlternatives(t StructuralType) []StructuralType {
	switch t.Kind {
	case KUnion:
		return t.Members
	case KEnum:
		return []StructuralType{widenEnum(t)}
	default:
		return []StructuralType{t}
	}
}

func leafDisjointSimple(a, b StructuralType) bool {
	if a.Kind == b.Kind {
		return false
	}
	numeric := func(k StructuralKind) bool { return k == KInteger || k == KNumber }
	if numeric(a.Kind) && numeric(b.Kind) {
		return false
	}
	return true
}
