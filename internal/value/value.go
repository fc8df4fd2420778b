// Package value implements the runtime value model the type analyzer
// reasons about: the same null/boolean/number/string/array/set/object
// universe a policy evaluator would use, plus the distinguished Undefined
// value that denotes ordinary (non-error) failure.
package value

import (
	"fmt"
	"math/big"
	"sort"
)

// Kind tags a Value's shape without carrying its payload.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindSet
	KindObject
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindSet:
		return "set"
	case KindObject:
		return "object"
	case KindUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// Value is an immutable runtime value. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    *big.Rat // nil for non-numbers
	isI  bool     // true if n is known integer-valued
	s    string
	arr  []Value
	set  []Value // kept sorted by Compare, deduplicated
	obj  []kv
}

type kv struct {
	key Value
	val Value
}

var Null = Value{kind: KindNull}
var Undefined = Value{kind: KindUndefined}

func Bool(b bool) Value { return Value{kind: KindBoolean, b: b} }

func String(s string) Value { return Value{kind: KindString, s: s} }

// Int builds an integer-valued number.
func Int(i int64) Value {
	return Value{kind: KindNumber, n: new(big.Rat).SetInt64(i), isI: true}
}

// Float builds a (possibly non-integer) number.
func Float(f float64) Value {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		r = new(big.Rat)
	}
	return Value{kind: KindNumber, n: r, isI: r.IsInt()}
}

// Rat builds a number from an arbitrary-precision rational, inferring
// integer-ness from the ratio itself.
func Rat(r *big.Rat) Value {
	return Value{kind: KindNumber, n: r, isI: r.IsInt()}
}

func Array(vs ...Value) Value { return Value{kind: KindArray, arr: append([]Value{}, vs...)} }

// Set builds a set value, deduplicating and sorting by the total order.
func Set(vs ...Value) Value {
	cp := append([]Value{}, vs...)
	sort.Slice(cp, func(i, j int) bool { return Compare(cp[i], cp[j]) < 0 })
	out := cp[:0]
	for i, v := range cp {
		if i == 0 || Compare(out[len(out)-1], v) != 0 {
			out = append(out, v)
		}
	}
	return Value{kind: KindSet, set: out}
}

// Object builds an object value from key/value pairs, sorted by key under
// the total order (object key order is total per §3.1).
func Object(pairs ...[2]Value) Value {
	o := make([]kv, len(pairs))
	for i, p := range pairs {
		o[i] = kv{key: p[0], val: p[1]}
	}
	sort.Slice(o, func(i, j int) bool { return Compare(o[i].key, o[j].key) < 0 })
	return Value{kind: KindObject, obj: o}
}

// ObjectFromStrings is a convenience constructor for string-keyed objects,
// the common case in policy documents.
func ObjectFromStrings(m map[string]Value) Value {
	pairs := make([]kv, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, kv{key: String(k), val: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return Compare(pairs[i].key, pairs[j].key) < 0 })
	return Value{kind: KindObject, obj: pairs}
}

func (v Value) Kind() Kind        { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }
func (v Value) IsNull() bool      { return v.kind == KindNull }
func (v Value) Bool() bool        { return v.b }
func (v Value) Str() string       { return v.s }
func (v Value) IsInteger() bool   { return v.kind == KindNumber && v.isI }
func (v Value) Rat() *big.Rat     { return v.n }

func (v Value) Array() []Value {
	if v.kind != KindArray {
		return nil
	}
	return v.arr
}

func (v Value) SetElems() []Value {
	if v.kind != KindSet {
		return nil
	}
	return v.set
}

// Fields returns the object's (key, value) pairs in total key order.
func (v Value) Fields() [][2]Value {
	if v.kind != KindObject {
		return nil
	}
	out := make([][2]Value, len(v.obj))
	for i, p := range v.obj {
		out[i] = [2]Value{p.key, p.val}
	}
	return out
}

// Get looks up a field by string key, returning Undefined if absent.
func (v Value) Get(key string) Value {
	if v.kind != KindObject {
		return Undefined
	}
	k := String(key)
	for _, p := range v.obj {
		if Compare(p.key, k) == 0 {
			return p.val
		}
	}
	return Undefined
}

// Index returns the i-th array element, or Undefined if out of bounds.
func (v Value) Index(i int) Value {
	if v.kind != KindArray || i < 0 || i >= len(v.arr) {
		return Undefined
	}
	return v.arr[i]
}

// Contains reports set/array/string membership.
func (v Value) Contains(elem Value) bool {
	switch v.kind {
	case KindArray:
		for _, e := range v.arr {
			if Compare(e, elem) == 0 {
				return true
			}
		}
	case KindSet:
		_, ok := sort.Find(len(v.set), func(i int) int { return Compare(elem, v.set[i]) })
		return ok
	case KindString:
		if elem.kind == KindString {
			return containsSubstr(v.s, elem.s)
		}
	}
	return false
}

func containsSubstr(haystack, needle string) bool {
	if len(needle) == 0 {
		return true
	}
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return true
		}
	}
	return false
}

// Compare implements the language's total order: null < boolean < number <
// string < array < set < object, with lexicographic comparison within a
// kind. The analyzer treats this order as given (§3.1) but needs a concrete
// instance to fold comparisons and to canonicalize sets/objects.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		return int(a.kind) - int(b.kind)
	}
	switch a.kind {
	case KindNull, KindUndefined:
		return 0
	case KindBoolean:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case KindNumber:
		return a.n.Cmp(b.n)
	case KindString:
		switch {
		case a.s < b.s:
			return -1
		case a.s > b.s:
			return 1
		default:
			return 0
		}
	case KindArray:
		return compareSlices(a.arr, b.arr)
	case KindSet:
		return compareSlices(a.set, b.set)
	case KindObject:
		n := len(a.obj)
		if len(b.obj) < n {
			n = len(b.obj)
		}
		for i := 0; i < n; i++ {
			if c := Compare(a.obj[i].key, b.obj[i].key); c != 0 {
				return c
			}
			if c := Compare(a.obj[i].val, b.obj[i].val); c != 0 {
				return c
			}
		}
		return len(a.obj) - len(b.obj)
	default:
		return 0
	}
}

func compareSlices(a, b []Value) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

func Equal(a, b Value) bool { return Compare(a, b) == 0 }

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindBoolean:
		return fmt.Sprintf("%t", v.b)
	case KindNumber:
		return v.n.RatString()
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindSet:
		return fmt.Sprintf("%v", v.set)
	case KindObject:
		return fmt.Sprintf("%v", v.obj)
	default:
		return "?"
	}
}
