// Package builtins implements the builtin dispatch table spec §4.2's
// function-call contract and §9's "Dynamic dispatch is limited to builtin
// specs" describe: a lookup by name returns a struct describing parameter
// templates and a return-type computation, with no virtual dispatch in the
// inferencer's hot path.
package builtins

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// ParamTemplateKind enumerates the parameter-shape templates §4.2
// mentions by name.
type ParamTemplateKind int

const (
	TAny ParamTemplateKind = iota
	TArrayAny
	TCollectionAny
	TSameAsArgument
	TCollectionElement
	TNumeric
	TString
	TBoolean
	TInteger
)

// ParamTemplate is one parameter's expected shape. Index is used by
// TSameAsArgument/TCollectionElement to reference another argument.
type ParamTemplate struct {
	Kind  ParamTemplateKind
	Index int
}

func Any() ParamTemplate            { return ParamTemplate{Kind: TAny} }
func ArrayAny() ParamTemplate        { return ParamTemplate{Kind: TArrayAny} }
func CollectionAny() ParamTemplate  { return ParamTemplate{Kind: TCollectionAny} }
func Numeric() ParamTemplate        { return ParamTemplate{Kind: TNumeric} }
func StringParam() ParamTemplate    { return ParamTemplate{Kind: TString} }
func SameAsArgument(i int) ParamTemplate {
	return ParamTemplate{Kind: TSameAsArgument, Index: i}
}
func CollectionElement(i int) ParamTemplate {
	return ParamTemplate{Kind: TCollectionElement, Index: i}
}

// Spec describes one builtin: its parameter templates, whether it is pure
// (foldable when every argument is constant), a return-type computation
// over the inferred argument facts, and the fold function itself.
type Spec struct {
	Name    string
	Params  []ParamTemplate
	Pure    bool
	Return  func(args []types.TypeFact) types.StructuralType
	Fold    func(args []value.Value) (value.Value, bool)
}

// Registry is a name -> Spec lookup, the "dynamic dispatch ... limited to
// builtin specs" table of §9.
type Registry struct {
	specs map[string]Spec
}

func NewRegistry() *Registry { return &Registry{specs: map[string]Spec{}} }

func (r *Registry) Register(s Spec) { r.specs[s.Name] = s }

func (r *Registry) Lookup(name string) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// Mismatch describes one arity/parameter-type violation (§4.7's "Builtin
// arity/parameter-type mismatch -> warning").
type Mismatch struct {
	Message string
}

// CheckCall validates args against spec's parameter templates, returning
// every mismatch found (empty if the call is well-typed).
func CheckCall(s Spec, args []types.TypeFact) []Mismatch {
	var out []Mismatch
	if len(args) != len(s.Params) {
		out = append(out, Mismatch{Message: fmt.Sprintf(
			"%s: expected %d argument(s), got %d", s.Name, len(s.Params), len(args))})
		return out
	}
	for i, tmpl := range args {
		pt := s.Params[i]
		st := tmpl.Descriptor.AsStructural()
		switch pt.Kind {
		case TAny:
			// always compatible
		case TArrayAny:
			if st.Kind != types.KArray && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be an array, got %s", s.Name, i, st)})
			}
		case TCollectionAny:
			if !st.IsCollection() && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be a collection, got %s", s.Name, i, st)})
			}
		case TNumeric:
			if !st.IsNumeric() && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be numeric, got %s", s.Name, i, st)})
			}
		case TString:
			if st.Kind != types.KString && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be a string, got %s", s.Name, i, st)})
			}
		case TBoolean:
			if st.Kind != types.KBoolean && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be a boolean, got %s", s.Name, i, st)})
			}
		case TInteger:
			if st.Kind != types.KInteger && st.Kind != types.KAny && st.Kind != types.KUnknown {
				out = append(out, Mismatch{Message: fmt.Sprintf(
					"%s: argument %d must be an integer, got %s", s.Name, i, st)})
			}
		case TSameAsArgument, TCollectionElement:
			// Checked structurally by the return-type computation rather
			// than here; a mismatched shape there degrades to Any instead
			// of a hard diagnostic, matching §7's "structural inference
			// failures narrow rather than error".
		}
	}
	return out
}

// elementType extracts a collection's element type for CollectionElement
// templates; non-collections degrade to Any.
func elementType(st types.StructuralType) types.StructuralType {
	switch st.Kind {
	case types.KArray, types.KSet:
		return *st.Elem
	case types.KString:
		return types.Str()
	default:
		return types.Any()
	}
}

// Default returns the standard registry grounded in a representative slice
// of the builtins a Rego-like policy language exposes: aggregation
// (count/sum), string manipulation (upper/lower/contains/startswith/
// endswith), reflection (type_name), plus walk and array.concat.
func Default() *Registry {
	r := NewRegistry()

	r.Register(Spec{
		Name:   "count",
		Params: []ParamTemplate{CollectionAny()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Integer() },
		Fold: func(args []value.Value) (value.Value, bool) {
			switch args[0].Kind() {
			case value.KindArray:
				return value.Int(int64(len(args[0].Array()))), true
			case value.KindSet:
				return value.Int(int64(len(args[0].SetElems()))), true
			case value.KindObject:
				return value.Int(int64(len(args[0].Fields()))), true
			case value.KindString:
				return value.Int(int64(len(args[0].Str()))), true
			default:
				return value.Undefined, false
			}
		},
	})

	r.Register(Spec{
		Name:   "sum",
		Params: []ParamTemplate{CollectionAny()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Number() },
		Fold: func(args []value.Value) (value.Value, bool) {
			var elems []value.Value
			switch args[0].Kind() {
			case value.KindArray:
				elems = args[0].Array()
			case value.KindSet:
				elems = args[0].SetElems()
			default:
				return value.Undefined, false
			}
			acc := new(big.Rat)
			for _, e := range elems {
				if e.Kind() != value.KindNumber {
					return value.Undefined, false
				}
				acc.Add(acc, e.Rat())
			}
			return value.Rat(acc), true
		},
	})

	r.Register(Spec{
		Name:   "upper",
		Params: []ParamTemplate{StringParam()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Str() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.String(strings.ToUpper(args[0].Str())), true
		},
	})

	r.Register(Spec{
		Name:   "lower",
		Params: []ParamTemplate{StringParam()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Str() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.String(strings.ToLower(args[0].Str())), true
		},
	})

	r.Register(Spec{
		Name:   "contains",
		Params: []ParamTemplate{StringParam(), StringParam()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Boolean() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.Bool(strings.Contains(args[0].Str(), args[1].Str())), true
		},
	})

	r.Register(Spec{
		Name:   "startswith",
		Params: []ParamTemplate{StringParam(), StringParam()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Boolean() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.Bool(strings.HasPrefix(args[0].Str(), args[1].Str())), true
		},
	})

	r.Register(Spec{
		Name:   "endswith",
		Params: []ParamTemplate{StringParam(), StringParam()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Boolean() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.Bool(strings.HasSuffix(args[0].Str(), args[1].Str())), true
		},
	})

	r.Register(Spec{
		Name:   "type_name",
		Params: []ParamTemplate{Any()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType { return types.Str() },
		Fold: func(args []value.Value) (value.Value, bool) {
			return value.String(args[0].Kind().String()), true
		},
	})

	r.Register(Spec{
		Name:   "walk",
		Params: []ParamTemplate{Any()},
		Pure:   false,
		Return: func(args []types.TypeFact) types.StructuralType {
			return types.Array(types.Any())
		},
	})

	r.Register(Spec{
		Name:   "array.concat",
		Params: []ParamTemplate{ArrayAny(), ArrayAny()},
		Pure:   true,
		Return: func(args []types.TypeFact) types.StructuralType {
			return types.Array(types.Join(
				elementType(args[0].Descriptor.AsStructural()),
				elementType(args[1].Descriptor.AsStructural())))
		},
		Fold: func(args []value.Value) (value.Value, bool) {
			if args[0].Kind() != value.KindArray || args[1].Kind() != value.KindArray {
				return value.Undefined, false
			}
			return value.Array(append(append([]value.Value{}, args[0].Array()...), args[1].Array()...)...), true
		},
	})

	return r
}
