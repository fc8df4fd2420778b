package analyzer

import (
	"math/big"

	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/bindings"
	"github.com/funvibe/regotype/internal/builtins"
	"github.com/funvibe/regotype/internal/diag"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// inferExpr is the general expression-inference contract of §4.2: cache
// check (Var excepted), dispatch, record, propagate origins, seed loops,
// apply binding plans.
func (a *TypeAnalyzer) inferExpr(mi int, eid ast.ExprID, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	m := a.modules[mi]
	e := m.Expr(eid)
	ms := a.states[mi]

	if _, isVar := e.(*ast.VarExpr); !isVar {
		if f, ok := ms.get(eid); ok {
			return *f
		}
	}

	fact := a.dispatchExpr(mi, e, b, ra)
	ms.set(eid, fact)

	for _, o := range fact.Origins {
		if o.Root == types.RootInput {
			ra.addInputDependency(o)
		}
	}
	if ra.activeSpecialization != nil {
		ra.activeSpecialization.ExprOverlay[eid] = fact
	}

	a.seedExprLoops(mi, eid, b, ra)
	a.applyBindingPlanForExpr(mi, eid, fact, b, ra)

	return fact
}

func (a *TypeAnalyzer) dispatchExpr(mi int, e ast.Expr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	switch ex := e.(type) {
	case *ast.StringExpr:
		return types.Literal(types.Str(), value.String(ex.Value))
	case *ast.RawStringExpr:
		return types.Literal(types.Str(), value.String(ex.Value))
	case *ast.NumberExpr:
		st := types.Number()
		if ex.Value.IsInteger() {
			st = types.Integer()
		}
		return types.Literal(st, ex.Value)
	case *ast.BoolExpr:
		return types.Literal(types.Boolean(), value.Bool(ex.Value))
	case *ast.NullExpr:
		return types.Literal(types.Null(), value.Null)

	case *ast.VarExpr:
		return a.resolveVariable(mi, ex, b, ra)

	case *ast.ArrayExpr:
		return a.inferArrayLiteral(mi, ex, b, ra)
	case *ast.SetExpr:
		return a.inferSetLiteral(mi, ex, b, ra)
	case *ast.ObjectExpr:
		return a.inferObjectLiteral(mi, ex, b, ra)
	case *ast.ComprehensionExpr:
		return a.inferComprehension(mi, ex, b, ra)

	case *ast.AssignExpr:
		return a.inferAssign(mi, ex, b, ra)
	case *ast.CompareExpr:
		return a.inferCompare(mi, ex, b, ra)
	case *ast.ArithExpr:
		return a.inferArith(mi, ex, b, ra)
	case *ast.SetOpExpr:
		return a.inferSetOp(mi, ex, b, ra)
	case *ast.InExpr:
		return a.inferIn(mi, ex, b, ra)
	case *ast.UnaryMinusExpr:
		return a.inferUnaryMinus(mi, ex, b, ra)
	case *ast.NotExpr:
		return a.inferNot(mi, ex, b, ra)
	case *ast.PropertyExpr:
		return a.inferProperty(mi, ex, b, ra)
	case *ast.CallExpr:
		return a.inferCall(mi, ex, b, ra)
	}
	return types.AnyFact()
}

func (a *TypeAnalyzer) inferArrayLiteral(mi int, ex *ast.ArrayExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	elemTypes := make([]types.StructuralType, 0, len(ex.Elems))
	var origins []types.SourceOrigin
	allConst := true
	vals := make([]value.Value, 0, len(ex.Elems))
	for i, id := range ex.Elems {
		ef := a.inferExpr(mi, id, b, ra)
		elemTypes = append(elemTypes, ef.Descriptor.AsStructural())
		origins = append(origins, extendAll(ef.Origins, types.IndexSeg(i))...)
		if ef.Constant.IsKnown() {
			vals = append(vals, ef.Constant.Value)
		} else {
			allConst = false
		}
	}
	desc := types.FromStructural(types.Array(types.JoinAll(elemTypes)))
	constant := types.UnknownConstant()
	if allConst {
		constant = types.Known(value.Array(vals...))
	}
	return types.TypeFact{Descriptor: desc, Constant: constant, Provenance: types.ProvPropagated, Origins: origins}
}

func (a *TypeAnalyzer) inferSetLiteral(mi int, ex *ast.SetExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	elemTypes := make([]types.StructuralType, 0, len(ex.Elems))
	var origins []types.SourceOrigin
	allConst := true
	vals := make([]value.Value, 0, len(ex.Elems))
	for _, id := range ex.Elems {
		ef := a.inferExpr(mi, id, b, ra)
		elemTypes = append(elemTypes, ef.Descriptor.AsStructural())
		origins = append(origins, ef.Origins...)
		if ef.Constant.IsKnown() {
			vals = append(vals, ef.Constant.Value)
		} else {
			allConst = false
		}
	}
	desc := types.FromStructural(types.Set(types.JoinAll(elemTypes)))
	constant := types.UnknownConstant()
	if allConst {
		constant = types.Known(value.Set(vals...))
	}
	return types.TypeFact{Descriptor: desc, Constant: constant, Provenance: types.ProvPropagated, Origins: types.MarkDerived(origins)}
}

func (a *TypeAnalyzer) inferObjectLiteral(mi int, ex *ast.ObjectExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	var fields []types.ObjectField
	var origins []types.SourceOrigin
	allConst := true
	pairs := make([][2]value.Value, 0, len(ex.Entries))
	for _, entry := range ex.Entries {
		vf := a.inferExpr(mi, entry.Value, b, ra)
		if entry.IsStatic {
			fields = append(fields, types.ObjectField{Name: entry.StaticKey, Type: vf.Descriptor.AsStructural()})
			origins = append(origins, extendAll(vf.Origins, types.FieldSeg(entry.StaticKey))...)
			if vf.Constant.IsKnown() {
				pairs = append(pairs, [2]value.Value{value.String(entry.StaticKey), vf.Constant.Value})
			} else {
				allConst = false
			}
			continue
		}
		kf := a.inferExpr(mi, entry.Key, b, ra)
		allConst = false
		if kf.Constant.IsKnown() && kf.Constant.Value.Kind() == value.KindString {
			fields = append(fields, types.ObjectField{Name: kf.Constant.Value.Str(), Type: vf.Descriptor.AsStructural()})
		}
		origins = append(origins, extendAll(vf.Origins, types.AnySeg())...)
	}
	desc := types.FromStructural(types.Object(fields...))
	constant := types.UnknownConstant()
	if allConst {
		constant = types.Known(value.Object(pairs...))
	}
	return types.TypeFact{Descriptor: desc, Constant: constant, Provenance: types.ProvPropagated, Origins: origins}
}

func (a *TypeAnalyzer) inferComprehension(mi int, ex *ast.ComprehensionExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	b.PushScope()
	q := a.modules[mi].Query(ex.Body)
	a.analyzeQueryBody(mi, q, b, ra)

	var desc types.TypeDescriptor
	var origins []types.SourceOrigin
	switch ex.Kind {
	case ast.ComprArray:
		term := a.inferExpr(mi, ex.Term, b, ra)
		desc = types.FromStructural(types.Array(term.Descriptor.AsStructural()))
		origins = types.MarkDerived(term.Origins)
	case ast.ComprSet:
		term := a.inferExpr(mi, ex.Term, b, ra)
		desc = types.FromStructural(types.Set(term.Descriptor.AsStructural()))
		origins = types.MarkDerived(term.Origins)
	case ast.ComprObject:
		term := a.inferExpr(mi, ex.Term, b, ra)
		a.inferExpr(mi, ex.KeyTerm, b, ra)
		desc = types.FromStructural(types.Object())
		origins = types.MarkDerived(term.Origins)
	}
	b.PopScope()
	return types.TypeFact{Descriptor: desc, Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: origins}
}

func (a *TypeAnalyzer) inferAssign(mi int, ex *ast.AssignExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	rhs := a.inferExpr(mi, ex.RHS, b, ra)
	if lhsVar, ok := a.modules[mi].Expr(ex.LHS).(*ast.VarExpr); ok {
		b.AssignRoot(lhsVar.Name, rhs)
	}
	constant := types.Known(value.Bool(true))
	if rhs.Constant.IsKnownUndefined() {
		constant = types.Known(value.Undefined)
	}
	return types.TypeFact{
		Descriptor: types.FromStructural(types.Boolean()),
		Constant:   constant,
		Provenance: types.ProvAssignment,
		Origins:    types.MarkDerived(rhs.Origins),
	}
}

func (a *TypeAnalyzer) inferCompare(mi int, ex *ast.CompareExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	lhs := a.inferExpr(mi, ex.LHS, b, ra)
	rhs := a.inferExpr(mi, ex.RHS, b, ra)
	lst := lhs.Descriptor.AsStructural()
	rst := rhs.Descriptor.AsStructural()

	pos := ex.Pos()
	if types.LeafKindsDisjoint(lst, rst) {
		a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "incompatible types in comparison: %s vs %s", lst, rst))
	}
	if ex.Op == ast.OpEq {
		a.checkSchemaViolation(pos, lhs, rhs)
		a.checkSchemaViolation(pos, rhs, lhs)
	}

	constant := types.UnknownConstant()
	if lhs.Constant.IsKnown() && rhs.Constant.IsKnown() && !lhs.Constant.IsKnownUndefined() && !rhs.Constant.IsKnownUndefined() {
		c := value.Compare(lhs.Constant.Value, rhs.Constant.Value)
		var res bool
		switch ex.Op {
		case ast.OpEq:
			res = c == 0
		case ast.OpNeq:
			res = c != 0
		case ast.OpLt:
			res = c < 0
		case ast.OpLte:
			res = c <= 0
		case ast.OpGt:
			res = c > 0
		case ast.OpGte:
			res = c >= 0
		}
		constant = types.Known(value.Bool(res))
	}
	origins := types.MarkDerived(types.UnionOrigins(lhs.Origins, rhs.Origins))
	return types.TypeFact{Descriptor: types.FromStructural(types.Boolean()), Constant: constant, Provenance: types.ProvPropagated, Origins: origins}
}

// checkSchemaViolation emits a SchemaViolation when one side is a schema
// descriptor and the other is a constant the schema disallows (§4.2's `==`
// schema check).
func (a *TypeAnalyzer) checkSchemaViolation(pos ast.Position, schemaSide, constSide types.TypeFact) {
	if schemaSide.Descriptor.Kind != types.DescriptorSchema || schemaSide.Descriptor.Schema == nil {
		return
	}
	if !constSide.Constant.IsKnown() || constSide.Constant.IsKnownUndefined() {
		return
	}
	if al, ok := schemaSide.Descriptor.Schema.(schemaAllower); ok {
		if !al.AllowsValue(toInterface(constSide.Constant.Value)) {
			a.diags.Add(diag.SchemaViolationErr(pos.File, pos.Line, pos.Col,
				"value %s is not allowed by schema %s", constSide.Constant.Value, schemaSide.Descriptor.Schema))
		}
	}
}

// toInterface converts a constant Value to the plain Go value the schema
// query API's AllowsValue expects (mirroring how schema.Schema compares
// decoded JSON literals).
func toInterface(v value.Value) interface{} {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBoolean:
		return v.Bool()
	case value.KindString:
		return v.Str()
	case value.KindNumber:
		f, _ := v.Rat().Float64()
		return f
	default:
		return v.String()
	}
}

func (a *TypeAnalyzer) inferArith(mi int, ex *ast.ArithExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	lhs := a.inferExpr(mi, ex.LHS, b, ra)
	rhs := a.inferExpr(mi, ex.RHS, b, ra)
	lst := lhs.Descriptor.AsStructural()
	rst := rhs.Descriptor.AsStructural()
	pos := ex.Pos()

	if ex.Op == ast.OpSub && lst.Kind == types.KSet && rst.Kind == types.KSet {
		return a.inferSetDifference(lhs, rhs)
	}

	okNumeric := func(st types.StructuralType) bool {
		return st.IsNumeric() || st.Kind == types.KAny || st.Kind == types.KUnknown
	}
	if !okNumeric(lst) || !okNumeric(rst) {
		a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "arithmetic on non-numeric operand(s): %s, %s", lst, rst))
		return types.TypeFact{Descriptor: types.FromStructural(types.Number()), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated}
	}
	if ex.Op == ast.OpMod {
		intOk := func(st types.StructuralType) bool { return st.Kind == types.KInteger || st.Kind == types.KAny || st.Kind == types.KUnknown }
		if !intOk(lst) || !intOk(rst) {
			a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "%% requires integer operands"))
		}
	}

	resultInt := certainlyInteger(lhs) && certainlyInteger(rhs)
	resultType := types.Number()
	if resultInt {
		resultType = types.Integer()
	}

	origins := types.MarkDerived(types.UnionOrigins(lhs.Origins, rhs.Origins))
	fact := types.TypeFact{Descriptor: types.FromStructural(resultType), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: origins}

	if lhs.Constant.IsKnownUndefined() || rhs.Constant.IsKnownUndefined() {
		fact.Constant = types.Known(value.Undefined)
		fact.Descriptor = types.FromStructural(types.Unknown())
		return fact
	}
	if lhs.Constant.IsKnown() && rhs.Constant.IsKnown() &&
		lhs.Constant.Value.Kind() == value.KindNumber && rhs.Constant.Value.Kind() == value.KindNumber {
		folded, ok := foldArith(ex.Op, lhs.Constant.Value, rhs.Constant.Value)
		if !ok {
			fact.Constant = types.Known(value.Undefined)
			fact.Descriptor = types.FromStructural(types.Unknown())
			return fact
		}
		fact.Constant = types.Known(folded)
	}
	return fact
}

func certainlyInteger(f types.TypeFact) bool {
	if f.Constant.IsKnown() && f.Constant.Value.Kind() == value.KindNumber && f.Constant.Value.IsInteger() {
		return true
	}
	return f.Descriptor.AsStructural().Kind == types.KInteger
}

func foldArith(op ast.ArithOp, a, b value.Value) (value.Value, bool) {
	x, y := a.Rat(), b.Rat()
	switch op {
	case ast.OpAdd:
		return value.Rat(new(big.Rat).Add(x, y)), true
	case ast.OpSub:
		return value.Rat(new(big.Rat).Sub(x, y)), true
	case ast.OpMul:
		return value.Rat(new(big.Rat).Mul(x, y)), true
	case ast.OpDiv:
		if y.Sign() == 0 {
			return value.Undefined, false
		}
		return value.Rat(new(big.Rat).Quo(x, y)), true
	case ast.OpMod:
		if !a.IsInteger() || !b.IsInteger() || y.Sign() == 0 {
			return value.Undefined, false
		}
		xi, yi := x.Num(), y.Num()
		r := new(big.Int).Rem(xi, yi)
		return value.Int(r.Int64()), true
	}
	return value.Undefined, false
}

func (a *TypeAnalyzer) inferSetDifference(lhs, rhs types.TypeFact) types.TypeFact {
	elem := *lhs.Descriptor.AsStructural().Elem
	fact := types.TypeFact{
		Descriptor: types.FromStructural(types.Set(elem)),
		Constant:   types.UnknownConstant(),
		Provenance: types.ProvPropagated,
		Origins:    types.MarkDerived(lhs.Origins),
	}
	if lhs.Constant.IsKnown() && rhs.Constant.IsKnown() {
		var remaining []value.Value
		for _, e := range lhs.Constant.Value.SetElems() {
			if !rhs.Constant.Value.Contains(e) {
				remaining = append(remaining, e)
			}
		}
		fact.Constant = types.Known(value.Set(remaining...))
	}
	return fact
}

func (a *TypeAnalyzer) inferSetOp(mi int, ex *ast.SetOpExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	lhs := a.inferExpr(mi, ex.LHS, b, ra)
	rhs := a.inferExpr(mi, ex.RHS, b, ra)
	lst := lhs.Descriptor.AsStructural()
	rst := rhs.Descriptor.AsStructural()
	pos := ex.Pos()

	setLike := func(st types.StructuralType) bool { return st.Kind == types.KSet || st.Kind == types.KAny || st.Kind == types.KUnknown }
	if !setLike(lst) || !setLike(rst) {
		a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "set operator on non-set operand(s): %s, %s", lst, rst))
	}

	var resultElem types.StructuralType
	switch ex.Op {
	case ast.OpUnion:
		resultElem = types.Join(elemOf(lst), elemOf(rst))
	case ast.OpIntersect:
		resultElem = elemOf(lst)
	}
	origins := types.MarkDerived(types.UnionOrigins(lhs.Origins, rhs.Origins))
	fact := types.TypeFact{Descriptor: types.FromStructural(types.Set(resultElem)), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: origins}

	if lhs.Constant.IsKnown() && rhs.Constant.IsKnown() &&
		lhs.Constant.Value.Kind() == value.KindSet && rhs.Constant.Value.Kind() == value.KindSet {
		switch ex.Op {
		case ast.OpUnion:
			fact.Constant = types.Known(value.Set(append(append([]value.Value{}, lhs.Constant.Value.SetElems()...), rhs.Constant.Value.SetElems()...)...))
		case ast.OpIntersect:
			var out []value.Value
			for _, e := range lhs.Constant.Value.SetElems() {
				if rhs.Constant.Value.Contains(e) {
					out = append(out, e)
				}
			}
			fact.Constant = types.Known(value.Set(out...))
		}
	}
	return fact
}

func elemOf(st types.StructuralType) types.StructuralType {
	if st.Kind == types.KSet || st.Kind == types.KArray {
		return *st.Elem
	}
	return types.Any()
}

func (a *TypeAnalyzer) inferIn(mi int, ex *ast.InExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	var keyFact *types.TypeFact
	if ex.Key != nil {
		kf := a.inferExpr(mi, *ex.Key, b, ra)
		keyFact = &kf
	}
	valueFact := a.inferExpr(mi, ex.Value, b, ra)
	collFact := a.inferExpr(mi, ex.Collection, b, ra)
	cst := collFact.Descriptor.AsStructural()
	pos := ex.Pos()

	if !cst.IsCollection() && cst.Kind != types.KString && cst.Kind != types.KAny && cst.Kind != types.KUnknown {
		a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "`in` requires a collection, got %s", cst))
	} else if cst.Kind == types.KArray || cst.Kind == types.KSet {
		if types.LeafKindsDisjoint(valueFact.Descriptor.AsStructural(), *cst.Elem) {
			a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "membership element type %s incompatible with collection element %s",
				valueFact.Descriptor.AsStructural(), *cst.Elem))
		}
	}

	origins := types.MarkDerived(collFact.Origins)
	fact := types.TypeFact{Descriptor: types.FromStructural(types.Boolean()), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: origins}
	if v, ok := foldMembership(keyFact, valueFact, collFact); ok {
		fact.Constant = types.Known(v)
	}
	return fact
}

func foldMembership(keyFact *types.TypeFact, valueFact, collFact types.TypeFact) (value.Value, bool) {
	if !collFact.Constant.IsKnown() || !valueFact.Constant.IsKnown() {
		return value.Undefined, false
	}
	cv := collFact.Constant.Value
	vv := valueFact.Constant.Value
	switch cv.Kind() {
	case value.KindArray, value.KindSet:
		if keyFact != nil {
			return value.Undefined, false
		}
		return value.Bool(cv.Contains(vv)), true
	case value.KindObject:
		if keyFact != nil && keyFact.Constant.IsKnown() && keyFact.Constant.Value.Kind() == value.KindString {
			got := cv.Get(keyFact.Constant.Value.Str())
			return value.Bool(!got.IsUndefined() && value.Equal(got, vv)), true
		}
		for _, pair := range cv.Fields() {
			if value.Equal(pair[1], vv) {
				return value.Bool(true), true
			}
		}
		return value.Bool(false), true
	case value.KindString:
		if vv.Kind() != value.KindString {
			return value.Undefined, false
		}
		return value.Bool(cv.Contains(vv)), true
	}
	return value.Undefined, false
}

func (a *TypeAnalyzer) inferUnaryMinus(mi int, ex *ast.UnaryMinusExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	operand := a.inferExpr(mi, ex.Operand, b, ra)
	ost := operand.Descriptor.AsStructural()
	pos := ex.Pos()
	if !ost.IsNumeric() && ost.Kind != types.KAny && ost.Kind != types.KUnknown {
		a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "unary minus on non-numeric operand: %s", ost))
	}
	resultType := types.Number()
	if ost.Kind == types.KInteger {
		resultType = types.Integer()
	}
	fact := types.TypeFact{Descriptor: types.FromStructural(resultType), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: types.MarkDerived(operand.Origins)}
	if operand.Constant.IsKnown() && operand.Constant.Value.Kind() == value.KindNumber {
		fact.Constant = types.Known(value.Rat(new(big.Rat).Sub(new(big.Rat), operand.Constant.Value.Rat())))
	}
	return fact
}

func (a *TypeAnalyzer) inferNot(mi int, ex *ast.NotExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	operand := a.inferExpr(mi, ex.Operand, b, ra)
	fact := types.TypeFact{Descriptor: types.FromStructural(types.Boolean()), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: types.MarkDerived(operand.Origins)}
	if operand.Constant.IsKnown() {
		if operand.Constant.IsKnownUndefined() {
			fact.Constant = types.Known(value.Bool(true))
		} else if operand.Constant.Value.Kind() == value.KindBoolean {
			fact.Constant = types.Known(value.Bool(!operand.Constant.Value.Bool()))
		}
	}
	return fact
}

func (a *TypeAnalyzer) inferProperty(mi int, ex *ast.PropertyExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	if ex.IsDot {
		if fact, ok := a.tryResolveRuleProperty(mi, ex.Base, ex.FieldName, ra); ok {
			return fact
		}
	}

	base := a.inferExpr(mi, ex.Base, b, ra)
	bst := base.Descriptor.AsStructural()
	pos := ex.Pos()

	var fieldType types.StructuralType
	var origins []types.SourceOrigin
	var idxFact *types.TypeFact

	if ex.IsDot {
		if t, ok := bst.Field(ex.FieldName); ok {
			fieldType = t
		} else if bst.Kind == types.KObject || bst.Kind == types.KAny || bst.Kind == types.KUnknown {
			fieldType = types.Any()
		} else {
			a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "cannot access field %q on %s", ex.FieldName, bst))
			fieldType = types.Any()
		}
		origins = extendAll(base.Origins, types.FieldSeg(ex.FieldName))
	} else {
		idx := a.inferExpr(mi, ex.Index, b, ra)
		idxFact = &idx
		switch bst.Kind {
		case types.KArray:
			fieldType = *bst.Elem
			if idx.Constant.IsKnown() && idx.Constant.Value.Kind() == value.KindNumber && idx.Constant.Value.IsInteger() {
				origins = extendAll(base.Origins, types.IndexSeg(int(idx.Constant.Value.Rat().Num().Int64())))
			} else {
				origins = extendAll(base.Origins, types.AnySeg())
			}
		case types.KSet:
			fieldType = types.Boolean()
			origins = extendAll(base.Origins, types.AnySeg())
		case types.KObject:
			if idx.Constant.IsKnown() && idx.Constant.Value.Kind() == value.KindString {
				if t, ok := bst.Field(idx.Constant.Value.Str()); ok {
					fieldType = t
				} else {
					fieldType = types.Any()
				}
				origins = extendAll(base.Origins, types.FieldSeg(idx.Constant.Value.Str()))
			} else {
				fieldType = types.Any()
				origins = extendAll(base.Origins, types.AnySeg())
			}
		case types.KString:
			fieldType = types.Str()
			origins = extendAll(base.Origins, types.AnySeg())
		case types.KAny, types.KUnknown:
			fieldType = types.Any()
			origins = extendAll(base.Origins, types.AnySeg())
		default:
			a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "cannot index into %s", bst))
			fieldType = types.Any()
			origins = extendAll(base.Origins, types.AnySeg())
		}
	}

	fact := types.TypeFact{Descriptor: types.FromStructural(fieldType), Constant: types.UnknownConstant(), Provenance: types.ProvPropagated, Origins: origins}

	if base.Constant.IsKnown() && !base.Constant.IsKnownUndefined() {
		bv := base.Constant.Value
		var v value.Value
		found := false
		switch bv.Kind() {
		case value.KindObject:
			if ex.IsDot {
				v, found = bv.Get(ex.FieldName), true
			} else if idxFact != nil && idxFact.Constant.IsKnown() && idxFact.Constant.Value.Kind() == value.KindString {
				v, found = bv.Get(idxFact.Constant.Value.Str()), true
			}
		case value.KindArray:
			if !ex.IsDot && idxFact != nil && idxFact.Constant.IsKnown() && idxFact.Constant.Value.IsInteger() {
				v, found = bv.Index(int(idxFact.Constant.Value.Rat().Num().Int64())), true
			}
		case value.KindSet:
			if !ex.IsDot && idxFact != nil && idxFact.Constant.IsKnown() {
				v, found = value.Bool(bv.Contains(idxFact.Constant.Value)), true
			}
		}
		if found {
			if v.IsUndefined() {
				fact.Constant = types.Known(value.Undefined)
				fact.Descriptor = types.FromStructural(types.Unknown())
			} else {
				fact.Constant = types.Known(v)
			}
		}
	}
	return fact
}

func (a *TypeAnalyzer) inferCall(mi int, ex *ast.CallExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	argFacts := make([]types.TypeFact, len(ex.Args))
	for i, id := range ex.Args {
		argFacts[i] = a.inferExpr(mi, id, b, ra)
	}
	pos := ex.Pos()

	if spec, ok := a.opts.Builtins.Lookup(ex.Name); ok {
		for _, mm := range builtins.CheckCall(spec, argFacts) {
			a.diags.Add(diag.TypeMismatchf(pos.File, pos.Line, pos.Col, "%s", mm.Message))
		}
		retType := spec.Return(argFacts)
		constant := types.UnknownConstant()
		if spec.Pure && spec.Fold != nil && allConstant(argFacts) {
			vals := make([]value.Value, len(argFacts))
			for i, f := range argFacts {
				vals[i] = f.Constant.Value
			}
			if folded, ok := spec.Fold(vals); ok {
				constant = types.Known(folded)
			}
		}
		var origins []types.SourceOrigin
		for _, f := range argFacts {
			origins = append(origins, f.Origins...)
		}
		return types.TypeFact{Descriptor: types.FromStructural(retType), Constant: constant, Provenance: types.ProvBuiltin, Origins: types.MarkDerived(origins)}
	}

	return a.resolveRuleCall(mi, ex, argFacts, ra)
}

func allConstant(facts []types.TypeFact) bool {
	for _, f := range facts {
		if !f.Constant.IsKnown() {
			return false
		}
	}
	return true
}

func extendAll(origins []types.SourceOrigin, seg types.PathSegment) []types.SourceOrigin {
	out := make([]types.SourceOrigin, len(origins))
	for i, o := range origins {
		out[i] = o.Extend(seg, false)
	}
	return out
}

func isAlwaysFalse(f types.TypeFact) bool {
	if !f.Constant.IsKnown() {
		return false
	}
	if f.Constant.IsKnownUndefined() {
		return true
	}
	return f.Constant.Value.Kind() == value.KindBoolean && !f.Constant.Value.Bool()
}
