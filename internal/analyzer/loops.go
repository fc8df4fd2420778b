package analyzer

import (
	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/bindings"
	"github.com/funvibe/regotype/internal/prep"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// seedStatementLoops and seedExprLoops apply §4.5's loop-hoisting contract:
// a hoisted loop attached to a statement or expression id seeds an
// iteration fact against its key (if any) and value expression ids.
// Statement loops are seeded before the statement's expression is inferred;
// expression loops are seeded right after that expression's own fact is
// recorded, so a loop whose value id is the expression itself overwrites it.
func (a *TypeAnalyzer) seedStatementLoops(mi int, sid ast.StmtID, b *bindings.Stack, ra *RuleAnalysis) {
	if a.opts.Loops == nil {
		return
	}
	loops, ok := a.opts.Loops.GetStatementLoops(mi, sid)
	if !ok {
		return
	}
	for _, loop := range loops {
		a.seedLoop(mi, loop, b, ra)
	}
}

func (a *TypeAnalyzer) seedExprLoops(mi int, eid ast.ExprID, b *bindings.Stack, ra *RuleAnalysis) {
	if a.opts.Loops == nil {
		return
	}
	loops, ok := a.opts.Loops.GetExprLoops(mi, eid)
	if !ok {
		return
	}
	for _, loop := range loops {
		a.seedLoop(mi, loop, b, ra)
	}
}

func (a *TypeAnalyzer) getExprBindingPlan(mi int, eid ast.ExprID) (*prep.BindingPlan, bool) {
	if a.opts.Loops == nil {
		return nil, false
	}
	return a.opts.Loops.GetExprBindingPlan(mi, eid)
}

func (a *TypeAnalyzer) seedLoop(mi int, loop prep.HoistedLoop, b *bindings.Stack, ra *RuleAnalysis) {
	ms := a.states[mi]

	var keyFact, valFact types.TypeFact
	if loop.Type == prep.Walk {
		valFact = types.Structural(types.Array(types.Any()), types.ProvPropagated)
	} else {
		collFact := a.inferExpr(mi, loop.Collection, b, ra)
		keyFact, valFact = a.iterationFacts(collFact)
	}

	if loop.Key != nil {
		ms.set(*loop.Key, keyFact)
	}
	ms.set(loop.Value, valFact)

	for _, o := range valFact.Origins {
		if o.Root == types.RootInput {
			ra.addInputDependency(o)
		}
	}
}

// iterationFacts derives the (key, value) facts produced by iterating over
// a collection fact, per §4.5: arrays yield Integer keys, sets have no key,
// objects yield string keys and the join of field types as values.
func (a *TypeAnalyzer) iterationFacts(collFact types.TypeFact) (types.TypeFact, types.TypeFact) {
	st := collFact.Descriptor.AsStructural()
	switch st.Kind {
	case types.KArray:
		elem := *st.Elem
		return types.Structural(types.Integer(), types.ProvPropagated, extendAll(collFact.Origins, types.AnySeg())...),
			types.Structural(elem, types.ProvPropagated, extendAll(collFact.Origins, types.AnySeg())...)
	case types.KSet:
		elem := *st.Elem
		return types.TypeFact{}, types.Structural(elem, types.ProvPropagated, extendAll(collFact.Origins, types.AnySeg())...)
	case types.KObject:
		var vt types.StructuralType
		if len(st.Fields) == 0 {
			vt = types.Any()
		} else {
			ts := make([]types.StructuralType, len(st.Fields))
			for i, f := range st.Fields {
				ts[i] = f.Type
			}
			vt = types.JoinAll(ts)
		}
		return types.Structural(types.Str(), types.ProvPropagated, extendAll(collFact.Origins, types.AnySeg())...),
			types.Structural(vt, types.ProvPropagated, extendAll(collFact.Origins, types.AnySeg())...)
	default:
		return types.AnyFact(), types.AnyFact()
	}
}

// applyBindingPlanForExpr is §4.5's step 7: any binding plan attached to
// this expression id is applied after the expression's own fact is known.
func (a *TypeAnalyzer) applyBindingPlanForExpr(mi int, eid ast.ExprID, selfFact types.TypeFact, b *bindings.Stack, ra *RuleAnalysis) {
	plan, ok := a.getExprBindingPlan(mi, eid)
	if !ok {
		return
	}
	switch plan.Kind {
	case prep.BAssignment:
		a.applyAssignmentPlan(mi, eid, plan.Assignment, b, ra)
	case prep.BLoopIndex, prep.BParameter:
		a.applyDestructuring(mi, plan.Destructuring, selfFact, b, ra, false)
	case prep.BSomeIn:
		a.applySomeIn(mi, plan, b, ra)
	}
}

func (a *TypeAnalyzer) applyAssignmentPlan(mi int, eid ast.ExprID, plan prep.AssignmentPlan, b *bindings.Stack, ra *RuleAnalysis) {
	ex, ok := a.modules[mi].Expr(eid).(*ast.AssignExpr)
	if !ok {
		return
	}
	switch plan.Kind {
	case prep.AColonEquals, prep.AEqualsBindLeft:
		rhs := a.inferExpr(mi, ex.RHS, b, ra)
		a.applyDestructuring(mi, plan.Plan, rhs, b, ra, true)
	case prep.AEqualsBindRight:
		lhs := a.inferExpr(mi, ex.LHS, b, ra)
		a.applyDestructuring(mi, plan.Plan, lhs, b, ra, true)
	case prep.AEqualsBothSides:
		for _, pair := range plan.Pairs {
			vf := a.inferExpr(mi, pair.ValueExpr, b, ra)
			a.applyDestructuring(mi, pair.Plan, vf, b, ra, true)
		}
	case prep.AEqualityCheck, prep.AWildcardMatch:
		// no binding produced
	}
}

func (a *TypeAnalyzer) applySomeIn(mi int, plan *prep.BindingPlan, b *bindings.Stack, ra *RuleAnalysis) {
	collFact := a.inferExpr(mi, plan.SomeInCollection, b, ra)
	keyFact, valFact := a.iterationFacts(collFact)
	if plan.SomeInKeyPlan != nil {
		a.applyDestructuring(mi, *plan.SomeInKeyPlan, keyFact, b, ra, false)
	}
	a.applyDestructuring(mi, plan.SomeInValuePlan, valFact, b, ra, false)
}

// applyDestructuring walks a DestructuringPlan tree against a containing
// fact, binding variables (root scope when this plan came from an
// assignment, per §4.2's Assignment contract; current scope otherwise).
func (a *TypeAnalyzer) applyDestructuring(mi int, plan prep.DestructuringPlan, fact types.TypeFact, b *bindings.Stack, ra *RuleAnalysis, root bool) {
	switch plan.Kind {
	case prep.DVar:
		if root {
			b.AssignRoot(plan.VarName, fact)
		} else {
			b.Assign(plan.VarName, fact)
		}
	case prep.DIgnore:
		// no binding
	case prep.DEqualityExpr:
		a.inferExpr(mi, plan.EqExpr, b, ra)
	case prep.DEqualityValue:
		a.inferExpr(mi, plan.EqValueExpr, b, ra)
	case prep.DArray:
		st := fact.Descriptor.AsStructural()
		for i, sub := range plan.Elements {
			elemFact := a.propertyOfIndex(fact, st, i)
			a.applyDestructuring(mi, sub, elemFact, b, ra, root)
		}
	case prep.DObject:
		st := fact.Descriptor.AsStructural()
		for _, lf := range plan.LiteralFields {
			sub := a.propertyOfField(fact, st, lf.Name)
			a.applyDestructuring(mi, lf.Plan, sub, b, ra, root)
		}
		for _, df := range plan.DynamicFields {
			keyFact := a.inferExpr(mi, df.KeyExpr, b, ra)
			var sub types.TypeFact
			if keyFact.Constant.IsKnown() && keyFact.Constant.Value.Kind() == value.KindString {
				sub = a.propertyOfField(fact, st, keyFact.Constant.Value.Str())
			} else {
				sub = types.AnyFact()
			}
			a.applyDestructuring(mi, df.Plan, sub, b, ra, root)
		}
	}
}

func (a *TypeAnalyzer) propertyOfIndex(fact types.TypeFact, st types.StructuralType, i int) types.TypeFact {
	if st.Kind != types.KArray {
		return types.AnyFact()
	}
	return types.Structural(*st.Elem, types.ProvPropagated, extendAll(fact.Origins, types.IndexSeg(i))...)
}

func (a *TypeAnalyzer) propertyOfField(fact types.TypeFact, st types.StructuralType, name string) types.TypeFact {
	if st.Kind == types.KObject {
		if t, ok := st.Field(name); ok {
			return types.Structural(t, types.ProvPropagated, extendAll(fact.Origins, types.FieldSeg(name))...)
		}
	}
	return types.AnyFact()
}
