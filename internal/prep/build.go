package prep

import "github.com/funvibe/regotype/internal/ast"

// BuildModule walks an already-parsed module and produces the
// HoistedLoopsLookup/Schedule data spec §4.5 describes. The real
// preparation pass (statement scheduling by variable dependency, full
// destructuring-pattern desugaring) is an external collaborator per spec
// §1; this is a pragmatic, from-AST stand-in good enough to exercise the
// analyzer end-to-end and to build the seed-test scenarios of spec §8
// without a separate compiler front end. It recognizes the common forms:
// `x := expr` / `x = expr` (incl. simple array/object destructuring),
// `some x in c` / `some k, v in c`, `coll[i]` with a fresh index variable,
// and function parameters.
func BuildModule(moduleIdx int, m *ast.Module) *Table {
	t := NewTable()
	b := &builder{m: m, t: t, moduleIdx: moduleIdx}
	for _, rule := range m.Rules {
		for _, def := range rule.Defs {
			declared := map[string]bool{}
			for _, p := range def.Params {
				b.planParam(p, declared)
			}
			for _, body := range def.Bodies {
				b.walkQuery(body, cloneSet(declared))
			}
		}
	}
	return b.t
}

type builder struct {
	m         *ast.Module
	t         *Table
	moduleIdx int
}

func cloneSet(s map[string]bool) map[string]bool {
	out := make(map[string]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func (b *builder) planParam(p ast.Param, declared map[string]bool) {
	declared[p.Name] = true
	b.t.SetBindingPlan(b.moduleIdx, p.Pattern, BindingPlan{Kind: BParameter, Destructuring: Var(p.Name)})
}

func (b *builder) walkQuery(q *ast.Query, declared map[string]bool) {
	for _, sid := range q.Statements {
		stmt := b.m.Statement(sid)
		b.walkStatement(stmt, declared)
	}
}

func (b *builder) walkStatement(stmt *ast.Statement, declared map[string]bool) {
	expr := b.m.Expr(stmt.Expr)
	b.walkExpr(expr, declared, true)
}

// walkExpr recursively inspects expr for hoistable/bindable shapes. atStmt
// is true only for the top-level expression of a statement, since `some`
// and bare assignment only bind at statement level in most policy
// languages (a `some x in c` nested inside a larger boolean expression
// would be unusual and is not modeled here).
func (b *builder) walkExpr(e ast.Expr, declared map[string]bool, atStmt bool) {
	switch ex := e.(type) {
	case *ast.AssignExpr:
		b.planAssign(ex, declared)
		b.walkExpr(b.m.Expr(ex.RHS), declared, false)
	case *ast.InExpr:
		if atStmt {
			b.planSomeIn(ex, declared)
		}
		if ex.Key != nil {
			b.walkExpr(b.m.Expr(*ex.Key), declared, false)
		}
		b.walkExpr(b.m.Expr(ex.Value), declared, false)
		b.walkExpr(b.m.Expr(ex.Collection), declared, false)
	case *ast.PropertyExpr:
		if !ex.IsDot {
			b.planIndexIteration(ex, declared)
			b.walkExpr(b.m.Expr(ex.Index), declared, false)
		}
		b.walkExpr(b.m.Expr(ex.Base), declared, false)
	case *ast.CallExpr:
		if ex.Name == "walk" && len(ex.Args) >= 1 {
			b.planWalk(ex)
		}
		for _, a := range ex.Args {
			b.walkExpr(b.m.Expr(a), declared, false)
		}
	case *ast.ArrayExpr:
		for _, el := range ex.Elems {
			b.walkExpr(b.m.Expr(el), declared, false)
		}
	case *ast.SetExpr:
		for _, el := range ex.Elems {
			b.walkExpr(b.m.Expr(el), declared, false)
		}
	case *ast.ObjectExpr:
		for _, f := range ex.Entries {
			b.walkExpr(b.m.Expr(f.Value), declared, false)
		}
	case *ast.ComprehensionExpr:
		inner := cloneSet(declared)
		ctx := QueryContext{ValueExpr: ex.Term}
		if ex.Kind == ast.ComprObject {
			k := ex.KeyTerm
			ctx.KeyExpr = &k
		}
		b.t.SetQueryContext(b.moduleIdx, ex.Body, ctx)
		b.walkQuery(b.m.Query(ex.Body), inner)
	case *ast.CompareExpr:
		b.walkExpr(b.m.Expr(ex.LHS), declared, false)
		b.walkExpr(b.m.Expr(ex.RHS), declared, false)
	case *ast.ArithExpr:
		b.walkExpr(b.m.Expr(ex.LHS), declared, false)
		b.walkExpr(b.m.Expr(ex.RHS), declared, false)
	case *ast.SetOpExpr:
		b.walkExpr(b.m.Expr(ex.LHS), declared, false)
		b.walkExpr(b.m.Expr(ex.RHS), declared, false)
	case *ast.UnaryMinusExpr:
		b.walkExpr(b.m.Expr(ex.Operand), declared, false)
	case *ast.NotExpr:
		b.walkExpr(b.m.Expr(ex.Operand), declared, false)
	}
}

func (b *builder) planAssign(ex *ast.AssignExpr, declared map[string]bool) {
	lhs := b.m.Expr(ex.LHS)
	lhsVar, lhsIsVar := lhs.(*ast.VarExpr)

	if ex.Op == ast.OpColonEquals {
		plan := b.patternOf(lhs)
		if lhsIsVar {
			declared[lhsVar.Name] = true
		}
		b.t.SetBindingPlan(b.moduleIdx, ex.ExprID(), BindingPlan{
			Kind:       BAssignment,
			Assignment: AssignmentPlan{Kind: AColonEquals, Plan: plan},
		})
		return
	}

	// `=`: bind whichever side introduces a fresh variable/pattern.
	if lhsIsVar && !declared[lhsVar.Name] {
		declared[lhsVar.Name] = true
		b.t.SetBindingPlan(b.moduleIdx, ex.ExprID(), BindingPlan{
			Kind:       BAssignment,
			Assignment: AssignmentPlan{Kind: AEqualsBindLeft, Plan: Var(lhsVar.Name)},
		})
		return
	}
	rhs := b.m.Expr(ex.RHS)
	if rhsVar, ok := rhs.(*ast.VarExpr); ok && !declared[rhsVar.Name] {
		declared[rhsVar.Name] = true
		b.t.SetBindingPlan(b.moduleIdx, ex.ExprID(), BindingPlan{
			Kind:       BAssignment,
			Assignment: AssignmentPlan{Kind: AEqualsBindRight, Plan: Var(rhsVar.Name)},
		})
		return
	}
	b.t.SetBindingPlan(b.moduleIdx, ex.ExprID(), BindingPlan{
		Kind:       BAssignment,
		Assignment: AssignmentPlan{Kind: AEqualityCheck},
	})
}

func (b *builder) planSomeIn(ex *ast.InExpr, declared map[string]bool) {
	valueVar, valueIsVar := b.m.Expr(ex.Value).(*ast.VarExpr)
	if !valueIsVar || declared[valueVar.Name] {
		return // not a fresh binding: a plain membership test, not `some`
	}
	declared[valueVar.Name] = true
	var keyPlan *DestructuringPlan
	if ex.Key != nil {
		if keyVar, ok := b.m.Expr(*ex.Key).(*ast.VarExpr); ok && keyVar.Name != "_" {
			declared[keyVar.Name] = true
			p := Var(keyVar.Name)
			keyPlan = &p
		} else {
			p := Ignore()
			keyPlan = &p
		}
	}
	b.t.SetBindingPlan(b.moduleIdx, ex.ExprID(), BindingPlan{
		Kind:             BSomeIn,
		SomeInCollection: ex.Collection,
		SomeInKeyPlan:    keyPlan,
		SomeInValuePlan:  Var(valueVar.Name),
	})
}

func (b *builder) planIndexIteration(ex *ast.PropertyExpr, declared map[string]bool) {
	idxVar, ok := b.m.Expr(ex.Index).(*ast.VarExpr)
	if !ok || declared[idxVar.Name] {
		return
	}
	declared[idxVar.Name] = true
	key := ex.Index
	loopExpr := ex.ExprID()
	b.t.AddExprLoop(b.moduleIdx, ex.ExprID(), HoistedLoop{
		LoopExpr:   &loopExpr,
		Key:        &key,
		Value:      ex.ExprID(),
		Collection: ex.Base,
		Type:       IndexIteration,
	})
}

func (b *builder) planWalk(ex *ast.CallExpr) {
	loopExpr := ex.ExprID()
	b.t.AddExprLoop(b.moduleIdx, ex.ExprID(), HoistedLoop{
		LoopExpr:   &loopExpr,
		Value:      ex.ExprID(),
		Collection: ex.Args[0],
		Type:       Walk,
	})
}

// patternOf builds a DestructuringPlan for a (possibly nested) pattern
// expression: a bare variable, an array/object literal of patterns, or
// anything else treated as an equality constraint against that expression's
// value.
func (b *builder) patternOf(e ast.Expr) DestructuringPlan {
	switch ex := e.(type) {
	case *ast.VarExpr:
		if ex.Name == "_" {
			return Ignore()
		}
		return Var(ex.Name)
	case *ast.ArrayExpr:
		elems := make([]DestructuringPlan, len(ex.Elems))
		for i, el := range ex.Elems {
			elems[i] = b.patternOf(b.m.Expr(el))
		}
		return ArrayPlan(elems...)
	case *ast.ObjectExpr:
		var lit []ObjectFieldPlan
		var dyn []ObjectDynamicPlan
		for _, f := range ex.Entries {
			sub := b.patternOf(b.m.Expr(f.Value))
			if f.IsStatic {
				lit = append(lit, ObjectFieldPlan{Name: f.StaticKey, Plan: sub})
			} else {
				dyn = append(dyn, ObjectDynamicPlan{KeyExpr: f.Key, Plan: sub})
			}
		}
		return ObjectPlan(lit, dyn)
	default:
		return EqualityExpr(e.ExprID())
	}
}
