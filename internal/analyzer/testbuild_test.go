package analyzer

import (
	"reflect"

	"github.com/funvibe/regotype/internal/ast"
)

// modBuilder assembles a minimal ast.Module by hand, the way a from-scratch
// test fixture would without a real parser front end. setExprID reaches into
// the embedded, unexported exprBase via reflection since the concrete
// variants only expose it through the promoted ID_ field.
type modBuilder struct {
	m *ast.Module
}

func newModBuilder(path string) *modBuilder {
	return &modBuilder{m: &ast.Module{Path: path}}
}

func setExprID(e ast.Expr, id ast.ExprID) {
	rv := reflect.ValueOf(e)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	rv.FieldByName("ID_").Set(reflect.ValueOf(id))
}

func (b *modBuilder) expr(e ast.Expr) ast.ExprID {
	id := ast.ExprID(len(b.m.Exprs))
	setExprID(e, id)
	b.m.Exprs = append(b.m.Exprs, e)
	return id
}

func (b *modBuilder) stmt(e ast.ExprID) ast.StmtID {
	id := ast.StmtID(len(b.m.Statements))
	b.m.Statements = append(b.m.Statements, &ast.Statement{ID: id, Expr: e})
	return id
}

func (b *modBuilder) query(stmts ...ast.StmtID) *ast.Query {
	id := ast.QueryID(len(b.m.Queries))
	q := &ast.Query{ID: id, Statements: stmts}
	b.m.Queries = append(b.m.Queries, q)
	return q
}

func (b *modBuilder) completeRule(path, shortName string, value ast.ExprID, bodies ...*ast.Query) *ast.Rule {
	r := &ast.Rule{Path: path, ShortName: shortName, Kind: ast.RuleComplete,
		Defs: []*ast.RuleDef{{ValueExpr: &value, Bodies: bodies}}}
	b.m.Rules = append(b.m.Rules, r)
	return r
}

func (b *modBuilder) boolRule(path, shortName string, bodies ...*ast.Query) *ast.Rule {
	r := &ast.Rule{Path: path, ShortName: shortName, Kind: ast.RuleComplete,
		Defs: []*ast.RuleDef{{Bodies: bodies}}}
	b.m.Rules = append(b.m.Rules, r)
	return r
}
