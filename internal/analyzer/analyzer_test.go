package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/diag"
	"github.com/funvibe/regotype/internal/prep"
	"github.com/funvibe/regotype/internal/schema"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

func analyze(t *testing.T, m *ast.Module, opts Options) *Result {
	t.Helper()
	if opts.Loops == nil {
		opts.Loops = prep.BuildModule(0, m)
	}
	a := New([]*ast.Module{m}, opts)
	return a.AnalyzeModules()
}

func TestConstantFoldingArithmetic(t *testing.T) {
	b := newModBuilder("test")
	one := b.expr(&ast.NumberExpr{Value: value.Int(1)})
	two := b.expr(&ast.NumberExpr{Value: value.Int(2)})
	sum := b.expr(&ast.ArithExpr{Op: ast.OpAdd, LHS: one, RHS: two})
	b.completeRule("p", "p", sum, b.query())

	res := analyze(t, b.m, Options{})
	rr := res.Modules[0].Rules[0]
	require.True(t, rr.HeadFact.Constant.IsKnown())
	assert.Equal(t, 0, value.Compare(rr.HeadFact.Constant.Value, value.Int(3)))
	assert.Equal(t, types.KInteger, rr.HeadFact.Descriptor.AsStructural().Kind)
}

func TestEnumWideningAcrossDefinitions(t *testing.T) {
	b := newModBuilder("test")
	red := b.expr(&ast.StringExpr{Value: "red"})
	green := b.expr(&ast.StringExpr{Value: "green"})
	b.m.Rules = append(b.m.Rules, &ast.Rule{
		Path: "color", ShortName: "color", Kind: ast.RuleComplete,
		Defs: []*ast.RuleDef{
			{ValueExpr: &red, Bodies: []*ast.Query{b.query()}},
			{ValueExpr: &green, Bodies: []*ast.Query{b.query()}},
		},
	})

	res := analyze(t, b.m, Options{})
	rr := res.Modules[0].Rules[0]
	assert.Equal(t, types.KEnum, rr.HeadFact.Descriptor.AsStructural().Kind)
	assert.False(t, rr.HeadFact.Constant.IsKnown())
}

func TestSchemaGuidedPropertyAccess(t *testing.T) {
	inputSchema := schema.New(schema.KindObject).
		WithProperty("name", schema.New(schema.KindString))

	b := newModBuilder("test")
	inputVar := b.expr(&ast.VarExpr{Name: "input"})
	nameProp := b.expr(&ast.PropertyExpr{Base: inputVar, IsDot: true, FieldName: "name"})
	b.completeRule("p", "p", nameProp, b.query())

	res := analyze(t, b.m, Options{InputSchema: inputSchema})
	rr := res.Modules[0].Rules[0]
	assert.Equal(t, types.KString, rr.HeadFact.Descriptor.AsStructural().Kind)
	// The bare `input` root and the `input.name` path are both recorded.
	require.Len(t, rr.InputDependencies, 2)
	assert.Equal(t, types.RootInput, rr.InputDependencies[0].Root)
}

func TestIterationDerivesOrigins(t *testing.T) {
	inputSchema := schema.New(schema.KindObject).
		WithProperty("items", schema.New(schema.KindArray).WithItems(schema.New(schema.KindInteger)))

	b := newModBuilder("test")
	inputVar := b.expr(&ast.VarExpr{Name: "input"})
	items := b.expr(&ast.PropertyExpr{Base: inputVar, IsDot: true, FieldName: "items"})
	idx := b.expr(&ast.VarExpr{Name: "i"})
	elem := b.expr(&ast.PropertyExpr{Base: items, IsDot: false, Index: idx})
	b.completeRule("p", "p", elem, b.query(b.stmt(elem)))

	res := analyze(t, b.m, Options{InputSchema: inputSchema})
	rr := res.Modules[0].Rules[0]
	assert.Equal(t, types.KInteger, rr.HeadFact.Descriptor.AsStructural().Kind)
	require.NotEmpty(t, rr.InputDependencies)
}

func TestCycleDetectionMarksNeedsRuntime(t *testing.T) {
	b := newModBuilder("test")
	qRef := b.expr(&ast.VarExpr{Name: "q"})
	b.completeRule("p", "p", qRef, b.query(b.stmt(qRef)))
	pRef := b.expr(&ast.VarExpr{Name: "p"})
	b.completeRule("q", "q", pRef, b.query(b.stmt(pRef)))

	res := analyze(t, b.m, Options{})
	var p RuleResult
	for _, r := range res.Modules[0].Rules {
		if r.ShortName == "p" {
			p = r
		}
	}
	assert.Equal(t, CSNeedsRuntime, p.ConstantState)
}

func TestRuleKindConflictIsDiagnosed(t *testing.T) {
	b := newModBuilder("test")
	v := b.expr(&ast.BoolExpr{Value: true})
	b.m.Rules = append(b.m.Rules,
		&ast.Rule{Path: "p", ShortName: "p", Kind: ast.RuleComplete,
			Defs: []*ast.RuleDef{{ValueExpr: &v, Bodies: []*ast.Query{b.query()}}}},
		&ast.Rule{Path: "p", ShortName: "p", Kind: ast.RulePartialSet,
			Defs: []*ast.RuleDef{{Bodies: []*ast.Query{b.query()}}}},
	)

	res := analyze(t, b.m, Options{})
	var found bool
	for _, d := range res.Diagnostics {
		if d.Kind == diag.SchemaViolation && d.Severity == diag.Error {
			found = true
		}
	}
	assert.True(t, found, "expected a schema-violation error for conflicting rule kinds")
}

func TestUnreachableStatementWarns(t *testing.T) {
	b := newModBuilder("test")
	falseExpr := &ast.BoolExpr{Value: false}
	falseExpr.Pos_ = ast.Position{File: "test.rego", Line: 1, Col: 1}
	falseLit := b.expr(falseExpr)

	trueExpr := &ast.BoolExpr{Value: true}
	trueExpr.Pos_ = ast.Position{File: "test.rego", Line: 2, Col: 1}
	trueLit := b.expr(trueExpr)

	s1 := b.stmt(falseLit)
	s2 := b.stmt(trueLit)
	v := b.expr(&ast.BoolExpr{Value: true})
	b.completeRule("p", "p", v, b.query(s1, s2))

	res := analyze(t, b.m, Options{})
	var found bool
	for _, d := range res.Diagnostics {
		if d.Kind == diag.UnreachableStatement {
			found = true
			assert.Equal(t, 2, d.Line)
		}
	}
	assert.True(t, found, "expected an unreachable-statement warning")
}

func TestSomeInBindsKeyAndValue(t *testing.T) {
	inputSchema := schema.New(schema.KindObject).
		WithProperty("items", schema.New(schema.KindArray).WithItems(schema.New(schema.KindString)))

	b := newModBuilder("test")
	inputVar := b.expr(&ast.VarExpr{Name: "input"})
	items := b.expr(&ast.PropertyExpr{Base: inputVar, IsDot: true, FieldName: "items"})
	keyVar := b.expr(&ast.VarExpr{Name: "k"})
	valVar := b.expr(&ast.VarExpr{Name: "v"})
	someIn := b.expr(&ast.InExpr{Key: exprIDPtr(keyVar), Value: valVar, Collection: items})
	valRef := b.expr(&ast.VarExpr{Name: "v"})
	b.completeRule("p", "p", valRef, b.query(b.stmt(someIn)))

	res := analyze(t, b.m, Options{InputSchema: inputSchema})
	rr := res.Modules[0].Rules[0]
	assert.Equal(t, types.KString, rr.HeadFact.Descriptor.AsStructural().Kind)
}

func exprIDPtr(id ast.ExprID) *ast.ExprID { return &id }
