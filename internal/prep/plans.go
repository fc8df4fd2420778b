// Package prep models the preparation pass's output: hoisted loops and
// destructuring binding plans (spec §4.5), consumed by the analyzer through
// the narrow contracts of §6.3/§6.4. The preparation pass itself (turning
// implicit iteration and destructuring into these explicit structures) is
// an external collaborator per spec §1; this package also supplies a
// concrete, from-AST builder (build.go) so the analyzer is exercisable
// end-to-end without a separate compiler front-end.
package prep

import "github.com/funvibe/regotype/internal/ast"

// LoopType distinguishes the two hoisted-loop shapes of §4.5.
type LoopType int

const (
	IndexIteration LoopType = iota
	Walk
)

// HoistedLoop is an explicit iteration extracted from an implicit
// construct. LoopExpr, when non-nil, is the expression that triggered the
// hoist (e.g. the `coll[i]` property expression); Key is nil when the
// iteration has no bound key.
type HoistedLoop struct {
	LoopExpr   *ast.ExprID
	Key        *ast.ExprID
	Value      ast.ExprID
	Collection ast.ExprID
	Type       LoopType
}

// DestructuringKind tags a DestructuringPlan variant.
type DestructuringKind int

const (
	DVar DestructuringKind = iota
	DIgnore
	DEqualityExpr
	DEqualityValue
	DArray
	DObject
)

// DestructuringPlan is a small tree mirroring a pattern (§4.5).
type DestructuringPlan struct {
	Kind DestructuringKind

	VarName string // DVar

	EqExpr ast.ExprID // DEqualityExpr

	EqValueExpr ast.ExprID // DEqualityValue: the literal expression whose constant value must match

	Elements []DestructuringPlan // DArray

	LiteralFields []ObjectFieldPlan   // DObject: statically-keyed sub-patterns
	DynamicFields []ObjectDynamicPlan // DObject: dynamically-keyed sub-patterns
}

type ObjectFieldPlan struct {
	Name string
	Plan DestructuringPlan
}

type ObjectDynamicPlan struct {
	KeyExpr ast.ExprID
	Plan    DestructuringPlan
}

func Var(name string) DestructuringPlan { return DestructuringPlan{Kind: DVar, VarName: name} }
func Ignore() DestructuringPlan         { return DestructuringPlan{Kind: DIgnore} }
func EqualityExpr(e ast.ExprID) DestructuringPlan {
	return DestructuringPlan{Kind: DEqualityExpr, EqExpr: e}
}
func ArrayPlan(elems ...DestructuringPlan) DestructuringPlan {
	return DestructuringPlan{Kind: DArray, Elements: elems}
}
func ObjectPlan(lit []ObjectFieldPlan, dyn []ObjectDynamicPlan) DestructuringPlan {
	return DestructuringPlan{Kind: DObject, LiteralFields: lit, DynamicFields: dyn}
}

// AssignmentPlanKind tags an AssignmentPlan variant.
type AssignmentPlanKind int

const (
	AColonEquals AssignmentPlanKind = iota
	AEqualsBindLeft
	AEqualsBindRight
	AEqualsBothSides
	AEqualityCheck
	AWildcardMatch
)

// EqualsBothSidesPair is one ordered (value_expr, pattern_plan) pair of an
// EqualsBothSides assignment plan. The preparation pass is responsible for
// topologically sorting these; the analyzer applies them in the order
// given (§4.5).
type EqualsBothSidesPair struct {
	ValueExpr ast.ExprID
	Plan      DestructuringPlan
}

// AssignmentPlan is the BindingPlan sub-variant attached to `=`/`:=`
// expressions (§4.5).
type AssignmentPlan struct {
	Kind  AssignmentPlanKind
	Plan  DestructuringPlan    // AColonEquals, AEqualsBindLeft, AEqualsBindRight
	Pairs []EqualsBothSidesPair // AEqualsBothSides
}

// BindingPlanKind tags a BindingPlan variant.
type BindingPlanKind int

const (
	BAssignment BindingPlanKind = iota
	BLoopIndex
	BParameter
	BSomeIn
)

// BindingPlan is the tagged union of §4.5's four binding-plan shapes.
type BindingPlan struct {
	Kind BindingPlanKind

	Assignment AssignmentPlan // BAssignment

	Destructuring DestructuringPlan // BLoopIndex, BParameter

	// BSomeIn
	SomeInCollection ast.ExprID
	SomeInKeyPlan    *DestructuringPlan
	SomeInValuePlan  DestructuringPlan
}

// QueryContext carries the key/value output expressions for a
// comprehension or rule body (§6.3).
type QueryContext struct {
	KeyExpr   *ast.ExprID
	ValueExpr ast.ExprID
}
