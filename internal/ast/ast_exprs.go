package ast

import "github.com/funvibe/regotype/internal/value"

// StringExpr, RawStringExpr, NumberExpr, BoolExpr, NullExpr are the scalar
// literal variants (§4.2 "Scalars").
type StringExpr struct {
	exprBase
	Value string
}

type RawStringExpr struct {
	exprBase
	Value string
}

type NumberExpr struct {
	exprBase
	Value value.Value // always numeric
}

type BoolExpr struct {
	exprBase
	Value bool
}

type NullExpr struct{ exprBase }

// VarExpr is a variable reference: a local binding, `input`, `data`, or an
// unresolved short rule name (§4.2 "Variable").
type VarExpr struct {
	exprBase
	Name string
}

// ArrayExpr is an array literal `[e0, e1, ...]`.
type ArrayExpr struct {
	exprBase
	Elems []ExprID
}

// SetExpr is a set literal `{e0, e1, ...}`.
type SetExpr struct {
	exprBase
	Elems []ExprID
}

// ObjectEntry is one `key: value` pair of an object literal. StaticKey is
// set when the key is a literal string known at parse time; otherwise Key
// holds the dynamic key expression.
type ObjectEntry struct {
	StaticKey string
	IsStatic  bool
	Key       ExprID // always valid; for static keys this is a literal expr too
	Value     ExprID
}

// ObjectExpr is an object literal `{k0: v0, ...}`.
type ObjectExpr struct {
	exprBase
	Entries []ObjectEntry
}

// ComprKind distinguishes the three comprehension shapes.
type ComprKind int

const (
	ComprArray ComprKind = iota
	ComprSet
	ComprObject
)

// ComprehensionExpr covers array/set/object comprehensions (§4.2). For
// ComprObject both KeyTerm and Term (the value term) are populated; for
// ComprArray/ComprSet only Term is.
type ComprehensionExpr struct {
	exprBase
	Kind    ComprKind
	KeyTerm ExprID // only for ComprObject
	Term    ExprID
	Body    QueryID
}

// AssignOp distinguishes `:=` from `=`.
type AssignOp int

const (
	OpColonEquals AssignOp = iota
	OpEquals
)

// AssignExpr is `lhs = rhs` / `lhs := rhs` (§4.2 "Assignment"). Destructuring
// on the LHS is not modeled here; it is described by the binding plan the
// preparation pass attaches to this expression's id (§4.5).
type AssignExpr struct {
	exprBase
	Op  AssignOp
	LHS ExprID
	RHS ExprID
}

// CompareOp enumerates the boolean comparison operators.
type CompareOp int

const (
	OpEq CompareOp = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// CompareExpr is `lhs <op> rhs` (§4.2 "Boolean comparison").
type CompareExpr struct {
	exprBase
	Op  CompareOp
	LHS ExprID
	RHS ExprID
}

// ArithOp enumerates the arithmetic operators.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
)

// ArithExpr is `lhs <op> rhs` for `+ - * / %` (§4.2 "Arithmetic"). `-` is
// overloaded for set difference when both operands are set-like; the
// inferencer, not the AST, decides which behavior applies.
type ArithExpr struct {
	exprBase
	Op  ArithOp
	LHS ExprID
	RHS ExprID
}

// SetOp enumerates `|` and `&`.
type SetOp int

const (
	OpUnion SetOp = iota
	OpIntersect
)

// SetOpExpr is `lhs | rhs` / `lhs & rhs` (§4.2 "Set operations").
type SetOpExpr struct {
	exprBase
	Op  SetOp
	LHS ExprID
	RHS ExprID
}

// InExpr is `x in c` or `k, v in c` (§4.2 "Membership"). Key is nil for the
// single-variable form.
type InExpr struct {
	exprBase
	Key        *ExprID
	Value      ExprID
	Collection ExprID
}

// UnaryMinusExpr is `-operand` (§4.2 "Unary minus").
type UnaryMinusExpr struct {
	exprBase
	Operand ExprID
}

// NotExpr is `not operand`, a SUPPLEMENT ed in from original_source's
// references.rs/rules.rs (see SPEC_FULL.md §SUPPLEMENT 3): negation
// produces Boolean, contributes no bindings, and participates in
// unreachable-statement analysis exactly like any other statement whose
// value is the constant false.
type NotExpr struct {
	exprBase
	Operand ExprID
}

// PropertyExpr is `base.field` or `base[index]` (§4.2 "Property access").
// For the dot form, FieldName/IsDot are set and Index is unused; for the
// bracket form, Index holds the index expression.
type PropertyExpr struct {
	exprBase
	Base      ExprID
	IsDot     bool
	FieldName string // valid when IsDot
	Index     ExprID // valid when !IsDot
}

// CallExpr is `f(args...)` (§4.2 "Function call"). Name is the literal
// callee name as written; resolution to a builtin or a rule happens during
// inference.
type CallExpr struct {
	exprBase
	Name string
	Args []ExprID
}

var (
	_ Expr = (*StringExpr)(nil)
	_ Expr = (*RawStringExpr)(nil)
	_ Expr = (*NumberExpr)(nil)
	_ Expr = (*BoolExpr)(nil)
	_ Expr = (*NullExpr)(nil)
	_ Expr = (*VarExpr)(nil)
	_ Expr = (*ArrayExpr)(nil)
	_ Expr = (*SetExpr)(nil)
	_ Expr = (*ObjectExpr)(nil)
	_ Expr = (*ComprehensionExpr)(nil)
	_ Expr = (*AssignExpr)(nil)
	_ Expr = (*CompareExpr)(nil)
	_ Expr = (*ArithExpr)(nil)
	_ Expr = (*SetOpExpr)(nil)
	_ Expr = (*InExpr)(nil)
	_ Expr = (*UnaryMinusExpr)(nil)
	_ Expr = (*NotExpr)(nil)
	_ Expr = (*PropertyExpr)(nil)
	_ Expr = (*CallExpr)(nil)
)
