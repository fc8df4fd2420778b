// Package ast defines the AST contract the analyzer consumes (spec §6.1).
// The parser/lexer that produce this tree are external collaborators
// (spec §1); this package only fixes the shape the core core depends on:
// dense per-module integer ids for expressions, statements, and queries,
// and the exhaustive set of expression variants §4.2 dispatches over.
package ast

// ExprID, StmtID, and QueryID are dense, per-module identifiers. §3.10
// requires the analyzer's lookup tables to be indexed by these directly
// (no map indirection), so ids must be contiguous from 0.
type ExprID int
type StmtID int
type QueryID int

// Module is one policy source file's parsed form. NumExpressions,
// NumStatements, and NumQueries size the analyzer's dense tables (§6.1).
type Module struct {
	Path    string // e.g. "pkg.sub"
	Rules   []*Rule

	Exprs      []Expr
	Statements []*Statement
	Queries    []*Query
}

func (m *Module) NumExpressions() int { return len(m.Exprs) }
func (m *Module) NumStatements() int  { return len(m.Statements) }
func (m *Module) NumQueries() int     { return len(m.Queries) }

func (m *Module) Expr(id ExprID) Expr {
	if int(id) < 0 || int(id) >= len(m.Exprs) {
		panic("ast: expression id out of bounds")
	}
	return m.Exprs[id]
}

func (m *Module) Statement(id StmtID) *Statement {
	if int(id) < 0 || int(id) >= len(m.Statements) {
		panic("ast: statement id out of bounds")
	}
	return m.Statements[id]
}

func (m *Module) Query(id QueryID) *Query {
	if int(id) < 0 || int(id) >= len(m.Queries) {
		panic("ast: query id out of bounds")
	}
	return m.Queries[id]
}

// Statement is one body line. Its Expr carries the statement's computed
// value; most statement-level behaviors (hoisted loops, binding plans,
// unreachability) are attached via the preparation pass keyed on either
// the statement id or the wrapped expression id (§4.5).
type Statement struct {
	ID   StmtID
	Expr ExprID
}

// Query is a sequence of statements: a rule body, or a comprehension body.
type Query struct {
	ID         QueryID
	Statements []StmtID
}

// Position is a source location, carried for diagnostics (§4.7). The
// parser/lexer own the authoritative representation; the analyzer only
// needs to echo it back.
type Position struct {
	File             string
	Line, Col        int
	EndLine, EndCol  int
}

// Expr is the base interface every expression variant implements.
type Expr interface {
	ExprID() ExprID
	Pos() Position
	exprNode()
}

type exprBase struct {
	ID_  ExprID
	Pos_ Position
}

func (e exprBase) ExprID() ExprID { return e.ID_ }
func (e exprBase) Pos() Position  { return e.Pos_ }
func (e exprBase) exprNode()      {}
