package prep

import "github.com/funvibe/regotype/internal/ast"

// HoistedLoopsLookup is the preparation contract of §6.3.
type HoistedLoopsLookup interface {
	GetStatementLoops(module int, sidx ast.StmtID) ([]HoistedLoop, bool)
	GetExprLoops(module int, eidx ast.ExprID) ([]HoistedLoop, bool)
	GetExprBindingPlan(module int, eidx ast.ExprID) (*BindingPlan, bool)
	GetQueryContext(module int, qidx ast.QueryID) (*QueryContext, bool)
}

// Schedule is the statement-ordering contract of §6.4.
type Schedule interface {
	// Order returns the ordering of statement indices within a query; the
	// analyzer uses this verbatim. A nil/absent entry means "source order".
	Order(module int, qidx ast.QueryID) ([]int, bool)
}

// Table is a concrete, in-memory HoistedLoopsLookup + Schedule, the shape a
// preparation pass would hand the analyzer once it has finished walking a
// set of modules. Keys are module index scoped, matching the analyzer's own
// module-indexed dense tables.
type Table struct {
	stmtLoops   map[moduleKey[ast.StmtID]][]HoistedLoop
	exprLoops   map[moduleKey[ast.ExprID]][]HoistedLoop
	bindingPlan map[moduleKey[ast.ExprID]]*BindingPlan
	queryCtx    map[moduleKey[ast.QueryID]]*QueryContext
	order       map[moduleKey[ast.QueryID]][]int
}

// moduleKey is a generic (module, id) composite key. Go's lack of generic
// map key literals forces a concrete instantiation per id type below.
type moduleKey[T comparable] struct {
	Module int
	ID     T
}

func NewTable() *Table {
	return &Table{
		stmtLoops:   map[moduleKey[ast.StmtID]][]HoistedLoop{},
		exprLoops:   map[moduleKey[ast.ExprID]][]HoistedLoop{},
		bindingPlan: map[moduleKey[ast.ExprID]]*BindingPlan{},
		queryCtx:    map[moduleKey[ast.QueryID]]*QueryContext{},
		order:       map[moduleKey[ast.QueryID]][]int{},
	}
}

func (t *Table) AddStatementLoop(module int, sidx ast.StmtID, loop HoistedLoop) {
	k := moduleKey[ast.StmtID]{Module: module, ID: sidx}
	t.stmtLoops[k] = append(t.stmtLoops[k], loop)
}

func (t *Table) AddExprLoop(module int, eidx ast.ExprID, loop HoistedLoop) {
	k := moduleKey[ast.ExprID]{Module: module, ID: eidx}
	t.exprLoops[k] = append(t.exprLoops[k], loop)
}

func (t *Table) SetBindingPlan(module int, eidx ast.ExprID, plan BindingPlan) {
	t.bindingPlan[moduleKey[ast.ExprID]{Module: module, ID: eidx}] = &plan
}

func (t *Table) SetQueryContext(module int, qidx ast.QueryID, ctx QueryContext) {
	t.queryCtx[moduleKey[ast.QueryID]{Module: module, ID: qidx}] = &ctx
}

func (t *Table) SetOrder(module int, qidx ast.QueryID, order []int) {
	t.order[moduleKey[ast.QueryID]{Module: module, ID: qidx}] = order
}

func (t *Table) GetStatementLoops(module int, sidx ast.StmtID) ([]HoistedLoop, bool) {
	v, ok := t.stmtLoops[moduleKey[ast.StmtID]{Module: module, ID: sidx}]
	return v, ok
}

func (t *Table) GetExprLoops(module int, eidx ast.ExprID) ([]HoistedLoop, bool) {
	v, ok := t.exprLoops[moduleKey[ast.ExprID]{Module: module, ID: eidx}]
	return v, ok
}

func (t *Table) GetExprBindingPlan(module int, eidx ast.ExprID) (*BindingPlan, bool) {
	v, ok := t.bindingPlan[moduleKey[ast.ExprID]{Module: module, ID: eidx}]
	return v, ok
}

func (t *Table) GetQueryContext(module int, qidx ast.QueryID) (*QueryContext, bool) {
	v, ok := t.queryCtx[moduleKey[ast.QueryID]{Module: module, ID: qidx}]
	return v, ok
}

func (t *Table) Order(module int, qidx ast.QueryID) ([]int, bool) {
	v, ok := t.order[moduleKey[ast.QueryID]{Module: module, ID: qidx}]
	return v, ok
}

var (
	_ HoistedLoopsLookup = (*Table)(nil)
	_ Schedule           = (*Table)(nil)
)
