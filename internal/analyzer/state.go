// Package analyzer implements the orchestrator, expression inferencer, rule
// analyzer, worklist/cycle guard, validation, and result assembly of spec
// §4.1, §4.2, §4.4, §4.6, §4.8.
package analyzer

import (
	"fmt"

	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/ruleindex"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// ConstantState is RuleAnalysis's constant_state (§3.8).
type ConstantState int

const (
	CSUnknown ConstantState = iota
	CSInProgress
	CSNeedsRuntime
	CSDone
)

// moduleState is the dense, module-indexed fact/constant storage of §3.10:
// expr_types[module][expr_id] and constants[module][expr_id]. Growth is
// explicit (ensure), and out-of-bounds access is a programmer error, per
// §3.10's "dense indexing + explicit capacity growth is required".
type moduleState struct {
	facts     []*types.TypeFact
	constants []*value.Value
}

func newModuleState(n int) *moduleState {
	return &moduleState{facts: make([]*types.TypeFact, n), constants: make([]*value.Value, n)}
}

func (ms *moduleState) ensure(id ast.ExprID) {
	if int(id) < len(ms.facts) {
		return
	}
	grown := make([]*types.TypeFact, id+1)
	copy(grown, ms.facts)
	ms.facts = grown
	grownC := make([]*value.Value, id+1)
	copy(grownC, ms.constants)
	ms.constants = grownC
}

func (ms *moduleState) get(id ast.ExprID) (*types.TypeFact, bool) {
	if int(id) >= len(ms.facts) {
		panic(fmt.Sprintf("analyzer: expression id %d out of bounds (len=%d)", id, len(ms.facts)))
	}
	f := ms.facts[id]
	return f, f != nil
}

func (ms *moduleState) set(id ast.ExprID, f types.TypeFact) {
	ms.ensure(id)
	ms.facts[id] = &f
	if f.Constant.IsKnown() {
		v := f.Constant.Value
		ms.constants[id] = &v
	}
}

// BodySummary is one rule body's contribution (§4.8's body-summary rules).
type BodySummary struct {
	Reachable bool
	IsConstant bool
	Value     types.TypeFact
}

// Specialization is a RuleSpecializationRecord (§3.9): an analysis of a
// function rule under one shape of argument facts.
type Specialization struct {
	Ref           types.SpecializationRef
	ParamFacts    []types.TypeFact
	HeadFact      *types.TypeFact
	ExprOverlay   map[ast.ExprID]types.TypeFact
	ConstantValue *value.Value
}

// RuleAnalysis is the per-rule accumulated state of §3.8, merged across a
// rule's bodies.
type RuleAnalysis struct {
	ConstantState ConstantState
	ConstantValue value.Value

	InputDependencies []types.SourceOrigin
	RuleDependencies  map[ruleindex.RuleRef]bool

	HeadFact       *types.TypeFact
	ParamFacts     []types.TypeFact // aggregated, slot-wise (§4.8)
	BodySummaries  []BodySummary

	Analyzed  bool
	Analyzing bool

	Specializations      []*Specialization
	activeSpecialization  *Specialization // set while a specialized re-analysis is in flight
}

func newRuleAnalysis() *RuleAnalysis {
	return &RuleAnalysis{RuleDependencies: map[ruleindex.RuleRef]bool{}}
}

func (ra *RuleAnalysis) addInputDependency(o types.SourceOrigin) {
	ra.InputDependencies = types.UnionOrigins(ra.InputDependencies, []types.SourceOrigin{o})
}

func (ra *RuleAnalysis) addRuleDependency(ref ruleindex.RuleRef) {
	ra.RuleDependencies[ref] = true
}

// shapeKey canonicalizes a specialization's argument facts into a string
// key for the specialization cache (§4.4: "a specialization cache keyed by
// (target rule, shape-of-argument facts)").
func shapeKey(facts []types.TypeFact) string {
	s := ""
	for i, f := range facts {
		if i > 0 {
			s += "|"
		}
		s += f.Descriptor.AsStructural().String()
	}
	return s
}

func (ra *RuleAnalysis) findSpecialization(key string) *Specialization {
	for _, sp := range ra.Specializations {
		if sp.Ref.ShapeKey == key {
			return sp
		}
	}
	return nil
}
