package analyzer

import (
	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/bindings"
	"github.com/funvibe/regotype/internal/ruleindex"
	"github.com/funvibe/regotype/internal/types"
)

// currentRef reports the rule currently being analyzed (top of the
// analysis stack), used to avoid resolving a rule reference to itself
// outside of the cycle guard.
func (a *TypeAnalyzer) currentRef() (ruleindex.RuleRef, bool) {
	if len(a.stack) == 0 {
		return ruleindex.RuleRef{}, false
	}
	return a.stack[len(a.stack)-1], true
}

// resolveVariable implements §4.2's Variable contract: bindings first, then
// input/data schema roots, then short rule-name resolution.
func (a *TypeAnalyzer) resolveVariable(mi int, ex *ast.VarExpr, b *bindings.Stack, ra *RuleAnalysis) types.TypeFact {
	if fact, ok := b.Lookup(ex.Name); ok {
		return fact
	}

	if ex.Name == "input" {
		desc := types.AnyDescriptor()
		if a.opts.InputSchema != nil {
			desc = types.FromSchema(a.opts.InputSchema)
		}
		origin := types.SourceOrigin{Root: types.RootInput}
		ra.addInputDependency(origin)
		return types.TypeFact{Descriptor: desc, Constant: types.UnknownConstant(), Provenance: types.ProvSchemaInput, Origins: []types.SourceOrigin{origin}}
	}
	if ex.Name == "data" {
		desc := types.AnyDescriptor()
		if a.opts.DataSchema != nil {
			desc = types.FromSchema(a.opts.DataSchema)
		}
		origin := types.SourceOrigin{Root: types.RootData}
		return types.TypeFact{Descriptor: desc, Constant: types.UnknownConstant(), Provenance: types.ProvSchemaData, Origins: []types.SourceOrigin{origin}}
	}

	candidates := a.index.ByShortNameInModule(mi, ex.Name)
	if len(candidates) == 0 {
		candidates = a.index.ByShortName(ex.Name)
	}
	if len(candidates) == 0 {
		return types.AnyFact()
	}

	cur, hasCur := a.currentRef()
	var facts []types.TypeFact
	for _, ref := range candidates {
		if hasCur && ref == cur {
			continue
		}
		ra.addRuleDependency(ref)
		a.ensureRuleAnalyzed(ref)
		target := a.ruleAnalyses[ref.Module][ref.RuleIdx]
		if target.HeadFact != nil {
			facts = append(facts, *target.HeadFact)
		}
	}
	if len(facts) == 0 {
		return types.AnyFact()
	}
	return types.MergeRuleFacts(facts)
}

// staticPath recognizes a chain of dotted property accesses rooted at the
// `data` variable, e.g. `data.pkg.sub`, returning the dotted path string.
func (a *TypeAnalyzer) staticPath(mi int, eid ast.ExprID) (string, bool) {
	switch ex := a.modules[mi].Expr(eid).(type) {
	case *ast.VarExpr:
		if ex.Name == "data" {
			return "data", true
		}
		return "", false
	case *ast.PropertyExpr:
		if !ex.IsDot {
			return "", false
		}
		prefix, ok := a.staticPath(mi, ex.Base)
		if !ok {
			return "", false
		}
		return prefix + "." + ex.FieldName, true
	}
	return "", false
}

// tryResolveRuleProperty implements §4.4's shortcut: if a dotted property
// chain's base forms a static `data....` path and prefix.field names a
// known rule, property access resolves directly to that rule's head fact
// instead of going through structural field lookup.
func (a *TypeAnalyzer) tryResolveRuleProperty(mi int, baseID ast.ExprID, field string, ra *RuleAnalysis) (types.TypeFact, bool) {
	prefix, ok := a.staticPath(mi, baseID)
	if !ok {
		return types.TypeFact{}, false
	}
	candidate := prefix + "." + field
	ref, ok := a.index.ByExactPath(candidate)
	if !ok {
		return types.TypeFact{}, false
	}
	if cur, hasCur := a.currentRef(); hasCur && ref == cur {
		return types.TypeFact{}, false
	}
	ra.addRuleDependency(ref)
	a.ensureRuleAnalyzed(ref)
	target := a.ruleAnalyses[ref.Module][ref.RuleIdx]
	if target.HeadFact == nil {
		return types.AnyFact(), true
	}
	return *target.HeadFact, true
}

// resolveRuleCall implements §4.4's call-resolution path for function
// rules: candidates are matched by short name, each is analyzed under a
// specialization keyed by the call's argument-fact shape, and the merged
// head facts (with specialization hits recorded) become the call's result.
func (a *TypeAnalyzer) resolveRuleCall(mi int, ex *ast.CallExpr, argFacts []types.TypeFact, ra *RuleAnalysis) types.TypeFact {
	candidates := a.index.ByShortNameInModule(mi, ex.Name)
	if len(candidates) == 0 {
		candidates = a.index.ByShortName(ex.Name)
	}
	cur, hasCur := a.currentRef()

	var facts []types.TypeFact
	var hits []types.SpecializationRef
	for _, ref := range candidates {
		rule := a.index.Rule(ref)
		if rule.Kind != ast.RuleFunction {
			continue
		}
		if hasCur && ref == cur {
			continue
		}
		ra.addRuleDependency(ref)
		sp := a.ensureRuleAnalyzedSpecialized(ref, argFacts)
		if sp == nil {
			target := a.ruleAnalyses[ref.Module][ref.RuleIdx]
			if target.HeadFact != nil {
				facts = append(facts, *target.HeadFact)
			}
			continue
		}
		if sp.HeadFact != nil {
			facts = append(facts, *sp.HeadFact)
		}
		hits = append(hits, sp.Ref)
	}
	if len(facts) == 0 {
		return types.AnyFact()
	}
	merged := types.MergeRuleFacts(facts)
	merged.SpecializationHits = append(merged.SpecializationHits, hits...)
	return merged
}
