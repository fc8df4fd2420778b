package analyzer

import (
	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/diag"
	"github.com/funvibe/regotype/internal/ruleindex"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// RuleResult is one rule's assembled analysis (§4.8).
type RuleResult struct {
	Path              string
	ShortName         string
	Kind              ast.RuleKind
	HeadFact          types.TypeFact
	ParamFacts        []types.TypeFact
	BodySummaries     []BodySummary
	Specializations   []*Specialization
	ConstantState     ConstantState
	ConstantValue     value.Value
	InputDependencies []types.SourceOrigin
	Dependencies      []ruleindex.RuleRef
}

// ModuleResult carries one module's expression fact table and rule results.
type ModuleResult struct {
	Path        string
	Expressions []*types.TypeFact
	Rules       []RuleResult
}

// EntrypointsResult mirrors §6.6's entrypoints output shape:
// {requested, reachable, included_defaults, dynamic_refs}. IncludedDefaults
// is the subset of Reachable pulled in only because it is the `default`
// sibling of a directly matched rule (§4.1), distinct from rules reached
// transitively through dependency/call resolution (Testable Property #7).
type EntrypointsResult struct {
	Requested        []string
	Reachable        []ruleindex.RuleRef
	IncludedDefaults []ruleindex.RuleRef
	DynamicRefs      []string
}

// Result is TypeAnalysisResult (§4.8, §6.6): the output of a completed
// analysis run. InternalErrors carries §7's "external-subsystem errors"
// class (e.g. a configured schema that doesn't implement the full §6.2
// query API) — distinct from Diagnostics, which are user-facing and never
// wrap an `error`.
type Result struct {
	Modules       []ModuleResult
	Entrypoints   EntrypointsResult
	Diagnostics   []diag.Diagnostic
	InternalErrors error
}

func (a *TypeAnalyzer) buildResult() *Result {
	modules := make([]ModuleResult, len(a.modules))
	for mi, m := range a.modules {
		mr := ModuleResult{
			Path:        m.Path,
			Expressions: append([]*types.TypeFact{}, a.states[mi].facts...),
		}
		for ri, rule := range m.Rules {
			ra := a.ruleAnalyses[mi][ri]
			headFact := types.AnyFact()
			if ra.HeadFact != nil {
				headFact = *ra.HeadFact
			}
			var deps []ruleindex.RuleRef
			for ref := range ra.RuleDependencies {
				deps = append(deps, ref)
			}
			mr.Rules = append(mr.Rules, RuleResult{
				Path:              rule.Path,
				ShortName:         rule.ShortName,
				Kind:              rule.Kind,
				HeadFact:          headFact,
				ParamFacts:        ra.ParamFacts,
				BodySummaries:     ra.BodySummaries,
				Specializations:   ra.Specializations,
				ConstantState:     ra.ConstantState,
				ConstantValue:     ra.ConstantValue,
				InputDependencies: ra.InputDependencies,
				Dependencies:      deps,
			})
		}
		modules[mi] = mr
	}

	return &Result{
		Modules: modules,
		Entrypoints: EntrypointsResult{
			Requested:        a.opts.Entrypoints,
			Reachable:        reachableList(a.reachable),
			IncludedDefaults: append([]ruleindex.RuleRef{}, a.includedDefaults...),
			DynamicRefs:      a.dynamicRefs,
		},
		Diagnostics:    a.diags.Sorted(),
		InternalErrors: a.internalErrs.ErrorOrNil(),
	}
}

func reachableList(m map[ruleindex.RuleRef]bool) []ruleindex.RuleRef {
	out := make([]ruleindex.RuleRef, 0, len(m))
	for ref := range m {
		out = append(out, ref)
	}
	return out
}
