// Package analyzer implements the orchestrator, expression inferencer, rule
// analyzer, worklist/cycle guard, validation, and result assembly of spec
// §4.1, §4.2, §4.4, §4.6, §4.8.
package analyzer

import (
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/bindings"
	"github.com/funvibe/regotype/internal/builtins"
	"github.com/funvibe/regotype/internal/diag"
	"github.com/funvibe/regotype/internal/engine"
	"github.com/funvibe/regotype/internal/prep"
	"github.com/funvibe/regotype/internal/ruleindex"
	"github.com/funvibe/regotype/internal/types"
)

// Options configures construction (§4.1).
type Options struct {
	InputSchema                types.SchemaRef
	DataSchema                 types.SchemaRef
	Loops                      prep.HoistedLoopsLookup
	Schedule                   prep.Schedule
	Entrypoints                []string
	DisableFunctionGenericPass bool
	Engine                     engine.Engine
	Builtins                   *builtins.Registry
}

// TypeAnalyzer is the orchestrator of §4.1.
type TypeAnalyzer struct {
	modules []*ast.Module
	opts    Options
	index   *ruleindex.Index
	diags   *diag.Bag

	states       []*moduleState
	ruleAnalyses [][]*RuleAnalysis // [module][ruleIdx]

	stack []ruleindex.RuleRef

	entrypointsResolved []ruleindex.RuleRef
	reachable           map[ruleindex.RuleRef]bool
	filtered            bool
	dynamicRefs         []string
	includedDefaults    []ruleindex.RuleRef

	internalErrs *multierror.Error
}

// New constructs a TypeAnalyzer, eagerly building the rule-head index
// (§4.1).
func New(modules []*ast.Module, opts Options) *TypeAnalyzer {
	if opts.Engine == nil {
		opts.Engine = engine.Null{}
	}
	if opts.Builtins == nil {
		opts.Builtins = builtins.Default()
	}
	if opts.Loops == nil {
		opts.Loops = prep.NewTable()
	}
	a := &TypeAnalyzer{
		modules: modules,
		opts:    opts,
		index:   ruleindex.Build(modules),
		diags:   diag.NewBag(),
	}
	a.states = make([]*moduleState, len(modules))
	a.ruleAnalyses = make([][]*RuleAnalysis, len(modules))
	for mi, m := range modules {
		a.states[mi] = newModuleState(m.NumExpressions())
		a.ruleAnalyses[mi] = make([]*RuleAnalysis, len(m.Rules))
		for ri := range m.Rules {
			a.ruleAnalyses[mi][ri] = newRuleAnalysis()
		}
	}
	return a
}

// AnalyzeModules is the entry point of §4.1.
func (a *TypeAnalyzer) AnalyzeModules() *Result {
	a.validateRuleDefinitions()
	a.validateCollaboratorContracts()

	if len(a.opts.Entrypoints) > 0 {
		a.resolveEntrypoints()
		a.filtered = true
		for _, ref := range a.entrypointsResolved {
			a.ensureRuleAnalyzed(ref)
		}
	} else {
		for mi, m := range a.modules {
			for ri := range m.Rules {
				a.ensureRuleAnalyzed(ruleindex.RuleRef{Module: mi, RuleIdx: ri})
			}
		}
	}

	return a.buildResult()
}

// resolveEntrypoints resolves configured entrypoint patterns against known
// rule paths (§4.1): exact paths, and `pkg.*`-style prefixes understood as
// "every rule under this package". For every matched rule, the
// corresponding `default` rule (if any) is added too.
func (a *TypeAnalyzer) resolveEntrypoints() {
	a.reachable = map[ruleindex.RuleRef]bool{}
	seen := map[ruleindex.RuleRef]bool{}
	for _, pattern := range a.opts.Entrypoints {
		var matches []ruleindex.RuleRef
		if strings.HasSuffix(pattern, ".*") {
			matches = a.index.PrefixEnumerate(strings.TrimSuffix(pattern, "*"))
		} else if ref, ok := a.index.ByExactPath(pattern); ok {
			matches = []ruleindex.RuleRef{ref}
		} else {
			a.dynamicRefs = append(a.dynamicRefs, pattern)
			continue
		}
		for _, ref := range matches {
			if seen[ref] {
				continue
			}
			seen[ref] = true
			a.entrypointsResolved = append(a.entrypointsResolved, ref)
			a.reachable[ref] = true
			a.addDefaultSibling(ref, seen)
		}
	}
}

func (a *TypeAnalyzer) addDefaultSibling(ref ruleindex.RuleRef, seen map[ruleindex.RuleRef]bool) {
	rule := a.index.Rule(ref)
	for _, other := range a.index.ByShortNameInModule(ref.Module, rule.ShortName) {
		if other == ref || seen[other] {
			continue
		}
		otherRule := a.index.Rule(other)
		if otherRule.Path != rule.Path {
			continue
		}
		for _, def := range otherRule.Defs {
			if def.IsDefault {
				seen[other] = true
				a.entrypointsResolved = append(a.entrypointsResolved, other)
				a.reachable[other] = true
				a.includedDefaults = append(a.includedDefaults, other)
				break
			}
		}
	}
}

// markReachable is called whenever dependency resolution (property/call
// resolution) reaches a new rule, so the result's entrypoints.reachable
// set stays accurate even under lazy, on-demand analysis.
func (a *TypeAnalyzer) markReachable(ref ruleindex.RuleRef) {
	if a.reachable == nil {
		a.reachable = map[ruleindex.RuleRef]bool{}
	}
	a.reachable[ref] = true
}

func (a *TypeAnalyzer) newBindings() *bindings.Stack {
	return bindings.NewStack()
}
