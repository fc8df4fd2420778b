// Package ruleindex builds the rule-head index spec §4.1/§4.4 describe: a
// per-module map plus a global map, both keyed by the final segment of the
// rule path, plus exact-path lookup and prefix enumeration over the
// dotted, `data.`-rooted rule path space.
package ruleindex

import (
	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/funvibe/regotype/internal/ast"
)

// RuleRef locates one Rule within the analyzed module set.
type RuleRef struct {
	Module  int
	RuleIdx int
}

// Index is the rule-head index. Construction is eager (§4.1: "Construction
// eagerly builds the rule-head index"); it is never mutated after Build
// returns, matching §3.11's "frozen" lifecycle for analyzer-owned state
// that informs, but is not part of, the mutable fact store.
type Index struct {
	// byPath backs exact-path lookup and prefix enumeration. A radix tree
	// is the natural structure for "exact lookup + prefix enumeration"
	// over dotted paths, rather than a plain map plus a separate sorted
	// slice for prefix scans.
	byPath *iradix.Tree

	// byShortName buckets every rule definition by the last path segment,
	// both globally and per module, per §4.1 ("a pre-built map from short
	// rule name ... to the modules/rules that define them").
	byShortNameGlobal map[string][]RuleRef
	byShortNamePerMod []map[string][]RuleRef

	modules []*ast.Module
}

// Build constructs the index over modules in source order. Module indices
// in the returned RuleRefs correspond to the position of each module in
// the slice.
func Build(modules []*ast.Module) *Index {
	idx := &Index{
		byPath:            iradix.New(),
		byShortNameGlobal: map[string][]RuleRef{},
		byShortNamePerMod: make([]map[string][]RuleRef, len(modules)),
		modules:           modules,
	}
	txn := idx.byPath.Txn()
	for mi, m := range modules {
		idx.byShortNamePerMod[mi] = map[string][]RuleRef{}
		for ri, rule := range m.Rules {
			ref := RuleRef{Module: mi, RuleIdx: ri}
			txn.Insert([]byte(rule.Path), ref)
			idx.byShortNameGlobal[rule.ShortName] = append(idx.byShortNameGlobal[rule.ShortName], ref)
			idx.byShortNamePerMod[mi][rule.ShortName] = append(idx.byShortNamePerMod[mi][rule.ShortName], ref)
		}
	}
	idx.byPath = txn.Commit()
	return idx
}

// ByExactPath is §4.4's exact-path lookup.
func (idx *Index) ByExactPath(path string) (RuleRef, bool) {
	v, ok := idx.byPath.Get([]byte(path))
	if !ok {
		return RuleRef{}, false
	}
	return v.(RuleRef), true
}

// ByShortName is §4.4's short-name lookup, global across all modules.
func (idx *Index) ByShortName(name string) []RuleRef {
	return idx.byShortNameGlobal[name]
}

// ByShortNameInModule restricts short-name lookup to one module, used by
// the Variable inference contract (§4.2) before falling back to the global
// bucket.
func (idx *Index) ByShortNameInModule(module int, name string) []RuleRef {
	if module < 0 || module >= len(idx.byShortNamePerMod) {
		return nil
	}
	return idx.byShortNamePerMod[module][name]
}

// PrefixEnumerate is §4.4's prefix enumeration, used by entrypoint
// resolution to match path patterns like `data.pkg` against every rule
// defined under that package.
func (idx *Index) PrefixEnumerate(prefix string) []RuleRef {
	var out []RuleRef
	idx.byPath.Root().WalkPrefix([]byte(prefix), func(k []byte, v interface{}) bool {
		out = append(out, v.(RuleRef))
		return false
	})
	return out
}

// Rule dereferences a RuleRef back to its AST node.
func (idx *Index) Rule(ref RuleRef) *ast.Rule {
	return idx.modules[ref.Module].Rules[ref.RuleIdx]
}

// Module returns the module a RuleRef belongs to.
func (idx *Index) Module(ref RuleRef) *ast.Module {
	return idx.modules[ref.Module]
}

// NumModules returns how many modules this index covers.
func (idx *Index) NumModules() int { return len(idx.modules) }
