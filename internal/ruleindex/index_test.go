package ruleindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/regotype/internal/ast"
)

func rule(path, shortName string) *ast.Rule {
	return &ast.Rule{Path: path, ShortName: shortName, Kind: ast.RuleComplete}
}

func TestByExactPath(t *testing.T) {
	m := &ast.Module{Path: "m", Rules: []*ast.Rule{rule("data.pkg.allow", "allow")}}
	idx := Build([]*ast.Module{m})

	ref, ok := idx.ByExactPath("data.pkg.allow")
	require.True(t, ok)
	assert.Equal(t, 0, ref.Module)
	assert.Equal(t, 0, ref.RuleIdx)

	_, ok = idx.ByExactPath("data.pkg.deny")
	assert.False(t, ok)
}

func TestByShortNameGlobalAndPerModule(t *testing.T) {
	m0 := &ast.Module{Path: "m0", Rules: []*ast.Rule{rule("data.pkg0.allow", "allow")}}
	m1 := &ast.Module{Path: "m1", Rules: []*ast.Rule{rule("data.pkg1.allow", "allow")}}
	idx := Build([]*ast.Module{m0, m1})

	assert.Len(t, idx.ByShortName("allow"), 2)
	assert.Len(t, idx.ByShortNameInModule(0, "allow"), 1)
	assert.Len(t, idx.ByShortNameInModule(1, "allow"), 1)
	assert.Nil(t, idx.ByShortNameInModule(5, "allow"))
}

func TestPrefixEnumerate(t *testing.T) {
	m := &ast.Module{Path: "m", Rules: []*ast.Rule{
		rule("data.pkg.allow", "allow"),
		rule("data.pkg.deny", "deny"),
		rule("data.other.allow", "allow"),
	}}
	idx := Build([]*ast.Module{m})

	matches := idx.PrefixEnumerate("data.pkg.")
	assert.Len(t, matches, 2)
}

func TestRuleAndModuleDereference(t *testing.T) {
	r := rule("data.pkg.allow", "allow")
	m := &ast.Module{Path: "m", Rules: []*ast.Rule{r}}
	idx := Build([]*ast.Module{m})

	ref, _ := idx.ByExactPath("data.pkg.allow")
	assert.Same(t, r, idx.Rule(ref))
	assert.Same(t, m, idx.Module(ref))
	assert.Equal(t, 1, idx.NumModules())
}
