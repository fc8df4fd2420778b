// Package engine defines the narrow evaluator contract the analyzer uses
// for whole-rule constant folding (spec §6.5). The evaluator itself — able
// to run a rule to a fixed point against the empty `input` — is an external
// collaborator; the analyzer only ever calls through this interface, and
// owns a single cached instance of it (spec §5's "owned by the analyzer,
// must not be shared").
package engine

import "github.com/funvibe/regotype/internal/value"

// Engine is the evaluator contract of §6.5.
type Engine interface {
	// TryEvalRuleConstant returns (v, true) if rulePath evaluates
	// deterministically to a constant against the empty input (i.e. does
	// not depend on input). Returns (_, false) otherwise — never an error;
	// per §7, external-subsystem errors are the caller's responsibility,
	// and the analyzer's contract assumes a well-formed evaluator.
	TryEvalRuleConstant(rulePath string) (value.Value, bool)
}

// Null is a no-op Engine for analyzers constructed without one (constant
// folding of whole rules is then simply never attempted, which is always
// sound: spec §3.8 keeps RuleConstantState at Unknown in that case).
type Null struct{}

func (Null) TryEvalRuleConstant(string) (value.Value, bool) { return value.Undefined, false }

var _ Engine = Null{}
