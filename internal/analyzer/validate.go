package analyzer

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/diag"
)

// validateRuleDefinitions implements §4.6: every definition sharing a rule
// path must agree on rule kind, and `default` is legal only on complete
// rules. Both violations are reported as SchemaViolation errors rather than
// aborting analysis.
func (a *TypeAnalyzer) validateRuleDefinitions() {
	for _, m := range a.modules {
		byPath := map[string][]*ast.Rule{}
		for _, r := range m.Rules {
			byPath[r.Path] = append(byPath[r.Path], r)
		}
		for path, rules := range byPath {
			if len(rules) > 1 {
				kind := rules[0].Kind
				for _, r := range rules[1:] {
					if r.Kind != kind {
						pos := firstDefPos(r)
						a.diags.Add(diag.SchemaViolationErr(pos.File, pos.Line, pos.Col,
							"rule %q has inconsistent kinds across definitions", path))
					}
				}
			}
		}
		for _, r := range m.Rules {
			if r.Kind == ast.RuleComplete {
				continue
			}
			for _, def := range r.Defs {
				if def.IsDefault {
					a.diags.Add(diag.SchemaViolationErr(def.Pos.File, def.Pos.Line, def.Pos.Col,
						"default is only legal on complete rules, not %q", r.ShortName))
				}
			}
		}
	}
}

func firstDefPos(r *ast.Rule) ast.Position {
	if len(r.Defs) > 0 {
		return r.Defs[0].Pos
	}
	return ast.Position{}
}

// schemaAllower is the optional half of §6.2's schema query API
// (schema_allows_value) that the `==` schema-violation check in the
// inferencer needs. It is checked by type assertion rather than folded
// into types.SchemaRef because SchemaRef is the narrow projection contract
// every schema must satisfy, while enum/const checking is an extension a
// collaborator may or may not implement.
type schemaAllower interface {
	AllowsValue(interface{}) bool
}

// validateCollaboratorContracts is §7's "external-subsystem errors" path:
// a configured input/data schema that doesn't implement schemaAllower
// can't back the `==` schema-violation check of §4.2, which is a contract
// gap in the external collaborator, not a user diagnostic. These are
// internal (non-diagnostic) errors, aggregated rather than appended to the
// diagnostic bag.
func (a *TypeAnalyzer) validateCollaboratorContracts() {
	check := func(role string, s interface{ String() string }) {
		if s == nil {
			return
		}
		if _, ok := s.(schemaAllower); !ok {
			a.addInternalError(fmt.Errorf(
				"%s schema %q does not implement AllowsValue; schema-violation checks against it will be skipped", role, s.String()))
		}
	}
	if a.opts.InputSchema != nil {
		check("input", a.opts.InputSchema)
	}
	if a.opts.DataSchema != nil {
		check("data", a.opts.DataSchema)
	}
}

// addInternalError aggregates one internal (non-diagnostic) error from an
// external collaborator's contract violation (§7) into internalErrs, the
// way hashicorp/nomad's own controllers use go-multierror to collect
// errors that aren't single-threaded request failures.
func (a *TypeAnalyzer) addInternalError(err error) {
	a.internalErrs = multierror.Append(a.internalErrs, err)
}
