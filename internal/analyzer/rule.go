package analyzer

import (
	"github.com/funvibe/regotype/internal/ast"
	"github.com/funvibe/regotype/internal/bindings"
	"github.com/funvibe/regotype/internal/diag"
	"github.com/funvibe/regotype/internal/prep"
	"github.com/funvibe/regotype/internal/ruleindex"
	"github.com/funvibe/regotype/internal/types"
	"github.com/funvibe/regotype/internal/value"
)

// bodyResult is one rule body's summary plus its contribution to the
// rule's aggregated head fact (§4.8).
type bodyResult struct {
	Summary          BodySummary
	HeadContribution types.TypeFact
}

func (a *TypeAnalyzer) onStack(ref ruleindex.RuleRef) bool {
	for _, s := range a.stack {
		if s == ref {
			return true
		}
	}
	return false
}

// ensureRuleAnalyzed is the worklist entry point of §4.1: re-entrant,
// lazily triggered, cycle-guarded. Already-on-stack references are marked
// NeedsRuntime instead of recursing.
func (a *TypeAnalyzer) ensureRuleAnalyzed(ref ruleindex.RuleRef) {
	a.markReachable(ref)
	ra := a.ruleAnalyses[ref.Module][ref.RuleIdx]

	if a.onStack(ref) {
		ra.ConstantState = CSNeedsRuntime
		return
	}
	rule := a.index.Rule(ref)
	if rule.Kind == ast.RuleFunction {
		if a.opts.DisableFunctionGenericPass {
			return
		}
		if ra.Analyzed && ra.activeSpecialization == nil {
			return
		}
	} else if ra.Analyzed {
		return
	}
	a.runRuleAnalysis(ref, rule, ra, nil)
}

// ensureRuleAnalyzedSpecialized is §4.4's call-site resolution entry point:
// a function rule is analyzed once per distinct argument-fact shape, with
// results cached on RuleAnalysis.Specializations. A cycle hit marks
// NeedsRuntime and returns nil rather than recursing.
func (a *TypeAnalyzer) ensureRuleAnalyzedSpecialized(ref ruleindex.RuleRef, argFacts []types.TypeFact) *Specialization {
	a.markReachable(ref)
	ra := a.ruleAnalyses[ref.Module][ref.RuleIdx]

	key := shapeKey(argFacts)
	if sp := ra.findSpecialization(key); sp != nil {
		return sp
	}
	if a.onStack(ref) {
		ra.ConstantState = CSNeedsRuntime
		return nil
	}

	rule := a.index.Rule(ref)
	sp := &Specialization{
		Ref:         types.NewSpecializationRef(ref.Module, ref.RuleIdx, key),
		ParamFacts:  argFacts,
		ExprOverlay: map[ast.ExprID]types.TypeFact{},
	}
	prevActive := ra.activeSpecialization
	ra.activeSpecialization = sp

	a.runRuleAnalysis(ref, rule, ra, argFacts)

	sp.HeadFact = ra.HeadFact
	ra.activeSpecialization = prevActive
	ra.Specializations = append(ra.Specializations, sp)
	return sp
}

func (a *TypeAnalyzer) runRuleAnalysis(ref ruleindex.RuleRef, rule *ast.Rule, ra *RuleAnalysis, paramFacts []types.TypeFact) {
	a.stack = append(a.stack, ref)
	ra.Analyzing = true

	var allSummaries []BodySummary
	var contributions []types.TypeFact
	for _, def := range rule.Defs {
		for _, r := range a.analyzeRuleDef(ref.Module, rule, def, paramFacts, ra) {
			allSummaries = append(allSummaries, r.Summary)
			contributions = append(contributions, r.HeadContribution)
		}
	}
	ra.BodySummaries = allSummaries
	if len(contributions) > 0 {
		head := types.AggregateHeadFacts(contributions)
		ra.HeadFact = &head
	}

	ra.Analyzing = false
	ra.Analyzed = true
	a.stack = a.stack[:len(a.stack)-1]

	a.finalizeConstantFolding(rule, ra)
}

func (a *TypeAnalyzer) analyzeRuleDef(mi int, rule *ast.Rule, def *ast.RuleDef, paramFacts []types.TypeFact, ra *RuleAnalysis) []bodyResult {
	var results []bodyResult
	for _, body := range def.Bodies {
		b := a.newBindings()

		usedParamFacts := make([]types.TypeFact, len(def.Params))
		for i, p := range def.Params {
			pf := types.AnyFact()
			if paramFacts != nil && i < len(paramFacts) {
				pf = paramFacts[i]
			}
			usedParamFacts[i] = pf
			if plan, ok := a.getExprBindingPlan(mi, p.Pattern); ok && plan.Kind == prep.BParameter {
				a.applyDestructuring(mi, plan.Destructuring, pf, b, ra, false)
			} else {
				b.Assign(p.Name, pf)
			}
		}
		a.recordParamFacts(ra, usedParamFacts)

		reachable := a.analyzeQueryBody(mi, body, b, ra)

		var valueFact types.TypeFact
		if def.ValueExpr != nil {
			valueFact = a.inferExpr(mi, *def.ValueExpr, b, ra)
		} else {
			valueFact = types.Literal(types.Boolean(), value.Bool(true))
		}
		isConstant := len(body.Statements) == 0 && valueFact.Constant.IsKnown()
		summary := BodySummary{Reachable: reachable, IsConstant: isConstant, Value: valueFact}

		var headContribution types.TypeFact
		switch rule.Kind {
		case ast.RulePartialSet:
			if def.Key != nil {
				keyFact := a.inferExpr(mi, *def.Key, b, ra)
				headContribution = types.Structural(types.Set(keyFact.Descriptor.AsStructural()), types.ProvRule, types.MarkDerived(keyFact.Origins)...)
			} else {
				headContribution = types.Structural(types.Set(types.Any()), types.ProvRule)
			}
		case ast.RulePartialObject:
			if def.Key != nil {
				a.inferExpr(mi, *def.Key, b, ra)
			}
			headContribution = types.Structural(types.Object(), types.ProvRule)
		default:
			headContribution = valueFact
		}

		results = append(results, bodyResult{Summary: summary, HeadContribution: headContribution})
	}
	return results
}

func (a *TypeAnalyzer) recordParamFacts(ra *RuleAnalysis, facts []types.TypeFact) {
	for i, f := range facts {
		if i >= len(ra.ParamFacts) {
			ra.ParamFacts = append(ra.ParamFacts, f)
			continue
		}
		ra.ParamFacts[i] = types.MergeRuleFacts([]types.TypeFact{ra.ParamFacts[i], f})
	}
}

// analyzeQueryBody iterates a query's statements in schedule order (source
// order absent a schedule), seeding statement-level hoisted loops and
// emitting a single UnreachableStatement warning at the first statement
// that follows a provably-false one.
func (a *TypeAnalyzer) analyzeQueryBody(mi int, q *ast.Query, b *bindings.Stack, ra *RuleAnalysis) bool {
	reachable := true
	warned := false
	for _, sid := range a.orderedStatementIDs(mi, q) {
		stmt := a.modules[mi].Statement(sid)
		if !reachable && !warned {
			pos := a.modules[mi].Expr(stmt.Expr).Pos()
			a.diags.Add(diag.UnreachableWarn(pos.File, pos.Line, pos.Col))
			warned = true
		}
		a.seedStatementLoops(mi, sid, b, ra)
		fact := a.inferExpr(mi, stmt.Expr, b, ra)
		if reachable && isAlwaysFalse(fact) {
			reachable = false
		}
	}
	return reachable
}

func (a *TypeAnalyzer) orderedStatementIDs(mi int, q *ast.Query) []ast.StmtID {
	if a.opts.Schedule != nil {
		if order, ok := a.opts.Schedule.Order(mi, q.ID); ok {
			out := make([]ast.StmtID, len(order))
			for i, idx := range order {
				out[i] = q.Statements[idx]
			}
			return out
		}
	}
	return q.Statements
}

func (a *TypeAnalyzer) finalizeConstantFolding(rule *ast.Rule, ra *RuleAnalysis) {
	if ra.ConstantState == CSNeedsRuntime {
		return
	}
	if a.opts.Engine == nil {
		return
	}
	if v, ok := a.opts.Engine.TryEvalRuleConstant(rule.Path); ok {
		ra.ConstantValue = v
		ra.ConstantState = CSDone
	}
}
