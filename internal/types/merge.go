package types

import "github.com/funvibe/regotype/internal/value"

// MergeRuleFacts implements §4.3's merge_rule_facts: union descriptors by
// structural join, merge constants (keep Known(v) only if every input
// constant equals v), union origins, and keep the strongest provenance.
func MergeRuleFacts(facts []TypeFact) TypeFact {
	if len(facts) == 0 {
		return AnyFact()
	}
	acc := facts[0]
	for _, f := range facts[1:] {
		acc = mergeTwo(acc, f)
	}
	return acc
}

func mergeTwo(a, b TypeFact) TypeFact {
	desc := JoinDescriptors(a.Descriptor, b.Descriptor)
	constant := mergeConstants(a.Constant, b.Constant)
	origins := UnionOrigins(a.Origins, b.Origins)
	prov := a.Provenance
	if provenanceStrength(b.Provenance) > provenanceStrength(prov) {
		prov = b.Provenance
	}
	hits := append(append([]SpecializationRef{}, a.SpecializationHits...), b.SpecializationHits...)
	return TypeFact{Descriptor: desc, Constant: constant, Provenance: prov, Origins: origins, SpecializationHits: hits}
}

func mergeConstants(a, b ConstantValue) ConstantValue {
	if a.IsKnown() && b.IsKnown() && value.Equal(a.Value, b.Value) {
		return a
	}
	return UnknownConstant()
}

// RecordRuleHeadFact implements §4.3's record_rule_head_fact: the
// specialized merge used when multiple rule definitions contribute to the
// same head. It preserves enumerations — if both the existing and incoming
// facts carry disagreeing Known constants, the result becomes (or extends)
// an Enum of both values rather than widening all the way to a plain
// structural join. Otherwise it falls back to the ordinary structural join.
// Provenance is upgraded from Unknown to Rule on adoption, since the head
// fact is now attributed to "this rule" rather than whatever produced the
// first definition's value.
func RecordRuleHeadFact(existing *TypeFact, incoming TypeFact) TypeFact {
	if existing == nil {
		return upgradeProvenance(incoming)
	}

	origins := UnionOrigins(existing.Origins, incoming.Origins)
	prov := existing.Provenance
	if provenanceStrength(incoming.Provenance) > provenanceStrength(prov) {
		prov = incoming.Provenance
	}
	if prov == ProvUnknown {
		prov = ProvRule
	}

	if existing.Constant.IsKnown() && incoming.Constant.IsKnown() &&
		!value.Equal(existing.Constant.Value, incoming.Constant.Value) {
		desc := enumUnion(existing.Descriptor, incoming.Descriptor, existing.Constant.Value, incoming.Constant.Value)
		return TypeFact{
			Descriptor: desc,
			Constant:   UnknownConstant(),
			Provenance: prov,
			Origins:    origins,
		}
	}

	desc := JoinDescriptors(existing.Descriptor, incoming.Descriptor)
	constant := mergeConstants(existing.Constant, incoming.Constant)
	return TypeFact{Descriptor: desc, Constant: constant, Provenance: prov, Origins: origins}
}

func upgradeProvenance(f TypeFact) TypeFact {
	if f.Provenance == ProvUnknown {
		f.Provenance = ProvRule
	}
	return f
}

// enumUnion builds (or extends) an Enum descriptor out of two disagreeing
// constant values, widening through existing Enum descriptors when present
// rather than discarding them.
func enumUnion(a, b TypeDescriptor, av, bv value.Value) TypeDescriptor {
	var values []value.Value
	if a.Kind == DescriptorStructural && a.Structural.Kind == KEnum {
		values = append(values, a.Structural.Values...)
	} else {
		values = append(values, av)
	}
	if b.Kind == DescriptorStructural && b.Structural.Kind == KEnum {
		values = append(values, b.Structural.Values...)
	} else {
		values = append(values, bv)
	}
	return FromStructural(Enum(values...))
}

// InformativeScore ranks a fact's descriptor for head aggregation: a fact
// that is entirely Any/Unknown is the least informative. §9's open question
// on aggregation precedence: we prefer any fact that is not entirely
// Any/Unknown, falling back to a plain merge on ties, and we always
// preserve Enum widening per §4.3.
func InformativeScore(f TypeFact) int {
	st := f.Descriptor.AsStructural()
	if st.Kind == KAny || st.Kind == KUnknown {
		return 0
	}
	return 1
}

// AggregateHeadFacts merges a rule's per-definition head facts the way
// §4.8's result assembly requires: preferring informative facts over
// Any/Unknown-heavy ones, via RecordRuleHeadFact in definition order so
// Enum widening (disagreeing constants) still applies.
func AggregateHeadFacts(facts []TypeFact) TypeFact {
	if len(facts) == 0 {
		return AnyFact()
	}
	informative := make([]TypeFact, 0, len(facts))
	for _, f := range facts {
		if InformativeScore(f) == 1 {
			informative = append(informative, f)
		}
	}
	pool := informative
	if len(pool) == 0 {
		pool = facts
	}
	var acc *TypeFact
	for i := range pool {
		merged := RecordRuleHeadFact(acc, pool[i])
		acc = &merged
	}
	return *acc
}
