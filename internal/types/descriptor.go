package types

// SchemaRef is the narrow handle the types package holds onto an externally
// supplied schema (spec §6.2); the schema package's *Schema implements
// this interface. Kept as an interface here (rather than
// importing internal/schema) to avoid a dependency cycle: internal/schema
// itself produces StructuralType projections.
type SchemaRef interface {
	// StructuralProjection returns the best structural approximation of
	// this schema, per §6.2's StructuralType::from_schema.
	StructuralProjection() StructuralType
	// String names the schema for diagnostics (path or $id, typically).
	String() string
}

// DescriptorKind distinguishes the two TypeDescriptor carriers of §3.2.
type DescriptorKind int

const (
	DescriptorStructural DescriptorKind = iota
	DescriptorSchema
)

// TypeDescriptor is the lattice element attached to a fact: either a
// Schema reference (opaque except through the schema query API) or a
// StructuralType.
type TypeDescriptor struct {
	Kind       DescriptorKind
	Structural StructuralType
	Schema     SchemaRef
}

func FromStructural(t StructuralType) TypeDescriptor {
	return TypeDescriptor{Kind: DescriptorStructural, Structural: t}
}

func FromSchema(s SchemaRef) TypeDescriptor {
	return TypeDescriptor{Kind: DescriptorSchema, Schema: s}
}

func AnyDescriptor() TypeDescriptor { return FromStructural(Any()) }

// AsStructural projects a descriptor to its best StructuralType, resolving
// Schema descriptors through their structural projection. Most of the
// inferencer works in structural space; this is the one escape hatch.
func (d TypeDescriptor) AsStructural() StructuralType {
	if d.Kind == DescriptorSchema {
		if d.Schema == nil {
			return Any()
		}
		return d.Schema.StructuralProjection()
	}
	return d.Structural
}

func (d TypeDescriptor) String() string {
	if d.Kind == DescriptorSchema {
		if d.Schema == nil {
			return "schema(?)"
		}
		return "schema(" + d.Schema.String() + ")"
	}
	return d.Structural.String()
}

// JoinDescriptors joins two descriptors by projecting schemas to structural
// space first; the lattice only ever needs to reason structurally once two
// facts are merged (Schema descriptors only survive unmodified on a single,
// unmerged fact, e.g. `input` itself).
func JoinDescriptors(a, b TypeDescriptor) TypeDescriptor {
	if a.Kind == DescriptorSchema && b.Kind == DescriptorSchema {
		// Two schema refs: if they're the same schema, keep it; otherwise
		// fall back to the structural join (no schema-level union concept).
		if a.Schema == b.Schema {
			return a
		}
	}
	return FromStructural(Join(a.AsStructural(), b.AsStructural()))
}
