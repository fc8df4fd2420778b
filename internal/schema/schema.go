// Package schema implements the external Schema query API the analyzer
// consumes (spec §6.2). The analyzer treats Schema as opaque except through
// this API; this package also supplies a concrete JSON-Schema-like
// implementation so tests (and callers without a richer schema subsystem)
// have something to construct.
package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/regotype/internal/types"
)

// Kind mirrors the handful of JSON-Schema "type" values the analyzer needs
// to distinguish (§6.2's as_type()).
type Kind int

const (
	KindAny Kind = iota
	KindNull
	KindBoolean
	KindInteger
	KindNumber
	KindString
	KindArray
	KindObject
)

// Schema is the concrete, immutable JSON-Schema-like description §3.2
// refers to. Construction happens once, before analysis; the analyzer never
// mutates it (§3.11).
type Schema struct {
	kind       Kind
	properties map[string]*Schema
	items      *Schema
	additional *Schema // nil means "no additional properties schema" (-> Any)
	enum       []interface{}
	name       string
}

func New(kind Kind) *Schema { return &Schema{kind: kind, properties: map[string]*Schema{}} }

func (s *Schema) WithName(name string) *Schema { s.name = name; return s }

func (s *Schema) WithProperty(name string, sub *Schema) *Schema {
	if s.properties == nil {
		s.properties = map[string]*Schema{}
	}
	s.properties[name] = sub
	return s
}

func (s *Schema) WithItems(items *Schema) *Schema { s.items = items; return s }

func (s *Schema) WithAdditional(additional *Schema) *Schema { s.additional = additional; return s }

func (s *Schema) WithEnum(values ...interface{}) *Schema { s.enum = values; return s }

// AsType returns the schema's top-level kind (§6.2's as_type()).
func (s *Schema) AsType() Kind {
	if s == nil {
		return KindAny
	}
	return s.kind
}

// ErrNoSuchProperty is returned by GetProperty when the schema has no
// static knowledge of the requested field.
var ErrNoSuchProperty = fmt.Errorf("schema: no such property")

// GetProperty returns the sub-schema for a named field, or an error if the
// schema has no static knowledge of it (§6.2's get_property).
func (s *Schema) GetProperty(field string) (*Schema, error) {
	if s == nil || s.kind != KindObject {
		return nil, ErrNoSuchProperty
	}
	if sub, ok := s.properties[field]; ok {
		return sub, nil
	}
	if s.additional != nil {
		return s.additional, nil
	}
	return nil, ErrNoSuchProperty
}

// ArrayItems returns the schema for array elements, if the array has a
// uniform item schema.
func (s *Schema) ArrayItems() (*Schema, bool) {
	if s == nil || s.kind != KindArray || s.items == nil {
		return nil, false
	}
	return s.items, true
}

// AdditionalProperties returns the schema that governs properties not
// explicitly listed, if any.
func (s *Schema) AdditionalProperties() (*Schema, bool) {
	if s == nil || s.additional == nil {
		return nil, false
	}
	return s.additional, true
}

// AllowsValue implements §6.2's schema_allows_value for enum/const checks.
func (s *Schema) AllowsValue(v interface{}) bool {
	if s == nil || len(s.enum) == 0 {
		return true
	}
	for _, e := range s.enum {
		if fmt.Sprint(e) == fmt.Sprint(v) {
			return true
		}
	}
	return false
}

func (s *Schema) String() string {
	if s == nil {
		return "any"
	}
	if s.name != "" {
		return s.name
	}
	return fmt.Sprintf("schema<%d>", s.kind)
}

// StructuralProjection implements §6.2's StructuralType::from_schema: the
// best structural approximation of this schema, consumed by
// types.SchemaRef.
func (s *Schema) StructuralProjection() types.StructuralType {
	if s == nil {
		return types.Any()
	}
	switch s.kind {
	case KindNull:
		return types.Null()
	case KindBoolean:
		return types.Boolean()
	case KindInteger:
		return types.Integer()
	case KindNumber:
		return types.Number()
	case KindString:
		return types.Str()
	case KindArray:
		if s.items != nil {
			return types.Array(s.items.StructuralProjection())
		}
		return types.Array(types.Any())
	case KindObject:
		fields := make([]types.ObjectField, 0, len(s.properties))
		for name, sub := range s.properties {
			fields = append(fields, types.ObjectField{Name: name, Type: sub.StructuralProjection()})
		}
		return types.Object(fields...)
	default:
		return types.Any()
	}
}

var _ types.SchemaRef = (*Schema)(nil)

// yamlNode mirrors a small subset of JSON-Schema's vocabulary so fixtures
// can be authored in YAML, matching the teacher's reliance on YAML for
// config-shaped data rather than hand-built literal trees in every test.
type yamlNode struct {
	Type       string               `yaml:"type"`
	Properties map[string]yamlNode  `yaml:"properties"`
	Items      *yamlNode            `yaml:"items"`
	Additional *yamlNode            `yaml:"additionalProperties"`
	Enum       []interface{}        `yaml:"enum"`
}

// LoadYAML parses a YAML document in the yamlNode shape into a Schema tree.
func LoadYAML(doc []byte) (*Schema, error) {
	var n yamlNode
	if err := yaml.Unmarshal(doc, &n); err != nil {
		return nil, fmt.Errorf("schema: parse yaml: %w", err)
	}
	return buildFromYAML(n), nil
}

func buildFromYAML(n yamlNode) *Schema {
	var kind Kind
	switch n.Type {
	case "null":
		kind = KindNull
	case "boolean":
		kind = KindBoolean
	case "integer":
		kind = KindInteger
	case "number":
		kind = KindNumber
	case "string":
		kind = KindString
	case "array":
		kind = KindArray
	case "object":
		kind = KindObject
	default:
		kind = KindAny
	}
	s := New(kind)
	s.enum = n.Enum
	for name, sub := range n.Properties {
		s.WithProperty(name, buildFromYAML(sub))
	}
	if n.Items != nil {
		s.WithItems(buildFromYAML(*n.Items))
	}
	if n.Additional != nil {
		s.WithAdditional(buildFromYAML(*n.Additional))
	}
	return s
}
