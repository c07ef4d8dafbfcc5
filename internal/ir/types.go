package ir

// Method is the HTTP method of an endpoint.
type Method string

const (
	MethodGet    Method = "GET"
	MethodPost   Method = "POST"
	MethodPut    Method = "PUT"
	MethodDelete Method = "DELETE"
	MethodPatch  Method = "PATCH"
)

// Methods lists the allowed endpoint methods in display order.
var Methods = []Method{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch}

// Valid reports whether m is one of the enumerated methods.
func (m Method) Valid() bool {
	for _, candidate := range Methods {
		if m == candidate {
			return true
		}
	}
	return false
}

// Primitive type tags for parameters and fields.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer" // recognised by projections, not offered by the editor
	TypeBoolean = "boolean"
	TypeArray   = "array"
	TypeObject  = "object"
	TypeDate    = "date"
)

// PrimitiveTypes lists the type tags offered for parameters and fields.
var PrimitiveTypes = []string{TypeString, TypeNumber, TypeBoolean, TypeArray, TypeObject, TypeDate}

// RelationshipType is the cardinality of a relationship between models.
type RelationshipType string

const (
	OneToOne   RelationshipType = "one-to-one"
	OneToMany  RelationshipType = "one-to-many"
	ManyToOne  RelationshipType = "many-to-one"
	ManyToMany RelationshipType = "many-to-many"
)

// RelationshipTypes lists the allowed relationship cardinalities.
var RelationshipTypes = []RelationshipType{OneToOne, OneToMany, ManyToOne, ManyToMany}

// Default values used when new objects are added to a document.
const (
	DefaultEndpointPath     = "/api/new-endpoint"
	DefaultModelName        = "NewModel"
	DefaultModelDescription = "Description of the model"
	DefaultSecurityScheme   = "bearer"
)

// Document is a complete API design: ordered endpoints plus named models.
// It is the unit of history snapshots and projections.
type Document struct {
	Endpoints []Endpoint `json:"endpoints" yaml:"endpoints"`
	Schema    Schema     `json:"schema" yaml:"schema"`
}

// Endpoint represents one API operation.
type Endpoint struct {
	Method         Method      `json:"method" yaml:"method" validate:"oneof=GET POST PUT DELETE PATCH"`
	Path           string      `json:"path" yaml:"path"`
	Description    string      `json:"description" yaml:"description"`
	Parameters     []Parameter `json:"parameters" yaml:"parameters" validate:"dive"`
	ResponseSchema string      `json:"responseSchema,omitempty" yaml:"responseSchema,omitempty"` // weak reference to a Model name
	Tags           []string    `json:"tags" yaml:"tags"`
	Security       []string    `json:"security" yaml:"security"`
}

// Parameter is a named input of an endpoint.
// Validation constraints are not tied to Type; a pattern on a number is accepted.
type Parameter struct {
	Name        string       `json:"name" yaml:"name"`
	Type        string       `json:"type" yaml:"type" validate:"required"`
	Description string       `json:"description" yaml:"description"`
	Required    bool         `json:"required" yaml:"required"`
	Example     string       `json:"example,omitempty" yaml:"example,omitempty"`
	Validation  *Constraints `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// Constraints holds optional value constraints for a parameter or field.
type Constraints struct {
	Min     *int64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max     *int64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c.Min == nil && c.Max == nil && c.Pattern == ""
}

// Model is a named data entity. The name is its key in Schema.
type Model struct {
	Description   string         `json:"description" yaml:"description" validate:"required"`
	Fields        []Field        `json:"fields" yaml:"fields" validate:"dive"`
	Relationships []Relationship `json:"relationships" yaml:"relationships" validate:"dive"`
}

// Field is a typed attribute of a Model. Duplicate names within a model are allowed.
type Field struct {
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Type        string      `json:"type" yaml:"type" validate:"required"`
	Description string      `json:"description" yaml:"description"`
	Required    bool        `json:"required" yaml:"required"`
	Example     string      `json:"example" yaml:"example"`
	Validation  Constraints `json:"validation" yaml:"validation"`
}

// Relationship links a Model to a field of another Model.
// Model and Field are not checked against the schema.
type Relationship struct {
	Type  RelationshipType `json:"type" yaml:"type" validate:"oneof=one-to-one one-to-many many-to-one many-to-many"`
	Model string           `json:"model" yaml:"model" validate:"required"`
	Field string           `json:"field" yaml:"field" validate:"required"`
}

// NewDocument returns an empty document with non-nil collections.
func NewDocument() Document {
	return Document{Endpoints: []Endpoint{}}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Schema: d.Schema.Clone()}
	if d.Endpoints != nil {
		out.Endpoints = make([]Endpoint, len(d.Endpoints))
		for i, e := range d.Endpoints {
			out.Endpoints[i] = e.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the endpoint.
func (e Endpoint) Clone() Endpoint {
	out := e
	if e.Parameters != nil {
		out.Parameters = make([]Parameter, len(e.Parameters))
		for i, p := range e.Parameters {
			out.Parameters[i] = p.Clone()
		}
	}
	out.Tags = cloneStrings(e.Tags)
	out.Security = cloneStrings(e.Security)
	return out
}

// Clone returns a deep copy of the parameter.
func (p Parameter) Clone() Parameter {
	out := p
	if p.Validation != nil {
		c := p.Validation.Clone()
		out.Validation = &c
	}
	return out
}

// Clone returns a deep copy of the constraints.
func (c Constraints) Clone() Constraints {
	out := Constraints{Pattern: c.Pattern}
	if c.Min != nil {
		v := *c.Min
		out.Min = &v
	}
	if c.Max != nil {
		v := *c.Max
		out.Max = &v
	}
	return out
}

// Clone returns a deep copy of the model.
func (m Model) Clone() Model {
	out := Model{Description: m.Description}
	if m.Fields != nil {
		out.Fields = make([]Field, len(m.Fields))
		for i, f := range m.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	if m.Relationships != nil {
		out.Relationships = make([]Relationship, len(m.Relationships))
		copy(out.Relationships, m.Relationships)
	}
	return out
}

// Clone returns a deep copy of the field.
func (f Field) Clone() Field {
	out := f
	out.Validation = f.Validation.Clone()
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// Int64 returns a pointer to v, for building Constraints literals.
func Int64(v int64) *int64 {
	return &v
}
