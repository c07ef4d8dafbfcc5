package mutate

import (
	"fmt"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

// ModelPatch holds the model attributes to overwrite. Nil fields are left as is.
type ModelPatch struct {
	Description   *string
	Fields        *[]ir.Field
	Relationships *[]ir.Relationship
}

func (p ModelPatch) apply(m ir.Model) ir.Model {
	out := m.Clone()
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Fields != nil {
		out.Fields = ir.Model{Fields: *p.Fields}.Clone().Fields
	}
	if p.Relationships != nil {
		out.Relationships = append([]ir.Relationship{}, *p.Relationships...)
	}
	return out
}

// ConstraintsPatch holds the constraint attributes to overwrite. Nil
// attributes are left as is.
type ConstraintsPatch struct {
	Min     *int64
	Max     *int64
	Pattern *string
}

func (p ConstraintsPatch) empty() bool {
	return p.Min == nil && p.Max == nil && p.Pattern == nil
}

func (p ConstraintsPatch) apply(c ir.Constraints) ir.Constraints {
	out := c.Clone()
	if p.Min != nil {
		v := *p.Min
		out.Min = &v
	}
	if p.Max != nil {
		v := *p.Max
		out.Max = &v
	}
	if p.Pattern != nil {
		out.Pattern = *p.Pattern
	}
	return out
}

// FieldPatch holds the field attributes to overwrite. Nil fields are left as is.
// A non-nil Validation replaces the constraints; Constraints is then merged
// into them one attribute at a time.
type FieldPatch struct {
	Name        *string
	Type        *string
	Description *string
	Required    *bool
	Example     *string
	Validation  *ir.Constraints
	Constraints ConstraintsPatch
}

func (p FieldPatch) apply(f ir.Field) ir.Field {
	out := f.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Required != nil {
		out.Required = *p.Required
	}
	if p.Example != nil {
		out.Example = *p.Example
	}
	if p.Validation != nil {
		out.Validation = p.Validation.Clone()
	}
	out.Validation = p.Constraints.apply(out.Validation)
	return out
}

// RelationshipPatch holds the relationship attributes to overwrite. Nil fields are left as is.
type RelationshipPatch struct {
	Type  *ir.RelationshipType
	Model *string
	Field *string
}

func (p RelationshipPatch) apply(r ir.Relationship) ir.Relationship {
	if p.Type != nil {
		r.Type = *p.Type
	}
	if p.Model != nil {
		r.Model = *p.Model
	}
	if p.Field != nil {
		r.Field = *p.Field
	}
	return r
}

// NewModel returns the model inserted by AddModel.
func NewModel() ir.Model {
	return ir.Model{
		Description:   ir.DefaultModelDescription,
		Fields:        []ir.Field{},
		Relationships: []ir.Relationship{},
	}
}

// AddModel inserts the default model under ir.DefaultModelName.
// A model already stored under that name is overwritten in place.
func AddModel(doc ir.Document) ir.Document {
	out := doc.Clone()
	out.Schema = out.Schema.With(ir.DefaultModelName, NewModel())
	return out
}

// RenameModel moves a model to a new key. The renamed model is placed last
// in schema order; renaming onto an existing name replaces that model.
// References held by endpoints and relationships are not rewritten.
func RenameModel(doc ir.Document, from, to string) (ir.Document, error) {
	m, err := lookupModel(doc, from)
	if err != nil {
		return doc, err
	}
	if err := validate.ModelName(to); err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.Schema = out.Schema.Without(from).Without(to).With(to, m)
	return out, nil
}

// UpdateModel merges patch into the named model.
func UpdateModel(doc ir.Document, name string, patch ModelPatch) (ir.Document, error) {
	m, err := lookupModel(doc, name)
	if err != nil {
		return doc, err
	}
	return replaceModel(doc, name, patch.apply(m))
}

// RemoveModel deletes the named model.
func RemoveModel(doc ir.Document, name string) (ir.Document, error) {
	if _, err := lookupModel(doc, name); err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.Schema = out.Schema.Without(name)
	return out, nil
}

// AddField appends f to the named model.
func AddField(doc ir.Document, model string, f ir.Field) (ir.Document, error) {
	return AddSuggestedFields(doc, model, []ir.Field{f})
}

// AddSuggestedFields appends fields to the named model in order.
// Either every field is added or none is.
func AddSuggestedFields(doc ir.Document, model string, fields []ir.Field) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	for _, f := range fields {
		valid, err := validate.Field(f)
		if err != nil {
			return doc, err
		}
		m.Fields = append(m.Fields, valid)
	}
	return replaceModel(doc, model, m)
}

// UpdateField merges patch into one field of the named model.
func UpdateField(doc ir.Document, model string, index int, patch FieldPatch) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	if err := checkIndex(fmt.Sprintf("schema.%s.fields", model), index, len(m.Fields)); err != nil {
		return doc, err
	}
	valid, err := validate.Field(patch.apply(m.Fields[index]))
	if err != nil {
		return doc, err
	}
	m.Fields[index] = valid
	return replaceModel(doc, model, m)
}

// RemoveField deletes one field of the named model.
func RemoveField(doc ir.Document, model string, index int) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	if err := checkIndex(fmt.Sprintf("schema.%s.fields", model), index, len(m.Fields)); err != nil {
		return doc, err
	}
	m.Fields = append(m.Fields[:index], m.Fields[index+1:]...)
	return replaceModel(doc, model, m)
}

// AddRelationship appends r to the named model. The target of r is not
// resolved; dangling targets surface as validate.References warnings.
func AddRelationship(doc ir.Document, model string, r ir.Relationship) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	valid, err := validate.Relationship(r)
	if err != nil {
		return doc, err
	}
	m.Relationships = append(m.Relationships, valid)
	return replaceModel(doc, model, m)
}

// UpdateRelationship merges patch into one relationship of the named model.
func UpdateRelationship(doc ir.Document, model string, index int, patch RelationshipPatch) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	if err := checkIndex(fmt.Sprintf("schema.%s.relationships", model), index, len(m.Relationships)); err != nil {
		return doc, err
	}
	valid, err := validate.Relationship(patch.apply(m.Relationships[index]))
	if err != nil {
		return doc, err
	}
	m.Relationships[index] = valid
	return replaceModel(doc, model, m)
}

// RemoveRelationship deletes one relationship of the named model.
func RemoveRelationship(doc ir.Document, model string, index int) (ir.Document, error) {
	m, err := lookupModel(doc, model)
	if err != nil {
		return doc, err
	}
	if err := checkIndex(fmt.Sprintf("schema.%s.relationships", model), index, len(m.Relationships)); err != nil {
		return doc, err
	}
	m.Relationships = append(m.Relationships[:index], m.Relationships[index+1:]...)
	return replaceModel(doc, model, m)
}

func lookupModel(doc ir.Document, name string) (ir.Model, error) {
	m, ok := doc.Schema.Get(name)
	if !ok {
		return ir.Model{}, modelNotFound(name)
	}
	return m, nil
}

// replaceModel validates m and commits it under name, keeping its position.
func replaceModel(doc ir.Document, name string, m ir.Model) (ir.Document, error) {
	valid, err := validate.Model(m)
	if err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.Schema = out.Schema.With(name, valid)
	return out, nil
}
