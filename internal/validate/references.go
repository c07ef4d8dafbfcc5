package validate

import (
	"fmt"

	"github.com/roach88/blueprint/internal/ir"
)

// WarningKind categorizes a non-fatal reference warning.
type WarningKind string

const (
	// WarnResponseSchema: an endpoint's responseSchema names no model.
	WarnResponseSchema WarningKind = "unresolved_response_schema"

	// WarnRelationshipModel: a relationship targets a model that does not exist.
	WarnRelationshipModel WarningKind = "unresolved_relationship_model"

	// WarnRelationshipField: a relationship targets a field missing from an existing model.
	WarnRelationshipField WarningKind = "unresolved_relationship_field"

	// WarnDuplicateField: a model declares the same field name twice.
	WarnDuplicateField WarningKind = "duplicate_field_name"
)

// ReferenceWarning flags a dangling cross-reference or duplicate field name.
// Warnings never block a commit or a projection.
type ReferenceWarning struct {
	Kind    WarningKind `json:"kind"`
	Path    string      `json:"path"`
	Target  string      `json:"target"`
	Message string      `json:"message"`
}

func (w ReferenceWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Path, w.Message)
}

// References scans doc for unresolved responseSchema and relationship
// targets, and for duplicate field names within a model.
// Warnings are ordered by endpoint index, then by schema order.
func References(doc ir.Document) []ReferenceWarning {
	var warnings []ReferenceWarning

	for i, e := range doc.Endpoints {
		if e.ResponseSchema != "" && !doc.Schema.Has(e.ResponseSchema) {
			warnings = append(warnings, ReferenceWarning{
				Kind:    WarnResponseSchema,
				Path:    fmt.Sprintf("endpoints[%d].responseSchema", i),
				Target:  e.ResponseSchema,
				Message: fmt.Sprintf("response schema %q does not name a model", e.ResponseSchema),
			})
		}
	}

	for name, m := range doc.Schema.All() {
		seen := make(map[string]bool, len(m.Fields))
		for j, f := range m.Fields {
			if seen[f.Name] {
				warnings = append(warnings, ReferenceWarning{
					Kind:    WarnDuplicateField,
					Path:    fmt.Sprintf("schema.%s.fields[%d].name", name, j),
					Target:  f.Name,
					Message: fmt.Sprintf("field %q is declared more than once", f.Name),
				})
			}
			seen[f.Name] = true
		}

		for j, r := range m.Relationships {
			target, ok := doc.Schema.Get(r.Model)
			if !ok {
				warnings = append(warnings, ReferenceWarning{
					Kind:    WarnRelationshipModel,
					Path:    fmt.Sprintf("schema.%s.relationships[%d].model", name, j),
					Target:  r.Model,
					Message: fmt.Sprintf("related model %q does not exist", r.Model),
				})
				continue
			}
			if !hasField(target, r.Field) {
				warnings = append(warnings, ReferenceWarning{
					Kind:    WarnRelationshipField,
					Path:    fmt.Sprintf("schema.%s.relationships[%d].field", name, j),
					Target:  r.Model + "." + r.Field,
					Message: fmt.Sprintf("model %q has no field %q", r.Model, r.Field),
				})
			}
		}
	}

	return warnings
}

func hasField(m ir.Model, name string) bool {
	for _, f := range m.Fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
