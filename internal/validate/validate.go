// Package validate checks endpoints, parameters, models, fields and
// relationships before a mutation commits them.
//
// Shape rules live as `validate` struct tags on the ir types and are
// evaluated with go-playground/validator. Every failure is reported, not
// just the first; callers must not apply an object that fails.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/blueprint/internal/ir"
)

var shapes = newValidator()

// newValidator builds a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Endpoint validates an endpoint and its parameters.
// Returns the endpoint with nil collections replaced by empty ones.
func Endpoint(e ir.Endpoint) (ir.Endpoint, error) {
	if ve := check("endpoint", e); ve != nil {
		return ir.Endpoint{}, ve
	}
	out := e.Clone()
	if out.Parameters == nil {
		out.Parameters = []ir.Parameter{}
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	if out.Security == nil {
		out.Security = []string{}
	}
	return out, nil
}

// Parameter validates a single endpoint parameter.
func Parameter(p ir.Parameter) (ir.Parameter, error) {
	if ve := check("parameter", p); ve != nil {
		return ir.Parameter{}, ve
	}
	return p.Clone(), nil
}

// Model validates a model together with its fields and relationships.
// Returns the model with nil fields/relationships replaced by empty ones.
func Model(m ir.Model) (ir.Model, error) {
	if ve := check("model", m); ve != nil {
		return ir.Model{}, ve
	}
	out := m.Clone()
	if out.Fields == nil {
		out.Fields = []ir.Field{}
	}
	if out.Relationships == nil {
		out.Relationships = []ir.Relationship{}
	}
	return out, nil
}

// Field validates a model field.
func Field(f ir.Field) (ir.Field, error) {
	if ve := check("field", f); ve != nil {
		return ir.Field{}, ve
	}
	return f.Clone(), nil
}

// Relationship validates a model relationship.
// The target model and field are not resolved here; see References.
func Relationship(r ir.Relationship) (ir.Relationship, error) {
	if ve := check("relationship", r); ve != nil {
		return ir.Relationship{}, ve
	}
	return r, nil
}

// ModelName validates a schema key.
func ModelName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{
			Object: "model",
			Violations: []Violation{{
				Field:   "name",
				Message: "model name is required and must be non-empty",
				Code:    ErrEmptyName,
			}},
		}
	}
	return nil
}

// Document validates every endpoint and model in doc.
// Violations are reported with document paths such as
// "endpoints[2].method" and "schema.User.fields[0].name".
func Document(doc ir.Document) (ir.Document, error) {
	all := &ValidationError{Object: "document"}
	out := ir.Document{Endpoints: make([]ir.Endpoint, 0, len(doc.Endpoints))}

	for i, e := range doc.Endpoints {
		valid, err := Endpoint(e)
		if err != nil {
			all.Violations = append(all.Violations, nested(err, fmt.Sprintf("endpoints[%d]", i))...)
			continue
		}
		out.Endpoints = append(out.Endpoints, valid)
	}

	for name, m := range doc.Schema.All() {
		if err := ModelName(name); err != nil {
			all.Violations = append(all.Violations, nested(err, "schema")...)
			continue
		}
		valid, err := Model(m)
		if err != nil {
			all.Violations = append(all.Violations, nested(err, "schema."+name)...)
			continue
		}
		out.Schema = out.Schema.With(name, valid)
	}

	if len(all.Violations) > 0 {
		return ir.Document{}, all
	}
	return out, nil
}

func nested(err error, prefix string) []Violation {
	ve, ok := AsValidationError(err)
	if !ok {
		return []Violation{{Field: prefix, Message: err.Error(), Code: ErrInvalid}}
	}
	return ve.Prefix(prefix).Violations
}

// check runs the struct-tag rules and converts failures to violations.
func check(object string, v any) *ValidationError {
	err := shapes.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{
			Object:     object,
			Violations: []Violation{{Message: err.Error(), Code: ErrInvalid}},
		}
	}

	ve := &ValidationError{Object: object, Violations: make([]Violation, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		ve.Violations = append(ve.Violations, toViolation(fe))
	}
	return ve
}

func toViolation(fe validator.FieldError) Violation {
	path := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return Violation{
			Field:   path,
			Message: "is required and must be non-empty",
			Code:    ErrRequired,
		}
	case "oneof":
		return Violation{
			Field:   path,
			Message: fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fmt.Sprint(fe.Value())),
			Code:    ErrNotInEnum,
		}
	default:
		return Violation{
			Field:   path,
			Message: fmt.Sprintf("failed %q constraint", fe.Tag()),
			Code:    ErrInvalid,
		}
	}
}

// fieldPath strips the leading struct name from a validator namespace:
// "Endpoint.parameters[0].type" becomes "parameters[0].type".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
