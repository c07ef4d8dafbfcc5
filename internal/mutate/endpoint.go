package mutate

import (
	"fmt"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/validate"
)

// EndpointPatch holds the endpoint attributes to overwrite. Nil fields are left as is.
type EndpointPatch struct {
	Method         *ir.Method
	Path           *string
	Description    *string
	Parameters     *[]ir.Parameter
	ResponseSchema *string
	Tags           *[]string
	Security       *[]string
}

func (p EndpointPatch) apply(e ir.Endpoint) ir.Endpoint {
	out := e.Clone()
	if p.Method != nil {
		out.Method = *p.Method
	}
	if p.Path != nil {
		out.Path = *p.Path
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Parameters != nil {
		out.Parameters = ir.Endpoint{Parameters: *p.Parameters}.Clone().Parameters
	}
	if p.ResponseSchema != nil {
		out.ResponseSchema = *p.ResponseSchema
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, *p.Tags...)
	}
	if p.Security != nil {
		out.Security = append([]string{}, *p.Security...)
	}
	return out
}

// ParameterPatch holds the parameter attributes to overwrite. Nil fields are left as is.
// A non-nil Validation replaces the constraints; ClearValidation removes them.
// Constraints is merged last, one attribute at a time.
type ParameterPatch struct {
	Name            *string
	Type            *string
	Description     *string
	Required        *bool
	Example         *string
	Validation      *ir.Constraints
	ClearValidation bool
	Constraints     ConstraintsPatch
}

func (p ParameterPatch) apply(param ir.Parameter) ir.Parameter {
	out := param.Clone()
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
	switch {
	case p.ClearValidation:
		out.Validation = nil
	case p.Validation != nil:
		c := p.Validation.Clone()
		out.Validation = &c
	}
	if !p.Constraints.empty() {
		var base ir.Constraints
		if out.Validation != nil {
			base = *out.Validation
		}
		c := p.Constraints.apply(base)
		out.Validation = &c
	}
	return out
}

// NewEndpoint returns the endpoint appended by AddEndpoint.
func NewEndpoint() ir.Endpoint {
	return ir.Endpoint{
		Method:     ir.MethodGet,
		Path:       ir.DefaultEndpointPath,
		Parameters: []ir.Parameter{},
		Tags:       []string{},
		Security:   []string{ir.DefaultSecurityScheme},
	}
}

// AddEndpoint appends a default endpoint. It always succeeds.
func AddEndpoint(doc ir.Document) ir.Document {
	out := doc.Clone()
	out.Endpoints = append(out.Endpoints, NewEndpoint())
	return out
}

// UpdateEndpoint merges patch into the endpoint at index and replaces it
// if the merged endpoint validates.
func UpdateEndpoint(doc ir.Document, index int, patch EndpointPatch) (ir.Document, error) {
	if err := checkIndex("endpoints", index, len(doc.Endpoints)); err != nil {
		return doc, err
	}
	return replaceEndpoint(doc, index, patch.apply(doc.Endpoints[index]))
}

// RemoveEndpoint deletes the endpoint at index. Later endpoints shift down by one.
func RemoveEndpoint(doc ir.Document, index int) (ir.Document, error) {
	if err := checkIndex("endpoints", index, len(doc.Endpoints)); err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.Endpoints = append(out.Endpoints[:index], out.Endpoints[index+1:]...)
	return out, nil
}

// AddParameter appends p to the parameters of the endpoint at endpoint.
func AddParameter(doc ir.Document, endpoint int, p ir.Parameter) (ir.Document, error) {
	return AddSuggestedParameters(doc, endpoint, []ir.Parameter{p})
}

// AddSuggestedParameters appends params to one endpoint in order.
// Either every parameter is added or none is.
func AddSuggestedParameters(doc ir.Document, endpoint int, params []ir.Parameter) (ir.Document, error) {
	if err := checkIndex("endpoints", endpoint, len(doc.Endpoints)); err != nil {
		return doc, err
	}
	e := doc.Endpoints[endpoint].Clone()
	for _, p := range params {
		valid, err := validate.Parameter(p)
		if err != nil {
			return doc, err
		}
		e.Parameters = append(e.Parameters, valid)
	}
	return replaceEndpoint(doc, endpoint, e)
}

// UpdateParameter merges patch into one parameter of an endpoint.
func UpdateParameter(doc ir.Document, endpoint, index int, patch ParameterPatch) (ir.Document, error) {
	if err := checkIndex("endpoints", endpoint, len(doc.Endpoints)); err != nil {
		return doc, err
	}
	e := doc.Endpoints[endpoint].Clone()
	if err := checkIndex(fmt.Sprintf("endpoints[%d].parameters", endpoint), index, len(e.Parameters)); err != nil {
		return doc, err
	}
	e.Parameters[index] = patch.apply(e.Parameters[index])
	return replaceEndpoint(doc, endpoint, e)
}

// RemoveParameter deletes one parameter of an endpoint.
func RemoveParameter(doc ir.Document, endpoint, index int) (ir.Document, error) {
	if err := checkIndex("endpoints", endpoint, len(doc.Endpoints)); err != nil {
		return doc, err
	}
	e := doc.Endpoints[endpoint].Clone()
	if err := checkIndex(fmt.Sprintf("endpoints[%d].parameters", endpoint), index, len(e.Parameters)); err != nil {
		return doc, err
	}
	e.Parameters = append(e.Parameters[:index], e.Parameters[index+1:]...)
	return replaceEndpoint(doc, endpoint, e)
}

// replaceEndpoint validates e and commits it at index.
func replaceEndpoint(doc ir.Document, index int, e ir.Endpoint) (ir.Document, error) {
	valid, err := validate.Endpoint(e)
	if err != nil {
		return doc, err
	}
	out := doc.Clone()
	out.Endpoints[index] = valid
	return out, nil
}
