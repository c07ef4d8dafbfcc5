package mutate

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"

	"github.com/gorilla/schema"

	"github.com/roach88/blueprint/internal/ir"
)

// Op is a named, replayable document edit.
//
// Op values are what a session records in its journal: Name plus the JSON
// encoding of the op is enough to apply the same edit again.
type Op interface {
	Name() string
	Apply(doc ir.Document) (ir.Document, error)
}

// Op names as used on the command line and in journals.
const (
	OpAddEndpoint        = "add-endpoint"
	OpUpdateEndpoint     = "update-endpoint"
	OpRemoveEndpoint     = "remove-endpoint"
	OpAddParameter       = "add-parameter"
	OpAddSuggestedParams = "add-suggested-parameters"
	OpUpdateParameter    = "update-parameter"
	OpRemoveParameter    = "remove-parameter"
	OpAddModel           = "add-model"
	OpRenameModel        = "rename-model"
	OpUpdateModel        = "update-model"
	OpRemoveModel        = "remove-model"
	OpAddField           = "add-field"
	OpAddSuggestedFields = "add-suggested-fields"
	OpUpdateField        = "update-field"
	OpRemoveField        = "remove-field"
	OpAddRelationship    = "add-relationship"
	OpUpdateRelationship = "update-relationship"
	OpRemoveRelationship = "remove-relationship"
)

var registry = map[string]func() Op{
	OpAddEndpoint:        func() Op { return &AddEndpointOp{} },
	OpUpdateEndpoint:     func() Op { return &UpdateEndpointOp{} },
	OpRemoveEndpoint:     func() Op { return &RemoveEndpointOp{} },
	OpAddParameter:       func() Op { return &AddParameterOp{} },
	OpAddSuggestedParams: func() Op { return &AddSuggestedParametersOp{} },
	OpUpdateParameter:    func() Op { return &UpdateParameterOp{} },
	OpRemoveParameter:    func() Op { return &RemoveParameterOp{} },
	OpAddModel:           func() Op { return &AddModelOp{} },
	OpRenameModel:        func() Op { return &RenameModelOp{} },
	OpUpdateModel:        func() Op { return &UpdateModelOp{} },
	OpRemoveModel:        func() Op { return &RemoveModelOp{} },
	OpAddField:           func() Op { return &AddFieldOp{} },
	OpAddSuggestedFields: func() Op { return &AddSuggestedFieldsOp{} },
	OpUpdateField:        func() Op { return &UpdateFieldOp{} },
	OpRemoveField:        func() Op { return &RemoveFieldOp{} },
	OpAddRelationship:    func() Op { return &AddRelationshipOp{} },
	OpUpdateRelationship: func() Op { return &UpdateRelationshipOp{} },
	OpRemoveRelationship: func() Op { return &RemoveRelationshipOp{} },
}

var argsDecoder = schema.NewDecoder()

func init() {
	argsDecoder.IgnoreUnknownKeys(false)
}

// Names returns every registered op name, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns a zero-valued op for name.
func New(name string) (Op, error) {
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOp, name)
	}
	return ctor(), nil
}

// Decode builds an op from key=value arguments, e.g. the pairs given to
// `blueprint edit`. Unknown keys and missing required keys are errors.
func Decode(name string, args url.Values) (Op, error) {
	op, err := New(name)
	if err != nil {
		return nil, err
	}
	if err := argsDecoder.Decode(op, args); err != nil {
		return nil, &DecodeError{Op: name, Err: err}
	}
	return op, nil
}

// Marshal encodes an op's arguments for a journal entry.
func Marshal(op Op) (string, error) {
	data, err := json.Marshal(op)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", op.Name(), err)
	}
	return string(data), nil
}

// Unmarshal rebuilds an op from its name and journal arguments.
func Unmarshal(name, args string) (Op, error) {
	op, err := New(name)
	if err != nil {
		return nil, err
	}
	if args == "" {
		return op, nil
	}
	if err := json.Unmarshal([]byte(args), op); err != nil {
		return nil, &DecodeError{Op: name, Err: err}
	}
	return op, nil
}

// Ptr returns a pointer to v, for building patches.
func Ptr[T any](v T) *T {
	return &v
}

// constraints builds ir.Constraints from flat op arguments.
func constraints(min, max *int64, pattern *string) *ir.Constraints {
	if min == nil && max == nil && pattern == nil {
		return nil
	}
	c := ir.Constraints{Min: min, Max: max}
	if pattern != nil {
		c.Pattern = *pattern
	}
	return &c
}

// =============================================================================
// Endpoint ops
// =============================================================================

type AddEndpointOp struct{}

func (AddEndpointOp) Name() string { return OpAddEndpoint }

func (AddEndpointOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddEndpoint(doc), nil
}

type UpdateEndpointOp struct {
	Index          int       `json:"index" schema:"index,required"`
	Method         *string   `json:"method,omitempty" schema:"method"`
	Path           *string   `json:"path,omitempty" schema:"path"`
	Description    *string   `json:"description,omitempty" schema:"description"`
	ResponseSchema *string   `json:"responseSchema,omitempty" schema:"response_schema"`
	Tags           *[]string `json:"tags,omitempty" schema:"tags"`
	Security       *[]string `json:"security,omitempty" schema:"security"`
}

func (UpdateEndpointOp) Name() string { return OpUpdateEndpoint }

func (o UpdateEndpointOp) Apply(doc ir.Document) (ir.Document, error) {
	patch := EndpointPatch{
		Path:           o.Path,
		Description:    o.Description,
		ResponseSchema: o.ResponseSchema,
		Tags:           o.Tags,
		Security:       o.Security,
	}
	if o.Method != nil {
		patch.Method = Ptr(ir.Method(*o.Method))
	}
	return UpdateEndpoint(doc, o.Index, patch)
}

type RemoveEndpointOp struct {
	Index int `json:"index" schema:"index,required"`
}

func (RemoveEndpointOp) Name() string { return OpRemoveEndpoint }

func (o RemoveEndpointOp) Apply(doc ir.Document) (ir.Document, error) {
	return RemoveEndpoint(doc, o.Index)
}

type AddParameterOp struct {
	Endpoint    int     `json:"endpoint" schema:"endpoint,required"`
	ParamName   string  `json:"name" schema:"name"`
	Type        string  `json:"type" schema:"type"`
	Description string  `json:"description,omitempty" schema:"description"`
	Required    bool    `json:"required,omitempty" schema:"required"`
	Example     string  `json:"example,omitempty" schema:"example"`
	Min         *int64  `json:"min,omitempty" schema:"min"`
	Max         *int64  `json:"max,omitempty" schema:"max"`
	Pattern     *string `json:"pattern,omitempty" schema:"pattern"`
}

func (AddParameterOp) Name() string { return OpAddParameter }

func (o AddParameterOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddParameter(doc, o.Endpoint, ir.Parameter{
		Name:        o.ParamName,
		Type:        o.Type,
		Description: o.Description,
		Required:    o.Required,
		Example:     o.Example,
		Validation:  constraints(o.Min, o.Max, o.Pattern),
	})
}

type AddSuggestedParametersOp struct {
	Endpoint   int            `json:"endpoint" schema:"endpoint,required"`
	Parameters []ir.Parameter `json:"parameters" schema:"-"`
}

func (AddSuggestedParametersOp) Name() string { return OpAddSuggestedParams }

func (o AddSuggestedParametersOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddSuggestedParameters(doc, o.Endpoint, o.Parameters)
}

type UpdateParameterOp struct {
	Endpoint    int     `json:"endpoint" schema:"endpoint,required"`
	Index       int     `json:"index" schema:"index,required"`
	ParamName   *string `json:"name,omitempty" schema:"name"`
	Type        *string `json:"type,omitempty" schema:"type"`
	Description *string `json:"description,omitempty" schema:"description"`
	Required    *bool   `json:"required,omitempty" schema:"required"`
	Example     *string `json:"example,omitempty" schema:"example"`
	Min         *int64  `json:"min,omitempty" schema:"min"`
	Max         *int64  `json:"max,omitempty" schema:"max"`
	Pattern     *string `json:"pattern,omitempty" schema:"pattern"`
}

func (UpdateParameterOp) Name() string { return OpUpdateParameter }

func (o UpdateParameterOp) Apply(doc ir.Document) (ir.Document, error) {
	return UpdateParameter(doc, o.Endpoint, o.Index, ParameterPatch{
		Name:        o.ParamName,
		Type:        o.Type,
		Description: o.Description,
		Required:    o.Required,
		Example:     o.Example,
		Constraints: ConstraintsPatch{Min: o.Min, Max: o.Max, Pattern: o.Pattern},
	})
}

type RemoveParameterOp struct {
	Endpoint int `json:"endpoint" schema:"endpoint,required"`
	Index    int `json:"index" schema:"index,required"`
}

func (RemoveParameterOp) Name() string { return OpRemoveParameter }

func (o RemoveParameterOp) Apply(doc ir.Document) (ir.Document, error) {
	return RemoveParameter(doc, o.Endpoint, o.Index)
}

// =============================================================================
// Model ops
// =============================================================================

type AddModelOp struct{}

func (AddModelOp) Name() string { return OpAddModel }

func (AddModelOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddModel(doc), nil
}

type RenameModelOp struct {
	From string `json:"from" schema:"from,required"`
	To   string `json:"to" schema:"to"`
}

func (RenameModelOp) Name() string { return OpRenameModel }

func (o RenameModelOp) Apply(doc ir.Document) (ir.Document, error) {
	return RenameModel(doc, o.From, o.To)
}

type UpdateModelOp struct {
	Model         string             `json:"model" schema:"model,required"`
	Description   *string            `json:"description,omitempty" schema:"description"`
	Fields        *[]ir.Field        `json:"fields,omitempty" schema:"-"`
	Relationships *[]ir.Relationship `json:"relationships,omitempty" schema:"-"`
}

func (UpdateModelOp) Name() string { return OpUpdateModel }

func (o UpdateModelOp) Apply(doc ir.Document) (ir.Document, error) {
	return UpdateModel(doc, o.Model, ModelPatch{
		Description:   o.Description,
		Fields:        o.Fields,
		Relationships: o.Relationships,
	})
}

type RemoveModelOp struct {
	Model string `json:"model" schema:"model,required"`
}

func (RemoveModelOp) Name() string { return OpRemoveModel }

func (o RemoveModelOp) Apply(doc ir.Document) (ir.Document, error) {
	return RemoveModel(doc, o.Model)
}

// =============================================================================
// Field ops
// =============================================================================

type AddFieldOp struct {
	Model       string `json:"model" schema:"model,required"`
	FieldName   string `json:"name" schema:"name"`
	Type        string `json:"type" schema:"type"`
	Description string `json:"description,omitempty" schema:"description"`
	Required    bool   `json:"required,omitempty" schema:"required"`
	Example     string `json:"example,omitempty" schema:"example"`
	Min         *int64 `json:"min,omitempty" schema:"min"`
	Max         *int64 `json:"max,omitempty" schema:"max"`
	Pattern     string `json:"pattern,omitempty" schema:"pattern"`
}

func (AddFieldOp) Name() string { return OpAddField }

func (o AddFieldOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddField(doc, o.Model, ir.Field{
		Name:        o.FieldName,
		Type:        o.Type,
		Description: o.Description,
		Required:    o.Required,
		Example:     o.Example,
		Validation:  ir.Constraints{Min: o.Min, Max: o.Max, Pattern: o.Pattern},
	})
}

type AddSuggestedFieldsOp struct {
	Model  string     `json:"model" schema:"model,required"`
	Fields []ir.Field `json:"fields" schema:"-"`
}

func (AddSuggestedFieldsOp) Name() string { return OpAddSuggestedFields }

func (o AddSuggestedFieldsOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddSuggestedFields(doc, o.Model, o.Fields)
}

type UpdateFieldOp struct {
	Model       string  `json:"model" schema:"model,required"`
	Index       int     `json:"index" schema:"index,required"`
	FieldName   *string `json:"name,omitempty" schema:"name"`
	Type        *string `json:"type,omitempty" schema:"type"`
	Description *string `json:"description,omitempty" schema:"description"`
	Required    *bool   `json:"required,omitempty" schema:"required"`
	Example     *string `json:"example,omitempty" schema:"example"`
	Min         *int64  `json:"min,omitempty" schema:"min"`
	Max         *int64  `json:"max,omitempty" schema:"max"`
	Pattern     *string `json:"pattern,omitempty" schema:"pattern"`
}

func (UpdateFieldOp) Name() string { return OpUpdateField }

func (o UpdateFieldOp) Apply(doc ir.Document) (ir.Document, error) {
	return UpdateField(doc, o.Model, o.Index, FieldPatch{
		Name:        o.FieldName,
		Type:        o.Type,
		Description: o.Description,
		Required:    o.Required,
		Example:     o.Example,
		Constraints: ConstraintsPatch{Min: o.Min, Max: o.Max, Pattern: o.Pattern},
	})
}

type RemoveFieldOp struct {
	Model string `json:"model" schema:"model,required"`
	Index int    `json:"index" schema:"index,required"`
}

func (RemoveFieldOp) Name() string { return OpRemoveField }

func (o RemoveFieldOp) Apply(doc ir.Document) (ir.Document, error) {
	return RemoveField(doc, o.Model, o.Index)
}

// =============================================================================
// Relationship ops
// =============================================================================

type AddRelationshipOp struct {
	Model        string `json:"model" schema:"model,required"`
	Type         string `json:"type" schema:"type"`
	RelatedModel string `json:"relatedModel" schema:"related_model"`
	RelatedField string `json:"relatedField" schema:"related_field"`
}

func (AddRelationshipOp) Name() string { return OpAddRelationship }

func (o AddRelationshipOp) Apply(doc ir.Document) (ir.Document, error) {
	return AddRelationship(doc, o.Model, ir.Relationship{
		Type:  ir.RelationshipType(o.Type),
		Model: o.RelatedModel,
		Field: o.RelatedField,
	})
}

type UpdateRelationshipOp struct {
	Model        string  `json:"model" schema:"model,required"`
	Index        int     `json:"index" schema:"index,required"`
	Type         *string `json:"type,omitempty" schema:"type"`
	RelatedModel *string `json:"relatedModel,omitempty" schema:"related_model"`
	RelatedField *string `json:"relatedField,omitempty" schema:"related_field"`
}

func (UpdateRelationshipOp) Name() string { return OpUpdateRelationship }

func (o UpdateRelationshipOp) Apply(doc ir.Document) (ir.Document, error) {
	patch := RelationshipPatch{Model: o.RelatedModel, Field: o.RelatedField}
	if o.Type != nil {
		patch.Type = Ptr(ir.RelationshipType(*o.Type))
	}
	return UpdateRelationship(doc, o.Model, o.Index, patch)
}

type RemoveRelationshipOp struct {
	Model string `json:"model" schema:"model,required"`
	Index int    `json:"index" schema:"index,required"`
}

func (RemoveRelationshipOp) Name() string { return OpRemoveRelationship }

func (o RemoveRelationshipOp) Apply(doc ir.Document) (ir.Document, error) {
	return RemoveRelationship(doc, o.Model, o.Index)
}
